package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/edurecords/academy-api/internal/models"
	appErrors "github.com/edurecords/academy-api/pkg/errors"
)

type fakeCourseRepo struct {
	courses   map[string]models.Course
	nameOwner map[string]string
	deleted   []string
}

func newFakeCourseRepo() *fakeCourseRepo {
	return &fakeCourseRepo{courses: make(map[string]models.Course), nameOwner: make(map[string]string)}
}

func (m *fakeCourseRepo) List(ctx context.Context, filter models.CourseFilter) ([]models.Course, int, error) {
	list := make([]models.Course, 0, len(m.courses))
	for _, c := range m.courses {
		if filter.IsActive != nil && c.IsActive != *filter.IsActive {
			continue
		}
		list = append(list, c)
	}
	return list, len(list), nil
}

func (m *fakeCourseRepo) FindByID(ctx context.Context, id string) (*models.Course, error) {
	if c, ok := m.courses[id]; ok {
		return &c, nil
	}
	return nil, sql.ErrNoRows
}

func (m *fakeCourseRepo) ExistsByName(ctx context.Context, name string, excludeID string) (bool, error) {
	if id, ok := m.nameOwner[name]; ok {
		if excludeID == "" || id != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (m *fakeCourseRepo) Create(ctx context.Context, course *models.Course) error {
	if course.ID == "" {
		course.ID = "generated"
	}
	m.courses[course.ID] = *course
	m.nameOwner[course.Name] = course.ID
	return nil
}

func (m *fakeCourseRepo) Update(ctx context.Context, course *models.Course) error {
	m.courses[course.ID] = *course
	return nil
}

func (m *fakeCourseRepo) Delete(ctx context.Context, id string) error {
	if _, ok := m.courses[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.courses, id)
	m.deleted = append(m.deleted, id)
	return nil
}

func TestCourseServiceCreateDefaultsActive(t *testing.T) {
	repo := newFakeCourseRepo()
	svc := NewCourseService(repo, nil, validator.New(), zap.NewNop())

	course, err := svc.Create(context.Background(), CreateCourseRequest{
		Name:          "Go Fundamentals",
		WorkloadHours: 40,
		EnrollmentFee: 350,
	})
	require.NoError(t, err)
	assert.True(t, course.IsActive)
}

func TestCourseServiceCreateExplicitInactive(t *testing.T) {
	repo := newFakeCourseRepo()
	svc := NewCourseService(repo, nil, validator.New(), zap.NewNop())

	inactive := false
	course, err := svc.Create(context.Background(), CreateCourseRequest{
		Name:          "Archived Course",
		WorkloadHours: 20,
		EnrollmentFee: 100,
		IsActive:      &inactive,
	})
	require.NoError(t, err)
	assert.False(t, course.IsActive)
}

func TestCourseServiceCreateZeroWorkload(t *testing.T) {
	repo := newFakeCourseRepo()
	svc := NewCourseService(repo, nil, validator.New(), zap.NewNop())

	course, err := svc.Create(context.Background(), CreateCourseRequest{
		Name:          "Orientation",
		WorkloadHours: 0,
		EnrollmentFee: 0,
	})
	require.NoError(t, err)
	assert.Equal(t, 0, course.WorkloadHours)
	assert.Equal(t, 0, repo.courses[course.ID].WorkloadHours)
}

func TestCourseServiceCreateDuplicateName(t *testing.T) {
	repo := newFakeCourseRepo()
	repo.nameOwner["Go Fundamentals"] = "other"
	svc := NewCourseService(repo, nil, validator.New(), zap.NewNop())

	_, err := svc.Create(context.Background(), CreateCourseRequest{Name: "Go Fundamentals", WorkloadHours: 40, EnrollmentFee: 350})
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
	assert.Equal(t, "name", appErr.Field)
}

func TestCourseServiceCreateNegativeFee(t *testing.T) {
	svc := NewCourseService(newFakeCourseRepo(), nil, validator.New(), zap.NewNop())

	_, err := svc.Create(context.Background(), CreateCourseRequest{Name: "Bad", WorkloadHours: 10, EnrollmentFee: -1})
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestCourseServiceDeactivateKeepsEnrollments(t *testing.T) {
	repo := newFakeCourseRepo()
	repo.courses["c1"] = models.Course{ID: "c1", Name: "Go Fundamentals", WorkloadHours: 40, EnrollmentFee: 350, IsActive: true}
	repo.nameOwner["Go Fundamentals"] = "c1"
	svc := NewCourseService(repo, nil, validator.New(), zap.NewNop())

	course, err := svc.Update(context.Background(), "c1", UpdateCourseRequest{
		Name:          "Go Fundamentals",
		WorkloadHours: 40,
		EnrollmentFee: 350,
		IsActive:      false,
	})
	require.NoError(t, err)
	assert.False(t, course.IsActive)
	assert.NotContains(t, repo.deleted, "c1")
}

func TestCourseServiceDeleteMissing(t *testing.T) {
	svc := NewCourseService(newFakeCourseRepo(), nil, validator.New(), zap.NewNop())

	err := svc.Delete(context.Background(), "missing")
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}
