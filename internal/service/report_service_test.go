package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/edurecords/academy-api/internal/models"
	appErrors "github.com/edurecords/academy-api/pkg/errors"
)

type fakeReportRepo struct {
	summary     *models.FinancialSummary
	history     map[string][]models.StudentHistoryEntry
	tabular     []models.TabularReportRow
	summaries   []models.StudentSummaryRow
	summaryHits int
}

func (m *fakeReportRepo) FinancialSummary(ctx context.Context) (*models.FinancialSummary, error) {
	m.summaryHits++
	if m.summary == nil {
		return nil, errors.New("no summary")
	}
	return m.summary, nil
}

func (m *fakeReportRepo) StudentHistory(ctx context.Context, studentID string) ([]models.StudentHistoryEntry, error) {
	return m.history[studentID], nil
}

func (m *fakeReportRepo) TabularReport(ctx context.Context) ([]models.TabularReportRow, error) {
	return m.tabular, nil
}

func (m *fakeReportRepo) StudentSummaries(ctx context.Context) ([]models.StudentSummaryRow, error) {
	return m.summaries, nil
}

type memoryCacheRepo struct {
	entries map[string][]byte
}

func newMemoryCacheRepo() *memoryCacheRepo {
	return &memoryCacheRepo{entries: make(map[string][]byte)}
}

func (m *memoryCacheRepo) Get(ctx context.Context, key string, dest interface{}) error {
	raw, ok := m.entries[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *memoryCacheRepo) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.entries[key] = raw
	return nil
}

func (m *memoryCacheRepo) DeleteByPattern(ctx context.Context, pattern string) error {
	for key := range m.entries {
		delete(m.entries, key)
	}
	return nil
}

func TestReportServiceFinancialSummaryCaches(t *testing.T) {
	repo := &fakeReportRepo{summary: &models.FinancialSummary{Students: 5, Courses: 2, EnrollmentsPaid: 3, EnrollmentsPending: 1, GrossRevenuePotential: 1400}}
	cacheRepo := newMemoryCacheRepo()
	cacheSvc := NewCacheService(cacheRepo, nil, time.Minute, zap.NewNop(), true)
	svc := NewReportService(repo, &fakeStudentReader{}, cacheSvc, zap.NewNop())

	first, err := svc.FinancialSummary(context.Background())
	require.NoError(t, err)
	second, err := svc.FinancialSummary(context.Background())
	require.NoError(t, err)

	assert.Equal(t, first.GrossRevenuePotential, second.GrossRevenuePotential)
	assert.Equal(t, 1, repo.summaryHits)
}

func TestReportServiceFinancialSummaryCacheDisabled(t *testing.T) {
	repo := &fakeReportRepo{summary: &models.FinancialSummary{Students: 1}}
	svc := NewReportService(repo, &fakeStudentReader{}, nil, zap.NewNop())

	_, err := svc.FinancialSummary(context.Background())
	require.NoError(t, err)
	_, err = svc.FinancialSummary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, repo.summaryHits)
}

func TestReportServiceStudentHistoryTotals(t *testing.T) {
	repo := &fakeReportRepo{history: map[string][]models.StudentHistoryEntry{
		"s1": {
			{EnrollmentID: "e1", CourseName: "Go Fundamentals", CourseFee: 350, Status: models.EnrollmentStatusPaid},
			{EnrollmentID: "e2", CourseName: "Advanced Go", CourseFee: 500, Status: models.EnrollmentStatusPending},
			{EnrollmentID: "e3", CourseName: "Testing in Go", CourseFee: 199.90, Status: models.EnrollmentStatusPaid},
		},
	}}
	students := &fakeStudentReader{students: map[string]models.Student{"s1": {ID: "s1", FullName: "Ana Lima"}}}
	svc := NewReportService(repo, students, nil, zap.NewNop())

	history, err := svc.StudentHistory(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, "Ana Lima", history.StudentName)
	assert.InDelta(t, 549.90, history.TotalPaid, 0.001)
	assert.InDelta(t, 500.00, history.TotalDue, 0.001)
	assert.Len(t, history.Entries, 3)
}

func TestReportServiceStudentHistoryMissingStudent(t *testing.T) {
	svc := NewReportService(&fakeReportRepo{}, &fakeStudentReader{}, nil, zap.NewNop())

	_, err := svc.StudentHistory(context.Background(), "ghost")
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}

func TestReportServiceStudentHistoryEmpty(t *testing.T) {
	students := &fakeStudentReader{students: map[string]models.Student{"s1": {ID: "s1", FullName: "Ana"}}}
	svc := NewReportService(&fakeReportRepo{}, students, nil, zap.NewNop())

	history, err := svc.StudentHistory(context.Background(), "s1")
	require.NoError(t, err)
	assert.Zero(t, history.TotalPaid)
	assert.Zero(t, history.TotalDue)
	assert.Empty(t, history.Entries)
}

// The per-student rollup must agree with summing the tabular rows by hand.
func TestSummarizeTabularMatchesRows(t *testing.T) {
	rows := []models.TabularReportRow{
		{StudentName: "Ana Lima", CourseName: "Go Fundamentals", Status: models.EnrollmentStatusPaid, AmountPaid: 350, AmountDue: 0},
		{StudentName: "Ana Lima", CourseName: "Advanced Go", Status: models.EnrollmentStatusPending, AmountPaid: 0, AmountDue: 500},
		{StudentName: "Bruno Souza", CourseName: "Go Fundamentals", Status: models.EnrollmentStatusPaid, AmountPaid: 350, AmountDue: 0},
	}

	summaries := SummarizeTabular(rows)
	require.Len(t, summaries, 2)

	byName := make(map[string]models.StudentSummaryRow)
	for _, s := range summaries {
		byName[s.StudentName] = s
	}
	ana := byName["Ana Lima"]
	assert.InDelta(t, 350, ana.TotalPaid, 0.001)
	assert.InDelta(t, 500, ana.TotalDue, 0.001)
	assert.Equal(t, 2, ana.TotalEnrollments)

	bruno := byName["Bruno Souza"]
	assert.InDelta(t, 350, bruno.TotalPaid, 0.001)
	assert.Zero(t, bruno.TotalDue)
	assert.Equal(t, 1, bruno.TotalEnrollments)
}

// Marking an enrollment paid moves its fee from due to paid without changing
// the combined total.
func TestSummarizeTabularPendingToPaidMovesTotals(t *testing.T) {
	before := []models.TabularReportRow{
		{StudentName: "Ana Lima", CourseName: "Advanced Go", Status: models.EnrollmentStatusPending, AmountPaid: 0, AmountDue: 500},
	}
	after := []models.TabularReportRow{
		{StudentName: "Ana Lima", CourseName: "Advanced Go", Status: models.EnrollmentStatusPaid, AmountPaid: 500, AmountDue: 0},
	}

	b := SummarizeTabular(before)[0]
	a := SummarizeTabular(after)[0]

	assert.InDelta(t, b.TotalPaid+b.TotalDue, a.TotalPaid+a.TotalDue, 0.001)
	assert.InDelta(t, 500, a.TotalPaid, 0.001)
	assert.Zero(t, a.TotalDue)
}
