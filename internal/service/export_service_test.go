package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/edurecords/academy-api/internal/models"
)

func exportFixture() *ExportService {
	reports := &fakeReportRepo{
		tabular: []models.TabularReportRow{
			{StudentName: "Ana Lima", CourseName: "Go Fundamentals", Status: models.EnrollmentStatusPaid, AmountPaid: 350, AmountDue: 0},
			{StudentName: "Bruno Souza", CourseName: "Advanced Go", Status: models.EnrollmentStatusPending, AmountPaid: 0, AmountDue: 500},
		},
		summaries: []models.StudentSummaryRow{
			{StudentName: "Ana Lima", TotalPaid: 350, TotalDue: 0, TotalEnrollments: 1},
			{StudentName: "Bruno Souza", TotalPaid: 0, TotalDue: 500, TotalEnrollments: 1},
		},
	}
	svc := NewReportService(reports, &fakeStudentReader{}, nil, zap.NewNop())
	return NewExportService(svc, nil, nil, zap.NewNop())
}

func TestExportServiceTabularCSV(t *testing.T) {
	svc := exportFixture()

	data, err := svc.TabularCSV(context.Background())
	require.NoError(t, err)

	content := string(data)
	lines := strings.Split(strings.TrimSpace(content), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "student,course,status,amount_paid,amount_due", lines[0])
	assert.Contains(t, content, "Ana Lima,Go Fundamentals,paid,350.00,0.00")
	assert.Contains(t, content, "Bruno Souza,Advanced Go,pending,0.00,500.00")
}

func TestExportServiceSummaryCSV(t *testing.T) {
	svc := exportFixture()

	data, err := svc.SummaryCSV(context.Background())
	require.NoError(t, err)

	content := string(data)
	assert.Contains(t, content, "student,total_paid,total_due,total_enrollments")
	assert.Contains(t, content, "Ana Lima,350.00,0.00,1")
}

func TestExportServiceTabularPDF(t *testing.T) {
	svc := exportFixture()

	data, err := svc.TabularPDF(context.Background())
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "%PDF"))
}

func TestExportServiceSummaryPDF(t *testing.T) {
	svc := exportFixture()

	data, err := svc.SummaryPDF(context.Background())
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "%PDF"))
}
