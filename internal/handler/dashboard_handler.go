package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/edurecords/academy-api/internal/models"
	"github.com/edurecords/academy-api/internal/service"
)

// DashboardHandler renders the server-side pages backed by the report
// services. Failures degrade to an empty dashboard instead of a 500 so
// the pages stay usable while the database recovers.
type DashboardHandler struct {
	reports *service.ReportService
	logger  *zap.Logger
}

// NewDashboardHandler constructs DashboardHandler.
func NewDashboardHandler(reports *service.ReportService, logger *zap.Logger) *DashboardHandler {
	return &DashboardHandler{reports: reports, logger: logger}
}

// Home renders the dashboard landing page with the financial summary.
func (h *DashboardHandler) Home(c *gin.Context) {
	summary, err := h.reports.FinancialSummary(c.Request.Context())
	if err != nil {
		h.logger.Error("dashboard summary failed", zap.Error(err))
		summary = &models.FinancialSummary{}
	}
	c.HTML(http.StatusOK, "dashboard.html", gin.H{
		"Title":       "Dashboard",
		"Summary":     summary,
		"GeneratedAt": time.Now().Format("2006-01-02 15:04"),
	})
}

// TabularReport renders the per-enrollment financial report page.
func (h *DashboardHandler) TabularReport(c *gin.Context) {
	rows, err := h.reports.Tabular(c.Request.Context())
	if err != nil {
		h.logger.Error("tabular report failed", zap.Error(err))
		rows = nil
	}
	c.HTML(http.StatusOK, "report_table.html", gin.H{
		"Title":       "Financial Report",
		"Rows":        rows,
		"GeneratedAt": time.Now().Format("2006-01-02 15:04"),
	})
}

// SummaryReport renders the per-student rollup page.
func (h *DashboardHandler) SummaryReport(c *gin.Context) {
	rows, err := h.reports.StudentSummaries(c.Request.Context())
	if err != nil {
		h.logger.Error("summary report failed", zap.Error(err))
		rows = nil
	}
	c.HTML(http.StatusOK, "report_summary.html", gin.H{
		"Title":       "Financial Summary by Student",
		"Rows":        rows,
		"GeneratedAt": time.Now().Format("2006-01-02 15:04"),
	})
}

// StudentHistory renders the enrollment history page for one student.
func (h *DashboardHandler) StudentHistory(c *gin.Context) {
	history, err := h.reports.StudentHistory(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.HTML(http.StatusNotFound, "error.html", gin.H{
			"Title":   "Student not found",
			"Message": "No student matches the requested id.",
		})
		return
	}
	c.HTML(http.StatusOK, "student_history.html", gin.H{
		"Title":   "Student History",
		"History": history,
	})
}
