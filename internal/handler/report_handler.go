package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/edurecords/academy-api/internal/service"
	appErrors "github.com/edurecords/academy-api/pkg/errors"
	"github.com/edurecords/academy-api/pkg/response"
)

// ReportHandler exposes the financial reporting endpoints. Tabular and
// summary reports can be rendered as json, html, csv or pdf.
type ReportHandler struct {
	reports *service.ReportService
	exports *service.ExportService
}

// NewReportHandler constructs ReportHandler.
func NewReportHandler(reports *service.ReportService, exports *service.ExportService) *ReportHandler {
	return &ReportHandler{reports: reports, exports: exports}
}

// FinancialSummary godoc
// @Summary Global financial summary
// @Tags Reports
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /reports/financial [get]
func (h *ReportHandler) FinancialSummary(c *gin.Context) {
	summary, err := h.reports.FinancialSummary(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil)
}

// StudentHistory godoc
// @Summary Enrollment history and totals for one student
// @Tags Reports
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /reports/students/{id} [get]
func (h *ReportHandler) StudentHistory(c *gin.Context) {
	history, err := h.reports.StudentHistory(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, history, nil)
}

// Tabular godoc
// @Summary Per-enrollment financial report
// @Tags Reports
// @Produce json
// @Param format query string false "Output format: json, html, csv or pdf" default(json)
// @Success 200 {object} response.Envelope
// @Router /reports/financial/table [get]
func (h *ReportHandler) Tabular(c *gin.Context) {
	switch format := c.DefaultQuery("format", "json"); format {
	case "json":
		rows, err := h.reports.Tabular(c.Request.Context())
		if err != nil {
			response.Error(c, err)
			return
		}
		response.JSON(c, http.StatusOK, rows, nil)
	case "html":
		rows, err := h.reports.Tabular(c.Request.Context())
		if err != nil {
			response.Error(c, err)
			return
		}
		c.HTML(http.StatusOK, "report_table.html", gin.H{
			"Title":       "Financial Report",
			"Rows":        rows,
			"GeneratedAt": time.Now().Format("2006-01-02 15:04"),
		})
	case "csv":
		data, err := h.exports.TabularCSV(c.Request.Context())
		if err != nil {
			response.Error(c, err)
			return
		}
		serveDownload(c, data, "text/csv", "financial_report.csv")
	case "pdf":
		data, err := h.exports.TabularPDF(c.Request.Context())
		if err != nil {
			response.Error(c, err)
			return
		}
		serveDownload(c, data, "application/pdf", "financial_report.pdf")
	default:
		response.Error(c, appErrors.WithField(appErrors.ErrValidation, "format", "format must be json, html, csv or pdf"))
	}
}

// Summary godoc
// @Summary Financial report rolled up per student
// @Tags Reports
// @Produce json
// @Param format query string false "Output format: json, html, csv or pdf" default(json)
// @Success 200 {object} response.Envelope
// @Router /reports/financial/summary [get]
func (h *ReportHandler) Summary(c *gin.Context) {
	switch format := c.DefaultQuery("format", "json"); format {
	case "json":
		rows, err := h.reports.StudentSummaries(c.Request.Context())
		if err != nil {
			response.Error(c, err)
			return
		}
		response.JSON(c, http.StatusOK, rows, nil)
	case "html":
		rows, err := h.reports.StudentSummaries(c.Request.Context())
		if err != nil {
			response.Error(c, err)
			return
		}
		c.HTML(http.StatusOK, "report_summary.html", gin.H{
			"Title":       "Financial Summary by Student",
			"Rows":        rows,
			"GeneratedAt": time.Now().Format("2006-01-02 15:04"),
		})
	case "csv":
		data, err := h.exports.SummaryCSV(c.Request.Context())
		if err != nil {
			response.Error(c, err)
			return
		}
		serveDownload(c, data, "text/csv", "financial_summary.csv")
	case "pdf":
		data, err := h.exports.SummaryPDF(c.Request.Context())
		if err != nil {
			response.Error(c, err)
			return
		}
		serveDownload(c, data, "application/pdf", "financial_summary.pdf")
	default:
		response.Error(c, appErrors.WithField(appErrors.ErrValidation, "format", "format must be json, html, csv or pdf"))
	}
}

func serveDownload(c *gin.Context, data []byte, contentType, filename string) {
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, contentType, data)
}
