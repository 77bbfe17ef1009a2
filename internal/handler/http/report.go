package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/cmlabs-hris/face-attendance-go/internal/domain/report"
	"github.com/cmlabs-hris/face-attendance-go/internal/handler/http/response"
)

type ReportHandler interface {
	// Monthly worked-hours summary
	GetMonthlySummary(w http.ResponseWriter, r *http.Request)

	// Same summary as an XLSX download
	ExportMonthlySummary(w http.ResponseWriter, r *http.Request)
}

type reportHandlerImpl struct {
	reportService report.ReportService
}

func NewReportHandler(reportService report.ReportService) ReportHandler {
	return &reportHandlerImpl{
		reportService: reportService,
	}
}

func summaryFilter(r *http.Request) report.MonthlySummaryFilter {
	return report.MonthlySummaryFilter{
		Period:     r.URL.Query().Get("period"),
		EmployeeID: r.URL.Query().Get("employee_id"),
	}
}

// GetMonthlySummary handles GET /reports/monthly?period=YYYY-MM&employee_id=
func (h *reportHandlerImpl) GetMonthlySummary(w http.ResponseWriter, r *http.Request) {
	result, err := h.reportService.GetMonthlySummary(r.Context(), summaryFilter(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMeta(w, result, &response.Meta{TotalItems: int64(len(result.Rows))})
}

// ExportMonthlySummary handles GET /reports/monthly/export
func (h *reportHandlerImpl) ExportMonthlySummary(w http.ResponseWriter, r *http.Request) {
	file, err := h.reportService.ExportMonthlySummary(r.Context(), summaryFilter(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	w.Header().Set("Content-Type", file.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(file.Content)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(file.Content); err != nil {
		slog.Error("Export write error", "error", err, "filename", file.Filename)
	}
}
