package report

import "context"

// ReportService defines the interface for report generation
type ReportService interface {
	GetMonthlySummary(ctx context.Context, filter MonthlySummaryFilter) (MonthlySummaryReport, error)

	// ExportMonthlySummary renders the same rows as an XLSX workbook
	ExportMonthlySummary(ctx context.Context, filter MonthlySummaryFilter) (ExportFile, error)
}
