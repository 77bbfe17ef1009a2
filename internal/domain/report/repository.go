package report

import "context"

// ReportRepository defines the interface for report data access
type ReportRepository interface {
	// SummarizeMonthly sums PULANG worked hours per (employee, YYYY-MM),
	// ordered by period descending then employee ID ascending.
	SummarizeMonthly(ctx context.Context, filter MonthlySummaryFilter) ([]MonthlySummaryRow, error)
}
