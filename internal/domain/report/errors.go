package report

import "errors"

var (
	ErrInvalidPeriod          = errors.New("period must be in YYYY-MM format")
	ErrReportGenerationFailed = errors.New("failed to generate report")
)
