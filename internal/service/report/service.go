package report

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/face-attendance-go/internal/domain/report"
	"github.com/cmlabs-hris/face-attendance-go/internal/pkg/clock"
	"github.com/cmlabs-hris/face-attendance-go/internal/pkg/validator"
)

type ReportServiceImpl struct {
	reportRepo report.ReportRepository
	clock      clock.Clock
	logger     *slog.Logger
}

func NewReportService(reportRepo report.ReportRepository, clk clock.Clock, logger *slog.Logger) report.ReportService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReportServiceImpl{
		reportRepo: reportRepo,
		clock:      clk,
		logger:     logger,
	}
}

// GetMonthlySummary implements report.ReportService.
func (s *ReportServiceImpl) GetMonthlySummary(ctx context.Context, filter report.MonthlySummaryFilter) (report.MonthlySummaryReport, error) {
	rows, err := s.summarize(ctx, filter)
	if err != nil {
		return report.MonthlySummaryReport{}, err
	}

	result := report.MonthlySummaryReport{
		GeneratedAt: s.clock.Now().Format(time.RFC3339),
		Rows:        make([]report.MonthlySummaryResponse, 0, len(rows)),
	}
	for _, row := range rows {
		result.Rows = append(result.Rows, report.NewMonthlySummaryResponse(row))
	}
	return result, nil
}

// ExportMonthlySummary implements report.ReportService.
func (s *ReportServiceImpl) ExportMonthlySummary(ctx context.Context, filter report.MonthlySummaryFilter) (report.ExportFile, error) {
	rows, err := s.summarize(ctx, filter)
	if err != nil {
		return report.ExportFile{}, err
	}

	generatedAt := s.clock.Now()
	content, err := renderMonthlySummaryXLSX(rows, filter.Period, generatedAt)
	if err != nil {
		s.logger.ErrorContext(ctx, "Monthly summary export failed", "error", err)
		return report.ExportFile{}, fmt.Errorf("%w: %w", report.ErrReportGenerationFailed, err)
	}

	period := filter.Period
	if period == "" {
		period = "all"
	}
	return report.ExportFile{
		Filename:    fmt.Sprintf("rekap-jam-kerja-%s.xlsx", period),
		ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		Content:     content,
	}, nil
}

func (s *ReportServiceImpl) summarize(ctx context.Context, filter report.MonthlySummaryFilter) ([]report.MonthlySummaryRow, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}
	if filter.EmployeeID != "" {
		filter.EmployeeID = validator.NormalizeEmployeeID(filter.EmployeeID)
	}

	rows, err := s.reportRepo.SummarizeMonthly(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize monthly hours: %w", err)
	}
	return rows, nil
}
