package postgresql

import (
	"context"
	"fmt"
	"strings"

	"github.com/cmlabs-hris/face-attendance-go/internal/domain/report"
	"github.com/cmlabs-hris/face-attendance-go/internal/pkg/database"
	"github.com/shopspring/decimal"
)

type reportRepositoryImpl struct {
	db *database.DB
}

func NewReportRepository(db *database.DB) report.ReportRepository {
	return &reportRepositoryImpl{db: db}
}

// SummarizeMonthly sums PULANG worked hours per employee and work month
func (r *reportRepositoryImpl) SummarizeMonthly(ctx context.Context, filter report.MonthlySummaryFilter) ([]report.MonthlySummaryRow, error) {
	q := GetQuerier(ctx, r.db)

	conditions := []string{"a.event_type = 'PULANG'"}
	args := make([]interface{}, 0, 2)
	if filter.Period != "" {
		args = append(args, filter.Period)
		conditions = append(conditions, fmt.Sprintf("to_char(a.work_date, 'YYYY-MM') = $%d", len(args)))
	}
	if filter.EmployeeID != "" {
		args = append(args, filter.EmployeeID)
		conditions = append(conditions, fmt.Sprintf("a.employee_id = $%d", len(args)))
	}

	query := `
		SELECT
			e.id,
			e.name,
			to_char(a.work_date, 'YYYY-MM') AS period,
			COALESCE(SUM(a.worked_hours), 0)::text AS total_hours,
			COUNT(*) AS days_worked
		FROM attendance_events a
		JOIN employees e ON e.id = a.employee_id
		WHERE ` + strings.Join(conditions, " AND ") + `
		GROUP BY e.id, e.name, period
		ORDER BY period DESC, e.id ASC
	`

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize monthly hours: %w", err)
	}
	defer rows.Close()

	result := make([]report.MonthlySummaryRow, 0)
	for rows.Next() {
		var (
			row   report.MonthlySummaryRow
			total string
		)
		if err := rows.Scan(&row.EmployeeID, &row.EmployeeName, &row.Period, &total, &row.DaysWorked); err != nil {
			return nil, fmt.Errorf("failed to scan monthly summary: %w", err)
		}
		row.TotalHours, err = decimal.NewFromString(total)
		if err != nil {
			return nil, fmt.Errorf("parse total hours %q: %w", total, err)
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate monthly summary: %w", err)
	}

	return result, nil
}
