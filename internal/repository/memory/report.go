package memory

import (
	"context"
	"sort"

	"github.com/cmlabs-hris/face-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/face-attendance-go/internal/domain/report"
	"github.com/shopspring/decimal"
)

type reportRepository struct {
	store *Store
}

func NewReportRepository(store *Store) report.ReportRepository {
	return &reportRepository{store: store}
}

// SummarizeMonthly implements report.ReportRepository.
func (r *reportRepository) SummarizeMonthly(ctx context.Context, filter report.MonthlySummaryFilter) ([]report.MonthlySummaryRow, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	type key struct{ employeeID, period string }
	groups := make(map[key]*report.MonthlySummaryRow)

	for _, e := range r.store.events {
		if e.Type != attendance.EventPulang || e.WorkedHours == nil {
			continue
		}
		period := e.WorkDate.Format("2006-01")
		if filter.Period != "" && period != filter.Period {
			continue
		}
		if filter.EmployeeID != "" && e.EmployeeID != filter.EmployeeID {
			continue
		}

		k := key{e.EmployeeID, period}
		row, ok := groups[k]
		if !ok {
			row = &report.MonthlySummaryRow{
				EmployeeID:   e.EmployeeID,
				EmployeeName: r.store.employees[e.EmployeeID].Name,
				Period:       period,
				TotalHours:   decimal.Zero,
			}
			groups[k] = row
		}
		row.TotalHours = row.TotalHours.Add(*e.WorkedHours)
		row.DaysWorked++
	}

	rows := make([]report.MonthlySummaryRow, 0, len(groups))
	for _, row := range groups {
		rows = append(rows, *row)
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Period != rows[j].Period {
			return rows[i].Period > rows[j].Period
		}
		return rows[i].EmployeeID < rows[j].EmployeeID
	})
	return rows, nil
}
