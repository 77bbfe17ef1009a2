package report

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// MonthlySummaryRow is one (employee, month) aggregate of worked hours.
type MonthlySummaryRow struct {
	EmployeeID   string
	EmployeeName string
	Period       string
	TotalHours   decimal.Decimal
	DaysWorked   int
}

// FormatHMS renders decimal hours as H:MM:SS.
func FormatHMS(hours decimal.Decimal) string {
	total := hours.Mul(decimal.NewFromInt(3600)).Round(0).IntPart()
	sign := ""
	if total < 0 {
		sign = "-"
		total = -total
	}
	return fmt.Sprintf("%s%d:%02d:%02d", sign, total/3600, (total%3600)/60, total%60)
}
