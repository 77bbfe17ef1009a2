package report

import (
	"github.com/cmlabs-hris/face-attendance-go/internal/pkg/validator"
)

// ========================================
// MONTHLY WORKED-HOURS SUMMARY
// ========================================

type MonthlySummaryFilter struct {
	// Period narrows the summary to one "YYYY-MM" month. Empty means all months.
	Period     string `json:"period"`
	EmployeeID string `json:"employee_id"`
}

func (f *MonthlySummaryFilter) Validate() error {
	var errs validator.ValidationErrors

	if f.Period != "" {
		if _, ok := validator.IsValidMonth(f.Period); !ok {
			errs = append(errs, validator.ValidationError{
				Field:   "period",
				Message: ErrInvalidPeriod.Error(),
			})
		}
	}

	if f.EmployeeID != "" && !validator.IsValidEmployeeID(validator.NormalizeEmployeeID(f.EmployeeID)) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_id",
			Message: "employee_id is not a valid identifier",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type MonthlySummaryResponse struct {
	EmployeeID     string  `json:"employee_id"`
	EmployeeName   string  `json:"employee_name"`
	Period         string  `json:"period"`
	TotalHours     float64 `json:"total_hours"`
	TotalHoursText string  `json:"total_hours_text"`
	TotalHoursHMS  string  `json:"total_hours_hms"`
	DaysWorked     int     `json:"days_worked"`
}

func NewMonthlySummaryResponse(row MonthlySummaryRow) MonthlySummaryResponse {
	return MonthlySummaryResponse{
		EmployeeID:     row.EmployeeID,
		EmployeeName:   row.EmployeeName,
		Period:         row.Period,
		TotalHours:     row.TotalHours.InexactFloat64(),
		TotalHoursText: row.TotalHours.StringFixed(2),
		TotalHoursHMS:  FormatHMS(row.TotalHours),
		DaysWorked:     row.DaysWorked,
	}
}

type MonthlySummaryReport struct {
	GeneratedAt string                   `json:"generated_at"`
	Rows        []MonthlySummaryResponse `json:"rows"`
}

// ExportFile is a rendered spreadsheet ready to be streamed.
type ExportFile struct {
	Filename    string
	ContentType string
	Content     []byte
}
