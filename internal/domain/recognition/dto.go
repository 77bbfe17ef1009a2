package recognition

import (
	"github.com/cmlabs-hris/face-attendance-go/internal/pkg/validator"
)

type MatchRequest struct {
	Encoding []float64 `json:"encoding"`
}

func (r *MatchRequest) Validate() error {
	var errs validator.ValidationErrors

	if len(r.Encoding) == 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "encoding",
			Message: "encoding is required",
		})
	} else if !validator.IsValidEncoding(r.Encoding) {
		errs = append(errs, validator.ValidationError{
			Field:   "encoding",
			Message: ErrInvalidEncoding.Error(),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type MatchResponse struct {
	Matched      bool    `json:"matched"`
	Label        string  `json:"label"`
	EmployeeID   string  `json:"employee_id,omitempty"`
	EmployeeName string  `json:"employee_name,omitempty"`
	Distance     float64 `json:"distance"`
}
