package employee

import (
	"strings"
	"time"

	"github.com/cmlabs-hris/face-attendance-go/internal/pkg/validator"
)

type EnrollRequest struct {
	ID       string    `json:"employee_id"`
	Name     string    `json:"name"`
	Encoding []float64 `json:"encoding"`
}

// Normalize uppercases the ID and trims the name in place.
func (r *EnrollRequest) Normalize() {
	r.ID = validator.NormalizeEmployeeID(r.ID)
	r.Name = strings.TrimSpace(r.Name)
}

func (r *EnrollRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.ID) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_id",
			Message: "employee_id is required",
		})
	} else if !validator.IsValidEmployeeID(validator.NormalizeEmployeeID(r.ID)) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_id",
			Message: "employee_id must be 1-64 characters of letters, digits, '.', '_', '-' or '/'",
		})
	}

	if validator.IsEmpty(r.Name) {
		errs = append(errs, validator.ValidationError{
			Field:   "name",
			Message: "name is required",
		})
	} else if len(strings.TrimSpace(r.Name)) > 255 {
		errs = append(errs, validator.ValidationError{
			Field:   "name",
			Message: "name must not exceed 255 characters",
		})
	}

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

type EnrollResponse struct {
	Created bool   `json:"created"`
	ID      string `json:"employee_id"`
	Name    string `json:"name"`
	Message string `json:"message"`
}

type EmployeeResponse struct {
	ID        string `json:"employee_id"`
	Name      string `json:"name"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

type CandidateResponse struct {
	ID       string    `json:"employee_id"`
	Name     string    `json:"name"`
	Encoding []float64 `json:"encoding"`
}

func NewEmployeeResponse(emp Employee) EmployeeResponse {
	return EmployeeResponse{
		ID:        emp.ID,
		Name:      emp.Name,
		CreatedAt: emp.CreatedAt.Format(time.RFC3339),
		UpdatedAt: emp.UpdatedAt.Format(time.RFC3339),
	}
}

func NewCandidateResponse(c Candidate) CandidateResponse {
	return CandidateResponse{ID: c.ID, Name: c.Name, Encoding: c.Encoding}
}
