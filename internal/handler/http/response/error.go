package response

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/cmlabs-hris/face-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/face-attendance-go/internal/domain/auth"
	"github.com/cmlabs-hris/face-attendance-go/internal/domain/employee"
	"github.com/cmlabs-hris/face-attendance-go/internal/domain/recognition"
	"github.com/cmlabs-hris/face-attendance-go/internal/domain/report"
	"github.com/cmlabs-hris/face-attendance-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	if rej, ok := attendance.AsRejection(err); ok {
		handleRejection(w, rej)
		return
	}

	switch {
	// Auth domain errors
	case errors.Is(err, auth.ErrInvalidCredentials):
		Unauthorized(w, err.Error())
	case errors.Is(err, auth.ErrInvalidToken):
		Unauthorized(w, "Invalid or expired token")
	case errors.Is(err, auth.ErrAdminDisabled):
		Forbidden(w, "Admin login is not configured")
	case errors.Is(err, auth.ErrAdminRequired):
		Forbidden(w, "Admin access required")
	case errors.Is(err, auth.ErrKioskRequired):
		Forbidden(w, "Kiosk or admin access required")

	// Employee domain errors
	case errors.Is(err, employee.ErrEmployeeNotFound):
		NotFound(w, "Employee not found")
	case errors.Is(err, employee.ErrInvalidEncoding):
		ValidationError(w, map[string]string{"encoding": err.Error()})

	// Recognition domain errors
	case errors.Is(err, recognition.ErrNoMatch):
		writeJSON(w, http.StatusNotFound, Response{
			Success: false,
			Error:   &ErrorDetail{Code: "NO_MATCH", Message: "Face not recognized"},
		})
	case errors.Is(err, recognition.ErrNoCandidates):
		writeJSON(w, http.StatusNotFound, Response{
			Success: false,
			Error:   &ErrorDetail{Code: "NO_CANDIDATES", Message: "No employees are enrolled yet"},
		})
	case errors.Is(err, recognition.ErrInvalidEncoding):
		ValidationError(w, map[string]string{"encoding": err.Error()})

	// Report domain errors
	case errors.Is(err, report.ErrInvalidPeriod):
		ValidationError(w, map[string]string{"period": err.Error()})

	// Attendance storage failures, duplicates included
	case errors.Is(err, attendance.ErrStorage):
		writeJSON(w, http.StatusInternalServerError, Response{
			Success: false,
			Error:   &ErrorDetail{Code: "STORAGE_ERROR", Message: "Attendance could not be saved, please try again"},
		})

	// Default
	default:
		InternalServerError(w, "An unexpected error occurred")
	}
}

func handleRejection(w http.ResponseWriter, rej *attendance.RejectionError) {
	result := attendance.NewRejectedResult(rej)
	code := string(rej.Reason)

	switch {
	case rej.Soft():
		Rejected(w, http.StatusOK, code, rej.Message, result)
	case errors.Is(rej, attendance.ErrTooSoon):
		w.Header().Set("Retry-After", strconv.Itoa(rej.RetryAfterSeconds))
		TooManyRequests(w, code, rej.Message, result)
	case errors.Is(rej, attendance.ErrUnknownEmployee):
		Rejected(w, http.StatusNotFound, code, rej.Message, result)
	case errors.Is(rej, attendance.ErrClockSkew):
		Rejected(w, http.StatusConflict, code, rej.Message, result)
	default:
		Rejected(w, http.StatusUnprocessableEntity, code, rej.Message, result)
	}
}
