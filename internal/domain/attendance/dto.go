package attendance

import (
	"time"

	"github.com/cmlabs-hris/face-attendance-go/internal/pkg/validator"
)

// ========================================
// ATTENDANCE DTOs
// ========================================

type RecordRequest struct {
	EmployeeID string `json:"employee_id"`
}

func (r *RecordRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_id",
			Message: "employee_id is required",
		})
	} else if !validator.IsValidEmployeeID(validator.NormalizeEmployeeID(r.EmployeeID)) {
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

// Result is what the terminal shows after an attendance attempt.
type Result struct {
	Success           bool       `json:"success"`
	EventType         EventType  `json:"event_type,omitempty"`
	EmployeeID        string     `json:"employee_id"`
	EmployeeName      string     `json:"employee_name,omitempty"`
	Timestamp         string     `json:"timestamp,omitempty"`
	WorkedHours       *float64   `json:"worked_hours,omitempty"`
	ReasonCode        ReasonCode `json:"reason_code,omitempty"`
	RetryAfterSeconds int        `json:"retry_after_seconds,omitempty"`
	Message           string     `json:"message"`

	// Scan only
	Distance *float64 `json:"distance,omitempty"`
}

// NewRecordedResult builds the success result for a persisted event.
func NewRecordedResult(event Event, employeeName string) Result {
	res := Result{
		Success:      true,
		EventType:    event.Type,
		EmployeeID:   event.EmployeeID,
		EmployeeName: employeeName,
		Timestamp:    event.Timestamp.Format(time.RFC3339),
	}
	if event.WorkedHours != nil {
		h := event.WorkedHours.InexactFloat64()
		res.WorkedHours = &h
		res.Message = "Clock-out recorded for " + employeeName + ", worked " + event.WorkedHours.StringFixed(2) + " hours"
	} else {
		res.Message = "Clock-in recorded for " + employeeName
	}
	return res
}

// NewRejectedResult renders a rejection for the terminal.
func NewRejectedResult(rej *RejectionError) Result {
	return Result{
		Success:           false,
		EventType:         rej.TargetType,
		EmployeeID:        rej.EmployeeID,
		EmployeeName:      rej.EmployeeName,
		ReasonCode:        rej.Reason,
		RetryAfterSeconds: rej.RetryAfterSeconds,
		Message:           rej.Message,
	}
}

type EventResponse struct {
	ID          string    `json:"id"`
	EmployeeID  string    `json:"employee_id"`
	EventType   EventType `json:"event_type"`
	Timestamp   string    `json:"timestamp"`
	WorkDate    string    `json:"work_date"`
	WorkedHours *float64  `json:"worked_hours,omitempty"`
}

func NewEventResponse(e Event) EventResponse {
	resp := EventResponse{
		ID:         e.ID,
		EmployeeID: e.EmployeeID,
		EventType:  e.Type,
		Timestamp:  e.Timestamp.Format(time.RFC3339),
		WorkDate:   e.WorkDate.Format("2006-01-02"),
	}
	if e.WorkedHours != nil {
		h := e.WorkedHours.InexactFloat64()
		resp.WorkedHours = &h
	}
	return resp
}

type DayStatusResponse struct {
	EmployeeID   string          `json:"employee_id"`
	EmployeeName string          `json:"employee_name"`
	Date         string          `json:"date"`
	State        DayState        `json:"state"`
	NextEvent    EventType       `json:"next_event,omitempty"`
	CanClockIn   bool            `json:"can_clock_in"`
	CanClockOut  bool            `json:"can_clock_out"`
	WorkedHours  *float64        `json:"worked_hours,omitempty"`
	Events       []EventResponse `json:"events"`
	Message      string          `json:"message"`
}

type DayEventsFilter struct {
	EmployeeID string `json:"employee_id"`
	Date       string `json:"date"`
}

func (f *DayEventsFilter) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(f.EmployeeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_id",
			Message: "employee_id is required",
		})
	}

	if f.Date != "" {
		if _, ok := validator.IsValidDate(f.Date); !ok {
			errs = append(errs, validator.ValidationError{
				Field:   "date",
				Message: "date must be in YYYY-MM-DD format",
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}
