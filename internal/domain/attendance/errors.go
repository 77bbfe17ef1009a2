package attendance

import (
	"errors"
	"fmt"
)

// Attendance domain errors
var (
	// Decision rejections
	ErrUnknownEmployee  = errors.New("employee is not registered")
	ErrTooSoon          = errors.New("attendance attempted again too soon")
	ErrOutsideWindow    = errors.New("attendance is outside the allowed time window")
	ErrClockSkew        = errors.New("clock-out precedes the recorded clock-in")
	ErrAlreadyCompleted = errors.New("attendance for today is already complete")
	ErrStillClockedIn   = errors.New("still clocked in, clock-out window not open yet")

	// Storage errors
	ErrStorage        = errors.New("attendance storage failure")
	ErrDuplicateEvent = errors.New("attendance event already recorded for this day")
)

type ReasonCode string

const (
	ReasonUnknownEmployee  ReasonCode = "UNKNOWN_EMPLOYEE"
	ReasonTooSoon          ReasonCode = "TOO_SOON"
	ReasonOutsideWindow    ReasonCode = "OUTSIDE_WINDOW"
	ReasonClockSkew        ReasonCode = "CLOCK_SKEW"
	ReasonAlreadyCompleted ReasonCode = "ALREADY_COMPLETED"
	ReasonStillClockedIn   ReasonCode = "STILL_CLOCKED_IN"
)

var reasonErrors = map[ReasonCode]error{
	ReasonUnknownEmployee:  ErrUnknownEmployee,
	ReasonTooSoon:          ErrTooSoon,
	ReasonOutsideWindow:    ErrOutsideWindow,
	ReasonClockSkew:        ErrClockSkew,
	ReasonAlreadyCompleted: ErrAlreadyCompleted,
	ReasonStillClockedIn:   ErrStillClockedIn,
}

// RejectionError is a side-effect free refusal of an attendance attempt.
type RejectionError struct {
	Reason            ReasonCode
	Message           string
	EmployeeID        string
	EmployeeName      string
	TargetType        EventType
	RetryAfterSeconds int
}

func (e *RejectionError) Error() string {
	return fmt.Sprintf("%s: %s", e.Reason, e.Message)
}

// Unwrap exposes the reason sentinel so callers can use errors.Is.
func (e *RejectionError) Unwrap() error {
	return reasonErrors[e.Reason]
}

// Soft reports rejections that are informational rather than failures.
func (e *RejectionError) Soft() bool {
	return e.Reason == ReasonAlreadyCompleted || e.Reason == ReasonStillClockedIn
}

// AsRejection extracts a RejectionError from err.
func AsRejection(err error) (*RejectionError, bool) {
	var rej *RejectionError
	if errors.As(err, &rej) {
		return rej, true
	}
	return nil, false
}
