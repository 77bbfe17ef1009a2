package attendance

import (
	"context"
	"time"
)

// AttendanceService defines the attendance decision engine
type AttendanceService interface {
	// RecordAttendance decides and persists the next MASUK/PULANG event for the employee at the given instant.
	// Rejections are returned as *RejectionError.
	RecordAttendance(ctx context.Context, employeeID string, at time.Time) (Result, error)

	// GetDayStatus derives the employee's state for the civil day containing at
	GetDayStatus(ctx context.Context, employeeID string, at time.Time) (DayStatusResponse, error)

	// ListDayEvents returns the ledger entries of one employee on one civil day
	ListDayEvents(ctx context.Context, filter DayEventsFilter) ([]EventResponse, error)
}
