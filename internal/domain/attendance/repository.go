package attendance

import (
	"context"
	"time"
)

// AttendanceRepository is the append-only attendance ledger.
type AttendanceRepository interface {
	// Create appends an event. Returns ErrDuplicateEvent when the employee
	// already has an event of the same type on the same work date.
	Create(ctx context.Context, event Event) (Event, error)

	// GetLastSince returns the employee's most recent event with timestamp >= since,
	// or nil when there is none.
	GetLastSince(ctx context.Context, employeeID string, since time.Time) (*Event, error)

	// ListByEmployeeAndDay returns the employee's events in [dayStart, dayStart+1d) ordered by timestamp.
	ListByEmployeeAndDay(ctx context.Context, employeeID string, dayStart time.Time) ([]Event, error)
}

// Publisher receives events after they are committed.
type Publisher interface {
	Publish(ctx context.Context, event Event, employeeName string) error
}
