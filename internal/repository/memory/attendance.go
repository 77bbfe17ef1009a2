package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/cmlabs-hris/face-attendance-go/internal/domain/attendance"
	"github.com/google/uuid"
)

type attendanceRepository struct {
	store *Store
}

func NewAttendanceRepository(store *Store) attendance.AttendanceRepository {
	return &attendanceRepository{store: store}
}

// Create implements attendance.AttendanceRepository.
func (r *attendanceRepository) Create(ctx context.Context, event attendance.Event) (attendance.Event, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	day := event.WorkDate.Format("2006-01-02")
	for _, e := range s.events {
		if e.EmployeeID == event.EmployeeID && e.Type == event.Type && e.WorkDate.Format("2006-01-02") == day {
			return attendance.Event{}, fmt.Errorf("%s %s on %s: %w", event.EmployeeID, event.Type, day, attendance.ErrDuplicateEvent)
		}
	}

	if event.ID == "" {
		event.ID = uuid.Must(uuid.NewV7()).String()
	}
	event.CreatedAt = s.now()
	if event.WorkedHours != nil {
		h := *event.WorkedHours
		event.WorkedHours = &h
	}
	s.events = append(s.events, event)

	id := event.ID
	s.onRollback(ctx, func() {
		for i, e := range s.events {
			if e.ID == id {
				s.events = append(s.events[:i], s.events[i+1:]...)
				return
			}
		}
	})

	return event, nil
}

// GetLastSince implements attendance.AttendanceRepository.
func (r *attendanceRepository) GetLastSince(ctx context.Context, employeeID string, since time.Time) (*attendance.Event, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var last *attendance.Event
	for i := range r.store.events {
		e := r.store.events[i]
		if e.EmployeeID != employeeID || e.Timestamp.Before(since) {
			continue
		}
		// later insertion wins ties
		if last == nil || !e.Timestamp.Before(last.Timestamp) {
			found := e
			last = &found
		}
	}
	return last, nil
}

// ListByEmployeeAndDay implements attendance.AttendanceRepository.
func (r *attendanceRepository) ListByEmployeeAndDay(ctx context.Context, employeeID string, dayStart time.Time) ([]attendance.Event, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	dayEnd := dayStart.AddDate(0, 0, 1)
	events := make([]attendance.Event, 0, 2)
	for _, e := range r.store.events {
		if e.EmployeeID == employeeID && !e.Timestamp.Before(dayStart) && e.Timestamp.Before(dayEnd) {
			events = append(events, e)
		}
	}
	sort.SliceStable(events, func(i, j int) bool { return events[i].Timestamp.Before(events[j].Timestamp) })
	return events, nil
}
