package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/face-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/face-attendance-go/internal/domain/employee"
	"github.com/cmlabs-hris/face-attendance-go/internal/pkg/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

type attendanceRepository struct {
	db *database.DB
}

const eventColumns = `id, employee_id, event_type, occurred_at, work_date, worked_hours::text, created_at`

// Create implements attendance.AttendanceRepository.
func (a *attendanceRepository) Create(ctx context.Context, event attendance.Event) (attendance.Event, error) {
	q := GetQuerier(ctx, a.db)

	if event.ID == "" {
		event.ID = uuid.Must(uuid.NewV7()).String()
	}

	var workedHours *string
	if event.WorkedHours != nil {
		s := event.WorkedHours.StringFixed(2)
		workedHours = &s
	}

	query := `
		INSERT INTO attendance_events (
			id, employee_id, event_type, occurred_at, work_date, worked_hours
		) VALUES (
			$1, $2, $3, $4, $5, CAST($6::text AS NUMERIC)
		) RETURNING created_at
	`

	err := q.QueryRow(ctx, query,
		event.ID,
		event.EmployeeID,
		string(event.Type),
		event.Timestamp,
		dateOnly(event.WorkDate),
		workedHours,
	).Scan(&event.CreatedAt)

	if err != nil {
		if isPgError(err, uniqueViolation) {
			return attendance.Event{}, fmt.Errorf("%s %s on %s: %w",
				event.EmployeeID, event.Type, event.WorkDate.Format("2006-01-02"), attendance.ErrDuplicateEvent)
		}
		if isPgError(err, foreignKeyViolation) {
			return attendance.Event{}, fmt.Errorf("employee %s: %w", event.EmployeeID, employee.ErrEmployeeNotFound)
		}
		return attendance.Event{}, fmt.Errorf("failed to create attendance event: %w", err)
	}

	return event, nil
}

// GetLastSince implements attendance.AttendanceRepository.
func (a *attendanceRepository) GetLastSince(ctx context.Context, employeeID string, since time.Time) (*attendance.Event, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		SELECT ` + eventColumns + `
		FROM attendance_events
		WHERE employee_id = $1
		  AND occurred_at >= $2
		ORDER BY occurred_at DESC, created_at DESC
		LIMIT 1
	`

	event, err := scanEvent(q.QueryRow(ctx, query, employeeID, since))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get last attendance event: %w", err)
	}

	return &event, nil
}

// ListByEmployeeAndDay implements attendance.AttendanceRepository.
func (a *attendanceRepository) ListByEmployeeAndDay(ctx context.Context, employeeID string, dayStart time.Time) ([]attendance.Event, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		SELECT ` + eventColumns + `
		FROM attendance_events
		WHERE employee_id = $1
		  AND occurred_at >= $2
		  AND occurred_at < $3
		ORDER BY occurred_at ASC, created_at ASC
	`

	rows, err := q.Query(ctx, query, employeeID, dayStart, dayStart.AddDate(0, 0, 1))
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance events: %w", err)
	}
	defer rows.Close()

	events := make([]attendance.Event, 0, 2)
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attendance event: %w", err)
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate attendance events: %w", err)
	}

	return events, nil
}

func scanEvent(row pgx.Row) (attendance.Event, error) {
	var (
		event       attendance.Event
		eventType   string
		workedHours *string
	)
	if err := row.Scan(
		&event.ID, &event.EmployeeID, &eventType, &event.Timestamp,
		&event.WorkDate, &workedHours, &event.CreatedAt,
	); err != nil {
		return attendance.Event{}, err
	}
	event.Type = attendance.EventType(eventType)

	if workedHours != nil {
		d, err := decimal.NewFromString(*workedHours)
		if err != nil {
			return attendance.Event{}, fmt.Errorf("parse worked hours %q: %w", *workedHours, err)
		}
		event.WorkedHours = &d
	}

	return event, nil
}

// dateOnly keeps the civil date of t as a UTC midnight so the DATE column
// stores the same calendar day regardless of t's zone.
func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func NewAttendanceRepository(db *database.DB) attendance.AttendanceRepository {
	return &attendanceRepository{db: db}
}
