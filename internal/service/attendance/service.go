package attendance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/cmlabs-hris/face-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/face-attendance-go/internal/domain/employee"
	"github.com/cmlabs-hris/face-attendance-go/internal/pkg/clock"
	"github.com/cmlabs-hris/face-attendance-go/internal/pkg/database"
	"github.com/cmlabs-hris/face-attendance-go/internal/pkg/metrics"
	"github.com/cmlabs-hris/face-attendance-go/internal/pkg/validator"
)

type AttendanceServiceImpl struct {
	tx database.Transactor
	attendance.AttendanceRepository
	employee.EmployeeRepository
	clock     clock.Clock
	policy    attendance.Policy
	publisher attendance.Publisher
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

// RecordAttendance implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) RecordAttendance(ctx context.Context, employeeID string, at time.Time) (attendance.Result, error) {
	req := attendance.RecordRequest{EmployeeID: employeeID}
	if err := req.Validate(); err != nil {
		return attendance.Result{}, err
	}
	employeeID = validator.NormalizeEmployeeID(employeeID)
	at = at.In(s.clock.Location()).Truncate(time.Second)

	start := time.Now()
	defer func() { s.metrics.ObserveDecisionLatency(time.Since(start)) }()

	var (
		recorded     attendance.Event
		employeeName string
	)
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		emp, err := s.EmployeeRepository.LockByID(ctx, employeeID)
		if err != nil {
			if errors.Is(err, employee.ErrEmployeeNotFound) {
				return &attendance.RejectionError{
					Reason:     attendance.ReasonUnknownEmployee,
					Message:    fmt.Sprintf("Employee %s is not registered", employeeID),
					EmployeeID: employeeID,
				}
			}
			return fmt.Errorf("%w: lock employee %s: %w", attendance.ErrStorage, employeeID, err)
		}
		employeeName = emp.Name

		last, err := s.AttendanceRepository.GetLastSince(ctx, employeeID, s.clock.StartOfDay(at))
		if err != nil {
			return fmt.Errorf("%w: %w", attendance.ErrStorage, err)
		}

		next, err := s.decide(emp, last, at)
		if err != nil {
			return err
		}

		recorded, err = s.AttendanceRepository.Create(ctx, next)
		if err != nil {
			return fmt.Errorf("%w: %w", attendance.ErrStorage, err)
		}
		return nil
	})

	if err != nil {
		if rej, ok := attendance.AsRejection(err); ok {
			s.metrics.IncrementDecision(string(rej.Reason))
			s.logRejection(ctx, rej)
			return attendance.Result{}, rej
		}
		s.metrics.IncrementDecision("STORAGE_ERROR")
		s.logger.ErrorContext(ctx, "Attendance decision failed", "employee_id", employeeID, "error", err)
		if !errors.Is(err, attendance.ErrStorage) {
			err = fmt.Errorf("%w: %w", attendance.ErrStorage, err)
		}
		return attendance.Result{}, err
	}

	s.metrics.IncrementDecision(string(recorded.Type))
	s.logger.InfoContext(ctx, "Attendance recorded",
		"employee_id", recorded.EmployeeID,
		"event_type", recorded.Type,
		"timestamp", recorded.Timestamp.Format(time.RFC3339),
	)

	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, recorded, employeeName); err != nil {
			s.logger.WarnContext(ctx, "Attendance event publish failed", "employee_id", recorded.EmployeeID, "error", err)
		}
	}

	return attendance.NewRecordedResult(recorded, employeeName), nil
}

// decide applies the debounce, transition and window rules to the day's
// latest event. It never touches storage.
func (s *AttendanceServiceImpl) decide(emp employee.Employee, last *attendance.Event, at time.Time) (attendance.Event, error) {
	reject := func(reason attendance.ReasonCode, target attendance.EventType, message string) *attendance.RejectionError {
		return &attendance.RejectionError{
			Reason:       reason,
			Message:      message,
			EmployeeID:   emp.ID,
			EmployeeName: emp.Name,
			TargetType:   target,
		}
	}

	if last != nil {
		// negative elapsed skips the debounce so the skew guard reports it
		elapsed := at.Sub(last.Timestamp)
		if elapsed >= 0 && elapsed < s.policy.MinInterval {
			retry := int(math.Ceil((s.policy.MinInterval - elapsed).Seconds()))
			rej := reject(attendance.ReasonTooSoon, "",
				fmt.Sprintf("%s, please wait %d seconds before trying again", emp.Name, retry))
			rej.RetryAfterSeconds = retry
			return attendance.Event{}, rej
		}
	}

	newEvent := func(t attendance.EventType) attendance.Event {
		return attendance.Event{
			EmployeeID: emp.ID,
			Type:       t,
			Timestamp:  at,
			WorkDate:   s.clock.StartOfDay(at),
		}
	}

	switch attendance.StateAfter(last) {
	case attendance.StateNone:
		if !s.policy.InMasukWindow(at) {
			return attendance.Event{}, reject(attendance.ReasonOutsideWindow, attendance.EventMasuk,
				fmt.Sprintf("Clock-in is only accepted between %s and %s",
					clock.FormatMinuteOfDay(s.policy.MasukStart), clock.FormatMinuteOfDay(s.policy.MasukEnd)))
		}
		return newEvent(attendance.EventMasuk), nil

	case attendance.StateClockedIn:
		if !s.policy.PulangOpen(at) {
			opens := clock.FormatMinuteOfDay(s.policy.PulangStart)
			if s.policy.EarlyPulang == attendance.EarlyPulangAcknowledge {
				return attendance.Event{}, reject(attendance.ReasonStillClockedIn, attendance.EventPulang,
					fmt.Sprintf("%s is still clocked in, clock-out opens at %s", emp.Name, opens))
			}
			return attendance.Event{}, reject(attendance.ReasonOutsideWindow, attendance.EventPulang,
				fmt.Sprintf("Clock-out is only accepted from %s", opens))
		}

		hours := attendance.WorkedHours(last.Timestamp, at)
		if hours.IsNegative() || at.Before(last.Timestamp) {
			return attendance.Event{}, reject(attendance.ReasonClockSkew, attendance.EventPulang,
				fmt.Sprintf("Clock-out time %s is before clock-in time %s",
					at.Format(time.RFC3339), last.Timestamp.In(at.Location()).Format(time.RFC3339)))
		}

		event := newEvent(attendance.EventPulang)
		event.WorkedHours = &hours
		return event, nil

	default:
		return attendance.Event{}, reject(attendance.ReasonAlreadyCompleted, "",
			fmt.Sprintf("%s has already completed attendance for today", emp.Name))
	}
}

func (s *AttendanceServiceImpl) logRejection(ctx context.Context, rej *attendance.RejectionError) {
	level := slog.LevelInfo
	if rej.Reason == attendance.ReasonClockSkew {
		level = slog.LevelError
	}
	s.logger.Log(ctx, level, "Attendance rejected",
		"employee_id", rej.EmployeeID,
		"reason", rej.Reason,
		"retry_after_seconds", rej.RetryAfterSeconds,
	)
}

// GetDayStatus implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) GetDayStatus(ctx context.Context, employeeID string, at time.Time) (attendance.DayStatusResponse, error) {
	employeeID = validator.NormalizeEmployeeID(employeeID)
	at = at.In(s.clock.Location())

	emp, err := s.EmployeeRepository.GetByID(ctx, employeeID)
	if err != nil {
		if errors.Is(err, employee.ErrEmployeeNotFound) {
			return attendance.DayStatusResponse{}, fmt.Errorf("employee %s: %w", employeeID, attendance.ErrUnknownEmployee)
		}
		return attendance.DayStatusResponse{}, fmt.Errorf("%w: %w", attendance.ErrStorage, err)
	}

	dayStart := s.clock.StartOfDay(at)
	events, err := s.AttendanceRepository.ListByEmployeeAndDay(ctx, employeeID, dayStart)
	if err != nil {
		return attendance.DayStatusResponse{}, fmt.Errorf("%w: %w", attendance.ErrStorage, err)
	}

	var last *attendance.Event
	if len(events) > 0 {
		last = &events[len(events)-1]
	}

	resp := attendance.DayStatusResponse{
		EmployeeID:   emp.ID,
		EmployeeName: emp.Name,
		Date:         dayStart.Format("2006-01-02"),
		State:        attendance.StateAfter(last),
		Events:       make([]attendance.EventResponse, 0, len(events)),
	}
	for _, e := range events {
		resp.Events = append(resp.Events, attendance.NewEventResponse(e))
	}

	switch resp.State {
	case attendance.StateNone:
		resp.NextEvent = attendance.EventMasuk
		resp.CanClockIn = s.policy.InMasukWindow(at)
		resp.Message = "Not clocked in yet"
	case attendance.StateClockedIn:
		resp.NextEvent = attendance.EventPulang
		resp.CanClockOut = s.policy.PulangOpen(at)
		resp.Message = "Clocked in since " + last.Timestamp.In(at.Location()).Format("15:04")
	default:
		if last.WorkedHours != nil {
			h := last.WorkedHours.InexactFloat64()
			resp.WorkedHours = &h
		}
		resp.Message = "Attendance for today is complete"
	}

	return resp, nil
}

// ListDayEvents implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) ListDayEvents(ctx context.Context, filter attendance.DayEventsFilter) ([]attendance.EventResponse, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}
	employeeID := validator.NormalizeEmployeeID(filter.EmployeeID)

	dayStart := s.clock.StartOfDay(s.clock.Now())
	if filter.Date != "" {
		d, _ := validator.IsValidDate(filter.Date)
		dayStart = time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, s.clock.Location())
	}

	events, err := s.AttendanceRepository.ListByEmployeeAndDay(ctx, employeeID, dayStart)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", attendance.ErrStorage, err)
	}

	responses := make([]attendance.EventResponse, 0, len(events))
	for _, e := range events {
		responses = append(responses, attendance.NewEventResponse(e))
	}
	return responses, nil
}

func NewAttendanceService(
	tx database.Transactor,
	attendanceRepo attendance.AttendanceRepository,
	employeeRepo employee.EmployeeRepository,
	clk clock.Clock,
	policy attendance.Policy,
	publisher attendance.Publisher,
	m *metrics.Metrics,
	logger *slog.Logger,
) attendance.AttendanceService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AttendanceServiceImpl{
		tx:                   tx,
		AttendanceRepository: attendanceRepo,
		EmployeeRepository:   employeeRepo,
		clock:                clk,
		policy:               policy,
		publisher:            publisher,
		metrics:              m,
		logger:               logger,
	}
}
