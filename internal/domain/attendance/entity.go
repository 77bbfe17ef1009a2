package attendance

import (
	"fmt"
	"time"

	"github.com/cmlabs-hris/face-attendance-go/internal/pkg/clock"
	"github.com/shopspring/decimal"
)

type EventType string

const (
	EventMasuk  EventType = "MASUK"
	EventPulang EventType = "PULANG"
)

func (t EventType) Valid() bool {
	return t == EventMasuk || t == EventPulang
}

// Event is one immutable ledger entry.
type Event struct {
	ID         string
	EmployeeID string
	Type       EventType
	Timestamp  time.Time
	// WorkDate is the civil date of Timestamp in the deployment timezone.
	WorkDate time.Time
	// WorkedHours is set only on PULANG events.
	WorkedHours *decimal.Decimal
	CreatedAt   time.Time

	// DTO
	EmployeeName *string
}

// DayState is derived from the day's events, never stored.
type DayState string

const (
	StateNone       DayState = "NONE"
	StateClockedIn  DayState = "CLOCKED_IN"
	StateClockedOut DayState = "CLOCKED_OUT"
)

// StateAfter returns the day state given the latest event of the day (nil if none).
func StateAfter(last *Event) DayState {
	if last == nil {
		return StateNone
	}
	if last.Type == EventMasuk {
		return StateClockedIn
	}
	return StateClockedOut
}

// EarlyPulangPolicy decides what a PULANG attempt before the clock-out window returns.
type EarlyPulangPolicy string

const (
	EarlyPulangReject      EarlyPulangPolicy = "reject"
	EarlyPulangAcknowledge EarlyPulangPolicy = "acknowledge"
)

// Policy holds the time windows and debounce interval. Minutes are minute-of-day, bounds inclusive.
type Policy struct {
	MasukStart  int
	MasukEnd    int
	PulangStart int
	MinInterval time.Duration
	EarlyPulang EarlyPulangPolicy
}

func DefaultPolicy() Policy {
	return Policy{
		MasukStart:  18*60 + 40,
		MasukEnd:    23*60 + 49,
		PulangStart: 23*60 + 44,
		MinInterval: 60 * time.Second,
		EarlyPulang: EarlyPulangReject,
	}
}

func (p Policy) Validate() error {
	for name, m := range map[string]int{"masuk start": p.MasukStart, "masuk end": p.MasukEnd, "pulang start": p.PulangStart} {
		if m < 0 || m >= 24*60 {
			return fmt.Errorf("%s %d is not a minute of day", name, m)
		}
	}
	if p.MasukStart > p.MasukEnd {
		return fmt.Errorf("masuk window start %s is after end %s",
			clock.FormatMinuteOfDay(p.MasukStart), clock.FormatMinuteOfDay(p.MasukEnd))
	}
	if p.MinInterval < 0 {
		return fmt.Errorf("minimum interval must not be negative")
	}
	if p.EarlyPulang != EarlyPulangReject && p.EarlyPulang != EarlyPulangAcknowledge {
		return fmt.Errorf("early pulang policy must be %q or %q", EarlyPulangReject, EarlyPulangAcknowledge)
	}
	return nil
}

func (p Policy) InMasukWindow(at time.Time) bool {
	m := clock.MinuteOfDay(at)
	return m >= p.MasukStart && m <= p.MasukEnd
}

func (p Policy) PulangOpen(at time.Time) bool {
	return clock.MinuteOfDay(at) >= p.PulangStart
}

var secondsPerHour = decimal.NewFromInt(3600)

// WorkedHours returns (pulang - masuk) in hours rounded to 2 decimals.
// The result is negative when pulang precedes masuk; callers reject that.
func WorkedHours(masuk, pulang time.Time) decimal.Decimal {
	seconds := int64(pulang.Sub(masuk) / time.Second)
	return decimal.NewFromInt(seconds).DivRound(secondsPerHour, 2)
}
