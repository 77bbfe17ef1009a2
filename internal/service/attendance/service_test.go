package attendance

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/cmlabs-hris/face-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/face-attendance-go/internal/domain/employee"
	"github.com/cmlabs-hris/face-attendance-go/internal/pkg/clock"
	"github.com/cmlabs-hris/face-attendance-go/internal/pkg/metrics"
	"github.com/cmlabs-hris/face-attendance-go/internal/pkg/sse"
	"github.com/cmlabs-hris/face-attendance-go/internal/pkg/validator"
	"github.com/cmlabs-hris/face-attendance-go/internal/repository/memory"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var wib = time.FixedZone("WIB", 7*60*60)

func at(h, m, s int) time.Time {
	return time.Date(2025, 10, 3, h, m, s, 0, wib)
}

type fixture struct {
	svc     attendance.AttendanceService
	events  attendance.AttendanceRepository
	clock   *clock.Fixed
	hub     *sse.Hub
	metrics *metrics.Metrics
}

func newFixture(t *testing.T, policy attendance.Policy) *fixture {
	t.Helper()

	store := memory.NewStore()
	employees := memory.NewEmployeeRepository(store)
	for id, name := range map[string]string{"E1": "Budi", "E2": "Siti"} {
		_, _, err := employees.Upsert(context.Background(), employee.Employee{
			ID: id, Name: name, FaceEncoding: make([]float64, validator.EncodingLength),
		})
		require.NoError(t, err)
	}

	f := &fixture{
		events:  memory.NewAttendanceRepository(store),
		clock:   clock.NewFixed(at(18, 45, 0)),
		hub:     sse.NewHub(),
		metrics: metrics.NewWithRegistry(prometheus.NewRegistry()),
	}
	f.svc = NewAttendanceService(
		memory.NewTxManager(store), f.events, employees,
		f.clock, policy, NewFeedPublisher(f.hub), f.metrics, nil,
	)
	return f
}

func (f *fixture) dayEvents(t *testing.T, employeeID string) []attendance.Event {
	t.Helper()
	events, err := f.events.ListByEmployeeAndDay(context.Background(), employeeID, at(0, 0, 0))
	require.NoError(t, err)
	return events
}

func requireRejection(t *testing.T, err error, reason attendance.ReasonCode) *attendance.RejectionError {
	t.Helper()
	require.Error(t, err)
	rej, ok := attendance.AsRejection(err)
	require.True(t, ok, "expected rejection, got %v", err)
	require.Equal(t, reason, rej.Reason)
	return rej
}

func TestRecordAttendance_MasukWithinWindow(t *testing.T) {
	f := newFixture(t, attendance.DefaultPolicy())

	res, err := f.svc.RecordAttendance(context.Background(), "E1", at(18, 45, 0))
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, attendance.EventMasuk, res.EventType)
	assert.Equal(t, "Budi", res.EmployeeName)
	assert.Nil(t, res.WorkedHours)

	events := f.dayEvents(t, "E1")
	require.Len(t, events, 1)
	assert.Equal(t, attendance.EventMasuk, events[0].Type)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.AttendanceDecisions.WithLabelValues("MASUK")))
}

func TestRecordAttendance_DebounceThenPulangWindow(t *testing.T) {
	f := newFixture(t, attendance.DefaultPolicy())
	ctx := context.Background()

	_, err := f.svc.RecordAttendance(ctx, "E1", at(18, 45, 0))
	require.NoError(t, err)

	_, err = f.svc.RecordAttendance(ctx, "E1", at(18, 45, 30))
	rej := requireRejection(t, err, attendance.ReasonTooSoon)
	assert.ErrorIs(t, err, attendance.ErrTooSoon)
	assert.Equal(t, 30, rej.RetryAfterSeconds)

	// past the debounce the target becomes PULANG, which is not open before 23:44
	_, err = f.svc.RecordAttendance(ctx, "E1", at(18, 46, 0))
	rej = requireRejection(t, err, attendance.ReasonOutsideWindow)
	assert.Equal(t, attendance.EventPulang, rej.TargetType)

	assert.Len(t, f.dayEvents(t, "E1"), 1)
}

func TestRecordAttendance_RetryAfterRoundsUp(t *testing.T) {
	f := newFixture(t, attendance.DefaultPolicy())
	ctx := context.Background()

	_, err := f.svc.RecordAttendance(ctx, "E1", at(19, 0, 0))
	require.NoError(t, err)

	_, err = f.svc.RecordAttendance(ctx, "E1", at(19, 0, 1))
	rej := requireRejection(t, err, attendance.ReasonTooSoon)
	assert.Equal(t, 59, rej.RetryAfterSeconds)
}

func TestRecordAttendance_PulangComputesWorkedHours(t *testing.T) {
	cases := []struct {
		name   string
		masuk  time.Time
		pulang time.Time
		want   string
	}{
		{"two and a half hours", at(21, 15, 0), at(23, 45, 0), "2.50"},
		{"rounds to two decimals", at(19, 0, 0), at(23, 50, 20), "4.84"},
		{"rounds half up", at(19, 0, 0), at(23, 48, 18), "4.81"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t, attendance.DefaultPolicy())
			ctx := context.Background()

			_, err := f.svc.RecordAttendance(ctx, "E1", tc.masuk)
			require.NoError(t, err)

			res, err := f.svc.RecordAttendance(ctx, "E1", tc.pulang)
			require.NoError(t, err)
			assert.Equal(t, attendance.EventPulang, res.EventType)
			require.NotNil(t, res.WorkedHours)

			events := f.dayEvents(t, "E1")
			require.Len(t, events, 2)
			require.NotNil(t, events[1].WorkedHours)
			assert.Equal(t, tc.want, events[1].WorkedHours.StringFixed(2))
		})
	}
}

func TestRecordAttendance_AlreadyCompleted(t *testing.T) {
	f := newFixture(t, attendance.DefaultPolicy())
	ctx := context.Background()

	_, err := f.svc.RecordAttendance(ctx, "E1", at(19, 0, 0))
	require.NoError(t, err)
	_, err = f.svc.RecordAttendance(ctx, "E1", at(23, 50, 0))
	require.NoError(t, err)

	_, err = f.svc.RecordAttendance(ctx, "E1", at(23, 55, 0))
	rej := requireRejection(t, err, attendance.ReasonAlreadyCompleted)
	assert.True(t, rej.Soft())
	assert.ErrorIs(t, err, attendance.ErrAlreadyCompleted)
	assert.Len(t, f.dayEvents(t, "E1"), 2)
}

func TestRecordAttendance_PulangBeforeMasukIsRejected(t *testing.T) {
	f := newFixture(t, attendance.DefaultPolicy())

	_, err := f.svc.RecordAttendance(context.Background(), "E1", at(23, 50, 0))
	rej := requireRejection(t, err, attendance.ReasonOutsideWindow)
	assert.Equal(t, attendance.EventMasuk, rej.TargetType)
	assert.Empty(t, f.dayEvents(t, "E1"))
}

func TestRecordAttendance_ClockSkew(t *testing.T) {
	f := newFixture(t, attendance.DefaultPolicy())
	ctx := context.Background()

	_, err := f.svc.RecordAttendance(ctx, "E1", at(23, 48, 0))
	require.NoError(t, err)

	// earlier than the recorded MASUK but inside the PULANG window
	_, err = f.svc.RecordAttendance(ctx, "E1", at(23, 45, 0))
	requireRejection(t, err, attendance.ReasonClockSkew)
	assert.ErrorIs(t, err, attendance.ErrClockSkew)
	assert.Len(t, f.dayEvents(t, "E1"), 1)
}

func TestRecordAttendance_WindowBoundsAreInclusive(t *testing.T) {
	cases := []struct {
		at time.Time
		ok bool
	}{
		{at(18, 39, 59), false},
		{at(18, 40, 0), true},
		{at(23, 49, 59), true},
		{at(23, 50, 0), false},
	}
	for _, tc := range cases {
		t.Run(tc.at.Format("15:04:05"), func(t *testing.T) {
			f := newFixture(t, attendance.DefaultPolicy())
			_, err := f.svc.RecordAttendance(context.Background(), "E1", tc.at)
			if tc.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, attendance.ErrOutsideWindow)
			}
		})
	}
}

func TestRecordAttendance_AcknowledgeEarlyPulang(t *testing.T) {
	policy := attendance.DefaultPolicy()
	policy.EarlyPulang = attendance.EarlyPulangAcknowledge
	f := newFixture(t, policy)
	ctx := context.Background()

	_, err := f.svc.RecordAttendance(ctx, "E1", at(19, 0, 0))
	require.NoError(t, err)

	_, err = f.svc.RecordAttendance(ctx, "E1", at(20, 0, 0))
	rej := requireRejection(t, err, attendance.ReasonStillClockedIn)
	assert.True(t, rej.Soft())
	assert.Len(t, f.dayEvents(t, "E1"), 1)
}

func TestRecordAttendance_UnknownEmployee(t *testing.T) {
	f := newFixture(t, attendance.DefaultPolicy())

	_, err := f.svc.RecordAttendance(context.Background(), "GHOST", at(19, 0, 0))
	requireRejection(t, err, attendance.ReasonUnknownEmployee)
	assert.ErrorIs(t, err, attendance.ErrUnknownEmployee)
}

func TestRecordAttendance_ValidatesID(t *testing.T) {
	f := newFixture(t, attendance.DefaultPolicy())

	_, err := f.svc.RecordAttendance(context.Background(), "  ", at(19, 0, 0))
	var verrs validator.ValidationErrors
	assert.ErrorAs(t, err, &verrs)
}

func TestRecordAttendance_NormalizesID(t *testing.T) {
	f := newFixture(t, attendance.DefaultPolicy())

	res, err := f.svc.RecordAttendance(context.Background(), " e1 ", at(19, 0, 0))
	require.NoError(t, err)
	assert.Equal(t, "E1", res.EmployeeID)
}

func TestRecordAttendance_NewDayStartsFresh(t *testing.T) {
	f := newFixture(t, attendance.DefaultPolicy())
	ctx := context.Background()

	_, err := f.svc.RecordAttendance(ctx, "E1", at(19, 0, 0))
	require.NoError(t, err)
	_, err = f.svc.RecordAttendance(ctx, "E1", at(23, 50, 0))
	require.NoError(t, err)

	res, err := f.svc.RecordAttendance(ctx, "E1", at(19, 0, 0).AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.Equal(t, attendance.EventMasuk, res.EventType)
}

func TestRecordAttendance_ConcurrentAttemptsRecordOnce(t *testing.T) {
	f := newFixture(t, attendance.DefaultPolicy())
	ctx := context.Background()

	const attempts = 16
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		tooSoon   int
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.RecordAttendance(ctx, "E1", at(19, 0, 0))
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case errors.Is(err, attendance.ErrTooSoon):
				tooSoon++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, attempts-1, tooSoon)
	assert.Len(t, f.dayEvents(t, "E1"), 1)
}

func TestRecordAttendance_EmployeesAreIndependent(t *testing.T) {
	f := newFixture(t, attendance.DefaultPolicy())
	ctx := context.Background()

	_, err := f.svc.RecordAttendance(ctx, "E1", at(19, 0, 0))
	require.NoError(t, err)
	_, err = f.svc.RecordAttendance(ctx, "E2", at(19, 0, 0))
	require.NoError(t, err)
}

func TestRecordAttendance_PublishesToFeed(t *testing.T) {
	f := newFixture(t, attendance.DefaultPolicy())
	feed, cleanup := f.hub.Subscribe(sse.TopicAttendance)
	defer cleanup()

	_, err := f.svc.RecordAttendance(context.Background(), "E1", at(19, 0, 0))
	require.NoError(t, err)

	select {
	case ev := <-feed:
		msg, ok := ev.Data.(EventMessage)
		require.True(t, ok)
		assert.Equal(t, "E1", msg.EmployeeID)
		assert.Equal(t, "MASUK", msg.EventType)
	default:
		t.Fatal("no event published")
	}
}

// staleReads hides existing events so the engine retries a transition the ledger already holds.
type staleReads struct {
	attendance.AttendanceRepository
}

func (staleReads) GetLastSince(context.Context, string, time.Time) (*attendance.Event, error) {
	return nil, nil
}

type failingCreate struct {
	attendance.AttendanceRepository
}

func (failingCreate) Create(context.Context, attendance.Event) (attendance.Event, error) {
	return attendance.Event{}, errors.New("connection reset")
}

func TestRecordAttendance_StorageErrors(t *testing.T) {
	store := memory.NewStore()
	employees := memory.NewEmployeeRepository(store)
	_, _, err := employees.Upsert(context.Background(), employee.Employee{ID: "E1", Name: "Budi", FaceEncoding: make([]float64, 128)})
	require.NoError(t, err)
	events := memory.NewAttendanceRepository(store)
	clk := clock.NewFixed(at(19, 0, 0))

	t.Run("duplicate event", func(t *testing.T) {
		svc := NewAttendanceService(memory.NewTxManager(store), events, employees, clk, attendance.DefaultPolicy(), nil, nil, nil)
		_, err := svc.RecordAttendance(context.Background(), "E1", at(19, 0, 0))
		require.NoError(t, err)

		stale := NewAttendanceService(memory.NewTxManager(store), staleReads{events}, employees, clk, attendance.DefaultPolicy(), nil, nil, nil)
		_, err = stale.RecordAttendance(context.Background(), "E1", at(19, 5, 0))
		assert.ErrorIs(t, err, attendance.ErrStorage)
		assert.ErrorIs(t, err, attendance.ErrDuplicateEvent)
	})

	t.Run("write failure", func(t *testing.T) {
		svc := NewAttendanceService(memory.NewTxManager(store), failingCreate{events}, employees, clk, attendance.DefaultPolicy(), nil, nil, nil)
		_, err := svc.RecordAttendance(context.Background(), "E1", at(19, 0, 0).AddDate(0, 0, 1))
		assert.ErrorIs(t, err, attendance.ErrStorage)
		_, isRejection := attendance.AsRejection(err)
		assert.False(t, isRejection)
	})
}

func TestGetDayStatus(t *testing.T) {
	f := newFixture(t, attendance.DefaultPolicy())
	ctx := context.Background()

	status, err := f.svc.GetDayStatus(ctx, "E1", at(19, 0, 0))
	require.NoError(t, err)
	assert.Equal(t, attendance.StateNone, status.State)
	assert.Equal(t, attendance.EventMasuk, status.NextEvent)
	assert.True(t, status.CanClockIn)

	_, err = f.svc.RecordAttendance(ctx, "E1", at(19, 0, 0))
	require.NoError(t, err)

	status, err = f.svc.GetDayStatus(ctx, "E1", at(20, 0, 0))
	require.NoError(t, err)
	assert.Equal(t, attendance.StateClockedIn, status.State)
	assert.False(t, status.CanClockOut)
	require.Len(t, status.Events, 1)

	_, err = f.svc.RecordAttendance(ctx, "E1", at(23, 45, 0))
	require.NoError(t, err)

	status, err = f.svc.GetDayStatus(ctx, "e1", at(23, 59, 0))
	require.NoError(t, err)
	assert.Equal(t, attendance.StateClockedOut, status.State)
	require.NotNil(t, status.WorkedHours)
	assert.InDelta(t, 4.75, *status.WorkedHours, 0.0001)

	_, err = f.svc.GetDayStatus(ctx, "GHOST", at(19, 0, 0))
	assert.ErrorIs(t, err, attendance.ErrUnknownEmployee)
}

func TestListDayEvents(t *testing.T) {
	f := newFixture(t, attendance.DefaultPolicy())
	ctx := context.Background()

	_, err := f.svc.RecordAttendance(ctx, "E1", at(19, 0, 0))
	require.NoError(t, err)

	events, err := f.svc.ListDayEvents(ctx, attendance.DayEventsFilter{EmployeeID: "e1", Date: "2025-10-03"})
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "2025-10-03", events[0].WorkDate)

	// defaults to the clock's current day
	f.clock.Set(at(21, 0, 0))
	events, err = f.svc.ListDayEvents(ctx, attendance.DayEventsFilter{EmployeeID: "E1"})
	require.NoError(t, err)
	assert.Len(t, events, 1)

	_, err = f.svc.ListDayEvents(ctx, attendance.DayEventsFilter{EmployeeID: "E1", Date: "03-10-2025"})
	var verrs validator.ValidationErrors
	assert.ErrorAs(t, err, &verrs)
}
