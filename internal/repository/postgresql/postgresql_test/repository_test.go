//go:build integration

package postgresql_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/cmlabs-hris/face-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/face-attendance-go/internal/domain/employee"
	"github.com/cmlabs-hris/face-attendance-go/internal/domain/report"
	"github.com/cmlabs-hris/face-attendance-go/internal/repository/postgresql"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var wib = time.FixedZone("WIB", 7*60*60)

func encoding(seed float64) []float64 {
	enc := make([]float64, 128)
	for i := range enc {
		enc[i] = seed + float64(i)/1000
	}
	return enc
}

func hours(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func seedEmployee(t *testing.T, id, name string) {
	t.Helper()
	_, _, err := postgresql.NewEmployeeRepository(testDB).Upsert(context.Background(), employee.Employee{
		ID: id, Name: name, FaceEncoding: encoding(0.1),
	})
	require.NoError(t, err)
}

func event(id string, typ attendance.EventType, at time.Time, worked *decimal.Decimal) attendance.Event {
	return attendance.Event{
		EmployeeID:  id,
		Type:        typ,
		Timestamp:   at,
		WorkDate:    time.Date(at.Year(), at.Month(), at.Day(), 0, 0, 0, 0, wib),
		WorkedHours: worked,
	}
}

func TestEmployeeRepository_UpsertCreatedThenUpdated(t *testing.T) {
	truncate(t)
	ctx := context.Background()
	repo := postgresql.NewEmployeeRepository(testDB)

	saved, created, err := repo.Upsert(ctx, employee.Employee{ID: "E1", Name: "Budi", FaceEncoding: encoding(0.1)})
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "Budi", saved.Name)

	saved, created, err = repo.Upsert(ctx, employee.Employee{ID: "E1", Name: "Budi Santoso", FaceEncoding: encoding(0.2)})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, "Budi Santoso", saved.Name)

	got, err := repo.GetByID(ctx, "E1")
	require.NoError(t, err)
	assert.Equal(t, "Budi Santoso", got.Name)
	assert.InDeltaSlice(t, encoding(0.2), got.FaceEncoding, 1e-12)

	all, err := repo.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	_, err = repo.GetByID(ctx, "E404")
	assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)
}

func TestAttendanceRepository_CreateAndQuery(t *testing.T) {
	truncate(t)
	seedEmployee(t, "E1", "Budi")
	ctx := context.Background()
	repo := postgresql.NewAttendanceRepository(testDB)

	masukAt := time.Date(2025, 10, 3, 18, 45, 0, 0, wib)
	masuk, err := repo.Create(ctx, event("E1", attendance.EventMasuk, masukAt, nil))
	require.NoError(t, err)
	assert.NotEmpty(t, masuk.ID)

	pulangAt := time.Date(2025, 10, 3, 23, 45, 0, 0, wib)
	_, err = repo.Create(ctx, event("E1", attendance.EventPulang, pulangAt, hours("5.00")))
	require.NoError(t, err)

	last, err := repo.GetLastSince(ctx, "E1", time.Date(2025, 10, 3, 0, 0, 0, 0, wib))
	require.NoError(t, err)
	require.NotNil(t, last)
	assert.Equal(t, attendance.EventPulang, last.Type)
	assert.True(t, last.Timestamp.Equal(pulangAt))
	require.NotNil(t, last.WorkedHours)
	assert.Equal(t, "5.00", last.WorkedHours.StringFixed(2))

	none, err := repo.GetLastSince(ctx, "E1", time.Date(2025, 10, 4, 0, 0, 0, 0, wib))
	require.NoError(t, err)
	assert.Nil(t, none)

	events, err := repo.ListByEmployeeAndDay(ctx, "E1", time.Date(2025, 10, 3, 0, 0, 0, 0, wib))
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, attendance.EventMasuk, events[0].Type)
	assert.Nil(t, events[0].WorkedHours)
	assert.Equal(t, "2025-10-03", events[1].WorkDate.Format("2006-01-02"))
}

func TestAttendanceRepository_DuplicateEvent(t *testing.T) {
	truncate(t)
	seedEmployee(t, "E1", "Budi")
	ctx := context.Background()
	repo := postgresql.NewAttendanceRepository(testDB)

	at := time.Date(2025, 10, 3, 18, 45, 0, 0, wib)
	_, err := repo.Create(ctx, event("E1", attendance.EventMasuk, at, nil))
	require.NoError(t, err)

	_, err = repo.Create(ctx, event("E1", attendance.EventMasuk, at.Add(2*time.Minute), nil))
	assert.ErrorIs(t, err, attendance.ErrDuplicateEvent)

	_, err = repo.Create(ctx, event("E9", attendance.EventMasuk, at, nil))
	assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)
}

func TestTxManager_RollbackOnError(t *testing.T) {
	truncate(t)
	seedEmployee(t, "E1", "Budi")
	ctx := context.Background()
	tx := postgresql.NewTxManager(testDB)
	repo := postgresql.NewAttendanceRepository(testDB)

	boom := errors.New("boom")
	err := tx.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := repo.Create(ctx, event("E1", attendance.EventMasuk, time.Date(2025, 10, 3, 18, 45, 0, 0, wib), nil)); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	events, err := repo.ListByEmployeeAndDay(ctx, "E1", time.Date(2025, 10, 3, 0, 0, 0, 0, wib))
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestEmployeeRepository_LockSerializes(t *testing.T) {
	truncate(t)
	seedEmployee(t, "E1", "Budi")
	ctx := context.Background()
	tx := postgresql.NewTxManager(testDB)
	employees := postgresql.NewEmployeeRepository(testDB)

	var (
		mu     sync.Mutex
		active int
		peak   int
		wg     sync.WaitGroup
	)
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := tx.WithinTx(ctx, func(ctx context.Context) error {
				if _, err := employees.LockByID(ctx, "E1"); err != nil {
					return err
				}
				mu.Lock()
				active++
				if active > peak {
					peak = active
				}
				mu.Unlock()

				time.Sleep(50 * time.Millisecond)

				mu.Lock()
				active--
				mu.Unlock()
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, peak)
}

func TestReportRepository_SummarizeMonthly(t *testing.T) {
	truncate(t)
	seedEmployee(t, "E1", "Budi")
	seedEmployee(t, "E2", "Siti")
	ctx := context.Background()
	events := postgresql.NewAttendanceRepository(testDB)

	for _, e := range []attendance.Event{
		event("E1", attendance.EventMasuk, time.Date(2025, 10, 1, 18, 45, 0, 0, wib), nil),
		event("E1", attendance.EventPulang, time.Date(2025, 10, 1, 21, 45, 0, 0, wib), hours("3.00")),
		event("E1", attendance.EventMasuk, time.Date(2025, 10, 2, 18, 45, 0, 0, wib), nil),
		event("E1", attendance.EventPulang, time.Date(2025, 10, 2, 23, 15, 0, 0, wib), hours("4.50")),
		event("E2", attendance.EventMasuk, time.Date(2025, 9, 30, 18, 50, 0, 0, wib), nil),
		event("E2", attendance.EventPulang, time.Date(2025, 9, 30, 23, 50, 0, 0, wib), hours("5.00")),
	} {
		_, err := events.Create(ctx, e)
		require.NoError(t, err)
	}

	repo := postgresql.NewReportRepository(testDB)

	rows, err := repo.SummarizeMonthly(ctx, report.MonthlySummaryFilter{})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "2025-10", rows[0].Period)
	assert.Equal(t, "E1", rows[0].EmployeeID)
	assert.Equal(t, "7.5", rows[0].TotalHours.String())
	assert.Equal(t, 2, rows[0].DaysWorked)
	assert.Equal(t, "2025-09", rows[1].Period)
	assert.Equal(t, "Siti", rows[1].EmployeeName)

	rows, err = repo.SummarizeMonthly(ctx, report.MonthlySummaryFilter{Period: "2025-09"})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "E2", rows[0].EmployeeID)

	rows, err = repo.SummarizeMonthly(ctx, report.MonthlySummaryFilter{EmployeeID: "E1", Period: "2025-09"})
	require.NoError(t, err)
	assert.Empty(t, rows)
}
