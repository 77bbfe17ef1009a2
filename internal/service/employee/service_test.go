package employee

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cmlabs-hris/face-attendance-go/internal/domain/employee"
	"github.com/cmlabs-hris/face-attendance-go/internal/pkg/cache"
	"github.com/cmlabs-hris/face-attendance-go/internal/pkg/validator"
	"github.com/cmlabs-hris/face-attendance-go/internal/repository/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encoding(v float64) []float64 {
	enc := make([]float64, validator.EncodingLength)
	for i := range enc {
		enc[i] = v
	}
	return enc
}

type countingRepo struct {
	employee.EmployeeRepository
	listCalls atomic.Int32
}

func (r *countingRepo) ListAll(ctx context.Context) ([]employee.Employee, error) {
	r.listCalls.Add(1)
	time.Sleep(5 * time.Millisecond)
	return r.EmployeeRepository.ListAll(ctx)
}

func newService(t *testing.T) (employee.EmployeeService, *countingRepo) {
	t.Helper()
	repo := &countingRepo{EmployeeRepository: memory.NewEmployeeRepository(memory.NewStore())}
	return NewEmployeeService(repo, cache.NewMemoryStore(), time.Minute, nil, nil), repo
}

func TestEnroll_CreateThenUpdate(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	resp, err := svc.Enroll(ctx, employee.EnrollRequest{ID: " e1 ", Name: " Budi ", Encoding: encoding(0.1)})
	require.NoError(t, err)
	assert.True(t, resp.Created)
	assert.Equal(t, "E1", resp.ID)
	assert.Equal(t, "Employee E1 - Budi registered", resp.Message)

	resp, err = svc.Enroll(ctx, employee.EnrollRequest{ID: "E1", Name: "Budi Santoso", Encoding: encoding(0.2)})
	require.NoError(t, err)
	assert.False(t, resp.Created)
	assert.Equal(t, "Face data for E1 (Budi Santoso) updated", resp.Message)

	list, err := svc.ListEmployees(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Budi Santoso", list[0].Name)
}

func TestEnroll_Validation(t *testing.T) {
	svc, _ := newService(t)

	cases := map[string]employee.EnrollRequest{
		"missing id":     {Name: "Budi", Encoding: encoding(0.1)},
		"id with space":  {ID: "E 1", Name: "Budi", Encoding: encoding(0.1)},
		"missing name":   {ID: "E1", Encoding: encoding(0.1)},
		"short encoding": {ID: "E1", Name: "Budi", Encoding: encoding(0.1)[:127]},
		"no encoding":    {ID: "E1", Name: "Budi"},
	}
	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Enroll(context.Background(), req)
			var verrs validator.ValidationErrors
			assert.ErrorAs(t, err, &verrs)
		})
	}
}

func TestGetEmployee(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	_, err := svc.GetEmployee(ctx, "E1")
	assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)

	_, err = svc.Enroll(ctx, employee.EnrollRequest{ID: "E1", Name: "Budi", Encoding: encoding(0.1)})
	require.NoError(t, err)

	got, err := svc.GetEmployee(ctx, "e1")
	require.NoError(t, err)
	assert.Equal(t, "Budi", got.Name)
}

func TestGetCandidateEncodings_CachedAndInvalidated(t *testing.T) {
	svc, repo := newService(t)
	ctx := context.Background()

	_, err := svc.Enroll(ctx, employee.EnrollRequest{ID: "E1", Name: "Budi", Encoding: encoding(0.1)})
	require.NoError(t, err)

	candidates, err := svc.GetCandidateEncodings(ctx)
	require.NoError(t, err)
	require.Len(t, candidates, 1)

	_, err = svc.GetCandidateEncodings(ctx)
	require.NoError(t, err)
	assert.Equal(t, int32(1), repo.listCalls.Load())

	_, err = svc.Enroll(ctx, employee.EnrollRequest{ID: "E2", Name: "Siti", Encoding: encoding(0.3)})
	require.NoError(t, err)

	candidates, err = svc.GetCandidateEncodings(ctx)
	require.NoError(t, err)
	require.Len(t, candidates, 2)
	assert.Equal(t, "E2", candidates[1].ID)
	assert.Equal(t, 0.3, candidates[1].Encoding[0])
	assert.Equal(t, int32(2), repo.listCalls.Load())
}

func TestGetCandidateEncodings_ConcurrentMissesShareLoad(t *testing.T) {
	svc, repo := newService(t)
	ctx := context.Background()

	_, err := svc.Enroll(ctx, employee.EnrollRequest{ID: "E1", Name: "Budi", Encoding: encoding(0.1)})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			candidates, err := svc.GetCandidateEncodings(ctx)
			assert.NoError(t, err)
			assert.Len(t, candidates, 1)
		}()
	}
	wg.Wait()

	assert.LessOrEqual(t, repo.listCalls.Load(), int32(2))
}

func TestRefreshCandidates(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	n, err := svc.RefreshCandidates(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	_, err = svc.Enroll(ctx, employee.EnrollRequest{ID: "E1", Name: "Budi", Encoding: encoding(0.1)})
	require.NoError(t, err)

	n, err = svc.RefreshCandidates(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

// blockingListRepo holds the first ListAll after it has read the store.
type blockingListRepo struct {
	employee.EmployeeRepository
	once    sync.Once
	read    chan struct{}
	release chan struct{}
}

func (r *blockingListRepo) ListAll(ctx context.Context) ([]employee.Employee, error) {
	employees, err := r.EmployeeRepository.ListAll(ctx)
	r.once.Do(func() {
		close(r.read)
		<-r.release
	})
	return employees, err
}

func TestGetCandidateEncodings_EnrollDuringRefill(t *testing.T) {
	repo := &blockingListRepo{
		EmployeeRepository: memory.NewEmployeeRepository(memory.NewStore()),
		read:               make(chan struct{}),
		release:            make(chan struct{}),
	}
	svc := NewEmployeeService(repo, cache.NewMemoryStore(), time.Minute, nil, nil)
	ctx := context.Background()

	done := make(chan []employee.Candidate)
	go func() {
		candidates, err := svc.GetCandidateEncodings(ctx)
		assert.NoError(t, err)
		done <- candidates
	}()

	<-repo.read
	_, err := svc.Enroll(ctx, employee.EnrollRequest{ID: "E1", Name: "Budi", Encoding: encoding(0.1)})
	require.NoError(t, err)
	close(repo.release)

	// the refill started before the enrollment and returns its own snapshot
	assert.Empty(t, <-done)

	candidates, err := svc.GetCandidateEncodings(ctx)
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, "E1", candidates[0].ID)
}
