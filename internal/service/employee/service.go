package employee

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/cmlabs-hris/face-attendance-go/internal/domain/employee"
	"github.com/cmlabs-hris/face-attendance-go/internal/pkg/cache"
	"github.com/cmlabs-hris/face-attendance-go/internal/pkg/metrics"
	"github.com/cmlabs-hris/face-attendance-go/internal/pkg/validator"
	"golang.org/x/sync/singleflight"
)

const candidatesKey = "candidates"

type EmployeeServiceImpl struct {
	employeeRepo employee.EmployeeRepository
	cache        cache.Store
	cacheTTL     time.Duration
	refill       singleflight.Group
	// mu orders candidate cache writes against invalidation; generation
	// changes on every enrollment.
	mu         sync.Mutex
	generation uint64
	metrics    *metrics.Metrics
	logger     *slog.Logger
}

// Enroll implements employee.EmployeeService.
func (s *EmployeeServiceImpl) Enroll(ctx context.Context, req employee.EnrollRequest) (employee.EnrollResponse, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return employee.EnrollResponse{}, err
	}

	saved, created, err := s.employeeRepo.Upsert(ctx, employee.Employee{
		ID:           req.ID,
		Name:         req.Name,
		FaceEncoding: req.Encoding,
	})
	if err != nil {
		return employee.EnrollResponse{}, fmt.Errorf("failed to enroll employee: %w", err)
	}

	s.invalidateCandidates(ctx)
	s.metrics.IncrementEnrollment(created)

	resp := employee.EnrollResponse{
		Created: created,
		ID:      saved.ID,
		Name:    saved.Name,
	}
	if created {
		resp.Message = fmt.Sprintf("Employee %s - %s registered", saved.ID, saved.Name)
	} else {
		resp.Message = fmt.Sprintf("Face data for %s (%s) updated", saved.ID, saved.Name)
	}

	s.logger.InfoContext(ctx, "Employee enrolled", "employee_id", saved.ID, "created", created)
	return resp, nil
}

// GetEmployee implements employee.EmployeeService.
func (s *EmployeeServiceImpl) GetEmployee(ctx context.Context, id string) (employee.EmployeeResponse, error) {
	emp, err := s.employeeRepo.GetByID(ctx, validator.NormalizeEmployeeID(id))
	if err != nil {
		return employee.EmployeeResponse{}, err
	}
	return employee.NewEmployeeResponse(emp), nil
}

// ListEmployees implements employee.EmployeeService.
func (s *EmployeeServiceImpl) ListEmployees(ctx context.Context) ([]employee.EmployeeResponse, error) {
	employees, err := s.employeeRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}

	responses := make([]employee.EmployeeResponse, 0, len(employees))
	for _, emp := range employees {
		responses = append(responses, employee.NewEmployeeResponse(emp))
	}
	return responses, nil
}

// GetCandidateEncodings implements employee.EmployeeService.
// Concurrent misses share one storage read.
func (s *EmployeeServiceImpl) GetCandidateEncodings(ctx context.Context) ([]employee.Candidate, error) {
	var candidates []employee.Candidate
	found, err := s.cache.Get(ctx, candidatesKey, &candidates)
	switch {
	case err != nil:
		s.metrics.IncrementCacheLookup("error")
		s.logger.WarnContext(ctx, "Candidate cache read failed", "error", err)
	case found:
		s.metrics.IncrementCacheLookup("hit")
		return candidates, nil
	default:
		s.metrics.IncrementCacheLookup("miss")
	}

	v, err, _ := s.refill.Do(candidatesKey, func() (interface{}, error) {
		return s.loadCandidates(ctx)
	})
	if err != nil {
		return nil, err
	}
	return v.([]employee.Candidate), nil
}

// RefreshCandidates implements employee.EmployeeService.
func (s *EmployeeServiceImpl) RefreshCandidates(ctx context.Context) (int, error) {
	candidates, err := s.loadCandidates(ctx)
	if err != nil {
		return 0, err
	}
	return len(candidates), nil
}

func (s *EmployeeServiceImpl) loadCandidates(ctx context.Context) ([]employee.Candidate, error) {
	s.mu.Lock()
	gen := s.generation
	s.mu.Unlock()

	employees, err := s.employeeRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load candidates: %w", err)
	}

	candidates := make([]employee.Candidate, 0, len(employees))
	for _, emp := range employees {
		candidates = append(candidates, emp.Candidate())
	}

	s.mu.Lock()
	if gen == s.generation {
		if err := s.cache.Set(ctx, candidatesKey, candidates, s.cacheTTL); err != nil {
			s.logger.WarnContext(ctx, "Candidate cache write failed", "error", err)
		}
	} else {
		// an enrollment landed during the read; the snapshot may miss it
		s.logger.DebugContext(ctx, "Discarding stale candidate snapshot")
	}
	s.mu.Unlock()
	s.metrics.SetEnrolledEmployees(len(candidates))
	return candidates, nil
}

func (s *EmployeeServiceImpl) invalidateCandidates(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.generation++
	s.refill.Forget(candidatesKey)
	if err := s.cache.Delete(ctx, candidatesKey); err != nil {
		// stale entries still expire after cacheTTL
		s.logger.WarnContext(ctx, "Candidate cache invalidation failed", "error", err)
	}
}

func NewEmployeeService(
	employeeRepo employee.EmployeeRepository,
	candidateCache cache.Store,
	cacheTTL time.Duration,
	m *metrics.Metrics,
	logger *slog.Logger,
) employee.EmployeeService {
	if logger == nil {
		logger = slog.Default()
	}
	return &EmployeeServiceImpl{
		employeeRepo: employeeRepo,
		cache:        candidateCache,
		cacheTTL:     cacheTTL,
		metrics:      m,
		logger:       logger,
	}
}
