package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/cmlabs-hris/face-attendance-go/internal/domain/employee"
)

type employeeRepository struct {
	store *Store
}

func NewEmployeeRepository(store *Store) employee.EmployeeRepository {
	return &employeeRepository{store: store}
}

// Upsert implements employee.EmployeeRepository.
func (r *employeeRepository) Upsert(ctx context.Context, emp employee.Employee) (employee.Employee, bool, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	emp.FaceEncoding = append([]float64(nil), emp.FaceEncoding...)

	prev, exists := s.employees[emp.ID]
	if exists {
		emp.CreatedAt = prev.CreatedAt
	} else {
		emp.CreatedAt = now
	}
	emp.UpdatedAt = now
	s.employees[emp.ID] = emp

	s.onRollback(ctx, func() {
		if exists {
			s.employees[emp.ID] = prev
		} else {
			delete(s.employees, emp.ID)
		}
	})

	return cloneEmployee(emp), !exists, nil
}

// GetByID implements employee.EmployeeRepository.
func (r *employeeRepository) GetByID(ctx context.Context, id string) (employee.Employee, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	emp, ok := r.store.employees[id]
	if !ok {
		return employee.Employee{}, fmt.Errorf("employee %s: %w", id, employee.ErrEmployeeNotFound)
	}
	return cloneEmployee(emp), nil
}

// LockByID implements employee.EmployeeRepository.
func (r *employeeRepository) LockByID(ctx context.Context, id string) (employee.Employee, error) {
	// Unknown IDs are rejected before locking so the lock table stays bounded.
	if _, err := r.GetByID(ctx, id); err != nil {
		return employee.Employee{}, err
	}
	if err := r.store.lock(ctx, id); err != nil {
		return employee.Employee{}, fmt.Errorf("lock employee %s: %w", id, err)
	}
	// re-read: a re-enrollment may have committed while we waited
	return r.GetByID(ctx, id)
}

// ListAll implements employee.EmployeeRepository.
func (r *employeeRepository) ListAll(ctx context.Context) ([]employee.Employee, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	employees := make([]employee.Employee, 0, len(r.store.employees))
	for _, emp := range r.store.employees {
		employees = append(employees, cloneEmployee(emp))
	}
	sort.Slice(employees, func(i, j int) bool { return employees[i].ID < employees[j].ID })
	return employees, nil
}

func cloneEmployee(emp employee.Employee) employee.Employee {
	emp.FaceEncoding = append([]float64(nil), emp.FaceEncoding...)
	return emp
}
