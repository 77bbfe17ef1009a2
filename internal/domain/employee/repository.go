package employee

import "context"

type EmployeeRepository interface {
	// Upsert inserts the employee or overwrites name and encoding of an existing ID.
	// created reports which path was taken.
	Upsert(ctx context.Context, emp Employee) (saved Employee, created bool, err error)

	// GetByID returns ErrEmployeeNotFound when the ID is not enrolled.
	GetByID(ctx context.Context, id string) (Employee, error)

	// LockByID is GetByID that also holds a per-employee lock until the
	// surrounding transaction ends.
	LockByID(ctx context.Context, id string) (Employee, error)

	ListAll(ctx context.Context) ([]Employee, error)
}
