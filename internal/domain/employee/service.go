package employee

import (
	"context"
)

// EmployeeService defines the employee directory operations
type EmployeeService interface {
	// Enroll registers a new face or overwrites the face of an existing employee ID
	Enroll(ctx context.Context, req EnrollRequest) (EnrollResponse, error)

	// GetEmployee retrieves a single employee by ID
	GetEmployee(ctx context.Context, id string) (EmployeeResponse, error)

	// ListEmployees lists every enrolled employee without encodings
	ListEmployees(ctx context.Context) ([]EmployeeResponse, error)

	// GetCandidateEncodings returns the labeled encodings the face matcher compares against
	GetCandidateEncodings(ctx context.Context) ([]Candidate, error)

	// RefreshCandidates reloads the candidate cache from storage and returns the candidate count
	RefreshCandidates(ctx context.Context) (int, error)
}
