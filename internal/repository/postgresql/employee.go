package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/face-attendance-go/internal/domain/employee"
	"github.com/cmlabs-hris/face-attendance-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type employeeRepository struct {
	db *database.DB
}

// Upsert implements employee.EmployeeRepository.
func (r *employeeRepository) Upsert(ctx context.Context, emp employee.Employee) (employee.Employee, bool, error) {
	q := GetQuerier(ctx, r.db)

	// xmax is zero only for a freshly inserted row
	query := `
		INSERT INTO employees (id, name, face_encoding)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE
		SET name = EXCLUDED.name,
		    face_encoding = EXCLUDED.face_encoding,
		    updated_at = NOW()
		RETURNING id, name, face_encoding, created_at, updated_at, (xmax = 0) AS inserted
	`

	var saved employee.Employee
	var created bool
	err := q.QueryRow(ctx, query, emp.ID, emp.Name, emp.FaceEncoding).Scan(
		&saved.ID, &saved.Name, &saved.FaceEncoding, &saved.CreatedAt, &saved.UpdatedAt, &created,
	)
	if err != nil {
		return employee.Employee{}, false, fmt.Errorf("failed to upsert employee %s: %w", emp.ID, err)
	}

	return saved, created, nil
}

// GetByID implements employee.EmployeeRepository.
func (r *employeeRepository) GetByID(ctx context.Context, id string) (employee.Employee, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, name, face_encoding, created_at, updated_at
		FROM employees
		WHERE id = $1
	`

	return r.scanOne(q.QueryRow(ctx, query, id), id)
}

// LockByID implements employee.EmployeeRepository.
func (r *employeeRepository) LockByID(ctx context.Context, id string) (employee.Employee, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, name, face_encoding, created_at, updated_at
		FROM employees
		WHERE id = $1
		FOR UPDATE
	`

	return r.scanOne(q.QueryRow(ctx, query, id), id)
}

func (r *employeeRepository) scanOne(row pgx.Row, id string) (employee.Employee, error) {
	var emp employee.Employee
	err := row.Scan(&emp.ID, &emp.Name, &emp.FaceEncoding, &emp.CreatedAt, &emp.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return employee.Employee{}, fmt.Errorf("employee %s: %w", id, employee.ErrEmployeeNotFound)
		}
		return employee.Employee{}, fmt.Errorf("failed to get employee %s: %w", id, err)
	}
	return emp, nil
}

// ListAll implements employee.EmployeeRepository.
func (r *employeeRepository) ListAll(ctx context.Context) ([]employee.Employee, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, name, face_encoding, created_at, updated_at
		FROM employees
		ORDER BY id ASC
	`

	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}
	defer rows.Close()

	employees := make([]employee.Employee, 0)
	for rows.Next() {
		var emp employee.Employee
		if err := rows.Scan(&emp.ID, &emp.Name, &emp.FaceEncoding, &emp.CreatedAt, &emp.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan employee: %w", err)
		}
		employees = append(employees, emp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate employees: %w", err)
	}

	return employees, nil
}

func NewEmployeeRepository(db *database.DB) employee.EmployeeRepository {
	return &employeeRepository{db: db}
}
