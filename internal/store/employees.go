package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/chalets-du-lac/api/internal/model"
)

// EmployeeRecord is an employee with its credential hash, used by the auth
// flow. Handlers never serialize the hash.
type EmployeeRecord struct {
	model.Employee
	HashedPassword string
}

// CreateEmployeeParams carries a validated employee document.
type CreateEmployeeParams struct {
	FirstName      string
	LastName       string
	Email          string
	Phone          string
	Role           string
	Active         bool
	Permissions    model.Permissions
	HashedPassword string
}

const employeeColumns = "id, first_name, last_name, email, phone, role, active, permissions"

func scanEmployee(row pgx.Row) (model.Employee, error) {
	var e model.Employee
	if err := row.Scan(&e.ID, &e.FirstName, &e.LastName, &e.Email, &e.Phone, &e.Role, &e.Active, &e.Permissions); err != nil {
		return model.Employee{}, err
	}
	return e, nil
}

// ListEmployees returns all employees ordered by last name.
func (s *Store) ListEmployees(ctx context.Context) ([]model.Employee, error) {
	rows, err := s.pool.Query(ctx,
		"SELECT "+employeeColumns+" FROM employees ORDER BY last_name, first_name")
	if err != nil {
		return nil, fmt.Errorf("list employees: %w", err)
	}
	defer rows.Close()

	var employees []model.Employee
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, fmt.Errorf("scan employee: %w", err)
		}
		employees = append(employees, e)
	}
	return employees, rows.Err()
}

// GetEmployee fetches one employee. Returns pgx.ErrNoRows when absent.
func (s *Store) GetEmployee(ctx context.Context, id uuid.UUID) (model.Employee, error) {
	row := s.pool.QueryRow(ctx,
		"SELECT "+employeeColumns+" FROM employees WHERE id = $1", id)
	return scanEmployee(row)
}

// GetEmployeeByEmail fetches an employee with its credential hash for login.
// Returns pgx.ErrNoRows when absent.
func (s *Store) GetEmployeeByEmail(ctx context.Context, email string) (EmployeeRecord, error) {
	var rec EmployeeRecord
	err := s.pool.QueryRow(ctx,
		"SELECT "+employeeColumns+", hashed_password FROM employees WHERE email = $1", email).
		Scan(&rec.ID, &rec.FirstName, &rec.LastName, &rec.Email, &rec.Phone,
			&rec.Role, &rec.Active, &rec.Permissions, &rec.HashedPassword)
	if err != nil {
		return EmployeeRecord{}, err
	}
	return rec, nil
}

// CreateEmployee inserts a new employee and returns it.
func (s *Store) CreateEmployee(ctx context.Context, arg CreateEmployeeParams) (model.Employee, error) {
	row := s.pool.QueryRow(ctx,
		`INSERT INTO employees (id, first_name, last_name, email, phone, role, active, permissions, hashed_password)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING `+employeeColumns,
		uuid.New(), arg.FirstName, arg.LastName, arg.Email, arg.Phone,
		arg.Role, arg.Active, arg.Permissions, arg.HashedPassword)
	return scanEmployee(row)
}

// UpdateEmployee overwrites an employee's profile, role, active flag and
// permission set. The credential hash is only replaced when non-empty.
// Returns pgx.ErrNoRows when absent.
func (s *Store) UpdateEmployee(ctx context.Context, id uuid.UUID, arg CreateEmployeeParams) (model.Employee, error) {
	row := s.pool.QueryRow(ctx,
		`UPDATE employees
		 SET first_name = $2, last_name = $3, email = $4, phone = $5, role = $6,
		     active = $7, permissions = $8,
		     hashed_password = CASE WHEN $9 = '' THEN hashed_password ELSE $9 END
		 WHERE id = $1
		 RETURNING `+employeeColumns,
		id, arg.FirstName, arg.LastName, arg.Email, arg.Phone,
		arg.Role, arg.Active, arg.Permissions, arg.HashedPassword)
	return scanEmployee(row)
}

// DeleteEmployee removes an employee. Returns pgx.ErrNoRows when absent.
func (s *Store) DeleteEmployee(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, "DELETE FROM employees WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete employee: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
