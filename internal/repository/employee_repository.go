package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/intranet-directory/internal/domain"
)

// EmployeeRepository persists the employee directory.
type EmployeeRepository interface {
	ListAll(ctx context.Context) ([]domain.Employee, error)
	List(ctx context.Context, filter EmployeeFilter) ([]domain.Employee, error)
	GetByID(ctx context.Context, id string) (*domain.Employee, error)
	GetByEmail(ctx context.Context, email string) (*domain.Employee, error)
	Create(ctx context.Context, employee *domain.Employee) error
	Update(ctx context.Context, employee *domain.Employee) error
	UpdateSkills(ctx context.Context, id string, skills domain.SkillProfile) (*domain.Employee, error)
	Delete(ctx context.Context, id string) error
	ReplaceAll(ctx context.Context, employees []domain.Employee) (int64, error)
	Count(ctx context.Context) (int, error)
}

// EmployeeFilter defines query params for directory listing.
type EmployeeFilter struct {
	Department *string
	Limit      int
	Offset     int
}

const employeeColumns = `id, position, name, title, department, sub_team, email, phone, reporting_manager_name, primary_skills, secondary_skills, certifications, created_at, updated_at`

var copyColumns = []string{"id", "name", "title", "department", "sub_team", "email", "phone", "reporting_manager_name", "primary_skills", "secondary_skills", "certifications"}

type employeeRepository struct {
	pool *pgxpool.Pool
}

// NewEmployeeRepository instantiates the repository.
func NewEmployeeRepository(pool *pgxpool.Pool) EmployeeRepository {
	return &employeeRepository{pool: pool}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEmployee(row rowScanner) (domain.Employee, error) {
	var e domain.Employee
	err := row.Scan(
		&e.ID,
		&e.Position,
		&e.Name,
		&e.Title,
		&e.Department,
		&e.SubTeam,
		&e.Email,
		&e.Phone,
		&e.ReportingManagerName,
		&e.PrimarySkills,
		&e.SecondarySkills,
		&e.Certifications,
		&e.CreatedAt,
		&e.UpdatedAt,
	)
	return e, err
}

func (r *employeeRepository) collect(ctx context.Context, query string, args ...any) ([]domain.Employee, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Employee
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, e)
	}
	return result, rows.Err()
}

// ListAll returns the whole directory in import order.
func (r *employeeRepository) ListAll(ctx context.Context) ([]domain.Employee, error) {
	return r.collect(ctx, `SELECT `+employeeColumns+` FROM employees ORDER BY position ASC`)
}

func (r *employeeRepository) List(ctx context.Context, filter EmployeeFilter) ([]domain.Employee, error) {
	query := `SELECT ` + employeeColumns + ` FROM employees`
	args := []any{}
	clauses := []string{}

	if filter.Department != nil {
		args = append(args, *filter.Department)
		clauses = append(clauses, fmt.Sprintf("lower(department)=lower($%d)", len(args)))
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}

	query += " ORDER BY lower(name) ASC, position ASC"
	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	query += fmt.Sprintf(" LIMIT %d OFFSET %d", limit, offset)

	return r.collect(ctx, query, args...)
}

func (r *employeeRepository) GetByID(ctx context.Context, id string) (*domain.Employee, error) {
	e, err := scanEmployee(r.pool.QueryRow(ctx,
		`SELECT `+employeeColumns+` FROM employees WHERE id=$1`, id))
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *employeeRepository) GetByEmail(ctx context.Context, email string) (*domain.Employee, error) {
	e, err := scanEmployee(r.pool.QueryRow(ctx,
		`SELECT `+employeeColumns+` FROM employees WHERE lower(email)=lower($1) ORDER BY position LIMIT 1`, email))
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *employeeRepository) Create(ctx context.Context, employee *domain.Employee) error {
	const query = `
        INSERT INTO employees (id, name, title, department, sub_team, email, phone, reporting_manager_name,
            primary_skills, secondary_skills, certifications)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
        RETURNING position, created_at, updated_at`

	skills := employee.Skills().Clean()
	return r.pool.QueryRow(ctx, query,
		employee.ID,
		employee.Name,
		employee.Title,
		employee.Department,
		employee.SubTeam,
		employee.Email,
		employee.Phone,
		employee.ReportingManagerName,
		skills.PrimarySkills,
		skills.SecondarySkills,
		skills.Certifications,
	).Scan(&employee.Position, &employee.CreatedAt, &employee.UpdatedAt)
}

func (r *employeeRepository) Update(ctx context.Context, employee *domain.Employee) error {
	const query = `
        UPDATE employees
        SET name=$1, title=$2, department=$3, sub_team=$4, email=$5, phone=$6, reporting_manager_name=$7,
            primary_skills=$8, secondary_skills=$9, certifications=$10, updated_at=NOW()
        WHERE id=$11
        RETURNING position, created_at, updated_at`

	skills := employee.Skills().Clean()
	return r.pool.QueryRow(ctx, query,
		employee.Name,
		employee.Title,
		employee.Department,
		employee.SubTeam,
		employee.Email,
		employee.Phone,
		employee.ReportingManagerName,
		skills.PrimarySkills,
		skills.SecondarySkills,
		skills.Certifications,
		employee.ID,
	).Scan(&employee.Position, &employee.CreatedAt, &employee.UpdatedAt)
}

// UpdateSkills replaces only the skill lists of one employee.
func (r *employeeRepository) UpdateSkills(ctx context.Context, id string, skills domain.SkillProfile) (*domain.Employee, error) {
	skills = skills.Clean()
	e, err := scanEmployee(r.pool.QueryRow(ctx, `
        UPDATE employees
        SET primary_skills=$1, secondary_skills=$2, certifications=$3, updated_at=NOW()
        WHERE id=$4
        RETURNING `+employeeColumns,
		skills.PrimarySkills,
		skills.SecondarySkills,
		skills.Certifications,
		id,
	))
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *employeeRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM employees WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// ReplaceAll swaps the whole directory in one transaction. Rows are copied in
// slice order so positions follow the import order.
func (r *employeeRepository) ReplaceAll(ctx context.Context, employees []domain.Employee) (int64, error) {
	var copied int64
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM employees`); err != nil {
			return fmt.Errorf("clear employees: %w", err)
		}
		n, err := tx.CopyFrom(ctx, pgx.Identifier{"employees"}, copyColumns,
			pgx.CopyFromSlice(len(employees), func(i int) ([]any, error) {
				e := employees[i]
				skills := e.Skills().Clean()
				return []any{e.ID, e.Name, e.Title, e.Department, e.SubTeam, e.Email, e.Phone, e.ReportingManagerName,
					skills.PrimarySkills, skills.SecondarySkills, skills.Certifications}, nil
			}))
		if err != nil {
			return fmt.Errorf("copy employees: %w", err)
		}
		copied = n
		return nil
	})
	if err != nil {
		return 0, err
	}
	return copied, nil
}

func (r *employeeRepository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM employees`).Scan(&n)
	return n, err
}
