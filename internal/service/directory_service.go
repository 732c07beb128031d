package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"

	"github.com/spec-kit/intranet-directory/internal/domain"
	"github.com/spec-kit/intranet-directory/internal/events"
	"github.com/spec-kit/intranet-directory/internal/orgchart"
	"github.com/spec-kit/intranet-directory/internal/repository"
	apperrors "github.com/spec-kit/intranet-directory/pkg/util/errorutil"
)

const uniqueViolation = "23505"

// DirectoryService manages the employee directory.
type DirectoryService struct {
	employees  repository.EmployeeRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// DirectoryListFilters define listing parameters.
type DirectoryListFilters struct {
	Department *string
	Limit      int
	Offset     int
}

// NewDirectoryService constructs the service.
func NewDirectoryService(employees repository.EmployeeRepository, dispatcher events.Dispatcher, logger *zap.Logger) *DirectoryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DirectoryService{
		employees:  employees,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// Import replaces the whole directory with employees, keeping their order.
// Rows without an id are assigned one.
func (s *DirectoryService) Import(ctx context.Context, employees []domain.Employee) (int64, error) {
	if len(employees) == 0 {
		return 0, apperrors.NewValidationError("at least one employee is required", nil)
	}

	rows := make([]domain.Employee, len(employees))
	var blank []int
	for i, e := range employees {
		e = cleanEmployee(e)
		if e.Name == "" {
			blank = append(blank, i)
		}
		if e.ID == "" {
			e.ID = uuid.NewString()
		}
		rows[i] = e
	}
	if len(blank) > 0 {
		return 0, apperrors.NewValidationError("employee name is required", map[string]any{"rows": blank})
	}

	seen := make(map[string]struct{}, len(rows))
	var duplicates []string
	for _, e := range rows {
		if _, ok := seen[e.ID]; ok {
			duplicates = append(duplicates, e.ID)
			continue
		}
		seen[e.ID] = struct{}{}
	}
	if len(duplicates) > 0 {
		return 0, apperrors.NewValidationError("employee ids must be unique", map[string]any{"ids": duplicates})
	}

	n, err := s.employees.ReplaceAll(ctx, rows)
	if err != nil {
		return 0, apperrors.MapError(err)
	}
	s.logger.Info("employee directory imported", zap.Int64("employees", n))
	publish(ctx, s.dispatcher, events.EventDirectoryChanged, events.DirectoryChangedPayload{
		Action: events.DirectoryImported,
		Count:  int(n),
	})
	return n, nil
}

// List returns directory entries ordered by name.
func (s *DirectoryService) List(ctx context.Context, filters DirectoryListFilters) ([]domain.Employee, error) {
	employees, err := s.employees.List(ctx, repository.EmployeeFilter{
		Department: filters.Department,
		Limit:      filters.Limit,
		Offset:     filters.Offset,
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if employees == nil {
		employees = []domain.Employee{}
	}
	return employees, nil
}

// Get fetches an employee by id.
func (s *DirectoryService) Get(ctx context.Context, id string) (*domain.Employee, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperrors.NewValidationError("employee id is required", nil)
	}
	e, err := s.employees.GetByID(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NewNotFound("employee", map[string]any{"id": id})
	}
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return e, nil
}

// GetByName resolves a name the same way the org chart resolves reporting
// managers, so a duplicated name yields the later directory entry.
func (s *DirectoryService) GetByName(ctx context.Context, name string) (*domain.Employee, error) {
	if orgchart.NormalizeName(name) == "" {
		return nil, apperrors.NewValidationError("employee name is required", nil)
	}
	all, err := s.employees.ListAll(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	e, ok := orgchart.NewNameIndex(all).Lookup(name)
	if !ok {
		return nil, apperrors.NewNotFound("employee", map[string]any{"name": strings.TrimSpace(name)})
	}
	return &e, nil
}

// GetByEmail fetches an employee by email, ignoring case.
func (s *DirectoryService) GetByEmail(ctx context.Context, email string) (*domain.Employee, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, apperrors.NewValidationError("email is required", nil)
	}
	e, err := s.employees.GetByEmail(ctx, email)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NewNotFound("employee", map[string]any{"email": email})
	}
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return e, nil
}

// Create adds one employee to the end of the directory.
func (s *DirectoryService) Create(ctx context.Context, employee domain.Employee) (*domain.Employee, error) {
	e := cleanEmployee(employee)
	if e.Name == "" {
		return nil, apperrors.NewValidationError("employee name is required", nil)
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	} else if _, err := s.employees.GetByID(ctx, e.ID); err == nil {
		return nil, apperrors.NewConflict("employee id already exists", map[string]any{"id": e.ID})
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.MapError(err)
	}

	if err := s.employees.Create(ctx, &e); err != nil {
		if isUniqueViolation(err) {
			return nil, apperrors.NewConflict("employee id already exists", map[string]any{"id": e.ID})
		}
		return nil, apperrors.MapError(err)
	}
	publish(ctx, s.dispatcher, events.EventDirectoryChanged, events.DirectoryChangedPayload{
		Action:     events.DirectoryCreated,
		EmployeeID: e.ID,
		Count:      1,
	})
	return &e, nil
}

// Update replaces every editable field of the employee with id. A skill list
// left nil keeps its stored value.
func (s *DirectoryService) Update(ctx context.Context, id string, employee domain.Employee) (*domain.Employee, error) {
	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if employee.PrimarySkills == nil {
		employee.PrimarySkills = current.PrimarySkills
	}
	if employee.SecondarySkills == nil {
		employee.SecondarySkills = current.SecondarySkills
	}
	if employee.Certifications == nil {
		employee.Certifications = current.Certifications
	}
	e := cleanEmployee(employee)
	if e.Name == "" {
		return nil, apperrors.NewValidationError("employee name is required", nil)
	}
	e.ID = current.ID

	if err := s.employees.Update(ctx, &e); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("employee", map[string]any{"id": e.ID})
		}
		return nil, apperrors.MapError(err)
	}
	publish(ctx, s.dispatcher, events.EventDirectoryChanged, events.DirectoryChangedPayload{
		Action:     events.DirectoryUpdated,
		EmployeeID: e.ID,
		Count:      1,
	})
	return &e, nil
}

// UpdateSkillsByName replaces the skill lists of the employee that name
// resolves to. Other fields are untouched.
func (s *DirectoryService) UpdateSkillsByName(ctx context.Context, name string, skills domain.SkillProfile) (*domain.Employee, error) {
	current, err := s.GetByName(ctx, name)
	if err != nil {
		return nil, err
	}
	return s.updateSkills(ctx, current.ID, skills)
}

// UpdateSkillsByEmail replaces the skill lists of the employee with email,
// ignoring case.
func (s *DirectoryService) UpdateSkillsByEmail(ctx context.Context, email string, skills domain.SkillProfile) (*domain.Employee, error) {
	current, err := s.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	return s.updateSkills(ctx, current.ID, skills)
}

func (s *DirectoryService) updateSkills(ctx context.Context, id string, skills domain.SkillProfile) (*domain.Employee, error) {
	e, err := s.employees.UpdateSkills(ctx, id, skills.Clean())
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NewNotFound("employee", map[string]any{"id": id})
	}
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	s.logger.Info("employee skills updated", zap.String("employee_id", id))
	publish(ctx, s.dispatcher, events.EventDirectoryChanged, events.DirectoryChangedPayload{
		Action:     events.DirectoryUpdated,
		EmployeeID: id,
		Count:      1,
	})
	return e, nil
}

// Delete removes an employee. Their reports are left pointing at a missing
// manager and surface as detached branches on the next rebuild.
func (s *DirectoryService) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return apperrors.NewValidationError("employee id is required", nil)
	}
	if err := s.employees.Delete(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("employee", map[string]any{"id": id})
		}
		return apperrors.MapError(err)
	}
	publish(ctx, s.dispatcher, events.EventDirectoryChanged, events.DirectoryChangedPayload{
		Action:     events.DirectoryDeleted,
		EmployeeID: id,
		Count:      1,
	})
	return nil
}

func cleanEmployee(e domain.Employee) domain.Employee {
	e.ID = strings.TrimSpace(e.ID)
	e.Name = strings.TrimSpace(e.Name)
	e.Title = strings.TrimSpace(e.Title)
	e.Department = strings.TrimSpace(e.Department)
	e.SubTeam = strings.TrimSpace(e.SubTeam)
	e.Email = strings.TrimSpace(e.Email)
	e.Phone = strings.TrimSpace(e.Phone)
	e.ReportingManagerName = strings.TrimSpace(e.ReportingManagerName)
	e.PrimarySkills = domain.CleanSkillList(e.PrimarySkills)
	e.SecondarySkills = domain.CleanSkillList(e.SecondarySkills)
	e.Certifications = domain.CleanSkillList(e.Certifications)
	return e
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
