package service

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/intranet-directory/internal/domain"
	"github.com/spec-kit/intranet-directory/internal/repository"
)

type fakeEmployeeRepo struct {
	mu        sync.Mutex
	rows      []domain.Employee
	next      int64
	listErr   error
	listCalls int
}

func newFakeEmployeeRepo(rows ...domain.Employee) *fakeEmployeeRepo {
	r := &fakeEmployeeRepo{}
	for _, e := range rows {
		r.next++
		e.Position = r.next
		r.rows = append(r.rows, e)
	}
	return r
}

func (r *fakeEmployeeRepo) ListAll(context.Context) ([]domain.Employee, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listCalls++
	if r.listErr != nil {
		return nil, r.listErr
	}
	return append([]domain.Employee(nil), r.rows...), nil
}

func (r *fakeEmployeeRepo) List(_ context.Context, filter repository.EmployeeFilter) ([]domain.Employee, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Employee
	for _, e := range r.rows {
		if filter.Department != nil && !strings.EqualFold(e.Department, *filter.Department) {
			continue
		}
		out = append(out, e)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})
	return out, nil
}

func (r *fakeEmployeeRepo) GetByID(_ context.Context, id string) (*domain.Employee, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.rows {
		if e.ID == id {
			return &e, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeEmployeeRepo) GetByEmail(_ context.Context, email string) (*domain.Employee, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.rows {
		if strings.EqualFold(e.Email, email) {
			return &e, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeEmployeeRepo) Create(_ context.Context, employee *domain.Employee) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.next++
	employee.Position = r.next
	r.rows = append(r.rows, *employee)
	return nil
}

func (r *fakeEmployeeRepo) Update(_ context.Context, employee *domain.Employee) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.rows {
		if r.rows[i].ID == employee.ID {
			employee.Position = r.rows[i].Position
			r.rows[i] = *employee
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (r *fakeEmployeeRepo) UpdateSkills(_ context.Context, id string, skills domain.SkillProfile) (*domain.Employee, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	skills = skills.Clean()
	for i := range r.rows {
		if r.rows[i].ID == id {
			r.rows[i].PrimarySkills = skills.PrimarySkills
			r.rows[i].SecondarySkills = skills.SecondarySkills
			r.rows[i].Certifications = skills.Certifications
			e := r.rows[i]
			return &e, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeEmployeeRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.rows {
		if r.rows[i].ID == id {
			r.rows = append(r.rows[:i], r.rows[i+1:]...)
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (r *fakeEmployeeRepo) ReplaceAll(_ context.Context, employees []domain.Employee) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows = nil
	for _, e := range employees {
		r.next++
		e.Position = r.next
		r.rows = append(r.rows, e)
	}
	return int64(len(employees)), nil
}

func (r *fakeEmployeeRepo) Count(context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.rows), nil
}

type fakeSnapshotRepo struct {
	mu      sync.Mutex
	byKey   map[string]domain.OrgSnapshot
	upserts int
}

func newFakeSnapshotRepo() *fakeSnapshotRepo {
	return &fakeSnapshotRepo{byKey: map[string]domain.OrgSnapshot{}}
}

func (r *fakeSnapshotRepo) Get(_ context.Context, key string) (*domain.OrgSnapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	snap, ok := r.byKey[key]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &snap, nil
}

func (r *fakeSnapshotRepo) Upsert(_ context.Context, snapshot *domain.OrgSnapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.upserts++
	r.byKey[snapshot.Key] = *snapshot
	return nil
}

type fakeCache struct {
	mu     sync.Mutex
	byKey  map[string]domain.OrgSnapshot
	getErr error
	sets   int
}

func newFakeCache() *fakeCache {
	return &fakeCache{byKey: map[string]domain.OrgSnapshot{}}
}

func (c *fakeCache) Get(_ context.Context, key string) (*domain.OrgSnapshot, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.getErr != nil {
		return nil, false, c.getErr
	}
	snap, ok := c.byKey[key]
	if !ok {
		return nil, false, nil
	}
	return &snap, true, nil
}

func (c *fakeCache) Set(_ context.Context, snapshot *domain.OrgSnapshot) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sets++
	c.byKey[snapshot.Key] = *snapshot
	return nil
}

func (c *fakeCache) Invalidate(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.byKey, key)
	return nil
}
