package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/intranet-directory/internal/domain"
)

// OrgSnapshotRepository stores rendered org charts keyed by snapshot name.
type OrgSnapshotRepository interface {
	Get(ctx context.Context, key string) (*domain.OrgSnapshot, error)
	Upsert(ctx context.Context, snapshot *domain.OrgSnapshot) error
}

type orgSnapshotRepository struct {
	pool *pgxpool.Pool
}

// NewOrgSnapshotRepository builds the repository.
func NewOrgSnapshotRepository(pool *pgxpool.Pool) OrgSnapshotRepository {
	return &orgSnapshotRepository{pool: pool}
}

func (r *orgSnapshotRepository) Get(ctx context.Context, key string) (*domain.OrgSnapshot, error) {
	const query = `
        SELECT key, data, total_employees, updated_at
        FROM org_snapshots WHERE key=$1`
	var snap domain.OrgSnapshot
	if err := r.pool.QueryRow(ctx, query, key).Scan(
		&snap.Key,
		&snap.Data,
		&snap.TotalEmployees,
		&snap.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &snap, nil
}

func (r *orgSnapshotRepository) Upsert(ctx context.Context, snapshot *domain.OrgSnapshot) error {
	const query = `
        INSERT INTO org_snapshots (key, data, total_employees, updated_at)
        VALUES ($1,$2,$3,NOW())
        ON CONFLICT (key) DO UPDATE
        SET data=EXCLUDED.data, total_employees=EXCLUDED.total_employees, updated_at=NOW()
        RETURNING updated_at`
	return r.pool.QueryRow(ctx, query,
		snapshot.Key,
		snapshot.Data,
		snapshot.TotalEmployees,
	).Scan(&snapshot.UpdatedAt)
}
