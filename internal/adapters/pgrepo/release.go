package pgrepo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/prakharxagrawal/deployment-portal-angular/internal/domain"
)

type ReleaseRepository struct {
	pool *pgxpool.Pool
}

func NewReleaseRepository(pool *pgxpool.Pool) *ReleaseRepository {
	return &ReleaseRepository{pool: pool}
}

func (r *ReleaseRepository) GetByName(ctx context.Context, name string) (*domain.Release, error) {
	const query = `SELECT id, name FROM releases WHERE name = $1`

	var rel domain.Release
	if err := r.pool.QueryRow(ctx, query, name).Scan(&rel.ID, &rel.Name); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scanning release: %w", err)
	}
	return &rel, nil
}

func (r *ReleaseRepository) List(ctx context.Context) ([]*domain.Release, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name FROM releases`)
	if err != nil {
		return nil, fmt.Errorf("listing releases: %w", err)
	}
	defer rows.Close()

	var out []*domain.Release
	for rows.Next() {
		var rel domain.Release
		if err := rows.Scan(&rel.ID, &rel.Name); err != nil {
			return nil, fmt.Errorf("scanning release row: %w", err)
		}
		out = append(out, &rel)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating releases: %w", err)
	}
	return out, nil
}

func (r *ReleaseRepository) Save(ctx context.Context, rel *domain.Release) error {
	const stmt = `INSERT INTO releases (id, name)
	              VALUES ($1, $2)
	              ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name`

	if _, err := r.pool.Exec(ctx, stmt, rel.ID, rel.Name); err != nil {
		return fmt.Errorf("saving release: %w", err)
	}
	return nil
}
