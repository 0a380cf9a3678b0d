package pgrepo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/prakharxagrawal/deployment-portal-angular/internal/domain"
)

type DeploymentRepository struct {
	pool *pgxpool.Pool
}

func NewDeploymentRepository(pool *pgxpool.Pool) *DeploymentRepository {
	return &DeploymentRepository{pool: pool}
}

const deploymentColumns = `id, serial_number, csi_id, service, team, release, request_id, upcoming_branch,
	is_config, config_request_id, upcoming_config_branch, environments, status,
	production_ready, performance_ready,
	rlm_id_uat1, rlm_id_uat2, rlm_id_uat3, rlm_id_perf1, rlm_id_perf2, rlm_id_prod1, rlm_id_prod2,
	created_by, date_requested, date_modified`

func scanDeployment(row pgx.Row) (*domain.DeploymentRecord, error) {
	var (
		rec  domain.DeploymentRecord
		envs []string
	)
	err := row.Scan(
		&rec.ID, &rec.SerialNumber, &rec.CsiID, &rec.Service, &rec.Team, &rec.Release,
		&rec.RequestID, &rec.UpcomingBranch,
		&rec.IsConfig, &rec.ConfigRequestID, &rec.UpcomingConfigBranch, &envs, &rec.Status,
		&rec.ProductionReady, &rec.PerformanceReady,
		&rec.RlmIDUat1, &rec.RlmIDUat2, &rec.RlmIDUat3, &rec.RlmIDPerf1, &rec.RlmIDPerf2,
		&rec.RlmIDProd1, &rec.RlmIDProd2,
		&rec.CreatedBy, &rec.DateRequested, &rec.DateModified,
	)
	if err != nil {
		return nil, err
	}
	rec.Environments = make([]domain.Environment, 0, len(envs))
	for _, e := range envs {
		rec.Environments = append(rec.Environments, domain.Environment(e))
	}
	return &rec, nil
}

func (r *DeploymentRepository) GetByID(ctx context.Context, id string) (*domain.DeploymentRecord, error) {
	query := `SELECT ` + deploymentColumns + ` FROM deployments WHERE id = $1`

	rec, err := scanDeployment(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scanning deployment: %w", err)
	}
	return rec, nil
}

func (r *DeploymentRepository) List(ctx context.Context) ([]*domain.DeploymentRecord, error) {
	query := `SELECT ` + deploymentColumns + ` FROM deployments`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing deployments: %w", err)
	}
	defer rows.Close()

	var out []*domain.DeploymentRecord
	for rows.Next() {
		rec, err := scanDeployment(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning deployment row: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating deployments: %w", err)
	}
	return out, nil
}

func (r *DeploymentRepository) Save(ctx context.Context, rec *domain.DeploymentRecord) error {
	const stmt = `INSERT INTO deployments (id, serial_number, csi_id, service, team, release,
	                  request_id, upcoming_branch, is_config, config_request_id, upcoming_config_branch,
	                  environments, status, production_ready, performance_ready,
	                  rlm_id_uat1, rlm_id_uat2, rlm_id_uat3, rlm_id_perf1, rlm_id_perf2, rlm_id_prod1, rlm_id_prod2,
	                  created_by, date_requested, date_modified)
	              VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25)
	              ON CONFLICT (id) DO UPDATE
	              SET csi_id = EXCLUDED.csi_id,
	                  service = EXCLUDED.service,
	                  team = EXCLUDED.team,
	                  release = EXCLUDED.release,
	                  request_id = EXCLUDED.request_id,
	                  upcoming_branch = EXCLUDED.upcoming_branch,
	                  is_config = EXCLUDED.is_config,
	                  config_request_id = EXCLUDED.config_request_id,
	                  upcoming_config_branch = EXCLUDED.upcoming_config_branch,
	                  environments = EXCLUDED.environments,
	                  status = EXCLUDED.status,
	                  production_ready = EXCLUDED.production_ready,
	                  performance_ready = EXCLUDED.performance_ready,
	                  rlm_id_uat1 = EXCLUDED.rlm_id_uat1,
	                  rlm_id_uat2 = EXCLUDED.rlm_id_uat2,
	                  rlm_id_uat3 = EXCLUDED.rlm_id_uat3,
	                  rlm_id_perf1 = EXCLUDED.rlm_id_perf1,
	                  rlm_id_perf2 = EXCLUDED.rlm_id_perf2,
	                  rlm_id_prod1 = EXCLUDED.rlm_id_prod1,
	                  rlm_id_prod2 = EXCLUDED.rlm_id_prod2,
	                  date_modified = EXCLUDED.date_modified`

	envs := make([]string, 0, len(rec.Environments))
	for _, e := range rec.Environments {
		envs = append(envs, string(e))
	}

	_, err := r.pool.Exec(ctx, stmt,
		rec.ID, rec.SerialNumber, rec.CsiID, rec.Service, rec.Team, rec.Release,
		rec.RequestID, rec.UpcomingBranch, rec.IsConfig, rec.ConfigRequestID, rec.UpcomingConfigBranch,
		envs, string(rec.Status), rec.ProductionReady, rec.PerformanceReady,
		rec.RlmIDUat1, rec.RlmIDUat2, rec.RlmIDUat3, rec.RlmIDPerf1, rec.RlmIDPerf2,
		rec.RlmIDProd1, rec.RlmIDProd2,
		rec.CreatedBy, rec.DateRequested, rec.DateModified,
	)
	if err != nil {
		return fmt.Errorf("saving deployment: %w", err)
	}
	return nil
}

func (r *DeploymentRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM deployments WHERE id = $1`, id); err != nil {
		return fmt.Errorf("deleting deployment: %w", err)
	}
	return nil
}

func (r *DeploymentRepository) NextSerial(ctx context.Context) (int64, error) {
	var serial int64
	if err := r.pool.QueryRow(ctx, `SELECT nextval('deployment_serial_seq')`).Scan(&serial); err != nil {
		return 0, fmt.Errorf("allocating deployment serial: %w", err)
	}
	return serial, nil
}
