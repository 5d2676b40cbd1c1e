package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/paichan/paichan/internal/database"
	"github.com/paichan/paichan/pkg/model"
)

// PlanRepository 排产运行仓储
type PlanRepository struct {
	db *database.DB
}

// NewPlanRepository 创建排产运行仓储
func NewPlanRepository(db *database.DB) *PlanRepository {
	return &PlanRepository{db: db}
}

// SaveRun 持久化一次排产运行及其全部排产块（同一事务）
func (r *PlanRepository) SaveRun(ctx context.Context, run *model.PlanRun) error {
	if run.ID == uuid.Nil {
		run.ID = uuid.New()
	}
	now := time.Now()
	run.CreatedAt = now
	run.UpdatedAt = now

	return r.db.Transaction(ctx, func(tx *sql.Tx) error {
		runQuery := `
			INSERT INTO plan_runs (id, org_id, plan_year, plan_week, status, errors, warnings, duration_ms, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		`
		_, err := tx.ExecContext(ctx, runQuery,
			run.ID, run.OrgID, run.Week.Year, run.Week.Week, run.Status,
			pq.Array(run.Errors), pq.Array(run.Warnings),
			run.Duration.Milliseconds(), run.CreatedAt, run.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("保存排产运行失败: %w", err)
		}

		itemQuery := `
			INSERT INTO plan_items (id, run_id, line_id, reference_id, plan_date, start_hour, end_hour, duration, quantity, is_setup)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		`
		for _, item := range run.Items {
			if _, err := tx.ExecContext(ctx, itemQuery,
				item.ID, run.ID, item.LineID, item.ReferenceID, item.Date,
				item.StartHour, item.EndHour, item.Duration, item.Quantity, item.IsSetup,
			); err != nil {
				return fmt.Errorf("保存排产块失败: %w", err)
			}
		}

		return nil
	})
}

// GetRun 获取排产运行及其全部排产块
func (r *PlanRepository) GetRun(ctx context.Context, id uuid.UUID) (*model.PlanRun, error) {
	runQuery := `
		SELECT id, org_id, plan_year, plan_week, status, errors, warnings, duration_ms, created_at, updated_at
		FROM plan_runs
		WHERE id = $1 AND deleted_at IS NULL
	`

	var run model.PlanRun
	var durationMs int64
	err := r.db.QueryRowContext(ctx, runQuery, id).Scan(
		&run.ID, &run.OrgID, &run.Week.Year, &run.Week.Week, &run.Status,
		pq.Array(&run.Errors), pq.Array(&run.Warnings),
		&durationMs, &run.CreatedAt, &run.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("查询排产运行失败: %w", err)
	}
	run.Duration = time.Duration(durationMs) * time.Millisecond

	items, err := r.listItems(ctx, id)
	if err != nil {
		return nil, err
	}
	run.Items = items

	return &run, nil
}

// ListRunsByOrg 列出组织下的排产运行（不含排产块，按创建时间倒序）
func (r *PlanRepository) ListRunsByOrg(ctx context.Context, orgID uuid.UUID, limit int) ([]*model.PlanRun, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT id, org_id, plan_year, plan_week, status, errors, warnings, duration_ms, created_at, updated_at
		FROM plan_runs
		WHERE org_id = $1 AND deleted_at IS NULL
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := r.db.QueryContext(ctx, query, orgID, limit)
	if err != nil {
		return nil, fmt.Errorf("查询排产运行列表失败: %w", err)
	}
	defer rows.Close()

	var runs []*model.PlanRun
	for rows.Next() {
		var run model.PlanRun
		var durationMs int64
		if err := rows.Scan(
			&run.ID, &run.OrgID, &run.Week.Year, &run.Week.Week, &run.Status,
			pq.Array(&run.Errors), pq.Array(&run.Warnings),
			&durationMs, &run.CreatedAt, &run.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("扫描排产运行失败: %w", err)
		}
		run.Duration = time.Duration(durationMs) * time.Millisecond
		runs = append(runs, &run)
	}

	return runs, rows.Err()
}

// listItems 查询一次运行的全部排产块（按日期和开始时间排序）
func (r *PlanRepository) listItems(ctx context.Context, runID uuid.UUID) ([]*model.PlanItem, error) {
	query := `
		SELECT id, run_id, line_id, reference_id, plan_date, start_hour, end_hour, duration, quantity, is_setup
		FROM plan_items
		WHERE run_id = $1
		ORDER BY plan_date ASC, start_hour ASC, id ASC
	`

	rows, err := r.db.QueryContext(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("查询排产块失败: %w", err)
	}
	defer rows.Close()

	var items []*model.PlanItem
	for rows.Next() {
		var item model.PlanItem
		if err := rows.Scan(
			&item.ID, &item.RunID, &item.LineID, &item.ReferenceID, &item.Date,
			&item.StartHour, &item.EndHour, &item.Duration, &item.Quantity, &item.IsSetup,
		); err != nil {
			return nil, fmt.Errorf("扫描排产块失败: %w", err)
		}
		items = append(items, &item)
	}

	return items, rows.Err()
}
