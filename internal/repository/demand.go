package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/paichan/paichan/pkg/model"
)

// DemandRepository 需求仓储
type DemandRepository struct {
	db DB
}

// NewDemandRepository 创建需求仓储
func NewDemandRepository(db DB) *DemandRepository {
	return &DemandRepository{db: db}
}

// Create 创建需求
func (r *DemandRepository) Create(ctx context.Context, d *model.Demand) error {
	if d.Quantity <= 0 {
		return fmt.Errorf("无效的需求数量: %.3f（应 > 0）", d.Quantity)
	}
	if d.HasDeadline() {
		if _, err := model.ParseDate(*d.Deadline); err != nil {
			return fmt.Errorf("无效的截止日期 %q: %w", *d.Deadline, err)
		}
	}
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	now := time.Now()
	d.CreatedAt = now
	d.UpdatedAt = now

	query := `
		INSERT INTO demands (id, org_id, reference_id, quantity, deadline, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.ExecContext(ctx, query,
		d.ID, d.OrgID, d.ReferenceID, d.Quantity, nullableString(d.Deadline), d.CreatedAt, d.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("创建需求失败: %w", err)
	}

	return nil
}

// GetByID 根据ID获取需求
func (r *DemandRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Demand, error) {
	query := `
		SELECT id, org_id, reference_id, quantity, deadline, created_at, updated_at
		FROM demands
		WHERE id = $1 AND deleted_at IS NULL
	`

	return r.scanDemand(r.db.QueryRowContext(ctx, query, id))
}

// Update 更新需求
func (r *DemandRepository) Update(ctx context.Context, d *model.Demand) error {
	d.UpdatedAt = time.Now()

	query := `
		UPDATE demands SET reference_id = $2, quantity = $3, deadline = $4, updated_at = $5
		WHERE id = $1 AND deleted_at IS NULL
	`

	result, err := r.db.ExecContext(ctx, query,
		d.ID, d.ReferenceID, d.Quantity, nullableString(d.Deadline), d.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("更新需求失败: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("需求不存在")
	}

	return nil
}

// Delete 软删除需求
func (r *DemandRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE demands SET deleted_at = $2 WHERE id = $1 AND deleted_at IS NULL`

	result, err := r.db.ExecContext(ctx, query, id, time.Now())
	if err != nil {
		return fmt.Errorf("删除需求失败: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("需求不存在")
	}

	return nil
}

// ListByOrg 列出组织下的全部需求（按创建时间升序，保持输入顺序稳定）
func (r *DemandRepository) ListByOrg(ctx context.Context, orgID uuid.UUID) ([]*model.Demand, error) {
	query := `
		SELECT id, org_id, reference_id, quantity, deadline, created_at, updated_at
		FROM demands
		WHERE org_id = $1 AND deleted_at IS NULL
		ORDER BY created_at ASC, id ASC
	`

	rows, err := r.db.QueryContext(ctx, query, orgID)
	if err != nil {
		return nil, fmt.Errorf("查询需求列表失败: %w", err)
	}
	defer rows.Close()

	var demands []*model.Demand
	for rows.Next() {
		d, err := r.scanDemand(rows)
		if err != nil {
			return nil, err
		}
		demands = append(demands, d)
	}

	return demands, rows.Err()
}

func (r *DemandRepository) scanDemand(s Scanner) (*model.Demand, error) {
	var d model.Demand
	var deadline sql.NullString
	err := s.Scan(
		&d.ID, &d.OrgID, &d.ReferenceID, &d.Quantity, &deadline,
		&d.CreatedAt, &d.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("扫描需求数据失败: %w", err)
	}
	if deadline.Valid {
		d.Deadline = &deadline.String
	}
	return &d, nil
}

func nullableString(s *string) interface{} {
	if s == nil || *s == "" {
		return nil
	}
	return *s
}
