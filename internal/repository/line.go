package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/paichan/paichan/pkg/model"
)

// LineRepository 产线仓储
type LineRepository struct {
	db DB
}

// NewLineRepository 创建产线仓储
func NewLineRepository(db DB) *LineRepository {
	return &LineRepository{db: db}
}

// Create 创建产线
func (r *LineRepository) Create(ctx context.Context, line *model.Line) error {
	if line.ID == uuid.Nil {
		line.ID = uuid.New()
	}
	now := time.Now()
	line.CreatedAt = now
	line.UpdatedAt = now

	query := `
		INSERT INTO lines (id, org_id, name, code, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.ExecContext(ctx, query,
		line.ID, line.OrgID, line.Name, line.Code, line.IsActive, line.CreatedAt, line.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("创建产线失败: %w", err)
	}

	return nil
}

// GetByID 根据ID获取产线
func (r *LineRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Line, error) {
	query := `
		SELECT id, org_id, name, code, is_active, created_at, updated_at
		FROM lines
		WHERE id = $1 AND deleted_at IS NULL
	`

	return r.scanLine(r.db.QueryRowContext(ctx, query, id))
}

// GetByCode 根据组织和编码获取产线
func (r *LineRepository) GetByCode(ctx context.Context, orgID uuid.UUID, code string) (*model.Line, error) {
	query := `
		SELECT id, org_id, name, code, is_active, created_at, updated_at
		FROM lines
		WHERE org_id = $1 AND code = $2 AND deleted_at IS NULL
	`

	return r.scanLine(r.db.QueryRowContext(ctx, query, orgID, code))
}

// Update 更新产线
func (r *LineRepository) Update(ctx context.Context, line *model.Line) error {
	line.UpdatedAt = time.Now()

	query := `
		UPDATE lines SET name = $2, code = $3, is_active = $4, updated_at = $5
		WHERE id = $1 AND deleted_at IS NULL
	`

	result, err := r.db.ExecContext(ctx, query,
		line.ID, line.Name, line.Code, line.IsActive, line.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("更新产线失败: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("产线不存在")
	}

	return nil
}

// Delete 软删除产线
func (r *LineRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE lines SET deleted_at = $2 WHERE id = $1 AND deleted_at IS NULL`

	result, err := r.db.ExecContext(ctx, query, id, time.Now())
	if err != nil {
		return fmt.Errorf("删除产线失败: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("产线不存在")
	}

	return nil
}

// ListByOrg 列出组织下的全部产线（按创建时间升序，排产快照依赖该顺序）
func (r *LineRepository) ListByOrg(ctx context.Context, orgID uuid.UUID, activeOnly bool) ([]*model.Line, error) {
	query := `
		SELECT id, org_id, name, code, is_active, created_at, updated_at
		FROM lines
		WHERE org_id = $1 AND deleted_at IS NULL
	`
	if activeOnly {
		query += " AND is_active = true"
	}
	query += " ORDER BY created_at ASC, id ASC"

	rows, err := r.db.QueryContext(ctx, query, orgID)
	if err != nil {
		return nil, fmt.Errorf("查询产线列表失败: %w", err)
	}
	defer rows.Close()

	var lines []*model.Line
	for rows.Next() {
		line, err := r.scanLine(rows)
		if err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}

	return lines, rows.Err()
}

func (r *LineRepository) scanLine(s Scanner) (*model.Line, error) {
	var line model.Line
	err := s.Scan(
		&line.ID, &line.OrgID, &line.Name, &line.Code, &line.IsActive,
		&line.CreatedAt, &line.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("扫描产线数据失败: %w", err)
	}
	return &line, nil
}

// ReferenceRepository 参考（产品规格）仓储
type ReferenceRepository struct {
	db DB
}

// NewReferenceRepository 创建参考仓储
func NewReferenceRepository(db DB) *ReferenceRepository {
	return &ReferenceRepository{db: db}
}

// Create 创建参考
func (r *ReferenceRepository) Create(ctx context.Context, ref *model.Reference) error {
	if ref.ID == uuid.Nil {
		ref.ID = uuid.New()
	}
	now := time.Now()
	ref.CreatedAt = now
	ref.UpdatedAt = now

	query := `
		INSERT INTO references_catalog (id, org_id, name, code, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.ExecContext(ctx, query,
		ref.ID, ref.OrgID, ref.Name, ref.Code, ref.IsActive, ref.CreatedAt, ref.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("创建参考失败: %w", err)
	}

	return nil
}

// GetByID 根据ID获取参考
func (r *ReferenceRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Reference, error) {
	query := `
		SELECT id, org_id, name, code, is_active, created_at, updated_at
		FROM references_catalog
		WHERE id = $1 AND deleted_at IS NULL
	`

	return r.scanReference(r.db.QueryRowContext(ctx, query, id))
}

// Update 更新参考
func (r *ReferenceRepository) Update(ctx context.Context, ref *model.Reference) error {
	ref.UpdatedAt = time.Now()

	query := `
		UPDATE references_catalog SET name = $2, code = $3, is_active = $4, updated_at = $5
		WHERE id = $1 AND deleted_at IS NULL
	`

	result, err := r.db.ExecContext(ctx, query,
		ref.ID, ref.Name, ref.Code, ref.IsActive, ref.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("更新参考失败: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("参考不存在")
	}

	return nil
}

// Delete 软删除参考
func (r *ReferenceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE references_catalog SET deleted_at = $2 WHERE id = $1 AND deleted_at IS NULL`

	result, err := r.db.ExecContext(ctx, query, id, time.Now())
	if err != nil {
		return fmt.Errorf("删除参考失败: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("参考不存在")
	}

	return nil
}

// ListByOrg 列出组织下的全部参考
func (r *ReferenceRepository) ListByOrg(ctx context.Context, orgID uuid.UUID, activeOnly bool) ([]*model.Reference, error) {
	query := `
		SELECT id, org_id, name, code, is_active, created_at, updated_at
		FROM references_catalog
		WHERE org_id = $1 AND deleted_at IS NULL
	`
	if activeOnly {
		query += " AND is_active = true"
	}
	query += " ORDER BY created_at ASC, id ASC"

	rows, err := r.db.QueryContext(ctx, query, orgID)
	if err != nil {
		return nil, fmt.Errorf("查询参考列表失败: %w", err)
	}
	defer rows.Close()

	var refs []*model.Reference
	for rows.Next() {
		ref, err := r.scanReference(rows)
		if err != nil {
			return nil, err
		}
		refs = append(refs, ref)
	}

	return refs, rows.Err()
}

func (r *ReferenceRepository) scanReference(s Scanner) (*model.Reference, error) {
	var ref model.Reference
	err := s.Scan(
		&ref.ID, &ref.OrgID, &ref.Name, &ref.Code, &ref.IsActive,
		&ref.CreatedAt, &ref.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("扫描参考数据失败: %w", err)
	}
	return &ref, nil
}
