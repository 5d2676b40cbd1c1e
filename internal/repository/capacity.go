package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/paichan/paichan/pkg/model"
)

// ThroughputRepository 产能配置仓储
type ThroughputRepository struct {
	db DB
}

// NewThroughputRepository 创建产能配置仓储
func NewThroughputRepository(db DB) *ThroughputRepository {
	return &ThroughputRepository{db: db}
}

// Upsert 创建或更新 (产线, 参考) 的产能配置
func (r *ThroughputRepository) Upsert(ctx context.Context, tp *model.Throughput) error {
	if tp.ID == uuid.Nil {
		tp.ID = uuid.New()
	}
	now := time.Now()
	tp.CreatedAt = now
	tp.UpdatedAt = now

	query := `
		INSERT INTO throughputs (id, line_id, reference_id, rate_per_hour, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (line_id, reference_id)
		DO UPDATE SET rate_per_hour = EXCLUDED.rate_per_hour, updated_at = EXCLUDED.updated_at
	`

	_, err := r.db.ExecContext(ctx, query,
		tp.ID, tp.LineID, tp.ReferenceID, tp.RatePerHour, tp.CreatedAt, tp.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("保存产能配置失败: %w", err)
	}

	return nil
}

// Delete 删除产能配置
func (r *ThroughputRepository) Delete(ctx context.Context, lineID, referenceID uuid.UUID) error {
	query := `DELETE FROM throughputs WHERE line_id = $1 AND reference_id = $2`

	result, err := r.db.ExecContext(ctx, query, lineID, referenceID)
	if err != nil {
		return fmt.Errorf("删除产能配置失败: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("产能配置不存在")
	}

	return nil
}

// ListByLines 列出指定产线集合的产能配置（按创建时间升序）
func (r *ThroughputRepository) ListByLines(ctx context.Context, lineIDs []uuid.UUID) ([]*model.Throughput, error) {
	if len(lineIDs) == 0 {
		return nil, nil
	}

	query := `
		SELECT id, line_id, reference_id, rate_per_hour, created_at, updated_at
		FROM throughputs
		WHERE line_id = ANY($1)
		ORDER BY created_at ASC, id ASC
	`

	rows, err := r.db.QueryContext(ctx, query, uuidArray(lineIDs))
	if err != nil {
		return nil, fmt.Errorf("查询产能配置失败: %w", err)
	}
	defer rows.Close()

	var tps []*model.Throughput
	for rows.Next() {
		var tp model.Throughput
		if err := rows.Scan(&tp.ID, &tp.LineID, &tp.ReferenceID, &tp.RatePerHour, &tp.CreatedAt, &tp.UpdatedAt); err != nil {
			return nil, fmt.Errorf("扫描产能配置失败: %w", err)
		}
		tps = append(tps, &tp)
	}

	return tps, rows.Err()
}

// AvailabilityRepository 产线可用性仓储
type AvailabilityRepository struct {
	db DB
}

// NewAvailabilityRepository 创建产线可用性仓储
func NewAvailabilityRepository(db DB) *AvailabilityRepository {
	return &AvailabilityRepository{db: db}
}

// Upsert 创建或更新 (产线, 周内日) 的可用小时
func (r *AvailabilityRepository) Upsert(ctx context.Context, av *model.Availability) error {
	if av.DayOfWeek < 0 || av.DayOfWeek > 6 {
		return fmt.Errorf("无效的周内日: %d（应为 0-6）", av.DayOfWeek)
	}
	if av.Hours < 0 || av.Hours > 24 {
		return fmt.Errorf("无效的可用小时: %.2f（应为 0-24）", av.Hours)
	}
	if av.ID == uuid.Nil {
		av.ID = uuid.New()
	}
	now := time.Now()
	av.CreatedAt = now
	av.UpdatedAt = now

	query := `
		INSERT INTO availabilities (id, line_id, day_of_week, hours, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (line_id, day_of_week)
		DO UPDATE SET hours = EXCLUDED.hours, updated_at = EXCLUDED.updated_at
	`

	_, err := r.db.ExecContext(ctx, query,
		av.ID, av.LineID, av.DayOfWeek, av.Hours, av.CreatedAt, av.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("保存产线可用性失败: %w", err)
	}

	return nil
}

// ListByLines 列出指定产线集合的可用性配置
func (r *AvailabilityRepository) ListByLines(ctx context.Context, lineIDs []uuid.UUID) ([]*model.Availability, error) {
	if len(lineIDs) == 0 {
		return nil, nil
	}

	query := `
		SELECT id, line_id, day_of_week, hours, created_at, updated_at
		FROM availabilities
		WHERE line_id = ANY($1)
		ORDER BY created_at ASC, id ASC
	`

	rows, err := r.db.QueryContext(ctx, query, uuidArray(lineIDs))
	if err != nil {
		return nil, fmt.Errorf("查询产线可用性失败: %w", err)
	}
	defer rows.Close()

	var avs []*model.Availability
	for rows.Next() {
		var av model.Availability
		if err := rows.Scan(&av.ID, &av.LineID, &av.DayOfWeek, &av.Hours, &av.CreatedAt, &av.UpdatedAt); err != nil {
			return nil, fmt.Errorf("扫描产线可用性失败: %w", err)
		}
		avs = append(avs, &av)
	}

	return avs, rows.Err()
}

// SetupTimeRepository 换型时间仓储
type SetupTimeRepository struct {
	db DB
}

// NewSetupTimeRepository 创建换型时间仓储
func NewSetupTimeRepository(db DB) *SetupTimeRepository {
	return &SetupTimeRepository{db: db}
}

// Upsert 创建或更新换型时间配置
func (r *SetupTimeRepository) Upsert(ctx context.Context, st *model.SetupTime) error {
	if st.Hours < 0 {
		return fmt.Errorf("无效的换型时间: %.2f（应 ≥ 0）", st.Hours)
	}
	if st.ID == uuid.Nil {
		st.ID = uuid.New()
	}
	now := time.Now()
	st.CreatedAt = now
	st.UpdatedAt = now

	query := `
		INSERT INTO setup_times (id, line_id, from_reference_id, to_reference_id, hours, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (line_id, from_reference_id, to_reference_id)
		DO UPDATE SET hours = EXCLUDED.hours, updated_at = EXCLUDED.updated_at
	`

	_, err := r.db.ExecContext(ctx, query,
		st.ID, st.LineID, st.FromReferenceID, st.ToReferenceID, st.Hours, st.CreatedAt, st.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("保存换型时间失败: %w", err)
	}

	return nil
}

// ListByLines 列出指定产线集合的换型时间配置
func (r *SetupTimeRepository) ListByLines(ctx context.Context, lineIDs []uuid.UUID) ([]*model.SetupTime, error) {
	if len(lineIDs) == 0 {
		return nil, nil
	}

	query := `
		SELECT id, line_id, from_reference_id, to_reference_id, hours, created_at, updated_at
		FROM setup_times
		WHERE line_id = ANY($1)
		ORDER BY created_at ASC, id ASC
	`

	rows, err := r.db.QueryContext(ctx, query, uuidArray(lineIDs))
	if err != nil {
		return nil, fmt.Errorf("查询换型时间失败: %w", err)
	}
	defer rows.Close()

	var sts []*model.SetupTime
	for rows.Next() {
		var st model.SetupTime
		if err := rows.Scan(&st.ID, &st.LineID, &st.FromReferenceID, &st.ToReferenceID, &st.Hours, &st.CreatedAt, &st.UpdatedAt); err != nil {
			return nil, fmt.Errorf("扫描换型时间失败: %w", err)
		}
		sts = append(sts, &st)
	}

	return sts, rows.Err()
}
