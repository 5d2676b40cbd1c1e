package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/paichan/paichan/pkg/model"
)

// SnapshotLoader 排产配置快照加载器
// 将组织的产线、参考、产能、可用性、换型时间、需求一次性装配为只读快照
type SnapshotLoader struct {
	lines          *LineRepository
	references     *ReferenceRepository
	throughputs    *ThroughputRepository
	availabilities *AvailabilityRepository
	setupTimes     *SetupTimeRepository
	demands        *DemandRepository
}

// NewSnapshotLoader 创建快照加载器
func NewSnapshotLoader(db DB) *SnapshotLoader {
	return &SnapshotLoader{
		lines:          NewLineRepository(db),
		references:     NewReferenceRepository(db),
		throughputs:    NewThroughputRepository(db),
		availabilities: NewAvailabilityRepository(db),
		setupTimes:     NewSetupTimeRepository(db),
		demands:        NewDemandRepository(db),
	}
}

// Load 加载组织的排产配置快照
// 只加载启用中的产线和参考；各切片保持仓储返回的稳定顺序
func (l *SnapshotLoader) Load(ctx context.Context, orgID uuid.UUID) (*model.PlanConfig, error) {
	lines, err := l.lines.ListByOrg(ctx, orgID, true)
	if err != nil {
		return nil, fmt.Errorf("加载产线失败: %w", err)
	}

	references, err := l.references.ListByOrg(ctx, orgID, true)
	if err != nil {
		return nil, fmt.Errorf("加载参考失败: %w", err)
	}

	lineIDs := make([]uuid.UUID, len(lines))
	for i, line := range lines {
		lineIDs[i] = line.ID
	}

	throughputs, err := l.throughputs.ListByLines(ctx, lineIDs)
	if err != nil {
		return nil, fmt.Errorf("加载产能配置失败: %w", err)
	}

	availabilities, err := l.availabilities.ListByLines(ctx, lineIDs)
	if err != nil {
		return nil, fmt.Errorf("加载产线可用性失败: %w", err)
	}

	setupTimes, err := l.setupTimes.ListByLines(ctx, lineIDs)
	if err != nil {
		return nil, fmt.Errorf("加载换型时间失败: %w", err)
	}

	demands, err := l.demands.ListByOrg(ctx, orgID)
	if err != nil {
		return nil, fmt.Errorf("加载需求失败: %w", err)
	}

	return &model.PlanConfig{
		Lines:          lines,
		References:     references,
		Throughputs:    throughputs,
		Availabilities: availabilities,
		SetupTimes:     setupTimes,
		Demands:        demands,
	}, nil
}
