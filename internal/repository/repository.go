// Package repository 提供数据访问层
package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Repository 通用仓储接口
type Repository[T any] interface {
	Create(ctx context.Context, entity *T) error
	GetByID(ctx context.Context, id uuid.UUID) (*T, error)
	Update(ctx context.Context, entity *T) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filter ListFilter) ([]*T, int, error)
}

// ListFilter 列表查询过滤器
type ListFilter struct {
	OrgID       *uuid.UUID `json:"org_id,omitempty"`
	LineID      *uuid.UUID `json:"line_id,omitempty"`
	ReferenceID *uuid.UUID `json:"reference_id,omitempty"`
	Search      string     `json:"search,omitempty"`
	Offset      int        `json:"offset"`
	Limit       int        `json:"limit"`
	OrderBy     string     `json:"order_by,omitempty"`
	OrderDir    string     `json:"order_dir,omitempty"` // asc/desc
}

// DefaultListFilter 返回默认过滤器
func DefaultListFilter() ListFilter {
	return ListFilter{
		Offset:   0,
		Limit:    20,
		OrderBy:  "created_at",
		OrderDir: "desc",
	}
}

// WithLimit 设置限制
func (f ListFilter) WithLimit(limit int) ListFilter {
	f.Limit = limit
	return f
}

// WithOffset 设置偏移
func (f ListFilter) WithOffset(offset int) ListFilter {
	f.Offset = offset
	return f
}

// WithOrgID 设置组织ID
func (f ListFilter) WithOrgID(orgID uuid.UUID) ListFilter {
	f.OrgID = &orgID
	return f
}

// WithLineID 设置产线过滤
func (f ListFilter) WithLineID(lineID uuid.UUID) ListFilter {
	f.LineID = &lineID
	return f
}

// WithReferenceID 设置参考过滤
func (f ListFilter) WithReferenceID(refID uuid.UUID) ListFilter {
	f.ReferenceID = &refID
	return f
}

// DB 数据库接口
type DB interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// Scanner 行扫描接口
type Scanner interface {
	Scan(dest ...interface{}) error
}

// uuidArray 将 UUID 切片转换为 PostgreSQL 数组参数
func uuidArray(ids []uuid.UUID) interface{} {
	strs := make([]string, len(ids))
	for i, id := range ids {
		strs[i] = id.String()
	}
	return pq.Array(strs)
}
