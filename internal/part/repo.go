package part

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repo struct {
	db *gorm.DB
}

func NewRepo(db *gorm.DB) *Repo {
	return &Repo{db: db}
}

func (r *Repo) withCtx(ctx context.Context) *gorm.DB {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.WithContext(ctx)
}

func (r *Repo) Create(ctx context.Context, p *Part) error {
	db := r.withCtx(ctx)
	if db == nil {
		return fmt.Errorf("repo db is nil")
	}
	return db.Create(p).Error
}

func (r *Repo) Save(ctx context.Context, p *Part) error {
	db := r.withCtx(ctx)
	if db == nil {
		return fmt.Errorf("repo db is nil")
	}
	return db.Save(p).Error
}

func (r *Repo) FindByID(ctx context.Context, id int64) (*Part, error) {
	return r.find(ctx, id, false)
}

// FindByIDForUpdate 以 SELECT ... FOR UPDATE 读取，用于事务内的库存扣减/回补。
func (r *Repo) FindByIDForUpdate(ctx context.Context, id int64) (*Part, error) {
	return r.find(ctx, id, true)
}

func (r *Repo) find(ctx context.Context, id int64, lock bool) (*Part, error) {
	db := r.withCtx(ctx)
	if db == nil {
		return nil, fmt.Errorf("repo db is nil")
	}
	if lock {
		db = db.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var p Part
	if err := db.Where("id = ?", id).First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("part %d: %w", id, ErrPartNotFound)
		}
		return nil, err
	}
	return &p, nil
}

// ListFilter 列表过滤条件。
type ListFilter int

const (
	ListAll        ListFilter = iota
	ListActive                // 有库存或有在途收货
	ListInactive              // 零库存且无在途收货
	ListOutOfStock            // 零库存
)

// List 支持按可用性/供应商过滤 + 分页。
func (r *Repo) List(ctx context.Context, filter ListFilter, supplier string, offset, limit int) ([]Part, int64, error) {
	db := r.withCtx(ctx)
	if db == nil {
		return nil, 0, fmt.Errorf("repo db is nil")
	}
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	q := db.Model(&Part{})
	switch filter {
	case ListActive:
		q = q.Where("stock_qty > 0 OR pending_delivery = ?", true)
	case ListInactive:
		q = q.Where("stock_qty = 0 AND pending_delivery = ?", false)
	case ListOutOfStock:
		q = q.Where("stock_qty = 0")
	}
	if supplier != "" {
		q = q.Where("supplier = ?", supplier)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var parts []Part
	if err := q.Order("id").Offset(offset).Limit(limit).Find(&parts).Error; err != nil {
		return nil, 0, err
	}
	return parts, total, nil
}
