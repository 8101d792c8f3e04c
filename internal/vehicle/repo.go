package vehicle

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repo struct {
	db        *gorm.DB
	forUpdate bool
}

func NewRepo(db *gorm.DB) *Repo {
	return &Repo{db: db}
}

// ForUpdate 返回读操作带 SELECT ... FOR UPDATE 行锁的副本。
// 维保工作流在事务内用它先锁住车辆行，再读当前状态，
// 使同一辆车上的多步操作彼此串行。
func (r *Repo) ForUpdate() *Repo {
	if r == nil {
		return nil
	}
	return &Repo{db: r.db, forUpdate: true}
}

func (r *Repo) withCtx(ctx context.Context) *gorm.DB {
	if r == nil || r.db == nil {
		return nil
	}
	db := r.db.WithContext(ctx)
	if r.forUpdate {
		db = db.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return db
}

func (r *Repo) Upsert(ctx context.Context, v *Vehicle) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("repo db is nil")
	}
	if !v.Status.Valid() {
		return fmt.Errorf("status %q: %w", v.Status, ErrInvalidStatus)
	}
	return r.db.WithContext(ctx).Save(v).Error
}

func (r *Repo) FindByID(ctx context.Context, id int64) (*Vehicle, error) {
	db := r.withCtx(ctx)
	if db == nil {
		return nil, fmt.Errorf("repo db is nil")
	}
	var v Vehicle
	if err := db.Where("id = ?", id).First(&v).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("vehicle %d: %w", id, ErrVehicleNotFound)
		}
		return nil, err
	}
	return &v, nil
}

// Status 读取车辆当前运营状态。
func (r *Repo) Status(ctx context.Context, id int64) (Status, error) {
	v, err := r.FindByID(ctx, id)
	if err != nil {
		return "", err
	}
	return v.Status, nil
}

// SetStatus 写入车辆运营状态；写同一状态是幂等的。
func (r *Repo) SetStatus(ctx context.Context, id int64, st Status) error {
	if !st.Valid() {
		return fmt.Errorf("status %q: %w", st, ErrInvalidStatus)
	}
	v, err := r.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if v.Status == st {
		return nil
	}
	v.Status = st
	return r.db.WithContext(ctx).Save(v).Error
}

// List 支持按状态过滤 + 分页。
func (r *Repo) List(ctx context.Context, status Status, offset, limit int) ([]Vehicle, int64, error) {
	if r == nil || r.db == nil {
		return nil, 0, fmt.Errorf("repo db is nil")
	}
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	q := r.db.WithContext(ctx).Model(&Vehicle{})
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var vehicles []Vehicle
	if err := q.Order("id").Offset(offset).Limit(limit).Find(&vehicles).Error; err != nil {
		return nil, 0, err
	}
	return vehicles, total, nil
}
