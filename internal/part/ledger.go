package part

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

// partStore 是 Ledger 对底层存储的最小依赖，由 Repo 实现。
type partStore interface {
	Create(ctx context.Context, p *Part) error
	Save(ctx context.Context, p *Part) error
	FindByID(ctx context.Context, id int64) (*Part, error)
	FindByIDForUpdate(ctx context.Context, id int64) (*Part, error)
}

// Ledger 是零部件库存的权威记账服务。
// 所有扣减/回补都经由这里；直接编辑库存的路径在待收货期间被禁止。
// 预扣/回补一律带行锁读取，配合上层事务形成每个零件串行访问的纪律。
type Ledger struct {
	repo partStore
}

func NewLedger(db *gorm.DB) *Ledger {
	return &Ledger{repo: NewRepo(db)}
}

// Check 预检：零件存在、未在途收货、库存足额。不产生任何变更。
func (l *Ledger) Check(ctx context.Context, partID int64, qty int) error {
	p, err := l.repo.FindByIDForUpdate(ctx, partID)
	if err != nil {
		return err
	}
	return p.CanReserve(qty)
}

// Reserve 预扣 qty 件库存，返回当前单价作为用量行上要落库的快照值。
// 任一校验失败时不发生部分扣减。
func (l *Ledger) Reserve(ctx context.Context, partID int64, qty int) (float64, error) {
	p, err := l.repo.FindByIDForUpdate(ctx, partID)
	if err != nil {
		return 0, err
	}
	if err := p.CanReserve(qty); err != nil {
		return 0, err
	}
	p.StockQty -= qty
	if err := l.repo.Save(ctx, p); err != nil {
		return 0, err
	}
	return p.Cost, nil
}

// Release 回补 qty 件库存：撤销预扣（取消维保）或入库。
// 回补不校验待收货状态，补货永远合法。
func (l *Ledger) Release(ctx context.Context, partID int64, qty int) error {
	if qty <= 0 {
		return fmt.Errorf("part %d: %w", partID, ErrInvalidQuantity)
	}
	p, err := l.repo.FindByIDForUpdate(ctx, partID)
	if err != nil {
		return err
	}
	p.StockQty += qty
	return l.repo.Save(ctx, p)
}

// OpenDelivery 发起一笔供应商收货；同一零件同时只允许一笔在途。
func (l *Ledger) OpenDelivery(ctx context.Context, partID int64) error {
	p, err := l.repo.FindByIDForUpdate(ctx, partID)
	if err != nil {
		return err
	}
	if p.PendingDelivery {
		return fmt.Errorf("part %d (%s): %w", p.ID, p.Name, ErrDeliveryPending)
	}
	p.PendingDelivery = true
	return l.repo.Save(ctx, p)
}

// CloseDelivery 收货入库：要求存在在途收货且数量为正，入库并清除标记。
func (l *Ledger) CloseDelivery(ctx context.Context, partID int64, quantityReceived int) error {
	if quantityReceived <= 0 {
		return fmt.Errorf("part %d: quantity received %d: %w", partID, quantityReceived, ErrInvalidQuantity)
	}
	p, err := l.repo.FindByIDForUpdate(ctx, partID)
	if err != nil {
		return err
	}
	if !p.PendingDelivery {
		return fmt.Errorf("part %d has no pending delivery: %w", partID, ErrInvalidPart)
	}
	p.StockQty += quantityReceived
	p.PendingDelivery = false
	return l.repo.Save(ctx, p)
}

// IsAvailable 有库存且不在待收货状态。
func (l *Ledger) IsAvailable(ctx context.Context, partID int64) (bool, error) {
	p, err := l.repo.FindByID(ctx, partID)
	if err != nil {
		return false, err
	}
	return p.Available(), nil
}

// AddPart 新增零件。
func (l *Ledger) AddPart(ctx context.Context, p *Part) error {
	if err := p.Validate(); err != nil {
		return err
	}
	return l.repo.Create(ctx, p)
}

// UpdatePart 编辑零件。待收货期间禁止通过编辑路径改动库存数，
// 入库只能走 CloseDelivery。
func (l *Ledger) UpdatePart(ctx context.Context, p *Part) error {
	existing, err := l.repo.FindByIDForUpdate(ctx, p.ID)
	if err != nil {
		return err
	}
	if err := p.Validate(); err != nil {
		return err
	}
	if existing.PendingDelivery && p.StockQty != existing.StockQty {
		return fmt.Errorf("part %d: stock locked until delivery closes: %w", p.ID, ErrDeliveryPending)
	}
	// 在途标记只能经由 OpenDelivery / CloseDelivery 翻转。
	p.PendingDelivery = existing.PendingDelivery
	return l.repo.Save(ctx, p)
}

// Deactivate 下架零件：清零库存并清除在途标记（不做物理删除）。
func (l *Ledger) Deactivate(ctx context.Context, partID int64) error {
	p, err := l.repo.FindByIDForUpdate(ctx, partID)
	if err != nil {
		return err
	}
	p.StockQty = 0
	p.PendingDelivery = false
	return l.repo.Save(ctx, p)
}

// Reactivate 重新启用已下架零件：通过发起一笔收货等待补货。
func (l *Ledger) Reactivate(ctx context.Context, partID int64) error {
	p, err := l.repo.FindByIDForUpdate(ctx, partID)
	if err != nil {
		return err
	}
	if !p.Inactive() {
		return fmt.Errorf("part %d is not inactive: %w", partID, ErrInvalidPart)
	}
	p.PendingDelivery = true
	return l.repo.Save(ctx, p)
}
