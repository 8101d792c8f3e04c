package part

import (
	"errors"
	"fmt"
	"time"
)

// 库存记账相关的业务错误（供上层 errors.Is 判断）。
var (
	ErrPartNotFound      = errors.New("part not found")
	ErrDeliveryPending   = errors.New("part delivery pending")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrInvalidQuantity   = errors.New("quantity must be positive")
	ErrInvalidPart       = errors.New("invalid part")
)

// Part 是 parts 表的 GORM 模型。
// Cost 为当前单价；预约时由维保工作流快照到用量行，之后改价不影响历史记录。
type Part struct {
	ID              int64     `gorm:"primaryKey;autoIncrement"`
	Name            string    `gorm:"size:64;not null"`
	Description     string    `gorm:"size:255"`
	StockQty        int       `gorm:"not null;default:0"`
	Cost            float64   `gorm:"not null;default:0"`
	Supplier        string    `gorm:"size:64"`
	PendingDelivery bool      `gorm:"not null;default:false"`
	CreatedAt       time.Time `gorm:"autoCreateTime"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime"`
}

// Available 有库存且不处于待收货状态才视为可用。
func (p *Part) Available() bool {
	return p.StockQty > 0 && !p.PendingDelivery
}

// Inactive 零库存且无在途收货。
func (p *Part) Inactive() bool {
	return p.StockQty == 0 && !p.PendingDelivery
}

// CanReserve 预扣前校验：在途收货期间不可动用，库存必须足额。
// 校验失败不产生任何状态变更。
func (p *Part) CanReserve(qty int) error {
	if qty <= 0 {
		return fmt.Errorf("part %d: %w", p.ID, ErrInvalidQuantity)
	}
	if p.PendingDelivery {
		return fmt.Errorf("part %d (%s): %w", p.ID, p.Name, ErrDeliveryPending)
	}
	if p.StockQty < qty {
		return fmt.Errorf("part %d (%s): available %d, requested %d: %w",
			p.ID, p.Name, p.StockQty, qty, ErrInsufficientStock)
	}
	return nil
}

// Validate 基本字段校验（新增/编辑共用）。
func (p *Part) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("part name required: %w", ErrInvalidPart)
	}
	if p.Supplier == "" {
		return fmt.Errorf("supplier required: %w", ErrInvalidPart)
	}
	if p.StockQty < 0 {
		return fmt.Errorf("stock quantity cannot be negative: %w", ErrInvalidPart)
	}
	if p.Cost < 0 {
		return fmt.Errorf("cost cannot be negative: %w", ErrInvalidPart)
	}
	return nil
}
