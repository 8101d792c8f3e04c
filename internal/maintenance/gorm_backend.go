package maintenance

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/FleetLink/FleetLink/internal/part"
	"github.com/FleetLink/FleetLink/internal/vehicle"
	"gorm.io/gorm"
)

// GormBackend 基于 GORM/MySQL 事务实现 Backend（方案：每个工作流操作
// 一个 ACID 事务）。事务内先通过各仓储的 FOR UPDATE 读取锁住车辆行与
// 零件行，再读取当前状态，提交时任务/用量/库存/车辆状态一起落库。
// 锁等待有上限：超时映射为可重试的 ErrBusy，不会无限阻塞。
type GormBackend struct {
	db       *gorm.DB
	lockWait time.Duration
}

func NewGormBackend(db *gorm.DB, lockWait time.Duration) *GormBackend {
	return &GormBackend{db: db, lockWait: lockWait}
}

func (b *GormBackend) InTx(ctx context.Context, fn func(ctx context.Context, d Deps) error) error {
	if b == nil || b.db == nil {
		return fmt.Errorf("backend db is nil")
	}
	if b.lockWait > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.lockWait)
		defer cancel()
	}
	err := b.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		d := Deps{
			Parts:    part.NewLedger(tx),
			Vehicles: vehicle.NewRepo(tx).ForUpdate(),
			Jobs:     NewStore(tx).ForUpdate(),
		}
		return fn(ctx, d)
	})
	return translateBusy(err)
}

func (b *GormBackend) Read() Deps {
	return Deps{
		Parts:    part.NewLedger(b.db),
		Vehicles: vehicle.NewRepo(b.db),
		Jobs:     NewStore(b.db),
	}
}

// translateBusy 把锁等待超时类失败统一映射为 ErrBusy，交由调用方重试。
func translateBusy(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("transaction deadline exceeded: %w", ErrBusy)
	}
	msg := err.Error()
	if strings.Contains(msg, "Lock wait timeout exceeded") ||
		strings.Contains(msg, "Deadlock found") {
		return fmt.Errorf("%s: %w", msg, ErrBusy)
	}
	return err
}
