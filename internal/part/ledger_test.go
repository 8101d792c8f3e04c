package part

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

// memStore 内存版 partStore：返回副本，只有 Save 落库，贴近数据库语义。
type memStore struct {
	parts  map[int64]*Part
	nextID int64
}

func newMemStore(parts ...Part) *memStore {
	s := &memStore{parts: make(map[int64]*Part), nextID: 1}
	for i := range parts {
		p := parts[i]
		if p.ID == 0 {
			p.ID = s.nextID
		}
		if p.ID >= s.nextID {
			s.nextID = p.ID + 1
		}
		s.parts[p.ID] = &p
	}
	return s
}

func (s *memStore) Create(ctx context.Context, p *Part) error {
	if p.ID == 0 {
		p.ID = s.nextID
	}
	if _, ok := s.parts[p.ID]; ok {
		return fmt.Errorf("duplicate part id %d", p.ID)
	}
	s.nextID = p.ID + 1
	cp := *p
	s.parts[p.ID] = &cp
	return nil
}

func (s *memStore) Save(ctx context.Context, p *Part) error {
	if _, ok := s.parts[p.ID]; !ok {
		return fmt.Errorf("part %d: %w", p.ID, ErrPartNotFound)
	}
	cp := *p
	s.parts[p.ID] = &cp
	return nil
}

func (s *memStore) FindByID(ctx context.Context, id int64) (*Part, error) {
	p, ok := s.parts[id]
	if !ok {
		return nil, fmt.Errorf("part %d: %w", id, ErrPartNotFound)
	}
	cp := *p
	return &cp, nil
}

func (s *memStore) FindByIDForUpdate(ctx context.Context, id int64) (*Part, error) {
	return s.FindByID(ctx, id)
}

func newTestLedger(parts ...Part) (*Ledger, *memStore) {
	s := newMemStore(parts...)
	return &Ledger{repo: s}, s
}

func TestOpenDeliverySingleInFlight(t *testing.T) {
	l, s := newTestLedger(Part{ID: 1, Name: "brake pad", Supplier: "acme", StockQty: 4, Cost: 12.5})
	ctx := context.Background()

	if err := l.OpenDelivery(ctx, 1); err != nil {
		t.Fatalf("OpenDelivery: %v", err)
	}
	if !s.parts[1].PendingDelivery {
		t.Fatalf("expected pending delivery flag set")
	}
	if err := l.OpenDelivery(ctx, 1); !errors.Is(err, ErrDeliveryPending) {
		t.Fatalf("expected second delivery rejected, got %v", err)
	}
	if err := l.OpenDelivery(ctx, 404); !errors.Is(err, ErrPartNotFound) {
		t.Fatalf("expected ErrPartNotFound, got %v", err)
	}
}

func TestCloseDeliveryRestocksAndClearsFlag(t *testing.T) {
	l, s := newTestLedger(Part{ID: 1, Name: "brake pad", Supplier: "acme", StockQty: 4, Cost: 12.5})
	ctx := context.Background()

	if err := l.CloseDelivery(ctx, 1, 7); !errors.Is(err, ErrInvalidPart) {
		t.Fatalf("expected close without pending delivery rejected, got %v", err)
	}

	if err := l.OpenDelivery(ctx, 1); err != nil {
		t.Fatalf("OpenDelivery: %v", err)
	}
	if err := l.CloseDelivery(ctx, 1, 0); !errors.Is(err, ErrInvalidQuantity) {
		t.Fatalf("expected zero quantity rejected, got %v", err)
	}
	if err := l.CloseDelivery(ctx, 1, 7); err != nil {
		t.Fatalf("CloseDelivery: %v", err)
	}
	if got := s.parts[1].StockQty; got != 11 {
		t.Fatalf("expected stock 11 after restock, got %d", got)
	}
	if s.parts[1].PendingDelivery {
		t.Fatalf("expected pending delivery flag cleared")
	}

	// 标记清除后再收货需要重新 OpenDelivery
	if err := l.CloseDelivery(ctx, 1, 3); !errors.Is(err, ErrInvalidPart) {
		t.Fatalf("expected repeated close rejected, got %v", err)
	}
}

func TestReserveBlockedDuringDelivery(t *testing.T) {
	l, s := newTestLedger(Part{ID: 1, Name: "brake pad", Supplier: "acme", StockQty: 4, Cost: 12.5})
	ctx := context.Background()

	if err := l.OpenDelivery(ctx, 1); err != nil {
		t.Fatalf("OpenDelivery: %v", err)
	}
	if err := l.Check(ctx, 1, 1); !errors.Is(err, ErrDeliveryPending) {
		t.Fatalf("expected Check blocked, got %v", err)
	}
	if _, err := l.Reserve(ctx, 1, 1); !errors.Is(err, ErrDeliveryPending) {
		t.Fatalf("expected Reserve blocked, got %v", err)
	}
	if got := s.parts[1].StockQty; got != 4 {
		t.Fatalf("expected stock untouched, got %d", got)
	}

	ok, err := l.IsAvailable(ctx, 1)
	if err != nil {
		t.Fatalf("IsAvailable: %v", err)
	}
	if ok {
		t.Fatalf("expected part unavailable during delivery")
	}

	// 回补不受在途状态限制
	if err := l.Release(ctx, 1, 2); err != nil {
		t.Fatalf("Release: %v", err)
	}
	if got := s.parts[1].StockQty; got != 6 {
		t.Fatalf("expected stock 6 after release, got %d", got)
	}
}

func TestReserveSnapshotsCost(t *testing.T) {
	l, s := newTestLedger(Part{ID: 1, Name: "brake pad", Supplier: "acme", StockQty: 4, Cost: 12.5})
	ctx := context.Background()

	cost, err := l.Reserve(ctx, 1, 3)
	if err != nil {
		t.Fatalf("Reserve: %v", err)
	}
	if cost != 12.5 {
		t.Fatalf("expected cost snapshot 12.5, got %v", cost)
	}
	if got := s.parts[1].StockQty; got != 1 {
		t.Fatalf("expected stock 1, got %d", got)
	}
	if _, err := l.Reserve(ctx, 1, 2); !errors.Is(err, ErrInsufficientStock) {
		t.Fatalf("expected ErrInsufficientStock, got %v", err)
	}
}

func TestUpdatePartDeliveryGuards(t *testing.T) {
	l, s := newTestLedger(Part{ID: 1, Name: "brake pad", Supplier: "acme", StockQty: 4, Cost: 12.5})
	ctx := context.Background()

	if err := l.OpenDelivery(ctx, 1); err != nil {
		t.Fatalf("OpenDelivery: %v", err)
	}

	// 在途期间禁止经编辑路径改库存
	edit := Part{ID: 1, Name: "brake pad", Supplier: "acme", StockQty: 9, Cost: 12.5}
	if err := l.UpdatePart(ctx, &edit); !errors.Is(err, ErrDeliveryPending) {
		t.Fatalf("expected stock edit rejected, got %v", err)
	}

	// 编辑不得翻掉在途标记：即便调用方传 false 也保持原值
	edit = Part{ID: 1, Name: "brake pad", Supplier: "acme", StockQty: 4, Cost: 15.0, PendingDelivery: false}
	if err := l.UpdatePart(ctx, &edit); err != nil {
		t.Fatalf("UpdatePart: %v", err)
	}
	if !s.parts[1].PendingDelivery {
		t.Fatalf("expected pending delivery flag preserved across edit")
	}
	if got := s.parts[1].Cost; got != 15.0 {
		t.Fatalf("expected cost updated to 15.0, got %v", got)
	}

	// 标记还在，库存编辑仍被拒
	edit = Part{ID: 1, Name: "brake pad", Supplier: "acme", StockQty: 9, Cost: 15.0}
	if err := l.UpdatePart(ctx, &edit); !errors.Is(err, ErrDeliveryPending) {
		t.Fatalf("expected stock edit still rejected, got %v", err)
	}
}

func TestDeactivateAndReactivate(t *testing.T) {
	l, s := newTestLedger(Part{ID: 1, Name: "brake pad", Supplier: "acme", StockQty: 4, Cost: 12.5})
	ctx := context.Background()

	if err := l.Reactivate(ctx, 1); !errors.Is(err, ErrInvalidPart) {
		t.Fatalf("expected reactivate of active part rejected, got %v", err)
	}

	if err := l.Deactivate(ctx, 1); err != nil {
		t.Fatalf("Deactivate: %v", err)
	}
	if got := s.parts[1]; got.StockQty != 0 || got.PendingDelivery {
		t.Fatalf("expected zero stock and no delivery after deactivate, got %+v", got)
	}

	if err := l.Reactivate(ctx, 1); err != nil {
		t.Fatalf("Reactivate: %v", err)
	}
	if !s.parts[1].PendingDelivery {
		t.Fatalf("expected reactivate to open a delivery")
	}
	if err := l.CloseDelivery(ctx, 1, 5); err != nil {
		t.Fatalf("CloseDelivery: %v", err)
	}
	if got := s.parts[1]; got.StockQty != 5 || got.PendingDelivery {
		t.Fatalf("expected restocked part after delivery, got %+v", got)
	}
}
