package part

import (
	"errors"
	"testing"
)

func TestCanReserve(t *testing.T) {
	p := &Part{ID: 1, Name: "brake pad", StockQty: 5, Cost: 12.5}

	if err := p.CanReserve(3); err != nil {
		t.Fatalf("expected reserve ok, got %v", err)
	}
	if err := p.CanReserve(6); !errors.Is(err, ErrInsufficientStock) {
		t.Fatalf("expected ErrInsufficientStock, got %v", err)
	}
	if err := p.CanReserve(0); !errors.Is(err, ErrInvalidQuantity) {
		t.Fatalf("expected ErrInvalidQuantity, got %v", err)
	}
	if err := p.CanReserve(-2); !errors.Is(err, ErrInvalidQuantity) {
		t.Fatalf("expected ErrInvalidQuantity, got %v", err)
	}

	p.PendingDelivery = true
	if err := p.CanReserve(1); !errors.Is(err, ErrDeliveryPending) {
		t.Fatalf("expected ErrDeliveryPending, got %v", err)
	}
}

func TestAvailableAndInactive(t *testing.T) {
	p := &Part{StockQty: 2}
	if !p.Available() {
		t.Fatalf("expected available with stock")
	}
	p.PendingDelivery = true
	if p.Available() {
		t.Fatalf("expected unavailable while delivery pending")
	}

	p = &Part{StockQty: 0}
	if p.Available() {
		t.Fatalf("expected unavailable with zero stock")
	}
	if !p.Inactive() {
		t.Fatalf("expected inactive with zero stock and no delivery")
	}
	p.PendingDelivery = true
	if p.Inactive() {
		t.Fatalf("expected active while delivery pending")
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name string
		p    Part
		ok   bool
	}{
		{"valid", Part{Name: "filter", Supplier: "acme", StockQty: 1, Cost: 3}, true},
		{"missing name", Part{Supplier: "acme"}, false},
		{"missing supplier", Part{Name: "filter"}, false},
		{"negative stock", Part{Name: "filter", Supplier: "acme", StockQty: -1}, false},
		{"negative cost", Part{Name: "filter", Supplier: "acme", Cost: -0.5}, false},
	}
	for _, tc := range cases {
		err := tc.p.Validate()
		if tc.ok && err != nil {
			t.Fatalf("%s: expected valid, got %v", tc.name, err)
		}
		if !tc.ok && !errors.Is(err, ErrInvalidPart) {
			t.Fatalf("%s: expected ErrInvalidPart, got %v", tc.name, err)
		}
	}
}
