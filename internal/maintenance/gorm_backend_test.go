package maintenance

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestTranslateBusy(t *testing.T) {
	if translateBusy(nil) != nil {
		t.Fatalf("expected nil passthrough")
	}

	err := translateBusy(fmt.Errorf("query: %w", context.DeadlineExceeded))
	if !errors.Is(err, ErrBusy) {
		t.Fatalf("expected deadline mapped to ErrBusy, got %v", err)
	}

	err = translateBusy(errors.New("Error 1205: Lock wait timeout exceeded; try restarting transaction"))
	if !errors.Is(err, ErrBusy) {
		t.Fatalf("expected lock wait timeout mapped to ErrBusy, got %v", err)
	}

	err = translateBusy(errors.New("Error 1213: Deadlock found when trying to get lock"))
	if !errors.Is(err, ErrBusy) {
		t.Fatalf("expected deadlock mapped to ErrBusy, got %v", err)
	}

	plain := errors.New("syntax error")
	if got := translateBusy(plain); got != plain {
		t.Fatalf("expected unrelated error untouched, got %v", got)
	}
}
