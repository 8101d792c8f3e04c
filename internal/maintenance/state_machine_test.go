package maintenance

import "testing"

func TestCanTransition(t *testing.T) {
	if !CanTransition(StatusOngoing, StatusCompleted) {
		t.Fatalf("expected Ongoing -> Completed allowed")
	}
	if !CanTransition(StatusOngoing, StatusCancelled) {
		t.Fatalf("expected Ongoing -> Cancelled allowed")
	}
	if CanTransition(StatusCompleted, StatusCancelled) {
		t.Fatalf("expected Completed -> Cancelled not allowed")
	}
	if CanTransition(StatusCancelled, StatusCancelled) {
		t.Fatalf("expected Cancelled -> Cancelled not allowed")
	}
	if CanTransition(StatusCompleted, StatusOngoing) {
		t.Fatalf("expected Completed -> Ongoing not allowed")
	}
	if CanTransition("bogus", StatusCompleted) {
		t.Fatalf("expected unknown status to deny transitions")
	}
}

func TestStatusValid(t *testing.T) {
	for _, s := range []Status{StatusOngoing, StatusCompleted, StatusCancelled} {
		if !s.Valid() {
			t.Fatalf("expected %q valid", s)
		}
	}
	if Status("ongoing").Valid() {
		t.Fatalf("expected lowercase status invalid")
	}
}
