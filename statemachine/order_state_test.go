package statemachine

import (
	"strings"
	"testing"

	"food-court-api/models"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to models.PreOrderStatus
		wantOK   bool
	}{
		{models.PreOrderPending, models.PreOrderConfirmed, true},
		{models.PreOrderPending, models.PreOrderCancelled, true},
		{models.PreOrderPending, models.PreOrderReady, false},
		{models.PreOrderConfirmed, models.PreOrderReady, true},
		{models.PreOrderConfirmed, models.PreOrderCancelled, true},
		{models.PreOrderReady, models.PreOrderCollected, true},
		{models.PreOrderReady, models.PreOrderCancelled, false},
		{models.PreOrderCollected, models.PreOrderPending, false},
		{models.PreOrderCancelled, models.PreOrderPending, false},
		{"", models.PreOrderPending, false},
	}
	for _, tt := range tests {
		err := CanTransition(tt.from, tt.to)
		if (err == nil) != tt.wantOK {
			t.Errorf("CanTransition(%q, %q) err = %v, want ok=%v", tt.from, tt.to, err, tt.wantOK)
		}
	}
}

func TestCanTransitionErrorListsNextStates(t *testing.T) {
	err := CanTransition(models.PreOrderPending, models.PreOrderCollected)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "confirmed, cancelled") {
		t.Errorf("error should list valid next states: %v", err)
	}

	err = CanTransition(models.PreOrderCollected, models.PreOrderReady)
	if err == nil || !strings.Contains(err.Error(), "terminal") {
		t.Errorf("expected terminal state error, got %v", err)
	}
}

func TestIsTerminal(t *testing.T) {
	for _, s := range []models.PreOrderStatus{models.PreOrderCollected, models.PreOrderCancelled} {
		if !IsTerminal(s) {
			t.Errorf("IsTerminal(%q) = false, want true", s)
		}
	}
	if IsTerminal(models.PreOrderPending) {
		t.Error("pending must not be terminal")
	}
}
