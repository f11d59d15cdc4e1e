package statemachine

import (
	"errors"
	"strings"

	"food-court-api/models"
)

// Transition defines a valid pre-order status change
type Transition struct {
	From models.PreOrderStatus `json:"from"`
	To   models.PreOrderStatus `json:"to"`
}

// validTransitions is the authoritative state machine definition
var validTransitions = []Transition{
	// Kitchen accepts or rejects the pre-order
	{From: models.PreOrderPending, To: models.PreOrderConfirmed},
	{From: models.PreOrderPending, To: models.PreOrderCancelled},
	// Confirmed orders get prepared, or cancelled before cooking
	{From: models.PreOrderConfirmed, To: models.PreOrderReady},
	{From: models.PreOrderConfirmed, To: models.PreOrderCancelled},
	// Customer picks it up
	{From: models.PreOrderReady, To: models.PreOrderCollected},
}

var transitionMap = func() map[Transition]bool {
	m := make(map[Transition]bool)
	for _, t := range validTransitions {
		m[t] = true
	}
	return m
}()

// ValidTransitionsFrom returns all valid next states from a given state
func ValidTransitionsFrom(status models.PreOrderStatus) []models.PreOrderStatus {
	nexts := []models.PreOrderStatus{}
	for _, t := range validTransitions {
		if t.From == status {
			nexts = append(nexts, t.To)
		}
	}
	return nexts
}

// IsTerminal reports whether no transition leaves the status
func IsTerminal(status models.PreOrderStatus) bool {
	return len(ValidTransitionsFrom(status)) == 0
}

// CanTransition checks if a pre-order may move from one state to another
func CanTransition(from, to models.PreOrderStatus) error {
	if transitionMap[Transition{From: from, To: to}] {
		return nil
	}
	return errors.New(
		"invalid transition: " + string(from) + " -> " + string(to) +
			". Valid transitions from " + string(from) + " are: " + describeValidFrom(from),
	)
}

func describeValidFrom(status models.PreOrderStatus) string {
	nexts := ValidTransitionsFrom(status)
	if len(nexts) == 0 {
		return "none (terminal state)"
	}
	parts := make([]string, len(nexts))
	for i, s := range nexts {
		parts[i] = string(s)
	}
	return strings.Join(parts, ", ")
}

// GetAllTransitions returns the full state machine for documentation
func GetAllTransitions() []Transition {
	return validTransitions
}
