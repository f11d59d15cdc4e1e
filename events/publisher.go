package events

import (
	"context"
	"errors"
	"time"
)

const TypePreOrderPlaced = "preorder.placed"

// Event is the message published after a domain write has been committed.
type Event struct {
	Type       string           `json:"type"`
	OccurredAt time.Time        `json:"occurred_at"`
	PreOrder   PreOrderSnapshot `json:"pre_order"`
}

type PreOrderSnapshot struct {
	CustomerName  string         `json:"customer_name"`
	CustomerEmail string         `json:"customer_email"`
	UserID        uint           `json:"user_id"`
	Lines         []PreOrderLine `json:"lines"`
}

type PreOrderLine struct {
	PreOrderID string `json:"pre_order_id"`
	MenuItemID string `json:"menu_item_id"`
	Name       string `json:"name"`
	Quantity   int    `json:"quantity"`
	Price      int    `json:"price"`
}

type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

// Nop drops every event.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
func (Nop) Close() error                         { return nil }

// Multi fans an event out to every publisher and joins their errors.
type Multi []Publisher

func (m Multi) Publish(ctx context.Context, e Event) error {
	var errs []error
	for _, p := range m {
		if err := p.Publish(ctx, e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m Multi) Close() error {
	var errs []error
	for _, p := range m {
		if err := p.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
