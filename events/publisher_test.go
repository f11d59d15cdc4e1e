package events

import (
	"context"
	"errors"
	"strings"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type fakeSender struct {
	sent []tgbotapi.MessageConfig
	err  error
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if msg, ok := c.(tgbotapi.MessageConfig); ok {
		f.sent = append(f.sent, msg)
	}
	return tgbotapi.Message{}, f.err
}

type countingPublisher struct {
	published int
	err       error
}

func (c *countingPublisher) Publish(context.Context, Event) error {
	c.published++
	return c.err
}

func (c *countingPublisher) Close() error { return c.err }

func placedEvent() Event {
	return Event{
		Type: TypePreOrderPlaced,
		PreOrder: PreOrderSnapshot{
			CustomerName:  "Asha",
			CustomerEmail: "asha@example.com",
			Lines: []PreOrderLine{
				{Name: "Burger", Quantity: 2, Price: 1000},
				{Name: "Pizza", Quantity: 1, Price: 1500},
			},
		},
	}
}

func TestFormatMessage(t *testing.T) {
	got := FormatMessage(placedEvent())
	want := "New pre-order from Asha <asha@example.com>\n- Burger x2\n- Pizza x1\nTotal: 3500"
	if got != want {
		t.Errorf("FormatMessage() =\n%s\nwant\n%s", got, want)
	}

	if got := FormatMessage(Event{Type: "menu.changed"}); got != "menu.changed" {
		t.Errorf("unknown type rendered as %q", got)
	}
}

func TestTelegramPublisher(t *testing.T) {
	sender := &fakeSender{}
	p := &TelegramPublisher{bot: sender, chatID: 42}

	if err := p.Publish(context.Background(), placedEvent()); err != nil {
		t.Fatal(err)
	}
	if len(sender.sent) != 1 {
		t.Fatalf("sent = %d, want 1", len(sender.sent))
	}
	if sender.sent[0].ChatID != 42 || !strings.HasPrefix(sender.sent[0].Text, "New pre-order from Asha") {
		t.Errorf("unexpected message: %+v", sender.sent[0])
	}

	sender.err = errors.New("bot blocked")
	if err := p.Publish(context.Background(), placedEvent()); err == nil {
		t.Error("expected send error")
	}
}

func TestMultiPublishesToAll(t *testing.T) {
	boom := errors.New("broker down")
	ok := &countingPublisher{}
	failing := &countingPublisher{err: boom}
	m := Multi{failing, ok}

	err := m.Publish(context.Background(), placedEvent())
	if !errors.Is(err, boom) {
		t.Errorf("err = %v, want %v", err, boom)
	}
	if ok.published != 1 || failing.published != 1 {
		t.Errorf("published = %d/%d, want 1/1", ok.published, failing.published)
	}
	if err := m.Close(); !errors.Is(err, boom) {
		t.Errorf("close err = %v", err)
	}

	if err := (Multi{}).Publish(context.Background(), placedEvent()); err != nil {
		t.Errorf("empty Multi: %v", err)
	}
}
