package events

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type messageSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// TelegramPublisher posts a short summary of each event to an admin chat.
type TelegramPublisher struct {
	bot    messageSender
	chatID int64
}

func NewTelegramPublisher(token string, chatID int64) (*TelegramPublisher, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram bot: %w", err)
	}
	return &TelegramPublisher{bot: bot, chatID: chatID}, nil
}

func (p *TelegramPublisher) Publish(ctx context.Context, e Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := tgbotapi.NewMessage(p.chatID, FormatMessage(e))
	if _, err := p.bot.Send(msg); err != nil {
		return fmt.Errorf("telegram send: %w", err)
	}
	return nil
}

func (p *TelegramPublisher) Close() error { return nil }

// FormatMessage renders an event as plain text for chat notifications.
func FormatMessage(e Event) string {
	var b strings.Builder
	switch e.Type {
	case TypePreOrderPlaced:
		fmt.Fprintf(&b, "New pre-order from %s <%s>\n", e.PreOrder.CustomerName, e.PreOrder.CustomerEmail)
		total := 0
		for _, l := range e.PreOrder.Lines {
			fmt.Fprintf(&b, "- %s x%d\n", l.Name, l.Quantity)
			total += l.Price * l.Quantity
		}
		fmt.Fprintf(&b, "Total: %d", total)
	default:
		b.WriteString(e.Type)
	}
	return b.String()
}
