// Package notify turns order lifecycle events into Telegram messages.
// Delivery is strictly best-effort: a lost message must never fail or delay
// the transition that produced the event.
package notify

import (
	"context"
	"log"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Sink delivers one rendered message. It reports success or failure and
// never panics or propagates transport errors past this boundary.
type Sink interface {
	Deliver(ctx context.Context, recipientID, text string) bool
}

type TelegramSink struct {
	bot *tgbotapi.BotAPI
}

// NewTelegramSink returns a nil-bot sink when token is empty; delivery then
// degrades to a logged no-op, which keeps local setups working without a bot.
func NewTelegramSink(token string) *TelegramSink {
	if token == "" {
		log.Printf("TELEGRAM_BOT_TOKEN not set, notifications disabled")
		return &TelegramSink{}
	}
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		log.Printf("telegram bot init: %v", err)
		return &TelegramSink{}
	}
	return &TelegramSink{bot: bot}
}

func (s *TelegramSink) Deliver(ctx context.Context, recipientID, text string) bool {
	if s.bot == nil {
		log.Printf("bot not initialized, dropping message for %s", recipientID)
		return false
	}
	chatID, err := strconv.ParseInt(recipientID, 10, 64)
	if err != nil {
		log.Printf("bad recipient id %q: %v", recipientID, err)
		return false
	}
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	if _, err := s.bot.Send(msg); err != nil {
		log.Printf("send to %s failed: %v", recipientID, err)
		return false
	}
	return true
}
