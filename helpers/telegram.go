package helpers

import (
	"fmt"
	"time"

	tb "gopkg.in/tucnak/telebot.v2"
)

// TelegramNotifier pushes messages to a single chat.
type TelegramNotifier struct {
	bot  *tb.Bot
	chat *tb.Chat
}

func NewTelegramNotifier(token string, chatID string) (*TelegramNotifier, error) {
	b, err := tb.NewBot(tb.Settings{
		// If URL is empty it equals to "https://api.telegram.org".
		URL:    "",
		Token:  token,
		Poller: &tb.LongPoller{Timeout: 10 * time.Second},
	})
	if err != nil {
		return nil, fmt.Errorf("telegram bot: %w", err)
	}

	chat, err := b.ChatByID(chatID)
	if err != nil {
		return nil, fmt.Errorf("telegram chat %s: %w", chatID, err)
	}

	return &TelegramNotifier{bot: b, chat: chat}, nil
}

func (n *TelegramNotifier) Notify(message string) error {
	_, err := n.bot.Send(n.chat, message)
	return err
}
