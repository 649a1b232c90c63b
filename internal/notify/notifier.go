// Package notify delivers bot output to the single configured owner chat.
package notify

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"finbot/internal/extract"
	"finbot/internal/markup"
)

// Sender is the slice of the bot client used for delivery.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Notifier formats and sends chat messages. Every message goes to the one
// configured chat id, no matter which trigger produced it.
type Notifier struct {
	bot    Sender
	chatID int64
	log    zerolog.Logger
}

func New(bot Sender, chatID int64, log zerolog.Logger) *Notifier {
	return &Notifier{bot: bot, chatID: chatID, log: log}
}

// FormatTransaction renders the bilingual transaction announcement,
// escaped for MarkdownV2.
func FormatTransaction(rec *extract.Record) string {
	return fmt.Sprintf("💰 *%s*\n🏦 %s: %s\n💵 %s: %s %s\n🕒 %s: %s\n📝 %s: %s",
		markup.Escape("Giao dịch mới / New transaction"),
		markup.Escape("Ngân hàng / Bank"), markup.Escape(rec.BankName),
		markup.Escape("Số tiền / Amount"), markup.Escape(rec.Amount), markup.Escape(rec.Currency),
		markup.Escape("Thời gian / Time"), markup.Escape(rec.Datetime),
		markup.Escape("Nội dung / Note"), markup.Escape(rec.Message),
	)
}

// Transaction announces a confirmed record.
func (n *Notifier) Transaction(rec *extract.Record) error {
	return n.Text(FormatTransaction(rec))
}

// Error reports a failed trigger as a plain-text line, since the error
// text is arbitrary and not MarkdownV2-safe.
func (n *Notifier) Error(cause error) error {
	msg := tgbotapi.NewMessage(n.chatID, "Transaction error: "+cause.Error())
	if _, err := n.bot.Send(msg); err != nil {
		return fmt.Errorf("notify: send error notice to chat %d: %w", n.chatID, err)
	}
	return nil
}

// Text sends an already-normalized MarkdownV2 message.
func (n *Notifier) Text(text string) error {
	msg := tgbotapi.NewMessage(n.chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdownV2
	if _, err := n.bot.Send(msg); err != nil {
		return fmt.Errorf("notify: send to chat %d: %w", n.chatID, err)
	}
	n.log.Debug().Int64("chat_id", n.chatID).Msg("Message delivered")
	return nil
}
