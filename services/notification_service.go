package services

import (
	"fmt"
	"strings"

	tgbotapi "github.com/OvyFlash/telegram-bot-api"
	log "github.com/sirupsen/logrus"

	"github.com/toolrent/toolrent-api/config"
	"github.com/toolrent/toolrent-api/models"
)

// Notifier delivers an out-of-band notification for a freshly created order
type Notifier interface {
	NotifyOrderCreated(order *models.Order) error
}

// TelegramNotifier sends order notifications to a staff chat through the
// Telegram Bot API
type TelegramNotifier struct {
	bot    *tgbotapi.BotAPI
	chatID int64
}

// NewTelegramNotifier authorizes the bot and returns a ready notifier
func NewTelegramNotifier(cfg *config.Config) (*TelegramNotifier, error) {
	if cfg.TelegramBotToken == "" {
		return nil, fmt.Errorf("telegram bot token is not configured")
	}

	bot, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize telegram bot: %w", err)
	}

	log.Infof("Telegram bot authorized as %s", bot.Self.UserName)

	return &TelegramNotifier{
		bot:    bot,
		chatID: cfg.TelegramChatID,
	}, nil
}

// NotifyOrderCreated formats the order summary and sends it to the chat
func (n *TelegramNotifier) NotifyOrderCreated(order *models.Order) error {
	msg := tgbotapi.NewMessage(n.chatID, FormatOrderMessage(order))
	msg.ParseMode = tgbotapi.ModeMarkdown

	if _, err := n.bot.Send(msg); err != nil {
		return fmt.Errorf("failed to send telegram message: %w", err)
	}
	return nil
}

// FormatOrderMessage builds the human-readable order summary sent to the
// staff chat: customer, totals and every line item.
func FormatOrderMessage(order *models.Order) string {
	var b strings.Builder

	b.WriteString("🛒 *New Order Placed!*\n\n")

	if order.User != nil {
		b.WriteString(fmt.Sprintf("👤 *Customer:* %s\n", order.User.Name))
		b.WriteString(fmt.Sprintf("📧 *Email:* %s\n", order.User.Email))
		if order.User.Phone != "" {
			b.WriteString(fmt.Sprintf("📞 *Phone:* %s\n", order.User.Phone))
		}
	}

	b.WriteString("\n🧾 *Order Details:*\n")
	b.WriteString(fmt.Sprintf("🆔 Order ID: %d\n", order.ID))
	b.WriteString(fmt.Sprintf("💰 Total Price: $%.2f\n", order.OverallPrice))
	b.WriteString(fmt.Sprintf("🗓 Date: %s\n", order.Date.Format("02 Jan 2006 15:04")))
	if order.Address != nil {
		b.WriteString(fmt.Sprintf("📍 Address: %s\n", *order.Address))
	}
	if order.WithDelivery {
		b.WriteString("🚚 Delivery: Yes\n")
		if order.DeliveryComment != nil {
			b.WriteString(fmt.Sprintf("📝 Delivery Note: %s\n", *order.DeliveryComment))
		}
	} else {
		b.WriteString("🚚 Delivery: No\n")
	}

	if order.PaymentMethod != nil {
		b.WriteString(fmt.Sprintf("💳 Payment Method: %s\n", order.PaymentMethod.Name))
	}
	b.WriteString(fmt.Sprintf("💵 Payment Status: *%s*\n", strings.ToUpper(order.PaymentStatus)))
	b.WriteString(fmt.Sprintf("📦 Order Status: *%s*\n", strings.ToUpper(order.Status)))

	b.WriteString("\n🔧 *Tools:*\n")
	if len(order.OrderTools) == 0 {
		b.WriteString("No tools added.\n")
	}
	for i, line := range order.OrderTools {
		name := "Tool"
		if line.Tool != nil {
			name = line.Tool.Name
		}
		b.WriteString(fmt.Sprintf("#%d %s x%d - $%.2f\n", i+1, name, line.Count, line.Price))
	}

	b.WriteString("\n👷 *Workers:*\n")
	if len(order.OrderWorkers) == 0 {
		b.WriteString("No workers requested.\n")
	}
	for i, line := range order.OrderWorkers {
		proficiency, level := "Unknown", "Unknown"
		if line.Proficiency != nil {
			proficiency = line.Proficiency.Name
		}
		if line.Level != nil {
			level = line.Level.Name
		}
		b.WriteString(fmt.Sprintf("#%d Proficiency: %s, Level: %s, Count: %d, Time: %d %s\n",
			i+1, proficiency, level, line.Count, line.Time, line.TimeUnit))
	}

	return b.String()
}
