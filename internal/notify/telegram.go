package notify

import (
	"context"
	"fmt"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/dailydo/backend/repository"
)

// chatIDMetadataKey is the user metadata entry holding the Telegram chat to
// deliver reminders to.
const chatIDMetadataKey = "telegram_chat_id"

// TelegramSender delivers reminders as Telegram messages. The chat is resolved
// from the owning user's metadata; notifications for users without a linked
// chat are skipped.
type TelegramSender struct {
	bot    *tgbotapi.BotAPI
	users  repository.UserRepository
	logger *zap.Logger
}

func NewTelegramSender(token string, users repository.UserRepository, logger *zap.Logger) (*TelegramSender, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	return &TelegramSender{bot: bot, users: users, logger: logger}, nil
}

func (s *TelegramSender) Send(ctx context.Context, notification Notification) error {
	if notification.UserID == "" {
		return nil
	}

	user, err := s.users.GetByID(ctx, notification.UserID)
	if err != nil {
		return err
	}

	raw, ok := user.Metadata[chatIDMetadataKey]
	if !ok || raw == "" {
		s.logger.Debug("user has no telegram chat linked", zap.String("user_id", notification.UserID))
		return nil
	}
	chatID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid telegram chat id %q: %w", raw, err)
	}

	msg := tgbotapi.NewMessage(chatID, fmt.Sprintf("%s\n%s", notification.Title, notification.Body))
	if _, err := s.bot.Send(msg); err != nil {
		return err
	}
	return nil
}
