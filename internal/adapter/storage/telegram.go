package storage

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/chitralhive/hivekeep/internal/config"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Telegram caps bot document uploads at 50 MB.
const telegramFileLimitMB = 50

// TelegramStorage delivers artifacts, or a notification about them, to a
// Telegram chat. List/Delete/GetOldFiles are no-ops since the bot API keeps
// no browsable archive.
type TelegramStorage struct {
	bot        *tgbotapi.BotAPI
	chatID     int64
	sendFile   bool
	notifyOnly bool
}

func NewTelegram(cfg *config.UploadTarget) (*TelegramStorage, error) {
	bot, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	chatID, err := strconv.ParseInt(cfg.ChatID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid telegram chat_id %q: %w", cfg.ChatID, err)
	}

	return &TelegramStorage{
		bot:        bot,
		chatID:     chatID,
		sendFile:   cfg.SendFile,
		notifyOnly: cfg.NotifyOnly,
	}, nil
}

func (t *TelegramStorage) Upload(ctx context.Context, localPath string, remoteName string) error {
	info, err := os.Stat(localPath)
	if err != nil {
		return fmt.Errorf("failed to stat artifact: %w", err)
	}

	sizeMB := float64(info.Size()) / (1024 * 1024)

	if t.notifyOnly || !t.sendFile || sizeMB > telegramFileLimitMB {
		text := fmt.Sprintf(
			"Backup created\n\nFile: %s\nSize: %.2f MB\nTime: %s",
			remoteName,
			sizeMB,
			info.ModTime().Format("2006-01-02 15:04:05"),
		)

		if _, err := t.bot.Send(tgbotapi.NewMessage(t.chatID, text)); err != nil {
			return fmt.Errorf("failed to send telegram notification: %w", err)
		}
		return nil
	}

	doc := tgbotapi.NewDocument(t.chatID, tgbotapi.FilePath(localPath))
	doc.Caption = fmt.Sprintf("Backup: %s (%.2f MB)", remoteName, sizeMB)

	if _, err := t.bot.Send(doc); err != nil {
		return fmt.Errorf("failed to send telegram file: %w", err)
	}

	return nil
}

func (t *TelegramStorage) List(ctx context.Context) ([]string, error) {
	return []string{}, nil
}

func (t *TelegramStorage) Delete(ctx context.Context, remoteName string) error {
	return nil
}

func (t *TelegramStorage) GetOldFiles(ctx context.Context, cutoffTime time.Time) ([]string, error) {
	return []string{}, nil
}
