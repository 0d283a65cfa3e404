// internal/notifier/telegram_notifier.go
package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"

	"air-quality-alert-bot/internal/infrastructure/config"
	"air-quality-alert-bot/pkg/logger"
)

// TelegramNotifier отправляет уведомления пользователям через Telegram Bot API
type TelegramNotifier struct {
	httpClient  *http.Client
	baseURL     string
	enabled     bool
	rateLimiter *RateLimiter
	mu          sync.RWMutex
}

// RateLimiter - ограничитель частоты отправки по чатам
type RateLimiter struct {
	mu       sync.Mutex
	lastSent map[string]time.Time
	minDelay time.Duration
}

// NewRateLimiter создает новый ограничитель частоты
func NewRateLimiter(minDelay time.Duration) *RateLimiter {
	return &RateLimiter{
		lastSent: make(map[string]time.Time),
		minDelay: minDelay,
	}
}

// Wait блокирует до момента, когда в чат можно отправлять следующее сообщение
func (rl *RateLimiter) Wait(key string) {
	rl.mu.Lock()
	last, exists := rl.lastSent[key]
	now := time.Now()
	var sleep time.Duration
	if exists && now.Sub(last) < rl.minDelay {
		sleep = rl.minDelay - now.Sub(last)
	}
	rl.lastSent[key] = now.Add(sleep)
	rl.mu.Unlock()

	if sleep > 0 {
		time.Sleep(sleep)
	}
}

// telegramMessage - тело запроса sendMessage
type telegramMessage struct {
	ChatID    string `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode,omitempty"`
}

// telegramResponse - ответ от Telegram API
type telegramResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description,omitempty"`
	Result      struct {
		MessageID int `json:"message_id"`
	} `json:"result"`
}

// NewTelegramNotifier создает нотификатор поверх Telegram Bot API
func NewTelegramNotifier(cfg *config.Config) *TelegramNotifier {
	if cfg.Telegram.BotToken == "" {
		logger.Warn("⚠️ TelegramNotifier: BOT_TOKEN не указан, нотификатор отключен")
		return nil
	}

	return &TelegramNotifier{
		httpClient:  &http.Client{Timeout: 30 * time.Second},
		baseURL:     fmt.Sprintf("https://api.telegram.org/bot%s/", cfg.Telegram.BotToken),
		enabled:     cfg.Telegram.Enabled,
		rateLimiter: NewRateLimiter(cfg.Telegram.MinSendInterval),
	}
}

// Send отправляет одно уведомление пользователю
func (tn *TelegramNotifier) Send(ctx context.Context, n Notification) error {
	if !tn.IsEnabled() {
		return nil
	}

	chatID := strconv.FormatInt(n.UserID, 10)
	tn.rateLimiter.Wait(chatID)

	payload := telegramMessage{
		ChatID:    chatID,
		Text:      n.Text,
		ParseMode: "HTML",
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tn.baseURL+"sendMessage", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := tn.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send message to chat %s: %w", chatID, err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)

	var tgResp telegramResponse
	if err := json.Unmarshal(respBody, &tgResp); err != nil {
		return fmt.Errorf("failed to decode telegram response: %w", err)
	}

	if !tgResp.OK {
		return fmt.Errorf("telegram API error for chat %s: %s", chatID, tgResp.Description)
	}

	logger.Debug("✉️ [Telegram] Отправлено уведомление %s пользователю %d (message_id=%d)",
		n.Kind, n.UserID, tgResp.Result.MessageID)

	return nil
}

// Name возвращает имя
func (tn *TelegramNotifier) Name() string {
	return "telegram"
}

// IsEnabled возвращает статус
func (tn *TelegramNotifier) IsEnabled() bool {
	tn.mu.RLock()
	defer tn.mu.RUnlock()
	return tn.enabled
}

// SetEnabled включает/выключает
func (tn *TelegramNotifier) SetEnabled(enabled bool) {
	tn.mu.Lock()
	defer tn.mu.Unlock()
	tn.enabled = enabled
}
