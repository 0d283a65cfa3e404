// internal/notifier/console_notifier.go
package notifier

import (
	"context"
	"log"
	"sync"
)

// ConsoleNotifier - нотификатор для локальных запусков без Telegram
type ConsoleNotifier struct {
	mu      sync.RWMutex
	enabled bool
	sent    int
}

// NewConsoleNotifier создает консольный нотификатор
func NewConsoleNotifier() *ConsoleNotifier {
	return &ConsoleNotifier{enabled: true}
}

// Send печатает уведомление в консоль
func (c *ConsoleNotifier) Send(_ context.Context, n Notification) error {
	if !c.IsEnabled() {
		return nil
	}

	var icon string
	switch n.Kind {
	case KindCleanAir:
		icon = "🟢"
	case KindBadAir:
		icon = "🔴"
	case KindExpired:
		icon = "⏰"
	default:
		icon = "✉️"
	}

	log.Printf("%s [%s] -> пользователь %d: %s", icon, n.Kind, n.UserID, n.Text)

	c.mu.Lock()
	c.sent++
	c.mu.Unlock()

	return nil
}

// Name возвращает имя
func (c *ConsoleNotifier) Name() string {
	return "console"
}

// IsEnabled возвращает статус
func (c *ConsoleNotifier) IsEnabled() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.enabled
}

// SetEnabled включает/выключает
func (c *ConsoleNotifier) SetEnabled(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.enabled = enabled
}
