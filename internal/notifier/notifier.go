// internal/notifier/notifier.go
package notifier

import "context"

// Виды уведомлений
const (
	KindCleanAir = "clean_air"
	KindBadAir   = "bad_air"
	KindExpired  = "expired"
)

// Notification - готовое к отправке уведомление
type Notification struct {
	UserID int64  `json:"user_id"` // Telegram chat_id
	Kind   string `json:"kind"`
	Text   string `json:"text"`
}

// Notifier - канал доставки уведомлений.
// Отправка выполняется по принципу fire-and-forget: сбой доставки
// логируется, но не откатывает состояние движка.
type Notifier interface {
	Send(ctx context.Context, n Notification) error
	Name() string
	IsEnabled() bool
	SetEnabled(enabled bool)
}
