// internal/core/domain/subscription/types.go
package subscription

import (
	"time"
)

// Subscription - подписка пользователя на качество воздуха в точке
type Subscription struct {
	ID     int64 `json:"id"`
	UserID int64 `json:"user_id"` // Telegram user_id

	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`

	// Срок действия: nil = бессрочная
	ExpiryDate *time.Time `json:"expiry_date,omitempty"`

	// Тихие часы [mute_start, mute_end), могут переходить через полночь
	MuteStart int `json:"mute_start"`
	MuteEnd   int `json:"mute_end"`

	// Трекинг уведомлений
	LastNotifiedAt *time.Time `json:"last_notified_at,omitempty"`
	LastAQILevel   *int       `json:"last_aqi_level,omitempty"`

	// Автоматическая страховка после уведомления о чистом воздухе
	AutoSafetyNet bool `json:"auto_safety_net"`

	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SafetyNetSession - временная сессия обратного мониторинга
// (оповестить, если воздух испортился после "чистого" уведомления)
type SafetyNetSession struct {
	ID             int64 `json:"id"`
	UserID         int64 `json:"user_id"`
	SubscriptionID int64 `json:"subscription_id"`

	// Базовый AQI на момент старта сессии
	StartAQI int `json:"start_aqi"`

	// Момент истечения сессии
	SessionExpiry time.Time `json:"session_expiry"`

	CreatedAt time.Time `json:"created_at"`
}

// Expired сообщает, истекла ли подписка на момент now
func (s *Subscription) Expired(now time.Time) bool {
	return s.ExpiryDate != nil && now.After(*s.ExpiryDate)
}

// InQuietHours сообщает, попадает ли час now в тихие часы подписки.
// Диапазон [mute_start, mute_end) может переходить через полночь:
// 23-07 означает с 23:00 до 07:00.
func (s *Subscription) InQuietHours(now time.Time) bool {
	hour := now.Hour()
	if s.MuteStart > s.MuteEnd {
		return hour >= s.MuteStart || hour < s.MuteEnd
	}
	return s.MuteStart <= hour && hour < s.MuteEnd
}

// InCooldown сообщает, действует ли еще антиспам-пауза после
// последнего уведомления
func (s *Subscription) InCooldown(now time.Time, cooldown time.Duration) bool {
	return s.LastNotifiedAt != nil && now.Sub(*s.LastNotifiedAt) < cooldown
}

// Expired сообщает, истекла ли сессия страховки на момент now
func (s *SafetyNetSession) Expired(now time.Time) bool {
	return now.After(s.SessionExpiry)
}
