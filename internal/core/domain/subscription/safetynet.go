// internal/core/domain/subscription/safetynet.go
package subscription

import (
	"context"
	"fmt"
	"time"

	"air-quality-alert-bot/internal/core/domain/airquality"
)

// Пороги срабатывания страховки
const (
	// AQI, выше которого воздух считается нездоровым безусловно
	UnhealthyAQIThreshold = 75
	// Допустимый рост AQI относительно базового уровня сессии
	SpikeAQIDelta = 40
)

// SessionOutcome - результат оценки сессии страховки
type SessionOutcome int

const (
	// SessionNoop - воздух в норме, сессия живет до следующего цикла
	SessionNoop SessionOutcome = iota
	// SessionExpired - сессия истекла, удалить молча
	SessionExpired
	// SessionOrphaned - подписка исчезла, удалить молча
	SessionOrphaned
	// SessionAlerted - воздух испортился, отправить алерт и удалить сессию
	SessionAlerted
)

// AlertDecision - решение по одной сессии страховки.
// Station заполнен только для SessionAlerted.
type AlertDecision struct {
	Outcome SessionOutcome
	Station *airquality.Station
	Reason  string
}

// SafetyNetEvaluator оценивает сессии обратного мониторинга.
// Сессия - это "защелка": после первого алерта она удаляется
// и повторно по тому же эпизоду не срабатывает.
type SafetyNetEvaluator struct {
	resolver Resolver
	radiusKM float64
}

// NewSafetyNetEvaluator создает оценщик сессий страховки
func NewSafetyNetEvaluator(resolver Resolver, radiusKM float64) *SafetyNetEvaluator {
	return &SafetyNetEvaluator{
		resolver: resolver,
		radiusKM: radiusKM,
	}
}

// EvaluateSession оценивает одну сессию на момент now.
// sub - подписка, на которую ссылается сессия; nil означает,
// что подписка исчезла (осиротевшая сессия).
func (e *SafetyNetEvaluator) EvaluateSession(
	ctx context.Context,
	sess *SafetyNetSession,
	sub *Subscription,
	now time.Time,
) (AlertDecision, error) {
	// Шаг 1: истечение срока - удаляем молча, без сообщений
	if sess.Expired(now) {
		return AlertDecision{Outcome: SessionExpired, Reason: "session expired"}, nil
	}

	// Шаг 2: осиротевшая сессия
	if sub == nil {
		return AlertDecision{Outcome: SessionOrphaned, Reason: "backing subscription missing"}, nil
	}

	// Шаг 3: поиск ближайшего датчика от точки подписки
	station, err := e.resolver.FindNearest(ctx, sub.Latitude, sub.Longitude, e.radiusKM)
	if err != nil {
		return AlertDecision{}, fmt.Errorf("resolver failed for session %d: %w", sess.ID, err)
	}
	if station == nil {
		return AlertDecision{Outcome: SessionNoop, Reason: "no station in range"}, nil
	}
	if station.AQI == nil {
		return AlertDecision{Outcome: SessionNoop, Reason: "station has no AQI data"}, nil
	}

	// Шаг 4: проверка ухудшения
	currentAQI := *station.AQI
	if currentAQI > UnhealthyAQIThreshold || currentAQI > sess.StartAQI+SpikeAQIDelta {
		return AlertDecision{
			Outcome: SessionAlerted,
			Station: station,
			Reason:  fmt.Sprintf("air worsened: start=%d, current=%d", sess.StartAQI, currentAQI),
		}, nil
	}

	return AlertDecision{Outcome: SessionNoop, Reason: "air still acceptable"}, nil
}
