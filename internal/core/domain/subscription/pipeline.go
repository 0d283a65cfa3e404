// internal/core/domain/subscription/pipeline.go
package subscription

import (
	"context"
	"fmt"
	"time"

	"air-quality-alert-bot/internal/core/domain/airquality"
)

// Outcome - результат оценки подписки за один цикл
type Outcome int

const (
	// OutcomeNoop - ничего не делать
	OutcomeNoop Outcome = iota
	// OutcomeExpired - подписка истекла, отправить уведомление и деактивировать
	OutcomeExpired
	// OutcomeNotified - зафиксирован переход в чистый воздух, отправить уведомление
	OutcomeNotified
)

// Decision - решение конвейера по одной подписке.
// Station заполнен только для OutcomeNotified.
type Decision struct {
	Outcome Outcome
	Station *airquality.Station
	Reason  string // для отладочных логов
}

// Resolver находит ближайший датчик со свежими данными
type Resolver interface {
	FindNearest(ctx context.Context, lat, lon, maxRadiusKM float64) (*airquality.Station, error)
}

// Pipeline - конвейер фильтров и решения по подпискам.
//
// Порядок фильтров (каждый обрывает оценку):
//  1. Истечение срока подписки
//  2. Тихие часы
//  3. Антиспам-пауза (4 часа)
//
// Затем гистерезис: уведомляем только при переходе
// prev > 50 -> current <= 50.
type Pipeline struct {
	resolver Resolver
	radiusKM float64
	cooldown time.Duration
}

// NewPipeline создает конвейер оценки подписок
func NewPipeline(resolver Resolver, radiusKM float64, cooldown time.Duration) *Pipeline {
	return &Pipeline{
		resolver: resolver,
		radiusKM: radiusKM,
		cooldown: cooldown,
	}
}

// Evaluate оценивает одну подписку на момент now.
// Мутирует состояние подписки в памяти (last_aqi_level, last_notified_at,
// is_active) - фиксацию в хранилище выполняет вызывающий цикл.
func (p *Pipeline) Evaluate(ctx context.Context, sub *Subscription, now time.Time) (Decision, error) {
	// Фильтр 1: истечение срока
	if sub.Expired(now) {
		sub.IsActive = false
		return Decision{Outcome: OutcomeExpired, Reason: "subscription expired"}, nil
	}

	// Фильтр 2: тихие часы. last_aqi_level НЕ обновляется:
	// наблюдение даже не выполнялось, прошлое значение доживает
	// до следующего "громкого" цикла.
	if sub.InQuietHours(now) {
		return Decision{
			Outcome: OutcomeNoop,
			Reason:  fmt.Sprintf("quiet hours %d-%d (current hour %d)", sub.MuteStart, sub.MuteEnd, now.Hour()),
		}, nil
	}

	// Фильтр 3: антиспам-пауза
	if sub.InCooldown(now, p.cooldown) {
		return Decision{Outcome: OutcomeNoop, Reason: "cooldown active"}, nil
	}

	// Поиск ближайшего датчика
	station, err := p.resolver.FindNearest(ctx, sub.Latitude, sub.Longitude, p.radiusKM)
	if err != nil {
		return Decision{}, fmt.Errorf("resolver failed for subscription %d: %w", sub.ID, err)
	}
	if station == nil {
		return Decision{Outcome: OutcomeNoop, Reason: "no station in range"}, nil
	}
	if station.AQI == nil {
		return Decision{Outcome: OutcomeNoop, Reason: "station has no AQI data"}, nil
	}

	currentAQI := *station.AQI
	previousAQI := sub.LastAQILevel

	// Гистерезис: было плохо (>50) и стало хорошо (<=50)
	if previousAQI != nil && *previousAQI > airquality.GoodAQIThreshold && currentAQI <= airquality.GoodAQIThreshold {
		sub.LastNotifiedAt = &now
		sub.LastAQILevel = &currentAQI
		return Decision{
			Outcome: OutcomeNotified,
			Station: station,
			Reason:  fmt.Sprintf("good air transition %d -> %d", *previousAQI, currentAQI),
		}, nil
	}

	// Перехода нет - все равно обновляем last_aqi_level, чтобы
	// следующему циклу было с чем сравнивать
	sub.LastAQILevel = &currentAQI
	return Decision{Outcome: OutcomeNoop, Reason: "no transition"}, nil
}
