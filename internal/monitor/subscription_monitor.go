// internal/monitor/subscription_monitor.go
package monitor

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"air-quality-alert-bot/internal/core/domain/airquality"
	"air-quality-alert-bot/internal/core/domain/subscription"
	"air-quality-alert-bot/internal/notifier"
	"air-quality-alert-bot/pkg/logger"
)

// SubscriptionStore - подписки для цикла проверки
type SubscriptionStore interface {
	ListActive(ctx context.Context) ([]*subscription.Subscription, error)
	SaveStates(ctx context.Context, subs []*subscription.Subscription) error
}

// SessionCreator создает сессии страховки (уникальность на уровне хранилища)
type SessionCreator interface {
	CreateExclusive(ctx context.Context, sess *subscription.SafetyNetSession) (bool, error)
}

// SubscriptionMonitor - цикл проверки подписок.
//
// Каждый цикл: загрузить активные подписки, оценить каждую независимо,
// разослать уведомления и зафиксировать состояние одним батчем в конце.
// Сбой одной подписки не мешает оценке остальных.
type SubscriptionMonitor struct {
	store    SubscriptionStore
	pipeline *subscription.Pipeline
	sessions SessionCreator
	notifier notifier.Notifier
	langs    LanguageSource

	safetyNetLifetime time.Duration

	// Источник времени цикла; подменяется в тестах
	nowFn func() time.Time
}

// NewSubscriptionMonitor создает монитор подписок
func NewSubscriptionMonitor(
	store SubscriptionStore,
	pipeline *subscription.Pipeline,
	sessions SessionCreator,
	notif notifier.Notifier,
	langs LanguageSource,
	safetyNetLifetime time.Duration,
) *SubscriptionMonitor {
	return &SubscriptionMonitor{
		store:             store,
		pipeline:          pipeline,
		sessions:          sessions,
		notifier:          notif,
		langs:             langs,
		safetyNetLifetime: safetyNetLifetime,
		nowFn:             func() time.Time { return time.Now().UTC() },
	}
}

// RunCycle выполняет один цикл проверки всех активных подписок.
// Все решения внутри цикла принимаются по одному снапшоту времени,
// чтобы тихие часы и антиспам-пауза оценивались консистентно.
func (m *SubscriptionMonitor) RunCycle(ctx context.Context) error {
	now := m.nowFn()
	cycleID := uuid.New().String()[:8]

	subs, err := m.store.ListActive(ctx)
	if err != nil {
		return fmt.Errorf("failed to load active subscriptions: %w", err)
	}

	logger.Info("🔄 [SubCheck %s] Начало цикла: %d активных подписок", cycleID, len(subs))

	var dirty []*subscription.Subscription
	notified, expired, failed := 0, 0, 0

	for _, sub := range subs {
		decision, err := m.evaluateOne(ctx, sub, now)
		if err != nil {
			failed++
			logger.Error("❌ [SubCheck %s] Подписка %d: %v", cycleID, sub.ID, err)
			continue
		}

		switch decision.Outcome {
		case subscription.OutcomeExpired:
			expired++
			logger.Info("⏰ [SubCheck %s] Подписка %d истекла", cycleID, sub.ID)
			m.sendExpired(ctx, sub)

		case subscription.OutcomeNotified:
			notified++
			logger.Info("🟢 [SubCheck %s] Подписка %d: %s", cycleID, sub.ID, decision.Reason)
			m.sendCleanAir(ctx, sub, decision.Station)
			if sub.AutoSafetyNet {
				m.createSafetyNet(ctx, sub, decision.Station, now)
			}

		case subscription.OutcomeNoop:
			logger.Debug("[SubCheck %s] Подписка %d: %s", cycleID, sub.ID, decision.Reason)
		}

		dirty = append(dirty, sub)
	}

	// Фиксация состояния одним батчем в конце цикла
	if err := m.store.SaveStates(ctx, dirty); err != nil {
		return fmt.Errorf("failed to commit subscription states: %w", err)
	}

	logger.Info("✅ [SubCheck %s] Цикл завершен: уведомлено %d, истекло %d, ошибок %d",
		cycleID, notified, expired, failed)

	return nil
}

// evaluateOne оценивает одну подписку, превращая панику в ошибку -
// изоляция сбоев по элементам гарантируется структурно
func (m *SubscriptionMonitor) evaluateOne(
	ctx context.Context,
	sub *subscription.Subscription,
	now time.Time,
) (decision subscription.Decision, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic while evaluating subscription %d: %v", sub.ID, r)
		}
	}()
	return m.pipeline.Evaluate(ctx, sub, now)
}

func (m *SubscriptionMonitor) sendCleanAir(ctx context.Context, sub *subscription.Subscription, station *airquality.Station) {
	lang := m.langs.Language(ctx, sub.UserID)
	location := notifier.LocationName(station, sub.Latitude, sub.Longitude)

	n := notifier.Notification{
		UserID: sub.UserID,
		Kind:   notifier.KindCleanAir,
		Text:   notifier.CleanAirText(lang, *station.AQI, location),
	}

	// Fire-and-forget: сбой доставки не откатывает состояние цикла
	if err := m.notifier.Send(ctx, n); err != nil {
		logger.Error("❌ Не удалось отправить clean_air пользователю %d: %v", sub.UserID, err)
	}
}

func (m *SubscriptionMonitor) sendExpired(ctx context.Context, sub *subscription.Subscription) {
	lang := m.langs.Language(ctx, sub.UserID)
	location := notifier.LocationName(nil, sub.Latitude, sub.Longitude)

	n := notifier.Notification{
		UserID: sub.UserID,
		Kind:   notifier.KindExpired,
		Text:   notifier.ExpiredText(lang, location),
	}

	if err := m.notifier.Send(ctx, n); err != nil {
		logger.Error("❌ Не удалось отправить expired пользователю %d: %v", sub.UserID, err)
	}
}

// createSafetyNet запускает автоматическую страховку после
// уведомления о чистом воздухе
func (m *SubscriptionMonitor) createSafetyNet(
	ctx context.Context,
	sub *subscription.Subscription,
	station *airquality.Station,
	now time.Time,
) {
	sess := &subscription.SafetyNetSession{
		UserID:         sub.UserID,
		SubscriptionID: sub.ID,
		StartAQI:       *station.AQI,
		SessionExpiry:  now.Add(m.safetyNetLifetime),
		CreatedAt:      now,
	}

	created, err := m.sessions.CreateExclusive(ctx, sess)
	if err != nil {
		logger.Error("❌ Не удалось создать страховку для подписки %d: %v", sub.ID, err)
		return
	}
	if !created {
		logger.Info("ℹ️ Страховка по подписке %d уже активна", sub.ID)
		return
	}

	logger.Info("🛡 Автостраховка по подписке %d: baseline AQI %d, до %s",
		sub.ID, sess.StartAQI, sess.SessionExpiry.Format("15:04"))
}
