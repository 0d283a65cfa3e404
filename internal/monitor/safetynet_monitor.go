// internal/monitor/safetynet_monitor.go
package monitor

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"air-quality-alert-bot/internal/core/domain/subscription"
	"air-quality-alert-bot/internal/notifier"
	"air-quality-alert-bot/pkg/logger"
)

// SessionStore - сессии страховки для цикла проверки
type SessionStore interface {
	ListUnexpired(ctx context.Context, now time.Time) ([]*subscription.SafetyNetSession, error)
	DeleteBatch(ctx context.Context, ids []int64) error
}

// SubscriptionGetter возвращает подписку по ID (nil, nil если нет)
type SubscriptionGetter interface {
	GetByID(ctx context.Context, id int64) (*subscription.Subscription, error)
}

// SafetyNetMonitor - цикл обратного мониторинга.
//
// Сессия - защелка: после первого алерта (или истечения срока)
// она удаляется и повторно не срабатывает.
type SafetyNetMonitor struct {
	sessions  SessionStore
	subs      SubscriptionGetter
	evaluator *subscription.SafetyNetEvaluator
	notifier  notifier.Notifier
	langs     LanguageSource

	nowFn func() time.Time
}

// NewSafetyNetMonitor создает монитор сессий страховки
func NewSafetyNetMonitor(
	sessions SessionStore,
	subs SubscriptionGetter,
	evaluator *subscription.SafetyNetEvaluator,
	notif notifier.Notifier,
	langs LanguageSource,
) *SafetyNetMonitor {
	return &SafetyNetMonitor{
		sessions:  sessions,
		subs:      subs,
		evaluator: evaluator,
		notifier:  notif,
		langs:     langs,
		nowFn:     func() time.Time { return time.Now().UTC() },
	}
}

// RunCycle выполняет один цикл проверки всех живых сессий страховки
func (m *SafetyNetMonitor) RunCycle(ctx context.Context) error {
	now := m.nowFn()
	cycleID := uuid.New().String()[:8]

	sessions, err := m.sessions.ListUnexpired(ctx, now)
	if err != nil {
		return fmt.Errorf("failed to load safety net sessions: %w", err)
	}

	logger.Info("🔄 [SafetyNet %s] Начало цикла: %d живых сессий", cycleID, len(sessions))

	var toDelete []int64
	alerted, expired, failed := 0, 0, 0

	for _, sess := range sessions {
		decision, err := m.evaluateOne(ctx, sess, now)
		if err != nil {
			failed++
			logger.Error("❌ [SafetyNet %s] Сессия %d: %v", cycleID, sess.ID, err)
			continue
		}

		switch decision.Outcome {
		case subscription.SessionExpired:
			// Удаляем молча, без сообщений
			expired++
			toDelete = append(toDelete, sess.ID)

		case subscription.SessionOrphaned:
			logger.Warn("⚠️ [SafetyNet %s] Сессия %d осиротела, удаляем", cycleID, sess.ID)
			toDelete = append(toDelete, sess.ID)

		case subscription.SessionAlerted:
			alerted++
			logger.Info("🔴 [SafetyNet %s] Сессия %d: %s", cycleID, sess.ID, decision.Reason)
			m.sendBadAir(ctx, sess, decision)
			toDelete = append(toDelete, sess.ID)

		case subscription.SessionNoop:
			logger.Debug("[SafetyNet %s] Сессия %d: %s", cycleID, sess.ID, decision.Reason)
		}
	}

	// Фиксация удалений одним батчем в конце цикла
	if err := m.sessions.DeleteBatch(ctx, toDelete); err != nil {
		return fmt.Errorf("failed to delete resolved sessions: %w", err)
	}

	logger.Info("✅ [SafetyNet %s] Цикл завершен: алертов %d, истекло %d, ошибок %d",
		cycleID, alerted, expired, failed)

	return nil
}

// evaluateOne оценивает одну сессию, превращая панику в ошибку
func (m *SafetyNetMonitor) evaluateOne(
	ctx context.Context,
	sess *subscription.SafetyNetSession,
	now time.Time,
) (decision subscription.AlertDecision, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic while evaluating session %d: %v", sess.ID, r)
		}
	}()

	// Сессию без подписки оценщик трактует как осиротевшую
	sub, err := m.subs.GetByID(ctx, sess.SubscriptionID)
	if err != nil {
		return subscription.AlertDecision{}, fmt.Errorf("failed to load subscription %d: %w", sess.SubscriptionID, err)
	}

	return m.evaluator.EvaluateSession(ctx, sess, sub, now)
}

func (m *SafetyNetMonitor) sendBadAir(ctx context.Context, sess *subscription.SafetyNetSession, decision subscription.AlertDecision) {
	lang := m.langs.Language(ctx, sess.UserID)
	location := decision.Station.Name
	if location == "" {
		location = fmt.Sprintf("%.4f, %.4f", decision.Station.Latitude, decision.Station.Longitude)
	}

	n := notifier.Notification{
		UserID: sess.UserID,
		Kind:   notifier.KindBadAir,
		Text:   notifier.BadAirText(lang, *decision.Station.AQI, location),
	}

	// Fire-and-forget: сбой доставки не мешает удалению сессии
	if err := m.notifier.Send(ctx, n); err != nil {
		logger.Error("❌ Не удалось отправить bad_air пользователю %d: %v", sess.UserID, err)
	}
}
