// internal/core/domain/subscription/service.go
package subscription

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrInvalidQuietHours - часы тишины вне диапазона 0..23
	ErrInvalidQuietHours = errors.New("quiet hours must be within 0..23")
	// ErrSubscriptionNotFound - подписка не найдена
	ErrSubscriptionNotFound = errors.New("subscription not found")
	// ErrNoStationForBaseline - нет датчика рядом, базовый AQI для страховки не определить
	ErrNoStationForBaseline = errors.New("no station in range to capture baseline AQI")
	// ErrSafetyNetExists - по подписке уже есть живая сессия страховки
	ErrSafetyNetExists = errors.New("safety net session already active")
)

// Repository - хранилище подписок
type Repository interface {
	Create(ctx context.Context, sub *Subscription) error
	GetByID(ctx context.Context, id int64) (*Subscription, error)
	ListActive(ctx context.Context) ([]*Subscription, error)
	ListActiveByUser(ctx context.Context, userID int64) ([]*Subscription, error)
	Deactivate(ctx context.Context, id int64) error
	SaveStates(ctx context.Context, subs []*Subscription) error
}

// SessionRepository - хранилище сессий страховки
type SessionRepository interface {
	// CreateExclusive создает сессию, если по подписке нет живой.
	// Возвращает false, если живая сессия уже существует
	// (уникальность гарантирует само хранилище).
	CreateExclusive(ctx context.Context, sess *SafetyNetSession) (bool, error)
	ListUnexpired(ctx context.Context, now time.Time) ([]*SafetyNetSession, error)
	Delete(ctx context.Context, id int64) error
}

// Service - операции над подписками для диалогового слоя бота
type Service struct {
	repo     Repository
	sessions SessionRepository
	resolver Resolver

	radiusKM          float64
	safetyNetLifetime time.Duration
}

// NewService создает сервис подписок
func NewService(
	repo Repository,
	sessions SessionRepository,
	resolver Resolver,
	radiusKM float64,
	safetyNetLifetime time.Duration,
) *Service {
	return &Service{
		repo:              repo,
		sessions:          sessions,
		resolver:          resolver,
		radiusKM:          radiusKM,
		safetyNetLifetime: safetyNetLifetime,
	}
}

// CreateSubscription создает подписку на точку.
// expiry == nil означает бессрочную подписку.
func (s *Service) CreateSubscription(
	ctx context.Context,
	userID int64,
	lat, lon float64,
	expiry *time.Time,
	muteStart, muteEnd int,
	autoSafetyNet bool,
) (*Subscription, error) {
	if muteStart < 0 || muteStart > 23 || muteEnd < 0 || muteEnd > 23 {
		return nil, ErrInvalidQuietHours
	}

	now := time.Now().UTC()
	sub := &Subscription{
		UserID:        userID,
		Latitude:      lat,
		Longitude:     lon,
		ExpiryDate:    expiry,
		MuteStart:     muteStart,
		MuteEnd:       muteEnd,
		AutoSafetyNet: autoSafetyNet,
		IsActive:      true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.repo.Create(ctx, sub); err != nil {
		return nil, fmt.Errorf("failed to create subscription: %w", err)
	}

	return sub, nil
}

// CreateSafetyNet запускает сессию страховки по подписке.
// Базовый AQI берется с ближайшего датчика на момент вызова.
func (s *Service) CreateSafetyNet(ctx context.Context, userID, subscriptionID int64) (*SafetyNetSession, error) {
	sub, err := s.repo.GetByID(ctx, subscriptionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load subscription %d: %w", subscriptionID, err)
	}
	if sub == nil || !sub.IsActive {
		return nil, ErrSubscriptionNotFound
	}

	station, err := s.resolver.FindNearest(ctx, sub.Latitude, sub.Longitude, s.radiusKM)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve station: %w", err)
	}
	if station == nil || station.AQI == nil {
		return nil, ErrNoStationForBaseline
	}

	now := time.Now().UTC()
	sess := &SafetyNetSession{
		UserID:         userID,
		SubscriptionID: sub.ID,
		StartAQI:       *station.AQI,
		SessionExpiry:  now.Add(s.safetyNetLifetime),
		CreatedAt:      now,
	}

	created, err := s.sessions.CreateExclusive(ctx, sess)
	if err != nil {
		return nil, fmt.Errorf("failed to create safety net session: %w", err)
	}
	if !created {
		return nil, ErrSafetyNetExists
	}

	return sess, nil
}

// ListActiveSubscriptions возвращает активные подписки пользователя
func (s *Service) ListActiveSubscriptions(ctx context.Context, userID int64) ([]*Subscription, error) {
	return s.repo.ListActiveByUser(ctx, userID)
}

// Deactivate деактивирует подписку (записи не удаляются)
func (s *Service) Deactivate(ctx context.Context, subscriptionID int64) error {
	return s.repo.Deactivate(ctx, subscriptionID)
}
