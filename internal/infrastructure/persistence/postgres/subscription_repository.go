// internal/infrastructure/persistence/postgres/subscription_repository.go
package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"air-quality-alert-bot/internal/core/domain/subscription"
)

// SubscriptionRepository - репозиторий подписок
type SubscriptionRepository struct {
	db *sqlx.DB
}

// NewSubscriptionRepository создает новый репозиторий
func NewSubscriptionRepository(db *sqlx.DB) *SubscriptionRepository {
	return &SubscriptionRepository{db: db}
}

const subscriptionColumns = `
	id, user_id, latitude, longitude, expiry_date,
	mute_start, mute_end, last_notified_at, last_aqi_level,
	auto_safety_net, is_active, created_at, updated_at
`

func scanSubscription(row interface{ Scan(...interface{}) error }) (*subscription.Subscription, error) {
	var sub subscription.Subscription
	err := row.Scan(
		&sub.ID, &sub.UserID, &sub.Latitude, &sub.Longitude, &sub.ExpiryDate,
		&sub.MuteStart, &sub.MuteEnd, &sub.LastNotifiedAt, &sub.LastAQILevel,
		&sub.AutoSafetyNet, &sub.IsActive, &sub.CreatedAt, &sub.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

// Create создает новую подписку
func (r *SubscriptionRepository) Create(ctx context.Context, sub *subscription.Subscription) error {
	query := `
	INSERT INTO subscriptions (
		user_id, latitude, longitude, expiry_date,
		mute_start, mute_end, auto_safety_net, is_active
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	RETURNING id, created_at, updated_at
	`

	return r.db.QueryRowContext(
		ctx, query,
		sub.UserID, sub.Latitude, sub.Longitude, sub.ExpiryDate,
		sub.MuteStart, sub.MuteEnd, sub.AutoSafetyNet, sub.IsActive,
	).Scan(&sub.ID, &sub.CreatedAt, &sub.UpdatedAt)
}

// GetByID получает подписку по ID
func (r *SubscriptionRepository) GetByID(ctx context.Context, id int64) (*subscription.Subscription, error) {
	query := `SELECT ` + subscriptionColumns + ` FROM subscriptions WHERE id = $1`

	sub, err := scanSubscription(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return sub, nil
}

// ListActive возвращает все активные подписки
func (r *SubscriptionRepository) ListActive(ctx context.Context) ([]*subscription.Subscription, error) {
	query := `
	SELECT ` + subscriptionColumns + `
	FROM subscriptions
	WHERE is_active = TRUE
	ORDER BY id
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subs []*subscription.Subscription
	for rows.Next() {
		sub, err := scanSubscription(rows)
		if err != nil {
			return nil, err
		}
		subs = append(subs, sub)
	}

	return subs, rows.Err()
}

// ListActiveByUser возвращает активные подписки пользователя
func (r *SubscriptionRepository) ListActiveByUser(ctx context.Context, userID int64) ([]*subscription.Subscription, error) {
	query := `
	SELECT ` + subscriptionColumns + `
	FROM subscriptions
	WHERE user_id = $1 AND is_active = TRUE
	ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subs []*subscription.Subscription
	for rows.Next() {
		sub, err := scanSubscription(rows)
		if err != nil {
			return nil, err
		}
		subs = append(subs, sub)
	}

	return subs, rows.Err()
}

// Deactivate деактивирует подписку (записи не удаляются)
func (r *SubscriptionRepository) Deactivate(ctx context.Context, id int64) error {
	query := `
	UPDATE subscriptions
	SET is_active = FALSE,
		updated_at = NOW()
	WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return sql.ErrNoRows
	}

	return nil
}

// SaveStates фиксирует состояние подписок одним батчем в конце цикла.
// Обновляются только поля, которые мутирует конвейер.
func (r *SubscriptionRepository) SaveStates(ctx context.Context, subs []*subscription.Subscription) error {
	if len(subs) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}
	defer tx.Rollback()

	query := `
	UPDATE subscriptions
	SET last_notified_at = $1,
		last_aqi_level = $2,
		is_active = $3,
		updated_at = NOW()
	WHERE id = $4
	`

	stmt, err := tx.PreparexContext(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to prepare state update: %w", err)
	}
	defer stmt.Close()

	for _, sub := range subs {
		if _, err := stmt.ExecContext(ctx, sub.LastNotifiedAt, sub.LastAQILevel, sub.IsActive, sub.ID); err != nil {
			return fmt.Errorf("failed to save state of subscription %d: %w", sub.ID, err)
		}
	}

	return tx.Commit()
}
