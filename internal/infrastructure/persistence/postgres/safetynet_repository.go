// internal/infrastructure/persistence/postgres/safetynet_repository.go
package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"

	"air-quality-alert-bot/internal/core/domain/subscription"
)

// SafetyNetRepository - репозиторий сессий страховки
type SafetyNetRepository struct {
	db *sqlx.DB
}

// NewSafetyNetRepository создает новый репозиторий
func NewSafetyNetRepository(db *sqlx.DB) *SafetyNetRepository {
	return &SafetyNetRepository{db: db}
}

// CreateExclusive создает сессию страховки, если по подписке нет живой.
// Уникальность гарантируется на уровне хранилища: уникальный индекс по
// subscription_id плюс условный upsert, который перезаписывает только
// истекшую сессию. Возвращает false, если живая сессия уже существует.
func (r *SafetyNetRepository) CreateExclusive(ctx context.Context, sess *subscription.SafetyNetSession) (bool, error) {
	query := `
	INSERT INTO safety_net_sessions (user_id, subscription_id, start_aqi, session_expiry)
	VALUES ($1, $2, $3, $4)
	ON CONFLICT (subscription_id) DO UPDATE
	SET user_id = EXCLUDED.user_id,
		start_aqi = EXCLUDED.start_aqi,
		session_expiry = EXCLUDED.session_expiry,
		created_at = NOW()
	WHERE safety_net_sessions.session_expiry <= NOW()
	RETURNING id, created_at
	`

	err := r.db.QueryRowContext(
		ctx, query,
		sess.UserID, sess.SubscriptionID, sess.StartAQI, sess.SessionExpiry,
	).Scan(&sess.ID, &sess.CreatedAt)

	if err != nil {
		if err == sql.ErrNoRows {
			// Живая сессия уже есть - upsert ничего не вернул
			return false, nil
		}
		return false, err
	}

	return true, nil
}

// ListUnexpired возвращает сессии, не истекшие на момент now
func (r *SafetyNetRepository) ListUnexpired(ctx context.Context, now time.Time) ([]*subscription.SafetyNetSession, error) {
	query := `
	SELECT id, user_id, subscription_id, start_aqi, session_expiry, created_at
	FROM safety_net_sessions
	WHERE session_expiry > $1
	ORDER BY id
	`

	rows, err := r.db.QueryContext(ctx, query, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []*subscription.SafetyNetSession
	for rows.Next() {
		var sess subscription.SafetyNetSession
		err := rows.Scan(
			&sess.ID, &sess.UserID, &sess.SubscriptionID,
			&sess.StartAQI, &sess.SessionExpiry, &sess.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, &sess)
	}

	return sessions, rows.Err()
}

// Delete удаляет сессию
func (r *SafetyNetRepository) Delete(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM safety_net_sessions WHERE id = $1`, id)
	return err
}

// DeleteBatch удаляет несколько сессий одним запросом
func (r *SafetyNetRepository) DeleteBatch(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}

	query, args, err := sqlx.In(`DELETE FROM safety_net_sessions WHERE id IN (?)`, ids)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, r.db.Rebind(query), args...)
	return err
}
