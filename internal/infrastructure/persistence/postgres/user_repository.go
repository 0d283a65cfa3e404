// internal/infrastructure/persistence/postgres/user_repository.go
package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
)

// User - пользователь бота с языковой настройкой
type User struct {
	ID           int64     `json:"id"` // Telegram user_id
	Username     string    `json:"username,omitempty"`
	FirstName    string    `json:"first_name,omitempty"`
	LanguageCode string    `json:"language_code"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// UserRepository - репозиторий пользователей
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository создает новый репозиторий
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// GetByID получает пользователя по Telegram ID
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*User, error) {
	query := `
	SELECT id, COALESCE(username, ''), COALESCE(first_name, ''),
		   language_code, is_active, created_at, updated_at
	FROM users
	WHERE id = $1
	`

	var user User
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&user.ID, &user.Username, &user.FirstName,
		&user.LanguageCode, &user.IsActive, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	return &user, nil
}

// Upsert создает или обновляет пользователя
func (r *UserRepository) Upsert(ctx context.Context, user *User) error {
	query := `
	INSERT INTO users (id, username, first_name, language_code, is_active)
	VALUES ($1, $2, $3, $4, $5)
	ON CONFLICT (id) DO UPDATE
	SET username = EXCLUDED.username,
		first_name = EXCLUDED.first_name,
		language_code = EXCLUDED.language_code,
		is_active = EXCLUDED.is_active,
		updated_at = NOW()
	RETURNING created_at, updated_at
	`

	return r.db.QueryRowContext(
		ctx, query,
		user.ID, user.Username, user.FirstName, user.LanguageCode, user.IsActive,
	).Scan(&user.CreatedAt, &user.UpdatedAt)
}

// GetLanguage возвращает язык пользователя, пустую строку если
// пользователь не найден
func (r *UserRepository) GetLanguage(ctx context.Context, id int64) (string, error) {
	var lang string
	err := r.db.QueryRowContext(
		ctx, `SELECT language_code FROM users WHERE id = $1`, id,
	).Scan(&lang)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", nil
		}
		return "", err
	}
	return lang, nil
}
