// internal/monitor/language.go
package monitor

import (
	"context"

	"air-quality-alert-bot/internal/locales"
	"air-quality-alert-bot/pkg/logger"
)

// LanguageSource возвращает язык пользователя для рендера уведомлений
type LanguageSource interface {
	Language(ctx context.Context, userID int64) string
}

// LanguageCache - кэш языковых настроек (Redis)
type LanguageCache interface {
	GetUserLanguage(ctx context.Context, userID int64) (string, error)
	SetUserLanguage(ctx context.Context, userID int64, lang string) error
}

// UserLanguages - язык пользователя из основного хранилища
type UserLanguages interface {
	GetLanguage(ctx context.Context, id int64) (string, error)
}

// LanguageResolver отдает язык пользователя: сначала кэш, затем БД,
// затем язык по умолчанию. Сбои кэша и БД не фатальны.
type LanguageResolver struct {
	cache    LanguageCache // может быть nil, если Redis отключен
	users    UserLanguages
	fallback string
}

// NewLanguageResolver создает резолвер языков
func NewLanguageResolver(cache LanguageCache, users UserLanguages, fallback string) *LanguageResolver {
	if fallback == "" {
		fallback = locales.DefaultLanguage
	}
	return &LanguageResolver{
		cache:    cache,
		users:    users,
		fallback: fallback,
	}
}

// Language возвращает язык пользователя
func (lr *LanguageResolver) Language(ctx context.Context, userID int64) string {
	if lr.cache != nil {
		lang, err := lr.cache.GetUserLanguage(ctx, userID)
		if err != nil {
			logger.Warn("⚠️ Не удалось прочитать язык пользователя %d из кэша: %v", userID, err)
		} else if lang != "" && locales.Supported(lang) {
			return lang
		}
	}

	if lr.users != nil {
		lang, err := lr.users.GetLanguage(ctx, userID)
		if err != nil {
			logger.Warn("⚠️ Не удалось прочитать язык пользователя %d из БД: %v", userID, err)
		} else if lang != "" && locales.Supported(lang) {
			if lr.cache != nil {
				if err := lr.cache.SetUserLanguage(ctx, userID, lang); err != nil {
					logger.Debug("Не удалось закэшировать язык пользователя %d: %v", userID, err)
				}
			}
			return lang
		}
	}

	return lr.fallback
}
