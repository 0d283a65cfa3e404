// internal/monitor/language_test.go
package monitor

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeLangCache struct {
	langs map[int64]string
	set   map[int64]string
	err   error
}

func (f *fakeLangCache) GetUserLanguage(_ context.Context, userID int64) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.langs[userID], nil
}

func (f *fakeLangCache) SetUserLanguage(_ context.Context, userID int64, lang string) error {
	if f.set == nil {
		f.set = map[int64]string{}
	}
	f.set[userID] = lang
	return nil
}

type fakeUserLangs struct {
	langs map[int64]string
	err   error
}

func (f *fakeUserLangs) GetLanguage(_ context.Context, id int64) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.langs[id], nil
}

func TestLanguage_CacheHit(t *testing.T) {
	lr := NewLanguageResolver(
		&fakeLangCache{langs: map[int64]string{100: "kk"}},
		&fakeUserLangs{langs: map[int64]string{100: "en"}},
		"ru",
	)

	assert.Equal(t, "kk", lr.Language(context.Background(), 100))
}

func TestLanguage_CacheMissFallsToDBAndBackfills(t *testing.T) {
	cache := &fakeLangCache{langs: map[int64]string{}}
	lr := NewLanguageResolver(cache, &fakeUserLangs{langs: map[int64]string{100: "en"}}, "ru")

	assert.Equal(t, "en", lr.Language(context.Background(), 100))
	assert.Equal(t, "en", cache.set[100])
}

func TestLanguage_DefaultWhenUnknown(t *testing.T) {
	lr := NewLanguageResolver(nil, &fakeUserLangs{langs: map[int64]string{}}, "ru")
	assert.Equal(t, "ru", lr.Language(context.Background(), 100))
}

func TestLanguage_FailuresNotFatal(t *testing.T) {
	lr := NewLanguageResolver(
		&fakeLangCache{err: errors.New("redis down")},
		&fakeUserLangs{err: errors.New("db down")},
		"ru",
	)

	assert.Equal(t, "ru", lr.Language(context.Background(), 100))
}

func TestLanguage_UnsupportedLanguageIgnored(t *testing.T) {
	lr := NewLanguageResolver(
		&fakeLangCache{langs: map[int64]string{100: "de"}},
		&fakeUserLangs{langs: map[int64]string{100: "zz"}},
		"ru",
	)

	assert.Equal(t, "ru", lr.Language(context.Background(), 100))
}
