// internal/infrastructure/cache/redis/cache.go
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"air-quality-alert-bot/internal/core/domain/airquality"
	"air-quality-alert-bot/internal/infrastructure/config"
)

// Cache - обертка над Redis для кэша языков пользователей
// и снапшотов датчиков
type Cache struct {
	client      *redis.Client
	prefix      string
	stationTTL  time.Duration
	languageTTL time.Duration
}

// NewCache создает подключение к Redis
func NewCache(cfg *config.RedisConfig) *Cache {
	return &Cache{
		client: redis.NewClient(&redis.Options{
			Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
			Password:     cfg.Password,
			DB:           cfg.DB,
			PoolSize:     cfg.PoolSize,
			MinIdleConns: cfg.MinIdleConns,
			DialTimeout:  cfg.DialTimeout,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
		}),
		prefix:      "airbot:",
		stationTTL:  cfg.StationTTL,
		languageTTL: cfg.LanguageTTL,
	}
}

// Ping проверяет соединение с Redis
func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close закрывает соединение
func (c *Cache) Close() error {
	return c.client.Close()
}

// Set устанавливает значение с TTL
func (c *Cache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.prefix+key, data, ttl).Err()
}

// Get получает значение. Возвращает redis.Nil если ключа нет.
func (c *Cache) Get(ctx context.Context, key string, dest interface{}) error {
	data, err := c.client.Get(ctx, c.prefix+key).Result()
	if err != nil {
		return err
	}
	return json.Unmarshal([]byte(data), dest)
}

// Delete удаляет ключ
func (c *Cache) Delete(ctx context.Context, key string) error {
	return c.client.Del(ctx, c.prefix+key).Err()
}

// SetUserLanguage кэширует языковую настройку пользователя
func (c *Cache) SetUserLanguage(ctx context.Context, userID int64, lang string) error {
	key := fmt.Sprintf("user:%d:lang", userID)
	return c.client.Set(ctx, c.prefix+key, lang, c.languageTTL).Err()
}

// GetUserLanguage возвращает язык пользователя из кэша,
// пустую строку если в кэше нет
func (c *Cache) GetUserLanguage(ctx context.Context, userID int64) (string, error) {
	key := fmt.Sprintf("user:%d:lang", userID)
	lang, err := c.client.Get(ctx, c.prefix+key).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return lang, nil
}

// SetStationSnapshot кэширует последний снапшот датчика
func (c *Cache) SetStationSnapshot(ctx context.Context, station *airquality.Station) error {
	key := fmt.Sprintf("station:%s", station.StationID)
	return c.Set(ctx, key, station, c.stationTTL)
}

// GetStationSnapshot возвращает снапшот датчика из кэша,
// nil если снапшота нет
func (c *Cache) GetStationSnapshot(ctx context.Context, stationID string) (*airquality.Station, error) {
	key := fmt.Sprintf("station:%s", stationID)

	var station airquality.Station
	err := c.Get(ctx, key, &station)
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &station, nil
}
