// internal/infrastructure/config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// ============================================
// КОНФИГУРАЦИЯ БАЗЫ ДАННЫХ
// ============================================

// DatabaseConfig - конфигурация базы данных
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string

	// Настройки пула соединений
	MaxOpenConns    int
	MaxIdleConns    int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration

	// Настройки миграций
	MigrationsPath    string
	EnableAutoMigrate bool
}

// RedisConfig конфигурация Redis
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int

	Enabled bool

	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// TTL кэша снапшотов станций
	StationTTL time.Duration
	// TTL кэша языка пользователя
	LanguageTTL time.Duration
}

// TelegramConfig конфигурация Telegram-бота
type TelegramConfig struct {
	BotToken string
	Enabled  bool
	// Минимальный интервал между сообщениями в один чат
	MinSendInterval time.Duration
}

// CheckerConfig настройки движка проверки подписок
type CheckerConfig struct {
	// Интервал цикла проверки подписок
	CheckInterval time.Duration
	// Интервал синхронизации данных с API датчиков
	SyncInterval time.Duration
	// Радиус поиска ближайшего датчика, км
	MaxStationRadiusKM float64
	// Максимальный возраст измерения, после которого датчик считается "мёртвым"
	MaxMeasurementAge time.Duration
	// Антиспам-пауза между уведомлениями по одной подписке
	NotifyCooldown time.Duration
	// Время жизни сессии страховки
	SafetyNetLifetime time.Duration
}

// AirAPIConfig конфигурация внешнего API датчиков
type AirAPIConfig struct {
	LatestURL   string
	StationsURL string
	Timeout     time.Duration
}

// Config - основная структура конфигурации
type Config struct {
	Environment string
	Version     string
	LogPath     string
	LogLevel    string
	Debug       bool

	DefaultLanguage string

	Database DatabaseConfig
	Redis    RedisConfig
	Telegram TelegramConfig
	Checker  CheckerConfig
	AirAPI   AirAPIConfig
}

// LoadConfig загружает конфигурацию из .env файла
func LoadConfig(path string) (*Config, error) {
	if err := godotenv.Load(path); err != nil {
		fmt.Printf("⚠️  Config file not found, using environment variables\n")
	}

	cfg := &Config{}

	// ======================
	// ОСНОВНЫЕ НАСТРОЙКИ
	// ======================
	cfg.Environment = getEnv("ENVIRONMENT", "production")
	cfg.Version = getEnv("VERSION", "1.0.0")
	cfg.LogPath = getEnv("LOG_PATH", "logs/bot.log")
	cfg.LogLevel = getEnv("LOG_LEVEL", "INFO")
	cfg.Debug = getEnvBool("DEBUG", false)
	cfg.DefaultLanguage = getEnv("DEFAULT_LANGUAGE", "ru")

	// ======================
	// БАЗА ДАННЫХ
	// ======================
	cfg.Database.Host = getEnv("DB_HOST", "localhost")
	cfg.Database.Port = getEnvInt("DB_PORT", 5432)
	cfg.Database.User = getEnv("DB_USER", "")
	cfg.Database.Password = getEnv("DB_PASSWORD", "")
	cfg.Database.Name = getEnv("DB_NAME", "airbot")
	cfg.Database.SSLMode = getEnv("DB_SSLMODE", "disable")
	cfg.Database.MaxOpenConns = getEnvInt("DB_MAX_OPEN_CONNS", 25)
	cfg.Database.MaxIdleConns = getEnvInt("DB_MAX_IDLE_CONNS", 10)
	cfg.Database.MaxConnLifetime = getEnvDuration("DB_MAX_CONN_LIFETIME", 30*time.Minute)
	cfg.Database.MaxConnIdleTime = getEnvDuration("DB_MAX_CONN_IDLE_TIME", 10*time.Minute)
	cfg.Database.MigrationsPath = getEnv("DB_MIGRATIONS_PATH", "migrations")
	cfg.Database.EnableAutoMigrate = getEnvBool("DB_ENABLE_AUTO_MIGRATE", true)

	// ======================
	// REDIS
	// ======================
	cfg.Redis.Host = getEnv("REDIS_HOST", "localhost")
	cfg.Redis.Port = getEnvInt("REDIS_PORT", 6379)
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", "")
	cfg.Redis.DB = getEnvInt("REDIS_DB", 0)
	cfg.Redis.Enabled = getEnvBool("REDIS_ENABLED", true)
	cfg.Redis.PoolSize = getEnvInt("REDIS_POOL_SIZE", 10)
	cfg.Redis.MinIdleConns = getEnvInt("REDIS_MIN_IDLE_CONNS", 5)
	cfg.Redis.DialTimeout = getEnvDuration("REDIS_DIAL_TIMEOUT", 5*time.Second)
	cfg.Redis.ReadTimeout = getEnvDuration("REDIS_READ_TIMEOUT", 3*time.Second)
	cfg.Redis.WriteTimeout = getEnvDuration("REDIS_WRITE_TIMEOUT", 3*time.Second)
	cfg.Redis.StationTTL = getEnvDuration("REDIS_STATION_TTL", 15*time.Minute)
	cfg.Redis.LanguageTTL = getEnvDuration("REDIS_LANGUAGE_TTL", 30*24*time.Hour)

	// ======================
	// TELEGRAM
	// ======================
	cfg.Telegram.BotToken = getEnv("BOT_TOKEN", "")
	cfg.Telegram.Enabled = getEnvBool("TELEGRAM_ENABLED", true)
	cfg.Telegram.MinSendInterval = getEnvDuration("TELEGRAM_MIN_SEND_INTERVAL", 2*time.Second)

	// ======================
	// ДВИЖОК ПРОВЕРКИ ПОДПИСОК
	// ======================
	cfg.Checker.CheckInterval = getEnvDuration("CHECK_INTERVAL", 15*time.Minute)
	cfg.Checker.SyncInterval = getEnvDuration("SYNC_INTERVAL", 5*time.Minute)
	cfg.Checker.MaxStationRadiusKM = getEnvFloat("MAX_STATION_RADIUS_KM", 50.0)
	cfg.Checker.MaxMeasurementAge = getEnvDuration("MAX_MEASUREMENT_AGE", 150*time.Minute)
	cfg.Checker.NotifyCooldown = getEnvDuration("NOTIFY_COOLDOWN", 4*time.Hour)
	cfg.Checker.SafetyNetLifetime = getEnvDuration("SAFETY_NET_LIFETIME", 4*time.Hour)

	// ======================
	// ВНЕШНИЙ API ДАТЧИКОВ
	// ======================
	cfg.AirAPI.LatestURL = getEnv("AIR_API_URL", "https://api.air.org.kz/api/airgradient/latest")
	cfg.AirAPI.StationsURL = getEnv("AIR_STATIONS_URL", "https://api.air.org.kz/api/stations")
	cfg.AirAPI.Timeout = getEnvDuration("AIR_API_TIMEOUT", 30*time.Second)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate проверяет обязательные параметры конфигурации
func (c *Config) Validate() error {
	if c.Telegram.Enabled && c.Telegram.BotToken == "" {
		return fmt.Errorf("BOT_TOKEN обязателен при TELEGRAM_ENABLED=true")
	}
	if c.Checker.CheckInterval <= 0 {
		return fmt.Errorf("CHECK_INTERVAL должен быть положительным")
	}
	if c.Checker.MaxStationRadiusKM <= 0 {
		return fmt.Errorf("MAX_STATION_RADIUS_KM должен быть положительным")
	}
	return nil
}

// ============================================
// ХЕЛПЕРЫ ЧТЕНИЯ ПЕРЕМЕННЫХ ОКРУЖЕНИЯ
// ============================================

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
