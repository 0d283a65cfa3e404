package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"air-quality-alert-bot/internal/core/domain/airquality"
	"air-quality-alert-bot/internal/core/domain/subscription"
	"air-quality-alert-bot/internal/infrastructure/cache/redis"
	"air-quality-alert-bot/internal/infrastructure/config"
	"air-quality-alert-bot/internal/infrastructure/persistence/postgres"
	"air-quality-alert-bot/internal/monitor"
	"air-quality-alert-bot/internal/notifier"
	"air-quality-alert-bot/internal/scheduler"
	airsync "air-quality-alert-bot/internal/sync"
	"air-quality-alert-bot/pkg/logger"
)

func main() {
	// Загружаем конфигурацию
	cfg, err := config.LoadConfig(".env")
	if err != nil {
		log.Fatalf("Не удалось загрузить конфигурацию: %v", err)
	}

	if err := logger.InitGlobal(cfg.LogPath, cfg.LogLevel, cfg.Debug); err != nil {
		log.Fatalf("Не удалось инициализировать логгер: %v", err)
	}

	printHeader("МОНИТОР КАЧЕСТВА ВОЗДУХА")
	fmt.Printf("🔧 Конфигурация:\n")
	fmt.Printf("   Окружение: %s (v%s)\n", cfg.Environment, cfg.Version)
	fmt.Printf("   Интервал проверки подписок: %s\n", cfg.Checker.CheckInterval)
	fmt.Printf("   Интервал синхронизации датчиков: %s\n", cfg.Checker.SyncInterval)
	fmt.Printf("   Радиус поиска датчика: %.0f км\n", cfg.Checker.MaxStationRadiusKM)
	fmt.Printf("   Макс. возраст измерения: %s\n", cfg.Checker.MaxMeasurementAge)
	fmt.Printf("   Антиспам-пауза: %s\n", cfg.Checker.NotifyCooldown)
	fmt.Printf("   Время жизни страховки: %s\n", cfg.Checker.SafetyNetLifetime)
	fmt.Println()

	// ======================
	// ХРАНИЛИЩА
	// ======================
	db, err := postgres.Connect(&cfg.Database)
	if err != nil {
		logger.Fatal("❌ PostgreSQL недоступен: %v", err)
	}
	defer db.Close()

	subRepo := postgres.NewSubscriptionRepository(db)
	sessionRepo := postgres.NewSafetyNetRepository(db)
	stationRepo := postgres.NewStationRepository(db)
	userRepo := postgres.NewUserRepository(db)

	var cache *redis.Cache
	if cfg.Redis.Enabled {
		cache = redis.NewCache(&cfg.Redis)
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Redis.DialTimeout)
		if err := cache.Ping(ctx); err != nil {
			logger.Warn("⚠️ Redis недоступен, продолжаем без кэша: %v", err)
			cache = nil
		} else {
			logger.Info("✅ Connected to Redis")
			defer cache.Close()
		}
		cancel()
	}

	// ======================
	// ДОМЕННЫЙ СЛОЙ
	// ======================
	resolver := airquality.NewResolver(stationRepo, cfg.Checker.MaxMeasurementAge)
	pipeline := subscription.NewPipeline(resolver, cfg.Checker.MaxStationRadiusKM, cfg.Checker.NotifyCooldown)
	evaluator := subscription.NewSafetyNetEvaluator(resolver, cfg.Checker.MaxStationRadiusKM)

	// ======================
	// НОТИФИКАТОР
	// ======================
	var notif notifier.Notifier
	if cfg.Telegram.Enabled {
		if tg := notifier.NewTelegramNotifier(cfg); tg != nil {
			notif = tg
			fmt.Println("🤖 Telegram нотификатор инициализирован")
		}
	}
	if notif == nil {
		notif = notifier.NewConsoleNotifier()
		fmt.Println("🖥  Уведомления выводятся в консоль")
	}

	// nil-интерфейс вместо типизированного nil *redis.Cache
	var langCache monitor.LanguageCache
	var snapshots airsync.SnapshotCache
	if cache != nil {
		langCache = cache
		snapshots = cache
	}
	langs := monitor.NewLanguageResolver(langCache, userRepo, cfg.DefaultLanguage)

	// ======================
	// ЦИКЛЫ МОНИТОРИНГА
	// ======================
	syncService := airsync.NewService(&cfg.AirAPI, stationRepo, snapshots)
	subMonitor := monitor.NewSubscriptionMonitor(
		subRepo, pipeline, sessionRepo, notif, langs, cfg.Checker.SafetyNetLifetime,
	)
	safetyMonitor := monitor.NewSafetyNetMonitor(
		sessionRepo, subRepo, evaluator, notif, langs,
	)

	sched := scheduler.New()
	sched.Register(&scheduler.Job{
		Name:        "sensor-sync",
		Description: "Синхронизация данных датчиков из внешнего API",
		Interval:    cfg.Checker.SyncInterval,
		Handler:     syncService.Sync,
	})
	sched.Register(&scheduler.Job{
		Name:        "subscription-check",
		Description: "Проверка активных подписок и рассылка уведомлений",
		Interval:    cfg.Checker.CheckInterval,
		Handler:     subMonitor.RunCycle,
	})
	sched.Register(&scheduler.Job{
		Name:        "safety-net-check",
		Description: "Проверка сессий страховки на ухудшение воздуха",
		Interval:    cfg.Checker.CheckInterval,
		Handler:     safetyMonitor.RunCycle,
	})

	startTime := time.Now()
	sched.Start()

	fmt.Println("🚀 Мониторинг качества воздуха запущен")
	fmt.Println()
	fmt.Println("🎮 Управление:")
	fmt.Println("   Ctrl+C - Остановить бота")
	printSeparator()

	// Graceful shutdown
	stopChan := make(chan os.Signal, 1)
	signal.Notify(stopChan, syscall.SIGINT, syscall.SIGTERM)
	<-stopChan

	fmt.Println()
	printHeader("Завершение работы")
	fmt.Printf("⏱️  Время работы: %s\n", formatDuration(time.Since(startTime)))
	for _, js := range sched.Jobs() {
		fmt.Printf("📊 Задача %q: запусков %d", js.Name, js.Runs)
		if js.LastErr != nil {
			fmt.Printf(", последняя ошибка: %v", js.LastErr)
		}
		fmt.Println()
	}

	sched.Stop()

	fmt.Println("✅ Бот остановлен корректно")
}

func printHeader(text string) {
	width := 80
	padding := (width - len([]rune(text))) / 2
	if padding < 0 {
		padding = 0
	}

	fmt.Println(strings.Repeat("═", width))
	fmt.Printf("%s%s\n", strings.Repeat(" ", padding), text)
	fmt.Println(strings.Repeat("═", width))
}

func printSeparator() {
	fmt.Println(strings.Repeat("─", 80))
}

func formatDuration(d time.Duration) string {
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	if hours > 0 {
		return fmt.Sprintf("%dч %dм %dс", hours, minutes, seconds)
	} else if minutes > 0 {
		return fmt.Sprintf("%dм %dс", minutes, seconds)
	}
	return fmt.Sprintf("%dс", seconds)
}
