package main

import (
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"

	"Backoffice/internal/api"
	"Backoffice/internal/config"
	"Backoffice/internal/db"
	"Backoffice/internal/ledger"
	"Backoffice/internal/notify"
	"Backoffice/internal/ordersync"
	"Backoffice/internal/platform"
	"Backoffice/internal/session"
	"Backoffice/internal/settlement"
	"Backoffice/internal/withdrawals"
)

func main() {
	// --- Блок инициализации ---
	err := godotenv.Load()
	if err != nil {
		log.Println("Предупреждение: не удалось загрузить файл .env. Переменные окружения должны быть установлены иным способом.")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Критическая ошибка: не удалось загрузить конфигурацию: %v", err)
	}

	if err := db.InitDB(); err != nil {
		log.Fatalf("Критическая ошибка: не удалось инициализировать базу данных: %v", err)
	}
	defer db.CloseDB()

	platformClient := platform.NewClient(cfg.PlatformAPIKey, cfg.PlatformBaseURL, cfg.HTTPTimeout)

	notifier := notify.NewAccountingNotifier(cfg.TelegramToken, cfg.AccountingChatID)
	var settlementNotifier settlement.Notifier
	var withdrawalNotifier withdrawals.Notifier
	if notifier != nil {
		settlementNotifier = notifier
		withdrawalNotifier = notifier
	}

	sessionManager := session.NewManager()
	aggregator := ledger.NewAggregator(platformClient)
	recorder := settlement.NewRecorder(platformClient, db.NewJournalStore(), settlementNotifier)
	registry := ordersync.NewRegistry(platformClient, cfg.ConflictPollInterval)
	defer registry.CloseAll()
	editor := ordersync.NewEditor(platformClient)
	gate := withdrawals.NewGate(platformClient, withdrawalNotifier)

	// --- Настройка роутера и Middleware ---
	router := chi.NewRouter()

	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Api-Token", "X-Operator", "X-Operator-Role"},
		ExposedHeaders:   []string{"Link", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	apiDeps := &api.ApiDependencies{
		Config:     cfg,
		Platform:   platformClient,
		Aggregator: aggregator,
		Sessions:   sessionManager,
		Recorder:   recorder,
		Registry:   registry,
		Editor:     editor,
		Gate:       gate,
		Notifier:   notifier,
	}
	api.SetupRoutes(router, apiDeps)

	router.Get("/favicon.ico", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	// Запускаем HTTP-сервер в отдельной горутине, чтобы дождаться сигнала завершения.
	go func() {
		log.Printf("Запуск HTTP-сервера бэк-офиса на порту %s", cfg.Port)
		if err := http.ListenAndServe(":"+cfg.Port, router); err != nil {
			log.Fatalf("КРИТИЧЕСКАЯ ОШИБКА: не удалось запустить HTTP-сервер: %v", err)
		}
	}()

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	sig := <-signals
	log.Printf("Получен сигнал %v, завершение работы. Остановка наблюдателей заказов...", sig)
}
