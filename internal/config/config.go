// internal/config/config.go
package config

import (
	"log"
	"os"
	"strconv"
	"time"
)

// Config хранит все конфигурационные параметры сервиса.
type Config struct {
	PlatformAPIKey  string
	PlatformBaseURL string
	DatabaseURL     string
	APISecretToken  string
	AppEnv          string
	Port            string

	TelegramToken    string
	AccountingChatID int64

	// Интервал фоновой проверки конфликтов редактирования заказа.
	ConflictPollInterval time.Duration
	// Таймаут каждого HTTP-запроса к внешней платформе.
	HTTPTimeout time.Duration
}

// LoadConfig загружает конфигурацию из переменных окружения.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		PlatformAPIKey:  os.Getenv("PLATFORM_API_KEY"),
		PlatformBaseURL: os.Getenv("PLATFORM_BASE_URL"),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		APISecretToken:  os.Getenv("API_SECRET_TOKEN"),
		AppEnv:          os.Getenv("ENV"),
		Port:            os.Getenv("PORT"),
		TelegramToken:   os.Getenv("TELEGRAM_APITOKEN"),
	}

	var err error
	cfg.AccountingChatID, err = strconv.ParseInt(os.Getenv("ACCOUNTING_CHAT_ID"), 10, 64)
	if err != nil {
		log.Printf("Предупреждение: не удалось прочитать ACCOUNTING_CHAT_ID: %v. Уведомления бухгалтерии отключены.", err)
		cfg.AccountingChatID = 0
	}

	pollSecondsStr := os.Getenv("CONFLICT_POLL_INTERVAL")
	if pollSecondsStr == "" {
		log.Println("Предупреждение: CONFLICT_POLL_INTERVAL не установлен, используется значение по умолчанию 30 секунд.")
		cfg.ConflictPollInterval = 30 * time.Second
	} else {
		pollSeconds, errParse := strconv.Atoi(pollSecondsStr)
		if errParse != nil || pollSeconds <= 0 {
			log.Printf("Предупреждение: некорректное значение CONFLICT_POLL_INTERVAL ('%s'): %v. Используется 30 секунд.", pollSecondsStr, errParse)
			cfg.ConflictPollInterval = 30 * time.Second
		} else {
			cfg.ConflictPollInterval = time.Duration(pollSeconds) * time.Second
		}
	}

	timeoutSecondsStr := os.Getenv("HTTP_TIMEOUT")
	if timeoutSecondsStr == "" {
		cfg.HTTPTimeout = 15 * time.Second
	} else {
		timeoutSeconds, errParse := strconv.Atoi(timeoutSecondsStr)
		if errParse != nil || timeoutSeconds <= 0 {
			log.Printf("Предупреждение: некорректное значение HTTP_TIMEOUT ('%s'): %v. Используется 15 секунд.", timeoutSecondsStr, errParse)
			cfg.HTTPTimeout = 15 * time.Second
		} else {
			cfg.HTTPTimeout = time.Duration(timeoutSeconds) * time.Second
		}
	}

	if cfg.PlatformAPIKey == "" {
		log.Println("Критическая ошибка: PLATFORM_API_KEY не установлен.")
	}
	if cfg.PlatformBaseURL == "" {
		log.Println("Предупреждение: PLATFORM_BASE_URL не установлен, используется адрес платформы по умолчанию.")
	}
	if cfg.DatabaseURL == "" {
		log.Println("Критическая ошибка: DATABASE_URL не установлен.")
	}
	if cfg.APISecretToken == "" {
		log.Println("Критическая ошибка: API_SECRET_TOKEN не установлен. API будет недоступен.")
	}
	if cfg.TelegramToken == "" {
		log.Println("Предупреждение: TELEGRAM_APITOKEN не установлен. Уведомления бухгалтерии не будут работать.")
	}
	if cfg.Port == "" {
		cfg.Port = "8080"
	}

	log.Println("Конфигурация загружена.")
	return cfg, nil
}
