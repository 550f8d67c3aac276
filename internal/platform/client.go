package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"time"

	"Backoffice/internal/models"
)

// Адрес API платформы доставки по умолчанию.
const defaultBaseURL = "https://api.delivery-platform.example/v2"

// Client — HTTP-клиент внешней платформы доставки. Все удаленные чтения и
// записи сервиса проходят через него. Каждый запрос ограничен таймаутом;
// таймауты и ответы 5xx превращаются в повторяемую (retryable) RemoteError.
type Client struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

// NewClient создает клиента платформы.
// Пустой baseURL заменяется адресом по умолчанию.
func NewClient(apiKey, baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		apiKey:  apiKey,
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

// envelope — стандартный конверт ответа платформы.
type envelope struct {
	Status  int             `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// do выполняет один запрос к платформе и декодирует поле data конверта в out.
// idempotencyKey, если не пуст, передается заголовком Idempotence-Key —
// платформа обязана схлопывать повторные записи с тем же ключом.
func (c *Client) do(ctx context.Context, method, path string, body interface{}, out interface{}, idempotencyKey string) error {
	var payload io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			log.Printf("platform.do: ошибка маршалинга запроса %s %s: %v", method, path, err)
			return fmt.Errorf("ошибка подготовки запроса: %w", err)
		}
		payload = bytes.NewBuffer(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, payload)
	if err != nil {
		log.Printf("platform.do: ошибка создания HTTP-запроса %s %s: %v", method, path, err)
		return fmt.Errorf("ошибка создания HTTP-запроса: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Api-Key", c.apiKey)
	if idempotencyKey != "" {
		req.Header.Set("Idempotence-Key", idempotencyKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		retryable := isTimeout(err)
		log.Printf("platform.do: ошибка выполнения запроса %s %s: %v (retryable: %v)", method, path, err, retryable)
		return &models.RemoteError{Op: method + " " + path, Err: err, Retryable: retryable}
	}
	defer resp.Body.Close()

	responseBody, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Printf("platform.do: ошибка чтения ответа %s %s: %v", method, path, err)
		return &models.RemoteError{Op: method + " " + path, Err: err, Retryable: false}
	}

	if resp.StatusCode >= 500 {
		log.Printf("platform.do: платформа вернула %d на %s %s, тело: %s", resp.StatusCode, method, path, string(responseBody))
		return &models.RemoteError{
			Op:        method + " " + path,
			Err:       fmt.Errorf("статус %d", resp.StatusCode),
			Retryable: true,
		}
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		log.Printf("platform.do: платформа вернула %d на %s %s, тело: %s", resp.StatusCode, method, path, string(responseBody))
		return &models.RemoteError{
			Op:        method + " " + path,
			Err:       fmt.Errorf("статус %d: %s", resp.StatusCode, string(responseBody)),
			Retryable: false,
		}
	}

	var env envelope
	if err := json.Unmarshal(responseBody, &env); err != nil {
		log.Printf("platform.do: ошибка демаршалинга конверта ответа %s %s: %v", method, path, err)
		return &models.RemoteError{Op: method + " " + path, Err: err, Retryable: false}
	}
	if env.Status != 200 {
		log.Printf("platform.do: платформа сообщила об ошибке на %s %s: %s (код %d)", method, path, env.Message, env.Status)
		return &models.RemoteError{
			Op:        method + " " + path,
			Err:       fmt.Errorf("код %d: %s", env.Status, env.Message),
			Retryable: false,
		}
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			log.Printf("platform.do: ошибка демаршалинга данных ответа %s %s: %v", method, path, err)
			return &models.RemoteError{Op: method + " " + path, Err: err, Retryable: false}
		}
	}
	return nil
}

// isTimeout распознает сетевые таймауты, включая отмену по дедлайну контекста.
func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return false
}
