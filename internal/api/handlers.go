// Файл: internal/api/handlers.go
package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"Backoffice/internal/config"
	"Backoffice/internal/ledger"
	"Backoffice/internal/models"
	"Backoffice/internal/notify"
	"Backoffice/internal/ordersync"
	"Backoffice/internal/platform"
	"Backoffice/internal/session"
	"Backoffice/internal/settlement"
	"Backoffice/internal/withdrawals"
)

// ApiDependencies содержит зависимости для обработчиков API.
type ApiDependencies struct {
	Config     *config.Config
	Platform   *platform.Client
	Aggregator *ledger.Aggregator
	Sessions   *session.Manager
	Recorder   *settlement.Recorder
	Registry   *ordersync.Registry
	Editor     *ordersync.Editor
	Gate       *withdrawals.Gate
	Notifier   *notify.AccountingNotifier
}

// jsonResponse - вспомогательная структура для стандартного ответа API
type jsonResponse struct {
	Status  string      `json:"status"` // "success" или "error"
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// SettlementRequest - структура для запроса на запись расчета по дню.
type SettlementRequest struct {
	FleetID        int64   `json:"fleet_id"`
	ReportDate     string  `json:"report_date"`
	AmountPaid     float64 `json:"amount_paid"`
	ReferenceTotal float64 `json:"reference_total"`
}

// DaySettlementRequest - структура для запроса на закрытие дня списком задач.
type DaySettlementRequest struct {
	FleetID    int64                     `json:"fleet_id"`
	ReportDate string                    `json:"report_date"`
	Tasks      []models.TaskPaymentEntry `json:"tasks"`
}

// OverrideRequest - структура для локальной правки дня сверки.
type OverrideRequest struct {
	FleetID    int64   `json:"fleet_id"`
	DateFrom   string  `json:"date_from"`
	DateTo     string  `json:"date_to"`
	Date       string  `json:"date"`
	AmountPaid float64 `json:"amount_paid"`
	Status     string  `json:"status"`
}

// OrderActionRequest - структура для запросов на изменение заказа.
type OrderActionRequest struct {
	Action string `json:"action"` // reorder | return | delete
}

// WithdrawalDecisionRequest - структура для решения по запросу на вывод.
type WithdrawalDecisionRequest struct {
	Reason string `json:"reason,omitempty"`
}

// WalletRequest - структура для операции с кошельком.
type WalletRequest struct {
	Amount      float64 `json:"amount"`
	Description string  `json:"description,omitempty"`
	Direction   string  `json:"direction,omitempty"`
}

// SettingRequest - структура для сохранения настройки интерфейса.
type SettingRequest struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// decodeJSONBody разбирает тело запроса в out, отклоняя неизвестные поля.
func decodeJSONBody(r *http.Request, out interface{}) error {
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("некорректное тело запроса: %v", err)
	}
	return nil
}

// --- Вспомогательные функции для JSON-ответов ---
func writeJSONError(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(jsonResponse{Status: "error", Message: message})
}

func writeJSONSuccess(w http.ResponseWriter, message string, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(jsonResponse{Status: "success", Message: message, Data: data})
}

// writeDomainError переводит типизированные ошибки домена в HTTP-статусы.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case models.IsValidation(err):
		writeJSONError(w, http.StatusBadRequest, err.Error())
	case models.IsBusinessRule(err):
		writeJSONError(w, http.StatusUnprocessableEntity, err.Error())
	case models.IsConflict(err):
		writeJSONError(w, http.StatusConflict, err.Error())
	case models.IsRemote(err):
		writeJSONError(w, http.StatusBadGateway, err.Error())
	default:
		writeJSONError(w, http.StatusInternalServerError, err.Error())
	}
}
