package platform

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"Backoffice/internal/constants"
	"Backoffice/internal/models"
)

// ListFleets возвращает справочник водителей (fleet) платформы.
func (c *Client) ListFleets(ctx context.Context) ([]models.Fleet, error) {
	var raw []rawFleet
	if err := c.do(ctx, http.MethodGet, "/fleets", nil, &raw, ""); err != nil {
		return nil, err
	}
	fleets := make([]models.Fleet, 0, len(raw))
	for _, r := range raw {
		fleets = append(fleets, normalizeFleet(r))
	}
	return fleets, nil
}

// DailyTotals — первичный источник книги сверки: суммы COD, уже
// сгруппированные платформой по дням, для одного водителя и диапазона дат.
func (c *Client) DailyTotals(ctx context.Context, fleetID int64, dateFrom, dateTo string) ([]models.DailyTotalRow, error) {
	path := fmt.Sprintf("/fleets/%d/cod-daily?from=%s&to=%s", fleetID, dateFrom, dateTo)
	var raw []rawDailyTotal
	if err := c.do(ctx, http.MethodGet, path, nil, &raw, ""); err != nil {
		return nil, err
	}
	rows := make([]models.DailyTotalRow, 0, len(raw))
	for _, r := range raw {
		rows = append(rows, normalizeDailyTotal(r))
	}
	return rows, nil
}

// RawTasks — резервный источник: сырые задачи водителя за диапазон.
// Верхняя граница расширяется до конца дня, чтобы не потерять задачи,
// созданные после полуночи последнего дня диапазона.
func (c *Client) RawTasks(ctx context.Context, fleetID int64, dateFrom, dateTo string) ([]models.RawTaskRow, error) {
	endOfDay := dateTo + " 23:59:59"
	path := fmt.Sprintf("/fleets/%d/tasks?from=%s&to=%s", fleetID, dateFrom, endOfDay)
	var raw []rawTask
	if err := c.do(ctx, http.MethodGet, path, nil, &raw, ""); err != nil {
		return nil, err
	}
	rows := make([]models.RawTaskRow, 0, len(raw))
	for _, r := range raw {
		rows = append(rows, normalizeRawTask(r))
	}
	return rows, nil
}

// agentPaymentRequest — тело записи платежа водителя.
type agentPaymentRequest struct {
	FleetID           int64   `json:"fleet_id"`
	AmountPaid        float64 `json:"amount_paid"`
	ReferenceCODTotal float64 `json:"reference_cod_total"`
	RecordedAt        string  `json:"recorded_at"`
}

// RecordAgentPayment записывает внесение наличных водителем.
// Ровно одна удаленная запись на вызов; idempotencyKey передается платформе,
// чтобы повтор после сетевого сбоя не породил второй платеж.
func (c *Client) RecordAgentPayment(ctx context.Context, fleetID int64, amountPaid, referenceCODTotal float64, idempotencyKey string) error {
	body := agentPaymentRequest{
		FleetID:           fleetID,
		AmountPaid:        amountPaid,
		ReferenceCODTotal: referenceCODTotal,
		RecordedAt:        time.Now().UTC().Format(time.RFC3339),
	}
	if err := c.do(ctx, http.MethodPost, "/payments/agent", body, nil, idempotencyKey); err != nil {
		return err
	}
	log.Printf("RecordAgentPayment: платеж на сумму %.2f для fleet %d записан (ключ %s).", amountPaid, fleetID, idempotencyKey)
	return nil
}

// fleetWalletRequest — тело операции по кошельку водителя.
type fleetWalletRequest struct {
	FleetID     int64   `json:"fleet_id"`
	Amount      float64 `json:"amount"`
	Description string  `json:"description"`
	Direction   string  `json:"direction"`
}

// TransactFleetWallet выполняет пополнение или списание по кошельку водителя.
// Списание без описания отклоняется до удаленного вызова.
func (c *Client) TransactFleetWallet(ctx context.Context, fleetID int64, amount float64, description, direction string) error {
	if amount <= 0 {
		return &models.ValidationError{Field: "amount", Message: "сумма операции должна быть больше нуля"}
	}
	if direction != constants.WALLET_DIRECTION_CREDIT && direction != constants.WALLET_DIRECTION_DEBIT {
		return &models.ValidationError{Field: "direction", Message: fmt.Sprintf("неизвестное направление операции '%s'", direction)}
	}
	if direction == constants.WALLET_DIRECTION_DEBIT && description == "" {
		return &models.ValidationError{Field: "description", Message: "для списания с кошелька водителя обязательно описание"}
	}
	body := fleetWalletRequest{FleetID: fleetID, Amount: amount, Description: description, Direction: direction}
	if err := c.do(ctx, http.MethodPost, "/wallets/fleet", body, nil, ""); err != nil {
		return err
	}
	log.Printf("TransactFleetWallet: операция %s на %.2f по кошельку fleet %d выполнена.", direction, amount, fleetID)
	return nil
}
