package platform

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"Backoffice/internal/models"
)

// GetOrder возвращает канонический заказ по идентификатору.
func (c *Client) GetOrder(ctx context.Context, orderID int64) (models.OrderRecord, error) {
	var raw rawOrder
	path := fmt.Sprintf("/orders/%d", orderID)
	if err := c.do(ctx, http.MethodGet, path, nil, &raw, ""); err != nil {
		return models.OrderRecord{}, err
	}
	order := normalizeOrder(raw)
	if order.OrderID == 0 {
		order.OrderID = orderID
	}
	return order, nil
}

// UpdateOrder отправляет полный набор отредактированных полей заказа.
// Возвращает заказ в том виде, как его сохранила платформа (с новой
// меткой last_modified).
func (c *Client) UpdateOrder(ctx context.Context, orderID int64, update models.OrderUpdate) (models.OrderRecord, error) {
	var raw rawOrder
	path := fmt.Sprintf("/orders/%d", orderID)
	if err := c.do(ctx, http.MethodPut, path, update, &raw, ""); err != nil {
		return models.OrderRecord{}, err
	}
	order := normalizeOrder(raw)
	if order.OrderID == 0 {
		order.OrderID = orderID
	}
	log.Printf("UpdateOrder: заказ #%d обновлен, новая метка времени: %s", orderID, order.LastModified)
	return order, nil
}

// ReorderOrder создает повтор заказа на платформе.
func (c *Client) ReorderOrder(ctx context.Context, orderID int64) (models.OrderRecord, error) {
	var raw rawOrder
	path := fmt.Sprintf("/orders/%d/reorder", orderID)
	if err := c.do(ctx, http.MethodPost, path, nil, &raw, ""); err != nil {
		return models.OrderRecord{}, err
	}
	return normalizeOrder(raw), nil
}

// ReturnOrder оформляет возврат по заказу.
func (c *Client) ReturnOrder(ctx context.Context, orderID int64) (models.OrderRecord, error) {
	var raw rawOrder
	path := fmt.Sprintf("/orders/%d/return", orderID)
	if err := c.do(ctx, http.MethodPost, path, nil, &raw, ""); err != nil {
		return models.OrderRecord{}, err
	}
	return normalizeOrder(raw), nil
}

// DeleteOrder удаляет заказ на платформе.
func (c *Client) DeleteOrder(ctx context.Context, orderID int64) error {
	path := fmt.Sprintf("/orders/%d", orderID)
	if err := c.do(ctx, http.MethodDelete, path, nil, nil, ""); err != nil {
		return err
	}
	log.Printf("DeleteOrder: заказ #%d удален на платформе.", orderID)
	return nil
}

// conflictCheckResponse — ответ платформы на сверку меток времени.
type conflictCheckResponse struct {
	LastModified string `json:"last_modified"`
	UpdatedAt    string `json:"updated_at"`
}

// CheckConflict сравнивает локально удерживаемую метку last_modified
// с текущей удаленной. Любое расхождение считается конфликтом.
func (c *Client) CheckConflict(ctx context.Context, orderID int64, localTimestamp string) (models.ConflictCheckResult, error) {
	var resp conflictCheckResponse
	path := fmt.Sprintf("/orders/%d/last-modified", orderID)
	if err := c.do(ctx, http.MethodGet, path, nil, &resp, ""); err != nil {
		return models.ConflictCheckResult{}, err
	}
	remote := firstNonEmpty(resp.LastModified, resp.UpdatedAt)
	return models.ConflictCheckResult{
		HasConflict:     remote != localTimestamp,
		LocalTimestamp:  localTimestamp,
		RemoteTimestamp: remote,
	}, nil
}
