package ordersync

import (
	"context"
	"fmt"
	"log"

	"Backoffice/internal/constants"
	"Backoffice/internal/models"
)

// OrderAPI расширяет OrderSource операциями над жизненным циклом заказа.
type OrderAPI interface {
	OrderSource
	ReorderOrder(ctx context.Context, orderID int64) (models.OrderRecord, error)
	ReturnOrder(ctx context.Context, orderID int64) (models.OrderRecord, error)
	DeleteOrder(ctx context.Context, orderID int64) error
}

// CanEditFinancials — шлюз редактируемости: финансовые поля доступны только
// для нетерминального заказа и только роли accountant или выше. Оба условия
// проверяются на каждом вызове, результат нигде не кэшируется.
func CanEditFinancials(order models.OrderRecord, role string) error {
	if order.IsTerminal() {
		return &models.BusinessRuleError{
			Message: fmt.Sprintf("заказ #%d в терминальном статусе '%s', финансовые правки запрещены", order.OrderID, order.Status),
		}
	}
	if !constants.IsRoleOrHigher(role, constants.ROLE_ACCOUNTANT) {
		return &models.BusinessRuleError{
			Message: fmt.Sprintf("роль '%s' не дает права на финансовые правки", role),
		}
	}
	return nil
}

// Editor выполняет действия над заказом вне сессии редактирования.
type Editor struct {
	api OrderAPI
}

// NewEditor создает редактор поверх API заказов платформы.
func NewEditor(api OrderAPI) *Editor {
	return &Editor{api: api}
}

// Reorder создает повтор заказа.
func (e *Editor) Reorder(ctx context.Context, orderID int64) (models.OrderRecord, error) {
	return e.api.ReorderOrder(ctx, orderID)
}

// Return оформляет возврат по заказу.
func (e *Editor) Return(ctx context.Context, orderID int64) (models.OrderRecord, error) {
	return e.api.ReturnOrder(ctx, orderID)
}

// Delete удаляет заказ. Терминальный заказ удалить нельзя — правило
// проверяется по свежепрочитанному состоянию, а не по данным вызывающего.
func (e *Editor) Delete(ctx context.Context, orderID int64) error {
	order, err := e.api.GetOrder(ctx, orderID)
	if err != nil {
		return err
	}
	if order.IsTerminal() {
		return &models.BusinessRuleError{
			Message: fmt.Sprintf("заказ #%d в терминальном статусе '%s' и не может быть удален", orderID, order.Status),
		}
	}
	if err := e.api.DeleteOrder(ctx, orderID); err != nil {
		return err
	}
	log.Printf("Editor.Delete: заказ #%d удален.", orderID)
	return nil
}
