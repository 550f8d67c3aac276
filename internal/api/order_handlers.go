// Файл: internal/api/order_handlers.go
package api

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"Backoffice/internal/constants"
	"Backoffice/internal/db"
	"Backoffice/internal/models"
	"Backoffice/internal/ordersync"
)

// orderStateResponse - снимок состояния открытого заказа для интерфейса.
type orderStateResponse struct {
	State    string                     `json:"state"`
	Order    models.OrderRecord         `json:"order"`
	Conflict models.ConflictCheckResult `json:"conflict,omitempty"`
}

func orderState(m *ordersync.Monitor) orderStateResponse {
	return orderStateResponse{
		State:    string(m.State()),
		Order:    m.Order(),
		Conflict: m.Conflict(),
	}
}

// OpenOrder загружает заказ и запускает фоновую проверку конфликтов.
// Повторное открытие того же заказа пересоздает наблюдателя.
func (deps *ApiDependencies) OpenOrder(w http.ResponseWriter, r *http.Request) {
	orderID, err := orderIDParam(r)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	monitor, err := deps.Registry.Open(r.Context(), orderID)
	if err != nil {
		log.Printf("OpenOrder: ошибка открытия заказа %d: %v", orderID, err)
		writeDomainError(w, err)
		return
	}
	writeJSONSuccess(w, fmt.Sprintf("Заказ #%d открыт.", orderID), orderState(monitor))
}

// GetOrderState возвращает текущее состояние открытого заказа.
func (deps *ApiDependencies) GetOrderState(w http.ResponseWriter, r *http.Request) {
	monitor, ok, err := deps.openedMonitor(r)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	if !ok {
		writeJSONError(w, http.StatusNotFound, "заказ не открыт")
		return
	}
	writeJSONSuccess(w, "Состояние заказа получено.", orderState(monitor))
}

// SaveOrder сохраняет правки заказа. Отклоняется при обнаруженном конфликте
// версий, для финализированного заказа и при недостаточной роли.
func (deps *ApiDependencies) SaveOrder(w http.ResponseWriter, r *http.Request) {
	monitor, ok, err := deps.openedMonitor(r)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	if !ok {
		writeJSONError(w, http.StatusNotFound, "заказ не открыт")
		return
	}

	var update models.OrderUpdate
	if err := decodeJSONBody(r, &update); err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := ordersync.CanEditFinancials(monitor.Order(), requestRole(r)); err != nil {
		writeDomainError(w, err)
		return
	}

	saved, err := monitor.Save(r.Context(), update)
	if err != nil {
		var conflictErr *models.ConflictError
		if errors.As(err, &conflictErr) {
			deps.Notifier.ConflictDetected(monitor.Order().OrderID,
				conflictErr.LocalTimestamp, conflictErr.RemoteTimestamp)
		}
		writeDomainError(w, err)
		return
	}

	if errAudit := db.AddAuditEntry(requestActor(r), constants.AUDIT_ACTION_ORDER_UPDATED,
		fmt.Sprintf("order:%d", saved.OrderID), ""); errAudit != nil {
		log.Printf("SaveOrder: ошибка записи аудита: %v", errAudit)
	}
	writeJSONSuccess(w, fmt.Sprintf("Заказ #%d сохранен.", saved.OrderID), saved)
}

// RefreshOrder перечитывает заказ с платформы и принимает её версию.
func (deps *ApiDependencies) RefreshOrder(w http.ResponseWriter, r *http.Request) {
	monitor, ok, err := deps.openedMonitor(r)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	if !ok {
		writeJSONError(w, http.StatusNotFound, "заказ не открыт")
		return
	}

	order, err := monitor.Refresh(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSONSuccess(w, "Версия платформы принята.", order)
}

// KeepLocalOrder сохраняет локальную версию заказа при конфликте.
// До явного сохранения платформа не изменяется.
func (deps *ApiDependencies) KeepLocalOrder(w http.ResponseWriter, r *http.Request) {
	monitor, ok, err := deps.openedMonitor(r)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	if !ok {
		writeJSONError(w, http.StatusNotFound, "заказ не открыт")
		return
	}

	monitor.KeepLocal()
	writeJSONSuccess(w, "Локальная версия сохранена, конфликт скрыт.", orderState(monitor))
}

// HandleOrderAction выполняет действие над заказом: повтор, возврат, удаление.
func (deps *ApiDependencies) HandleOrderAction(w http.ResponseWriter, r *http.Request) {
	orderID, err := orderIDParam(r)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req OrderActionRequest
	if err := decodeJSONBody(r, &req); err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	switch req.Action {
	case "reorder":
		order, err := deps.Editor.Reorder(r.Context(), orderID)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSONSuccess(w, fmt.Sprintf("Создан повтор заказа #%d.", orderID), order)
	case "return":
		order, err := deps.Editor.Return(r.Context(), orderID)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSONSuccess(w, fmt.Sprintf("Оформлен возврат заказа #%d.", orderID), order)
	case "delete":
		if err := deps.Editor.Delete(r.Context(), orderID); err != nil {
			writeDomainError(w, err)
			return
		}
		deps.Registry.Close(orderID)
		if errAudit := db.AddAuditEntry(requestActor(r), constants.AUDIT_ACTION_ORDER_DELETED,
			fmt.Sprintf("order:%d", orderID), ""); errAudit != nil {
			log.Printf("HandleOrderAction: ошибка записи аудита: %v", errAudit)
		}
		writeJSONSuccess(w, fmt.Sprintf("Заказ #%d удален.", orderID), nil)
	default:
		writeJSONError(w, http.StatusBadRequest, fmt.Sprintf("неизвестное действие: '%s'", req.Action))
	}
}

// CloseOrder останавливает наблюдение за заказом.
func (deps *ApiDependencies) CloseOrder(w http.ResponseWriter, r *http.Request) {
	orderID, err := orderIDParam(r)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	deps.Registry.Close(orderID)
	writeJSONSuccess(w, fmt.Sprintf("Наблюдение за заказом #%d остановлено.", orderID), nil)
}

func (deps *ApiDependencies) openedMonitor(r *http.Request) (*ordersync.Monitor, bool, error) {
	orderID, err := orderIDParam(r)
	if err != nil {
		return nil, false, err
	}
	monitor, ok := deps.Registry.Get(orderID)
	return monitor, ok, nil
}

func orderIDParam(r *http.Request) (int64, error) {
	orderID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || orderID <= 0 {
		return 0, fmt.Errorf("некорректный ID заказа")
	}
	return orderID, nil
}
