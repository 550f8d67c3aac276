package ledger

import (
	"fmt"

	"Backoffice/internal/constants"
	"Backoffice/internal/models"
)

// BuildTaskEntries превращает сырые задачи одного дня в редактируемые строки
// оплаты. Фильтр тот же, что у резервного пути агрегатора; платежный статус
// по умолчанию pending, оплаченный остаток — ноль.
func BuildTaskEntries(fleetID int64, fleetName string, tasks []models.RawTaskRow) []models.TaskPaymentEntry {
	entries := make([]models.TaskPaymentEntry, 0, len(tasks))
	for _, task := range tasks {
		if !UsableTask(task) {
			continue
		}
		entries = append(entries, models.TaskPaymentEntry{
			JobID:        task.JobID,
			FleetID:      fleetID,
			FleetName:    fleetName,
			CustomerName: task.CustomerName,
			CODAmount:    task.CODAmount,
			Status:       constants.PAYMENT_STATUS_PENDING,
		})
	}
	return entries
}

// EditBalance применяет правку оплаченного остатка к строке задачи.
// Инвариант: 0 <= BalancePaid <= CODAmount, значения вне границ отклоняются.
func EditBalance(entry *models.TaskPaymentEntry, amount float64) error {
	if amount < 0 {
		return &models.ValidationError{Field: "balance_paid", Message: "оплаченный остаток не может быть отрицательным"}
	}
	if amount > entry.CODAmount {
		return &models.ValidationError{
			Field:   "balance_paid",
			Message: fmt.Sprintf("оплаченный остаток %.2f превышает сумму COD %.2f по задаче #%d", amount, entry.CODAmount, entry.JobID),
		}
	}
	entry.BalancePaid = amount
	return nil
}

// TotalPaid — сумма оплаченных остатков по списку задач дня.
func TotalPaid(entries []models.TaskPaymentEntry) float64 {
	var total float64
	for _, e := range entries {
		total += e.BalancePaid
	}
	return total
}

// DayStatus выводит статус дня из статусов задач: completed тогда и только
// тогда, когда завершена каждая задача. Пустой день остается pending.
func DayStatus(entries []models.TaskPaymentEntry) string {
	if len(entries) == 0 {
		return constants.PAYMENT_STATUS_PENDING
	}
	for _, e := range entries {
		if e.Status != constants.PAYMENT_STATUS_COMPLETED {
			return constants.PAYMENT_STATUS_PENDING
		}
	}
	return constants.PAYMENT_STATUS_COMPLETED
}
