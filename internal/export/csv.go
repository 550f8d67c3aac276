// Файл: internal/export/csv.go
package export

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"Backoffice/internal/models"
)

// LedgerCSV формирует CSV-выгрузку сводки наличных по дням.
// Итоговая строка добавляется последней.
func LedgerCSV(entries []models.DailyLedgerEntry) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := []string{"Дата", "Получено наличными", "Заказов", "Оплачено", "Статус"}
	if err := w.Write(header); err != nil {
		return nil, fmt.Errorf("ошибка записи заголовка CSV: %w", err)
	}

	var totalCOD, totalPaid float64
	var totalOrders int
	for _, entry := range entries {
		row := []string{
			entry.Date,
			fmt.Sprintf("%.2f", entry.CODReceived),
			fmt.Sprintf("%d", entry.OrderCount),
			fmt.Sprintf("%.2f", entry.AmountPaid),
			entry.Status,
		}
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("ошибка записи строки CSV за %s: %w", entry.Date, err)
		}
		totalCOD += entry.CODReceived
		totalOrders += entry.OrderCount
		totalPaid += entry.AmountPaid
	}

	totalRow := []string{
		"Итого",
		fmt.Sprintf("%.2f", totalCOD),
		fmt.Sprintf("%d", totalOrders),
		fmt.Sprintf("%.2f", totalPaid),
		"",
	}
	if err := w.Write(totalRow); err != nil {
		return nil, fmt.Errorf("ошибка записи итоговой строки CSV: %w", err)
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("ошибка формирования CSV: %w", err)
	}
	return buf.Bytes(), nil
}

// TasksCSV формирует CSV-выгрузку задач с наличной оплатой за день.
func TasksCSV(entries []models.TaskPaymentEntry) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := []string{"ID задачи", "Водитель", "Клиент", "Наличными", "Оплачено", "Статус"}
	if err := w.Write(header); err != nil {
		return nil, fmt.Errorf("ошибка записи заголовка CSV: %w", err)
	}

	for _, entry := range entries {
		row := []string{
			fmt.Sprintf("%d", entry.JobID),
			entry.FleetName,
			entry.CustomerName,
			fmt.Sprintf("%.2f", entry.CODAmount),
			fmt.Sprintf("%.2f", entry.BalancePaid),
			entry.Status,
		}
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("ошибка записи строки CSV для задачи %d: %w", entry.JobID, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("ошибка формирования CSV: %w", err)
	}
	return buf.Bytes(), nil
}
