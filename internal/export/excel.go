// Файл: internal/export/excel.go
package export

import (
	"bytes"
	"fmt"
	"log"

	"github.com/xuri/excelize/v2"

	"Backoffice/internal/models"
)

// LedgerExcel формирует Excel-отчет сводки наличных по дням для одного парка.
// Возвращает содержимое xlsx-файла.
func LedgerExcel(fleetName string, dateFrom, dateTo string, entries []models.DailyLedgerEntry) ([]byte, error) {
	f := excelize.NewFile()
	sheetName := "Сводка наличных"
	index, _ := f.NewSheet(sheetName) // Игнорируем ошибку, если лист уже существует (NewFile создает Sheet1)
	f.DeleteSheet("Sheet1")           // Удаляем стандартный лист
	f.SetActiveSheet(index)

	f.SetCellValue(sheetName, "A1", fmt.Sprintf("Водитель: %s", fleetName))
	f.SetCellValue(sheetName, "A2", fmt.Sprintf("Период: %s — %s", dateFrom, dateTo))

	headers := []string{"Дата", "Получено наличными", "Заказов", "Оплачено", "Статус"}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 4)
		f.SetCellValue(sheetName, cell, header)
	}

	var totalCOD, totalPaid float64
	var totalOrders int
	rowIndex := 5
	for _, entry := range entries {
		f.SetCellValue(sheetName, fmt.Sprintf("A%d", rowIndex), entry.Date)
		f.SetCellValue(sheetName, fmt.Sprintf("B%d", rowIndex), entry.CODReceived)
		f.SetCellValue(sheetName, fmt.Sprintf("C%d", rowIndex), entry.OrderCount)
		f.SetCellValue(sheetName, fmt.Sprintf("D%d", rowIndex), entry.AmountPaid)
		f.SetCellValue(sheetName, fmt.Sprintf("E%d", rowIndex), entry.Status)
		totalCOD += entry.CODReceived
		totalOrders += entry.OrderCount
		totalPaid += entry.AmountPaid
		rowIndex++
	}

	f.SetCellValue(sheetName, fmt.Sprintf("A%d", rowIndex), "Итого")
	f.SetCellValue(sheetName, fmt.Sprintf("B%d", rowIndex), totalCOD)
	f.SetCellValue(sheetName, fmt.Sprintf("C%d", rowIndex), totalOrders)
	f.SetCellValue(sheetName, fmt.Sprintf("D%d", rowIndex), totalPaid)

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		log.Printf("LedgerExcel: ошибка формирования Excel файла для '%s': %v", fleetName, err)
		return nil, fmt.Errorf("ошибка создания Excel файла: %w", err)
	}
	return buf.Bytes(), nil
}
