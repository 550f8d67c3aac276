// Файл: internal/export/receipt.go
package export

import (
	"fmt"
	"log"

	"github.com/skip2/go-qrcode"

	"Backoffice/internal/models"
)

// SettlementReceiptQR генерирует QR-код квитанции расчета для сверки на месте.
// Содержимое QR — ключ идемпотентности и реквизиты записи журнала.
func SettlementReceiptQR(record models.SettlementRecord) ([]byte, error) {
	if record.IdempotencyKey == "" {
		return nil, fmt.Errorf("у записи расчета отсутствует ключ идемпотентности")
	}

	payload := fmt.Sprintf("settlement:%s|fleet:%d|date:%s|paid:%.2f",
		record.IdempotencyKey, record.FleetID, record.ReportDate, record.AmountPaid)

	// qrcode.Medium - уровень коррекции ошибок, 256 - размер QR-кода в пикселях.
	qrBytes, err := qrcode.Encode(payload, qrcode.Medium, 256)
	if err != nil {
		log.Printf("SettlementReceiptQR: ошибка кодирования QR-кода для расчета '%s': %v", record.IdempotencyKey, err)
		return nil, err
	}
	return qrBytes, nil
}
