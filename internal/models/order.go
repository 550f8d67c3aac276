package models

import (
	"Backoffice/internal/constants"
)

// OrderRecord — канонический заказ внешней платформы после нормализации.
type OrderRecord struct {
	OrderID         int64   `json:"order_id"`
	CustomerName    string  `json:"customer_name"`
	CustomerPhone   string  `json:"customer_phone"`
	PickupAddress   string  `json:"pickup_address"`
	DeliveryAddress string  `json:"delivery_address"`
	CODAmount       float64 `json:"cod_amount"`
	DeliveryFee     float64 `json:"delivery_fee"`
	FleetID         int64   `json:"fleet_id"`
	FleetName       string  `json:"fleet_name"`
	Notes           string  `json:"notes"`
	Status          string  `json:"status"`
	StatusCode      int     `json:"status_code"`
	LastModified    string  `json:"last_modified"`
}

// IsTerminal сообщает, находится ли заказ в терминальном статусе,
// после которого финансовые правки запрещены. Проверяются и строковый
// статус, и числовой код платформы.
func (o OrderRecord) IsTerminal() bool {
	if constants.TerminalOrderStatuses[o.Status] {
		return true
	}
	return constants.TerminalPlatformCodes[o.StatusCode]
}

// OrderUpdate — полный набор редактируемых полей, отправляемый при сохранении.
type OrderUpdate struct {
	CustomerName    string  `json:"customer_name"`
	CustomerPhone   string  `json:"customer_phone"`
	PickupAddress   string  `json:"pickup_address"`
	DeliveryAddress string  `json:"delivery_address"`
	CODAmount       float64 `json:"cod_amount"`
	DeliveryFee     float64 `json:"delivery_fee"`
	FleetID         int64   `json:"fleet_id"`
	Notes           string  `json:"notes"`
}

// ConflictCheckResult — результат сверки локальной метки времени с удаленной.
type ConflictCheckResult struct {
	HasConflict     bool   `json:"has_conflict"`
	LocalTimestamp  string `json:"local_timestamp"`
	RemoteTimestamp string `json:"remote_timestamp"`
}
