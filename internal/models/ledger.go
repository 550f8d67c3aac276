package models

import "time"

// DailyLedgerEntry — запись сверки за один календарный день по одному водителю.
// Инвариант: для любого диапазона [from, to] агрегатор возвращает ровно одну
// запись на каждый день, нулевую — если удаленный источник ничего не вернул.
type DailyLedgerEntry struct {
	Date        string  `json:"date"` // YYYY-MM-DD
	CODReceived float64 `json:"cod_received"`
	OrderCount  int     `json:"order_count"`
	AmountPaid  float64 `json:"amount_paid"`
	Status      string  `json:"status"` // pending | completed
}

// PaymentOverride — локальная (сессионная) правка по дню: сумма внесенной
// оплаты и статус. Существует только до смены выборки (водитель + диапазон),
// не сохраняется, пока не отправлена через Settlement Recorder.
type PaymentOverride struct {
	Date       string  `json:"date"`
	AmountPaid float64 `json:"amount_paid"`
	Status     string  `json:"status"`
}

// TaskPaymentEntry — одна задача доставки в рамках дня сверки.
// BalancePaid редактируется пользователем и ограничен [0, CODAmount].
type TaskPaymentEntry struct {
	JobID        int64   `json:"job_id"`
	FleetID      int64   `json:"fleet_id"`
	FleetName    string  `json:"fleet_name"`
	CustomerName string  `json:"customer_name"`
	CODAmount    float64 `json:"cod_amount"`
	BalancePaid  float64 `json:"balance_paid"`
	Status       string  `json:"status"`
}

// DailyTotalRow — строка первичного агрегатного источника платформы
// (уже сгруппированные по дню суммы COD).
type DailyTotalRow struct {
	Date        string  `json:"date"` // может приходить с хвостом времени, обрезается на границе
	CODReceived float64 `json:"cod_received"`
	OrderCount  int     `json:"order_count"`
}

// RawTaskRow — строка резервного источника: сырая задача платформы.
type RawTaskRow struct {
	JobID            int64   `json:"job_id"`
	CreationDatetime string  `json:"creation_datetime"`
	PickupAddress    string  `json:"pickup_address"`
	DeliveryAddress  string  `json:"delivery_address"`
	CODAmount        float64 `json:"cod_amount"`
	CustomerName     string  `json:"customer_name"`
}

// SettlementRecord — запись локального журнала расчетов.
// IdempotencyKey уникален и защищает от двойной отправки одного расчета.
type SettlementRecord struct {
	ID             int64      `json:"id"`
	FleetID        int64      `json:"fleet_id"`
	ReportDate     string     `json:"report_date"`
	AmountPaid     float64    `json:"amount_paid"`
	ReferenceTotal float64    `json:"reference_total"`
	DayStatus      string     `json:"day_status"`
	IdempotencyKey string     `json:"idempotency_key"`
	Status         string     `json:"status"` // recorded | confirmed | failed
	RecordedAt     time.Time  `json:"recorded_at"`
	ConfirmedAt    *time.Time `json:"confirmed_at,omitempty"`
}
