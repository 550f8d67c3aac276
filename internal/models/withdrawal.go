package models

// WithdrawalRequest — запрос на вывод средств от торговца или водителя.
// Решение по запросу одностороннее: из pending только в approved/rejected.
type WithdrawalRequest struct {
	ID              int64   `json:"id"`
	SubjectType     string  `json:"subject_type"` // merchant | driver
	SubjectID       int64   `json:"subject_id"`
	SubjectName     string  `json:"subject_name"`
	AmountRequested float64 `json:"amount_requested"`
	WalletBalance   float64 `json:"wallet_balance"`
	Date            string  `json:"date"`
	Status          string  `json:"status"` // pending | approved | rejected
	Reason          string  `json:"reason,omitempty"`
}
