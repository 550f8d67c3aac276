// Файл: internal/db/settlement_ops.go
package db

import (
	"database/sql"
	"fmt"
	"log"

	"Backoffice/internal/constants"
	"Backoffice/internal/models"
)

// JournalStore реализует журнал расчетов поверх глобального соединения DB.
type JournalStore struct{}

func NewJournalStore() *JournalStore {
	return &JournalStore{}
}

func (s *JournalStore) InsertSettlement(record models.SettlementRecord) (int64, error) {
	return InsertSettlement(record)
}

func (s *JournalStore) ConfirmSettlement(id int64) error {
	return ConfirmSettlement(id)
}

func (s *JournalStore) MarkSettlementFailed(id int64) error {
	return MarkSettlementFailed(id)
}

func (s *JournalStore) HasConfirmedSettlement(fleetID int64, reportDate string, amountPaid float64) (bool, error) {
	return HasConfirmedSettlement(fleetID, reportDate, amountPaid)
}

// InsertSettlement добавляет запись расчета в журнал и возвращает её ID.
func InsertSettlement(record models.SettlementRecord) (int64, error) {
	var id int64
	err := DB.QueryRow(`
        INSERT INTO settlement_journal (fleet_id, report_date, amount_paid, reference_total, day_status, idempotency_key, status)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        RETURNING id`,
		record.FleetID, record.ReportDate, record.AmountPaid, record.ReferenceTotal,
		record.DayStatus, record.IdempotencyKey, record.Status,
	).Scan(&id)
	if err != nil {
		log.Printf("InsertSettlement: ошибка вставки записи журнала для fleet %d за %s: %v", record.FleetID, record.ReportDate, err)
		return 0, fmt.Errorf("ошибка записи в журнал расчетов: %w", err)
	}
	return id, nil
}

// ConfirmSettlement помечает запись журнала как подтвержденную платформой.
func ConfirmSettlement(id int64) error {
	res, err := DB.Exec(`
        UPDATE settlement_journal
        SET status = $1, confirmed_at = NOW()
        WHERE id = $2 AND status = $3`,
		constants.JOURNAL_STATUS_CONFIRMED, id, constants.JOURNAL_STATUS_RECORDED)
	if err != nil {
		log.Printf("ConfirmSettlement: ошибка обновления записи журнала #%d: %v", id, err)
		return fmt.Errorf("ошибка подтверждения записи журнала: %w", err)
	}
	rows, _ := res.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("запись журнала #%d не найдена или уже не в статусе '%s'", id, constants.JOURNAL_STATUS_RECORDED)
	}
	return nil
}

// MarkSettlementFailed помечает запись журнала как неуспешную.
func MarkSettlementFailed(id int64) error {
	_, err := DB.Exec(`
        UPDATE settlement_journal
        SET status = $1
        WHERE id = $2`,
		constants.JOURNAL_STATUS_FAILED, id)
	if err != nil {
		log.Printf("MarkSettlementFailed: ошибка обновления записи журнала #%d: %v", id, err)
		return fmt.Errorf("ошибка пометки записи журнала: %w", err)
	}
	return nil
}

// HasConfirmedSettlement проверяет, есть ли уже подтвержденный расчет
// с теми же парком, датой и суммой.
func HasConfirmedSettlement(fleetID int64, reportDate string, amountPaid float64) (bool, error) {
	var id int64
	err := DB.QueryRow(`
        SELECT id FROM settlement_journal
        WHERE fleet_id = $1 AND report_date = $2 AND amount_paid = $3 AND status = $4
        LIMIT 1`,
		fleetID, reportDate, amountPaid, constants.JOURNAL_STATUS_CONFIRMED).Scan(&id)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		log.Printf("HasConfirmedSettlement: ошибка запроса журнала для fleet %d за %s: %v", fleetID, reportDate, err)
		return false, fmt.Errorf("ошибка проверки журнала расчетов: %w", err)
	}
	return true, nil
}

// GetSettlement возвращает запись журнала по ID.
func GetSettlement(id int64) (models.SettlementRecord, error) {
	var rec models.SettlementRecord
	var confirmedAt sql.NullTime
	err := DB.QueryRow(`
        SELECT id, fleet_id, report_date::text, amount_paid, reference_total, day_status, idempotency_key, status, recorded_at, confirmed_at
        FROM settlement_journal
        WHERE id = $1`, id).Scan(
		&rec.ID, &rec.FleetID, &rec.ReportDate, &rec.AmountPaid, &rec.ReferenceTotal,
		&rec.DayStatus, &rec.IdempotencyKey, &rec.Status, &rec.RecordedAt, &confirmedAt)
	if err == sql.ErrNoRows {
		return rec, fmt.Errorf("запись журнала #%d не найдена", id)
	}
	if err != nil {
		log.Printf("GetSettlement: ошибка запроса записи журнала #%d: %v", id, err)
		return rec, fmt.Errorf("ошибка чтения записи журнала: %w", err)
	}
	if confirmedAt.Valid {
		t := confirmedAt.Time
		rec.ConfirmedAt = &t
	}
	return rec, nil
}

// ListSettlements возвращает записи журнала расчетов парка, новые первыми.
func ListSettlements(fleetID int64, limit int) ([]models.SettlementRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := DB.Query(`
        SELECT id, fleet_id, report_date::text, amount_paid, reference_total, day_status, idempotency_key, status, recorded_at, confirmed_at
        FROM settlement_journal
        WHERE fleet_id = $1
        ORDER BY recorded_at DESC
        LIMIT $2`, fleetID, limit)
	if err != nil {
		log.Printf("ListSettlements: ошибка запроса журнала для fleet %d: %v", fleetID, err)
		return nil, fmt.Errorf("ошибка чтения журнала расчетов: %w", err)
	}
	defer rows.Close()

	var records []models.SettlementRecord
	for rows.Next() {
		var rec models.SettlementRecord
		var confirmedAt sql.NullTime
		if err := rows.Scan(&rec.ID, &rec.FleetID, &rec.ReportDate, &rec.AmountPaid, &rec.ReferenceTotal,
			&rec.DayStatus, &rec.IdempotencyKey, &rec.Status, &rec.RecordedAt, &confirmedAt); err != nil {
			log.Printf("ListSettlements: ошибка сканирования строки журнала: %v", err)
			return nil, fmt.Errorf("ошибка чтения строки журнала: %w", err)
		}
		if confirmedAt.Valid {
			t := confirmedAt.Time
			rec.ConfirmedAt = &t
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
