// Файл: internal/db/audit_ops.go
package db

import (
	"database/sql"
	"fmt"
	"log"

	"Backoffice/internal/models"
)

// AddAuditEntry записывает действие оператора в журнал аудита.
// Ошибка записи аудита не должна прерывать основную операцию,
// поэтому вызывающий код обычно только логирует её.
func AddAuditEntry(actor, action, subject, details string) error {
	if DB == nil {
		return fmt.Errorf("журнал аудита недоступен: база данных не инициализирована")
	}
	var detailsParam interface{}
	if details != "" {
		detailsParam = details
	}
	_, err := DB.Exec(`
        INSERT INTO audit_log (actor, action, subject, details)
        VALUES ($1, $2, $3, $4)`,
		actor, action, subject, detailsParam)
	if err != nil {
		log.Printf("AddAuditEntry: ошибка записи аудита (%s / %s): %v", actor, action, err)
		return fmt.Errorf("ошибка записи в журнал аудита: %w", err)
	}
	return nil
}

// ListAuditEntries возвращает последние записи журнала аудита, новые первыми.
// actionFilter пустой — без фильтра по действию.
func ListAuditEntries(actionFilter string, limit int) ([]models.AuditEntry, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	query := `
        SELECT id, actor, action, COALESCE(subject, ''), COALESCE(details::text, ''), created_at::text
        FROM audit_log`
	args := []interface{}{}
	if actionFilter != "" {
		query += ` WHERE action = $1`
		args = append(args, actionFilter)
	}
	query += fmt.Sprintf(` ORDER BY created_at DESC LIMIT %d`, limit)

	rows, err := DB.Query(query, args...)
	if err != nil {
		log.Printf("ListAuditEntries: ошибка запроса журнала аудита: %v", err)
		return nil, fmt.Errorf("ошибка чтения журнала аудита: %w", err)
	}
	defer rows.Close()

	var entries []models.AuditEntry
	for rows.Next() {
		var entry models.AuditEntry
		if err := rows.Scan(&entry.ID, &entry.Actor, &entry.Action, &entry.Subject, &entry.Details, &entry.CreatedAt); err != nil {
			if err == sql.ErrNoRows {
				break
			}
			log.Printf("ListAuditEntries: ошибка сканирования строки аудита: %v", err)
			return nil, fmt.Errorf("ошибка чтения строки аудита: %w", err)
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}
