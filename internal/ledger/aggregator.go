package ledger

import (
	"context"
	"log"
	"sort"
	"strings"
	"time"

	"Backoffice/internal/constants"
	"Backoffice/internal/models"
)

// LedgerSource — удаленные чтения, нужные агрегатору. Реализуется клиентом
// платформы; в тестах подменяется фейком со счетчиками вызовов.
type LedgerSource interface {
	// DailyTotals — первичный источник: суммы COD, сгруппированные по дням.
	DailyTotals(ctx context.Context, fleetID int64, dateFrom, dateTo string) ([]models.DailyTotalRow, error)
	// RawTasks — резервный источник: сырые задачи за диапазон
	// (верхняя граница расширена до конца дня).
	RawTasks(ctx context.Context, fleetID int64, dateFrom, dateTo string) ([]models.RawTaskRow, error)
}

// Aggregator строит книгу сверки: по водителю и диапазону дат — ровно одна
// запись на каждый календарный день, по возрастанию даты.
type Aggregator struct {
	source LedgerSource
}

// NewAggregator создает агрегатор поверх источника данных платформы.
func NewAggregator(source LedgerSource) *Aggregator {
	return &Aggregator{source: source}
}

// Aggregate возвращает последовательность DailyLedgerEntry для диапазона
// [dateFrom, dateTo] включительно.
//
// Порядок строго последовательный: сперва нулевой скелет на каждый день,
// затем первичный источник; резервный источник опрашивается только если
// первичный вернул пусто или ошибку. Отказ обоих источников не является
// ошибкой для вызывающего — возвращается нулевой скелет.
func (a *Aggregator) Aggregate(ctx context.Context, fleetID int64, dateFrom, dateTo string) ([]models.DailyLedgerEntry, error) {
	from, err := time.Parse(constants.DATE_LAYOUT, dateFrom)
	if err != nil {
		return nil, &models.ValidationError{Field: "date_from", Message: "дата должна быть в формате ГГГГ-ММ-ДД"}
	}
	to, err := time.Parse(constants.DATE_LAYOUT, dateTo)
	if err != nil {
		return nil, &models.ValidationError{Field: "date_to", Message: "дата должна быть в формате ГГГГ-ММ-ДД"}
	}
	if to.Before(from) {
		return nil, &models.ValidationError{Field: "date_to", Message: "конец диапазона раньше его начала"}
	}

	// Нулевой скелет: каждый календарный день диапазона присутствует ровно
	// один раз. Шаг — календарные сутки (AddDate), а не 24 часа: при переходе
	// на летнее время фиксированный инкремент пропускал бы или дублировал день.
	entries := make(map[string]*models.DailyLedgerEntry)
	for day := from; !day.After(to); day = day.AddDate(0, 0, 1) {
		key := day.Format(constants.DATE_LAYOUT)
		entries[key] = &models.DailyLedgerEntry{
			Date:   key,
			Status: constants.PAYMENT_STATUS_PENDING,
		}
	}

	primaryRows, errPrimary := a.source.DailyTotals(ctx, fleetID, dateFrom, dateTo)
	if errPrimary != nil {
		log.Printf("Aggregate: первичный источник недоступен для fleet %d (%s..%s): %v. Переход на резервный.", fleetID, dateFrom, dateTo, errPrimary)
	}

	if errPrimary == nil && len(primaryRows) > 0 {
		// Первичный источник авторитетен: его строки перезаписывают скелет.
		for _, row := range primaryRows {
			date := stripTimeSuffix(row.Date)
			entry, ok := entries[date]
			if !ok {
				log.Printf("Aggregate: первичный источник вернул дату %s вне диапазона %s..%s, строка пропущена.", date, dateFrom, dateTo)
				continue
			}
			entry.CODReceived = row.CODReceived
			entry.OrderCount = row.OrderCount
		}
		return sortedEntries(entries), nil
	}

	// Резервный путь: сырые задачи, отфильтрованные и просуммированные по дням.
	rawRows, errFallback := a.source.RawTasks(ctx, fleetID, dateFrom, dateTo)
	if errFallback != nil {
		log.Printf("Aggregate: резервный источник тоже недоступен для fleet %d (%s..%s): %v. Возвращен нулевой скелет.", fleetID, dateFrom, dateTo, errFallback)
		return sortedEntries(entries), nil
	}

	for _, task := range rawRows {
		if !UsableTask(task) {
			continue
		}
		date := stripTimeSuffix(task.CreationDatetime)
		entry, ok := entries[date]
		if !ok {
			continue
		}
		entry.CODReceived += task.CODAmount
		entry.OrderCount++
	}
	return sortedEntries(entries), nil
}

// UsableTask отсеивает задачи, не участвующие в сверке: без метки создания,
// с совпадающими адресами забора и доставки (тестовые) и без положительного COD.
func UsableTask(task models.RawTaskRow) bool {
	if strings.TrimSpace(task.CreationDatetime) == "" {
		return false
	}
	pickup := strings.TrimSpace(task.PickupAddress)
	delivery := strings.TrimSpace(task.DeliveryAddress)
	if pickup == delivery {
		return false
	}
	return task.CODAmount > 0
}

// stripTimeSuffix обрезает у даты хвост времени ("2024-01-02 13:05" -> "2024-01-02").
func stripTimeSuffix(date string) string {
	date = strings.TrimSpace(date)
	if idx := strings.IndexAny(date, " T"); idx > 0 {
		return date[:idx]
	}
	return date
}

func sortedEntries(entries map[string]*models.DailyLedgerEntry) []models.DailyLedgerEntry {
	result := make([]models.DailyLedgerEntry, 0, len(entries))
	for _, entry := range entries {
		result = append(result, *entry)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Date < result[j].Date })
	return result
}
