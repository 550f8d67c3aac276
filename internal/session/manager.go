package session

import (
	"fmt"
	"log"
	"sync"

	"Backoffice/internal/models"
)

// Manager хранит сессионное состояние сверки: локальные правки оплат
// (PaymentOverride) и настройки интерфейса. Правки помечены ключом выборки
// (водитель + диапазон дат), которая их породила, и инвалидируются целиком
// при смене выборки — а не полагаются на случайный порядок перерисовок.
type Manager struct {
	activeKeys      map[string]string // Ключ: актор, Значение: активный ключ выборки
	activeKeysMutex sync.RWMutex

	overrides      map[string]map[string]models.PaymentOverride // Ключ1: актор|ключ выборки, Ключ2: дата
	overridesMutex sync.RWMutex

	settings      map[string]string // Персистентные настройки интерфейса (активная вкладка и т.п.)
	settingsMutex sync.RWMutex
}

// NewManager создает и возвращает новый экземпляр Manager.
func NewManager() *Manager {
	return &Manager{
		activeKeys: make(map[string]string),
		overrides:  make(map[string]map[string]models.PaymentOverride),
		settings:   make(map[string]string),
	}
}

// QueryKey строит ключ выборки из водителя и диапазона дат.
func QueryKey(fleetID int64, dateFrom, dateTo string) string {
	return fmt.Sprintf("%d|%s|%s", fleetID, dateFrom, dateTo)
}

// overrideKey привязывает правки к актору: одинаковая выборка у двух
// операторов не должна давать общий слой правок.
func overrideKey(actor, queryKey string) string {
	return actor + "|" + queryKey
}

// SetActiveQuery объявляет новую активную выборку актора. Если выборка
// сменилась, все локальные правки прежней выборки удаляются.
func (m *Manager) SetActiveQuery(actor, queryKey string) {
	m.activeKeysMutex.Lock()
	previous, had := m.activeKeys[actor]
	m.activeKeys[actor] = queryKey
	m.activeKeysMutex.Unlock()

	if had && previous != queryKey {
		m.overridesMutex.Lock()
		delete(m.overrides, overrideKey(actor, previous))
		m.overridesMutex.Unlock()
		log.Printf("Manager.SetActiveQuery: выборка актора %s сменилась (%s -> %s), локальные правки прежней выборки удалены.", actor, previous, queryKey)
	}
}

// ActiveQuery возвращает активный ключ выборки актора (пустая строка, если нет).
func (m *Manager) ActiveQuery(actor string) string {
	m.activeKeysMutex.RLock()
	defer m.activeKeysMutex.RUnlock()
	return m.activeKeys[actor]
}

// SetOverride сохраняет локальную правку оплаты по дню в рамках активной
// выборки актора. Без активной выборки правка не принимается.
func (m *Manager) SetOverride(actor string, override models.PaymentOverride) error {
	queryKey := m.ActiveQuery(actor)
	if queryKey == "" {
		return &models.ValidationError{Message: "нет активной выборки, правка оплаты не принята"}
	}

	key := overrideKey(actor, queryKey)
	m.overridesMutex.Lock()
	defer m.overridesMutex.Unlock()
	byDate, ok := m.overrides[key]
	if !ok {
		byDate = make(map[string]models.PaymentOverride)
		m.overrides[key] = byDate
	}
	byDate[override.Date] = override
	return nil
}

// Overrides возвращает копию правок активной выборки актора.
func (m *Manager) Overrides(actor string) map[string]models.PaymentOverride {
	queryKey := m.ActiveQuery(actor)
	result := make(map[string]models.PaymentOverride)
	if queryKey == "" {
		return result
	}

	m.overridesMutex.RLock()
	defer m.overridesMutex.RUnlock()
	for date, override := range m.overrides[overrideKey(actor, queryKey)] {
		result[date] = override
	}
	return result
}

// ApplyOverrides накладывает локальные правки актора на записи книги сверки.
// Удаленные данные остаются источником истины для COD и числа заказов,
// правка затрагивает только оплату и статус дня.
func (m *Manager) ApplyOverrides(actor string, entries []models.DailyLedgerEntry) []models.DailyLedgerEntry {
	overrides := m.Overrides(actor)
	if len(overrides) == 0 {
		return entries
	}
	for i := range entries {
		if override, ok := overrides[entries[i].Date]; ok {
			entries[i].AmountPaid = override.AmountPaid
			if override.Status != "" {
				entries[i].Status = override.Status
			}
		}
	}
	return entries
}

// ClearOverrides удаляет правки по перечисленным датам активной выборки.
// Вызывается после подтвержденного расчета: удаленная сторона стала
// авторитетной, локальный слой больше не нужен.
func (m *Manager) ClearOverrides(actor string, dates ...string) {
	queryKey := m.ActiveQuery(actor)
	if queryKey == "" {
		return
	}

	key := overrideKey(actor, queryKey)
	m.overridesMutex.Lock()
	defer m.overridesMutex.Unlock()
	byDate, ok := m.overrides[key]
	if !ok {
		return
	}
	if len(dates) == 0 {
		delete(m.overrides, key)
		log.Printf("Manager.ClearOverrides: все правки выборки %s актора %s удалены.", queryKey, actor)
		return
	}
	for _, date := range dates {
		delete(byDate, date)
	}
}

// GetSetting возвращает сохраненную настройку по ключу.
func (m *Manager) GetSetting(key string) (string, bool) {
	m.settingsMutex.RLock()
	defer m.settingsMutex.RUnlock()
	value, ok := m.settings[key]
	return value, ok
}

// SetSetting сохраняет настройку по ключу.
func (m *Manager) SetSetting(key, value string) {
	m.settingsMutex.Lock()
	defer m.settingsMutex.Unlock()
	m.settings[key] = value
}
