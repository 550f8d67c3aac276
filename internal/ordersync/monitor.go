package ordersync

import (
	"context"
	"log"
	"sync"
	"time"

	"Backoffice/internal/models"
)

// OrderSource — удаленные операции над заказом, нужные монитору конфликтов.
type OrderSource interface {
	GetOrder(ctx context.Context, orderID int64) (models.OrderRecord, error)
	UpdateOrder(ctx context.Context, orderID int64, update models.OrderUpdate) (models.OrderRecord, error)
	CheckConflict(ctx context.Context, orderID int64, localTimestamp string) (models.ConflictCheckResult, error)
}

// State — состояние сессии редактирования заказа.
type State string

const (
	StateIdle       State = "idle"
	StateLoaded     State = "loaded"
	StateConflicted State = "conflicted"
	StateSaving     State = "saving"
)

// Monitor следит за одним редактируемым заказом: держит базовую метку
// last_modified, периодически сверяет ее с удаленной и при расхождении
// переходит в Conflicted, блокируя сохранение до явного решения
// (перечитать или оставить локальные правки).
type Monitor struct {
	source   OrderSource
	orderID  int64
	interval time.Duration

	mu       sync.Mutex
	state    State
	order    models.OrderRecord
	baseline string
	conflict models.ConflictCheckResult

	cancel context.CancelFunc
	done   chan struct{}
}

func newMonitor(source OrderSource, orderID int64, interval time.Duration) *Monitor {
	return &Monitor{
		source:   source,
		orderID:  orderID,
		interval: interval,
		state:    StateIdle,
	}
}

// load выполняет первичную загрузку заказа и запускает фоновый опрос.
func (m *Monitor) load(ctx context.Context) error {
	order, err := m.source.GetOrder(ctx, m.orderID)
	if err != nil {
		return err
	}

	m.mu.Lock()
	m.order = order
	m.baseline = order.LastModified
	m.state = StateLoaded
	m.mu.Unlock()

	pollCtx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	m.done = make(chan struct{})
	go m.poll(pollCtx)

	log.Printf("Monitor: заказ #%d загружен, базовая метка %s, опрос каждые %s.", m.orderID, order.LastModified, m.interval)
	return nil
}

// poll — фоновый цикл сверки меток времени. Завершается только отменой
// контекста: монитор останавливают синхронно при смене заказа или закрытии
// сессии, просроченный таймер по чужому заказу жить не должен.
func (m *Monitor) poll(ctx context.Context) {
	defer close(m.done)
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := m.Check(ctx); err != nil {
				// Недоступность удаленной стороны не меняет состояние:
				// следующий тик попробует снова.
				log.Printf("Monitor: сверка заказа #%d не удалась: %v", m.orderID, err)
			}
		}
	}
}

// Check выполняет одну сверку локальной метки с удаленной.
// Во время сохранения и уже обнаруженного конфликта сверка пропускается.
func (m *Monitor) Check(ctx context.Context) error {
	m.mu.Lock()
	if m.state != StateLoaded {
		m.mu.Unlock()
		return nil
	}
	baseline := m.baseline
	m.mu.Unlock()

	result, err := m.source.CheckConflict(ctx, m.orderID, baseline)
	if err != nil {
		return err
	}
	if !result.HasConflict {
		return nil
	}

	m.mu.Lock()
	// Состояние могло уйти в Saving, пока шла сверка; конфликт фиксируем
	// только поверх Loaded.
	if m.state == StateLoaded && m.baseline == baseline {
		m.state = StateConflicted
		m.conflict = result
		log.Printf("Monitor: конфликт по заказу #%d — локальная метка %s, удаленная %s.", m.orderID, result.LocalTimestamp, result.RemoteTimestamp)
	}
	m.mu.Unlock()
	return nil
}

// Refresh разрешает конфликт отказом от локальных правок: заказ
// перечитывается, удаленная метка становится новой базовой.
func (m *Monitor) Refresh(ctx context.Context) (models.OrderRecord, error) {
	order, err := m.source.GetOrder(ctx, m.orderID)
	if err != nil {
		return models.OrderRecord{}, err
	}

	m.mu.Lock()
	m.order = order
	m.baseline = order.LastModified
	m.state = StateLoaded
	m.conflict = models.ConflictCheckResult{}
	m.mu.Unlock()

	log.Printf("Monitor: заказ #%d перечитан, конфликт снят, новая базовая метка %s.", m.orderID, order.LastModified)
	return order, nil
}

// KeepLocal разрешает конфликт явным подтверждением: правки сохраняются
// на риск пользователя, флаг снимается без перечитывания.
func (m *Monitor) KeepLocal() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != StateConflicted {
		return
	}
	m.state = StateLoaded
	m.conflict = models.ConflictCheckResult{}
	log.Printf("Monitor: конфликт по заказу #%d подавлен по решению пользователя, правки сохраняются на его риск.", m.orderID)
}

// Save отправляет полный набор отредактированных полей. Неразрешенный
// конфликт блокирует сохранение. Терминальный заказ не редактируется
// независимо от прав. При успехе базовая метка заменяется новой удаленной;
// при ошибке состояние остается Loaded, правки у вызывающей стороны целы.
func (m *Monitor) Save(ctx context.Context, update models.OrderUpdate) (models.OrderRecord, error) {
	m.mu.Lock()
	if m.state == StateConflicted {
		conflict := m.conflict
		m.mu.Unlock()
		return models.OrderRecord{}, &models.ConflictError{
			LocalTimestamp:  conflict.LocalTimestamp,
			RemoteTimestamp: conflict.RemoteTimestamp,
		}
	}
	if m.state != StateLoaded {
		m.mu.Unlock()
		return models.OrderRecord{}, &models.ValidationError{Message: "заказ не загружен или уже сохраняется"}
	}
	if m.order.IsTerminal() {
		m.mu.Unlock()
		return models.OrderRecord{}, &models.BusinessRuleError{Message: "заказ в терминальном статусе, финансовые правки запрещены"}
	}
	m.state = StateSaving
	m.mu.Unlock()

	saved, err := m.source.UpdateOrder(ctx, m.orderID, update)

	m.mu.Lock()
	defer m.mu.Unlock()
	if err != nil {
		m.state = StateLoaded
		return models.OrderRecord{}, err
	}
	m.order = saved
	m.baseline = saved.LastModified
	m.state = StateLoaded
	return saved, nil
}

// Stop синхронно останавливает фоновый опрос.
func (m *Monitor) Stop() {
	if m.cancel == nil {
		return
	}
	m.cancel()
	<-m.done
	m.cancel = nil
	log.Printf("Monitor: опрос заказа #%d остановлен.", m.orderID)
}

// State возвращает текущее состояние монитора.
func (m *Monitor) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Order возвращает последнюю загруженную версию заказа.
func (m *Monitor) Order() models.OrderRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.order
}

// Baseline возвращает локально удерживаемую метку last_modified.
func (m *Monitor) Baseline() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.baseline
}

// Conflict возвращает детали зафиксированного конфликта.
func (m *Monitor) Conflict() models.ConflictCheckResult {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.conflict
}

// Registry гарантирует не более одного живого монитора на заказ и
// синхронную остановку прежнего при повторном открытии или закрытии.
type Registry struct {
	source   OrderSource
	interval time.Duration

	mu       sync.Mutex
	monitors map[int64]*Monitor
}

// NewRegistry создает реестр мониторов поверх источника заказов.
func NewRegistry(source OrderSource, interval time.Duration) *Registry {
	return &Registry{
		source:   source,
		interval: interval,
		monitors: make(map[int64]*Monitor),
	}
}

// Open открывает сессию редактирования заказа. Уже открытый монитор того же
// заказа останавливается и заменяется новым.
func (r *Registry) Open(ctx context.Context, orderID int64) (*Monitor, error) {
	monitor := newMonitor(r.source, orderID, r.interval)
	if err := monitor.load(ctx); err != nil {
		return nil, err
	}

	// Вытеснение прежнего монитора и запись нового — одна операция под
	// замком: при параллельных Open вытесненный монитор останавливает тот
	// вызов, который его заменил, без утечки фонового опроса.
	r.mu.Lock()
	displaced, hadPrevious := r.monitors[orderID]
	r.monitors[orderID] = monitor
	r.mu.Unlock()

	if hadPrevious {
		displaced.Stop()
		log.Printf("Registry.Open: прежний монитор заказа #%d остановлен при повторном открытии.", orderID)
	}
	return monitor, nil
}

// Get возвращает живой монитор заказа, если сессия открыта.
func (r *Registry) Get(orderID int64) (*Monitor, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	monitor, ok := r.monitors[orderID]
	return monitor, ok
}

// Close останавливает монитор заказа и убирает его из реестра.
func (r *Registry) Close(orderID int64) {
	r.mu.Lock()
	monitor, ok := r.monitors[orderID]
	if ok {
		delete(r.monitors, orderID)
	}
	r.mu.Unlock()
	if ok {
		monitor.Stop()
	}
}

// CloseAll останавливает все мониторы (выключение сервиса).
func (r *Registry) CloseAll() {
	r.mu.Lock()
	monitors := make([]*Monitor, 0, len(r.monitors))
	for id, monitor := range r.monitors {
		monitors = append(monitors, monitor)
		delete(r.monitors, id)
	}
	r.mu.Unlock()
	for _, monitor := range monitors {
		monitor.Stop()
	}
}

// Count возвращает число открытых сессий редактирования.
func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.monitors)
}
