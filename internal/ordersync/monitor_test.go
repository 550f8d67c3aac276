package ordersync

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Backoffice/internal/constants"
	"Backoffice/internal/models"
)

// fakeOrderAPI подменяет платформу для мониторов и редактора.
type fakeOrderAPI struct {
	mu sync.Mutex

	order      models.OrderRecord
	getErr     error
	updateErr  error
	remoteTS   string
	checkErr   error
	getCalls   int
	saveCalls  int
	checkCalls int

	reordered []int64
	returned  []int64
	deleted   []int64
}

func (f *fakeOrderAPI) GetOrder(ctx context.Context, orderID int64) (models.OrderRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.getCalls++
	return f.order, f.getErr
}

func (f *fakeOrderAPI) UpdateOrder(ctx context.Context, orderID int64, update models.OrderUpdate) (models.OrderRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saveCalls++
	if f.updateErr != nil {
		return models.OrderRecord{}, f.updateErr
	}
	saved := f.order
	saved.CustomerName = update.CustomerName
	saved.CODAmount = update.CODAmount
	saved.LastModified = f.order.LastModified + "+saved"
	return saved, nil
}

func (f *fakeOrderAPI) CheckConflict(ctx context.Context, orderID int64, localTimestamp string) (models.ConflictCheckResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.checkCalls++
	if f.checkErr != nil {
		return models.ConflictCheckResult{}, f.checkErr
	}
	return models.ConflictCheckResult{
		HasConflict:     f.remoteTS != localTimestamp,
		LocalTimestamp:  localTimestamp,
		RemoteTimestamp: f.remoteTS,
	}, nil
}

func (f *fakeOrderAPI) ReorderOrder(ctx context.Context, orderID int64) (models.OrderRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reordered = append(f.reordered, orderID)
	return f.order, nil
}

func (f *fakeOrderAPI) ReturnOrder(ctx context.Context, orderID int64) (models.OrderRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.returned = append(f.returned, orderID)
	return f.order, nil
}

func (f *fakeOrderAPI) DeleteOrder(ctx context.Context, orderID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, orderID)
	return nil
}

func (f *fakeOrderAPI) setRemoteTS(ts string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.remoteTS = ts
}

func activeOrder() models.OrderRecord {
	return models.OrderRecord{
		OrderID:      42,
		CustomerName: "Иванов",
		CODAmount:    100,
		Status:       constants.ORDER_STATUS_IN_TRANSIT,
		LastModified: "2024-01-02T10:00:00Z",
	}
}

func TestMonitorLoadAndState(t *testing.T) {
	api := &fakeOrderAPI{order: activeOrder(), remoteTS: "2024-01-02T10:00:00Z"}
	registry := NewRegistry(api, time.Hour)
	defer registry.CloseAll()

	monitor, err := registry.Open(context.Background(), 42)
	require.NoError(t, err)

	assert.Equal(t, StateLoaded, monitor.State())
	assert.Equal(t, "2024-01-02T10:00:00Z", monitor.Baseline())
	assert.Equal(t, int64(42), monitor.Order().OrderID)
}

func TestMonitorCheckDetectsConflict(t *testing.T) {
	api := &fakeOrderAPI{order: activeOrder(), remoteTS: "2024-01-02T10:00:00Z"}
	registry := NewRegistry(api, time.Hour)
	defer registry.CloseAll()

	monitor, err := registry.Open(context.Background(), 42)
	require.NoError(t, err)

	require.NoError(t, monitor.Check(context.Background()))
	assert.Equal(t, StateLoaded, monitor.State(), "совпадающие метки не дают конфликта")

	api.setRemoteTS("2024-01-02T11:30:00Z")
	require.NoError(t, monitor.Check(context.Background()))
	assert.Equal(t, StateConflicted, monitor.State())
	assert.Equal(t, "2024-01-02T11:30:00Z", monitor.Conflict().RemoteTimestamp)
}

func TestMonitorCheckErrorKeepsState(t *testing.T) {
	api := &fakeOrderAPI{order: activeOrder(), remoteTS: "2024-01-02T10:00:00Z"}
	registry := NewRegistry(api, time.Hour)
	defer registry.CloseAll()

	monitor, err := registry.Open(context.Background(), 42)
	require.NoError(t, err)

	api.mu.Lock()
	api.checkErr = fmt.Errorf("таймаут платформы")
	api.mu.Unlock()

	assert.Error(t, monitor.Check(context.Background()))
	assert.Equal(t, StateLoaded, monitor.State(), "недоступность сверки не фиксирует конфликт")
}

func TestMonitorSaveBlockedByConflict(t *testing.T) {
	api := &fakeOrderAPI{order: activeOrder(), remoteTS: "иная метка"}
	registry := NewRegistry(api, time.Hour)
	defer registry.CloseAll()

	monitor, err := registry.Open(context.Background(), 42)
	require.NoError(t, err)
	require.NoError(t, monitor.Check(context.Background()))
	require.Equal(t, StateConflicted, monitor.State())

	_, err = monitor.Save(context.Background(), models.OrderUpdate{CustomerName: "Петров"})
	assert.True(t, models.IsConflict(err))
	assert.Zero(t, api.saveCalls, "при конфликте ничего не уходит на платформу")
}

func TestMonitorRefreshAdoptsRemote(t *testing.T) {
	api := &fakeOrderAPI{order: activeOrder(), remoteTS: "иная метка"}
	registry := NewRegistry(api, time.Hour)
	defer registry.CloseAll()

	monitor, err := registry.Open(context.Background(), 42)
	require.NoError(t, err)
	require.NoError(t, monitor.Check(context.Background()))

	api.mu.Lock()
	api.order.CustomerName = "Сидоров"
	api.order.LastModified = "иная метка"
	api.mu.Unlock()

	order, err := monitor.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Сидоров", order.CustomerName)
	assert.Equal(t, StateLoaded, monitor.State())
	assert.Equal(t, "иная метка", monitor.Baseline())

	require.NoError(t, monitor.Check(context.Background()))
	assert.Equal(t, StateLoaded, monitor.State(), "после принятия удаленной версии конфликта нет")
}

func TestMonitorKeepLocalSuppressesConflict(t *testing.T) {
	api := &fakeOrderAPI{order: activeOrder(), remoteTS: "иная метка"}
	registry := NewRegistry(api, time.Hour)
	defer registry.CloseAll()

	monitor, err := registry.Open(context.Background(), 42)
	require.NoError(t, err)
	require.NoError(t, monitor.Check(context.Background()))
	require.Equal(t, StateConflicted, monitor.State())

	monitor.KeepLocal()
	assert.Equal(t, StateLoaded, monitor.State())

	// Правки можно сохранить, платформа принимает последнюю версию.
	saved, err := monitor.Save(context.Background(), models.OrderUpdate{CustomerName: "Петров", CODAmount: 90})
	require.NoError(t, err)
	assert.Equal(t, "Петров", saved.CustomerName)
	assert.Equal(t, saved.LastModified, monitor.Baseline(), "новая метка платформы становится базовой")
}

func TestMonitorSaveTerminalOrderRejected(t *testing.T) {
	order := activeOrder()
	order.Status = constants.ORDER_STATUS_COMPLETED
	api := &fakeOrderAPI{order: order, remoteTS: order.LastModified}
	registry := NewRegistry(api, time.Hour)
	defer registry.CloseAll()

	monitor, err := registry.Open(context.Background(), 42)
	require.NoError(t, err)

	_, err = monitor.Save(context.Background(), models.OrderUpdate{CODAmount: 1})
	assert.True(t, models.IsBusinessRule(err))
	assert.Zero(t, api.saveCalls)
}

func TestMonitorSaveFailureKeepsLoaded(t *testing.T) {
	api := &fakeOrderAPI{order: activeOrder(), remoteTS: "2024-01-02T10:00:00Z", updateErr: fmt.Errorf("платформа вернула 500")}
	registry := NewRegistry(api, time.Hour)
	defer registry.CloseAll()

	monitor, err := registry.Open(context.Background(), 42)
	require.NoError(t, err)

	_, err = monitor.Save(context.Background(), models.OrderUpdate{CustomerName: "Петров"})
	require.Error(t, err)
	assert.Equal(t, StateLoaded, monitor.State(), "после ошибки можно повторить сохранение")
	assert.Equal(t, "2024-01-02T10:00:00Z", monitor.Baseline(), "базовая метка не тронута")
}

func TestRegistrySingleMonitorPerOrder(t *testing.T) {
	api := &fakeOrderAPI{order: activeOrder(), remoteTS: "2024-01-02T10:00:00Z"}
	registry := NewRegistry(api, time.Hour)
	defer registry.CloseAll()

	first, err := registry.Open(context.Background(), 42)
	require.NoError(t, err)

	second, err := registry.Open(context.Background(), 42)
	require.NoError(t, err)
	assert.NotSame(t, first, second)
	assert.Equal(t, 1, registry.Count())

	got, ok := registry.Get(42)
	require.True(t, ok)
	assert.Same(t, second, got)
}

func TestRegistryConcurrentOpenLeavesNoStrayPoll(t *testing.T) {
	api := &fakeOrderAPI{order: activeOrder(), remoteTS: "2024-01-02T10:00:00Z"}
	registry := NewRegistry(api, 5*time.Millisecond)
	defer registry.CloseAll()

	// Параллельное открытие одного заказа: вытесненный монитор обязан быть
	// остановлен, иначе его фоновый опрос живет вечно.
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := registry.Open(context.Background(), 42)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	require.Equal(t, 1, registry.Count())

	registry.Close(42)

	api.mu.Lock()
	callsAfterClose := api.checkCalls
	api.mu.Unlock()
	time.Sleep(40 * time.Millisecond)
	api.mu.Lock()
	defer api.mu.Unlock()
	assert.Equal(t, callsAfterClose, api.checkCalls, "после закрытия сверки прекращаются полностью")
}

func TestRegistryCloseStopsMonitor(t *testing.T) {
	api := &fakeOrderAPI{order: activeOrder(), remoteTS: "2024-01-02T10:00:00Z"}
	registry := NewRegistry(api, 5*time.Millisecond)

	_, err := registry.Open(context.Background(), 42)
	require.NoError(t, err)
	registry.Close(42)

	_, ok := registry.Get(42)
	assert.False(t, ok)

	// После остановки фоновый опрос не делает новых сверок.
	api.mu.Lock()
	callsAfterStop := api.checkCalls
	api.mu.Unlock()
	time.Sleep(30 * time.Millisecond)
	api.mu.Lock()
	defer api.mu.Unlock()
	assert.Equal(t, callsAfterStop, api.checkCalls)
}

func TestRegistryCloseAll(t *testing.T) {
	api := &fakeOrderAPI{order: activeOrder(), remoteTS: "2024-01-02T10:00:00Z"}
	registry := NewRegistry(api, time.Hour)

	_, err := registry.Open(context.Background(), 42)
	require.NoError(t, err)
	_, err = registry.Open(context.Background(), 43)
	require.NoError(t, err)
	require.Equal(t, 2, registry.Count())

	registry.CloseAll()
	assert.Zero(t, registry.Count())
}
