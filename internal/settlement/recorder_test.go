package settlement

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

// fakeWriter считает удаленные записи платежей; block позволяет подвесить
// запись для проверки клиентского замка.
type fakeWriter struct {
	mu    sync.Mutex
	calls []string
	err   error
	block chan struct{}
}

func (f *fakeWriter) RecordAgentPayment(ctx context.Context, fleetID int64, amountPaid, referenceCODTotal float64, idempotencyKey string) error {
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, fmt.Sprintf("%d|%.2f|%.2f|%s", fleetID, amountPaid, referenceCODTotal, idempotencyKey))
	return f.err
}

func (f *fakeWriter) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type fakeJournal struct {
	mu         sync.Mutex
	inserted   []models.SettlementRecord
	confirmed  []int64
	failed     []int64
	insertErr  error
	confirmErr error
	checkErr   error
	settled    bool
}

func (f *fakeJournal) InsertSettlement(record models.SettlementRecord) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.insertErr != nil {
		return 0, f.insertErr
	}
	f.inserted = append(f.inserted, record)
	return int64(len(f.inserted)), nil
}

func (f *fakeJournal) ConfirmSettlement(id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.confirmErr != nil {
		return f.confirmErr
	}
	f.confirmed = append(f.confirmed, id)
	return nil
}

func (f *fakeJournal) MarkSettlementFailed(id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failed = append(f.failed, id)
	return nil
}

func (f *fakeJournal) HasConfirmedSettlement(fleetID int64, reportDate string, amountPaid float64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.settled, f.checkErr
}

type fakeNotifier struct {
	mu    sync.Mutex
	calls int
}

func (f *fakeNotifier) SettlementConfirmed(fleetID int64, reportDate string, amountPaid float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
}

func TestRecordSettlementSuccess(t *testing.T) {
	writer := &fakeWriter{}
	journal := &fakeJournal{}
	notifier := &fakeNotifier{}
	recorder := NewRecorder(writer, journal, notifier)

	result, err := recorder.RecordSettlement(context.Background(), 7, "2024-01-02", 150, 200)
	require.NoError(t, err)

	assert.Equal(t, "success", result.Status)
	assert.Equal(t, constants.PAYMENT_STATUS_COMPLETED, result.DayStatus)
	assert.Equal(t, 150.0, result.AmountPaid)
	assert.NotEmpty(t, result.IdempotencyKey)

	require.Equal(t, 1, writer.callCount(), "ровно одна удаленная запись на вызов")
	require.Len(t, journal.inserted, 1)
	assert.Equal(t, result.IdempotencyKey, journal.inserted[0].IdempotencyKey)
	assert.Equal(t, constants.JOURNAL_STATUS_RECORDED, journal.inserted[0].Status)
	assert.Equal(t, []int64{1}, journal.confirmed)
	assert.Equal(t, 1, notifier.calls)
}

func TestRecordSettlementRejectsNonPositiveAmount(t *testing.T) {
	writer := &fakeWriter{}
	recorder := NewRecorder(writer, &fakeJournal{}, nil)

	for _, amount := range []float64{0, -10} {
		result, err := recorder.RecordSettlement(context.Background(), 7, "2024-01-02", amount, 100)
		assert.True(t, models.IsValidation(err))
		assert.Equal(t, "error", result.Status)
	}
	assert.Zero(t, writer.callCount(), "на платформу ничего уходить не должно")
}

func TestRecordSettlementDuplicateRejected(t *testing.T) {
	writer := &fakeWriter{}
	journal := &fakeJournal{settled: true}
	recorder := NewRecorder(writer, journal, nil)

	result, err := recorder.RecordSettlement(context.Background(), 7, "2024-01-02", 150, 200)
	assert.True(t, models.IsBusinessRule(err))
	assert.Equal(t, "error", result.Status)
	assert.Zero(t, writer.callCount())
	assert.Empty(t, journal.inserted)
}

func TestRecordSettlementRemoteFailureMarksJournal(t *testing.T) {
	writer := &fakeWriter{err: fmt.Errorf("платформа вернула 502")}
	journal := &fakeJournal{}
	notifier := &fakeNotifier{}
	recorder := NewRecorder(writer, journal, notifier)

	result, err := recorder.RecordSettlement(context.Background(), 7, "2024-01-02", 150, 200)
	require.Error(t, err)
	assert.Equal(t, "error", result.Status)
	assert.Equal(t, []int64{1}, journal.failed)
	assert.Empty(t, journal.confirmed)
	assert.Zero(t, notifier.calls)
}

func TestRecordSettlementConfirmFailureStillSuccess(t *testing.T) {
	journal := &fakeJournal{confirmErr: fmt.Errorf("БД недоступна")}
	recorder := NewRecorder(&fakeWriter{}, journal, nil)

	result, err := recorder.RecordSettlement(context.Background(), 7, "2024-01-02", 150, 200)
	require.NoError(t, err, "платформа уже приняла платеж, рассинхронизация журнала не ошибка вызова")
	assert.Equal(t, "success", result.Status)
}

func TestRecordSettlementInflightGuard(t *testing.T) {
	writer := &fakeWriter{block: make(chan struct{})}
	recorder := NewRecorder(writer, &fakeJournal{}, nil)

	firstDone := make(chan error, 1)
	go func() {
		_, err := recorder.RecordSettlement(context.Background(), 7, "2024-01-02", 150, 200)
		firstDone <- err
	}()

	// Дожидаемся, пока первый вызов займет замок и повиснет в записи.
	require.Eventually(t, func() bool {
		recorder.inflightMutex.Lock()
		defer recorder.inflightMutex.Unlock()
		return recorder.inflight[7]
	}, time.Second, 5*time.Millisecond)

	_, err := recorder.RecordSettlement(context.Background(), 7, "2024-01-02", 150, 200)
	assert.True(t, models.IsBusinessRule(err), "второй сабмит во время первого отклоняется")

	close(writer.block)
	require.NoError(t, <-firstDone)
	assert.Equal(t, 1, writer.callCount())

	// Замок снят: другой водитель и повторный вызов проходят.
	_, err = recorder.RecordSettlement(context.Background(), 8, "2024-01-02", 90, 90)
	require.NoError(t, err)
}

func TestSettleDayAggregatesTasks(t *testing.T) {
	writer := &fakeWriter{}
	journal := &fakeJournal{}
	recorder := NewRecorder(writer, journal, nil)

	tasks := []models.TaskPaymentEntry{
		{JobID: 1, CODAmount: 100, BalancePaid: 100, Status: constants.PAYMENT_STATUS_COMPLETED},
		{JobID: 2, CODAmount: 60, BalancePaid: 40, Status: constants.PAYMENT_STATUS_PENDING},
	}

	result, err := recorder.SettleDay(context.Background(), 7, "2024-01-02", tasks)
	require.NoError(t, err)

	assert.Equal(t, 140.0, result.AmountPaid)
	assert.Equal(t, constants.PAYMENT_STATUS_PENDING, result.DayStatus, "день завершен только когда завершена каждая задача")
	require.Len(t, journal.inserted, 1)
	assert.Equal(t, 160.0, journal.inserted[0].ReferenceTotal)
}

func TestSettleDayAllCompleted(t *testing.T) {
	recorder := NewRecorder(&fakeWriter{}, &fakeJournal{}, nil)

	tasks := []models.TaskPaymentEntry{
		{JobID: 1, CODAmount: 100, BalancePaid: 100, Status: constants.PAYMENT_STATUS_COMPLETED},
		{JobID: 2, CODAmount: 60, BalancePaid: 60, Status: constants.PAYMENT_STATUS_COMPLETED},
	}

	result, err := recorder.SettleDay(context.Background(), 7, "2024-01-02", tasks)
	require.NoError(t, err)
	assert.Equal(t, constants.PAYMENT_STATUS_COMPLETED, result.DayStatus)
}

func TestSettleDayRejectsBalanceOutOfBounds(t *testing.T) {
	writer := &fakeWriter{}
	journal := &fakeJournal{}
	recorder := NewRecorder(writer, journal, nil)

	overpaid := []models.TaskPaymentEntry{
		{JobID: 1, CODAmount: 50, BalancePaid: 1000, Status: constants.PAYMENT_STATUS_COMPLETED},
	}
	result, err := recorder.SettleDay(context.Background(), 7, "2024-01-02", overpaid)
	assert.True(t, models.IsValidation(err), "оплаченный остаток сверх COD отклоняется")
	assert.Equal(t, "error", result.Status)

	negative := []models.TaskPaymentEntry{
		{JobID: 1, CODAmount: 50, BalancePaid: -1, Status: constants.PAYMENT_STATUS_PENDING},
	}
	_, err = recorder.SettleDay(context.Background(), 7, "2024-01-02", negative)
	assert.True(t, models.IsValidation(err))

	assert.Zero(t, writer.callCount(), "на платформу ничего уходить не должно")
	assert.Empty(t, journal.inserted)
}

func TestSettleDayNothingPaidRejected(t *testing.T) {
	recorder := NewRecorder(&fakeWriter{}, &fakeJournal{}, nil)

	tasks := []models.TaskPaymentEntry{
		{JobID: 1, CODAmount: 100, BalancePaid: 0, Status: constants.PAYMENT_STATUS_PENDING},
	}
	_, err := recorder.SettleDay(context.Background(), 7, "2024-01-02", tasks)
	assert.True(t, models.IsValidation(err))
}
