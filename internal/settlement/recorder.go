package settlement

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/google/uuid"

	"Backoffice/internal/constants"
	"Backoffice/internal/ledger"
	"Backoffice/internal/models"
)

// PaymentWriter — удаленная запись платежа водителя. Реализуется клиентом
// платформы.
type PaymentWriter interface {
	RecordAgentPayment(ctx context.Context, fleetID int64, amountPaid, referenceCODTotal float64, idempotencyKey string) error
}

// Journal — локальный журнал расчетов. Запись в журнал предшествует
// удаленной записи: после сбоя по журналу видно, что именно ушло на платформу.
type Journal interface {
	InsertSettlement(record models.SettlementRecord) (int64, error)
	ConfirmSettlement(id int64) error
	MarkSettlementFailed(id int64) error
	HasConfirmedSettlement(fleetID int64, reportDate string, amountPaid float64) (bool, error)
}

// Notifier уведомляет бухгалтерию о подтвержденном расчете. Может быть nil.
type Notifier interface {
	SettlementConfirmed(fleetID int64, reportDate string, amountPaid float64)
}

// Result — исход записи расчета.
type Result struct {
	Status         string  `json:"status"` // success | error
	Message        string  `json:"message"`
	DayStatus      string  `json:"day_status"`
	AmountPaid     float64 `json:"amount_paid"`
	IdempotencyKey string  `json:"idempotency_key"`
}

// Recorder записывает расчеты по COD: ровно одна удаленная запись на вызов,
// без батчинга. Исходная реализация не была идемпотентной — двойной сабмит
// порождал два платежа; здесь это закрыто с двух сторон: клиентский
// in-flight-замок на водителя плюс проверка "уже рассчитано" по локальному
// журналу и ключ идемпотентности в самой удаленной записи.
type Recorder struct {
	writer   PaymentWriter
	journal  Journal
	notifier Notifier

	inflight      map[int64]bool // Ключ: fleetID с незавершенной записью
	inflightMutex sync.Mutex
}

// NewRecorder создает регистратор расчетов. notifier может быть nil.
func NewRecorder(writer PaymentWriter, journal Journal, notifier Notifier) *Recorder {
	return &Recorder{
		writer:   writer,
		journal:  journal,
		notifier: notifier,
		inflight: make(map[int64]bool),
	}
}

// RecordSettlement записывает единичный расчет: водитель внес amountPaid
// наличных при справочной сумме COD referenceTotal за день reportDate.
// После успеха день считается завершенным; вызывающая сторона очищает
// соответствующие локальные правки и при желании перечитывает агрегаты.
func (r *Recorder) RecordSettlement(ctx context.Context, fleetID int64, reportDate string, amountPaid, referenceTotal float64) (Result, error) {
	return r.record(ctx, fleetID, reportDate, amountPaid, referenceTotal, constants.PAYMENT_STATUS_COMPLETED)
}

// SettleDay рассчитывает день целиком по списку задач: сумма оплаченных
// остатков уходит одной транзакцией, день помечается completed только если
// завершена каждая задача, иначе остается pending.
func (r *Recorder) SettleDay(ctx context.Context, fleetID int64, reportDate string, tasks []models.TaskPaymentEntry) (Result, error) {
	// Оплаченные остатки приходят от клиента и проходят ту же проверку
	// границ, что и правка строки: 0 <= BalancePaid <= CODAmount.
	for i := range tasks {
		if err := ledger.EditBalance(&tasks[i], tasks[i].BalancePaid); err != nil {
			return Result{Status: "error", Message: err.Error()}, err
		}
	}

	totalPaid := ledger.TotalPaid(tasks)
	dayStatus := ledger.DayStatus(tasks)

	var referenceTotal float64
	for _, task := range tasks {
		referenceTotal += task.CODAmount
	}
	return r.record(ctx, fleetID, reportDate, totalPaid, referenceTotal, dayStatus)
}

func (r *Recorder) record(ctx context.Context, fleetID int64, reportDate string, amountPaid, referenceTotal float64, dayStatus string) (Result, error) {
	if amountPaid <= 0 {
		err := &models.ValidationError{Field: "amount_paid", Message: "сумма внесения должна быть больше нуля"}
		return Result{Status: "error", Message: err.Error()}, err
	}

	// Клиентский замок: второй сабмит по тому же водителю, пока первый не
	// завершился, отклоняется сразу.
	if !r.tryBegin(fleetID) {
		err := &models.BusinessRuleError{Message: fmt.Sprintf("запись расчета для водителя %d уже выполняется", fleetID)}
		return Result{Status: "error", Message: err.Error()}, err
	}
	defer r.end(fleetID)

	alreadySettled, err := r.journal.HasConfirmedSettlement(fleetID, reportDate, amountPaid)
	if err != nil {
		log.Printf("Recorder.record: ошибка проверки журнала для fleet %d за %s: %v", fleetID, reportDate, err)
		return Result{Status: "error", Message: "не удалось проверить журнал расчетов"}, err
	}
	if alreadySettled {
		err := &models.BusinessRuleError{Message: fmt.Sprintf("расчет на %.2f для водителя %d за %s уже подтвержден", amountPaid, fleetID, reportDate)}
		return Result{Status: "error", Message: err.Error()}, err
	}

	record := models.SettlementRecord{
		FleetID:        fleetID,
		ReportDate:     reportDate,
		AmountPaid:     amountPaid,
		ReferenceTotal: referenceTotal,
		DayStatus:      dayStatus,
		IdempotencyKey: uuid.New().String(),
		Status:         constants.JOURNAL_STATUS_RECORDED,
	}
	journalID, err := r.journal.InsertSettlement(record)
	if err != nil {
		log.Printf("Recorder.record: ошибка записи в журнал для fleet %d за %s: %v", fleetID, reportDate, err)
		return Result{Status: "error", Message: "не удалось записать расчет в журнал"}, err
	}

	// Ровно одна удаленная запись на вызов.
	if err := r.writer.RecordAgentPayment(ctx, fleetID, amountPaid, referenceTotal, record.IdempotencyKey); err != nil {
		if errMark := r.journal.MarkSettlementFailed(journalID); errMark != nil {
			log.Printf("Recorder.record: не удалось пометить запись журнала #%d как неуспешную: %v", journalID, errMark)
		}
		log.Printf("Recorder.record: удаленная запись платежа для fleet %d за %s не удалась: %v", fleetID, reportDate, err)
		return Result{Status: "error", Message: "платформа не приняла запись платежа"}, err
	}

	if err := r.journal.ConfirmSettlement(journalID); err != nil {
		// Платеж на платформе уже записан; рассинхронизация журнала только логируется.
		log.Printf("Recorder.record: платеж записан, но подтверждение журнала #%d не удалось: %v", journalID, err)
	}

	if r.notifier != nil {
		r.notifier.SettlementConfirmed(fleetID, reportDate, amountPaid)
	}

	log.Printf("Recorder.record: расчет для fleet %d за %s на %.2f подтвержден (статус дня: %s).", fleetID, reportDate, amountPaid, dayStatus)
	return Result{
		Status:         "success",
		Message:        fmt.Sprintf("расчет на %.2f за %s записан", amountPaid, reportDate),
		DayStatus:      dayStatus,
		AmountPaid:     amountPaid,
		IdempotencyKey: record.IdempotencyKey,
	}, nil
}

func (r *Recorder) tryBegin(fleetID int64) bool {
	r.inflightMutex.Lock()
	defer r.inflightMutex.Unlock()
	if r.inflight[fleetID] {
		return false
	}
	r.inflight[fleetID] = true
	return true
}

func (r *Recorder) end(fleetID int64) {
	r.inflightMutex.Lock()
	defer r.inflightMutex.Unlock()
	delete(r.inflight, fleetID)
}
