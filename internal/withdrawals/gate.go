package withdrawals

import (
	"context"
	"fmt"
	"log"
	"sync"

	"Backoffice/internal/constants"
	"Backoffice/internal/models"
)

// WithdrawalAPI — удаленные операции над запросами на вывод средств.
type WithdrawalAPI interface {
	ListWithdrawals(ctx context.Context) ([]models.WithdrawalRequest, error)
	ApproveWithdrawal(ctx context.Context, requestID int64) error
	RejectWithdrawal(ctx context.Context, requestID int64, reason string) error
}

// Notifier уведомляет бухгалтерию о решении по запросу. Может быть nil.
type Notifier interface {
	WithdrawalDecided(request models.WithdrawalRequest, approved bool, reason string)
}

// Result — исход решения по запросу на вывод.
type Result struct {
	Status   string                     `json:"status"` // success | error
	Message  string                     `json:"message"`
	Requests []models.WithdrawalRequest `json:"requests"`
}

// Gate — двухстатусный шлюз одобрения выводов: Pending -> Approved|Rejected,
// без отката. Никаких оптимистичных локальных мутаций: после каждого действия
// список безусловно перечитывается с платформы, отображаемое состояние всегда
// совпадает с удаленным ценой одного круговорота.
type Gate struct {
	api      WithdrawalAPI
	notifier Notifier

	// Последний перечитанный список; чистая функция PendingTotal считается
	// по нему без какого-либо кэширования.
	requestsMutex sync.RWMutex
	requests      []models.WithdrawalRequest
}

// NewGate создает шлюз одобрения. notifier может быть nil.
func NewGate(api WithdrawalAPI, notifier Notifier) *Gate {
	return &Gate{api: api, notifier: notifier}
}

// Reload безусловно перечитывает список запросов с платформы.
func (g *Gate) Reload(ctx context.Context) ([]models.WithdrawalRequest, error) {
	requests, err := g.api.ListWithdrawals(ctx)
	if err != nil {
		log.Printf("Gate.Reload: не удалось перечитать запросы на вывод: %v", err)
		return nil, err
	}
	g.requestsMutex.Lock()
	g.requests = requests
	g.requestsMutex.Unlock()
	return requests, nil
}

// Requests возвращает копию последнего перечитанного списка.
func (g *Gate) Requests() []models.WithdrawalRequest {
	g.requestsMutex.RLock()
	defer g.requestsMutex.RUnlock()
	result := make([]models.WithdrawalRequest, len(g.requests))
	copy(result, g.requests)
	return result
}

// Approve одобряет запрос. Решение одностороннее: повторное решение по уже
// решенному запросу отклоняется локально, до удаленного вызова.
func (g *Gate) Approve(ctx context.Context, requestID int64) (Result, error) {
	request, err := g.findPending(requestID)
	if err != nil {
		return Result{Status: "error", Message: err.Error()}, err
	}

	if err := g.api.ApproveWithdrawal(ctx, requestID); err != nil {
		return Result{Status: "error", Message: "платформа не приняла одобрение запроса"}, err
	}
	if g.notifier != nil {
		g.notifier.WithdrawalDecided(request, true, "")
	}
	return g.reloadResult(ctx, fmt.Sprintf("запрос #%d одобрен", requestID))
}

// Reject отклоняет запрос с необязательной причиной.
func (g *Gate) Reject(ctx context.Context, requestID int64, reason string) (Result, error) {
	request, err := g.findPending(requestID)
	if err != nil {
		return Result{Status: "error", Message: err.Error()}, err
	}

	if err := g.api.RejectWithdrawal(ctx, requestID, reason); err != nil {
		return Result{Status: "error", Message: "платформа не приняла отклонение запроса"}, err
	}
	if g.notifier != nil {
		g.notifier.WithdrawalDecided(request, false, reason)
	}
	return g.reloadResult(ctx, fmt.Sprintf("запрос #%d отклонен", requestID))
}

func (g *Gate) findPending(requestID int64) (models.WithdrawalRequest, error) {
	g.requestsMutex.RLock()
	defer g.requestsMutex.RUnlock()
	for _, request := range g.requests {
		if request.ID != requestID {
			continue
		}
		if request.Status != constants.WITHDRAWAL_STATUS_PENDING {
			return models.WithdrawalRequest{}, &models.BusinessRuleError{
				Message: fmt.Sprintf("запрос #%d уже решен (статус '%s'), решение нельзя изменить", requestID, request.Status),
			}
		}
		return request, nil
	}
	return models.WithdrawalRequest{}, &models.ValidationError{
		Field:   "request_id",
		Message: fmt.Sprintf("запрос #%d не найден в текущем списке, перечитайте список", requestID),
	}
}

func (g *Gate) reloadResult(ctx context.Context, message string) (Result, error) {
	requests, err := g.Reload(ctx)
	if err != nil {
		// Решение на платформе уже принято; неудавшаяся перечитка не отменяет его.
		return Result{Status: "success", Message: message + "; список не перечитан"}, nil
	}
	return Result{Status: "success", Message: message, Requests: requests}, nil
}

// PendingTotal — суммарный запрошенный вывод по субъекту среди еще не
// решенных запросов. Чистая функция над переданным списком.
func PendingTotal(requests []models.WithdrawalRequest, subjectType string, subjectID int64) float64 {
	var total float64
	for _, request := range requests {
		if request.Status != constants.WITHDRAWAL_STATUS_PENDING {
			continue
		}
		if request.SubjectType != subjectType || request.SubjectID != subjectID {
			continue
		}
		total += request.AmountRequested
	}
	return total
}
