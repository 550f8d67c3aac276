// Файл: internal/api/withdrawal_handlers.go
package api

import (
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"Backoffice/internal/constants"
	"Backoffice/internal/db"
)

// GetWithdrawals перечитывает и возвращает запросы на вывод средств.
func (deps *ApiDependencies) GetWithdrawals(w http.ResponseWriter, r *http.Request) {
	requests, err := deps.Gate.Reload(r.Context())
	if err != nil {
		log.Printf("GetWithdrawals: ошибка загрузки запросов на вывод: %v", err)
		writeDomainError(w, err)
		return
	}
	writeJSONSuccess(w, "Запросы на вывод средств получены.", requests)
}

// ApproveWithdrawal одобряет запрос на вывод средств.
func (deps *ApiDependencies) ApproveWithdrawal(w http.ResponseWriter, r *http.Request) {
	requestID, err := withdrawalIDParam(r)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := deps.Gate.Approve(r.Context(), requestID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	if errAudit := db.AddAuditEntry(requestActor(r), constants.AUDIT_ACTION_WITHDRAWAL_APPROVED,
		fmt.Sprintf("withdrawal:%d", requestID), ""); errAudit != nil {
		log.Printf("ApproveWithdrawal: ошибка записи аудита: %v", errAudit)
	}
	writeJSONSuccess(w, result.Message, result.Requests)
}

// RejectWithdrawal отклоняет запрос на вывод средств с указанием причины.
func (deps *ApiDependencies) RejectWithdrawal(w http.ResponseWriter, r *http.Request) {
	requestID, err := withdrawalIDParam(r)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	// Причина необязательна: запрос без тела тоже принимается.
	var req WithdrawalDecisionRequest
	if r.ContentLength != 0 {
		if err := decodeJSONBody(r, &req); err != nil {
			writeJSONError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	result, err := deps.Gate.Reject(r.Context(), requestID, req.Reason)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	if errAudit := db.AddAuditEntry(requestActor(r), constants.AUDIT_ACTION_WITHDRAWAL_REJECTED,
		fmt.Sprintf("withdrawal:%d", requestID),
		fmt.Sprintf(`{"reason":%q}`, req.Reason)); errAudit != nil {
		log.Printf("RejectWithdrawal: ошибка записи аудита: %v", errAudit)
	}
	writeJSONSuccess(w, result.Message, result.Requests)
}

func withdrawalIDParam(r *http.Request) (int64, error) {
	requestID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || requestID <= 0 {
		return 0, fmt.Errorf("некорректный ID запроса на вывод")
	}
	return requestID, nil
}
