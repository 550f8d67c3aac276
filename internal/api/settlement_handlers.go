// Файл: internal/api/settlement_handlers.go
package api

import (
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"Backoffice/internal/constants"
	"Backoffice/internal/db"
	"Backoffice/internal/export"
)

// RecordSettlement записывает расчет с водителем за день на платформе
// и в локальном журнале.
func (deps *ApiDependencies) RecordSettlement(w http.ResponseWriter, r *http.Request) {
	var req SettlementRequest
	if err := decodeJSONBody(r, &req); err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := deps.Recorder.RecordSettlement(r.Context(), req.FleetID, req.ReportDate, req.AmountPaid, req.ReferenceTotal)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	actor := requestActor(r)
	if errAudit := db.AddAuditEntry(actor, constants.AUDIT_ACTION_SETTLEMENT_RECORDED,
		fmt.Sprintf("fleet:%d", req.FleetID),
		fmt.Sprintf(`{"report_date":"%s","amount_paid":%.2f}`, req.ReportDate, req.AmountPaid)); errAudit != nil {
		log.Printf("RecordSettlement: ошибка записи аудита: %v", errAudit)
	}

	// Подтвержденный расчет делает локальные правки выборки устаревшими.
	deps.Sessions.ClearOverrides(actor, req.ReportDate)

	writeJSONSuccess(w, result.Message, result)
}

// SettleDay закрывает день сверки по списку задач с внесенными оплатами.
func (deps *ApiDependencies) SettleDay(w http.ResponseWriter, r *http.Request) {
	var req DaySettlementRequest
	if err := decodeJSONBody(r, &req); err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	if len(req.Tasks) == 0 {
		writeJSONError(w, http.StatusBadRequest, "список задач дня пуст")
		return
	}

	result, err := deps.Recorder.SettleDay(r.Context(), req.FleetID, req.ReportDate, req.Tasks)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	actor := requestActor(r)
	if errAudit := db.AddAuditEntry(actor, constants.AUDIT_ACTION_SETTLEMENT_CONFIRMED,
		fmt.Sprintf("fleet:%d", req.FleetID),
		fmt.Sprintf(`{"report_date":"%s","amount_paid":%.2f,"day_status":"%s"}`, req.ReportDate, result.AmountPaid, result.DayStatus)); errAudit != nil {
		log.Printf("SettleDay: ошибка записи аудита: %v", errAudit)
	}
	deps.Sessions.ClearOverrides(actor, req.ReportDate)

	writeJSONSuccess(w, result.Message, result)
}

// GetSettlementJournal возвращает последние записи журнала расчетов парка.
func (deps *ApiDependencies) GetSettlementJournal(w http.ResponseWriter, r *http.Request) {
	fleetID, err := strconv.ParseInt(r.URL.Query().Get("fleet_id"), 10, 64)
	if err != nil || fleetID <= 0 {
		writeJSONError(w, http.StatusBadRequest, "некорректный параметр fleet_id")
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	records, err := db.ListSettlements(fleetID, limit)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSONSuccess(w, "Журнал расчетов получен.", records)
}

// GetSettlementReceipt отдает QR-код квитанции записи журнала расчетов.
func (deps *ApiDependencies) GetSettlementReceipt(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeJSONError(w, http.StatusBadRequest, "некорректный ID записи журнала")
		return
	}

	record, err := db.GetSettlement(id)
	if err != nil {
		writeJSONError(w, http.StatusNotFound, err.Error())
		return
	}

	qrBytes, err := export.SettlementReceiptQR(record)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Write(qrBytes)
}
