// Файл: internal/api/ledger_handlers.go
package api

import (
	"fmt"
	"log"
	"net/http"
	"strconv"

	"Backoffice/internal/export"
	"Backoffice/internal/ledger"
	"Backoffice/internal/models"
	"Backoffice/internal/session"
)

// GetLedger возвращает сводку наличных по дням для водителя за диапазон дат.
// Локальные правки текущей выборки накладываются поверх данных платформы.
func (deps *ApiDependencies) GetLedger(w http.ResponseWriter, r *http.Request) {
	fleetID, dateFrom, dateTo, err := ledgerQueryParams(r)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	entries, err := deps.Aggregator.Aggregate(r.Context(), fleetID, dateFrom, dateTo)
	if err != nil {
		log.Printf("GetLedger: ошибка агрегации для fleet %d (%s — %s): %v", fleetID, dateFrom, dateTo, err)
		writeDomainError(w, err)
		return
	}

	actor := requestActor(r)
	deps.Sessions.SetActiveQuery(actor, session.QueryKey(fleetID, dateFrom, dateTo))
	entries = deps.Sessions.ApplyOverrides(actor, entries)

	writeJSONSuccess(w, "Сводка наличных получена.", entries)
}

// ExportLedger выгружает сводку наличных в CSV или Excel.
func (deps *ApiDependencies) ExportLedger(w http.ResponseWriter, r *http.Request) {
	fleetID, dateFrom, dateTo, err := ledgerQueryParams(r)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	entries, err := deps.Aggregator.Aggregate(r.Context(), fleetID, dateFrom, dateTo)
	if err != nil {
		log.Printf("ExportLedger: ошибка агрегации для fleet %d (%s — %s): %v", fleetID, dateFrom, dateTo, err)
		writeDomainError(w, err)
		return
	}
	entries = deps.Sessions.ApplyOverrides(requestActor(r), entries)

	fleetName := r.URL.Query().Get("fleet_name")
	if fleetName == "" {
		fleetName = fmt.Sprintf("Водитель %d", fleetID)
	}

	format := r.URL.Query().Get("format")
	switch format {
	case "xlsx":
		content, err := export.LedgerExcel(fleetName, dateFrom, dateTo, entries)
		if err != nil {
			writeJSONError(w, http.StatusInternalServerError, err.Error())
			return
		}
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="ledger_%d_%s_%s.xlsx"`, fleetID, dateFrom, dateTo))
		w.Write(content)
	case "csv", "":
		content, err := export.LedgerCSV(entries)
		if err != nil {
			writeJSONError(w, http.StatusInternalServerError, err.Error())
			return
		}
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="ledger_%d_%s_%s.csv"`, fleetID, dateFrom, dateTo))
		w.Write(content)
	default:
		writeJSONError(w, http.StatusBadRequest, fmt.Sprintf("неизвестный формат выгрузки: '%s'", format))
	}
}

// GetTasks возвращает задачи с наличной оплатой за один день сверки.
func (deps *ApiDependencies) GetTasks(w http.ResponseWriter, r *http.Request) {
	fleetID, err := strconv.ParseInt(r.URL.Query().Get("fleet_id"), 10, 64)
	if err != nil || fleetID <= 0 {
		writeJSONError(w, http.StatusBadRequest, "некорректный параметр fleet_id")
		return
	}
	date := r.URL.Query().Get("date")
	if date == "" {
		writeJSONError(w, http.StatusBadRequest, "параметр date обязателен")
		return
	}

	tasks, err := deps.Platform.RawTasks(r.Context(), fleetID, date, date)
	if err != nil {
		log.Printf("GetTasks: ошибка получения задач для fleet %d за %s: %v", fleetID, date, err)
		writeDomainError(w, err)
		return
	}

	// Непригодные задачи отсеивает сам BuildTaskEntries.
	entries := ledger.BuildTaskEntries(fleetID, r.URL.Query().Get("fleet_name"), tasks)

	writeJSONSuccess(w, "Задачи дня получены.", entries)
}

// SetOverride сохраняет локальную правку дня для текущей выборки оператора.
func (deps *ApiDependencies) SetOverride(w http.ResponseWriter, r *http.Request) {
	var req OverrideRequest
	if err := decodeJSONBody(r, &req); err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.AmountPaid < 0 {
		writeJSONError(w, http.StatusBadRequest, "сумма оплаты не может быть отрицательной")
		return
	}

	actor := requestActor(r)
	deps.Sessions.SetActiveQuery(actor, session.QueryKey(req.FleetID, req.DateFrom, req.DateTo))
	err := deps.Sessions.SetOverride(actor, models.PaymentOverride{
		Date:       req.Date,
		AmountPaid: req.AmountPaid,
		Status:     req.Status,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSONSuccess(w, fmt.Sprintf("Правка за %s сохранена локально.", req.Date), nil)
}

// ClearOverrides сбрасывает локальные правки текущей выборки оператора.
func (deps *ApiDependencies) ClearOverrides(w http.ResponseWriter, r *http.Request) {
	deps.Sessions.ClearOverrides(requestActor(r))
	writeJSONSuccess(w, "Локальные правки сброшены.", nil)
}

func ledgerQueryParams(r *http.Request) (int64, string, string, error) {
	fleetID, err := strconv.ParseInt(r.URL.Query().Get("fleet_id"), 10, 64)
	if err != nil || fleetID <= 0 {
		return 0, "", "", fmt.Errorf("некорректный параметр fleet_id")
	}
	dateFrom := r.URL.Query().Get("date_from")
	dateTo := r.URL.Query().Get("date_to")
	if dateFrom == "" || dateTo == "" {
		return 0, "", "", fmt.Errorf("параметры date_from и date_to обязательны")
	}
	return fleetID, dateFrom, dateTo, nil
}
