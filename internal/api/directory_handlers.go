// Файл: internal/api/directory_handlers.go
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

// GetFleets возвращает список водителей платформы.
func (deps *ApiDependencies) GetFleets(w http.ResponseWriter, r *http.Request) {
	fleets, err := deps.Platform.ListFleets(r.Context())
	if err != nil {
		log.Printf("GetFleets: ошибка получения списка водителей: %v", err)
		writeDomainError(w, err)
		return
	}
	writeJSONSuccess(w, "Список водителей получен.", fleets)
}

// GetVendors возвращает список торговцев платформы.
func (deps *ApiDependencies) GetVendors(w http.ResponseWriter, r *http.Request) {
	vendors, err := deps.Platform.ListVendors(r.Context())
	if err != nil {
		log.Printf("GetVendors: ошибка получения списка торговцев: %v", err)
		writeDomainError(w, err)
		return
	}
	writeJSONSuccess(w, "Список торговцев получен.", vendors)
}

// TransactFleetWallet выполняет операцию с кошельком водителя.
func (deps *ApiDependencies) TransactFleetWallet(w http.ResponseWriter, r *http.Request) {
	fleetID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || fleetID <= 0 {
		writeJSONError(w, http.StatusBadRequest, "некорректный ID водителя")
		return
	}

	var req WalletRequest
	if err := decodeJSONBody(r, &req); err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := deps.Platform.TransactFleetWallet(r.Context(), fleetID, req.Amount, req.Description, req.Direction); err != nil {
		writeDomainError(w, err)
		return
	}

	if errAudit := db.AddAuditEntry(requestActor(r), constants.AUDIT_ACTION_WALLET_OPERATION,
		fmt.Sprintf("fleet:%d", fleetID),
		fmt.Sprintf(`{"amount":%.2f,"direction":%q}`, req.Amount, req.Direction)); errAudit != nil {
		log.Printf("TransactFleetWallet: ошибка записи аудита: %v", errAudit)
	}
	writeJSONSuccess(w, fmt.Sprintf("Операция с кошельком водителя #%d выполнена.", fleetID), nil)
}

// CreditVendorWallet пополняет кошелек торговца. Списание не поддерживается.
func (deps *ApiDependencies) CreditVendorWallet(w http.ResponseWriter, r *http.Request) {
	vendorID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || vendorID <= 0 {
		writeJSONError(w, http.StatusBadRequest, "некорректный ID торговца")
		return
	}

	var req WalletRequest
	if err := decodeJSONBody(r, &req); err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := deps.Platform.CreditVendorWallet(r.Context(), vendorID, req.Amount, req.Description); err != nil {
		writeDomainError(w, err)
		return
	}

	if errAudit := db.AddAuditEntry(requestActor(r), constants.AUDIT_ACTION_WALLET_OPERATION,
		fmt.Sprintf("vendor:%d", vendorID),
		fmt.Sprintf(`{"amount":%.2f,"direction":"credit"}`, req.Amount)); errAudit != nil {
		log.Printf("CreditVendorWallet: ошибка записи аудита: %v", errAudit)
	}
	writeJSONSuccess(w, fmt.Sprintf("Кошелек торговца #%d пополнен.", vendorID), nil)
}
