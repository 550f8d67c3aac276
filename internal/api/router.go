// Файл: internal/api/router.go
package api

import (
	"github.com/go-chi/chi/v5"

	"Backoffice/internal/constants"
)

// SetupRoutes настраивает все маршруты для API.
func SetupRoutes(r *chi.Mux, deps *ApiDependencies) {
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(deps.Config.APISecretToken))

		// --- Справочники ---
		r.Get("/api/fleets", deps.GetFleets)
		r.Get("/api/vendors", deps.GetVendors)

		// --- Сводка наличных ---
		r.Get("/api/ledger", deps.GetLedger)
		r.Get("/api/ledger/export", deps.ExportLedger)
		r.Get("/api/ledger/tasks", deps.GetTasks)
		r.Post("/api/ledger/override", deps.SetOverride)
		r.Post("/api/ledger/override/clear", deps.ClearOverrides)

		// --- Заказы: наблюдение и правки ---
		r.Route("/api/orders/{id}", func(r chi.Router) {
			r.Post("/open", deps.OpenOrder)
			r.Get("/", deps.GetOrderState)
			r.Post("/save", deps.SaveOrder)
			r.Post("/refresh", deps.RefreshOrder)
			r.Post("/keep-local", deps.KeepLocalOrder)
			r.Post("/action", deps.HandleOrderAction)
			r.Post("/close", deps.CloseOrder)
		})

		// --- Операции бухгалтера ---
		r.Group(func(r chi.Router) {
			r.Use(RoleMiddleware(constants.ROLE_ACCOUNTANT))

			r.Post("/api/settlement", deps.RecordSettlement)
			r.Post("/api/settlement/day", deps.SettleDay)
			r.Get("/api/settlement/journal", deps.GetSettlementJournal)
			r.Get("/api/settlement/{id}/receipt", deps.GetSettlementReceipt)

			r.Get("/api/withdrawals", deps.GetWithdrawals)
			r.Post("/api/withdrawals/{id}/approve", deps.ApproveWithdrawal)
			r.Post("/api/withdrawals/{id}/reject", deps.RejectWithdrawal)

			r.Post("/api/fleets/{id}/wallet", deps.TransactFleetWallet)
			r.Post("/api/vendors/{id}/wallet/credit", deps.CreditVendorWallet)
		})

		// --- Журнал действий (только админ) ---
		r.Group(func(r chi.Router) {
			r.Use(RoleMiddleware(constants.ROLE_ADMIN))
			r.Get("/api/audit", deps.GetAuditLog)
		})

		// --- Настройки интерфейса ---
		r.Get("/api/settings", deps.GetSetting)
		r.Post("/api/settings", deps.SetSetting)
	})
}
