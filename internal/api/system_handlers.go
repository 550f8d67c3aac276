// Файл: internal/api/system_handlers.go
package api

import (
	"net/http"
	"strconv"

	"Backoffice/internal/db"
)

// GetAuditLog возвращает последние записи журнала действий,
// опционально отфильтрованные по действию.
func (deps *ApiDependencies) GetAuditLog(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	entries, err := db.ListAuditEntries(r.URL.Query().Get("action"), limit)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSONSuccess(w, "Журнал действий получен.", entries)
}

// GetSetting возвращает сохраненную настройку интерфейса.
func (deps *ApiDependencies) GetSetting(w http.ResponseWriter, r *http.Request) {
	key := r.URL.Query().Get("key")
	if key == "" {
		writeJSONError(w, http.StatusBadRequest, "параметр key обязателен")
		return
	}
	value, ok := deps.Sessions.GetSetting(key)
	if !ok {
		writeJSONError(w, http.StatusNotFound, "настройка не найдена")
		return
	}
	writeJSONSuccess(w, "Настройка получена.", map[string]string{"key": key, "value": value})
}

// SetSetting сохраняет настройку интерфейса.
func (deps *ApiDependencies) SetSetting(w http.ResponseWriter, r *http.Request) {
	var req SettingRequest
	if err := decodeJSONBody(r, &req); err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Key == "" {
		writeJSONError(w, http.StatusBadRequest, "ключ настройки обязателен")
		return
	}
	deps.Sessions.SetSetting(req.Key, req.Value)
	writeJSONSuccess(w, "Настройка сохранена.", nil)
}
