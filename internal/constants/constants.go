package constants

// Статусы платежей по дням и по задачам сверки.
// Payment statuses for reconciliation days and tasks.
const (
	PAYMENT_STATUS_PENDING   = "pending"
	PAYMENT_STATUS_COMPLETED = "completed"
)

// Статусы запросов на вывод средств. Переходы односторонние:
// из pending можно уйти только в approved или rejected, обратного пути нет.
const (
	WITHDRAWAL_STATUS_PENDING  = "pending"
	WITHDRAWAL_STATUS_APPROVED = "approved"
	WITHDRAWAL_STATUS_REJECTED = "rejected"
)

// Типы субъектов запроса на вывод средств.
const (
	SUBJECT_TYPE_MERCHANT = "merchant"
	SUBJECT_TYPE_DRIVER   = "driver"
)

// Статусы заказов внешней платформы.
// Числовые коды 6-8 — терминальные коды самой платформы.
const (
	ORDER_STATUS_ASSIGNED   = "assigned"
	ORDER_STATUS_STARTED    = "started"
	ORDER_STATUS_ACCEPTED   = "accepted"
	ORDER_STATUS_IN_TRANSIT = "in_transit"
	ORDER_STATUS_DELIVERED  = "delivered"
	ORDER_STATUS_COMPLETED  = "completed"
	ORDER_STATUS_CANCELLED  = "cancelled"
	ORDER_STATUS_FAILED     = "failed"
	ORDER_STATUS_DELETED    = "deleted"
)

// Коды статусов платформы, после которых финансовые правки запрещены.
const (
	PLATFORM_CODE_COMPLETED = 6
	PLATFORM_CODE_CANCELLED = 7
	PLATFORM_CODE_FAILED    = 8
)

// TerminalOrderStatuses — множество строковых статусов, после которых
// заказ неизменяем для финансовых правок.
var TerminalOrderStatuses = map[string]bool{
	ORDER_STATUS_DELIVERED: true,
	ORDER_STATUS_COMPLETED: true,
	ORDER_STATUS_CANCELLED: true,
	ORDER_STATUS_FAILED:    true,
	ORDER_STATUS_DELETED:   true,
}

// TerminalPlatformCodes — числовые коды платформы с той же семантикой.
var TerminalPlatformCodes = map[int]bool{
	PLATFORM_CODE_COMPLETED: true,
	PLATFORM_CODE_CANCELLED: true,
	PLATFORM_CODE_FAILED:    true,
}

// Направления операций по кошельку автопарка (fleet wallet).
const (
	WALLET_DIRECTION_CREDIT = "credit"
	WALLET_DIRECTION_DEBIT  = "debit"
)

// Статусы записей локального журнала расчетов.
const (
	JOURNAL_STATUS_RECORDED  = "recorded"
	JOURNAL_STATUS_CONFIRMED = "confirmed"
	JOURNAL_STATUS_FAILED    = "failed"
)

// Роли пользователей бэк-офиса.
// Роли образуют иерархию: admin > accountant > operator.
const (
	ROLE_OPERATOR   = "operator"
	ROLE_ACCOUNTANT = "accountant"
	ROLE_ADMIN      = "admin"
)

// roleLevels — числовые уровни ролей для сравнения "роль или выше".
var roleLevels = map[string]int{
	ROLE_OPERATOR:   1,
	ROLE_ACCOUNTANT: 2,
	ROLE_ADMIN:      3,
}

// IsRoleOrHigher проверяет, что роль userRole не ниже требуемой requiredRole.
func IsRoleOrHigher(userRole, requiredRole string) bool {
	userLevel, okUser := roleLevels[userRole]
	requiredLevel, okRequired := roleLevels[requiredRole]
	if !okUser || !okRequired {
		return false
	}
	return userLevel >= requiredLevel
}

// DATE_LAYOUT — канонический формат календарной даты во всем сервисе.
const DATE_LAYOUT = "2006-01-02"

// Разделы аудита для журнала действий.
const (
	AUDIT_ACTION_SETTLEMENT_RECORDED  = "settlement_recorded"
	AUDIT_ACTION_SETTLEMENT_CONFIRMED = "settlement_confirmed"
	AUDIT_ACTION_WITHDRAWAL_APPROVED  = "withdrawal_approved"
	AUDIT_ACTION_WITHDRAWAL_REJECTED  = "withdrawal_rejected"
	AUDIT_ACTION_ORDER_UPDATED        = "order_updated"
	AUDIT_ACTION_ORDER_DELETED        = "order_deleted"
	AUDIT_ACTION_WALLET_OPERATION     = "wallet_operation"
)
