package models

import (
	"errors"
	"fmt"
)

// Таксономия ошибок сервиса. Каждая категория дает пользователю различимое
// сообщение: валидация и бизнес-правила разрешаются локально и не доходят до
// удаленных вызовов, конфликт блокирует правки до явного подтверждения,
// недоступность удаленной стороны логируется и показывается пользователю.

// ValidationError — некорректный ввод, отклоняется до любого удаленного вызова.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("ошибка валидации (%s): %s", e.Field, e.Message)
	}
	return fmt.Sprintf("ошибка валидации: %s", e.Message)
}

// BusinessRuleError — операция запрещена правилом предметной области
// (например, списание с кошелька торговца или удаление терминального заказа).
type BusinessRuleError struct {
	Message string
}

func (e *BusinessRuleError) Error() string {
	return fmt.Sprintf("операция запрещена: %s", e.Message)
}

// ConflictError — удаленное состояние разошлось с локальной базой во время
// редактирования. Несет обе метки времени для отображения пользователю.
type ConflictError struct {
	LocalTimestamp  string
	RemoteTimestamp string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("конфликт редактирования: локальная версия %s, удаленная %s", e.LocalTimestamp, e.RemoteTimestamp)
}

// RemoteError — сбой сети или API платформы. Retryable выставляется для
// таймаутов и ответов 5xx.
type RemoteError struct {
	Op        string
	Err       error
	Retryable bool
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("удаленный сервис недоступен (%s): %v", e.Op, e.Err)
}

func (e *RemoteError) Unwrap() error { return e.Err }

// IsValidation сообщает, относится ли ошибка к категории валидации.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsBusinessRule сообщает, относится ли ошибка к нарушению бизнес-правила.
func IsBusinessRule(err error) bool {
	var be *BusinessRuleError
	return errors.As(err, &be)
}

// IsConflict сообщает, относится ли ошибка к конфликту редактирования.
func IsConflict(err error) bool {
	var ce *ConflictError
	return errors.As(err, &ce)
}

// IsRemote сообщает, относится ли ошибка к недоступности удаленной стороны.
func IsRemote(err error) bool {
	var re *RemoteError
	return errors.As(err, &re)
}
