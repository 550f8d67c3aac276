// Файл: internal/notify/telegram.go
package notify

import (
	"fmt"
	"log"

	tgbotapi "github.com/OvyFlash/telegram-bot-api"

	"Backoffice/internal/constants"
	"Backoffice/internal/models"
)

// AccountingNotifier отправляет уведомления о расчетах и выводах средств
// в чат бухгалтерии. Сбои отправки только логируются: уведомление
// не должно срывать основную операцию.
type AccountingNotifier struct {
	api    *tgbotapi.BotAPI
	chatID int64
}

// NewAccountingNotifier инициализирует уведомитель. При пустом токене или
// chatID возвращает nil — вызывающий код работает без уведомлений.
func NewAccountingNotifier(token string, chatID int64) *AccountingNotifier {
	if token == "" || chatID == 0 {
		log.Println("NewAccountingNotifier: токен или chatID не заданы, уведомления отключены.")
		return nil
	}

	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		log.Printf("NewAccountingNotifier: ошибка инициализации Telegram Bot API: %v. Уведомления отключены.", err)
		return nil
	}
	log.Printf("NewAccountingNotifier: авторизован как аккаунт %s", api.Self.UserName)

	return &AccountingNotifier{api: api, chatID: chatID}
}

// SettlementConfirmed уведомляет о подтвержденном расчете с водителем.
func (n *AccountingNotifier) SettlementConfirmed(fleetID int64, reportDate string, amountPaid float64) {
	text := fmt.Sprintf("✅ Расчет подтвержден\nВодитель: %d\nДата: %s\nСумма: %.2f", fleetID, reportDate, amountPaid)
	n.send(text)
}

// WithdrawalDecided уведомляет о решении по запросу на вывод средств.
func (n *AccountingNotifier) WithdrawalDecided(request models.WithdrawalRequest, approved bool, reason string) {
	subject := "Водитель"
	if request.SubjectType == constants.SUBJECT_TYPE_MERCHANT {
		subject = "Торговец"
	}

	var text string
	if approved {
		text = fmt.Sprintf("✅ Вывод средств одобрен\n%s: %s (#%d)\nСумма: %.2f",
			subject, request.SubjectName, request.SubjectID, request.AmountRequested)
	} else {
		text = fmt.Sprintf("❌ Вывод средств отклонен\n%s: %s (#%d)\nСумма: %.2f\nПричина: %s",
			subject, request.SubjectName, request.SubjectID, request.AmountRequested, reason)
	}
	n.send(text)
}

// ConflictDetected уведомляет о расхождении версии заказа при редактировании.
func (n *AccountingNotifier) ConflictDetected(orderID int64, localTS, remoteTS string) {
	text := fmt.Sprintf("⚠️ Конфликт редактирования заказа #%d\nЛокальная версия: %s\nВерсия платформы: %s",
		orderID, localTS, remoteTS)
	n.send(text)
}

func (n *AccountingNotifier) send(text string) {
	if n == nil || n.api == nil {
		return
	}
	msg := tgbotapi.NewMessage(n.chatID, text)
	if _, err := n.api.Send(msg); err != nil {
		log.Printf("AccountingNotifier.send: ошибка отправки уведомления в чат %d: %v", n.chatID, err)
	}
}
