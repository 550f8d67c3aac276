package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Backoffice/internal/constants"
	"Backoffice/internal/models"
)

func TestSetOverrideRequiresActiveQuery(t *testing.T) {
	m := NewManager()

	err := m.SetOverride("anna", models.PaymentOverride{Date: "2024-01-02", AmountPaid: 50})
	assert.True(t, models.IsValidation(err))

	m.SetActiveQuery("anna", QueryKey(7, "2024-01-01", "2024-01-07"))
	require.NoError(t, m.SetOverride("anna", models.PaymentOverride{Date: "2024-01-02", AmountPaid: 50}))

	overrides := m.Overrides("anna")
	require.Len(t, overrides, 1)
	assert.Equal(t, 50.0, overrides["2024-01-02"].AmountPaid)
}

func TestOverridesInvalidatedOnQueryChange(t *testing.T) {
	m := NewManager()
	m.SetActiveQuery("anna", QueryKey(7, "2024-01-01", "2024-01-07"))
	require.NoError(t, m.SetOverride("anna", models.PaymentOverride{Date: "2024-01-02", AmountPaid: 50}))

	// Смена водителя — прежний слой правок исчезает целиком.
	m.SetActiveQuery("anna", QueryKey(8, "2024-01-01", "2024-01-07"))
	assert.Empty(t, m.Overrides("anna"))

	// Возврат к прежней выборке не воскрешает правки.
	m.SetActiveQuery("anna", QueryKey(7, "2024-01-01", "2024-01-07"))
	assert.Empty(t, m.Overrides("anna"))
}

func TestOverridesSurviveSameQuery(t *testing.T) {
	m := NewManager()
	key := QueryKey(7, "2024-01-01", "2024-01-07")
	m.SetActiveQuery("anna", key)
	require.NoError(t, m.SetOverride("anna", models.PaymentOverride{Date: "2024-01-02", AmountPaid: 50}))

	// Повторное объявление той же выборки (перезапрос) правки не трогает.
	m.SetActiveQuery("anna", key)
	assert.Len(t, m.Overrides("anna"), 1)
}

func TestApplyOverrides(t *testing.T) {
	m := NewManager()
	m.SetActiveQuery("anna", QueryKey(7, "2024-01-01", "2024-01-03"))
	require.NoError(t, m.SetOverride("anna", models.PaymentOverride{
		Date:       "2024-01-02",
		AmountPaid: 80,
		Status:     constants.PAYMENT_STATUS_COMPLETED,
	}))

	entries := []models.DailyLedgerEntry{
		{Date: "2024-01-01", CODReceived: 100, AmountPaid: 0, Status: constants.PAYMENT_STATUS_PENDING},
		{Date: "2024-01-02", CODReceived: 80, OrderCount: 2, AmountPaid: 0, Status: constants.PAYMENT_STATUS_PENDING},
	}
	result := m.ApplyOverrides("anna", entries)

	assert.Zero(t, result[0].AmountPaid)
	assert.Equal(t, 80.0, result[1].AmountPaid)
	assert.Equal(t, constants.PAYMENT_STATUS_COMPLETED, result[1].Status)
	assert.Equal(t, 80.0, result[1].CODReceived, "удаленные данные COD правкой не трогаются")
	assert.Equal(t, 2, result[1].OrderCount)
}

func TestClearOverridesByDate(t *testing.T) {
	m := NewManager()
	m.SetActiveQuery("anna", QueryKey(7, "2024-01-01", "2024-01-07"))
	require.NoError(t, m.SetOverride("anna", models.PaymentOverride{Date: "2024-01-02", AmountPaid: 50}))
	require.NoError(t, m.SetOverride("anna", models.PaymentOverride{Date: "2024-01-03", AmountPaid: 60}))

	m.ClearOverrides("anna", "2024-01-02")
	overrides := m.Overrides("anna")
	require.Len(t, overrides, 1)
	assert.Contains(t, overrides, "2024-01-03")

	m.ClearOverrides("anna")
	assert.Empty(t, m.Overrides("anna"))
}

func TestActorsAreIsolated(t *testing.T) {
	m := NewManager()
	key := QueryKey(7, "2024-01-01", "2024-01-07")
	m.SetActiveQuery("anna", key)
	m.SetActiveQuery("boris", QueryKey(9, "2024-01-01", "2024-01-07"))
	require.NoError(t, m.SetOverride("anna", models.PaymentOverride{Date: "2024-01-02", AmountPaid: 50}))

	assert.Empty(t, m.Overrides("boris"))
	assert.Len(t, m.Overrides("anna"), 1)
}

func TestActorsWithSameQueryAreIsolated(t *testing.T) {
	m := NewManager()
	key := QueryKey(7, "2024-01-01", "2024-01-07")
	m.SetActiveQuery("anna", key)
	m.SetActiveQuery("boris", key)

	require.NoError(t, m.SetOverride("anna", models.PaymentOverride{Date: "2024-01-02", AmountPaid: 50}))
	require.NoError(t, m.SetOverride("boris", models.PaymentOverride{Date: "2024-01-03", AmountPaid: 70}))

	// Одинаковая выборка — но слой правок у каждого оператора свой.
	annaOverrides := m.Overrides("anna")
	require.Len(t, annaOverrides, 1)
	assert.Contains(t, annaOverrides, "2024-01-02")
	borisOverrides := m.Overrides("boris")
	require.Len(t, borisOverrides, 1)
	assert.Contains(t, borisOverrides, "2024-01-03")

	// Смена выборки одного оператора не трогает правки другого.
	m.SetActiveQuery("anna", QueryKey(8, "2024-01-01", "2024-01-07"))
	assert.Empty(t, m.Overrides("anna"))
	assert.Len(t, m.Overrides("boris"), 1)
}

func TestSettings(t *testing.T) {
	m := NewManager()

	_, ok := m.GetSetting("active_tab")
	assert.False(t, ok)

	m.SetSetting("active_tab", "ledger")
	value, ok := m.GetSetting("active_tab")
	require.True(t, ok)
	assert.Equal(t, "ledger", value)
}
