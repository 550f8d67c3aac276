package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Backoffice/internal/constants"
	"Backoffice/internal/models"
)

func TestBuildTaskEntries(t *testing.T) {
	tasks := []models.RawTaskRow{
		{JobID: 1, CreationDatetime: "2024-01-01 09:00", PickupAddress: "склад", DeliveryAddress: "клиент", CODAmount: 120, CustomerName: "Иванов"},
		{JobID: 2, CreationDatetime: "", PickupAddress: "склад", DeliveryAddress: "клиент", CODAmount: 50},
		{JobID: 3, CreationDatetime: "2024-01-01 10:00", PickupAddress: "склад", DeliveryAddress: "другой", CODAmount: 80},
	}

	entries := BuildTaskEntries(7, "Петров", tasks)
	require.Len(t, entries, 2)

	assert.Equal(t, int64(1), entries[0].JobID)
	assert.Equal(t, int64(7), entries[0].FleetID)
	assert.Equal(t, "Петров", entries[0].FleetName)
	assert.Equal(t, "Иванов", entries[0].CustomerName)
	assert.Equal(t, 120.0, entries[0].CODAmount)
	assert.Zero(t, entries[0].BalancePaid)
	assert.Equal(t, constants.PAYMENT_STATUS_PENDING, entries[0].Status)
}

func TestEditBalanceBounds(t *testing.T) {
	entry := models.TaskPaymentEntry{JobID: 5, CODAmount: 100}

	err := EditBalance(&entry, -1)
	assert.True(t, models.IsValidation(err))
	assert.Zero(t, entry.BalancePaid, "отклоненная правка не должна менять строку")

	err = EditBalance(&entry, 100.01)
	assert.True(t, models.IsValidation(err))
	assert.Zero(t, entry.BalancePaid)

	require.NoError(t, EditBalance(&entry, 0), "ноль — допустимое значение")
	assert.Zero(t, entry.BalancePaid)

	require.NoError(t, EditBalance(&entry, 100), "граница CODAmount включительна")
	assert.Equal(t, 100.0, entry.BalancePaid)

	require.NoError(t, EditBalance(&entry, 42.5))
	assert.Equal(t, 42.5, entry.BalancePaid)
}

func TestTotalPaid(t *testing.T) {
	entries := []models.TaskPaymentEntry{
		{BalancePaid: 10.5},
		{BalancePaid: 0},
		{BalancePaid: 39.5},
	}
	assert.Equal(t, 50.0, TotalPaid(entries))
	assert.Zero(t, TotalPaid(nil))
}

func TestDayStatus(t *testing.T) {
	assert.Equal(t, constants.PAYMENT_STATUS_PENDING, DayStatus(nil), "пустой день остается pending")

	mixed := []models.TaskPaymentEntry{
		{Status: constants.PAYMENT_STATUS_COMPLETED},
		{Status: constants.PAYMENT_STATUS_PENDING},
	}
	assert.Equal(t, constants.PAYMENT_STATUS_PENDING, DayStatus(mixed))

	done := []models.TaskPaymentEntry{
		{Status: constants.PAYMENT_STATUS_COMPLETED},
		{Status: constants.PAYMENT_STATUS_COMPLETED},
	}
	assert.Equal(t, constants.PAYMENT_STATUS_COMPLETED, DayStatus(done))
}
