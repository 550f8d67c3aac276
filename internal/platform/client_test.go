package platform

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Backoffice/internal/constants"
	"Backoffice/internal/models"
)

func newTestClient(handler http.HandlerFunc) (*Client, *httptest.Server) {
	server := httptest.NewServer(handler)
	client := NewClient("test-key", server.URL, 2*time.Second)
	return client, server
}

func TestClientSendsAuthAndIdempotencyHeaders(t *testing.T) {
	var gotAPIKey, gotIdemKey string
	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		gotAPIKey = r.Header.Get("X-Api-Key")
		gotIdemKey = r.Header.Get("Idempotence-Key")
		w.Write([]byte(`{"status": 200, "message": "ok"}`))
	})
	defer server.Close()

	err := client.RecordAgentPayment(context.Background(), 7, 150, 200, "key-123")
	require.NoError(t, err)
	assert.Equal(t, "test-key", gotAPIKey)
	assert.Equal(t, "key-123", gotIdemKey)
}

func TestClientServerErrorIsRetryable(t *testing.T) {
	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	defer server.Close()

	_, err := client.ListFleets(context.Background())
	require.Error(t, err)
	assert.True(t, models.IsRemote(err))

	var remoteErr *models.RemoteError
	require.ErrorAs(t, err, &remoteErr)
	assert.True(t, remoteErr.Retryable, "5xx платформы можно повторять")
}

func TestClientEnvelopeErrorNotRetryable(t *testing.T) {
	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status": 403, "message": "ключ отозван"}`))
	})
	defer server.Close()

	_, err := client.ListFleets(context.Background())
	require.Error(t, err)

	var remoteErr *models.RemoteError
	require.ErrorAs(t, err, &remoteErr)
	assert.False(t, remoteErr.Retryable)
	assert.Contains(t, remoteErr.Error(), "ключ отозван")
}

func TestClientTimeoutIsRetryable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.Write([]byte(`{"status": 200}`))
	}))
	defer server.Close()
	client := NewClient("test-key", server.URL, 20*time.Millisecond)

	_, err := client.ListFleets(context.Background())
	require.Error(t, err)

	var remoteErr *models.RemoteError
	require.ErrorAs(t, err, &remoteErr)
	assert.True(t, remoteErr.Retryable, "таймаут — повторяемая ошибка")
}

func TestClientDecodesEnvelopeData(t *testing.T) {
	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status": 200, "data": [{"id": "7", "name": "Петров", "mobile": "+7999"}]}`))
	})
	defer server.Close()

	fleets, err := client.ListFleets(context.Background())
	require.NoError(t, err)
	require.Len(t, fleets, 1)
	assert.Equal(t, int64(7), fleets[0].FleetID)
	assert.Equal(t, "Петров", fleets[0].Name)
}

func TestRawTasksExtendsUpperBoundToEndOfDay(t *testing.T) {
	var gotQuery string
	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Write([]byte(`{"status": 200, "data": []}`))
	})
	defer server.Close()

	_, err := client.RawTasks(context.Background(), 7, "2024-01-01", "2024-01-05")
	require.NoError(t, err)
	assert.Contains(t, gotQuery, "2024-01-05 23:59:59")
}

func TestTransactFleetWalletValidation(t *testing.T) {
	client := NewClient("test-key", "http://unreachable.invalid", time.Second)

	err := client.TransactFleetWallet(context.Background(), 7, 0, "", constants.WALLET_DIRECTION_CREDIT)
	assert.True(t, models.IsValidation(err))

	err = client.TransactFleetWallet(context.Background(), 7, 100, "", "sideways")
	assert.True(t, models.IsValidation(err))

	err = client.TransactFleetWallet(context.Background(), 7, 100, "", constants.WALLET_DIRECTION_DEBIT)
	assert.True(t, models.IsValidation(err), "списание без описания отклоняется локально")
}

func TestCreditVendorWalletRules(t *testing.T) {
	client := NewClient("test-key", "http://unreachable.invalid", time.Second)

	err := client.CreditVendorWallet(context.Background(), 11, -50, "возврат")
	assert.True(t, models.IsBusinessRule(err), "списание с кошелька торговца не поддерживается")

	err = client.CreditVendorWallet(context.Background(), 11, 0, "возврат")
	assert.True(t, models.IsValidation(err))
}

func TestCheckConflictComparesTimestamps(t *testing.T) {
	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status": 200, "data": {"last_modified": "2024-01-02T11:00:00Z"}}`))
	})
	defer server.Close()

	result, err := client.CheckConflict(context.Background(), 42, "2024-01-02T10:00:00Z")
	require.NoError(t, err)
	assert.True(t, result.HasConflict)
	assert.Equal(t, "2024-01-02T10:00:00Z", result.LocalTimestamp)
	assert.Equal(t, "2024-01-02T11:00:00Z", result.RemoteTimestamp)

	same, err := client.CheckConflict(context.Background(), 42, "2024-01-02T11:00:00Z")
	require.NoError(t, err)
	assert.False(t, same.HasConflict)
}
