package api

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Backoffice/internal/constants"
	"Backoffice/internal/models"
	"Backoffice/internal/withdrawals"
)

type fakeWithdrawalPlatform struct {
	requests    []models.WithdrawalRequest
	rejectCalls []string
}

func (f *fakeWithdrawalPlatform) ListWithdrawals(ctx context.Context) ([]models.WithdrawalRequest, error) {
	return f.requests, nil
}

func (f *fakeWithdrawalPlatform) ApproveWithdrawal(ctx context.Context, requestID int64) error {
	return nil
}

func (f *fakeWithdrawalPlatform) RejectWithdrawal(ctx context.Context, requestID int64, reason string) error {
	f.rejectCalls = append(f.rejectCalls, fmt.Sprintf("%d|%s", requestID, reason))
	return nil
}

func rejectRequest(t *testing.T, deps *ApiDependencies, id string, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r *http.Request
	if body == "" {
		r = httptest.NewRequest(http.MethodPost, "/api/withdrawals/"+id+"/reject", nil)
	} else {
		r = httptest.NewRequest(http.MethodPost, "/api/withdrawals/"+id+"/reject", strings.NewReader(body))
	}
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", id)
	r = r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))

	w := httptest.NewRecorder()
	deps.RejectWithdrawal(w, r)
	return w
}

func TestRejectWithdrawalReasonOptional(t *testing.T) {
	platform := &fakeWithdrawalPlatform{
		requests: []models.WithdrawalRequest{
			{ID: 5, SubjectType: constants.SUBJECT_TYPE_DRIVER, SubjectID: 7, AmountRequested: 300, Status: constants.WITHDRAWAL_STATUS_PENDING},
		},
	}
	gate := withdrawals.NewGate(platform, nil)
	_, err := gate.Reload(context.Background())
	require.NoError(t, err)
	deps := &ApiDependencies{Gate: gate}

	// Отклонение без тела запроса — причина необязательна.
	w := rejectRequest(t, deps, "5", "")
	assert.Equal(t, http.StatusOK, w.Code)
	require.Len(t, platform.rejectCalls, 1)
	assert.Equal(t, "5|", platform.rejectCalls[0])
}

func TestRejectWithdrawalForwardsReason(t *testing.T) {
	platform := &fakeWithdrawalPlatform{
		requests: []models.WithdrawalRequest{
			{ID: 5, SubjectType: constants.SUBJECT_TYPE_DRIVER, SubjectID: 7, AmountRequested: 300, Status: constants.WITHDRAWAL_STATUS_PENDING},
		},
	}
	gate := withdrawals.NewGate(platform, nil)
	_, err := gate.Reload(context.Background())
	require.NoError(t, err)
	deps := &ApiDependencies{Gate: gate}

	w := rejectRequest(t, deps, "5", `{"reason":"дубль запроса"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	require.Len(t, platform.rejectCalls, 1)
	assert.Equal(t, "5|дубль запроса", platform.rejectCalls[0])
}
