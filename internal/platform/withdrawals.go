package platform

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"Backoffice/internal/models"
)

// ListWithdrawals возвращает все запросы на вывод средств.
func (c *Client) ListWithdrawals(ctx context.Context) ([]models.WithdrawalRequest, error) {
	var raw []rawWithdrawal
	if err := c.do(ctx, http.MethodGet, "/withdrawals", nil, &raw, ""); err != nil {
		return nil, err
	}
	requests := make([]models.WithdrawalRequest, 0, len(raw))
	for _, r := range raw {
		requests = append(requests, normalizeWithdrawal(r))
	}
	return requests, nil
}

// withdrawalDecisionRequest — тело решения по запросу на вывод.
type withdrawalDecisionRequest struct {
	Reason string `json:"reason,omitempty"`
}

// ApproveWithdrawal одобряет запрос на вывод средств.
func (c *Client) ApproveWithdrawal(ctx context.Context, requestID int64) error {
	path := fmt.Sprintf("/withdrawals/%d/approve", requestID)
	if err := c.do(ctx, http.MethodPost, path, nil, nil, ""); err != nil {
		return err
	}
	log.Printf("ApproveWithdrawal: запрос на вывод #%d одобрен.", requestID)
	return nil
}

// RejectWithdrawal отклоняет запрос на вывод средств с необязательной причиной.
func (c *Client) RejectWithdrawal(ctx context.Context, requestID int64, reason string) error {
	path := fmt.Sprintf("/withdrawals/%d/reject", requestID)
	if err := c.do(ctx, http.MethodPost, path, withdrawalDecisionRequest{Reason: reason}, nil, ""); err != nil {
		return err
	}
	log.Printf("RejectWithdrawal: запрос на вывод #%d отклонен (причина: %q).", requestID, reason)
	return nil
}
