package platform

import (
	"context"
	"log"
	"net/http"

	"Backoffice/internal/models"
)

// ListVendors возвращает справочник торговцев (vendor) платформы.
func (c *Client) ListVendors(ctx context.Context) ([]models.Vendor, error) {
	var raw []rawVendor
	if err := c.do(ctx, http.MethodGet, "/vendors", nil, &raw, ""); err != nil {
		return nil, err
	}
	vendors := make([]models.Vendor, 0, len(raw))
	for _, r := range raw {
		vendors = append(vendors, normalizeVendor(r))
	}
	return vendors, nil
}

// vendorWalletRequest — тело пополнения кошелька торговца.
type vendorWalletRequest struct {
	VendorID    int64   `json:"vendor_id"`
	Amount      float64 `json:"amount"`
	Description string  `json:"description,omitempty"`
}

// CreditVendorWallet пополняет кошелек торговца.
// API платформы одностороннее: списания с кошелька торговца не существует,
// поэтому отрицательная сумма отклоняется как нарушение бизнес-правила,
// а не превращается в "списание".
func (c *Client) CreditVendorWallet(ctx context.Context, vendorID int64, amount float64, description string) error {
	if amount < 0 {
		return &models.BusinessRuleError{Message: "списание с кошелька торговца не поддерживается платформой, возможно только пополнение"}
	}
	if amount == 0 {
		return &models.ValidationError{Field: "amount", Message: "сумма пополнения должна быть больше нуля"}
	}
	body := vendorWalletRequest{VendorID: vendorID, Amount: amount, Description: description}
	if err := c.do(ctx, http.MethodPost, "/wallets/vendor", body, nil, ""); err != nil {
		return err
	}
	log.Printf("CreditVendorWallet: кошелек vendor %d пополнен на %.2f.", vendorID, amount)
	return nil
}
