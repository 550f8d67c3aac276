package models

// Fleet — водитель в терминологии внешней платформы.
type Fleet struct {
	ID      int64  `json:"id"`
	FleetID int64  `json:"fleet_id"`
	Name    string `json:"name"`
	Phone   string `json:"phone"`
}

// Vendor — торговец/клиент в терминологии внешней платформы.
type Vendor struct {
	ID       int64  `json:"id"`
	VendorID int64  `json:"vendor_id"`
	Name     string `json:"name"`
	Phone    string `json:"phone"`
}

// AuditEntry — запись журнала действий бэк-офиса.
type AuditEntry struct {
	ID        int64  `json:"id"`
	Actor     string `json:"actor"`
	Action    string `json:"action"`
	Subject   string `json:"subject"`
	Details   string `json:"details,omitempty"`
	CreatedAt string `json:"created_at"`
}
