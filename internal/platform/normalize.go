package platform

import (
	"strconv"
	"strings"

	"Backoffice/internal/constants"
	"Backoffice/internal/models"
)

// Платформа отдает одни и те же поля под разными именами в разных методах
// (fleet_id против id, cod против cod_amount и т.п.). Вся эта пластичность
// схлопывается здесь, один раз, на границе системы: бизнес-код работает только
// с каноническими типами из internal/models.

// flexFloat принимает число и как JSON-число, и как строку.
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return err
	}
	*f = flexFloat(v)
	return nil
}

// flexInt — то же для целых идентификаторов.
type flexInt int64

func (f *flexInt) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		// Платформа иногда присылает идентификаторы как float.
		fv, errF := strconv.ParseFloat(s, 64)
		if errF != nil {
			return err
		}
		v = int64(fv)
	}
	*f = flexInt(v)
	return nil
}

// firstNonZeroInt возвращает первый ненулевой идентификатор из вариантов.
func firstNonZeroInt(values ...flexInt) int64 {
	for _, v := range values {
		if v != 0 {
			return int64(v)
		}
	}
	return 0
}

// firstNonZeroFloat возвращает первую ненулевую сумму из вариантов.
func firstNonZeroFloat(values ...flexFloat) float64 {
	for _, v := range values {
		if v != 0 {
			return float64(v)
		}
	}
	return 0
}

// firstNonEmpty возвращает первую непустую строку из вариантов.
func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

// rawFleet — справочник водителей в том виде, как его отдает платформа.
type rawFleet struct {
	FleetID flexInt `json:"fleet_id"`
	ID      flexInt `json:"id"`
	Name    string  `json:"name"`
	Phone   string  `json:"phone"`
	Mobile  string  `json:"mobile"`
}

func normalizeFleet(r rawFleet) models.Fleet {
	fleetID := firstNonZeroInt(r.FleetID, r.ID)
	return models.Fleet{
		ID:      int64(r.ID),
		FleetID: fleetID,
		Name:    strings.TrimSpace(r.Name),
		Phone:   firstNonEmpty(r.Phone, r.Mobile),
	}
}

// rawVendor — справочник торговцев.
type rawVendor struct {
	VendorID flexInt `json:"vendor_id"`
	ID       flexInt `json:"id"`
	Name     string  `json:"name"`
	Phone    string  `json:"phone"`
	Mobile   string  `json:"mobile"`
}

func normalizeVendor(r rawVendor) models.Vendor {
	return models.Vendor{
		ID:       int64(r.ID),
		VendorID: firstNonZeroInt(r.VendorID, r.ID),
		Name:     strings.TrimSpace(r.Name),
		Phone:    firstNonEmpty(r.Phone, r.Mobile),
	}
}

// rawDailyTotal — строка первичного агрегатного источника.
type rawDailyTotal struct {
	Date        string    `json:"date"`
	Day         string    `json:"day"`
	CODReceived flexFloat `json:"cod_received"`
	COD         flexFloat `json:"cod"`
	OrderCount  flexInt   `json:"order_count"`
	Orders      flexInt   `json:"orders"`
}

// normalizeDailyTotal обрезает хвост времени у даты ("2024-01-02 00:00:00" ->
// "2024-01-02") и схлопывает альтернативные имена полей.
func normalizeDailyTotal(r rawDailyTotal) models.DailyTotalRow {
	date := firstNonEmpty(r.Date, r.Day)
	if idx := strings.IndexAny(date, " T"); idx > 0 {
		date = date[:idx]
	}
	return models.DailyTotalRow{
		Date:        date,
		CODReceived: firstNonZeroFloat(r.CODReceived, r.COD),
		OrderCount:  int(firstNonZeroInt(r.OrderCount, r.Orders)),
	}
}

// rawTask — сырая задача резервного источника.
type rawTask struct {
	JobID            flexInt   `json:"job_id"`
	ID               flexInt   `json:"id"`
	CreationDatetime string    `json:"creation_datetime"`
	CreatedAt        string    `json:"created_at"`
	PickupAddress    string    `json:"pickup_address"`
	JobPickupAddress string    `json:"job_pickup_address"`
	DeliveryAddress  string    `json:"delivery_address"`
	JobAddress       string    `json:"job_address"`
	CODAmount        flexFloat `json:"cod_amount"`
	COD              flexFloat `json:"cod"`
	CustomerName     string    `json:"customer_name"`
	CustomerUsername string    `json:"customer_username"`
}

func normalizeRawTask(r rawTask) models.RawTaskRow {
	return models.RawTaskRow{
		JobID:            firstNonZeroInt(r.JobID, r.ID),
		CreationDatetime: firstNonEmpty(r.CreationDatetime, r.CreatedAt),
		PickupAddress:    firstNonEmpty(r.PickupAddress, r.JobPickupAddress),
		DeliveryAddress:  firstNonEmpty(r.DeliveryAddress, r.JobAddress),
		CODAmount:        firstNonZeroFloat(r.CODAmount, r.COD),
		CustomerName:     firstNonEmpty(r.CustomerName, r.CustomerUsername),
	}
}

// rawOrder — заказ платформы.
type rawOrder struct {
	OrderID          flexInt   `json:"order_id"`
	JobID            flexInt   `json:"job_id"`
	ID               flexInt   `json:"id"`
	CustomerName     string    `json:"customer_name"`
	CustomerUsername string    `json:"customer_username"`
	CustomerPhone    string    `json:"customer_phone"`
	Phone            string    `json:"phone"`
	PickupAddress    string    `json:"pickup_address"`
	JobPickupAddress string    `json:"job_pickup_address"`
	DeliveryAddress  string    `json:"delivery_address"`
	JobAddress       string    `json:"job_address"`
	CODAmount        flexFloat `json:"cod_amount"`
	COD              flexFloat `json:"cod"`
	DeliveryFee      flexFloat `json:"delivery_fee"`
	Fee              flexFloat `json:"fee"`
	FleetID          flexInt   `json:"fleet_id"`
	FleetName        string    `json:"fleet_name"`
	Notes            string    `json:"notes"`
	JobDescription   string    `json:"job_description"`
	Status           string    `json:"status"`
	JobStatus        flexInt   `json:"job_status"`
	LastModified     string    `json:"last_modified"`
	UpdatedAt        string    `json:"updated_at"`
}

func normalizeOrder(r rawOrder) models.OrderRecord {
	return models.OrderRecord{
		OrderID:         firstNonZeroInt(r.OrderID, r.JobID, r.ID),
		CustomerName:    firstNonEmpty(r.CustomerName, r.CustomerUsername),
		CustomerPhone:   firstNonEmpty(r.CustomerPhone, r.Phone),
		PickupAddress:   firstNonEmpty(r.PickupAddress, r.JobPickupAddress),
		DeliveryAddress: firstNonEmpty(r.DeliveryAddress, r.JobAddress),
		CODAmount:       firstNonZeroFloat(r.CODAmount, r.COD),
		DeliveryFee:     firstNonZeroFloat(r.DeliveryFee, r.Fee),
		FleetID:         int64(r.FleetID),
		FleetName:       strings.TrimSpace(r.FleetName),
		Notes:           firstNonEmpty(r.Notes, r.JobDescription),
		Status:          strings.ToLower(strings.TrimSpace(r.Status)),
		StatusCode:      int(r.JobStatus),
		LastModified:    firstNonEmpty(r.LastModified, r.UpdatedAt),
	}
}

// rawWithdrawal — запрос на вывод средств.
type rawWithdrawal struct {
	ID               flexInt   `json:"id"`
	RequestID        flexInt   `json:"request_id"`
	SubjectType      string    `json:"subject_type"`
	UserType         string    `json:"user_type"`
	SubjectID        flexInt   `json:"subject_id"`
	FleetID          flexInt   `json:"fleet_id"`
	VendorID         flexInt   `json:"vendor_id"`
	SubjectName      string    `json:"subject_name"`
	Name             string    `json:"name"`
	AmountRequested  flexFloat `json:"amount_requested"`
	WithdrawalAmount flexFloat `json:"withdrawal_amount"`
	WalletBalance    flexFloat `json:"wallet_balance"`
	Balance          flexFloat `json:"balance"`
	Date             string    `json:"date"`
	CreatedAt        string    `json:"created_at"`
	Status           string    `json:"status"`
	Reason           string    `json:"reason"`
}

func normalizeWithdrawal(r rawWithdrawal) models.WithdrawalRequest {
	subjectType := strings.ToLower(firstNonEmpty(r.SubjectType, r.UserType))
	subjectID := firstNonZeroInt(r.SubjectID, r.FleetID, r.VendorID)
	if subjectType == "" {
		// Платформа для водителей иногда вообще не присылает тип, только fleet_id.
		if r.FleetID != 0 {
			subjectType = constants.SUBJECT_TYPE_DRIVER
		} else if r.VendorID != 0 {
			subjectType = constants.SUBJECT_TYPE_MERCHANT
		}
	}
	status := strings.ToLower(strings.TrimSpace(r.Status))
	if status == "" {
		status = constants.WITHDRAWAL_STATUS_PENDING
	}
	date := firstNonEmpty(r.Date, r.CreatedAt)
	if idx := strings.IndexAny(date, " T"); idx > 0 {
		date = date[:idx]
	}
	return models.WithdrawalRequest{
		ID:              firstNonZeroInt(r.ID, r.RequestID),
		SubjectType:     subjectType,
		SubjectID:       subjectID,
		SubjectName:     firstNonEmpty(r.SubjectName, r.Name),
		AmountRequested: firstNonZeroFloat(r.AmountRequested, r.WithdrawalAmount),
		WalletBalance:   firstNonZeroFloat(r.WalletBalance, r.Balance),
		Date:            date,
		Status:          status,
		Reason:          strings.TrimSpace(r.Reason),
	}
}
