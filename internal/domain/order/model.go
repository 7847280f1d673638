package order

import (
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusOnHold     Status = "on-hold"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
	StatusRefunded   Status = "refunded"
	StatusFailed     Status = "failed"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusOnHold, StatusCompleted,
		StatusCancelled, StatusRefunded, StatusFailed:
		return true
	}
	return false
}

// Metadata keys written by the payment gateway.
const (
	MetaPaymentComplete = "CoinPayments payment complete"
	MetaTransactionID   = "Transaction ID"
	MetaPayerFirstName  = "Payer first name"
	MetaPayerLastName   = "Payer last name"
	MetaPayerEmail      = "Payer email"
)

const flagYes = "Yes"

type Address struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Company   string `json:"company"`
	Address1  string `json:"address_1"`
	Address2  string `json:"address_2"`
	City      string `json:"city"`
	State     string `json:"state"`
	Postcode  string `json:"postcode"`
	Country   string `json:"country"`
	Phone     string `json:"phone"`
	Email     string `json:"email"`
}

type Order struct {
	ID            int64
	Key           string
	Number        string
	Currency      string
	Status        Status
	Total         decimal.Decimal
	ShippingTotal decimal.Decimal
	ShippingTax   decimal.Decimal
	TotalTax      decimal.Decimal
	Billing       Address
	Meta          map[string]string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// OrderNumber is the customer-facing number, falling back to the ID.
func (o *Order) OrderNumber() string {
	if o.Number != "" {
		return o.Number
	}
	return strconv.FormatInt(o.ID, 10)
}

func (o *Order) MetaValue(key string) string {
	if o.Meta == nil {
		return ""
	}
	return o.Meta[key]
}

// IsPaid reports whether the gateway must leave the order alone: it is
// completed or already carries the payment-complete flag.
func (o *Order) IsPaid() bool {
	return o.Status == StatusCompleted || o.MetaValue(MetaPaymentComplete) == flagYes
}

// MarkPaymentComplete sets the payment-complete flag on the in-memory copy.
func (o *Order) MarkPaymentComplete() {
	if o.Meta == nil {
		o.Meta = make(map[string]string)
	}
	o.Meta[MetaPaymentComplete] = flagYes
}

type Note struct {
	ID        int64
	OrderID   int64
	Content   string
	CreatedAt time.Time
}
