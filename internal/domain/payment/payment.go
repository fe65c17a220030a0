package payment

import "github.com/shopspring/decimal"

const TypePayment = "payment"

// Reference is the canonical (type, id) pair extracted from a notification.
type Reference struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

func (r Reference) Valid() bool {
	return r.Type != "" && r.ID != ""
}

type Status string

const (
	StatusApproved    Status = "approved"
	StatusPending     Status = "pending"
	StatusInProcess   Status = "in_process"
	StatusRejected    Status = "rejected"
	StatusCancelled   Status = "cancelled"
	StatusRefunded    Status = "refunded"
	StatusChargedBack Status = "charged_back"
)

// Record is the processor's view of a payment, fetched fresh on every use.
type Record struct {
	ID                string          `json:"id"`
	Status            Status          `json:"status"`
	StatusDetail      string          `json:"status_detail"`
	ExternalReference string          `json:"external_reference"`
	TransactionAmount decimal.Decimal `json:"transaction_amount"`
	CurrencyID        string          `json:"currency_id"`
	PaymentMethodID   string          `json:"payment_method_id"`
}

type SearchQuery struct {
	ExternalReference string `url:"external_reference,omitempty"`
	Status            string `url:"status,omitempty"`
	Sort              string `url:"sort,omitempty"`
	Criteria          string `url:"criteria,omitempty"`
	Limit             int    `url:"limit,omitempty"`
	Offset            int    `url:"offset,omitempty"`
}
