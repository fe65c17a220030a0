package payment

import "MercadoPagoGateway/internal/domain/currency"

type PreferenceRequest struct {
	Items               []Item          `json:"items"`
	Payer               Payer           `json:"payer"`
	BackURLs            BackURLs        `json:"back_urls"`
	AutoReturn          string          `json:"auto_return,omitempty"`
	ExternalReference   string          `json:"external_reference"`
	PaymentMethods      *PaymentMethods `json:"payment_methods,omitempty"`
	NotificationURL     string          `json:"notification_url,omitempty"`
	StatementDescriptor string          `json:"statement_descriptor,omitempty"`
}

type Item struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description,omitempty"`
	CategoryID  string          `json:"category_id,omitempty"`
	Quantity    int             `json:"quantity"`
	CurrencyID  string          `json:"currency_id"`
	UnitPrice   currency.Amount `json:"unit_price"`
}

type Payer struct {
	Name    string   `json:"name,omitempty"`
	Surname string   `json:"surname,omitempty"`
	Email   string   `json:"email,omitempty"`
	Phone   *Phone   `json:"phone,omitempty"`
	Address *Address `json:"address,omitempty"`
}

type Phone struct {
	AreaCode string `json:"area_code"`
	Number   string `json:"number"`
}

type Address struct {
	ZipCode      string `json:"zip_code,omitempty"`
	StreetName   string `json:"street_name,omitempty"`
	StreetNumber string `json:"street_number,omitempty"`
}

type BackURLs struct {
	Success string `json:"success"`
	Failure string `json:"failure"`
	Pending string `json:"pending"`
}

type PaymentMethods struct {
	Installments int `json:"installments,omitempty"`
}

type Preference struct {
	ID               string `json:"id"`
	InitPoint        string `json:"init_point"`
	SandboxInitPoint string `json:"sandbox_init_point"`
}

// CheckoutURL picks the hosted page matching the credentials' environment.
func (p Preference) CheckoutURL(sandbox bool) string {
	if sandbox && p.SandboxInitPoint != "" {
		return p.SandboxInitPoint
	}
	return p.InitPoint
}
