package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"MercadoPagoGateway/internal/domain/currency"
	"MercadoPagoGateway/internal/domain/payment"
	"MercadoPagoGateway/pkg/logger"
	"MercadoPagoGateway/pkg/telemetry"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
)

var (
	ErrInvalidSnapshot = errors.New("invalid checkout snapshot")
	ErrMethodDisabled  = errors.New("mercado pago checkout is disabled")
)

const (
	maxDescriptionLen = 127

	itemIDShipping   = "shipping"
	itemIDAdjustment = "adjustment"

	titleShipping = "Shipping: %s"
	descShipping  = "Shipping Cost"
	titleDiscount = "Applied Discount"
	descDiscount  = "Includes coupons and promotions"
	titleTax      = "Additional Taxes/Charges"
	descTax       = "Additional taxes and charges"

	autoReturnApproved = "approved"
)

type Config struct {
	Settings            payment.Settings
	Policy              currency.Policy
	Categories          *Categories
	URLs                CallbackURLs
	MaxInstallments     int
	StatementDescriptor string
}

type Builder struct {
	cfg       Config
	processor payment.Processor
	l         logger.Interface
}

func NewBuilder(cfg Config, processor payment.Processor, l logger.Interface) *Builder {
	if cfg.Policy == nil {
		cfg.Policy = currency.PreservePolicy{}
	}
	if cfg.Categories == nil {
		cfg.Categories = DefaultCategories()
	}
	return &Builder{cfg: cfg, processor: processor, l: l}
}

func (b *Builder) Settings() payment.Settings {
	return b.cfg.Settings
}

// MethodInfo is how the shop lists this gateway among its payment options.
type MethodInfo struct {
	Code            string `json:"code"`
	Title           string `json:"title"`
	SortOrder       int    `json:"sort_order"`
	Active          bool   `json:"active"`
	Sandbox         bool   `json:"sandbox"`
	MaxInstallments int    `json:"max_installments,omitempty"`
}

func (b *Builder) Method() MethodInfo {
	s := b.cfg.Settings
	title := s.Title
	if title == "" {
		title = payment.DefaultTitle
	}
	return MethodInfo{
		Code:            payment.MethodCode,
		Title:           title,
		SortOrder:       s.Sort,
		Active:          s.Active && s.AccessToken != "",
		Sandbox:         s.Sandbox,
		MaxInstallments: b.cfg.MaxInstallments,
	}
}

// Build assembles the preference request without calling the processor.
// The returned line items always sum to the snapshot's grand total.
func (b *Builder) Build(snap *Snapshot) (payment.PreferenceRequest, error) {
	if !b.cfg.Settings.Active {
		return payment.PreferenceRequest{}, ErrMethodDisabled
	}
	if snap == nil {
		return payment.PreferenceRequest{}, fmt.Errorf("%w: cart is missing", ErrInvalidSnapshot)
	}
	if snap.Billing == nil {
		return payment.PreferenceRequest{}, fmt.Errorf("%w: billing address is missing", ErrInvalidSnapshot)
	}

	code := strings.ToUpper(snap.CurrencyCode)
	p := b.cfg.Policy

	var items []payment.Item
	subtotal := decimal.Zero
	for _, it := range snap.Items {
		if it.Quantity <= 0 {
			continue
		}
		price, err := p.Normalize(it.Price, code)
		if err != nil {
			return payment.PreferenceRequest{}, fmt.Errorf("%w: item %s: %w", ErrInvalidSnapshot, it.ID, err)
		}
		subtotal = subtotal.Add(price.Mul(it.Quantity).Value)

		items = append(items, payment.Item{
			ID:          it.ID,
			Title:       it.Name,
			Description: truncate(it.Name, maxDescriptionLen),
			CategoryID:  b.cfg.Categories.Lookup(it.Category),
			Quantity:    it.Quantity,
			CurrencyID:  code,
			UnitPrice:   price,
		})
	}
	if len(items) == 0 {
		return payment.PreferenceRequest{}, fmt.Errorf("%w: no items in cart", ErrInvalidSnapshot)
	}

	if snap.Shipping != nil {
		price, err := p.Normalize(snap.Shipping.Price, code)
		if err != nil {
			return payment.PreferenceRequest{}, fmt.Errorf("%w: shipping: %w", ErrInvalidSnapshot, err)
		}
		subtotal = subtotal.Add(price.Value)
		items = append(items, payment.Item{
			ID:          itemIDShipping,
			Title:       fmt.Sprintf(titleShipping, snap.Shipping.Carrier),
			Description: descShipping,
			Quantity:    1,
			CurrencyID:  code,
			UnitPrice:   price,
		})
	}

	adj, err := b.adjustment(snap.GrandTotal, subtotal, code)
	if err != nil {
		return payment.PreferenceRequest{}, fmt.Errorf("%w: grand total: %w", ErrInvalidSnapshot, err)
	}
	if !adj.IsZero() {
		title, desc := titleTax, descTax
		if adj.IsNegative() {
			title, desc = titleDiscount, descDiscount
		}
		items = append(items, payment.Item{
			ID:          itemIDAdjustment,
			Title:       title,
			Description: desc,
			Quantity:    1,
			CurrencyID:  code,
			UnitPrice:   adj,
		})
	}

	req := payment.PreferenceRequest{
		Items: items,
		Payer: payer(snap.Billing),
		BackURLs: payment.BackURLs{
			Success: b.cfg.URLs.Success,
			Failure: b.cfg.URLs.Failure,
			Pending: b.cfg.URLs.Pending,
		},
		AutoReturn:          autoReturnApproved,
		ExternalReference:   snap.CartID,
		NotificationURL:     b.cfg.URLs.Notification,
		StatementDescriptor: b.cfg.StatementDescriptor,
	}
	if b.cfg.MaxInstallments > 0 {
		req.PaymentMethods = &payment.PaymentMethods{Installments: b.cfg.MaxInstallments}
	}
	return req, nil
}

// adjustment is the signed amount that reconciles the line items with the
// grand total: negative for discounts, positive for taxes and fees. The sign
// is taken from the raw difference so policies that drop it still work.
func (b *Builder) adjustment(grandTotal, subtotal decimal.Decimal, code string) (currency.Amount, error) {
	grand, err := b.cfg.Policy.Normalize(grandTotal, code)
	if err != nil {
		return currency.Amount{}, err
	}
	diff := grand.Value.Sub(subtotal)
	adj, err := b.cfg.Policy.Normalize(diff, code)
	if err != nil {
		return currency.Amount{}, err
	}
	if diff.IsNegative() && !adj.IsNegative() {
		adj = adj.Neg()
	}
	return adj, nil
}

// Create builds the request and registers it with the processor.
func (b *Builder) Create(ctx context.Context, snap *Snapshot) (payment.Preference, error) {
	ctx, span := telemetry.StartSpan(ctx, "checkout.create_preference")
	defer span.End()
	l := b.l.WithContext(ctx)

	creds, err := b.cfg.Settings.Credentials()
	if err != nil {
		l.Error("checkout: %v", err)
		telemetry.RecordSpanError(span, err)
		return payment.Preference{}, err
	}

	req, err := b.Build(snap)
	if err != nil {
		l.Error("checkout: build preference: %v", err)
		telemetry.RecordSpanError(span, err)
		return payment.Preference{}, err
	}
	span.SetAttributes(
		attribute.String("checkout.external_reference", req.ExternalReference),
		attribute.Int("checkout.items", len(req.Items)),
	)
	l.Debug("checkout: preference request external_reference=%s items=%d", req.ExternalReference, len(req.Items))

	pref, err := b.processor.CreatePreference(ctx, creds, req, idempotencyKey(snap))
	if err != nil {
		var apiErr *payment.APIError
		if errors.As(err, &apiErr) {
			l.Error("checkout: processor rejected preference: status=%d body=%s", apiErr.StatusCode, apiErr.Body)
		} else {
			l.Error("checkout: create preference: %v", err)
		}
		telemetry.RecordSpanError(span, err)
		return payment.Preference{}, fmt.Errorf("create preference: %w", err)
	}

	l.Info("checkout: preference created id=%s external_reference=%s", pref.ID, req.ExternalReference)
	return pref, nil
}

type FormFields struct {
	PreferenceID string `json:"preference_id"`
	InitPoint    string `json:"init_point"`
	PublicKey    string `json:"public_key"`
	SiteURL      string `json:"site_url"`
}

// FormFields creates the preference and returns what the redirect page needs.
func (b *Builder) FormFields(ctx context.Context, snap *Snapshot) (FormFields, error) {
	pref, err := b.Create(ctx, snap)
	if err != nil {
		return FormFields{}, err
	}
	return FormFields{
		PreferenceID: pref.ID,
		InitPoint:    pref.CheckoutURL(b.cfg.Settings.Sandbox),
		PublicKey:    b.cfg.Settings.PublicKey,
		SiteURL:      b.cfg.Settings.SiteURL(),
	}, nil
}

// idempotencyKey is stable for a cart and total, so a retried redirect does
// not open a second preference upstream.
func idempotencyKey(snap *Snapshot) string {
	name := snap.CartID + ":" + snap.CurrencyCode + ":" + snap.GrandTotal.String()
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(name)).String()
}

func payer(a *Address) payment.Payer {
	p := payment.Payer{
		Name:    a.FirstName,
		Surname: a.LastName,
		Email:   a.Email,
	}
	if phone := digitsOnly(a.Phone); phone != "" {
		p.Phone = &payment.Phone{Number: phone}
	}
	if a.Postcode != "" || a.Street != "" {
		p.Address = &payment.Address{ZipCode: a.Postcode, StreetName: a.Street}
	}
	return p
}

func digitsOnly(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
