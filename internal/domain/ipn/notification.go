// Package ipn turns Mercado Pago instant payment notifications into order
// state changes.
package ipn

import (
	"encoding/json"
	"strconv"
	"strings"

	"MercadoPagoGateway/internal/domain/payment"
)

// Rejection explains why a payload produced no payment reference.
type Rejection string

const (
	RejectNone       Rejection = ""
	RejectNoShape    Rejection = "unrecognized_shape"
	RejectEmpty      Rejection = "empty_type_or_id"
	RejectNotPayment Rejection = "not_payment"
	RejectTestData   Rejection = "test_data"
)

// Sandbox pings and dashboard "test" buttons use these ids.
var testPaymentIDs = map[string]struct{}{
	"123456": {},
	"123":    {},
	"test":   {},
	"sample": {},
}

// Normalize extracts the payment reference from a notification payload.
func Normalize(payload map[string]any) (payment.Reference, bool) {
	ref, rej := Inspect(payload)
	return ref, rej == RejectNone
}

// Inspect is Normalize with the reason for a rejection. Shapes are tried in
// order: {type, data.id}, {topic, id}, {action, data.id}.
func Inspect(payload map[string]any) (payment.Reference, Rejection) {
	var typ, id any
	dataID := nested(payload, "data", "id")

	switch {
	case payload["type"] != nil && dataID != nil:
		typ, id = payload["type"], dataID
	case payload["topic"] != nil && payload["id"] != nil:
		typ, id = payload["topic"], payload["id"]
	case payload["action"] != nil && dataID != nil:
		action := scalar(payload["action"])
		typ, id = strings.SplitN(action, ".", 2)[0], dataID
	default:
		return payment.Reference{}, RejectNoShape
	}

	ref := payment.Reference{Type: scalar(typ), ID: scalar(id)}
	if !ref.Valid() {
		return payment.Reference{}, RejectEmpty
	}
	if ref.Type != payment.TypePayment {
		return payment.Reference{}, RejectNotPayment
	}
	if _, ok := testPaymentIDs[ref.ID]; ok {
		return payment.Reference{}, RejectTestData
	}
	return ref, RejectNone
}

func nested(m map[string]any, keys ...string) any {
	var cur any = m
	for _, k := range keys {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		cur = obj[k]
	}
	return cur
}

// scalar renders JSON strings and numbers as text. Objects, arrays and
// booleans render empty so they fail validation.
func scalar(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case json.Number:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	default:
		return ""
	}
}
