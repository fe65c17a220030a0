package checkout

import "strings"

const (
	PathRedirect = "/mercadopago/standard/redirect"
	PathSuccess  = "/mercadopago/standard/success"
	PathCancel   = "/mercadopago/standard/cancel"
	PathPending  = "/mercadopago/standard/pending"
	PathIPN      = "/mercadopago/standard/ipn"
	PathMethod   = "/mercadopago/standard/method"
)

type CallbackURLs struct {
	Success      string
	Failure      string
	Pending      string
	Notification string
}

// NewCallbackURLs derives every callback from the public base URL of the gateway.
func NewCallbackURLs(publicBaseURL string) CallbackURLs {
	base := strings.TrimRight(publicBaseURL, "/")
	return CallbackURLs{
		Success:      base + PathSuccess,
		Failure:      base + PathCancel,
		Pending:      base + PathPending,
		Notification: base + PathIPN,
	}
}
