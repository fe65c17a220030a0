package payment

import (
	"strconv"
	"strings"
)

// MethodCode identifies this gateway in order.payment_method.
const MethodCode = "mercadopago_standard"

// DefaultTitle is shown to buyers when no title is configured.
const DefaultTitle = "Mercado Pago"

const (
	SandboxSiteURL = "https://sandbox.mercadopago.com"
	LiveSiteURL    = "https://www.mercadopago.com"
)

type Settings struct {
	AccessToken string
	PublicKey   string
	Sandbox     bool
	Active      bool
	Sort        int
	Title       string
}

// ParseSettings reads the flat key/value gateway configuration. Unknown keys
// are ignored, unparsable booleans are false.
func ParseSettings(kv map[string]string) Settings {
	s := Settings{
		AccessToken: strings.TrimSpace(kv["access_token"]),
		PublicKey:   strings.TrimSpace(kv["public_key"]),
		Sandbox:     parseBool(kv["sandbox"]),
		Active:      parseBool(kv["active"]),
		Title:       strings.TrimSpace(kv["title"]),
	}
	if s.Title == "" {
		s.Title = DefaultTitle
	}
	if n, err := strconv.Atoi(strings.TrimSpace(kv["sort"])); err == nil {
		s.Sort = n
	}
	return s
}

func parseBool(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}

// Credentials returns the immutable per-call processor credentials.
func (s Settings) Credentials() (Credentials, error) {
	if s.AccessToken == "" {
		return Credentials{}, ErrMissingCredentials
	}
	return Credentials{AccessToken: s.AccessToken, Sandbox: s.Sandbox}, nil
}

func (s Settings) SiteURL() string {
	if s.Sandbox {
		return SandboxSiteURL
	}
	return LiveSiteURL
}

// Credentials is passed by value into every processor call.
type Credentials struct {
	AccessToken string
	Sandbox     bool
}
