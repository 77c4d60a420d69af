package config

import "strings"

// HTTPConfig contains HTTP server configuration.
type HTTPConfig struct {
	// Addr is the address to bind the HTTP server to.
	Addr string `env:"HTTP_ADDR" envDefault:":8080"`

	// BaseURL is the public base URL of the API (e.g., "https://deploy.example.com").
	BaseURL string `env:"APP_BASE_URL" envDefault:"http://localhost:8080"`

	// APIToken, when set, is required as a bearer token on every /api route.
	APIToken string `env:"HTTP_API_TOKEN"`

	// MaxListLimit caps the limit query parameter of list endpoints.
	MaxListLimit int `env:"HTTP_MAX_LIST_LIMIT" envDefault:"500"`
}

// Sanitize applies guardrails to HTTP configuration values.
func (h *HTTPConfig) Sanitize() {
	h.APIToken = strings.TrimSpace(h.APIToken)
	h.BaseURL = strings.TrimRight(strings.TrimSpace(h.BaseURL), "/")
	if h.MaxListLimit < 1 {
		h.MaxListLimit = 1
	}
	if h.MaxListLimit > 5000 {
		h.MaxListLimit = 5000
	}
}

// AuthEnabled reports whether API callers must present a bearer token.
func (h *HTTPConfig) AuthEnabled() bool {
	return h.APIToken != ""
}
