package config

import (
	"strings"
	"time"
)

// ClientConfig tells the admin CLI where the scheduling API lives.
type ClientConfig struct {
	BaseURL string        `env:"DEPLOYSCHED_API_URL"     envDefault:"http://localhost:8080"`
	Token   string        `env:"DEPLOYSCHED_API_TOKEN"`
	Timeout time.Duration `env:"DEPLOYSCHED_API_TIMEOUT" envDefault:"15s"`
}

// Sanitize trims the URL and bounds the timeout.
func (c *ClientConfig) Sanitize() {
	c.BaseURL = strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	c.Token = strings.TrimSpace(c.Token)
	if c.Timeout <= 0 {
		c.Timeout = 15 * time.Second
	}
}
