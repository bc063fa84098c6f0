package models

import (
	"strings"
	"time"
)

// Connection describes how to reach one Jenkins controller. It is built once
// from configuration and handed to the facade; nothing else holds it.
type Connection struct {
	Name     string        `json:"name" yaml:"name"`
	URL      string        `json:"url" yaml:"url"`
	Username string        `json:"username" yaml:"username"`
	Token    string        `json:"-" yaml:"token"` // API token or password
	Insecure bool          `json:"insecure" yaml:"insecure"`
	CACert   string        `json:"-" yaml:"ca_cert"` // PEM bundle
	Timeout  time.Duration `json:"timeout" yaml:"timeout"`
}

// BaseURL returns the controller URL without a trailing slash.
func (c *Connection) BaseURL() string {
	return strings.TrimRight(c.URL, "/")
}

// MaskedToken returns a placeholder for display when a token is set.
func (c *Connection) MaskedToken() string {
	if c.Token == "" {
		return ""
	}
	return "••••••••"
}
