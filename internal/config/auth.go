package config

import (
	"fmt"
	"os"
)

const (
	EnvAuthIssuer   = "SWAP_AUTH_ISSUER"
	EnvAuthAudience = "SWAP_AUTH_AUDIENCE"
)

// AuthConfig holds bearer-token verification settings for operator endpoints.
// An empty issuer disables verification.
type AuthConfig struct {
	Issuer   string `toml:"issuer"`
	Audience string `toml:"audience"`
}

// Enabled reports whether token verification is configured.
func (c *AuthConfig) Enabled() bool {
	return c.Issuer != ""
}

// Finalize applies environment overrides and validation.
func (c *AuthConfig) Finalize() error {
	if v := os.Getenv(EnvAuthIssuer); v != "" {
		c.Issuer = v
	}
	if v := os.Getenv(EnvAuthAudience); v != "" {
		c.Audience = v
	}

	if c.Issuer != "" && c.Audience == "" {
		return fmt.Errorf("audience required when issuer is set")
	}
	return nil
}

// Merge overwrites non-zero fields from overlay.
func (c *AuthConfig) Merge(overlay *AuthConfig) {
	if overlay.Issuer != "" {
		c.Issuer = overlay.Issuer
	}
	if overlay.Audience != "" {
		c.Audience = overlay.Audience
	}
}
