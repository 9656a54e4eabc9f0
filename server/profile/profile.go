// Package profile holds the runtime configuration of the attune server,
// resolved once at startup from flags and ATTUNE_* environment variables.
package profile

import (
	"fmt"
	"path/filepath"

	"github.com/pkg/errors"
)

// Profile is the server configuration.
type Profile struct {
	// Mode is "prod" or "dev". Dev mode logs at debug level.
	Mode string `mapstructure:"mode"`
	// Addr is the bind address; empty binds every interface.
	Addr string `mapstructure:"addr"`
	// Port is the HTTP port.
	Port int `mapstructure:"port"`
	// Data is the directory for local state; the default SQLite file lives
	// there.
	Data string `mapstructure:"data"`
	// Driver selects the storage backend: sqlite, mysql or postgres.
	Driver string `mapstructure:"driver"`
	// DSN points at the database. Optional for sqlite, required otherwise.
	DSN string `mapstructure:"dsn"`
	// Secret signs access tokens. A fresh random secret is generated when
	// unset, which invalidates sessions across restarts.
	Secret string `mapstructure:"secret"`
	// InferenceBaseURL is the OpenAI-compatible endpoint the chat proxy
	// forwards to. Chat answers 503 while it is unset.
	InferenceBaseURL string `mapstructure:"inference-base-url"`
	// InferenceAPIKey authenticates against the inference endpoint.
	InferenceAPIKey string `mapstructure:"inference-api-key"`
	// InferenceModel is the model identifier to request.
	InferenceModel string `mapstructure:"inference-model"`
	// ChatDailyQuota caps assistant turns per user per day. 0 disables the
	// cap.
	ChatDailyQuota int `mapstructure:"chat-daily-quota"`
	// Version is stamped at build time.
	Version string
}

// IsDev reports whether the server runs in dev mode.
func (p *Profile) IsDev() bool {
	return p.Mode != "prod"
}

// Validate normalizes the profile and rejects unusable combinations.
func (p *Profile) Validate() error {
	if p.Mode != "prod" && p.Mode != "dev" {
		p.Mode = "dev"
	}
	if p.Port <= 0 || p.Port > 65535 {
		return errors.Errorf("invalid port %d", p.Port)
	}
	switch p.Driver {
	case "sqlite":
		if p.DSN == "" {
			if p.Data == "" {
				p.Data = "."
			}
			p.DSN = filepath.Join(p.Data, fmt.Sprintf("attune_%s.db", p.Mode))
		}
	case "mysql", "postgres":
		if p.DSN == "" {
			return errors.Errorf("dsn required for driver %q", p.Driver)
		}
	default:
		return errors.Errorf("unknown driver %q", p.Driver)
	}
	return nil
}
