package config

import (
	"fmt"
	"time"

	"github.com/dmitrijs2005/breathepure/internal/common"
)

// Credential schemes.
const (
	SchemePlain    = "plain"
	SchemeArgon2ID = "argon2id"
)

// Config holds runtime settings.
//
// Fields:
//   - DatabaseDriver / DatabaseDSN: key/value store backend ("sqlite",
//     "postgres" or "memory") and its connection string.
//   - AdminEmail / AdminPassword: the reserved administrator identity.
//   - CredentialScheme: how new passwords are stored ("plain" stores them
//     verbatim, "argon2id" stores a salted hash).
//   - RefreshInterval: admin view polling period.
//   - ReadingsInterval: simulated sensor update period.
//   - UserLogLimit / AdminLogLimit: retention caps of the per-user logs and
//     the global feed.
//   - LogLevel / LogFormat: slog level and handler ("text" or "json").
type Config struct {
	DatabaseDriver   string
	DatabaseDSN      string
	AdminEmail       string
	AdminPassword    string
	CredentialScheme string
	RefreshInterval  time.Duration
	ReadingsInterval time.Duration
	UserLogLimit     int
	AdminLogLimit    int
	LogLevel         string
	LogFormat        string
}

// LoadDefaults populates c with sensible defaults.
// NOTE: the default admin password is only fit for local play.
func (c *Config) LoadDefaults() {
	c.DatabaseDriver = "sqlite"
	c.DatabaseDSN = "breathe.db"
	c.AdminEmail = "admin"
	c.AdminPassword = "123"
	c.CredentialScheme = SchemePlain
	c.RefreshInterval = 5 * time.Second
	c.ReadingsInterval = 5 * time.Second
	c.UserLogLimit = common.DefaultUserLogLimit
	c.AdminLogLimit = common.DefaultAdminLogLimit
	c.LogLevel = "info"
	c.LogFormat = "text"
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch c.DatabaseDriver {
	case "sqlite", "postgres", "memory":
	default:
		return fmt.Errorf("%w: %q", common.ErrUnsupportedDriver, c.DatabaseDriver)
	}
	switch c.CredentialScheme {
	case SchemePlain, SchemeArgon2ID:
	default:
		return fmt.Errorf("%w: unknown credential scheme %q", common.ErrValidation, c.CredentialScheme)
	}
	if c.AdminEmail == "" {
		return fmt.Errorf("%w: admin email must not be empty", common.ErrValidation)
	}
	if c.UserLogLimit <= 0 || c.AdminLogLimit <= 0 {
		return fmt.Errorf("%w: log limits must be positive", common.ErrValidation)
	}
	if c.RefreshInterval <= 0 || c.ReadingsInterval <= 0 {
		return fmt.Errorf("%w: intervals must be positive", common.ErrValidation)
	}
	return nil
}
