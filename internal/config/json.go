package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/breathepure/internal/timex"
	"github.com/spf13/pflag"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Pointer
// fields tell "absent" apart from zero values.
type JsonConfig struct {
	DatabaseDriver   *string         `json:"database_driver"`
	DatabaseDSN      *string         `json:"database_dsn"`
	AdminEmail       *string         `json:"admin_email"`
	AdminPassword    *string         `json:"admin_password"`
	CredentialScheme *string         `json:"credential_scheme"`
	RefreshInterval  *timex.Duration `json:"refresh_interval"`
	ReadingsInterval *timex.Duration `json:"readings_interval"`
	UserLogLimit     *int            `json:"user_log_limit"`
	AdminLogLimit    *int            `json:"admin_log_limit"`
	LogLevel         *string         `json:"log_level"`
	LogFormat        *string         `json:"log_format"`
}

// readJson loads a JsonConfig from path.
func readJson(path string) (*JsonConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	jc := &JsonConfig{}
	if err := json.Unmarshal(data, jc); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return jc, nil
}

// apply copies the values present in jc into cfg, skipping every field
// whose flag reports true from explicit.
func (jc *JsonConfig) apply(cfg *Config, explicit func(flag string) bool) {
	setString := func(flag string, src *string, dst *string) {
		if src != nil && !explicit(flag) {
			*dst = *src
		}
	}
	setString(FlagDriver, jc.DatabaseDriver, &cfg.DatabaseDriver)
	setString(FlagDSN, jc.DatabaseDSN, &cfg.DatabaseDSN)
	setString(FlagAdminEmail, jc.AdminEmail, &cfg.AdminEmail)
	setString(FlagAdminPassword, jc.AdminPassword, &cfg.AdminPassword)
	setString(FlagCredentialScheme, jc.CredentialScheme, &cfg.CredentialScheme)
	setString(FlagLogLevel, jc.LogLevel, &cfg.LogLevel)
	setString(FlagLogFormat, jc.LogFormat, &cfg.LogFormat)

	if jc.RefreshInterval != nil && !explicit(FlagRefreshInterval) {
		cfg.RefreshInterval = jc.RefreshInterval.Duration
	}
	if jc.ReadingsInterval != nil && !explicit(FlagReadingsInterval) {
		cfg.ReadingsInterval = jc.ReadingsInterval.Duration
	}
	if jc.UserLogLimit != nil && !explicit(FlagUserLogLimit) {
		cfg.UserLogLimit = *jc.UserLogLimit
	}
	if jc.AdminLogLimit != nil && !explicit(FlagAdminLogLimit) {
		cfg.AdminLogLimit = *jc.AdminLogLimit
	}
}

// Resolve finishes loading after fs was parsed: it overlays the JSON file
// named by --config (if any) beneath explicitly set flags, then validates.
func Resolve(cfg *Config, fs *pflag.FlagSet) error {
	path, err := fs.GetString(FlagConfig)
	if err != nil {
		return err
	}
	if path != "" {
		jc, err := readJson(path)
		if err != nil {
			return err
		}
		jc.apply(cfg, fs.Changed)
	}
	return cfg.Validate()
}
