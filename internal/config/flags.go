package config

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/pflag"
)

// Flag names, shared with the JSON overlay to decide precedence.
const (
	FlagConfig           = "config"
	FlagDriver           = "driver"
	FlagDSN              = "dsn"
	FlagAdminEmail       = "admin-email"
	FlagAdminPassword    = "admin-password"
	FlagCredentialScheme = "credential-scheme"
	FlagRefreshInterval  = "refresh-interval"
	FlagReadingsInterval = "readings-interval"
	FlagUserLogLimit     = "user-log-limit"
	FlagAdminLogLimit    = "admin-log-limit"
	FlagLogLevel         = "log-level"
	FlagLogFormat        = "log-format"
)

// BindFlags registers the configuration flags on fs, writing straight into
// cfg. Current cfg values become the flag defaults, so call LoadDefaults
// first.
//
//	-c, --config string             path to a JSON config file
//	-d, --driver string             storage driver (sqlite|postgres|memory)
//	-s, --dsn string                storage DSN / SQLite file path
//	    --admin-email string        reserved admin identity
//	    --admin-password string     reserved admin password
//	    --credential-scheme string  plain|argon2id
//	-i, --refresh-interval int      admin view refresh interval (in seconds)
//	    --readings-interval int     simulated readings interval (in seconds)
//	    --user-log-limit int        per-user log retention
//	    --admin-log-limit int       global feed retention
//	    --log-level string          debug|info|warn|error
//	    --log-format string         text|json
func BindFlags(fs *pflag.FlagSet, cfg *Config) {
	fs.StringP(FlagConfig, "c", "", "path to config file")
	fs.StringVarP(&cfg.DatabaseDriver, FlagDriver, "d", cfg.DatabaseDriver, "storage driver (sqlite|postgres|memory)")
	fs.StringVarP(&cfg.DatabaseDSN, FlagDSN, "s", cfg.DatabaseDSN, "storage DSN or SQLite file path")
	fs.StringVar(&cfg.AdminEmail, FlagAdminEmail, cfg.AdminEmail, "reserved admin identity")
	fs.StringVar(&cfg.AdminPassword, FlagAdminPassword, cfg.AdminPassword, "reserved admin password")
	fs.StringVar(&cfg.CredentialScheme, FlagCredentialScheme, cfg.CredentialScheme, "credential scheme for new accounts (plain|argon2id)")
	fs.VarP(&secondsValue{d: &cfg.RefreshInterval}, FlagRefreshInterval, "i", "admin view refresh interval (in seconds)")
	fs.Var(&secondsValue{d: &cfg.ReadingsInterval}, FlagReadingsInterval, "simulated readings interval (in seconds)")
	fs.IntVar(&cfg.UserLogLimit, FlagUserLogLimit, cfg.UserLogLimit, "per-user log retention")
	fs.IntVar(&cfg.AdminLogLimit, FlagAdminLogLimit, cfg.AdminLogLimit, "global activity feed retention")
	fs.StringVar(&cfg.LogLevel, FlagLogLevel, cfg.LogLevel, "log level (debug|info|warn|error)")
	fs.StringVar(&cfg.LogFormat, FlagLogFormat, cfg.LogFormat, "log format (text|json)")
}

// secondsValue is a pflag.Value holding a duration entered as whole seconds.
type secondsValue struct {
	d *time.Duration
}

func (v *secondsValue) String() string {
	if v.d == nil {
		return "0"
	}
	return strconv.Itoa(int(v.d.Seconds()))
}

func (v *secondsValue) Set(s string) error {
	n, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("expected whole seconds, got %q", s)
	}
	*v.d = time.Duration(n) * time.Second
	return nil
}

func (v *secondsValue) Type() string { return "int" }
