// Package config loads runtime configuration.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected with -c / --config.
//  3. Command-line flags that were set explicitly.
//
// Flags are registered on a pflag.FlagSet by BindFlags (the CLI passes the
// cobra root's persistent flags); Resolve applies the JSON file underneath
// any flag the user set and validates the result.
//
// # JSON schema
//
// Intervals use timex.Duration, so values can be strings like "5s" or
// integer nanoseconds. Absent keys keep their current value.
//
//	{
//	  "database_driver": "sqlite",
//	  "database_dsn": "data/breathe.db",
//	  "admin_email": "admin",
//	  "admin_password": "change-me",
//	  "credential_scheme": "argon2id",
//	  "refresh_interval": "5s",
//	  "readings_interval": "5s",
//	  "user_log_limit": 100,
//	  "admin_log_limit": 500,
//	  "log_level": "info",
//	  "log_format": "json"
//	}
package config
