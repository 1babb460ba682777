package common

// Persisted key layout. Every value is JSON.
const (
	// UserKeyPrefix prefixes a UserRecord key: "user:<email>".
	UserKeyPrefix = "user:"
	// SessionKeyPrefix prefixes a SessionMarker key: "session:<email>".
	SessionKeyPrefix = "session:"
	// AdminLogsKey holds the global activity feed.
	AdminLogsKey = "admin:logs"
)

// Retention caps, applied by position on every write.
const (
	DefaultUserLogLimit  = 100
	DefaultAdminLogLimit = 500
)

// UserKey returns the store key of the user record for email.
func UserKey(email string) string { return UserKeyPrefix + email }

// SessionKey returns the store key of the session marker for email.
func SessionKey(email string) string { return SessionKeyPrefix + email }
