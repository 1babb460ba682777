package models

// UserRecord is the persisted profile of one registered user, stored under
// "user:<email>". The email is the natural key and is not part of the value.
//
// Password is whatever the configured credential scheme produced: the plain
// text for the "plain" scheme, an encoded argon2id hash otherwise.
type UserRecord struct {
	Password   string     `json:"password"`
	UserName   string     `json:"userName"`
	DeviceName string     `json:"deviceName"`
	Logs       []LogEntry `json:"logs"`
}

// Role distinguishes the reserved administrator identity from regular users.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// Identity is the result of a successful login.
type Identity struct {
	Email      string
	Role       Role
	UserName   string
	DeviceName string
}

// IsAdmin reports whether the identity carries the admin role.
func (i *Identity) IsAdmin() bool {
	return i != nil && i.Role == RoleAdmin
}
