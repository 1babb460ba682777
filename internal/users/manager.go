// Package users manages the persisted user records ("user:<email>"): sign-up,
// credential checks and the rolling per-user activity log.
package users

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/breathepure/internal/common"
	"github.com/dmitrijs2005/breathepure/internal/config"
	"github.com/dmitrijs2005/breathepure/internal/cryptox"
	"github.com/dmitrijs2005/breathepure/internal/kv"
	"github.com/dmitrijs2005/breathepure/internal/logging"
	"github.com/dmitrijs2005/breathepure/internal/models"
)

// FeedAppender receives the fan-out of every per-user log entry.
type FeedAppender interface {
	Append(ctx context.Context, entry models.AdminLogEntry) error
}

// Options tunes a Manager. Zero values fall back to defaults.
type Options struct {
	// Scheme is config.SchemePlain or config.SchemeArgon2ID.
	Scheme string
	// LogLimit caps each user's log.
	LogLimit int
	// AdminEmail is excluded from the feed fan-out.
	AdminEmail string
}

type Manager struct {
	store      kv.Store
	feed       FeedAppender
	log        logging.Logger
	now        func() time.Time
	encode     func(password string) string
	limit      int
	adminEmail string
}

// NewManager wires a Manager. feed may be nil, in which case appends are not
// fanned out.
func NewManager(store kv.Store, feed FeedAppender, log logging.Logger, opts Options) *Manager {
	m := &Manager{
		store:      store,
		feed:       feed,
		log:        log,
		now:        time.Now,
		encode:     func(p string) string { return p },
		limit:      opts.LogLimit,
		adminEmail: opts.AdminEmail,
	}
	if m.limit <= 0 {
		m.limit = common.DefaultUserLogLimit
	}
	if opts.Scheme == config.SchemeArgon2ID {
		m.encode = cryptox.HashPassword
	}
	return m
}

// Create stores a new record with an empty log. The existence check and the
// write happen in one store Update, so a second Create for the same email
// fails with common.ErrUserExists and leaves the first record untouched.
func (m *Manager) Create(ctx context.Context, email, password, userName, deviceName string) error {
	rec := models.UserRecord{
		Password:   m.encode(password),
		UserName:   userName,
		DeviceName: deviceName,
		Logs:       []models.LogEntry{},
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}

	err = m.store.Update(ctx, common.UserKey(email), func(old []byte) ([]byte, error) {
		if old != nil {
			return nil, common.ErrUserExists
		}
		return data, nil
	})
	if err != nil {
		return fmt.Errorf("create user %s: %w", email, err)
	}

	m.log.Info(ctx, "user created", "email", email)
	return nil
}

// Get returns the stored record for email.
func (m *Manager) Get(ctx context.Context, email string) (*models.UserRecord, error) {
	data, err := m.store.Get(ctx, common.UserKey(email))
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, fmt.Errorf("user %s: %w", email, common.ErrNotFound)
	}
	return Decode(data)
}

// VerifyCredentials checks password against the stored credential, which
// may be plain text or an argon2id hash regardless of the current scheme.
func (m *Manager) VerifyCredentials(ctx context.Context, email, password string) (*models.UserRecord, error) {
	rec, err := m.Get(ctx, email)
	if err != nil {
		return nil, err
	}
	if !cryptox.Verify(rec.Password, password) {
		m.log.Warn(ctx, "wrong password", "email", email)
		return nil, common.ErrWrongPassword
	}
	return rec, nil
}

// AppendLog prepends a new entry to the user's log and trims it to the
// configured limit. Only the "logs" field of the stored record is rewritten.
// For every email other than the admin one the entry is also appended to
// the activity feed.
func (m *Manager) AppendLog(ctx context.Context, email, event string, level models.Level) error {
	if !level.Valid() {
		return fmt.Errorf("%w: unknown log level %q", common.ErrValidation, level)
	}
	entry := models.NewLogEntry(m.now(), event, level)

	err := m.store.Update(ctx, common.UserKey(email), func(old []byte) ([]byte, error) {
		if old == nil {
			return nil, common.ErrNotFound
		}
		var cur struct {
			Logs []models.LogEntry `json:"logs"`
		}
		if err := json.Unmarshal(old, &cur); err != nil {
			return nil, fmt.Errorf("%w: %w", common.ErrParse, err)
		}
		patch, err := json.Marshal(map[string][]models.LogEntry{
			"logs": prependEntry(cur.Logs, entry, m.limit),
		})
		if err != nil {
			return nil, err
		}
		return kv.MergeJSON(old, patch)
	})
	if err != nil {
		m.log.Error(ctx, "append log failed", "email", email, "error", err)
		return fmt.Errorf("append log for %s: %w", email, err)
	}
	m.log.Debug(ctx, "log appended", "email", email, "event", event)

	if m.feed == nil || m.isAdmin(email) {
		return nil
	}
	if err := m.feed.Append(ctx, entry.ForEmail(email)); err != nil {
		return fmt.Errorf("append activity feed for %s: %w", email, err)
	}
	return nil
}

func (m *Manager) isAdmin(email string) bool {
	return m.adminEmail != "" && strings.EqualFold(email, m.adminEmail)
}

// Decode parses a stored user record. A missing logs field decodes as an
// empty log.
func Decode(data []byte) (*models.UserRecord, error) {
	var rec models.UserRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrParse, err)
	}
	if rec.Logs == nil {
		rec.Logs = []models.LogEntry{}
	}
	return &rec, nil
}

func prependEntry(logs []models.LogEntry, entry models.LogEntry, limit int) []models.LogEntry {
	out := make([]models.LogEntry, 0, min(len(logs)+1, limit))
	out = append(out, entry)
	for _, e := range logs {
		if len(out) == limit {
			break
		}
		out = append(out, e)
	}
	return out
}
