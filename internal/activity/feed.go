// Package activity maintains the global activity feed stored under
// "admin:logs": a most-recent-first list of AdminLogEntry shared by all
// users and capped by position.
package activity

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/breathepure/internal/common"
	"github.com/dmitrijs2005/breathepure/internal/kv"
	"github.com/dmitrijs2005/breathepure/internal/logging"
	"github.com/dmitrijs2005/breathepure/internal/models"
)

// Feed is the only writer of the feed key within a process. Appends are
// serialized by mu and each one is a single atomic store Update, so
// concurrent appends from different users never drop each other.
type Feed struct {
	mu    sync.Mutex
	store kv.Store
	log   logging.Logger
	limit int
}

// NewFeed returns a feed keeping at most limit entries. A non-positive limit
// falls back to common.DefaultAdminLogLimit.
func NewFeed(store kv.Store, log logging.Logger, limit int) *Feed {
	if limit <= 0 {
		limit = common.DefaultAdminLogLimit
	}
	return &Feed{store: store, log: log, limit: limit}
}

// Append prepends entry and drops whatever falls past the cap.
//
// A stored feed that cannot be decoded is replaced rather than failing the
// append.
func (f *Feed) Append(ctx context.Context, entry models.AdminLogEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	err := f.store.Update(ctx, common.AdminLogsKey, func(old []byte) ([]byte, error) {
		entries, err := decode(old)
		if err != nil {
			f.log.Warn(ctx, "resetting malformed activity feed", "error", err)
			entries = nil
		}
		entries = prepend(entries, entry, f.limit)
		return json.Marshal(entries)
	})
	if err != nil {
		f.log.Error(ctx, "activity feed append failed", "email", entry.Email, "error", err)
		return err
	}
	return nil
}

// List returns the feed, most recent first. A missing or malformed feed is
// reported as empty.
func (f *Feed) List(ctx context.Context) ([]models.AdminLogEntry, error) {
	data, err := f.store.Get(ctx, common.AdminLogsKey)
	if err != nil {
		return nil, err
	}
	entries, err := decode(data)
	if err != nil {
		f.log.Warn(ctx, "ignoring malformed activity feed", "error", err)
		return []models.AdminLogEntry{}, nil
	}
	return entries, nil
}

// ForUser returns the feed entries of one user, in feed order.
func (f *Feed) ForUser(ctx context.Context, email string) ([]models.AdminLogEntry, error) {
	all, err := f.List(ctx)
	if err != nil {
		return nil, err
	}
	return FilterByEmail(all, email), nil
}

// FilterByEmail keeps the entries belonging to email.
func FilterByEmail(entries []models.AdminLogEntry, email string) []models.AdminLogEntry {
	out := make([]models.AdminLogEntry, 0)
	for _, e := range entries {
		if e.Email == email {
			out = append(out, e)
		}
	}
	return out
}

func decode(data []byte) ([]models.AdminLogEntry, error) {
	entries := []models.AdminLogEntry{}
	if data == nil {
		return entries, nil
	}
	if err := json.Unmarshal(data, &entries); err != nil {
		return []models.AdminLogEntry{}, fmt.Errorf("%w: %w", common.ErrParse, err)
	}
	if entries == nil {
		entries = []models.AdminLogEntry{}
	}
	return entries, nil
}

func prepend(entries []models.AdminLogEntry, entry models.AdminLogEntry, limit int) []models.AdminLogEntry {
	out := make([]models.AdminLogEntry, 0, min(len(entries)+1, limit))
	out = append(out, entry)
	for _, e := range entries {
		if len(out) == limit {
			break
		}
		out = append(out, e)
	}
	return out
}
