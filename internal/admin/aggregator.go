// Package admin builds the read-only administrator view: every registered
// user with online status and a merged, most-recent-first activity log.
package admin

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/dmitrijs2005/breathepure/internal/activity"
	"github.com/dmitrijs2005/breathepure/internal/common"
	"github.com/dmitrijs2005/breathepure/internal/kv"
	"github.com/dmitrijs2005/breathepure/internal/logging"
	"github.com/dmitrijs2005/breathepure/internal/models"
	"github.com/dmitrijs2005/breathepure/internal/users"
)

// Sessions answers online-status questions.
type Sessions interface {
	IsActive(ctx context.Context, email string) (bool, error)
	LastActiveOf(ctx context.Context, email string) (*time.Time, error)
}

// FeedReader reads the global activity feed.
type FeedReader interface {
	List(ctx context.Context) ([]models.AdminLogEntry, error)
}

type Aggregator struct {
	store      kv.Store
	sessions   Sessions
	feed       FeedReader
	log        logging.Logger
	adminEmail string
}

func NewAggregator(store kv.Store, sessions Sessions, feed FeedReader, log logging.Logger, adminEmail string) *Aggregator {
	return &Aggregator{
		store:      store,
		sessions:   sessions,
		feed:       feed,
		log:        log,
		adminEmail: adminEmail,
	}
}

// ListUsers scans every user record, skipping the admin identity, in key
// order. Records that cannot be decoded are skipped and logged.
func (a *Aggregator) ListUsers(ctx context.Context) ([]models.UserSummary, error) {
	keys, err := a.store.Keys(ctx, common.UserKeyPrefix)
	if err != nil {
		return nil, err
	}
	feed, err := a.feed.List(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]models.UserSummary, 0, len(keys))
	for _, key := range keys {
		email := strings.TrimPrefix(key, common.UserKeyPrefix)
		if strings.EqualFold(email, a.adminEmail) {
			continue
		}

		data, err := a.store.Get(ctx, key)
		if err != nil {
			return nil, err
		}
		if data == nil {
			// removed between Keys and Get
			continue
		}
		rec, err := users.Decode(data)
		if err != nil {
			if errors.Is(err, common.ErrParse) {
				a.log.Warn(ctx, "skipping malformed user record", "email", email, "error", err)
				continue
			}
			return nil, err
		}

		online, err := a.sessions.IsActive(ctx, email)
		if err != nil {
			return nil, err
		}
		last, err := a.sessions.LastActiveOf(ctx, email)
		if err != nil {
			return nil, err
		}

		out = append(out, models.UserSummary{
			Email:      email,
			UserName:   rec.UserName,
			DeviceName: rec.DeviceName,
			IsLoggedIn: online,
			LastActive: last,
			Logs:       MergeLogs(rec.Logs, activity.FilterByEmail(feed, email)),
		})
	}
	return out, nil
}

// ActiveUsers returns the sorted, distinct emails of users that are online.
func (a *Aggregator) ActiveUsers(ctx context.Context) ([]string, error) {
	all, err := a.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	active := make([]string, 0)
	for _, u := range all {
		if u.IsLoggedIn {
			active = append(active, u.Email)
		}
	}
	return active, nil
}

// Watch calls fn with a fresh ListUsers result right away and then every
// interval until ctx is done. A failed scan is passed to fn as well; the
// next tick tries again.
func (a *Aggregator) Watch(ctx context.Context, interval time.Duration, fn func([]models.UserSummary, error)) {
	fn(a.ListUsers(ctx))

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			fn(a.ListUsers(ctx))
		case <-ctx.Done():
			return
		}
	}
}

// MergeLogs combines a user's own log with that user's feed entries into one
// list sorted most recent first. Every own entry is kept. A feed entry is
// dropped when it mirrors an own entry (same time, event and level), each
// own entry absorbing at most one feed entry.
func MergeLogs(own []models.LogEntry, feed []models.AdminLogEntry) []models.LogEntry {
	type ident struct {
		time  string
		event string
		level models.Level
	}
	mirrors := make(map[ident]int, len(own))
	out := make([]models.LogEntry, 0, len(own)+len(feed))

	for _, e := range own {
		mirrors[ident{e.Time, e.Event, e.Level}]++
		out = append(out, e)
	}
	for _, fe := range feed {
		e := fe.Entry()
		id := ident{e.Time, e.Event, e.Level}
		if mirrors[id] > 0 {
			mirrors[id]--
			continue
		}
		out = append(out, e)
	}

	sort.SliceStable(out, func(i, j int) bool { return models.Newer(out[i], out[j]) })
	return out
}
