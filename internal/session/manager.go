// Package session tracks which users are online.
//
// A user is online exactly when a marker exists under "session:<email>".
// Start writes it on login, End (logout) deletes it. Markers carry no
// expiry: a user who never logs out stays online.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dmitrijs2005/breathepure/internal/common"
	"github.com/dmitrijs2005/breathepure/internal/kv"
	"github.com/dmitrijs2005/breathepure/internal/logging"
	"github.com/dmitrijs2005/breathepure/internal/models"
)

type Manager struct {
	store kv.Store
	log   logging.Logger
	now   func() time.Time
}

func NewManager(store kv.Store, log logging.Logger) *Manager {
	return &Manager{store: store, log: log, now: time.Now}
}

// Start writes a fresh marker for email, overwriting any previous one.
func (m *Manager) Start(ctx context.Context, email string) error {
	marker := models.SessionMarker{
		LastActive: models.FormatTime(m.now()),
		IsActive:   true,
	}
	data, err := json.Marshal(marker)
	if err != nil {
		return err
	}
	if err := m.store.Set(ctx, common.SessionKey(email), data); err != nil {
		m.log.Error(ctx, "session start failed", "email", email, "error", err)
		return err
	}
	m.log.Info(ctx, "session started", "email", email)
	return nil
}

// End removes the marker for email. Ending a session that does not exist is
// not an error.
func (m *Manager) End(ctx context.Context, email string) error {
	if err := m.store.Delete(ctx, common.SessionKey(email)); err != nil {
		m.log.Error(ctx, "session end failed", "email", email, "error", err)
		return err
	}
	m.log.Info(ctx, "session ended", "email", email)
	return nil
}

// IsActive reports whether a marker exists for email. The marker content is
// not inspected.
func (m *Manager) IsActive(ctx context.Context, email string) (bool, error) {
	data, err := m.store.Get(ctx, common.SessionKey(email))
	if err != nil {
		return false, err
	}
	return data != nil, nil
}

// LastActiveOf returns the marker's lastActive time, or nil when there is no
// marker. A marker that cannot be decoded is also reported as nil; the
// failure is only logged.
func (m *Manager) LastActiveOf(ctx context.Context, email string) (*time.Time, error) {
	data, err := m.store.Get(ctx, common.SessionKey(email))
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, nil
	}

	ts, err := decodeLastActive(data)
	if err != nil {
		m.log.Warn(ctx, "ignoring malformed session marker", "email", email, "error", err)
		return nil, nil
	}
	return &ts, nil
}

func decodeLastActive(data []byte) (time.Time, error) {
	var marker models.SessionMarker
	if err := json.Unmarshal(data, &marker); err != nil {
		return time.Time{}, fmt.Errorf("%w: %w", common.ErrParse, err)
	}
	ts, err := models.ParseTime(marker.LastActive)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %w", common.ErrParse, err)
	}
	return ts, nil
}
