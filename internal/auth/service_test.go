package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/dmitrijs2005/breathepure/internal/activity"
	"github.com/dmitrijs2005/breathepure/internal/common"
	"github.com/dmitrijs2005/breathepure/internal/kv"
	"github.com/dmitrijs2005/breathepure/internal/logging"
	"github.com/dmitrijs2005/breathepure/internal/models"
	"github.com/dmitrijs2005/breathepure/internal/session"
	"github.com/dmitrijs2005/breathepure/internal/users"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---- helpers ----

type fixture struct {
	svc      *Service
	sessions *session.Manager
	users    *users.Manager
	feed     *activity.Feed
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store, err := kv.Open(context.Background(), kv.DriverSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	log := logging.Discard()
	feed := activity.NewFeed(store, log, 0)
	um := users.NewManager(store, feed, log, users.Options{AdminEmail: "admin"})
	sm := session.NewManager(store, log)
	return &fixture{
		svc:      NewService(um, sm, AdminCredentials{Email: "admin", Password: "123"}, log),
		sessions: sm,
		users:    um,
		feed:     feed,
	}
}

func validSignUp() SignUpRequest {
	return SignUpRequest{
		Email:           "ann@home",
		Password:        "pw",
		ConfirmPassword: "pw",
		UserName:        "Ann",
		DeviceName:      "Purifier",
	}
}

// fakeSessions lets a test fail session writes.
type fakeSessions struct {
	StartErr, EndErr error
	Started, Ended   []string
}

func (f *fakeSessions) Start(ctx context.Context, email string) error {
	f.Started = append(f.Started, email)
	return f.StartErr
}

func (f *fakeSessions) End(ctx context.Context, email string) error {
	f.Ended = append(f.Ended, email)
	return f.EndErr
}

// failingLogUsers fails every log append.
type failingLogUsers struct {
	Users
	err error
}

func (f failingLogUsers) AppendLog(ctx context.Context, email, event string, level models.Level) error {
	return f.err
}

// ---- tests ----

func TestSignUp_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		mutate func(*SignUpRequest)
		want   error
	}{
		{"missing email", func(r *SignUpRequest) { r.Email = "  " }, common.ErrValidation},
		{"missing password", func(r *SignUpRequest) { r.Password = "" }, common.ErrValidation},
		{"missing confirm", func(r *SignUpRequest) { r.ConfirmPassword = "" }, common.ErrValidation},
		{"missing user name", func(r *SignUpRequest) { r.UserName = "" }, common.ErrValidation},
		{"missing device", func(r *SignUpRequest) { r.DeviceName = "" }, common.ErrValidation},
		{"mismatch", func(r *SignUpRequest) { r.ConfirmPassword = "other" }, common.ErrPasswordMismatch},
		{"reserved admin", func(r *SignUpRequest) { r.Email = "ADMIN" }, common.ErrUserExists},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validSignUp()
			tt.mutate(&req)
			err := f.svc.SignUp(ctx, req)
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestSignUp_CreatesRecordAndLogs(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.svc.SignUp(ctx, validSignUp()))

	rec, err := f.users.Get(ctx, "ann@home")
	require.NoError(t, err)
	assert.Equal(t, "Ann", rec.UserName)
	require.Len(t, rec.Logs, 1)
	assert.Equal(t, EventAccountCreated, rec.Logs[0].Event)

	err = f.svc.SignUp(ctx, validSignUp())
	assert.ErrorIs(t, err, common.ErrUserExists)
}

func TestSignUp_SucceedsWhenLogAppendFails(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := NewService(failingLogUsers{Users: f.users, err: common.ErrStorage}, f.sessions,
		AdminCredentials{Email: "admin", Password: "123"}, logging.Discard())

	require.NoError(t, svc.SignUp(ctx, validSignUp()))

	rec, err := f.users.Get(ctx, "ann@home")
	require.NoError(t, err)
	assert.Equal(t, "Ann", rec.UserName)
	assert.Empty(t, rec.Logs)
}

func TestLogin_RegularUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.svc.SignUp(ctx, validSignUp()))

	id, err := f.svc.Login(ctx, "ann@home", "pw")
	require.NoError(t, err)
	assert.Equal(t, &models.Identity{
		Email:      "ann@home",
		Role:       models.RoleUser,
		UserName:   "Ann",
		DeviceName: "Purifier",
	}, id)
	assert.False(t, id.IsAdmin())

	active, err := f.sessions.IsActive(ctx, "ann@home")
	require.NoError(t, err)
	assert.True(t, active)

	rec, err := f.users.Get(ctx, "ann@home")
	require.NoError(t, err)
	assert.Equal(t, EventLoggedIn, rec.Logs[0].Event)

	feed, err := f.feed.ForUser(ctx, "ann@home")
	require.NoError(t, err)
	require.Len(t, feed, 2)
	assert.Equal(t, EventLoggedIn, feed[0].Event)
}

func TestLogin_Errors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.svc.SignUp(ctx, validSignUp()))

	_, err := f.svc.Login(ctx, "", "pw")
	assert.ErrorIs(t, err, common.ErrValidation)

	_, err = f.svc.Login(ctx, "ghost@home", "pw")
	assert.ErrorIs(t, err, common.ErrNotFound)

	_, err = f.svc.Login(ctx, "ann@home", "PW")
	assert.ErrorIs(t, err, common.ErrWrongPassword)

	active, err := f.sessions.IsActive(ctx, "ann@home")
	require.NoError(t, err)
	assert.False(t, active, "failed login must not start a session")
}

func TestLogin_Admin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	id, err := f.svc.Login(ctx, "Admin", "123")
	require.NoError(t, err)
	assert.True(t, id.IsAdmin())
	assert.Equal(t, "admin", id.Email)

	active, err := f.sessions.IsActive(ctx, "admin")
	require.NoError(t, err)
	assert.True(t, active)

	feed, err := f.feed.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, feed)

	_, err = f.svc.Login(ctx, "admin", "1234")
	assert.ErrorIs(t, err, common.ErrWrongPassword)
}

func TestLogout(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.svc.SignUp(ctx, validSignUp()))

	id, err := f.svc.Login(ctx, "ann@home", "pw")
	require.NoError(t, err)
	require.NoError(t, f.svc.Logout(ctx, id))

	active, err := f.sessions.IsActive(ctx, "ann@home")
	require.NoError(t, err)
	assert.False(t, active)

	rec, err := f.users.Get(ctx, "ann@home")
	require.NoError(t, err)
	assert.Equal(t, EventLoggedOut, rec.Logs[0].Event)

	require.NoError(t, f.svc.Logout(ctx, nil))
}

func TestLogout_AdminWritesNoLog(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	id, err := f.svc.Login(ctx, "admin", "123")
	require.NoError(t, err)
	require.NoError(t, f.svc.Logout(ctx, id))

	feed, err := f.feed.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, feed)
}

func TestSessionErrorsPropagate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.svc.SignUp(ctx, validSignUp()))

	boom := errors.New("store down")
	fs := &fakeSessions{StartErr: boom, EndErr: boom}
	svc := NewService(f.users, fs, AdminCredentials{Email: "admin", Password: "123"}, logging.Discard())

	_, err := svc.Login(ctx, "ann@home", "pw")
	assert.ErrorIs(t, err, boom)
	_, err = svc.Login(ctx, "admin", "123")
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"ann@home", "admin"}, fs.Started)

	err = svc.Logout(ctx, &models.Identity{Email: "ann@home", Role: models.RoleUser})
	assert.ErrorIs(t, err, boom)
}
