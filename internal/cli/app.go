package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/dmitrijs2005/breathepure/internal/activity"
	"github.com/dmitrijs2005/breathepure/internal/admin"
	"github.com/dmitrijs2005/breathepure/internal/auth"
	"github.com/dmitrijs2005/breathepure/internal/common"
	"github.com/dmitrijs2005/breathepure/internal/config"
	"github.com/dmitrijs2005/breathepure/internal/kv"
	"github.com/dmitrijs2005/breathepure/internal/logging"
	"github.com/dmitrijs2005/breathepure/internal/models"
	"github.com/dmitrijs2005/breathepure/internal/readings"
	"github.com/dmitrijs2005/breathepure/internal/session"
	"github.com/dmitrijs2005/breathepure/internal/users"
)

type authService interface {
	SignUp(ctx context.Context, req auth.SignUpRequest) error
	Login(ctx context.Context, email, password string) (*models.Identity, error)
	Logout(ctx context.Context, id *models.Identity) error
}

type adminView interface {
	ListUsers(ctx context.Context) ([]models.UserSummary, error)
	ActiveUsers(ctx context.Context) ([]string, error)
	Watch(ctx context.Context, interval time.Duration, fn func([]models.UserSummary, error))
}

type feedReader interface {
	List(ctx context.Context) ([]models.AdminLogEntry, error)
	ForUser(ctx context.Context, email string) ([]models.AdminLogEntry, error)
}

type userReader interface {
	Get(ctx context.Context, email string) (*models.UserRecord, error)
}

// App holds the wired services and the REPL state (who is logged in).
type App struct {
	config   *config.Config
	store    kv.Store
	auth     authService
	admin    adminView
	feed     feedReader
	users    userReader
	sim      *readings.Simulator
	controls *readings.Controls
	log      logging.Logger
	identity *models.Identity
	reader   *bufio.Reader
	out      io.Writer
	hidden   bool
}

// NewApp opens the configured store and wires every service on top of it.
// Close releases the store.
func NewApp(ctx context.Context, c *config.Config, log logging.Logger, in io.Reader, out io.Writer) (*App, error) {
	store, err := kv.Open(ctx, c.DatabaseDriver, c.DatabaseDSN)
	if err != nil {
		log.Error(ctx, "error opening store", "driver", c.DatabaseDriver, "error", err)
		return nil, err
	}

	feed := activity.NewFeed(store, log, c.AdminLogLimit)
	sessions := session.NewManager(store, log)
	um := users.NewManager(store, feed, log, users.Options{
		Scheme:     c.CredentialScheme,
		LogLimit:   c.UserLogLimit,
		AdminEmail: c.AdminEmail,
	})

	return &App{
		config: c,
		store:  store,
		auth: auth.NewService(um, sessions, auth.AdminCredentials{
			Email:    c.AdminEmail,
			Password: c.AdminPassword,
		}, log),
		admin:    admin.NewAggregator(store, sessions, feed, log, c.AdminEmail),
		feed:     feed,
		users:    um,
		sim:      readings.NewSimulator(uint64(time.Now().UnixNano())),
		controls: readings.NewControls(),
		log:      log,
		reader:   bufio.NewReader(in),
		out:      out,
		hidden:   isTerminal(in),
	}, nil
}

func (a *App) Close() error {
	if a.store == nil {
		return nil
	}
	return a.store.Close()
}

func (a *App) isLoggedIn() bool {
	return a.identity != nil
}

func (a *App) isAdmin() bool {
	return a.identity.IsAdmin()
}

func (a *App) requireLogin() error {
	if !a.isLoggedIn() {
		return errNotLoggedIn
	}
	return nil
}

func (a *App) requireAdmin() error {
	if err := a.requireLogin(); err != nil {
		return err
	}
	if !a.isAdmin() {
		return common.ErrForbidden
	}
	return nil
}

func (a *App) getStatus() string {
	switch {
	case a.identity == nil:
		return "(guest)"
	case a.identity.IsAdmin():
		return fmt.Sprintf("(%s admin)", a.identity.Email)
	default:
		return fmt.Sprintf("(%s)", a.identity.Email)
	}
}

// StartFilterWear wears the filter every interval until ctx is done.
func (a *App) StartFilterWear(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			health := a.controls.Wear()
			a.log.Debug(ctx, "filter wear", "health", health)
		case <-ctx.Done():
			return
		}
	}
}

var errNotLoggedIn = errors.New("not logged in")

// describe turns an error into the message shown to the user.
func describe(err error) string {
	switch {
	case errors.Is(err, common.ErrUserExists):
		return "User already exists!"
	case errors.Is(err, common.ErrNotFound):
		return "User not found!"
	case errors.Is(err, common.ErrWrongPassword):
		return "Incorrect password!"
	case errors.Is(err, common.ErrPasswordMismatch):
		return "Passwords do not match"
	case errors.Is(err, common.ErrValidation):
		return "Please fill in all fields"
	case errors.Is(err, common.ErrForbidden):
		return "This command is only available to the admin"
	case errors.Is(err, errNotLoggedIn):
		return "Please log in first"
	case errors.Is(err, common.ErrStorage):
		return "Storage error, please try again"
	default:
		return "Something went wrong: " + err.Error()
	}
}
