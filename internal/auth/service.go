// Package auth implements the sign-up, login and logout flows on top of the
// user records and session markers.
//
// Contract:
//   - SignUp: validate the form, create the record, log "Account created".
//   - Login: the configured admin identity gets RoleAdmin without a record
//     lookup; everyone else is checked against the stored credential, gets a
//     session marker and a "User logged in" log entry.
//   - Logout: remove the session marker; regular users get "User logged out".
package auth

import (
	"context"
	"crypto/subtle"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/breathepure/internal/common"
	"github.com/dmitrijs2005/breathepure/internal/logging"
	"github.com/dmitrijs2005/breathepure/internal/models"
)

// Events written to the user log by the auth flows.
const (
	EventAccountCreated = "Account created"
	EventLoggedIn       = "User logged in"
	EventLoggedOut      = "User logged out"
)

// Users is the part of the user record manager the flows need.
type Users interface {
	Create(ctx context.Context, email, password, userName, deviceName string) error
	VerifyCredentials(ctx context.Context, email, password string) (*models.UserRecord, error)
	AppendLog(ctx context.Context, email, event string, level models.Level) error
}

// Sessions starts and ends session markers.
type Sessions interface {
	Start(ctx context.Context, email string) error
	End(ctx context.Context, email string) error
}

// AdminCredentials identify the reserved administrator.
type AdminCredentials struct {
	Email    string
	Password string
}

// SignUpRequest is the sign-up form.
type SignUpRequest struct {
	Email           string
	Password        string
	ConfirmPassword string
	UserName        string
	DeviceName      string
}

type Service struct {
	users    Users
	sessions Sessions
	admin    AdminCredentials
	log      logging.Logger
}

func NewService(users Users, sessions Sessions, admin AdminCredentials, log logging.Logger) *Service {
	return &Service{users: users, sessions: sessions, admin: admin, log: log}
}

// SignUp registers a new user. Every field is required and both password
// fields must match. Once the record is stored the sign-up succeeds, even
// if its "Account created" log entry cannot be written.
func (s *Service) SignUp(ctx context.Context, req SignUpRequest) error {
	req.Email = strings.TrimSpace(req.Email)
	req.UserName = strings.TrimSpace(req.UserName)
	req.DeviceName = strings.TrimSpace(req.DeviceName)

	if req.Email == "" || req.Password == "" || req.ConfirmPassword == "" ||
		req.UserName == "" || req.DeviceName == "" {
		return fmt.Errorf("%w: please fill in all fields", common.ErrValidation)
	}
	if req.Password != req.ConfirmPassword {
		return common.ErrPasswordMismatch
	}
	if s.isAdminEmail(req.Email) {
		return fmt.Errorf("%w: %s is reserved", common.ErrUserExists, req.Email)
	}

	if err := s.users.Create(ctx, req.Email, req.Password, req.UserName, req.DeviceName); err != nil {
		return err
	}
	// the account is stored; a failed log entry is only reported
	if err := s.users.AppendLog(ctx, req.Email, EventAccountCreated, models.LevelInfo); err != nil {
		s.log.Warn(ctx, "sign up log failed", "email", req.Email, "error", err)
	}

	s.log.Info(ctx, "sign up", "email", req.Email)
	return nil
}

// Login authenticates email/password and starts a session.
func (s *Service) Login(ctx context.Context, email, password string) (*models.Identity, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, fmt.Errorf("%w: please fill in all fields", common.ErrValidation)
	}

	if s.isAdminEmail(email) {
		if subtle.ConstantTimeCompare([]byte(password), []byte(s.admin.Password)) == 0 {
			s.log.Warn(ctx, "admin login rejected")
			return nil, common.ErrWrongPassword
		}
		if err := s.sessions.Start(ctx, s.admin.Email); err != nil {
			return nil, err
		}
		s.log.Info(ctx, "admin logged in")
		return &models.Identity{Email: s.admin.Email, Role: models.RoleAdmin}, nil
	}

	rec, err := s.users.VerifyCredentials(ctx, email, password)
	if err != nil {
		return nil, err
	}
	if err := s.sessions.Start(ctx, email); err != nil {
		return nil, err
	}
	if err := s.users.AppendLog(ctx, email, EventLoggedIn, models.LevelInfo); err != nil {
		return nil, err
	}

	s.log.Info(ctx, "user logged in", "email", email)
	return &models.Identity{
		Email:      email,
		Role:       models.RoleUser,
		UserName:   rec.UserName,
		DeviceName: rec.DeviceName,
	}, nil
}

// Logout ends the session of id. A nil identity is a no-op.
func (s *Service) Logout(ctx context.Context, id *models.Identity) error {
	if id == nil {
		return nil
	}
	if err := s.sessions.End(ctx, id.Email); err != nil {
		return err
	}
	if !id.IsAdmin() {
		if err := s.users.AppendLog(ctx, id.Email, EventLoggedOut, models.LevelInfo); err != nil {
			return err
		}
	}
	s.log.Info(ctx, "logged out", "email", id.Email)
	return nil
}

func (s *Service) isAdminEmail(email string) bool {
	return s.admin.Email != "" && strings.EqualFold(email, s.admin.Email)
}
