// Package auth is the credential store: it registers users, verifies
// passwords and resolves session references into identities.
package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/badoux/checkmail"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"smartcents/internal/core"
	"smartcents/internal/log"
	"smartcents/internal/ports"
)

const (
	minPasswordLength = 8
	maxPasswordLength = 72 // bcrypt ignores anything longer
)

type Service struct {
	users    ports.UserStore
	sessions *Sessions
	cost     int
	logger   *log.Logger
	now      func() time.Time

	dummyOnce sync.Once
	dummyHash []byte
}

func NewService(users ports.UserStore, sessions *Sessions, cost int, logger *log.Logger) *Service {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	if logger == nil {
		logger = log.Nop()
	}
	return &Service{
		users:    users,
		sessions: sessions,
		cost:     cost,
		logger:   logger.WithComponent(log.ComponentAuth),
		now:      time.Now,
	}
}

// Register creates a user and returns its identity. Registering an email that
// is already taken fails with core.ErrDuplicateIdentity, including when two
// registrations race past the explicit check.
func (s *Service) Register(ctx context.Context, email, password string) (core.Identity, error) {
	email = core.NormalizeEmail(email)
	if err := checkmail.ValidateFormat(email); err != nil {
		return core.Identity{}, fmt.Errorf("%w: %s", core.ErrInvalidEmail, email)
	}
	if err := validatePassword(password); err != nil {
		return core.Identity{}, err
	}

	_, err := s.users.UserByEmail(ctx, email)
	switch {
	case err == nil:
		return core.Identity{}, core.ErrDuplicateIdentity
	case !errors.Is(err, core.ErrUserNotFound):
		return core.Identity{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return core.Identity{}, fmt.Errorf("hash password: %w", err)
	}

	user := core.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    s.now(),
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		return core.Identity{}, err
	}

	s.logger.InfoContext(ctx, "User registered", log.FieldUserID, user.ID)
	return core.Identity{UserID: user.ID, Email: user.Email}, nil
}

// Authenticate verifies the password. Unknown emails and wrong passwords are
// indistinguishable to the caller.
func (s *Service) Authenticate(ctx context.Context, email, password string) (core.Identity, error) {
	email = core.NormalizeEmail(email)

	user, err := s.users.UserByEmail(ctx, email)
	if errors.Is(err, core.ErrUserNotFound) {
		// keep timing close to the wrong-password path
		_ = bcrypt.CompareHashAndPassword(s.dummy(), []byte(password))
		return core.Identity{}, core.ErrInvalidCredentials
	}
	if err != nil {
		return core.Identity{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.logger.WarnContext(ctx, "Authentication failed", log.FieldUserID, user.ID)
		return core.Identity{}, core.ErrInvalidCredentials
	}
	return core.Identity{UserID: user.ID, Email: user.Email}, nil
}

// Login authenticates and issues a session reference.
func (s *Service) Login(ctx context.Context, email, password string) (core.Identity, string, error) {
	id, err := s.Authenticate(ctx, email, password)
	if err != nil {
		return core.Identity{}, "", err
	}
	token, _, err := s.sessions.Issue(id.UserID)
	if err != nil {
		return core.Identity{}, "", err
	}
	s.logger.InfoContext(ctx, "Session issued", log.FieldUserID, id.UserID)
	return id, token, nil
}

// CurrentIdentity resolves a session reference. It returns nil without an
// error when the token is empty, invalid, expired or names a user that no
// longer exists; only storage failures are errors.
func (s *Service) CurrentIdentity(ctx context.Context, token string) (*core.Identity, error) {
	if token == "" {
		return nil, nil
	}
	userID, err := s.sessions.Resolve(token)
	if err != nil {
		s.logger.DebugContext(ctx, "Session rejected", log.FieldError, err)
		return nil, nil
	}

	user, err := s.users.UserByID(ctx, userID)
	if errors.Is(err, core.ErrUserNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &core.Identity{UserID: user.ID, Email: user.Email}, nil
}

// RequireIdentity is CurrentIdentity for scoped calls.
func (s *Service) RequireIdentity(ctx context.Context, token string) (core.Identity, error) {
	id, err := s.CurrentIdentity(ctx, token)
	if err != nil {
		return core.Identity{}, err
	}
	if id == nil {
		return core.Identity{}, core.ErrNotAuthenticated
	}
	return *id, nil
}

func (s *Service) ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	user, err := s.users.UserByID(ctx, userID)
	if errors.Is(err, core.ErrUserNotFound) {
		return core.ErrNotAuthenticated
	}
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(oldPassword)); err != nil {
		return core.ErrInvalidCredentials
	}
	if err := validatePassword(newPassword); err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.cost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.users.UpdatePasswordHash(ctx, userID, string(hash)); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "Password changed", log.FieldUserID, userID)
	return nil
}

func (s *Service) dummy() []byte {
	s.dummyOnce.Do(func() {
		h, err := bcrypt.GenerateFromPassword([]byte("smartcents-dummy-password"), s.cost)
		if err == nil {
			s.dummyHash = h
		}
	})
	return s.dummyHash
}

func validatePassword(p string) error {
	if len(p) < minPasswordLength {
		return fmt.Errorf("%w: at least %d characters", core.ErrWeakPassword, minPasswordLength)
	}
	if len(p) > maxPasswordLength {
		return fmt.Errorf("%w: at most %d bytes", core.ErrWeakPassword, maxPasswordLength)
	}
	return nil
}
