package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/JSBS07/gestor-finanzas/internal/auth"
	"github.com/JSBS07/gestor-finanzas/internal/core"
)

// tempPassword is what admin resets set; the account is flagged until
// the owner picks a new one.
const tempPassword = "123456"

type AccountStore interface {
	SaveAccount(ctx context.Context, acc core.Account) (core.Account, error)
	FindAccountByEmail(ctx context.Context, email string) (core.Account, error)
	FindAccountByID(ctx context.Context, id int64) (core.Account, error)
	ExistsAccountByEmail(ctx context.Context, email string) (bool, error)
	DeleteAccountByID(ctx context.Context, id int64) error
	ListAccounts(ctx context.Context) ([]core.Account, error)
	CountAccounts(ctx context.Context) (int64, error)
}

type AccountService struct {
	store AccountStore
	creds *auth.Manager
	now   func() time.Time
}

func NewAccountService(store AccountStore, creds *auth.Manager) *AccountService {
	return &AccountService{store: store, creds: creds, now: time.Now}
}

// Register creates a USER account with a unique email.
func (s *AccountService) Register(ctx context.Context, email, name, password string) (core.Account, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if len([]rune(password)) < auth.MinPasswordLength {
		return core.Account{}, ErrPasswordTooShort
	}

	taken, err := s.store.ExistsAccountByEmail(ctx, email)
	if err != nil {
		return core.Account{}, fmt.Errorf("check email: %w", err)
	}
	if taken {
		return core.Account{}, ErrEmailTaken
	}

	hash, err := s.creds.Hash(password)
	if err != nil {
		return core.Account{}, fmt.Errorf("hash password: %w", err)
	}

	acc, err := s.store.SaveAccount(ctx, core.Account{
		Email:        email,
		PasswordHash: hash,
		Name:         strings.TrimSpace(name),
		Role:         core.RoleUser,
		RegisteredAt: s.now(),
	})
	if err != nil {
		return core.Account{}, fmt.Errorf("save account: %w", err)
	}

	slog.InfoContext(ctx, "Account registered", "id", acc.ID, "email", acc.Email)
	return acc, nil
}

// Authenticate checks credentials. Unknown emails and wrong passwords
// are indistinguishable to the caller.
func (s *AccountService) Authenticate(ctx context.Context, email, password string) (core.Account, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	acc, err := s.store.FindAccountByEmail(ctx, email)
	if errors.Is(err, core.ErrNotFound) {
		return core.Account{}, ErrInvalidLogin
	}
	if err != nil {
		return core.Account{}, fmt.Errorf("find account: %w", err)
	}

	if !s.creds.Verify(password, acc.PasswordHash) {
		return core.Account{}, ErrInvalidLogin
	}
	return acc, nil
}

// ChangePassword replaces the account's password after checking the
// current one, the confirmation, and that the new password actually
// changes something. A successful change clears the temp-password flag.
func (s *AccountService) ChangePassword(ctx context.Context, accountID int64, current, next, confirm string) error {
	acc, err := s.store.FindAccountByID(ctx, accountID)
	if err != nil {
		return err
	}

	if !s.creds.Verify(current, acc.PasswordHash) {
		return ErrWrongPassword
	}
	if len([]rune(next)) < auth.MinPasswordLength {
		return ErrPasswordTooShort
	}
	if next != confirm {
		return ErrPasswordMismatch
	}
	if s.creds.Verify(next, acc.PasswordHash) {
		return ErrPasswordUnchanged
	}

	hash, err := s.creds.Hash(next)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	acc.PasswordHash = hash
	acc.TempPassword = false

	if _, err := s.store.SaveAccount(ctx, acc); err != nil {
		return fmt.Errorf("save account: %w", err)
	}

	slog.InfoContext(ctx, "Password changed", "id", acc.ID)
	return nil
}

// ResetPassword is the admin recovery path: the target account gets the
// well-known temp password and is flagged to change it.
func (s *AccountService) ResetPassword(ctx context.Context, targetID int64) error {
	acc, err := s.store.FindAccountByID(ctx, targetID)
	if err != nil {
		return err
	}

	hash, err := s.creds.Hash(tempPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	acc.PasswordHash = hash
	acc.TempPassword = true

	if _, err := s.store.SaveAccount(ctx, acc); err != nil {
		return fmt.Errorf("save account: %w", err)
	}

	slog.InfoContext(ctx, "Password reset to temporary", "id", acc.ID)
	return nil
}

// DeleteAccount removes a non-admin account and, through the schema's
// cascade, its activities.
func (s *AccountService) DeleteAccount(ctx context.Context, targetID int64) error {
	acc, err := s.store.FindAccountByID(ctx, targetID)
	if err != nil {
		return err
	}
	if acc.IsAdmin() {
		return ErrAdminImmutable
	}

	if err := s.store.DeleteAccountByID(ctx, targetID); err != nil {
		return fmt.Errorf("delete account: %w", err)
	}

	slog.InfoContext(ctx, "Account deleted", "id", targetID, "email", acc.Email)
	return nil
}

func (s *AccountService) List(ctx context.Context) ([]core.Account, error) {
	return s.store.ListAccounts(ctx)
}

func (s *AccountService) FindByID(ctx context.Context, id int64) (core.Account, error) {
	return s.store.FindAccountByID(ctx, id)
}
