package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ahmetcoskunkizilkaya/rantbox/internal/models"
	"github.com/ahmetcoskunkizilkaya/rantbox/internal/store"
)

// Identity is the verified caller delivered by the identity provider.
type Identity struct {
	UID         string
	Email       string
	DisplayName string
}

// LedgerService owns accounts and their credit balances.
type LedgerService struct {
	accounts    store.AccountStore
	adminEmails []string
	now         func() time.Time
}

// NewLedgerService takes the admin email list as a comma separated string.
func NewLedgerService(accounts store.AccountStore, adminEmails string) *LedgerService {
	return &LedgerService{
		accounts:    accounts,
		adminEmails: ParseCSV(adminEmails),
		now:         time.Now,
	}
}

func (s *LedgerService) WithClock(now func() time.Time) *LedgerService {
	s.now = now
	return s
}

// IsAdminEmail reports whether email is in the configured admin list.
func (s *LedgerService) IsAdminEmail(email string) bool {
	if email == "" {
		return false
	}
	for _, admin := range s.adminEmails {
		if strings.EqualFold(admin, email) {
			return true
		}
	}
	return false
}

// EnsureAccount creates the account on first sight and bumps LastLoginAt on
// later sessions. The admin flag is derived only at creation.
func (s *LedgerService) EnsureAccount(ctx context.Context, id Identity) (*models.Account, error) {
	now := s.now()

	account, err := s.accounts.GetAccount(ctx, id.UID)
	if err == nil {
		if err := s.accounts.TouchLogin(ctx, id.UID, now); err != nil {
			slog.Error("error updating last login", "user_id", id.UID, "error", err)
		} else {
			account.LastLoginAt = now
		}
		return account, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("load account: %w", err)
	}

	account = &models.Account{
		UID:         id.UID,
		Email:       id.Email,
		DisplayName: id.DisplayName,
		IsAdmin:     s.IsAdminEmail(id.Email),
		CreatedAt:   now,
		LastLoginAt: now,
	}
	if err := s.accounts.CreateAccount(ctx, account); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return s.accounts.GetAccount(ctx, id.UID)
		}
		return nil, fmt.Errorf("create account: %w", err)
	}
	slog.Info("account created", "user_id", id.UID, "is_admin", account.IsAdmin)
	return account, nil
}

func (s *LedgerService) GetAccount(ctx context.Context, uid string) (*models.Account, bool) {
	account, err := s.accounts.GetAccount(ctx, uid)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			slog.Error("error getting account", "user_id", uid, "error", err)
		}
		return nil, false
	}
	return account, true
}

// GetCredits returns 0 for unknown accounts.
func (s *LedgerService) GetCredits(ctx context.Context, uid string) int {
	account, ok := s.GetAccount(ctx, uid)
	if !ok {
		return 0
	}
	return account.Credits
}

func (s *LedgerService) SetCredits(ctx context.Context, uid string, credits int) bool {
	if err := s.accounts.SetCredits(ctx, uid, credits); err != nil {
		slog.Error("error updating credits", "user_id", uid, "error", err)
		return false
	}
	return true
}

// SpendCredit decrements the balance by one. There is no floor.
func (s *LedgerService) SpendCredit(ctx context.Context, uid string) bool {
	if err := s.accounts.IncrementCredits(ctx, uid, -1); err != nil {
		slog.Error("error spending credit", "user_id", uid, "error", err)
		return false
	}
	return true
}

// AddCredits is used by confirmed payments; the error is returned so the
// webhook can ask for redelivery.
func (s *LedgerService) AddCredits(ctx context.Context, uid string, credits int) error {
	if err := s.accounts.IncrementCredits(ctx, uid, credits); err != nil {
		return fmt.Errorf("add credits to %s: %w", uid, err)
	}
	return nil
}

// ParseCSV splits a comma separated list, dropping blanks.
func ParseCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		trimmed := strings.TrimSpace(p)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
