package store

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/brunoscheufler/pocketnotes/constants"
)

type kvAccountStore struct {
	kv KV
	// serializes read-modify-write of the account list
	mu sync.Mutex
}

func NewAccountStore(kv KV) AccountStore {
	return &kvAccountStore{kv: kv}
}

func (s *kvAccountStore) ListAccounts(ctx context.Context) ([]Account, error) {
	accounts, err := loadList[Account](ctx, s.kv, constants.UsersKey)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	return accounts, nil
}

// CreateAccount rejects usernames that differ from an existing one only by
// case, since Authenticate matches case-insensitively.
func (s *kvAccountStore) CreateAccount(ctx context.Context, username, pin string) (Account, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return Account{}, ErrInvalidUsername
	}
	if !ValidPIN(pin) {
		return Account{}, ErrInvalidPIN
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	accounts, err := s.ListAccounts(ctx)
	if err != nil {
		return Account{}, err
	}

	for _, existing := range accounts {
		if strings.EqualFold(existing.Username, username) {
			return Account{}, ErrDuplicateUsername
		}
	}

	account := Account{Username: username, PIN: pin}
	accounts = append(accounts, account)

	if err := saveList(ctx, s.kv, constants.UsersKey, accounts); err != nil {
		return Account{}, fmt.Errorf("failed to create account: %w", err)
	}
	return account, nil
}

func (s *kvAccountStore) Authenticate(ctx context.Context, username, pin string) (Account, error) {
	username = strings.TrimSpace(username)
	pin = strings.TrimSpace(pin)
	if username == "" || pin == "" {
		return Account{}, ErrInvalidCredentials
	}

	accounts, err := s.ListAccounts(ctx)
	if err != nil {
		return Account{}, err
	}

	for _, account := range accounts {
		if strings.EqualFold(account.Username, username) && account.PIN == pin {
			return account, nil
		}
	}
	return Account{}, ErrInvalidCredentials
}

// ValidPIN reports whether pin is all ASCII digits and at least MinPINLength
// long
func ValidPIN(pin string) bool {
	if utf8.RuneCountInString(pin) < constants.MinPINLength {
		return false
	}
	for _, r := range pin {
		if !IsPINDigit(r) {
			return false
		}
	}
	return true
}

// IsPINDigit reports whether r is allowed in a PIN
func IsPINDigit(r rune) bool {
	return r >= '0' && r <= '9'
}
