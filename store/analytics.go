package store

import (
	"context"
	"fmt"
	"slices"
)

// AccountStats pairs an account with the size of its note collection
type AccountStats struct {
	Account   Account
	NoteCount int
}

// GetTopAccountsByNotes returns the top n accounts ordered by note count (descending)
func GetTopAccountsByNotes(ctx context.Context, accountStore AccountStore, noteStore NoteStore, limit int) ([]AccountStats, error) {
	accounts, err := accountStore.ListAccounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}

	accountStats := make([]AccountStats, 0, len(accounts))
	for _, account := range accounts {
		noteCount, err := noteStore.CountNotes(ctx, account.Username)
		if err != nil {
			return nil, err
		}

		accountStats = append(accountStats, AccountStats{
			Account:   account,
			NoteCount: noteCount,
		})
	}

	// Ties keep signup order
	slices.SortStableFunc(accountStats, func(a, b AccountStats) int {
		return b.NoteCount - a.NoteCount
	})

	if limit > 0 && limit < len(accountStats) {
		accountStats = accountStats[:limit]
	}

	return accountStats, nil
}
