package ledgerRepo

import (
	"context"
	"errors"

	"kymaclub/models"
)

// ErrDuplicateIdempotencyKey is returned when a posting carries an
// idempotency key that has already been recorded. Callers treat this as a
// successful retry, not a failure.
var ErrDuplicateIdempotencyKey = errors.New("duplicate idempotency key")

// Repository defines access to the append-only ledger-entry store and the
// cached balance fields it keeps in step. There is no update or delete:
// corrections are new offsetting entries.
type Repository interface {
	// PostEntries durably records all entries and applies the matching cached
	// balance increments in a single transaction. Either everything commits
	// or nothing does. Returns ErrDuplicateIdempotencyKey when the unique
	// (idempotency_key, account.kind) index rejects the insert.
	PostEntries(ctx context.Context, entries []models.LedgerEntry) error

	// FindByIdempotencyKey returns an entry posted under the given key, or
	// nil when the key has never been used.
	FindByIdempotencyKey(ctx context.Context, key string) (*models.LedgerEntry, error)

	// EntriesForAccount returns all entries of one account, oldest first.
	EntriesForAccount(ctx context.Context, acct models.Account) ([]models.LedgerEntry, error)

	// EntriesForTransaction returns all entries sharing a transaction id.
	EntriesForTransaction(ctx context.Context, transactionID string) ([]models.LedgerEntry, error)

	// CachedBalances reads the denormalized balance and lifetime-total fields
	// of a customer or business account.
	CachedBalances(ctx context.Context, acct models.Account) (balance, lifetime float64, err error)

	// SetCachedBalances overwrites the denormalized fields. Used only by
	// Reconcile, which corrects the cache to match the ledger.
	SetCachedBalances(ctx context.Context, acct models.Account, balance, lifetime float64) error
}
