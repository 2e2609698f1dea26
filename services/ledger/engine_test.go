package ledger

import (
	"context"
	"testing"
	"time"

	businessRepo "kymaclub/database/repository/business"
	ledgerRepo "kymaclub/database/repository/ledger"
	userRepo "kymaclub/database/repository/user"
	"kymaclub/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// --- In-memory fakes ---

type fakeLedgerRepo struct {
	entries  []models.LedgerEntry
	balances map[string]float64
	lifetime map[string]float64
}

func newFakeLedgerRepo() *fakeLedgerRepo {
	return &fakeLedgerRepo{
		balances: map[string]float64{},
		lifetime: map[string]float64{},
	}
}

func cacheKey(acct models.Account) string {
	return string(acct.Kind) + "/" + acct.OwnerRef()
}

func (r *fakeLedgerRepo) PostEntries(_ context.Context, entries []models.LedgerEntry) error {
	for _, e := range entries {
		for _, existing := range r.entries {
			if existing.IdempotencyKey == e.IdempotencyKey && existing.Account.Kind == e.Account.Kind {
				return ledgerRepo.ErrDuplicateIdempotencyKey
			}
		}
	}
	for _, e := range entries {
		r.entries = append(r.entries, e)
		if e.Account.Kind == models.AccountSystem {
			continue
		}
		key := cacheKey(e.Account)
		r.balances[key] += e.Amount
		if e.Amount > 0 {
			r.lifetime[key] += e.Amount
		}
	}
	return nil
}

func (r *fakeLedgerRepo) FindByIdempotencyKey(_ context.Context, key string) (*models.LedgerEntry, error) {
	for _, e := range r.entries {
		if e.IdempotencyKey == key {
			entry := e
			return &entry, nil
		}
	}
	return nil, nil
}

func (r *fakeLedgerRepo) EntriesForAccount(_ context.Context, acct models.Account) ([]models.LedgerEntry, error) {
	var out []models.LedgerEntry
	for _, e := range r.entries {
		if e.Account == acct {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *fakeLedgerRepo) EntriesForTransaction(_ context.Context, transactionID string) ([]models.LedgerEntry, error) {
	var out []models.LedgerEntry
	for _, e := range r.entries {
		if e.TransactionID == transactionID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *fakeLedgerRepo) CachedBalances(_ context.Context, acct models.Account) (float64, float64, error) {
	key := cacheKey(acct)
	return r.balances[key], r.lifetime[key], nil
}

func (r *fakeLedgerRepo) SetCachedBalances(_ context.Context, acct models.Account, balance, lifetime float64) error {
	key := cacheKey(acct)
	r.balances[key] = balance
	r.lifetime[key] = lifetime
	return nil
}

type fakeUserRepo struct{ users map[string]*models.User }

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*models.User, error) {
	if u, ok := r.users[id]; ok {
		return u, nil
	}
	return nil, userRepo.ErrNotFound
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, _ string) (*models.User, error) {
	return nil, userRepo.ErrNotFound
}
func (r *fakeUserRepo) Create(_ context.Context, _ *models.User) error { return nil }
func (r *fakeUserRepo) Update(_ context.Context, _ *models.User) error { return nil }

type fakeBusinessRepo struct{ businesses map[string]*models.Business }

func (r *fakeBusinessRepo) GetByID(_ context.Context, id string) (*models.Business, error) {
	if b, ok := r.businesses[id]; ok {
		return b, nil
	}
	return nil, businessRepo.ErrNotFound
}

func (r *fakeBusinessRepo) Create(_ context.Context, _ *models.Business) error { return nil }
func (r *fakeBusinessRepo) UpdateFeeStructure(_ context.Context, _ string, _ models.FeeStructure) error {
	return nil
}

type fakeNotifier struct{ calls []models.CreditGrantPayload }

func (n *fakeNotifier) NotifyCreditsGranted(_ context.Context, payload models.CreditGrantPayload) error {
	n.calls = append(n.calls, payload)
	return nil
}

func newTestService() (*DefaultLedgerService, *fakeLedgerRepo, *fakeNotifier) {
	repo := newFakeLedgerRepo()
	notifier := &fakeNotifier{}
	svc := &DefaultLedgerService{
		Repo: repo,
		Users: &fakeUserRepo{users: map[string]*models.User{
			"user-1": {ID: "user-1", Name: "Anna"},
		}},
		Businesses: &fakeBusinessRepo{businesses: map[string]*models.Business{
			"biz-1": {ID: "biz-1", Name: "Yoga Studio", Fees: models.FeeStructure{BaseFeeRate: 0.20}},
		}},
		Notifier: notifier,
		Logger:   zap.NewNop(),
	}
	return svc, repo, notifier
}

// --- Tests ---

func TestGrant(t *testing.T) {
	svc, repo, notifier := newTestService()
	ctx := context.Background()

	res, err := svc.Grant(ctx, GrantCreditArgs{
		UserID:      "user-1",
		Amount:      40,
		Kind:        models.EntryCreditPurchase,
		Description: "40 credit pack",
		ActorID:     "user-1",
	})
	require.NoError(t, err)
	assert.False(t, res.WasReplay)
	assert.NotEmpty(t, res.TransactionID)

	require.Len(t, repo.entries, 1)
	entry := repo.entries[0]
	assert.Equal(t, models.AccountCustomer, entry.Account.Kind)
	assert.Equal(t, 40.0, entry.Amount)

	balance, lifetime, err := repo.CachedBalances(ctx, models.CustomerAccount("user-1"))
	require.NoError(t, err)
	assert.Equal(t, 40.0, balance)
	assert.Equal(t, 40.0, lifetime)

	assert.Len(t, notifier.calls, 1)
}

func TestGrantInvalidAmount(t *testing.T) {
	svc, repo, _ := newTestService()

	for _, amount := range []float64{0, -5, 10_001} {
		_, err := svc.Grant(context.Background(), GrantCreditArgs{
			UserID: "user-1", Amount: amount, Kind: models.EntryGift, ActorID: "admin-1",
		})
		assert.Error(t, err, "amount %v", amount)
	}
	// Validation failures leave no partial state behind.
	assert.Empty(t, repo.entries)
}

func TestGrantUnknownUser(t *testing.T) {
	svc, _, _ := newTestService()
	_, err := svc.Grant(context.Background(), GrantCreditArgs{
		UserID: "ghost", Amount: 10, Kind: models.EntryGift, ActorID: "admin-1",
	})
	assert.ErrorIs(t, err, userRepo.ErrNotFound)
}

func TestGrantReplay(t *testing.T) {
	svc, repo, notifier := newTestService()
	ctx := context.Background()

	args := GrantCreditArgs{
		UserID:            "user-1",
		Amount:            20,
		Kind:              models.EntryCreditPurchase,
		ExternalReference: "pi_123",
		ActorID:           "user-1",
	}

	first, err := svc.Grant(ctx, args)
	require.NoError(t, err)
	second, err := svc.Grant(ctx, args)
	require.NoError(t, err)

	// A retried grant is a successful replay of the original, not an error,
	// and must not double-post or re-notify.
	assert.False(t, first.WasReplay)
	assert.True(t, second.WasReplay)
	assert.Equal(t, first.TransactionID, second.TransactionID)
	assert.Len(t, repo.entries, 1)
	assert.Len(t, notifier.calls, 1)

	balance, _, _ := repo.CachedBalances(ctx, models.CustomerAccount("user-1"))
	assert.Equal(t, 20.0, balance)
}

func TestTransfer(t *testing.T) {
	svc, repo, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Grant(ctx, GrantCreditArgs{
		UserID: "user-1", Amount: 100, Kind: models.EntryCreditPurchase, ActorID: "user-1",
	})
	require.NoError(t, err)

	res, err := svc.Transfer(ctx, TransferCreditArgs{
		UserID:        "user-1",
		BusinessID:    "biz-1",
		BookingID:     "bk-1",
		CreditsAmount: 40,
		FeeRate:       0.20,
		Description:   "Yoga class",
		ActorID:       "system",
	})
	require.NoError(t, err)
	assert.False(t, res.WasReplay)
	assert.Equal(t, int64(2000), res.NetRevenueCents)
	assert.Equal(t, int64(1600), res.BusinessEarningsCents)
	assert.Equal(t, int64(400), res.SystemCutCents)

	entries, err := repo.EntriesForTransaction(ctx, res.TransactionID)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	// All three rails share the transaction, and the triple nets to zero
	// within the one-cent rounding tolerance.
	var sum float64
	kinds := map[models.AccountKind]bool{}
	for _, e := range entries {
		sum += e.Amount
		kinds[e.Account.Kind] = true
	}
	assert.InDelta(t, 0, sum, 0.02)
	assert.Len(t, kinds, 3)

	balance, _, _ := repo.CachedBalances(ctx, models.CustomerAccount("user-1"))
	assert.Equal(t, 60.0, balance)
	bizBalance, bizLifetime, _ := repo.CachedBalances(ctx, models.BusinessAccount("biz-1"))
	assert.Equal(t, 32.0, bizBalance)
	assert.Equal(t, 32.0, bizLifetime)
}

func TestTransferReplay(t *testing.T) {
	svc, repo, _ := newTestService()
	ctx := context.Background()

	args := TransferCreditArgs{
		UserID: "user-1", BusinessID: "biz-1", BookingID: "bk-9",
		CreditsAmount: 10, FeeRate: 0.10, ActorID: "system",
	}
	first, err := svc.Transfer(ctx, args)
	require.NoError(t, err)
	second, err := svc.Transfer(ctx, args)
	require.NoError(t, err)

	assert.True(t, second.WasReplay)
	assert.Equal(t, first.TransactionID, second.TransactionID)
	assert.Len(t, repo.entries, 3)
}

func TestTransferInvalidFeeRate(t *testing.T) {
	svc, _, _ := newTestService()
	for _, rate := range []float64{-0.1, 1, 1.5} {
		_, err := svc.Transfer(context.Background(), TransferCreditArgs{
			UserID: "user-1", BusinessID: "biz-1", BookingID: "bk-2",
			CreditsAmount: 10, FeeRate: rate, ActorID: "system",
		})
		assert.ErrorIs(t, err, ErrInvalidFeeRate, "rate %v", rate)
	}
}

func TestReconcile(t *testing.T) {
	svc, repo, _ := newTestService()
	ctx := context.Background()
	acct := models.CustomerAccount("user-1")

	_, err := svc.Grant(ctx, GrantCreditArgs{
		UserID: "user-1", Amount: 50, Kind: models.EntryBonus, ActorID: "admin-1",
	})
	require.NoError(t, err)

	// Damage the cache; reconcile must correct it toward the ledger.
	repo.balances[cacheKey(acct)] = 47

	res, err := svc.Reconcile(ctx, acct)
	require.NoError(t, err)
	assert.True(t, res.Updated)
	assert.Equal(t, 47.0, res.PreviousBalance)
	assert.Equal(t, 50.0, res.ComputedBalance)
	assert.Equal(t, 3.0, res.BalanceDelta)

	// Second run with no intervening writes: identical balances, no update.
	res2, err := svc.Reconcile(ctx, acct)
	require.NoError(t, err)
	assert.False(t, res2.Updated)
	assert.Equal(t, res.ComputedBalance, res2.ComputedBalance)
	assert.Zero(t, res2.BalanceDelta)
}

func TestReconcileCleanCacheIsNoOp(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Grant(ctx, GrantCreditArgs{
		UserID: "user-1", Amount: 15, Kind: models.EntryGift, ActorID: "admin-1",
	})
	require.NoError(t, err)

	res, err := svc.Reconcile(ctx, models.CustomerAccount("user-1"))
	require.NoError(t, err)
	assert.False(t, res.Updated)
	assert.Zero(t, res.BalanceDelta)
	assert.Zero(t, res.LifetimeDelta)
}

func TestAvailableCreditsFiltersExpired(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	past := time.Now().Add(-24 * time.Hour)
	future := time.Now().Add(24 * time.Hour)

	_, err := svc.Grant(ctx, GrantCreditArgs{
		UserID: "user-1", Amount: 30, Kind: models.EntryCreditPurchase,
		ExpiresAt: &past, IdempotencyKey: "grant:expired", ActorID: "user-1",
	})
	require.NoError(t, err)
	_, err = svc.Grant(ctx, GrantCreditArgs{
		UserID: "user-1", Amount: 20, Kind: models.EntryCreditPurchase,
		ExpiresAt: &future, IdempotencyKey: "grant:live", ActorID: "user-1",
	})
	require.NoError(t, err)

	available, err := svc.AvailableCredits(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 20.0, available)
}
