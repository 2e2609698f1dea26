package ledger

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	businessRepo "kymaclub/database/repository/business"
	ledgerRepo "kymaclub/database/repository/ledger"
	userRepo "kymaclub/database/repository/user"
	"kymaclub/models"
	"kymaclub/services/credits"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultLedgerService is the production ledger engine.
type DefaultLedgerService struct {
	Repo       ledgerRepo.Repository
	Users      userRepo.UserRepository
	Businesses businessRepo.BusinessRepository
	Notifier   GrantNotifier
	Logger     *zap.Logger
}

// PostIfAbsent runs build and posts its entries unless the idempotency key
// was already used, in which case the prior transaction id is returned with
// wasReplay set. The uniqueness check happens inside the insert transaction,
// so a concurrent retry cannot double-post.
func (s *DefaultLedgerService) PostIfAbsent(ctx context.Context, key string, build func() ([]models.LedgerEntry, error)) (string, bool, error) {
	prior, err := s.Repo.FindByIdempotencyKey(ctx, key)
	if err != nil {
		return "", false, err
	}
	if prior != nil {
		return prior.TransactionID, true, nil
	}

	entries, err := build()
	if err != nil {
		return "", false, err
	}

	if err := s.Repo.PostEntries(ctx, entries); err != nil {
		if errors.Is(err, ledgerRepo.ErrDuplicateIdempotencyKey) {
			// Lost the race against a concurrent retry. Replay its result.
			prior, ferr := s.Repo.FindByIdempotencyKey(ctx, key)
			if ferr != nil {
				return "", false, ferr
			}
			if prior == nil {
				return "", false, fmt.Errorf("duplicate idempotency key %q but no prior entry found", key)
			}
			return prior.TransactionID, true, nil
		}
		return "", false, err
	}
	return entries[0].TransactionID, false, nil
}

// Grant posts a single positive customer entry and, on a fresh post, fires a
// best-effort notification.
func (s *DefaultLedgerService) Grant(ctx context.Context, args GrantCreditArgs) (*GrantResult, error) {
	if err := credits.ValidateCreditAmount(args.Amount); err != nil {
		return nil, err
	}
	if !models.GrantKinds[args.Kind] {
		return nil, fmt.Errorf("entry type %q is not a grant kind", args.Kind)
	}
	if _, err := s.Users.GetByID(ctx, args.UserID); err != nil {
		return nil, err
	}

	key := args.IdempotencyKey
	if key == "" {
		if args.ExternalReference != "" {
			key = credits.MakeIdempotencyKey(string(args.Kind), args.ExternalReference)
		} else {
			key = credits.MakeIdempotencyKey(string(args.Kind))
		}
	}

	effectiveAt := args.EffectiveAt
	if effectiveAt.IsZero() {
		effectiveAt = time.Now()
	}

	txnID, wasReplay, err := s.PostIfAbsent(ctx, key, func() ([]models.LedgerEntry, error) {
		entry := models.LedgerEntry{
			ID:                uuid.New().String(),
			TransactionID:     uuid.New().String(),
			Account:           models.CustomerAccount(args.UserID),
			Amount:            args.Amount,
			Type:              args.Kind,
			Description:       args.Description,
			IdempotencyKey:    key,
			EffectiveAt:       effectiveAt,
			CreatedAt:         time.Now(),
			CreatedBy:         args.ActorID,
			ExpiresAt:         args.ExpiresAt,
			CreditValue:       args.CreditValue,
			ExternalReference: args.ExternalReference,
		}
		return []models.LedgerEntry{entry}, nil
	})
	if err != nil {
		return nil, fmt.Errorf("credit grant failed: %w", err)
	}

	// Notify only on fresh postings so a retried grant does not ping the
	// user twice. Dispatch failures never roll back the committed grant.
	if !wasReplay && s.Notifier != nil {
		payload := models.CreditGrantPayload{
			UserID:        args.UserID,
			Amount:        args.Amount,
			Kind:          string(args.Kind),
			TransactionID: txnID,
		}
		if nerr := s.Notifier.NotifyCreditsGranted(ctx, payload); nerr != nil {
			s.Logger.Warn("credit grant notification dispatch failed",
				zap.String("userId", args.UserID), zap.Error(nerr))
		}
	}

	return &GrantResult{TransactionID: txnID, WasReplay: wasReplay}, nil
}

// Transfer posts the three-way split of a completed booking atomically.
func (s *DefaultLedgerService) Transfer(ctx context.Context, args TransferCreditArgs) (*CreditTransferResult, error) {
	if err := credits.ValidateCreditAmount(args.CreditsAmount); err != nil {
		return nil, err
	}
	if args.FeeRate < 0 || args.FeeRate >= 1 {
		return nil, ErrInvalidFeeRate
	}
	if _, err := s.Users.GetByID(ctx, args.UserID); err != nil {
		return nil, err
	}
	if _, err := s.Businesses.GetByID(ctx, args.BusinessID); err != nil {
		return nil, err
	}

	netRevenueCents, err := credits.CreditsToCents(args.CreditsAmount)
	if err != nil {
		return nil, err
	}
	businessEarnings, systemCut := ComputeSplit(netRevenueCents, args.FeeRate)

	businessCredits, err := credits.CentsToCredits(businessEarnings)
	if err != nil {
		return nil, err
	}
	systemCredits, err := credits.CentsToCredits(systemCut)
	if err != nil {
		return nil, err
	}

	key := args.IdempotencyKey
	if key == "" {
		key = credits.MakeIdempotencyKey("booking_transfer", args.BookingID)
	}

	txnID, wasReplay, err := s.PostIfAbsent(ctx, key, func() ([]models.LedgerEntry, error) {
		transactionID := uuid.New().String()
		now := time.Now()
		base := models.LedgerEntry{
			TransactionID:    transactionID,
			Description:      args.Description,
			IdempotencyKey:   key,
			EffectiveAt:      now,
			CreatedAt:        now,
			CreatedBy:        args.ActorID,
			RelatedBookingID: args.BookingID,
		}

		customer := base
		customer.ID = uuid.New().String()
		customer.Account = models.CustomerAccount(args.UserID)
		customer.Amount = -args.CreditsAmount
		customer.Type = models.EntryBookingSpend

		business := base
		business.ID = uuid.New().String()
		business.Account = models.BusinessAccount(args.BusinessID)
		business.Amount = businessCredits
		business.Type = models.EntryRevenueEarn

		system := base
		system.ID = uuid.New().String()
		system.Account = models.SystemAccount(models.SystemRevenueTag)
		system.Amount = systemCredits
		system.Type = models.EntrySystemCreditCost

		return []models.LedgerEntry{customer, business, system}, nil
	})
	if err != nil {
		return nil, fmt.Errorf("credit transfer failed: %w", err)
	}

	return &CreditTransferResult{
		TransactionID:         txnID,
		NetRevenueCents:       netRevenueCents,
		BusinessEarningsCents: businessEarnings,
		SystemCutCents:        systemCut,
		WasReplay:             wasReplay,
	}, nil
}

// Reconcile recomputes the true balance from the entry log and corrects the
// cached fields when they diverge. Divergence is a corrective action, not an
// error; only structurally corrupt entry data aborts.
func (s *DefaultLedgerService) Reconcile(ctx context.Context, acct models.Account) (*ReconcileResult, error) {
	if err := acct.Validate(); err != nil {
		return nil, err
	}

	entries, err := s.Repo.EntriesForAccount(ctx, acct)
	if err != nil {
		return nil, err
	}

	var balance, lifetime float64
	for _, e := range entries {
		if math.IsNaN(e.Amount) || math.IsInf(e.Amount, 0) {
			return nil, fmt.Errorf("%w: entry %s", ErrCorruptEntries, e.ID)
		}
		balance += e.Amount
		if e.Amount > 0 {
			lifetime += e.Amount
		}
	}

	cachedBalance, cachedLifetime, err := s.Repo.CachedBalances(ctx, acct)
	if err != nil {
		return nil, err
	}

	result := &ReconcileResult{
		PreviousBalance:  cachedBalance,
		ComputedBalance:  balance,
		BalanceDelta:     balance - cachedBalance,
		PreviousLifetime: cachedLifetime,
		ComputedLifetime: lifetime,
		LifetimeDelta:    lifetime - cachedLifetime,
	}

	if result.BalanceDelta == 0 && result.LifetimeDelta == 0 {
		return result, nil
	}

	if err := s.Repo.SetCachedBalances(ctx, acct, balance, lifetime); err != nil {
		return nil, fmt.Errorf("failed to correct cached balance: %w", err)
	}
	result.Updated = true

	s.Logger.Info("reconciled cached balance against ledger",
		zap.String("account", string(acct.Kind)),
		zap.String("owner", acct.OwnerRef()),
		zap.Float64("balanceDelta", result.BalanceDelta),
		zap.Float64("lifetimeDelta", result.LifetimeDelta))

	return result, nil
}

// AvailableCredits returns the spendable balance of a customer, treating
// expired unspent grants as gone. Expiry never mutates the ledger.
func (s *DefaultLedgerService) AvailableCredits(ctx context.Context, userID string) (float64, error) {
	entries, err := s.Repo.EntriesForAccount(ctx, models.CustomerAccount(userID))
	if err != nil {
		return 0, err
	}

	now := time.Now()
	var available float64
	for _, e := range entries {
		if e.ExpiresAt != nil && e.Amount > 0 && e.ExpiresAt.Before(now) {
			continue
		}
		available += e.Amount
	}
	return available, nil
}
