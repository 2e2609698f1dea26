package payment

import (
	"context"
	"fmt"

	"kymaclub/models"
	"kymaclub/services/credits"
	"kymaclub/services/ledger"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/paymentintent"
	"go.uber.org/zap"
)

// Service handles the payment-processor boundary of credit purchases. Card
// charging itself is Stripe's problem; the ledger only sees the confirmed
// intent id as an external reference.
type Service interface {
	CreatePurchaseIntent(ctx context.Context, userID string, creditsAmount float64) (*PurchaseIntent, error)
	ConfirmPurchase(ctx context.Context, intentID string) (*ledger.GrantResult, error)
}

// PurchaseIntent is the client-facing slice of a Stripe PaymentIntent.
type PurchaseIntent struct {
	IntentID     string  `json:"intent_id"`
	ClientSecret string  `json:"client_secret"`
	AmountCents  int64   `json:"amount_cents"`
	Credits      float64 `json:"credits"`
}

// StripePaymentService is the production implementation.
type StripePaymentService struct {
	Ledger ledger.Service
	Logger *zap.Logger
}

// CreatePurchaseIntent opens a Stripe PaymentIntent for a credit purchase.
func (s *StripePaymentService) CreatePurchaseIntent(ctx context.Context, userID string, creditsAmount float64) (*PurchaseIntent, error) {
	if err := credits.ValidateCreditAmount(creditsAmount); err != nil {
		return nil, err
	}
	amountCents, err := credits.CreditsToCents(creditsAmount)
	if err != nil {
		return nil, err
	}

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amountCents),
		Currency: stripe.String(string(stripe.CurrencyEUR)),
		Metadata: map[string]string{
			"user_id": userID,
			"credits": fmt.Sprintf("%g", creditsAmount),
		},
	}
	params.Context = ctx

	intent, err := paymentintent.New(params)
	if err != nil {
		return nil, fmt.Errorf("failed to create payment intent: %w", err)
	}

	s.Logger.Info("created credit purchase intent",
		zap.String("userId", userID),
		zap.String("intentId", intent.ID),
		zap.Int64("amountCents", amountCents))

	return &PurchaseIntent{
		IntentID:     intent.ID,
		ClientSecret: intent.ClientSecret,
		AmountCents:  amountCents,
		Credits:      creditsAmount,
	}, nil
}

// ConfirmPurchase grants the purchased credits once the intent succeeded.
// The intent id is the idempotency stable id, so replayed confirmations
// (client retries, duplicate webhooks) cannot double-grant.
func (s *StripePaymentService) ConfirmPurchase(ctx context.Context, intentID string) (*ledger.GrantResult, error) {
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx
	intent, err := paymentintent.Get(intentID, params)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch payment intent %s: %w", intentID, err)
	}
	if intent.Status != stripe.PaymentIntentStatusSucceeded {
		return nil, fmt.Errorf("payment intent %s not succeeded (status %s)", intentID, intent.Status)
	}

	userID := intent.Metadata["user_id"]
	var creditsAmount float64
	if _, err := fmt.Sscanf(intent.Metadata["credits"], "%g", &creditsAmount); err != nil {
		return nil, fmt.Errorf("payment intent %s carries no parseable credit amount: %w", intentID, err)
	}

	var perCredit float64
	if creditsAmount > 0 {
		perCredit = float64(intent.Amount) / creditsAmount
	}

	return s.Ledger.Grant(ctx, ledger.GrantCreditArgs{
		UserID:            userID,
		Amount:            creditsAmount,
		Kind:              models.EntryCreditPurchase,
		Description:       fmt.Sprintf("Purchased %s", credits.FormatCredits(creditsAmount)),
		ActorID:           userID,
		CreditValue:       perCredit,
		ExternalReference: intentID,
	})
}
