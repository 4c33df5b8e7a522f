// Package billing integrates the launch checkout flow with Stripe and
// reconciles payment outcomes back into launch scheduling.
package billing

import (
	"fmt"

	"github.com/stripe/stripe-go/v79"
	checkoutsession "github.com/stripe/stripe-go/v79/checkout/session"
	"github.com/stripe/stripe-go/v79/webhook"

	"github.com/ManuelReschke/LaunchBoard/internal/pkg/env"
	"github.com/ManuelReschke/LaunchBoard/internal/pkg/tiers"
)

// Provider abstracts the payment provider so the reconciliation service can
// be tested without network calls.
type Provider interface {
	// CreateCheckoutSession opens a hosted checkout page for a paid launch
	// tier. The project UUID is attached as the client reference so webhooks
	// and redirects can be mapped back to the submission.
	CreateCheckoutSession(projectUUID string, tier tiers.Tier, successURL, cancelURL string) (*CheckoutSession, error)

	// GetCheckoutSession fetches the current state of a checkout session.
	GetCheckoutSession(sessionID string) (*CheckoutSession, error)

	// VerifyWebhookSignature verifies the webhook signature and returns the event.
	VerifyWebhookSignature(payload []byte, signature string) (stripe.Event, error)
}

// PriceConfig holds the Stripe price IDs for the paid launch tiers.
type PriceConfig struct {
	PremiumPriceID     string
	PremiumPlusPriceID string
}

// PriceFor returns the price ID for a paid tier.
func (pc PriceConfig) PriceFor(tier tiers.Tier) (string, error) {
	switch tier {
	case tiers.TierPremium:
		return pc.PremiumPriceID, nil
	case tiers.TierPremiumPlus:
		return pc.PremiumPlusPriceID, nil
	default:
		return "", fmt.Errorf("tier %s has no checkout price", tier)
	}
}

type stripeProvider struct {
	webhookSecret string
	prices        PriceConfig
}

// NewStripeProvider creates a Stripe-backed payment provider. The secretKey
// authenticates API calls, the webhookSecret verifies incoming webhook
// signatures.
func NewStripeProvider(secretKey, webhookSecret string, prices PriceConfig) Provider {
	stripe.Key = secretKey
	return &stripeProvider{
		webhookSecret: webhookSecret,
		prices:        prices,
	}
}

// NewStripeProviderFromEnv builds the provider from STRIPE_* environment
// variables.
func NewStripeProviderFromEnv() Provider {
	return NewStripeProvider(
		env.GetEnv("STRIPE_SECRET_KEY", ""),
		env.GetEnv("STRIPE_WEBHOOK_SECRET", ""),
		PriceConfig{
			PremiumPriceID:     env.GetEnv("STRIPE_PREMIUM_PRICE_ID", ""),
			PremiumPlusPriceID: env.GetEnv("STRIPE_PREMIUM_PLUS_PRICE_ID", ""),
		},
	)
}

func (p *stripeProvider) CreateCheckoutSession(projectUUID string, tier tiers.Tier, successURL, cancelURL string) (*CheckoutSession, error) {
	priceID, err := p.prices.PriceFor(tier)
	if err != nil {
		return nil, err
	}

	params := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		ClientReferenceID: stripe.String(projectUUID),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(priceID),
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(successURL),
		CancelURL:  stripe.String(cancelURL),
	}
	sess, err := checkoutsession.New(params)
	if err != nil {
		return nil, fmt.Errorf("stripe create checkout session: %w", err)
	}
	return toCheckoutSession(sess), nil
}

func (p *stripeProvider) GetCheckoutSession(sessionID string) (*CheckoutSession, error) {
	sess, err := checkoutsession.Get(sessionID, nil)
	if err != nil {
		return nil, fmt.Errorf("stripe get checkout session: %w", err)
	}
	return toCheckoutSession(sess), nil
}

func (p *stripeProvider) VerifyWebhookSignature(payload []byte, signature string) (stripe.Event, error) {
	event, err := webhook.ConstructEvent(payload, signature, p.webhookSecret)
	if err != nil {
		return stripe.Event{}, fmt.Errorf("stripe webhook signature verification failed: %w", err)
	}
	return event, nil
}

func toCheckoutSession(sess *stripe.CheckoutSession) *CheckoutSession {
	return &CheckoutSession{
		ID:          sess.ID,
		URL:         sess.URL,
		ProjectUUID: sess.ClientReferenceID,
		Paid:        sess.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid,
		Expired:     sess.Status == stripe.CheckoutSessionStatusExpired,
	}
}
