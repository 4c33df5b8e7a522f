package billing

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/stripe/stripe-go/v79"
	"gorm.io/gorm"

	"github.com/ManuelReschke/LaunchBoard/app/models"
	"github.com/ManuelReschke/LaunchBoard/internal/pkg/launch"
	"github.com/ManuelReschke/LaunchBoard/internal/pkg/tiers"
)

var (
	// ErrNotPendingPayment is returned when checkout is started for a
	// submission that is not waiting on payment.
	ErrNotPendingPayment = errors.New("project is not awaiting payment")
)

// LaunchReconciler is the slice of the launch engine the billing service
// drives after a payment outcome.
type LaunchReconciler interface {
	ConfirmPayment(projectID uint) (bool, error)
	FailPayment(projectID uint) (bool, error)
}

// Service connects checkout sessions and provider webhooks to launch
// scheduling. All webhook handling is idempotent: events are recorded once
// per provider event ID and the launch transition itself is a conditional
// update, so replayed or racing deliveries cannot double-apply.
type Service struct {
	repo     Repository
	provider Provider
	launches LaunchReconciler
}

// NewService creates a billing service from injected dependencies.
func NewService(repo Repository, provider Provider, launches LaunchReconciler) *Service {
	return &Service{repo: repo, provider: provider, launches: launches}
}

// NewServiceFromDB creates a billing service from a GORM DB handle.
func NewServiceFromDB(db *gorm.DB, provider Provider) *Service {
	return NewService(NewRepository(db), provider, launch.NewServiceFromDB(db))
}

// StartCheckout opens a checkout session for a submission that holds a
// reserved slot in PAYMENT_PENDING state and returns the hosted page URL.
func (s *Service) StartCheckout(ctx context.Context, project *models.Project, successURL, cancelURL string) (string, error) {
	_ = ctx
	if project.Status != models.StatusPaymentPending {
		return "", ErrNotPendingPayment
	}
	tier, ok := tiers.ParseTier(project.LaunchTier)
	if !ok || !tier.IsPaid() {
		return "", fmt.Errorf("tier %s has no checkout price", project.LaunchTier)
	}

	sess, err := s.provider.CreateCheckoutSession(project.UUID, tier, successURL, cancelURL)
	if err != nil {
		return "", err
	}
	if err := s.repo.SetProjectCheckoutSession(project.ID, sess.ID); err != nil {
		return "", err
	}
	return sess.URL, nil
}

// VerifyCheckout is the fast path after the success redirect: it polls the
// session state directly instead of waiting for the webhook. Returns whether
// this call performed the confirmation.
func (s *Service) VerifyCheckout(ctx context.Context, sessionID string) (bool, error) {
	_ = ctx
	sess, err := s.provider.GetCheckoutSession(sessionID)
	if err != nil {
		return false, err
	}
	if !sess.Paid {
		return false, nil
	}
	project, err := s.repo.GetProjectByUUID(sess.ProjectUUID)
	if err != nil {
		return false, err
	}
	return s.launches.ConfirmPayment(project.ID)
}

// HandleWebhook verifies, records and processes a raw provider webhook
// delivery. Replays of an already-processed event are acknowledged without
// reprocessing.
func (s *Service) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	event, sigErr := s.provider.VerifyWebhookSignature(payload, signature)

	_, stored, err := s.RecordWebhookEvent(ctx, WebhookEventInput{
		Provider:        models.PaymentProviderStripe,
		ProviderEventID: event.ID,
		EventType:       string(event.Type),
		PayloadJSON:     string(payload),
		SignatureValid:  sigErr == nil,
	})
	if err != nil {
		return err
	}
	if sigErr != nil {
		return sigErr
	}
	if stored.ProcessedAt != nil {
		return nil
	}

	procErr := s.processEvent(event)
	if markErr := s.MarkWebhookProcessed(ctx, stored.ID, procErr); markErr != nil && procErr == nil {
		return markErr
	}
	return procErr
}

func (s *Service) processEvent(event stripe.Event) error {
	switch event.Type {
	case stripe.EventTypeCheckoutSessionCompleted:
		sess, err := parseCheckoutSession(event)
		if err != nil {
			return err
		}
		// Async payment methods complete the session before the charge
		// settles. The launch stays in PAYMENT_PENDING until the session
		// reports paid; a later async_payment event or the sweep resolves it.
		if sess.PaymentStatus != stripe.CheckoutSessionPaymentStatusPaid {
			return nil
		}
		return s.reconcileSession(sess, s.launches.ConfirmPayment)
	case stripe.EventTypeCheckoutSessionExpired:
		sess, err := parseCheckoutSession(event)
		if err != nil {
			return err
		}
		return s.reconcileSession(sess, s.launches.FailPayment)
	default:
		// Unrelated event types are acknowledged and kept for audit.
		return nil
	}
}

func parseCheckoutSession(event stripe.Event) (*stripe.CheckoutSession, error) {
	var sess stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
		return nil, fmt.Errorf("parse checkout session payload: %w", err)
	}
	return &sess, nil
}

func (s *Service) reconcileSession(sess *stripe.CheckoutSession, transition func(uint) (bool, error)) error {
	if sess.ClientReferenceID == "" {
		return errors.New("checkout session has no client reference")
	}
	project, err := s.repo.GetProjectByUUID(sess.ClientReferenceID)
	if err != nil {
		return fmt.Errorf("resolve project %s: %w", sess.ClientReferenceID, err)
	}
	_, err = transition(project.ID)
	return err
}

// RecordWebhookEvent persists webhook payloads idempotently.
func (s *Service) RecordWebhookEvent(ctx context.Context, in WebhookEventInput) (bool, *models.PaymentWebhookEvent, error) {
	_ = ctx
	provider := strings.ToLower(strings.TrimSpace(in.Provider))
	if provider == "" {
		return false, nil, errors.New("provider is required")
	}
	eventID := strings.TrimSpace(in.ProviderEventID)
	if eventID == "" {
		sum := sha256.Sum256([]byte(in.PayloadJSON))
		eventID = "hash:" + hex.EncodeToString(sum[:])
	}

	event := &models.PaymentWebhookEvent{
		Provider:        provider,
		ProviderEventID: eventID,
		EventType:       strings.TrimSpace(in.EventType),
		PayloadJSON:     in.PayloadJSON,
		SignatureValid:  in.SignatureValid,
	}
	return s.repo.CreateWebhookEventIfNotExists(event)
}

// MarkWebhookProcessed marks an event as processed and stores an optional error.
func (s *Service) MarkWebhookProcessed(ctx context.Context, webhookEventID uint, processingErr error) error {
	_ = ctx
	if webhookEventID == 0 {
		return errors.New("webhook_event_id is required")
	}
	errMsg := ""
	if processingErr != nil {
		errMsg = processingErr.Error()
	}
	return s.repo.MarkWebhookProcessed(webhookEventID, errMsg)
}
