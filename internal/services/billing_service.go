// Package services – BillingService
//
// BillingService mirrors Stripe subscription state onto users and creates
// checkout and portal sessions. Webhooks for customers we do not know are
// acknowledged and logged so Stripe stops retrying them.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/tbourn/go-habit-backend/internal/billing"
	"github.com/tbourn/go-habit-backend/internal/domain"
	"github.com/tbourn/go-habit-backend/internal/repo"
)

// BillingService implements the billing endpoints.
type BillingService struct {
	DB            *gorm.DB
	Gateway       billing.Gateway
	WebhookSecret string
}

// HandleWebhook verifies and applies one Stripe event. It returns the
// decoded event so callers can log it.
func (s *BillingService) HandleWebhook(ctx context.Context, payload []byte, signature string) (billing.Event, error) {
	if s.WebhookSecret == "" {
		return billing.Event{}, ErrBillingDisabled
	}
	ev, err := billing.ParseWebhook(payload, signature, s.WebhookSecret)
	if err != nil {
		return billing.Event{}, fmt.Errorf("%w: %v", ErrInvalidWebhook, err)
	}

	tr := otel.Tracer("services/BillingService")
	ctx, span := tr.Start(ctx, "HandleWebhook",
		trace.WithAttributes(
			attribute.String("stripe.event", ev.Type),
			attribute.String("stripe.customer", ev.CustomerID),
		),
	)
	defer span.End()

	lg := loggerFrom(ctx).With().Str("event_id", ev.ID).Str("event_type", ev.Type).Logger()

	switch ev.Type {
	case billing.EventSubscriptionCreated, billing.EventSubscriptionUpdated, billing.EventSubscriptionDeleted:
		status := billing.MapStripeStatus(ev.Status)
		if ev.Type == billing.EventSubscriptionDeleted {
			status = domain.StatusCanceled
		}
		err = repo.SetStatusByCustomer(ctx, s.DB, ev.CustomerID, status, ev.SubscriptionID)
		if errors.Is(err, repo.ErrNotFound) {
			lg.Warn().Str("customer", ev.CustomerID).Msg("webhook for unknown customer ignored")
			return ev, nil
		}
		if err != nil {
			return ev, err
		}
		lg.Info().Str("status", string(status)).Msg("subscription status updated")

	case billing.EventCheckoutCompleted:
		if ev.ClientReferenceID == "" || ev.CustomerID == "" {
			lg.Warn().Msg("checkout session without user reference ignored")
			return ev, nil
		}
		err = repo.LinkCustomer(ctx, s.DB, ev.ClientReferenceID, ev.CustomerID, ev.SubscriptionID, domain.StatusActive)
		if errors.Is(err, repo.ErrNotFound) {
			lg.Warn().Str("user_id", ev.ClientReferenceID).Msg("checkout for unknown user ignored")
			return ev, nil
		}
		if err != nil {
			return ev, err
		}
		lg.Info().Str("user_id", ev.ClientReferenceID).Msg("customer linked")
	}
	return ev, nil
}

// Checkout returns the URL of a new subscription checkout session.
func (s *BillingService) Checkout(ctx context.Context, user *domain.User) (string, error) {
	if user == nil {
		return "", ErrUserRequired
	}
	if s.Gateway == nil {
		return "", ErrBillingDisabled
	}
	return s.Gateway.CheckoutURL(ctx, user.ID, user.Email)
}

// Portal returns the URL of a billing-portal session for the user's
// customer. Users who never subscribed get ErrNoCustomer.
func (s *BillingService) Portal(ctx context.Context, user *domain.User) (string, error) {
	if user == nil {
		return "", ErrUserRequired
	}
	if s.Gateway == nil {
		return "", ErrBillingDisabled
	}
	if user.StripeCustomerID == nil || strings.TrimSpace(*user.StripeCustomerID) == "" {
		return "", ErrNoCustomer
	}
	return s.Gateway.PortalURL(ctx, *user.StripeCustomerID)
}
