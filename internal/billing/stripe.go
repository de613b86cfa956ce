// Package billing adapts Stripe to the service: it verifies and decodes
// webhook events, maps subscription states onto the app's tiers, and creates
// checkout and customer-portal sessions.
package billing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/stripe/stripe-go/v76"
	portalsession "github.com/stripe/stripe-go/v76/billingportal/session"
	checkoutsession "github.com/stripe/stripe-go/v76/checkout/session"
	"github.com/stripe/stripe-go/v76/webhook"

	"github.com/tbourn/go-habit-backend/internal/domain"
)

// Event types the service reacts to.
const (
	EventSubscriptionCreated = "customer.subscription.created"
	EventSubscriptionUpdated = "customer.subscription.updated"
	EventSubscriptionDeleted = "customer.subscription.deleted"
	EventCheckoutCompleted   = "checkout.session.completed"
)

// ErrSignature is returned when a payload does not carry a valid signature.
var ErrSignature = errors.New("invalid webhook signature")

// Event is the subset of a Stripe event the service needs.
type Event struct {
	ID   string
	Type string
	// CustomerID and SubscriptionID are set for subscription and checkout
	// events.
	CustomerID     string
	SubscriptionID string
	// Status is the raw Stripe subscription status (subscription events).
	Status string
	// ClientReferenceID is our user id (checkout events).
	ClientReferenceID string
}

// MapStripeStatus maps a Stripe subscription status onto the app tiers.
func MapStripeStatus(status string) domain.SubscriptionStatus {
	switch stripe.SubscriptionStatus(status) {
	case stripe.SubscriptionStatusActive:
		return domain.StatusActive
	case stripe.SubscriptionStatusTrialing:
		return domain.StatusTrial
	case stripe.SubscriptionStatusCanceled, stripe.SubscriptionStatusUnpaid, stripe.SubscriptionStatusPastDue:
		return domain.StatusCanceled
	default:
		return domain.StatusFree
	}
}

// ParseWebhook verifies the Stripe-Signature header against secret and
// decodes the event. Events of other types are returned with only ID and
// Type populated.
func ParseWebhook(payload []byte, sigHeader, secret string) (Event, error) {
	ev, err := webhook.ConstructEventWithOptions(payload, sigHeader, secret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return Event{}, fmt.Errorf("%w: %v", ErrSignature, err)
	}

	out := Event{ID: ev.ID, Type: string(ev.Type)}
	if ev.Data == nil {
		return out, nil
	}

	switch out.Type {
	case EventSubscriptionCreated, EventSubscriptionUpdated, EventSubscriptionDeleted:
		var sub stripe.Subscription
		if err := json.Unmarshal(ev.Data.Raw, &sub); err != nil {
			return Event{}, fmt.Errorf("decode subscription: %w", err)
		}
		out.SubscriptionID = sub.ID
		out.Status = string(sub.Status)
		if sub.Customer != nil {
			out.CustomerID = sub.Customer.ID
		}
	case EventCheckoutCompleted:
		var cs stripe.CheckoutSession
		if err := json.Unmarshal(ev.Data.Raw, &cs); err != nil {
			return Event{}, fmt.Errorf("decode checkout session: %w", err)
		}
		out.ClientReferenceID = cs.ClientReferenceID
		if cs.Customer != nil {
			out.CustomerID = cs.Customer.ID
		}
		if cs.Subscription != nil {
			out.SubscriptionID = cs.Subscription.ID
		}
	}
	return out, nil
}

// Gateway creates hosted Stripe sessions.
type Gateway interface {
	CheckoutURL(ctx context.Context, userID, email string) (string, error)
	PortalURL(ctx context.Context, customerID string) (string, error)
}

// StripeGateway implements Gateway with the Stripe API.
type StripeGateway struct {
	PriceID string
	AppURL  string

	checkout checkoutsession.Client
	portal   portalsession.Client
}

// NewStripeGateway returns a gateway using secretKey. A non-nil backend
// overrides the default API backend (tests point it at a local server).
func NewStripeGateway(secretKey, priceID, appURL string, backend stripe.Backend) *StripeGateway {
	if backend == nil {
		backend = stripe.GetBackend(stripe.APIBackend)
	}
	return &StripeGateway{
		PriceID:  priceID,
		AppURL:   strings.TrimRight(appURL, "/"),
		checkout: checkoutsession.Client{B: backend, Key: secretKey},
		portal:   portalsession.Client{B: backend, Key: secretKey},
	}
}

// CheckoutURL implements Gateway. The session is in subscription mode and
// carries userID as client_reference_id so the completion webhook can link
// the customer.
func (g *StripeGateway) CheckoutURL(ctx context.Context, userID, email string) (string, error) {
	params := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		ClientReferenceID: stripe.String(userID),
		SuccessURL:        stripe.String(g.AppURL + "/dashboard?success=true"),
		CancelURL:         stripe.String(g.AppURL + "/pricing?canceled=true"),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{Price: stripe.String(g.PriceID), Quantity: stripe.Int64(1)},
		},
	}
	if email != "" {
		params.CustomerEmail = stripe.String(email)
	}
	params.Context = ctx

	s, err := g.checkout.New(params)
	if err != nil {
		return "", fmt.Errorf("create checkout session: %w", err)
	}
	return s.URL, nil
}

// PortalURL implements Gateway.
func (g *StripeGateway) PortalURL(ctx context.Context, customerID string) (string, error) {
	params := &stripe.BillingPortalSessionParams{
		Customer:  stripe.String(customerID),
		ReturnURL: stripe.String(g.AppURL + "/settings"),
	}
	params.Context = ctx

	s, err := g.portal.New(params)
	if err != nil {
		return "", fmt.Errorf("create portal session: %w", err)
	}
	return s.URL, nil
}
