package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-habit-backend/internal/http/middleware"
)

// HeaderStripeSignature carries the webhook signature.
const HeaderStripeSignature = "Stripe-Signature"

// URLResponse carries a redirect target.
type URLResponse struct {
	URL string `json:"url" example:"https://checkout.stripe.com/c/pay/cs_test_a1"`
}

// WebhookResponse acknowledges a webhook.
type WebhookResponse struct {
	Received bool `json:"received" example:"true"`
}

// BillingWebhook godoc
// @ID          billingWebhook
// @Summary     Stripe webhook
// @Description Verifies the Stripe signature and mirrors subscription state onto the user. Unauthenticated.
// @Tags        Billing
// @Accept      json
// @Produce     json
// @Param       Stripe-Signature  header  string  true  "Stripe signature"
// @Success     200  {object}  handlers.WebhookResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Invalid signature or payload"
// @Failure     503  {object}  handlers.ErrorResponse  "Billing not configured"
// @Router      /billing/webhook [post]
func (h *Handlers) BillingWebhook(c *gin.Context) {
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "unreadable body")
		return
	}
	ev, err := h.billing.HandleWebhook(c.Request.Context(), payload, c.GetHeader(HeaderStripeSignature))
	if err != nil {
		serviceError(c, err, ErrCodeBillingFailed)
		return
	}
	middleware.LoggerFrom(c).Debug().Str("event_id", ev.ID).Str("event_type", ev.Type).Msg("webhook handled")
	ok(c, http.StatusOK, WebhookResponse{Received: true})
}

// BillingCheckout godoc
// @ID          billingCheckout
// @Summary     Start a Pro subscription
// @Tags        Billing
// @Produce     json
// @Security    BearerAuth
// @Success     200  {object}  handlers.URLResponse
// @Failure     503  {object}  handlers.ErrorResponse  "Billing not configured"
// @Router      /billing/checkout [post]
func (h *Handlers) BillingCheckout(c *gin.Context) {
	u, found := currentUser(c)
	if !found {
		return
	}
	url, err := h.billing.Checkout(c.Request.Context(), u)
	if err != nil {
		serviceError(c, err, ErrCodeBillingFailed)
		return
	}
	ok(c, http.StatusOK, URLResponse{URL: url})
}

// BillingPortal godoc
// @ID          billingPortal
// @Summary     Manage the subscription
// @Tags        Billing
// @Produce     json
// @Security    BearerAuth
// @Success     200  {object}  handlers.URLResponse
// @Failure     400  {object}  handlers.ErrorResponse  "No billing customer"
// @Failure     503  {object}  handlers.ErrorResponse  "Billing not configured"
// @Router      /billing/portal [post]
func (h *Handlers) BillingPortal(c *gin.Context) {
	u, found := currentUser(c)
	if !found {
		return
	}
	url, err := h.billing.Portal(c.Request.Context(), u)
	if err != nil {
		serviceError(c, err, ErrCodeBillingFailed)
		return
	}
	ok(c, http.StatusOK, URLResponse{URL: url})
}
