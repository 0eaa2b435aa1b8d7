// Package billing keeps each company's plan in step with its payment-provider subscription.
package billing

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog/log"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/webhook"

	apperrors "complyhr/internal/pkg/errors"
	"complyhr/internal/platform/config"
	"complyhr/internal/platform/models"
	"complyhr/internal/platform/repositories"
	"complyhr/internal/platform/tenant"
)

var webhookEvents = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "complyhr_billing_webhook_events_total",
	Help: "Billing webhook deliveries by event type and result.",
}, []string{"type", "result"})

var statusMap = map[stripe.SubscriptionStatus]string{
	stripe.SubscriptionStatusActive:   models.StatusActive,
	stripe.SubscriptionStatusTrialing: models.StatusTrialing,
	stripe.SubscriptionStatusPastDue:  models.StatusPastDue,
	stripe.SubscriptionStatusCanceled: models.StatusCanceled,
	stripe.SubscriptionStatusUnpaid:   models.StatusUnpaid,
}

// MapStatus translates a provider status. Anything outside the table reads as active.
func MapStatus(s stripe.SubscriptionStatus) string {
	if mapped, ok := statusMap[s]; ok {
		return mapped
	}
	return models.StatusActive
}

type Service struct {
	companies *repositories.CompanyRepository
	users     *repositories.UserRepository
	provider  Provider
	cfg       config.BillingConfig
	appURL    string
	now       func() time.Time
}

func NewService(db *sqlx.DB, provider Provider, cfg config.BillingConfig, appURL string) *Service {
	if cfg.Currency == "" {
		cfg.Currency = "gbp"
	}
	return &Service{
		companies: repositories.NewCompanyRepository(db),
		users:     repositories.NewUserRepository(db),
		provider:  provider,
		cfg:       cfg,
		appURL:    strings.TrimRight(appURL, "/"),
		now:       time.Now,
	}
}

func (s *Service) tierFor(priceID string) string {
	if priceID != "" && priceID == s.cfg.ProfessionalPriceID {
		return models.TierProfessional
	}
	return models.TierStarter
}

// HandleWebhook verifies the delivery signature before touching storage, then applies
// subscription lifecycle events. Without a configured secret every delivery is rejected.
// Unknown event types are accepted and ignored.
func (s *Service) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	if s.cfg.WebhookSecret == "" {
		webhookEvents.WithLabelValues("unknown", "unconfigured").Inc()
		log.Error().Msg("billing webhook received but no webhook secret is configured")
		return apperrors.InvalidInput("Invalid signature")
	}
	event, err := webhook.ConstructEventWithOptions(payload, signature, s.cfg.WebhookSecret, webhook.ConstructEventOptions{
		Tolerance:                webhook.DefaultTolerance,
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		webhookEvents.WithLabelValues("unknown", "invalid_signature").Inc()
		log.Warn().Err(err).Msg("rejected billing webhook")
		return apperrors.InvalidInput("Invalid signature")
	}

	eventType := string(event.Type)
	switch event.Type {
	case "customer.subscription.created", "customer.subscription.updated", "customer.subscription.deleted":
	default:
		webhookEvents.WithLabelValues(eventType, "ignored").Inc()
		return nil
	}

	var sub stripe.Subscription
	if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
		webhookEvents.WithLabelValues(eventType, "error").Inc()
		return apperrors.InvalidInput("Malformed subscription payload")
	}
	if sub.Customer == nil || sub.Customer.ID == "" {
		webhookEvents.WithLabelValues(eventType, "error").Inc()
		return apperrors.InvalidInput("Subscription has no customer")
	}

	var matched bool
	if event.Type == "customer.subscription.deleted" {
		matched, err = s.companies.UpdateSubscriptionStatus(ctx, sub.Customer.ID, models.StatusCanceled)
	} else {
		var priceID string
		if sub.Items != nil && len(sub.Items.Data) > 0 && sub.Items.Data[0].Price != nil {
			priceID = sub.Items.Data[0].Price.ID
		}
		matched, err = s.companies.UpdateSubscription(ctx, sub.Customer.ID, s.tierFor(priceID), MapStatus(sub.Status), sub.ID)
	}
	if err != nil {
		webhookEvents.WithLabelValues(eventType, "error").Inc()
		return err
	}
	if !matched {
		log.Warn().Str("customer_id", sub.Customer.ID).Str("event", eventType).Msg("billing event for unknown customer")
	}
	webhookEvents.WithLabelValues(eventType, "applied").Inc()
	return nil
}

type CheckoutInput struct {
	PriceID string `json:"priceId"`
}

// Checkout creates the provider customer on first use, then a subscription checkout session.
func (s *Service) Checkout(ctx context.Context, tc tenant.Context, in CheckoutInput) (string, error) {
	if in.PriceID == "" || (in.PriceID != s.cfg.StarterPriceID && in.PriceID != s.cfg.ProfessionalPriceID) {
		return "", apperrors.InvalidInput("Unknown price")
	}
	c, err := s.companies.GetByID(ctx, tc.CompanyID)
	if err != nil {
		return "", err
	}
	if c == nil {
		return "", apperrors.NotFound("Company not found")
	}

	customerID := ""
	if c.StripeCustomerID != nil {
		customerID = *c.StripeCustomerID
	}
	if customerID == "" {
		u, err := s.users.GetByID(ctx, tc.UserID)
		if err != nil {
			return "", err
		}
		if u == nil {
			return "", apperrors.Unauthorized("User not found")
		}
		if customerID, err = s.provider.CreateCustomer(ctx, u.Email, c.Name, c.ID); err != nil {
			return "", err
		}
		if err := s.companies.SetCustomerID(ctx, c.ID, customerID); err != nil {
			return "", err
		}
	}

	return s.provider.CreateCheckoutSession(ctx, customerID, in.PriceID, s.cfg.Currency,
		s.appURL+"/settings?billing=success", s.appURL+"/settings?billing=canceled")
}

func (s *Service) Portal(ctx context.Context, tc tenant.Context) (string, error) {
	c, err := s.companies.GetByID(ctx, tc.CompanyID)
	if err != nil {
		return "", err
	}
	if c == nil || c.StripeCustomerID == nil || *c.StripeCustomerID == "" {
		return "", apperrors.InvalidInput("No billing account found")
	}
	return s.provider.CreatePortalSession(ctx, *c.StripeCustomerID, s.appURL+"/settings")
}

// ExpireTrials marks lapsed trials without a subscription as past due.
func (s *Service) ExpireTrials(ctx context.Context) (int64, error) {
	return s.companies.ExpireTrials(ctx, s.now().Unix())
}
