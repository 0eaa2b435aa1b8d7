package billing

import (
	"context"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
)

// Provider is the slice of the payment API the service needs.
type Provider interface {
	CreateCustomer(ctx context.Context, email, name, companyID string) (string, error)
	CreateCheckoutSession(ctx context.Context, customerID, priceID, currency, successURL, cancelURL string) (string, error)
	CreatePortalSession(ctx context.Context, customerID, returnURL string) (string, error)
}

type stripeProvider struct {
	api *client.API
}

func NewStripeProvider(secretKey string) Provider {
	return &stripeProvider{api: client.New(secretKey, nil)}
}

func (p *stripeProvider) CreateCustomer(ctx context.Context, email, name, companyID string) (string, error) {
	params := &stripe.CustomerParams{
		Email: stripe.String(email),
		Name:  stripe.String(name),
	}
	params.Context = ctx
	params.AddMetadata("company_id", companyID)

	c, err := p.api.Customers.New(params)
	if err != nil {
		return "", err
	}
	return c.ID, nil
}

func (p *stripeProvider) CreateCheckoutSession(ctx context.Context, customerID, priceID, currency, successURL, cancelURL string) (string, error) {
	params := &stripe.CheckoutSessionParams{
		Customer: stripe.String(customerID),
		Mode:     stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		Currency: stripe.String(currency),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{Price: stripe.String(priceID), Quantity: stripe.Int64(1)},
		},
		SuccessURL: stripe.String(successURL),
		CancelURL:  stripe.String(cancelURL),
	}
	params.Context = ctx

	s, err := p.api.CheckoutSessions.New(params)
	if err != nil {
		return "", err
	}
	return s.URL, nil
}

func (p *stripeProvider) CreatePortalSession(ctx context.Context, customerID, returnURL string) (string, error) {
	params := &stripe.BillingPortalSessionParams{
		Customer:  stripe.String(customerID),
		ReturnURL: stripe.String(returnURL),
	}
	params.Context = ctx

	s, err := p.api.BillingPortalSessions.New(params)
	if err != nil {
		return "", err
	}
	return s.URL, nil
}
