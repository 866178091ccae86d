package billing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/checkout/session"
	"github.com/stripe/stripe-go/v79/webhook"

	"github.com/spergel/translation-stuff-sub001/internal/shared/telemetry"
	"github.com/spergel/translation-stuff-sub001/internal/usage"
	"github.com/spergel/translation-stuff-sub001/internal/users"
)

var (
	ErrNotConfigured = errors.New("billing not configured")
	ErrUnknownPlan   = errors.New("unknown plan")
)

// Config holds the Stripe wiring for the billing service.
type Config struct {
	SecretKey     string
	WebhookSecret string
	PriceBasic    string
	PricePro      string
	PriceEnt      string
	SuccessURL    string
	CancelURL     string
}

// Service creates checkout sessions and applies webhook plan transitions.
type Service struct {
	cfg    Config
	users  *users.Service
	repo   users.Repo
	usage  *usage.Service
	events EventsRepo
}

// NewService constructs a Service and sets the global Stripe key.
func NewService(cfg Config, usersSvc *users.Service, usersRepo users.Repo, usageSvc *usage.Service, events EventsRepo) *Service {
	if cfg.SecretKey != "" {
		stripe.Key = cfg.SecretKey
	}
	return &Service{
		cfg:    cfg,
		users:  usersSvc,
		repo:   usersRepo,
		usage:  usageSvc,
		events: events,
	}
}

func (s *Service) priceFor(plan string) string {
	switch plan {
	case users.PlanBasic:
		return s.cfg.PriceBasic
	case users.PlanPro:
		return s.cfg.PricePro
	case users.PlanEnterprise:
		return s.cfg.PriceEnt
	default:
		return ""
	}
}

func (s *Service) planForPrice(priceID string) string {
	switch priceID {
	case "":
		return ""
	case s.cfg.PriceBasic:
		return users.PlanBasic
	case s.cfg.PricePro:
		return users.PlanPro
	case s.cfg.PriceEnt:
		return users.PlanEnterprise
	default:
		return ""
	}
}

// CreateCheckout starts a Stripe Checkout session for a plan upgrade and
// returns the hosted payment URL.
func (s *Service) CreateCheckout(ctx context.Context, userID, email, plan string) (string, error) {
	if s.cfg.SecretKey == "" {
		return "", ErrNotConfigured
	}
	priceID := s.priceFor(plan)
	if priceID == "" {
		return "", fmt.Errorf("%w: %s", ErrUnknownPlan, plan)
	}

	params := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{Price: stripe.String(priceID), Quantity: stripe.Int64(1)},
		},
		SuccessURL:        stripe.String(s.cfg.SuccessURL),
		CancelURL:         stripe.String(s.cfg.CancelURL),
		ClientReferenceID: stripe.String(userID),
	}
	params.Context = ctx
	if email != "" {
		params.CustomerEmail = stripe.String(email)
	}
	params.AddMetadata("plan", plan)
	params.AddMetadata("userId", userID)

	sess, err := session.New(params)
	if err != nil {
		return "", fmt.Errorf("stripe checkout: %w", err)
	}
	return sess.URL, nil
}

// HandleWebhook verifies the event signature, deduplicates on event ID and
// applies the resulting plan transition.
func (s *Service) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	if s.cfg.WebhookSecret == "" {
		return ErrNotConfigured
	}

	event, err := webhook.ConstructEvent(payload, signature, s.cfg.WebhookSecret)
	if err != nil {
		return fmt.Errorf("webhook signature: %w", err)
	}

	fresh, err := s.events.MarkProcessed(ctx, event.ID, string(event.Type))
	if err != nil {
		return err
	}
	if !fresh {
		telemetry.Info("billing.event_duplicate", map[string]any{"event_id": event.ID})
		return nil
	}

	switch event.Type {
	case "checkout.session.completed":
		return s.handleCheckoutCompleted(ctx, event)
	case "customer.subscription.updated":
		return s.handleSubscriptionUpdated(ctx, event)
	case "customer.subscription.deleted":
		return s.handleSubscriptionDeleted(ctx, event)
	default:
		telemetry.Info("billing.event_ignored", map[string]any{
			"event_id":   event.ID,
			"event_type": string(event.Type),
		})
		return nil
	}
}

func (s *Service) handleCheckoutCompleted(ctx context.Context, event stripe.Event) error {
	var sess stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
		return fmt.Errorf("decode checkout session: %w", err)
	}

	userID := sess.ClientReferenceID
	plan := sess.Metadata["plan"]
	if userID == "" || !users.ValidPlan(plan) {
		return fmt.Errorf("checkout session %s: missing user or plan", sess.ID)
	}

	if sess.Customer != nil && sess.Customer.ID != "" {
		if err := s.repo.SetStripeCustomer(ctx, userID, sess.Customer.ID); err != nil {
			telemetry.Error("billing.set_customer", err, map[string]any{"user_id": userID})
		}
	}

	return s.applyPlan(ctx, userID, plan, event.ID)
}

func (s *Service) handleSubscriptionUpdated(ctx context.Context, event stripe.Event) error {
	var sub stripe.Subscription
	if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
		return fmt.Errorf("decode subscription: %w", err)
	}
	if sub.Customer == nil || sub.Customer.ID == "" {
		return fmt.Errorf("subscription %s: missing customer", sub.ID)
	}

	user, err := s.repo.GetByStripeCustomer(ctx, sub.Customer.ID)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			telemetry.Info("billing.unknown_customer", map[string]any{"customer_id": sub.Customer.ID})
			return nil
		}
		return err
	}

	plan := users.PlanFree
	if subscriptionActive(sub.Status) {
		if fromPrice := s.planForPrice(subscriptionPrice(&sub)); fromPrice != "" {
			plan = fromPrice
		} else {
			// Price not one of ours; leave the plan alone.
			return nil
		}
	}
	return s.applyPlan(ctx, user.ID, plan, event.ID)
}

func (s *Service) handleSubscriptionDeleted(ctx context.Context, event stripe.Event) error {
	var sub stripe.Subscription
	if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
		return fmt.Errorf("decode subscription: %w", err)
	}
	if sub.Customer == nil || sub.Customer.ID == "" {
		return fmt.Errorf("subscription %s: missing customer", sub.ID)
	}

	user, err := s.repo.GetByStripeCustomer(ctx, sub.Customer.ID)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			telemetry.Info("billing.unknown_customer", map[string]any{"customer_id": sub.Customer.ID})
			return nil
		}
		return err
	}
	return s.applyPlan(ctx, user.ID, users.PlanFree, event.ID)
}

func (s *Service) applyPlan(ctx context.Context, userID, plan, eventID string) error {
	if err := s.users.ChangePlan(ctx, userID, plan); err != nil {
		return fmt.Errorf("change plan: %w", err)
	}
	if s.usage != nil {
		if _, err := s.usage.ApplyPlan(ctx, userID, plan); err != nil {
			telemetry.Error("billing.apply_usage", err, map[string]any{"user_id": userID, "plan": plan})
		}
	}
	telemetry.Info("billing.plan_changed", map[string]any{
		"event_id": eventID,
		"user_id":  userID,
		"plan":     plan,
	})
	return nil
}

func subscriptionActive(status stripe.SubscriptionStatus) bool {
	switch status {
	case stripe.SubscriptionStatusActive, stripe.SubscriptionStatusTrialing:
		return true
	default:
		return false
	}
}

func subscriptionPrice(sub *stripe.Subscription) string {
	if sub == nil || sub.Items == nil || len(sub.Items.Data) == 0 {
		return ""
	}
	item := sub.Items.Data[0]
	if item == nil || item.Price == nil {
		return ""
	}
	return item.Price.ID
}

func planFromRequest(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}
