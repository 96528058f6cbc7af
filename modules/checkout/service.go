package checkout

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v76"
	checkoutsession "github.com/stripe/stripe-go/v76/checkout/session"

	"etsy-optimizer-server/modules/common/config"
	"etsy-optimizer-server/modules/common/model"
	"etsy-optimizer-server/modules/usage"
)

// Config - Stripe 연동 설정.
// SecretKey가 있으면 Checkout Session을 만들고, 없으면 정적 Payment Link로 보낸다.
type Config struct {
	SecretKey     string
	PricePro      string
	PriceLifetime string
	LinkPro       string
	LinkLifetime  string
	SuccessURL    string
	CancelURL     string
}

// Service - 플랜 결제 시작과 결제 후 업그레이드 확정
type Service struct {
	usage *usage.Service
	cfg   Config
}

func NewService(usageService *usage.Service, cfg Config) *Service {
	if cfg.SecretKey != "" {
		stripe.Key = cfg.SecretKey
	}
	return &Service{
		usage: usageService,
		cfg:   cfg,
	}
}

func NewServiceFromConfig(usageService *usage.Service) *Service {
	cfg := config.GetConfig()
	return NewService(usageService, Config{
		SecretKey:     cfg.StripeSecretKey,
		PricePro:      cfg.StripePricePro,
		PriceLifetime: cfg.StripePriceLifetime,
		LinkPro:       cfg.StripeLinkPro,
		LinkLifetime:  cfg.StripeLinkLifetime,
		SuccessURL:    cfg.CheckoutSuccessURL,
		CancelURL:     cfg.CheckoutCancelURL,
	})
}

// CheckoutURL - 결제 페이지 URL 생성. 클라이언트는 이 URL로 리다이렉트한다.
func (s *Service) CheckoutURL(plan string) (string, error) {
	if plan != model.PlanPro && plan != model.PlanLifetime {
		return "", fmt.Errorf("invalid plan: %s", plan)
	}

	if s.cfg.SecretKey == "" {
		return s.paymentLink(plan)
	}
	return s.createSession(plan)
}

// paymentLink - 호스티드 Payment Link 모드
func (s *Service) paymentLink(plan string) (string, error) {
	link := s.cfg.LinkPro
	if plan == model.PlanLifetime {
		link = s.cfg.LinkLifetime
	}
	if link == "" {
		return "", fmt.Errorf("no payment link configured for plan: %s", plan)
	}
	return link, nil
}

// createSession - Stripe Checkout Session 모드.
// pro는 구독 결제, lifetime은 1회 결제.
func (s *Service) createSession(plan string) (string, error) {
	priceID := s.cfg.PricePro
	mode := string(stripe.CheckoutSessionModeSubscription)
	if plan == model.PlanLifetime {
		priceID = s.cfg.PriceLifetime
		mode = string(stripe.CheckoutSessionModePayment)
	}
	if priceID == "" {
		return "", fmt.Errorf("no price configured for plan: %s", plan)
	}

	params := &stripe.CheckoutSessionParams{
		Mode: stripe.String(mode),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(priceID),
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(fmt.Sprintf("%s?plan=%s&session_id={CHECKOUT_SESSION_ID}", s.cfg.SuccessURL, plan)),
		CancelURL:  stripe.String(s.cfg.CancelURL),
		Metadata:   map[string]string{"plan": plan},
	}

	sess, err := checkoutsession.New(params)
	if err != nil {
		return "", fmt.Errorf("failed to create checkout session: %w", err)
	}

	log.Printf("💳 [Checkout] Session created for plan %s: %s", plan, sess.ID)
	return sess.URL, nil
}

// Confirm - 결제 복귀 후 업그레이드 확정. 1회만 적용되고 재호출은 no-op.
func (s *Service) Confirm(ctx context.Context, plan, sessionID string) (model.UserState, error) {
	if plan != model.PlanPro && plan != model.PlanLifetime {
		return model.UserState{}, fmt.Errorf("invalid plan: %s", plan)
	}

	state := s.usage.GetState()
	if state.SubscriptionID != "" {
		log.Printf("⚠️  [Checkout] Upgrade already confirmed (subscription %s), ignoring", state.SubscriptionID)
		return state, nil
	}

	email := ""
	subscriptionID := "link-" + uuid.New().String()

	if s.cfg.SecretKey != "" && sessionID != "" {
		sess, err := checkoutsession.Get(sessionID, nil)
		if err != nil {
			return model.UserState{}, fmt.Errorf("failed to verify checkout session: %w", err)
		}
		if sess.PaymentStatus != stripe.CheckoutSessionPaymentStatusPaid {
			return model.UserState{}, fmt.Errorf("payment not completed for session %s", sessionID)
		}
		if sess.CustomerDetails != nil {
			email = sess.CustomerDetails.Email
		}
		if sess.Subscription != nil {
			subscriptionID = sess.Subscription.ID
		} else {
			subscriptionID = sess.ID
		}
	}

	if err := s.usage.Upgrade(plan, email); err != nil {
		return model.UserState{}, err
	}
	s.usage.SetSubscriptionID(subscriptionID)

	log.Printf("✅ [Checkout] Upgrade confirmed: plan=%s subscription=%s", plan, subscriptionID)
	return s.usage.GetState(), nil
}
