package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/ahmetcoskunkizilkaya/rantbox/internal/models"
	"github.com/ahmetcoskunkizilkaya/rantbox/internal/payments"
	"github.com/ahmetcoskunkizilkaya/rantbox/internal/pricing"
	"github.com/ahmetcoskunkizilkaya/rantbox/internal/store"
	"gorm.io/datatypes"
)

var (
	ErrInvalidPackage = errors.New("invalid package")
	ErrUserNotFound   = errors.New("user not found")
	ErrInvalidEvent   = errors.New("webhook event is missing required fields")
)

// PaymentService turns credit package purchases into gateway checkouts and
// applies confirmed payments to the ledger.
type PaymentService struct {
	gateway  payments.Gateway
	payments store.PaymentStore
	accounts store.AccountStore
	events   store.EventClaimer
	ledger   *LedgerService
	now      func() time.Time
}

func NewPaymentService(
	gateway payments.Gateway,
	paymentStore store.PaymentStore,
	accounts store.AccountStore,
	events store.EventClaimer,
	ledger *LedgerService,
) *PaymentService {
	return &PaymentService{
		gateway:  gateway,
		payments: paymentStore,
		accounts: accounts,
		events:   events,
		ledger:   ledger,
		now:      time.Now,
	}
}

func (s *PaymentService) WithClock(now func() time.Time) *PaymentService {
	s.now = now
	return s
}

// StartCheckout returns the hosted checkout URL. The package and the account
// are validated before the gateway is contacted.
func (s *PaymentService) StartCheckout(ctx context.Context, packageID, userID, origin string) (string, error) {
	pkg, ok := pricing.Find(packageID)
	if !ok {
		return "", ErrInvalidPackage
	}
	if userID == "" {
		return "", ErrUserNotFound
	}
	if _, err := s.accounts.GetAccount(ctx, userID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", ErrUserNotFound
		}
		return "", fmt.Errorf("load account: %w", err)
	}

	origin = strings.TrimRight(origin, "/")
	metadata := map[string]string{
		"userId":    userID,
		"packageId": pkg.ID,
		"credits":   strconv.Itoa(pkg.Credits),
	}

	cs, err := s.gateway.CreateCheckoutSession(ctx, payments.CheckoutRequest{
		Name:        pricing.LineItemName(pkg),
		Description: pricing.LineItemDescription(pkg),
		Currency:    pricing.Currency,
		Amount:      pkg.Price,
		SuccessURL:  origin + "/success?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:   origin + "/buy-credits",
		Metadata:    metadata,
	})
	if err != nil {
		return "", fmt.Errorf("create checkout session: %w", err)
	}

	raw, err := json.Marshal(metadata)
	if err != nil {
		return "", fmt.Errorf("encode metadata: %w", err)
	}

	payment := &models.PaymentSession{
		UserID:          userID,
		PackageID:       pkg.ID,
		Amount:          pkg.Price,
		Credits:         pkg.Credits,
		Status:          models.PaymentPending,
		StripeSessionID: cs.ID,
		Metadata:        datatypes.JSON(raw),
		CreatedAt:       s.now(),
	}
	if err := s.payments.CreatePayment(ctx, payment); err != nil {
		return "", fmt.Errorf("record payment session: %w", err)
	}

	slog.Info("checkout session created",
		"user_id", userID,
		"package_id", pkg.ID,
		"session_id", cs.ID,
	)
	return cs.URL, nil
}

// HandleWebhook verifies and applies one gateway notification. A returned
// error other than ErrInvalidSignature or ErrInvalidEvent means the gateway
// should redeliver.
func (s *PaymentService) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	ev, err := s.gateway.ParseWebhook(payload, signature)
	if err != nil {
		slog.Warn("webhook signature verification failed", "error", err)
		if errors.Is(err, payments.ErrInvalidSignature) {
			return err
		}
		return fmt.Errorf("%w: %v", payments.ErrInvalidSignature, err)
	}
	return s.HandleEvent(ctx, ev)
}

func (s *PaymentService) HandleEvent(ctx context.Context, ev *payments.Event) error {
	switch ev.Type {
	case payments.EventCheckoutCompleted:
		return s.completeCheckout(ctx, ev)
	case payments.EventCheckoutExpired:
		return s.expireCheckout(ctx, ev)
	default:
		slog.Debug("ignoring webhook event", "event_id", ev.ID, "type", ev.Type)
		return nil
	}
}

func (s *PaymentService) completeCheckout(ctx context.Context, ev *payments.Event) error {
	userID := ev.Metadata["userId"]
	credits, err := strconv.Atoi(ev.Metadata["credits"])
	if ev.ID == "" || userID == "" || err != nil || credits <= 0 {
		slog.Error("checkout completed with invalid metadata",
			"event_id", ev.ID,
			"session_id", ev.SessionID,
		)
		return ErrInvalidEvent
	}

	claimed, err := s.events.ClaimEvent(ctx, ev.ID)
	if err != nil {
		return fmt.Errorf("claim event %s: %w", ev.ID, err)
	}
	if !claimed {
		slog.Info("duplicate webhook event", "event_id", ev.ID)
		return nil
	}

	if err := s.ledger.AddCredits(ctx, userID, credits); err != nil {
		s.release(ev.ID)
		return err
	}

	// Credits are applied; releasing the claim now would credit twice.
	n, err := s.payments.CompletePayments(ctx, ev.SessionID, s.now())
	if err != nil {
		slog.Error("error completing payment session",
			"event_id", ev.ID,
			"session_id", ev.SessionID,
			"error", err,
		)
	}

	slog.Info("credits added",
		"event_id", ev.ID,
		"user_id", userID,
		"credits", credits,
		"sessions", n,
	)
	return nil
}

func (s *PaymentService) expireCheckout(ctx context.Context, ev *payments.Event) error {
	n, err := s.payments.FailPendingPayments(ctx, ev.SessionID)
	if err != nil {
		return fmt.Errorf("fail payment session %s: %w", ev.SessionID, err)
	}
	slog.Info("checkout session expired", "event_id", ev.ID, "session_id", ev.SessionID, "sessions", n)
	return nil
}

func (s *PaymentService) release(eventID string) {
	// The request context may already be cancelled.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.events.ReleaseEvent(ctx, eventID); err != nil {
		slog.Error("error releasing webhook event", "event_id", eventID, "error", err)
	}
}
