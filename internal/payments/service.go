package payments

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/razorpay/razorpay-go"

	"github.com/relaycrm/relay/internal/authz"
	"github.com/relaycrm/relay/internal/plans"
	"github.com/relaycrm/relay/internal/shared"
	"github.com/relaycrm/relay/internal/subscriptions"
)

// Gateway creates orders at the payment provider.
type Gateway interface {
	CreateOrder(amountPaise int64, currency, receipt string) (string, error)
}

// razorpayGateway wraps the Razorpay SDK client.
type razorpayGateway struct {
	client *razorpay.Client
}

// NewRazorpayGateway constructs the production gateway.
func NewRazorpayGateway(keyID, keySecret string) Gateway {
	return &razorpayGateway{client: razorpay.NewClient(keyID, keySecret)}
}

func (g *razorpayGateway) CreateOrder(amountPaise int64, currency, receipt string) (string, error) {
	order, err := g.client.Order.Create(map[string]interface{}{
		"amount":   amountPaise,
		"currency": currency,
		"receipt":  receipt,
	}, nil)
	if err != nil {
		return "", fmt.Errorf("razorpay create order: %w", err)
	}
	id, ok := order["id"].(string)
	if !ok {
		return "", errors.New("razorpay create order: missing order id")
	}
	return id, nil
}

// PlanCatalog resolves plans by tier name.
type PlanCatalog interface {
	ByName(ctx context.Context, name string) (plans.Plan, error)
}

// SubscriptionCreator persists the subscription granted by a verified
// payment.
type SubscriptionCreator interface {
	Create(ctx context.Context, sub subscriptions.Subscription) (subscriptions.Subscription, error)
}

// IdempotencyStore guards against replayed gateway callbacks.
type IdempotencyStore interface {
	CheckAndInsert(ctx context.Context, key, scope string) error
	Delete(ctx context.Context, key string) error
}

const idempotencyScope = "payments"

// Service implements the order/verify payment flow.
type Service struct {
	gateway   Gateway
	plans     PlanCatalog
	subs      SubscriptionCreator
	idem      IdempotencyStore
	keyID     string
	keySecret string
	logger    *slog.Logger
	now       func() time.Time
}

// NewService constructs a new Service.
func NewService(gateway Gateway, catalog PlanCatalog, subs SubscriptionCreator, idem IdempotencyStore, keyID, keySecret string, logger *slog.Logger) *Service {
	return &Service{
		gateway:   gateway,
		plans:     catalog,
		subs:      subs,
		idem:      idem,
		keyID:     keyID,
		keySecret: keySecret,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// WithClock overrides the time source, used by tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Order is what the frontend needs to open the gateway checkout.
type Order struct {
	OrderID  string
	Amount   int64
	Currency string
	KeyID    string
	Email    string
	PlanName string
}

// CreateOrder opens a gateway order for the selected plan.
func (s *Service) CreateOrder(ctx context.Context, email, planName string) (Order, error) {
	plan, err := s.plans.ByName(ctx, planName)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return Order{}, fmt.Errorf("%w: invalid plan selected", shared.ErrValidation)
		}
		return Order{}, fmt.Errorf("create order: %w", err)
	}

	receipt := "receipt_" + uuid.NewString()
	orderID, err := s.gateway.CreateOrder(plan.Price*100, "INR", receipt)
	if err != nil {
		return Order{}, fmt.Errorf("create order: %w", err)
	}
	return Order{
		OrderID:  orderID,
		Amount:   plan.Price,
		Currency: "INR",
		KeyID:    s.keyID,
		Email:    email,
		PlanName: planName,
	}, nil
}

// VerifyInput carries the gateway callback fields.
type VerifyInput struct {
	OrderID   string
	PaymentID string
	Signature string
	Email     string
	PlanName  string
}

// VerifyPayment validates the callback signature and grants a one-year
// subscription. A tampered signature creates nothing. Replays of the same
// payment id are rejected before any record is written.
func (s *Service) VerifyPayment(ctx context.Context, in VerifyInput) (subscriptions.Subscription, error) {
	if !VerifySignature(in.OrderID, in.PaymentID, in.Signature, s.keySecret) {
		return subscriptions.Subscription{}, authz.Denied(authz.ReasonPaymentVerifyFailed, "payment verification failed")
	}

	plan, err := s.plans.ByName(ctx, in.PlanName)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return subscriptions.Subscription{}, fmt.Errorf("%w: invalid plan selected", shared.ErrValidation)
		}
		return subscriptions.Subscription{}, fmt.Errorf("verify payment: %w", err)
	}

	if err := s.idem.CheckAndInsert(ctx, in.PaymentID, idempotencyScope); err != nil {
		return subscriptions.Subscription{}, err
	}

	start, end := subscriptions.NewTerm(s.now())
	sub, err := s.subs.Create(ctx, subscriptions.Subscription{
		Email:     in.Email,
		PlanID:    plan.ID,
		StartDate: start,
		EndDate:   end,
		Active:    true,
	})
	if err != nil {
		// Release the key so a retried callback can complete the grant.
		if derr := s.idem.Delete(ctx, in.PaymentID); derr != nil {
			s.logger.Error("release idempotency key", slog.String("payment_id", in.PaymentID), slog.Any("error", derr))
		}
		return subscriptions.Subscription{}, fmt.Errorf("verify payment: %w", err)
	}
	return sub, nil
}
