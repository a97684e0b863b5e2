package services

import (
	"context"
	"log"
	"time"

	"github.com/YuTaX9/Order-and-Inventory-Management-System-backend/internal/domain"
	rabbit "github.com/YuTaX9/Order-and-Inventory-Management-System-backend/internal/infra/rabbitmq"
	"github.com/YuTaX9/Order-and-Inventory-Management-System-backend/internal/infra/stripe"
	"github.com/YuTaX9/Order-and-Inventory-Management-System-backend/internal/repository"

	"github.com/shopspring/decimal"
)

// paymentCurrency is the single currency this deployment charges in.
const paymentCurrency = "usd"

type PaymentService struct {
	payments  repository.PaymentRepository
	orders    repository.OrderRepository
	gateway   stripe.GatewayInterface
	publisher rabbit.PublisherInterface
}

func NewPaymentService(payments repository.PaymentRepository, orders repository.OrderRepository, gw stripe.GatewayInterface, pub rabbit.PublisherInterface) *PaymentService {
	return &PaymentService{
		payments:  payments,
		orders:    orders,
		gateway:   gw,
		publisher: pub,
	}
}

// CreatePaymentHandle opens a provider-side intent for a pending order and
// persists the one-per-order payment row in requires_confirmation.
func (s *PaymentService) CreatePaymentHandle(ctx context.Context, actor domain.Actor, orderID uint64) (*domain.Payment, string, error) {
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, "", err
	}
	if order == nil {
		return nil, "", domain.ErrOrderNotFound
	}
	if order.UserID != actor.UserID {
		return nil, "", domain.ErrPermissionDenied
	}
	if order.Status != domain.StatusPending {
		return nil, "", domain.ErrOrderNotPayable
	}

	existing, err := s.payments.FindByOrderID(ctx, orderID)
	if err != nil {
		return nil, "", err
	}
	if existing != nil {
		return nil, "", domain.ErrConflict
	}

	intent, err := s.gateway.CreateIntent(ctx, amountToCents(order.TotalAmount), paymentCurrency, order.ID)
	if err != nil {
		return nil, "", &domain.PaymentGatewayError{Op: "create_intent", Err: err}
	}

	payment := &domain.Payment{
		OrderID:  order.ID,
		IntentID: intent.ID,
		Amount:   order.TotalAmount,
		Currency: paymentCurrency,
		Status:   domain.PaymentRequiresConfirmation,
	}
	if err := s.payments.Create(ctx, payment); err != nil {
		return nil, "", err
	}
	return payment, intent.ClientSecret, nil
}

// GetPayment returns the payment for an order visible to the actor.
func (s *PaymentService) GetPayment(ctx context.Context, actor domain.Actor, orderID uint64) (*domain.Payment, error) {
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, domain.ErrOrderNotFound
	}
	if !actor.CanManageOrder(order.UserID) {
		return nil, domain.ErrPermissionDenied
	}
	p, err := s.payments.FindByOrderID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrPaymentNotFound
	}
	return p, nil
}

// HandleWebhook reconciles a provider event into payment and order state.
// Replays of an already-applied event id are silent no-ops; the collaborator
// may deliver duplicates or reorder deliveries.
func (s *PaymentService) HandleWebhook(ctx context.Context, event domain.WebhookEvent) error {
	if event.EventID == "" {
		return domain.Validationf("webhook event id is required")
	}
	if event.OrderID == 0 {
		return domain.Validationf("webhook order id is required")
	}
	if event.Type != domain.EventPaymentSucceeded && event.Type != domain.EventPaymentFailed {
		return domain.Validationf("unsupported webhook event type %q", event.Type)
	}

	applied, err := s.payments.ApplyWebhook(ctx, event)
	if err != nil {
		return err
	}
	if !applied {
		log.Printf("Webhook event %s already applied, skipping", event.EventID)
		return nil
	}

	status := domain.PaymentSucceeded
	if event.Type == domain.EventPaymentFailed {
		status = domain.PaymentFailed
	}
	go s.publishSettled(context.Background(), event, status)
	return nil
}

func (s *PaymentService) publishSettled(ctx context.Context, event domain.WebhookEvent, status domain.PaymentStatus) {
	evt := domain.PaymentSettledEvent{
		OrderID:   event.OrderID,
		IntentID:  event.IntentID,
		Status:    status,
		SettledAt: time.Now(),
	}
	if err := s.publisher.Publish(ctx, "payment.settled", evt); err != nil {
		log.Printf("Failed to publish payment.settled for order %d: %v", event.OrderID, err)
	}
}

// amountToCents converts a decimal amount to the smallest currency unit the
// provider expects.
func amountToCents(amount decimal.Decimal) int64 {
	return amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}
