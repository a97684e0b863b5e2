package services

import (
	"context"
	"encoding/hex"
	"log"
	"strings"
	"time"

	"github.com/YuTaX9/Order-and-Inventory-Management-System-backend/internal/domain"
	rabbit "github.com/YuTaX9/Order-and-Inventory-Management-System-backend/internal/infra/rabbitmq"
	"github.com/YuTaX9/Order-and-Inventory-Management-System-backend/internal/repository"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// maxPlaceAttempts bounds retries on transaction conflicts and order-number
// collisions before surfacing domain.ErrConflict to the caller.
const maxPlaceAttempts = 3

type OrderService struct {
	orders      repository.OrderRepository
	publisher   rabbit.PublisherInterface
	redisClient *redis.Client
}

func NewOrderService(orders repository.OrderRepository, pub rabbit.PublisherInterface) *OrderService {
	return &OrderService{
		orders:    orders,
		publisher: pub,
	}
}

func (s *OrderService) SetRedisClient(client *redis.Client) {
	s.redisClient = client
}

// PlaceOrder validates the requested lines, reserves stock and creates the
// order atomically. Duplicate product ids are merged before validation so a
// split line cannot bypass the stock check.
func (s *OrderService) PlaceOrder(ctx context.Context, userID uint64, lines []domain.OrderLine, shippingAddress, notes string) (*domain.Order, error) {
	if len(lines) == 0 {
		return nil, domain.Validationf("order must contain at least one item")
	}
	for _, l := range lines {
		if l.ProductID == 0 {
			return nil, domain.Validationf("every item must have a product id")
		}
		if l.Quantity <= 0 {
			return nil, domain.Validationf("quantity must be at least 1")
		}
	}
	if strings.TrimSpace(shippingAddress) == "" {
		return nil, domain.Validationf("shipping address is required")
	}

	merged := domain.MergeLines(lines)

	var order *domain.Order
	for attempt := 0; attempt < maxPlaceAttempts; attempt++ {
		candidate := &domain.Order{
			UserID:          userID,
			OrderNumber:     newOrderNumber(),
			Status:          domain.StatusPending,
			ShippingAddress: shippingAddress,
			Notes:           notes,
		}
		err := s.orders.ReserveAndCreate(ctx, candidate, merged)
		if err == nil {
			order = candidate
			break
		}
		if err == domain.ErrConflict {
			continue
		}
		return nil, err
	}
	if order == nil {
		return nil, domain.ErrConflict
	}

	go s.publishOrderCreated(context.Background(), order)
	s.invalidateProducts(ctx, merged)

	return order, nil
}

// GetOrder returns an order visible to the actor: owners see their own,
// admins see all.
func (s *OrderService) GetOrder(ctx context.Context, actor domain.Actor, orderID uint64) (*domain.Order, error) {
	o, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, domain.ErrOrderNotFound
	}
	if !actor.CanManageOrder(o.UserID) {
		return nil, domain.ErrPermissionDenied
	}
	return o, nil
}

// ListOrders returns the actor's orders, or every order for admins.
func (s *OrderService) ListOrders(ctx context.Context, actor domain.Actor, status domain.OrderStatus) ([]domain.Order, error) {
	if status != "" && !status.Valid() {
		return nil, domain.Validationf("unknown order status %q", status)
	}
	f := repository.OrderFilter{Status: status}
	if !actor.IsAdmin {
		f.UserID = actor.UserID
	}
	return s.orders.List(ctx, f)
}

// UpdateStatus applies an admin-driven state-machine transition. Moving into
// cancelled restores stock atomically with the status change.
func (s *OrderService) UpdateStatus(ctx context.Context, actor domain.Actor, orderID uint64, to domain.OrderStatus) (*domain.Order, error) {
	if !actor.IsAdmin {
		return nil, domain.ErrPermissionDenied
	}
	if !to.Valid() {
		return nil, domain.Validationf("unknown order status %q", to)
	}
	return s.transition(ctx, orderID, to)
}

// Cancel is the one transition the order's owner may trigger themselves.
func (s *OrderService) Cancel(ctx context.Context, actor domain.Actor, orderID uint64) (*domain.Order, error) {
	o, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, domain.ErrOrderNotFound
	}
	if !actor.CanManageOrder(o.UserID) {
		return nil, domain.ErrPermissionDenied
	}
	return s.transition(ctx, orderID, domain.StatusCancelled)
}

func (s *OrderService) transition(ctx context.Context, orderID uint64, to domain.OrderStatus) (*domain.Order, error) {
	updated, err := s.orders.Transition(ctx, orderID, to)
	if err != nil {
		return nil, err
	}

	go s.publishStatusChanged(context.Background(), updated, to)
	if to == domain.StatusCancelled {
		lines := make([]domain.OrderLine, 0, len(updated.Items))
		for _, it := range updated.Items {
			lines = append(lines, domain.OrderLine{ProductID: it.ProductID, Quantity: it.Quantity})
		}
		s.invalidateProducts(ctx, lines)
	}

	return updated, nil
}

func (s *OrderService) publishOrderCreated(ctx context.Context, order *domain.Order) {
	evt := domain.OrderCreatedEvent{
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		UserID:      order.UserID,
		TotalAmount: order.TotalAmount,
		ItemCount:   len(order.Items),
		CreatedAt:   order.CreatedAt,
	}
	if err := s.publisher.Publish(ctx, "order.created", evt); err != nil {
		log.Printf("Failed to publish order.created for %s: %v", order.OrderNumber, err)
	}
}

func (s *OrderService) publishStatusChanged(ctx context.Context, order *domain.Order, to domain.OrderStatus) {
	evt := domain.OrderStatusChangedEvent{
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		To:          to,
		ChangedAt:   time.Now(),
	}
	if err := s.publisher.Publish(ctx, "order.status_changed", evt); err != nil {
		log.Printf("Failed to publish order.status_changed for %s: %v", order.OrderNumber, err)
	}
}

func (s *OrderService) invalidateProducts(ctx context.Context, lines []domain.OrderLine) {
	if s.redisClient == nil {
		return
	}
	keys := make([]string, 0, len(lines))
	for _, l := range lines {
		keys = append(keys, productCacheKey(l.ProductID))
	}
	if err := s.redisClient.Del(ctx, keys...).Err(); err != nil {
		log.Printf("Failed to invalidate product cache: %v", err)
	}
}

// newOrderNumber generates an ORD-XXXXXXXX token from a v4 UUID. The unique
// index on orders.order_number is authoritative; collisions retry.
func newOrderNumber() string {
	u := uuid.New()
	return "ORD-" + strings.ToUpper(hex.EncodeToString(u[:4]))
}
