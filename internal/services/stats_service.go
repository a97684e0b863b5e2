package services

import (
	"context"

	"github.com/YuTaX9/Order-and-Inventory-Management-System-backend/internal/domain"
	"github.com/YuTaX9/Order-and-Inventory-Management-System-backend/internal/repository"
)

// AdminStats is the dashboard aggregate returned to administrators.
type AdminStats struct {
	TotalProducts   int64                          `json:"totalProducts"`
	LowStockCount   int64                          `json:"lowStockCount"`
	OutOfStockCount int64                          `json:"outOfStockCount"`
	TotalOrders     int64                          `json:"totalOrders"`
	OrdersByStatus  map[domain.OrderStatus]int64   `json:"ordersByStatus"`
	TotalRevenue    string                         `json:"totalRevenue"`
	RecentOrders    []domain.Order                 `json:"recentOrders"`
}

type StatsService struct {
	catalog repository.CatalogRepository
	orders  repository.OrderRepository
}

func NewStatsService(catalog repository.CatalogRepository, orders repository.OrderRepository) *StatsService {
	return &StatsService{catalog: catalog, orders: orders}
}

func (s *StatsService) Dashboard(ctx context.Context, actor domain.Actor) (*AdminStats, error) {
	if !actor.IsAdmin {
		return nil, domain.ErrPermissionDenied
	}

	out := &AdminStats{
		OrdersByStatus: map[domain.OrderStatus]int64{},
	}

	var err error
	if out.TotalProducts, err = s.catalog.CountActiveProducts(ctx); err != nil {
		return nil, err
	}
	if out.LowStockCount, err = s.catalog.CountLowStock(ctx); err != nil {
		return nil, err
	}
	if out.OutOfStockCount, err = s.catalog.CountOutOfStock(ctx); err != nil {
		return nil, err
	}

	byStatus, err := s.orders.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	for _, status := range []domain.OrderStatus{
		domain.StatusPending, domain.StatusProcessing, domain.StatusShipped,
		domain.StatusDelivered, domain.StatusCancelled,
	} {
		out.OrdersByStatus[status] = byStatus[status]
		out.TotalOrders += byStatus[status]
	}

	revenue, err := s.orders.DeliveredRevenue(ctx)
	if err != nil {
		return nil, err
	}
	out.TotalRevenue = revenue.StringFixed(2)

	recent, err := s.orders.List(ctx, repository.OrderFilter{Limit: 10})
	if err != nil {
		return nil, err
	}
	out.RecentOrders = recent

	return out, nil
}
