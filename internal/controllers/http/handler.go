package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/YuTaX9/Order-and-Inventory-Management-System-backend/internal/domain"
	"github.com/YuTaX9/Order-and-Inventory-Management-System-backend/internal/services"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	auth     *services.AuthService
	catalog  *services.CatalogService
	orders   *services.OrderService
	payments *services.PaymentService
	stats    *services.StatsService
}

func NewHandler(auth *services.AuthService, catalog *services.CatalogService, orders *services.OrderService, payments *services.PaymentService, stats *services.StatsService) *Handler {
	return &Handler{
		auth:     auth,
		catalog:  catalog,
		orders:   orders,
		payments: payments,
		stats:    stats,
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	api := r.Group("/api/v1")

	api.POST("/auth/register", h.Register)
	api.POST("/auth/login", h.Login)
	api.GET("/auth/profile", h.AuthRequired, h.Profile)

	api.GET("/categories", h.ListCategories)
	api.POST("/categories", h.AuthRequired, h.CreateCategory)
	api.PUT("/categories/:id", h.AuthRequired, h.UpdateCategory)
	api.DELETE("/categories/:id", h.AuthRequired, h.DeleteCategory)
	api.GET("/categories/:id/products", h.CategoryProducts)

	api.GET("/products", h.ListProducts)
	api.GET("/products/low-stock", h.AuthRequired, h.ListLowStock)
	api.GET("/products/:id", h.GetProduct)
	api.POST("/products", h.AuthRequired, h.CreateProduct)
	api.PUT("/products/:id", h.AuthRequired, h.UpdateProduct)
	api.DELETE("/products/:id", h.AuthRequired, h.DeleteProduct)
	api.PATCH("/products/:id/stock", h.AuthRequired, h.UpdateStock)

	api.POST("/orders", h.AuthRequired, h.CreateOrder)
	api.GET("/orders", h.AuthRequired, h.ListOrders)
	api.GET("/orders/:id", h.AuthRequired, h.GetOrder)
	api.POST("/orders/:id/cancel", h.AuthRequired, h.CancelOrder)
	api.PATCH("/orders/:id/status", h.AuthRequired, h.UpdateOrderStatus)

	api.GET("/shipping-zones", h.ListShippingZones)
	api.POST("/calculate-shipping", h.AuthRequired, h.ShippingPreview)

	api.POST("/orders/:id/payment-intent", h.AuthRequired, h.CreatePaymentHandle)
	api.GET("/orders/:id/payment", h.AuthRequired, h.GetPayment)
	// signature verification happens at the edge before this route is reached
	api.POST("/webhooks/payment", h.PaymentWebhook)

	api.GET("/admin/stats", h.AuthRequired, h.AdminStats)
}

// writeError maps the domain error taxonomy onto stable HTTP codes.
func writeError(c *gin.Context, err error) {
	var (
		validation   *domain.ValidationError
		insufficient *domain.InsufficientStockError
		transition   *domain.InvalidTransitionError
		gateway      *domain.PaymentGatewayError
	)

	switch {
	case errors.As(err, &insufficient):
		c.JSON(http.StatusBadRequest, gin.H{
			"code":      "insufficient_stock",
			"error":     insufficient.Error(),
			"productId": insufficient.ProductID,
			"requested": insufficient.Requested,
			"available": insufficient.Available,
		})
	case errors.As(err, &transition):
		c.JSON(http.StatusBadRequest, gin.H{
			"code":  "invalid_transition",
			"error": transition.Error(),
			"from":  transition.From,
			"to":    transition.To,
		})
	case errors.As(err, &validation):
		c.JSON(http.StatusBadRequest, gin.H{"code": "validation_error", "error": validation.Error()})
	case errors.Is(err, domain.ErrOrderNotPayable):
		c.JSON(http.StatusBadRequest, gin.H{"code": "order_not_payable", "error": err.Error()})
	case errors.Is(err, domain.ErrProductInactive):
		c.JSON(http.StatusBadRequest, gin.H{"code": "product_inactive", "error": err.Error()})
	case errors.Is(err, domain.ErrProductNotFound),
		errors.Is(err, domain.ErrCategoryNotFound),
		errors.Is(err, domain.ErrOrderNotFound),
		errors.Is(err, domain.ErrPaymentNotFound),
		errors.Is(err, domain.ErrUserNotFound),
		errors.Is(err, domain.ErrZoneNotFound):
		c.JSON(http.StatusNotFound, gin.H{"code": "not_found", "error": err.Error()})
	case errors.Is(err, domain.ErrPermissionDenied):
		c.JSON(http.StatusForbidden, gin.H{"code": "permission_denied", "error": err.Error()})
	case errors.Is(err, domain.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"code": "conflict", "error": err.Error()})
	case errors.Is(err, services.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"code": "invalid_credentials", "error": err.Error()})
	case errors.As(err, &gateway):
		c.JSON(http.StatusBadGateway, gin.H{"code": "payment_gateway_error", "error": gateway.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"code": "internal_error", "error": err.Error()})
	}
}

func pathID(c *gin.Context) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"code": "validation_error", "error": "invalid id"})
		return 0, false
	}
	return id, true
}

// Orders

func (h *Handler) CreateOrder(c *gin.Context) {
	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "validation_error", "error": err.Error()})
		return
	}

	actor := currentActor(c)
	lines := make([]domain.OrderLine, 0, len(req.Items))
	for _, it := range req.Items {
		lines = append(lines, domain.OrderLine{ProductID: it.ProductID, Quantity: it.Quantity})
	}

	order, err := h.orders.PlaceOrder(c.Request.Context(), actor.UserID, lines, req.ShippingAddress, req.Notes)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, order)
}

func (h *Handler) ListOrders(c *gin.Context) {
	actor := currentActor(c)
	status := domain.OrderStatus(c.Query("status"))

	orders, err := h.orders.ListOrders(c.Request.Context(), actor, status)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

func (h *Handler) GetOrder(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	order, err := h.orders.GetOrder(c.Request.Context(), currentActor(c), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *Handler) CancelOrder(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	order, err := h.orders.Cancel(c.Request.Context(), currentActor(c), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *Handler) UpdateOrderStatus(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "validation_error", "error": err.Error()})
		return
	}

	order, err := h.orders.UpdateStatus(c.Request.Context(), currentActor(c), id, domain.OrderStatus(req.Status))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// Payments

func (h *Handler) CreatePaymentHandle(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	payment, clientSecret, err := h.payments.CreatePaymentHandle(c.Request.Context(), currentActor(c), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, PaymentHandleResponse{
		PaymentID:    payment.ID,
		IntentID:     payment.IntentID,
		ClientSecret: clientSecret,
		Status:       string(payment.Status),
	})
}

func (h *Handler) GetPayment(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	payment, err := h.payments.GetPayment(c.Request.Context(), currentActor(c), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, payment)
}

func (h *Handler) PaymentWebhook(c *gin.Context) {
	var req WebhookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "validation_error", "error": err.Error()})
		return
	}

	event := domain.WebhookEvent{
		EventID:  req.EventID,
		Type:     req.Type,
		OrderID:  req.OrderID,
		IntentID: req.IntentID,
	}
	if err := h.payments.HandleWebhook(c.Request.Context(), event); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"received": true})
}

// Admin

func (h *Handler) AdminStats(c *gin.Context) {
	stats, err := h.stats.Dashboard(c.Request.Context(), currentActor(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
