package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/YuTaX9/Order-and-Inventory-Management-System-backend/internal/domain"
	infra "github.com/YuTaX9/Order-and-Inventory-Management-System-backend/internal/infra/mysql"
	"github.com/YuTaX9/Order-and-Inventory-Management-System-backend/internal/infra/stripe"
	"github.com/YuTaX9/Order-and-Inventory-Management-System-backend/internal/mocks"
	mysqlrepo "github.com/YuTaX9/Order-and-Inventory-Management-System-backend/internal/repository/mysql"
	"github.com/YuTaX9/Order-and-Inventory-Management-System-backend/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var apiDBCounter atomic.Int64

type apiHarness struct {
	router  *gin.Engine
	db      *gorm.DB
	gateway *mocks.MockPaymentGateway
}

func newAPIHarness(t *testing.T) *apiHarness {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:apidb%d?mode=memory&cache=shared", apiDBCounter.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, infra.Migrate(db))

	publisher := new(mocks.MockPublisher)
	publisher.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()
	gateway := new(mocks.MockPaymentGateway)

	orderRepo := mysqlrepo.NewOrderRepository(db)
	catalogRepo := mysqlrepo.NewCatalogRepository(db)
	paymentRepo := mysqlrepo.NewPaymentRepository(db)
	userRepo := mysqlrepo.NewUserRepository(db)

	authService := services.NewAuthService(userRepo, "test-secret", time.Hour)
	catalogService := services.NewCatalogService(catalogRepo)
	orderService := services.NewOrderService(orderRepo, publisher)
	paymentService := services.NewPaymentService(paymentRepo, orderRepo, gateway, publisher)
	statsService := services.NewStatsService(catalogRepo, orderRepo)

	router := gin.New()
	NewHandler(authService, catalogService, orderService, paymentService, statsService).RegisterRoutes(router)

	return &apiHarness{router: router, db: db, gateway: gateway}
}

func (h *apiHarness) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)
	return w
}

func (h *apiHarness) registerAndLogin(t *testing.T, username string, admin bool) string {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret-pass"), bcrypt.MinCost)
	require.NoError(t, err)
	u := &domain.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: string(hash),
		IsAdmin:      admin,
	}
	require.NoError(t, h.db.Create(u).Error)

	w := h.do(t, http.MethodPost, "/api/v1/auth/login", "", LoginRequest{
		Username: username,
		Password: "s3cret-pass",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp LoginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Token
}

func (h *apiHarness) seedProduct(t *testing.T, name, sku, price string, stock int) *domain.Product {
	t.Helper()
	p := &domain.Product{
		UserID:        1,
		Name:          name,
		SKU:           sku,
		Price:         decimal.RequireFromString(price),
		StockQuantity: stock,
		IsActive:      true,
	}
	require.NoError(t, h.db.Create(p).Error)
	return p
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestAPI_AuthFlow(t *testing.T) {
	h := newAPIHarness(t)

	w := h.do(t, http.MethodPost, "/api/v1/auth/register", "", RegisterRequest{
		Username: "alice", Email: "alice@example.com", Password: "s3cret-pass",
	})
	assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.NotContains(t, w.Body.String(), "passwordHash")

	w = h.do(t, http.MethodPost, "/api/v1/auth/login", "", LoginRequest{
		Username: "alice", Password: "s3cret-pass",
	})
	require.Equal(t, http.StatusOK, w.Code)
	var login LoginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &login))

	w = h.do(t, http.MethodGet, "/api/v1/auth/profile", login.Token, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = h.do(t, http.MethodPost, "/api/v1/auth/login", "", LoginRequest{
		Username: "alice", Password: "wrong-pass",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = h.do(t, http.MethodGet, "/api/v1/auth/profile", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAPI_OrderLifecycle(t *testing.T) {
	h := newAPIHarness(t)
	token := h.registerAndLogin(t, "buyer", false)
	p := h.seedProduct(t, "Widget", "WID-1", "10.00", 5)

	// place an order for two units
	w := h.do(t, http.MethodPost, "/api/v1/orders", token, CreateOrderRequest{
		Items:           []OrderItemRequest{{ProductID: p.ID, Quantity: 2}},
		ShippingAddress: "1 Main St",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decodeBody(t, w)
	assert.Equal(t, "pending", created["status"])
	assert.Equal(t, "20", created["totalAmount"])
	orderID := uint64(created["id"].(float64))

	// over-asking is rejected with the shortfall named
	w = h.do(t, http.MethodPost, "/api/v1/orders", token, CreateOrderRequest{
		Items:           []OrderItemRequest{{ProductID: p.ID, Quantity: 4}},
		ShippingAddress: "1 Main St",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	failed := decodeBody(t, w)
	assert.Equal(t, "insufficient_stock", failed["code"])
	assert.Equal(t, float64(4), failed["requested"])
	assert.Equal(t, float64(3), failed["available"])

	// only the successful order reserved stock
	var stored domain.Product
	require.NoError(t, h.db.First(&stored, p.ID).Error)
	assert.Equal(t, 3, stored.StockQuantity)

	// owner cancels; stock returns
	w = h.do(t, http.MethodPost, fmt.Sprintf("/api/v1/orders/%d/cancel", orderID), token, nil)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.NoError(t, h.db.First(&stored, p.ID).Error)
	assert.Equal(t, 5, stored.StockQuantity)

	// a second cancel is an invalid transition, not a second refund
	w = h.do(t, http.MethodPost, fmt.Sprintf("/api/v1/orders/%d/cancel", orderID), token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid_transition", decodeBody(t, w)["code"])
	require.NoError(t, h.db.First(&stored, p.ID).Error)
	assert.Equal(t, 5, stored.StockQuantity)
}

func TestAPI_OrderVisibilityAndStatus(t *testing.T) {
	h := newAPIHarness(t)
	buyerToken := h.registerAndLogin(t, "buyer", false)
	otherToken := h.registerAndLogin(t, "other", false)
	adminToken := h.registerAndLogin(t, "admin", true)
	p := h.seedProduct(t, "Widget", "WID-1", "10.00", 5)

	w := h.do(t, http.MethodPost, "/api/v1/orders", buyerToken, CreateOrderRequest{
		Items:           []OrderItemRequest{{ProductID: p.ID, Quantity: 1}},
		ShippingAddress: "1 Main St",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	orderID := uint64(decodeBody(t, w)["id"].(float64))
	orderPath := fmt.Sprintf("/api/v1/orders/%d", orderID)

	// another user cannot read it, the admin can
	w = h.do(t, http.MethodGet, orderPath, otherToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = h.do(t, http.MethodGet, orderPath, adminToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	// status changes are admin-only
	w = h.do(t, http.MethodPatch, orderPath+"/status", buyerToken, UpdateStatusRequest{Status: "processing"})
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = h.do(t, http.MethodPatch, orderPath+"/status", adminToken, UpdateStatusRequest{Status: "processing"})
	assert.Equal(t, http.StatusOK, w.Code)

	// skipping ahead is rejected
	w = h.do(t, http.MethodPatch, orderPath+"/status", adminToken, UpdateStatusRequest{Status: "delivered"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid_transition", decodeBody(t, w)["code"])

	// unknown target status
	w = h.do(t, http.MethodPatch, orderPath+"/status", adminToken, UpdateStatusRequest{Status: "refunded"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "validation_error", decodeBody(t, w)["code"])
}

func TestAPI_PaymentFlow(t *testing.T) {
	h := newAPIHarness(t)
	token := h.registerAndLogin(t, "buyer", false)
	p := h.seedProduct(t, "Widget", "WID-1", "25.00", 5)

	w := h.do(t, http.MethodPost, "/api/v1/orders", token, CreateOrderRequest{
		Items:           []OrderItemRequest{{ProductID: p.ID, Quantity: 2}},
		ShippingAddress: "1 Main St",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	orderID := uint64(decodeBody(t, w)["id"].(float64))

	h.gateway.On("CreateIntent", mock.Anything, int64(5000), "usd", orderID).
		Return(&stripe.Intent{ID: "pi_123", ClientSecret: "pi_123_secret", Status: "requires_confirmation"}, nil)

	intentPath := fmt.Sprintf("/api/v1/orders/%d/payment-intent", orderID)
	w = h.do(t, http.MethodPost, intentPath, token, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	handle := decodeBody(t, w)
	assert.Equal(t, "pi_123", handle["intentId"])
	assert.Equal(t, "pi_123_secret", handle["clientSecret"])

	// a second intent for the same order conflicts
	w = h.do(t, http.MethodPost, intentPath, token, nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	// webhook settles the payment and advances the order
	webhook := WebhookRequest{
		EventID:  "evt_1",
		Type:     domain.EventPaymentSucceeded,
		OrderID:  orderID,
		IntentID: "pi_123",
	}
	w = h.do(t, http.MethodPost, "/api/v1/webhooks/payment", "", webhook)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var order domain.Order
	require.NoError(t, h.db.First(&order, orderID).Error)
	assert.Equal(t, domain.StatusProcessing, order.Status)

	// replayed delivery stays 200 and changes nothing
	w = h.do(t, http.MethodPost, "/api/v1/webhooks/payment", "", webhook)
	assert.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, h.db.First(&order, orderID).Error)
	assert.Equal(t, domain.StatusProcessing, order.Status)

	// payment readable by its owner
	w = h.do(t, http.MethodGet, fmt.Sprintf("/api/v1/orders/%d/payment", orderID), token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "succeeded", decodeBody(t, w)["status"])

	h.gateway.AssertExpectations(t)
}

func TestAPI_PaymentNotPayable(t *testing.T) {
	h := newAPIHarness(t)
	token := h.registerAndLogin(t, "buyer", false)
	p := h.seedProduct(t, "Widget", "WID-1", "10.00", 5)

	w := h.do(t, http.MethodPost, "/api/v1/orders", token, CreateOrderRequest{
		Items:           []OrderItemRequest{{ProductID: p.ID, Quantity: 1}},
		ShippingAddress: "1 Main St",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	orderID := uint64(decodeBody(t, w)["id"].(float64))

	w = h.do(t, http.MethodPost, fmt.Sprintf("/api/v1/orders/%d/cancel", orderID), token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = h.do(t, http.MethodPost, fmt.Sprintf("/api/v1/orders/%d/payment-intent", orderID), token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "order_not_payable", decodeBody(t, w)["code"])
}

func TestAPI_CatalogAndShipping(t *testing.T) {
	h := newAPIHarness(t)
	userToken := h.registerAndLogin(t, "user", false)
	adminToken := h.registerAndLogin(t, "admin", true)

	// category writes are admin-only
	w := h.do(t, http.MethodPost, "/api/v1/categories", userToken, CategoryRequest{Name: "Books"})
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = h.do(t, http.MethodPost, "/api/v1/categories", adminToken, CategoryRequest{Name: "Books"})
	assert.Equal(t, http.StatusCreated, w.Code)

	// product create and public read
	w = h.do(t, http.MethodPost, "/api/v1/products", userToken, ProductRequest{
		Name: "Widget", SKU: "WID-1", Price: "19.99", StockQuantity: 3,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	productID := uint64(decodeBody(t, w)["id"].(float64))

	w = h.do(t, http.MethodGet, fmt.Sprintf("/api/v1/products/%d", productID), "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	// low stock listing is admin-only and the low product shows up
	w = h.do(t, http.MethodGet, "/api/v1/products/low-stock", userToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = h.do(t, http.MethodGet, "/api/v1/products/low-stock", adminToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "WID-1")

	// shipping quote honours the free threshold
	threshold := decimal.RequireFromString("50.00")
	require.NoError(t, h.db.Create(&domain.ShippingZone{
		Name: "Domestic", Country: "US",
		BaseRate:              decimal.RequireFromString("5.99"),
		FreeShippingThreshold: &threshold,
	}).Error)

	var zone domain.ShippingZone
	require.NoError(t, h.db.First(&zone).Error)

	w = h.do(t, http.MethodPost, "/api/v1/calculate-shipping", userToken, ShippingPreviewRequest{
		ShippingZoneID: zone.ID, CartTotal: "49.99",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	quote := decodeBody(t, w)
	assert.Equal(t, "5.99", quote["shippingCost"])
	assert.Equal(t, false, quote["isFree"])

	w = h.do(t, http.MethodPost, "/api/v1/calculate-shipping", userToken, ShippingPreviewRequest{
		ShippingZoneID: zone.ID, CartTotal: "75.00",
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, decodeBody(t, w)["isFree"])
}

func TestAPI_AdminStats(t *testing.T) {
	h := newAPIHarness(t)
	userToken := h.registerAndLogin(t, "user", false)
	adminToken := h.registerAndLogin(t, "admin", true)
	h.seedProduct(t, "Widget", "WID-1", "10.00", 3)

	w := h.do(t, http.MethodGet, "/api/v1/admin/stats", userToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = h.do(t, http.MethodGet, "/api/v1/admin/stats", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	stats := decodeBody(t, w)
	assert.Equal(t, float64(1), stats["totalProducts"])
	assert.Equal(t, float64(1), stats["lowStockCount"])
	assert.Equal(t, "0.00", stats["totalRevenue"])
}
