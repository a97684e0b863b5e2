package http

type RegisterRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Token    string `json:"token"`
	UserID   uint64 `json:"userId"`
	Username string `json:"username"`
	IsAdmin  bool   `json:"isAdmin"`
}

type CategoryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type ProductRequest struct {
	CategoryID    *uint64 `json:"categoryId"`
	Name          string  `json:"name"`
	Description   string  `json:"description"`
	Price         string  `json:"price"`
	StockQuantity int     `json:"stockQuantity"`
	SKU           string  `json:"sku"`
	ImageURL      string  `json:"imageUrl"`
	IsActive      *bool   `json:"isActive"`
}

type StockUpdateRequest struct {
	StockQuantity *int `json:"stockQuantity" binding:"required"`
}

type OrderItemRequest struct {
	ProductID uint64 `json:"productId" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required,min=1"`
}

type CreateOrderRequest struct {
	Items           []OrderItemRequest `json:"items" binding:"required,min=1,dive"`
	ShippingAddress string             `json:"shippingAddress" binding:"required"`
	Notes           string             `json:"notes"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type ShippingPreviewRequest struct {
	ShippingZoneID uint64 `json:"shippingZoneId" binding:"required"`
	CartTotal      string `json:"cartTotal" binding:"required"`
}

type ShippingPreviewResponse struct {
	ShippingCost string `json:"shippingCost"`
	IsFree       bool   `json:"isFree"`
}

type PaymentHandleResponse struct {
	PaymentID    uint64 `json:"paymentId"`
	IntentID     string `json:"intentId"`
	ClientSecret string `json:"clientSecret"`
	Status       string `json:"status"`
}

type WebhookRequest struct {
	EventID  string `json:"event_id" binding:"required"`
	Type     string `json:"type" binding:"required"`
	OrderID  uint64 `json:"order_id" binding:"required"`
	IntentID string `json:"intent_id"`
}
