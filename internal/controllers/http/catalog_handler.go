package http

import (
	"net/http"
	"strconv"

	"github.com/YuTaX9/Order-and-Inventory-Management-System-backend/internal/repository"
	"github.com/YuTaX9/Order-and-Inventory-Management-System-backend/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// Auth

func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "validation_error", "error": err.Error()})
		return
	}
	user, err := h.auth.Register(c.Request.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "validation_error", "error": err.Error()})
		return
	}
	token, user, err := h.auth.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, LoginResponse{
		Token:    token,
		UserID:   user.ID,
		Username: user.Username,
		IsAdmin:  user.IsAdmin,
	})
}

func (h *Handler) Profile(c *gin.Context) {
	user, err := h.auth.Profile(c.Request.Context(), currentActor(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// Categories

func (h *Handler) ListCategories(c *gin.Context) {
	categories, err := h.catalog.ListCategories(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, categories)
}

func (h *Handler) CreateCategory(c *gin.Context) {
	var req CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "validation_error", "error": err.Error()})
		return
	}
	category, err := h.catalog.CreateCategory(c.Request.Context(), currentActor(c), req.Name, req.Description)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, category)
}

func (h *Handler) UpdateCategory(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "validation_error", "error": err.Error()})
		return
	}
	category, err := h.catalog.UpdateCategory(c.Request.Context(), currentActor(c), id, req.Name, req.Description)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, category)
}

func (h *Handler) DeleteCategory(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.catalog.DeleteCategory(c.Request.Context(), currentActor(c), id); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) CategoryProducts(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	products, err := h.catalog.CategoryProducts(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, products)
}

// Products

func (h *Handler) ListProducts(c *gin.Context) {
	f := repository.ProductFilter{
		Search:     c.Query("search"),
		InStock:    c.Query("in_stock") == "true",
		ActiveOnly: true,
	}
	if v := c.Query("category"); v != "" {
		id, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"code": "validation_error", "error": "invalid category"})
			return
		}
		f.CategoryID = id
	}
	if v := c.Query("min_price"); v != "" {
		p, err := decimal.NewFromString(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"code": "validation_error", "error": "invalid min_price"})
			return
		}
		f.MinPrice = &p
	}
	if v := c.Query("max_price"); v != "" {
		p, err := decimal.NewFromString(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"code": "validation_error", "error": "invalid max_price"})
			return
		}
		f.MaxPrice = &p
	}

	products, err := h.catalog.ListProducts(c.Request.Context(), f)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, products)
}

func (h *Handler) GetProduct(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	product, err := h.catalog.GetProduct(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

func (h *Handler) CreateProduct(c *gin.Context) {
	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "validation_error", "error": err.Error()})
		return
	}
	product, err := h.catalog.CreateProduct(c.Request.Context(), currentActor(c), productInput(req))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, product)
}

func (h *Handler) UpdateProduct(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "validation_error", "error": err.Error()})
		return
	}
	product, err := h.catalog.UpdateProduct(c.Request.Context(), currentActor(c), id, productInput(req))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

func (h *Handler) DeleteProduct(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.catalog.DeleteProduct(c.Request.Context(), currentActor(c), id); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) UpdateStock(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req StockUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "validation_error", "error": err.Error()})
		return
	}
	product, err := h.catalog.SetStock(c.Request.Context(), currentActor(c), id, *req.StockQuantity)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

func (h *Handler) ListLowStock(c *gin.Context) {
	products, err := h.catalog.ListLowStock(c.Request.Context(), currentActor(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, products)
}

// Shipping

func (h *Handler) ListShippingZones(c *gin.Context) {
	zones, err := h.catalog.ListShippingZones(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, zones)
}

func (h *Handler) ShippingPreview(c *gin.Context) {
	var req ShippingPreviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "validation_error", "error": err.Error()})
		return
	}
	cost, free, err := h.catalog.ShippingPreview(c.Request.Context(), req.ShippingZoneID, req.CartTotal)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, ShippingPreviewResponse{ShippingCost: cost.StringFixed(2), IsFree: free})
}

func productInput(req ProductRequest) services.ProductInput {
	return services.ProductInput{
		CategoryID:  req.CategoryID,
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.StockQuantity,
		SKU:         req.SKU,
		ImageURL:    req.ImageURL,
		IsActive:    req.IsActive,
	}
}
