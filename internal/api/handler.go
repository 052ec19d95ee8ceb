package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"storefront/internal/cart"
	"storefront/internal/catalog"
	"storefront/internal/chat"
	"storefront/internal/models"
	"storefront/internal/service"
	"storefront/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// shopPath is where not-found views send the shopper back to
const shopPath = "/api/v1/products"

// Handler contains HTTP handlers
type Handler struct {
	cart        *cart.Store
	chat        *chat.Session
	checkout    *service.CheckoutService
	submissions *service.SubmissionService
	logger      *zap.Logger
}

// NewHandler creates a new HTTP handler
func NewHandler(
	cartStore *cart.Store,
	chatSession *chat.Session,
	checkout *service.CheckoutService,
	submissions *service.SubmissionService,
) *Handler {
	return &Handler{
		cart:        cartStore,
		chat:        chatSession,
		checkout:    checkout,
		submissions: submissions,
		logger:      util.ComponentLogger("api"),
	}
}

// SetupRoutes sets up HTTP routes
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(prometheusMiddleware())

	router.GET("/health", h.healthCheck)
	router.GET("/ready", h.readinessCheck)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	{
		v1.GET("/products", h.listProducts)
		v1.GET("/products/:slug", h.getProduct)

		v1.GET("/cart", h.getCart)
		v1.POST("/cart/items", h.addCartItem)
		v1.PATCH("/cart/items", h.updateCartItem)
		v1.DELETE("/cart/items", h.removeCartItem)
		v1.DELETE("/cart", h.clearCart)
		v1.PUT("/cart/open", h.setCartOpen)

		v1.GET("/chat", h.getChat)
		v1.POST("/chat/messages", h.sendChatMessage)
		v1.POST("/chat/quick-replies", h.sendQuickReply)
		v1.DELETE("/chat", h.clearChat)

		v1.GET("/checkout", h.getCheckout)
		v1.POST("/checkout/shipping", h.submitShipping)
		v1.POST("/checkout/back", h.checkoutBack)
		v1.POST("/checkout/payment", h.submitPayment)

		v1.POST("/contact", h.submitContact)
		v1.POST("/newsletter", h.subscribe)
	}
}

// healthCheck handles health check requests
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Unix(),
	})
}

// readinessCheck handles readiness check requests
func (h *Handler) readinessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"time":   time.Now().Unix(),
	})
}

func (h *Handler) listProducts(c *gin.Context) {
	category := c.DefaultQuery("category", catalog.CategoryAll)
	c.JSON(http.StatusOK, gin.H{"products": catalog.ByCategory(category)})
}

func (h *Handler) getProduct(c *gin.Context) {
	product, err := catalog.BySlug(c.Param("slug"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

type addItemRequest struct {
	ProductID string `json:"productId" binding:"required"`
	Size      string `json:"size" binding:"required"`
	Color     string `json:"color" binding:"required"`
	Quantity  int    `json:"quantity"`
}

type lineRequest struct {
	ProductID string `json:"productId" form:"productId" binding:"required"`
	Size      string `json:"size" form:"size" binding:"required"`
	Color     string `json:"color" form:"color" binding:"required"`
	Quantity  int    `json:"quantity" form:"quantity"`
}

func (h *Handler) getCart(c *gin.Context) {
	c.JSON(http.StatusOK, h.cart.Snapshot())
}

func (h *Handler) addCartItem(c *gin.Context) {
	var req addItemRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	product, err := catalog.ByID(req.ProductID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	line, err := catalog.NewLine(product, req.Size, req.Color, req.Quantity)
	if err != nil {
		h.writeError(c, err)
		return
	}
	if err := h.cart.AddItem(line); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.cart.Snapshot())
}

func (h *Handler) updateCartItem(c *gin.Context) {
	var req lineRequest
	if !bindJSON(c, &req) {
		return
	}
	h.cart.UpdateQuantity(req.ProductID, req.Size, req.Color, req.Quantity)
	c.JSON(http.StatusOK, h.cart.Snapshot())
}

func (h *Handler) removeCartItem(c *gin.Context) {
	var req lineRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid query",
			"details": err.Error(),
		})
		return
	}
	h.cart.RemoveItem(req.ProductID, req.Size, req.Color)
	c.JSON(http.StatusOK, h.cart.Snapshot())
}

func (h *Handler) clearCart(c *gin.Context) {
	h.cart.Clear()
	c.JSON(http.StatusOK, h.cart.Snapshot())
}

func (h *Handler) setCartOpen(c *gin.Context) {
	var req struct {
		Open bool `json:"open"`
	}
	if !bindJSON(c, &req) {
		return
	}
	h.cart.SetOpen(req.Open)
	c.JSON(http.StatusOK, h.cart.Snapshot())
}

type chatView struct {
	Messages     []models.ChatMessage `json:"messages"`
	Mode         string               `json:"mode"`
	Typing       bool                 `json:"typing"`
	QuickReplies []string             `json:"quickReplies"`
	Placeholder  string               `json:"placeholder"`
}

func (h *Handler) chatState() chatView {
	return chatView{
		Messages:     h.chat.Messages(),
		Mode:         h.chat.Mode().String(),
		Typing:       h.chat.Typing(),
		QuickReplies: h.chat.AvailableQuickReplies(),
		Placeholder:  h.chat.Placeholder(),
	}
}

func (h *Handler) getChat(c *gin.Context) {
	c.JSON(http.StatusOK, h.chatState())
}

func (h *Handler) sendChatMessage(c *gin.Context) {
	h.send(c, chat.KindTyped)
}

func (h *Handler) sendQuickReply(c *gin.Context) {
	h.send(c, chat.KindQuickReply)
}

func (h *Handler) send(c *gin.Context, kind chat.Kind) {
	var req struct {
		Content string `json:"content"`
	}
	if !bindJSON(c, &req) {
		return
	}
	if _, ok := h.chat.Send(req.Content, kind); !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Message is empty"})
		return
	}
	c.JSON(http.StatusAccepted, h.chatState())
}

func (h *Handler) clearChat(c *gin.Context) {
	h.chat.ClearMessages()
	c.JSON(http.StatusOK, h.chatState())
}

func (h *Handler) getCheckout(c *gin.Context) {
	c.JSON(http.StatusOK, h.checkout.State())
}

func (h *Handler) submitShipping(c *gin.Context) {
	var req service.ShippingDetails
	if !bindJSON(c, &req) {
		return
	}
	if err := h.checkout.SubmitShipping(c.Request.Context(), req); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.checkout.State())
}

func (h *Handler) checkoutBack(c *gin.Context) {
	if err := h.checkout.Back(); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.checkout.State())
}

func (h *Handler) submitPayment(c *gin.Context) {
	var req service.PaymentDetails
	if !bindJSON(c, &req) {
		return
	}
	receipt, err := h.checkout.SubmitPayment(c.Request.Context(), req)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, receipt)
}

func (h *Handler) submitContact(c *gin.Context) {
	var req service.ContactForm
	if !bindJSON(c, &req) {
		return
	}
	if err := h.submissions.SubmitContact(c.Request.Context(), req); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "submitted"})
}

func (h *Handler) subscribe(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required"`
	}
	if !bindJSON(c, &req) {
		return
	}
	added, err := h.submissions.Subscribe(c.Request.Context(), req.Email)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "subscribed", "new": added})
}

func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return false
	}
	return true
}

// writeError maps domain errors to status codes
func (h *Handler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, catalog.ErrProductNotFound), errors.Is(err, service.ErrOrderNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "Not found",
			"details": err.Error(),
			"back":    shopPath,
		})
	case errors.Is(err, catalog.ErrInvalidVariant),
		errors.Is(err, cart.ErrInvalidQuantity),
		errors.Is(err, service.ErrInvalidEmail),
		errors.Is(err, service.ErrMissingField),
		errors.Is(err, service.ErrEmptyCart):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request",
			"details": err.Error(),
		})
	case errors.Is(err, service.ErrCheckoutStep):
		c.JSON(http.StatusConflict, gin.H{
			"error":   "Checkout step conflict",
			"details": err.Error(),
		})
	default:
		h.logger.Error("Request failed", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Internal error",
			"details": err.Error(),
		})
	}
}

// prometheusMiddleware collects HTTP metrics
func prometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		util.HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Observe(duration)

		util.HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Inc()
	}
}
