package handler

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	orderapp "github.com/storefront/backend/internal/application/order"
	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/shared"
)

// OrderHandler handles order API endpoints
type OrderHandler struct {
	BaseHandler
	orderService *orderapp.Service
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(orderService *orderapp.Service) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

// OrderItemRequest represents one requested order line
type OrderItemRequest struct {
	ProductID string `json:"product_id" binding:"required,uuid"`
	Quantity  int    `json:"quantity" binding:"required,min=1"`
}

// PlaceOrderRequest represents a checkout request
type PlaceOrderRequest struct {
	Items []OrderItemRequest `json:"items" binding:"required,min=1,dive"`
}

// UpdateOrderStatusRequest moves an order to a new status
type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// OrderItemResponse represents an order line in responses
type OrderItemResponse struct {
	ProductID   string `json:"product_id"`
	ProductName string `json:"product_name"`
	UnitPrice   string `json:"unit_price"`
	Quantity    int    `json:"quantity"`
}

// OrderResponse represents an order in responses
type OrderResponse struct {
	ID         string              `json:"id"`
	UserID     string              `json:"user_id"`
	Items      []OrderItemResponse `json:"items"`
	TotalPrice string              `json:"total_price"`
	Status     string              `json:"status"`
	CreatedAt  time.Time           `json:"created_at"`
	UpdatedAt  time.Time           `json:"updated_at"`
}

func newOrderResponse(view *orderapp.View) OrderResponse {
	items := make([]OrderItemResponse, len(view.Items))
	for i, item := range view.Items {
		items[i] = OrderItemResponse{
			ProductID:   item.ProductID.String(),
			ProductName: item.ProductName,
			UnitPrice:   item.UnitPrice.String(),
			Quantity:    item.Quantity,
		}
	}
	return OrderResponse{
		ID:         view.ID.String(),
		UserID:     view.UserID.String(),
		Items:      items,
		TotalPrice: view.TotalPrice.String(),
		Status:     view.Status,
		CreatedAt:  view.CreatedAt,
		UpdatedAt:  view.UpdatedAt,
	}
}

// Place runs checkout for the authenticated caller
func (h *OrderHandler) Place(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req PlaceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	input := orderapp.PlaceOrderInput{Items: make([]orderapp.ItemInput, len(req.Items))}
	for i, item := range req.Items {
		productID, err := uuid.Parse(item.ProductID)
		if err != nil {
			h.BadRequest(c, "Invalid product ID format")
			return
		}
		input.Items[i] = orderapp.ItemInput{ProductID: productID, Quantity: item.Quantity}
	}

	view, err := h.orderService.PlaceOrder(c.Request.Context(), userID, input)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, newOrderResponse(view))
}

// GetByID returns one order. Non-admin callers only see their own;
// someone else's order id answers 403, not 404.
func (h *OrderHandler) GetByID(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid order ID format")
		return
	}

	claims := currentClaims(c)
	view, err := h.orderService.GetOrder(c.Request.Context(), id, userID, claims.IsAdmin())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, newOrderResponse(view))
}

// ListMine returns the caller's orders, newest first
func (h *OrderHandler) ListMine(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	filter, err := bindFilter(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	page, err := h.orderService.ListOrdersForUser(c.Request.Context(), userID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.respondPage(c, page)
}

// ListAll returns every order in the system
func (h *OrderHandler) ListAll(c *gin.Context) {
	filter, err := bindFilter(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	page, err := h.orderService.ListAllOrders(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.respondPage(c, page)
}

// UpdateStatus moves an order along its status graph
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid order ID format")
		return
	}

	var req UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	status := order.Status(strings.ToUpper(req.Status))
	if !status.IsValid() {
		h.BadRequest(c, "Unknown order status: "+req.Status)
		return
	}

	view, err := h.orderService.UpdateStatus(c.Request.Context(), id, status)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, newOrderResponse(view))
}

func (h *OrderHandler) respondPage(c *gin.Context, page shared.Paginated[orderapp.View]) {
	responses := make([]OrderResponse, len(page.Items))
	for i := range page.Items {
		responses[i] = newOrderResponse(&page.Items[i])
	}
	h.SuccessWithMeta(c, responses, page.Total, page.Page, page.PageSize, page.TotalPages)
}

// RegisterUserRoutes registers order endpoints for authenticated users
func (h *OrderHandler) RegisterUserRoutes(rg *gin.RouterGroup) {
	orders := rg.Group("/orders")
	{
		orders.POST("", h.Place)
		orders.GET("/my", h.ListMine)
		orders.GET(":id", h.GetByID)
	}
}

// RegisterAdminRoutes registers order management endpoints
func (h *OrderHandler) RegisterAdminRoutes(rg *gin.RouterGroup) {
	orders := rg.Group("/orders")
	{
		orders.GET("", h.ListAll)
		orders.PATCH(":id/status", h.UpdateStatus)
	}
}
