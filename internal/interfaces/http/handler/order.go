package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	appOrders "github.com/wms/backend/internal/application/orders"
	"github.com/wms/backend/internal/domain/shared"
	"github.com/wms/backend/internal/interfaces/http/dto"
)

// OrderHandler exposes read access to imported orders
type OrderHandler struct {
	BaseHandler
	queryService *appOrders.OrderQueryService
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(queryService *appOrders.OrderQueryService) *OrderHandler {
	return &OrderHandler{queryService: queryService}
}

// GetOrder returns a single order with its lines
func (h *OrderHandler) GetOrder(c *gin.Context) {
	tenantID, ok := getTenantID(c)
	if !ok {
		h.BadRequest(c, "Tenant context is required")
		return
	}

	var req dto.IDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		h.BadRequest(c, "Invalid order id")
		return
	}
	orderID, err := uuid.Parse(req.ID)
	if err != nil {
		h.BadRequest(c, "Invalid order id")
		return
	}

	order, err := h.queryService.GetOrder(c.Request.Context(), tenantID, orderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// GetOrderByNumber returns a single order looked up by its human-readable number
func (h *OrderHandler) GetOrderByNumber(c *gin.Context) {
	tenantID, ok := getTenantID(c)
	if !ok {
		h.BadRequest(c, "Tenant context is required")
		return
	}

	orderNumber := c.Param("number")
	if orderNumber == "" {
		h.BadRequest(c, "Order number is required")
		return
	}

	order, err := h.queryService.GetOrderByNumber(c.Request.Context(), tenantID, orderNumber)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// ListOrders returns a paginated list of the tenant's orders
func (h *OrderHandler) ListOrders(c *gin.Context) {
	tenantID, ok := getTenantID(c)
	if !ok {
		h.BadRequest(c, "Tenant context is required")
		return
	}

	req := dto.DefaultListRequest()
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, "Invalid list parameters: "+err.Error())
		return
	}

	filter := shared.Filter{
		Page:     req.Page,
		PageSize: req.PageSize,
		OrderBy:  req.OrderBy,
		OrderDir: req.OrderDir,
		Search:   req.Search,
		Filters:  map[string]interface{}{},
	}
	if req.Status != "" {
		filter.Filters["status"] = req.Status
	}

	page, err := h.queryService.ListOrders(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// RegisterRoutes registers order routes on the API group
func (h *OrderHandler) RegisterRoutes(rg *gin.RouterGroup) {
	orders := rg.Group("/orders")
	{
		orders.GET("", h.ListOrders)
		orders.GET("/:id", h.GetOrder)
		orders.GET("/number/:number", h.GetOrderByNumber)
	}
}
