package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	appOrders "github.com/wms/backend/internal/application/orders"
)

// WebhookHandler receives carrier status callbacks
type WebhookHandler struct {
	BaseHandler
	webhookService *appOrders.OrderWebhookService
}

// NewWebhookHandler creates a new WebhookHandler
func NewWebhookHandler(webhookService *appOrders.OrderWebhookService) *WebhookHandler {
	return &WebhookHandler{webhookService: webhookService}
}

// CarrierUpdate applies a carrier status callback to the matching order
func (h *WebhookHandler) CarrierUpdate(c *gin.Context) {
	var req appOrders.CarrierWebhookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid webhook payload: "+err.Error())
		return
	}

	result, err := h.webhookService.HandleCarrierUpdate(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, appOrders.ErrUnknownOrder) {
			h.NotFound(c, "No order matches the webhook reference")
			return
		}
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// RegisterRoutes registers webhook routes on the given group
func (h *WebhookHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/webhooks/carrier", h.CarrierUpdate)
}
