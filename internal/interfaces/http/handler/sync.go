package handler

import (
	"github.com/gin-gonic/gin"

	appOrders "github.com/wms/backend/internal/application/orders"
)

// SyncHandler handles order synchronization batches pushed by external systems
type SyncHandler struct {
	BaseHandler
	importService *appOrders.OrderImportService
	maxBatchSize  int
}

// NewSyncHandler creates a new SyncHandler
func NewSyncHandler(importService *appOrders.OrderImportService, maxBatchSize int) *SyncHandler {
	return &SyncHandler{
		importService: importService,
		maxBatchSize:  maxBatchSize,
	}
}

// SyncOrders ingests a batch of external orders. Each order is processed
// independently; the response always carries the full per-order breakdown,
// so a failing order never aborts the batch.
func (h *SyncHandler) SyncOrders(c *gin.Context) {
	var req appOrders.SyncOrdersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid sync payload: "+err.Error())
		return
	}
	if h.maxBatchSize > 0 && len(req.Orders) > h.maxBatchSize {
		h.BadRequest(c, "Batch exceeds the maximum allowed size")
		return
	}

	result, err := h.importService.SyncOrders(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// RegisterRoutes registers sync routes on the API group
func (h *SyncHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/orders/sync", h.SyncOrders)
}
