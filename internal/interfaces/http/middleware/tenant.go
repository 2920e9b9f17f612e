package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/wms/backend/internal/interfaces/http/dto"
)

// Tenant context keys
const (
	TenantIDKey     = "tenant_id"
	TenantHeaderKey = "X-Tenant-ID"
)

// Tenant extracts the tenant id from the X-Tenant-ID header and stores it in
// the request context. When required is true, requests without a valid tenant
// id are rejected.
func Tenant(required bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader(TenantHeaderKey)
		if raw == "" {
			if required {
				c.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponse(
					dto.ErrCodeBadRequest,
					"Missing "+TenantHeaderKey+" header",
				))
				return
			}
			c.Next()
			return
		}

		tenantID, err := uuid.Parse(raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponse(
				dto.ErrCodeInvalidInput,
				"Invalid "+TenantHeaderKey+" header",
			))
			return
		}

		c.Set(TenantIDKey, tenantID)
		c.Next()
	}
}

// GetTenantID returns the tenant id stored by the Tenant middleware
func GetTenantID(c *gin.Context) (uuid.UUID, bool) {
	value, exists := c.Get(TenantIDKey)
	if !exists {
		return uuid.Nil, false
	}
	tenantID, ok := value.(uuid.UUID)
	return tenantID, ok
}
