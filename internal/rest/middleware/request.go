package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ledgerflow/ledgerflow/internal/types"
)

// RequestIDMiddleware assigns each request an ID and echoes it back in
// the response headers
func RequestIDMiddleware(c *gin.Context) {
	ctx := c.Request.Context()

	requestID := c.GetHeader(types.HeaderRequestID)
	if requestID == "" {
		requestID = uuid.New().String()
	}

	ctx = context.WithValue(ctx, types.CtxRequestID, requestID)
	c.Request = c.Request.WithContext(ctx)

	c.Header(types.HeaderRequestID, requestID)

	c.Next()
}

// TenantMiddleware resolves the calling tenant, user and environment
// from request headers into the context. Requests without a tenant fall
// back to the default tenant, which keeps local development simple.
func TenantMiddleware(c *gin.Context) {
	ctx := c.Request.Context()

	tenantID := c.GetHeader(types.HeaderTenantID)
	if tenantID == "" {
		tenantID = types.DefaultTenantID
	}
	ctx = types.SetTenantID(ctx, tenantID)

	userID := c.GetHeader(types.HeaderUserID)
	if userID == "" {
		userID = types.DefaultUserID
	}
	ctx = types.SetUserID(ctx, userID)

	if environmentID := c.GetHeader(types.HeaderEnvironmentID); environmentID != "" {
		ctx = types.SetEnvironmentID(ctx, environmentID)
	}

	c.Request = c.Request.WithContext(ctx)
	c.Next()
}
