package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RequestID 透传或生成请求 ID，写回响应头方便排查
func RequestID(ctx *gin.Context) {
	requestID := ctx.GetHeader(RequestIDHeader)
	if requestID == "" {
		requestID = uuid.NewString()
	}

	ctx.Set(RequestIDHeader, requestID)
	ctx.Writer.Header().Set(RequestIDHeader, requestID)
	ctx.Next()
}
