package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	apperrors "github.com/NomadCrew/feedback-tracker-backend/errors"
	"github.com/NomadCrew/feedback-tracker-backend/logger"
	"github.com/NomadCrew/feedback-tracker-backend/types"
	"github.com/gin-gonic/gin"
)

// Recovery turns a panic in a handler into a 500 response.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				logger.GetLogger().Errorw("Recovered from panic",
					"panic", fmt.Sprint(rec),
					"path", c.Request.URL.Path,
					"method", c.Request.Method,
					"request_id", c.GetString(RequestIDKey),
					"stack_trace", string(debug.Stack()))

				c.AbortWithStatusJSON(http.StatusInternalServerError, types.ErrorResponse{
					Error: genericServerMessage,
					Type:  string(apperrors.ServerError),
					Code:  string(apperrors.ServerError),
				})
			}
		}()
		c.Next()
	}
}
