package middleware

import (
	"fmt"
	"net/http"

	apperrors "github.com/NomadCrew/feedback-tracker-backend/errors"
	"github.com/NomadCrew/feedback-tracker-backend/logger"
	"github.com/NomadCrew/feedback-tracker-backend/types"
	"github.com/gin-gonic/gin"
)

const genericServerMessage = "Something went wrong on our end!"

// ErrorHandler renders the last error a handler pushed with c.Error.
// The "error" field always carries a message safe to show end users.
// Underlying causes are logged and never echoed back.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		ginErr := c.Errors.Last()
		err := ginErr.Err

		if appError, ok := apperrors.As(err); ok {
			statusCode := appError.GetHTTPStatus()
			logger.LogHTTPError(c, err, statusCode, fmt.Sprintf("%s error", appError.Type))

			code := appError.Code
			if code == "" {
				code = string(appError.Type)
			}

			response := types.ErrorResponse{
				Error: appError.Message,
				Type:  string(appError.Type),
				Code:  code,
			}
			if appError.Type == apperrors.ServerError {
				response.Error = genericServerMessage
			}

			// Details are only shown where they help the caller fix the request
			if appError.Detail != "" && (gin.IsDebugging() ||
				appError.Type == apperrors.ValidationError ||
				appError.Type == apperrors.NotFoundError ||
				appError.Type == apperrors.RateLimitError) {
				response.Details = appError.Detail
			}

			c.JSON(statusCode, response)
			return
		}

		if ginErr.Type == gin.ErrorTypeBind {
			logger.LogHTTPError(c, err, http.StatusBadRequest, "Request binding error")

			response := types.ErrorResponse{
				Error: "Invalid request body.",
				Type:  string(apperrors.ValidationError),
				Code:  apperrors.CodeInvalidRequestPayload,
			}
			if gin.IsDebugging() {
				response.Details = err.Error()
			}
			c.JSON(http.StatusBadRequest, response)
			return
		}

		logger.LogHTTPError(c, err, http.StatusInternalServerError, "Unexpected server error")

		response := types.ErrorResponse{
			Error: genericServerMessage,
			Type:  string(apperrors.ServerError),
			Code:  string(apperrors.ServerError),
		}
		if gin.IsDebugging() {
			response.Details = err.Error()
		}
		c.JSON(http.StatusInternalServerError, response)
	}
}

// NotFoundHandler answers requests that match no route.
func NotFoundHandler(c *gin.Context) {
	c.JSON(http.StatusNotFound, types.ErrorResponse{Error: "Route not found"})
}
