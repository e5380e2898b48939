package handlers

import (
	"errors"
	"io"
	"net/http"

	apperrors "github.com/NomadCrew/feedback-tracker-backend/errors"
	"github.com/NomadCrew/feedback-tracker-backend/types"
	"github.com/gin-gonic/gin"
)

// FeedbackHandler handles feedback endpoints.
type FeedbackHandler struct {
	feedbackService FeedbackServiceInterface
}

// NewFeedbackHandler creates a new FeedbackHandler.
func NewFeedbackHandler(feedbackService FeedbackServiceInterface) *FeedbackHandler {
	return &FeedbackHandler{feedbackService: feedbackService}
}

// bindJSONOrError binds the request body into obj. An empty body leaves obj
// zero-valued so the service reports which fields are missing.
func bindJSONOrError(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil && !errors.Is(err, io.EOF) {
		appErr := apperrors.ValidationFailed(apperrors.CodeInvalidRequestPayload, "Invalid request body.")
		appErr.Detail = err.Error()
		_ = c.Error(appErr)
		return false
	}
	return true
}

// ListFeedback returns every feedback record, newest first.
// GET /feedback
func (h *FeedbackHandler) ListFeedback(c *gin.Context) {
	items, err := h.feedbackService.List(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, items)
}

// CreateFeedback validates and stores a new submission.
// POST /feedback
func (h *FeedbackHandler) CreateFeedback(c *gin.Context) {
	var req types.FeedbackCreate
	if !bindJSONOrError(c, &req) {
		return
	}

	fb, err := h.feedbackService.Create(c.Request.Context(), req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, fb)
}

// VoteFeedback applies an upvote or downvote.
// PUT /feedback/:id/vote
func (h *FeedbackHandler) VoteFeedback(c *gin.Context) {
	var req types.VoteRequest
	if !bindJSONOrError(c, &req) {
		return
	}

	fb, err := h.feedbackService.Vote(c.Request.Context(), c.Param("id"), req.Action)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, fb)
}

// DeleteFeedback removes a record and echoes it back.
// DELETE /feedback/:id
func (h *FeedbackHandler) DeleteFeedback(c *gin.Context) {
	fb, err := h.feedbackService.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, types.DeleteFeedbackResponse{
		Message:  "Feedback deleted successfully",
		Feedback: fb,
	})
}

// GetStats returns aggregate statistics.
// GET /stats
func (h *FeedbackHandler) GetStats(c *gin.Context) {
	stats, err := h.feedbackService.Stats(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
