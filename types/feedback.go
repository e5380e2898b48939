package types

import (
	"encoding/json"
	"time"
)

// Feedback is a single feedback submission together with its vote tally.
// Field names match the persisted document layout.
type Feedback struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Message   string    `json:"message"`
	Votes     int       `json:"votes"`
	CreatedAt time.Time `json:"createdAt"`
}

// FeedbackCreate represents the request body for submitting feedback.
// Validation lives in the feedback service so every transport shares it.
type FeedbackCreate struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

// VoteAction is the direction of a vote.
type VoteAction string

const (
	VoteActionUpvote   VoteAction = "upvote"
	VoteActionDownvote VoteAction = "downvote"
)

// IsValid reports whether a is one of the supported vote directions.
func (a VoteAction) IsValid() bool {
	return a == VoteActionUpvote || a == VoteActionDownvote
}

// Delta returns the change a vote applies to a tally.
func (a VoteAction) Delta() int {
	if a == VoteActionDownvote {
		return -1
	}
	return 1
}

// UnmarshalJSON accepts any JSON value. Anything but a string decodes to the
// empty action, which IsValid rejects.
func (a *VoteAction) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		*a = ""
		return nil
	}
	*a = VoteAction(s)
	return nil
}

// VoteRequest represents the request body for PUT /feedback/:id/vote.
type VoteRequest struct {
	Action VoteAction `json:"action"`
}

// DeleteFeedbackResponse is returned after a successful delete.
type DeleteFeedbackResponse struct {
	Message  string   `json:"message"`
	Feedback Feedback `json:"feedback"`
}

// FeedbackStats holds aggregate metrics derived from the collection.
type FeedbackStats struct {
	TotalFeedback int     `json:"totalFeedback"`
	TotalVotes    int     `json:"totalVotes"`
	AverageVotes  float64 `json:"averageVotes"`
	PositiveRate  int     `json:"positiveRate"`
}
