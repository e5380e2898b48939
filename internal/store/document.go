package store

import (
	"encoding/json"
	"fmt"

	"github.com/NomadCrew/feedback-tracker-backend/types"
)

// DecodeDocument parses a persisted collection. Empty input is an empty collection.
func DecodeDocument(data []byte) ([]types.Feedback, error) {
	items := []types.Feedback{}
	if len(data) == 0 {
		return items, nil
	}
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptDocument, err)
	}
	if items == nil {
		// a literal "null" document
		items = []types.Feedback{}
	}
	return items, nil
}

// EncodeDocument renders a collection the way every backend stores it:
// a JSON array indented with two spaces.
func EncodeDocument(items []types.Feedback) ([]byte, error) {
	if items == nil {
		items = []types.Feedback{}
	}
	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode feedback document: %w", err)
	}
	return data, nil
}
