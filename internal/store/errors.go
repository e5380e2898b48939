package store

import "errors"

// Predefined errors for the store layer.
var (
	// ErrCorruptDocument indicates the stored collection exists but cannot be decoded.
	ErrCorruptDocument = errors.New("feedback document is corrupt")
)
