package gemini

import "errors"

// Error definitions for the gemini package.
var (
	// ErrEmptyImagePath is returned when Classify is called without a file.
	ErrEmptyImagePath = errors.New("image path cannot be empty")

	// ErrNoLabels is returned when a classifier is built without candidate labels.
	ErrNoLabels = errors.New("classifier needs at least one label")
)
