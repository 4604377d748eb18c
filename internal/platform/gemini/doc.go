// Package gemini adapts Google's Gemini API (google.golang.org/genai) to the
// application's collaborator interfaces.
//
// It provides two components:
//
// 1. Generator:
//   - Implements generation.TextGenerator
//   - Sends a single prompt and returns the concatenated text parts
//   - Translates empty, blocked and failed responses into generation errors
//
// 2. Classifier:
//   - Classifies a skin image on disk into one of a configured set of labels
//   - Normalizes the image with the imageprep package before upload
//   - Returns the model's JSON answer as an opaque map carrying at least
//     predicted_class and confidence
//
// Neither component retries; a failed call is reported once to the caller.
package gemini
