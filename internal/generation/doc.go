// Package generation defines the interface for interacting with external
// AI/LLM services for text generation. It abstracts the details of the Gemini
// integration so the recommendation logic can be exercised with fakes.
package generation
