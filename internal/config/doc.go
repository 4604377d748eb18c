// Package config handles configuration loading, parsing, and validation
// from environment variables and an optional YAML file. It provides type-safe
// access to the settings of the HTTP server, the Gemini collaborators, the
// background job runner and the task store backends.
package config
