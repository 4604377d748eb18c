// Package api handles incoming HTTP requests, routing, request validation,
// and response formatting. It adapts HTTP to the recommendation service and
// the background classification runner.
package api
