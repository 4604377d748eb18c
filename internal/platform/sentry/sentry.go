// Package sentry reports unexpected server errors and panics to Sentry.
// A Reporter built from an empty DSN is disabled and every method is a
// no-op, as is a nil *Reporter.
package sentry

import (
	"context"
	"fmt"
	"time"

	sentrygo "github.com/getsentry/sentry-go"
	"github.com/phrazzld/skincare-api/internal/config"
)

// Option adjusts the client options before the client is created.
type Option func(*sentrygo.ClientOptions)

// Reporter sends events to a dedicated Sentry hub.
type Reporter struct {
	hub *sentrygo.Hub
}

// New creates a Reporter for cfg. An empty DSN returns a disabled Reporter.
func New(cfg config.SentryConfig, release string, opts ...Option) (*Reporter, error) {
	if cfg.DSN == "" {
		return &Reporter{}, nil
	}

	options := sentrygo.ClientOptions{
		Dsn:              cfg.DSN,
		AttachStacktrace: true,
		TracesSampleRate: 0,
		ServerName:       "skincare-api",
		Release:          release,
		Environment:      cfg.Environment,
	}
	for _, opt := range opts {
		opt(&options)
	}

	client, err := sentrygo.NewClient(options)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize sentry: %w", err)
	}

	return &Reporter{hub: sentrygo.NewHub(client, sentrygo.NewScope())}, nil
}

// Enabled reports whether events are sent anywhere.
func (r *Reporter) Enabled() bool {
	return r != nil && r.hub != nil
}

// CaptureError reports err with the given tags.
func (r *Reporter) CaptureError(ctx context.Context, err error, tags map[string]string) {
	if !r.Enabled() || err == nil {
		return
	}

	r.hub.WithScope(func(scope *sentrygo.Scope) {
		for k, v := range tags {
			scope.SetTag(k, v)
		}
		scope.SetContext("request", sentrygo.Context{"has_deadline": hasDeadline(ctx)})
		r.hub.CaptureException(err)
	})
}

// CapturePanic reports a recovered panic value.
func (r *Reporter) CapturePanic(ctx context.Context, recovered any, tags map[string]string) {
	if !r.Enabled() || recovered == nil {
		return
	}

	r.hub.WithScope(func(scope *sentrygo.Scope) {
		for k, v := range tags {
			scope.SetTag(k, v)
		}
		r.hub.RecoverWithContext(ctx, recovered)
	})
}

// Flush waits up to timeout for buffered events to be delivered.
func (r *Reporter) Flush(timeout time.Duration) bool {
	if !r.Enabled() {
		return true
	}
	return r.hub.Flush(timeout)
}

func hasDeadline(ctx context.Context) bool {
	if ctx == nil {
		return false
	}
	_, ok := ctx.Deadline()
	return ok
}
