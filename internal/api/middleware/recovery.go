package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/phrazzld/skincare-api/internal/api/shared"
	"github.com/phrazzld/skincare-api/internal/platform/logger"
)

// PanicReporter forwards recovered panics to an error tracker.
type PanicReporter interface {
	CapturePanic(ctx context.Context, recovered any, tags map[string]string)
}

// Recoverer turns a handler panic into the generic 500 response. The panic
// and its stack are logged and passed to reporter when it is non-nil.
func Recoverer(reporter PanicReporter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if err, ok := rec.(error); ok && errors.Is(err, http.ErrAbortHandler) {
					panic(rec)
				}

				logger.FromContext(r.Context()).Error("panic while handling request",
					"panic", fmt.Sprint(rec),
					"stack", string(debug.Stack()),
					"path", r.URL.Path,
					"method", r.Method)

				if reporter != nil {
					reporter.CapturePanic(r.Context(), rec, map[string]string{
						"path":     r.URL.Path,
						"method":   r.Method,
						"trace_id": shared.GetTraceID(r.Context()),
					})
				}

				shared.RespondWithError(w, r, http.StatusInternalServerError, shared.InternalErrorMessage)
			}()

			next.ServeHTTP(w, r)
		})
	}
}
