// Package httpmiddleware provides reusable chi-compatible HTTP middleware:
// correlation IDs, CORS, security headers and request logging.
package httpmiddleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/lewisedginton/chat-gateway/pkg/logger"
)

// CorrelationID middleware ensures every request has a unique correlation ID.
// Always generates a new correlation ID and ignores any client-provided
// correlation headers, so IDs stay under our control.
func CorrelationID() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Header.Set(logger.CorrelationIDHeader, uuid.New().String())
			next.ServeHTTP(w, r)
		})
	}
}
