package httpmiddleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/lewisedginton/chat-gateway/pkg/logger"
)

// HTTPLogger provides HTTP request/response logging middleware
type HTTPLogger struct {
	logger logger.Logger
}

// NewHTTPLogger creates a new HTTP logger middleware
func NewHTTPLogger(log logger.Logger) *HTTPLogger {
	return &HTTPLogger{logger: log}
}

// Middleware returns the HTTP logging middleware
func (h *HTTPLogger) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		requestLogger := h.RequestLogger(r)
		requestLogger.Info("HTTP request received")

		wrappedWriter := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(wrappedWriter, r)

		duration := time.Since(start)

		requestLogger.WithFields(
			logger.StringField("http_status", strconv.Itoa(wrappedWriter.Status())),
			logger.StringField("response_bytes", strconv.Itoa(wrappedWriter.BytesWritten())),
			logger.DurationField("duration", duration),
		).Info("HTTP response sent")
	})
}

// RequestLogger creates a logger with request context for use in handlers.
// The correlation ID header is guaranteed valid by the correlation middleware.
func (h *HTTPLogger) RequestLogger(r *http.Request) logger.Logger {
	return h.logger.WithFields(
		logger.ClientIPField(r.RemoteAddr),
		logger.HTTPMethodField(r.Method),
		logger.HTTPPathField(r.URL.Path),
		logger.CorrelationIDField(r.Header.Get(logger.CorrelationIDHeader)),
	)
}
