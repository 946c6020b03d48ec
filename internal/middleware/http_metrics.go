// Package middleware provides HTTP middleware components for the API server.
package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"
)

// normalizePath converts paths with dynamic segments to route patterns to prevent
// cardinality explosion in metrics. This maps paths like /events/123 to /events/{id}.
func normalizePath(path string) string {
	staticRoutes := map[string]bool{
		"/":              true,
		"/feed/for-you":  true,
		"/feed/explore":  true,
		"/events":        true,
		"/notifications": true,
		"/health":        true,
		"/ready":         true,
		"/metrics":       true,
	}

	if staticRoutes[path] {
		return path
	}

	// /events/{id}/... patterns
	if strings.HasPrefix(path, "/events/") {
		parts := strings.Split(path, "/")
		switch {
		case len(parts) == 3 && parts[2] != "":
			return "/events/{id}"
		case len(parts) == 4 && (parts[3] == "like" || parts[3] == "attend"):
			return "/events/{id}/" + parts[3]
		case len(parts) == 6 && parts[3] == "attendees" && (parts[5] == "approve" || parts[5] == "decline"):
			return "/events/{id}/attendees/{user_id}/" + parts[5]
		}
	}

	// /profiles/{id}/... patterns
	if strings.HasPrefix(path, "/profiles/") {
		parts := strings.Split(path, "/")
		switch {
		case len(parts) == 3 && parts[2] != "":
			return "/profiles/{id}"
		case len(parts) == 4 && (parts[3] == "events" || parts[3] == "follow"):
			return "/profiles/{id}/" + parts[3]
		}
	}

	// /notifications/{id}/read
	if strings.HasPrefix(path, "/notifications/") {
		parts := strings.Split(path, "/")
		if len(parts) == 4 && parts[3] == "read" {
			return "/notifications/{id}/read"
		}
	}

	// Fallback: return as-is for unknown patterns
	// This ensures we don't accidentally break metrics for new routes
	return path
}

// metricsResponseWriter wraps http.ResponseWriter to capture status code and response size.
type metricsResponseWriter struct {
	http.ResponseWriter
	statusCode  int
	size        int64
	wroteHeader bool
}

// WriteHeader captures the status code before writing it.
func (mrw *metricsResponseWriter) WriteHeader(code int) {
	if mrw.wroteHeader {
		return
	}
	mrw.statusCode = code
	mrw.wroteHeader = true
	mrw.ResponseWriter.WriteHeader(code)
}

// Write captures the response size and writes the data.
func (mrw *metricsResponseWriter) Write(b []byte) (int, error) {
	n, err := mrw.ResponseWriter.Write(b)
	mrw.size += int64(n)
	return n, err
}

// HTTPMetrics is a middleware that records HTTP request metrics.
// It captures duration, request/response sizes, and request counts.
// Health check endpoints (/health, /ready) are excluded from metrics to avoid noise.
func HTTPMetrics(metrics *Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/health" || r.URL.Path == "/ready" {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()

			mrw := &metricsResponseWriter{ResponseWriter: w, statusCode: http.StatusOK}

			requestSize := int64(0)
			if contentLength := r.Header.Get("Content-Length"); contentLength != "" {
				if size, err := strconv.ParseInt(contentLength, 10, 64); err == nil {
					requestSize = size
				}
			}

			next.ServeHTTP(mrw, r)

			duration := time.Since(start).Seconds()
			normalizedPath := normalizePath(r.URL.Path)

			metrics.ObserveHTTPRequest(
				r.Method,
				normalizedPath,
				strconv.Itoa(mrw.statusCode),
				duration,
				requestSize,
				mrw.size,
			)
		})
	}
}
