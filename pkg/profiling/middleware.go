package profiling

import (
	"net/http"
	"runtime"
	"strconv"
	"time"
)

// Middleware adds timing headers to HTTP handlers
type Middleware struct {
	enableProfiling bool
}

// NewMiddleware creates a new profiling middleware
func NewMiddleware(enableProfiling bool) *Middleware {
	return &Middleware{
		enableProfiling: enableProfiling,
	}
}

// ProfiledHandler wraps an HTTP handler with profiling headers. Headers are
// set before the wrapped handler writes its status.
func (m *Middleware) ProfiledHandler(name string, handler http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !m.enableProfiling {
			handler.ServeHTTP(w, r)
			return
		}

		wrapped := &responseWriter{
			ResponseWriter: w,
			name:           name,
			start:          time.Now(),
			goroutines:     runtime.NumGoroutine(),
		}
		handler.ServeHTTP(wrapped, r)
		if !wrapped.wroteHeader {
			wrapped.WriteHeader(http.StatusOK)
		}
	})
}

// responseWriter stamps the profiling headers on the first write
type responseWriter struct {
	http.ResponseWriter
	name        string
	start       time.Time
	goroutines  int
	wroteHeader bool
}

func (rw *responseWriter) WriteHeader(code int) {
	if rw.wroteHeader {
		return
	}
	rw.wroteHeader = true

	h := rw.Header()
	h.Set("X-Profiling-Enabled", "true")
	h.Set("X-Handler-Name", rw.name)
	h.Set("X-Duration-Ms", strconv.FormatFloat(float64(time.Since(rw.start).Nanoseconds())/1000000.0, 'f', 3, 64))
	h.Set("X-Goroutine-Delta", strconv.Itoa(runtime.NumGoroutine()-rw.goroutines))
	h.Set("X-Status-Code", strconv.Itoa(code))
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	if !rw.wroteHeader {
		rw.WriteHeader(http.StatusOK)
	}
	return rw.ResponseWriter.Write(b)
}
