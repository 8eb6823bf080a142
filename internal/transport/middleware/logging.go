package middleware

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/middleware"

	"github.com/frahmantamala/budget-tracker/pkg/logger"
)

// Keys containing any of these are masked in logged headers and JSON bodies.
var sensitiveFields = []string{"token", "authorization", "secret", "api_key", "credential"}

// maxLoggedBody caps logged bodies; statement uploads can be large.
const maxLoggedBody = 2048

// LoggingMiddleware puts a request-scoped logger into the context and writes
// one line per request. JSON request bodies are logged at debug; response
// bodies only for failed requests.
func LoggingMiddleware(base *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			log := base.With("request_id", middleware.GetReqID(r.Context()))
			r = r.WithContext(logger.Into(r.Context(), log))

			if log.Enabled(r.Context(), slog.LevelDebug) && isJSON(r.Header.Get("Content-Type")) {
				log.Debug("request body",
					"path", r.URL.Path,
					"headers", redactHeaders(r.Header),
					"body", redactBody(peekBody(r)))
			}

			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)

			attrs := []any{
				"method", r.Method,
				"path", r.URL.Path,
				"query", r.URL.RawQuery,
				"status", rec.status,
				"bytes", rec.written,
				"duration_ms", time.Since(start).Milliseconds(),
				"remote_addr", r.RemoteAddr,
			}
			level := slog.LevelInfo
			switch {
			case rec.status >= 500:
				level = slog.LevelError
			case rec.status >= 400:
				level = slog.LevelWarn
			}
			if rec.status >= 400 {
				attrs = append(attrs, "body", redactBody(rec.failure.Bytes()))
			}
			log.Log(r.Context(), level, "request handled", attrs...)
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status  int
	written int
	failure bytes.Buffer
}

func (rw *statusRecorder) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *statusRecorder) Write(b []byte) (int, error) {
	if rw.status >= 400 && rw.failure.Len() < maxLoggedBody {
		rw.failure.Write(b)
	}
	n, err := rw.ResponseWriter.Write(b)
	rw.written += n
	return n, err
}

func isJSON(contentType string) bool {
	return strings.HasPrefix(strings.ToLower(contentType), "application/json")
}

// peekBody reads the body and puts an identical reader back.
func peekBody(r *http.Request) []byte {
	if r.Body == nil {
		return nil
	}
	body, _ := io.ReadAll(r.Body)
	r.Body = io.NopCloser(bytes.NewReader(body))
	return body
}

func sensitive(key string) bool {
	key = strings.ToLower(key)
	for _, f := range sensitiveFields {
		if strings.Contains(key, f) {
			return true
		}
	}
	return false
}

func redactHeaders(headers http.Header) map[string]string {
	out := make(map[string]string, len(headers))
	for name, values := range headers {
		if sensitive(name) {
			out[name] = "[FILTERED]"
			continue
		}
		out[name] = strings.Join(values, ", ")
	}
	return out
}

func redactBody(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	if len(body) > maxLoggedBody {
		return fmt.Sprintf("[TRUNCATED - %d bytes]", len(body))
	}

	var doc interface{}
	if err := json.Unmarshal(body, &doc); err != nil {
		if sensitive(string(body)) {
			return "[FILTERED]"
		}
		return string(body)
	}
	out, err := json.Marshal(redactJSON(doc))
	if err != nil {
		return "[UNLOGGABLE]"
	}
	return string(out)
}

func redactJSON(v interface{}) interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(t))
		for k, val := range t {
			if sensitive(k) {
				out[k] = "[FILTERED]"
				continue
			}
			out[k] = redactJSON(val)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(t))
		for i, item := range t {
			out[i] = redactJSON(item)
		}
		return out
	default:
		return v
	}
}
