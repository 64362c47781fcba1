package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/frahmantamala/campus-resources/pkg/logger"
)

// redactedKeys are JSON keys and header names whose values never reach the log.
var redactedKeys = []string{
	"password",
	"token",
	"authorization",
	"secret",
	"apikey",
	"api_key",
	"credential",
}

// ContextLogger makes base the request-scoped logger later middleware extends.
func ContextLogger(base *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(logger.Into(r.Context(), base)))
		})
	}
}

// LoggingMiddleware logs one line per request at a level chosen by status.
// Request bodies are only logged, redacted, when debug is enabled.
func LoggingMiddleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			lg := logger.From(r.Context())

			if lg.Enabled(r.Context(), slog.LevelDebug) {
				lg.Debug("incoming request",
					"method", r.Method,
					"path", r.URL.Path,
					"query", r.URL.RawQuery,
					"headers", redactHeaders(r.Header),
					"body", redactBody(peekBody(r)))
			}

			rec := &statusRecorder{ResponseWriter: w, code: http.StatusOK}
			next.ServeHTTP(rec, r)

			level := slog.LevelInfo
			switch {
			case rec.code >= 500:
				level = slog.LevelError
			case rec.code >= 400:
				level = slog.LevelWarn
			}
			lg.Log(context.Background(), level, "request handled",
				"method", r.Method,
				"path", r.URL.Path,
				"status", rec.code,
				"bytes", rec.size,
				"duration_ms", time.Since(start).Milliseconds())
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	code int
	size int
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.code = code
	sr.ResponseWriter.WriteHeader(code)
}

func (sr *statusRecorder) Write(b []byte) (int, error) {
	n, err := sr.ResponseWriter.Write(b)
	sr.size += n
	return n, err
}

func peekBody(r *http.Request) []byte {
	if r.Body == nil {
		return nil
	}
	body, _ := io.ReadAll(r.Body)
	r.Body = io.NopCloser(bytes.NewReader(body))
	return body
}

func redacted(name string) bool {
	lower := strings.ToLower(name)
	for _, key := range redactedKeys {
		if strings.Contains(lower, key) {
			return true
		}
	}
	return false
}

func redactHeaders(headers http.Header) map[string]string {
	out := make(map[string]string, len(headers))
	for name, values := range headers {
		if redacted(name) {
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
	var data any
	if err := json.Unmarshal(body, &data); err != nil {
		if redacted(string(body)) {
			return "[FILTERED]"
		}
		return string(body)
	}
	out, err := json.Marshal(redactJSON(data))
	if err != nil {
		return "[FILTERED]"
	}
	return string(out)
}

func redactJSON(data any) any {
	switch v := data.(type) {
	case map[string]any:
		out := make(map[string]any, len(v))
		for key, value := range v {
			if redacted(key) {
				out[key] = "[FILTERED]"
			} else {
				out[key] = redactJSON(value)
			}
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = redactJSON(item)
		}
		return out
	default:
		return v
	}
}
