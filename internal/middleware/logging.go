package middleware

import (
	"log"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"vidshelf/internal/startup"

	"github.com/samber/lo"
)

// responseWriter captures the status code and bytes written. It is shared by
// the logging and metrics middleware.
type responseWriter struct {
	http.ResponseWriter
	statusCode   int
	bytesWritten int64
	wroteHeader  bool
}

func newResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{
		ResponseWriter: w,
		statusCode:     http.StatusOK,
	}
}

func (rw *responseWriter) WriteHeader(code int) {
	if rw.wroteHeader {
		return
	}
	rw.statusCode = code
	rw.wroteHeader = true
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	rw.wroteHeader = true
	n, err := rw.ResponseWriter.Write(b)
	rw.bytesWritten += int64(n)
	return n, err
}

func (rw *responseWriter) Flush() {
	if f, ok := rw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (rw *responseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

// LoggingConfig holds configuration for the logging middleware
type LoggingConfig struct {
	SkipPaths      []string
	SkipExtensions []string
	// SkipPrefixes are treated as static content: blob routes are hit
	// repeatedly by the player while seeking.
	SkipPrefixes    []string
	LogStaticFiles  bool
	LogHealthChecks bool
}

// DefaultLoggingConfig returns a sensible default configuration
func DefaultLoggingConfig() LoggingConfig {
	return LoggingConfig{
		SkipExtensions:  []string{".css", ".js", ".ico", ".png", ".jpg", ".jpeg", ".svg", ".woff2"},
		SkipPrefixes:    []string{"/api/blob/"},
		LogHealthChecks: true,
	}
}

// w3cFields is the #Fields directive matching the columns of each log line.
const w3cFields = "date time c-ip cs-method cs-uri-stem cs-uri-query sc-status sc-bytes time-taken sc(Content-Encoding) cs(Range) cs(User-Agent) cs(Referer)"

// W3CLogger writes access lines in W3C Extended Log Format. The directive
// header is written once, before the first line.
type W3CLogger struct {
	config      LoggingConfig
	serviceName string
	header      sync.Once
}

// NewW3CLogger creates a new W3C format logger
func NewW3CLogger(config LoggingConfig, serviceName string) *W3CLogger {
	return &W3CLogger{
		config:      config,
		serviceName: serviceName,
	}
}

var healthCheckPaths = map[string]bool{
	"/health":  true,
	"/healthz": true,
	"/livez":   true,
	"/readyz":  true,
}

// sanitizeLogField drops control characters that could forge log lines or
// inject terminal escapes. Newlines become spaces and tabs are kept.
func sanitizeLogField(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r == '\n' || r == '\r':
			return ' '
		case r == '\t':
			return r
		case r < 0x20 || r == 0x7f:
			return -1
		}
		return r
	}, s)
}

// w3cValue sanitizes a field and substitutes "-" for empty values. Values
// with spaces or quotes are quoted, doubling embedded quotes.
func w3cValue(s string) string {
	s = sanitizeLogField(s)
	switch {
	case s == "":
		return "-"
	case strings.ContainsAny(s, " \t\""):
		return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
	}
	return s
}

// Logger returns HTTP logging middleware using W3C Extended Log Format
func Logger(config LoggingConfig) func(http.Handler) http.Handler {
	logger := NewW3CLogger(config, "vidshelf/"+startup.Version)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if config.skip(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			wrapped := newResponseWriter(w)
			next.ServeHTTP(wrapped, r)
			logger.logRequest(r, wrapped, time.Since(start))
		})
	}
}

func (l *W3CLogger) logRequest(r *http.Request, rw *responseWriter, duration time.Duration) {
	l.header.Do(func() {
		log.Printf("#Software: %s", l.serviceName)
		log.Printf("#Fields: %s", w3cFields)
	})

	now := time.Now().UTC()
	fields := []string{
		now.Format("2006-01-02"),
		now.Format("15:04:05"),
		w3cValue(getClientIP(r)),
		w3cValue(r.Method),
		w3cValue(r.URL.Path),
		w3cValue(r.URL.RawQuery),
		strconv.Itoa(rw.statusCode),
		strconv.FormatInt(rw.bytesWritten, 10),
		strconv.FormatInt(duration.Milliseconds(), 10),
		w3cValue(rw.Header().Get("Content-Encoding")),
		w3cValue(r.Header.Get("Range")),
		w3cValue(r.Header.Get("User-Agent")),
		w3cValue(r.Header.Get("Referer")),
	}

	//nolint:gosec // G706: user-controlled fields pass through sanitizeLogField
	log.Println(strings.Join(fields, " "))
}

func (c LoggingConfig) skip(path string) bool {
	if lo.SomeBy(c.SkipPaths, func(p string) bool { return strings.HasPrefix(path, p) }) {
		return true
	}
	if !c.LogHealthChecks && healthCheckPaths[path] {
		return true
	}
	if c.LogStaticFiles {
		return false
	}

	lower := strings.ToLower(path)
	return strings.HasSuffix(path, "/thumbnail") ||
		lo.SomeBy(c.SkipExtensions, func(ext string) bool { return strings.HasSuffix(lower, ext) }) ||
		lo.SomeBy(c.SkipPrefixes, func(p string) bool { return strings.HasPrefix(path, p) })
}

// getClientIP prefers the first X-Forwarded-For hop, then X-Real-IP, then
// the connection address.
func getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
