package middleware

import (
	"bytes"
	"compress/gzip"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"strings"
	"testing"

	"github.com/gorilla/mux"
)

func TestResponseWriter(t *testing.T) {
	w := httptest.NewRecorder()
	rw := newResponseWriter(w)

	if rw.statusCode != http.StatusOK || rw.wroteHeader {
		t.Fatalf("new responseWriter = %+v", rw)
	}

	rw.WriteHeader(http.StatusNotFound)
	rw.WriteHeader(http.StatusInternalServerError)
	if rw.statusCode != http.StatusNotFound {
		t.Errorf("statusCode = %d, want first WriteHeader to win", rw.statusCode)
	}

	n, err := rw.Write([]byte("test data"))
	if err != nil || n != 9 || rw.bytesWritten != 9 {
		t.Errorf("Write() = %d, %v; bytesWritten = %d", n, err, rw.bytesWritten)
	}
	if rw.Unwrap() != w {
		t.Error("Unwrap() did not return the underlying writer")
	}
}

func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	log.SetOutput(&buf)
	t.Cleanup(func() { log.SetOutput(os.Stderr) })
	return &buf
}

func TestLoggerMiddleware(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("hi"))
	})

	tests := []struct {
		name    string
		config  func(*LoggingConfig)
		path    string
		logged  bool
		contain string
	}{
		{name: "api request", path: "/api/videos?sortBy=size", logged: true, contain: "GET /api/videos sortBy=size 418 2"},
		{name: "static file skipped", path: "/app.js", logged: false},
		{name: "static file logged when enabled", config: func(c *LoggingConfig) { c.LogStaticFiles = true }, path: "/app.js", logged: true},
		{name: "blob skipped", path: "/api/blob/abc", logged: false},
		{name: "thumbnail skipped", path: "/api/videos/x/thumbnail", logged: false},
		{name: "health logged by default", path: "/healthz", logged: true},
		{name: "health skipped when disabled", config: func(c *LoggingConfig) { c.LogHealthChecks = false }, path: "/healthz", logged: false},
		{name: "explicit skip path", config: func(c *LoggingConfig) { c.SkipPaths = []string{"/api/codecs"} }, path: "/api/codecs", logged: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := captureLog(t)
			config := DefaultLoggingConfig()
			if tt.config != nil {
				tt.config(&config)
			}

			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			req.Header.Set("User-Agent", "Test Agent")
			Logger(config)(ok).ServeHTTP(httptest.NewRecorder(), req)

			out := buf.String()
			if tt.logged != (out != "") {
				t.Fatalf("logged = %v, output %q", out != "", out)
			}
			if tt.logged {
				if !strings.Contains(out, "#Fields: date time c-ip") {
					t.Errorf("missing #Fields directive in %q", out)
				}
				if !strings.Contains(out, `"Test Agent"`) {
					t.Errorf("user agent not quoted in %q", out)
				}
			}
			if tt.contain != "" && !strings.Contains(out, tt.contain) {
				t.Errorf("output %q does not contain %q", out, tt.contain)
			}
		})
	}
}

func TestSanitizeLogField(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"plain", "plain"},
		{"a\nb\rc", "a b c"},
		{"x\x00y", "xy"},
		{"\x1b[31mred", "[31mred"},
		{"tab\there", "tab\there"},
	}
	for _, tt := range tests {
		if got := sanitizeLogField(tt.in); got != tt.want {
			t.Errorf("sanitizeLogField(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name   string
		header map[string]string
		remote string
		want   string
	}{
		{name: "forwarded list", header: map[string]string{"X-Forwarded-For": "10.0.0.1, 10.0.0.2"}, want: "10.0.0.1"},
		{name: "real ip", header: map[string]string{"X-Real-IP": "10.0.0.9"}, want: "10.0.0.9"},
		{name: "remote addr", remote: "192.168.1.5:5555", want: "192.168.1.5"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			for k, v := range tt.header {
				req.Header.Set(k, v)
			}
			if tt.remote != "" {
				req.RemoteAddr = tt.remote
			}
			if got := getClientIP(req); got != tt.want {
				t.Errorf("getClientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}

func jsonHandler(body string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		_, _ = io.WriteString(w, body)
	})
}

func TestCompressionMiddleware(t *testing.T) {
	large := `{"videos":"` + strings.Repeat("a", 4096) + `"}`

	tests := []struct {
		name       string
		path       string
		header     map[string]string
		handler    http.Handler
		compressed bool
	}{
		{name: "large json", path: "/api/videos", header: map[string]string{"Accept-Encoding": "gzip, deflate"}, handler: jsonHandler(large), compressed: true},
		{name: "small json", path: "/api/videos", header: map[string]string{"Accept-Encoding": "gzip"}, handler: jsonHandler(`{}`), compressed: false},
		{name: "client without gzip", path: "/api/videos", handler: jsonHandler(large), compressed: false},
		{name: "range request", path: "/api/videos", header: map[string]string{"Accept-Encoding": "gzip", "Range": "bytes=0-10"}, handler: jsonHandler(large), compressed: false},
		{name: "blob path", path: "/api/blob/abc", header: map[string]string{"Accept-Encoding": "gzip"}, handler: jsonHandler(large), compressed: false},
		{
			name:   "video content",
			path:   "/api/other",
			header: map[string]string{"Accept-Encoding": "gzip"},
			handler: http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "video/mp4")
				_, _ = w.Write(bytes.Repeat([]byte{1}, 4096))
			}),
			compressed: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			for k, v := range tt.header {
				req.Header.Set(k, v)
			}
			rec := httptest.NewRecorder()
			Compression(DefaultCompressionConfig())(tt.handler).ServeHTTP(rec, req)

			gotGzip := rec.Header().Get("Content-Encoding") == "gzip"
			if gotGzip != tt.compressed {
				t.Fatalf("compressed = %v, want %v", gotGzip, tt.compressed)
			}
			if !gotGzip {
				return
			}

			zr, err := gzip.NewReader(rec.Body)
			if err != nil {
				t.Fatalf("gzip.NewReader() error = %v", err)
			}
			body, err := io.ReadAll(zr)
			if err != nil {
				t.Fatalf("read gzip body: %v", err)
			}
			if string(body) != large {
				t.Error("decompressed body does not match")
			}
		})
	}
}

func TestCompressionMultipleWrites(t *testing.T) {
	h := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		for i := 0; i < 10; i++ {
			_, _ = io.WriteString(w, strings.Repeat("x", 300))
		}
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	rec := httptest.NewRecorder()
	Compression(DefaultCompressionConfig())(h).ServeHTTP(rec, req)

	zr, err := gzip.NewReader(rec.Body)
	if err != nil {
		t.Fatalf("gzip.NewReader() error = %v", err)
	}
	body, _ := io.ReadAll(zr)
	if len(body) != 3000 {
		t.Errorf("decompressed %d bytes, want 3000", len(body))
	}
}

func TestRouteLabel(t *testing.T) {
	var got string
	r := mux.NewRouter()
	r.HandleFunc("/api/videos/{id}", func(_ http.ResponseWriter, req *http.Request) {
		got = routeLabel(req)
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/videos/abc123", nil))
	if got != "/api/videos/{id}" {
		t.Errorf("routeLabel() = %q, want /api/videos/{id}", got)
	}

	if label := routeLabel(httptest.NewRequest(http.MethodGet, "/nowhere", nil)); label != unmatchedRoute {
		t.Errorf("routeLabel() outside a router = %q, want %q", label, unmatchedRoute)
	}
}

func TestMetricsMiddleware(t *testing.T) {
	r := mux.NewRouter()
	r.Use(Metrics(DefaultMetricsConfig()))

	var called int
	r.HandleFunc("/api/videos/{id}", func(w http.ResponseWriter, _ *http.Request) {
		called++
		w.WriteHeader(http.StatusNotFound)
	})
	r.HandleFunc("/healthz", func(_ http.ResponseWriter, _ *http.Request) { called++ })

	for _, path := range []string{"/api/videos/1", "/api/videos/2", "/healthz"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if path != "/healthz" && rec.Code != http.StatusNotFound {
			t.Errorf("%s status = %d", path, rec.Code)
		}
	}
	if called != 3 {
		t.Errorf("handlers called %d times, want 3", called)
	}
}

func BenchmarkLoggingMiddleware(b *testing.B) {
	log.SetOutput(io.Discard)
	defer log.SetOutput(os.Stderr)

	h := Logger(DefaultLoggingConfig())(jsonHandler(`{}`))
	req := httptest.NewRequest(http.MethodGet, "/api/videos", nil)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		h.ServeHTTP(httptest.NewRecorder(), req)
	}
}

func TestAcceptsGzip(t *testing.T) {
	tests := []struct {
		header string
		want   bool
	}{
		{header: "", want: false},
		{header: "gzip", want: true},
		{header: "deflate, gzip;q=0.5", want: true},
		{header: "gzip;q=0", want: false},
		{header: "br, GZIP", want: true},
		{header: "*", want: true},
		{header: "identity", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			if got := acceptsGzip(tt.header); got != tt.want {
				t.Errorf("acceptsGzip(%q) = %v, want %v", tt.header, got, tt.want)
			}
		})
	}
}

func TestCompressionLevelPools(t *testing.T) {
	fast := gzipPool(gzip.BestSpeed)
	if fast != gzipPool(gzip.BestSpeed) {
		t.Error("gzipPool() returned a different pool for the same level")
	}
	if fast == gzipPool(gzip.BestCompression) {
		t.Error("gzipPool() shared a pool between levels")
	}
	if _, ok := gzipPool(42).Get().(*gzip.Writer); !ok {
		t.Error("invalid level did not fall back to a default writer")
	}
}

func TestW3CValue(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "", want: "-"},
		{in: "bytes=0-1023", want: "bytes=0-1023"},
		{in: "Mozilla/5.0 (X11)", want: `"Mozilla/5.0 (X11)"`},
		{in: `say "hi"`, want: `"say ""hi"""`},
		{in: "line\nbreak", want: `"line break"`},
	}
	for _, tt := range tests {
		if got := w3cValue(tt.in); got != tt.want {
			t.Errorf("w3cValue(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestGetClientIPv6(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "[::1]:41234"
	if got := getClientIP(req); got != "::1" {
		t.Errorf("getClientIP() = %q, want ::1", got)
	}
}

func TestCompressionKeepsHeldBackBytes(t *testing.T) {
	head := `{"name":"` + strings.Repeat("h", 600) + `",`
	tail := `"rest":"` + strings.Repeat("t", 600) + `"}`
	h := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.Header().Set("Content-Length", strconv.Itoa(len(head)+len(tail)))
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, head)
		_, _ = io.WriteString(w, tail)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/playlist", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	rec := httptest.NewRecorder()
	Compression(DefaultCompressionConfig())(h).ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Errorf("status = %d, want 201", rec.Code)
	}
	if rec.Header().Get("Content-Encoding") != "gzip" {
		t.Fatalf("Content-Encoding = %q, want gzip", rec.Header().Get("Content-Encoding"))
	}
	if rec.Header().Get("Content-Length") != "" {
		t.Error("Content-Length kept on a gzipped response")
	}
	if rec.Body.Len() >= len(head)+len(tail) {
		t.Errorf("gzipped body is %d bytes, not smaller than %d", rec.Body.Len(), len(head)+len(tail))
	}

	zr, err := gzip.NewReader(rec.Body)
	if err != nil {
		t.Fatalf("gzip.NewReader() error = %v", err)
	}
	body, err := io.ReadAll(zr)
	if err != nil {
		t.Fatalf("read gzip body: %v", err)
	}
	if string(body) != head+tail {
		t.Error("decompressed body does not match")
	}
}
