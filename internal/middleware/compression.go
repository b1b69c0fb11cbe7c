package middleware

import (
	"compress/gzip"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/samber/lo"
)

// CompressionConfig holds configuration for the compression middleware
type CompressionConfig struct {
	// MinSize is the minimum response size in bytes before compression is applied
	MinSize int
	// Level is the gzip compression level (gzip.BestSpeed to gzip.BestCompression)
	Level int
	// CompressibleTypes lists media types worth compressing
	CompressibleTypes []string
	// SkipPrefixes are paths served with byte ranges, which gzip would break
	SkipPrefixes []string
}

// DefaultCompressionConfig returns the settings used by the server.
// Video bytes and JPEG thumbnails are already compressed and pass through.
func DefaultCompressionConfig() CompressionConfig {
	return CompressionConfig{
		MinSize: 1024,
		Level:   gzip.DefaultCompression,
		CompressibleTypes: []string{
			"application/json",
			"text/plain",
			"audio/x-mpegurl",
			"application/vnd.ms-wpl",
		},
		SkipPrefixes: []string{"/api/blob/"},
	}
}

// gzipPools holds one writer pool per compression level.
var gzipPools sync.Map

func gzipPool(level int) *sync.Pool {
	if p, ok := gzipPools.Load(level); ok {
		return p.(*sync.Pool)
	}
	p, _ := gzipPools.LoadOrStore(level, &sync.Pool{
		New: func() any {
			w, err := gzip.NewWriterLevel(io.Discard, level)
			if err != nil {
				w = gzip.NewWriter(io.Discard)
			}
			return w
		},
	})
	return p.(*sync.Pool)
}

// acceptsGzip reports whether the Accept-Encoding header allows gzip with a
// non-zero quality.
func acceptsGzip(header string) bool {
	for _, part := range strings.Split(header, ",") {
		coding, params, _ := strings.Cut(strings.TrimSpace(part), ";")
		coding = strings.ToLower(strings.TrimSpace(coding))
		if coding != "gzip" && coding != "*" {
			continue
		}
		q, found := strings.CutPrefix(strings.ReplaceAll(params, " ", ""), "q=")
		if !found {
			return true
		}
		if v, err := strconv.ParseFloat(q, 64); err == nil && v > 0 {
			return true
		}
	}
	return false
}

// gzipResponseWriter holds back the first MinSize bytes so the decision to
// compress can look at the status, headers and body length together.
type gzipResponseWriter struct {
	http.ResponseWriter
	config  CompressionConfig
	pending []byte
	status  int
	decided bool
	gz      *gzip.Writer
}

func newGzipResponseWriter(w http.ResponseWriter, config CompressionConfig) *gzipResponseWriter {
	return &gzipResponseWriter{
		ResponseWriter: w,
		config:         config,
		status:         http.StatusOK,
	}
}

// WriteHeader records the status until the compression decision is made.
func (g *gzipResponseWriter) WriteHeader(statusCode int) {
	if !g.decided {
		g.status = statusCode
	}
}

func (g *gzipResponseWriter) Write(data []byte) (int, error) {
	if g.decided {
		if g.gz != nil {
			return g.gz.Write(data)
		}
		return g.ResponseWriter.Write(data)
	}

	g.pending = append(g.pending, data...)
	if len(g.pending) > g.config.MinSize {
		if err := g.decide(); err != nil {
			return 0, err
		}
	}
	return len(data), nil
}

// compressible reports whether a response of size buffered bytes should be
// gzipped given the status and headers set so far.
func (g *gzipResponseWriter) compressible(size int) bool {
	if size < g.config.MinSize || g.status == http.StatusPartialContent {
		return false
	}
	h := g.Header()
	if h.Get("Content-Encoding") != "" {
		return false
	}
	mediaType, _, _ := strings.Cut(h.Get("Content-Type"), ";")
	return lo.Contains(g.config.CompressibleTypes, strings.ToLower(strings.TrimSpace(mediaType)))
}

// decide sends the headers and the held-back bytes, compressed or not.
func (g *gzipResponseWriter) decide() error {
	if g.decided {
		return nil
	}
	g.decided = true

	pending := g.pending
	g.pending = nil

	if !g.compressible(len(pending)) {
		g.ResponseWriter.WriteHeader(g.status)
		_, err := g.ResponseWriter.Write(pending)
		return err
	}

	h := g.Header()
	h.Del("Content-Length")
	h.Set("Content-Encoding", "gzip")
	h.Add("Vary", "Accept-Encoding")

	g.gz = gzipPool(g.config.Level).Get().(*gzip.Writer)
	g.gz.Reset(g.ResponseWriter)
	g.ResponseWriter.WriteHeader(g.status)
	_, err := g.gz.Write(pending)
	return err
}

// Close flushes anything held back and returns the gzip writer to its pool.
func (g *gzipResponseWriter) Close() error {
	err := g.decide()
	if g.gz != nil {
		if cerr := g.gz.Close(); err == nil {
			err = cerr
		}
		gzipPool(g.config.Level).Put(g.gz)
		g.gz = nil
	}
	return err
}

// Flush implements http.Flusher
func (g *gzipResponseWriter) Flush() {
	_ = g.decide()
	if g.gz != nil {
		_ = g.gz.Flush()
	}
	if flusher, ok := g.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

// Unwrap exposes the underlying writer to http.ResponseController.
func (g *gzipResponseWriter) Unwrap() http.ResponseWriter {
	return g.ResponseWriter
}

// Compression returns a middleware that gzips JSON and playlist responses.
// Range, upgrade and blob requests are never compressed.
func Compression(config CompressionConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			skip := !acceptsGzip(r.Header.Get("Accept-Encoding")) ||
				r.Header.Get("Range") != "" ||
				r.Header.Get("Upgrade") != "" ||
				lo.SomeBy(config.SkipPrefixes, func(p string) bool { return strings.HasPrefix(r.URL.Path, p) })
			if skip {
				next.ServeHTTP(w, r)
				return
			}

			gzw := newGzipResponseWriter(w, config)
			defer gzw.Close()
			next.ServeHTTP(gzw, r)
		})
	}
}
