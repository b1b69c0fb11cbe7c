package streaming

import (
	"context"
	"errors"
	"io"
	"net/http"
	"sync"
	"time"

	"vidshelf/internal/logging"
)

var (
	// ErrWriteTimeout means a single write took longer than WriteTimeout.
	ErrWriteTimeout = errors.New("write timeout exceeded")

	// ErrClientGone means the request context ended before the body was sent.
	ErrClientGone = errors.New("client disconnected")

	// ErrStreamCanceled means the writer was closed or went idle.
	ErrStreamCanceled = errors.New("stream canceled")
)

// Config configures a Writer.
type Config struct {
	// WriteTimeout bounds a single write to the client.
	WriteTimeout time.Duration
	// IdleTimeout ends the stream when no write succeeds for this long.
	IdleTimeout time.Duration
	// ChunkSize splits large writes so cancellation is noticed between chunks (0 disables).
	ChunkSize int
}

// DefaultConfig returns the limits used for blob playback.
func DefaultConfig() Config {
	return Config{
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
		ChunkSize:    64 * 1024,
	}
}

// Writer is an http.ResponseWriter that bounds how long a slow or stalled
// client may hold a stream open. Headers and status pass straight through.
type Writer struct {
	http.ResponseWriter
	ctx          context.Context
	cancel       context.CancelFunc
	config       Config
	flusher      http.Flusher
	startTime    time.Time
	mu           sync.Mutex
	lastWrite    time.Time
	bytesWritten int64
	closed       bool
}

// NewWriter wraps w. The stream ends when ctx does.
func NewWriter(ctx context.Context, w http.ResponseWriter, config Config) *Writer {
	ctx, cancel := context.WithCancel(ctx)
	now := time.Now()

	tw := &Writer{
		ResponseWriter: w,
		ctx:            ctx,
		cancel:         cancel,
		config:         config,
		startTime:      now,
		lastWrite:      now,
	}
	if f, ok := w.(http.Flusher); ok {
		tw.flusher = f
	}

	go tw.idleChecker()
	return tw
}

// Write sends p to the client, chunked when configured.
func (tw *Writer) Write(p []byte) (int, error) {
	tw.mu.Lock()
	closed := tw.closed
	tw.mu.Unlock()
	if closed {
		return 0, ErrStreamCanceled
	}

	if tw.config.ChunkSize <= 0 || len(p) <= tw.config.ChunkSize {
		return tw.writeWithTimeout(p)
	}

	total := 0
	for len(p) > 0 {
		n := min(tw.config.ChunkSize, len(p))
		written, err := tw.writeWithTimeout(p[:n])
		total += written
		if err != nil {
			return total, err
		}
		p = p[n:]
		if tw.flusher != nil {
			tw.flusher.Flush()
		}
	}
	return total, nil
}

func (tw *Writer) writeWithTimeout(p []byte) (int, error) {
	select {
	case <-tw.ctx.Done():
		return 0, tw.contextError()
	default:
	}

	type writeResult struct {
		n   int
		err error
	}
	resultCh := make(chan writeResult, 1)
	go func() {
		n, err := tw.ResponseWriter.Write(p)
		resultCh <- writeResult{n, err}
	}()

	timer := time.NewTimer(tw.config.WriteTimeout)
	defer timer.Stop()

	select {
	case res := <-resultCh:
		if res.err == nil {
			tw.mu.Lock()
			tw.lastWrite = time.Now()
			tw.bytesWritten += int64(res.n)
			tw.mu.Unlock()
		}
		return res.n, res.err
	case <-timer.C:
		tw.cancel()
		return 0, ErrWriteTimeout
	case <-tw.ctx.Done():
		return 0, tw.contextError()
	}
}

// Flush implements http.Flusher.
func (tw *Writer) Flush() {
	if tw.flusher != nil {
		tw.flusher.Flush()
	}
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (tw *Writer) Unwrap() http.ResponseWriter {
	return tw.ResponseWriter
}

func (tw *Writer) idleChecker() {
	if tw.config.IdleTimeout <= 0 {
		return
	}

	ticker := time.NewTicker(tw.config.IdleTimeout / 4)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			tw.mu.Lock()
			idle := time.Since(tw.lastWrite)
			closed := tw.closed
			tw.mu.Unlock()

			if closed {
				return
			}
			if idle > tw.config.IdleTimeout {
				logging.Warn("Stream idle timeout exceeded: %v", idle)
				tw.cancel()
				return
			}
		case <-tw.ctx.Done():
			return
		}
	}
}

func (tw *Writer) contextError() error {
	tw.mu.Lock()
	closed := tw.closed
	tw.mu.Unlock()
	if !closed && errors.Is(tw.ctx.Err(), context.Canceled) {
		return ErrClientGone
	}
	return ErrStreamCanceled
}

// Close stops the stream. It is safe to call more than once.
func (tw *Writer) Close() error {
	tw.mu.Lock()
	defer tw.mu.Unlock()
	if !tw.closed {
		tw.closed = true
		tw.cancel()
	}
	return nil
}

// Stats returns the bytes written and the time since the writer was created.
func (tw *Writer) Stats() (bytesWritten int64, duration time.Duration) {
	tw.mu.Lock()
	defer tw.mu.Unlock()
	return tw.bytesWritten, time.Since(tw.startTime)
}

// ServeContent serves content through a Writer, honouring Range and
// conditional requests via http.ServeContent.
func ServeContent(w http.ResponseWriter, r *http.Request, name string, modTime time.Time, content io.ReadSeeker, config Config) {
	tw := NewWriter(r.Context(), w, config)
	defer func() {
		if err := tw.Close(); err != nil {
			logging.Warn("Failed to close stream writer: %v", err)
		}
	}()

	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("Accept-Ranges", "bytes")
	http.ServeContent(tw, r, name, modTime, content)

	bytesWritten, duration := tw.Stats()
	logging.Debug("Served %s: %d bytes in %v", name, bytesWritten, duration)
}
