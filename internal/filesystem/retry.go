// Package filesystem wraps afero filesystems with retry logic for NFS
// stale file handle errors.
package filesystem

import (
	"errors"
	"os"
	"syscall"
	"time"

	"vidshelf/internal/logging"
	"vidshelf/internal/metrics"

	"github.com/spf13/afero"
)

// RetryConfig configures retry behavior for filesystem operations
type RetryConfig struct {
	MaxRetries     int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
}

// DefaultRetryConfig returns sensible defaults for NFS retry behavior
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:     3,
		InitialBackoff: 50 * time.Millisecond,
		MaxBackoff:     500 * time.Millisecond,
	}
}

// isNFSStaleError checks if an error is an NFS stale file handle error
func isNFSStaleError(err error) bool {
	if err == nil {
		return false
	}

	// ESTALE is errno 116 on Linux
	var errno syscall.Errno
	if errors.As(err, &errno) {
		return errno == syscall.ESTALE
	}

	return false
}

// RetryFs retries Stat and Open on the wrapped filesystem when they fail
// with a stale file handle. Every other call passes straight through.
type RetryFs struct {
	afero.Fs
	config RetryConfig
	sleep  func(time.Duration)
}

// NewRetryFs wraps base. A nil base uses the OS filesystem.
func NewRetryFs(base afero.Fs, config RetryConfig) *RetryFs {
	if base == nil {
		base = afero.NewOsFs()
	}
	return &RetryFs{Fs: base, config: config, sleep: time.Sleep}
}

// Name implements afero.Fs.
func (r *RetryFs) Name() string {
	return "RetryFs(" + r.Fs.Name() + ")"
}

// Stat implements afero.Fs.
func (r *RetryFs) Stat(name string) (os.FileInfo, error) {
	return withRetry(r, "stat", name, func() (os.FileInfo, error) {
		return r.Fs.Stat(name)
	})
}

// Open implements afero.Fs.
func (r *RetryFs) Open(name string) (afero.File, error) {
	return withRetry(r, "open", name, func() (afero.File, error) {
		return r.Fs.Open(name)
	})
}

// OpenFile implements afero.Fs.
func (r *RetryFs) OpenFile(name string, flag int, perm os.FileMode) (afero.File, error) {
	return withRetry(r, "open", name, func() (afero.File, error) {
		return r.Fs.OpenFile(name, flag, perm)
	})
}

func withRetry[T any](r *RetryFs, op, path string, fn func() (T, error)) (T, error) {
	var zero T
	var lastErr error
	backoff := r.config.InitialBackoff

	for attempt := 0; attempt <= r.config.MaxRetries; attempt++ {
		v, err := fn()
		if err == nil {
			if attempt > 0 {
				logging.Info("NFS %s succeeded on retry %d for %s", op, attempt, path)
				metrics.FilesystemRetries.WithLabelValues(op, "success").Inc()
			}
			return v, nil
		}

		lastErr = err

		// Only retry on NFS stale file handle errors
		if !isNFSStaleError(err) {
			return zero, err
		}
		metrics.FilesystemStaleErrors.WithLabelValues(op).Inc()

		// Don't sleep after the last attempt
		if attempt < r.config.MaxRetries {
			logging.Debug("NFS %s stale file handle for %s, retrying in %v (attempt %d/%d)",
				op, path, backoff, attempt+1, r.config.MaxRetries)
			r.sleep(backoff)

			backoff *= 2
			if backoff > r.config.MaxBackoff {
				backoff = r.config.MaxBackoff
			}
		}
	}

	logging.Warn("NFS %s failed after %d retries for %s: %v", op, r.config.MaxRetries, path, lastErr)
	metrics.FilesystemRetries.WithLabelValues(op, "failure").Inc()
	return zero, lastErr
}
