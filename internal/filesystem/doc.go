/*
Package filesystem provides an afero filesystem that retries NFS stale file
handle errors.

# Purpose

Video folders are often network mounts. When the server side changes, a Stat
or Open can fail with ESTALE (stale file handle) even though a second attempt
would succeed. RetryFs wraps any afero.Fs and retries those two calls with
exponential backoff. The library scanner and the blob registry both read
through it.

# Usage

	fs := filesystem.NewRetryFs(afero.NewOsFs(), filesystem.DefaultRetryConfig())
	scanner := library.NewScanner(fs)
	blobs := blob.NewRegistry(fs)

# Retry Behavior

Defaults:
  - MaxRetries: 3 attempts
  - InitialBackoff: 50ms
  - MaxBackoff: 500ms

Only ESTALE triggers retries. All other errors are returned immediately.
Retries and stale errors are counted in vidshelf_filesystem_* metrics.
*/
package filesystem
