package filesystem

import (
	"errors"
	"os"
	"syscall"
	"testing"
	"time"

	"github.com/spf13/afero"
)

// flakyFs fails Stat and Open with a fixed error a set number of times.
type flakyFs struct {
	afero.Fs
	failures int
	err      error
	calls    int
}

func (f *flakyFs) fail() error {
	f.calls++
	if f.calls <= f.failures {
		return f.err
	}
	return nil
}

func (f *flakyFs) Stat(name string) (os.FileInfo, error) {
	if err := f.fail(); err != nil {
		return nil, &os.PathError{Op: "stat", Path: name, Err: err}
	}
	return f.Fs.Stat(name)
}

func (f *flakyFs) Open(name string) (afero.File, error) {
	if err := f.fail(); err != nil {
		return nil, &os.PathError{Op: "open", Path: name, Err: err}
	}
	return f.Fs.Open(name)
}

func newFlaky(t *testing.T, failures int, err error) *flakyFs {
	t.Helper()
	mem := afero.NewMemMapFs()
	if err := afero.WriteFile(mem, "/videos/a.mp4", []byte("video"), 0o644); err != nil {
		t.Fatal(err)
	}
	return &flakyFs{Fs: mem, failures: failures, err: err}
}

func newTestRetryFs(base afero.Fs) (*RetryFs, *[]time.Duration) {
	var slept []time.Duration
	fs := NewRetryFs(base, DefaultRetryConfig())
	fs.sleep = func(d time.Duration) { slept = append(slept, d) }
	return fs, &slept
}

func TestDefaultRetryConfig(t *testing.T) {
	config := DefaultRetryConfig()

	if config.MaxRetries != 3 {
		t.Errorf("MaxRetries = %d, want 3", config.MaxRetries)
	}
	if config.InitialBackoff != 50*time.Millisecond {
		t.Errorf("InitialBackoff = %v, want 50ms", config.InitialBackoff)
	}
	if config.MaxBackoff != 500*time.Millisecond {
		t.Errorf("MaxBackoff = %v, want 500ms", config.MaxBackoff)
	}
}

func TestIsNFSStaleError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil error", err: nil, want: false},
		{name: "ESTALE error", err: syscall.ESTALE, want: true},
		{name: "wrapped ESTALE", err: &os.PathError{Op: "stat", Path: "/x", Err: syscall.ESTALE}, want: true},
		{name: "ENOENT error", err: syscall.ENOENT, want: false},
		{name: "generic error", err: os.ErrNotExist, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isNFSStaleError(tt.err); got != tt.want {
				t.Errorf("isNFSStaleError() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestStatRetriesStaleHandle(t *testing.T) {
	base := newFlaky(t, 2, syscall.ESTALE)
	fs, slept := newTestRetryFs(base)

	info, err := fs.Stat("/videos/a.mp4")
	if err != nil {
		t.Fatalf("Stat() error = %v", err)
	}
	if info.Size() != 5 {
		t.Errorf("Size() = %d, want 5", info.Size())
	}
	if base.calls != 3 {
		t.Errorf("underlying Stat called %d times, want 3", base.calls)
	}
	want := []time.Duration{50 * time.Millisecond, 100 * time.Millisecond}
	if len(*slept) != len(want) || (*slept)[0] != want[0] || (*slept)[1] != want[1] {
		t.Errorf("backoff = %v, want %v", *slept, want)
	}
}

func TestOpenGivesUpAfterMaxRetries(t *testing.T) {
	base := newFlaky(t, 10, syscall.ESTALE)
	fs, slept := newTestRetryFs(base)

	_, err := fs.Open("/videos/a.mp4")
	if !errors.Is(err, syscall.ESTALE) {
		t.Fatalf("Open() error = %v, want ESTALE", err)
	}
	if base.calls != 4 {
		t.Errorf("underlying Open called %d times, want 4", base.calls)
	}
	want := []time.Duration{50 * time.Millisecond, 100 * time.Millisecond, 200 * time.Millisecond}
	for i, d := range want {
		if i >= len(*slept) || (*slept)[i] != d {
			t.Fatalf("backoff = %v, want %v", *slept, want)
		}
	}
}

func TestBackoffIsCapped(t *testing.T) {
	base := newFlaky(t, 10, syscall.ESTALE)
	var slept []time.Duration
	fs := NewRetryFs(base, RetryConfig{MaxRetries: 5, InitialBackoff: 200 * time.Millisecond, MaxBackoff: 500 * time.Millisecond})
	fs.sleep = func(d time.Duration) { slept = append(slept, d) }

	_, _ = fs.Stat("/videos/a.mp4")
	for _, d := range slept {
		if d > 500*time.Millisecond {
			t.Errorf("slept %v, above MaxBackoff", d)
		}
	}
}

func TestOtherErrorsAreNotRetried(t *testing.T) {
	base := newFlaky(t, 1, syscall.EACCES)
	fs, slept := newTestRetryFs(base)

	if _, err := fs.Stat("/videos/a.mp4"); !errors.Is(err, syscall.EACCES) {
		t.Errorf("Stat() error = %v, want EACCES", err)
	}
	if base.calls != 1 || len(*slept) != 0 {
		t.Errorf("calls = %d, sleeps = %d, want a single attempt", base.calls, len(*slept))
	}
}

func TestRetryFsPassesThrough(t *testing.T) {
	fs := NewRetryFs(afero.NewMemMapFs(), DefaultRetryConfig())

	if err := afero.WriteFile(fs, "/v/b.webm", []byte("x"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	entries, err := afero.ReadDir(fs, "/v")
	if err != nil || len(entries) != 1 {
		t.Errorf("ReadDir() = %v, %v", entries, err)
	}
	if fs.Name() != "RetryFs(MemMapFS)" {
		t.Errorf("Name() = %q", fs.Name())
	}
}
