package library

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"vidshelf/internal/logging"
	"vidshelf/internal/media"
	"vidshelf/internal/metrics"
	"vidshelf/internal/store"
)

// Status is the outcome of opening a folder.
type Status string

const (
	// StatusLoaded means videos were found and extracted.
	StatusLoaded Status = "loaded"
	// StatusEmpty means the folder held no playable files.
	StatusEmpty Status = "empty"
	// StatusCancelled means the user dismissed the picker.
	StatusCancelled Status = "cancelled"
)

// EmptyMessage is reported for folders without playable files.
const EmptyMessage = "No video files found in the selected folder"

var (
	// ErrScanInProgress is returned when a scan is requested while another runs.
	ErrScanInProgress = errors.New("a scan is already in progress")
	// ErrNoLibrary is returned by Rescan before any folder was opened.
	ErrNoLibrary = errors.New("no folder has been opened")
)

// Result describes an Open or Rescan.
type Result struct {
	Status  Status                `json:"status"`
	Message string                `json:"message,omitempty"`
	Dir     string                `json:"dir,omitempty"`
	Videos  []media.VideoMetadata `json:"videos,omitempty"`
}

// Extractor turns scanned files into library records.
type Extractor interface {
	ProcessAll(ctx context.Context, files []media.MediaFile, q media.Quality) []media.VideoMetadata
}

// Config wires a Service.
type Config struct {
	Scanner   *Scanner
	Extractor Extractor
	Store     *store.Store
	// Quality returns the thumbnail tier for the next scan.
	Quality func() media.Quality
	// Watch re-scans the open folder when its video files change.
	Watch         bool
	WatchDebounce time.Duration
}

// Service opens folders and keeps the store in sync with them.
type Service struct {
	scanner   *Scanner
	extractor Extractor
	store     *store.Store
	quality   func() media.Quality
	watch     bool
	debounce  time.Duration

	scanning atomic.Bool

	// ctx ends when the service is closed and bounds every scan.
	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	dir     string
	watcher *Watcher
	closed  bool
}

// NewService creates a Service.
func NewService(cfg Config) *Service {
	s := &Service{
		scanner:   cfg.Scanner,
		extractor: cfg.Extractor,
		store:     cfg.Store,
		quality:   cfg.Quality,
		watch:     cfg.Watch,
		debounce:  cfg.WatchDebounce,
	}
	s.ctx, s.cancel = context.WithCancel(context.Background())
	if s.scanner == nil {
		s.scanner = NewScanner(nil)
	}
	if s.quality == nil {
		s.quality = func() media.Quality { return media.QualityMedium }
	}
	if s.debounce <= 0 {
		s.debounce = 2 * time.Second
	}
	return s
}

// Dir returns the currently open folder, or "".
func (s *Service) Dir() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dir
}

// Scanning reports whether a scan is running.
func (s *Service) Scanning() bool {
	return s.scanning.Load()
}

// Open asks picker for a folder, scans it and loads the results into the
// store. A dismissed picker yields StatusCancelled and a nil error.
func (s *Service) Open(ctx context.Context, picker FolderPicker) (Result, error) {
	if !s.scanning.CompareAndSwap(false, true) {
		return Result{}, ErrScanInProgress
	}
	defer s.scanning.Store(false)

	dir, err := picker.PickFolder(ctx)
	if err != nil {
		if errors.Is(err, ErrPickerCancelled) || errors.Is(err, context.Canceled) {
			logging.Debug("Folder selection cancelled")
			metrics.ScannerOperationsTotal.WithLabelValues(string(StatusCancelled)).Inc()
			return Result{Status: StatusCancelled}, nil
		}
		metrics.ScannerOperationsTotal.WithLabelValues("error").Inc()
		return Result{}, err
	}

	return s.load(ctx, dir, true)
}

// Rescan reloads the currently open folder.
func (s *Service) Rescan(ctx context.Context) (Result, error) {
	dir := s.Dir()
	if dir == "" {
		return Result{}, ErrNoLibrary
	}
	if !s.scanning.CompareAndSwap(false, true) {
		return Result{}, ErrScanInProgress
	}
	defer s.scanning.Store(false)

	return s.load(ctx, dir, false)
}

// scanContext derives a context from parent that also ends when the
// service is closed.
func (s *Service) scanContext(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	stop := context.AfterFunc(s.ctx, cancel)
	return ctx, func() {
		stop()
		cancel()
	}
}

func (s *Service) load(parent context.Context, dir string, opened bool) (Result, error) {
	start := time.Now()
	ctx, cancel := s.scanContext(parent)
	defer cancel()

	files, err := s.scanner.Scan(ctx, dir)
	if err != nil {
		metrics.ScannerOperationsTotal.WithLabelValues("error").Inc()
		return Result{}, fmt.Errorf("scan %s: %w", dir, err)
	}

	if len(files) == 0 {
		logging.Info("No video files found in %s", dir)
		if !opened {
			s.store.SetVideos(nil)
		}
		metrics.ScannerOperationsTotal.WithLabelValues(string(StatusEmpty)).Inc()
		return Result{Status: StatusEmpty, Message: EmptyMessage, Dir: dir}, nil
	}

	q := s.quality()
	logging.Info("Processing %d videos from %s (quality: %s)", len(files), dir, q)
	videos := s.extractor.ProcessAll(ctx, files, q)
	if err := ctx.Err(); err != nil {
		// Unprocessed files came back as placeholders; keep the current library.
		logging.Info("Scan of %s cancelled, library unchanged", dir)
		metrics.ScannerOperationsTotal.WithLabelValues(string(StatusCancelled)).Inc()
		return Result{}, fmt.Errorf("scan %s: %w", dir, err)
	}
	s.store.SetVideos(videos)

	if opened {
		s.setDir(dir)
	}

	metrics.ScannerOperationsTotal.WithLabelValues(string(StatusLoaded)).Inc()
	logging.Info("Loaded %d videos from %s in %v", len(videos), dir, time.Since(start).Round(time.Millisecond))

	return Result{Status: StatusLoaded, Dir: dir, Videos: videos}, nil
}

func (s *Service) setDir(dir string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.dir = dir
	if !s.watch {
		return
	}

	if s.watcher != nil {
		if err := s.watcher.Close(); err != nil {
			logging.Warn("failed to close watcher for %s: %v", s.watcher.dir, err)
		}
		s.watcher = nil
	}

	w, err := NewWatcher(dir, s.debounce, s.onFolderChange)
	if err != nil {
		logging.Warn("Could not watch %s: %v", dir, err)
		return
	}
	s.watcher = w
}

func (s *Service) onFolderChange() {
	res, err := s.Rescan(s.ctx)
	switch {
	case errors.Is(err, context.Canceled):
		logging.Debug("Re-scan stopped: service closed")
	case errors.Is(err, ErrScanInProgress):
		logging.Debug("Folder changed during a scan, skipping re-scan")
	case err != nil:
		logging.Warn("Re-scan failed: %v", err)
	default:
		logging.Info("Folder changed, re-scanned %s: %s (%d videos)", res.Dir, res.Status, len(res.Videos))
	}
}

// Close cancels running scans and stops watching the open folder. A scan
// that finishes after Close does not start a new watcher.
func (s *Service) Close() error {
	s.cancel()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	if s.watcher == nil {
		return nil
	}
	err := s.watcher.Close()
	s.watcher = nil
	return err
}
