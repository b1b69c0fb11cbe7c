package library

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"vidshelf/internal/logging"
	"vidshelf/internal/media"
	"vidshelf/internal/mediatypes"
	"vidshelf/internal/metrics"

	"github.com/spf13/afero"
)

// ErrNotDirectory is returned when the selected path is not a folder.
var ErrNotDirectory = errors.New("not a directory")

// Scanner lists the playable files of a single folder.
type Scanner struct {
	fs     afero.Fs
	titles TitleReader
}

// NewScanner creates a Scanner reading from fs. A nil fs uses the OS filesystem.
func NewScanner(fs afero.Fs) *Scanner {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &Scanner{
		fs:     fs,
		titles: NewTagTitleReader(fs),
	}
}

// Fs returns the filesystem the scanner reads from.
func (s *Scanner) Fs() afero.Fs {
	return s.fs
}

// Scan returns every allow-listed file directly inside dir, sorted by name.
// Sub-directories are not descended into.
// A folder without playable files yields an empty slice and a nil error.
func (s *Scanner) Scan(ctx context.Context, dir string) ([]media.MediaFile, error) {
	start := time.Now()
	defer func() {
		metrics.ScannerOperationDuration.Observe(time.Since(start).Seconds())
	}()

	info, err := s.fs.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s: %w", dir, ErrNotDirectory)
	}

	entries, err := afero.ReadDir(s.fs, dir)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", dir, err)
	}

	files := make([]media.MediaFile, 0, len(entries))
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		name := entry.Name()
		if entry.IsDir() || !mediatypes.IsVideoFile(name) {
			metrics.ScannerFilesScanned.WithLabelValues("skipped").Inc()
			continue
		}
		metrics.ScannerFilesScanned.WithLabelValues("accepted").Inc()

		path := filepath.Join(dir, name)
		ext := mediatypes.ExtensionOf(name)
		files = append(files, media.MediaFile{
			Name:    name,
			Path:    path,
			Size:    entry.Size(),
			ModTime: entry.ModTime(),
			Ext:     ext,
			Title:   s.titles.Title(path, ext),
		})
	}

	sort.SliceStable(files, func(i, j int) bool {
		return strings.ToLower(files[i].Name) < strings.ToLower(files[j].Name)
	})

	logging.Debug("Scanned %s: %d of %d entries are videos", dir, len(files), len(entries))
	return files, nil
}
