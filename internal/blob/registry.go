// Package blob keeps the set of transient object references handed out for
// local files. A reference stays resolvable until it is revoked, mirroring
// the create/revoke lifecycle of browser object URLs.
package blob

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"vidshelf/internal/mediatypes"
	"vidshelf/internal/metrics"

	"github.com/google/uuid"
	"github.com/spf13/afero"
)

// Scheme prefixes every reference produced by a Registry.
const Scheme = "blob:"

// ErrNotFound is returned for references that were never created or have
// already been revoked.
var ErrNotFound = errors.New("blob reference not found")

// Entry describes the file behind a reference.
type Entry struct {
	Path     string
	MimeType string
}

// Registry maps references to local files. It is safe for concurrent use.
type Registry struct {
	fs      afero.Fs
	mu      sync.Mutex
	entries map[string]Entry
}

// NewRegistry creates a Registry that opens files through fs.
func NewRegistry(fs afero.Fs) *Registry {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &Registry{
		fs:      fs,
		entries: make(map[string]Entry),
	}
}

// Create registers path and returns a new reference for it.
func (r *Registry) Create(path string) string {
	ref := Scheme + uuid.NewString()
	entry := Entry{
		Path:     path,
		MimeType: mediatypes.GetMimeType(mediatypes.ExtensionOf(path)),
	}

	r.mu.Lock()
	r.entries[ref] = entry
	n := len(r.entries)
	r.mu.Unlock()

	metrics.BlobReferencesActive.Set(float64(n))
	metrics.BlobReferencesCreated.Inc()
	return ref
}

// Resolve returns the entry for ref.
func (r *Registry) Resolve(ref string) (Entry, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.entries[ref]
	return entry, ok
}

// Revoke releases ref. It reports whether ref was live.
func (r *Registry) Revoke(ref string) bool {
	r.mu.Lock()
	_, ok := r.entries[ref]
	delete(r.entries, ref)
	n := len(r.entries)
	r.mu.Unlock()

	if ok {
		metrics.BlobReferencesActive.Set(float64(n))
	}
	return ok
}

// Len returns the number of live references.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Open opens the file behind ref for reading.
func (r *Registry) Open(ref string) (afero.File, Entry, error) {
	entry, ok := r.Resolve(ref)
	if !ok {
		return nil, Entry{}, ErrNotFound
	}

	f, err := r.fs.Open(entry.Path)
	if err != nil {
		return nil, Entry{}, fmt.Errorf("open %s: %w", entry.Path, err)
	}
	return f, entry, nil
}

// Token strips the scheme from ref, producing the identifier used in URLs.
func Token(ref string) string {
	return strings.TrimPrefix(ref, Scheme)
}

// FromToken rebuilds a reference from a URL token.
func FromToken(token string) string {
	return Scheme + token
}
