package store

import (
	"errors"
	"sort"
	"strings"
	"sync"

	"vidshelf/internal/media"
	"vidshelf/internal/mediatypes"
	"vidshelf/internal/metrics"

	"github.com/samber/lo"
)

// MaxRecentlyPlayed caps the recently played list.
const MaxRecentlyPlayed = 10

// ErrIndexOutOfRange is returned for playlist positions that do not exist.
var ErrIndexOutOfRange = errors.New("playlist index out of range")

// DefaultFilter shows every video sorted by name.
var DefaultFilter = media.FilterOptions{
	SortBy: mediatypes.SortByName,
	Format: media.AllFormats,
}

// Store holds the open library and the user's lists. It is safe for concurrent use.
type Store struct {
	mu       sync.RWMutex
	videos   []media.VideoMetadata
	byID     map[string]int
	filter   media.FilterOptions
	playlist []media.VideoMetadata
	recent   []media.VideoMetadata
}

// New creates an empty Store.
func New() *Store {
	return &Store{
		byID:   make(map[string]int),
		filter: DefaultFilter,
	}
}

// SetVideos replaces the library contents.
func (s *Store) SetVideos(videos []media.VideoMetadata) {
	byID := make(map[string]int, len(videos))
	for i, v := range videos {
		byID[v.ID] = i
	}

	s.mu.Lock()
	s.videos = append([]media.VideoMetadata(nil), videos...)
	s.byID = byID
	s.mu.Unlock()
}

// Videos returns the library in scan order.
func (s *Store) Videos() []media.VideoMetadata {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]media.VideoMetadata{}, s.videos...)
}

// Get returns the video with the given ID.
func (s *Store) Get(id string) (media.VideoMetadata, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.byID[id]
	if !ok {
		return media.VideoMetadata{}, false
	}
	return s.videos[i], true
}

// Filter returns the current filter.
func (s *Store) Filter() media.FilterOptions {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filter
}

// SetFilter replaces the current filter.
func (s *Store) SetFilter(f media.FilterOptions) {
	s.mu.Lock()
	s.filter = normalizeFilter(f)
	s.mu.Unlock()
}

// Filtered returns the library narrowed and ordered by the current filter.
func (s *Store) Filtered() []media.VideoMetadata {
	s.mu.RLock()
	videos, f := s.videos, s.filter
	s.mu.RUnlock()
	return Apply(videos, f)
}

// Apply filters videos by name substring and extension, then sorts them.
// The input slice is not modified.
func Apply(videos []media.VideoMetadata, f media.FilterOptions) []media.VideoMetadata {
	f = normalizeFilter(f)
	search := strings.ToLower(f.Search)

	out := lo.Filter(videos, func(v media.VideoMetadata, _ int) bool {
		name := strings.ToLower(v.File.Name)
		if !strings.Contains(name, search) {
			return false
		}
		return f.Format == media.AllFormats || strings.HasSuffix(name, "."+f.Format)
	})

	Sort(out, f.SortBy)
	return out
}

// Sort orders videos in place: name ascending, everything else descending.
func Sort(videos []media.VideoMetadata, by mediatypes.SortField) {
	var less func(a, b media.VideoMetadata) bool
	switch by {
	case mediatypes.SortByDate:
		less = func(a, b media.VideoMetadata) bool { return a.Meta.Created > b.Meta.Created }
	case mediatypes.SortBySize:
		less = func(a, b media.VideoMetadata) bool { return a.Meta.Size > b.Meta.Size }
	case mediatypes.SortByDuration:
		less = func(a, b media.VideoMetadata) bool { return a.Meta.Duration > b.Meta.Duration }
	default:
		less = func(a, b media.VideoMetadata) bool {
			return strings.ToLower(a.File.Name) < strings.ToLower(b.File.Name)
		}
	}
	sort.SliceStable(videos, func(i, j int) bool { return less(videos[i], videos[j]) })
}

func normalizeFilter(f media.FilterOptions) media.FilterOptions {
	f.Search = strings.TrimSpace(f.Search)
	f.SortBy = mediatypes.ParseSortField(string(f.SortBy))
	f.Format = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(f.Format), "."))
	if f.Format == "" {
		f.Format = media.AllFormats
	}
	return f
}

// Playlist returns the playlist in play order.
func (s *Store) Playlist() []media.VideoMetadata {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]media.VideoMetadata{}, s.playlist...)
}

// AddToPlaylist appends v unless a video with the same file name is
// already queued. It reports whether v was added.
func (s *Store) AddToPlaylist(v media.VideoMetadata) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if lo.ContainsBy(s.playlist, func(p media.VideoMetadata) bool { return p.File.Name == v.File.Name }) {
		return false
	}
	s.playlist = append(s.playlist, v)
	metrics.PlaylistLength.Set(float64(len(s.playlist)))
	return true
}

// RemoveFromPlaylist removes the entry at index.
func (s *Store) RemoveFromPlaylist(index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 0 || index >= len(s.playlist) {
		return ErrIndexOutOfRange
	}
	s.playlist = append(s.playlist[:index:index], s.playlist[index+1:]...)
	metrics.PlaylistLength.Set(float64(len(s.playlist)))
	return nil
}

// ClearPlaylist empties the playlist.
func (s *Store) ClearPlaylist() {
	s.mu.Lock()
	s.playlist = nil
	s.mu.Unlock()
	metrics.PlaylistLength.Set(0)
}

// RecentlyPlayed returns the most recently played videos, newest first.
func (s *Store) RecentlyPlayed() []media.VideoMetadata {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]media.VideoMetadata{}, s.recent...)
}

// AddToRecentlyPlayed moves v to the front of the list, dropping any older
// entry with the same file name and keeping at most MaxRecentlyPlayed.
func (s *Store) AddToRecentlyPlayed(v media.VideoMetadata) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rest := lo.Reject(s.recent, func(r media.VideoMetadata, _ int) bool { return r.File.Name == v.File.Name })
	recent := append([]media.VideoMetadata{v}, rest...)
	if len(recent) > MaxRecentlyPlayed {
		recent = recent[:MaxRecentlyPlayed]
	}
	s.recent = recent
	metrics.RecentlyPlayedLength.Set(float64(len(s.recent)))
}

// Stats implements metrics.StatsProvider.
func (s *Store) Stats() metrics.Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return metrics.Stats{
		Videos:         len(s.videos),
		Placeholders:   lo.CountBy(s.videos, media.VideoMetadata.IsPlaceholder),
		Playlist:       len(s.playlist),
		RecentlyPlayed: len(s.recent),
	}
}
