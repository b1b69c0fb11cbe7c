package settings

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"vidshelf/internal/logging"
	"vidshelf/internal/media"
	"vidshelf/internal/metrics"
)

// Keys under which settings are stored.
const (
	KeyTheme            = "theme"
	KeyView             = "view"
	KeyAutoplay         = "autoplay"
	KeyThumbnailQuality = "thumbnailQuality"
)

// ErrInvalidValue is returned when an update carries an unknown value.
var ErrInvalidValue = errors.New("invalid setting value")

// Theme is the UI color scheme.
type Theme string

// Supported themes.
const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// View is the library layout.
type View string

// Supported views.
const (
	ViewGrid View = "grid"
	ViewList View = "list"
)

// Settings are the user preferences.
type Settings struct {
	Theme            Theme         `json:"theme"`
	View             View          `json:"view"`
	Autoplay         bool          `json:"autoplay"`
	ThumbnailQuality media.Quality `json:"thumbnailQuality"`
}

// Defaults returns the settings used before anything is stored.
func Defaults() Settings {
	return Settings{
		Theme:            ThemeLight,
		View:             ViewGrid,
		Autoplay:         true,
		ThumbnailQuality: media.QualityMedium,
	}
}

// FromValues builds Settings from stored strings. Missing or unknown values
// keep their defaults; autoplay is on unless stored as "false".
func FromValues(values map[string]string) Settings {
	s := Defaults()
	if t, err := parseTheme(values[KeyTheme]); err == nil {
		s.Theme = t
	}
	if v, err := parseView(values[KeyView]); err == nil {
		s.View = v
	}
	s.Autoplay = values[KeyAutoplay] != "false"
	if q, ok := media.ParseQuality(values[KeyThumbnailQuality]); ok {
		s.ThumbnailQuality = q
	}
	return s
}

// Values returns the stored representation of s.
func (s Settings) Values() map[string]string {
	return map[string]string{
		KeyTheme:            string(s.Theme),
		KeyView:             string(s.View),
		KeyAutoplay:         strconv.FormatBool(s.Autoplay),
		KeyThumbnailQuality: string(s.ThumbnailQuality),
	}
}

// Update is a partial change; nil fields are left alone.
type Update struct {
	Theme            *string `json:"theme,omitempty"`
	View             *string `json:"view,omitempty"`
	Autoplay         *bool   `json:"autoplay,omitempty"`
	ThumbnailQuality *string `json:"thumbnailQuality,omitempty"`
}

// apply returns s with u applied, or an error naming the first bad field.
func (s Settings) apply(u Update) (Settings, error) {
	if u.Theme != nil {
		t, err := parseTheme(*u.Theme)
		if err != nil {
			return s, err
		}
		s.Theme = t
	}
	if u.View != nil {
		v, err := parseView(*u.View)
		if err != nil {
			return s, err
		}
		s.View = v
	}
	if u.Autoplay != nil {
		s.Autoplay = *u.Autoplay
	}
	if u.ThumbnailQuality != nil {
		q, ok := media.ParseQuality(*u.ThumbnailQuality)
		if !ok {
			return s, fmt.Errorf("%w: %s=%q", ErrInvalidValue, KeyThumbnailQuality, *u.ThumbnailQuality)
		}
		s.ThumbnailQuality = q
	}
	return s, nil
}

func parseTheme(s string) (Theme, error) {
	switch t := Theme(s); t {
	case ThemeLight, ThemeDark:
		return t, nil
	default:
		return "", fmt.Errorf("%w: %s=%q", ErrInvalidValue, KeyTheme, s)
	}
}

func parseView(s string) (View, error) {
	switch v := View(s); v {
	case ViewGrid, ViewList:
		return v, nil
	default:
		return "", fmt.Errorf("%w: %s=%q", ErrInvalidValue, KeyView, s)
	}
}

// KV is the persistent key-value store settings live in.
type KV interface {
	ListMetadata(ctx context.Context) (map[string]string, error)
	SetMetadata(ctx context.Context, key, value string) error
}

// Manager holds the current settings and writes every change through to a KV.
type Manager struct {
	kv      KV
	mu      sync.RWMutex
	current Settings
}

// Load reads the stored settings.
func Load(ctx context.Context, kv KV) (*Manager, error) {
	values, err := kv.ListMetadata(ctx)
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	m := &Manager{kv: kv, current: FromValues(values)}
	logging.Debug("Settings loaded: %+v", m.current)
	return m, nil
}

// Get returns the current settings.
func (m *Manager) Get() Settings {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// Apply validates u, stores every key whose value changed and returns the
// resulting settings. Nothing is stored when validation fails.
func (m *Manager) Apply(ctx context.Context, u Update) (Settings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	next, err := m.current.apply(u)
	if err != nil {
		return m.current, err
	}

	before := m.current.Values()
	for key, value := range next.Values() {
		if before[key] == value {
			continue
		}
		if err := m.kv.SetMetadata(ctx, key, value); err != nil {
			return m.current, fmt.Errorf("save %s: %w", key, err)
		}
		metrics.SettingsWritesTotal.WithLabelValues(key).Inc()
		logging.Debug("Setting %s changed to %q", key, value)
	}

	m.current = next
	return next, nil
}

// ToggleTheme switches between light and dark.
func (m *Manager) ToggleTheme(ctx context.Context) (Settings, error) {
	next := string(ThemeDark)
	if m.Get().Theme == ThemeDark {
		next = string(ThemeLight)
	}
	return m.Apply(ctx, Update{Theme: &next})
}

// ToggleView switches between grid and list.
func (m *Manager) ToggleView(ctx context.Context) (Settings, error) {
	next := string(ViewList)
	if m.Get().View == ViewList {
		next = string(ViewGrid)
	}
	return m.Apply(ctx, Update{View: &next})
}
