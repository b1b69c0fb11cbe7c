package metrics

import (
	"sync"
	"time"

	"vidshelf/internal/logging"
)

// StatsProvider interface for collecting stats
type StatsProvider interface {
	Stats() Stats
}

// Stats holds a snapshot of library state
type Stats struct {
	Videos         int
	Placeholders   int
	Playlist       int
	RecentlyPlayed int
}

// Collector periodically collects and updates metrics
type Collector struct {
	statsProvider StatsProvider
	interval      time.Duration
	stopChan      chan struct{}
	stopOnce      sync.Once
}

// NewCollector creates a new metrics collector
func NewCollector(provider StatsProvider, interval time.Duration) *Collector {
	return &Collector{
		statsProvider: provider,
		interval:      interval,
		stopChan:      make(chan struct{}),
	}
}

// Start begins the metrics collection loop
func (c *Collector) Start() {
	go c.collectLoop()
}

// Stop stops the metrics collection. It is safe to call more than once.
func (c *Collector) Stop() {
	c.stopOnce.Do(func() { close(c.stopChan) })
}

func (c *Collector) collectLoop() {
	c.collect()

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.collect()
		case <-c.stopChan:
			return
		}
	}
}

func (c *Collector) collect() {
	if c.statsProvider == nil {
		return
	}

	stats := c.statsProvider.Stats()

	LibraryVideos.Set(float64(stats.Videos))
	LibraryPlaceholders.Set(float64(stats.Placeholders))
	PlaylistLength.Set(float64(stats.Playlist))
	RecentlyPlayedLength.Set(float64(stats.RecentlyPlayed))

	logging.Debug("Metrics collected: videos=%d, placeholders=%d, playlist=%d, recent=%d",
		stats.Videos, stats.Placeholders, stats.Playlist, stats.RecentlyPlayed)
}
