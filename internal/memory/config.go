package memory

import (
	"math"
	"os"
	"runtime/debug"
	"strconv"
	"strings"

	"vidshelf/internal/format"
	"vidshelf/internal/logging"
	"vidshelf/internal/metrics"

	"github.com/spf13/afero"
)

const (
	// DefaultMemoryRatio is the share of the container limit given to the Go heap.
	// The remainder is left for ffmpeg children and libvips.
	DefaultMemoryRatio = 0.85

	// CgroupMemoryMax is the cgroup v2 memory limit file.
	CgroupMemoryMax = "/sys/fs/cgroup/memory.max"
)

// Limit sources reported in ConfigResult.Source.
const (
	SourceGoMemLimit  = "GOMEMLIMIT"
	SourceMemoryLimit = "MEMORY_LIMIT"
	SourceCgroup      = "cgroup"
	SourceNone        = "none"
)

// ConfigResult holds the result of memory configuration
type ConfigResult struct {
	// Configured indicates whether GOMEMLIMIT was set
	Configured bool

	// Source is one of the Source* constants
	Source string

	// ContainerLimit is the container memory limit in bytes (0 if not set)
	ContainerLimit int64

	// GoMemLimit is the configured GOMEMLIMIT in bytes (0 if not set)
	GoMemLimit int64

	// Ratio is the memory ratio used (0 if not applicable)
	Ratio float64
}

// ConfigureFromEnv sets the Go soft memory limit from the environment or,
// failing that, from the cgroup v2 limit. Call it before significant allocations.
//
// Environment variables:
//   - GOMEMLIMIT: if set, it is left alone and reported
//   - MEMORY_LIMIT: container memory limit in bytes (Kubernetes Downward API)
//   - MEMORY_RATIO: share of the limit for the Go heap (default: 0.85)
func ConfigureFromEnv() ConfigResult {
	return configure(os.Getenv, afero.NewOsFs())
}

func configure(getenv func(string) string, fs afero.Fs) ConfigResult {
	result := ConfigResult{Source: SourceNone}

	if goMemLimitEnv := getenv("GOMEMLIMIT"); goMemLimitEnv != "" {
		if limit := debug.SetMemoryLimit(-1); limit > 0 && limit < math.MaxInt64 {
			result.Configured = true
			result.Source = SourceGoMemLimit
			result.GoMemLimit = limit
			metrics.GoMemLimitBytes.Set(float64(limit))
		}
		logging.Info("GOMEMLIMIT set via environment: %s", goMemLimitEnv)
		return result
	}

	var memLimit int64
	if memLimitStr := getenv("MEMORY_LIMIT"); memLimitStr != "" {
		parsed, err := strconv.ParseInt(memLimitStr, 10, 64)
		if err != nil || parsed <= 0 {
			logging.Warn("Failed to parse MEMORY_LIMIT %q, ignoring it", memLimitStr)
		} else {
			memLimit = parsed
			result.Source = SourceMemoryLimit
		}
	}
	if memLimit == 0 {
		if limit, ok := cgroupLimit(fs); ok {
			memLimit = limit
			result.Source = SourceCgroup
		}
	}
	if memLimit == 0 {
		logging.Debug("No container memory limit found, GOMEMLIMIT will not be configured automatically")
		return result
	}

	result.ContainerLimit = memLimit
	result.Ratio = parseRatio(getenv("MEMORY_RATIO"))
	result.GoMemLimit = int64(float64(memLimit) * result.Ratio)
	result.Configured = true

	debug.SetMemoryLimit(result.GoMemLimit)
	metrics.GoMemLimitBytes.Set(float64(result.GoMemLimit))

	logging.Info("Configured GOMEMLIMIT: %s (%.1f%% of %s limit from %s)",
		format.FileSize(result.GoMemLimit),
		result.Ratio*100,
		format.FileSize(memLimit),
		result.Source,
	)
	return result
}

func parseRatio(s string) float64 {
	if s == "" {
		return DefaultMemoryRatio
	}
	ratio, err := strconv.ParseFloat(s, 64)
	if err != nil {
		logging.Warn("Failed to parse MEMORY_RATIO %q: %v, using default %.2f", s, err, DefaultMemoryRatio)
		return DefaultMemoryRatio
	}
	if ratio <= 0 || ratio > 1.0 {
		logging.Warn("MEMORY_RATIO %q out of range (0.0-1.0), using default %.2f", s, DefaultMemoryRatio)
		return DefaultMemoryRatio
	}
	return ratio
}

// cgroupLimit reads memory.max. "max" or a missing file means no limit.
func cgroupLimit(fs afero.Fs) (int64, bool) {
	data, err := afero.ReadFile(fs, CgroupMemoryMax)
	if err != nil {
		return 0, false
	}
	value := strings.TrimSpace(string(data))
	if value == "" || value == "max" {
		return 0, false
	}
	limit, err := strconv.ParseInt(value, 10, 64)
	if err != nil || limit <= 0 {
		return 0, false
	}
	return limit, true
}
