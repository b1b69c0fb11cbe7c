package startup

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"

	"vidshelf/internal/logging"

	"github.com/gorilla/mux"
	"github.com/spf13/viper"
)

// Build-time variables (injected via -ldflags)
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
	GoVersion = runtime.Version()
)

// EnvPrefix is prepended to every configuration key when read from the environment.
const EnvPrefix = "VIDSHELF"

// Configuration keys. Each is read from VIDSHELF_<KEY>.
const (
	KeyLibraryDir      = "library_dir"
	KeyDatabaseDir     = "database_dir"
	KeyBindAddr        = "bind_addr"
	KeyPort            = "port"
	KeyMetricsPort     = "metrics_port"
	KeyMetricsEnabled  = "metrics_enabled"
	KeyWatch           = "watch"
	KeyWatchDebounce   = "watch_debounce"
	KeyFFmpeg          = "ffmpeg"
	KeyFFprobe         = "ffprobe"
	KeyVips            = "vips"
	KeyLogStaticFiles  = "log_static_files"
	KeyLogHealthChecks = "log_health_checks"
)

// DatabaseFile is the sqlite file name inside the database directory.
const DatabaseFile = "vidshelf.db"

// BuildInfo contains version and build information
type BuildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"buildTime"`
	GoVersion string `json:"goVersion"`
	OS        string `json:"os"`
	Arch      string `json:"arch"`
}

// GetBuildInfo returns the current build information
func GetBuildInfo() BuildInfo {
	return BuildInfo{
		Version:   Version,
		Commit:    Commit,
		BuildTime: BuildTime,
		GoVersion: GoVersion,
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
	}
}

// RouteInfo contains information about a registered route
type RouteInfo struct {
	Method string
	Path   string
	Name   string
}

// Config holds all application configuration
type Config struct {
	LibraryDir      string
	DatabaseDir     string
	BindAddr        string
	Port            string
	MetricsPort     string
	MetricsEnabled  bool
	Watch           bool
	WatchDebounce   time.Duration
	FFmpegPath      string
	FFprobePath     string
	VipsEnabled     bool
	LogStaticFiles  bool
	LogHealthChecks bool

	// Derived paths
	DatabasePath string

	// Feature flags based on tool availability
	FFmpegAvailable bool
}

// Addr returns the application listen address.
func (c *Config) Addr() string {
	return c.BindAddr + ":" + c.Port
}

// MetricsAddr returns the metrics listen address.
func (c *Config) MetricsAddr() string {
	return c.BindAddr + ":" + c.MetricsPort
}

// NewViper returns a viper instance with vidshelf's environment bindings and defaults.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}

	v.SetDefault(KeyLibraryDir, "")
	v.SetDefault(KeyDatabaseDir, filepath.Join(home, ".vidshelf"))
	v.SetDefault(KeyBindAddr, "127.0.0.1")
	v.SetDefault(KeyPort, "8080")
	v.SetDefault(KeyMetricsPort, "9090")
	v.SetDefault(KeyMetricsEnabled, true)
	v.SetDefault(KeyWatch, true)
	v.SetDefault(KeyWatchDebounce, 2*time.Second)
	v.SetDefault(KeyFFmpeg, "ffmpeg")
	v.SetDefault(KeyFFprobe, "ffprobe")
	v.SetDefault(KeyVips, true)
	v.SetDefault(KeyLogStaticFiles, false)
	v.SetDefault(KeyLogHealthChecks, true)
	return v
}

// LoadConfig loads and validates configuration from v. A nil v reads the
// environment with the default bindings.
func LoadConfig(v *viper.Viper) (*Config, error) {
	if v == nil {
		v = NewViper()
	}

	printBanner()
	logSystemInfo()

	logging.Info("------------------------------------------------------------")
	logging.Info("CONFIGURATION")
	logging.Info("------------------------------------------------------------")

	config := &Config{
		LibraryDir:      strings.TrimSpace(v.GetString(KeyLibraryDir)),
		DatabaseDir:     v.GetString(KeyDatabaseDir),
		BindAddr:        v.GetString(KeyBindAddr),
		Port:            v.GetString(KeyPort),
		MetricsPort:     v.GetString(KeyMetricsPort),
		MetricsEnabled:  v.GetBool(KeyMetricsEnabled),
		Watch:           v.GetBool(KeyWatch),
		FFmpegPath:      v.GetString(KeyFFmpeg),
		FFprobePath:     v.GetString(KeyFFprobe),
		VipsEnabled:     v.GetBool(KeyVips),
		LogStaticFiles:  v.GetBool(KeyLogStaticFiles),
		LogHealthChecks: v.GetBool(KeyLogHealthChecks),
	}

	config.WatchDebounce = v.GetDuration(KeyWatchDebounce)
	if config.WatchDebounce <= 0 {
		logging.Warn("  Invalid WATCH_DEBOUNCE %q, using default: 2s", v.GetString(KeyWatchDebounce))
		config.WatchDebounce = 2 * time.Second
	}

	logging.Info("  LIBRARY_DIR:         %s", displayOrNone(config.LibraryDir))
	logging.Info("  DATABASE_DIR:        %s", config.DatabaseDir)
	logging.Info("  BIND_ADDR:           %s", config.BindAddr)
	logging.Info("  PORT:                %s", config.Port)
	logging.Info("  METRICS_PORT:        %s", config.MetricsPort)
	logging.Info("  METRICS_ENABLED:     %v", config.MetricsEnabled)
	logging.Info("  WATCH:               %v", config.Watch)
	logging.Info("  WATCH_DEBOUNCE:      %v", config.WatchDebounce)
	logging.Info("  FFMPEG:              %s", config.FFmpegPath)
	logging.Info("  FFPROBE:             %s", config.FFprobePath)
	logging.Info("  VIPS:                %v", config.VipsEnabled)
	logging.Info("  LOG_STATIC_FILES:    %v", config.LogStaticFiles)
	logging.Info("  LOG_HEALTH_CHECKS:   %v", config.LogHealthChecks)
	logging.Info("  LOG_LEVEL:           %s", logging.GetLevel())

	if config.Port == "" {
		return nil, fmt.Errorf("port must not be empty")
	}
	if config.MetricsEnabled && config.MetricsPort == config.Port {
		return nil, fmt.Errorf("metrics port %s collides with the application port", config.MetricsPort)
	}

	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("DIRECTORY SETUP")
	logging.Info("------------------------------------------------------------")

	var err error
	if config.LibraryDir != "" {
		config.LibraryDir, err = filepath.Abs(config.LibraryDir)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve library directory path: %w", err)
		}
		logging.Info("  Library directory (absolute): %s", config.LibraryDir)
		if err := checkDirectory(config.LibraryDir, "library"); err != nil {
			logging.Warn("  Library directory issue: %v", err)
		}
	}

	config.DatabaseDir, err = filepath.Abs(config.DatabaseDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve database directory path: %w", err)
	}
	logging.Info("  Database directory (absolute): %s", config.DatabaseDir)
	config.DatabasePath = filepath.Join(config.DatabaseDir, DatabaseFile)

	if err := ensureDirectory(config.DatabaseDir, "database"); err != nil {
		return nil, fmt.Errorf("database directory error: %w", err)
	}

	logging.Debug("  Testing database directory write access...")
	if err := testWriteAccess(config.DatabaseDir); err != nil {
		return nil, fmt.Errorf("database directory is not writable (required for settings): %w", err)
	}
	logging.Info("  [OK] Database directory is writable")

	return config, nil
}

func displayOrNone(s string) string {
	if s == "" {
		return "(none, choose a folder at runtime)"
	}
	return s
}

func enabledString(enabled bool) string {
	if enabled {
		return "ENABLED"
	}
	return "DISABLED"
}

// LogDatabaseInit logs database initialization
func LogDatabaseInit(duration time.Duration) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("DATABASE INITIALIZATION")
	logging.Info("------------------------------------------------------------")
	logging.Info("  [OK] Database initialized in %v", duration)
}

// LogExtractorInit checks the ffmpeg tools and logs which canvas backend is
// in use. It records tool availability on config.
func LogExtractorInit(config *Config, vipsActive bool) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("EXTRACTOR INITIALIZATION")
	logging.Info("------------------------------------------------------------")

	config.FFmpegAvailable = true
	for _, tool := range []string{config.FFmpegPath, config.FFprobePath} {
		if err := checkTool(tool); err != nil {
			logging.Warn("  %s check failed: %v", filepath.Base(tool), err)
			config.FFmpegAvailable = false
		} else {
			logging.Info("  [OK] %s is available", filepath.Base(tool))
		}
	}
	if !config.FFmpegAvailable {
		logging.Warn("  Every video will load with placeholder metadata")
	}

	if vipsActive {
		logging.Info("  Thumbnail encoder: libvips")
	} else {
		logging.Info("  Thumbnail encoder: Go image (libvips %s)", enabledString(false))
	}
}

// LogLibraryInit logs the initial library load.
func LogLibraryInit(dir string, videos int, watch bool) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("LIBRARY INITIALIZATION")
	logging.Info("------------------------------------------------------------")
	if dir == "" {
		logging.Info("  No library folder configured, waiting for one to be opened")
		return
	}
	logging.Info("  Folder:   %s", dir)
	logging.Info("  Videos:   %d", videos)
	logging.Info("  Watching: %s", enabledString(watch))
}

// GetRoutes extracts all registered routes from a mux.Router
func GetRoutes(router *mux.Router) ([]RouteInfo, error) {
	var routes []RouteInfo

	err := router.Walk(func(route *mux.Route, _ *mux.Router, _ []*mux.Route) error {
		pathTemplate, err := route.GetPathTemplate()
		if err != nil {
			return err
		}

		methods, err := route.GetMethods()
		if err != nil {
			// Route might not have methods specified (e.g., static file server)
			methods = []string{"*"}
		}

		for _, method := range methods {
			routes = append(routes, RouteInfo{
				Method: method,
				Path:   pathTemplate,
				Name:   route.GetName(),
			})
		}

		return nil
	})

	return routes, err
}

// LogHTTPRoutes logs all registered HTTP routes dynamically
func LogHTTPRoutes(router *mux.Router, logStaticFiles, logHealthChecks bool) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("HTTP SERVER SETUP")
	logging.Info("------------------------------------------------------------")

	if logging.IsDebugEnabled() {
		routes, err := GetRoutes(router)
		if err != nil {
			logging.Warn("error walking routes: %v", err)
		}

		logging.Debug("  Registered routes (%d total):", len(routes))
		logging.Debug("")

		groups := make(map[string][]RouteInfo)
		for _, route := range routes {
			prefix := getRouteGroup(route.Path)
			groups[prefix] = append(groups[prefix], route)
		}

		groupKeys := make([]string, 0, len(groups))
		for k := range groups {
			groupKeys = append(groupKeys, k)
		}
		sort.Strings(groupKeys)

		for _, group := range groupKeys {
			if group != "" {
				logging.Debug("  [%s]", group)
			} else {
				logging.Debug("  [root]")
			}

			for _, route := range groups[group] {
				logging.Debug("    %-6s %s", route.Method, route.Path)
			}
			logging.Debug("")
		}
	}

	logging.Info("  HTTP logging enabled")
	if logStaticFiles {
		logging.Info("    Static file logging: ON")
	} else {
		logging.Info("    Static file logging: OFF (set VIDSHELF_LOG_STATIC_FILES=true to enable)")
	}
	if logHealthChecks {
		logging.Info("    Health check logging: ON")
	} else {
		logging.Info("    Health check logging: OFF (set VIDSHELF_LOG_HEALTH_CHECKS=true to enable)")
	}
}

// getRouteGroup extracts a group name from a route path
func getRouteGroup(path string) string {
	path = strings.TrimPrefix(path, "/")

	parts := strings.SplitN(path, "/", 2)
	first := parts[0]

	// API routes group by their second segment
	if first == "api" && len(parts) > 1 {
		subParts := strings.SplitN(parts[1], "/", 2)
		return "api/" + subParts[0]
	}

	return first
}

// ServerConfig holds configuration for the server startup log
type ServerConfig struct {
	BindAddr        string
	Port            string
	MetricsPort     string
	MetricsEnabled  bool
	StartupDuration time.Duration
}

// LogServerStarted logs successful server start with all endpoint information
func LogServerStarted(config ServerConfig) {
	host := config.BindAddr
	if host == "" || host == "0.0.0.0" {
		host = "localhost"
	}

	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("SERVER STARTED")
	logging.Info("------------------------------------------------------------")
	logging.Info("  Startup time:    %v", config.StartupDuration)
	logging.Info("")
	logging.Info("  Endpoints:")
	logging.Info("    Application:   http://%s:%s", host, config.Port)
	if config.MetricsEnabled {
		logging.Info("    Metrics:       http://%s:%s/metrics", host, config.MetricsPort)
	} else {
		logging.Info("    Metrics:       DISABLED")
	}
	logging.Info("")
	logging.Info("  Press Ctrl+C to stop the server")
	logging.Info("------------------------------------------------------------")
	logging.Info("")
}

// LogShutdownInitiated logs shutdown start
func LogShutdownInitiated(signal string) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("SHUTDOWN INITIATED (received %s)", signal)
	logging.Info("------------------------------------------------------------")
}

// LogShutdownStep logs a shutdown step
func LogShutdownStep(step string) {
	logging.Debug("  %s...", step)
}

// LogShutdownStepComplete logs a completed shutdown step
func LogShutdownStepComplete(step string) {
	logging.Info("  [OK] %s", step)
}

// LogShutdownComplete logs shutdown completion
func LogShutdownComplete() {
	logging.Info("  [OK] Shutdown complete")
}

// LogFatal logs a fatal error and exits
func LogFatal(format string, args ...interface{}) {
	logging.Fatal(format, args...)
}

func printBanner() {
	banner := `
------------------------------------------------------------
        _     __     __         ____
 _   __(_)___/ /____/ /_  ___  / / /
| | / / / __  / ___/ __ \/ _ \/ / /_
| |/ / / /_/ (__  ) / / /  __/ / __/
|___/_/\__,_/____/_/ /_/\___/_/_/

------------------------------------------------------------`
	fmt.Println(banner)
	logging.Info("  Version:    %s", Version)
	logging.Info("  Commit:     %s", Commit)
	logging.Info("  Build Time: %s", BuildTime)
	logging.Info("  Started:    %s", time.Now().Format(time.RFC1123))
	logging.Info("")
}

func logSystemInfo() {
	logging.Info("------------------------------------------------------------")
	logging.Info("SYSTEM INFORMATION")
	logging.Info("------------------------------------------------------------")
	logging.Info("  Go version:      %s", runtime.Version())
	logging.Info("  OS/Arch:         %s/%s", runtime.GOOS, runtime.GOARCH)
	logging.Info("  CPUs available:  %d", runtime.NumCPU())
	logging.Info("  GOMAXPROCS:      %d", runtime.GOMAXPROCS(0))

	if logging.IsDebugEnabled() {
		logging.Debug("  Goroutines:      %d", runtime.NumGoroutine())

		if wd, err := os.Getwd(); err == nil {
			logging.Debug("  Working dir:     %s", wd)
		}

		if hostname, err := os.Hostname(); err == nil {
			logging.Debug("  Hostname:        %s", hostname)
		}
	}

	logging.Info("")
}

// checkDirectory verifies that path is an existing directory without creating it.
func checkDirectory(path, name string) error {
	logging.Debug("  Checking %s directory: %s", name, path)

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("failed to stat directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("path exists but is not a directory")
	}

	if logging.IsDebugEnabled() {
		if entries, err := os.ReadDir(path); err == nil {
			logging.Debug("    Contents: %d entries (top level)", len(entries))
		}
	}
	return nil
}

func ensureDirectory(path, name string) error {
	logging.Debug("  Checking %s directory: %s", name, path)

	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		logging.Debug("    Directory does not exist, creating...")
		if err := os.MkdirAll(path, 0o755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
		logging.Debug("    [OK] Created directory: %s", path)
		return nil
	}

	if err != nil {
		return fmt.Errorf("failed to stat directory: %w", err)
	}

	if !info.IsDir() {
		return fmt.Errorf("path exists but is not a directory")
	}

	logging.Debug("    [OK] Directory exists")
	return nil
}

func testWriteAccess(dir string) error {
	testFile := filepath.Join(dir, ".write-test")
	if err := os.WriteFile(testFile, []byte("test"), 0o644); err != nil {
		return err
	}
	if err := os.Remove(testFile); err != nil {
		logging.Warn("failed to remove write test file %s: %v", testFile, err)
	}
	return nil
}

// checkTool verifies that an ffmpeg-family binary resolves and answers -version.
func checkTool(name string) error {
	path, err := exec.LookPath(name)
	if err != nil {
		return fmt.Errorf("%s not found in PATH", name)
	}
	logging.Debug("  %s path: %s", filepath.Base(name), path)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	output, err := exec.CommandContext(ctx, path, "-version").Output()
	if err != nil {
		return fmt.Errorf("failed to get %s version: %w", name, err)
	}

	if first, _, _ := strings.Cut(string(output), "\n"); first != "" {
		logging.Debug("  %s version: %s", filepath.Base(name), strings.TrimSpace(first))
	}

	return nil
}
