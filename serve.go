package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"vidshelf/internal/blob"
	"vidshelf/internal/codec"
	"vidshelf/internal/database"
	"vidshelf/internal/extract"
	"vidshelf/internal/filesystem"
	"vidshelf/internal/handlers"
	"vidshelf/internal/library"
	"vidshelf/internal/logging"
	"vidshelf/internal/media"
	"vidshelf/internal/memory"
	"vidshelf/internal/metrics"
	"vidshelf/internal/middleware"
	"vidshelf/internal/settings"
	"vidshelf/internal/startup"
	"vidshelf/internal/store"
	"vidshelf/internal/streaming"
	"vidshelf/internal/vipsimg"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 30 * time.Second

func init() {
	addServeFlags(serveCmd)
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server (default)",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

// serveFlags maps server flags to configuration keys.
var serveFlags = map[string]string{
	"library":        startup.KeyLibraryDir,
	"database-dir":   startup.KeyDatabaseDir,
	"bind":           startup.KeyBindAddr,
	"port":           startup.KeyPort,
	"metrics-port":   startup.KeyMetricsPort,
	"metrics":        startup.KeyMetricsEnabled,
	"watch":          startup.KeyWatch,
	"watch-debounce": startup.KeyWatchDebounce,
}

func addServeFlags(cmd *cobra.Command) {
	defaults := startup.NewViper()
	f := cmd.Flags()
	f.StringP("library", "l", "", "Folder to open at startup")
	f.String("database-dir", defaults.GetString(startup.KeyDatabaseDir), "Directory holding the settings database")
	f.String("bind", defaults.GetString(startup.KeyBindAddr), "Address to listen on")
	f.StringP("port", "p", defaults.GetString(startup.KeyPort), "Application port")
	f.String("metrics-port", defaults.GetString(startup.KeyMetricsPort), "Prometheus metrics port")
	f.Bool("metrics", defaults.GetBool(startup.KeyMetricsEnabled), "Serve Prometheus metrics")
	f.Bool("watch", defaults.GetBool(startup.KeyWatch), "Re-scan the open folder when its videos change")
	f.Duration("watch-debounce", defaults.GetDuration(startup.KeyWatchDebounce), "Delay before a change triggers a re-scan")
}

func runServe(cmd *cobra.Command, _ []string) error {
	startTime := time.Now()
	memory.ConfigureFromEnv()
	bindFlags(cfg, cmd, serveFlags)

	config, err := startup.LoadConfig(cfg)
	if err != nil {
		startup.LogFatal("Configuration error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	// Initialize database
	dbStart := time.Now()
	db, err := database.New(ctx, config.DatabasePath)
	if err != nil {
		startup.LogFatal("Failed to initialize database: %v", err)
	}
	startup.LogDatabaseInit(time.Since(dbStart))

	prefs, err := settings.Load(ctx, db)
	if err != nil {
		startup.LogFatal("Failed to load settings: %v", err)
	}

	// Initialize extractor
	canvas, vipsActive := newCanvas(config.VipsEnabled)
	startup.LogExtractorInit(config, vipsActive)

	libraryFs := filesystem.NewRetryFs(afero.NewOsFs(), filesystem.DefaultRetryConfig())
	blobs := blob.NewRegistry(libraryFs)
	st := store.New()
	extractor := extract.New(extract.Config{
		Decoder: extract.NewFFmpegDecoder(config.FFmpegPath, config.FFprobePath),
		Canvas:  canvas,
		Blobs:   blobs,
	})

	svc := library.NewService(library.Config{
		Scanner:       library.NewScanner(libraryFs),
		Extractor:     extractor,
		Store:         st,
		Quality:       func() media.Quality { return prefs.Get().ThumbnailQuality },
		Watch:         config.Watch,
		WatchDebounce: config.WatchDebounce,
	})

	// Open the configured folder in the background
	if config.LibraryDir != "" {
		go openAtStartup(ctx, svc, config)
	}

	var prober codec.Prober
	if config.FFmpegAvailable {
		p, err := codec.NewFFmpegProber(ctx, config.FFmpegPath)
		if err != nil {
			logging.Warn("Codec detection via ffmpeg failed: %v", err)
		} else {
			prober = p
		}
	}

	h := handlers.New(handlers.Deps{
		DB:       db,
		Library:  svc,
		Store:    st,
		Settings: prefs,
		Blobs:    blobs,
		Prober:   prober,
		Stream:   streaming.DefaultConfig(),
	})

	router := setupRouter(h)
	startup.LogHTTPRoutes(router, config.LogStaticFiles, config.LogHealthChecks)

	loggingConfig := middleware.DefaultLoggingConfig()
	loggingConfig.LogStaticFiles = config.LogStaticFiles
	loggingConfig.LogHealthChecks = config.LogHealthChecks
	handler := middleware.Compression(middleware.DefaultCompressionConfig())(
		middleware.Logger(loggingConfig)(router),
	)

	srv := &http.Server{
		Addr:              config.Addr(),
		Handler:           handler,
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	var metricsSrv *http.Server
	var collector *metrics.Collector
	if config.MetricsEnabled {
		metrics.InitializeMetrics()
		bi := startup.GetBuildInfo()
		metrics.AppInfo.WithLabelValues(bi.Version, bi.Commit, bi.GoVersion).Set(1)

		collector = metrics.NewCollector(st, time.Minute)
		collector.Start()

		metricsSrv = newMetricsServer(config.MetricsAddr())
		go func() {
			if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logging.Error("Metrics server error: %v", err)
			}
		}()
	}

	serverErr := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	startup.LogServerStarted(startup.ServerConfig{
		BindAddr:        config.BindAddr,
		Port:            config.Port,
		MetricsPort:     config.MetricsPort,
		MetricsEnabled:  config.MetricsEnabled,
		StartupDuration: time.Since(startTime),
	})

	var runErr error
	select {
	case sig := <-sigChan:
		startup.LogShutdownInitiated(sig.String())
	case err, ok := <-serverErr:
		if ok {
			runErr = fmt.Errorf("server error: %w", err)
			logging.Error("%v", runErr)
		}
	}

	cancel()
	shutdown(srv, metricsSrv, collector, svc, db)
	return runErr
}

func openAtStartup(ctx context.Context, svc *library.Service, config *startup.Config) {
	res, err := svc.Open(ctx, library.StaticPicker(config.LibraryDir))
	if errors.Is(err, context.Canceled) {
		logging.Info("Opening %s stopped by shutdown", config.LibraryDir)
		return
	}
	if err != nil {
		logging.Error("Failed to open library %s: %v", config.LibraryDir, err)
		return
	}
	startup.LogLibraryInit(res.Dir, len(res.Videos), config.Watch)
}

// newCanvas starts libvips when enabled and falls back to the pure Go canvas.
func newCanvas(useVips bool) (extract.Canvas, bool) {
	if useVips {
		if err := vipsimg.Init(); err != nil {
			logging.Warn("libvips unavailable, using built-in image canvas: %v", err)
		} else if vipsimg.IsAvailable() {
			return vipsimg.Canvas{}, true
		}
	}
	return extract.ImageCanvas{}, false
}

func setupRouter(h *handlers.Handlers) *mux.Router {
	r := mux.NewRouter()
	r.Use(middleware.Metrics(middleware.DefaultMetricsConfig()))
	h.Register(r)
	return r
}

func newMetricsServer(addr string) *http.Server {
	mr := http.NewServeMux()
	mr.Handle("/metrics", promhttp.Handler())
	mr.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	return &http.Server{
		Addr:              addr,
		Handler:           mr,
		ReadHeaderTimeout: 10 * time.Second,
	}
}

func shutdown(srv, metricsSrv *http.Server, collector *metrics.Collector, svc *library.Service, db *database.Database) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	startup.LogShutdownStep("Shutting down HTTP server")
	if err := srv.Shutdown(ctx); err != nil {
		logging.Warn("Server shutdown error: %v", err)
	} else {
		startup.LogShutdownStepComplete("HTTP server stopped")
	}

	if metricsSrv != nil {
		startup.LogShutdownStep("Shutting down metrics server")
		if err := metricsSrv.Shutdown(ctx); err != nil {
			logging.Warn("Metrics server shutdown error: %v", err)
		} else {
			startup.LogShutdownStepComplete("Metrics server stopped")
		}
	}
	if collector != nil {
		collector.Stop()
	}

	startup.LogShutdownStep("Stopping library watcher")
	if err := svc.Close(); err != nil {
		logging.Warn("Library shutdown error: %v", err)
	} else {
		startup.LogShutdownStepComplete("Library watcher stopped")
	}

	vipsimg.Shutdown()

	startup.LogShutdownStep("Closing database")
	if err := db.Close(); err != nil {
		logging.Warn("Database close error: %v", err)
	} else {
		startup.LogShutdownStepComplete("Database closed")
	}

	startup.LogShutdownComplete()
}
