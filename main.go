package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/clauderelay/proxypool/internal/acceptor"
	"github.com/clauderelay/proxypool/internal/adapter/debughttp"
	"github.com/clauderelay/proxypool/internal/adapter/dispatcher"
	"github.com/clauderelay/proxypool/internal/adapter/pool"
	"github.com/clauderelay/proxypool/internal/adapter/scheduler"
	"github.com/clauderelay/proxypool/internal/adapter/security"
	"github.com/clauderelay/proxypool/internal/config"
	"github.com/clauderelay/proxypool/internal/logger"
	"github.com/clauderelay/proxypool/internal/observability"
	"github.com/clauderelay/proxypool/internal/version"
	"github.com/clauderelay/proxypool/pkg/format"
	"github.com/clauderelay/proxypool/pkg/nerdstats"
	"github.com/clauderelay/proxypool/pkg/profiler"
)

func main() {
	startTime := time.Now()
	vlog := log.New(log.Writer(), "", 0)
	if len(os.Args) > 1 && os.Args[1] == "--version" {
		version.PrintVersionInfo(true, vlog)
		os.Exit(0)
	}
	version.PrintVersionInfo(false, vlog)

	cfgProvider, err := config.Load(nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	lcfg := buildLoggerConfig(cfgProvider)
	logInstance, styledLogger, cleanup, err := logger.NewWithTheme(lcfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialise logger: %v\n", err)
		os.Exit(1)
	}
	defer cleanup()
	slog.SetDefault(logInstance)

	styledLogger.Info("initialising proxy pool", "version", version.Version, "pid", os.Getpid())

	if os.Getenv("PROXYPOOL_PROFILE") != "" {
		profiler.InitialiseProfiler()
		styledLogger.Info("pprof profiler enabled", "addr", "localhost:19841")
	}

	health := pool.NewHealthMap()
	registry := pool.NewRegistry(cfgProvider)
	sched := scheduler.New(health)
	recorder := observability.New()

	disp := dispatcher.New(
		sched,
		health,
		recorder,
		styledLogger,
		time.Duration(cfgProvider.RequestTimeoutSeconds())*time.Second,
		cfgProvider.PenaltyIncrement(),
		cfgProvider.PenaltyDecrement(),
	)

	debugHandler := debughttp.New(recorder, health, upstreamNameResolver(registry))
	rateLimiter := security.NewLoopbackRateLimiter(cfgProvider.RateLimit())
	acc := acceptor.New(registry, disp, debugHandler, rateLimiter, styledLogger, cfgProvider.Port)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		styledLogger.Info("shutdown signal received", "signal", sig.String())
		cancel()
	}()

	if err := acc.Start(); err != nil {
		logger.FatalWithLogger(logInstance, "failed to start acceptor", "error", err)
	}

	<-ctx.Done()

	if err := acc.Stop(); err != nil {
		styledLogger.Error("error during shutdown", "error", err)
	}

	reportProcessStats(styledLogger, startTime)
	styledLogger.Info("proxy pool has shut down")
}

// upstreamNameResolver bridges the registry's live snapshot to the debug
// handler's id->name lookup without coupling debughttp to pool.Registry
// directly (§9 design notes: the debug surface only ever reads).
func upstreamNameResolver(registry *pool.Registry) func() map[uuid.UUID]string {
	return func() map[uuid.UUID]string {
		snapshot := registry.Snapshot()
		names := make(map[uuid.UUID]string, snapshot.Len())
		for _, u := range snapshot.Upstreams() {
			names[u.ID] = u.Name
		}
		return names
	}
}

func reportProcessStats(log *logger.StyledLogger, startTime time.Time) {
	runtime.GC()
	stats := nerdstats.Snapshot(startTime)

	log.Info("process memory stats",
		"heap_alloc", format.Bytes(stats.HeapAlloc),
		"heap_sys", format.Bytes(stats.HeapSys),
		"heap_inuse", format.Bytes(stats.HeapInuse),
		"total_alloc", format.Bytes(stats.TotalAlloc),
		"memory_pressure", stats.GetMemoryPressure(),
	)

	log.Info("runtime stats",
		"uptime", format.Duration(stats.Uptime),
		"go_version", stats.GoVersion,
		"num_goroutines", stats.NumGoroutines,
		"goroutine_health", stats.GetGoroutineHealthStatus(),
	)
}

func buildLoggerConfig(cfgProvider *config.Provider) *logger.Config {
	lc := cfgProvider.LoggingConfig()
	return &logger.Config{
		Level:      envOrDefault("PROXYPOOL_LOG_LEVEL", lc.Level),
		FileOutput: lc.FileOutput,
		LogDir:     envOrDefault("PROXYPOOL_LOG_DIR", lc.LogDir),
		MaxSize:    lc.MaxSize,
		MaxBackups: lc.MaxBackups,
		MaxAge:     lc.MaxAge,
		Theme:      envOrDefault("PROXYPOOL_THEME", lc.Theme),
		PrettyLogs: true,
	}
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
