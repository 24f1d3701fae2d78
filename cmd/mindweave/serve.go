package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/mindweave-dev/mindweave/internal/guard"
	"github.com/mindweave-dev/mindweave/internal/mcptools"
	"github.com/mindweave-dev/mindweave/pkg/observability"
	"github.com/mindweave-dev/mindweave/pkg/retention"
	"github.com/mindweave-dev/mindweave/pkg/store"
	"github.com/mindweave-dev/mindweave/pkg/workspace"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the workspace tools over stdio",
	Long: `Start the MCP server on stdin/stdout. Optional sidecars run
alongside the transport: a metrics/health HTTP server and a cron-driven
retention sweeper, both controlled by the configuration file.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	log.Printf("starting mindweave v%s (backend=%s)", Version, cfg.Storage.Backend)

	if cfg.Observability.Tracing {
		shutdown, err := observability.InitTracing(cfg.Observability.ServiceName)
		if err != nil {
			return fmt.Errorf("initializing tracing: %w", err)
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdown(ctx); err != nil {
				log.Printf("trace shutdown error: %v", err)
			}
		}()
	}

	backend, err := openBackend(cfg)
	if err != nil {
		return fmt.Errorf("opening storage backend: %w", err)
	}
	w := workspace.New(backend)
	defer func() {
		if err := w.Close(); err != nil {
			log.Printf("closing workspace: %v", err)
		}
	}()

	errChan := make(chan error, 2)

	if cfg.Observability.Enabled {
		observability.InitMetrics()
		checker := observability.NewHealthChecker(Version)
		checker.RegisterCheck(observability.PingCheck())
		checker.RegisterCheck(observability.StorageCheck(storagePing(backend)))

		obsServer := observability.NewServer(cfg.Observability.MetricsPort, checker)
		go func() {
			log.Printf("observability server listening on :%d", cfg.Observability.MetricsPort)
			if err := obsServer.Start(); err != nil {
				errChan <- fmt.Errorf("observability server: %w", err)
			}
		}()
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := obsServer.Shutdown(ctx); err != nil {
				log.Printf("observability shutdown error: %v", err)
			}
		}()
	}

	if cfg.Retention.Enabled {
		scheduler, err := retention.NewScheduler(w.Sweeper(), cfg.Retention.Schedule, cfg.Retention.MaxAgeDays)
		if err != nil {
			return fmt.Errorf("invalid sweep schedule %q: %w", cfg.Retention.Schedule, err)
		}
		scheduler.OnResult = func(res retention.Result) {
			observability.RecordSweep(res.Duration, res.Deleted, res.Failed)
		}
		scheduler.Start()
		defer func() {
			<-scheduler.Stop().Done()
		}()
		log.Printf("retention sweeps scheduled (%s, %dd)", cfg.Retention.Schedule, cfg.Retention.MaxAgeDays)
	}

	deps := &mcptools.Deps{
		Workspace: w,
		Limits: guard.Limits{
			MaxContentLength: cfg.Guard.MaxContentLength,
			MaxTags:          cfg.Guard.MaxTags,
			MaxTagLength:     guard.DefaultLimits().MaxTagLength,
			MaxQueryLength:   guard.DefaultLimits().MaxQueryLength,
		},
		Limiter: guard.NewRateLimiter(cfg.Guard.RatePerSecond, cfg.Guard.RateBurst),
	}
	s := mcptools.NewServer("mindweave", Version, deps)

	go func() {
		errChan <- server.ServeStdio(s)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		if err != nil {
			return err
		}
	case sig := <-quit:
		log.Printf("received %s, shutting down", sig)
	}
	return nil
}

// storagePing adapts the backend to a health check probe. Redis gets a
// real ping; the file backend is probed through a pointer read.
func storagePing(backend store.Backend) func(context.Context) error {
	if rb, ok := backend.(*store.RedisBackend); ok {
		return rb.Ping
	}
	return func(ctx context.Context) error {
		_, err := backend.DefaultSession(ctx)
		return err
	}
}
