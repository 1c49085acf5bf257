package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/meltforce/vizofit/internal/app"
	"github.com/meltforce/vizofit/internal/config"
	vizmcp "github.com/meltforce/vizofit/internal/mcp"
	vizserver "github.com/meltforce/vizofit/internal/server"
	"github.com/meltforce/vizofit/internal/storage"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"
	"tailscale.com/tsnet"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	mcpStdio := flag.Bool("mcp-stdio", false, "serve MCP over stdin/stdout instead of HTTP")
	remote := flag.String("remote", "", "with -mcp-stdio: read from a running server at this URL instead of the local store")
	migrateOnly := flag.Bool("migrate-only", false, "run postgres migrations and exit")
	flag.Parse()

	// stdout belongs to the protocol in stdio mode
	console := os.Stdout
	if *mcpStdio {
		console = os.Stderr
	}

	if *mcpStdio && *remote != "" {
		log := slog.New(slog.NewTextHandler(console, &slog.HandlerOptions{Level: slog.LevelInfo}))
		log.Info("Vizofit MCP starting", "version", Version, "remote", *remote)
		if err := server.ServeStdio(vizmcp.New(vizmcp.NewHTTPClient(*remote), Version, log)); err != nil {
			log.Error("mcp stdio error", "error", err)
			os.Exit(1)
		}
		return
	}

	// Load config
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to load config:", err)
		os.Exit(1)
	}

	log, logCloser, err := app.NewLogger(cfg.Log, console)
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to build logger:", err)
		os.Exit(1)
	}
	defer logCloser.Close()
	log.Info("Vizofit starting", "version", Version)

	if *migrateOnly {
		if cfg.Store.Driver != config.DriverPostgres {
			log.Info("migrate-only: nothing to migrate", "driver", cfg.Store.Driver)
			return
		}
		if err := storage.RunMigrations(cfg.Store.Database.DSN(), cfg.Store.Migrations); err != nil {
			log.Error("migration failed", "error", err)
			os.Exit(1)
		}
		log.Info("migrate-only: exiting")
		return
	}

	ctx := context.Background()
	a, err := app.Open(ctx, cfg, log, app.Options{})
	if err != nil {
		log.Error("failed to open store", "error", err)
		os.Exit(1)
	}

	if *mcpStdio {
		err := server.ServeStdio(vizmcp.New(&vizmcp.Local{
			Engine:   a.Engine,
			Routines: a.Routines,
			Activity: a.Activity,
		}, Version, log))
		if err != nil {
			log.Error("mcp stdio error", "error", err)
		}
		if cerr := a.Close(); cerr != nil {
			log.Error("close error", "error", cerr)
		}
		return
	}

	if err := serveHTTP(cfg, a, log); err != nil {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}

func serveHTTP(cfg *config.Config, a *app.App, log *slog.Logger) (err error) {
	defer func() { err = multierr.Append(err, a.Close()) }()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	srv := vizserver.New(vizserver.Deps{
		Engine:   a.Engine,
		Routines: a.Routines,
		Activity: a.Activity,
		Settings: a.Settings,
		Metrics:  vizserver.NewMetrics("vizofit", reg),
	}, log)

	mcpServer := vizmcp.New(&vizmcp.Local{
		Engine:   a.Engine,
		Routines: a.Routines,
		Activity: a.Activity,
		Lock:     srv.EngineLock(),
	}, Version, log)
	srv.SetMCP(server.NewStreamableHTTPServer(mcpServer))

	// tsnet or plain HTTP
	var listener net.Listener
	if cfg.Tailscale.Enabled {
		tsServer := &tsnet.Server{
			Hostname: cfg.Tailscale.Hostname,
			Dir:      cfg.Tailscale.StateDir,
		}
		if err := tsServer.Start(); err != nil {
			return fmt.Errorf("tsnet start: %w", err)
		}
		a.AddCloser(tsServer)

		lc, err := tsServer.LocalClient()
		if err != nil {
			return fmt.Errorf("tsnet local client: %w", err)
		}
		srv.SetTailscale(lc)

		listener, err = tsServer.Listen("tcp", ":80")
		if err != nil {
			return fmt.Errorf("tsnet listen: %w", err)
		}
		log.Info("tsnet server starting", "hostname", cfg.Tailscale.Hostname)
	} else {
		addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		listener, err = net.Listen("tcp", addr)
		if err != nil {
			return fmt.Errorf("listen %s: %w", addr, err)
		}
		log.Info("server starting", "addr", addr, "mode", "dev (no tailscale)")
	}

	httpSrv := &http.Server{Handler: srv, ReadHeaderTimeout: 10 * time.Second}
	serveErr := make(chan error, 1)
	go func() {
		if err := httpSrv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-quit:
		log.Info("shutting down", "signal", sig)
	case err := <-serveErr:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	log.Info("server stopped")
	return nil
}
