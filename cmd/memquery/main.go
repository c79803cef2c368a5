package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/leengari/memquery/internal/config"
	"github.com/leengari/memquery/internal/engine"
	"github.com/leengari/memquery/internal/logging"
	"github.com/leengari/memquery/internal/network"
	"github.com/leengari/memquery/internal/observability"
	"github.com/leengari/memquery/internal/repl"
	"github.com/leengari/memquery/internal/storage"
	"github.com/leengari/memquery/internal/storage/manager"
)

func main() {
	os.Exit(run())
}

func run() int {
	filePath := flag.String("file", "", "Path of the data file to load (overrides MEMQUERY_FILE)")
	serverMode := flag.Bool("server", false, "Run in server mode")
	port := flag.Int("port", 0, "Port to listen on in server mode (overrides MEMQUERY_SERVER_ADDR)")
	flag.Parse()

	cfg, err := config.LoadFromEnv()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Fatal error:", err)
		return 1
	}
	if *filePath != "" {
		cfg.Source.Path = *filePath
	}
	if *port > 0 {
		cfg.Server.Address = fmt.Sprintf(":%d", *port)
	}

	logger, closeLogs := logging.Setup(cfg.Observability, os.Stderr)
	defer closeLogs()
	slog.SetDefault(logger)

	// the shell and the server both return once ctx is done
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shell := repl.New(os.Stdin, os.Stdout)

	if cfg.Source.Kind == storage.KindFile && cfg.Source.Path == "" {
		if *serverMode {
			logger.Error("server mode needs a data file", slog.String("hint", "set -file or MEMQUERY_FILE"))
			return 1
		}
		path, err := shell.PromptPath(ctx)
		if ctx.Err() != nil {
			return 0
		}
		if err != nil {
			fmt.Fprintln(os.Stderr, "Fatal error:", err)
			return 1
		}
		cfg.Source.Path = path
	}

	src, err := manager.Open(ctx, cfg.Source, logger)
	if err != nil {
		logger.Error("failed to open data source", slog.Any("error", err))
		return 1
	}
	if closer, ok := src.(io.Closer); ok {
		defer closer.Close()
	}

	eng := engine.New(src,
		engine.WithCacheSize(cfg.Engine.CacheSize),
		engine.WithSampleSize(cfg.Engine.SampleRows),
		engine.WithIndexWorkers(cfg.Engine.IndexWorkers),
		engine.WithLogger(logger),
	)
	eng.AddObserver(engine.NewLoggingObserver(logger))
	eng.AddObserver(observability.NewMetricsObserver())

	if !*serverMode {
		fmt.Println("Loading data into memory...")
	}

	loadCtx := ctx
	if cfg.Engine.LoadTimeout > 0 {
		var cancel context.CancelFunc
		loadCtx, cancel = context.WithTimeout(ctx, cfg.Engine.LoadTimeout)
		defer cancel()
	}
	if err := eng.Initialize(loadCtx); err != nil {
		logger.Error("failed to initialize query engine", slog.Any("error", err))
		fmt.Fprintln(os.Stderr, "Fatal error:", err)
		return 1
	}

	if cfg.Observability.MetricsAddress != "" {
		go func() {
			if err := observability.Serve(ctx, cfg.Observability.MetricsAddress, logger); err != nil {
				logger.Error("metrics endpoint failed", slog.Any("error", err))
			}
		}()
	}

	if *serverMode {
		srv := network.New(eng, network.Config{
			Address:        cfg.Server.Address,
			RateLimitQPS:   cfg.Server.RateLimitQPS,
			RateLimitBurst: cfg.Server.RateLimitBurst,
		}, logger)
		if err := srv.ListenAndServe(ctx); err != nil {
			logger.Error("query server failed", slog.Any("error", err))
			return 1
		}
		logger.Info("query server stopped")
		return 0
	}

	if err := shell.Run(ctx, eng); err != nil {
		logger.Error("shell failed", slog.Any("error", err))
		return 1
	}
	return 0
}
