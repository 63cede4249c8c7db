// Command radar watches Telegram chats for token contract mentions and
// alerts on tokens whose mention velocity is spiking.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jessevdk/go-flags"

	"alpha-radar/internal/config"
	"alpha-radar/internal/cooldown"
	"alpha-radar/internal/detector"
	"alpha-radar/internal/health"
	"alpha-radar/internal/liquidity"
	"alpha-radar/internal/observability"
	"alpha-radar/internal/radar"
	"alpha-radar/internal/storage"
	"alpha-radar/internal/storage/clickhouse"
	"alpha-radar/internal/storage/migrations"
	"alpha-radar/internal/storage/postgres"
	"alpha-radar/internal/telegram"
	"alpha-radar/internal/trending"
)

const (
	exitOK      = 0
	exitConfig  = 1
	exitRuntime = 2
)

type options struct {
	Debug  bool `long:"debug" description:"Force debug logging"`
	DryRun bool `long:"dry-run" description:"Log alerts instead of sending them"`
}

func main() {
	os.Exit(run())
}

func run() int {
	var opts options
	if _, err := flags.Parse(&opts); err != nil {
		if flags.WroteHelp(err) {
			return exitOK
		}
		return exitConfig
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitConfig
	}

	logger := newLogger(cfg, opts.Debug)
	logger.Info("starting alpha radar", "config", cfg, "dry_run", opts.DryRun)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Storage.
	pool, err := postgres.NewPool(ctx, cfg.DatabaseDSN(), postgres.PoolConfig{
		MinConns: int32(cfg.DBPoolMin),
		MaxConns: int32(cfg.DBPoolMax),
	})
	if err != nil {
		logger.Error("postgres unavailable", "error", err)
		return exitConfig
	}
	defer pool.Close()

	if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
		logger.Error("schema migration failed", "error", err)
		return exitConfig
	}

	mentions := postgres.NewMentionStore(pool)
	alerts := postgres.NewAlertStore(pool)

	var archive storage.ArchiveStore
	if cfg.ClickhouseDSN != "" {
		chConn, err := clickhouse.NewConn(ctx, cfg.ClickhouseDSN)
		if err != nil {
			logger.Error("clickhouse unavailable", "error", err)
			return exitConfig
		}
		defer chConn.Close()
		if err := migrations.RunClickhouseMigrations(ctx, chConn); err != nil {
			logger.Error("clickhouse migration failed", "error", err)
			return exitConfig
		}
		archive = clickhouse.NewAlertArchiveStore(chConn)
		logger.Info("alert archive enabled")
	}

	// Pipeline.
	registry := detector.NewRegistry(
		detector.NewSolanaDetector(cfg.FilterStrictBase58),
		detector.NewEVMDetector(),
	)

	var engineOpts []trending.Option
	if cfg.DexscreenerEnabled {
		engineOpts = append(engineOpts, trending.WithOracle(liquidity.NewClient(logger)))
	}
	engine := trending.NewEngine(mentions, trending.Config{
		Window:          cfg.TrendingWindow,
		MinMentions:     cfg.TrendingMinMentions,
		MinUniqueChats:  cfg.TrendingMinUniqueChats,
		MinLiquidityUSD: cfg.DexscreenerMinLiquidity,
	}, logger, engineOpts...)

	// Transport.
	gwCfg := telegram.DefaultConfig(cfg.TelegramGatewayURL)
	gwCfg.APIID = cfg.TelegramAPIID
	gwCfg.APIHash = cfg.TelegramAPIHash
	gwCfg.Phone = cfg.TelegramPhone
	gwCfg.Session = cfg.TelegramSessionName
	client := telegram.NewClient(gwCfg, logger)
	notifier := telegram.NewNotifier(client, opts.DryRun, logger)

	app := radar.NewApp(radar.Config{
		CheckInterval:   cfg.TrendingCheckInterval,
		RetentionAge:    time.Duration(cfg.RetentionHours) * time.Hour,
		MinMsgLength:    cfg.FilterMinMsgLength,
		IgnoreForwarded: cfg.FilterIgnoreForwarded,
	}, radar.Deps{
		Registry:  registry,
		Mentions:  mentions,
		Alerts:    alerts,
		Archive:   archive,
		Engine:    engine,
		Gate:      cooldown.NewGate(cfg.TrendingCooldown),
		Notifier:  notifier,
		Transport: client,
		Metrics:   observability.New(),
		Logger:    logger,
	})

	client.OnMessage(app.HandleMessage)
	if err := client.Start(ctx); err != nil {
		logger.Error("gateway connect failed", "error", err)
		return exitConfig
	}
	defer client.Close()

	app.Start(ctx)
	defer app.Shutdown()

	var healthSrv *health.Server
	if cfg.HealthEnabled {
		metricsPort := 0
		if cfg.MetricsEnabled {
			metricsPort = cfg.MetricsPort
		}
		healthSrv = health.NewServer(cfg.HealthPort, metricsPort, app.Status, logger)
		healthSrv.Start()
	}

	code := waitForShutdown(ctx, client, logger)

	if healthSrv != nil {
		drainCtx, drainCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer drainCancel()
		if err := healthSrv.Shutdown(drainCtx); err != nil {
			logger.Warn("http drain incomplete", "error", err)
		}
	}
	return code
}

// waitForShutdown blocks until a signal arrives or the gateway gives up.
// A second signal aborts the process without draining.
func waitForShutdown(ctx context.Context, client *telegram.Client, logger *slog.Logger) int {
	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("shutting down", "signal", sig.String())
		go func() {
			<-sigCh
			logger.Warn("second signal, exiting immediately")
			os.Exit(exitRuntime)
		}()
		return exitOK
	case err := <-client.Fatal():
		logger.Error("gateway stream lost", "error", err)
		return exitRuntime
	case <-ctx.Done():
		return exitOK
	}
}

// newLogger builds the process logger from config, with --debug taking
// precedence over LOG_LEVEL.
func newLogger(cfg *config.Config, debug bool) *slog.Logger {
	level := parseLevel(cfg.LogLevel)
	if debug {
		level = slog.LevelDebug
	}

	handlerOpts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.LogJSON {
		handler = slog.NewJSONHandler(os.Stdout, handlerOpts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, handlerOpts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

func parseLevel(s string) slog.Level {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
