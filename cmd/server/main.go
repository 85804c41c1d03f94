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

	"github.com/gin-gonic/gin"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	httpapi "chinitsu-server/internal/api/http"
	"chinitsu-server/internal/api/ws"
	"chinitsu-server/internal/config"
	"chinitsu-server/internal/logging"
	"chinitsu-server/internal/room"
	"chinitsu-server/internal/store"
	"chinitsu-server/internal/telemetry"
)

func main() {
	app := &cli.App{
		Name:  "chinitsu-server",
		Usage: "two-player single-suit mahjong over websockets",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "addr", Usage: "listen address (overrides CHINITSU_HTTP_ADDR)"},
			&cli.StringFlag{Name: "log-level", Usage: "debug, info, warn or error"},
			&cli.IntFlag{Name: "debug-code", Usage: "deal a registered fixture instead of shuffling"},
		},
		Action: run,
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if c.IsSet("addr") {
		cfg.HTTPAddr = c.String("addr")
	}
	if c.IsSet("log-level") {
		cfg.LogLevel = c.String("log-level")
	}
	if c.IsSet("debug-code") {
		cfg.DebugCode = c.Int("debug-code")
	}

	log, err := logging.New(cfg.LogLevel, cfg.LogDevelopment)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()
	if !cfg.LogDevelopment {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Setup(ctx, cfg.OTelEndpoint)
	if err != nil {
		return err
	}

	rm := room.NewManager(store.NewMemoryStore(), room.Options{
		Rules:     cfg.Rules,
		DebugCode: cfg.DebugCode,
		Logger:    log,
	})
	hub := ws.NewHub(rm, ws.Options{
		WriteWait:  cfg.WriteWait,
		PongWait:   cfg.PongWait,
		SendBuffer: cfg.SendBuffer,
		Logger:     log,
	})
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           httpapi.NewRouter(rm, hub, cfg.Rules, log),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("listening", zap.String("addr", cfg.HTTPAddr), zap.Int("debugCode", cfg.DebugCode))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		log.Info("shutting down")
		sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return errors.Join(srv.Shutdown(sctx), shutdownTracing(sctx))
	})
	return g.Wait()
}
