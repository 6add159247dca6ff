// The wkiosk command runs the Wrale Kiosk display client
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
	"strconv"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/wrale/wrale-kiosk/internal/contentapi"
	"github.com/wrale/wrale-kiosk/internal/wkiosk/config"
	"github.com/wrale/wrale-kiosk/internal/wkiosk/content"
	kioskhttp "github.com/wrale/wrale-kiosk/internal/wkiosk/http"
	"github.com/wrale/wrale-kiosk/internal/wkiosk/render"
	"github.com/wrale/wrale-kiosk/internal/wkiosk/rotation"
	"github.com/wrale/wrale-kiosk/internal/wkiosk/scheduler"
	"github.com/wrale/wrale-kiosk/internal/wkiosk/surface"
)

const shutdownTimeout = 15 * time.Second

func main() {
	configPath := flag.String("config", "", "path to config file")
	envFile := flag.String("env-file", ".env", "dotenv file loaded before reading the environment")
	flag.Parse()

	if err := godotenv.Load(*envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "failed to load %s: %v\n", *envFile, err)
		os.Exit(1)
	}

	var cfg *config.Config
	var err error
	if *configPath != "" {
		cfg, err = config.LoadFile(*configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := newLogger(cfg)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("display client failed", "error", err)
		os.Exit(1)
	}
}

func newLogger(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}
	if cfg.Logging.Format == "text" {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	displayID := uuid.New()
	if cfg.DisplayID != "" {
		displayID = uuid.MustParse(cfg.DisplayID)
	}
	logger = logger.With("displayId", displayID)

	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	client, err := contentapi.NewClient(cfg.Content.BaseURL,
		contentapi.WithToken(cfg.Content.Token),
		contentapi.WithTimeout(cfg.Content.Timeout),
	)
	if err != nil {
		return fmt.Errorf("content service client: %w", err)
	}

	var cacheOpts []content.Option
	snapshots, closeSnapshots, err := openSnapshotStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeSnapshots()
	if snapshots != nil {
		cacheOpts = append(cacheOpts, content.WithSnapshotStore(snapshots))
	}
	cache := content.NewCache(client, logger.With("component", "content"), cacheOpts...)

	enrich := newEnrichment(cfg, logger.With("component", "enrichment"))
	renderer := render.New(enrich, logger.With("component", "render"),
		render.WithSlideInterval(cfg.Rotation.SlideInterval),
	)

	hub := surface.NewHub(logger.With("component", "surface"))
	loop := scheduler.NewLoop(logger.With("component", "scheduler"))

	recorder, closePlayLog, err := openPlayLog(ctx, cfg, logger.With("component", "playlog"))
	if err != nil {
		return err
	}
	defer closePlayLog()

	var engineOpts []rotation.Option
	if cfg.Enrichment.Enabled {
		engineOpts = append(engineOpts, rotation.WithEnrichment(enrich))
	}
	if recorder != nil {
		engineOpts = append(engineOpts, rotation.WithPlayRecorder(recorder))
	}

	engine := rotation.NewEngine(rotation.Config{
		DisplayID:           displayID,
		Location:            loc,
		WidgetRefresh:       cfg.Rotation.WidgetRefresh,
		AnnouncementRefresh: cfg.Rotation.AnnouncementRefresh,
		WeatherRefresh:      cfg.Enrichment.WeatherRefresh,
		NewsRefresh:         cfg.Enrichment.NewsRefresh,
	}, loop, cache, renderer, hub, logger.With("component", "rotation"), engineOpts...)

	handlerOpts := []kioskhttp.Option{kioskhttp.WithRateLimit(cfg.Server.RateLimit)}
	if recorder != nil {
		handlerOpts = append(handlerOpts, kioskhttp.WithStats(recorder))
	}
	handler := kioskhttp.NewHandler(engine, http.HandlerFunc(hub.ServeWs), logger.With("component", "http"), handlerOpts...)

	server := &http.Server{
		Addr:         net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port)),
		Handler:      handler.Router(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// The loop, hub and recorder outlive ctx so the engine can stop
	// cleanly and its last play event is persisted.
	loopCtx, cancelLoop := context.WithCancel(context.Background())
	hubCtx, cancelHub := context.WithCancel(context.Background())
	recorderCtx, cancelRecorder := context.WithCancel(context.Background())
	defer cancelLoop()
	defer cancelHub()
	defer cancelRecorder()

	loopDone := make(chan struct{})
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer close(loopDone)
		if err := loop.Run(loopCtx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		hub.Run(hubCtx)
		return nil
	})
	if recorder != nil {
		g.Go(func() error {
			return recorder.Run(recorderCtx)
		})
	}
	g.Go(func() error {
		logger.Info("starting local API", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("local API: %w", err)
		}
		return nil
	})

	loop.Post(engine.Start)

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down display client")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("local API shutdown error", "error", err)
		}

		loop.Post(engine.Stop)
		loop.Post(cancelLoop)
		select {
		case <-loopDone:
		case <-shutdownCtx.Done():
			cancelLoop()
			<-loopDone
		}

		cancelRecorder()
		cancelHub()
		return nil
	})

	return g.Wait()
}
