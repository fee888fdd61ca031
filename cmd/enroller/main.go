package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nicfarandi/Automatic-Udemy-Course-Enroller-GET-PAID-UDEMY-COURSES-for-FREE/api"
	"github.com/nicfarandi/Automatic-Udemy-Course-Enroller-GET-PAID-UDEMY-COURSES-for-FREE/cache"
	"github.com/nicfarandi/Automatic-Udemy-Course-Enroller-GET-PAID-UDEMY-COURSES-for-FREE/config"
	"github.com/nicfarandi/Automatic-Udemy-Course-Enroller-GET-PAID-UDEMY-COURSES-for-FREE/pipeline"
	"github.com/nicfarandi/Automatic-Udemy-Course-Enroller-GET-PAID-UDEMY-COURSES-for-FREE/scrapers"
)

func main() {
	// ── 1. Load configuration ───────────────────────────────────────
	cfg := config.Load()

	// ── 2. Initialise structured logging ────────────────────────────
	initLogger(cfg.Log)
	slog.Info("enroller starting",
		"couponscorpion", cfg.Scrapers.CouponScorpion.Enabled,
		"maxPages", cfg.Scrapers.CouponScorpion.MaxPages,
		"interval", cfg.Pipeline.Interval,
	)

	// ── 3. Build the scraper set ────────────────────────────────────
	scraperSet := []scrapers.Scraper{
		scrapers.NewCouponScorpion(cfg.Scrapers.CouponScorpion, cfg.HTTP, cfg.Browser),
	}

	// ── 4. Pipeline manager ─────────────────────────────────────────
	seen := cache.NewSeen(cfg.Pipeline.SeenTTL)
	manager := pipeline.New(scraperSet, seen, logEnroll, cfg.Webhook)

	// ── 5. Optional status API ──────────────────────────────────────
	var srv *http.Server
	if cfg.Server.Enabled {
		addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		srv = &http.Server{
			Addr:    addr,
			Handler: api.NewRouter(manager, cfg),
		}
		go func() {
			slog.Info("status API listening", "addr", addr)
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				slog.Error("status API error", "error", err)
				os.Exit(1)
			}
		}()
	}

	// ── 6. Cycle loop until every scraper is terminal ───────────────
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

loop:
	for {
		manager.Cycle(ctx)
		if manager.Done() {
			slog.Info("all scrapers reached a terminal state")
			break
		}
		select {
		case <-ctx.Done():
			slog.Info("shutdown signal received")
			break loop
		case <-time.After(cfg.Pipeline.Interval):
		}
	}

	if srv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("status API forced shutdown", "error", err)
		} else {
			slog.Info("status API drained gracefully")
		}
	}
	slog.Info("enroller stopped")
}

// logEnroll is the default enrollment hook. Actual checkout automation is an
// external collaborator; the links it needs are also exposed via the webhook
// and stats surfaces.
func logEnroll(_ context.Context, courseURL string) error {
	slog.Info("course link ready for enrollment", "course", courseURL)
	return nil
}

// initLogger configures slog based on the LogConfig.
func initLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.Format == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	slog.SetDefault(slog.New(handler))
}
