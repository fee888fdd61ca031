// Package browser wraps a rod-driven headless Chromium session. The site
// scrapers use it to execute affiliate redirect chains that plain HTTP cannot
// follow (client-side JS hops, meta refreshes, multi-hop shorteners).
package browser

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
	"github.com/ysmood/gson"

	"github.com/nicfarandi/Automatic-Udemy-Course-Enroller-GET-PAID-UDEMY-COURSES-for-FREE/config"
	"github.com/nicfarandi/Automatic-Udemy-Course-Enroller-GET-PAID-UDEMY-COURSES-for-FREE/models"
)

// Session owns one headless browser and a single reusable tab. A scraper
// instance exclusively owns its Session; it is never shared across
// goroutines.
type Session struct {
	browser    *rod.Browser
	page       *rod.Page
	navTimeout time.Duration
}

// Open launches a headless browser, creates the working tab and installs the
// stealth script so affiliate gateways see an ordinary Chrome.
func Open(cfg config.BrowserConfig) (*Session, error) {
	l := launcher.New().
		Headless(cfg.Headless).
		NoSandbox(cfg.NoSandbox)

	if cfg.BrowserBin != "" {
		l = l.Bin(cfg.BrowserBin)
	}
	if cfg.DefaultProxy != "" {
		l = l.Proxy(cfg.DefaultProxy)
	}

	// ── Stealth flags ────────────────────────────────────────────────
	l.Set(flags.Flag("disable-blink-features"), "AutomationControlled")
	l.Delete(flags.Flag("enable-automation"))
	l.Set(flags.Flag("disable-popup-blocking"))
	l.Set(flags.Flag("disable-component-update"))
	l.Set(flags.Flag("disable-default-apps"))
	l.Set(flags.Flag("disable-dev-shm-usage"))
	l.Set(flags.Flag("disable-extensions"))
	l.Set(flags.Flag("no-first-run"))

	controlURL, err := l.Launch()
	if err != nil {
		return nil, models.NewScrapeError(
			models.ErrCodeBrowserCrash,
			"failed to launch browser",
			err,
		)
	}
	slog.Info("browser launched", "controlURL", controlURL)

	b := rod.New().ControlURL(controlURL)
	if err := b.Connect(); err != nil {
		return nil, models.NewScrapeError(
			models.ErrCodeBrowserCrash,
			"failed to connect to browser",
			err,
		)
	}

	page, err := b.Page(proto.TargetCreateTarget{})
	if err != nil {
		b.MustClose()
		return nil, models.NewScrapeError(
			models.ErrCodeBrowserCrash,
			"failed to create page",
			err,
		)
	}

	// Stealth JS must be installed before the first navigation.
	if _, evalErr := page.EvalOnNewDocument(stealth.JS); evalErr != nil {
		slog.Warn("stealth injection failed, proceeding without stealth",
			"error", evalErr,
		)
	}

	_ = proto.NetworkSetExtraHTTPHeaders{
		Headers: toHeadersMap(map[string]string{
			"Accept-Language": "en-US,en;q=0.9",
		}),
	}.Call(page)

	navTimeout := cfg.NavigationTimeout
	if navTimeout <= 0 {
		navTimeout = 15 * time.Second
	}

	return &Session{
		browser:    b,
		page:       page,
		navTimeout: navTimeout,
	}, nil
}

// Navigate drives the tab to the given URL and waits best-effort for the DOM
// to stop mutating. It does not retry; redirect settling is the caller's
// concern.
func (s *Session) Navigate(ctx context.Context, url string) error {
	ctx, cancel := context.WithTimeout(ctx, s.navTimeout)
	defer cancel()

	p := s.page.Context(ctx)
	if err := p.Navigate(url); err != nil {
		return categorizeError(err, "navigation failed")
	}
	if err := p.WaitDOMStable(300*time.Millisecond, 0.1); err != nil {
		slog.Debug("WaitDOMStable did not converge, proceeding with current DOM",
			"error", err,
		)
	}
	return nil
}

// CurrentURL reads the address bar after any redirect chain has run.
func (s *Session) CurrentURL() (string, error) {
	res, err := s.page.Eval(`() => window.location.href`)
	if err != nil {
		return "", categorizeError(err, "failed to read current URL")
	}
	return res.Value.Str(), nil
}

// Close tears down the tab and kills the browser process. Call this when the
// owning scraper reaches a terminal state to prevent zombie Chrome processes.
func (s *Session) Close() {
	slog.Info("browser session shutting down")
	_ = s.page.Close()
	s.browser.MustClose()
}

// toHeadersMap converts a plain string map to the proto.NetworkHeaders type
// (map[string]gson.JSON) required by NetworkSetExtraHTTPHeaders.
func toHeadersMap(headers map[string]string) proto.NetworkHeaders {
	m := make(proto.NetworkHeaders, len(headers))
	for k, v := range headers {
		m[k] = gson.New(v)
	}
	return m
}

// categorizeError wraps raw errors into typed ScrapeErrors so callers can log
// a stable error code.
func categorizeError(err error, msg string) *models.ScrapeError {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return models.NewScrapeError(models.ErrCodeTimeout, msg, err)
	case errors.Is(err, context.Canceled):
		return models.NewScrapeError(models.ErrCodeTimeout, "navigation canceled", err)
	default:
		return models.NewScrapeError(models.ErrCodeNavigation, msg, err)
	}
}
