package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	if cfg.HTTP.Timeout != 10*time.Second {
		t.Errorf("HTTP.Timeout = %v, want 10s", cfg.HTTP.Timeout)
	}
	if cfg.Browser.SettleDelay != 2*time.Second {
		t.Errorf("Browser.SettleDelay = %v, want 2s", cfg.Browser.SettleDelay)
	}
	if !cfg.Browser.Headless {
		t.Error("Browser.Headless should default to true")
	}
	if !cfg.Scrapers.CouponScorpion.Enabled {
		t.Error("CouponScorpion should default to enabled")
	}
	if cfg.Scrapers.CouponScorpion.MaxPages != 0 {
		t.Errorf("CouponScorpion.MaxPages = %d, want 0 (no cap)", cfg.Scrapers.CouponScorpion.MaxPages)
	}
	if cfg.Pipeline.Interval != 5*time.Minute {
		t.Errorf("Pipeline.Interval = %v, want 5m", cfg.Pipeline.Interval)
	}
	if cfg.Server.Enabled {
		t.Error("status API should default to disabled")
	}
	if cfg.Log.Level != "info" || cfg.Log.Format != "json" {
		t.Errorf("Log = %+v, want info/json", cfg.Log)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("ENROLLER_HTTP_TIMEOUT", "3s")
	t.Setenv("ENROLLER_COUPONSCORPION_ENABLED", "false")
	t.Setenv("ENROLLER_COUPONSCORPION_MAX_PAGES", "4")
	t.Setenv("ENROLLER_SETTLE_DELAY", "500ms")
	t.Setenv("ENROLLER_API_KEYS", "key-one, key-two")
	t.Setenv("ENROLLER_LOG_LEVEL", "debug")

	cfg := Load()

	if cfg.HTTP.Timeout != 3*time.Second {
		t.Errorf("HTTP.Timeout = %v, want 3s", cfg.HTTP.Timeout)
	}
	if cfg.Scrapers.CouponScorpion.Enabled {
		t.Error("CouponScorpion should be disabled via env")
	}
	if cfg.Scrapers.CouponScorpion.MaxPages != 4 {
		t.Errorf("MaxPages = %d, want 4", cfg.Scrapers.CouponScorpion.MaxPages)
	}
	if cfg.Browser.SettleDelay != 500*time.Millisecond {
		t.Errorf("SettleDelay = %v, want 500ms", cfg.Browser.SettleDelay)
	}
	if len(cfg.Server.APIKeys) != 2 || cfg.Server.APIKeys[1] != "key-two" {
		t.Errorf("APIKeys = %v, want [key-one key-two]", cfg.Server.APIKeys)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q, want debug", cfg.Log.Level)
	}
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("ENROLLER_HTTP_TIMEOUT", "not-a-duration")
	t.Setenv("ENROLLER_COUPONSCORPION_MAX_PAGES", "many")
	t.Setenv("ENROLLER_HEADLESS", "maybe")

	cfg := Load()

	if cfg.HTTP.Timeout != 10*time.Second {
		t.Errorf("HTTP.Timeout = %v, want default 10s", cfg.HTTP.Timeout)
	}
	if cfg.Scrapers.CouponScorpion.MaxPages != 0 {
		t.Errorf("MaxPages = %d, want default 0", cfg.Scrapers.CouponScorpion.MaxPages)
	}
	if !cfg.Browser.Headless {
		t.Error("Headless should fall back to true")
	}
}
