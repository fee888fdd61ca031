// Package pipeline sequences the site scrapers and hands the course links
// they discover to the enrollment hook.
package pipeline

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/nicfarandi/Automatic-Udemy-Course-Enroller-GET-PAID-UDEMY-COURSES-for-FREE/cache"
	"github.com/nicfarandi/Automatic-Udemy-Course-Enroller-GET-PAID-UDEMY-COURSES-for-FREE/config"
	"github.com/nicfarandi/Automatic-Udemy-Course-Enroller-GET-PAID-UDEMY-COURSES-for-FREE/models"
	"github.com/nicfarandi/Automatic-Udemy-Course-Enroller-GET-PAID-UDEMY-COURSES-for-FREE/scrapers"
	"github.com/nicfarandi/Automatic-Udemy-Course-Enroller-GET-PAID-UDEMY-COURSES-for-FREE/webhook"
)

// EnrollFunc attempts enrollment with a validated coupon link. The concrete
// enroller lives outside this component.
type EnrollFunc func(ctx context.Context, courseURL string) error

// Manager drives the scrape/enroll cycle. Cycle is invoked by a single
// goroutine; Stats may be read concurrently by the status API.
type Manager struct {
	scrapers   []scrapers.Scraper
	seen       *cache.Seen
	enroll     EnrollFunc
	webhookCfg config.WebhookConfig
	startTime  time.Time

	mu       sync.RWMutex
	cycles   int
	found    int
	enrolled int
	statuses []models.ScraperStatus
}

// New creates a Manager over the given scraper set.
func New(scr []scrapers.Scraper, seen *cache.Seen, enroll EnrollFunc, webhookCfg config.WebhookConfig) *Manager {
	m := &Manager{
		scrapers:   scr,
		seen:       seen,
		enroll:     enroll,
		webhookCfg: webhookCfg,
		startTime:  time.Now(),
		statuses:   make([]models.ScraperStatus, len(scr)),
	}
	for i, s := range scr {
		m.statuses[i] = s.Status()
	}
	return m
}

// Cycle runs every non-terminal scraper once, in order, dedupes the links
// against the seen set and hands fresh ones to the enroller. Scrapers are
// never run concurrently; their pagination state is unsynchronized.
func (m *Manager) Cycle(ctx context.Context) {
	var fresh []string

	for i, s := range m.scrapers {
		if s.IsComplete() || s.IsDisabled() {
			continue
		}

		links := s.Run(ctx)

		for _, link := range links {
			m.mu.Lock()
			m.found++
			m.mu.Unlock()

			if !m.seen.MarkSeen(link) {
				slog.Debug("link already handled", "course", link)
				continue
			}
			fresh = append(fresh, link)

			if m.enroll == nil {
				continue
			}
			if err := m.enroll(ctx, link); err != nil {
				slog.Error("enrollment failed", "course", link, "error", err)
				continue
			}
			m.mu.Lock()
			m.enrolled++
			m.mu.Unlock()
		}

		m.mu.Lock()
		m.statuses[i] = s.Status()
		m.mu.Unlock()
	}

	m.mu.Lock()
	m.cycles++
	cycle := m.cycles
	m.mu.Unlock()

	slog.Info("cycle complete", "cycle", cycle, "newLinks", len(fresh))

	if len(fresh) > 0 && m.webhookCfg.URL != "" {
		webhook.DeliverAsync(m.webhookCfg.URL, m.webhookCfg.Secret, &webhook.Event{
			Type:      "links.discovered",
			Cycle:     cycle,
			Timestamp: time.Now().Unix(),
			Links:     fresh,
		})
	}
}

// Done reports whether every scraper has reached a terminal state. Call from
// the same goroutine that calls Cycle.
func (m *Manager) Done() bool {
	for _, s := range m.scrapers {
		if !s.IsComplete() && !s.IsDisabled() {
			return false
		}
	}
	return true
}

// Stats returns a snapshot of the pipeline's progress.
func (m *Manager) Stats() models.PipelineStats {
	m.mu.RLock()
	defer m.mu.RUnlock()

	statuses := make([]models.ScraperStatus, len(m.statuses))
	copy(statuses, m.statuses)

	return models.PipelineStats{
		Cycles:        m.cycles,
		LinksFound:    m.found,
		LinksEnrolled: m.enrolled,
		UptimeSeconds: int64(time.Since(m.startTime).Seconds()),
		Scrapers:      statuses,
	}
}
