// Package scrapers contains the site-specific coupon scrapers and the shared
// pagination state machine they embed.
package scrapers

import (
	"context"

	"github.com/nicfarandi/Automatic-Udemy-Course-Enroller-GET-PAID-UDEMY-COURSES-for-FREE/models"
)

// Scraper is the contract every site scraper exposes to the pipeline.
type Scraper interface {
	Name() string

	// Run performs exactly one page-scrape attempt and returns the validated
	// course links it found. Failures degrade to an empty list and are logged;
	// nothing propagates to the caller.
	Run(ctx context.Context) []string

	IsComplete() bool
	IsDisabled() bool
	Status() models.ScraperStatus
}

// driver is the minimal browser capability a scraper needs to resolve
// affiliate redirects. browser.Session satisfies it; tests substitute fakes.
type driver interface {
	Navigate(ctx context.Context, url string) error
	CurrentURL() (string, error)
	Close()
}

type state int

const (
	stateActive state = iota
	stateDisabled
	stateCompleted
)

// Session tracks one scraper's pagination progress across Run calls.
//
// It is deliberately unsynchronized: the pipeline invokes Run sequentially
// and never concurrently for the same scraper.
type Session struct {
	// CurrentPage starts at 0 and is incremented once per Run call. It never
	// decreases.
	CurrentPage int

	// LastPage is the highest page number discovered from the site's
	// pagination control. 0 until the first successful listing parse; set
	// exactly once.
	LastPage int

	// MaxPages is the configured page ceiling. 0 means no ceiling beyond
	// LastPage.
	MaxPages int

	state state
}

func (s *Session) IsDisabled() bool { return s.state == stateDisabled }

func (s *Session) IsComplete() bool { return s.state == stateCompleted }

// SetStateDisabled puts the session in its terminal disabled state.
func (s *Session) SetStateDisabled() { s.state = stateDisabled }

// MaxPagesReached transitions the session to completed once the configured
// ceiling or the discovered pagination bound is hit, and reports whether the
// session is now completed.
func (s *Session) MaxPagesReached() bool {
	if s.state != stateActive {
		return s.state == stateCompleted
	}
	if s.MaxPages > 0 && s.CurrentPage >= s.MaxPages {
		s.state = stateCompleted
	} else if s.LastPage > 0 && s.CurrentPage >= s.LastPage {
		s.state = stateCompleted
	}
	return s.state == stateCompleted
}
