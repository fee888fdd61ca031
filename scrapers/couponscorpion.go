package scrapers

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/nicfarandi/Automatic-Udemy-Course-Enroller-GET-PAID-UDEMY-COURSES-for-FREE/browser"
	"github.com/nicfarandi/Automatic-Udemy-Course-Enroller-GET-PAID-UDEMY-COURSES-for-FREE/config"
	"github.com/nicfarandi/Automatic-Udemy-Course-Enroller-GET-PAID-UDEMY-COURSES-for-FREE/fetcher"
	"github.com/nicfarandi/Automatic-Udemy-Course-Enroller-GET-PAID-UDEMY-COURSES-for-FREE/models"
	"github.com/nicfarandi/Automatic-Udemy-Course-Enroller-GET-PAID-UDEMY-COURSES-for-FREE/udemy"
)

const couponScorpionDomain = "https://couponscorpion.com"

// CouponScorpion scrapes couponscorpion.com listing pages for posts, each
// post for affiliate redirect buttons, and resolves every redirect through a
// real browser session to reach the final Udemy coupon link.
type CouponScorpion struct {
	Session

	domain string
	fetch  *fetcher.Client
	settle time.Duration

	// driver is lazily opened on the first Run and closed when the scraper
	// reaches a terminal state.
	driver     driver
	openDriver func() (driver, error)

	// validate is the shared coupon-link validator.
	validate func(string) (string, bool)
}

// NewCouponScorpion builds the scraper. A disabled scraper is terminal from
// construction and never opens a browser session.
func NewCouponScorpion(cfg config.ScraperConfig, httpCfg config.HTTPConfig, browserCfg config.BrowserConfig) *CouponScorpion {
	c := &CouponScorpion{
		Session:  Session{MaxPages: cfg.MaxPages},
		domain:   couponScorpionDomain,
		fetch:    fetcher.New(httpCfg.Timeout, browserCfg.DefaultProxy),
		settle:   browserCfg.SettleDelay,
		validate: udemy.ValidateCouponURL,
	}
	c.openDriver = func() (driver, error) {
		s, err := browser.Open(browserCfg)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
	if !cfg.Enabled {
		c.SetStateDisabled()
	}
	return c
}

func (c *CouponScorpion) Name() string { return "couponscorpion" }

// Status returns the progress snapshot exposed by the stats API.
func (c *CouponScorpion) Status() models.ScraperStatus {
	return models.ScraperStatus{
		Name:        c.Name(),
		CurrentPage: c.CurrentPage,
		LastPage:    c.LastPage,
		Complete:    c.IsComplete(),
		Disabled:    c.IsDisabled(),
	}
}

// Run scrapes one listing page worth of coupon links. The deferred teardown
// releases the browser session as soon as the scraper is terminal, whether or
// not this call's gathering succeeded.
func (c *CouponScorpion) Run(ctx context.Context) []string {
	start := time.Now()
	defer func() {
		if c.IsComplete() || c.IsDisabled() {
			c.closeDriver()
		}
	}()

	links := c.getLinks(ctx)
	slog.Info("page scraped",
		"scraper", c.Name(),
		"page", c.CurrentPage,
		"lastPage", c.LastPage,
		"links", len(links),
		"took", time.Since(start),
	)
	c.MaxPagesReached()
	return links
}

func (c *CouponScorpion) getLinks(ctx context.Context) []string {
	c.CurrentPage++

	if c.IsDisabled() {
		slog.Debug("scraper disabled, skipping", "scraper", c.Name())
		return nil
	}
	if err := c.initDriver(); err != nil {
		slog.Error("cannot scrape couponscorpion.com without a browser session",
			"error", err,
		)
		return nil
	}

	pageURL := c.domain
	if c.CurrentPage > 1 {
		pageURL = fmt.Sprintf("%s/page/%d", c.domain, c.CurrentPage)
	}

	postLinks := c.postLinks(ctx, pageURL)
	slog.Debug("posts found",
		"scraper", c.Name(),
		"page", c.CurrentPage,
		"posts", len(postLinks),
	)

	var courses []string
	for _, postURL := range postLinks {
		for _, redirectURL := range c.redirectLinks(ctx, postURL) {
			if final := c.resolveRedirect(ctx, redirectURL); final != "" {
				slog.Debug("received link", "scraper", c.Name(), "course", final)
				courses = append(courses, final)
			}
		}
	}
	return courses
}

func (c *CouponScorpion) initDriver() error {
	if c.driver != nil {
		return nil
	}
	d, err := c.openDriver()
	if err != nil {
		return err
	}
	c.driver = d
	return nil
}

func (c *CouponScorpion) closeDriver() {
	if c.driver != nil {
		c.driver.Close()
		c.driver = nil
	}
}

// postLinks fetches a listing page and extracts the post URL of every offer
// card in document order. Duplicates and malformed hrefs pass through
// unfiltered; validation happens after redirect resolution.
func (c *CouponScorpion) postLinks(ctx context.Context, pageURL string) []string {
	body, err := c.fetch.Get(ctx, pageURL)
	if err != nil {
		slog.Debug("listing fetch failed", "url", pageURL, "error", err)
		return nil
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		slog.Debug("listing parse failed", "url", pageURL, "error", err)
		return nil
	}
	slog.Debug("listing fetched", "url", pageURL, "title", fetcher.Title(body))

	var links []string
	doc.Find(`article[class^="col_item offer_grid"]`).Each(func(_ int, article *goquery.Selection) {
		if href, ok := article.Find("a[href]").First().Attr("href"); ok {
			links = append(links, href)
		}
	})

	// The pagination bound is discovered on the first successful parse and
	// reused for every later page.
	if c.LastPage == 0 {
		c.LastPage = lastPageBound(doc, c.CurrentPage)
	}
	return links
}

// lastPageBound reads the highest numeric page link from the pagination
// control. A missing control or no numeric links means a single-page site,
// so the bound collapses to the current page.
func lastPageBound(doc *goquery.Document, current int) int {
	highest := 0
	doc.Find("ul.page-numbers a").Each(func(_ int, a *goquery.Selection) {
		if n, err := strconv.Atoi(strings.TrimSpace(a.Text())); err == nil && n > highest {
			highest = n
		}
	})
	if highest == 0 {
		return current
	}
	return highest
}

// redirectLinks fetches a post page and extracts the affiliate redirect URL
// behind every coupon button.
func (c *CouponScorpion) redirectLinks(ctx context.Context, postURL string) []string {
	body, err := c.fetch.Get(ctx, postURL)
	if err != nil {
		slog.Debug("post fetch failed", "url", postURL, "error", err)
		return nil
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		slog.Debug("post parse failed", "url", postURL, "error", err)
		return nil
	}

	var links []string
	doc.Find("span.rh_button_wrapper").Each(func(_ int, span *goquery.Selection) {
		if href, ok := span.Find("a[href]").First().Attr("href"); ok {
			links = append(links, href)
		}
	})
	return links
}

// resolveRedirect drives the browser through the affiliate redirect chain and
// validates the address it lands on. One attempt per URL, no retry.
func (c *CouponScorpion) resolveRedirect(ctx context.Context, redirectURL string) string {
	if c.driver == nil {
		return ""
	}
	if err := c.driver.Navigate(ctx, redirectURL); err != nil {
		slog.Debug("redirect navigation failed", "url", redirectURL, "error", err)
		return ""
	}

	// Give client-side hops time to land before reading the address bar.
	if c.settle > 0 {
		select {
		case <-ctx.Done():
			return ""
		case <-time.After(c.settle):
		}
	}

	final, err := c.driver.CurrentURL()
	if err != nil {
		slog.Debug("failed to read final URL", "url", redirectURL, "error", err)
		return ""
	}
	validated, ok := c.validate(final)
	if !ok {
		slog.Debug("final URL rejected by validator", "url", final)
		return ""
	}
	return validated
}
