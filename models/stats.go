package models

// ScraperStatus is the per-scraper progress snapshot exposed by the stats API.
type ScraperStatus struct {
	Name        string `json:"name"`
	CurrentPage int    `json:"current_page"`
	LastPage    int    `json:"last_page"` // 0 until pagination is discovered
	Complete    bool   `json:"complete"`
	Disabled    bool   `json:"disabled"`
}

// PipelineStats is a snapshot of the scrape/enroll loop.
type PipelineStats struct {
	Cycles        int             `json:"cycles"`
	LinksFound    int             `json:"links_found"`
	LinksEnrolled int             `json:"links_enrolled"`
	UptimeSeconds int64           `json:"uptime_seconds"`
	Scrapers      []ScraperStatus `json:"scrapers"`
}

// ErrorDetail is the structured error in API responses.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
