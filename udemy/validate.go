// Package udemy validates and normalizes course links discovered by the site
// scrapers. It is shared by every scraper so the pipeline only ever sees one
// canonical link shape.
package udemy

import (
	"net/url"
	"strings"
)

const courseRoot = "https://www.udemy.com"

// ValidateCouponURL reports whether raw is a genuine coupon-bearing Udemy
// course link. On success it returns the normalized form
// https://www.udemy.com/course/{slug}/?couponCode={code}; otherwise it
// returns "" and false.
func ValidateCouponURL(raw string) (string, bool) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", false
	}

	host := strings.ToLower(u.Hostname())
	if host != "udemy.com" && host != "www.udemy.com" && !strings.HasSuffix(host, ".udemy.com") {
		return "", false
	}

	path := u.EscapedPath()
	if !strings.HasPrefix(path, "/course/") {
		return "", false
	}
	slug := strings.Trim(strings.TrimPrefix(path, "/course/"), "/")
	if slug == "" || strings.Contains(slug, "/") {
		return "", false
	}

	code := u.Query().Get("couponCode")
	if code == "" {
		return "", false
	}

	return courseRoot + "/course/" + slug + "/?couponCode=" + url.QueryEscape(code), true
}
