package fetcher

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestGet_SendsBrowserHeaders(t *testing.T) {
	var gotUA, gotAccept string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotAccept = r.Header.Get("Accept")
		w.Write([]byte("<html></html>"))
	}))
	defer srv.Close()

	c := New(5*time.Second, "")
	body, err := c.Get(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(body) != "<html></html>" {
		t.Errorf("unexpected body: %q", body)
	}
	if !strings.Contains(gotUA, "Chrome/") {
		t.Errorf("expected Chrome user-agent, got %q", gotUA)
	}
	if !strings.Contains(gotAccept, "text/html") {
		t.Errorf("expected html accept header, got %q", gotAccept)
	}
}

func TestGet_NonSuccessStatus(t *testing.T) {
	for _, status := range []int{http.StatusNotFound, http.StatusInternalServerError, http.StatusForbidden} {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
		}))
		c := New(5*time.Second, "")
		if _, err := c.Get(context.Background(), srv.URL); err == nil {
			t.Errorf("status %d: expected error, got nil", status)
		}
		srv.Close()
	}
}

func TestGet_ContextCanceled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	c := New(5*time.Second, "")
	if _, err := c.Get(ctx, srv.URL); err == nil {
		t.Error("expected error for canceled context, got nil")
	}
}

func TestTitle(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"simple", "<html><head><title>Coupon Scorpion</title></head></html>", "Coupon Scorpion"},
		{"whitespace trimmed", "<title>\n  Deals  \n</title>", "Deals"},
		{"no title", "<html><body>hi</body></html>", ""},
		{"empty title", "<title></title>", ""},
		{"empty input", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Title([]byte(tt.body)); got != tt.want {
				t.Errorf("Title(%q) = %q, want %q", tt.body, got, tt.want)
			}
		})
	}
}
