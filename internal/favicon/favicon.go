// Package favicon locates and downloads the icon a web site advertises.
//
// Discovery walks a fixed fallback chain and stops at the first hit:
// the Open Graph image, <link rel> icons, /favicon.ico, and finally
// Google's favicon proxy.
package favicon

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

var (
	ErrUnreachable = errors.New("site is unreachable")
	ErrNoIcon      = errors.New("no icon found")
)

// GoogleProxyURL is queried last with the site's host appended.
const GoogleProxyURL = "https://www.google.com/s2/favicons?domain="

// iconRels are the <link rel> values checked, in priority order.
var iconRels = []string{"apple-touch-icon", "shortcut icon", "icon", "msapplication-TileImage"}

// maxPageBytes caps how much of a page is parsed.
const maxPageBytes = 2 << 20

// Finder discovers and fetches site icons.
type Finder struct {
	Client      *http.Client
	UserAgent   string
	GoogleProxy bool

	proxyBase string
}

// NewFinder returns a Finder whose requests time out after timeout.
func NewFinder(timeout time.Duration, userAgent string, googleProxy bool) *Finder {
	return &Finder{
		Client:      &http.Client{Timeout: timeout},
		UserAgent:   userAgent,
		GoogleProxy: googleProxy,
		proxyBase:   GoogleProxyURL,
	}
}

// Discover returns the URL of the best icon for pageURL.
func (f *Finder) Discover(ctx context.Context, pageURL string) (string, error) {
	resp, err := f.get(ctx, pageURL)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= http.StatusBadRequest {
		return "", fmt.Errorf("%w: HTTP %d", ErrUnreachable, resp.StatusCode)
	}

	base := resp.Request.URL
	doc, err := goquery.NewDocumentFromReader(io.LimitReader(resp.Body, maxPageBytes))
	if err == nil {
		if href := findInDocument(doc); href != "" {
			if abs, ok := resolve(base, href); ok {
				return abs, nil
			}
		}
	}

	root := &url.URL{Scheme: base.Scheme, Host: base.Host, Path: "/favicon.ico"}
	if f.exists(ctx, root.String()) {
		return root.String(), nil
	}

	if f.GoogleProxy {
		proxied := f.proxyBase + url.QueryEscape(base.Hostname())
		if f.exists(ctx, proxied) {
			return proxied, nil
		}
	}

	return "", fmt.Errorf("%w for %s", ErrNoIcon, pageURL)
}

// findInDocument returns the raw href/content of the first icon candidate.
func findInDocument(doc *goquery.Document) string {
	if content, ok := doc.Find(`meta[property="og:image"]`).First().Attr("content"); ok && strings.TrimSpace(content) != "" {
		return strings.TrimSpace(content)
	}

	links := doc.Find("link[rel]")
	for _, want := range iconRels {
		var found string
		links.EachWithBreak(func(_ int, s *goquery.Selection) bool {
			rel, _ := s.Attr("rel")
			href, ok := s.Attr("href")
			if !ok || strings.TrimSpace(href) == "" || !relMatches(rel, want) {
				return true
			}
			found = strings.TrimSpace(href)
			return false
		})
		if found != "" {
			return found
		}
	}

	if content, ok := doc.Find(`meta[name="msapplication-TileImage"]`).First().Attr("content"); ok {
		return strings.TrimSpace(content)
	}
	return ""
}

// relMatches compares a rel attribute with a wanted value. Multi-word
// values must match exactly; single words match any rel token.
func relMatches(rel, want string) bool {
	tokens := strings.Fields(strings.ToLower(rel))
	wantTokens := strings.Fields(strings.ToLower(want))
	if len(wantTokens) > 1 {
		return strings.Join(tokens, " ") == strings.Join(wantTokens, " ")
	}
	for _, t := range tokens {
		if t == wantTokens[0] {
			return true
		}
	}
	return false
}

func resolve(base *url.URL, href string) (string, bool) {
	if strings.HasPrefix(href, "data:") {
		return href, true
	}
	ref, err := url.Parse(href)
	if err != nil {
		return "", false
	}
	abs := base.ResolveReference(ref)
	if abs.Scheme != "http" && abs.Scheme != "https" {
		return "", false
	}
	return abs.String(), true
}

func (f *Finder) get(ctx context.Context, target string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	if f.UserAgent != "" {
		req.Header.Set("User-Agent", f.UserAgent)
	}
	return f.Client.Do(req)
}

// exists reports whether target answers 200.
func (f *Finder) exists(ctx context.Context, target string) bool {
	resp, err := f.get(ctx, target)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, maxIconBytes))
	return resp.StatusCode == http.StatusOK
}
