package crawl

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
)

// maxBodyBytes caps how much of a response body is read. Pages larger than
// this are truncated rather than ballooning memory.
const maxBodyBytes = 10 << 20

// Page is one fetched and distilled web page.
type Page struct {
	// URL is the canonical page URL (fragment and query stripped).
	URL string

	// Title is the page title as reported by readability extraction.
	Title string

	// Text is the main content with boilerplate removed.
	Text string

	// Links are the canonicalized outbound links found on the page.
	Links []string
}

// Fetcher retrieves pages over HTTP and distills them.
type Fetcher struct {
	client    *http.Client
	userAgent string
}

// NewFetcher creates a fetcher using the given client and user-agent.
func NewFetcher(client *http.Client, userAgent string) *Fetcher {
	return &Fetcher{client: client, userAgent: userAgent}
}

// Fetch retrieves one page, extracts its main content with readability and
// collects its outbound links.
func (f *Fetcher) Fetch(ctx context.Context, pageURL string) (*Page, error) {
	body, err := f.get(ctx, pageURL)
	if err != nil {
		return nil, err
	}

	parsed, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetchFailed, err)
	}

	html := string(body)

	parser := readability.NewParser()
	article, err := parser.Parse(strings.NewReader(html), parsed)
	if err != nil {
		return nil, fmt.Errorf("%w: extracting content: %w", ErrFetchFailed, err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("%w: parsing HTML: %w", ErrFetchFailed, err)
	}

	var links []string
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, ok := s.Attr("href")
		if !ok {
			return
		}
		resolved, err := parsed.Parse(strings.TrimSpace(href))
		if err != nil {
			return
		}
		if resolved.Scheme != "http" && resolved.Scheme != "https" {
			return
		}
		links = append(links, Canonicalize(resolved))
	})

	return &Page{
		URL:   Canonicalize(parsed),
		Title: article.Title,
		Text:  strings.TrimSpace(article.TextContent),
		Links: links,
	}, nil
}

// get performs the HTTP request and reads the capped body.
func (f *Fetcher) get(ctx context.Context, pageURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetchFailed, err)
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetchFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s returned status %d", ErrFetchFailed, pageURL, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: reading body: %w", ErrFetchFailed, err)
	}
	return body, nil
}

// Canonicalize reduces a URL to its visit identity: scheme, host and path.
// Fragments and query strings are cosmetic variants of the same resource
// for crawling purposes and are stripped before visited-set comparison.
func Canonicalize(u *url.URL) string {
	c := *u
	c.Fragment = ""
	c.RawQuery = ""
	if c.Path == "" {
		c.Path = "/"
	}
	return c.String()
}
