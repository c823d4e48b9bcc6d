// Package site implements the authenticated page-fetch surface of the video-hosting site.
//
// The site renders everything server-side and signals "not found" and
// "inaccessible" by redirecting instead of returning an error status, so the
// fetch path never follows redirects: any redirect from a lesson or episode
// route is classified as PageNotFoundError.
package site

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/blaqmajik/laracasts-downloader/key"
	"github.com/blaqmajik/laracasts-downloader/log"
	"github.com/blaqmajik/laracasts-downloader/network"
	"github.com/spf13/viper"
)

// PageNotFoundError reports a redirect encountered where a rendered page was expected.
type PageNotFoundError struct {
	Path string
}

func (e *PageNotFoundError) Error() string {
	return fmt.Sprintf("page not found: %s", e.Path)
}

// Page is the transient result of one fetch. A non-redirect status implies
// Body is the final rendered page.
type Page struct {
	StatusCode int
	Body       string
}

// Client fetches pages from the site through a shared cookie session.
type Client struct {
	session *network.Session
	baseURL string
}

// New creates a site client bound to the given session. The base URL comes
// from configuration so tests can point it at a local server.
func New(session *network.Session) *Client {
	return &Client{
		session: session,
		baseURL: strings.TrimRight(viper.GetString(key.SiteURL), "/"),
	}
}

// BaseURL returns the configured site root, without a trailing slash.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Session exposes the underlying cookie session for collaborators that talk
// to the video providers directly.
func (c *Client) Session() *network.Session {
	return c.session
}

// Fetch issues a GET for a site-relative path and returns the rendered page.
//
// Redirect responses ("found" class) fail with PageNotFoundError: on this
// site a redirect from a content route means the resource does not exist or
// is not accessible to the account, never "follow me". Set-Cookie data is
// absorbed into the session as a side effect. No retry happens here; retries
// belong to the transfer stage only.
func (c *Client) Fetch(path string) (*Page, error) {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	req, err := c.session.NewRequest(http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := c.session.DoPage(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 && resp.StatusCode < 400 {
		log.Debugf("redirect %d from %s, treating as not found", resp.StatusCode, path)
		return nil, &PageNotFoundError{Path: path}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	return &Page{StatusCode: resp.StatusCode, Body: string(body)}, nil
}
