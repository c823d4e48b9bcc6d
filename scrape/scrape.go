// Package scrape extracts the handful of values the downloader needs out of the site's rendered pages.
//
// Everything here is deliberately tolerant: the site ships server-rendered
// markup with no stable API, so each extractor tries a structured goquery
// lookup first and degrades to pattern matching on the raw text.
package scrape

import (
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/samber/mo"

	"github.com/blaqmajik/laracasts-downloader/util"
)

var (
	vimeoIDRe   = regexp.MustCompile(`vimeo(?:-id|Id)["'=:\s]+["']?(?P<id>\d+)`)
	vimeoURLRe  = regexp.MustCompile(`player\.vimeo\.com/video/(?P<id>\d+)`)
	wistiaRe    = regexp.MustCompile(`wistia_async_(?P<id>[a-z0-9]+)`)
	wistiaURLRe = regexp.MustCompile(`fast\.wistia\.(?:net|com)/embed/(?:iframe|medias)/(?P<id>[a-z0-9]+)`)
	releaseRe   = regexp.MustCompile(`data-release-date=["'](?P<date>[^"']+)["']`)
)

// document parses html leniently; goquery never fails on malformed markup,
// it produces a best-effort tree instead.
func document(html string) *goquery.Document {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}
	return doc
}

// Token extracts the anti-forgery token from a login page body.
// It prefers the hidden form input and falls back to the csrf meta tag.
func Token(html string) mo.Option[string] {
	doc := document(html)
	if doc == nil {
		return mo.None[string]()
	}

	if value, ok := doc.Find(`input[name="_token"]`).First().Attr("value"); ok && value != "" {
		return mo.Some(value)
	}

	if value, ok := doc.Find(`meta[name="csrf-token"]`).First().Attr("content"); ok && value != "" {
		return mo.Some(value)
	}

	return mo.None[string]()
}

// EpisodeName derives a display name for an episode or lesson page.
// The h1 heading wins, then the document title stripped of site branding;
// the request path's last segment is the fallback of last resort.
func EpisodeName(html, path string) string {
	if doc := document(html); doc != nil {
		if h1 := strings.TrimSpace(doc.Find("h1").First().Text()); h1 != "" {
			return h1
		}

		title := strings.TrimSpace(doc.Find("title").First().Text())
		if title != "" {
			// "Episode Title - Laracasts" → "Episode Title"
			if idx := strings.LastIndex(title, " - "); idx > 0 {
				title = title[:idx]
			}
			return strings.TrimSpace(title)
		}
	}

	return util.FileStem(strings.TrimRight(path, "/"))
}

// ScheduledDate reports the release date for episodes the site lists as upcoming.
// Absent means the episode is already out.
func ScheduledDate(html string) mo.Option[time.Time] {
	raw := ""

	if doc := document(html); doc != nil {
		if value, ok := doc.Find("[data-release-date]").First().Attr("data-release-date"); ok {
			raw = value
		}
	}

	if raw == "" {
		groups := util.ReGroups(releaseRe, html)
		raw = groups["date"]
	}

	if raw == "" {
		return mo.None[time.Time]()
	}

	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if date, err := time.Parse(layout, raw); err == nil {
			return mo.Some(date)
		}
	}

	return mo.None[time.Time]()
}

// VimeoID extracts the embedded Vimeo player identifier from a page body.
func VimeoID(html string) mo.Option[string] {
	if doc := document(html); doc != nil {
		if value, ok := doc.Find("[data-vimeo-id]").First().Attr("data-vimeo-id"); ok && value != "" {
			return mo.Some(value)
		}
	}

	for _, re := range []*regexp.Regexp{vimeoIDRe, vimeoURLRe} {
		if id := util.ReGroups(re, html)["id"]; id != "" {
			return mo.Some(id)
		}
	}

	return mo.None[string]()
}

// WistiaID extracts the embedded Wistia media identifier from a page body.
func WistiaID(html string) mo.Option[string] {
	for _, re := range []*regexp.Regexp{wistiaRe, wistiaURLRe} {
		if id := util.ReGroups(re, html)["id"]; id != "" {
			return mo.Some(id)
		}
	}

	return mo.None[string]()
}
