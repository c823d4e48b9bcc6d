// Package provider resolves a fetched lesson or episode page into a directly playable media URL.
//
// The site hosts its videos behind one of two backends with incompatible page
// and response shapes, so resolution is provider-specific strategy selection
// rather than one generic parser. The primary provider (Vimeo, embedded via a
// player URL carrying the site's fixed application identifier) is tried first;
// the fallback (Wistia) is queried only when the primary yields no candidate.
// This is the part of the system most likely to break when either provider
// changes its markup.
package provider

import (
	"errors"
	"fmt"
	"time"

	"github.com/blaqmajik/laracasts-downloader/log"
	"github.com/blaqmajik/laracasts-downloader/network"
	"github.com/blaqmajik/laracasts-downloader/scrape"
	"github.com/blaqmajik/laracasts-downloader/source"
)

// ErrNoDownloadLink reports that no provider yielded a media URL after
// exhausting the fallback chain.
var ErrNoDownloadLink = errors.New("no download link found")

// errNoCandidate is the internal signal that one provider produced nothing
// usable and the next one should be tried.
var errNoCandidate = errors.New("no candidate")

// ScheduledError short-circuits resolution for episodes the site lists with a
// future release date. No provider is queried in that case.
type ScheduledError struct {
	Date time.Time
}

func (e *ScheduledError) Error() string {
	return fmt.Sprintf("not yet available, scheduled for %s", e.Date.Format("2006-01-02"))
}

// Provider is one video-hosting backend's resolution strategy.
type Provider interface {
	// Name returns the backend identifier used in logs and outcomes.
	Name() string

	// Resolve extracts this backend's embed from the page body and returns the
	// best playable variant, or errNoCandidate when the page carries no usable
	// embed for this backend.
	Resolve(pageBody string) (*source.Video, error)
}

// Resolver runs the provider chain against fetched page bodies.
type Resolver struct {
	providers []Provider
}

// NewResolver builds the default chain: Vimeo first, Wistia as fallback.
// The session is shared so provider requests carry the site's cookies.
func NewResolver(session *network.Session, siteURL string) *Resolver {
	return NewResolverWith(
		NewVimeo(session, siteURL),
		NewWistia(session),
	)
}

// NewResolverWith builds a resolver over an explicit provider chain, tried in order.
func NewResolverWith(providers ...Provider) *Resolver {
	return &Resolver{providers: providers}
}

// Resolve turns a page body into a ResolvedMedia.
//
// The schedule check runs before any provider: a page carrying a future
// release date yields ScheduledError without network traffic. Providers are
// then tried in order; the first candidate wins. If every provider comes up
// empty the caller gets ErrNoDownloadLink.
func (r *Resolver) Resolve(pageBody string) (*source.ResolvedMedia, error) {
	if date, ok := scrape.ScheduledDate(pageBody).Get(); ok {
		if date.After(time.Now()) {
			return nil, &ScheduledError{Date: date}
		}
	}

	for _, p := range r.providers {
		video, err := p.Resolve(pageBody)
		if err != nil {
			if errors.Is(err, errNoCandidate) {
				log.Debugf("%s yielded no candidate, trying next provider", p.Name())
				continue
			}
			return nil, fmt.Errorf("%s: %w", p.Name(), err)
		}

		return &source.ResolvedMedia{
			URL:      video.URL,
			Quality:  video.Quality,
			Provider: p.Name(),
		}, nil
	}

	return nil, ErrNoDownloadLink
}
