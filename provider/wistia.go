package provider

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/blaqmajik/laracasts-downloader/log"
	"github.com/blaqmajik/laracasts-downloader/network"
	"github.com/blaqmajik/laracasts-downloader/scrape"
	"github.com/blaqmajik/laracasts-downloader/source"
)

const wistiaMediaURL = "https://fast.wistia.net/embed/medias/%s.json"

// Wistia resolves the fallback provider. Older lessons are hosted here, and
// unlike the primary provider the media description is a plain JSON document.
type Wistia struct {
	session  *network.Session
	mediaURL string
}

// NewWistia creates the fallback provider strategy.
func NewWistia(session *network.Session) *Wistia {
	return &Wistia{session: session, mediaURL: wistiaMediaURL}
}

func (w *Wistia) Name() string { return "wistia" }

type wistiaMedia struct {
	Media struct {
		Assets []struct {
			URL         string `json:"url"`
			ContentType string `json:"contentType"`
			Height      int    `json:"height"`
		} `json:"assets"`
	} `json:"media"`
}

// Resolve extracts the Wistia embed hash from the page and resolves the
// direct media URL through the embed-media JSON document, preferring the
// tallest mp4 asset.
func (w *Wistia) Resolve(pageBody string) (*source.Video, error) {
	id, ok := scrape.WistiaID(pageBody).Get()
	if !ok {
		return nil, errNoCandidate
	}

	req, err := w.session.NewRequest(http.MethodGet, fmt.Sprintf(w.mediaURL, id), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := w.session.DoMedia(req)
	if err != nil {
		return nil, fmt.Errorf("fetch media document: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Warnf("wistia media document for %s returned %d", id, resp.StatusCode)
		return nil, errNoCandidate
	}

	var media wistiaMedia
	if err := json.NewDecoder(resp.Body).Decode(&media); err != nil {
		return nil, fmt.Errorf("parse media document: %w", err)
	}

	var best *source.Video
	for _, asset := range media.Media.Assets {
		if asset.ContentType != "video/mp4" || asset.URL == "" {
			continue
		}
		if best == nil || asset.Height > best.Quality {
			best = &source.Video{URL: asset.URL, Quality: asset.Height}
		}
	}

	if best == nil {
		return nil, errNoCandidate
	}
	return best, nil
}
