package provider

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"github.com/blaqmajik/laracasts-downloader/key"
	"github.com/blaqmajik/laracasts-downloader/log"
	"github.com/blaqmajik/laracasts-downloader/network"
	"github.com/blaqmajik/laracasts-downloader/scrape"
	"github.com/blaqmajik/laracasts-downloader/source"
	"github.com/spf13/viper"
)

// Fixed query parameters of the site's Vimeo account. The app_id belongs to
// the site, not to us; changing it makes the player page refuse to render.
const (
	vimeoPlayerURL = "https://player.vimeo.com/video/%s?speed=1&color=00b1b3&autoplay=1&app_id=%s"
	vimeoAppID     = "122963"
)

// vimeoConfigRe locates the inline player configuration object. The player
// page assigns it with a literal `config = { ... };` statement.
var vimeoConfigRe = regexp.MustCompile(`(?s)config = (\{.+?\});`)

// Vimeo resolves the primary provider's embedded player.
type Vimeo struct {
	session   *network.Session
	referer   string
	playerURL string
}

// NewVimeo creates the primary provider strategy. The referer must look like
// the embedding site's origin or the player page rejects the request.
func NewVimeo(session *network.Session, siteURL string) *Vimeo {
	return &Vimeo{
		session:   session,
		referer:   strings.TrimRight(siteURL, "/") + "/",
		playerURL: vimeoPlayerURL,
	}
}

func (v *Vimeo) Name() string { return "vimeo" }

// vimeoQuality tolerates the three shapes the player config has shipped over
// time: a bare number, a numeric string, and a "1080p" label.
type vimeoQuality int

func (q *vimeoQuality) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	s = strings.TrimSuffix(s, "p")
	n, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("quality %q: %w", s, err)
	}
	*q = vimeoQuality(n)
	return nil
}

// vimeoConfig mirrors the slice of the player configuration we consume:
// the progressive (non-adaptive) file list with per-variant quality.
type vimeoConfig struct {
	Request struct {
		Files struct {
			Progressive []struct {
				URL     string       `json:"url"`
				Quality vimeoQuality `json:"quality"`
			} `json:"progressive"`
		} `json:"files"`
	} `json:"request"`
}

// Resolve extracts the embedded player id from the page, fetches the player
// page with the required headers, parses the inline config, and selects the
// progressive variant with the strictly highest quality.
func (v *Vimeo) Resolve(pageBody string) (*source.Video, error) {
	id, ok := scrape.VimeoID(pageBody).Get()
	if !ok {
		return nil, errNoCandidate
	}

	playerBody, err := v.fetchPlayerPage(id)
	if err != nil {
		return nil, err
	}

	match := vimeoConfigRe.FindStringSubmatch(playerBody)
	if match == nil {
		log.Warnf("no inline config on player page for video %s", id)
		return nil, errNoCandidate
	}

	var config vimeoConfig
	if err := json.Unmarshal([]byte(match[1]), &config); err != nil {
		return nil, fmt.Errorf("parse player config: %w", err)
	}

	return v.selectBest(config)
}

func (v *Vimeo) fetchPlayerPage(id string) (string, error) {
	req, err := v.session.NewRequest(http.MethodGet, fmt.Sprintf(v.playerURL, id, vimeoAppID), nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Referer", v.referer)
	req.Header.Set("Accept", "*/*")

	resp, err := v.session.DoMedia(req)
	if err != nil {
		return "", fmt.Errorf("fetch player page: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read player page: %w", err)
	}
	return string(body), nil
}

// selectBest picks the variant with the strictly highest quality. A later
// variant replaces the current best only when strictly greater, so the first
// of two equal-quality variants wins. Variants above the configured quality
// cap are skipped entirely.
func (v *Vimeo) selectBest(config vimeoConfig) (*source.Video, error) {
	maxQuality := viper.GetInt(key.DownloadsQuality)

	var best *source.Video
	for _, file := range config.Request.Files.Progressive {
		quality := int(file.Quality)
		if maxQuality > 0 && quality > maxQuality {
			continue
		}
		if best == nil || quality > best.Quality {
			best = &source.Video{URL: file.URL, Quality: quality}
		}
	}

	if best == nil {
		return nil, errNoCandidate
	}

	log.Debugf("vimeo selected %dp of %d progressive variants", best.Quality, len(config.Request.Files.Progressive))
	return best, nil
}
