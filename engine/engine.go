package engine

import (
	"errors"
	"fmt"
	"net/url"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/blaqmajik/laracasts-downloader/download"
	"github.com/blaqmajik/laracasts-downloader/key"
	"github.com/blaqmajik/laracasts-downloader/ledger"
	"github.com/blaqmajik/laracasts-downloader/log"
	"github.com/blaqmajik/laracasts-downloader/network"
	"github.com/blaqmajik/laracasts-downloader/provider"
	"github.com/blaqmajik/laracasts-downloader/scrape"
	"github.com/blaqmajik/laracasts-downloader/site"
	"github.com/blaqmajik/laracasts-downloader/source"
	"github.com/blaqmajik/laracasts-downloader/util"
)

// Engine owns one session and runs download operations strictly sequentially:
// one page fetch, one resolution, one transfer at a time. It assumes it is
// the sole writer to every destination path it derives. Not safe for
// concurrent use; one caller goroutine per Engine.
type Engine struct {
	site     *site.Client
	resolver *provider.Resolver
	transfer *download.Transfer
	progress download.ProgressFunc

	downloadsDir string
	force        bool
}

// New assembles an engine around a fresh cookie session, reading its policy
// (retry toggle, force flag, destination directory) from configuration.
// The progress sink may be nil.
func New(progress download.ProgressFunc) *Engine {
	session := network.New()
	siteClient := site.New(session)

	return &Engine{
		site:         siteClient,
		resolver:     provider.NewResolver(session, siteClient.BaseURL()),
		transfer:     download.New(session, viper.GetBool(key.DownloadsRetry)),
		progress:     progress,
		downloadsDir: viper.GetString(key.DownloadsDir),
		force:        viper.GetBool(key.DownloadsForce),
	}
}

// Login authenticates the engine's session. Downloads issued without a
// successful login resolve against whatever the site serves anonymously,
// which in practice means preview pages without embeds.
func (e *Engine) Login(email, password string) (site.AuthResult, error) {
	return e.site.Login(email, password)
}

// DownloadEpisode fetches a series episode page, resolves its media, and
// transfers it. Every failure is contained in the returned Outcome so a
// caller iterating a series can continue with the remaining episodes.
func (e *Engine) DownloadEpisode(series string, number int) Outcome {
	episode := &source.Episode{
		Series: series,
		Number: number,
		Path:   fmt.Sprintf("/series/%s/episodes/%d", series, number),
	}
	return e.download(episode)
}

// DownloadLesson fetches a standalone lesson page, resolves its media, and
// transfers it, with the same failure containment as DownloadEpisode.
func (e *Engine) DownloadLesson(slug string) Outcome {
	episode := &source.Episode{
		Slug: slug,
		Path: "/lessons/" + slug,
	}
	return e.download(episode)
}

// DownloadSeries walks a series from episode 1 upward until the first page
// that does not exist, downloading each episode in turn. Per-episode failures
// are collected, not fatal; a transport failure ends the walk since the site
// itself is unreachable and higher episode numbers cannot fare better.
func (e *Engine) DownloadSeries(series string) []Outcome {
	var outcomes []Outcome

	for number := 1; ; number++ {
		outcome := e.DownloadEpisode(series, number)

		var notFound *site.PageNotFoundError
		if errors.As(outcome.Err, &notFound) {
			// First missing episode marks the end of the series.
			break
		}

		outcomes = append(outcomes, outcome)

		var transport *url.Error
		if errors.As(outcome.Err, &transport) {
			log.Errorf("aborting series walk at episode %d: %v", number, transport)
			break
		}
	}

	return outcomes
}

// download is the shared fetch → resolve → transfer pipeline.
func (e *Engine) download(episode *source.Episode) Outcome {
	item := episode.String()

	if !e.force && ledger.Contains(episode) {
		return Outcome{Status: Skipped, Item: item}
	}

	page, err := e.site.Fetch(episode.Path)
	if err != nil {
		// Not-found and transport failures alike abort only this item.
		log.Errorf("fetch %s: %v", episode.Path, err)
		return Outcome{Status: Failed, Item: item, Err: err}
	}

	episode.Name = scrape.EpisodeName(page.Body, episode.Path)
	destination := e.destination(episode)

	media, err := e.resolver.Resolve(page.Body)
	if err != nil {
		var scheduled *provider.ScheduledError
		if errors.As(err, &scheduled) {
			return Outcome{Status: NotYetAvailable, Item: item, ScheduledFor: scheduled.Date}
		}

		log.Errorf("resolve %s: %v", item, err)
		return Outcome{Status: Failed, Item: item, Err: err}
	}

	log.Infof("resolved %s via %s at %dp", item, media.Provider, media.Quality)

	if err := e.transfer.Run(media.URL, destination, e.progress); err != nil {
		if errors.Is(err, site.ErrSubscriptionNotActive) {
			return Outcome{Status: SubscriptionInactive, Item: item, Err: err}
		}

		log.Errorf("transfer %s: %v", item, err)
		return Outcome{Status: Failed, Item: item, Err: err}
	}

	if err := ledger.Save(episode, destination); err != nil {
		log.Warnf("record %s in ledger: %v", item, err)
	}

	return Outcome{Status: Success, Item: item, Destination: destination}
}

// destination derives the local path for an episode's media file.
func (e *Engine) destination(episode *source.Episode) string {
	name := util.SanitizeFilename(episode.Name)

	if episode.Series != "" {
		filename := fmt.Sprintf("%02d-%s.mp4", episode.Number, name)
		return filepath.Join(e.downloadsDir, util.SanitizeFilename(episode.Series), filename)
	}

	return filepath.Join(e.downloadsDir, "lessons", name+".mp4")
}
