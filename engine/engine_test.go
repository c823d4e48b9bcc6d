package engine

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"

	"github.com/blaqmajik/laracasts-downloader/download"
	"github.com/blaqmajik/laracasts-downloader/filesystem"
	"github.com/blaqmajik/laracasts-downloader/key"
	"github.com/blaqmajik/laracasts-downloader/ledger"
	"github.com/blaqmajik/laracasts-downloader/network"
	"github.com/blaqmajik/laracasts-downloader/provider"
	"github.com/blaqmajik/laracasts-downloader/site"
	"github.com/blaqmajik/laracasts-downloader/source"
)

func init() {
	filesystem.SetMemMapFs()
	viper.Set(key.NetworkFingerprint, false)
}

// stubProvider hands back a fixed media URL for every page.
type stubProvider struct {
	url   string
	calls int
}

func (s *stubProvider) Name() string { return "stub" }

func (s *stubProvider) Resolve(string) (*source.Video, error) {
	s.calls++
	return &source.Video{URL: s.url, Quality: 1080}, nil
}

// newTestEngine wires an engine against a local server, resolving every page
// through the given provider.
func newTestEngine(server *httptest.Server, stub provider.Provider, downloadsDir string, force bool) *Engine {
	viper.Set(key.SiteURL, server.URL)
	session := network.New()

	return &Engine{
		site:         site.New(session),
		resolver:     provider.NewResolverWith(stub),
		transfer:     download.New(session, false),
		downloadsDir: downloadsDir,
		force:        force,
	}
}

func TestDownloadEpisode(t *testing.T) {
	Convey("Given an episode page with embedded media", t, func() {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.URL.Path {
			case "/series/basics/episodes/3":
				fmt.Fprint(w, "<h1>Routing Basics</h1>")
			case "/media":
				w.Header().Set("Content-Type", "video/mp4")
				fmt.Fprint(w, "binary media")
			default:
				http.Redirect(w, r, "/browse", http.StatusFound)
			}
		}))
		defer server.Close()

		stub := &stubProvider{url: server.URL + "/media"}
		engine := newTestEngine(server, stub, "/dl/success", true)

		Convey("When downloading it", func() {
			outcome := engine.DownloadEpisode("basics", 3)

			Convey("Then the pipeline should complete", func() {
				So(outcome.Status, ShouldEqual, Success)
				So(outcome.Destination, ShouldEqual, "/dl/success/basics/03-Routing_Basics.mp4")

				written, err := filesystem.API().ReadFile(outcome.Destination)
				So(err, ShouldBeNil)
				So(string(written), ShouldEqual, "binary media")
			})

			Convey("And the ledger should remember it", func() {
				So(ledger.Contains(&source.Episode{Series: "basics", Number: 3}), ShouldBeTrue)
			})
		})
	})

	Convey("Given an episode page that does not exist", t, func() {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, "/browse", http.StatusFound)
		}))
		defer server.Close()

		stub := &stubProvider{url: "unused"}
		engine := newTestEngine(server, stub, "/dl/missing", true)

		Convey("When downloading it", func() {
			outcome := engine.DownloadEpisode("gone", 1)

			Convey("Then the outcome should fail with not found", func() {
				So(outcome.Status, ShouldEqual, Failed)
				var notFound *site.PageNotFoundError
				So(errors.As(outcome.Err, &notFound), ShouldBeTrue)
			})

			Convey("And nothing should be resolved or written", func() {
				So(stub.calls, ShouldEqual, 0)
				exists, _ := filesystem.API().DirExists("/dl/missing")
				So(exists, ShouldBeFalse)
			})
		})
	})

	Convey("Given an episode scheduled for the future", t, func() {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `<h1>Coming Soon</h1><div data-release-date="2999-06-01"></div>`)
		}))
		defer server.Close()

		stub := &stubProvider{url: "unused"}
		engine := newTestEngine(server, stub, "/dl/scheduled", true)

		Convey("When downloading it", func() {
			outcome := engine.DownloadEpisode("upcoming", 1)

			Convey("Then the outcome should carry the release date", func() {
				So(outcome.Status, ShouldEqual, NotYetAvailable)
				So(outcome.ScheduledFor.Year(), ShouldEqual, 2999)
				So(stub.calls, ShouldEqual, 0)
			})
		})
	})

	Convey("Given a subscription that lapses mid-transfer", t, func() {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.URL.Path {
			case "/media":
				w.Header().Set("Content-Type", "text/html")
				fmt.Fprint(w, "<h1>Reactivate your subscription</h1>")
			default:
				fmt.Fprint(w, "<h1>Some Episode</h1>")
			}
		}))
		defer server.Close()

		stub := &stubProvider{url: server.URL + "/media"}
		engine := newTestEngine(server, stub, "/dl/lapsed", true)

		Convey("When downloading", func() {
			outcome := engine.DownloadEpisode("basics", 1)

			Convey("Then the outcome should report the inactive subscription", func() {
				So(outcome.Status, ShouldEqual, SubscriptionInactive)
				So(errors.Is(outcome.Err, site.ErrSubscriptionNotActive), ShouldBeTrue)
			})
		})
	})

	Convey("Given an episode already in the ledger", t, func() {
		requests := 0
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requests++
			fmt.Fprint(w, "<h1>Already Done</h1>")
		}))
		defer server.Close()

		episode := &source.Episode{Series: "done-before", Number: 1, Path: "/series/done-before/episodes/1"}
		So(ledger.Save(episode, "/dl/earlier.mp4"), ShouldBeNil)

		stub := &stubProvider{url: "unused"}

		Convey("When downloading without force", func() {
			engine := newTestEngine(server, stub, "/dl/skip", false)
			outcome := engine.DownloadEpisode("done-before", 1)

			Convey("Then the episode should be skipped without touching the site", func() {
				So(outcome.Status, ShouldEqual, Skipped)
				So(requests, ShouldEqual, 0)
			})
		})

		Convey("When downloading with force", func() {
			engine := newTestEngine(server, stub, "/dl/skip", true)
			_ = engine.DownloadEpisode("done-before", 1)

			Convey("Then the page should be fetched again", func() {
				So(requests, ShouldBeGreaterThan, 0)
			})
		})
	})
}

func TestDownloadLesson(t *testing.T) {
	Convey("Given a standalone lesson", t, func() {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.URL.Path {
			case "/lessons/regex-basics":
				fmt.Fprint(w, "<h1>Regex Basics</h1>")
			case "/media":
				w.Header().Set("Content-Type", "video/mp4")
				fmt.Fprint(w, "lesson media")
			}
		}))
		defer server.Close()

		stub := &stubProvider{url: server.URL + "/media"}
		engine := newTestEngine(server, stub, "/dl/lesson", true)

		Convey("When downloading it", func() {
			outcome := engine.DownloadLesson("regex-basics")

			Convey("Then the media should land under the lessons directory", func() {
				So(outcome.Status, ShouldEqual, Success)
				So(outcome.Destination, ShouldEqual, "/dl/lesson/lessons/Regex_Basics.mp4")

				written, err := filesystem.API().ReadFile(outcome.Destination)
				So(err, ShouldBeNil)
				So(string(written), ShouldEqual, "lesson media")
			})
		})
	})
}

func TestDownloadSeries(t *testing.T) {
	Convey("Given a series with two episodes", t, func() {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.URL.Path {
			case "/series/short-run/episodes/1":
				fmt.Fprint(w, "<h1>Ep One</h1>")
			case "/series/short-run/episodes/2":
				fmt.Fprint(w, "<h1>Ep Two</h1>")
			case "/media":
				w.Header().Set("Content-Type", "video/mp4")
				fmt.Fprint(w, "series media")
			default:
				http.Redirect(w, r, "/browse", http.StatusFound)
			}
		}))
		defer server.Close()

		stub := &stubProvider{url: server.URL + "/media"}
		engine := newTestEngine(server, stub, "/dl/series", true)

		Convey("When downloading the whole series", func() {
			outcomes := engine.DownloadSeries("short-run")

			Convey("Then the walk should stop at the first missing episode", func() {
				So(len(outcomes), ShouldEqual, 2)
				So(outcomes[0].Status, ShouldEqual, Success)
				So(outcomes[1].Status, ShouldEqual, Success)
				So(outcomes[0].Destination, ShouldEqual, "/dl/series/short-run/01-Ep_One.mp4")
				So(outcomes[1].Destination, ShouldEqual, "/dl/series/short-run/02-Ep_Two.mp4")
			})
		})
	})

	Convey("Given a site that is unreachable", t, func() {
		// Closing the server up front turns every request into a refused
		// connection, the same shape as the site being down.
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		server.Close()

		stub := &stubProvider{url: "unused"}
		engine := newTestEngine(server, stub, "/dl/unreachable", true)

		Convey("When downloading a series", func() {
			outcomes := engine.DownloadSeries("offline")

			Convey("Then the walk should end at the first transport failure", func() {
				So(len(outcomes), ShouldEqual, 1)
				So(outcomes[0].Status, ShouldEqual, Failed)

				var transport *url.Error
				So(errors.As(outcomes[0].Err, &transport), ShouldBeTrue)
				So(stub.calls, ShouldEqual, 0)
			})
		})
	})
}
