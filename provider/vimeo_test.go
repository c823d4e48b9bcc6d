package provider

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"

	"github.com/blaqmajik/laracasts-downloader/key"
	"github.com/blaqmajik/laracasts-downloader/network"
)

func init() {
	viper.Set(key.NetworkFingerprint, false)
}

func progressiveConfig(variants ...string) vimeoConfig {
	doc := fmt.Sprintf(`{"request":{"files":{"progressive":[%s]}}}`, strings.Join(variants, ","))

	var config vimeoConfig
	if err := json.Unmarshal([]byte(doc), &config); err != nil {
		panic(err)
	}
	return config
}

func TestSelectBest(t *testing.T) {
	vimeo := &Vimeo{}

	Convey("Given progressive variants of mixed quality", t, func() {
		viper.Set(key.DownloadsQuality, 0)
		config := progressiveConfig(
			`{"url":"a","quality":"360p"}`,
			`{"url":"b","quality":"1080p"}`,
			`{"url":"c","quality":"720p"}`,
		)

		Convey("The strictly highest quality should win", func() {
			video, err := vimeo.selectBest(config)
			So(err, ShouldBeNil)
			So(video.URL, ShouldEqual, "b")
			So(video.Quality, ShouldEqual, 1080)
		})
	})

	Convey("Given two variants of equal quality", t, func() {
		viper.Set(key.DownloadsQuality, 0)
		config := progressiveConfig(
			`{"url":"first","quality":"1080p"}`,
			`{"url":"second","quality":"1080p"}`,
		)

		Convey("The first one encountered should win", func() {
			video, err := vimeo.selectBest(config)
			So(err, ShouldBeNil)
			So(video.URL, ShouldEqual, "first")
		})
	})

	Convey("Given a configured quality cap", t, func() {
		viper.Set(key.DownloadsQuality, 720)
		config := progressiveConfig(
			`{"url":"a","quality":"360p"}`,
			`{"url":"b","quality":"1080p"}`,
			`{"url":"c","quality":"720p"}`,
		)

		Convey("Variants above the cap should be skipped", func() {
			video, err := vimeo.selectBest(config)
			So(err, ShouldBeNil)
			So(video.URL, ShouldEqual, "c")
			So(video.Quality, ShouldEqual, 720)
		})

		Convey("A cap below every variant should yield no candidate", func() {
			viper.Set(key.DownloadsQuality, 240)
			_, err := vimeo.selectBest(config)
			So(err, ShouldEqual, errNoCandidate)
		})
	})

	Convey("Given the quality shapes the player has shipped", t, func() {
		viper.Set(key.DownloadsQuality, 0)
		config := progressiveConfig(
			`{"url":"bare","quality":540}`,
			`{"url":"string","quality":"720"}`,
			`{"url":"label","quality":"1080p"}`,
		)

		Convey("All of them should parse", func() {
			video, err := vimeo.selectBest(config)
			So(err, ShouldBeNil)
			So(video.URL, ShouldEqual, "label")
		})
	})
}

func TestVimeoResolve(t *testing.T) {
	Convey("Given a player page with an inline config", t, func() {
		viper.Set(key.DownloadsQuality, 0)

		var referer, accept string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			referer = r.Header.Get("Referer")
			accept = r.Header.Get("Accept")
			fmt.Fprint(w, `<script>
				var config = {"request":{"files":{"progressive":[
					{"url":"https://cdn.example/v.mp4","quality":"720p"}
				]}}};
			</script>`)
		}))
		defer server.Close()

		vimeo := &Vimeo{
			session:   network.New(),
			referer:   "https://site.example/",
			playerURL: server.URL + "/video/%s?app_id=%s",
		}

		Convey("When resolving a page with an embedded id", func() {
			video, err := vimeo.Resolve(`<div data-vimeo-id="42"></div>`)

			Convey("Then the progressive variant should come back", func() {
				So(err, ShouldBeNil)
				So(video.URL, ShouldEqual, "https://cdn.example/v.mp4")
				So(video.Quality, ShouldEqual, 720)
			})

			Convey("And the player request should carry the embed headers", func() {
				So(referer, ShouldEqual, "https://site.example/")
				So(accept, ShouldEqual, "*/*")
			})
		})

		Convey("When resolving a page without an embed", func() {
			_, err := vimeo.Resolve("<p>nothing</p>")

			Convey("Then the provider should yield no candidate", func() {
				So(err, ShouldEqual, errNoCandidate)
			})
		})
	})

	Convey("Given a player page without an inline config", t, func() {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, "<html>blocked</html>")
		}))
		defer server.Close()

		vimeo := &Vimeo{
			session:   network.New(),
			referer:   "https://site.example/",
			playerURL: server.URL + "/video/%s?app_id=%s",
		}

		Convey("When resolving", func() {
			_, err := vimeo.Resolve(`<div data-vimeo-id="42"></div>`)

			Convey("Then the provider should yield no candidate", func() {
				So(err, ShouldEqual, errNoCandidate)
			})
		})
	})
}
