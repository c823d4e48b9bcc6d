package provider

import (
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/blaqmajik/laracasts-downloader/source"
)

// stubProvider is a canned resolution strategy for chain tests.
type stubProvider struct {
	name  string
	video *source.Video
	err   error
	calls int
}

func (s *stubProvider) Name() string { return s.name }

func (s *stubProvider) Resolve(string) (*source.Video, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.video, nil
}

func TestResolve(t *testing.T) {
	Convey("Given a page scheduled for a future date", t, func() {
		page := `<div data-release-date="2999-01-01">Coming soon</div>`
		stub := &stubProvider{name: "stub", video: &source.Video{URL: "u", Quality: 720}}
		resolver := NewResolverWith(stub)

		Convey("When resolving it", func() {
			media, err := resolver.Resolve(page)

			Convey("Then resolution should short-circuit before any provider runs", func() {
				So(media, ShouldBeNil)
				var scheduled *ScheduledError
				So(errors.As(err, &scheduled), ShouldBeTrue)
				So(scheduled.Date.Year(), ShouldEqual, 2999)
				So(stub.calls, ShouldEqual, 0)
			})
		})
	})

	Convey("Given a page whose release date has passed", t, func() {
		page := `<div data-release-date="2020-01-01"><div data-vimeo-id="1"></div></div>`
		stub := &stubProvider{name: "stub", video: &source.Video{URL: "u", Quality: 720}}
		resolver := NewResolverWith(stub)

		Convey("When resolving it", func() {
			media, err := resolver.Resolve(page)

			Convey("Then the provider chain should run normally", func() {
				So(err, ShouldBeNil)
				So(media.URL, ShouldEqual, "u")
				So(stub.calls, ShouldEqual, 1)
			})
		})
	})

	Convey("Given a chain where the primary has no candidate", t, func() {
		primary := &stubProvider{name: "primary", err: errNoCandidate}
		fallback := &stubProvider{name: "fallback", video: &source.Video{URL: "f", Quality: 540}}
		resolver := NewResolverWith(primary, fallback)

		Convey("When resolving", func() {
			media, err := resolver.Resolve("<p>page</p>")

			Convey("Then the fallback should supply the media", func() {
				So(err, ShouldBeNil)
				So(media.URL, ShouldEqual, "f")
				So(media.Quality, ShouldEqual, 540)
				So(media.Provider, ShouldEqual, "fallback")
				So(primary.calls, ShouldEqual, 1)
				So(fallback.calls, ShouldEqual, 1)
			})
		})
	})

	Convey("Given a chain where every provider comes up empty", t, func() {
		resolver := NewResolverWith(
			&stubProvider{name: "primary", err: errNoCandidate},
			&stubProvider{name: "fallback", err: errNoCandidate},
		)

		Convey("When resolving", func() {
			_, err := resolver.Resolve("<p>page</p>")

			Convey("Then the chain should report no download link", func() {
				So(err, ShouldEqual, ErrNoDownloadLink)
			})
		})
	})

	Convey("Given a primary that fails outright", t, func() {
		boom := errors.New("player page unreachable")
		primary := &stubProvider{name: "primary", err: boom}
		fallback := &stubProvider{name: "fallback", video: &source.Video{URL: "f"}}
		resolver := NewResolverWith(primary, fallback)

		Convey("When resolving", func() {
			_, err := resolver.Resolve("<p>page</p>")

			Convey("Then the failure should propagate instead of falling back", func() {
				So(errors.Is(err, boom), ShouldBeTrue)
				So(err.Error(), ShouldContainSubstring, "primary")
				So(fallback.calls, ShouldEqual, 0)
			})
		})
	})
}
