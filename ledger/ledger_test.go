package ledger

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/blaqmajik/laracasts-downloader/filesystem"
	"github.com/blaqmajik/laracasts-downloader/source"
)

func init() {
	filesystem.SetMemMapFs()
}

func TestLedger(t *testing.T) {
	Convey("Given an episode", t, func() {
		episode := &source.Episode{
			Series: "laravel-from-scratch",
			Number: 7,
			Name:   "Blade Layouts",
			Path:   "/series/laravel-from-scratch/episodes/7",
		}

		Convey("When saving a completed download", func() {
			err := Save(episode, "/downloads/laravel-from-scratch/07-Blade_Layouts.mp4")

			Convey("Then the error should be nil", func() {
				So(err, ShouldBeNil)

				Convey("And the episode should be recorded", func() {
					So(Contains(episode), ShouldBeTrue)

					records, err := Get()
					So(err, ShouldBeNil)
					record := records[episode.Key()]
					So(record, ShouldNotBeNil)
					So(record.Name, ShouldEqual, "Blade Layouts")
					So(record.Destination, ShouldEqual, "/downloads/laravel-from-scratch/07-Blade_Layouts.mp4")
					So(record.CompletedAt.IsZero(), ShouldBeFalse)
				})

				Convey("And removing it should forget it", func() {
					So(Remove(episode), ShouldBeNil)
					So(Contains(episode), ShouldBeFalse)
				})
			})
		})

		Convey("When nothing was saved for a lesson", func() {
			lesson := &source.Episode{Slug: "regex-basics", Path: "/lessons/regex-basics"}

			Convey("Then the ledger should not contain it", func() {
				So(Contains(lesson), ShouldBeFalse)
			})
		})
	})
}
