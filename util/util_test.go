package util

import (
	"regexp"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestSanitizeFilename(t *testing.T) {
	Convey("SanitizeFilename", t, func() {
		Convey("Should replace invalid chars", func() {
			So(SanitizeFilename("file:name?.txt"), ShouldEqual, "file_name_.txt")
		})
		Convey("Should collapse underscores", func() {
			So(SanitizeFilename("file__name.txt"), ShouldEqual, "file_name.txt")
		})
		Convey("Should trim separators", func() {
			So(SanitizeFilename("-file-name-"), ShouldEqual, "file-name")
		})
		Convey("Should flatten episode titles", func() {
			So(SanitizeFilename("What's New in PHP 8: Constructor Promotion"), ShouldEqual, "What_s_New_in_PHP_8_Constructor_Promotion")
		})
	})
}

func TestQuantify(t *testing.T) {
	Convey("Quantify", t, func() {
		So(Quantify(1, "episode", "episodes"), ShouldEqual, "1 episode")
		So(Quantify(2, "episode", "episodes"), ShouldEqual, "2 episodes")
	})
}

func TestReGroups(t *testing.T) {
	Convey("ReGroups", t, func() {
		re := regexp.MustCompile(`(?P<first>\w+)\s(?P<last>\w+)`)
		groups := ReGroups(re, "John Doe")
		So(groups["first"], ShouldEqual, "John")
		So(groups["last"], ShouldEqual, "Doe")
	})
}

func TestFileStem(t *testing.T) {
	Convey("FileStem", t, func() {
		So(FileStem("path/to/file.txt"), ShouldEqual, "file")
		So(FileStem("file"), ShouldEqual, "file")
		So(FileStem("/series/foo/episodes/3"), ShouldEqual, "3")
	})
}

func TestMin(t *testing.T) {
	Convey("Min", t, func() {
		So(Min(1, 5, 2), ShouldEqual, 1)
		So(Min(7), ShouldEqual, 7)
	})
}
