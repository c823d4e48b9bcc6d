package icon

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"

	"github.com/blaqmajik/laracasts-downloader/key"
)

func TestGet(t *testing.T) {
	Convey("Given a registered icon", t, func() {
		target := Download

		Convey("It renders for each variant", func() {
			for _, variant := range AvailableVariants() {
				Convey("variant="+variant, func() {
					viper.Set(key.IconsVariant, variant)
					So(Get(target), ShouldNotBeEmpty)
				})
			}
		})

		Convey("It falls back to plain for an unknown variant", func() {
			viper.Set(key.IconsVariant, "bogus")
			So(Get(target), ShouldEqual, "v")
		})
	})
}
