package domain

import (
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestArtifactName(t *testing.T) {
	Convey("Given the artifact naming scheme", t, func() {
		Convey("When naming a chitral_hive dump taken on 2025-03-14", func() {
			day := time.Date(2025, time.March, 14, 4, 30, 0, 0, time.UTC)
			name := ArtifactName("chitral_hive", day)

			Convey("It should produce prefix_date.sql.gz", func() {
				So(name, ShouldEqual, "chitral_hive_2025-03-14.sql.gz")
			})
		})

		Convey("When naming dumps at different times of the same day", func() {
			morning := time.Date(2025, time.December, 1, 2, 0, 0, 0, time.UTC)
			evening := time.Date(2025, time.December, 1, 23, 59, 59, 0, time.UTC)

			Convey("Both should map to the same artifact name", func() {
				So(ArtifactName("shop", morning), ShouldEqual, ArtifactName("shop", evening))
			})
		})

		Convey("When the day needs zero padding", func() {
			day := time.Date(2026, time.January, 5, 0, 0, 0, 0, time.UTC)

			Convey("The date part should be zero padded", func() {
				So(ArtifactName("db", day), ShouldEqual, "db_2026-01-05.sql.gz")
			})
		})
	})
}
