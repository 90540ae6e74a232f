package credentials

import (
	"os"
	"path/filepath"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func writePgpass(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pgpass")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestPgpassProvider(t *testing.T) {
	Convey("Given a pgpass password file", t, func() {
		Convey("When an exact entry matches", func() {
			path := writePgpass(t, "db.internal:5432:chitral_hive:chitral_hive:s3cret\n")
			provider, err := NewPgpass(path)
			So(err, ShouldBeNil)

			password, err := provider.Lookup("db.internal", 5432, "chitral_hive", "chitral_hive")

			Convey("It should return the password", func() {
				So(err, ShouldBeNil)
				So(password, ShouldEqual, "s3cret")
			})
		})

		Convey("When the file uses wildcards", func() {
			path := writePgpass(t, "*:*:chitral_hive:*:wildpass\n")
			provider, _ := NewPgpass(path)

			password, err := provider.Lookup("anywhere", 5433, "chitral_hive", "anyone")

			Convey("It should match any host, port and user", func() {
				So(err, ShouldBeNil)
				So(password, ShouldEqual, "wildpass")
			})
		})

		Convey("When fields contain escaped separators", func() {
			path := writePgpass(t, `localhost:5432:chitral_hive:svc:pa\:ss\\word` + "\n")
			provider, _ := NewPgpass(path)

			password, err := provider.Lookup("localhost", 5432, "chitral_hive", "svc")

			Convey("It should unescape the password field", func() {
				So(err, ShouldBeNil)
				So(password, ShouldEqual, `pa:ss\word`)
			})
		})

		Convey("When the file has comments, blanks and a later match", func() {
			path := writePgpass(t, `
# production credentials
other:5432:otherdb:u:nope

localhost:5432:chitral_hive:chitral_hive:found
`)
			provider, _ := NewPgpass(path)

			password, err := provider.Lookup("localhost", 5432, "chitral_hive", "chitral_hive")

			Convey("It should skip non-matching lines and return the match", func() {
				So(err, ShouldBeNil)
				So(password, ShouldEqual, "found")
			})
		})

		Convey("When no entry matches", func() {
			path := writePgpass(t, "localhost:5432:chitral_hive:chitral_hive:secret\n")
			provider, _ := NewPgpass(path)

			_, err := provider.Lookup("localhost", 5432, "unknown_db", "chitral_hive")

			Convey("It should fail without leaking any password", func() {
				So(err, ShouldNotBeNil)
				So(err.Error(), ShouldContainSubstring, "no password entry")
				So(err.Error(), ShouldNotContainSubstring, "secret")
			})
		})

		Convey("When the password file does not exist", func() {
			provider, _ := NewPgpass(filepath.Join(t.TempDir(), "missing"))

			_, err := provider.Lookup("localhost", 5432, "chitral_hive", "chitral_hive")

			Convey("It should return an open error", func() {
				So(err, ShouldNotBeNil)
				So(err.Error(), ShouldContainSubstring, "open password file")
			})
		})
	})
}
