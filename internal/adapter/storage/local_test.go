package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestLocalStorage(t *testing.T) {
	Convey("Given a LocalStorage", t, func() {
		tempDir := t.TempDir()

		Convey("NewLocal", func() {
			Convey("When creating with an existing path", func() {
				store, err := NewLocal(tempDir)

				Convey("It should create successfully", func() {
					So(err, ShouldBeNil)
					So(store, ShouldNotBeNil)
					So(store.basePath, ShouldEqual, tempDir)
				})
			})

			Convey("When the backup directory does not exist yet", func() {
				newPath := filepath.Join(tempDir, "var", "backups", "chitralhive")
				store, err := NewLocal(newPath)

				Convey("It should create the directory before any artifact is written", func() {
					So(err, ShouldBeNil)
					So(store, ShouldNotBeNil)

					info, err := os.Stat(newPath)
					So(err, ShouldBeNil)
					So(info.IsDir(), ShouldBeTrue)
				})
			})
		})

		Convey("Create method", func() {
			store, _ := NewLocal(tempDir)

			Convey("When writing an artifact", func() {
				w, err := store.Create("chitral_hive_2025-03-14.sql.gz")
				So(err, ShouldBeNil)
				_, err = w.Write([]byte("first run"))
				So(err, ShouldBeNil)
				So(w.Close(), ShouldBeNil)

				Convey("The file should exist under the backup directory", func() {
					content, err := os.ReadFile(filepath.Join(tempDir, "chitral_hive_2025-03-14.sql.gz"))
					So(err, ShouldBeNil)
					So(string(content), ShouldEqual, "first run")
				})

				Convey("A second run on the same day should overwrite it", func() {
					w2, err := store.Create("chitral_hive_2025-03-14.sql.gz")
					So(err, ShouldBeNil)
					_, err = w2.Write([]byte("second"))
					So(err, ShouldBeNil)
					So(w2.Close(), ShouldBeNil)

					content, err := os.ReadFile(filepath.Join(tempDir, "chitral_hive_2025-03-14.sql.gz"))
					So(err, ShouldBeNil)
					So(string(content), ShouldEqual, "second")
				})
			})
		})

		Convey("List method", func() {
			store, _ := NewLocal(tempDir)

			Convey("When the directory has files and a subdirectory", func() {
				os.WriteFile(filepath.Join(tempDir, "a.sql.gz"), []byte("x"), 0644)
				os.WriteFile(filepath.Join(tempDir, "b.sql.gz"), []byte("x"), 0644)
				os.Mkdir(filepath.Join(tempDir, "subdir"), 0755)

				files, err := store.List(context.Background())

				Convey("It should list only files", func() {
					So(err, ShouldBeNil)
					So(len(files), ShouldEqual, 2)
					So(files, ShouldContain, "a.sql.gz")
					So(files, ShouldContain, "b.sql.gz")
					So(files, ShouldNotContain, "subdir")
				})
			})
		})

		Convey("Delete method", func() {
			store, _ := NewLocal(tempDir)

			Convey("When deleting an existing artifact", func() {
				os.WriteFile(filepath.Join(tempDir, "old.sql.gz"), []byte("x"), 0644)

				err := store.Delete(context.Background(), "old.sql.gz")

				Convey("It should remove the file", func() {
					So(err, ShouldBeNil)
					_, err := os.Stat(filepath.Join(tempDir, "old.sql.gz"))
					So(os.IsNotExist(err), ShouldBeTrue)
				})
			})

			Convey("When deleting a non-existent artifact", func() {
				err := store.Delete(context.Background(), "nope.sql.gz")

				Convey("It should return an error", func() {
					So(err, ShouldNotBeNil)
					So(err.Error(), ShouldContainSubstring, "failed to delete file")
				})
			})
		})

		Convey("GetOldFiles method", func() {
			store, _ := NewLocal(tempDir)

			Convey("When old and fresh artifacts coexist", func() {
				oldFile := filepath.Join(tempDir, "stale.sql.gz")
				os.WriteFile(oldFile, []byte("x"), 0644)
				oldTime := time.Now().Add(-100 * 24 * time.Hour)
				os.Chtimes(oldFile, oldTime, oldTime)

				os.WriteFile(filepath.Join(tempDir, "fresh.sql.gz"), []byte("x"), 0644)

				cutoff := time.Now().Add(-90 * 24 * time.Hour)
				oldFiles, err := store.GetOldFiles(context.Background(), cutoff)

				Convey("It should return only artifacts past the cutoff", func() {
					So(err, ShouldBeNil)
					So(len(oldFiles), ShouldEqual, 1)
					So(oldFiles[0], ShouldEqual, "stale.sql.gz")
				})
			})
		})

		Convey("GetPath method", func() {
			store, _ := NewLocal(tempDir)

			Convey("When resolving an artifact name", func() {
				path := store.GetPath("chitral_hive_2025-03-14.sql.gz")

				Convey("It should return the full path", func() {
					So(path, ShouldEqual, filepath.Join(tempDir, "chitral_hive_2025-03-14.sql.gz"))
				})
			})
		})
	})
}
