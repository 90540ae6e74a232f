package compressor

import (
	"bytes"
	"compress/gzip"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, errors.New("dump stream broke")
}

func TestGzipCompressor(t *testing.T) {
	Convey("Given a GzipCompressor", t, func() {
		compressor := NewGzip()

		Convey("Compress method", func() {
			Convey("When compressing a stream of N bytes", func() {
				original := bytes.Repeat([]byte("INSERT INTO products VALUES (1);\n"), 512)

				var compressed bytes.Buffer
				err := compressor.Compress(&compressed, bytes.NewReader(original))

				Convey("Decompressing should reproduce exactly the original bytes", func() {
					So(err, ShouldBeNil)

					gzipReader, err := gzip.NewReader(&compressed)
					So(err, ShouldBeNil)
					defer gzipReader.Close()

					var roundTripped bytes.Buffer
					_, err = roundTripped.ReadFrom(gzipReader)
					So(err, ShouldBeNil)
					So(roundTripped.Bytes(), ShouldResemble, original)
				})
			})

			Convey("When the source reader fails mid-stream", func() {
				var compressed bytes.Buffer
				err := compressor.Compress(&compressed, failingReader{})

				Convey("It should surface a compression stage error", func() {
					So(err, ShouldNotBeNil)
					So(err.Error(), ShouldContainSubstring, "failed to compress stream")
					So(err.Error(), ShouldContainSubstring, "dump stream broke")
				})
			})

			Convey("When the source is empty", func() {
				var compressed bytes.Buffer
				err := compressor.Compress(&compressed, strings.NewReader(""))

				Convey("It should still produce a valid gzip stream", func() {
					So(err, ShouldBeNil)

					gzipReader, err := gzip.NewReader(&compressed)
					So(err, ShouldBeNil)
					gzipReader.Close()
				})
			})
		})

		Convey("Decompress method", func() {
			Convey("When decompressing a valid gzip file", func() {
				content := []byte("-- PostgreSQL database dump\nSELECT 1;\n")

				gzipPath := filepath.Join(t.TempDir(), "artifact.sql.gz")
				f, err := os.Create(gzipPath)
				So(err, ShouldBeNil)
				gzipWriter, err := gzip.NewWriterLevel(f, gzip.BestCompression)
				So(err, ShouldBeNil)
				_, err = gzipWriter.Write(content)
				So(err, ShouldBeNil)
				gzipWriter.Close()
				f.Close()

				outputPath := filepath.Join(t.TempDir(), "restored.sql")
				err = compressor.Decompress(gzipPath, outputPath)

				Convey("It should restore the original content", func() {
					So(err, ShouldBeNil)

					restored, err := os.ReadFile(outputPath)
					So(err, ShouldBeNil)
					So(restored, ShouldResemble, content)
				})
			})

			Convey("When the source file does not exist", func() {
				err := compressor.Decompress("nonexistent.gz", filepath.Join(t.TempDir(), "out.sql"))

				Convey("It should return an error", func() {
					So(err, ShouldNotBeNil)
					So(err.Error(), ShouldContainSubstring, "failed to open source file")
				})
			})

			Convey("When the source file is not gzip", func() {
				invalidPath := filepath.Join(t.TempDir(), "plain.txt")
				So(os.WriteFile(invalidPath, []byte("not a gzip file"), 0644), ShouldBeNil)

				err := compressor.Decompress(invalidPath, filepath.Join(t.TempDir(), "out.sql"))

				Convey("It should return an error", func() {
					So(err, ShouldNotBeNil)
					So(err.Error(), ShouldContainSubstring, "failed to create gzip reader")
				})
			})

			Convey("When the destination path is invalid", func() {
				gzipPath := filepath.Join(t.TempDir(), "artifact.sql.gz")
				f, err := os.Create(gzipPath)
				So(err, ShouldBeNil)
				gzipWriter := gzip.NewWriter(f)
				_, err = gzipWriter.Write([]byte("content"))
				So(err, ShouldBeNil)
				gzipWriter.Close()
				f.Close()

				err = compressor.Decompress(gzipPath, "/invalid/path/out.sql")

				Convey("It should return an error", func() {
					So(err, ShouldNotBeNil)
					So(err.Error(), ShouldContainSubstring, "failed to create dest file")
				})
			})
		})
	})
}
