package domain

import "io"

type Compressor interface {
	Compress(dst io.Writer, src io.Reader) error
	Decompress(sourcePath, destPath string) error
}
