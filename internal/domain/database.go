package domain

import (
	"context"
	"io"
)

// Dumper produces a logical dump of a database as a byte stream. Close on
// the returned stream reports the dump tool's exit status, so callers must
// drain the stream and then check Close's error.
type Dumper interface {
	Dump(ctx context.Context) (io.ReadCloser, error)
	Ping(ctx context.Context) error
	DatabaseName() string
}
