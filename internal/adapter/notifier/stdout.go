package notifier

import (
	"context"
	"fmt"
	"io"

	"github.com/chitralhive/hivekeep/internal/domain"
)

// PathReporter is the fallback used when no mail transport is configured.
// It reports the artifact path on the given writer and never fails the run
// for delivery reasons.
type PathReporter struct {
	out io.Writer
}

func NewPathReporter(out io.Writer) *PathReporter {
	return &PathReporter{out: out}
}

func (r *PathReporter) NotifyBackup(_ context.Context, b domain.Backup) error {
	_, err := fmt.Fprintf(r.out, "backup written to %s\n", b.FilePath)
	return err
}
