package domain

import (
	"fmt"
	"time"
)

// Backup describes one produced artifact.
type Backup struct {
	Filename     string
	FilePath     string
	Size         int64
	CreatedAt    time.Time
	DatabaseName string
}

// ArtifactName returns the artifact filename for a dump of prefix taken on
// the given day: {prefix}_{YYYY-MM-DD}.sql.gz. Two runs on the same day map
// to the same name; the local store truncates on create, so the last writer
// wins.
func ArtifactName(prefix string, day time.Time) string {
	return fmt.Sprintf("%s_%s.sql.gz", prefix, day.Format("2006-01-02"))
}
