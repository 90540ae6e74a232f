package usecase

import (
	"context"
	"fmt"
	"regexp"
	"sync"
	"time"

	"github.com/chitralhive/hivekeep/internal/domain"
)

// Cleanup prunes artifacts older than the retention window from the local
// backup directory and every replication target.
type Cleanup struct {
	local         domain.Storage
	uploadTargets []UploadTarget
	logger        Logger
	retentionDays int
}

func NewCleanup(
	local domain.Storage,
	uploadTargets []UploadTarget,
	logger Logger,
	retentionDays int,
) *Cleanup {
	return &Cleanup{
		local:         local,
		uploadTargets: uploadTargets,
		logger:        logger,
		retentionDays: retentionDays,
	}
}

func (uc *Cleanup) Execute(ctx context.Context) error {
	if uc.retentionDays <= 0 {
		uc.logger.Infof("Retention disabled, keeping all artifacts")
		return nil
	}

	uc.logger.Infof("Starting cleanup, retention: %d days", uc.retentionDays)
	cutoff := time.Now().AddDate(0, 0, -uc.retentionDays)

	stores := []UploadTarget{{Name: "local", Storage: uc.local}}
	stores = append(stores, uc.uploadTargets...)

	var wg sync.WaitGroup
	for _, store := range stores {
		wg.Add(1)
		go func(t UploadTarget) {
			defer wg.Done()

			if err := uc.cleanupStore(ctx, t, cutoff); err != nil {
				uc.logger.Errorf("Cleanup failed for %s: %v", t.Name, err)
			}
		}(store)
	}
	wg.Wait()

	uc.logger.Infof("Cleanup completed")
	return nil
}

func (uc *Cleanup) cleanupStore(ctx context.Context, target UploadTarget, cutoff time.Time) error {
	files, err := target.Storage.GetOldFiles(ctx, cutoff)
	if err != nil {
		files, err = uc.fallbackListFiles(ctx, target, cutoff)
		if err != nil {
			return err
		}
	}

	deleted := 0
	for _, filename := range files {
		uc.logger.Infof("Deleting old artifact from %s: %s", target.Name, filename)

		if err := target.Storage.Delete(ctx, filename); err != nil {
			uc.logger.Errorf("Failed to delete %s from %s: %v", filename, target.Name, err)
		} else {
			deleted++
		}
	}

	uc.logger.Infof("Deleted %d old artifact(s) from %s", deleted, target.Name)
	return nil
}

// fallbackListFiles derives artifact ages from their names when the store
// cannot report modification times.
func (uc *Cleanup) fallbackListFiles(ctx context.Context, target UploadTarget, cutoff time.Time) ([]string, error) {
	files, err := target.Storage.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}

	oldFiles := make([]string, 0)
	for _, filename := range files {
		day, err := extractDay(filename)
		if err != nil {
			uc.logger.Warnf("Could not parse date from %s: %v", filename, err)
			continue
		}

		if day.Before(cutoff) {
			oldFiles = append(oldFiles, filename)
		}
	}

	return oldFiles, nil
}

var artifactDatePattern = regexp.MustCompile(`_(\d{4}-\d{2}-\d{2})\.sql\.gz$`)

// extractDay parses the date out of an artifact name like
// chitral_hive_2025-03-14.sql.gz.
func extractDay(filename string) (time.Time, error) {
	matches := artifactDatePattern.FindStringSubmatch(filename)
	if len(matches) < 2 {
		return time.Time{}, fmt.Errorf("no date in filename")
	}
	return time.Parse("2006-01-02", matches[1])
}
