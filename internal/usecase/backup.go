package usecase

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/chitralhive/hivekeep/internal/domain"
)

// Backup runs one backup: dump the database, stream the dump through the
// compressor into the backup directory, replicate the artifact to any
// configured targets, and notify the operator. Execution is linear; any
// stage failure aborts the run.
type Backup struct {
	dumper        domain.Dumper
	local         LocalStore
	compressor    domain.Compressor
	notifier      domain.Notifier
	uploadTargets []UploadTarget
	logger        Logger
	prefix        string
}

type UploadTarget struct {
	Name    string
	Storage domain.Storage
}

// LocalStore is the backup directory. Create truncates an existing artifact
// of the same name.
type LocalStore interface {
	Create(name string) (io.WriteCloser, error)
	GetPath(name string) string
}

type Logger interface {
	Infof(template string, args ...interface{})
	Errorf(template string, args ...interface{})
	Warnf(template string, args ...interface{})
}

func NewBackup(
	dumper domain.Dumper,
	local LocalStore,
	compressor domain.Compressor,
	notifier domain.Notifier,
	uploadTargets []UploadTarget,
	logger Logger,
	prefix string,
) *Backup {
	return &Backup{
		dumper:        dumper,
		local:         local,
		compressor:    compressor,
		notifier:      notifier,
		uploadTargets: uploadTargets,
		logger:        logger,
		prefix:        prefix,
	}
}

func (uc *Backup) Execute(ctx context.Context) error {
	start := time.Now()
	dbName := uc.dumper.DatabaseName()
	uc.logger.Infof("[%s] Starting backup...", dbName)

	if err := uc.dumper.Ping(ctx); err != nil {
		return fmt.Errorf("database ping: %w", err)
	}

	filename := domain.ArtifactName(uc.prefix, start)
	artifactPath := uc.local.GetPath(filename)
	uc.logger.Infof("[%s] Dumping to %s", dbName, artifactPath)

	if err := uc.writeArtifact(ctx, filename); err != nil {
		return err
	}

	info, err := os.Stat(artifactPath)
	if err != nil {
		return fmt.Errorf("stat artifact: %w", err)
	}

	backup := domain.Backup{
		Filename:     filename,
		FilePath:     artifactPath,
		Size:         info.Size(),
		CreatedAt:    start,
		DatabaseName: dbName,
	}

	uc.logger.Infof("[%s] Artifact written, size: %.2f MB",
		dbName, float64(backup.Size)/(1024*1024))

	if len(uc.uploadTargets) > 0 {
		uc.replicate(ctx, backup)
	}

	// A send failure from a configured mail transport fails the run; the
	// stdout fallback never does.
	if err := uc.notifier.NotifyBackup(ctx, backup); err != nil {
		return fmt.Errorf("notify: %w", err)
	}

	uc.logger.Infof("[%s] Backup completed in %s: %s",
		dbName, time.Since(start).Round(time.Second), filename)

	return nil
}

// writeArtifact streams the dump through gzip into the backup directory,
// keeping dump failures distinct from compression and disk failures.
func (uc *Backup) writeArtifact(ctx context.Context, filename string) error {
	stream, err := uc.dumper.Dump(ctx)
	if err != nil {
		return fmt.Errorf("dump: %w", err)
	}

	dest, err := uc.local.Create(filename)
	if err != nil {
		stream.Close()
		return fmt.Errorf("create artifact: %w", err)
	}

	compressErr := uc.compressor.Compress(dest, stream)
	dumpErr := stream.Close()
	destErr := dest.Close()

	// The dump tool's exit status wins: a broken pipe during compression is
	// usually a symptom of the dump dying first.
	if dumpErr != nil {
		return fmt.Errorf("dump: %w", dumpErr)
	}
	if compressErr != nil {
		return fmt.Errorf("compress: %w", compressErr)
	}
	if destErr != nil {
		return fmt.Errorf("finalize artifact: %w", destErr)
	}

	return nil
}

func (uc *Backup) replicate(ctx context.Context, backup domain.Backup) {
	var wg sync.WaitGroup
	dbName := backup.DatabaseName

	for _, target := range uc.uploadTargets {
		wg.Add(1)
		go func(t UploadTarget) {
			defer wg.Done()

			uc.logger.Infof("[%s] Replicating to %s...", dbName, t.Name)
			if err := t.Storage.Upload(ctx, backup.FilePath, backup.Filename); err != nil {
				uc.logger.Errorf("[%s] Failed to replicate to %s: %v", dbName, t.Name, err)
			} else {
				uc.logger.Infof("[%s] Replicated to %s", dbName, t.Name)
			}
		}(target)
	}

	wg.Wait()
}
