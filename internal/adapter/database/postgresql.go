package database

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"

	"github.com/chitralhive/hivekeep/internal/config"
	"github.com/chitralhive/hivekeep/internal/domain"
)

// PostgresDumper streams a plain-format pg_dump of the configured database.
// The password comes from the injected credential provider and is handed to
// the child process through its environment only.
type PostgresDumper struct {
	config *config.DatabaseConfig
	creds  domain.CredentialProvider
}

func NewPostgres(cfg *config.DatabaseConfig, creds domain.CredentialProvider) *PostgresDumper {
	return &PostgresDumper{config: cfg, creds: creds}
}

func (p *PostgresDumper) Dump(ctx context.Context) (io.ReadCloser, error) {
	env, err := p.env()
	if err != nil {
		return nil, err
	}

	cmd := exec.CommandContext(ctx, "pg_dump",
		fmt.Sprintf("--host=%s", p.config.Host),
		fmt.Sprintf("--port=%d", p.config.Port),
		fmt.Sprintf("--username=%s", p.config.Username),
		"--no-password",
		"--format=plain",
		p.config.Database,
	)
	cmd.Env = env

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("pg_dump stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("pg_dump stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start pg_dump: %w", err)
	}

	stream := &dumpStream{stdout: stdout, cmd: cmd}
	stream.wg.Add(1)
	go func() {
		defer stream.wg.Done()
		// Drain stderr so pg_dump never blocks on a full pipe.
		_, _ = io.Copy(&stream.stderr, stderr)
	}()

	return stream, nil
}

func (p *PostgresDumper) Ping(ctx context.Context) error {
	env, err := p.env()
	if err != nil {
		return err
	}

	cmd := exec.CommandContext(ctx, "psql",
		fmt.Sprintf("--host=%s", p.config.Host),
		fmt.Sprintf("--port=%d", p.config.Port),
		fmt.Sprintf("--username=%s", p.config.Username),
		fmt.Sprintf("--dbname=%s", p.config.Database),
		"--no-password",
		"-c", "SELECT 1",
	)
	cmd.Env = env

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("postgresql ping failed: %w", err)
	}
	return nil
}

func (p *PostgresDumper) DatabaseName() string {
	return p.config.Database
}

func (p *PostgresDumper) env() ([]string, error) {
	password, err := p.creds.Lookup(p.config.Host, p.config.Port, p.config.Database, p.config.Username)
	if err != nil {
		return nil, fmt.Errorf("resolve database password: %w", err)
	}
	return append(os.Environ(), "PGPASSWORD="+password), nil
}

// dumpStream is the live pg_dump output. Close waits for the process and
// reports its exit status, with captured stderr attached for diagnosis.
type dumpStream struct {
	stdout io.ReadCloser
	cmd    *exec.Cmd
	stderr bytes.Buffer
	wg     sync.WaitGroup
}

func (s *dumpStream) Read(p []byte) (int, error) {
	return s.stdout.Read(p)
}

func (s *dumpStream) Close() error {
	_ = s.stdout.Close()
	err := s.cmd.Wait()
	s.wg.Wait()

	if err != nil {
		if msg := strings.TrimSpace(s.stderr.String()); msg != "" {
			return fmt.Errorf("pg_dump failed: %w: %s", err, msg)
		}
		return fmt.Errorf("pg_dump failed: %w", err)
	}
	return nil
}
