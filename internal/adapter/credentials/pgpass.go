package credentials

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// PgpassProvider resolves passwords from a PostgreSQL password file. Each
// line is host:port:database:user:password; '*' matches any value in the
// first four fields and backslash escapes ':' and '\' inside a field.
type PgpassProvider struct {
	path string
}

// NewPgpass returns a provider reading from path. An empty path falls back
// to ~/.pgpass, matching the dump tool's own convention.
func NewPgpass(path string) (*PgpassProvider, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home directory: %w", err)
		}
		path = filepath.Join(home, ".pgpass")
	}
	return &PgpassProvider{path: path}, nil
}

func (p *PgpassProvider) Lookup(host string, port int, database, user string) (string, error) {
	f, err := os.Open(p.path)
	if err != nil {
		return "", fmt.Errorf("open password file: %w", err)
	}
	defer f.Close()

	portStr := strconv.Itoa(port)

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := splitFields(line)
		if len(fields) != 5 {
			continue
		}

		if match(fields[0], host) &&
			match(fields[1], portStr) &&
			match(fields[2], database) &&
			match(fields[3], user) {
			return fields[4], nil
		}
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("read password file: %w", err)
	}

	return "", fmt.Errorf("no password entry for %s@%s:%d/%s in %s",
		user, host, port, database, p.path)
}

func match(pattern, value string) bool {
	return pattern == "*" || pattern == value
}

// splitFields splits a pgpass line on unescaped colons.
func splitFields(line string) []string {
	var fields []string
	var field strings.Builder
	escaped := false

	for _, r := range line {
		switch {
		case escaped:
			field.WriteRune(r)
			escaped = false
		case r == '\\':
			escaped = true
		case r == ':':
			fields = append(fields, field.String())
			field.Reset()
		default:
			field.WriteRune(r)
		}
	}
	return append(fields, field.String())
}
