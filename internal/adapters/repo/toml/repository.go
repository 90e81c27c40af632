package toml

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/bnema/poolrdp/internal/domain"
	"github.com/bnema/poolrdp/internal/ports"
	toml "github.com/pelletier/go-toml/v2"
)

const (
	sessionsFileMode = 0o600
	sessionsDirMode  = 0o700
	tempFilePattern  = ".sessions-*.toml.tmp"
)

// Repository is the last-session ledger. Every Save replaces the previous
// record atomically.
type Repository struct {
	path string
	mu   *sync.RWMutex
}

var (
	lockRegistryMu sync.Mutex
	pathLockMap    = map[string]*sync.RWMutex{}
)

var _ ports.SessionRepository = (*Repository)(nil)

func NewRepository(path string) (*Repository, error) {
	if path == "" {
		return nil, errors.New("sessions path is empty")
	}

	normalized, err := normalizePath(path)
	if err != nil {
		return nil, err
	}

	return &Repository{path: normalized, mu: lockForPath(normalized)}, nil
}

func (r *Repository) Save(ctx context.Context, record domain.SessionRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	file, err := r.readSchema()
	if err != nil {
		return err
	}

	encoded := toSchema(record)
	file.Last = &encoded

	if err := ctx.Err(); err != nil {
		return err
	}

	return r.writeSchema(file)
}

func (r *Repository) Last(ctx context.Context) (domain.SessionRecord, error) {
	if err := ctx.Err(); err != nil {
		return domain.SessionRecord{}, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	file, err := r.readSchema()
	if err != nil {
		return domain.SessionRecord{}, err
	}
	if file.Last == nil {
		return domain.SessionRecord{}, domain.ErrSessionNotFound
	}

	return fromSchema(*file.Last), nil
}

func (r *Repository) readSchema() (fileSchema, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			file := fileSchema{}
			file.applyDefaults()
			return file, nil
		}
		return fileSchema{}, fmt.Errorf("read sessions file: %w", err)
	}

	var file fileSchema
	if err := toml.Unmarshal(data, &file); err != nil {
		return fileSchema{}, fmt.Errorf("decode sessions file: %w", err)
	}
	if err := file.validateVersion(); err != nil {
		return fileSchema{}, err
	}
	file.applyDefaults()

	return file, nil
}

func normalizePath(path string) (string, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve sessions path: %w", err)
	}

	return filepath.Clean(absPath), nil
}

func lockForPath(path string) *sync.RWMutex {
	lockRegistryMu.Lock()
	defer lockRegistryMu.Unlock()

	if mu, ok := pathLockMap[path]; ok {
		return mu
	}

	mu := &sync.RWMutex{}
	pathLockMap[path] = mu
	return mu
}

func (r *Repository) writeSchema(file fileSchema) error {
	file.applyDefaults()

	dir := filepath.Dir(r.path)
	if err := os.MkdirAll(dir, sessionsDirMode); err != nil {
		return fmt.Errorf("create sessions directory: %w", err)
	}

	data, err := toml.Marshal(file)
	if err != nil {
		return fmt.Errorf("encode sessions file: %w", err)
	}

	tempFile, err := os.CreateTemp(dir, tempFilePattern)
	if err != nil {
		return fmt.Errorf("create temp sessions file: %w", err)
	}

	tempName := tempFile.Name()
	cleanup := true
	defer func() {
		if cleanup {
			_ = os.Remove(tempName)
		}
	}()

	if _, err := tempFile.Write(data); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("write temp sessions file: %w", err)
	}
	if err := tempFile.Chmod(sessionsFileMode); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("chmod temp sessions file: %w", err)
	}
	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("close temp sessions file: %w", err)
	}
	if err := os.Rename(tempName, r.path); err != nil {
		return fmt.Errorf("replace sessions file: %w", err)
	}

	cleanup = false
	return nil
}

func toSchema(record domain.SessionRecord) sessionSchema {
	return sessionSchema{
		ID:          record.ID,
		PoolName:    record.PoolName,
		Username:    record.Username,
		Endpoint:    record.Endpoint,
		Outcome:     string(record.Outcome),
		Code:        int(record.Code),
		StartedAt:   formatTime(record.StartedAt),
		FinishedAt:  formatTime(record.FinishedAt),
		LaunchedAt:  formatTime(record.LaunchedAt),
		LaunchError: record.LaunchError,
	}
}

func fromSchema(entry sessionSchema) domain.SessionRecord {
	return domain.SessionRecord{
		ID:          entry.ID,
		PoolName:    entry.PoolName,
		Username:    entry.Username,
		Endpoint:    entry.Endpoint,
		Outcome:     domain.OutcomeKind(entry.Outcome),
		Code:        domain.StatusCode(entry.Code),
		StartedAt:   parseTime(entry.StartedAt),
		FinishedAt:  parseTime(entry.FinishedAt),
		LaunchedAt:  parseTime(entry.LaunchedAt),
		LaunchError: entry.LaunchError,
	}
}

func parseTime(raw string) time.Time {
	if raw == "" {
		return time.Time{}
	}

	parsed, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}
	}

	return parsed
}

func formatTime(value time.Time) string {
	if value.IsZero() {
		return ""
	}

	return value.UTC().Format(time.RFC3339Nano)
}
