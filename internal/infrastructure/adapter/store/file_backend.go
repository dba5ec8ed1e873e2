package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	coreport "github.com/amirhossein-jamali/marketplace/internal/domain/port/core"
	"github.com/amirhossein-jamali/marketplace/internal/domain/port/persistence"
)

// DefaultJournalName is the journal file used when none is configured
const DefaultJournalName = "journal.json"

// journal holds every snapshot of a multi-family commit. []byte values are base64 encoded.
type journal struct {
	Snapshots map[persistence.Family][]byte `json:"snapshots"`
}

// FileBackend stores one JSON file per family in a directory.
// Single-family commits are a temp file + fsync + rename. Multi-family commits
// are written to a journal first; once the journal is durable the commit has
// happened, and the family files are rolled forward from it, if need be on a
// later Load.
type FileBackend struct {
	dir         string
	journalPath string
	logger      coreport.Logger

	mu sync.Mutex
}

// NewFileBackend opens dir, creating it if needed, and replays a leftover journal
func NewFileBackend(dir, journalName string, logger coreport.Logger) (*FileBackend, error) {
	if journalName == "" {
		journalName = DefaultJournalName
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	b := &FileBackend{
		dir:         dir,
		journalPath: filepath.Join(dir, journalName),
		logger:      logger,
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if _, err := b.recover(); err != nil {
		return nil, err
	}
	return b, nil
}

func (b *FileBackend) path(family persistence.Family) string {
	return filepath.Join(b.dir, string(family)+".json")
}

// Load reads the family file, finishing an interrupted commit first. While the
// journal cannot be applied, families it holds are served from it.
func (b *FileBackend) Load(_ context.Context, family persistence.Family) ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	pending, err := b.recover()
	if err != nil {
		return nil, err
	}
	if data, ok := pending[family]; ok {
		return data, nil
	}

	data, err := os.ReadFile(b.path(family))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, persistence.ErrSnapshotNotFound
	}
	return data, err
}

// Commit writes every snapshot atomically. A commit made while an earlier
// journal is still pending is merged into that journal.
func (b *FileBackend) Commit(_ context.Context, snapshots map[persistence.Family][]byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	pending, err := b.recover()
	if err != nil {
		return err
	}

	if len(snapshots) == 1 && pending == nil {
		for family, data := range snapshots {
			return writeFileAtomic(b.path(family), data)
		}
	}

	merged := make(map[persistence.Family][]byte, len(pending)+len(snapshots))
	for family, data := range pending {
		merged[family] = data
	}
	for family, data := range snapshots {
		merged[family] = data
	}

	payload, err := codecJSON.Marshal(journal{Snapshots: merged})
	if err != nil {
		return fmt.Errorf("encode journal: %w", err)
	}
	if err := writeFileAtomic(b.journalPath, payload); err != nil {
		return fmt.Errorf("write journal: %w", err)
	}

	if err := b.apply(merged); err != nil {
		b.logger.Warn("Commit journaled, family files not yet replaced", map[string]any{
			"journal": b.journalPath,
			"error":   err.Error(),
		})
	}
	return nil
}

// recover rolls a complete journal forward. The journal is only ever renamed into
// place whole, so if it exists every snapshot in it is intact. The snapshots are
// returned when they could not be applied yet.
func (b *FileBackend) recover() (map[persistence.Family][]byte, error) {
	payload, err := os.ReadFile(b.journalPath)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read journal: %w", err)
	}

	var j journal
	if err := codecJSON.Unmarshal(payload, &j); err != nil {
		return nil, fmt.Errorf("decode journal %s: %w", b.journalPath, err)
	}

	b.logger.Warn("Rolling forward interrupted commit", map[string]any{
		"journal":  b.journalPath,
		"families": len(j.Snapshots),
	})
	if err := b.apply(j.Snapshots); err != nil {
		b.logger.Warn("Journal still pending", map[string]any{
			"journal": b.journalPath,
			"error":   err.Error(),
		})
		return j.Snapshots, nil
	}
	return nil, nil
}

func (b *FileBackend) apply(snapshots map[persistence.Family][]byte) error {
	for _, family := range persistence.Families() {
		data, ok := snapshots[family]
		if !ok {
			continue
		}
		if err := writeFileAtomic(b.path(family), data); err != nil {
			return fmt.Errorf("write %s: %w", family, err)
		}
	}
	if err := os.Remove(b.journalPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove journal: %w", err)
	}
	return syncDir(b.dir)
}

// Close is a no-op; every commit is already durable
func (b *FileBackend) Close() error {
	return nil
}

// writeFileAtomic replaces path with data so readers see either the old or the new content
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) //nolint:errcheck

	if _, err := tmp.Write(data); err != nil {
		tmp.Close() //nolint:errcheck
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close() //nolint:errcheck
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		return err
	}
	return syncDir(dir)
}

func syncDir(dir string) error {
	d, err := os.Open(dir)
	if err != nil {
		return err
	}
	defer d.Close() //nolint:errcheck
	if err := d.Sync(); err != nil && !errors.Is(err, os.ErrInvalid) {
		return err
	}
	return nil
}
