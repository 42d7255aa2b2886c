package dataset

import (
	"context"
	"encoding/gob"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"sales-dashboard/internal/models"
)

const (
	cacheVersion = "v1"
	cacheDir     = ".cache"
)

// Store memoizes the loaded Dataset, keyed by source path and modification
// time. While the file is unchanged every Dataset call returns the same
// immutable *models.Dataset; when the file changes on disk the next call
// reloads it. Invalidate drops the memo explicitly.
//
// A gob snapshot of the parsed rows is kept under .cache/ so a warm
// restart skips the CSV parse when the file has not moved.
type Store struct {
	mu       sync.RWMutex
	path     string
	cacheDir string
	logger   *slog.Logger

	loaded   *models.Dataset
	modTime  time.Time
	loadedAt time.Time
}

func NewStore(path string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{path: path, cacheDir: cacheDir, logger: logger}
}

// Dataset returns the memoized Dataset, loading or reloading the source
// file first when needed. If a reload fails but an earlier load succeeded,
// the stale Dataset is served and the failure logged; filter recomputes
// must never lose the data they already had.
func (s *Store) Dataset(ctx context.Context) (*models.Dataset, error) {
	info, err := os.Stat(s.path)
	if err != nil {
		s.mu.RLock()
		loaded := s.loaded
		s.mu.RUnlock()
		if loaded != nil {
			s.logger.Warn("source file unavailable, serving memoized dataset", "path", s.path, "error", err)
			return loaded, nil
		}
		return nil, &LoadError{Path: s.path, Err: err}
	}

	s.mu.RLock()
	if s.loaded != nil && s.modTime.Equal(info.ModTime()) {
		loaded := s.loaded
		s.mu.RUnlock()
		return loaded, nil
	}
	s.mu.RUnlock()

	return s.reload(ctx, info.ModTime())
}

// Invalidate drops the memoized Dataset and its disk snapshot; the next
// Dataset call re-reads and re-parses the source file.
func (s *Store) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loaded = nil
	s.modTime = time.Time{}
	if err := os.Remove(s.snapshotPath()); err != nil && !os.IsNotExist(err) {
		s.logger.Warn("failed to remove dataset snapshot", "error", err)
	}
}

// Stats reports the memoized dataset shape for the admin endpoint.
func (s *Store) Stats() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]any{
		"source": s.path,
		"loaded": s.loaded != nil,
	}
	if s.loaded != nil {
		minDate, maxDate := s.loaded.DateBounds()
		stats["record_count"] = s.loaded.Len()
		stats["regions"] = len(s.loaded.Regions())
		stats["categories"] = len(s.loaded.Categories())
		stats["first_order_date"] = minDate
		stats["last_order_date"] = maxDate
		stats["loaded_at"] = s.loadedAt
	}
	return stats
}

// SetDataset installs a pre-built Dataset, bypassing the file. Used by
// handler tests.
func (s *Store) SetDataset(ds *models.Dataset) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loaded = ds
	s.modTime = time.Now()
	s.loadedAt = time.Now()
}

func (s *Store) reload(ctx context.Context, modTime time.Time) (*models.Dataset, error) {
	start := time.Now()

	if snap, err := s.loadSnapshot(); err == nil && snap.ModTime.Equal(modTime) {
		ds := models.NewDataset(snap.Records)
		s.install(ds, modTime)
		s.logger.Info("dataset restored from snapshot", "records", ds.Len())
		return ds, nil
	}

	ds, err := Load(ctx, s.path)
	if err != nil {
		return nil, err
	}
	s.install(ds, modTime)

	if err := s.saveSnapshot(snapshot{ModTime: modTime, Records: ds.Records()}); err != nil {
		s.logger.Warn("failed to save dataset snapshot", "error", err)
	}

	s.logger.Info("dataset loaded",
		"path", s.path,
		"records", ds.Len(),
		"duration", time.Since(start),
	)
	return ds, nil
}

func (s *Store) install(ds *models.Dataset, modTime time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loaded = ds
	s.modTime = modTime
	s.loadedAt = time.Now()
}

type snapshot struct {
	ModTime time.Time
	Records []models.Record
}

func (s *Store) snapshotPath() string {
	return fmt.Sprintf("%s/%s_%s.gob", s.cacheDir, strings.ReplaceAll(s.path, "/", "_"), cacheVersion)
}

func (s *Store) saveSnapshot(snap snapshot) error {
	if err := os.MkdirAll(s.cacheDir, 0755); err != nil {
		return err
	}

	file, err := os.Create(s.snapshotPath())
	if err != nil {
		return err
	}
	defer file.Close()

	return gob.NewEncoder(file).Encode(snap)
}

func (s *Store) loadSnapshot() (snapshot, error) {
	file, err := os.Open(s.snapshotPath())
	if err != nil {
		return snapshot{}, err
	}
	defer file.Close()

	var snap snapshot
	if err := gob.NewDecoder(file).Decode(&snap); err != nil {
		return snapshot{}, err
	}
	return snap, nil
}
