package store

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/singleflight"

	"github.com/hrygo/roomtable/internal/profile"
	"github.com/hrygo/roomtable/plugin/timetable"
)

// Snapshot is an immutable room map served to readers.
type Snapshot struct {
	Rooms timetable.RoomMap
	// Stats is nil when the snapshot was read from a derived file.
	Stats    *timetable.Stats
	Version  uint64
	LoadedAt time.Time
	Source   string
}

// Store owns the current snapshot and the files it is built from.
type Store struct {
	profile     *profile.Profile
	transformer *timetable.Transformer

	mu       sync.RWMutex
	snapshot *Snapshot
	version  uint64

	reloads singleflight.Group
}

// New creates a new instance of Store.
func New(profile *profile.Profile, transformer *timetable.Transformer) *Store {
	if transformer == nil {
		transformer = timetable.NewTransformer(nil, "")
	}
	return &Store{
		profile:     profile,
		transformer: transformer,
	}
}

// Snapshot returns the current snapshot, or nil before the first load.
func (s *Store) Snapshot() *Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot
}

// Set installs rooms as the current snapshot.
func (s *Store) Set(rooms timetable.RoomMap, stats *timetable.Stats, source string) *Snapshot {
	if rooms == nil {
		rooms = timetable.RoomMap{}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.version++
	s.snapshot = &Snapshot{
		Rooms:    rooms,
		Stats:    stats,
		Version:  s.version,
		LoadedAt: time.Now(),
		Source:   source,
	}
	return s.snapshot
}

// Build transforms the course export, writes the derived file and installs
// the result.
func (s *Store) Build(ctx context.Context) (*Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.profile.Input == "" {
		return nil, errors.New("no input file configured")
	}

	f, err := os.Open(s.profile.Input)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open course export %s", s.profile.Input)
	}
	defer f.Close()

	courses, err := LoadCourses(f, s.profile.FieldKeys())
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load %s", s.profile.Input)
	}
	rooms, stats := s.transformer.Transform(courses)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := writeFileAtomic(s.profile.Output, rooms); err != nil {
		return nil, err
	}

	slog.Info("built room map",
		slog.String("input", s.profile.Input),
		slog.String("output", s.profile.Output),
		slog.Int("courses", stats.Courses),
		slog.Int("rooms", stats.Rooms),
		slog.Int("sessions", stats.Sessions),
		slog.Int("skipped_clauses", stats.SkippedClauses))
	return s.Set(rooms, &stats, s.profile.Input), nil
}

// Load reads the derived file and installs it.
func (s *Store) Load(ctx context.Context) (*Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(s.profile.Output)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open room map %s", s.profile.Output)
	}
	defer f.Close()

	rooms, err := ReadRoomMap(f)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load %s", s.profile.Output)
	}
	slog.Info("loaded room map", slog.String("output", s.profile.Output), slog.Int("rooms", len(rooms)))
	return s.Set(rooms, nil, s.profile.Output), nil
}

// Reload rebuilds or reloads the snapshot depending on the profile.
// Concurrent calls share one run.
func (s *Store) Reload(ctx context.Context) (*Snapshot, error) {
	ch := s.reloads.DoChan("reload", func() (any, error) {
		// A caller's cancellation must not fail the shared run.
		runCtx := context.WithoutCancel(ctx)
		if s.profile.RebuildOnReload {
			return s.Build(runCtx)
		}
		return s.Load(runCtx)
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Snapshot), nil
	}
}

func writeFileAtomic(path string, rooms timetable.RoomMap) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrapf(err, "failed to create %s", dir)
	}
	tmp, err := os.CreateTemp(dir, ".roomtable-*.json")
	if err != nil {
		return errors.Wrap(err, "failed to create temp file")
	}
	defer os.Remove(tmp.Name())

	if err := WriteRoomMap(tmp, rooms); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "failed to close temp file")
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return errors.Wrapf(err, "failed to write %s", path)
	}
	return nil
}
