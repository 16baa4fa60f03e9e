// Package classroom answers queries over the current room map: a single
// room's timetable, room listings by prefix or building, and CEL filters
// across all sessions.
//
// Listings are ordered by room letter prefix and number, and sessions by
// weekday and start time. Responses are cached per snapshot version.
package classroom

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/cases"

	"github.com/hrygo/roomtable/plugin/timetable"
	apierrors "github.com/hrygo/roomtable/server/internal/errors"
	"github.com/hrygo/roomtable/store"
	"github.com/hrygo/roomtable/store/cache"
)

const (
	// DefaultCacheTTL bounds how long a cached response outlives its snapshot.
	DefaultCacheTTL = 10 * time.Minute

	// MaxFilterLength is the longest filter expression accepted.
	MaxFilterLength = 1024
)

// Service defines the read-only queries over the room map.
type Service interface {
	// Room returns the sessions of one room ordered by day and start time.
	// An unknown room yields an empty list.
	Room(ctx context.Context, room string) ([]*timetable.Session, error)

	// Classrooms lists rooms whose name starts with prefix, ignoring case.
	// A blank prefix lists every room.
	Classrooms(ctx context.Context, prefix string) (Rooms, error)

	// Building lists rooms whose name starts with building.
	Building(ctx context.Context, building string) (Rooms, error)

	// Filter returns every session matching a CEL expression.
	Filter(ctx context.Context, expr string) ([]*Match, error)

	// Summary describes the loaded snapshot.
	Summary(ctx context.Context) (*Summary, error)
}

// Match is a session selected by Filter together with its room.
type Match struct {
	Room    string             `json:"room"`
	Session *timetable.Session `json:"session"`
}

// Summary describes the loaded snapshot.
type Summary struct {
	Version  uint64           `json:"version"`
	Source   string           `json:"source"`
	LoadedAt time.Time        `json:"loaded_at"`
	Rooms    int              `json:"rooms"`
	Sessions int              `json:"sessions"`
	Build    *timetable.Stats `json:"build,omitempty"`
}

// Store is the interface for store operations needed by the classroom service.
type Store interface {
	Snapshot() *store.Snapshot
}

type service struct {
	store Store
	cache *cache.Cache
}

// NewService creates a classroom service. A nil cache disables caching.
func NewService(store Store, c *cache.Cache) Service {
	return &service{
		store: store,
		cache: c,
	}
}

// fold case-folds s. A Caser is stateful, so each call gets its own.
func fold(s string) string {
	return cases.Fold().String(s)
}

func (s *service) snapshot() (*store.Snapshot, error) {
	snap := s.store.Snapshot()
	if snap == nil {
		return nil, apierrors.ServiceUnavailable("room map is not loaded")
	}
	return snap, nil
}

// cached returns the value under key for the snapshot version, computing it on a miss.
func cached[T any](ctx context.Context, s *service, snap *store.Snapshot, key string, compute func() (T, error)) (T, error) {
	key = fmt.Sprintf("v%d:%s", snap.Version, key)
	if s.cache != nil {
		if v, ok := s.cache.Get(ctx, key); ok {
			if typed, ok := v.(T); ok {
				return typed, nil
			}
		}
	}
	v, err := compute()
	if err != nil {
		return v, err
	}
	if s.cache != nil {
		s.cache.Set(ctx, key, v)
	}
	return v, nil
}

func (s *service) Room(ctx context.Context, room string) ([]*timetable.Session, error) {
	snap, err := s.snapshot()
	if err != nil {
		return nil, err
	}
	return cached(ctx, s, snap, "room:"+room, func() ([]*timetable.Session, error) {
		return SortSessions(snap.Rooms[room]), nil
	})
}

func (s *service) Classrooms(ctx context.Context, prefix string) (Rooms, error) {
	snap, err := s.snapshot()
	if err != nil {
		return nil, err
	}
	folded := fold(strings.TrimSpace(prefix))
	return cached(ctx, s, snap, "classrooms:"+folded, func() (Rooms, error) {
		if folded == "" {
			return orderRooms(snap.Rooms, nil), nil
		}
		return orderRooms(snap.Rooms, func(name string) bool {
			return strings.HasPrefix(fold(name), folded)
		}), nil
	})
}

func (s *service) Building(ctx context.Context, building string) (Rooms, error) {
	snap, err := s.snapshot()
	if err != nil {
		return nil, err
	}
	return cached(ctx, s, snap, "building:"+building, func() (Rooms, error) {
		return orderRooms(snap.Rooms, func(name string) bool {
			return strings.HasPrefix(name, building)
		}), nil
	})
}

func (s *service) Filter(ctx context.Context, expr string) ([]*Match, error) {
	snap, err := s.snapshot()
	if err != nil {
		return nil, err
	}
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil, apierrors.InvalidArgument("filter is required", nil)
	}
	if len(expr) > MaxFilterLength {
		return nil, apierrors.InvalidArgument(fmt.Sprintf("filter longer than %d bytes", MaxFilterLength), nil)
	}

	return cached(ctx, s, snap, "filter:"+expr, func() ([]*Match, error) {
		filter, err := CompileFilter(expr)
		if err != nil {
			return nil, apierrors.InvalidArgument("invalid filter", err)
		}
		matches := make([]*Match, 0)
		for _, room := range orderRooms(snap.Rooms, nil) {
			for _, session := range room.Sessions {
				if err := ctx.Err(); err != nil {
					return nil, err
				}
				ok, err := filter.Match(room.Room, session)
				if err != nil {
					return nil, apierrors.InvalidArgument("filter evaluation failed", err)
				}
				if ok {
					matches = append(matches, &Match{Room: room.Room, Session: session})
				}
			}
		}
		return matches, nil
	})
}

func (s *service) Summary(_ context.Context) (*Summary, error) {
	snap, err := s.snapshot()
	if err != nil {
		return nil, err
	}
	return &Summary{
		Version:  snap.Version,
		Source:   snap.Source,
		LoadedAt: snap.LoadedAt,
		Rooms:    len(snap.Rooms),
		Sessions: snap.Rooms.SessionCount(),
		Build:    snap.Stats,
	}, nil
}
