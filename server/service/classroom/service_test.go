package classroom

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrygo/roomtable/plugin/timetable"
	apierrors "github.com/hrygo/roomtable/server/internal/errors"
	"github.com/hrygo/roomtable/store"
	"github.com/hrygo/roomtable/store/cache"
)

// MockStore serves a fixed snapshot.
type MockStore struct {
	snapshot *store.Snapshot
}

func (m *MockStore) Snapshot() *store.Snapshot {
	return m.snapshot
}

func session(subject, day, time string, periods ...int) *timetable.Session {
	return &timetable.Session{Subject: subject, Professor: subject + "-prof", Day: day, Periods: periods, Time: time}
}

func testRooms() timetable.RoomMap {
	return timetable.RoomMap{
		"B101": {
			session("network", "수", "13:00~15:00", 5, 6),
			session("algorithms", "월", "09:00~11:00", 1, 2),
		},
		"b205": {session("seminar", "화", "10:00~11:00", 2)},
		"A10":  {session("os", "목", "11:00~12:00", 3)},
		"A2": {
			session("db", "화", "11:00~12:00", 3),
			session("db", "목", "11:00~12:00", 3),
		},
		"공학관 301": {session("capstone", "금", timetable.NoTimeInfo, 20)},
	}
}

func newTestService(t *testing.T) (Service, *MockStore) {
	t.Helper()
	c := cache.New(cache.Config{DefaultTTL: time.Minute, MaxItems: 100})
	t.Cleanup(c.Close)
	m := &MockStore{snapshot: &store.Snapshot{Rooms: testRooms(), Version: 1, Source: "test"}}
	return NewService(m, c), m
}

func TestRoom(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	sessions, err := svc.Room(ctx, "B101")
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, "algorithms", sessions[0].Subject)
	assert.Equal(t, "network", sessions[1].Subject)

	sessions, err = svc.Room(ctx, "Z999")
	require.NoError(t, err)
	assert.NotNil(t, sessions)
	assert.Empty(t, sessions)
}

func TestClassrooms(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	all, err := svc.Classrooms(ctx, "  ")
	require.NoError(t, err)
	assert.Equal(t, []string{"b205", "공학관 301", "A2", "A10", "B101"}, all.Names())

	b, err := svc.Classrooms(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, []string{"b205", "B101"}, b.Names())

	a, err := svc.Classrooms(ctx, "A")
	require.NoError(t, err)
	assert.Equal(t, []string{"A2", "A10"}, a.Names())
	assert.Equal(t, "화", a[0].Sessions[0].Day)

	none, err := svc.Classrooms(ctx, "X")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestBuilding(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	rooms, err := svc.Building(ctx, "B")
	require.NoError(t, err)
	assert.Equal(t, []string{"B101"}, rooms.Names())
	assert.Equal(t, "algorithms", rooms[0].Sessions[0].Subject)

	rooms, err = svc.Building(ctx, "공학관")
	require.NoError(t, err)
	assert.Equal(t, []string{"공학관 301"}, rooms.Names())
}

func TestFilter(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	matches, err := svc.Filter(ctx, `day == "목"`)
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, "A2", matches[0].Room)
	assert.Equal(t, "A10", matches[1].Room)

	matches, err = svc.Filter(ctx, `periods.exists(p, p >= 5) && room.startsWith("B")`)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "network", matches[0].Session.Subject)

	_, err = svc.Filter(ctx, `day ==`)
	assert.True(t, apierrors.IsCode(err, apierrors.ErrCodeInvalidArgument))

	_, err = svc.Filter(ctx, `1 + 1`)
	assert.True(t, apierrors.IsCode(err, apierrors.ErrCodeInvalidArgument))

	_, err = svc.Filter(ctx, "")
	assert.True(t, apierrors.IsCode(err, apierrors.ErrCodeInvalidArgument))
}

func TestServiceWithoutSnapshot(t *testing.T) {
	ctx := context.Background()
	svc := NewService(&MockStore{}, nil)

	_, err := svc.Room(ctx, "B101")
	assert.True(t, apierrors.IsCode(err, apierrors.ErrCodeServiceUnavailable))
	_, err = svc.Classrooms(ctx, "")
	assert.True(t, apierrors.IsCode(err, apierrors.ErrCodeServiceUnavailable))
	_, err = svc.Summary(ctx)
	assert.True(t, apierrors.IsCode(err, apierrors.ErrCodeServiceUnavailable))
}

func TestCacheFollowsSnapshotVersion(t *testing.T) {
	ctx := context.Background()
	svc, m := newTestService(t)

	before, err := svc.Classrooms(ctx, "")
	require.NoError(t, err)
	require.Len(t, before, 5)

	m.snapshot = &store.Snapshot{
		Rooms:   timetable.RoomMap{"C1": {session("new", "월", "09:00~10:00", 1)}},
		Version: 2,
	}
	after, err := svc.Classrooms(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"C1"}, after.Names())
}

func TestSummary(t *testing.T) {
	svc, m := newTestService(t)
	m.snapshot.Stats = &timetable.Stats{Courses: 9}

	summary, err := svc.Summary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5, summary.Rooms)
	assert.Equal(t, 7, summary.Sessions)
	assert.Equal(t, uint64(1), summary.Version)
	assert.Equal(t, 9, summary.Build.Courses)
}
