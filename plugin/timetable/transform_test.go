package timetable

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func course(subject, professor, field string) *Course {
	raw, _ := json.Marshal(map[string]string{
		"SBJ_NM":         subject,
		"STAFF_NM":       professor,
		"LECT_TIME_ROOM": field,
	})
	return &Course{
		SubjectName:    subject,
		InstructorName: professor,
		ScheduleField:  field,
		Raw:            raw,
	}
}

func TestTransformSingleClause(t *testing.T) {
	tr := NewTransformer(ZeroBased, PolicyDedupe)
	c := course("자료구조", "김교수", "월1,2(B101)")

	rooms, stats := tr.Transform([]*Course{c})

	require.Len(t, rooms, 1)
	require.Len(t, rooms["B101"], 1)
	s := rooms["B101"][0]
	assert.Equal(t, "자료구조", s.Subject)
	assert.Equal(t, "김교수", s.Professor)
	assert.Equal(t, "월", s.Day)
	assert.Equal(t, []int{1, 2}, s.Periods)
	assert.Equal(t, "09:00~11:00", s.Time)
	assert.JSONEq(t, string(c.Raw), string(s.Original))

	assert.Equal(t, Stats{Courses: 1, Rooms: 1, Sessions: 1}, stats)
}

func TestTransformSameRoomTwoDays(t *testing.T) {
	tr := NewTransformer(nil, "")
	rooms, _ := tr.Transform([]*Course{course("운영체제", "이교수", "화3(A204)목3(A204)")})

	require.Len(t, rooms["A204"], 2)
	assert.Equal(t, "화", rooms["A204"][0].Day)
	assert.Equal(t, "목", rooms["A204"][1].Day)
	for _, s := range rooms["A204"] {
		assert.Equal(t, []int{3}, s.Periods)
		assert.Equal(t, "11:00~12:00", s.Time)
	}
}

func TestTransformTwoRooms(t *testing.T) {
	tr := NewTransformer(ZeroBased, PolicyDedupe)
	rooms, stats := tr.Transform([]*Course{course("네트워크", "박교수", "월1,2(B101)수5(C303)")})

	require.Len(t, rooms["B101"], 1)
	require.Len(t, rooms["C303"], 1)
	assert.Equal(t, "월", rooms["B101"][0].Day)
	assert.Equal(t, []int{1, 2}, rooms["B101"][0].Periods)
	assert.Equal(t, "수", rooms["C303"][0].Day)
	assert.Equal(t, []int{5}, rooms["C303"][0].Periods)
	assert.Equal(t, 2, stats.Rooms)
	assert.Equal(t, 2, stats.Sessions)
}

func TestTransformNoClauses(t *testing.T) {
	tr := NewTransformer(ZeroBased, PolicyDedupe)
	rooms, stats := tr.Transform([]*Course{
		course("원격수업", "최교수", "온라인"),
		course("미정", "", ""),
		nil,
	})

	assert.NotNil(t, rooms)
	assert.Empty(t, rooms)
	assert.Equal(t, 3, stats.Courses)
	assert.Equal(t, 2, stats.CoursesWithoutRoom)
	assert.Zero(t, stats.Sessions)
}

func TestTransformKeepsSharedSlots(t *testing.T) {
	tr := NewTransformer(ZeroBased, PolicyDedupe)
	rooms, _ := tr.Transform([]*Course{
		course("A", "x", "월1(B101)"),
		course("B", "y", "월1(B101)"),
	})

	require.Len(t, rooms["B101"], 2)
	assert.Equal(t, "A", rooms["B101"][0].Subject)
	assert.Equal(t, "B", rooms["B101"][1].Subject)
	assert.Equal(t, 2, rooms.SessionCount())
}

func TestTransformPolicy(t *testing.T) {
	c := course("A", "x", "금5,5,2(C1)")

	rooms, _ := NewTransformer(ZeroBased, PolicyDedupe).Transform([]*Course{c})
	assert.Equal(t, []int{2, 5}, rooms["C1"][0].Periods)

	rooms, _ = NewTransformer(ZeroBased, PolicyPreserve).Transform([]*Course{c})
	assert.Equal(t, []int{5, 5, 2}, rooms["C1"][0].Periods)
	assert.Equal(t, "10:00~14:00", rooms["C1"][0].Time)
}

func TestTransformCountsSkippedClauses(t *testing.T) {
	rooms, stats := NewTransformer(ZeroBased, PolicyDedupe).Transform([]*Course{
		course("A", "x", "월1()화2(B102)"),
	})
	assert.Len(t, rooms["B102"], 1)
	assert.Equal(t, 1, stats.SkippedClauses)
	assert.Zero(t, stats.CoursesWithoutRoom)
}

func TestTransformOversizedPeriodKeepsSession(t *testing.T) {
	rooms, stats := NewTransformer(ZeroBased, PolicyDedupe).Transform([]*Course{
		course("A", "x", "월99999999999999999999(B101)"),
		course("B", "y", "화2,99999999999999999999(B101)"),
	})

	require.Len(t, rooms["B101"], 2)
	assert.Equal(t, NoTimeInfo, rooms["B101"][0].Time)
	assert.Equal(t, "10:00~11:00", rooms["B101"][1].Time)
	assert.Zero(t, stats.SkippedClauses)
	assert.Equal(t, 2, stats.Sessions)
}

func TestTransformIdempotent(t *testing.T) {
	courses := []*Course{
		course("A", "x", "월1(B101)화2,3(B102)"),
		course("B", "y", "수14,99(B101)"),
	}
	tr := NewTransformer(ZeroBased, PolicyDedupe)
	first, _ := tr.Transform(courses)
	second, _ := tr.Transform(courses)
	assert.Equal(t, first, second)
	assert.Equal(t, "22:00~23:00", first["B101"][1].Time)
}

func TestSessionStartMinutes(t *testing.T) {
	assert.Equal(t, 9*60, (&Session{Time: "09:00~11:00"}).StartMinutes())
	assert.Equal(t, 22*60+30, (&Session{Time: "22:30~23:00"}).StartMinutes())
	assert.Equal(t, -1, (&Session{Time: NoTimeInfo}).StartMinutes())
	assert.Equal(t, -1, (&Session{}).StartMinutes())
}

func TestSessionJSONShape(t *testing.T) {
	rooms, _ := NewTransformer(ZeroBased, PolicyDedupe).Transform([]*Course{course("A", "x", "월1(B101)")})
	data, err := json.Marshal(rooms)
	require.NoError(t, err)
	assert.JSONEq(t, `{"B101":[{
		"subject":"A","professor":"x","day":"월","periods":[1],"time":"09:00~10:00",
		"original":{"SBJ_NM":"A","STAFF_NM":"x","LECT_TIME_ROOM":"월1(B101)"}
	}]}`, string(data))
}
