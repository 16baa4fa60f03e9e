// Package timetable turns a course timetable export into a by-room schedule.
//
// A course carries an encoded schedule field such as "화3(A204)목3(A204)".
// Each day/period/room clause in that field becomes one Session filed under
// its room. Period indices are shown as a wall-clock range through a
// configurable PeriodTable.
package timetable

import (
	"encoding/json"
	"log/slog"
)

// FieldKeys names the input record keys holding the three fields the
// transformation reads.
type FieldKeys struct {
	Subject    string
	Instructor string
	Schedule   string
}

// DefaultFieldKeys matches the university export format.
var DefaultFieldKeys = FieldKeys{
	Subject:    "SBJ_NM",
	Instructor: "STAFF_NM",
	Schedule:   "LECT_TIME_ROOM",
}

// Course is one input record.
type Course struct {
	SubjectName    string
	InstructorName string
	ScheduleField  string
	// Raw is the verbatim input record.
	Raw json.RawMessage
}

// Session is one class meeting in one room on one day.
type Session struct {
	Subject   string          `json:"subject"`
	Professor string          `json:"professor"`
	Day       string          `json:"day"`
	Periods   []int           `json:"periods"`
	Time      string          `json:"time"`
	Original  json.RawMessage `json:"original"`
}

// StartMinutes returns the start of the session's time range in minutes
// after midnight, or -1 when the session has no time info.
func (s *Session) StartMinutes() int {
	if len(s.Time) < 5 || s.Time[2] != ':' {
		return -1
	}
	hour, err := labelHour(s.Time[:5])
	if err != nil {
		return -1
	}
	return hour*60 + int(s.Time[3]-'0')*10 + int(s.Time[4]-'0')
}

// RoomMap maps a room to its sessions in discovery order.
type RoomMap map[string][]*Session

// SessionCount returns the number of sessions across all rooms.
func (m RoomMap) SessionCount() int {
	n := 0
	for _, sessions := range m {
		n += len(sessions)
	}
	return n
}

// Stats summarizes one transformation run.
type Stats struct {
	Courses            int `json:"courses"`
	CoursesWithoutRoom int `json:"courses_without_room"`
	Rooms              int `json:"rooms"`
	Sessions           int `json:"sessions"`
	SkippedClauses     int `json:"skipped_clauses"`
}

// Transformer builds room maps with a fixed period table and normalization policy.
type Transformer struct {
	table  *PeriodTable
	policy NormalizePolicy
	logger *slog.Logger
}

// Option configures a Transformer.
type Option func(*Transformer)

// WithLogger sets the logger used to report skipped clauses.
func WithLogger(logger *slog.Logger) Option {
	return func(t *Transformer) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// NewTransformer returns a Transformer. A nil table selects ZeroBased and an
// empty policy selects PolicyDedupe.
func NewTransformer(table *PeriodTable, policy NormalizePolicy, opts ...Option) *Transformer {
	if table == nil {
		table = ZeroBased
	}
	if policy == "" {
		policy = PolicyDedupe
	}
	t := &Transformer{
		table:  table,
		policy: policy,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Table returns the period table in use.
func (t *Transformer) Table() *PeriodTable {
	return t.table
}

// Policy returns the normalization policy in use.
func (t *Transformer) Policy() NormalizePolicy {
	return t.policy
}

// Transform files every clause of every course under its room. It never
// fails; courses without clauses contribute nothing.
func (t *Transformer) Transform(courses []*Course) (RoomMap, Stats) {
	rooms := make(RoomMap)
	stats := Stats{Courses: len(courses)}

	for _, course := range courses {
		if course == nil {
			continue
		}
		clauses, skipped := ExtractClauses(course.ScheduleField, t.policy)
		if skipped > 0 {
			stats.SkippedClauses += skipped
			t.logger.Debug("skipped malformed schedule clauses",
				slog.String("subject", course.SubjectName),
				slog.String("field", course.ScheduleField),
				slog.Int("skipped", skipped))
		}
		if len(clauses) == 0 {
			stats.CoursesWithoutRoom++
			continue
		}
		for _, c := range clauses {
			rooms[c.Room] = append(rooms[c.Room], &Session{
				Subject:   course.SubjectName,
				Professor: course.InstructorName,
				Day:       c.Day,
				Periods:   c.Periods,
				Time:      t.table.Resolve(c.Periods),
				Original:  course.Raw,
			})
			stats.Sessions++
		}
	}

	stats.Rooms = len(rooms)
	return rooms, stats
}
