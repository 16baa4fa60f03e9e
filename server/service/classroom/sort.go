package classroom

import (
	"bytes"
	"sort"
	"strconv"

	"github.com/bytedance/sonic"

	"github.com/hrygo/roomtable/plugin/timetable"
)

// RoomSchedule is one room and its ordered sessions.
type RoomSchedule struct {
	Room     string
	Sessions []*timetable.Session
}

// Rooms is an ordered room listing. It encodes as a JSON object whose keys
// keep the listing order.
type Rooms []RoomSchedule

// MarshalJSON implements json.Marshaler.
func (r Rooms) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, room := range r {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := sonic.ConfigStd.Marshal(room.Room)
		if err != nil {
			return nil, err
		}
		sessions := room.Sessions
		if sessions == nil {
			sessions = []*timetable.Session{}
		}
		value, err := sonic.ConfigStd.Marshal(sessions)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Names returns the room names in order.
func (r Rooms) Names() []string {
	names := make([]string, len(r))
	for i, room := range r {
		names[i] = room.Room
	}
	return names
}

// roomKey is the sort key of a room name: its first run of uppercase ASCII
// letters and its first run of digits.
type roomKey struct {
	prefix string
	number int
}

func keyOf(room string) roomKey {
	return roomKey{
		prefix: firstRun(room, isUpper),
		number: atoiOrZero(firstRun(room, isDigit)),
	}
}

func firstRun(s string, in func(byte) bool) string {
	start := -1
	for i := 0; i < len(s); i++ {
		if in(s[i]) {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			return s[start:i]
		}
	}
	if start >= 0 {
		return s[start:]
	}
	return ""
}

func isUpper(b byte) bool { return b >= 'A' && b <= 'Z' }
func isDigit(b byte) bool { return b >= '0' && b <= '9' }

func atoiOrZero(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}

// lessRoom orders rooms by letter prefix, then by number, then by name.
func lessRoom(a, b string) bool {
	ka, kb := keyOf(a), keyOf(b)
	if ka.prefix != kb.prefix {
		return ka.prefix < kb.prefix
	}
	if ka.number != kb.number {
		return ka.number < kb.number
	}
	return a < b
}

// SortRoomNames sorts room names in place.
func SortRoomNames(names []string) {
	sort.Slice(names, func(i, j int) bool {
		return lessRoom(names[i], names[j])
	})
}

// SortSessions returns a copy of sessions ordered by day of week and then
// start time. Sessions without time info go last within their day and
// unknown days go last overall.
func SortSessions(sessions []*timetable.Session) []*timetable.Session {
	out := append([]*timetable.Session{}, sessions...)
	sort.SliceStable(out, func(i, j int) bool {
		di, dj := dayRank(out[i].Day), dayRank(out[j].Day)
		if di != dj {
			return di < dj
		}
		return startRank(out[i]) < startRank(out[j])
	})
	return out
}

func dayRank(day string) int {
	if order := timetable.DayOrder(day); order > 0 {
		return order
	}
	return len([]rune(timetable.Days)) + 1
}

func startRank(s *timetable.Session) int {
	if m := s.StartMinutes(); m >= 0 {
		return m
	}
	return 24 * 60
}

// orderRooms builds an ordered listing of the selected rooms with their
// sessions sorted.
func orderRooms(rooms timetable.RoomMap, keep func(string) bool) Rooms {
	names := make([]string, 0, len(rooms))
	for name := range rooms {
		if keep == nil || keep(name) {
			names = append(names, name)
		}
	}
	SortRoomNames(names)

	out := make(Rooms, 0, len(names))
	for _, name := range names {
		out = append(out, RoomSchedule{Room: name, Sessions: SortSessions(rooms[name])})
	}
	return out
}
