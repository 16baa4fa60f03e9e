package timetable

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// NoTimeInfo is the display value used when no period resolves to a start time.
const NoTimeInfo = "시간 정보 없음"

// PeriodSlot maps one period index to the wall-clock label of its start.
type PeriodSlot struct {
	Index int
	Start string // "HH:MM"
}

// PeriodTable is an ordered, immutable period index → start time lookup.
type PeriodTable struct {
	slots   []PeriodSlot
	byIndex map[int]string
}

var (
	// ZeroBased numbers the first period of the day 0 (08:00) through 14 (22:00).
	ZeroBased = MustPeriodTable(hourlySlots(0, 8, 22))
	// OneBased numbers the first period of the day 1 (08:00) through 15 (22:00).
	OneBased = MustPeriodTable(hourlySlots(1, 8, 22))
)

func hourlySlots(firstIndex, firstHour, lastHour int) []PeriodSlot {
	slots := make([]PeriodSlot, 0, lastHour-firstHour+1)
	for hour := firstHour; hour <= lastHour; hour++ {
		slots = append(slots, PeriodSlot{
			Index: firstIndex + hour - firstHour,
			Start: fmt.Sprintf("%02d:00", hour),
		})
	}
	return slots
}

// NewPeriodTable builds a table from slots. Indices must be unique and
// non-negative, labels must be "HH:MM".
func NewPeriodTable(slots []PeriodSlot) (*PeriodTable, error) {
	if len(slots) == 0 {
		return nil, fmt.Errorf("period table is empty")
	}
	t := &PeriodTable{
		slots:   make([]PeriodSlot, 0, len(slots)),
		byIndex: make(map[int]string, len(slots)),
	}
	for _, slot := range slots {
		if slot.Index < 0 {
			return nil, fmt.Errorf("negative period index %d", slot.Index)
		}
		if _, ok := t.byIndex[slot.Index]; ok {
			return nil, fmt.Errorf("duplicate period index %d", slot.Index)
		}
		if _, err := labelHour(slot.Start); err != nil {
			return nil, fmt.Errorf("period %d: %w", slot.Index, err)
		}
		t.slots = append(t.slots, slot)
		t.byIndex[slot.Index] = slot.Start
	}
	return t, nil
}

// MustPeriodTable is NewPeriodTable for tables known to be valid.
func MustPeriodTable(slots []PeriodSlot) *PeriodTable {
	t, err := NewPeriodTable(slots)
	if err != nil {
		panic(err)
	}
	return t
}

// ParsePeriodTable accepts a preset name ("zero", "one") or a custom table
// written as "0=08:00,1=09:00,...".
func ParsePeriodTable(s string) (*PeriodTable, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "zero", "0":
		return ZeroBased, nil
	case "one", "1":
		return OneBased, nil
	}

	var slots []PeriodSlot
	for _, pair := range strings.Split(s, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		index, label, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, fmt.Errorf("invalid period table entry %q: want index=HH:MM", pair)
		}
		i, err := strconv.Atoi(strings.TrimSpace(index))
		if err != nil {
			return nil, fmt.Errorf("invalid period index %q: %w", index, err)
		}
		slots = append(slots, PeriodSlot{Index: i, Start: strings.TrimSpace(label)})
	}
	return NewPeriodTable(slots)
}

// Slots returns a copy of the table in declaration order.
func (t *PeriodTable) Slots() []PeriodSlot {
	return append([]PeriodSlot(nil), t.slots...)
}

// Lookup returns the start label of a period.
func (t *PeriodTable) Lookup(index int) (string, bool) {
	label, ok := t.byIndex[index]
	return label, ok
}

// Resolve turns a set of periods into a "HH:MM~HH:MM" display range.
// Unknown periods are ignored; the end of the range is one hour past the
// start of the last valid period.
func (t *PeriodTable) Resolve(periods []int) string {
	valid := make([]int, 0, len(periods))
	for _, p := range periods {
		if _, ok := t.Lookup(p); ok {
			valid = append(valid, p)
		}
	}
	if len(valid) == 0 {
		return NoTimeInfo
	}
	sort.Ints(valid)

	start, _ := t.Lookup(valid[0])
	endRaw, _ := t.Lookup(valid[len(valid)-1])
	hour, err := labelHour(endRaw)
	if err != nil {
		return NoTimeInfo
	}
	return fmt.Sprintf("%s~%02d:00", start, hour+1)
}

// labelHour returns the hour component of a "HH:MM" label.
func labelHour(label string) (int, error) {
	h, m, ok := strings.Cut(label, ":")
	if !ok || len(h) != 2 || len(m) != 2 {
		return 0, fmt.Errorf("invalid time label %q: want HH:MM", label)
	}
	hour, err := strconv.Atoi(h)
	if err != nil || hour < 0 || hour > 23 {
		return 0, fmt.Errorf("invalid hour in time label %q", label)
	}
	minute, err := strconv.Atoi(m)
	if err != nil || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("invalid minute in time label %q", label)
	}
	return hour, nil
}
