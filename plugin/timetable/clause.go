package timetable

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Days is the day alphabet in weekly order, Monday first.
const Days = "월화수목금토일"

// IsDay reports whether r is one of the seven day symbols.
func IsDay(r rune) bool {
	return strings.ContainsRune(Days, r)
}

// DayOrder returns 1 for Monday through 7 for Sunday, and 0 for anything else.
func DayOrder(day string) int {
	r, size := utf8.DecodeRuneInString(day)
	if size == 0 || size != len(day) {
		return 0
	}
	i := 1
	for _, d := range Days {
		if d == r {
			return i
		}
		i++
	}
	return 0
}

// NormalizePolicy controls how the period list of a clause is reported.
type NormalizePolicy string

const (
	// PolicyDedupe removes duplicate periods and sorts them ascending.
	PolicyDedupe NormalizePolicy = "dedupe"
	// PolicyPreserve keeps periods exactly as declared.
	PolicyPreserve NormalizePolicy = "preserve"
)

// ParsePolicy parses a policy name. The empty string selects PolicyDedupe.
func ParsePolicy(s string) (NormalizePolicy, error) {
	switch NormalizePolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", PolicyDedupe:
		return PolicyDedupe, nil
	case PolicyPreserve:
		return PolicyPreserve, nil
	default:
		return "", fmt.Errorf("unknown periods policy %q (valid: dedupe, preserve)", s)
	}
}

// Normalize applies the policy to periods and returns a new slice.
func (p NormalizePolicy) Normalize(periods []int) []int {
	if p == PolicyPreserve {
		return append([]int{}, periods...)
	}
	seen := make(map[int]struct{}, len(periods))
	out := make([]int, 0, len(periods))
	for _, period := range periods {
		if _, ok := seen[period]; ok {
			continue
		}
		seen[period] = struct{}{}
		out = append(out, period)
	}
	sort.Ints(out)
	return out
}

// Clause is one day + period set + room assignment parsed from a schedule field.
type Clause struct {
	Day     string
	Room    string
	Periods []int
}

// span is a located clause candidate before field validation.
type span struct {
	day     string
	periods string
	room    string
}

// scanClauses locates non-overlapping clause candidates shaped like
// <day><digits and commas>(<text>). A candidate ends at the first ')' and
// may not cross a line break.
func scanClauses(field string) []span {
	var spans []span
	for i := 0; i < len(field); {
		r, size := utf8.DecodeRuneInString(field[i:])
		if !IsDay(r) {
			i += size
			continue
		}
		sp, end, ok := matchClause(field, i, size)
		if !ok {
			i += size
			continue
		}
		spans = append(spans, sp)
		i = end
	}
	return spans
}

func matchClause(field string, start, daySize int) (span, int, bool) {
	digits := start + daySize
	k := digits
	for k < len(field) && (isDigit(field[k]) || field[k] == ',') {
		k++
	}
	if k == digits || k >= len(field) || field[k] != '(' {
		return span{}, 0, false
	}
	open := k
	for k = open + 1; k < len(field) && field[k] != ')'; k++ {
		if isLineBreak(field[k:]) {
			return span{}, 0, false
		}
	}
	if k >= len(field) {
		return span{}, 0, false
	}
	return span{
		day:     field[start:digits],
		periods: field[digits:open],
		room:    field[open+1 : k],
	}, k + 1, true
}

// isLineBreak reports whether s starts with a line terminator.
func isLineBreak(s string) bool {
	switch {
	case s[0] == '\n', s[0] == '\r':
		return true
	case strings.HasPrefix(s, "\u2028"), strings.HasPrefix(s, "\u2029"):
		return true
	}
	return false
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

// split validates a candidate and parses its period list.
func (s span) split() (Clause, error) {
	if s.room == "" {
		return Clause{}, fmt.Errorf("clause %s%s(): empty room", s.day, s.periods)
	}
	var periods []int
	for _, piece := range strings.Split(s.periods, ",") {
		if piece == "" {
			continue
		}
		// An index too large for int saturates and stays unresolvable.
		p, err := strconv.Atoi(piece)
		if err != nil && !errors.Is(err, strconv.ErrRange) {
			return Clause{}, fmt.Errorf("clause %s%s(%s): %w", s.day, s.periods, s.room, err)
		}
		periods = append(periods, p)
	}
	if len(periods) == 0 {
		return Clause{}, fmt.Errorf("clause %s%s(%s): no periods", s.day, s.periods, s.room)
	}
	return Clause{Day: s.day, Room: s.room, Periods: periods}, nil
}

// ExtractClauses returns the well-formed clauses of a schedule field, with
// periods normalized by policy, and the number of malformed candidates skipped.
func ExtractClauses(field string, policy NormalizePolicy) ([]Clause, int) {
	var (
		clauses []Clause
		skipped int
	)
	for _, sp := range scanClauses(field) {
		c, err := sp.split()
		if err != nil {
			skipped++
			continue
		}
		c.Periods = policy.Normalize(c.Periods)
		clauses = append(clauses, c)
	}
	return clauses, skipped
}
