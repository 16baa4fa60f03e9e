package timetable

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractClauses(t *testing.T) {
	tests := []struct {
		name    string
		field   string
		policy  NormalizePolicy
		want    []Clause
		skipped int
	}{
		{
			name:   "single clause",
			field:  "월1,2(B101)",
			policy: PolicyDedupe,
			want:   []Clause{{Day: "월", Room: "B101", Periods: []int{1, 2}}},
		},
		{
			name:   "two days same room",
			field:  "화3(A204)목3(A204)",
			policy: PolicyDedupe,
			want: []Clause{
				{Day: "화", Room: "A204", Periods: []int{3}},
				{Day: "목", Room: "A204", Periods: []int{3}},
			},
		},
		{
			name:   "separated clauses different rooms",
			field:  "월1,2(B101), 수5,6(공학관 301)",
			policy: PolicyDedupe,
			want: []Clause{
				{Day: "월", Room: "B101", Periods: []int{1, 2}},
				{Day: "수", Room: "공학관 301", Periods: []int{5, 6}},
			},
		},
		{
			name:   "dedupe and sort",
			field:  "금5,5,2(C1)",
			policy: PolicyDedupe,
			want:   []Clause{{Day: "금", Room: "C1", Periods: []int{2, 5}}},
		},
		{
			name:   "preserve as declared",
			field:  "금5,5,2(C1)",
			policy: PolicyPreserve,
			want:   []Clause{{Day: "금", Room: "C1", Periods: []int{5, 5, 2}}},
		},
		{
			name:   "room text may hold anything but a closing paren",
			field:  "토9(본관-B1 (지하)",
			policy: PolicyDedupe,
			want:   []Clause{{Day: "토", Room: "본관-B1 (지하", Periods: []int{9}}},
		},
		{
			name:   "no clauses",
			field:  "온라인 강의",
			policy: PolicyDedupe,
		},
		{
			name:   "empty field",
			field:  "",
			policy: PolicyDedupe,
		},
		{
			name:   "day without periods is not a clause",
			field:  "월(B101)화2(B102)",
			policy: PolicyDedupe,
			want:   []Clause{{Day: "화", Room: "B102", Periods: []int{2}}},
		},
		{
			name:    "empty room is skipped and counted",
			field:   "월1()화2(B102)",
			policy:  PolicyDedupe,
			want:    []Clause{{Day: "화", Room: "B102", Periods: []int{2}}},
			skipped: 1,
		},
		{
			name:    "commas only is skipped and counted",
			field:   "수,(B103)",
			policy:  PolicyDedupe,
			skipped: 1,
		},
		{
			name:   "empty period pieces are ignored",
			field:  "목1,,2,(D4)",
			policy: PolicyDedupe,
			want:   []Clause{{Day: "목", Room: "D4", Periods: []int{1, 2}}},
		},
		{
			name:   "unterminated clause",
			field:  "월1(B101",
			policy: PolicyDedupe,
		},
		{
			name:   "clause does not cross a line break",
			field:  "월1(B1\n01)화2(B2)",
			policy: PolicyDedupe,
			want:   []Clause{{Day: "화", Room: "B2", Periods: []int{2}}},
		},
		{
			name:   "clause does not cross a unicode line separator",
			field:  "월1(B1\u202801)화2(B2\u2029)수3(C3)",
			policy: PolicyDedupe,
			want:   []Clause{{Day: "수", Room: "C3", Periods: []int{3}}},
		},
		{
			name:   "period index past int range saturates",
			field:  "월99999999999999999999(B101)",
			policy: PolicyDedupe,
			want:   []Clause{{Day: "월", Room: "B101", Periods: []int{math.MaxInt}}},
		},
		{
			name:   "unknown day symbol",
			field:  "X1(B101)일7(E5)",
			policy: PolicyDedupe,
			want:   []Clause{{Day: "일", Room: "E5", Periods: []int{7}}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, skipped := ExtractClauses(tt.field, tt.policy)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.skipped, skipped)
		})
	}
}

func TestNormalizeDoesNotAlias(t *testing.T) {
	in := []int{3, 1}
	for _, policy := range []NormalizePolicy{PolicyDedupe, PolicyPreserve} {
		out := policy.Normalize(in)
		out[0] = 99
		assert.Equal(t, []int{3, 1}, in, "policy %s", policy)
	}
}

func TestParsePolicy(t *testing.T) {
	p, err := ParsePolicy("")
	require.NoError(t, err)
	assert.Equal(t, PolicyDedupe, p)

	p, err = ParsePolicy(" Preserve ")
	require.NoError(t, err)
	assert.Equal(t, PolicyPreserve, p)

	_, err = ParsePolicy("sorted")
	assert.Error(t, err)
}

func TestDayOrder(t *testing.T) {
	assert.Equal(t, 1, DayOrder("월"))
	assert.Equal(t, 5, DayOrder("금"))
	assert.Equal(t, 7, DayOrder("일"))
	assert.Equal(t, 0, DayOrder(""))
	assert.Equal(t, 0, DayOrder("월화"))
	assert.Equal(t, 0, DayOrder("M"))
}
