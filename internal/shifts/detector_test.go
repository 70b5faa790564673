package shifts

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func punchAt(id string, y int, m time.Month, d, hh, mm int) Punch {
	return Punch{EmployeeID: id, Time: time.Date(y, m, d, hh, mm, 0, 0, time.UTC)}
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestDetectAllDayShift(t *testing.T) {
	valid, broken := DetectAll([]Punch{
		punchAt("100", 2025, time.June, 2, 8, 0),
		punchAt("100", 2025, time.June, 2, 17, 0),
	}, date(2025, time.June, 1), date(2025, time.June, 30))

	require.Empty(t, broken)
	require.Len(t, valid["100"], 1)

	s := valid["100"][0]
	assert.Equal(t, TypeDay, s.Type)
	assert.Equal(t, date(2025, time.June, 2), s.AttributedDate)
	assert.Equal(t, 9.0, s.Hours)
}

func TestDetectAllDayShiftSwallowsMidDayPunches(t *testing.T) {
	// A lunch-break punch between start and end must not become broken.
	valid, broken := DetectAll([]Punch{
		punchAt("100", 2025, time.June, 2, 8, 0),
		punchAt("100", 2025, time.June, 2, 12, 30),
		punchAt("100", 2025, time.June, 2, 17, 0),
	}, date(2025, time.June, 1), date(2025, time.June, 30))

	require.Empty(t, broken)
	require.Len(t, valid["100"], 1)
	assert.Equal(t, 9.0, valid["100"][0].Hours)
}

func TestDetectAllDayShiftPicksLatestEnd(t *testing.T) {
	valid, _ := DetectAll([]Punch{
		punchAt("100", 2025, time.June, 2, 8, 0),
		punchAt("100", 2025, time.June, 2, 15, 0),
		punchAt("100", 2025, time.June, 2, 19, 0),
	}, date(2025, time.June, 1), date(2025, time.June, 30))

	require.Len(t, valid["100"], 1)
	assert.Equal(t, 11.0, valid["100"][0].Hours)
}

func TestDetectAllNightShiftAcrossMidnight(t *testing.T) {
	valid, broken := DetectAll([]Punch{
		punchAt("200", 2025, time.June, 2, 20, 0),
		punchAt("200", 2025, time.June, 3, 8, 0),
	}, date(2025, time.June, 1), date(2025, time.June, 30))

	require.Empty(t, broken)
	require.Len(t, valid["200"], 1)

	s := valid["200"][0]
	assert.Equal(t, TypeNight, s.Type)
	assert.Equal(t, date(2025, time.June, 2), s.AttributedDate)
	assert.Equal(t, 12.0, s.Hours)
}

func TestDetectAllPostMidnightNightShift(t *testing.T) {
	// Both punches after midnight: the shift belongs to the previous date.
	valid, broken := DetectAll([]Punch{
		punchAt("200", 2025, time.June, 3, 1, 0),
		punchAt("200", 2025, time.June, 3, 9, 0),
	}, date(2025, time.June, 1), date(2025, time.June, 30))

	require.Empty(t, broken)
	require.Len(t, valid["200"], 1)

	s := valid["200"][0]
	assert.Equal(t, TypeNight, s.Type)
	assert.Equal(t, date(2025, time.June, 2), s.AttributedDate)
	assert.Equal(t, 8.0, s.Hours)
}

func TestDetectAllRejectsOverlongDayPairing(t *testing.T) {
	// 04:30 + 17:30 on the same date is 13h: that is a night-shift end next
	// to the following night-shift start, not a day shift. The 17:30 punch
	// pairs across midnight; the 04:30 leftover becomes broken.
	valid, broken := DetectAll([]Punch{
		punchAt("300", 2025, time.June, 2, 4, 30),
		punchAt("300", 2025, time.June, 2, 17, 30),
		punchAt("300", 2025, time.June, 3, 4, 30),
	}, date(2025, time.June, 1), date(2025, time.June, 30))

	require.Len(t, valid["300"], 1)
	assert.Equal(t, TypeNight, valid["300"][0].Type)
	assert.Equal(t, date(2025, time.June, 2), valid["300"][0].AttributedDate)
	assert.Equal(t, 11.0, valid["300"][0].Hours)

	require.Len(t, broken, 1)
	assert.Equal(t, date(2025, time.June, 1), broken[0].AttributedDate)
}

func TestDetectAllLonePunches(t *testing.T) {
	_, broken := DetectAll([]Punch{
		punchAt("400", 2025, time.June, 5, 8, 0),
		punchAt("400", 2025, time.June, 10, 2, 0),
	}, date(2025, time.June, 1), date(2025, time.June, 30))

	require.Len(t, broken, 2)

	byDate := map[string]Shift{}
	for _, b := range broken {
		byDate[b.AttributedDate.Format("2006-01-02")] = b
	}
	assert.Contains(t, byDate, "2025-06-05")
	// An early-morning leftover is a night-shift end: previous date.
	assert.Contains(t, byDate, "2025-06-09")
}

func TestDetectAllDropsShiftsOutsideRange(t *testing.T) {
	valid, broken := DetectAll([]Punch{
		punchAt("500", 2025, time.May, 30, 8, 0),
		punchAt("500", 2025, time.May, 30, 17, 0),
		punchAt("500", 2025, time.June, 2, 8, 0),
		punchAt("500", 2025, time.June, 2, 17, 0),
	}, date(2025, time.June, 1), date(2025, time.June, 30))

	require.Empty(t, broken)
	require.Len(t, valid["500"], 1)
	assert.Equal(t, date(2025, time.June, 2), valid["500"][0].AttributedDate)
}

func TestEstimateType(t *testing.T) {
	cases := []struct {
		hour int
		want string
	}{
		{8, "day_start?"},
		{4, "day_start?"},
		{17, "day_end?"},
		{22, "night_start?"},
		{2, "night_end?"},
		{0, "night_end?"},
		{12, "unknown"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, EstimateType(tc.hour), "hour %d", tc.hour)
	}
}

func TestRound1(t *testing.T) {
	assert.Equal(t, 8.5, round1(8.49999999))
	assert.Equal(t, 11.0, round1(11.0))
	assert.Equal(t, 7.8, round1(7.75))
}
