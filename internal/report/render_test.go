package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-skud-reconciliation-ui/internal/compare"
)

func TestDateAxisInclusive(t *testing.T) {
	axis := DateAxis("2025-06-01", "2025-06-07")
	require.Len(t, axis, 7)
	assert.Equal(t, "2025-06-01", axis[0].Key)
	assert.Equal(t, "01.06", axis[0].Label)
	assert.Equal(t, "2025-06-07", axis[6].Key)
	assert.Equal(t, "07.06", axis[6].Label)
}

func TestDateAxisSingleDay(t *testing.T) {
	axis := DateAxis("2025-06-15", "2025-06-15")
	require.Len(t, axis, 1)
	assert.Equal(t, "15.06", axis[0].Label)
}

func TestDateAxisMonthAndYearRollover(t *testing.T) {
	axis := DateAxis("2025-12-30", "2026-01-02")
	require.Len(t, axis, 4)
	assert.Equal(t, []string{"30.12", "31.12", "01.01", "02.01"},
		[]string{axis[0].Label, axis[1].Label, axis[2].Label, axis[3].Label})
	assert.Equal(t, "2026-01-01", axis[2].Key)
}

func TestDateAxisDegenerateRanges(t *testing.T) {
	assert.Empty(t, DateAxis("2025-06-07", "2025-06-01"))
	assert.Empty(t, DateAxis("junk", "2025-06-01"))
	assert.Empty(t, DateAxis("2025-06-01", ""))
}

func TestClassifyPrecedence(t *testing.T) {
	cases := []struct {
		name    string
		cell    compare.DayCell
		present bool
		want    CellState
	}{
		{"absent date", compare.DayCell{}, false, CellEmpty},
		{"broken wins over hours", compare.DayCell{Tabell: 8, Skud: 3, Diff: 5, Broken: true}, true, CellBroken},
		{"both zero", compare.DayCell{}, true, CellEmpty},
		{"exact match", compare.DayCell{Tabell: 8, Skud: 8}, true, CellMatch},
		{"tabell over skud", compare.DayCell{Tabell: 8, Skud: 6, Diff: 2}, true, CellOver},
		{"skud over tabell", compare.DayCell{Tabell: 8, Skud: 9.5, Diff: -1.5}, true, CellUnder},
		{"skud only", compare.DayCell{Skud: 11, Diff: -11}, true, CellUnder},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Classify(tc.cell, tc.present))
		})
	}
}

func samplePayload() compare.Result {
	return compare.Result{
		Comparison: []compare.Row{
			{
				EmployeeID: "100",
				Name:       "Ivanov I.I.",
				JobTitle:   "welder",
				Days: map[string]compare.DayCell{
					"2025-06-01": {Tabell: 8, Skud: 8, ShiftType: "day"},
					"2025-06-02": {Tabell: 11, Skud: 9.5, Diff: 1.5, ShiftType: "night"},
					"2025-06-03": {Tabell: 8, Broken: true},
				},
			},
		},
		BrokenShifts: []compare.BrokenShift{
			{
				EmployeeID:     "100",
				Name:           "Ivanov I.I.",
				AttributedDate: "2025-06-03",
				PunchTime:      "2025-06-03 08:15:00",
				EstimatedType:  "day_start?",
			},
		},
		Summary: compare.Summary{
			TotalEmployeesTabell: 1,
			TotalEmployeesSKUD:   1,
			MatchedEmployees:     1,
			BrokenCount:          1,
			DateRange:            [2]string{"2025-06-01", "2025-06-04"},
		},
	}
}

func TestRenderMatrix(t *testing.T) {
	view := Render(samplePayload())

	require.Len(t, view.Matrix.Dates, 4)
	require.Len(t, view.Matrix.Rows, 1)

	row := view.Matrix.Rows[0]
	assert.Equal(t, "100", row.EmployeeID)
	require.Len(t, row.Cells, 4)

	match := row.Cells[0]
	assert.Equal(t, CellMatch, match.State)
	assert.Equal(t, "8", match.Tabell)
	assert.Equal(t, "8", match.Skud)
	assert.Equal(t, "0", match.Diff)
	assert.Equal(t, "day", match.ShiftType)

	over := row.Cells[1]
	assert.Equal(t, CellOver, over.State)
	assert.Equal(t, "11", over.Tabell)
	assert.Equal(t, "9.5", over.Skud)
	assert.Equal(t, "+1.5", over.Diff)

	brokenCell := row.Cells[2]
	assert.Equal(t, CellBroken, brokenCell.State)
	assert.Equal(t, "8", brokenCell.Tabell)
	assert.Equal(t, "?", brokenCell.Skud)
	assert.Equal(t, "", brokenCell.Diff)

	empty := row.Cells[3]
	assert.Equal(t, CellEmpty, empty.State)
	assert.Equal(t, "", empty.Tabell)
	assert.Equal(t, "", empty.Skud)
}

func TestRenderSummaryAndAnomalies(t *testing.T) {
	view := Render(samplePayload())

	assert.Equal(t, 1, view.Summary.TabellEmployees)
	assert.Equal(t, 1, view.Summary.SKUDEmployees)
	assert.Equal(t, 1, view.Summary.Matched)
	assert.Equal(t, 1, view.Summary.BrokenShifts)

	require.True(t, view.Anomalies.Visible)
	assert.Equal(t, 1, view.Anomalies.Count)
	require.Len(t, view.Anomalies.Rows, 1)
	assert.Equal(t, "2025-06-03", view.Anomalies.Rows[0].Date)
	assert.Equal(t, "day_start?", view.Anomalies.Rows[0].EstimatedType)
}

func TestRenderAnomaliesHiddenWhenEmpty(t *testing.T) {
	payload := samplePayload()
	payload.BrokenShifts = nil
	payload.Summary.BrokenCount = 0

	view := Render(payload)
	assert.False(t, view.Anomalies.Visible)
	assert.Equal(t, 0, view.Anomalies.Count)
	assert.Empty(t, view.Anomalies.Rows)
}

func TestRenderIdempotent(t *testing.T) {
	payload := samplePayload()
	assert.Equal(t, Render(payload), Render(payload))
}

func TestFormatHours(t *testing.T) {
	assert.Equal(t, "8", formatHours(8))
	assert.Equal(t, "7.5", formatHours(7.5))
	assert.Equal(t, "0", formatHours(0))
}

func TestFormatDiff(t *testing.T) {
	assert.Equal(t, "+2", formatDiff(2))
	assert.Equal(t, "+0.5", formatDiff(0.5))
	assert.Equal(t, "-1.5", formatDiff(-1.5))
	assert.Equal(t, "0", formatDiff(0))
}
