// Package report turns a comparison payload into display view-models: the
// summary cards, the anomaly list and the day-by-employee matrix. Everything
// here is a pure function of the payload; the dashboard only maps cell
// states to CSS classes.
package report

import (
	"strconv"
	"time"

	"go-skud-reconciliation-ui/internal/compare"
)

// CellState is the visual classification of one matrix cell. Exactly one
// state applies per cell.
type CellState string

const (
	CellEmpty  CellState = "empty"
	CellBroken CellState = "broken"
	CellMatch  CellState = "match"
	CellOver   CellState = "over"
	CellUnder  CellState = "under"
)

// DateColumn is one matrix column. Key is the ISO date used to join against
// row day maps; Label is the compact day.month header.
type DateColumn struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

// Cell is one classified matrix cell with display-ready hour strings.
// Tabell/Skud/Diff are empty for Empty cells; Skud is "?" for Broken cells.
type Cell struct {
	Date      string    `json:"date"`
	State     CellState `json:"state"`
	Tabell    string    `json:"tabell,omitempty"`
	Skud      string    `json:"skud,omitempty"`
	Diff      string    `json:"diff,omitempty"`
	ShiftType string    `json:"shift_type,omitempty"`
}

// MatrixRow is one employee's identity columns plus one cell per axis date.
type MatrixRow struct {
	EmployeeID string `json:"employee_id"`
	Name       string `json:"name"`
	JobTitle   string `json:"job_title"`
	Cells      []Cell `json:"cells"`
}

// Matrix is the full day-by-employee grid.
type Matrix struct {
	Dates []DateColumn `json:"dates"`
	Rows  []MatrixRow  `json:"rows"`
}

// SummaryCards mirrors the payload summary counts verbatim.
type SummaryCards struct {
	TabellEmployees int `json:"tabell_employees"`
	SKUDEmployees   int `json:"skud_employees"`
	Matched         int `json:"matched"`
	BrokenShifts    int `json:"broken_shifts"`
}

// AnomalyRow is one broken-shift display row, in payload order.
type AnomalyRow struct {
	EmployeeID    string `json:"employee_id"`
	Name          string `json:"name"`
	Date          string `json:"date"`
	PunchTime     string `json:"punch_time"`
	EstimatedType string `json:"estimated_type"`
}

// AnomalyList is the broken-shift panel. Visible is false iff there are no
// rows; the panel is then suppressed entirely rather than shown empty.
type AnomalyList struct {
	Visible bool         `json:"visible"`
	Count   int          `json:"count"`
	Rows    []AnomalyRow `json:"rows"`
}

// View is the complete render output for one comparison payload.
type View struct {
	Summary   SummaryCards `json:"summary"`
	Anomalies AnomalyList  `json:"anomalies"`
	Matrix    Matrix       `json:"matrix"`
}

const isoDate = "2006-01-02"

// Render derives all three view structures from a payload. Calling it twice
// on the same payload yields identical views.
func Render(res compare.Result) View {
	return View{
		Summary: SummaryCards{
			TabellEmployees: res.Summary.TotalEmployeesTabell,
			SKUDEmployees:   res.Summary.TotalEmployeesSKUD,
			Matched:         res.Summary.MatchedEmployees,
			BrokenShifts:    res.Summary.BrokenCount,
		},
		Anomalies: renderAnomalies(res.BrokenShifts),
		Matrix:    renderMatrix(res),
	}
}

func renderAnomalies(broken []compare.BrokenShift) AnomalyList {
	rows := make([]AnomalyRow, 0, len(broken))
	for _, b := range broken {
		rows = append(rows, AnomalyRow{
			EmployeeID:    b.EmployeeID,
			Name:          b.Name,
			Date:          b.AttributedDate,
			PunchTime:     b.PunchTime,
			EstimatedType: b.EstimatedType,
		})
	}
	return AnomalyList{
		Visible: len(rows) > 0,
		Count:   len(rows),
		Rows:    rows,
	}
}

func renderMatrix(res compare.Result) Matrix {
	dates := DateAxis(res.Summary.DateRange[0], res.Summary.DateRange[1])

	rows := make([]MatrixRow, 0, len(res.Comparison))
	for _, row := range res.Comparison {
		out := MatrixRow{
			EmployeeID: row.EmployeeID,
			Name:       row.Name,
			JobTitle:   row.JobTitle,
			Cells:      make([]Cell, 0, len(dates)),
		}
		for _, col := range dates {
			dayCell, ok := row.Days[col.Key]
			out.Cells = append(out.Cells, renderCell(col.Key, dayCell, ok))
		}
		rows = append(rows, out)
	}

	return Matrix{Dates: dates, Rows: rows}
}

// DateAxis materializes every calendar date from fromISO to toISO inclusive.
// A reversed or unparseable range yields an empty axis, never an error.
func DateAxis(fromISO, toISO string) []DateColumn {
	from, err := time.Parse(isoDate, fromISO)
	if err != nil {
		return nil
	}
	to, err := time.Parse(isoDate, toISO)
	if err != nil {
		return nil
	}

	var out []DateColumn
	for cur := from; !cur.After(to); cur = cur.AddDate(0, 0, 1) {
		out = append(out, DateColumn{
			Key:   cur.Format(isoDate),
			Label: cur.Format("02.01"),
		})
	}
	return out
}

// Classify assigns exactly one state to a day cell. Rules are checked in
// precedence order; present reports whether the date exists in the row's
// day map at all.
func Classify(c compare.DayCell, present bool) CellState {
	switch {
	case !present:
		return CellEmpty
	case c.Broken:
		return CellBroken
	case c.Tabell == 0 && c.Skud == 0:
		return CellEmpty
	case c.Diff == 0:
		return CellMatch
	case c.Diff > 0:
		return CellOver
	default:
		return CellUnder
	}
}

func renderCell(date string, c compare.DayCell, present bool) Cell {
	state := Classify(c, present)
	cell := Cell{Date: date, State: state}

	switch state {
	case CellEmpty:
		// no data to show
	case CellBroken:
		cell.Tabell = formatHours(c.Tabell)
		cell.Skud = "?"
	default:
		cell.Tabell = formatHours(c.Tabell)
		cell.Skud = formatHours(c.Skud)
		cell.Diff = formatDiff(c.Diff)
		cell.ShiftType = c.ShiftType
	}
	return cell
}

// formatHours renders hour values without trailing zeros: 8, 7.5, 0.
func formatHours(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// formatDiff sign-prefixes positive differences; negatives carry their own
// sign and a zero stays a bare neutral "0".
func formatDiff(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if v > 0 {
		return "+" + s
	}
	return s
}
