// Package skud parses SKUD (access control) XLSX punch exports.
package skud

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"go-skud-reconciliation-ui/internal/shifts"
)

const (
	headerEmployeeID = "Employee ID"
	headerDate       = "Date"
	headerTime       = "Time"

	// Header row is expected within the first rows of the sheet.
	headerSearchRows = 3
)

// ParsePunches reads a SKUD XLSX export and returns punch records within
// [from-1d, to+1d]. The one-day buffer on each side keeps night shifts
// pairable across the range boundaries.
func ParsePunches(r io.Reader, from, to time.Time) ([]shifts.Punch, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, fmt.Errorf("no worksheet found")
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("read worksheet: %w", err)
	}

	headerRow, cols, err := findHeader(rows)
	if err != nil {
		return nil, err
	}

	bufferFrom := from.AddDate(0, 0, -1)
	bufferTo := to.AddDate(0, 0, 1)

	var punches []shifts.Punch
	for _, row := range rows[headerRow+1:] {
		empID := cellAt(row, cols.employee)
		dateRaw := cellAt(row, cols.date)
		timeRaw := cellAt(row, cols.time)
		if empID == "" || dateRaw == "" || timeRaw == "" {
			continue
		}

		punchDate, ok := parseDateCell(dateRaw)
		if !ok {
			continue
		}
		if punchDate.Before(bufferFrom) || punchDate.After(bufferTo) {
			continue
		}

		punchTime, ok := parseTimeCell(timeRaw)
		if !ok {
			continue
		}

		punches = append(punches, shifts.Punch{
			EmployeeID: empID,
			Time: time.Date(punchDate.Year(), punchDate.Month(), punchDate.Day(),
				punchTime.Hour(), punchTime.Minute(), punchTime.Second(), 0, time.UTC),
		})
	}

	return punches, nil
}

type columnIndexes struct {
	employee int
	date     int
	time     int
}

func findHeader(rows [][]string) (int, columnIndexes, error) {
	limit := headerSearchRows
	if len(rows) < limit {
		limit = len(rows)
	}

	for rowIdx := 0; rowIdx < limit; rowIdx++ {
		cols := columnIndexes{employee: -1, date: -1, time: -1}
		for i, cell := range rows[rowIdx] {
			switch strings.TrimSpace(cell) {
			case headerEmployeeID:
				cols.employee = i
			case headerDate:
				cols.date = i
			case headerTime:
				cols.time = i
			}
		}
		if cols.employee < 0 {
			continue
		}
		if cols.date < 0 || cols.time < 0 {
			return 0, cols, fmt.Errorf("missing required columns in header row %d", rowIdx+1)
		}
		return rowIdx, cols, nil
	}

	return 0, columnIndexes{}, fmt.Errorf("could not find header row with %q column", headerEmployeeID)
}

func cellAt(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// parseDateCell accepts ISO dates plus the formats excelize produces for
// date-typed cells, and raw Excel serial numbers.
func parseDateCell(raw string) (time.Time, bool) {
	for _, layout := range []string{"2006-01-02", "01-02-06", "2006-01-02 15:04:05", "1/2/06 15:04"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), true
		}
	}
	if serial, err := strconv.ParseFloat(raw, 64); err == nil {
		if t, err := excelize.ExcelDateToTime(serial, false); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), true
		}
	}
	return time.Time{}, false
}

// parseTimeCell accepts wall-clock strings and fraction-of-day serials.
func parseTimeCell(raw string) (time.Time, bool) {
	for _, layout := range []string{"15:04:05", "15:04"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	if serial, err := strconv.ParseFloat(raw, 64); err == nil && serial >= 0 && serial < 1 {
		secs := int(serial * 86400)
		return time.Date(0, 1, 1, secs/3600, (secs%3600)/60, secs%60, 0, time.UTC), true
	}
	return time.Time{}, false
}
