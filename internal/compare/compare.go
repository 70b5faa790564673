// Package compare builds the reconciliation payload from detected SKUD
// shifts and tabell entries.
package compare

import (
	"math"
	"sort"
	"time"

	"go-skud-reconciliation-ui/internal/connectors/sheets"
	"go-skud-reconciliation-ui/internal/shifts"
)

// DayCell is the per-employee, per-date reconciliation unit. When Broken is
// true the SKUD side of the day is unknown and Skud/Diff carry no meaning.
type DayCell struct {
	Tabell    float64 `json:"tabell"`
	Skud      float64 `json:"skud"`
	Diff      float64 `json:"diff"`
	Broken    bool    `json:"broken"`
	ShiftType string  `json:"shift_type,omitempty"`
}

// Row is one employee's comparison across the requested range. Days holds
// ISO-date keys only for dates that have data from at least one source.
type Row struct {
	EmployeeID string             `json:"employee_id"`
	Name       string             `json:"name"`
	JobTitle   string             `json:"job_title"`
	Days       map[string]DayCell `json:"days"`
}

// BrokenShift is one anomalous punch that could not be paired into a shift.
type BrokenShift struct {
	EmployeeID     string `json:"employee_id"`
	Name           string `json:"name"`
	AttributedDate string `json:"attributed_date"`
	PunchTime      string `json:"punch_time"`
	EstimatedType  string `json:"estimated_type"`
}

// Summary carries the headline counts and the inclusive ISO date range.
type Summary struct {
	TotalEmployeesTabell int       `json:"total_employees_tabell"`
	TotalEmployeesSKUD   int       `json:"total_employees_skud"`
	MatchedEmployees     int       `json:"matched_employees"`
	BrokenCount          int       `json:"broken_count"`
	DateRange            [2]string `json:"date_range"`
}

// Result is the full comparison payload.
type Result struct {
	Comparison   []Row         `json:"comparison"`
	BrokenShifts []BrokenShift `json:"broken_shifts"`
	Summary      Summary       `json:"summary"`
}

const isoDate = "2006-01-02"

// Build assembles the comparison for the inclusive [from, to] range. Tabell
// is the primary source: one row per tabell employee, ordered by id. SKUD
// hours are summed per attributed date; dates with a broken shift are marked
// broken regardless of any paired hours on the same date.
func Build(shiftsByEmployee map[string][]shifts.Shift, broken []shifts.Shift, entries []sheets.Entry, from, to time.Time) Result {
	var dates []time.Time
	for cur := from; !cur.After(to); cur = cur.AddDate(0, 0, 1) {
		dates = append(dates, cur)
	}

	tabellByEmployee := make(map[string][]sheets.Entry)
	for _, entry := range entries {
		tabellByEmployee[entry.EmployeeID] = append(tabellByEmployee[entry.EmployeeID], entry)
	}

	skudHours := make(map[string]map[string]float64)
	skudTypes := make(map[string]map[string]string)
	for empID, empShifts := range shiftsByEmployee {
		skudHours[empID] = make(map[string]float64)
		skudTypes[empID] = make(map[string]string)
		for _, s := range empShifts {
			key := s.AttributedDate.Format(isoDate)
			skudHours[empID][key] += s.Hours
			skudTypes[empID][key] = string(s.Type)
		}
	}

	brokenDates := make(map[string]map[string]bool)
	for _, s := range broken {
		if brokenDates[s.EmployeeID] == nil {
			brokenDates[s.EmployeeID] = make(map[string]bool)
		}
		brokenDates[s.EmployeeID][s.AttributedDate.Format(isoDate)] = true
	}

	employeeIDs := make([]string, 0, len(tabellByEmployee))
	for id := range tabellByEmployee {
		employeeIDs = append(employeeIDs, id)
	}
	sort.Strings(employeeIDs)

	comparison := make([]Row, 0, len(employeeIDs))
	for _, empID := range employeeIDs {
		empEntries := tabellByEmployee[empID]
		row := Row{
			EmployeeID: empID,
			Name:       empEntries[0].Name,
			JobTitle:   empEntries[0].JobTitle,
			Days:       make(map[string]DayCell),
		}

		for _, d := range dates {
			key := d.Format(isoDate)
			tabellH := tabellHoursFor(empEntries, d)
			skudH := round1(skudHours[empID][key])
			isBroken := brokenDates[empID][key]

			if tabellH == 0 && skudH == 0 && !isBroken {
				continue
			}

			row.Days[key] = DayCell{
				Tabell:    tabellH,
				Skud:      skudH,
				Diff:      round1(tabellH - skudH),
				Broken:    isBroken,
				ShiftType: skudTypes[empID][key],
			}
		}

		comparison = append(comparison, row)
	}

	brokenOut := make([]BrokenShift, 0, len(broken))
	sortedBroken := make([]shifts.Shift, len(broken))
	copy(sortedBroken, broken)
	sort.Slice(sortedBroken, func(i, j int) bool {
		if sortedBroken[i].EmployeeID != sortedBroken[j].EmployeeID {
			return sortedBroken[i].EmployeeID < sortedBroken[j].EmployeeID
		}
		return sortedBroken[i].AttributedDate.Before(sortedBroken[j].AttributedDate)
	})
	skudEmployees := make(map[string]bool, len(shiftsByEmployee))
	for id := range shiftsByEmployee {
		skudEmployees[id] = true
	}
	for _, s := range sortedBroken {
		name := ""
		if empEntries := tabellByEmployee[s.EmployeeID]; len(empEntries) > 0 {
			name = empEntries[0].Name
		}
		brokenOut = append(brokenOut, BrokenShift{
			EmployeeID:     s.EmployeeID,
			Name:           name,
			AttributedDate: s.AttributedDate.Format(isoDate),
			PunchTime:      s.Start.Format("2006-01-02 15:04:05"),
			EstimatedType:  shifts.EstimateType(s.Start.Hour()),
		})
		skudEmployees[s.EmployeeID] = true
	}

	matched := 0
	for _, id := range employeeIDs {
		if _, ok := shiftsByEmployee[id]; ok {
			matched++
		}
	}

	return Result{
		Comparison:   comparison,
		BrokenShifts: brokenOut,
		Summary: Summary{
			TotalEmployeesTabell: len(employeeIDs),
			TotalEmployeesSKUD:   len(skudEmployees),
			MatchedEmployees:     matched,
			BrokenCount:          len(brokenOut),
			DateRange:            [2]string{from.Format(isoDate), to.Format(isoDate)},
		},
	}
}

func tabellHoursFor(entries []sheets.Entry, d time.Time) float64 {
	for _, entry := range entries {
		if entry.Month == d.Month() {
			return entry.DailyHours[d.Day()]
		}
	}
	return 0
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
