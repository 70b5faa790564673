// Package shifts reconstructs worked shifts from raw SKUD punch events.
package shifts

import (
	"math"
	"sort"
	"time"
)

// Type labels a detected shift.
type Type string

const (
	TypeDay    Type = "day"
	TypeNight  Type = "night"
	TypeBroken Type = "broken"
)

// Punch is a single turnstile event for one employee.
type Punch struct {
	EmployeeID string
	Time       time.Time
}

// Date returns the calendar date of the punch at midnight.
func (p Punch) Date() time.Time {
	return time.Date(p.Time.Year(), p.Time.Month(), p.Time.Day(), 0, 0, 0, 0, p.Time.Location())
}

// Shift is a pair of punches (or an unmatched one, for broken shifts)
// attributed to a single calendar date.
type Shift struct {
	EmployeeID     string
	Type           Type
	AttributedDate time.Time
	Start          time.Time
	End            time.Time // zero for broken shifts
	Hours          float64
}

// Day shifts longer than this are rejected: a ~13h same-date pairing is a
// night-shift end (04:xx) matched against the next night-shift start (17:xx).
const maxDayShiftHours = 12.5

// DetectAll groups punches per employee and detects shifts for each.
// Shifts attributed outside [from, to] are dropped. Returns valid shifts
// keyed by employee id plus the flat list of broken shifts.
func DetectAll(punches []Punch, from, to time.Time) (map[string][]Shift, []Shift) {
	byEmployee := make(map[string][]Punch)
	for _, p := range punches {
		byEmployee[p.EmployeeID] = append(byEmployee[p.EmployeeID], p)
	}

	valid := make(map[string][]Shift)
	var broken []Shift

	for empID, empPunches := range byEmployee {
		for _, s := range detectEmployeeShifts(empID, empPunches) {
			if s.AttributedDate.Before(from) || s.AttributedDate.After(to) {
				continue
			}
			if s.Type == TypeBroken {
				broken = append(broken, s)
			} else {
				valid[empID] = append(valid[empID], s)
			}
		}
	}

	return valid, broken
}

// detectEmployeeShifts runs the 4-pass detection for one employee.
//
// Pass order matters: day shifts claim same-date pairs first so the night
// pass cannot steal an afternoon end punch, then night shifts spanning
// midnight, then night shifts whose both punches landed after midnight,
// and finally anything left over becomes a broken shift.
func detectEmployeeShifts(employeeID string, punches []Punch) []Shift {
	sorted := make([]Punch, len(punches))
	copy(sorted, punches)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Time.Before(sorted[j].Time) })

	n := len(sorted)
	used := make(map[int]bool, n)
	var out []Shift

	// Pass 1: day shifts, morning start paired with the latest
	// afternoon/evening end on the same date.
	for i := 0; i < n; i++ {
		if used[i] {
			continue
		}
		p := sorted[i]
		if h := p.Time.Hour(); h < 4 || h > 10 {
			continue
		}

		bestJ := -1
		for j := i + 1; j < n; j++ {
			if used[j] {
				continue
			}
			q := sorted[j]
			if !sameDate(q.Time, p.Time) {
				break
			}
			if h := q.Time.Hour(); h >= 14 && h <= 20 {
				bestJ = j
			}
		}
		if bestJ < 0 {
			continue
		}

		end := sorted[bestJ]
		hours := end.Time.Sub(p.Time).Hours()
		if hours > maxDayShiftHours {
			continue
		}
		out = append(out, Shift{
			EmployeeID:     employeeID,
			Type:           TypeDay,
			AttributedDate: p.Date(),
			Start:          p.Time,
			End:            end.Time,
			Hours:          round1(hours),
		})
		used[i] = true
		used[bestJ] = true
		for k := i + 1; k < bestJ; k++ {
			if !used[k] && sameDate(sorted[k].Time, p.Time) {
				used[k] = true
			}
		}
	}

	// Pass 2: night shifts, evening start paired with the latest end
	// before 14:00 on the next date.
	for i := 0; i < n; i++ {
		if used[i] {
			continue
		}
		p := sorted[i]
		if h := p.Time.Hour(); h < 15 {
			continue
		}

		nextDate := p.Date().AddDate(0, 0, 1)
		bestJ := -1
		for j := i + 1; j < n; j++ {
			if used[j] {
				continue
			}
			q := sorted[j]
			if q.Date().After(nextDate) {
				break
			}
			if q.Date().Equal(nextDate) && q.Time.Hour() <= 13 {
				bestJ = j
			}
		}
		if bestJ < 0 {
			continue
		}

		end := sorted[bestJ]
		out = append(out, Shift{
			EmployeeID:     employeeID,
			Type:           TypeNight,
			AttributedDate: p.Date(),
			Start:          p.Time,
			End:            end.Time,
			Hours:          round1(end.Time.Sub(p.Time).Hours()),
		})
		used[i] = true
		used[bestJ] = true
		for k := i + 1; k < bestJ; k++ {
			if !used[k] {
				d := sorted[k].Date()
				if d.Equal(p.Date()) || d.Equal(nextDate) {
					used[k] = true
				}
			}
		}
	}

	// Pass 3: night shifts that started after midnight, both punches on the
	// same date. Attributed to the previous date.
	for i := 0; i < n; i++ {
		if used[i] {
			continue
		}
		p := sorted[i]
		if p.Time.Hour() > 4 {
			continue
		}

		bestJ := -1
		for j := i + 1; j < n; j++ {
			if used[j] {
				continue
			}
			q := sorted[j]
			if !sameDate(q.Time, p.Time) {
				break
			}
			if h := q.Time.Hour(); h >= 5 && h <= 13 {
				bestJ = j
			}
		}
		if bestJ < 0 {
			continue
		}

		end := sorted[bestJ]
		out = append(out, Shift{
			EmployeeID:     employeeID,
			Type:           TypeNight,
			AttributedDate: p.Date().AddDate(0, 0, -1),
			Start:          p.Time,
			End:            end.Time,
			Hours:          round1(end.Time.Sub(p.Time).Hours()),
		})
		used[i] = true
		used[bestJ] = true
		for k := i + 1; k < bestJ; k++ {
			if !used[k] && sameDate(sorted[k].Time, p.Time) {
				used[k] = true
			}
		}
	}

	// Pass 4: leftover punches become broken shifts. Early-morning punches
	// belong to the previous date's night shift.
	for i := 0; i < n; i++ {
		if used[i] {
			continue
		}
		p := sorted[i]
		attr := p.Date()
		if p.Time.Hour() <= 4 {
			attr = attr.AddDate(0, 0, -1)
		}
		out = append(out, Shift{
			EmployeeID:     employeeID,
			Type:           TypeBroken,
			AttributedDate: attr,
			Start:          p.Time,
		})
	}

	return out
}

// EstimateType guesses which shift boundary a lone punch could be,
// based on its hour of day.
func EstimateType(hour int) string {
	switch {
	case hour >= 4 && hour <= 10:
		return "day_start?"
	case hour >= 14 && hour <= 20:
		return "day_end?"
	case hour >= 15 && hour <= 23:
		return "night_start?"
	case hour >= 0 && hour <= 4:
		return "night_end?"
	default:
		return "unknown"
	}
}

func sameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
