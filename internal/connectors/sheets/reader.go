// Package sheets fetches tabell data from a published Google Sheet.
package sheets

import (
	"context"
	"encoding/csv"
	"fmt"
	"net/http"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Fixed column layout of the tabell sheet (verified against the CSV export).
const (
	colEmployeeID = 0   // A: employee id with "ТН" prefix
	colName       = 1   // B: full name
	colJobTitle   = 2   // C: job title
	colCompany    = 3   // D: company
	colDaysStart  = 10  // K: day 1
	colDaysEnd    = 40  // AO: day 31
	colMonth      = 118 // DO: month name

	dataStartRow = 2 // rows 0-1 are headers
)

var monthNumbers = map[string]time.Month{
	"january": time.January, "february": time.February, "march": time.March,
	"april": time.April, "may": time.May, "june": time.June,
	"july": time.July, "august": time.August, "september": time.September,
	"october": time.October, "november": time.November, "december": time.December,
}

var idPrefixPattern = regexp.MustCompile(`(?i)^ТН`)

// Entry is one tabell row: an employee's recorded hours for one month.
type Entry struct {
	EmployeeID string
	Name       string
	JobTitle   string
	Company    string
	Month      time.Month
	DailyHours map[int]float64 // day of month -> hours
	Project    string
}

const defaultBaseURL = "https://docs.google.com"

// Reader downloads and parses the tabell sheet via the CSV export endpoint.
type Reader struct {
	spreadsheetID string
	gid           string
	baseURL       string
	http          *http.Client
}

// NewReader builds a Reader from a Google Sheets URL. The URL is the one a
// browser shows; the spreadsheet id and gid are extracted from it.
func NewReader(sheetURL string, timeout time.Duration) (*Reader, error) {
	id, gid, err := ParseSheetURL(sheetURL)
	if err != nil {
		return nil, err
	}
	return &Reader{
		spreadsheetID: id,
		gid:           gid,
		baseURL:       defaultBaseURL,
		http:          &http.Client{Timeout: timeout},
	}, nil
}

var (
	sheetIDPattern = regexp.MustCompile(`/d/([a-zA-Z0-9_-]+)`)
	gidPattern     = regexp.MustCompile(`gid=(\d+)`)
)

// ParseSheetURL extracts the spreadsheet id and gid from a Google Sheets URL.
func ParseSheetURL(sheetURL string) (string, string, error) {
	idMatch := sheetIDPattern.FindStringSubmatch(sheetURL)
	if idMatch == nil {
		return "", "", fmt.Errorf("no spreadsheet id in sheet URL")
	}
	gid := "0"
	if gidMatch := gidPattern.FindStringSubmatch(sheetURL); gidMatch != nil {
		gid = gidMatch[1]
	}
	return idMatch[1], gid, nil
}

// Enabled reports whether the reader has a sheet to fetch.
func (r *Reader) Enabled() bool {
	return r != nil && r.spreadsheetID != ""
}

func (r *Reader) exportURL() string {
	return fmt.Sprintf("%s/spreadsheets/d/%s/export?format=csv&gid=%s", r.baseURL, r.spreadsheetID, r.gid)
}

func (r *Reader) load(ctx context.Context) ([][]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.exportURL(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := r.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch tabell sheet: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch tabell sheet: unexpected status %d", resp.StatusCode)
	}

	cr := csv.NewReader(resp.Body)
	cr.FieldsPerRecord = -1
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse tabell csv: %w", err)
	}
	return rows, nil
}

// Probe checks that the sheet export is reachable. Used by the services
// status endpoint only.
func (r *Reader) Probe(ctx context.Context) error {
	_, err := r.load(ctx)
	return err
}

// FetchTabell downloads the sheet and returns entries for the months covered
// by the inclusive [from, to] range.
func (r *Reader) FetchTabell(ctx context.Context, from, to time.Time) ([]Entry, error) {
	rows, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	if len(rows) <= dataStartRow {
		return nil, nil
	}

	needed := neededMonths(from, to)
	projectCol := detectProjectColumn(rows)

	var entries []Entry
	for _, row := range rows[dataStartRow:] {
		if len(row) <= colMonth {
			continue
		}

		id := idPrefixPattern.ReplaceAllString(strings.TrimSpace(row[colEmployeeID]), "")
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}

		month, ok := monthNumbers[strings.ToLower(strings.TrimSpace(row[colMonth]))]
		if !ok || !needed[month] {
			continue
		}

		entry := Entry{
			EmployeeID: id,
			Name:       strings.TrimSpace(row[colName]),
			JobTitle:   strings.TrimSpace(row[colJobTitle]),
			Company:    strings.TrimSpace(row[colCompany]),
			Month:      month,
			DailyHours: make(map[int]float64, 31),
		}
		if projectCol >= 0 && len(row) > projectCol {
			entry.Project = strings.TrimSpace(row[projectCol])
		}

		last := colDaysEnd
		if len(row)-1 < last {
			last = len(row) - 1
		}
		for col := colDaysStart; col <= last; col++ {
			day := col - colDaysStart + 1
			entry.DailyHours[day] = ParseHours(row[col])
		}

		entries = append(entries, entry)
	}

	return entries, nil
}

// FetchProjects returns the sorted set of distinct project names in the sheet.
func (r *Reader) FetchProjects(ctx context.Context) ([]string, error) {
	rows, err := r.load(ctx)
	if err != nil {
		return nil, err
	}

	projectCol := detectProjectColumn(rows)
	if projectCol < 0 {
		return nil, nil
	}

	seen := make(map[string]struct{})
	for _, row := range rows[dataStartRow:] {
		if len(row) <= projectCol {
			continue
		}
		if v := strings.TrimSpace(row[projectCol]); v != "" {
			seen[v] = struct{}{}
		}
	}

	out := make([]string, 0, len(seen))
	for v := range seen {
		out = append(out, v)
	}
	sort.Strings(out)
	return out, nil
}

// ParseHours converts a tabell day cell to hours. Numbers, comma-decimal
// numbers and numbers with a trailing bracket ("10(") are valid; letter codes
// (DOF, ALP, TER, ...), "-" and blanks count as zero.
func ParseHours(cell string) float64 {
	v := strings.TrimSpace(cell)
	if v == "" || v == "-" {
		return 0
	}
	v = strings.TrimRight(v, "(")
	v = strings.ReplaceAll(v, ",", ".")
	parsed, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0
	}
	return parsed
}

// detectProjectColumn finds the "Project" column in the real header row
// (row 1; row 0 holds merged-cell artifacts). Exact match only: plenty of
// other headers contain the word "project" in a longer phrase.
func detectProjectColumn(rows [][]string) int {
	if len(rows) < 2 {
		return -1
	}
	for i, cell := range rows[1] {
		header := strings.TrimSpace(strings.ReplaceAll(cell, "\n", " "))
		if strings.EqualFold(header, "project") {
			return i
		}
	}
	return -1
}

func neededMonths(from, to time.Time) map[time.Month]bool {
	needed := map[time.Month]bool{from.Month(): true, to.Month(): true}
	for cur := from; !cur.After(to); cur = cur.AddDate(0, 0, 1) {
		needed[cur.Month()] = true
	}
	return needed
}
