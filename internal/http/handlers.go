package http

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	nethttp "net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"go-skud-reconciliation-ui/internal/compare"
	"go-skud-reconciliation-ui/internal/config"
	"go-skud-reconciliation-ui/internal/connectors/directory"
	"go-skud-reconciliation-ui/internal/connectors/sheets"
	"go-skud-reconciliation-ui/internal/connectors/skud"
	"go-skud-reconciliation-ui/internal/connectors/skuddb"
	"go-skud-reconciliation-ui/internal/report"
	"go-skud-reconciliation-ui/internal/shifts"
)

const isoDate = "2006-01-02"

// compareHandler runs the full reconciliation pipeline for one request:
// punches (uploaded XLSX or the SKUD database) + tabell sheet -> shift
// detection -> comparison -> rendered view-models.
func compareHandler(cfg config.Config, reader *sheets.Reader, skudStore *skuddb.Store, dirStore *directory.Store, logger *zap.Logger) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		if r.Method != nethttp.MethodPost {
			writeJSON(w, nethttp.StatusMethodNotAllowed, map[string]any{"error": "method not allowed"})
			return
		}
		if !reader.Enabled() {
			writeJSON(w, nethttp.StatusServiceUnavailable, map[string]any{
				"error": "tabell sheet is not configured (set GOOGLE_SHEET_URL)",
			})
			return
		}

		if err := r.ParseMultipartForm(cfg.MaxUploadSize); err != nil {
			writeJSON(w, nethttp.StatusBadRequest, map[string]any{"error": "invalid multipart request"})
			return
		}

		file, header, fileErr := r.FormFile("xlsx_file")
		if fileErr != nil && skudStore == nil {
			writeJSON(w, nethttp.StatusBadRequest, map[string]any{"error": "No file uploaded"})
			return
		}
		if fileErr == nil {
			defer file.Close()
			if !strings.HasSuffix(header.Filename, ".xlsx") {
				writeJSON(w, nethttp.StatusBadRequest, map[string]any{"error": "File must be .xlsx"})
				return
			}
		}

		dateFromRaw := r.FormValue("date_from")
		dateToRaw := r.FormValue("date_to")
		if dateFromRaw == "" || dateToRaw == "" {
			writeJSON(w, nethttp.StatusBadRequest, map[string]any{"error": "Date range is required"})
			return
		}
		dateFrom, errFrom := time.Parse(isoDate, dateFromRaw)
		dateTo, errTo := time.Parse(isoDate, dateToRaw)
		if errFrom != nil || errTo != nil {
			writeJSON(w, nethttp.StatusBadRequest, map[string]any{"error": "Invalid date format. Use YYYY-MM-DD"})
			return
		}
		if dateFrom.After(dateTo) {
			writeJSON(w, nethttp.StatusBadRequest, map[string]any{"error": "Start date must be before end date"})
			return
		}

		runStart := time.Now()
		result, err := runComparePipeline(r.Context(), cfg, reader, skudStore, file, fileErr == nil, dateFrom, dateTo)
		if err != nil {
			recordCompareRun("error", time.Since(runStart).Seconds())
			logger.Error("compare failed", zap.Error(err))
			writeJSON(w, nethttp.StatusInternalServerError, map[string]any{"error": err.Error()})
			return
		}

		fillBrokenShiftNames(r.Context(), dirStore, result)
		view := report.Render(*result)
		recordCompareRun("success", time.Since(runStart).Seconds())

		writeJSON(w, nethttp.StatusOK, map[string]any{
			"summary":       result.Summary,
			"broken_shifts": result.BrokenShifts,
			"comparison":    result.Comparison,
			"view":          view,
		})
	}
}

func runComparePipeline(ctx context.Context, cfg config.Config, reader *sheets.Reader, skudStore *skuddb.Store, file io.Reader, hasFile bool, dateFrom, dateTo time.Time) (*compare.Result, error) {
	var punches []shifts.Punch
	if hasFile {
		uploadPath := filepath.Join(cfg.UploadDir, uuid.NewString()+".xlsx")
		saved, err := os.Create(uploadPath)
		if err != nil {
			return nil, fmt.Errorf("save upload: %w", err)
		}
		defer os.Remove(uploadPath)

		if _, err := io.Copy(saved, file); err != nil {
			_ = saved.Close()
			return nil, fmt.Errorf("save upload: %w", err)
		}
		_ = saved.Close()

		upload, err := os.Open(uploadPath)
		if err != nil {
			return nil, fmt.Errorf("read upload: %w", err)
		}
		defer upload.Close()

		punches, err = skud.ParsePunches(upload, dateFrom, dateTo)
		if err != nil {
			return nil, err
		}
	} else {
		start := time.Now()
		var err error
		punches, err = skudStore.ListPunches(ctx, dateFrom, dateTo)
		recordDBQuery("skuddb", "ListPunches", time.Since(start).Seconds(), err)
		if err != nil {
			return nil, fmt.Errorf("read punches from SKUD database: %w", err)
		}
	}

	start := time.Now()
	entries, err := reader.FetchTabell(ctx, dateFrom, dateTo)
	recordExternalProbe("sheets", "FetchTabell", time.Since(start).Seconds(), err)
	if err != nil {
		return nil, err
	}

	shiftsByEmployee, broken := shifts.DetectAll(punches, dateFrom, dateTo)
	result := compare.Build(shiftsByEmployee, broken, entries, dateFrom, dateTo)
	return &result, nil
}

// fillBrokenShiftNames backfills names for broken-shift employees that are
// missing from the tabell, using the employee directory when configured.
// Best-effort: a directory failure never fails the comparison.
func fillBrokenShiftNames(ctx context.Context, dirStore *directory.Store, result *compare.Result) {
	if dirStore == nil {
		return
	}

	var unknown []string
	seen := make(map[string]bool)
	for _, b := range result.BrokenShifts {
		if b.Name == "" && !seen[b.EmployeeID] {
			seen[b.EmployeeID] = true
			unknown = append(unknown, b.EmployeeID)
		}
	}
	if len(unknown) == 0 {
		return
	}

	start := time.Now()
	found, err := dirStore.Lookup(ctx, unknown)
	recordDBQuery("directory", "Lookup", time.Since(start).Seconds(), err)
	if err != nil {
		return
	}

	for i := range result.BrokenShifts {
		if result.BrokenShifts[i].Name == "" {
			if emp, ok := found[result.BrokenShifts[i].EmployeeID]; ok {
				result.BrokenShifts[i].Name = emp.Name
			}
		}
	}
}

func projectsHandler(reader *sheets.Reader) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		if r.Method != nethttp.MethodGet {
			writeJSON(w, nethttp.StatusMethodNotAllowed, map[string]any{"error": "method not allowed"})
			return
		}
		if !reader.Enabled() {
			writeJSON(w, nethttp.StatusServiceUnavailable, map[string]any{
				"error": "tabell sheet is not configured (set GOOGLE_SHEET_URL)",
			})
			return
		}

		start := time.Now()
		projects, err := reader.FetchProjects(r.Context())
		recordExternalProbe("sheets", "FetchProjects", time.Since(start).Seconds(), err)
		if err != nil {
			writeJSON(w, nethttp.StatusBadGateway, map[string]any{"error": "failed to fetch projects from tabell sheet"})
			return
		}

		writeJSON(w, nethttp.StatusOK, map[string]any{
			"meta": map[string]any{"count": len(projects)},
			"data": projects,
		})
	}
}

func directoryHandler(defaultLimit int, store *directory.Store) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		if store == nil {
			writeJSON(w, nethttp.StatusServiceUnavailable, map[string]any{
				"error": "employee directory not available",
				"hint":  "set APP_DIRECTORY_SQLITE_PATH to enable the employee directory",
			})
			return
		}

		switch r.Method {
		case nethttp.MethodGet:
			start := time.Now()
			items, err := store.List(r.Context(), defaultLimit)
			recordDBQuery("directory", "List", time.Since(start).Seconds(), err)
			if err != nil {
				writeJSON(w, nethttp.StatusInternalServerError, map[string]any{"error": "failed to list directory entries"})
				return
			}
			writeJSON(w, nethttp.StatusOK, map[string]any{
				"meta": map[string]any{"count": len(items)},
				"data": items,
			})
		case nethttp.MethodPost:
			var emp directory.Employee
			if err := json.NewDecoder(r.Body).Decode(&emp); err != nil {
				writeJSON(w, nethttp.StatusBadRequest, map[string]any{"error": "invalid JSON body"})
				return
			}
			start := time.Now()
			err := store.Upsert(r.Context(), emp)
			recordDBQuery("directory", "Upsert", time.Since(start).Seconds(), err)
			if err != nil {
				writeJSON(w, nethttp.StatusBadRequest, map[string]any{"error": err.Error()})
				return
			}
			writeJSON(w, nethttp.StatusOK, map[string]any{
				"meta": map[string]any{"saved": true},
				"data": emp,
			})
		default:
			writeJSON(w, nethttp.StatusMethodNotAllowed, map[string]any{"error": "method not allowed"})
		}
	}
}

func directoryEntryHandler(store *directory.Store) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		if store == nil {
			writeJSON(w, nethttp.StatusServiceUnavailable, map[string]any{
				"error": "employee directory not available",
				"hint":  "set APP_DIRECTORY_SQLITE_PATH to enable the employee directory",
			})
			return
		}

		employeeID := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/v1/directory/"), "/")
		if employeeID == "" {
			writeJSON(w, nethttp.StatusBadRequest, map[string]any{"error": "employee_id path parameter is required"})
			return
		}
		if r.Method != nethttp.MethodDelete {
			writeJSON(w, nethttp.StatusMethodNotAllowed, map[string]any{"error": "method not allowed"})
			return
		}

		start := time.Now()
		deleted, err := store.Delete(r.Context(), employeeID)
		recordDBQuery("directory", "Delete", time.Since(start).Seconds(), err)
		if err != nil {
			writeJSON(w, nethttp.StatusInternalServerError, map[string]any{"error": "failed to delete directory entry"})
			return
		}
		writeJSON(w, nethttp.StatusOK, map[string]any{
			"meta": map[string]any{"deleted": deleted, "employee_id": employeeID},
		})
	}
}

func servicesStatusHandler(reader *sheets.Reader, skudStore *skuddb.Store, dirStore *directory.Store) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		out := map[string]any{}

		if reader.Enabled() {
			start := time.Now()
			err := reader.Probe(r.Context())
			recordExternalProbe("sheets", "Probe", time.Since(start).Seconds(), err)
			entry := map[string]any{"enabled": true, "ok": err == nil, "ping_ms": time.Since(start).Milliseconds()}
			if err != nil {
				entry["error"] = err.Error()
			}
			out["tabell_sheet"] = entry
		} else {
			out["tabell_sheet"] = map[string]any{"enabled": false}
		}

		if skudStore != nil {
			start := time.Now()
			rtt, err := skudStore.Ping(r.Context())
			recordDBQuery("skuddb", "Ping", time.Since(start).Seconds(), err)
			entry := map[string]any{"enabled": true, "ok": err == nil, "ping_ms": rtt.Milliseconds()}
			if err != nil {
				entry["error"] = err.Error()
			}
			out["skud_db"] = entry
		} else {
			out["skud_db"] = map[string]any{"enabled": false}
		}

		out["employee_directory"] = map[string]any{"enabled": dirStore != nil}

		writeJSON(w, nethttp.StatusOK, map[string]any{"data": out})
	}
}
