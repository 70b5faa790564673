package http

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"go-skud-reconciliation-ui/internal/config"
	"go-skud-reconciliation-ui/internal/connectors/sheets"
)

func testConfig(t *testing.T) config.Config {
	t.Helper()
	return config.Config{
		MaxUploadSize: 32 << 20,
		UploadDir:     t.TempDir(),
	}
}

func testSheetReader(t *testing.T) *sheets.Reader {
	t.Helper()
	r, err := sheets.NewReader("https://docs.google.com/spreadsheets/d/test-sheet/edit?gid=0", time.Second)
	if err != nil {
		t.Fatalf("failed to build sheet reader: %v", err)
	}
	return r
}

// compareForm builds the multipart body the dashboard submits.
func compareForm(t *testing.T, filename string, content []byte, dateFrom, dateTo string) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if filename != "" {
		part, err := w.CreateFormFile("xlsx_file", filename)
		if err != nil {
			t.Fatalf("failed to create form file: %v", err)
		}
		if _, err := part.Write(content); err != nil {
			t.Fatalf("failed to write form file: %v", err)
		}
	}
	if dateFrom != "" {
		_ = w.WriteField("date_from", dateFrom)
	}
	if dateTo != "" {
		_ = w.WriteField("date_to", dateTo)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("failed to close multipart writer: %v", err)
	}
	return &buf, w.FormDataContentType()
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	var payload map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &payload); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	msg, _ := payload["error"].(string)
	return msg
}

func TestCompareHandler_MethodNotAllowed(t *testing.T) {
	h := compareHandler(testConfig(t), testSheetReader(t), nil, nil, zap.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/api/compare", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected status %d, got %d", http.StatusMethodNotAllowed, rr.Code)
	}
}

func TestCompareHandler_SheetNotConfigured(t *testing.T) {
	h := compareHandler(testConfig(t), nil, nil, nil, zap.NewNop())

	body, contentType := compareForm(t, "export.xlsx", []byte("x"), "2025-06-01", "2025-06-30")
	req := httptest.NewRequest(http.MethodPost, "/api/compare", body)
	req.Header.Set("Content-Type", contentType)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected status %d, got %d", http.StatusServiceUnavailable, rr.Code)
	}
}

func TestCompareHandler_NoFile(t *testing.T) {
	h := compareHandler(testConfig(t), testSheetReader(t), nil, nil, zap.NewNop())

	body, contentType := compareForm(t, "", nil, "2025-06-01", "2025-06-30")
	req := httptest.NewRequest(http.MethodPost, "/api/compare", body)
	req.Header.Set("Content-Type", contentType)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, rr.Code)
	}
	if got := decodeError(t, rr); got != "No file uploaded" {
		t.Fatalf("unexpected error message: %q", got)
	}
}

func TestCompareHandler_WrongExtension(t *testing.T) {
	h := compareHandler(testConfig(t), testSheetReader(t), nil, nil, zap.NewNop())

	body, contentType := compareForm(t, "export.csv", []byte("x"), "2025-06-01", "2025-06-30")
	req := httptest.NewRequest(http.MethodPost, "/api/compare", body)
	req.Header.Set("Content-Type", contentType)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, rr.Code)
	}
	if got := decodeError(t, rr); got != "File must be .xlsx" {
		t.Fatalf("unexpected error message: %q", got)
	}
}

func TestCompareHandler_MissingDates(t *testing.T) {
	h := compareHandler(testConfig(t), testSheetReader(t), nil, nil, zap.NewNop())

	body, contentType := compareForm(t, "export.xlsx", []byte("x"), "2025-06-01", "")
	req := httptest.NewRequest(http.MethodPost, "/api/compare", body)
	req.Header.Set("Content-Type", contentType)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, rr.Code)
	}
	if got := decodeError(t, rr); got != "Date range is required" {
		t.Fatalf("unexpected error message: %q", got)
	}
}

func TestCompareHandler_InvalidDateFormat(t *testing.T) {
	h := compareHandler(testConfig(t), testSheetReader(t), nil, nil, zap.NewNop())

	body, contentType := compareForm(t, "export.xlsx", []byte("x"), "01.06.2025", "2025-06-30")
	req := httptest.NewRequest(http.MethodPost, "/api/compare", body)
	req.Header.Set("Content-Type", contentType)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, rr.Code)
	}
	if got := decodeError(t, rr); got != "Invalid date format. Use YYYY-MM-DD" {
		t.Fatalf("unexpected error message: %q", got)
	}
}

func TestCompareHandler_ReversedRange(t *testing.T) {
	h := compareHandler(testConfig(t), testSheetReader(t), nil, nil, zap.NewNop())

	body, contentType := compareForm(t, "export.xlsx", []byte("x"), "2025-06-30", "2025-06-01")
	req := httptest.NewRequest(http.MethodPost, "/api/compare", body)
	req.Header.Set("Content-Type", contentType)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, rr.Code)
	}
	if got := decodeError(t, rr); got != "Start date must be before end date" {
		t.Fatalf("unexpected error message: %q", got)
	}
}

func TestCompareHandler_CorruptWorkbook(t *testing.T) {
	h := compareHandler(testConfig(t), testSheetReader(t), nil, nil, zap.NewNop())

	body, contentType := compareForm(t, "export.xlsx", []byte("not a workbook"), "2025-06-01", "2025-06-30")
	req := httptest.NewRequest(http.MethodPost, "/api/compare", body)
	req.Header.Set("Content-Type", contentType)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected status %d, got %d", http.StatusInternalServerError, rr.Code)
	}
	if got := decodeError(t, rr); got == "" {
		t.Fatalf("expected error field in response")
	}
}

func TestProjectsHandler_SheetNotConfigured(t *testing.T) {
	h := projectsHandler(nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/projects", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected status %d, got %d", http.StatusServiceUnavailable, rr.Code)
	}
}

func TestDirectoryHandler_StoreDisabled(t *testing.T) {
	h := directoryHandler(500, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/directory", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected status %d, got %d", http.StatusServiceUnavailable, rr.Code)
	}
}

func TestDirectoryEntryHandler_StoreDisabled(t *testing.T) {
	h := directoryEntryHandler(nil)

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/directory/", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected status %d, got %d", http.StatusServiceUnavailable, rr.Code)
	}
}

func TestServicesStatusHandler_AllDisabled(t *testing.T) {
	h := servicesStatusHandler(nil, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/status/services", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}

	var payload struct {
		Data map[string]map[string]any `json:"data"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &payload); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	for _, service := range []string{"tabell_sheet", "skud_db", "employee_directory"} {
		entry, ok := payload.Data[service]
		if !ok {
			t.Fatalf("missing %s entry", service)
		}
		if enabled, _ := entry["enabled"].(bool); enabled {
			t.Fatalf("expected %s to be disabled", service)
		}
	}
}
