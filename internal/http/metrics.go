package http

import (
	"fmt"
	"net/http"
	"runtime"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

var (
	appStartedAtUnix = time.Now().Unix()
	inFlightRequests int64
	metricsMu        sync.Mutex
	httpSeries       = map[httpMetricKey]*httpMetricSeries{}
	dbQuerySeries    = map[dbMetricKey]*dbMetricSeries{}
	externalSeries   = map[externalMetricKey]*externalMetricSeries{}
	compareSeries    = map[compareMetricKey]*compareMetricSeries{}
)

type httpMetricKey struct {
	Method string
	Path   string
	Status string
}

type httpMetricSeries struct {
	Count              uint64
	DurationSecondsSum float64
}

type dbMetricKey struct {
	Connector string
	Operation string
}

type dbMetricSeries struct {
	Count              uint64
	Errors             uint64
	DurationSecondsSum float64
}

type externalMetricKey struct {
	Target    string
	Operation string
}

type externalMetricSeries struct {
	Count              uint64
	Errors             uint64
	DurationSecondsSum float64
}

type compareMetricKey struct {
	Status string
}

type compareMetricSeries struct {
	Count              uint64
	DurationSecondsSum float64
}

func metricsHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")

		metricsMu.Lock()
		httpKeys := make([]httpMetricKey, 0, len(httpSeries))
		for k := range httpSeries {
			httpKeys = append(httpKeys, k)
		}
		sort.Slice(httpKeys, func(i, j int) bool {
			if httpKeys[i].Method != httpKeys[j].Method {
				return httpKeys[i].Method < httpKeys[j].Method
			}
			if httpKeys[i].Path != httpKeys[j].Path {
				return httpKeys[i].Path < httpKeys[j].Path
			}
			return httpKeys[i].Status < httpKeys[j].Status
		})
		httpSnapshot := make(map[httpMetricKey]httpMetricSeries, len(httpKeys))
		for _, k := range httpKeys {
			httpSnapshot[k] = *httpSeries[k]
		}

		dbKeys := make([]dbMetricKey, 0, len(dbQuerySeries))
		for k := range dbQuerySeries {
			dbKeys = append(dbKeys, k)
		}
		sort.Slice(dbKeys, func(i, j int) bool {
			if dbKeys[i].Connector != dbKeys[j].Connector {
				return dbKeys[i].Connector < dbKeys[j].Connector
			}
			return dbKeys[i].Operation < dbKeys[j].Operation
		})
		dbSnapshot := make(map[dbMetricKey]dbMetricSeries, len(dbKeys))
		for _, k := range dbKeys {
			dbSnapshot[k] = *dbQuerySeries[k]
		}

		exKeys := make([]externalMetricKey, 0, len(externalSeries))
		for k := range externalSeries {
			exKeys = append(exKeys, k)
		}
		sort.Slice(exKeys, func(i, j int) bool {
			if exKeys[i].Target != exKeys[j].Target {
				return exKeys[i].Target < exKeys[j].Target
			}
			return exKeys[i].Operation < exKeys[j].Operation
		})
		exSnapshot := make(map[externalMetricKey]externalMetricSeries, len(exKeys))
		for _, k := range exKeys {
			exSnapshot[k] = *externalSeries[k]
		}

		cmpKeys := make([]compareMetricKey, 0, len(compareSeries))
		for k := range compareSeries {
			cmpKeys = append(cmpKeys, k)
		}
		sort.Slice(cmpKeys, func(i, j int) bool { return cmpKeys[i].Status < cmpKeys[j].Status })
		cmpSnapshot := make(map[compareMetricKey]compareMetricSeries, len(cmpKeys))
		for _, k := range cmpKeys {
			cmpSnapshot[k] = *compareSeries[k]
		}
		metricsMu.Unlock()

		_, _ = fmt.Fprintln(w, "# HELP skud_ui_http_requests_total Total HTTP requests handled by this app.")
		_, _ = fmt.Fprintln(w, "# TYPE skud_ui_http_requests_total counter")
		for _, k := range httpKeys {
			s := httpSnapshot[k]
			_, _ = fmt.Fprintf(w, "skud_ui_http_requests_total{method=%q,path=%q,status=%q} %d\n",
				escapeLabel(k.Method), escapeLabel(k.Path), escapeLabel(k.Status), s.Count)
		}
		_, _ = fmt.Fprintln(w, "# HELP skud_ui_http_request_duration_seconds_sum Total duration in seconds for observed requests.")
		_, _ = fmt.Fprintln(w, "# TYPE skud_ui_http_request_duration_seconds_sum counter")
		for _, k := range httpKeys {
			s := httpSnapshot[k]
			_, _ = fmt.Fprintf(w, "skud_ui_http_request_duration_seconds_sum{method=%q,path=%q,status=%q} %.9f\n",
				escapeLabel(k.Method), escapeLabel(k.Path), escapeLabel(k.Status), s.DurationSecondsSum)
		}

		_, _ = fmt.Fprintln(w, "# HELP skud_ui_http_in_flight_requests In-flight HTTP requests currently served by this app.")
		_, _ = fmt.Fprintln(w, "# TYPE skud_ui_http_in_flight_requests gauge")
		_, _ = fmt.Fprintf(w, "skud_ui_http_in_flight_requests %d\n", atomic.LoadInt64(&inFlightRequests))

		_, _ = fmt.Fprintln(w, "# HELP skud_ui_db_query_duration_seconds_sum Store query duration sum in seconds by connector/operation.")
		_, _ = fmt.Fprintln(w, "# TYPE skud_ui_db_query_duration_seconds_sum counter")
		for _, k := range dbKeys {
			s := dbSnapshot[k]
			_, _ = fmt.Fprintf(w, "skud_ui_db_query_duration_seconds_sum{connector=%q,operation=%q} %.9f\n",
				escapeLabel(k.Connector), escapeLabel(k.Operation), s.DurationSecondsSum)
		}
		_, _ = fmt.Fprintln(w, "# HELP skud_ui_db_query_errors_total Store query errors by connector/operation.")
		_, _ = fmt.Fprintln(w, "# TYPE skud_ui_db_query_errors_total counter")
		for _, k := range dbKeys {
			s := dbSnapshot[k]
			_, _ = fmt.Fprintf(w, "skud_ui_db_query_errors_total{connector=%q,operation=%q} %d\n",
				escapeLabel(k.Connector), escapeLabel(k.Operation), s.Errors)
		}

		_, _ = fmt.Fprintln(w, "# HELP skud_ui_external_probe_duration_seconds_sum External fetch duration sum in seconds by target/operation.")
		_, _ = fmt.Fprintln(w, "# TYPE skud_ui_external_probe_duration_seconds_sum counter")
		for _, k := range exKeys {
			s := exSnapshot[k]
			_, _ = fmt.Fprintf(w, "skud_ui_external_probe_duration_seconds_sum{target=%q,operation=%q} %.9f\n",
				escapeLabel(k.Target), escapeLabel(k.Operation), s.DurationSecondsSum)
		}
		_, _ = fmt.Fprintln(w, "# HELP skud_ui_external_probe_errors_total External fetch errors by target/operation.")
		_, _ = fmt.Fprintln(w, "# TYPE skud_ui_external_probe_errors_total counter")
		for _, k := range exKeys {
			s := exSnapshot[k]
			_, _ = fmt.Fprintf(w, "skud_ui_external_probe_errors_total{target=%q,operation=%q} %d\n",
				escapeLabel(k.Target), escapeLabel(k.Operation), s.Errors)
		}

		_, _ = fmt.Fprintln(w, "# HELP skud_ui_compare_runs_total Comparison run count by status.")
		_, _ = fmt.Fprintln(w, "# TYPE skud_ui_compare_runs_total counter")
		for _, k := range cmpKeys {
			s := cmpSnapshot[k]
			_, _ = fmt.Fprintf(w, "skud_ui_compare_runs_total{status=%q} %d\n", escapeLabel(k.Status), s.Count)
		}
		_, _ = fmt.Fprintln(w, "# HELP skud_ui_compare_run_duration_seconds_sum Comparison run duration sum in seconds by status.")
		_, _ = fmt.Fprintln(w, "# TYPE skud_ui_compare_run_duration_seconds_sum counter")
		for _, k := range cmpKeys {
			s := cmpSnapshot[k]
			_, _ = fmt.Fprintf(w, "skud_ui_compare_run_duration_seconds_sum{status=%q} %.9f\n", escapeLabel(k.Status), s.DurationSecondsSum)
		}

		uptime := time.Now().Unix() - appStartedAtUnix
		_, _ = fmt.Fprintln(w, "# HELP skud_ui_uptime_seconds Process uptime in seconds.")
		_, _ = fmt.Fprintln(w, "# TYPE skud_ui_uptime_seconds gauge")
		_, _ = fmt.Fprintf(w, "skud_ui_uptime_seconds %d\n", uptime)

		var ms runtime.MemStats
		runtime.ReadMemStats(&ms)
		_, _ = fmt.Fprintln(w, "# HELP skud_ui_runtime_goroutines Number of goroutines.")
		_, _ = fmt.Fprintln(w, "# TYPE skud_ui_runtime_goroutines gauge")
		_, _ = fmt.Fprintf(w, "skud_ui_runtime_goroutines %d\n", runtime.NumGoroutine())
		_, _ = fmt.Fprintln(w, "# HELP skud_ui_runtime_memory_alloc_bytes Heap allocation bytes.")
		_, _ = fmt.Fprintln(w, "# TYPE skud_ui_runtime_memory_alloc_bytes gauge")
		_, _ = fmt.Fprintf(w, "skud_ui_runtime_memory_alloc_bytes %d\n", ms.Alloc)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func observabilityMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		atomic.AddInt64(&inFlightRequests, 1)
		defer atomic.AddInt64(&inFlightRequests, -1)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		recordHTTPMetric(r.Method, normalizeMetricPath(r.URL.Path), rec.status, time.Since(start).Seconds())
	})
}

func normalizeMetricPath(path string) string {
	if strings.HasPrefix(path, "/api/v1/directory/") {
		return "/api/v1/directory/{employee_id}"
	}
	return path
}

func recordHTTPMetric(method, path string, status int, durationSeconds float64) {
	key := httpMetricKey{Method: method, Path: path, Status: fmt.Sprintf("%d", status)}
	metricsMu.Lock()
	defer metricsMu.Unlock()
	row, ok := httpSeries[key]
	if !ok {
		row = &httpMetricSeries{}
		httpSeries[key] = row
	}
	row.Count++
	row.DurationSecondsSum += durationSeconds
}

func recordDBQuery(connector, operation string, durationSeconds float64, err error) {
	if connector == "" || operation == "" {
		return
	}
	key := dbMetricKey{Connector: connector, Operation: operation}
	metricsMu.Lock()
	defer metricsMu.Unlock()
	row, ok := dbQuerySeries[key]
	if !ok {
		row = &dbMetricSeries{}
		dbQuerySeries[key] = row
	}
	row.Count++
	row.DurationSecondsSum += durationSeconds
	if err != nil {
		row.Errors++
	}
}

func recordExternalProbe(target, operation string, durationSeconds float64, err error) {
	if target == "" || operation == "" {
		return
	}
	key := externalMetricKey{Target: target, Operation: operation}
	metricsMu.Lock()
	defer metricsMu.Unlock()
	row, ok := externalSeries[key]
	if !ok {
		row = &externalMetricSeries{}
		externalSeries[key] = row
	}
	row.Count++
	row.DurationSecondsSum += durationSeconds
	if err != nil {
		row.Errors++
	}
}

func recordCompareRun(status string, durationSeconds float64) {
	status = strings.TrimSpace(strings.ToLower(status))
	if status == "" {
		status = "unknown"
	}
	key := compareMetricKey{Status: status}
	metricsMu.Lock()
	defer metricsMu.Unlock()
	row, ok := compareSeries[key]
	if !ok {
		row = &compareMetricSeries{}
		compareSeries[key] = row
	}
	row.Count++
	row.DurationSecondsSum += durationSeconds
}

func escapeLabel(v string) string {
	v = strings.ReplaceAll(v, `\`, `\\`)
	v = strings.ReplaceAll(v, "\n", `\n`)
	v = strings.ReplaceAll(v, `"`, `\"`)
	return v
}
