package http

import nethttp "net/http"

func dashboardHandler(w nethttp.ResponseWriter, r *nethttp.Request) {
	if r.URL.Path != "/" {
		nethttp.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(nethttp.StatusOK)
	_, _ = w.Write([]byte(dashboardHTML))
}

func faviconHandler(w nethttp.ResponseWriter, _ *nethttp.Request) {
	w.WriteHeader(nethttp.StatusNoContent)
}

const dashboardHTML = `<!doctype html>
<html lang="en">
<head>
  <meta charset="utf-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1" />
  <title>SKUD Reconciliation</title>
  <style>
    @import url("https://fonts.googleapis.com/css?family=Open+Sans:300,400,600,700");

    :root {
      --brand: #0e5d8f;
      --brand-2: #0971b2;
      --bg: #f7f7f7;
      --paper: #fff;
      --text: #333;
      --muted: #777;
      --line: #ddd;
      --line-soft: #eee;
      --head: #f0f0f0;
      --ok-bg: #dff0d8;
      --ok-text: #3c763d;
      --warn-bg: #fcf8e3;
      --warn-text: #8a6d3b;
      --bad-bg: #f2dede;
      --bad-text: #a94442;
      --over-bg: #d9edf7;
      --over-text: #31708f;
    }

    * { box-sizing: border-box; }

    body {
      margin: 0;
      background: var(--bg);
      color: var(--text);
      font-family: "Open Sans", "Helvetica Neue", Helvetica, Arial, sans-serif;
      font-size: 14px;
      line-height: 1.42857143;
    }

    a { color: #428bca; text-decoration: none; }
    a:hover { color: #2a6496; text-decoration: underline; }

    header {
      background: linear-gradient(to right, var(--brand) 0, var(--brand-2) 100%);
      border-bottom: 1px solid #0b4e79;
      box-shadow: 0 2px 5px rgba(0, 0, 0, 0.15);
    }

    .container {
      margin-right: auto;
      margin-left: auto;
      padding-left: 15px;
      padding-right: 15px;
      width: 100%;
      max-width: 1680px;
    }

    .header-inner {
      min-height: 60px;
      display: flex;
      align-items: center;
      justify-content: space-between;
    }

    .brand { color: #fff; font-size: 20px; font-weight: 300; }
    .brand small { display: block; font-size: 11px; opacity: 0.85; }
    .header-links a { color: #e6f2fa; margin-left: 14px; font-size: 13px; }

    main { padding: 22px 0 60px; }

    .panel {
      background: var(--paper);
      border: 1px solid var(--line);
      box-shadow: 0 1px 3px rgba(0, 0, 0, 0.06);
      margin-bottom: 20px;
    }

    .panel-head {
      padding: 10px 14px;
      border-bottom: 1px solid var(--line-soft);
      font-size: 15px;
      font-weight: 600;
      color: var(--brand);
      display: flex;
      align-items: center;
      justify-content: space-between;
    }

    .panel-body { padding: 14px; }

    .controls { display: flex; flex-wrap: wrap; gap: 14px; align-items: flex-end; }
    .control { display: flex; flex-direction: column; }
    .control label { font-size: 12px; font-weight: 600; margin-bottom: 4px; }
    .control input { padding: 6px 8px; border: 1px solid var(--line); font-size: 13px; }

    .file-control { min-width: 320px; }
    .file-row { display: flex; gap: 8px; align-items: center; }
    .file-name { font-size: 13px; color: var(--muted); max-width: 260px; overflow: hidden; text-overflow: ellipsis; white-space: nowrap; }

    button {
      background: linear-gradient(to right, var(--brand) 0, var(--brand-2) 100%);
      color: #fff;
      border: 0;
      padding: 8px 18px;
      font-size: 13px;
      font-weight: 600;
      cursor: pointer;
    }

    button.secondary { background: #fff; color: var(--text); border: 1px solid var(--line); }
    button:disabled { opacity: 0.5; cursor: not-allowed; }

    .inline-error { color: var(--bad-text); font-size: 12px; margin-top: 4px; min-height: 15px; }

    .banner { padding: 10px 14px; margin-bottom: 16px; font-size: 13px; border: 1px solid; display: none; }
    .banner.bad { display: block; background: var(--bad-bg); color: var(--bad-text); border-color: #ebccd1; }

    .busy { display: none; align-items: center; gap: 8px; color: var(--muted); font-size: 13px; }
    .busy.active { display: flex; }
    .spinner {
      width: 14px; height: 14px;
      border: 2px solid var(--line);
      border-top-color: var(--brand);
      border-radius: 50%;
      animation: spin 0.8s linear infinite;
    }
    @keyframes spin { to { transform: rotate(360deg); } }

    .cards { display: grid; grid-template-columns: repeat(auto-fit, minmax(200px, 1fr)); gap: 14px; margin-bottom: 20px; }
    .card {
      background: var(--paper);
      border: 1px solid var(--line);
      padding: 14px 16px;
    }
    .card .metric-label { font-size: 12px; color: var(--muted); text-transform: uppercase; letter-spacing: 0.04em; }
    .card .metric-value { font-size: 28px; font-weight: 300; color: var(--brand); margin-top: 2px; }
    .card.card-bad .metric-value { color: var(--bad-text); }

    .count-pill {
      display: inline-block;
      min-width: 20px;
      text-align: center;
      padding: 1px 7px;
      border-radius: 10px;
      background: var(--bad-bg);
      color: var(--bad-text);
      font-size: 12px;
      font-weight: 600;
    }

    details > summary { cursor: pointer; list-style: none; }
    details > summary::-webkit-details-marker { display: none; }
    .caret { display: inline-block; transition: transform 0.15s; margin-right: 6px; font-size: 11px; }
    details[open] .caret { transform: rotate(90deg); }

    table { border-collapse: collapse; width: 100%; font-size: 13px; }
    th, td { border: 1px solid var(--line-soft); padding: 5px 8px; text-align: left; white-space: nowrap; }
    thead th { background: var(--head); font-weight: 600; position: sticky; top: 0; }

    .matrix-wrap { overflow-x: auto; max-height: 70vh; overflow-y: auto; }
    .matrix td.day, .matrix th.day { text-align: center; min-width: 62px; }
    .matrix th.fixed, .matrix td.fixed { position: sticky; background: var(--paper); z-index: 1; }
    .matrix thead th.fixed { background: var(--head); z-index: 2; }
    .matrix .fixed-id { left: 0; min-width: 90px; }
    .matrix .fixed-name { left: 90px; min-width: 180px; }
    .matrix .fixed-job { left: 270px; min-width: 140px; }

    td.cell-empty { background: #fafafa; color: #bbb; }
    td.cell-match { background: var(--ok-bg); color: var(--ok-text); }
    td.cell-over { background: var(--over-bg); color: var(--over-text); }
    td.cell-under { background: var(--warn-bg); color: var(--warn-text); }
    td.cell-broken { background: var(--bad-bg); color: var(--bad-text); font-weight: 600; }

    .cell-hours { display: block; }
    .cell-diff { display: block; font-size: 11px; opacity: 0.8; }
    .cell-diff.muted { opacity: 0.45; }

    .legend { display: flex; gap: 14px; flex-wrap: wrap; font-size: 12px; color: var(--muted); margin-top: 10px; }
    .legend .swatch { display: inline-block; width: 12px; height: 12px; vertical-align: -2px; margin-right: 4px; border: 1px solid var(--line); }

    #results { display: none; }
    #results.visible { display: block; }

    footer { color: var(--muted); font-size: 12px; padding: 10px 0 30px; }
    .mono { font-family: SFMono-Regular, Consolas, Menlo, monospace; font-size: 12px; }
  </style>
</head>
<body>
  <header>
    <div class="container header-inner">
      <div class="brand">SKUD Reconciliation<small>tabell vs attendance punches</small></div>
      <div class="header-links">
        <a href="/metrics">metrics</a>
        <a href="/logout">sign out</a>
      </div>
    </div>
  </header>

  <main>
    <div class="container">
      <div class="panel">
        <div class="panel-head">
          <span>Compare</span>
          <span id="busy" class="busy"><span class="spinner"></span> Comparing&hellip;</span>
        </div>
        <div class="panel-body">
          <div class="controls">
            <div class="control file-control">
              <label for="xlsx-file">SKUD export (.xlsx)</label>
              <div class="file-row">
                <input id="xlsx-file" type="file" accept=".xlsx" />
                <button id="clear-file" class="secondary" type="button">Clear</button>
              </div>
              <div id="file-error" class="inline-error"></div>
            </div>
            <div class="control">
              <label for="date-from">From</label>
              <input id="date-from" type="date" />
            </div>
            <div class="control">
              <label for="date-to">To</label>
              <input id="date-to" type="date" />
            </div>
            <div class="control">
              <button id="submit" type="button" disabled>Compare</button>
            </div>
          </div>
        </div>
      </div>

      <div id="error-banner" class="banner"></div>

      <div id="results">
        <div class="cards">
          <div class="card">
            <div class="metric-label">Tabell employees</div>
            <div class="metric-value" id="card-tabell">-</div>
          </div>
          <div class="card">
            <div class="metric-label">SKUD employees</div>
            <div class="metric-value" id="card-skud">-</div>
          </div>
          <div class="card">
            <div class="metric-label">Matched</div>
            <div class="metric-value" id="card-matched">-</div>
          </div>
          <div class="card card-bad">
            <div class="metric-label">Broken shifts</div>
            <div class="metric-value" id="card-broken">-</div>
          </div>
        </div>

        <div class="panel" id="anomaly-panel">
          <details id="anomaly-details" open>
            <summary class="panel-head">
              <span><span class="caret">&#9656;</span>Broken shifts</span>
              <span class="count-pill" id="anomaly-count">0</span>
            </summary>
            <div class="panel-body" style="overflow-x:auto">
              <table>
                <thead>
                  <tr>
                    <th>Employee ID</th>
                    <th>Name</th>
                    <th>Date</th>
                    <th>Punch time</th>
                    <th>Estimated type</th>
                  </tr>
                </thead>
                <tbody id="anomaly-body"></tbody>
              </table>
            </div>
          </details>
        </div>

        <div class="panel">
          <div class="panel-head"><span>Worked hours by day</span></div>
          <div class="panel-body">
            <div class="matrix-wrap">
              <table class="matrix">
                <thead id="matrix-head"></thead>
                <tbody id="matrix-body"></tbody>
              </table>
            </div>
            <div class="legend">
              <span><span class="swatch" style="background:var(--ok-bg)"></span>match</span>
              <span><span class="swatch" style="background:var(--over-bg)"></span>skud over tabell</span>
              <span><span class="swatch" style="background:var(--warn-bg)"></span>skud under tabell</span>
              <span><span class="swatch" style="background:var(--bad-bg)"></span>broken shift</span>
              <span><span class="swatch" style="background:#fafafa"></span>no data</span>
            </div>
          </div>
        </div>
      </div>

      <footer>
        Data endpoints: <span class="mono">/api/compare</span>,
        <span class="mono">/api/v1/projects</span>,
        <span class="mono">/api/v1/directory</span>,
        <span class="mono">/api/v1/status/services</span>
      </footer>
    </div>
  </main>

  <script>
    const text = (id, v) => document.getElementById(id).textContent = v;
    const html = (id, v) => document.getElementById(id).innerHTML = v;
    const q = (s) => document.querySelector(s);

    function esc(v) {
      return String(v == null ? '' : v)
        .replaceAll('&', '&amp;').replaceAll('<', '&lt;').replaceAll('>', '&gt;')
        .replaceAll('"', '&quot;');
    }

    // Input controller state machine: idle -> submitting -> success | error.
    // Exactly one submission can be in flight; the button is the gate.
    const state = {
      phase: 'idle',
      file: null,
    };

    const fileInput = q('#xlsx-file');
    const submitBtn = q('#submit');

    function submitEnabled() {
      return state.phase !== 'submitting'
        && state.file !== null
        && q('#date-from').value !== ''
        && q('#date-to').value !== '';
    }

    function refreshControls() {
      submitBtn.disabled = !submitEnabled();
      q('#busy').classList.toggle('active', state.phase === 'submitting');
    }

    function setPhase(phase) {
      state.phase = phase;
      refreshControls();
    }

    function showError(msg) {
      const banner = q('#error-banner');
      banner.textContent = msg;
      banner.classList.add('bad');
    }

    function clearError() {
      const banner = q('#error-banner');
      banner.textContent = '';
      banner.classList.remove('bad');
    }

    function clearFile() {
      fileInput.value = '';
      state.file = null;
      text('file-error', '');
      refreshControls();
    }

    fileInput.addEventListener('change', () => {
      const f = fileInput.files[0] || null;
      if (f && !f.name.endsWith('.xlsx')) {
        // Reject the selection but keep any previously accepted file.
        fileInput.value = '';
        text('file-error', 'File must be .xlsx');
      } else {
        state.file = f;
        text('file-error', '');
      }
      refreshControls();
    });

    q('#clear-file').addEventListener('click', clearFile);
    q('#date-from').addEventListener('input', refreshControls);
    q('#date-to').addEventListener('input', refreshControls);

    async function submitCompare() {
      if (!submitEnabled()) return;

      setPhase('submitting');
      clearError();
      q('#results').classList.remove('visible');

      const form = new FormData();
      form.append('xlsx_file', state.file);
      form.append('date_from', q('#date-from').value);
      form.append('date_to', q('#date-to').value);

      let res;
      try {
        res = await fetch('/api/compare', { method: 'POST', body: form });
      } catch (err) {
        showError('Network error: could not reach the server (' + (err && err.message ? err.message : err) + ')');
        setPhase('error');
        return;
      }

      let payload = null;
      try {
        payload = await res.json();
      } catch (err) {
        payload = null;
      }
      if (!res.ok) {
        showError(payload && payload.error ? payload.error : 'Comparison failed (HTTP ' + res.status + ')');
        setPhase('error');
        return;
      }
      if (!payload || !payload.view) {
        showError('Comparison failed (HTTP ' + res.status + '): malformed response');
        setPhase('error');
        return;
      }

      renderView(payload.view);
      q('#results').classList.add('visible');
      setPhase('success');
    }

    submitBtn.addEventListener('click', submitCompare);

    function renderView(view) {
      renderSummary(view.summary);
      renderAnomalies(view.anomalies);
      renderMatrix(view.matrix);
    }

    function renderSummary(s) {
      text('card-tabell', s.tabell_employees);
      text('card-skud', s.skud_employees);
      text('card-matched', s.matched);
      text('card-broken', s.broken_shifts);
    }

    function renderAnomalies(a) {
      const panel = q('#anomaly-panel');
      panel.style.display = a.visible ? '' : 'none';
      if (!a.visible) return;

      text('anomaly-count', a.count);
      q('#anomaly-details').open = true;

      const rows = (a.rows || []).map((r) =>
        '<tr>' +
          '<td>' + esc(r.employee_id) + '</td>' +
          '<td>' + esc(r.name || '(unknown)') + '</td>' +
          '<td>' + esc(r.date) + '</td>' +
          '<td class="mono">' + esc(r.punch_time) + '</td>' +
          '<td>' + esc(r.estimated_type) + '</td>' +
        '</tr>'
      );
      html('anomaly-body', rows.join(''));
    }

    function cellHTML(c) {
      if (c.state === 'empty') {
        return '<td class="day cell-empty"></td>';
      }
      if (c.state === 'broken') {
        return '<td class="day cell-broken">' + esc(c.tabell) + ' / ?</td>';
      }
      let inner = '<span class="cell-hours">' + esc(c.tabell) + ' / ' + esc(c.skud) + '</span>';
      const diffClass = c.diff === '0' ? 'cell-diff muted' : 'cell-diff';
      inner += '<span class="' + diffClass + '">' + esc(c.diff) + '</span>';
      return '<td class="day cell-' + esc(c.state) + '" title="' + esc(c.shift_type || '') + '">' + inner + '</td>';
    }

    function renderMatrix(m) {
      const dates = m.dates || [];
      const head =
        '<tr>' +
          '<th class="fixed fixed-id">Employee ID</th>' +
          '<th class="fixed fixed-name">Name</th>' +
          '<th class="fixed fixed-job">Job title</th>' +
          dates.map((d) => '<th class="day">' + esc(d.label) + '</th>').join('') +
        '</tr>';
      html('matrix-head', head);

      const rows = (m.rows || []).map((r) =>
        '<tr>' +
          '<td class="fixed fixed-id mono">' + esc(r.employee_id) + '</td>' +
          '<td class="fixed fixed-name">' + esc(r.name) + '</td>' +
          '<td class="fixed fixed-job">' + esc(r.job_title) + '</td>' +
          (r.cells || []).map(cellHTML).join('') +
        '</tr>'
      );
      html('matrix-body', rows.join(''));
    }

    refreshControls();
  </script>
</body>
</html>
`
