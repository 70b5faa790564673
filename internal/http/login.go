package http

import (
	"fmt"
	"html"
	nethttp "net/http"
)

func renderLoginPage(w nethttp.ResponseWriter, errorMessage string) {
	banner := ""
	if errorMessage != "" {
		banner = fmt.Sprintf(`<div class="login-error">%s</div>`, html.EscapeString(errorMessage))
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(nethttp.StatusOK)
	_, _ = fmt.Fprintf(w, loginHTML, banner)
}

const loginHTML = `<!doctype html>
<html lang="en">
<head>
  <meta charset="utf-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1" />
  <title>Sign in - SKUD Reconciliation</title>
  <style>
    :root {
      --brand: #0e5d8f;
      --brand-2: #0971b2;
      --bg: #f7f7f7;
      --paper: #fff;
      --text: #333;
      --line: #ddd;
      --bad-bg: #f2dede;
      --bad-text: #a94442;
    }

    * { box-sizing: border-box; }

    body {
      margin: 0;
      background: var(--bg);
      color: var(--text);
      font-family: "Open Sans", "Helvetica Neue", Helvetica, Arial, sans-serif;
      font-size: 14px;
      display: flex;
      align-items: center;
      justify-content: center;
      min-height: 100vh;
    }

    .login-card {
      background: var(--paper);
      border: 1px solid var(--line);
      box-shadow: 0 1px 3px rgba(0, 0, 0, 0.08);
      padding: 28px 32px;
      width: 340px;
    }

    .login-card h1 {
      margin: 0 0 6px;
      font-size: 22px;
      font-weight: 300;
      color: var(--brand);
    }

    .login-card p { margin: 0 0 18px; color: #777; font-size: 13px; }

    label { display: block; font-weight: 600; font-size: 12px; margin-bottom: 4px; }

    input[type="text"], input[type="password"] {
      width: 100%%;
      padding: 7px 9px;
      margin-bottom: 14px;
      border: 1px solid var(--line);
      font-size: 14px;
    }

    button {
      width: 100%%;
      background: linear-gradient(to right, var(--brand) 0, var(--brand-2) 100%%);
      color: #fff;
      border: 0;
      padding: 9px 0;
      font-size: 14px;
      font-weight: 600;
      cursor: pointer;
    }

    .login-error {
      background: var(--bad-bg);
      color: var(--bad-text);
      border: 1px solid #ebccd1;
      padding: 8px 10px;
      margin-bottom: 14px;
      font-size: 13px;
    }
  </style>
</head>
<body>
  <form class="login-card" method="post" action="/login">
    <h1>SKUD Reconciliation</h1>
    <p>Sign in to compare tabell and SKUD worked hours.</p>
    %s
    <label for="username">Username</label>
    <input id="username" name="username" type="text" autocomplete="username" autofocus />
    <label for="password">Password</label>
    <input id="password" name="password" type="password" autocomplete="current-password" />
    <button type="submit">Sign in</button>
  </form>
</body>
</html>
`
