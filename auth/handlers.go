package auth

import (
	"html"
	"net/http"
	"strings"

	"nomimap/app"
)

// safeNext only allows local paths as the post-login redirect. Browsers
// read "/\host" as "//host", so a backslash after the slash is rejected.
func safeNext(next string) string {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") || strings.HasPrefix(next, "/login") {
		return "/"
	}
	return next
}

func loginForm(next, errMsg string) string {
	msg := ""
	if errMsg != "" {
		msg = app.Error(errMsg)
	}
	return `<div class="card login">
<h1>Nomimap Access</h1>
<p class="text-muted">共通パスを入力してください。</p>
` + msg + `
<form method="POST" action="/login">
<input type="hidden" name="next" value="` + html.EscapeString(next) + `">
<input type="password" name="pass" placeholder="Enter pass..." required autofocus>
<button type="submit">Enter</button>
</form>
</div>`
}

// LoginHandler shows the pass form and opens a session on success
func LoginHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		next := safeNext(r.URL.Query().Get("next"))
		if _, err := GetSession(r); err == nil {
			http.Redirect(w, r, next, http.StatusFound)
			return
		}
		app.Respond(w, r, app.Response{Title: "Login", Description: "Nomimap Access", HTML: loginForm(next, "")})

	case http.MethodPost:
		if err := r.ParseForm(); err != nil {
			app.BadRequest(w, r, "Invalid form")
			return
		}
		next := safeNext(r.FormValue("next"))
		pass := r.FormValue("pass")

		if strings.TrimSpace(pass) == "" {
			app.RespondStatus(w, r, http.StatusBadRequest, app.Response{Title: "Login", HTML: loginForm(next, "パスを入力してください")})
			return
		}
		if !CheckPassword(pass) {
			app.Log("auth", "Login rejected from %s", r.RemoteAddr)
			app.RespondStatus(w, r, http.StatusUnauthorized, app.Response{Title: "Login", HTML: loginForm(next, "パスが違います")})
			return
		}

		sess, err := CreateSession(r.Context())
		if err != nil {
			app.Log("auth", "Create session: %v", err)
			app.ServerError(w, r, "Could not create session")
			return
		}
		SetCookie(w, r, sess)
		http.Redirect(w, r, next, http.StatusFound)

	default:
		app.MethodNotAllowed(w, r)
	}
}

// LogoutHandler ends the session and returns to the login page
func LogoutHandler(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(CookieName); err == nil && c.Value != "" {
		if err := DeleteSession(r.Context(), c.Value); err != nil {
			app.Log("auth", "Logout: %v", err)
		}
	}
	ClearCookie(w)
	app.RedirectToLogin(w, r)
}
