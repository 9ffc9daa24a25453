package admin

import (
	"fmt"
	"net/http"
	"strings"

	"nomimap/app"
	"nomimap/auth"
	"nomimap/places"
)

// AdminHandler shows the admin index and runs maintenance actions.
func AdminHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method == "POST" {
		if err := r.ParseForm(); err != nil {
			app.BadRequest(w, r, "Failed to parse form")
			return
		}

		switch action := r.FormValue("action"); action {
		case "refresh":
			places.Invalidate()
			app.Log("admin", "place cache invalidated")
		case "purge":
			n, err := auth.PurgeExpired(r.Context())
			if err != nil {
				app.ServerError(w, r, "Failed to purge sessions")
				return
			}
			app.Log("admin", "purged %d expired sessions", n)
		default:
			app.BadRequest(w, r, "Unknown action")
			return
		}

		http.Redirect(w, r, "/admin", http.StatusSeeOther)
		return
	}

	if r.Method != "GET" {
		app.MethodNotAllowed(w, r)
		return
	}

	var content strings.Builder
	content.WriteString(`<div class="card">`)
	content.WriteString(`<h3>Admin</h3>`)
	content.WriteString(`<ul class="admin-links">`)
	for _, l := range []struct{ href, label string }{
		{"/admin/env", "Environment"},
		{"/admin/log", "System Log"},
		{"/admin/api", "External API Log"},
		{"/status", "Status"},
	} {
		content.WriteString(fmt.Sprintf(`<li><a href="%s">%s</a></li>`, l.href, l.label))
	}
	content.WriteString(`</ul>`)
	content.WriteString(`</div>`)

	content.WriteString(`<div class="card">`)
	content.WriteString(`<h3>Maintenance</h3>`)
	content.WriteString(`<form method="POST" action="/admin"><input type="hidden" name="action" value="refresh"><button type="submit">Refetch places</button></form>`)
	content.WriteString(`<form method="POST" action="/admin"><input type="hidden" name="action" value="purge"><button type="submit">Purge expired sessions</button></form>`)
	content.WriteString(`</div>`)

	app.Respond(w, r, app.Response{
		Title:       "Admin",
		Description: "Admin",
		HTML:        content.String(),
	})
}
