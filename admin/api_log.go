package admin

import (
	"fmt"
	"html"
	"net/http"
	"strings"

	"nomimap/app"
)

// APILogHandler shows the external API call log page.
func APILogHandler(w http.ResponseWriter, r *http.Request) {
	entries := app.GetAPILog()

	if app.WantsJSON(r) {
		app.RespondJSON(w, entries)
		return
	}

	var content strings.Builder

	content.WriteString(`<div class="card">`)
	content.WriteString(fmt.Sprintf(`<h3>External API Calls <span class="count">%d</span></h3>`, len(entries)))

	if len(entries) == 0 {
		content.WriteString(`<p class="text-muted">No API calls recorded yet.</p>`)
	} else {
		content.WriteString(`<table class="log">`)
		content.WriteString(`<tr><th>Time</th><th>Service</th><th>Method</th><th>URL</th><th>Status</th><th>Duration</th><th>Error</th></tr>`)

		for _, e := range entries {
			statusClass := "ok"
			statusLabel := fmt.Sprintf("%d", e.Status)
			if e.Status == 0 {
				statusLabel = "err"
				statusClass = "text-error"
			} else if e.Status >= 400 {
				statusClass = "text-error"
			}

			content.WriteString(fmt.Sprintf(`<tr>
				<td>%s</td>
				<td>%s</td>
				<td>%s</td>
				<td class="addr" title="%s">%s</td>
				<td class="%s">%s</td>
				<td>%dms</td>
				<td class="subject" title="%s">%s</td>
			</tr>`,
				e.Time.Format("Jan 2 15:04:05"),
				html.EscapeString(e.Service),
				html.EscapeString(e.Method),
				html.EscapeString(e.URL), html.EscapeString(truncate(e.URL, 50)),
				statusClass, statusLabel,
				e.Duration.Milliseconds(),
				html.EscapeString(e.Error), html.EscapeString(truncate(e.Error, 60)),
			))
		}

		content.WriteString(`</table>`)
	}

	content.WriteString(`</div>`)
	content.WriteString(`<p><a href="/admin">← Back to Admin</a></p>`)

	app.Respond(w, r, app.Response{
		Title:       "API Log",
		Description: "External API Log",
		HTML:        content.String(),
	})
}

// truncate shortens s to n runes, adding an ellipsis when cut.
func truncate(s string, n int) string {
	rs := []rune(s)
	if len(rs) <= n {
		return s
	}
	return string(rs[:n]) + "…"
}
