package admin

import (
	"fmt"
	"net/http"
	"os"
	"strings"

	"nomimap/app"
	"nomimap/config"
)

// EnvHandler shows which environment variables are configured (without leaking values).
func EnvHandler(w http.ResponseWriter, r *http.Request) {
	if app.WantsJSON(r) {
		set := make(map[string]bool, len(config.Known))
		for _, name := range config.Known {
			set[name] = os.Getenv(name) != ""
		}
		app.RespondJSON(w, set)
		return
	}

	var content strings.Builder
	content.WriteString(`<div class="card">`)
	content.WriteString(`<h3>Environment Variables</h3>`)
	content.WriteString(`<p class="text-muted">Shows whether each variable is set. Values are never displayed.</p>`)
	content.WriteString(`<table class="admin-table">`)
	content.WriteString(`<thead><tr><th>Variable</th><th>Status</th></tr></thead><tbody>`)

	for _, name := range config.Known {
		val := os.Getenv(name)
		status := `<span class="text-error">✗ not set</span>`
		if val != "" {
			status = fmt.Sprintf(`<span class="ok">✓ set (%d chars)</span>`, len(val))
		}
		content.WriteString(fmt.Sprintf(`<tr><td><code>%s</code></td><td>%s</td></tr>`, name, status))
	}

	content.WriteString(`</tbody></table>`)
	content.WriteString(`</div>`)
	content.WriteString(`<p><a href="/admin">← Back to Admin</a></p>`)

	app.Respond(w, r, app.Response{
		Title:       "Env Vars",
		Description: "Environment Variables",
		HTML:        content.String(),
	})
}
