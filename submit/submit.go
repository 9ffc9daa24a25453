// Package submit serves the review submission page, an embedded form
// hosted elsewhere.
package submit

import (
	"fmt"
	"html"
	"net/http"
	"net/url"

	"nomimap/app"
)

var embedSrc string

// Load sets the form URL. Anything but an absolute http(s) URL is
// treated as unset.
func Load(src string) {
	embedSrc = ""
	u, err := url.Parse(src)
	if err != nil || (u.Scheme != "https" && u.Scheme != "http") || u.Host == "" {
		if src != "" {
			app.Log("submit", "ignoring form url %q", src)
		}
		return
	}
	embedSrc = u.String()
}

// Handler renders the form iframe or a notice when no form is configured.
func Handler(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		app.MethodNotAllowed(w, r)
		return
	}

	body := `<div class="text-muted">環境変数 FORMS_EMBED_SRC が未設定です。</div>`
	if embedSrc != "" {
		body = fmt.Sprintf(`<div class="form-frame"><iframe title="Submit Form" src="%s" allow="clipboard-write" loading="lazy" referrerpolicy="no-referrer-when-downgrade"></iframe></div>`,
			html.EscapeString(embedSrc))
	}

	app.Respond(w, r, app.Response{
		Title:       "投稿",
		Description: "お店のレビューを投稿",
		HTML:        body,
	})
}
