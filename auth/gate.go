package auth

import (
	"net/http"
	"net/url"

	"nomimap/app"
)

// Require wraps next so that gated paths need a valid session. Browsers
// are sent to the login page; JSON clients get a 401.
func Require(gated func(path string) bool, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !gated(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		if _, err := GetSession(r); err != nil {
			if app.WantsJSON(r) {
				app.RespondError(w, http.StatusUnauthorized, "authentication required")
				return
			}
			target := "/login"
			if r.URL.Path != "/" {
				target += "?next=" + url.QueryEscape(r.URL.RequestURI())
			}
			http.Redirect(w, r, target, http.StatusFound)
			return
		}

		next.ServeHTTP(w, r)
	})
}
