package app

import (
	"encoding/json"
	"net/http"
	"strings"
)

// WantsJSON reports whether the client asked for a JSON response
func WantsJSON(r *http.Request) bool {
	if r.URL.Query().Get("format") == "json" {
		return true
	}
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}

// RespondJSON writes v as JSON with a 200 status
func RespondJSON(w http.ResponseWriter, v interface{}) {
	RespondJSONStatus(w, http.StatusOK, v)
}

// RespondJSONStatus writes v as JSON with the given status
func RespondJSONStatus(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		Log("app", "encode response: %v", err)
	}
}

// RespondError writes a JSON error payload
func RespondError(w http.ResponseWriter, status int, msg string) {
	RespondJSONStatus(w, status, map[string]interface{}{"error": msg})
}

// BadRequest responds with a 400 in the format the client asked for
func BadRequest(w http.ResponseWriter, r *http.Request, msg string) {
	errorPage(w, r, http.StatusBadRequest, msg)
}

// NotFound responds with a 404 in the format the client asked for
func NotFound(w http.ResponseWriter, r *http.Request, msg string) {
	errorPage(w, r, http.StatusNotFound, msg)
}

// ServerError responds with a 500 in the format the client asked for
func ServerError(w http.ResponseWriter, r *http.Request, msg string) {
	errorPage(w, r, http.StatusInternalServerError, msg)
}

// MethodNotAllowed responds with a 405
func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	errorPage(w, r, http.StatusMethodNotAllowed, "Method not allowed")
}

// RedirectToLogin sends the browser to the login page
func RedirectToLogin(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/login", http.StatusFound)
}

func errorPage(w http.ResponseWriter, r *http.Request, status int, msg string) {
	if WantsJSON(r) {
		RespondError(w, status, msg)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write([]byte(RenderHTML(http.StatusText(status), msg, Error(msg))))
}
