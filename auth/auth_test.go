package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"nomimap/data"
)

func useTempDir(t *testing.T) {
	t.Helper()
	data.Close()
	data.SetDir(t.TempDir())
	t.Cleanup(func() {
		data.Close()
		SetPassword("", "")
	})
}

func TestTokenRoundTrip(t *testing.T) {
	tk := GenerateToken()
	require.NoError(t, ValidateToken(tk))

	sess, err := ParseToken(tk)
	require.NoError(t, err)
	assert.Equal(t, tk, sess.Token)
	assert.NotEmpty(t, sess.ID)

	for _, bad := range []string{"", "not base64!", "bm90IGEgdXVpZA=="} {
		assert.ErrorIs(t, ValidateToken(bad), ErrInvalidSession, bad)
	}
}

func TestCheckPassword(t *testing.T) {
	t.Cleanup(func() { SetPassword("", "") })

	SetPassword("", "")
	assert.True(t, CheckPassword("anything"))
	assert.False(t, CheckPassword(""))
	assert.False(t, CheckPassword("   "))

	SetPassword("secret", "")
	assert.True(t, CheckPassword("secret"))
	assert.False(t, CheckPassword("Secret"))

	hash, err := bcrypt.GenerateFromPassword([]byte("hashed"), bcrypt.MinCost)
	require.NoError(t, err)
	SetPassword("secret", string(hash))
	assert.True(t, CheckPassword("hashed"))
	assert.False(t, CheckPassword("secret"))
}

func TestSessionLifecycle(t *testing.T) {
	useTempDir(t)
	ctx := context.Background()

	sess, err := CreateSession(ctx)
	require.NoError(t, err)

	got, err := LookupSession(ctx, sess.Token)
	require.NoError(t, err)
	assert.Equal(t, sess.ID, got.ID)

	require.NoError(t, DeleteSession(ctx, sess.Token))
	_, err = LookupSession(ctx, sess.Token)
	assert.ErrorIs(t, err, ErrNoSession)

	// deleting twice is fine
	assert.NoError(t, DeleteSession(ctx, sess.Token))

	n, err := PurgeExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func postLogin(t *testing.T, pass, next string) *httptest.ResponseRecorder {
	t.Helper()
	form := url.Values{"pass": {pass}, "next": {next}}
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	LoginHandler(w, req)
	return w
}

func sessionCookie(w *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == CookieName {
			return c
		}
	}
	return nil
}

func TestLoginLogout(t *testing.T) {
	useTempDir(t)
	SetPassword("secret", "")

	w := postLogin(t, "wrong", "/")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Nil(t, sessionCookie(w))
	assert.Contains(t, w.Body.String(), "パスが違います")

	w = postLogin(t, "", "/")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = postLogin(t, "secret", "/submit")
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/submit", w.Header().Get("Location"))
	c := sessionCookie(w)
	require.NotNil(t, c)
	assert.True(t, c.HttpOnly)

	// a logged in visit to /login goes straight to the map
	req := httptest.NewRequest(http.MethodGet, "/login", nil)
	req.AddCookie(c)
	w = httptest.NewRecorder()
	LoginHandler(w, req)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))

	req = httptest.NewRequest(http.MethodGet, "/logout", nil)
	req.AddCookie(c)
	w = httptest.NewRecorder()
	LogoutHandler(w, req)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))
	cleared := sessionCookie(w)
	require.NotNil(t, cleared)
	assert.Equal(t, -1, cleared.MaxAge)

	_, err := LookupSession(context.Background(), c.Value)
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestLoginRejectsExternalNext(t *testing.T) {
	useTempDir(t)

	w := postLogin(t, "any", "https://evil.example.com/")
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))

	w = postLogin(t, "any", "//evil.example.com/")
	assert.Equal(t, "/", w.Header().Get("Location"))
}

func TestSafeNext(t *testing.T) {
	tests := map[string]string{
		"/place?key=id:1":      "/place?key=id:1",
		"/submit":              "/submit",
		"":                     "/",
		"https://evil.example": "/",
		"//evil.example":       "/",
		"/\\evil.example":      "/",
		"/\\/evil.example":     "/",
		"/login?next=/submit":  "/",
		"javascript:alert(1)":  "/",
	}
	for in, want := range tests {
		if got := safeNext(in); got != want {
			t.Errorf("safeNext(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestLookupExpiredSessionDeletesIt(t *testing.T) {
	useTempDir(t)
	ctx := context.Background()

	sess, err := CreateSession(ctx)
	require.NoError(t, err)

	db, err := data.DB()
	require.NoError(t, err)
	_, err = db.Exec(`UPDATE sessions SET created_at = ? WHERE token = ?`,
		time.Now().UTC().Add(-SessionTTL-time.Hour), sess.Token)
	require.NoError(t, err)

	_, err = LookupSession(ctx, sess.Token)
	assert.ErrorIs(t, err, ErrNoSession)

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM sessions WHERE token = ?`, sess.Token).Scan(&n))
	assert.Equal(t, 0, n)
}

func TestRequire(t *testing.T) {
	useTempDir(t)

	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	h := Require(func(path string) bool { return path != "/api/places" }, ok)

	tests := []struct {
		name     string
		path     string
		accept   string
		login    bool
		code     int
		location string
	}{
		{"public path", "/api/places", "", false, http.StatusOK, ""},
		{"map redirects", "/", "", false, http.StatusFound, "/login"},
		{"drawer keeps next", "/place?key=a", "", false, http.StatusFound, "/login?next=%2Fplace%3Fkey%3Da"},
		{"json gets 401", "/place?key=a", "application/json", false, http.StatusUnauthorized, ""},
		{"with session", "/", "", true, http.StatusOK, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.accept != "" {
				req.Header.Set("Accept", tt.accept)
			}
			if tt.login {
				sess, err := CreateSession(context.Background())
				require.NoError(t, err)
				req.AddCookie(&http.Cookie{Name: CookieName, Value: sess.Token})
			}
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)
			assert.Equal(t, tt.code, w.Code)
			if tt.location != "" {
				assert.Equal(t, tt.location, w.Header().Get("Location"))
			}
		})
	}

	// a well-formed token that was never issued is rejected
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: GenerateToken()})
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusFound, w.Code)
}
