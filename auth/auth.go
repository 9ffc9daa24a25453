package auth

import (
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// CookieName is the session cookie
const CookieName = "session"

var (
	ErrInvalidSession = errors.New("invalid session")
	ErrNoSession      = errors.New("session not found")
)

type Session struct {
	ID      string
	Token   string
	Created time.Time
}

var (
	mu           sync.RWMutex
	password     string
	passwordHash []byte
)

// SetPassword configures the shared pass. A bcrypt hash takes precedence
// over the plain value; with neither set any non-empty pass is accepted.
func SetPassword(plain, hash string) {
	mu.Lock()
	defer mu.Unlock()
	password = plain
	passwordHash = []byte(hash)
}

// CheckPassword reports whether pass opens the gate.
func CheckPassword(pass string) bool {
	if strings.TrimSpace(pass) == "" {
		return false
	}

	mu.RLock()
	defer mu.RUnlock()

	switch {
	case len(passwordHash) > 0:
		return bcrypt.CompareHashAndPassword(passwordHash, []byte(pass)) == nil
	case password != "":
		return subtle.ConstantTimeCompare([]byte(password), []byte(pass)) == 1
	default:
		return true
	}
}

// GetSession returns the stored session for the request cookie.
func GetSession(r *http.Request) (*Session, error) {
	c, err := r.Cookie(CookieName)
	if err != nil {
		return nil, ErrNoSession
	}

	sess, err := ParseToken(c.Value)
	if err != nil {
		return nil, err
	}
	return LookupSession(r.Context(), sess.Token)
}

func ParseToken(tk string) (*Session, error) {
	dec, err := base64.StdEncoding.DecodeString(tk)
	if err != nil {
		return nil, ErrInvalidSession
	}

	id, err := uuid.Parse(string(dec))
	if err != nil {
		return nil, ErrInvalidSession
	}

	return &Session{
		ID:    id.String(),
		Token: tk,
	}, nil
}

func GenerateToken() string {
	id := uuid.New().String()
	return base64.StdEncoding.EncodeToString([]byte(id))
}

func ValidateToken(tk string) error {
	_, err := ParseToken(tk)
	return err
}

// SetCookie stores the session token in the browser
func SetCookie(w http.ResponseWriter, r *http.Request, sess *Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    sess.Token,
		Path:     "/",
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(SessionTTL / time.Second),
	})
}

// ClearCookie removes the session cookie
func ClearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
}
