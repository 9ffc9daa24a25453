package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"nomimap/app"
	"nomimap/data"
)

// SessionTTL is how long a login lasts
const SessionTTL = 30 * 24 * time.Hour

// CreateSession stores a new session and returns it.
func CreateSession(ctx context.Context) (*Session, error) {
	db, err := data.DB()
	if err != nil {
		return nil, err
	}

	tk := GenerateToken()
	sess, err := ParseToken(tk)
	if err != nil {
		return nil, err
	}
	sess.Created = time.Now().UTC()

	_, err = db.ExecContext(ctx, `INSERT INTO sessions (token, id, created_at) VALUES (?, ?, ?)`,
		sess.Token, sess.ID, sess.Created)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	return sess, nil
}

// LookupSession returns the stored session for token. Expired sessions
// are removed and reported as not found.
func LookupSession(ctx context.Context, token string) (*Session, error) {
	db, err := data.DB()
	if err != nil {
		return nil, err
	}

	sess := &Session{Token: token}
	err = db.QueryRowContext(ctx, `SELECT id, created_at FROM sessions WHERE token = ?`, token).
		Scan(&sess.ID, &sess.Created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoSession
	}
	if err != nil {
		return nil, fmt.Errorf("lookup session: %w", err)
	}

	if time.Since(sess.Created) > SessionTTL {
		if err := DeleteSession(ctx, token); err != nil {
			app.Log("auth", "Expired session: %v", err)
		}
		return nil, ErrNoSession
	}
	return sess, nil
}

// DeleteSession removes the session. Deleting an unknown token is not an error.
func DeleteSession(ctx context.Context, token string) error {
	db, err := data.DB()
	if err != nil {
		return err
	}
	if _, err := db.ExecContext(ctx, `DELETE FROM sessions WHERE token = ?`, token); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// PurgeExpired deletes every session older than SessionTTL.
func PurgeExpired(ctx context.Context) (int64, error) {
	db, err := data.DB()
	if err != nil {
		return 0, err
	}
	res, err := db.ExecContext(ctx, `DELETE FROM sessions WHERE created_at < ?`, time.Now().UTC().Add(-SessionTTL))
	if err != nil {
		return 0, fmt.Errorf("purge sessions: %w", err)
	}
	return res.RowsAffected()
}
