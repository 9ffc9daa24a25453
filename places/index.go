package places

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"unicode/utf8"

	"nomimap/data"
)

// minTrigram is the shortest term the trigram tokenizer can match
const minTrigram = 3

var indexMu sync.Mutex

// rebuildIndex replaces the contents of the places table and FTS index
// with the given list. Positions are list indices.
func rebuildIndex(places []*Place) error {
	db, err := data.DB()
	if err != nil {
		return err
	}

	indexMu.Lock()
	defer indexMu.Unlock()

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM places`); err != nil {
		return fmt.Errorf("clear places: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM places_fts`); err != nil {
		return fmt.Errorf("clear fts: %w", err)
	}

	mainStmt, err := tx.Prepare(`
		INSERT INTO places (key, position, name, category, genre, comment, lat, lng)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("prepare: %w", err)
	}
	defer mainStmt.Close()

	ftsStmt, err := tx.Prepare(`INSERT INTO places_fts (position, name, category, genre, comment) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare fts: %w", err)
	}
	defer ftsStmt.Close()

	for i, p := range places {
		pos, ok := p.Position()
		if !ok {
			continue
		}
		if _, err := mainStmt.Exec(p.Key, i, p.Name, p.Category, p.Detail.Genre, p.Detail.Comment, pos.Lat, pos.Lng); err != nil {
			return fmt.Errorf("insert %q: %w", p.Name, err)
		}
		if _, err := ftsStmt.Exec(i, p.Name, p.Category, p.Detail.Genre, p.Detail.Comment); err != nil {
			return fmt.Errorf("fts insert %q: %w", p.Name, err)
		}
	}

	return tx.Commit()
}

// searchTerms splits q into words, dropping FTS5 syntax characters.
func searchTerms(q string) []string {
	q = strings.Map(func(r rune) rune {
		switch r {
		case '"', '\'', '(', ')', '*', '+', '^', '-', '~', ':', '.', '%', '_', '\\':
			return ' '
		}
		return r
	}, q)
	return strings.Fields(strings.ToLower(q))
}

// ftsQuery quotes every term; terms are ANDed.
func ftsQuery(terms []string) string {
	quoted := make([]string, len(terms))
	for i, t := range terms {
		quoted[i] = `"` + t + `"`
	}
	return strings.Join(quoted, " ")
}

// Search returns the places in snap matching every word of q, in list
// order. Words shorter than three characters fall back to LIKE since
// the trigram tokenizer cannot match them.
func Search(ctx context.Context, snap *Snapshot, q string) ([]*Place, error) {
	terms := searchTerms(q)
	if len(terms) == 0 || snap == nil {
		return nil, nil
	}

	db, err := data.DB()
	if err != nil {
		return nil, err
	}

	short := false
	for _, t := range terms {
		if utf8.RuneCountInString(t) < minTrigram {
			short = true
			break
		}
	}

	var query string
	var args []interface{}
	if short {
		var where []string
		for _, t := range terms {
			like := "%" + t + "%"
			where = append(where, `(lower(name) LIKE ? OR lower(category) LIKE ? OR lower(genre) LIKE ? OR lower(comment) LIKE ?)`)
			args = append(args, like, like, like, like)
		}
		query = `SELECT position, key FROM places WHERE ` + strings.Join(where, " AND ") + ` ORDER BY position`
	} else {
		query = `
			SELECT p.position, p.key
			FROM places p
			WHERE p.position IN (SELECT position FROM places_fts WHERE places_fts MATCH ?)
			ORDER BY p.position`
		args = append(args, ftsQuery(terms))
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("places search: %w", err)
	}
	defer rows.Close()

	var result []*Place
	for rows.Next() {
		var pos int
		var key string
		if err := rows.Scan(&pos, &key); err != nil {
			continue
		}
		// the index may belong to a newer snapshot
		if pos < 0 || pos >= len(snap.Places) || snap.Places[pos].Key != key {
			continue
		}
		result = append(result, snap.Places[pos])
	}
	return result, rows.Err()
}
