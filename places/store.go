package places

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"nomimap/app"
	"nomimap/sheet"
)

// Snapshot is one fetched place list. It is never modified after the
// Store publishes it.
type Snapshot struct {
	Places    []*Place
	Index     *AreaIndex
	FetchedAt time.Time
}

// OpenFunc opens the row source on first use.
type OpenFunc func(ctx context.Context) (sheet.Source, error)

// Store caches the place list for the revalidate interval.
type Store struct {
	open OpenFunc
	ttl  time.Duration
	now  func() time.Time

	group singleflight.Group

	mu      sync.RWMutex
	src     sheet.Source
	snap    *Snapshot
	lastErr error
	fetches int
}

// NewStore returns a store reading from the source at uri.
func NewStore(uri string, ttl time.Duration) *Store {
	return newStore(func(ctx context.Context) (sheet.Source, error) {
		return sheet.NewSource(ctx, uri)
	}, ttl)
}

// NewStoreWithSource returns a store reading from src.
func NewStoreWithSource(src sheet.Source, ttl time.Duration) *Store {
	return newStore(func(context.Context) (sheet.Source, error) {
		return src, nil
	}, ttl)
}

func newStore(open OpenFunc, ttl time.Duration) *Store {
	return &Store{open: open, ttl: ttl, now: time.Now}
}

// Snapshot returns the cached list when it is younger than the ttl,
// otherwise it fetches a new one. Concurrent refreshes share one fetch.
// A failed fetch returns the error; stale data is never returned.
func (s *Store) Snapshot(ctx context.Context) (*Snapshot, error) {
	s.mu.RLock()
	snap := s.snap
	s.mu.RUnlock()

	if snap != nil && s.now().Sub(snap.FetchedAt) < s.ttl {
		return snap, nil
	}

	v, err, _ := s.group.Do("places", func() (interface{}, error) {
		return s.refresh(context.WithoutCancel(ctx))
	})
	if err != nil {
		return nil, err
	}
	return v.(*Snapshot), nil
}

// Places returns the current place list.
func (s *Store) Places(ctx context.Context) ([]*Place, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return snap.Places, nil
}

func (s *Store) source(ctx context.Context) (sheet.Source, error) {
	s.mu.RLock()
	src := s.src
	s.mu.RUnlock()
	if src != nil {
		return src, nil
	}

	src, err := s.open(ctx)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.src = src
	s.mu.Unlock()
	return src, nil
}

func (s *Store) refresh(ctx context.Context) (*Snapshot, error) {
	start := s.now()

	snap, err := s.fetch(ctx)

	s.mu.Lock()
	s.fetches++
	s.lastErr = err
	if err == nil {
		s.snap = snap
	}
	s.mu.Unlock()

	if err != nil {
		app.Log("places", "Fetch failed: %v", err)
		return nil, err
	}

	app.Log("places", "Fetched %d places in %v", len(snap.Places), s.now().Sub(start))

	if err := rebuildIndex(snap.Places); err != nil {
		app.Log("places", "Search index rebuild failed: %v", err)
	}
	return snap, nil
}

func (s *Store) fetch(ctx context.Context) (*Snapshot, error) {
	src, err := s.source(ctx)
	if err != nil {
		return nil, err
	}

	values, err := src.Values(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch rows: %w", err)
	}

	places := Normalize(sheet.Parse(values))
	return &Snapshot{
		Places:    places,
		Index:     NewAreaIndex(places),
		FetchedAt: s.now(),
	}, nil
}

// Invalidate forces the next call to fetch.
func (s *Store) Invalidate() {
	s.mu.Lock()
	s.snap = nil
	s.mu.Unlock()
}

// Check reports the store state for the status page.
func (s *Store) Check() app.StatusCheck {
	s.mu.RLock()
	defer s.mu.RUnlock()

	check := app.StatusCheck{Name: "Places", Status: true}
	switch {
	case s.lastErr != nil:
		check.Status = false
		check.Details = s.lastErr.Error()
	case s.snap == nil:
		check.Details = "not fetched yet"
	default:
		check.Details = fmt.Sprintf("%d places, fetched %s ago", len(s.snap.Places),
			s.now().Sub(s.snap.FetchedAt).Round(time.Second))
	}
	return check
}

// Close closes the underlying source.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.src == nil {
		return nil
	}
	err := s.src.Close()
	s.src = nil
	return err
}
