package places

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nomimap/config"
	"nomimap/sheet"
)

type fakeSource struct {
	mu     sync.Mutex
	values [][]string
	err    error
	delay  time.Duration
	calls  atomic.Int32
}

func (f *fakeSource) Values(ctx context.Context) ([][]string, error) {
	f.calls.Add(1)
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.values, f.err
}

func (f *fakeSource) Close() error { return nil }

func (f *fakeSource) set(values [][]string, err error) {
	f.mu.Lock()
	f.values, f.err = values, err
	f.mu.Unlock()
}

var sampleValues = [][]string{
	{"店名", "lat", "lng", "useCase", "priceRange", "genre", "comment"},
	{"鳥貴族 赤坂店", "35.673", "139.741", "普段飲み", "〜3000円", "焼鳥", "安くて美味しい"},
	{"Bistro", "35.662", "139.731", "クライアント飲み", "5000円〜", "フレンチ", "接待向き"},
	{"No coords", "", "", "普段飲み", "", "", ""},
}

func newTestStore(t *testing.T, src sheet.Source, ttl time.Duration) (*Store, *time.Time) {
	t.Helper()
	useTempDir(t)
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	s := NewStoreWithSource(src, ttl)
	s.now = func() time.Time { return now }
	return s, &now
}

func TestStoreCachesWithinTTL(t *testing.T) {
	src := &fakeSource{values: sampleValues}
	s, now := newTestStore(t, src, time.Minute)

	places, err := s.Places(context.Background())
	require.NoError(t, err)
	require.Len(t, places, 2)

	*now = now.Add(30 * time.Second)
	again, err := s.Places(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(1), src.calls.Load())
	assert.Same(t, places[0], again[0])

	*now = now.Add(31 * time.Second)
	src.set(sampleValues[:2], nil)
	refreshed, err := s.Places(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(2), src.calls.Load())
	assert.Len(t, refreshed, 1)

	// the earlier list is untouched by the refresh
	assert.Len(t, places, 2)
}

func TestStoreNeverServesStaleOnError(t *testing.T) {
	src := &fakeSource{values: sampleValues}
	s, now := newTestStore(t, src, time.Minute)

	_, err := s.Places(context.Background())
	require.NoError(t, err)

	*now = now.Add(2 * time.Minute)
	src.set(nil, &sheet.UpstreamError{Status: 403, Body: "denied"})

	places, err := s.Places(context.Background())
	assert.Nil(t, places)
	ue, ok := sheet.IsUpstream(err)
	require.True(t, ok)
	assert.Equal(t, "denied", ue.Body)

	check := s.Check()
	assert.False(t, check.Status)
}

func TestStoreCoalescesConcurrentFetches(t *testing.T) {
	src := &fakeSource{values: sampleValues, delay: 50 * time.Millisecond}
	useTempDir(t)
	s := NewStoreWithSource(src, time.Minute)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.Places(context.Background())
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), src.calls.Load())
}

func TestStoreOpenError(t *testing.T) {
	useTempDir(t)
	missing := (&config.Config{SheetsID: "x"}).CheckSheets()
	s := newStore(func(context.Context) (sheet.Source, error) { return nil, missing }, time.Minute)

	_, err := s.Snapshot(context.Background())
	me, ok := config.IsMissing(err)
	require.True(t, ok)
	assert.False(t, me.Flags["SHEETS_KEY"])
	assert.True(t, me.Flags["SHEETS_ID"])
}

func TestStoreInvalidate(t *testing.T) {
	src := &fakeSource{values: sampleValues}
	s, _ := newTestStore(t, src, time.Hour)

	_, err := s.Places(context.Background())
	require.NoError(t, err)
	s.Invalidate()
	_, err = s.Places(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(2), src.calls.Load())

	check := s.Check()
	assert.True(t, check.Status)
	assert.Contains(t, check.Details, "2 places")
	require.NoError(t, s.Close())
}

func TestStoreSnapshotIndex(t *testing.T) {
	src := &fakeSource{values: sampleValues}
	s, _ := newTestStore(t, src, time.Minute)

	snap, err := s.Snapshot(context.Background())
	require.NoError(t, err)
	require.NotNil(t, snap.Index)

	got := snap.Index.Apply(Filters{AreaPresetID: "akasaka"}, testPresets)
	assert.Equal(t, Apply(snap.Places, Filters{AreaPresetID: "akasaka"}, testPresets), got)
}
