package places

import (
	"strings"
	"sync"
	"testing"
)

func TestColorForCategory(t *testing.T) {
	tests := []struct {
		category string
		want     string
	}{
		{"普段飲み", "#22c55e"},
		{" クライアント飲み ", "#0ea5e9"},
		{"パーティ", "#64748b"},
		{"ミール利用飲み", "#ef4444"},
		{"普段飲み会", DefaultColor},
		{"", DefaultColor},
	}
	for _, tt := range tests {
		if got := ColorForCategory(tt.category); got != tt.want {
			t.Errorf("ColorForCategory(%q) = %q, want %q", tt.category, got, tt.want)
		}
	}
}

func TestIconCacheReturnsSameIcon(t *testing.T) {
	c := NewIconCache()

	a := c.Icon("普段飲み")
	b := c.Icon(" 普段飲み")
	if a != b {
		t.Error("expected the same cached icon for the same colour")
	}

	// two unknown categories share the default colour icon
	x := c.Icon("unknown")
	y := c.Icon("")
	if x != y {
		t.Error("expected unmapped categories to share one icon")
	}
	if x == a {
		t.Error("different colours must not share an icon")
	}
	if c.Len() != 2 {
		t.Errorf("expected 2 cached icons, got %d", c.Len())
	}

	if !strings.HasPrefix(a.URL, "data:image/svg+xml;charset=UTF-8,") {
		t.Errorf("unexpected icon url %q", a.URL)
	}
	if !strings.Contains(a.URL, "%2322c55e") {
		t.Errorf("icon url should embed the colour: %q", a.URL)
	}
}

func TestIconCacheConcurrent(t *testing.T) {
	c := NewIconCache()
	icons := make([]*Icon, 50)

	var wg sync.WaitGroup
	for i := range icons {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			icons[i] = c.Icon("パーティ")
		}(i)
	}
	wg.Wait()

	for _, icon := range icons {
		if icon != icons[0] {
			t.Fatal("concurrent lookups returned different icons")
		}
	}
}

func TestIconCacheZeroValue(t *testing.T) {
	var c IconCache
	a := c.Icon("普段飲み")
	if a == nil || a.Color != "#22c55e" {
		t.Fatalf("unexpected icon %+v", a)
	}
	if c.Icon("普段飲み") != a {
		t.Error("expected the cached pointer")
	}
	if c.Len() != 1 {
		t.Errorf("expected 1 icon, got %d", c.Len())
	}
}
