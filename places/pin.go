package places

import (
	"fmt"
	"net/url"
	"strings"
	"sync"
)

// DefaultColor is used for any category not in the table
const DefaultColor = "#3b82f6"

var categoryColors = map[string]string{
	"普段飲み":     "#22c55e",
	"クライアント飲み": "#0ea5e9",
	"パーティ":     "#64748b",
	"ミール利用飲み":  "#ef4444",
}

// ColorForCategory maps a use-case to its pin colour by exact match.
func ColorForCategory(category string) string {
	if c, ok := categoryColors[strings.TrimSpace(category)]; ok {
		return c
	}
	return DefaultColor
}

// Icon is a map marker image
type Icon struct {
	Color string `json:"color"`
	URL   string `json:"url"`
}

// IconCache memoizes one Icon per colour. Categories sharing a colour
// share the icon. The zero value is ready to use.
type IconCache struct {
	mu    sync.Mutex
	icons map[string]*Icon
}

// NewIconCache returns an empty cache.
func NewIconCache() *IconCache {
	return &IconCache{icons: map[string]*Icon{}}
}

// Icon returns the cached icon for the category's colour.
func (c *IconCache) Icon(category string) *Icon {
	color := ColorForCategory(category)
	key := "pin:" + color

	c.mu.Lock()
	defer c.mu.Unlock()

	if icon, ok := c.icons[key]; ok {
		return icon
	}
	if c.icons == nil {
		c.icons = map[string]*Icon{}
	}
	icon := &Icon{Color: color, URL: pinURL(color)}
	c.icons[key] = icon
	return icon
}

// Len returns the number of cached icons.
func (c *IconCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.icons)
}

func pinURL(color string) string {
	svg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" width="48" height="48" viewBox="0 0 24 24">`+
		`<path d="M12 2c-3.31 0-6 2.61-6 5.83 0 4.37 5.61 10.56 5.86 10.83a.2.2 0 0 0 .28 0C12.39 18.39 18 12.2 18 7.83 18 4.61 15.31 2 12 2z" fill="%s"/>`+
		`<circle cx="12" cy="8.5" r="2.5" fill="white"/></svg>`, color)
	return "data:image/svg+xml;charset=UTF-8," + strings.ReplaceAll(url.QueryEscape(svg), "+", "%20")
}
