package places

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/asim/quadtree"

	"nomimap/app"
	"nomimap/data"
)

//go:embed presets.json
var presetsJSON []byte

// presetsFileKey is the data-store key of the optional preset override
const presetsFileKey = "area_presets.json"

// AreaPreset is a named circular region used as a quick filter
type AreaPreset struct {
	ID       string  `json:"id"`
	Label    string  `json:"label"`
	Center   LatLng  `json:"center"`
	RadiusKm float64 `json:"radiusKm"`
}

var (
	presetsMu sync.RWMutex
	presets   []AreaPreset
)

// Presets returns the loaded area presets.
func Presets() []AreaPreset {
	presetsMu.RLock()
	defer presetsMu.RUnlock()
	return presets
}

// LoadPresets parses the embedded preset list, replaced by
// area_presets.json in the data directory when that file exists.
func LoadPresets() error {
	var list []AreaPreset
	if err := json.Unmarshal(presetsJSON, &list); err != nil {
		return fmt.Errorf("parse presets.json: %w", err)
	}

	var override []AreaPreset
	err := data.LoadJSON(presetsFileKey, &override)
	switch {
	case err == nil:
		if err := validatePresets(override); err != nil {
			return fmt.Errorf("%s: %w", presetsFileKey, err)
		}
		app.Log("places", "Loaded %d area presets from %s", len(override), presetsFileKey)
		list = override
	case !os.IsNotExist(err):
		return fmt.Errorf("load %s: %w", presetsFileKey, err)
	}

	presetsMu.Lock()
	presets = list
	presetsMu.Unlock()
	return nil
}

func validatePresets(list []AreaPreset) error {
	if len(list) == 0 {
		return fmt.Errorf("no presets")
	}
	seen := map[string]bool{}
	for _, p := range list {
		if p.ID == "" {
			return fmt.Errorf("preset without id")
		}
		if seen[p.ID] {
			return fmt.Errorf("duplicate preset %q", p.ID)
		}
		if p.RadiusKm <= 0 {
			return fmt.Errorf("preset %q: radius must be positive", p.ID)
		}
		seen[p.ID] = true
	}
	return nil
}

func findPreset(list []AreaPreset, id string) (AreaPreset, bool) {
	for _, p := range list {
		if p.ID == id {
			return p, true
		}
	}
	return AreaPreset{}, false
}

// AreaIndex is a quadtree over a place list for area lookups.
type AreaIndex struct {
	places []*Place
	tree   *quadtree.QuadTree
}

// NewAreaIndex indexes every place that has coordinates.
func NewAreaIndex(places []*Place) *AreaIndex {
	// covers the whole world (lat ±90, lng ±180)
	center := quadtree.NewPoint(0, 0, nil)
	half := quadtree.NewPoint(90, 180, nil)
	tree := quadtree.New(quadtree.NewAABB(center, half), 0, nil)

	for i, p := range places {
		pos, ok := p.Position()
		if !ok {
			continue
		}
		tree.Insert(quadtree.NewPoint(pos.Lat, pos.Lng, i))
	}
	return &AreaIndex{places: places, tree: tree}
}

// Within returns the places within radiusKm of center, in list order.
func (ix *AreaIndex) Within(center LatLng, radiusKm float64) []*Place {
	hits := ix.candidates(center, radiusKm)

	result := make([]*Place, 0, len(hits))
	for i, p := range ix.places {
		if !hits[i] {
			continue
		}
		pos, _ := p.Position()
		if DistanceKm(pos, center) <= radiusKm {
			result = append(result, p)
		}
	}
	return result
}

// Apply filters the indexed list. The result equals Apply(places, f, presets).
func (ix *AreaIndex) Apply(f Filters, presets []AreaPreset) []*Place {
	preset, ok := findPreset(presets, f.AreaPresetID)
	if f.AreaPresetID == "" || !ok {
		return Apply(ix.places, f, presets)
	}

	hits := ix.candidates(preset.Center, preset.RadiusKm)
	m := newMatcher(f, presets)

	result := make([]*Place, 0, len(hits))
	for i, p := range ix.places {
		if hits[i] && m.match(p) {
			result = append(result, p)
		}
	}
	return result
}

// candidates returns the list positions inside a box around the circle.
// The box is twice the diameter; callers re-check the exact distance.
func (ix *AreaIndex) candidates(center LatLng, radiusKm float64) map[int]bool {
	c := quadtree.NewPoint(center.Lat, center.Lng, nil)
	half := c.HalfPoint(radiusKm * 1000 * 2)
	points := ix.tree.Search(quadtree.NewAABB(c, half))

	hits := make(map[int]bool, len(points))
	for _, pt := range points {
		if i, ok := pt.Data().(int); ok {
			hits[i] = true
		}
	}
	return hits
}
