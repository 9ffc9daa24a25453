package places

import (
	"net/url"
	"strings"
)

// Filters is the user's selection. Empty fields select everything.
type Filters struct {
	UseCase      []string `json:"useCase"`
	PriceRange   []string `json:"priceRange"`
	AreaPresetID string   `json:"areaPresetId"`
}

// IsZero reports whether no filter is selected.
func (f Filters) IsZero() bool {
	return len(f.UseCase) == 0 && len(f.PriceRange) == 0 && f.AreaPresetID == ""
}

// ParseFilters reads useCase, priceRange (both repeatable) and area.
func ParseFilters(q url.Values) Filters {
	return Filters{
		UseCase:      nonEmpty(q["useCase"]),
		PriceRange:   nonEmpty(q["priceRange"]),
		AreaPresetID: strings.TrimSpace(q.Get("area")),
	}
}

// Query encodes f back into query parameters.
func (f Filters) Query() url.Values {
	q := url.Values{}
	for _, v := range f.UseCase {
		q.Add("useCase", v)
	}
	for _, v := range f.PriceRange {
		q.Add("priceRange", v)
	}
	if f.AreaPresetID != "" {
		q.Set("area", f.AreaPresetID)
	}
	return q
}

func nonEmpty(values []string) []string {
	var out []string
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			out = append(out, v)
		}
	}
	return out
}

func norm(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

type matcher struct {
	useCase    map[string]bool
	priceRange map[string]bool
	area       *AreaPreset
}

func newMatcher(f Filters, presets []AreaPreset) *matcher {
	m := &matcher{}
	if len(f.UseCase) > 0 {
		m.useCase = map[string]bool{}
		for _, v := range f.UseCase {
			m.useCase[norm(v)] = true
		}
	}
	if len(f.PriceRange) > 0 {
		m.priceRange = map[string]bool{}
		for _, v := range f.PriceRange {
			m.priceRange[norm(v)] = true
		}
	}
	// an unknown preset id selects everything
	if p, ok := findPreset(presets, f.AreaPresetID); f.AreaPresetID != "" && ok {
		m.area = &p
	}
	return m
}

func (m *matcher) match(p *Place) bool {
	pos, ok := p.Position()
	if !ok {
		return false
	}
	if m.useCase != nil && !m.useCase[norm(p.Category)] {
		return false
	}
	if m.priceRange != nil && !m.priceRange[norm(p.Detail.PriceRange)] {
		return false
	}
	if m.area != nil && DistanceKm(pos, m.area.Center) > m.area.RadiusKm {
		return false
	}
	return true
}

// Apply returns the places passing every selected filter, in list order.
// Places without coordinates never pass.
func Apply(places []*Place, f Filters, presets []AreaPreset) []*Place {
	m := newMatcher(f, presets)
	result := make([]*Place, 0, len(places))
	for _, p := range places {
		if m.match(p) {
			result = append(result, p)
		}
	}
	return result
}

// FilterOptions are the choices offered in the filter bar.
type FilterOptions struct {
	UseCases    []string     `json:"useCases"`
	PriceRanges []string     `json:"priceRanges"`
	Areas       []AreaPreset `json:"areas,omitempty"`
}

// Options collects the distinct non-empty use-cases and price ranges in
// first-seen order.
func Options(places []*Place) FilterOptions {
	var opts FilterOptions
	seenUC := map[string]bool{}
	seenPR := map[string]bool{}
	for _, p := range places {
		if p.Category != "" && !seenUC[p.Category] {
			seenUC[p.Category] = true
			opts.UseCases = append(opts.UseCases, p.Category)
		}
		if pr := p.Detail.PriceRange; pr != "" && !seenPR[pr] {
			seenPR[pr] = true
			opts.PriceRanges = append(opts.PriceRanges, pr)
		}
	}
	return opts
}
