package places

import "math"

// Review is one row's opinion of a venue
type Review struct {
	Handlename  string   `json:"handlename"`
	UseCase     string   `json:"useCase"`
	PriceRange  string   `json:"priceRange"`
	VisitDate   string   `json:"visitDate"`
	GroupSize   string   `json:"groupSize"`
	PrivateRoom string   `json:"privateRoom"`
	Smoking     string   `json:"smoking"`
	Facilities  string   `json:"facilities"`
	Genre       string   `json:"genre"`
	Rating      string   `json:"rating"`
	Comment     string   `json:"comment"`
	Score       *float64 `json:"score"`
}

// PlaceGroup is a venue with every review that shares its key. The
// first review is the latest.
type PlaceGroup struct {
	Key      string   `json:"key"`
	Name     string   `json:"name"`
	Address  string   `json:"address"`
	Lat      float64  `json:"lat"`
	Lng      float64  `json:"lng"`
	Category string   `json:"category"`
	URL      string   `json:"url"`
	PlusCode string   `json:"plusCode,omitempty"`
	Reviews  []Review `json:"reviews"`
}

func reviewOf(p *Place) Review {
	d := p.Detail
	return Review{
		Handlename:  d.Handlename,
		UseCase:     p.Category,
		PriceRange:  d.PriceRange,
		VisitDate:   d.VisitDate,
		GroupSize:   d.GroupSize,
		PrivateRoom: d.PrivateRoom,
		Smoking:     d.Smoking,
		Facilities:  d.Facilities,
		Genre:       d.Genre,
		Rating:      d.Rating,
		Comment:     d.Comment,
		Score:       d.Score,
	}
}

func newGroup(p *Place) *PlaceGroup {
	pos, _ := p.Position()
	return &PlaceGroup{
		Key:      p.Key,
		Name:     p.Name,
		Address:  p.Address,
		Lat:      pos.Lat,
		Lng:      pos.Lng,
		Category: p.Category,
		URL:      p.URL,
		PlusCode: p.PlusCode,
	}
}

// Group collects every place with the given key, one review per row in
// list order. It returns nil when nothing matches.
func Group(places []*Place, key string) *PlaceGroup {
	var g *PlaceGroup
	for _, p := range places {
		if p.Key != key {
			continue
		}
		if g == nil {
			g = newGroup(p)
		}
		g.Reviews = append(g.Reviews, reviewOf(p))
	}
	return g
}

// Groups builds all groups in first-seen order.
func Groups(places []*Place) []*PlaceGroup {
	var groups []*PlaceGroup
	byKey := map[string]*PlaceGroup{}
	for _, p := range places {
		g, ok := byKey[p.Key]
		if !ok {
			g = newGroup(p)
			byKey[p.Key] = g
			groups = append(groups, g)
		}
		g.Reviews = append(g.Reviews, reviewOf(p))
	}
	return groups
}

// Latest returns the first review.
func (g *PlaceGroup) Latest() Review {
	if len(g.Reviews) == 0 {
		return Review{}
	}
	return g.Reviews[0]
}

// Others returns every review after the latest.
func (g *PlaceGroup) Others() []Review {
	if len(g.Reviews) < 2 {
		return nil
	}
	return g.Reviews[1:]
}

// AverageScore is the mean of the parseable scores rounded to 0.1.
// ok is false when no review has a score.
func (g *PlaceGroup) AverageScore() (float64, bool) {
	var sum float64
	var n int
	for _, r := range g.Reviews {
		if r.Score == nil {
			continue
		}
		sum += *r.Score
		n++
	}
	if n == 0 {
		return 0, false
	}
	return math.Round(sum/float64(n)*10) / 10, true
}

// MapsLink returns the source link or a coordinate search link.
func (g *PlaceGroup) MapsLink() string {
	if webURL(g.URL) {
		return g.URL
	}
	return mapsSearchLink(LatLng{Lat: g.Lat, Lng: g.Lng})
}
