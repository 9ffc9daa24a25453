package places

import (
	"fmt"
	"math"
	"net/url"
	"strings"

	olc "github.com/google/open-location-code/go"

	"nomimap/sheet"
)

// Place is one spreadsheet row with valid coordinates
type Place struct {
	Key      string            `json:"key"`
	Name     string            `json:"name"`
	Lat      *float64          `json:"lat"`
	Lng      *float64          `json:"lng"`
	Category string            `json:"category"`
	URL      string            `json:"url"`
	Address  string            `json:"address"`
	PlaceID  string            `json:"placeId,omitempty"`
	PlusCode string            `json:"plusCode,omitempty"`
	Detail   PlaceDetail       `json:"detail"`
	Raw      map[string]string `json:"raw,omitempty"`
}

// PlaceDetail holds the display-only review fields. Absent values are "".
type PlaceDetail struct {
	PriceRange  string   `json:"priceRange"`
	Genre       string   `json:"genre"`
	Rating      string   `json:"rating"`
	Comment     string   `json:"comment"`
	GroupSize   string   `json:"groupSize"`
	PrivateRoom string   `json:"privateRoom"`
	Smoking     string   `json:"smoking"`
	Facilities  string   `json:"facilities"`
	VisitDate   string   `json:"visitDate"`
	Handlename  string   `json:"handlename"`
	Receipt     string   `json:"receipt"`
	Score       *float64 `json:"score"`
}

// LatLng is a point in degrees
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Position returns the coordinates and whether both are present.
func (p *Place) Position() (LatLng, bool) {
	if p.Lat == nil || p.Lng == nil {
		return LatLng{}, false
	}
	return LatLng{Lat: *p.Lat, Lng: *p.Lng}, true
}

// MapsLink returns the source map link, or a search link for the coordinates.
func (p *Place) MapsLink() string {
	if webURL(p.URL) {
		return p.URL
	}
	pos, ok := p.Position()
	if !ok {
		return ""
	}
	return mapsSearchLink(pos)
}

// webURL reports whether s is an absolute http(s) link
func webURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil || u.Host == "" {
		return false
	}
	return u.Scheme == "http" || u.Scheme == "https"
}

func mapsSearchLink(pos LatLng) string {
	return fmt.Sprintf("https://www.google.com/maps/search/?api=1&query=%v,%v", pos.Lat, pos.Lng)
}

// Normalize converts parsed rows into places, dropping rows without
// both coordinates. Order is preserved.
func Normalize(rows []*sheet.Row) []*Place {
	places := make([]*Place, 0, len(rows))
	for _, r := range rows {
		if r == nil || !finite(r.Lat) || !finite(r.Lng) {
			continue
		}

		p := &Place{
			Name:     r.Name,
			Lat:      r.Lat,
			Lng:      r.Lng,
			Category: r.Category,
			URL:      r.URL,
			Address:  r.Address,
			PlaceID:  r.PlaceID,
			Raw:      r.Raw,
			Detail: PlaceDetail{
				PriceRange:  r.PriceRange,
				Genre:       r.Genre,
				Rating:      r.Rating,
				Comment:     r.Comment,
				GroupSize:   r.GroupSize,
				PrivateRoom: r.PrivateRoom,
				Smoking:     r.Smoking,
				Facilities:  r.Facilities,
				VisitDate:   r.VisitDate,
				Handlename:  r.Handlename,
				Receipt:     r.Receipt,
			},
		}
		if score, ok := ParseRating(r.Rating); ok {
			p.Detail.Score = &score
		}
		if !webURL(p.URL) {
			p.URL = ""
		}
		p.PlusCode = plusCode(*r.Lat, *r.Lng)
		p.Key = GroupKey(p)
		places = append(places, p)
	}
	return places
}

// GroupKey identifies the physical venue a row belongs to: the external
// place id when present, else rounded coordinates plus the lowercased name.
func GroupKey(p *Place) string {
	if id := strings.TrimSpace(p.PlaceID); id != "" {
		return "id:" + id
	}
	var lat, lng float64
	if p.Lat != nil {
		lat = *p.Lat
	}
	if p.Lng != nil {
		lng = *p.Lng
	}
	return fmt.Sprintf("geo:%.5f,%.5f|%s", lat, lng, strings.ToLower(strings.TrimSpace(p.Name)))
}

func plusCode(lat, lng float64) string {
	if lat < -90 || lat > 90 {
		return ""
	}
	return olc.Encode(lat, lng, 10)
}

func finite(v *float64) bool {
	return v != nil && !math.IsNaN(*v) && !math.IsInf(*v, 0)
}

// DistanceKm returns the great-circle distance between a and b.
func DistanceKm(a, b LatLng) float64 {
	return haversine(a.Lat, a.Lng, b.Lat, b.Lng)
}

// haversine returns the great-circle distance in kilometres between two lat/lng points.
func haversine(lat1, lng1, lat2, lng2 float64) float64 {
	const R = 6371 // Earth radius in km
	φ1 := lat1 * math.Pi / 180
	φ2 := lat2 * math.Pi / 180
	Δφ := (lat2 - lat1) * math.Pi / 180
	Δλ := (lng2 - lng1) * math.Pi / 180
	a := math.Sin(Δφ/2)*math.Sin(Δφ/2) + math.Cos(φ1)*math.Cos(φ2)*math.Sin(Δλ/2)*math.Sin(Δλ/2)
	return R * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}
