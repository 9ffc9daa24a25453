package sheet

import (
	"math"
	"strconv"
	"strings"
)

// Row is one parsed spreadsheet row. Coordinates are nil when neither
// the lat/lng columns nor the map link yield a finite number.
type Row struct {
	Name     string
	Lat      *float64
	Lng      *float64
	Category string
	URL      string
	Address  string
	PlaceID  string

	Handlename  string
	PriceRange  string
	VisitDate   string
	GroupSize   string
	PrivateRoom string
	Smoking     string
	Facilities  string
	Genre       string
	Rating      string
	Comment     string
	Receipt     string

	// Raw maps every header to its trimmed cell value.
	Raw map[string]string
}

// column synonyms, in priority order
var (
	nameColumns     = []string{"店名", "名称", "name"}
	latColumns      = []string{"lat", "latitude"}
	lngColumns      = []string{"lng", "longitude"}
	urlColumns      = []string{"mapsurl", "googlemapurl"}
	categoryColumns = []string{"usecase", "利用シーン"}
	addressColumns  = []string{"address", "住所", "adress"}
	placeIDColumns  = []string{"placeid", "place_id"}
)

type header struct {
	names []string
	index map[string]int
}

func newHeader(cells []string) *header {
	h := &header{
		names: make([]string, len(cells)),
		index: make(map[string]int, len(cells)),
	}
	for i, c := range cells {
		name := strings.TrimSpace(c)
		h.names[i] = name
		key := strings.ToLower(name)
		if _, ok := h.index[key]; !ok {
			h.index[key] = i
		}
	}
	return h
}

// find returns the index of the first synonym present, or -1
func (h *header) find(synonyms ...string) int {
	for _, s := range synonyms {
		if i, ok := h.index[strings.ToLower(s)]; ok {
			return i
		}
	}
	return -1
}

// linkColumns returns the candidate map-link columns in priority order
func (h *header) linkColumns() []int {
	var cols []int
	for _, name := range urlColumns {
		if i := h.find(name); i >= 0 {
			cols = append(cols, i)
		}
	}
	for i, name := range h.names {
		if googleMaps.MatchString(name) {
			cols = append(cols, i)
			break
		}
	}
	return cols
}

// Parse turns spreadsheet values into rows. values[0] is the header row.
// Malformed rows never cause an error; they degrade to nil coordinates
// and empty fields.
func Parse(values [][]string) []*Row {
	if len(values) < 2 {
		return nil
	}

	h := newHeader(values[0])

	idxName := h.find(nameColumns...)
	idxLat := h.find(latColumns...)
	idxLng := h.find(lngColumns...)
	idxCategory := h.find(categoryColumns...)
	idxAddress := h.find(addressColumns...)
	idxPlaceID := h.find(placeIDColumns...)
	idxURLs := h.linkColumns()

	detail := map[string]int{}
	for _, name := range []string{"handlename", "pricerange", "visitdate", "groupsize",
		"privateroom", "smoking", "facilities", "genre", "rating", "comment", "receipt"} {
		detail[name] = h.find(name)
	}

	rows := make([]*Row, 0, len(values)-1)
	for _, cells := range values[1:] {
		cell := func(i int) string {
			if i < 0 || i >= len(cells) {
				return ""
			}
			return strings.TrimSpace(cells[i])
		}

		row := &Row{Raw: make(map[string]string, len(h.names))}
		for i, name := range h.names {
			row.Raw[name] = cell(i)
		}

		for _, i := range idxURLs {
			if v := cell(i); v != "" {
				row.URL = v
				break
			}
		}

		latStr, lngStr := cell(idxLat), cell(idxLng)
		if (latStr == "" || lngStr == "") && row.URL != "" {
			if lat, lng, ok := LatLngFromURL(row.URL); ok {
				if latStr == "" {
					latStr = strconv.FormatFloat(lat, 'f', -1, 64)
				}
				if lngStr == "" {
					lngStr = strconv.FormatFloat(lng, 'f', -1, 64)
				}
			}
		}
		row.Lat = parseCoord(latStr)
		row.Lng = parseCoord(lngStr)

		row.Name = cell(idxName)
		if row.Name == "" {
			row.Name = NameFromURL(row.URL)
		}

		row.Category = cell(idxCategory)
		row.Address = cell(idxAddress)
		row.PlaceID = cell(idxPlaceID)

		row.Handlename = cell(detail["handlename"])
		row.PriceRange = cell(detail["pricerange"])
		row.VisitDate = cell(detail["visitdate"])
		row.GroupSize = cell(detail["groupsize"])
		row.PrivateRoom = cell(detail["privateroom"])
		row.Smoking = cell(detail["smoking"])
		row.Facilities = cell(detail["facilities"])
		row.Genre = cell(detail["genre"])
		row.Rating = cell(detail["rating"])
		row.Comment = cell(detail["comment"])
		row.Receipt = cell(detail["receipt"])

		rows = append(rows, row)
	}
	return rows
}

func parseCoord(s string) *float64 {
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}
