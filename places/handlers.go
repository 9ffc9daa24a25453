package places

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/sfomuseum/go-csvdict/v2"

	"nomimap/app"
	"nomimap/config"
	"nomimap/sheet"
)

var (
	store   *Store
	icons   = NewIconCache()
	mapsKey string
)

// Load wires the store used by the handlers and loads the area presets.
func Load(s *Store, googleMapsKey string) error {
	store = s
	mapsKey = googleMapsKey
	return LoadPresets()
}

// errorPayload maps a fetch error to the status and JSON body returned
// by the data endpoints.
func errorPayload(err error) (int, map[string]interface{}) {
	if me, ok := config.IsMissing(err); ok {
		return http.StatusInternalServerError, map[string]interface{}{"error": "Missing env", "detail": me.Flags}
	}
	if ue, ok := sheet.IsUpstream(err); ok {
		return http.StatusBadGateway, map[string]interface{}{"error": "Sheets API error", "detail": ue.Body}
	}
	return http.StatusInternalServerError, map[string]interface{}{"error": err.Error()}
}

// errorMessage is the inline text shown on the map page for a fetch error
func errorMessage(err error) string {
	if me, ok := config.IsMissing(err); ok {
		var missing []string
		for _, k := range []string{"SHEETS_KEY", "SHEETS_ID", "SHEETS_NAME"} {
			if !me.Flags[k] {
				missing = append(missing, k)
			}
		}
		return "設定が不足しています: " + strings.Join(missing, ", ")
	}
	if ue, ok := sheet.IsUpstream(err); ok {
		return fmt.Sprintf("スプレッドシートの取得に失敗しました (%d): %s", ue.Status, ue.Body)
	}
	return "データの取得に失敗しました: " + err.Error()
}

// APIHandler serves /api/places and its sub-routes
func APIHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		app.MethodNotAllowed(w, r)
		return
	}

	w.Header().Set("Cache-Control", "no-store")

	if r.URL.Path == "/api/presets" {
		app.RespondJSON(w, map[string]interface{}{"presets": Presets()})
		return
	}

	snap, err := store.Snapshot(r.Context())
	if err != nil {
		status, body := errorPayload(err)
		app.RespondJSONStatus(w, status, body)
		return
	}

	switch r.URL.Path {
	case "/api/places/search":
		handleSearch(w, r, snap)
		return
	case "/api/places.geojson":
		handleGeoJSON(w, r, snap)
		return
	case "/api/places.csv":
		handleCSV(w, r, snap)
		return
	}

	f := ParseFilters(r.URL.Query())
	if f.IsZero() {
		app.RespondJSON(w, map[string]interface{}{"places": snap.Places})
		return
	}

	list := snap.Index.Apply(f, Presets())
	app.RespondJSON(w, map[string]interface{}{
		"places":  list,
		"options": Options(snap.Places),
		"total":   len(snap.Places),
	})
}

func handleSearch(w http.ResponseWriter, r *http.Request, snap *Snapshot) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		app.RespondError(w, http.StatusBadRequest, "q is required")
		return
	}

	results, err := Search(r.Context(), snap, q)
	if err != nil {
		app.Log("places", "Search %q failed: %v", q, err)
		app.RespondError(w, http.StatusInternalServerError, "search failed")
		return
	}
	results = Apply(results, ParseFilters(r.URL.Query()), Presets())
	if results == nil {
		results = []*Place{}
	}
	app.RespondJSON(w, map[string]interface{}{"query": q, "places": results})
}

func filtered(r *http.Request, snap *Snapshot) []*Place {
	f := ParseFilters(r.URL.Query())
	if f.IsZero() {
		return snap.Places
	}
	return snap.Index.Apply(f, Presets())
}

func scoreString(p *Place) string {
	if p.Detail.Score == nil {
		return ""
	}
	return strconv.FormatFloat(*p.Detail.Score, 'f', -1, 64)
}

func handleGeoJSON(w http.ResponseWriter, r *http.Request, snap *Snapshot) {
	fc := geojson.NewFeatureCollection()
	var points orb.MultiPoint

	for _, p := range filtered(r, snap) {
		pos, ok := p.Position()
		if !ok {
			continue
		}
		pt := orb.Point{pos.Lng, pos.Lat}
		points = append(points, pt)

		f := geojson.NewFeature(pt)
		f.ID = p.Key
		f.Properties = geojson.Properties{
			"name":       p.Name,
			"category":   p.Category,
			"color":      ColorForCategory(p.Category),
			"address":    p.Address,
			"url":        p.MapsLink(),
			"plusCode":   p.PlusCode,
			"priceRange": p.Detail.PriceRange,
			"genre":      p.Detail.Genre,
			"rating":     p.Detail.Rating,
		}
		if p.Detail.Score != nil {
			f.Properties["score"] = *p.Detail.Score
		}
		fc.Append(f)
	}
	if len(points) > 0 {
		fc.BBox = geojson.NewBBox(points.Bound())
	}

	b, err := fc.MarshalJSON()
	if err != nil {
		app.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", "application/geo+json")
	w.Write(b)
}

func handleCSV(w http.ResponseWriter, r *http.Request, snap *Snapshot) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="places.csv"`)

	wr, err := csvdict.NewWriter(w)
	if err != nil {
		app.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	for _, p := range filtered(r, snap) {
		pos, _ := p.Position()
		err := wr.WriteRow(map[string]string{
			"key":         p.Key,
			"name":        p.Name,
			"lat":         strconv.FormatFloat(pos.Lat, 'f', -1, 64),
			"lng":         strconv.FormatFloat(pos.Lng, 'f', -1, 64),
			"category":    p.Category,
			"address":     p.Address,
			"url":         p.MapsLink(),
			"plus_code":   p.PlusCode,
			"price_range": p.Detail.PriceRange,
			"genre":       p.Detail.Genre,
			"rating":      p.Detail.Rating,
			"score":       scoreString(p),
		})
		if err != nil {
			app.Log("places", "CSV export: %v", err)
			return
		}
	}
	wr.Flush()
}

// MapHandler serves the map page. On fetch failure it shows the error
// inline with no markers.
func MapHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		app.NotFound(w, r, "Page not found")
		return
	}

	q := r.URL.Query()
	f := ParseFilters(q)
	search := strings.TrimSpace(q.Get("q"))

	var all, list []*Place
	var errMsg string

	snap, err := store.Snapshot(r.Context())
	if err != nil {
		errMsg = errorMessage(err)
	} else {
		all = snap.Places
		list = snap.Index.Apply(f, Presets())
		if search != "" {
			results, err := Search(r.Context(), snap, search)
			if err != nil {
				app.Log("places", "Search %q failed: %v", search, err)
				errMsg = "検索に失敗しました"
			}
			list = Apply(results, f, Presets())
		}
	}

	app.Respond(w, r, app.Response{
		Title:       "Map",
		Description: "飲み会のお店マップ",
		HTML:        renderMapPage(list, all, f, search, errMsg),
	})
}

// PlaceHandler serves the detail drawer for /place?key=
func PlaceHandler(w http.ResponseWriter, r *http.Request) {
	key := r.URL.Query().Get("key")
	if key == "" {
		app.BadRequest(w, r, "key is required")
		return
	}

	snap, err := store.Snapshot(r.Context())
	if err != nil {
		if app.WantsJSON(r) {
			status, body := errorPayload(err)
			app.RespondJSONStatus(w, status, body)
			return
		}
		app.Respond(w, r, app.Response{Title: "Place", HTML: app.Error(errorMessage(err))})
		return
	}

	g := Group(snap.Places, key)
	if g == nil {
		app.NotFound(w, r, "Place not found")
		return
	}

	if app.WantsJSON(r) {
		app.RespondJSON(w, g)
		return
	}

	app.Respond(w, r, app.Response{
		Title:       g.Name,
		Description: g.Address,
		HTML:        renderDrawer(g),
	})
}

// Invalidate drops the cached list so the next request refetches.
func Invalidate() {
	if store != nil {
		store.Invalidate()
	}
}
