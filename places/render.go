package places

import (
	"encoding/json"
	"fmt"
	"math"
	"net/url"
	"strings"

	"github.com/paulmach/orb"

	"nomimap/app"
)

// default map view, Tokyo station
var defaultCenter = LatLng{Lat: 35.6809591, Lng: 139.7673068}

const (
	defaultZoom = 12
	areaZoom    = 14
)

// escapeHTML escapes HTML special characters
func escapeHTML(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	s = strings.ReplaceAll(s, `"`, "&#34;")
	s = strings.ReplaceAll(s, "'", "&#39;")
	return s
}

func placeLink(key string) string {
	return "/place?key=" + url.QueryEscape(key)
}

// renderStars draws five stars for a 0-5 score
func renderStars(score float64) string {
	n := int(math.Round(score))
	n = max(0, min(n, maxStars))
	return `<span class="stars" aria-label="` + fmt.Sprintf("%.1f", score) + `">` +
		strings.Repeat("★", n) + `<span class="empty">` + strings.Repeat("☆", maxStars-n) + `</span></span>`
}

// renderFilterBar renders the filter form; it submits to the map page.
func renderFilterBar(f Filters, opts FilterOptions, presets []AreaPreset, q string) string {
	var b strings.Builder
	b.WriteString(`<form class="filter-bar" method="GET" action="/">`)

	checkboxes := func(title, name string, values, selected []string) {
		if len(values) == 0 {
			return
		}
		on := map[string]bool{}
		for _, s := range selected {
			on[norm(s)] = true
		}
		b.WriteString(`<div class="filter-group"><div class="label">` + escapeHTML(title) + `</div><div class="options">`)
		for _, v := range values {
			checked := ""
			if on[norm(v)] {
				checked = " checked"
			}
			fmt.Fprintf(&b, `<label><input type="checkbox" name="%s" value="%s"%s><span>%s</span></label>`,
				name, escapeHTML(v), checked, escapeHTML(v))
		}
		b.WriteString(`</div></div>`)
	}

	checkboxes("利用シーン", "useCase", opts.UseCases, f.UseCase)
	checkboxes("価格帯", "priceRange", opts.PriceRanges, f.PriceRange)

	b.WriteString(`<div class="filter-group"><div class="label">エリア</div><select name="area"><option value="">指定なし</option>`)
	for _, p := range presets {
		selected := ""
		if p.ID == f.AreaPresetID {
			selected = " selected"
		}
		fmt.Fprintf(&b, `<option value="%s"%s>%s (%.1fkm)</option>`, escapeHTML(p.ID), selected, escapeHTML(p.Label), p.RadiusKm)
	}
	b.WriteString(`</select></div>`)

	fmt.Fprintf(&b, `<div class="filter-group"><input type="text" name="q" value="%s" placeholder="店名・ジャンル・コメントで検索"></div>`, escapeHTML(q))
	b.WriteString(`<div><button type="submit">絞り込む</button> <a href="/">リセット</a></div>`)
	b.WriteString(`</form>`)
	return b.String()
}

type marker struct {
	Key   string  `json:"key"`
	Name  string  `json:"name"`
	Lat   float64 `json:"lat"`
	Lng   float64 `json:"lng"`
	Color string  `json:"color"`
}

// renderMapScript generates the Google Maps JavaScript. Markers open the
// drawer page on click. The view starts on the selected area, if any, and
// fits all markers when fit is true.
func renderMapScript(list []*Place, cache *IconCache, key string, area *AreaPreset, fit bool) string {
	markers := make([]marker, 0, len(list))
	iconURLs := map[string]string{}
	var points orb.MultiPoint

	for _, p := range list {
		pos, ok := p.Position()
		if !ok {
			continue
		}
		icon := cache.Icon(p.Category)
		iconURLs[icon.Color] = icon.URL
		markers = append(markers, marker{Key: p.Key, Name: p.Name, Lat: pos.Lat, Lng: pos.Lng, Color: icon.Color})
		points = append(points, orb.Point{pos.Lng, pos.Lat})
	}

	markersJSON, _ := json.Marshal(markers)
	iconsJSON, _ := json.Marshal(iconURLs)

	center := defaultCenter
	zoom := defaultZoom
	if area != nil {
		center = area.Center
		zoom = areaZoom
	}
	fitJS := ""
	if fit && len(points) > 0 {
		bound := points.Bound()
		c := bound.Center()
		center = LatLng{Lat: c.Lat(), Lng: c.Lon()}
		if len(points) > 1 {
			fitJS = fmt.Sprintf(`map.fitBounds({south:%f,west:%f,north:%f,east:%f}, 40);`,
				bound.Min.Lat(), bound.Min.Lon(), bound.Max.Lat(), bound.Max.Lon())
		}
	}

	return fmt.Sprintf(`<div id="map"></div>
<script>
function initMap() {
  var map = new google.maps.Map(document.getElementById('map'), {
    center: {lat: %f, lng: %f},
    zoom: %d,
    gestureHandling: 'greedy',
    disableDefaultUI: true
  });
  var icons = %s;
  var markers = %s;
  markers.forEach(function(p) {
    var m = new google.maps.Marker({position: {lat: p.lat, lng: p.lng}, map: map, title: p.name, icon: {url: icons[p.color]}});
    m.addListener('click', function() {
      window.location.href = '/place?key=' + encodeURIComponent(p.key);
    });
  });
  %s
}
</script>
<script async src="https://maps.googleapis.com/maps/api/js?key=%s&callback=initMap"></script>`,
		center.Lat, center.Lng, zoom, iconsJSON, markersJSON, fitJS, url.QueryEscape(key))
}

// renderPlaceList renders the filtered places as cards below the map
func renderPlaceList(list []*Place, cache *IconCache) string {
	if len(list) == 0 {
		return app.Empty("該当するお店がありません")
	}
	var b strings.Builder
	b.WriteString(`<div class="place-list">`)
	for _, p := range list {
		icon := cache.Icon(p.Category)
		body := fmt.Sprintf(`<h4><span class="dot" style="color:%s">●</span> <a href="%s">%s</a></h4>`,
			icon.Color, escapeHTML(placeLink(p.Key)), escapeHTML(p.Name))
		body += app.Chips([]string{p.Category, p.Detail.PriceRange, p.Detail.Genre})
		if p.Address != "" {
			body += `<p class="text-muted">` + escapeHTML(p.Address) + `</p>`
		}
		b.WriteString(app.CardDivClass("place-card", body))
	}
	b.WriteString(`</div>`)
	return b.String()
}

// renderMapPage renders the full map page body
func renderMapPage(list []*Place, all []*Place, f Filters, q string, errMsg string) string {
	presets := Presets()

	var b strings.Builder
	b.WriteString(renderFilterBar(f, Options(all), presets, q))

	if errMsg != "" {
		b.WriteString(app.Error(errMsg))
	}
	fmt.Fprintf(&b, `<p class="text-muted count">%d / %d 件</p>`, len(list), len(all))

	if mapsKey == "" {
		b.WriteString(app.Error("GOOGLE_MAPS_API_KEY が設定されていません"))
	} else {
		var area *AreaPreset
		if p, ok := findPreset(presets, f.AreaPresetID); ok {
			area = &p
		}
		fit := !f.IsZero() || q != ""
		b.WriteString(renderMapScript(list, icons, mapsKey, area, fit))
	}

	b.WriteString(renderPlaceList(list, icons))
	return b.String()
}

func reviewerLine(r Review) string {
	if r.Handlename == "" && r.VisitDate == "" {
		return ""
	}
	name := r.Handlename
	if name == "" {
		name = "匿名"
	}
	if r.VisitDate != "" {
		name += "（" + r.VisitDate + "）"
	}
	return `<span class="reviewer text-muted">` + escapeHTML(name) + `</span>`
}

func renderReview(r Review, class string) string {
	var head strings.Builder
	if r.Rating != "" {
		score := 0.0
		if r.Score != nil {
			score = *r.Score
		}
		head.WriteString(renderStars(score) + ` <span class="rating text-muted">` + escapeHTML(r.Rating) + `</span> `)
	}
	head.WriteString(reviewerLine(r))

	body := `<div class="meta">` + head.String() + `</div>`
	if r.Comment != "" {
		body += `<p class="comment">` + escapeHTML(r.Comment) + `</p>`
	}
	return `<div class="review ` + class + `">` + body + `</div>`
}

// renderDrawer renders a place group: header, chips, the latest review,
// its details and then the remaining reviews.
func renderDrawer(g *PlaceGroup) string {
	latest := g.Latest()

	var b strings.Builder
	b.WriteString(`<div class="drawer">`)
	b.WriteString(`<p><a href="/">← 地図に戻る</a></p>`)
	b.WriteString(`<h2>` + escapeHTML(g.Name) + `</h2>`)
	if g.Address != "" {
		b.WriteString(`<p class="address text-muted">` + escapeHTML(g.Address) + `</p>`)
	}

	meta := []string{app.ExternalLink(g.MapsLink(), "Google マップを開く")}
	if avg, ok := g.AverageScore(); ok {
		meta = append([]string{fmt.Sprintf(`<span class="average">%s %.1f</span>`, renderStars(avg), avg)}, meta...)
	}
	if len(g.Reviews) > 1 {
		meta = append(meta, fmt.Sprintf(`<span class="text-muted">%d件のレビュー</span>`, len(g.Reviews)))
	}
	b.WriteString(`<p class="links">` + strings.Join(meta, " · ") + `</p>`)
	if qr := qrDataURL(g.MapsLink()); qr != "" {
		b.WriteString(`<img class="qr" src="` + qr + `" alt="QR" width="` + fmt.Sprint(qrSize) + `" height="` + fmt.Sprint(qrSize) + `">`)
	}

	chips := []string{g.Category}
	for _, c := range []struct{ label, value string }{
		{"価格帯", latest.PriceRange},
		{"人数", latest.GroupSize},
		{"個室", latest.PrivateRoom},
		{"喫煙", latest.Smoking},
		{"設備", latest.Facilities},
	} {
		if c.value != "" {
			chips = append(chips, c.label+": "+c.value)
		}
	}
	chips = append(chips, latest.Genre)
	b.WriteString(app.Chips(chips))

	if len(g.Reviews) > 0 {
		b.WriteString(renderReview(latest, "latest"))
	}

	rows := app.DetailRow("利用シーン", g.Category) +
		app.DetailRow("価格帯", latest.PriceRange) +
		app.DetailRow("人数", latest.GroupSize) +
		app.DetailRow("個室", latest.PrivateRoom) +
		app.DetailRow("喫煙", latest.Smoking) +
		app.DetailRow("設備", latest.Facilities) +
		app.DetailRow("ジャンル", latest.Genre)
	if rows != "" {
		b.WriteString(`<details class="details"><summary>詳細を表示</summary>` + rows + `</details>`)
	}

	if others := g.Others(); len(others) > 0 {
		b.WriteString(`<div class="others">`)
		for _, r := range others {
			b.WriteString(renderReview(r, "other"))
		}
		b.WriteString(`</div>`)
	}

	b.WriteString(`</div>`)
	return b.String()
}
