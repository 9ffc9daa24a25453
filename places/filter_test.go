package places

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nomimap/sheet"
)

var testPresets = []AreaPreset{
	{ID: "akasaka", Label: "赤坂", Center: LatLng{Lat: 35.672, Lng: 139.740}, RadiusKm: 2.0},
	{ID: "minatomirai", Label: "みなとみらい", Center: LatLng{Lat: 35.457, Lng: 139.632}, RadiusKm: 2.0},
}

func samplePlaces() []*Place {
	return []*Place{
		testPlace("赤坂の店", 35.673, 139.741, "普段飲み", "〜3000円"),
		testPlace("六本木の店", 35.662, 139.731, " クライアント飲み ", "5000円〜"),
		testPlace("横浜の店", 35.458, 139.633, "普段飲み", "5000円〜"),
		testPlace("新宿の店", 35.690, 139.700, "パーティ", "〜3000円"),
		{Name: "座標なし", Category: "普段飲み"},
	}
}

func names(list []*Place) []string {
	var out []string
	for _, p := range list {
		out = append(out, p.Name)
	}
	return out
}

func isSubsequence(sub, all []*Place) bool {
	i := 0
	for _, p := range all {
		if i < len(sub) && sub[i] == p {
			i++
		}
	}
	return i == len(sub)
}

func TestApplyScenario(t *testing.T) {
	rows := sheet.Parse([][]string{
		{"name", "lat", "lng", "useCase"},
		{"One", "35.1", "139.1", "普段飲み"},
		{"Two", "35.2", "139.2", "その他"},
		{"Three", "35.3", "139.3", "普段飲み"},
	})
	places := Normalize(rows)

	got := Apply(places, Filters{UseCase: []string{"普段飲み"}}, testPresets)
	require.Len(t, got, 2)
	assert.Equal(t, []string{"One", "Three"}, names(got))
}

func TestApplyUseCaseAndPrice(t *testing.T) {
	places := samplePlaces()

	tests := []struct {
		name string
		f    Filters
		want []string
	}{
		{"no filters", Filters{}, []string{"赤坂の店", "六本木の店", "横浜の店", "新宿の店"}},
		{"use case normalized", Filters{UseCase: []string{"クライアント飲み"}}, []string{"六本木の店"}},
		{"use case exact not contains", Filters{UseCase: []string{"飲み"}}, nil},
		{"price", Filters{PriceRange: []string{" 5000円〜"}}, []string{"六本木の店", "横浜の店"}},
		{"anded", Filters{UseCase: []string{"普段飲み"}, PriceRange: []string{"5000円〜"}}, []string{"横浜の店"}},
		{"any of several", Filters{UseCase: []string{"パーティ", "普段飲み"}}, []string{"赤坂の店", "横浜の店", "新宿の店"}},
		{"area", Filters{AreaPresetID: "akasaka"}, []string{"赤坂の店", "六本木の店"}},
		{"unknown area passes", Filters{AreaPresetID: "nowhere"}, []string{"赤坂の店", "六本木の店", "横浜の店", "新宿の店"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Apply(places, tt.f, testPresets)
			assert.Equal(t, tt.want, names(got))
			assert.True(t, isSubsequence(got, places))
		})
	}
}

func TestApplyAreaBoundary(t *testing.T) {
	center := testPresets[0].Center
	var places []*Place
	for i := 0; i < 40; i++ {
		// walk north-east across the 2 km boundary
		step := float64(i) * 0.001
		places = append(places, testPlace("p", center.Lat+step, center.Lng+step, "", ""))
	}

	got := Apply(places, Filters{AreaPresetID: "akasaka"}, testPresets)
	in := map[*Place]bool{}
	for _, p := range got {
		in[p] = true
	}
	require.NotEmpty(t, got)
	require.Less(t, len(got), len(places))

	for _, p := range places {
		pos, _ := p.Position()
		d := DistanceKm(pos, center)
		if in[p] {
			assert.LessOrEqual(t, d, 2.0)
		} else {
			assert.Greater(t, d, 2.0)
		}
	}
}

func TestAreaIndexMatchesApply(t *testing.T) {
	places := samplePlaces()
	for i := 0; i < 200; i++ {
		lat := 35.40 + float64(i%20)*0.015
		lng := 139.60 + float64(i/20)*0.02
		places = append(places, testPlace("grid", lat, lng, "普段飲み", ""))
	}
	ix := NewAreaIndex(places)

	for _, f := range []Filters{
		{AreaPresetID: "akasaka"},
		{AreaPresetID: "minatomirai"},
		{AreaPresetID: "akasaka", UseCase: []string{"普段飲み"}},
		{AreaPresetID: "nowhere"},
		{},
	} {
		assert.Equal(t, Apply(places, f, testPresets), ix.Apply(f, testPresets), "filters %+v", f)
	}

	within := ix.Within(testPresets[1].Center, 2.0)
	assert.Equal(t, Apply(places, Filters{AreaPresetID: "minatomirai"}, testPresets), within)
}

func TestParseFilters(t *testing.T) {
	q, err := url.ParseQuery("useCase=普段飲み&useCase=&useCase=パーティ&priceRange=%E3%80%9C3000%E5%86%86&area=+akasaka+")
	require.NoError(t, err)

	f := ParseFilters(q)
	assert.Equal(t, []string{"普段飲み", "パーティ"}, f.UseCase)
	assert.Equal(t, []string{"〜3000円"}, f.PriceRange)
	assert.Equal(t, "akasaka", f.AreaPresetID)
	assert.False(t, f.IsZero())

	assert.Equal(t, f, ParseFilters(f.Query()))
	assert.True(t, ParseFilters(url.Values{}).IsZero())
}

func TestOptions(t *testing.T) {
	opts := Options(samplePlaces())
	assert.Equal(t, []string{"普段飲み", " クライアント飲み ", "パーティ"}, opts.UseCases)
	assert.Equal(t, []string{"〜3000円", "5000円〜"}, opts.PriceRanges)
}
