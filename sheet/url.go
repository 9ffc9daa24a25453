package sheet

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

var (
	atLatLng   = regexp.MustCompile(`@(-?\d+\.\d+),\s*(-?\d+\.\d+)`)
	placeName  = regexp.MustCompile(`/place/([^/]+)/@`)
	googleMaps = regexp.MustCompile(`(?i)google.*map`)
)

// LatLngFromURL extracts the "@<lat>,<lng>" pair of a Google Maps link.
func LatLngFromURL(u string) (lat, lng float64, ok bool) {
	m := atLatLng.FindStringSubmatch(u)
	if m == nil {
		return 0, 0, false
	}
	lat, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, 0, false
	}
	lng, err = strconv.ParseFloat(m[2], 64)
	if err != nil {
		return 0, 0, false
	}
	return lat, lng, true
}

// NameFromURL returns the decoded place name of a ".../place/<name>/@..."
// link, or "" when the link has no such segment.
func NameFromURL(u string) string {
	m := placeName.FindStringSubmatch(u)
	if m == nil || m[1] == "" {
		return ""
	}
	name, err := url.PathUnescape(m[1])
	if err != nil {
		return ""
	}
	return strings.ReplaceAll(name, "+", " ")
}
