package places

import (
	"strconv"
	"strings"
)

const maxStars = 5

// ParseRating normalizes a free-form rating to 0-5.
//
//	"★★★☆☆" -> 3 (count of ★, capped at 5)
//	"3.5/5"  -> 3.5, "7/10" -> 3.5
//	"4", "4点" -> 4
//
// ok is false for empty or unparseable input.
func ParseRating(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}

	if n := strings.Count(s, "★"); n > 0 {
		return float64(min(n, maxStars)), true
	}

	if a, b, found := strings.Cut(s, "/"); found {
		num, err1 := strconv.ParseFloat(numeric(a), 64)
		den, err2 := strconv.ParseFloat(numeric(b), 64)
		if err1 != nil || err2 != nil || den <= 0 {
			return 0, false
		}
		return num / den * maxStars, true
	}

	v, err := strconv.ParseFloat(numeric(s), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// numeric strips everything but digits and dots
func numeric(s string) string {
	return strings.Map(func(r rune) rune {
		if (r >= '0' && r <= '9') || r == '.' {
			return r
		}
		return -1
	}, s)
}
