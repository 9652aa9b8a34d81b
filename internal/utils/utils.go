package utils

import (
	"fmt"
	"math"
	"strings"
	"unicode"
)

func ShortenString(s string, l int) string {
	if len(s) > l && l != 0 {
		return fmt.Sprintf("%s...", s[:l])
	}
	return s
}

// Truncate cuts s after l runes. Unlike ShortenString it doesn't
// append an ellipsis and never splits a multi-byte character.
func Truncate(s string, l int) string {
	if l <= 0 {
		return s
	}
	i := 0
	for j := range s {
		if i == l {
			return s[:j]
		}
		i++
	}
	return s
}

// NormalizeSpace trims s and collapses every run of whitespace into a
// single space, the same way XPath's normalize-space() does.
func NormalizeSpace(s string) string {
	return strings.Join(strings.FieldsFunc(s, unicode.IsSpace), " ")
}

// RuneLen returns the number of characters in s.
func RuneLen(s string) int {
	return len([]rune(s))
}

func HSVToRGB(h, s, v float64) (int32, int32, int32) {
	// from https://go.dev/play/p/9q5yBNDh3W
	var r, g, b float64
	h = h * 6
	i := math.Floor(h)
	v1 := v * (1 - s)
	v2 := v * (1 - s*(h-i))
	v3 := v * (1 - s*(1-(h-i)))

	if i == 0 {
		r = v
		g = v3
		b = v1
	} else if i == 1 {
		r = v2
		g = v
		b = v1
	} else if i == 2 {
		r = v1
		g = v
		b = v3
	} else if i == 3 {
		r = v1
		g = v2
		b = v
	} else if i == 4 {
		r = v3
		g = v1
		b = v
	} else {
		r = v
		g = v1
		b = v2
	}

	r = r * 255 //RGB results from 0 to 255
	g = g * 255
	b = b * 255
	return int32(r), int32(g), int32(b)
}
