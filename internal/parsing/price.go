package parsing

import (
	"math"
	"strconv"
	"strings"
	"unicode"
)

// ParsePrice turns a numeric-looking substring into an integer amount.
// Every non-digit rune is stripped, so "12.500", "12,500" and "Rp 12500"
// all parse to 12500. Input without digits yields zero.
func ParsePrice(s string) int {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)
	if digits == "" {
		return 0
	}

	n, err := strconv.Atoi(digits)
	if err != nil {
		// Only overflow is possible here; saturate so the sanity ceiling drops it.
		return math.MaxInt
	}
	return n
}

// isAlpha reports whether s is made of letters only.
func isAlpha(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}
