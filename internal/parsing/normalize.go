package parsing

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/agext/levenshtein"
)

// defaultVocabulary lists the summary keywords worth repairing. Short words
// and noise words (cash, tunai, bayar) stay out: correcting them toward a
// blacklist term would drop real item lines such as "Ayam Bakar".
var defaultVocabulary = []string{
	"TOTAL",
	"SUBTOTAL",
	"PAJAK",
	"SERVICE",
	"CHARGE",
	"CHANGE",
	"DISKON",
	"DISCOUNT",
	"VOUCHER",
	"POTONGAN",
	"TAGIHAN",
	"AMOUNT",
}

var (
	wordRe         = regexp.MustCompile(`\S+`)
	splitNumberRe  = regexp.MustCompile(`\d(?:\s+[.,]\s*|[.,]\s+)\d{3}\b`)
	currencyPrefRe = regexp.MustCompile(`(?i)\b(Rp)\s*(\.?)\s*(\d)`)
)

// Normalizer repairs common OCR damage before filtering: misspelled summary
// keywords and whitespace inside amounts. Applying it twice is the same as
// applying it once.
type Normalizer struct {
	vocabulary []string
}

// NewNormalizer creates a Normalizer. An empty vocabulary uses the built-in one.
func NewNormalizer(vocabulary []string) *Normalizer {
	if len(vocabulary) == 0 {
		vocabulary = defaultVocabulary
	}
	v := make([]string, len(vocabulary))
	for i, w := range vocabulary {
		v[i] = strings.ToUpper(w)
	}
	return &Normalizer{vocabulary: v}
}

// Lines normalizes every line.
func (n *Normalizer) Lines(lines []string) []string {
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = n.Line(l)
	}
	return out
}

// Line normalizes a single line.
func (n *Normalizer) Line(line string) string {
	line = wordRe.ReplaceAllStringFunc(line, n.correct)

	// Joining "1 . 250 . 000" needs more than one pass since matches cannot overlap.
	for {
		next := splitNumberRe.ReplaceAllStringFunc(line, stripSpace)
		if next == line {
			break
		}
		line = next
	}
	return currencyPrefRe.ReplaceAllString(line, "${1}${2} ${3}")
}

func (n *Normalizer) correct(word string) string {
	size := utf8.RuneCountInString(word)
	if size < 3 || !isAlpha(word) {
		return word
	}

	limit := maxEdits(size)
	if limit == 0 {
		return word
	}

	upper := strings.ToUpper(word)
	best, bestDist := "", limit+1
	for _, v := range n.vocabulary {
		if v == upper {
			return word
		}
		if d := levenshtein.Distance(upper, v, nil); d < bestDist {
			best, bestDist = v, d
		}
	}
	if best == "" {
		return word
	}
	return matchCase(best, word)
}

func stripSpace(s string) string {
	return strings.Join(strings.Fields(s), "")
}

// maxEdits scales the allowed edit distance with word length.
func maxEdits(size int) int {
	switch {
	case size >= 8:
		return 2
	case size >= 5:
		return 1
	default:
		return 0
	}
}

// matchCase renders the upper-case vocabulary word in the letter case of like.
func matchCase(word, like string) string {
	switch {
	case strings.ToLower(like) == like:
		return strings.ToLower(word)
	case strings.ToUpper(like) == like:
		return word
	}
	first, size := utf8.DecodeRuneInString(like)
	if unicode.IsUpper(first) && strings.ToLower(like[size:]) == like[size:] {
		return word[:1] + strings.ToLower(word[1:])
	}
	return word
}
