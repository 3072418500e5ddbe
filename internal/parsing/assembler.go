package parsing

import (
	"cmp"
	"slices"
	"strings"
)

// ColumnBreak separates tokens on the same line whose horizontal gap is wider
// than the configured column gap. It keeps the name/price split of a receipt
// visible to the later stages.
const ColumnBreak = " \t "

// AssemblerConfig controls how tokens are grouped into lines.
type AssemblerConfig struct {
	// OverlapThreshold is the minimum vertical overlap, as a fraction of the
	// shorter token height, for a token to join a pivot's line.
	OverlapThreshold float64
	// ColumnGap is the horizontal gap in pixels above which ColumnBreak is
	// inserted instead of a single space.
	ColumnGap int
	// SortByExtent re-sorts finished lines by the vertical center of their
	// final bounding box. By default lines keep the order their pivots were
	// taken in, so a line that grew downward can precede a shorter line that
	// sits above its center.
	SortByExtent bool
}

// Assembler clusters unordered tokens into ordered text lines.
type Assembler struct {
	cfg AssemblerConfig
}

// NewAssembler creates an Assembler, filling unset fields with defaults.
func NewAssembler(cfg AssemblerConfig) *Assembler {
	def := DefaultConfig().Assembler
	if cfg.OverlapThreshold <= 0 {
		cfg.OverlapThreshold = def.OverlapThreshold
	}
	if cfg.ColumnGap <= 0 {
		cfg.ColumnGap = def.ColumnGap
	}
	return &Assembler{cfg: cfg}
}

// line is a cluster of tokens under construction.
type line struct {
	tokens []Token
	box    Box
}

// Lines groups tokens into lines and renders each one as text.
func (a *Assembler) Lines(tokens []Token) []string {
	clusters := a.cluster(tokens)
	out := make([]string, 0, len(clusters))
	for _, c := range clusters {
		out = append(out, a.render(c))
	}
	return out
}

// Text returns the assembled lines joined with newlines.
func (a *Assembler) Text(tokens []Token) string {
	return strings.Join(a.Lines(tokens), "\n")
}

func (a *Assembler) cluster(tokens []Token) []line {
	remaining := slices.Clone(tokens)
	slices.SortStableFunc(remaining, func(x, y Token) int {
		return cmp.Compare(x.Box.Y0, y.Box.Y0)
	})

	var lines []line
	for len(remaining) > 0 {
		pivot := remaining[0]
		remaining = remaining[1:]

		cur := line{tokens: []Token{pivot}, box: pivot.Box}
		rest := make([]Token, 0, len(remaining))
		for _, other := range remaining {
			if a.overlaps(pivot.Box, other.Box) {
				cur.tokens = append(cur.tokens, other)
				cur.box = cur.box.Union(other.Box)
			} else {
				rest = append(rest, other)
			}
		}
		remaining = rest

		slices.SortStableFunc(cur.tokens, func(x, y Token) int {
			return cmp.Compare(x.Box.X0, y.Box.X0)
		})
		lines = append(lines, cur)
	}

	if a.cfg.SortByExtent {
		slices.SortStableFunc(lines, func(x, y line) int {
			return cmp.Compare(x.box.center(), y.box.center())
		})
	}
	return lines
}

// center is the vertical midpoint, computed without overflowing on extreme
// coordinates.
func (b Box) center() int {
	return b.Y0 + (b.Y1-b.Y0)/2
}

// overlaps compares the vertical band of other against the pivot's band only;
// a growing line does not widen the band used for later candidates.
func (a *Assembler) overlaps(pivot, other Box) bool {
	minHeight := min(pivot.Height(), other.Height())
	if minHeight <= 0 {
		return false
	}
	top, bottom := max(pivot.Y0, other.Y0), min(pivot.Y1, other.Y1)
	if bottom <= top {
		return false
	}
	return float64(bottom-top)/float64(minHeight) > a.cfg.OverlapThreshold
}

func (a *Assembler) render(l line) string {
	var sb strings.Builder
	for i, t := range l.tokens {
		if i > 0 {
			// float64 keeps the gap exact enough without wrapping on extreme coordinates
			gap := float64(t.Box.X0) - float64(l.tokens[i-1].Box.X1)
			if gap > float64(a.cfg.ColumnGap) {
				sb.WriteString(ColumnBreak)
			} else {
				sb.WriteByte(' ')
			}
		}
		sb.WriteString(t.Text)
	}
	return sb.String()
}
