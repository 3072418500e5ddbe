package parsing

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

// MaxAmount is the largest amount accepted for a standalone item line.
// Anything above it is treated as a misread (a phone or card number).
const MaxAmount = 100_000_000

type stateKind int

const (
	stateIdle stateKind = iota
	stateAwaitingAmount
)

// state is the extractor's only carried state: either idle, or holding an
// item name read on an earlier line that still waits for its amount.
type state struct {
	kind stateKind
	name string
}

func idle() state { return state{kind: stateIdle} }

func awaitingAmount(name string) state { return state{kind: stateAwaitingAmount, name: name} }

// Totals are the summary amounts read directly from the receipt text.
type Totals struct {
	Discount   int
	Tax        int
	Service    int
	GrandTotal int
}

type extraction struct {
	state  state
	items  []LineItem
	totals Totals
}

// rule handles a line and reports whether it consumed it.
type rule struct {
	name  string
	apply func(x *extraction, line string) bool
}

// rules is evaluated in order; the first rule that matches owns the line.
var rules = []rule{
	{name: "separator", apply: (*extraction).separator},
	{name: "metadata", apply: (*extraction).metadata},
	{name: "grand_total", apply: (*extraction).grandTotal},
	{name: "tax", apply: (*extraction).tax},
	{name: "service", apply: (*extraction).service},
	{name: "item", apply: (*extraction).item},
}

// Extract classifies filtered receipt lines into items and totals and
// reconciles them into a Receipt.
func Extract(lines []string) Receipt {
	x := &extraction{state: idle(), items: []LineItem{}}
	for _, raw := range lines {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		for _, r := range rules {
			if r.apply(x, line) {
				break
			}
		}
	}
	return Reconcile(x.items, x.totals)
}

// ExtractText is Extract over newline-separated text. NoTransactionDetected
// is treated as empty input.
func ExtractText(text string) Receipt {
	if strings.TrimSpace(text) == NoTransactionDetected {
		return Extract(nil)
	}
	return Extract(strings.Split(text, "\n"))
}

func (x *extraction) separator(line string) bool {
	if !separatorRe.MatchString(line) {
		return false
	}
	x.state = idle()
	return true
}

func (x *extraction) metadata(line string) bool {
	if !metadataRe.MatchString(line) {
		return false
	}
	x.state = idle()
	return true
}

func (x *extraction) grandTotal(line string) bool {
	if !grandTotalRe.MatchString(line) || notGrandTotalRe.MatchString(line) {
		return false
	}
	if _, amount, ok := matchAmount(line); ok && amount > 0 {
		x.totals.GrandTotal = amount
	}
	return true
}

func (x *extraction) tax(line string) bool {
	if !taxRe.MatchString(line) {
		return false
	}
	if _, amount, ok := matchAmount(line); ok {
		x.totals.Tax = amount
	}
	return true
}

func (x *extraction) service(line string) bool {
	if !serviceRe.MatchString(line) {
		return false
	}
	if _, amount, ok := matchAmount(line); ok {
		x.totals.Service = amount
	}
	return true
}

// item is the fallback rule and always consumes the line.
func (x *extraction) item(line string) bool {
	qty, hasQty := matchQty(line)
	name, amount, hasAmount := matchAmount(line)

	if x.state.kind == stateAwaitingAmount && hasAmount {
		pending := x.state.name
		x.state = idle()
		if !forbiddenRe.MatchString(name) {
			if discountRe.MatchString(pending) {
				x.totals.Discount += abs(amount)
			} else {
				x.items = append(x.items, LineItem{
					Name:      pending,
					Qty:       qty,
					UnitPrice: amount / qty,
					LineTotal: amount,
				})
			}
			return true
		}
		// A forbidden amount line drops the pending name and is then read
		// as if nothing were pending.
	}

	switch {
	case x.state.kind == stateIdle && len(x.items) > 0 && (hasQty || (strings.Contains(line, "@") && hasAmount)):
		last := &x.items[len(x.items)-1]
		if hasAmount {
			last.UnitPrice = amount
		}
		if qty > 1 {
			last.Qty = qty
		}

	case hasAmount:
		if forbiddenRe.MatchString(name) || amount > MaxAmount {
			return true
		}
		if utf8.RuneCountInString(name) > 1 {
			if discountRe.MatchString(name) {
				x.totals.Discount += abs(amount)
				return true
			}
			x.items = append(x.items, LineItem{Name: name, Qty: 1, UnitPrice: amount, LineTotal: amount})
		}
		x.state = idle()

	default:
		if !forbiddenRe.MatchString(line) && !dashesRe.MatchString(line) {
			x.state = awaitingAmount(line)
		}
	}
	return true
}

// matchAmount splits a line into the text before its trailing amount and the
// amount itself.
func matchAmount(line string) (name string, amount int, ok bool) {
	m := itemRe.FindStringSubmatch(line)
	if m == nil {
		return "", 0, false
	}
	return strings.TrimSpace(m[1]), ParsePrice(m[2]), true
}

// matchQty finds an "x N", "@ N" or "N x" multiplier. The quantity defaults
// to 1 and is never below 1.
func matchQty(line string) (int, bool) {
	m := qtyRe.FindStringSubmatch(line)
	if m == nil {
		return 1, false
	}
	digits := m[1]
	if digits == "" {
		digits = m[2]
	}
	n, err := strconv.Atoi(digits)
	if err != nil || n < 1 {
		return 1, true
	}
	return n, true
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
