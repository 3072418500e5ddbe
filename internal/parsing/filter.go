package parsing

import (
	"fmt"
	"strings"
)

// NoTransactionDetected is returned by LineFilter.Apply when the input had
// text but no line looked like part of a transaction.
const NoTransactionDetected = "NO TRANSACTION DETECTED"

// Filter policy names accepted by NewPolicy.
const (
	PolicyLookback = "lookback"
	PolicyWindow   = "window"
)

// Policy decides which lines of a receipt are transaction-relevant.
type Policy interface {
	// Filter returns the relevant lines, trimmed, in their original order.
	Filter(lines []string) []string
}

// NewPolicy builds a Policy by name. context is only used by the window policy.
func NewPolicy(name string, context int) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", PolicyLookback:
		return LookbackPolicy{}, nil
	case PolicyWindow:
		return WindowPolicy{Context: context}, nil
	default:
		return nil, fmt.Errorf("unknown filter policy %q (want %q or %q)", name, PolicyLookback, PolicyWindow)
	}
}

// isChangeLine matches the "change due" / cash tender lines printed after the
// total. "Service Change" is not one of them: OCR often reads "Service
// Charge" that way.
func isChangeLine(line string) bool {
	upper := strings.ToUpper(line)
	if strings.Contains(upper, "SERVICE") && strings.Contains(upper, "CHANGE") {
		return false
	}
	return changeRe.MatchString(line)
}

// LookbackPolicy keeps lines with an amount or keyword and pulls in the plain
// line right above an amount, which is usually the item name.
type LookbackPolicy struct{}

// Filter implements Policy.
func (LookbackPolicy) Filter(lines []string) []string {
	var kept []string
	for i, raw := range lines {
		line := strings.TrimSpace(raw)
		if line == "" || blacklistRe.MatchString(line) || isChangeLine(line) {
			continue
		}

		hasMoney := moneyRe.MatchString(line)
		hasKeyword := keywordRe.MatchString(line)
		if !hasMoney && !hasKeyword {
			continue
		}

		if hasMoney && !hasKeyword && i > 0 {
			prev := strings.TrimSpace(lines[i-1])
			if prev != "" && isPlainLine(prev) && (len(kept) == 0 || kept[len(kept)-1] != prev) {
				kept = append(kept, prev)
			}
		}
		kept = append(kept, line)
	}
	return kept
}

func isPlainLine(line string) bool {
	return !blacklistRe.MatchString(line) && !moneyRe.MatchString(line) && !keywordRe.MatchString(line)
}

// WindowPolicy keeps every relevant line together with Context lines of
// surrounding context on each side.
type WindowPolicy struct {
	Context int
}

// Filter implements Policy.
func (p WindowPolicy) Filter(lines []string) []string {
	compact := make([]string, 0, len(lines))
	for _, raw := range lines {
		if line := strings.TrimSpace(raw); line != "" {
			compact = append(compact, line)
		}
	}

	k := max(p.Context, 0)
	marked := make([]bool, len(compact))
	for i, line := range compact {
		if !isRelevant(line) {
			continue
		}
		for j := max(0, i-k); j <= min(len(compact)-1, i+k); j++ {
			marked[j] = true
		}
	}

	var kept []string
	for i, line := range compact {
		if marked[i] {
			kept = append(kept, line)
		}
	}
	return kept
}

// isRelevant is the window policy's test. Change and cash tender lines are
// rejected here as in the lookback policy.
func isRelevant(line string) bool {
	if strictBlacklistRe.MatchString(line) || isChangeLine(line) {
		return false
	}
	return strictKeywordRe.MatchString(line) || strongMoneyRe.MatchString(line)
}

// LineFilter runs an optional normalization pass followed by a Policy.
type LineFilter struct {
	policy     Policy
	normalizer *Normalizer
}

// NewLineFilter creates a LineFilter. A nil normalizer skips normalization.
func NewLineFilter(policy Policy, normalizer *Normalizer) *LineFilter {
	if policy == nil {
		policy = LookbackPolicy{}
	}
	return &LineFilter{policy: policy, normalizer: normalizer}
}

// Filter returns the relevant lines. The result is empty when nothing qualifies.
func (f *LineFilter) Filter(lines []string) []string {
	if f.normalizer != nil {
		lines = f.normalizer.Lines(lines)
	}
	return f.policy.Filter(lines)
}

// Apply filters newline-separated text. Blank input gives an empty string;
// input with no relevant line gives NoTransactionDetected.
func (f *LineFilter) Apply(text string) string {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return ""
	}
	if trimmed == NoTransactionDetected {
		return NoTransactionDetected
	}

	kept := f.Filter(strings.Split(text, "\n"))
	if len(kept) == 0 {
		return NoTransactionDetected
	}
	return strings.Join(kept, "\n")
}
