package parsing

import "fmt"

// BalanceTolerance is the largest difference between the detected and the
// calculated grand total still reported as balanced.
const BalanceTolerance = 1000

// Reconcile builds the summary and status for a set of items and the totals
// read from the receipt. Subtotal is always recomputed from the items.
func Reconcile(items []LineItem, t Totals) Receipt {
	if items == nil {
		items = []LineItem{}
	}

	subtotal := 0
	for _, it := range items {
		subtotal += it.LineTotal
	}

	tax := t.Tax
	grand := t.GrandTotal
	calculated := subtotal - t.Discount + tax + t.Service

	// A tax line that exactly explains the gap was already folded into the
	// grand total.
	if gap := grand - calculated; tax > 0 && abs(gap) == tax {
		tax = 0
		calculated = grand
	}

	var status string
	switch {
	case grand == 0 && calculated > 0:
		status = StatusAutoCalculated
		grand = calculated
	case grand == 0:
		status = StatusTotalNotFound
	case abs(grand-calculated) <= BalanceTolerance:
		status = StatusBalanced
	default:
		status = fmt.Sprintf("Gap %d", grand-calculated)
	}

	return Receipt{
		Items: items,
		Summary: Summary{
			Subtotal:        subtotal,
			TotalDiscount:   t.Discount,
			Tax:             tax,
			Service:         t.Service,
			GrandTotal:      grand,
			CalculatedTotal: calculated,
			Diff:            grand - calculated,
		},
		Status: status,
	}
}
