package parsing

// Status values reported on a Receipt.
const (
	StatusBalanced       = "Balanced"
	StatusNoText         = "No Text Detected"
	StatusTotalNotFound  = "Total Not Found"
	StatusAutoCalculated = "Total Not Found (Auto-Calculated)"
)

// LineItem is one purchased item. LineTotal is the amount read from the
// receipt; UnitPrice is derived from it and may lose a remainder.
type LineItem struct {
	Name      string `json:"name"`
	Qty       int    `json:"qty"`
	UnitPrice int    `json:"unit_price"`
	LineTotal int    `json:"line_total"`
}

// Summary is the reconciled financial summary of a receipt.
type Summary struct {
	Subtotal        int `json:"subtotal"`
	TotalDiscount   int `json:"total_discount"`
	Tax             int `json:"tax"`
	Service         int `json:"service"`
	GrandTotal      int `json:"grand_total"`
	CalculatedTotal int `json:"calculated_total"`
	Diff            int `json:"diff"`
}

// Receipt is the structured result of parsing one receipt.
type Receipt struct {
	Items   []LineItem `json:"items"`
	Summary Summary    `json:"summary"`
	Status  string     `json:"status"`
}

// EmptyReceipt is the result for an image in which no text was found.
func EmptyReceipt() Receipt {
	return Receipt{Items: []LineItem{}, Status: StatusNoText}
}
