package scanning

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/zombor/receipt-parser/internal/parsing"
)

// receiptExtractPrompt is the shared prompt used by all model providers
const receiptExtractPrompt = `You are analyzing a shop or restaurant receipt. Carefully read all text in the image and extract the purchased items and the summary amounts.

1. **Items**: Every purchased product or dish. For each item give the name as printed, the quantity, the unit price and the line total. If only the line total is printed, use a quantity of 1.

2. **Discount**: The sum of all discounts, vouchers, promos and "potongan" lines, as a positive number.

3. **Tax**: The tax amount (Tax, PPN, PB1, VAT, Pajak). Use 0 if none is printed.

4. **Service**: The service charge amount. Use 0 if none is printed.

5. **Grand Total**: The final amount to pay, usually labeled "TOTAL", "Grand Total" or "Tagihan".

Return ONLY valid JSON in this exact format:
{
  "items": [
    {"name": "Item Name", "qty": 1, "unit_price": 0, "line_total": 0}
  ],
  "discount": 0,
  "tax": 0,
  "service": 0,
  "grand_total": 0
}

Important:
- Amounts are whole currency units (e.g. 25000 for "Rp 25.000"); dots and commas are thousands separators
- All amounts must be numbers, not strings
- Do not list payment, change, cash or subtotal lines as items
- Do not include any text before or after the JSON
- Do not use markdown code blocks`

// modelReceipt is the JSON shape requested from the models. Numbers are
// floats because models do not reliably emit integers.
type modelReceipt struct {
	Items []struct {
		Name      string  `json:"name"`
		Qty       float64 `json:"qty"`
		UnitPrice float64 `json:"unit_price"`
		LineTotal float64 `json:"line_total"`
	} `json:"items"`
	Discount   float64 `json:"discount"`
	Tax        float64 `json:"tax"`
	Service    float64 `json:"service"`
	GrandTotal float64 `json:"grand_total"`
}

// parseReceiptJSON parses a model response and reconciles it like a
// rule-based parse
func parseReceiptJSON(text string) (*parsing.Receipt, error) {
	// Remove markdown code blocks if present
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSpace(text)

	startIdx := strings.Index(text, "{")
	if startIdx == -1 {
		return nil, fmt.Errorf("no JSON object found in response")
	}
	endIdx := strings.LastIndex(text, "}")
	if endIdx < startIdx {
		return nil, fmt.Errorf("invalid JSON object in response")
	}
	text = text[startIdx : endIdx+1]

	var data modelReceipt
	if err := json.Unmarshal([]byte(text), &data); err != nil {
		return nil, fmt.Errorf("unmarshaling json: %w", err)
	}

	items := make([]parsing.LineItem, 0, len(data.Items))
	for _, it := range data.Items {
		name := strings.TrimSpace(it.Name)
		if name == "" {
			continue
		}

		qty := max(amount(it.Qty), 1)
		unit := amount(it.UnitPrice)
		total := amount(it.LineTotal)
		switch {
		case total == 0 && unit == 0:
			continue
		case total == 0:
			total = unit * qty
		case unit == 0:
			unit = total / qty
		}

		items = append(items, parsing.LineItem{Name: name, Qty: qty, UnitPrice: unit, LineTotal: total})
	}

	receipt := parsing.Reconcile(items, parsing.Totals{
		Discount:   amount(data.Discount),
		Tax:        amount(data.Tax),
		Service:    amount(data.Service),
		GrandTotal: amount(data.GrandTotal),
	})
	return &receipt, nil
}

// amount rounds a model number to whole units. Negative values are taken
// as their magnitude and anything past MaxAmount is treated as a misread.
func amount(f float64) int {
	f = math.Round(math.Abs(f))
	if math.IsNaN(f) || f > parsing.MaxAmount {
		return 0
	}
	return int(f)
}
