package parsing

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Extract", func() {
	var (
		lines   []string
		receipt Receipt
	)

	JustBeforeEach(func() {
		receipt = Extract(lines)
	})

	When("parsing a warung receipt with a tax gap", func() {
		BeforeEach(func() {
			lines = []string{
				"Nasi Goreng",
				"25.000",
				"Es Teh",
				"2 x 5.000",
				"Subtotal 35.000",
				"PPN 3.500",
				"Total 38.500",
			}
		})

		It("should pair names with the amounts below them", func() {
			Expect(receipt.Items).To(Equal([]LineItem{
				{Name: "Nasi Goreng", Qty: 1, UnitPrice: 25000, LineTotal: 25000},
				{Name: "Es Teh", Qty: 2, UnitPrice: 2500, LineTotal: 5000},
			}))
		})

		It("should reconcile the summary", func() {
			Expect(receipt.Summary).To(Equal(Summary{
				Subtotal:        30000,
				TotalDiscount:   0,
				Tax:             3500,
				Service:         0,
				GrandTotal:      38500,
				CalculatedTotal: 33500,
				Diff:            5000,
			}))
		})

		It("should report the gap", func() {
			Expect(receipt.Status).To(Equal("Gap 5000"))
		})
	})

	When("a discount line has no pending name", func() {
		BeforeEach(func() {
			lines = []string{"DISKON 5.000"}
		})

		It("should add to the discount without an item", func() {
			Expect(receipt.Items).To(BeEmpty())
			Expect(receipt.Summary.TotalDiscount).To(Equal(5000))
		})
	})

	When("the pending name is a discount", func() {
		BeforeEach(func() {
			lines = []string{"Nasi Goreng 25.000", "Potongan Member", "-5.000", "Total 20.000"}
		})

		It("should add the amount to the discount", func() {
			Expect(receipt.Items).To(HaveLen(1))
			Expect(receipt.Summary.TotalDiscount).To(Equal(5000))
		})

		It("should balance", func() {
			Expect(receipt.Summary.CalculatedTotal).To(Equal(20000))
			Expect(receipt.Status).To(Equal(StatusBalanced))
		})
	})

	When("a separator sits between a name and an amount", func() {
		BeforeEach(func() {
			lines = []string{"Ayam Bakar", "------", "20.000"}
		})

		It("should discard the name", func() {
			Expect(receipt.Items).To(BeEmpty())
		})
	})

	When("a metadata line sits between a name and an amount", func() {
		BeforeEach(func() {
			lines = []string{"Ayam Bakar", "Table 7", "20.000"}
		})

		It("should discard the name", func() {
			Expect(receipt.Items).To(BeEmpty())
		})
	})

	When("the amount line under a name carries a forbidden word", func() {
		BeforeEach(func() {
			lines = []string{"Ayam Bakar", "Subtotal 20.000"}
		})

		It("should drop the pending name", func() {
			Expect(receipt.Items).To(BeEmpty())
			Expect(receipt.Status).To(Equal(StatusTotalNotFound))
		})
	})

	When("a forbidden amount line under a name carries a multiplier", func() {
		BeforeEach(func() {
			lines = []string{"Nasi 10.000", "Es Teh", "Qty 2 x 5.000"}
		})

		It("should drop the pending name and refine the previous item", func() {
			Expect(receipt.Items).To(Equal([]LineItem{
				{Name: "Nasi", Qty: 2, UnitPrice: 5000, LineTotal: 10000},
			}))
		})
	})

	When("a forbidden amount line under a name has no multiplier", func() {
		BeforeEach(func() {
			lines = []string{"Nasi 10.000", "Es Teh", "Subtotal 10.000"}
		})

		It("should leave the previous item alone", func() {
			Expect(receipt.Items).To(Equal([]LineItem{
				{Name: "Nasi", Qty: 1, UnitPrice: 10000, LineTotal: 10000},
			}))
		})
	})

	When("several total lines appear", func() {
		BeforeEach(func() {
			lines = []string{"Kopi 18.000", "Total 18.000", "Grand Total 19.000"}
		})

		It("should keep the last one", func() {
			Expect(receipt.Summary.GrandTotal).To(Equal(19000))
			Expect(receipt.Status).To(Equal(StatusBalanced))
		})
	})

	When("a total line has no amount", func() {
		BeforeEach(func() {
			lines = []string{"Kopi 18.000", "Total 19.000", "Total Rp"}
		})

		It("should keep the earlier total", func() {
			Expect(receipt.Summary.GrandTotal).To(Equal(19000))
		})
	})

	When("a total line is a subtotal variant", func() {
		BeforeEach(func() {
			lines = []string{"Kopi 18.000", "Total Item 1"}
		})

		It("should not read it as the grand total", func() {
			Expect(receipt.Summary.GrandTotal).To(Equal(18000))
			Expect(receipt.Status).To(Equal(StatusAutoCalculated))
		})
	})

	When("tax and service lines repeat", func() {
		BeforeEach(func() {
			lines = []string{
				"Steak 100.000",
				"Service Charge 5.000",
				"Tax 10.000",
				"Service Charge 6.000",
				"PB1 11.000",
				"Total 117.000",
			}
		})

		It("should keep the last of each", func() {
			Expect(receipt.Summary.Service).To(Equal(6000))
			Expect(receipt.Summary.Tax).To(Equal(11000))
			Expect(receipt.Status).To(Equal(StatusBalanced))
		})
	})

	When("a unit price line follows an item", func() {
		BeforeEach(func() {
			lines = []string{"Es Jeruk 24.000", "3 @ 8.000"}
		})

		It("should refine the previous item", func() {
			Expect(receipt.Items).To(Equal([]LineItem{
				{Name: "Es Jeruk", Qty: 3, UnitPrice: 8000, LineTotal: 24000},
			}))
		})
	})

	When("a multiplier without amount follows an item", func() {
		BeforeEach(func() {
			lines = []string{"Roti 12.000", "2x Jumbo"}
		})

		It("should update the quantity only", func() {
			Expect(receipt.Items).To(Equal([]LineItem{
				{Name: "Roti", Qty: 2, UnitPrice: 12000, LineTotal: 12000},
			}))
		})
	})

	When("an amount is implausibly large", func() {
		BeforeEach(func() {
			lines = []string{"Telp 0812345678901"}
		})

		It("should drop the line", func() {
			Expect(receipt.Items).To(BeEmpty())
		})
	})

	When("a bare amount has no name", func() {
		BeforeEach(func() {
			lines = []string{"15.000"}
		})

		It("should not create an item", func() {
			Expect(receipt.Items).To(BeEmpty())
			Expect(receipt.Status).To(Equal(StatusTotalNotFound))
		})
	})

	When("a multiplier reads zero", func() {
		BeforeEach(func() {
			lines = []string{"Teh Botol", "0 x 6.000"}
		})

		It("should clamp the quantity to one", func() {
			Expect(receipt.Items).To(Equal([]LineItem{
				{Name: "Teh Botol", Qty: 1, UnitPrice: 6000, LineTotal: 6000},
			}))
		})
	})

	When("the quantity does not divide the total", func() {
		BeforeEach(func() {
			lines = []string{"Kerupuk", "3 x 10.000"}
		})

		It("should floor the unit price", func() {
			Expect(receipt.Items[0].UnitPrice).To(Equal(3333))
			Expect(receipt.Items[0].LineTotal).To(Equal(10000))
		})
	})

	When("there are no lines", func() {
		BeforeEach(func() {
			lines = nil
		})

		It("should report that the total was not found", func() {
			Expect(receipt.Items).NotTo(BeNil())
			Expect(receipt.Items).To(BeEmpty())
			Expect(receipt.Summary).To(Equal(Summary{}))
			Expect(receipt.Status).To(Equal(StatusTotalNotFound))
		})
	})
})

var _ = Describe("ExtractText", func() {
	It("should treat the no-transaction sentinel as empty input", func() {
		receipt := ExtractText(NoTransactionDetected)
		Expect(receipt.Items).To(BeEmpty())
		Expect(receipt.Status).To(Equal(StatusTotalNotFound))
	})

	It("should split text into lines", func() {
		receipt := ExtractText("Kopi\n18.000\nTotal 18.000")
		Expect(receipt.Items).To(HaveLen(1))
		Expect(receipt.Status).To(Equal(StatusBalanced))
	})
})

var _ = Describe("Reconcile", func() {
	It("should drop a tax that exactly explains the gap", func() {
		items := []LineItem{{Name: "Kopi", Qty: 1, UnitPrice: 20000, LineTotal: 20000}}
		receipt := Reconcile(items, Totals{Tax: 2000, GrandTotal: 20000})
		Expect(receipt.Summary.Tax).To(Equal(0))
		Expect(receipt.Summary.CalculatedTotal).To(Equal(20000))
		Expect(receipt.Summary.Diff).To(Equal(0))
		Expect(receipt.Status).To(Equal(StatusBalanced))
	})

	It("should backfill a missing grand total", func() {
		items := []LineItem{{Name: "Kopi", Qty: 1, UnitPrice: 20000, LineTotal: 20000}}
		receipt := Reconcile(items, Totals{Service: 1000})
		Expect(receipt.Summary.GrandTotal).To(Equal(21000))
		Expect(receipt.Summary.Diff).To(Equal(0))
		Expect(receipt.Status).To(Equal(StatusAutoCalculated))
	})

	It("should treat a difference within tolerance as balanced", func() {
		items := []LineItem{{Name: "Kopi", Qty: 1, UnitPrice: 20000, LineTotal: 20000}}
		receipt := Reconcile(items, Totals{GrandTotal: 21000})
		Expect(receipt.Summary.Diff).To(Equal(1000))
		Expect(receipt.Status).To(Equal(StatusBalanced))
	})

	It("should report a negative gap", func() {
		items := []LineItem{{Name: "Kopi", Qty: 1, UnitPrice: 20000, LineTotal: 20000}}
		receipt := Reconcile(items, Totals{GrandTotal: 15000})
		Expect(receipt.Status).To(Equal("Gap -5000"))
	})

	It("should always recompute the subtotal", func() {
		items := []LineItem{
			{Name: "A", Qty: 1, UnitPrice: 1000, LineTotal: 1000},
			{Name: "B", Qty: 2, UnitPrice: 500, LineTotal: 1000},
		}
		Expect(Reconcile(items, Totals{}).Summary.Subtotal).To(Equal(2000))
	})
})
