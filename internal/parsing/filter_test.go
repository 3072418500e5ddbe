package parsing

import (
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var warungLines = []string{
	"WARUNG SEDERHANA",
	"Jl. Merdeka 10",
	"Tanggal 12/05/2024",
	"Nasi Goreng",
	"25.000",
	"Es Teh",
	"2 x 5.000",
	"Subtotal 35.000",
	"PPN 3.500",
	"Total 38.500",
	"Tunai 50.000",
	"Kembali 11.500",
	"Terima kasih",
}

var _ = Describe("LookbackPolicy", func() {
	var (
		lines []string
		kept  []string
	)

	JustBeforeEach(func() {
		kept = LookbackPolicy{}.Filter(lines)
	})

	When("filtering a typical receipt", func() {
		BeforeEach(func() {
			lines = warungLines
		})

		It("should keep amounts, keywords and the item names above bare amounts", func() {
			Expect(kept).To(Equal([]string{
				"Nasi Goreng",
				"25.000",
				"Es Teh",
				"2 x 5.000",
				"Subtotal 35.000",
				"PPN 3.500",
				"Total 38.500",
			}))
		})
	})

	When("a change line mentions service", func() {
		BeforeEach(func() {
			lines = []string{"Service Change 2.000", "Change 8.000", "Cash 50.000"}
		})

		It("should keep only the service line", func() {
			Expect(kept).To(Equal([]string{"Service Change 2.000"}))
		})
	})

	When("the line above an amount is noise", func() {
		BeforeEach(func() {
			lines = []string{"Kasir: Budi", "15.000"}
		})

		It("should not pull it in", func() {
			Expect(kept).To(Equal([]string{"15.000"}))
		})
	})

	When("the line above an amount is blank", func() {
		BeforeEach(func() {
			lines = []string{"Kopi Susu", "   ", "18.000"}
		})

		It("should not pull in the blank line", func() {
			Expect(kept).To(Equal([]string{"18.000"}))
		})
	})

	When("the amount line also has a keyword", func() {
		BeforeEach(func() {
			lines = []string{"Kopi Susu", "Diskon 5.000"}
		})

		It("should not pull in the line above", func() {
			Expect(kept).To(Equal([]string{"Diskon 5.000"}))
		})
	})

	When("a line carries a long code", func() {
		BeforeEach(func() {
			lines = []string{"REF 8812ABCD99XY01 10.000"}
		})

		It("should drop it", func() {
			Expect(kept).To(BeEmpty())
		})
	})
})

var _ = Describe("WindowPolicy", func() {
	var (
		policy WindowPolicy
		lines  []string
		kept   []string
	)

	BeforeEach(func() {
		policy = WindowPolicy{Context: 1}
		lines = []string{
			"Warung Sederhana",
			"Nasi Goreng",
			"25.000",
			"Es Teh",
			"Terima kasih",
			"Sampai jumpa",
		}
	})

	JustBeforeEach(func() {
		kept = policy.Filter(lines)
	})

	It("should keep relevant lines with their neighbors", func() {
		Expect(kept).To(Equal([]string{"Nasi Goreng", "25.000", "Es Teh"}))
	})

	It("should not change its own output", func() {
		Expect(policy.Filter(kept)).To(Equal(kept))
	})

	When("the context is zero", func() {
		BeforeEach(func() {
			policy.Context = 0
		})

		It("should keep only the relevant lines", func() {
			Expect(kept).To(Equal([]string{"25.000"}))
		})
	})

	When("change and cash tender lines follow the total", func() {
		BeforeEach(func() {
			policy.Context = 0
			lines = []string{"Service Change 2.000", "Kembalian 8.000", "Cash 50.000"}
		})

		It("should drop them like the lookback policy does", func() {
			Expect(kept).To(Equal([]string{"Service Change 2.000"}))
		})
	})

	When("windows overlap", func() {
		BeforeEach(func() {
			lines = []string{"Kopi", "18.000", "Roti", "12.000", "Air"}
		})

		It("should emit each line once", func() {
			Expect(kept).To(Equal([]string{"Kopi", "18.000", "Roti", "12.000", "Air"}))
		})
	})

	When("blank lines separate an amount from its name", func() {
		BeforeEach(func() {
			lines = []string{"Nasi Goreng", "", "  ", "25.000"}
		})

		It("should treat the name as adjacent", func() {
			Expect(kept).To(Equal([]string{"Nasi Goreng", "25.000"}))
		})
	})

	DescribeTable("line relevance",
		func(line string, relevant bool) {
			Expect(isRelevant(line)).To(Equal(relevant))
		},
		Entry("grouped amount", "25.000", true),
		Entry("bare three digit number", "Kopi 500", true),
		Entry("currency prefix", "Rp 5", true),
		Entry("at price", "@ 5", true),
		Entry("keyword", "Subtotal", true),
		Entry("short number", "Meja 12", false),
		Entry("plain text", "Nasi Goreng", false),
		Entry("clock time", "Jam 12:30 45.000", false),
		Entry("footer", "Terima kasih 100", false),
		Entry("change due", "Kembali 11.500", false),
	)
})

var _ = Describe("NewPolicy", func() {
	It("should default to the lookback policy", func() {
		p, err := NewPolicy("", 0)
		Expect(err).NotTo(HaveOccurred())
		Expect(p).To(Equal(LookbackPolicy{}))
	})

	It("should build the window policy with its context", func() {
		p, err := NewPolicy("Window", 2)
		Expect(err).NotTo(HaveOccurred())
		Expect(p).To(Equal(WindowPolicy{Context: 2}))
	})

	It("returns an error for unknown names", func() {
		_, err := NewPolicy("fuzzy", 1)
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("LineFilter", func() {
	var filter *LineFilter

	BeforeEach(func() {
		filter = NewLineFilter(LookbackPolicy{}, nil)
	})

	When("the input is empty", func() {
		It("should return an empty string", func() {
			Expect(filter.Apply("")).To(Equal(""))
			Expect(filter.Apply(" \n\t\n")).To(Equal(""))
		})
	})

	When("nothing is relevant", func() {
		It("should return the sentinel", func() {
			Expect(filter.Apply("Terima kasih\nSampai jumpa")).To(Equal(NoTransactionDetected))
		})

		It("should keep returning the sentinel when re-applied", func() {
			Expect(filter.Apply(NoTransactionDetected)).To(Equal(NoTransactionDetected))
		})
	})

	When("filtering text", func() {
		It("should join the kept lines", func() {
			Expect(filter.Apply(strings.Join(warungLines, "\n"))).To(Equal(
				"Nasi Goreng\n25.000\nEs Teh\n2 x 5.000\nSubtotal 35.000\nPPN 3.500\nTotal 38.500",
			))
		})
	})

	When("the window policy is re-applied to its own output", func() {
		BeforeEach(func() {
			filter = NewLineFilter(WindowPolicy{Context: 1}, NewNormalizer(nil))
		})

		It("should not change anything", func() {
			once := filter.Apply(strings.Join(warungLines, "\n"))
			Expect(filter.Apply(once)).To(Equal(once))
		})
	})

	When("normalization is enabled", func() {
		BeforeEach(func() {
			filter = NewLineFilter(LookbackPolicy{}, NewNormalizer(nil))
		})

		It("should repair keywords before filtering", func() {
			Expect(filter.Apply("TOTAI 38 . 500")).To(Equal("TOTAL 38.500"))
		})
	})
})
