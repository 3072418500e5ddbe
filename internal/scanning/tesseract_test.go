package scanning

import (
	"image"

	"github.com/otiai10/gosseract/v2"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/zombor/receipt-parser/internal/parsing"
)

var _ = Describe("Tesseract", func() {
	Describe("NewTesseract", func() {
		It("should default to english", func() {
			t, err := NewTesseract(TesseractOptions{Languages: []string{" ", ""}})
			Expect(err).NotTo(HaveOccurred())
			Expect(t.opts.Languages).To(Equal([]string{"eng"}))
			Expect(t.opts.MinHeight).To(Equal(DefaultMinHeight))
		})

		It("should keep the configured languages", func() {
			t, err := NewTesseract(TesseractOptions{Languages: []string{"eng", " ind "}})
			Expect(err).NotTo(HaveOccurred())
			Expect(t.opts.Languages).To(Equal([]string{"eng", "ind"}))
		})

		It("should reject an out of range confidence", func() {
			_, err := NewTesseract(TesseractOptions{MinConfidence: 120})
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("wordTokens", func() {
		It("should convert boxes and drop weak or blank words", func() {
			boxes := []gosseract.BoundingBox{
				{Box: image.Rect(10, 5, 60, 25), Word: "Nasi", Confidence: 91},
				{Box: image.Rect(70, 5, 90, 25), Word: "~", Confidence: 12},
				{Box: image.Rect(100, 5, 110, 25), Word: "  ", Confidence: 95},
				{Box: image.Rect(200, 6, 260, 26), Word: "25.000", Confidence: 88},
			}

			Expect(wordTokens(boxes, 40)).To(Equal([]parsing.Token{
				{Text: "Nasi", Box: parsing.Box{X0: 10, Y0: 5, X1: 60, Y1: 25}},
				{Text: "25.000", Box: parsing.Box{X0: 200, Y0: 6, X1: 260, Y1: 26}},
			}))
		})

		It("should return an empty slice for no boxes", func() {
			tokens := wordTokens(nil, 0)
			Expect(tokens).NotTo(BeNil())
			Expect(tokens).To(BeEmpty())
		})
	})
})
