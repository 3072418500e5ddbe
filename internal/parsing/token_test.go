package parsing

import (
	"encoding/json"
	"image"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Token", func() {
	Describe("decoding JSON", func() {
		var (
			input string
			token Token
			err   error
		)

		JustBeforeEach(func() {
			token = Token{}
			err = json.Unmarshal([]byte(input), &token)
		})

		When("the box is axis-aligned", func() {
			BeforeEach(func() {
				input = `{"text": "Total", "box": [10, 20, 60, 40]}`
			})

			It("should not return an error", func() {
				Expect(err).NotTo(HaveOccurred())
			})

			It("should decode the box", func() {
				Expect(token.Text).To(Equal("Total"))
				Expect(token.Box).To(Equal(Box{X0: 10, Y0: 20, X1: 60, Y1: 40}))
			})
		})

		When("the box is a quadrilateral", func() {
			BeforeEach(func() {
				input = `{"text": "38.500", "box": [[12, 22], [70, 20], [71, 41], [10, 43]]}`
			})

			It("should not return an error", func() {
				Expect(err).NotTo(HaveOccurred())
			})

			It("should normalize it to its axis-aligned extent", func() {
				Expect(token.Box).To(Equal(Box{X0: 10, Y0: 20, X1: 71, Y1: 43}))
			})
		})

		When("the box has the wrong shape", func() {
			BeforeEach(func() {
				input = `{"text": "x", "box": "nope"}`
			})

			It("returns the error", func() {
				Expect(err).To(HaveOccurred())
			})
		})

		DescribeTable("rejecting boxes without exactly four coordinates or points",
			func(box string) {
				var t Token
				err := json.Unmarshal([]byte(`{"text": "a", "box": `+box+`}`), &t)
				Expect(err).To(MatchError(ContainSubstring("box must be")))
			},
			Entry("three numbers", `[1, 2, 3]`),
			Entry("five numbers", `[1, 2, 3, 4, 5]`),
			Entry("empty array", `[]`),
			Entry("three points", `[[0, 0], [10, 0], [10, 5]]`),
			Entry("point with three coordinates", `[[0, 0, 1], [10, 0], [10, 5], [0, 5]]`),
			Entry("mixed numbers and points", `[1, [2, 3], 4, 5]`),
		)
	})

	Describe("encoding JSON", func() {
		It("should write the box as a flat array", func() {
			data, err := json.Marshal(Token{Text: "Teh", Box: Box{X0: 1, Y0: 2, X1: 3, Y1: 4}})
			Expect(err).NotTo(HaveOccurred())
			Expect(string(data)).To(MatchJSON(`{"text": "Teh", "box": [1, 2, 3, 4]}`))
		})
	})

	Describe("BoxFromRect", func() {
		It("should copy the rectangle corners", func() {
			Expect(BoxFromRect(image.Rect(5, 6, 15, 26))).To(Equal(Box{X0: 5, Y0: 6, X1: 15, Y1: 26}))
		})
	})
})
