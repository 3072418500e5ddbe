package scanning

import (
	"bytes"
	"encoding/json"
	"image/png"
	"net/http"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/onsi/gomega/ghttp"

	"github.com/zombor/receipt-parser/internal/parsing"
)

var _ = Describe("Ollama", func() {
	var (
		ollamaServer *ghttp.Server
		ollama       *Ollama
		imageData    []byte
	)

	BeforeEach(func() {
		ollamaServer = ghttp.NewServer()

		var err error
		ollama, err = NewOllama(ollamaServer.URL(), "llava:1.6")
		Expect(err).NotTo(HaveOccurred())

		var buf bytes.Buffer
		Expect(png.Encode(&buf, testImage(8, 8))).To(Succeed())
		imageData = buf.Bytes()
	})

	AfterEach(func() {
		ollamaServer.Close()
	})

	When("the model answers", func() {
		BeforeEach(func() {
			ollamaServer.AppendHandlers(ghttp.CombineHandlers(
				ghttp.VerifyRequest(http.MethodPost, "/api/chat"),
				ghttp.VerifyContentType("application/json"),
				func(w http.ResponseWriter, r *http.Request) {
					var req ollamaChatRequest
					Expect(jsonDecode(r, &req)).To(Succeed())
					Expect(req.Model).To(Equal("llava:1.6"))
					Expect(req.Format).To(Equal("json"))
					Expect(req.Messages).To(HaveLen(2))
					Expect(req.Messages[1].Images).To(HaveLen(1))
				},
				ghttp.RespondWithJSONEncoded(http.StatusOK, ollamaChatResponse{
					Done: true,
					Message: ollamaMessage{
						Role:    "assistant",
						Content: `{"items":[{"name":"Kopi","qty":1,"unit_price":18000,"line_total":18000}],"grand_total":18000}`,
					},
				}),
			))
		})

		It("should return the reconciled receipt", func() {
			receipt, err := ollama.ExtractReceipt(imageData, "image/png")
			Expect(err).NotTo(HaveOccurred())
			Expect(receipt.Items).To(Equal([]parsing.LineItem{
				{Name: "Kopi", Qty: 1, UnitPrice: 18000, LineTotal: 18000},
			}))
			Expect(receipt.Status).To(Equal(parsing.StatusBalanced))
		})
	})

	When("the API fails", func() {
		BeforeEach(func() {
			ollamaServer.AppendHandlers(ghttp.RespondWith(http.StatusInternalServerError, "model not loaded"))
		})

		It("should return the status and body", func() {
			_, err := ollama.ExtractReceipt(imageData, "image/png")
			Expect(err).To(MatchError(ContainSubstring("status 500")))
			Expect(err).To(MatchError(ContainSubstring("model not loaded")))
		})
	})

	When("the model answers with prose", func() {
		BeforeEach(func() {
			ollamaServer.AppendHandlers(ghttp.RespondWithJSONEncoded(http.StatusOK, ollamaChatResponse{
				Message: ollamaMessage{Role: "assistant", Content: "Sorry, I cannot read this."},
			}))
		})

		It("should return a parse error", func() {
			_, err := ollama.ExtractReceipt(imageData, "image/png")
			Expect(err).To(MatchError(ContainSubstring("parsing receipt data")))
		})
	})

	It("should fill in defaults", func() {
		o, err := NewOllama("", "")
		Expect(err).NotTo(HaveOccurred())
		Expect(o.baseURL).To(Equal("http://localhost:11434"))
		Expect(o.model).To(Equal("llava"))
		Expect(o.Close()).To(Succeed())
	})
})

func jsonDecode(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}
