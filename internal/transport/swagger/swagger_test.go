package swagger_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"

	"github.com/frahmantamala/leave-management/internal/transport/swagger"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Document", func() {
	ctx := context.Background()

	Context("the shipped contract", func() {
		var doc *swagger.Document

		BeforeEach(func() {
			var err error
			doc, err = swagger.Load(ctx, "../../../api/openapi.yml")
			Expect(err).NotTo(HaveOccurred())
		})

		It("documents every leave route", func() {
			Expect(doc.Paths()).To(ContainElements(
				"/leaves/request",
				"/leaves/status/{emp_id}",
				"/leaves/cancel/{emp_id}",
				"/leaves/balance/{emp_id}",
				"/leaves/track/{leave_req_id}",
			))
			Expect(doc.Version()).NotTo(BeEmpty())
		})

		It("serves a json rendering", func() {
			rec := httptest.NewRecorder()
			doc.ServeJSON(rec, httptest.NewRequest(http.MethodGet, "/openapi.json", nil))

			Expect(rec.Header().Get("Content-Type")).To(Equal("application/json"))
			var body map[string]interface{}
			Expect(json.Unmarshal(rec.Body.Bytes(), &body)).To(Succeed())
			Expect(body).To(HaveKey("paths"))
		})
	})

	It("fails on a missing file", func() {
		_, err := swagger.Load(ctx, "does-not-exist.yml")
		Expect(err).To(HaveOccurred())
	})

	It("rejects a document that does not validate", func() {
		raw := []byte(`openapi: 3.0.3
info:
  title: broken
paths: {}
`)
		_, err := swagger.Parse(ctx, raw)
		Expect(err).To(MatchError(ContainSubstring("invalid openapi document")))
	})
})
