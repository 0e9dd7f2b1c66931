package askcmder

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/triage/pkg/chat"
)

var _ = Describe("Ask Command", func() {
	var (
		srv  *httptest.Server
		path string
		got  chat.ChatRequest
	)

	BeforeEach(func() {
		srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			path = r.URL.Path
			json.NewDecoder(r.Body).Decode(&got)
			json.NewEncoder(w).Encode(chat.ChatResponse{
				Answer:         "**Refunds** take 5 days.",
				ConversationID: "conv-9",
				MessageID:      "msg-1",
			})
		}))
		DeferCleanup(srv.Close)
	})

	It("prints the plain answer when output is not a terminal", func() {
		var out bytes.Buffer
		cmd := NewAskCmd()
		cmd.SetOut(&out)
		cmd.SetArgs([]string{"--server", srv.URL, "how", "long", "for", "refunds?"})

		Expect(cmd.Execute()).To(Succeed())
		Expect(path).To(Equal("/v1/agents/triage"))
		Expect(got.Messages).To(HaveLen(1))
		Expect(got.Messages[0].Content.Text).To(Equal("how long for refunds?"))

		Expect(out.String()).To(ContainSubstring("**Refunds** take 5 days."))
		Expect(out.String()).To(ContainSubstring("conversation: conv-9"))
		Expect(out.String()).To(ContainSubstring("message: msg-1"))
	})

	It("sends the agent and conversation id", func() {
		var out bytes.Buffer
		cmd := NewAskCmd()
		cmd.SetOut(&out)
		cmd.SetArgs([]string{"--server", srv.URL, "--agent", "sample", "--conversation-id", "conv-1", "menu?"})

		Expect(cmd.Execute()).To(Succeed())
		Expect(path).To(Equal("/v1/agents/sample"))
		Expect(got.ConversationID).To(Equal("conv-1"))
	})

	It("requires a question", func() {
		cmd := NewAskCmd()
		cmd.SetOut(&bytes.Buffer{})
		cmd.SetErr(&bytes.Buffer{})
		cmd.SetArgs([]string{"--server", srv.URL})
		Expect(cmd.Execute()).To(HaveOccurred())
	})

	It("renders markdown", func() {
		out, err := renderMarkdown("# Title\n\nbody", 40)
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(ContainSubstring("Title"))
		Expect(out).To(ContainSubstring("body"))
	})
})
