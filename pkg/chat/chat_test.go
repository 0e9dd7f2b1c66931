package chat_test

import (
	"encoding/json"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/triage/pkg/chat"
)

var _ = Describe("ChatRequest", func() {
	Context("when content is a string", func() {
		It("decodes text content", func() {
			var req chat.ChatRequest
			err := json.Unmarshal([]byte(`{"messages":[{"role":"user","content":"hello"}],"conversation_id":"c-1"}`), &req)
			Expect(err).NotTo(HaveOccurred())

			Expect(req.ConversationID).To(Equal("c-1"))
			Expect(req.Messages).To(HaveLen(1))
			Expect(req.Messages[0].Role).To(Equal(chat.RoleUser))
			Expect(req.Messages[0].Content.IsBlocks()).To(BeFalse())
			Expect(req.Messages[0].Content.Text).To(Equal("hello"))
		})
	})

	Context("when content is a block list", func() {
		It("decodes text and image blocks in order", func() {
			body := `{"messages":[{"role":"user","content":[
				{"type":"text","text":"what is this?"},
				{"type":"image_url","image_url":{"url":"https://example.com/a.png","detail":"low"}}
			]}]}`

			var req chat.ChatRequest
			Expect(json.Unmarshal([]byte(body), &req)).To(Succeed())

			content := req.Messages[0].Content
			Expect(content.IsBlocks()).To(BeTrue())
			Expect(content.Blocks).To(Equal([]chat.ContentBlock{
				chat.TextBlock{Text: "what is this?"},
				chat.ImageURLBlock{ImageURL: chat.ImageURL{URL: "https://example.com/a.png", Detail: "low"}},
			}))
		})

		It("keeps an empty block list distinct from string content", func() {
			var req chat.ChatRequest
			Expect(json.Unmarshal([]byte(`{"messages":[{"role":"user","content":[]}]}`), &req)).To(Succeed())
			Expect(req.Messages[0].Content.IsBlocks()).To(BeTrue())
			Expect(req.Messages[0].Content.Blocks).To(BeEmpty())
		})

		It("rejects an unknown block type", func() {
			var req chat.ChatRequest
			err := json.Unmarshal([]byte(`{"messages":[{"role":"user","content":[{"type":"audio","data":"x"}]}]}`), &req)
			Expect(err).To(MatchError(chat.ErrUnknownBlockType))
		})

		It("rejects an image block without a url", func() {
			var req chat.ChatRequest
			err := json.Unmarshal([]byte(`{"messages":[{"role":"user","content":[{"type":"image_url","image_url":{}}]}]}`), &req)
			Expect(err).To(HaveOccurred())
		})
	})

	It("rejects content that is neither string nor array", func() {
		var req chat.ChatRequest
		err := json.Unmarshal([]byte(`{"messages":[{"role":"user","content":42}]}`), &req)
		Expect(err).To(HaveOccurred())
	})

	It("decodes free-form settings", func() {
		var req chat.ChatRequest
		Expect(json.Unmarshal([]byte(`{"messages":[],"settings":{"temperature":0.3}}`), &req)).To(Succeed())
		Expect(req.Settings).To(HaveKeyWithValue("temperature", 0.3))
	})
})

var _ = Describe("Content encoding", func() {
	It("encodes blocks with their type tags", func() {
		msg := chat.ChatMessage{
			Role: chat.RoleUser,
			Content: chat.Blocks(
				chat.TextBlock{Text: "hi"},
				chat.ImageURLBlock{ImageURL: chat.ImageURL{URL: "u"}},
			),
		}
		out, err := json.Marshal(msg)
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(MatchJSON(`{"role":"user","content":[{"type":"text","text":"hi"},{"type":"image_url","image_url":{"url":"u"}}]}`))
	})

	It("encodes string content as a JSON string", func() {
		out, err := json.Marshal(chat.ChatMessage{Role: chat.RoleAssistant, Content: chat.Text("ok")})
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(MatchJSON(`{"role":"assistant","content":"ok"}`))
	})
})
