package agent_test

import (
	"context"
	"fmt"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/triage/pkg/agent"
)

func turns(n int) *agent.History {
	h := agent.NewHistory()
	for i := 0; i < n; i++ {
		role := agent.RoleUser
		if i%2 == 1 {
			role = agent.RoleAssistant
		}
		h.Add(agent.NewTextMessage(role, fmt.Sprintf("m%d", i)))
	}
	return h
}

var _ = Describe("Reducers", func() {
	ctx := context.Background()

	Describe("TruncationReducer", func() {
		reducer := agent.TruncationReducer{TargetCount: 10, ThresholdCount: 5}

		It("does nothing at or below target plus threshold", func() {
			h := turns(15)
			changed, err := reducer.Reduce(ctx, h)
			Expect(err).NotTo(HaveOccurred())
			Expect(changed).To(BeFalse())
			Expect(h.Len()).To(Equal(15))
		})

		It("keeps the most recent target messages", func() {
			h := turns(16)
			changed, err := reducer.Reduce(ctx, h)
			Expect(err).NotTo(HaveOccurred())
			Expect(changed).To(BeTrue())
			Expect(h.Len()).To(Equal(10))
			Expect(h.Messages[0].Text()).To(Equal("m6"))
			Expect(h.Messages[9].Text()).To(Equal("m15"))
		})

		It("keeps a leading system message", func() {
			h := agent.NewHistory(agent.NewTextMessage(agent.RoleSystem, "sys"))
			h.Messages = append(h.Messages, turns(20).Messages...)

			_, err := reducer.Reduce(ctx, h)
			Expect(err).NotTo(HaveOccurred())
			Expect(h.Messages[0].Role).To(Equal(agent.RoleSystem))
			Expect(h.Len()).To(Equal(11))
		})

		It("never separates a tool result from its call", func() {
			h := turns(10)
			h.Add(agent.Message{Role: agent.RoleAssistant, Items: []agent.Item{agent.FunctionCallContent{ID: "c", Name: "f"}}})
			h.Add(agent.Message{Role: agent.RoleTool, Items: []agent.Item{agent.FunctionResultContent{CallID: "c", Name: "f", Result: "r"}}})
			for i := 0; i < 9; i++ {
				h.Add(agent.NewTextMessage(agent.RoleUser, "tail"))
			}
			// 21 messages; the natural cut (11) lands on the tool result.
			_, err := reducer.Reduce(ctx, h)
			Expect(err).NotTo(HaveOccurred())
			Expect(h.Messages[0].FunctionCalls()).To(HaveLen(1))
			Expect(h.Messages[1].Role).To(Equal(agent.RoleTool))
		})

		It("rejects a non-positive target", func() {
			_, err := agent.TruncationReducer{}.Reduce(ctx, turns(3))
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("SummarizationReducer", func() {
		It("replaces the dropped prefix with a summary", func() {
			service := &scriptedCompleter{replies: []*agent.Message{textReply("they talked")}}
			reducer := agent.SummarizationReducer{Service: service, TargetCount: 10, ThresholdCount: 5}

			h := turns(16)
			changed, err := reducer.Reduce(ctx, h)
			Expect(err).NotTo(HaveOccurred())
			Expect(changed).To(BeTrue())
			Expect(h.Len()).To(Equal(11))
			Expect(h.Messages[0].Name).To(Equal(agent.SummaryName))
			Expect(h.Messages[0].Text()).To(Equal("they talked"))
			Expect(h.Messages[1].Text()).To(Equal("m6"))

			Expect(service.requests).To(HaveLen(1))
			transcript := service.requests[0].Messages[1].Text()
			Expect(transcript).To(ContainSubstring("user: m0"))
			Expect(transcript).To(ContainSubstring("assistant: m5"))
			Expect(transcript).NotTo(ContainSubstring("m6"))
		})

		It("does not call the service below the threshold", func() {
			service := &scriptedCompleter{}
			reducer := agent.SummarizationReducer{Service: service, TargetCount: 10, ThresholdCount: 5}

			changed, err := reducer.Reduce(ctx, turns(12))
			Expect(err).NotTo(HaveOccurred())
			Expect(changed).To(BeFalse())
			Expect(service.requests).To(BeEmpty())
		})

		It("leaves the history alone when summarization fails", func() {
			service := &scriptedCompleter{replies: []*agent.Message{textReply("  ")}}
			reducer := agent.SummarizationReducer{Service: service, TargetCount: 10, ThresholdCount: 5}

			h := turns(16)
			_, err := reducer.Reduce(ctx, h)
			Expect(err).To(HaveOccurred())
			Expect(h.Len()).To(Equal(16))
		})
	})
})
