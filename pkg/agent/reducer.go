package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Reducer shrinks a history in place. It reports whether anything changed.
type Reducer interface {
	Reduce(ctx context.Context, history *History) (bool, error)
}

// SummaryName marks the message a SummarizationReducer inserts.
const SummaryName = "summary"

const defaultSummaryInstructions = "Provide a concise and complete summarization of the entire dialog that does not exceed 5 sentences. " +
	"This summary must always: consider both user and assistant interactions, maintain continuity for the purpose of further dialog, " +
	"and include details from any existing summary. The summary must be written as plain text."

// TruncationReducer drops the oldest messages once the history is longer
// than TargetCount+ThresholdCount, keeping about TargetCount messages.
type TruncationReducer struct {
	TargetCount    int
	ThresholdCount int
}

func (r TruncationReducer) Reduce(_ context.Context, history *History) (bool, error) {
	if err := validateCounts(r.TargetCount, r.ThresholdCount); err != nil {
		return false, err
	}
	cut, ok := reductionIndex(history, r.TargetCount, r.ThresholdCount)
	if !ok {
		return false, nil
	}
	history.Messages = keep(history.Messages, cut)
	return true, nil
}

// SummarizationReducer replaces the oldest messages with a summary produced
// by Service once the history is longer than TargetCount+ThresholdCount.
type SummarizationReducer struct {
	Service        Completer
	TargetCount    int
	ThresholdCount int
	// Instructions overrides the summarization prompt.
	Instructions string
}

func (r SummarizationReducer) Reduce(ctx context.Context, history *History) (bool, error) {
	if r.Service == nil {
		return false, ErrNoService
	}
	if err := validateCounts(r.TargetCount, r.ThresholdCount); err != nil {
		return false, err
	}
	cut, ok := reductionIndex(history, r.TargetCount, r.ThresholdCount)
	if !ok {
		return false, nil
	}

	start := 0
	if history.Messages[0].Role == RoleSystem && history.Messages[0].Name != SummaryName {
		start = 1
	}

	var transcript strings.Builder
	for _, m := range history.Messages[start:cut] {
		text := m.Text()
		if text == "" {
			continue
		}
		role := string(m.Role)
		if m.Name == SummaryName {
			role = "previous summary"
		}
		fmt.Fprintf(&transcript, "%s: %s\n", role, text)
	}

	instructions := r.Instructions
	if instructions == "" {
		instructions = defaultSummaryInstructions
	}

	reply, err := r.Service.Complete(ctx, CompletionRequest{
		Messages: []Message{
			NewTextMessage(RoleSystem, instructions),
			NewTextMessage(RoleUser, transcript.String()),
		},
	})
	if err != nil {
		return false, fmt.Errorf("summarize history: %w", err)
	}
	if reply == nil || strings.TrimSpace(reply.Text()) == "" {
		return false, errors.New("summarize history: empty summary")
	}

	summary := Message{Role: RoleAssistant, Name: SummaryName, Items: []Item{TextContent{Text: reply.Text()}}}

	out := make([]Message, 0, len(history.Messages)-cut+2)
	if start == 1 {
		out = append(out, history.Messages[0])
	}
	out = append(out, summary)
	out = append(out, history.Messages[cut:]...)
	history.Messages = out
	return true, nil
}

func validateCounts(target, threshold int) error {
	if target <= 0 {
		return fmt.Errorf("reducer: target count must be positive, got %d", target)
	}
	if threshold < 0 {
		return fmt.Errorf("reducer: threshold count must not be negative, got %d", threshold)
	}
	return nil
}

// reductionIndex returns the index of the first message to keep. A leading
// system message is always kept separately. The cut moves back past tool
// results so a result is never separated from the call that produced it.
func reductionIndex(history *History, target, threshold int) (int, bool) {
	n := history.Len()
	if n <= target+threshold {
		return 0, false
	}

	floor := 0
	if history.Messages[0].Role == RoleSystem && history.Messages[0].Name != SummaryName {
		floor = 1
	}

	cut := n - target
	for cut > floor && isToolExchange(history.Messages[cut]) {
		cut--
	}
	if cut <= floor {
		return 0, false
	}
	return cut, true
}

func isToolExchange(m Message) bool {
	if m.Role == RoleTool {
		return true
	}
	for _, it := range m.Items {
		if _, ok := it.(FunctionResultContent); ok {
			return true
		}
	}
	return false
}

func keep(messages []Message, cut int) []Message {
	out := make([]Message, 0, len(messages)-cut+1)
	if messages[0].Role == RoleSystem && messages[0].Name != SummaryName {
		out = append(out, messages[0])
	}
	return append(out, messages[cut:]...)
}
