package triage

import (
	"github.com/papercomputeco/triage/pkg/agent"
	"github.com/papercomputeco/triage/pkg/chat"
)

// ToHistory converts request messages into an agent history, preserving
// order. Unknown roles are treated as user. Block messages with no blocks are
// dropped; an empty string message is kept.
func ToHistory(messages []chat.ChatMessage) *agent.History {
	history := agent.NewHistory()
	for _, m := range messages {
		msg, ok := toMessage(m)
		if !ok {
			continue
		}
		history.Add(msg)
	}
	return history
}

func toRole(r chat.Role) agent.AuthorRole {
	switch r {
	case chat.RoleAssistant:
		return agent.RoleAssistant
	case chat.RoleSystem:
		return agent.RoleSystem
	default:
		return agent.RoleUser
	}
}

func toMessage(m chat.ChatMessage) (agent.Message, bool) {
	role := toRole(m.Role)

	if !m.Content.IsBlocks() {
		return agent.NewTextMessage(role, m.Content.Text), true
	}

	items := make([]agent.Item, 0, len(m.Content.Blocks))
	for _, b := range m.Content.Blocks {
		switch v := b.(type) {
		case chat.TextBlock:
			items = append(items, agent.TextContent{Text: v.Text})
		case chat.ImageURLBlock:
			items = append(items, agent.ImageContent{URL: v.ImageURL.URL, Detail: v.ImageURL.Detail})
		}
	}
	if len(items) == 0 {
		return agent.Message{}, false
	}
	return agent.Message{Role: role, Items: items}, true
}
