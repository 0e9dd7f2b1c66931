// Package chat defines the JSON request and response bodies of the agent endpoints.
package chat

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// Role is the author of a ChatMessage.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Block type discriminators.
const (
	BlockTypeText     = "text"
	BlockTypeImageURL = "image_url"
)

// ErrUnknownBlockType is returned when decoding a content block whose type is not recognized.
var ErrUnknownBlockType = errors.New("chat: unknown content block type")

// ContentBlock is one element of a multi-part message: a TextBlock or an ImageURLBlock.
type ContentBlock interface {
	BlockType() string
}

// TextBlock is {"type":"text","text":...}.
type TextBlock struct {
	Text string `json:"text"`
}

// ImageURLBlock is {"type":"image_url","image_url":{"url":...,"detail":...}}.
type ImageURLBlock struct {
	ImageURL ImageURL `json:"image_url"`
}

// ImageURL locates an image. Detail is optional.
type ImageURL struct {
	URL    string `json:"url"`
	Detail string `json:"detail,omitempty"`
}

func (TextBlock) BlockType() string     { return BlockTypeText }
func (ImageURLBlock) BlockType() string { return BlockTypeImageURL }

func (b TextBlock) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type string `json:"type"`
		Text string `json:"text"`
	}{BlockTypeText, b.Text})
}

func (b ImageURLBlock) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type     string   `json:"type"`
		ImageURL ImageURL `json:"image_url"`
	}{BlockTypeImageURL, b.ImageURL})
}

// Content is a ChatMessage body: either a plain string or an ordered list of blocks.
// Blocks is nil for string content.
type Content struct {
	Text   string
	Blocks []ContentBlock
}

// Text returns string content.
func Text(s string) Content {
	return Content{Text: s}
}

// Blocks returns block content.
func Blocks(blocks ...ContentBlock) Content {
	if blocks == nil {
		blocks = []ContentBlock{}
	}
	return Content{Blocks: blocks}
}

// IsBlocks reports whether the content is a block list.
func (c Content) IsBlocks() bool {
	return c.Blocks != nil
}

func (c Content) MarshalJSON() ([]byte, error) {
	if c.Blocks != nil {
		return json.Marshal(c.Blocks)
	}
	return json.Marshal(c.Text)
}

func (c *Content) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return errors.New("chat: empty content")
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*c = Content{Text: s}
		return nil
	case '[':
		var raw []json.RawMessage
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		blocks := make([]ContentBlock, 0, len(raw))
		for i, r := range raw {
			b, err := decodeBlock(r)
			if err != nil {
				return fmt.Errorf("content block %d: %w", i, err)
			}
			blocks = append(blocks, b)
		}
		*c = Content{Blocks: blocks}
		return nil
	default:
		return errors.New("chat: content must be a string or an array of blocks")
	}
}

func decodeBlock(data json.RawMessage) (ContentBlock, error) {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, err
	}

	switch head.Type {
	case BlockTypeText:
		var b TextBlock
		if err := json.Unmarshal(data, &b); err != nil {
			return nil, err
		}
		return b, nil
	case BlockTypeImageURL:
		var b ImageURLBlock
		if err := json.Unmarshal(data, &b); err != nil {
			return nil, err
		}
		if b.ImageURL.URL == "" {
			return nil, errors.New("chat: image_url block requires a url")
		}
		return b, nil
	default:
		return nil, fmt.Errorf("%w %q", ErrUnknownBlockType, head.Type)
	}
}

// ChatMessage is one message of the request transcript.
type ChatMessage struct {
	Role    Role    `json:"role"`
	Content Content `json:"content"`
}

// ChatRequest is the body of POST /v1/agents/{name}.
type ChatRequest struct {
	Messages       []ChatMessage  `json:"messages"`
	Settings       map[string]any `json:"settings,omitempty"`
	ConversationID string         `json:"conversation_id,omitempty"`
}

// ChatResponse is the body returned by every agent endpoint.
type ChatResponse struct {
	Answer         string `json:"answer"`
	ConversationID string `json:"conversation_id"`
	MessageID      string `json:"message_id"`
}
