package llm

// Options contains model inference parameters. Nil fields are omitted so the
// deployment's defaults apply.
type Options struct {
	Temperature *float64 `json:"temperature,omitempty"` // Creativity (0.0-2.0)
	TopP        *float64 `json:"top_p,omitempty"`       // Nucleus sampling threshold
	MaxTokens   *int     `json:"max_tokens,omitempty"`  // Max tokens to generate
}
