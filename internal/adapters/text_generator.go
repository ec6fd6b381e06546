// Package adapters wires platform clients to the loan pipeline's ports.
package adapters

import (
	"context"

	"credsaathi_backend/internal/loans/ports"
	"credsaathi_backend/platform/ai/groqcloud"
)

// GroqTextGenerator adapts the Groq chat-completions client to the
// pipeline's TextGenerator port.
type GroqTextGenerator struct {
	client *groqcloud.Client
}

func NewGroqTextGenerator(client *groqcloud.Client) *GroqTextGenerator {
	return &GroqTextGenerator{client: client}
}

var _ ports.TextGenerator = (*GroqTextGenerator)(nil)

func (g *GroqTextGenerator) Complete(ctx context.Context, messages []ports.ChatMessage, temperature float64) (string, error) {
	converted := make([]groqcloud.Message, 0, len(messages))
	for _, m := range messages {
		converted = append(converted, groqcloud.Message{Role: m.Role, Content: m.Content})
	}
	return g.client.Complete(ctx, converted, temperature)
}
