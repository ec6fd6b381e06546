// Package agent implements the pipeline stages. Every agent mutates the
// shared application state during its turn, appends only the messages it
// authors, and owns a small set of status transitions. Text generation is
// best-effort: each agent carries a deterministic fallback so a dead
// collaborator never stalls the pipeline.
package agent

import (
	"context"

	"credsaathi_backend/internal/loans/domain"
	"credsaathi_backend/internal/loans/ports"
	"credsaathi_backend/platform/logger"
)

// Agent is one pipeline stage.
type Agent interface {
	// Stage returns the stage identity this agent runs as.
	Stage() domain.Stage

	// Run executes the stage against the state. Collaborator failures are
	// absorbed with fallback text; a returned error means the stage itself
	// could not complete and the turn must abort.
	Run(ctx context.Context, state *domain.ApplicationState) error
}

// generateOrFallback asks the text generator for a completion and
// substitutes the fallback on any failure.
func generateOrFallback(ctx context.Context, llm ports.TextGenerator, log *logger.Logger, operation, systemPrompt, userPrompt string, temperature float64, fallback string) string {
	if llm == nil {
		return fallback
	}

	messages := []ports.ChatMessage{
		{Role: ports.ChatRoleSystem, Content: systemPrompt},
		{Role: ports.ChatRoleUser, Content: userPrompt},
	}

	text, err := llm.Complete(ctx, messages, temperature)
	if err != nil {
		log.ExternalCallFailure("text-generation", operation, err)
		return fallback
	}
	return text
}
