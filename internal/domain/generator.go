package domain

import "context"

// GeneratedEvent is a draft produced by the description generator.
// swagger:model GeneratedEvent
type GeneratedEvent struct {
	Title               string `json:"title"`
	Description         string `json:"description"`
	Category            string `json:"category"`
	SuggestedCapacity   int    `json:"suggestedCapacity"`
	SuggestedTicketType string `json:"suggestedTicketType"`
}

// EventGenerator turns a free-form event idea into a structured draft.
// Implementations call an external text-generation API.
type EventGenerator interface {
	Generate(ctx context.Context, prompt string) (*GeneratedEvent, error)
}
