package generator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"eventpulse/internal/domain"
)

const (
	defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta/models/gemini-2.0-flash:generateContent"

	maxAttempts = 3
	retryDelay  = 4 * time.Second
)

const promptTemplate = `Generate event details from this idea: "%s".
Respond with only a JSON object with these exact keys:
"title" (string), "description" (string), "category" (string),
"suggestedCapacity" (number), "suggestedTicketType" ("free" or "paid").`

type geminiGenerator struct {
	client     *http.Client
	apiKey     string
	baseURL    string
	retryDelay time.Duration
}

// NewGeminiGenerator returns an EventGenerator backed by the Gemini API.
func NewGeminiGenerator(client *http.Client, apiKey string) domain.EventGenerator {
	if client == nil {
		client = http.DefaultClient
	}
	return &geminiGenerator{
		client:     client,
		apiKey:     apiKey,
		baseURL:    defaultBaseURL,
		retryDelay: retryDelay,
	}
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []part `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

func (g *geminiGenerator) Generate(ctx context.Context, prompt string) (*domain.GeneratedEvent, error) {
	body := generateRequest{
		Contents: []content{{Parts: []part{{Text: fmt.Sprintf(promptTemplate, prompt)}}}},
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	text, err := g.callWithRetry(ctx, payload)
	if err != nil {
		return nil, err
	}

	var draft domain.GeneratedEvent
	if err := json.Unmarshal([]byte(stripCodeFences(text)), &draft); err != nil {
		return nil, fmt.Errorf("failed to decode generated event: %w", err)
	}
	return &draft, nil
}

// callWithRetry retries rate-limited calls up to maxAttempts with a fixed delay.
func (g *geminiGenerator) callWithRetry(ctx context.Context, payload []byte) (string, error) {
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(g.retryDelay):
			}
		}
		text, retryable, err := g.call(ctx, payload)
		if err == nil {
			return text, nil
		}
		lastErr = err
		if !retryable {
			return "", err
		}
	}
	return "", lastErr
}

func (g *geminiGenerator) call(ctx context.Context, payload []byte) (text string, retryable bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL, bytes.NewReader(payload))
	if err != nil {
		return "", false, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", g.apiKey)

	resp, err := g.client.Do(req)
	if err != nil {
		return "", false, fmt.Errorf("failed to call generation api: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return "", true, fmt.Errorf("generation api rate limited: %d", resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		return "", false, fmt.Errorf("generation api returned status: %d", resp.StatusCode)
	}

	var data generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return "", false, fmt.Errorf("failed to decode generation response: %w", err)
	}
	if len(data.Candidates) == 0 || len(data.Candidates[0].Content.Parts) == 0 {
		return "", false, fmt.Errorf("generation api returned no candidates")
	}
	return data.Candidates[0].Content.Parts[0].Text, false, nil
}

// stripCodeFences removes a surrounding ```json ... ``` block if present.
func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
