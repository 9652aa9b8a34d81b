package naming

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/jakopako/pomgen/internal/types"
)

const (
	ENRICHER_TYPE_NONE EnricherType = "none"
	ENRICHER_TYPE_LLM  EnricherType = "llm"
)

type EnricherType string

// EnricherConfig configures the optional naming service.
type EnricherConfig struct {
	Type         EnricherType `yaml:"type" env:"POMGEN_ENRICHER_TYPE" env-default:"none"`
	Endpoint     string       `yaml:"endpoint" env:"POMGEN_ENRICHER_ENDPOINT" env-default:"https://api.openai.com/v1/chat/completions"`
	Model        string       `yaml:"model" env:"POMGEN_ENRICHER_MODEL" env-default:"gpt-3.5-turbo"`
	APIKey       string       `yaml:"api_key" env:"POMGEN_ENRICHER_API_KEY"` // we want to be able to pass the key via env vars
	TimeoutMS    int          `yaml:"timeout_ms" env-default:"10000"`
	BatchLimit   int          `yaml:"batch_limit" env-default:"30"`
	ContextLimit int          `yaml:"context_limit" env-default:"1000"`
}

// Enricher can enrich single names as well as whole action lists.
type Enricher interface {
	NameEnricher
	BatchEnricher
}

// NewEnricher returns the enricher configured by ec.
func NewEnricher(ec *EnricherConfig) (Enricher, error) {
	switch ec.Type {
	case "", ENRICHER_TYPE_NONE:
		return NoopEnricher{}, nil
	case ENRICHER_TYPE_LLM:
		return NewLLMEnricher(ec)
	default:
		return nil, fmt.Errorf("enricher of type '%s' not implemented", ec.Type)
	}
}

// LLMEnricher asks an OpenAI compatible chat completion endpoint for names.
type LLMEnricher struct {
	*EnricherConfig
	client *http.Client
	logger *slog.Logger
}

func NewLLMEnricher(ec *EnricherConfig) (*LLMEnricher, error) {
	if ec.Endpoint == "" {
		return nil, errors.New("endpoint needs to be specified for the llm enricher")
	}
	timeout := time.Duration(ec.TimeoutMS) * time.Millisecond
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &LLMEnricher{
		EnricherConfig: ec,
		client:         &http.Client{Timeout: timeout},
		logger:         slog.With(slog.String("enricher", string(ENRICHER_TYPE_LLM))),
	}, nil
}

const singleSystemPrompt = `You name UI elements for automated tests. Reply with JSON only, in the form {"name": "..."}.`

const singleUserPrompt = `Suggest one short camelCase identifier (for example "saveButton" or "usernameInput") describing the purpose of this element.

XPath: %s
Tag: %s
Surrounding text: """%s"""`

const batchSystemPrompt = `You name UI elements for automated tests. Reply with a JSON array only.`

const batchUserPrompt = `The following JSON array lists recorded user actions. Return the same array, unchanged except for the "name" fields, which should become short camelCase identifiers describing each element's purpose (for example "saveButton" or "usernameInput").

%s`

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

func (l *LLMEnricher) EnrichName(ctx context.Context, req Request) (string, error) {
	content, err := l.complete(ctx, singleSystemPrompt, fmt.Sprintf(singleUserPrompt, req.Locator, req.Tag, req.Context), 100)
	if err != nil {
		return "", err
	}
	var parsed map[string]any
	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		return "", fmt.Errorf("invalid json returned from naming service: %w", err)
	}
	name, ok := parsed["name"].(string)
	if !ok {
		return "", errors.New("name could not be parsed from naming service response")
	}
	if name = Sanitize(name); name == "" {
		return "", errors.New("naming service returned an empty name")
	}
	l.logger.Debug(fmt.Sprintf("enriched name for %s: %s", req.Locator, name))
	return name, nil
}

func (l *LLMEnricher) EnrichNames(ctx context.Context, actions []types.Action) ([]types.Action, error) {
	limit := l.BatchLimit
	if limit <= 0 || limit > len(actions) {
		limit = len(actions)
	}
	if limit == 0 {
		return actions, nil
	}
	input, err := json.MarshalIndent(actions[:limit], "", "  ")
	if err != nil {
		return nil, err
	}
	content, err := l.complete(ctx, batchSystemPrompt, fmt.Sprintf(batchUserPrompt, input), 2000)
	if err != nil {
		return nil, err
	}
	var proposed []types.Action
	if err := json.Unmarshal([]byte(content), &proposed); err != nil {
		return nil, fmt.Errorf("expected json array from naming service: %w", err)
	}
	l.logger.Debug(fmt.Sprintf("naming service proposed %d names for %d actions", len(proposed), limit))
	return MergeNames(actions, proposed, limit), nil
}

func (l *LLMEnricher) complete(ctx context.Context, system, user string, maxTokens int) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model: l.Model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Temperature: 0.3,
		MaxTokens:   maxTokens,
	})
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, l.Endpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	if l.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+l.APIKey)
	}
	resp, err := l.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("status code error: %d %s", resp.StatusCode, string(respBody))
	}
	var cr chatResponse
	if err := json.Unmarshal(respBody, &cr); err != nil {
		return "", fmt.Errorf("malformed naming service response: %w", err)
	}
	if len(cr.Choices) == 0 {
		return "", errors.New("naming service response contains no choices")
	}
	return stripFences(cr.Choices[0].Message.Content), nil
}

var (
	openingFence = regexp.MustCompile("^```(?:json)?\\s*")
	closingFence = regexp.MustCompile("\\s*```$")
)

// stripFences removes a markdown code fence wrapped around content.
func stripFences(content string) string {
	content = strings.TrimSpace(content)
	if openingFence.MatchString(content) {
		content = openingFence.ReplaceAllString(content, "")
		content = closingFence.ReplaceAllString(content, "")
	}
	return content
}
