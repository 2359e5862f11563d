package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const defaultAnthropicModel = "claude-sonnet-4-5-20250929"
const defaultOpenAIModel = "gpt-4o-mini"

const classifySystemPrompt = `You triage customer complaints for a marketplace operations team.
Classify the complaint into exactly one of these categories:
- Supplier Issue
- Logistics Issue
- Customer Issue

Respond with the category name only, nothing else.`

// Classifier maps complaint text to a Category. Implementations must not
// retry: one complaint consumes exactly one classification attempt.
type Classifier interface {
	Classify(ctx context.Context, text string) (Category, error)
}

type llmClassifier struct {
	cfg Config
}

func NewClassifier(cfg Config) Classifier {
	return &llmClassifier{cfg: cfg}
}

// Classify sends one complaint to the configured provider and normalizes the
// response. Transport or service failures come back as CategoryUnknown with
// the error; callers treat that as a non-fatal warning.
func (c *llmClassifier) Classify(ctx context.Context, text string) (Category, error) {
	var responseText string
	var err error

	switch c.cfg.LLMProvider {
	case "openai":
		model := c.cfg.LLMModel
		if model == "" {
			model = defaultOpenAIModel
		}
		responseText, err = callOpenAI(ctx, c.cfg.OpenAIAPIKey, model, classifySystemPrompt, text)
	default:
		model := c.cfg.LLMModel
		if model == "" {
			model = defaultAnthropicModel
		}
		responseText, err = callAnthropic(ctx, c.cfg.AnthropicAPIKey, model, classifySystemPrompt, text)
	}
	if err != nil {
		return CategoryUnknown, err
	}
	return normalizeCategory(firstLine(responseText)), nil
}

// firstLine takes the answer line of a free-form response.
func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return s
}

// normalizeCategory maps a free-form answer to a fixed category by
// case-insensitive substring. Anything that matches neither "supplier" nor
// "logistic" falls back to CategoryCustomer.
func normalizeCategory(answer string) Category {
	s := strings.ToLower(answer)
	switch {
	case strings.Contains(s, "supplier"):
		return CategorySupplier
	case strings.Contains(s, "logistic"):
		return CategoryLogistics
	default:
		return CategoryCustomer
	}
}

// --- Anthropic ---

func callAnthropic(ctx context.Context, apiKey, model, systemPrompt, userPrompt string) (string, error) {
	client := anthropic.NewClient(option.WithAPIKey(apiKey))

	message, err := client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		MaxTokens: 16,
		System: []anthropic.TextBlockParam{
			{Text: systemPrompt, CacheControl: anthropic.NewCacheControlEphemeralParam()},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(userPrompt)),
		},
	})
	if err != nil {
		log.Printf("llm anthropic error: %v", err)
		return "", fmt.Errorf("Anthropic API error: %w", err)
	}

	for _, block := range message.Content {
		if block.Type == "text" {
			log.Printf("llm classify provider=anthropic model=%s tokens_in=%d tokens_out=%d", model, message.Usage.InputTokens, message.Usage.OutputTokens)
			return block.Text, nil
		}
	}
	return "", fmt.Errorf("no text content in Anthropic response")
}

// --- OpenAI ---

type openAIRequest struct {
	Model    string          `json:"model"`
	Messages []openAIMessage `json:"messages"`
}

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func callOpenAI(ctx context.Context, apiKey, model, systemPrompt, userPrompt string) (string, error) {
	reqBody := openAIRequest{
		Model: model,
		Messages: []openAIMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", "https://api.openai.com/v1/chat/completions", bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+apiKey)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		log.Printf("llm openai error: %v", err)
		return "", fmt.Errorf("OpenAI API error: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading response: %w", err)
	}

	var openAIResp openAIResponse
	if err := json.Unmarshal(respBody, &openAIResp); err != nil {
		return "", fmt.Errorf("parsing OpenAI response: %w", err)
	}

	if openAIResp.Error != nil {
		log.Printf("llm openai api error: %s", openAIResp.Error.Message)
		return "", fmt.Errorf("OpenAI API error: %s", openAIResp.Error.Message)
	}

	if len(openAIResp.Choices) == 0 {
		return "", fmt.Errorf("no choices in OpenAI response")
	}

	log.Printf("llm classify provider=openai model=%s size=%d", model, len(openAIResp.Choices[0].Message.Content))
	return openAIResp.Choices[0].Message.Content, nil
}
