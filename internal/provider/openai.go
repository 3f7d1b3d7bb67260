package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
)

// OpenAIProvider translates through OpenAI chat completions.
type OpenAIProvider struct {
	client      *openai.Client
	model       string
	temperature float32
}

// OpenAIConfig holds configuration for the OpenAI provider.
type OpenAIConfig struct {
	APIKey      string
	Model       string  // default "gpt-4o-mini"
	Temperature float32 // default 0.3
	BaseURL     string  // optional override for compatible endpoints
}

func NewOpenAIProvider(cfg OpenAIConfig) *OpenAIProvider {
	config := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		config.BaseURL = cfg.BaseURL
	}

	model := cfg.Model
	if model == "" {
		model = "gpt-4o-mini"
	}

	temperature := cfg.Temperature
	if temperature == 0 {
		temperature = 0.3
	}

	return &OpenAIProvider{
		client:      openai.NewClientWithConfig(config),
		model:       model,
		temperature: temperature,
	}
}

func (p *OpenAIProvider) Name() string { return "openai" }

func (p *OpenAIProvider) Translate(ctx context.Context, req TranslateRequest) ([]string, error) {
	if len(req.Texts) == 0 {
		return []string{}, nil
	}

	payload, _ := json.Marshal(req.Texts)
	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: buildSystemPrompt(req)},
			{Role: openai.ChatMessageRoleUser, Content: string(payload)},
		},
		Temperature: p.temperature,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return nil, &Error{
			Message:   "OpenAI API call failed",
			Cause:     err,
			Retryable: isRetryableError(err),
		}
	}
	if len(resp.Choices) == 0 {
		return nil, &Error{Message: "no response from OpenAI", Retryable: true}
	}

	return parseResponse(resp.Choices[0].Message.Content, len(req.Texts))
}

func buildSystemPrompt(req TranslateRequest) string {
	sourceLang := req.SourceLang
	if sourceLang == "" {
		sourceLang = "the source language"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, `You are an expert native translator. Translate the provided texts from %s into idiomatic %s.

Rules:
- Translate each text independently; never merge or split entries.
- Preserve every marker of the form __DNT_<number>__ exactly as it appears. Do not translate, reorder, drop or reformat these markers.
- Do not translate placeholders in braces (e.g. {name}), URLs or email addresses.
- Preserve leading and trailing whitespace of each text.
- Avoid literal translations; rephrase so the result reads naturally to a native speaker.`, sourceLang, req.TargetLang)

	if req.Instructions != "" {
		fmt.Fprintf(&sb, "\n\nContext: %s", req.Instructions)
	}

	sb.WriteString(`

Return a JSON object with a single key "translations" holding an array of strings in the exact order of the input. Do not wrap the JSON in Markdown.`)
	return sb.String()
}

func parseResponse(content string, expectedCount int) ([]string, error) {
	var obj map[string]interface{}
	if err := json.Unmarshal([]byte(content), &obj); err == nil {
		if translations, ok := obj["translations"]; ok {
			if arr, ok := translations.([]interface{}); ok {
				return toStringSlice(arr, expectedCount)
			}
		}
		// Some models return the array under an arbitrary key.
		for _, v := range obj {
			if arr, ok := v.([]interface{}); ok {
				return toStringSlice(arr, expectedCount)
			}
		}
	}

	var arr []interface{}
	if err := json.Unmarshal([]byte(content), &arr); err == nil {
		return toStringSlice(arr, expectedCount)
	}

	return nil, &Error{Message: "invalid response format from OpenAI"}
}

func toStringSlice(arr []interface{}, expectedCount int) ([]string, error) {
	result := make([]string, len(arr))
	for i, v := range arr {
		if s, ok := v.(string); ok {
			result[i] = s
		} else {
			result[i] = fmt.Sprintf("%v", v)
		}
	}
	if len(result) != expectedCount {
		return nil, &CountMismatchError{Expected: expectedCount, Got: len(result)}
	}
	return result, nil
}

func isRetryableError(err error) bool {
	errStr := strings.ToLower(err.Error())
	for _, pattern := range []string{"rate limit", "timeout", "connection refused", "temporary", "503", "502", "429"} {
		if strings.Contains(errStr, pattern) {
			return true
		}
	}
	return false
}

var _ Provider = (*OpenAIProvider)(nil)
