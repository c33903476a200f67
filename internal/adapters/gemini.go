package adapters

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/compresr/edu-ai-gateway/internal/providers"
	"github.com/compresr/edu-ai-gateway/internal/tools"
)

// GenerateContentAdapter handles Google Gemini generateContent requests.
//
// Key format differences from chat completions:
//   - Auth: API key in the "key" query parameter, not a header
//   - Request: contents[0].parts[] holds the prompt and any attachment as
//     inline_data (any MIME type, not only images)
//   - Response text: candidates[0].content.parts[].text
//   - Usage: usageMetadata.totalTokenCount
//   - Model: in URL path (/models/{model}:generateContent), not request body
//
// A 2xx response without a candidate or candidate content is a content block
// (typically safety filtering), never an empty result.
type GenerateContentAdapter struct {
	BaseAdapter
}

// NewGenerateContentAdapter creates a Gemini adapter.
// If client is nil, a default client is used (timeouts come from the context).
func NewGenerateContentAdapter(client *http.Client) *GenerateContentAdapter {
	if client == nil {
		client = &http.Client{}
	}
	return &GenerateContentAdapter{
		BaseAdapter: BaseAdapter{
			family: providers.FamilyGenerateContent,
			client: client,
		},
	}
}

// GeminiRequest is the generateContent request body.
type GeminiRequest struct {
	Contents []GeminiContent `json:"contents"`
}

// GeminiContent is one content entry.
type GeminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []GeminiPart `json:"parts"`
}

// GeminiPart is a text or inline binary part.
type GeminiPart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *GeminiInlineData `json:"inline_data,omitempty"`
}

// GeminiInlineData carries base64 content with its MIME type.
type GeminiInlineData struct {
	MIMEType string `json:"mime_type"`
	Data     string `json:"data"`
}

// Invoke sends the prompt as a generateContent request.
func (a *GenerateContentAdapter) Invoke(ctx context.Context, cfg providers.ProviderConfig, apiKey, prompt string, attachment *tools.Attachment) (*providers.Completion, error) {
	body, err := json.Marshal(BuildGeminiRequest(prompt, attachment))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s request: %w", cfg.Name, err)
	}

	respBody, err := a.post(ctx, cfg, GeminiEndpoint(cfg.BaseURL, cfg.Model, apiKey), body, nil)
	if err != nil {
		return nil, err
	}

	return ParseGeminiResponse(cfg.Name, respBody)
}

// BuildGeminiRequest builds the request with the prompt and optional attachment
// in a single parts array.
func BuildGeminiRequest(prompt string, attachment *tools.Attachment) *GeminiRequest {
	parts := []GeminiPart{{Text: prompt}}
	if attachment != nil && len(attachment.Data) > 0 {
		parts = append(parts, GeminiPart{
			InlineData: &GeminiInlineData{
				MIMEType: attachment.MIMEType,
				Data:     attachment.Base64(),
			},
		})
	}
	return &GeminiRequest{
		Contents: []GeminiContent{{Role: "user", Parts: parts}},
	}
}

// GeminiEndpoint returns the generateContent URL for model with the key as a
// query parameter.
func GeminiEndpoint(baseURL, model, apiKey string) string {
	u := strings.TrimRight(baseURL, "/")
	if !strings.Contains(u, ":generateContent") {
		u = fmt.Sprintf("%s/models/%s:generateContent", u, url.PathEscape(model))
	}
	return u + "?key=" + url.QueryEscape(apiKey)
}

// ParseGeminiResponse extracts text and usage from a generateContent response.
func ParseGeminiResponse(provider string, body []byte) (*providers.Completion, error) {
	if !gjson.ValidBytes(body) {
		return nil, malformed(provider, "response is not valid JSON")
	}

	candidate := gjson.GetBytes(body, "candidates.0")
	parts := candidate.Get("content.parts")
	if !candidate.Exists() || !parts.IsArray() || len(parts.Array()) == 0 {
		return nil, &UpstreamError{Kind: KindContentBlocked, Provider: provider, Err: blockReason(body, candidate)}
	}

	var text strings.Builder
	for _, p := range parts.Array() {
		text.WriteString(p.Get("text").String())
	}
	if strings.TrimSpace(text.String()) == "" {
		return nil, &UpstreamError{Kind: KindContentBlocked, Provider: provider, Err: blockReason(body, candidate)}
	}

	return &providers.Completion{
		RawText:    text.String(),
		TokensUsed: int(gjson.GetBytes(body, "usageMetadata.totalTokenCount").Int()),
	}, nil
}

func blockReason(body []byte, candidate gjson.Result) error {
	if reason := gjson.GetBytes(body, "promptFeedback.blockReason").String(); reason != "" {
		return fmt.Errorf("prompt blocked: %s", reason)
	}
	if reason := candidate.Get("finishReason").String(); reason != "" {
		return fmt.Errorf("no candidate content (finishReason %s)", reason)
	}
	return fmt.Errorf("no candidates in response")
}
