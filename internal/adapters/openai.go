package adapters

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/compresr/edu-ai-gateway/internal/providers"
	"github.com/compresr/edu-ai-gateway/internal/tools"
)

// ChatCompletionAdapter handles OpenAI-compatible chat completion APIs.
//
// Key format details:
//   - Auth: Authorization: Bearer <key>
//   - Request: a single user message; with an image attachment the content
//     becomes [{type:text}, {type:image_url, image_url:{url:data:...}}]
//   - Response text: choices[0].message.content
//   - Usage: usage.total_tokens (0 if absent)
//
// Non-image attachments are not sent; callers supply extracted text instead.
type ChatCompletionAdapter struct {
	BaseAdapter
}

// NewChatCompletionAdapter creates a chat completion adapter.
// If client is nil, a default client is used (timeouts come from the context).
func NewChatCompletionAdapter(client *http.Client) *ChatCompletionAdapter {
	if client == nil {
		client = &http.Client{}
	}
	return &ChatCompletionAdapter{
		BaseAdapter: BaseAdapter{
			family: providers.FamilyChatCompletion,
			client: client,
		},
	}
}

// Invoke sends the prompt as a chat completion request.
func (a *ChatCompletionAdapter) Invoke(ctx context.Context, cfg providers.ProviderConfig, apiKey, prompt string, attachment *tools.Attachment) (*providers.Completion, error) {
	body, err := BuildChatRequest(cfg.Model, prompt, attachment)
	if err != nil {
		return nil, fmt.Errorf("failed to build %s request: %w", cfg.Name, err)
	}

	respBody, err := a.post(ctx, cfg, chatEndpoint(cfg.BaseURL), body, map[string]string{
		"Authorization": "Bearer " + apiKey,
	})
	if err != nil {
		return nil, err
	}

	return ParseChatResponse(cfg.Name, respBody)
}

// BuildChatRequest builds the chat completion request body.
func BuildChatRequest(model, prompt string, attachment *tools.Attachment) ([]byte, error) {
	body := []byte(`{}`)
	var err error

	set := func(path string, value any) {
		if err == nil {
			body, err = sjson.SetBytes(body, path, value)
		}
	}

	set("model", model)
	set("messages.0.role", "user")
	if attachment.IsImage() {
		set("messages.0.content.0.type", "text")
		set("messages.0.content.0.text", prompt)
		set("messages.0.content.1.type", "image_url")
		set("messages.0.content.1.image_url.url", attachment.DataURI())
	} else {
		set("messages.0.content", prompt)
	}

	return body, err
}

// ParseChatResponse extracts text and usage from a chat completion response.
func ParseChatResponse(provider string, body []byte) (*providers.Completion, error) {
	if !gjson.ValidBytes(body) {
		return nil, malformed(provider, "response is not valid JSON")
	}

	choice := gjson.GetBytes(body, "choices.0")
	if !choice.Exists() {
		return nil, malformed(provider, "no choices in response")
	}

	content := choice.Get("message.content")
	if !content.Exists() || content.Type == gjson.Null {
		if reason := strings.TrimSpace(choice.Get("finish_reason").String()); reason == "content_filter" {
			return nil, &UpstreamError{Kind: KindContentBlocked, Provider: provider, Err: fmt.Errorf("finish_reason %s", reason)}
		}
		return nil, malformed(provider, "no message content in first choice")
	}

	return &providers.Completion{
		RawText:    content.String(),
		TokensUsed: int(gjson.GetBytes(body, "usage.total_tokens").Int()),
	}, nil
}

// chatEndpoint accepts either a full /chat/completions URL or an API root.
func chatEndpoint(baseURL string) string {
	u := strings.TrimRight(baseURL, "/")
	if strings.HasSuffix(u, "/chat/completions") {
		return u
	}
	return u + "/chat/completions"
}
