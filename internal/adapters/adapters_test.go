package adapters_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/compresr/edu-ai-gateway/internal/adapters"
	"github.com/compresr/edu-ai-gateway/internal/providers"
	"github.com/compresr/edu-ai-gateway/internal/tools"
)

func chatConfig(baseURL string) providers.ProviderConfig {
	return providers.ProviderConfig{
		Name:    "openrouter",
		Family:  providers.FamilyChatCompletion,
		BaseURL: baseURL,
		Model:   "meta-llama/llama-3.1-8b-instruct",
		Keys:    []string{"k"},
		Headers: map[string]string{"X-Title": "edu"},
	}
}

func geminiConfig(baseURL string) providers.ProviderConfig {
	return providers.ProviderConfig{
		Name:    "gemini",
		Family:  providers.FamilyGenerateContent,
		BaseURL: baseURL,
		Model:   "gemini-2.0-flash",
		Keys:    []string{"k"},
	}
}

// =============================================================================
// REGISTRY
// =============================================================================

func TestRegistry_BuiltinFamilies(t *testing.T) {
	reg := adapters.NewRegistry(nil)

	chat, ok := reg.Get(providers.FamilyChatCompletion)
	require.True(t, ok)
	assert.Equal(t, providers.FamilyChatCompletion, chat.Family())

	gen, ok := reg.Get(providers.FamilyGenerateContent)
	require.True(t, ok)
	assert.Equal(t, providers.FamilyGenerateContent, gen.Family())

	_, ok = reg.Get("other")
	assert.False(t, ok)
}

func TestTimeoutFor(t *testing.T) {
	assert.Equal(t, adapters.DefaultChatTimeout, adapters.TimeoutFor(providers.ProviderConfig{Family: providers.FamilyChatCompletion}))
	assert.Equal(t, adapters.DefaultGenerateTimeout, adapters.TimeoutFor(providers.ProviderConfig{Family: providers.FamilyGenerateContent}))
	assert.Equal(t, 5*time.Second, adapters.TimeoutFor(providers.ProviderConfig{Timeout: 5 * time.Second}))
}

// =============================================================================
// CHAT COMPLETION - Request shaping
// =============================================================================

func TestBuildChatRequest_TextOnly(t *testing.T) {
	body, err := adapters.BuildChatRequest("m", "hello", nil)
	require.NoError(t, err)

	assert.Equal(t, "m", gjson.GetBytes(body, "model").String())
	assert.Equal(t, "user", gjson.GetBytes(body, "messages.0.role").String())
	assert.Equal(t, "hello", gjson.GetBytes(body, "messages.0.content").String())
	assert.Equal(t, int64(1), gjson.GetBytes(body, "messages.#").Int())
}

func TestBuildChatRequest_ImageSplitsContent(t *testing.T) {
	att := &tools.Attachment{Data: []byte{0x89, 'P', 'N', 'G'}, MIMEType: "image/png"}

	body, err := adapters.BuildChatRequest("m", "describe", att)
	require.NoError(t, err)

	content := gjson.GetBytes(body, "messages.0.content")
	require.True(t, content.IsArray())
	assert.Equal(t, "text", content.Get("0.type").String())
	assert.Equal(t, "describe", content.Get("0.text").String())
	assert.Equal(t, "image_url", content.Get("1.type").String())
	assert.Equal(t, "data:image/png;base64,iVBORw==", content.Get("1.image_url.url").String())
}

func TestBuildChatRequest_NonImageAttachmentIgnored(t *testing.T) {
	att := &tools.Attachment{Data: []byte("%PDF"), MIMEType: "application/pdf"}

	body, err := adapters.BuildChatRequest("m", "p", att)
	require.NoError(t, err)
	assert.Equal(t, gjson.String, gjson.GetBytes(body, "messages.0.content").Type)
}

// =============================================================================
// CHAT COMPLETION - Invoke
// =============================================================================

func TestChatCompletion_Invoke(t *testing.T) {
	var gotAuth, gotTitle, gotPath string
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotTitle = r.Header.Get("X-Title")
		gotPath = r.URL.Path
		gotBody, _ = io.ReadAll(r.Body)
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"answer"}}],"usage":{"total_tokens":42}}`))
	}))
	defer srv.Close()

	a := adapters.NewChatCompletionAdapter(srv.Client())
	out, err := a.Invoke(context.Background(), chatConfig(srv.URL+"/api/v1"), "secret", "prompt", nil)

	require.NoError(t, err)
	assert.Equal(t, "answer", out.RawText)
	assert.Equal(t, 42, out.TokensUsed)
	assert.Equal(t, "Bearer secret", gotAuth)
	assert.Equal(t, "edu", gotTitle)
	assert.Equal(t, "/api/v1/chat/completions", gotPath)
	assert.Equal(t, "prompt", gjson.GetBytes(gotBody, "messages.0.content").String())
}

func TestParseChatResponse(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantText  string
		wantUsage int
		wantErr   error
	}{
		{name: "usage absent", body: `{"choices":[{"message":{"content":"x"}}]}`, wantText: "x"},
		{name: "no choices", body: `{"choices":[]}`, wantErr: adapters.ErrMalformedResponse},
		{name: "null content", body: `{"choices":[{"message":{"content":null}}]}`, wantErr: adapters.ErrMalformedResponse},
		{name: "content filter", body: `{"choices":[{"message":{},"finish_reason":"content_filter"}]}`, wantErr: adapters.ErrContentBlocked},
		{name: "invalid json", body: `<html>`, wantErr: adapters.ErrMalformedResponse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := adapters.ParseChatResponse("p", []byte(tt.body))
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
				assert.ErrorIs(t, err, adapters.ErrUpstream)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantText, out.RawText)
			assert.Equal(t, tt.wantUsage, out.TokensUsed)
		})
	}
}

// =============================================================================
// STATUS CLASSIFICATION
// =============================================================================

func TestInvoke_StatusClassification(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		wantKind adapters.ErrorKind
		wantIs   error
	}{
		{name: "429 is rate limited", status: http.StatusTooManyRequests, wantKind: adapters.KindRateLimited, wantIs: adapters.ErrRateLimited},
		{name: "500 is transport", status: http.StatusInternalServerError, wantKind: adapters.KindStatus, wantIs: adapters.ErrTransport},
		{name: "401 is transport", status: http.StatusUnauthorized, wantKind: adapters.KindStatus, wantIs: adapters.ErrTransport},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(`{"error":"nope"}`))
			}))
			defer srv.Close()

			a := adapters.NewChatCompletionAdapter(srv.Client())
			_, err := a.Invoke(context.Background(), chatConfig(srv.URL), "k", "p", nil)

			require.Error(t, err)
			assert.Equal(t, tt.wantKind, adapters.KindOf(err))
			assert.ErrorIs(t, err, tt.wantIs)
			assert.Contains(t, err.Error(), "nope")

			var ue *adapters.UpstreamError
			require.ErrorAs(t, err, &ue)
			assert.Equal(t, tt.status, ue.StatusCode)
			assert.Equal(t, "openrouter", ue.Provider)
		})
	}
}

func TestInvoke_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	a := adapters.NewChatCompletionAdapter(srv.Client())
	_, err := a.Invoke(ctx, chatConfig(srv.URL), "k", "p", nil)

	require.Error(t, err)
	assert.Equal(t, adapters.KindTimeout, adapters.KindOf(err))
	assert.ErrorIs(t, err, adapters.ErrTransport)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

// =============================================================================
// GENERATE CONTENT
// =============================================================================

func TestGeminiEndpoint(t *testing.T) {
	got := adapters.GeminiEndpoint("https://generativelanguage.googleapis.com/v1beta/", "gemini-2.0-flash", "a b")
	assert.Equal(t, "https://generativelanguage.googleapis.com/v1beta/models/gemini-2.0-flash:generateContent?key=a+b", got)
}

func TestBuildGeminiRequest_InlineAttachment(t *testing.T) {
	req := adapters.BuildGeminiRequest("summarize", &tools.Attachment{Data: []byte("%PDF"), MIMEType: "application/pdf"})

	require.Len(t, req.Contents, 1)
	parts := req.Contents[0].Parts
	require.Len(t, parts, 2)
	assert.Equal(t, "summarize", parts[0].Text)
	require.NotNil(t, parts[1].InlineData)
	assert.Equal(t, "application/pdf", parts[1].InlineData.MIMEType)
	assert.Equal(t, "JVBERg==", parts[1].InlineData.Data)
}

func TestGenerateContent_Invoke(t *testing.T) {
	var gotKey, gotAuth, gotPath string
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.URL.Query().Get("key")
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		gotBody, _ = io.ReadAll(r.Body)
		_, _ = w.Write([]byte(`{
			"candidates":[{"content":{"parts":[{"text":"part one "},{"text":"part two"}]}}],
			"usageMetadata":{"promptTokenCount":10,"candidatesTokenCount":5,"totalTokenCount":15}
		}`))
	}))
	defer srv.Close()

	a := adapters.NewGenerateContentAdapter(srv.Client())
	out, err := a.Invoke(context.Background(), geminiConfig(srv.URL+"/v1beta"), "gkey", "prompt",
		&tools.Attachment{Data: []byte("img"), MIMEType: "image/jpeg"})

	require.NoError(t, err)
	assert.Equal(t, "part one part two", out.RawText)
	assert.Equal(t, 15, out.TokensUsed)
	assert.Equal(t, "gkey", gotKey)
	assert.Empty(t, gotAuth, "key travels as query parameter only")
	assert.Equal(t, "/v1beta/models/gemini-2.0-flash:generateContent", gotPath)
	assert.Equal(t, "prompt", gjson.GetBytes(gotBody, "contents.0.parts.0.text").String())
	assert.Equal(t, "image/jpeg", gjson.GetBytes(gotBody, "contents.0.parts.1.inline_data.mime_type").String())
}

func TestParseGeminiResponse_ContentBlocked(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		reason string
	}{
		{name: "no candidates", body: `{"promptFeedback":{"blockReason":"SAFETY"}}`, reason: "SAFETY"},
		{name: "candidate without content", body: `{"candidates":[{"finishReason":"SAFETY"}]}`, reason: "finishReason SAFETY"},
		{name: "empty parts", body: `{"candidates":[{"content":{"parts":[]}}]}`, reason: "no candidates"},
		{name: "empty text part", body: `{"candidates":[{"content":{"parts":[{"text":""}]},"finishReason":"SAFETY"}]}`, reason: "finishReason SAFETY"},
		{name: "part without text", body: `{"candidates":[{"content":{"parts":[{}]}}]}`, reason: "no candidates"},
		{name: "whitespace only", body: `{"candidates":[{"content":{"parts":[{"text":"  \n"}]},"finishReason":"STOP"}]}`, reason: "finishReason STOP"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := adapters.ParseGeminiResponse("gemini", []byte(tt.body))
			require.Error(t, err)
			assert.ErrorIs(t, err, adapters.ErrContentBlocked)
			assert.Equal(t, adapters.KindContentBlocked, adapters.KindOf(err))
			assert.Contains(t, err.Error(), tt.reason)
		})
	}
}

func TestGenerateContent_KeyNotLeakedOnTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	a := adapters.NewGenerateContentAdapter(nil)
	_, err := a.Invoke(context.Background(), geminiConfig(url), "super-secret-key", "p", nil)

	require.Error(t, err)
	assert.ErrorIs(t, err, adapters.ErrTransport)
	assert.False(t, strings.Contains(err.Error(), "super-secret-key"), err.Error())
}
