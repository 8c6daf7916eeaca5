package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ashin12345678/pfc-balance-app/config"
)

// ErrAIKeyNotSet is returned when the selected provider has no credentials.
var ErrAIKeyNotSet = errors.New("AI API key not set")

// AIClient sends a single prompt and returns the raw model text. An empty
// string with a nil error means the model answered with nothing.
type AIClient interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

const (
	defaultGeminiBaseURL      = "https://generativelanguage.googleapis.com"
	defaultOpenAIBaseURL      = "https://api.openai.com"
	defaultHuggingFaceBaseURL = "https://api-inference.huggingface.co"
	aiHTTPTimeout             = 30 * time.Second
)

// NewAIClient builds the client selected by AI_PROVIDER.
func NewAIClient(cfg config.Config) (AIClient, error) {
	switch cfg.AIProvider {
	case "", "gemini":
		if cfg.GeminiAPIKey == "" {
			return nil, ErrAIKeyNotSet
		}
		return &GeminiClient{APIKey: cfg.GeminiAPIKey, Model: cfg.GeminiModel}, nil
	case "openai":
		if cfg.OpenAIAPIKey == "" {
			return nil, ErrAIKeyNotSet
		}
		return &OpenAIClient{APIKey: cfg.OpenAIAPIKey, Model: cfg.OpenAIModel}, nil
	case "huggingface":
		if cfg.HuggingFaceToken == "" {
			return nil, ErrAIKeyNotSet
		}
		return &HuggingFaceClient{Token: cfg.HuggingFaceToken, Model: cfg.HuggingFaceModel}, nil
	default:
		return nil, fmt.Errorf("unknown AI_PROVIDER %q", cfg.AIProvider)
	}
}

func httpClientOrDefault(c *http.Client) *http.Client {
	if c != nil {
		return c
	}
	return &http.Client{Timeout: aiHTTPTimeout}
}

func baseURLOrDefault(base, def string) string {
	base = strings.TrimRight(strings.TrimSpace(base), "/")
	if base == "" {
		return def
	}
	return base
}

// postJSON sends body and returns the response bytes. Non-2xx answers become
// errors carrying the status code and upstream body so overload detection can
// match on the message.
func postJSON(ctx context.Context, hc *http.Client, endpoint, provider string, headers map[string]string, body any) ([]byte, error) {
	b, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal %s request: %w", provider, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("create %s request: %w", provider, err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s request error: %w", provider, err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s response: %w", provider, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		preview := string(respBytes)
		if len(preview) > 500 {
			preview = preview[:500] + "..."
		}
		return nil, fmt.Errorf("%s api error (%d): %s", provider, resp.StatusCode, preview)
	}
	return respBytes, nil
}

// ---------- Gemini ----------

type GeminiClient struct {
	APIKey     string
	Model      string
	BaseURL    string
	HTTPClient *http.Client
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	Contents         []geminiContent `json:"contents"`
	GenerationConfig map[string]any  `json:"generationConfig,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

func (g *GeminiClient) Generate(ctx context.Context, prompt string) (string, error) {
	if g == nil || g.APIKey == "" {
		return "", ErrAIKeyNotSet
	}
	model := g.Model
	if model == "" {
		model = "gemini-2.5-flash"
	}
	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s",
		baseURLOrDefault(g.BaseURL, defaultGeminiBaseURL), url.PathEscape(model), url.QueryEscape(g.APIKey))

	body := geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: prompt}}}},
		GenerationConfig: map[string]any{
			"temperature":      0.3,
			"responseMimeType": "application/json",
		},
	}
	raw, err := postJSON(ctx, httpClientOrDefault(g.HTTPClient), endpoint, "gemini", nil, body)
	if err != nil {
		return "", err
	}

	var out geminiResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("decode gemini response: %w", err)
	}
	if len(out.Candidates) == 0 {
		return "", nil
	}
	var sb strings.Builder
	for _, p := range out.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}
	return sb.String(), nil
}

// ---------- OpenAI ----------

type OpenAIClient struct {
	APIKey     string
	Model      string
	BaseURL    string
	HTTPClient *http.Client
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string            `json:"model"`
	Messages       []chatMessage     `json:"messages"`
	ResponseFormat map[string]string `json:"response_format,omitempty"`
	Temperature    float64           `json:"temperature"`
	MaxTokens      int               `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (o *OpenAIClient) Generate(ctx context.Context, prompt string) (string, error) {
	if o == nil || o.APIKey == "" {
		return "", ErrAIKeyNotSet
	}
	model := o.Model
	if model == "" {
		model = "gpt-4o"
	}
	body := chatRequest{
		Model:          model,
		Messages:       []chatMessage{{Role: "user", Content: prompt}},
		ResponseFormat: map[string]string{"type": "json_object"},
		Temperature:    0.3,
		MaxTokens:      1000,
	}
	endpoint := baseURLOrDefault(o.BaseURL, defaultOpenAIBaseURL) + "/v1/chat/completions"
	raw, err := postJSON(ctx, httpClientOrDefault(o.HTTPClient), endpoint, "openai",
		map[string]string{"Authorization": "Bearer " + o.APIKey}, body)
	if err != nil {
		return "", err
	}

	var out chatResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("decode openai response: %w", err)
	}
	if len(out.Choices) == 0 {
		return "", nil
	}
	return out.Choices[0].Message.Content, nil
}

// ---------- Hugging Face ----------

type HuggingFaceClient struct {
	Token      string
	Model      string
	BaseURL    string
	HTTPClient *http.Client
}

func (h *HuggingFaceClient) Generate(ctx context.Context, prompt string) (string, error) {
	if h == nil || h.Token == "" {
		return "", ErrAIKeyNotSet
	}
	body := map[string]any{
		"inputs": prompt,
		"parameters": map[string]any{
			"max_new_tokens":   512,
			"temperature":      0.3,
			"return_full_text": false,
		},
	}
	endpoint := fmt.Sprintf("%s/models/%s", baseURLOrDefault(h.BaseURL, defaultHuggingFaceBaseURL), h.Model)
	raw, err := postJSON(ctx, httpClientOrDefault(h.HTTPClient), endpoint, "hf", map[string]string{
		"Authorization": "Bearer " + h.Token,
		// load cold models instead of failing with "loading"
		"x-wait-for-model": "true",
	}, body)
	if err != nil {
		return "", err
	}

	var out []struct {
		GeneratedText string `json:"generated_text"`
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		preview := string(raw)
		if len(preview) > 200 {
			preview = preview[:200] + "..."
		}
		return "", fmt.Errorf("decode hf response error: %v | body: %s", err, preview)
	}
	if len(out) == 0 {
		return "", nil
	}
	return out[0].GeneratedText, nil
}
