// Package ai is a thin client for the Gemini REST API producing words,
// sentence challenges, related words, mnemonic images, pronunciations and
// guided practice conversations.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/example/verbadiem/internal/config"
)

// ErrNotConfigured is returned when no API key is set
var ErrNotConfigured = errors.New("gemini api key is not set")

// ErrEmptyResponse is returned when a response carries no usable content
var ErrEmptyResponse = errors.New("empty response from gemini")

// Client talks to the Gemini API. Requests are not retried.
type Client struct {
	apiKey     string
	baseURL    string
	textModel  string
	imageModel string
	ttsModel   string
	httpClient *http.Client
}

// New creates a client from the configuration
func New(cfg *config.Config) (*Client, error) {
	if cfg.GeminiAPIKey == "" {
		return nil, ErrNotConfigured
	}

	return &Client{
		apiKey:     cfg.GeminiAPIKey,
		baseURL:    strings.TrimRight(cfg.GeminiBaseURL, "/"),
		textModel:  cfg.GeminiTextModel,
		imageModel: cfg.GeminiImageModel,
		ttsModel:   cfg.GeminiTTSModel,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}, nil
}

// Part is one piece of message content
type Part struct {
	Text         string        `json:"text,omitempty"`
	InlineData   *InlineData   `json:"inlineData,omitempty"`
	FunctionCall *FunctionCall `json:"functionCall,omitempty"`
}

// InlineData is base64 encoded binary content
type InlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

// FunctionCall is a tool invocation requested by the model
type FunctionCall struct {
	Name string          `json:"name"`
	Args json.RawMessage `json:"args,omitempty"`
}

// Content is one conversation turn
type Content struct {
	Role  string `json:"role,omitempty"`
	Parts []Part `json:"parts"`
}

// Schema describes structured output
type Schema struct {
	Type       string             `json:"type"`
	Properties map[string]*Schema `json:"properties,omitempty"`
	Items      *Schema            `json:"items,omitempty"`
	Required   []string           `json:"required,omitempty"`
}

// FunctionDeclaration declares a tool the model may call
type FunctionDeclaration struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Parameters  *Schema `json:"parameters,omitempty"`
}

// Tool groups function declarations
type Tool struct {
	FunctionDeclarations []FunctionDeclaration `json:"functionDeclarations"`
}

// GenerationConfig tunes a generateContent request
type GenerationConfig struct {
	Temperature        *float64 `json:"temperature,omitempty"`
	ResponseMimeType   string   `json:"responseMimeType,omitempty"`
	ResponseSchema     *Schema  `json:"responseSchema,omitempty"`
	ResponseModalities []string `json:"responseModalities,omitempty"`
}

// GenerateRequest is the body of a generateContent call
type GenerateRequest struct {
	Contents          []Content         `json:"contents"`
	SystemInstruction *Content          `json:"systemInstruction,omitempty"`
	GenerationConfig  *GenerationConfig `json:"generationConfig,omitempty"`
	Tools             []Tool            `json:"tools,omitempty"`
}

// GenerateResponse is the body returned by generateContent
type GenerateResponse struct {
	Candidates []struct {
		Content Content `json:"content"`
	} `json:"candidates"`
}

type apiError struct {
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error,omitempty"`
}

func temperature(t float64) *float64 {
	return &t
}

// generate calls generateContent on model and returns the first candidate
func (c *Client) generate(ctx context.Context, model string, request GenerateRequest) (Content, error) {
	var response GenerateResponse
	if err := c.post(ctx, model+":generateContent", request, &response); err != nil {
		return Content{}, err
	}
	if len(response.Candidates) == 0 {
		return Content{}, ErrEmptyResponse
	}
	return response.Candidates[0].Content, nil
}

// generateJSON runs a structured output request and decodes the text into out
func (c *Client) generateJSON(ctx context.Context, prompt string, schema *Schema, temp float64, out interface{}) error {
	content, err := c.generate(ctx, c.textModel, GenerateRequest{
		Contents: []Content{{Role: "user", Parts: []Part{{Text: prompt}}}},
		GenerationConfig: &GenerationConfig{
			Temperature:      temperature(temp),
			ResponseMimeType: "application/json",
			ResponseSchema:   schema,
		},
	})
	if err != nil {
		return err
	}

	text := strings.TrimSpace(textOf(content))
	if text == "" {
		return ErrEmptyResponse
	}
	if err := json.Unmarshal([]byte(text), out); err != nil {
		return fmt.Errorf("failed to decode structured response: %w", err)
	}
	return nil
}

func (c *Client) post(ctx context.Context, method string, request, response interface{}) error {
	requestData, err := json.Marshal(request)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s", c.baseURL, method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(requestData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr apiError
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Error != nil {
			return fmt.Errorf("API error %d: %s", apiErr.Error.Code, apiErr.Error.Message)
		}
		return fmt.Errorf("API error: unexpected status %d", resp.StatusCode)
	}

	if err := json.Unmarshal(body, response); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func textOf(content Content) string {
	var sb strings.Builder
	for _, part := range content.Parts {
		sb.WriteString(part.Text)
	}
	return sb.String()
}
