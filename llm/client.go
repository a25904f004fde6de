// Package llm turns a combined audit into a short narrative summary via an
// OpenAI-compatible chat API. The API key is bring-your-own, supplied per
// request.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/use-agent/pagepulse/models"
)

// Client is a lightweight OpenAI-compatible chat client.
// It uses net/http directly — no third-party SDK needed.
type Client struct {
	httpClient *http.Client
	baseURL    string
	model      string
}

// NewClient creates a chat client. Pass nil to use a default http.Client.
func NewClient(httpClient *http.Client, baseURL, model string) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		model:      model,
	}
}

// chatRequest is the chat completion request body.
type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatResponse is the minimal chat completion response we need.
type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// chatErrorResponse captures an API error from the LLM provider.
type chatErrorResponse struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    string `json:"code"`
	} `json:"error"`
}

// complete sends one chat completion and returns the assistant's text.
func (c *Client) complete(ctx context.Context, apiKey, system, user string) (string, error) {
	reqBody := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Temperature: 0.3,
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	endpoint := strings.TrimRight(c.baseURL, "/") + "/chat/completions"

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", models.NewAuditError(models.ErrCodeLLMFailure, "LLM request failed", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", models.NewAuditError(models.ErrCodeLLMFailure, "failed to read LLM response", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", classifyLLMError(resp.StatusCode, respBody)
	}

	var chatResp chatResponse
	if err := json.Unmarshal(respBody, &chatResp); err != nil {
		return "", models.NewAuditError(models.ErrCodeLLMFailure, "failed to parse LLM response", err)
	}
	if len(chatResp.Choices) == 0 {
		return "", models.NewAuditError(models.ErrCodeLLMFailure, "LLM returned no choices", nil)
	}

	return chatResp.Choices[0].Message.Content, nil
}

// classifyLLMError maps HTTP status codes to appropriate error codes. The
// upstream status rides along so the API layer can pass it through.
func classifyLLMError(statusCode int, body []byte) *models.AuditError {
	var errResp chatErrorResponse
	msg := "LLM API error"
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error.Message != "" {
		msg = errResp.Error.Message
	}

	switch {
	case statusCode == http.StatusUnauthorized || statusCode == http.StatusForbidden:
		return models.NewUpstreamError(models.ErrCodeLLMAuthFailure, msg, statusCode, nil)
	case statusCode == http.StatusTooManyRequests:
		return models.NewUpstreamError(models.ErrCodeLLMRateLimited, msg, statusCode, nil)
	default:
		return models.NewUpstreamError(models.ErrCodeLLMFailure,
			fmt.Sprintf("LLM API returned %d: %s", statusCode, msg), statusCode, nil)
	}
}
