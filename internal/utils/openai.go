package utils

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"
)

// OpenAIClient calls the Responses API and returns the generated text.
type OpenAIClient struct {
	APIKey  string
	BaseURL string
	Model   string
	DryRun  bool // canned answer, no HTTP

	http *http.Client
}

// APIError is a non-2xx answer from the upstream generator.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("openai: status=%d code=%s: %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("openai: status=%d", e.StatusCode)
}

type responsesRequest struct {
	Model string `json:"model"`
	Input string `json:"input"`
}

type responsesResponse struct {
	OutputText string `json:"output_text"`
	Output     []struct {
		Type    string `json:"type"`
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	} `json:"output"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func NewOpenAIClient(apiKey, baseURL, model string, timeout time.Duration, dryRun bool) *OpenAIClient {
	return &OpenAIClient{
		APIKey:  apiKey,
		BaseURL: strings.TrimRight(baseURL, "/"),
		Model:   model,
		DryRun:  dryRun,
		http:    &http.Client{Timeout: timeout},
	}
}

// Generate sends the prompt and returns the concatenated output text.
func (c *OpenAIClient) Generate(ctx context.Context, prompt string) (string, error) {
	if c.DryRun || c.APIKey == "" || c.APIKey == "dry-run" {
		log.Printf("[openai][dry-run] model=%s prompt_len=%d", c.Model, len(prompt))
		return dryRunAnswer(prompt), nil
	}

	b, err := json.Marshal(responsesRequest{Model: c.Model, Input: prompt})
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/v1/responses", bytes.NewReader(b))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.APIKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("openai request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	var parsed responsesResponse
	jsonErr := json.Unmarshal(body, &parsed)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		if jsonErr == nil && parsed.Error != nil {
			apiErr.Code = parsed.Error.Code
			apiErr.Message = parsed.Error.Message
		}
		return "", apiErr
	}
	if jsonErr != nil {
		return "", fmt.Errorf("parse response: %w", jsonErr)
	}

	text := parsed.OutputText
	if text == "" {
		var sb strings.Builder
		for _, item := range parsed.Output {
			for _, part := range item.Content {
				if part.Type == "output_text" {
					sb.WriteString(part.Text)
				}
			}
		}
		text = sb.String()
	}
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("no output from OpenAI")
	}
	return text, nil
}

func dryRunAnswer(prompt string) string {
	seed := "the task"
	if i := strings.Index(prompt, `"`); i >= 0 {
		if j := strings.Index(prompt[i+1:], `"`); j > 0 {
			seed = prompt[i+1 : i+1+j]
		}
	}
	return fmt.Sprintf("- Break down %s into steps\n- Schedule time for %s\n- Review progress on %s\n", seed, seed, seed)
}
