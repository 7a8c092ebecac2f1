package openai

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responsesRequest struct {
	Model string    `json:"model"`
	Input []message `json:"input"`
	Text  *struct {
		Format map[string]any `json:"format"`
	} `json:"text,omitempty"`
	Temperature *float64 `json:"temperature,omitempty"`
}

type responsesResponse struct {
	Output []struct {
		Type    string `json:"type"`
		Role    string `json:"role,omitempty"`
		Content []struct {
			Type    string `json:"type"`
			Text    string `json:"text,omitempty"`
			Refusal string `json:"refusal,omitempty"`
		} `json:"content,omitempty"`
	} `json:"output"`
	Refusal string `json:"refusal,omitempty"`
}

func (r responsesResponse) outputText() string {
	var out strings.Builder
	for _, item := range r.Output {
		if item.Type != "message" || item.Role != "assistant" {
			continue
		}
		for _, c := range item.Content {
			if c.Type == "output_text" {
				out.WriteString(c.Text)
			}
		}
	}
	return out.String()
}

func (r responsesResponse) refusal() string {
	if r.Refusal != "" {
		return r.Refusal
	}
	for _, item := range r.Output {
		for _, c := range item.Content {
			if c.Type == "refusal" && c.Refusal != "" {
				return c.Refusal
			}
		}
	}
	return ""
}

func (c *client) newRequest(system, user string) responsesRequest {
	return responsesRequest{
		Model:       c.model,
		Input:       []message{{Role: "system", Content: system}, {Role: "user", Content: user}},
		Temperature: c.temperature,
	}
}

func (c *client) respond(ctx context.Context, req responsesRequest) (string, error) {
	var resp responsesResponse
	if err := c.do(ctx, "POST", "/v1/responses", req.Model, req, &resp); err != nil {
		return "", err
	}
	if r := resp.refusal(); r != "" {
		return "", fmt.Errorf("model refused: %s", r)
	}
	text := resp.outputText()
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("no output_text found in response")
	}
	return text, nil
}

func (c *client) GenerateJSONText(ctx context.Context, system, user, schemaName string, schema map[string]any) (string, error) {
	req := c.newRequest(system, user)
	req.Text = &struct {
		Format map[string]any `json:"format"`
	}{Format: map[string]any{"type": "json_object"}}
	if schema != nil {
		if schemaName == "" {
			return "", errors.New("schemaName required")
		}
		req.Text.Format = map[string]any{
			"type":   "json_schema",
			"name":   schemaName,
			"schema": schema,
			"strict": true,
		}
	}
	return c.respond(ctx, req)
}

func (c *client) GenerateText(ctx context.Context, system, user string) (string, error) {
	return c.respond(ctx, c.newRequest(system, user))
}
