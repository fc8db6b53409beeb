package script

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/conneroisu/groq-go"

	"sportsreels/pkg/prompts"
)

var _ Generator = (*GroqClient)(nil)

// GroqClient generates narration scripts through the Groq chat API.
type GroqClient struct {
	client  *groq.Client
	model   groq.ChatModel
	prompts *prompts.Prompts
}

func NewGroqClient(apiKey, model string, p *prompts.Prompts) (*GroqClient, error) {
	client, err := groq.NewClient(apiKey)
	if err != nil {
		return nil, fmt.Errorf("create groq client: %w", err)
	}

	return &GroqClient{
		client:  client,
		model:   groq.ChatModel(model),
		prompts: p,
	}, nil
}

func (c *GroqClient) GenerateScript(ctx context.Context, subject, sport, extra string) (string, error) {
	prompt, err := c.prompts.RenderScript(prompts.ScriptParams{
		Subject: subject,
		Sport:   sport,
		Extra:   extra,
	})
	if err != nil {
		return "", fmt.Errorf("render prompt: %w", err)
	}

	content, err := c.generate(ctx, c.prompts.System.Script, prompt, false)
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(content), nil
}

// ExtractKeyMoments asks the model for count short searchable phrases. A
// model failure falls back to deterministic phrases so image discovery
// never blocks the pipeline.
func (c *GroqClient) ExtractKeyMoments(ctx context.Context, subject, sport, scriptText string, count int) ([]string, error) {
	prompt, err := c.prompts.RenderMoments(prompts.MomentsParams{
		Subject: subject,
		Sport:   sport,
		Script:  scriptText,
		Count:   count,
	})
	if err != nil {
		return FallbackMoments(subject, sport, count), nil
	}

	content, err := c.generate(ctx, c.prompts.System.Moments, prompt, true)
	if err != nil {
		return FallbackMoments(subject, sport, count), nil
	}

	moments, err := parseMoments(content)
	if err != nil || len(moments) == 0 {
		return FallbackMoments(subject, sport, count), nil
	}

	if len(moments) > count {
		moments = moments[:count]
	}
	return moments, nil
}

// FallbackMoments is the deterministic phrase set used when the model
// cannot provide key moments.
func FallbackMoments(subject, sport string, count int) []string {
	base := []string{
		fmt.Sprintf("%s %s career", subject, sport),
		fmt.Sprintf("%s action shot", subject),
		fmt.Sprintf("%s championship", subject),
		fmt.Sprintf("%s award", subject),
		fmt.Sprintf("%s iconic moment", subject),
	}

	moments := make([]string, 0, count)
	for i := 0; i < count; i++ {
		moments = append(moments, base[i%len(base)])
	}
	return moments
}

func parseMoments(content string) ([]string, error) {
	var direct []string
	if err := json.Unmarshal([]byte(content), &direct); err == nil && len(direct) > 0 {
		return cleanMoments(direct), nil
	}

	var wrapped map[string][]string
	if err := json.Unmarshal([]byte(content), &wrapped); err != nil {
		return nil, fmt.Errorf("parse moments response: %w", err)
	}

	for _, key := range []string{"moments", "key_moments", "phrases", "results"} {
		if items, ok := wrapped[key]; ok && len(items) > 0 {
			return cleanMoments(items), nil
		}
	}

	for _, items := range wrapped {
		if len(items) > 0 {
			return cleanMoments(items), nil
		}
	}

	return nil, fmt.Errorf("no moments found in response")
}

func cleanMoments(raw []string) []string {
	moments := make([]string, 0, len(raw))
	for _, m := range raw {
		m = strings.TrimSpace(m)
		if m == "" {
			continue
		}
		moments = append(moments, m)
	}
	return moments
}

func (c *GroqClient) generate(ctx context.Context, systemPrompt, userPrompt string, jsonMode bool) (string, error) {
	req := groq.ChatCompletionRequest{
		Model: c.model,
		Messages: []groq.ChatCompletionMessage{
			{Role: groq.RoleSystem, Content: systemPrompt},
			{Role: groq.RoleUser, Content: userPrompt},
		},
	}

	if jsonMode {
		req.ResponseFormat = &groq.ChatResponseFormat{Type: "json_object"}
	}

	resp, err := c.client.ChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("generate: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response")
	}

	content := resp.Choices[0].Message.Content
	if content == "" {
		return "", fmt.Errorf("empty response")
	}

	return content, nil
}
