package summarize

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"secagent/internal/model"
)

const systemPrompt = "You are a senior AppSec engineer. Write concise, high-signal security reports.\n" +
	"Prioritize: top risks, business impact, concrete fixes, upgrade pins.\n" +
	"Assume audience is developers and DevOps. Avoid alarmism. Be actionable."

// OpenAISummarizer asks an OpenAI chat model to summarize the report.
// Failures are the caller's problem to degrade on; this type never panics
// and never mutates the report.
type OpenAISummarizer struct {
	client *openai.Client
	model  string
}

func NewOpenAISummarizer(apiKey, llmModel string) (*OpenAISummarizer, error) {
	if apiKey == "" {
		return nil, errors.New("OPENAI_API_KEY is not set")
	}
	if llmModel == "" {
		llmModel = openai.GPT4oMini
	}
	return &OpenAISummarizer{
		client: openai.NewClient(apiKey),
		model:  llmModel,
	}, nil
}

func (s *OpenAISummarizer) Summarize(ctx context.Context, rep model.Report, format Format) (string, error) {
	trimmed, err := trimReport(rep)
	if err != nil {
		return "", err
	}

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       s.model,
		Temperature: 0.2,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt(trimmed, format)},
		},
	})
	if err != nil {
		return "", fmt.Errorf("summarizer unavailable: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("summarizer unavailable: empty response")
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// trimmedReport keeps token cost low: counts plus only the findings.
type trimmedReport struct {
	Target   string          `json:"target"`
	Summary  model.Summary   `json:"summary"`
	Findings []model.Finding `json:"findings"`
}

func trimReport(rep model.Report) (string, error) {
	t := trimmedReport{
		Target:  rep.Target,
		Summary: rep.Summary,
	}
	for _, res := range rep.Results {
		t.Findings = append(t.Findings, res.Findings...)
	}

	out, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func userPrompt(data string, format Format) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Produce a %s summary of these scan results.\n", strings.ToUpper(string(format)))
	sb.WriteString("Include:\n")
	sb.WriteString("1) Overall risk score (0-10) and rationale\n")
	sb.WriteString("2) Top issues grouped by dependency vs code\n")
	sb.WriteString("3) Concrete remediation steps (pin versions, code changes)\n")
	sb.WriteString("4) Short checklist to merge safely\n")
	if format == FormatJSON {
		sb.WriteString("Return an object with fields: {risk_score, overview, dependencies[], code_issues[], remediation[], checklist[]}\n")
	} else {
		sb.WriteString("Keep it under ~250-300 words.\n")
	}
	fmt.Fprintf(&sb, "\nDATA:\n```json\n%s\n```", data)
	return sb.String()
}
