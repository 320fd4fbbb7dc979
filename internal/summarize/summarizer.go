package summarize

import (
	"context"
	"fmt"

	"secagent/internal/model"
)

// Format selects the summary output format.
type Format string

const (
	FormatMarkdown Format = "md"
	FormatJSON     Format = "json"
)

// ParseFormat validates a summary format string.
func ParseFormat(s string) (Format, error) {
	switch s {
	case "md", "markdown":
		return FormatMarkdown, nil
	case "json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("invalid summary format: %s (want md or json)", s)
	}
}

// Summarizer produces a human-readable synopsis of a merged report.
// Implementations must treat the report as read-only and must return the
// same summary for the same report when they are deterministic.
type Summarizer interface {
	Summarize(ctx context.Context, rep model.Report, format Format) (string, error)
}

// Select returns the summarizer for the given provider name. The mock
// provider needs no credentials and is fully deterministic.
func Select(provider, apiKey, llmModel string) (Summarizer, error) {
	switch provider {
	case "mock":
		return MockSummarizer{}, nil
	case "openai":
		return NewOpenAISummarizer(apiKey, llmModel)
	default:
		return nil, fmt.Errorf("unsupported summarizer provider: %s", provider)
	}
}
