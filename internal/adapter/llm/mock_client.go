package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"
)

var (
	columnListPattern = regexp.MustCompile(`(?m)has the following columns: (.*)\.\s*$`)
	columnPattern     = regexp.MustCompile(`^(.+) \((\w+)\)$`)
)

// MockClient is a mock implementation of LLMClient for testing and offline
// demos. It answers with an analysis object built from the column list in the
// system prompt.
type MockClient struct{}

// NewMockClient creates a new mock LLM client.
func NewMockClient() *MockClient {
	return &MockClient{}
}

// Ensure MockClient implements LLMClient interface.
var _ LLMClient = (*MockClient)(nil)

// CreateChatCompletion returns a mock response.
func (m *MockClient) CreateChatCompletion(ctx context.Context, req *ChatCompletionRequest) (*ChatCompletionResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	responseContent := m.generateMockResponse(req)

	return &ChatCompletionResponse{
		ID:      fmt.Sprintf("mock-chatcmpl-%d", time.Now().UnixNano()),
		Object:  "chat.completion",
		Created: time.Now().Unix(),
		Model:   req.Model,
		Choices: []Choice{
			{
				Index: 0,
				Message: &ChatMessage{
					Role:    "assistant",
					Content: responseContent,
				},
				FinishReason: "stop",
			},
		},
		Usage: &Usage{
			PromptTokens:     m.estimateTokens(req),
			CompletionTokens: len(responseContent) / 4,
			TotalTokens:      m.estimateTokens(req) + len(responseContent)/4,
		},
	}, nil
}

// ListModels returns a list of mock models.
func (m *MockClient) ListModels(ctx context.Context) ([]Model, error) {
	return []Model{
		{
			ID:      "mock/sql-analyst",
			Object:  "model",
			Created: time.Now().Unix(),
			OwnedBy: "mock",
		},
	}, nil
}

type mockColumn struct {
	name string
	kind string
}

type mockAnalysis struct {
	SQL           string             `json:"sql"`
	Explanation   string             `json:"explanation"`
	Visualization *mockVisualization `json:"visualization,omitempty"`
}

type mockVisualization struct {
	Type     string `json:"type"`
	XAxisKey string `json:"xAxisKey"`
	DataKey  string `json:"dataKey"`
	Title    string `json:"title"`
}

// generateMockResponse aggregates the first numeric column by the first
// categorical one when both exist, and previews the table otherwise.
func (m *MockClient) generateMockResponse(req *ChatCompletionRequest) string {
	var system string
	for _, msg := range req.Messages {
		if msg.Role == "system" {
			system = msg.Content
			break
		}
	}
	cols := parseColumns(system)

	var dim, measure string
	for _, c := range cols {
		switch {
		case c.kind == "number" && measure == "":
			measure = c.name
		case (c.kind == "string" || c.kind == "date") && dim == "":
			dim = c.name
		}
	}

	out := mockAnalysis{
		SQL:         "SELECT * FROM uploaded_data LIMIT 100",
		Explanation: "[MOCK] Here is a preview of the first 100 rows.",
	}
	if dim != "" && measure != "" {
		total := "total_" + measure
		out.SQL = fmt.Sprintf("SELECT %s, SUM(%s) AS %s FROM uploaded_data GROUP BY %s ORDER BY %s DESC LIMIT 100",
			quote(dim), quote(measure), quote(total), quote(dim), quote(total))
		out.Explanation = fmt.Sprintf("[MOCK] Total %s for each %s.", measure, dim)
		out.Visualization = &mockVisualization{
			Type:     "bar",
			XAxisKey: dim,
			DataKey:  total,
			Title:    fmt.Sprintf("%s by %s", measure, dim),
		}
	}

	b, _ := json.Marshal(out)
	return string(b)
}

func parseColumns(prompt string) []mockColumn {
	match := columnListPattern.FindStringSubmatch(prompt)
	if match == nil {
		return nil
	}
	var cols []mockColumn
	for _, part := range strings.Split(match[1], ", ") {
		if m := columnPattern.FindStringSubmatch(strings.TrimSpace(part)); m != nil {
			cols = append(cols, mockColumn{name: m[1], kind: m[2]})
		}
	}
	return cols
}

func quote(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// estimateTokens provides a rough token count estimate.
func (m *MockClient) estimateTokens(req *ChatCompletionRequest) int {
	total := 0
	for _, msg := range req.Messages {
		total += len(msg.Content) / 4
	}
	return total
}
