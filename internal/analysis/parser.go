package analysis

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/akshatyadav31/Lumora-Ai/internal/domain"
	lerrors "github.com/akshatyadav31/Lumora-Ai/internal/errors"
)

var (
	openingFence = regexp.MustCompile("^```[A-Za-z0-9_-]*[ \t]*\r?\n?")
	closingFence = regexp.MustCompile("\r?\n?```$")
)

// Provider failures. Each is shown to the user as is.
var (
	ErrNoContent     = lerrors.New(lerrors.KindProvider, "No content received from the language model.")
	ErrInvalidFormat = lerrors.New(lerrors.KindProvider, "The AI returned an invalid response format.")
	ErrProviderCall  = lerrors.New(lerrors.KindProvider, "Failed to fetch a response from the language model provider.")
	ErrUnimplemented = lerrors.New(lerrors.KindUnimplemented,
		"Live analysis is not implemented for this provider. Select OpenRouter and provide an API key.")
)

type response struct {
	SQL           *string                   `json:"sql"`
	Explanation   string                    `json:"explanation"`
	Visualization *domain.VisualizationSpec `json:"visualization"`
}

// StripCodeFences removes a Markdown code fence wrapped around the text, if
// any, and trims surrounding whitespace.
func StripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = openingFence.ReplaceAllString(s, "")
	s = closingFence.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

// ParseResponse decodes the model's reply into an analysis result. A reply
// without a sql field is rejected. A visualization with an unknown chart type
// is dropped rather than failing the turn.
func ParseResponse(content string) (*domain.AnalysisResult, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrNoContent
	}

	var resp response
	if err := json.Unmarshal([]byte(StripCodeFences(content)), &resp); err != nil {
		return nil, ErrInvalidFormat
	}
	if resp.SQL == nil || strings.TrimSpace(*resp.SQL) == "" {
		return nil, ErrInvalidFormat
	}

	result := &domain.AnalysisResult{
		SQL:         strings.TrimSpace(*resp.SQL),
		Explanation: resp.Explanation,
	}
	if v := resp.Visualization; v != nil {
		v.Type = domain.VisualizationType(strings.ToLower(string(v.Type)))
		if v.Type.Valid() {
			result.Visualization = v
		}
	}
	return result, nil
}
