package policy

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultPolicy(t *testing.T) {
	ctx := context.Background()
	engine, err := NewDefaultEngine(ctx)
	require.NoError(t, err)

	tests := []struct {
		name       string
		input      TurnInput
		wantAllow  bool
		wantReason string
	}{
		{
			name:      "live provider with key",
			input:     TurnInput{Question: "top regions", DatasetSelected: true, Provider: "openrouter", APIKeySet: true},
			wantAllow: true,
		},
		{
			name:      "other provider needs no key",
			input:     TurnInput{Question: "top regions", DatasetSelected: true, Provider: "gemini"},
			wantAllow: true,
		},
		{
			name:       "blank question",
			input:      TurnInput{Question: "  \n", DatasetSelected: false, Provider: "openrouter"},
			wantReason: ReasonEmptyQuestion,
		},
		{
			name:       "no dataset",
			input:      TurnInput{Question: "top regions", Provider: "openrouter", APIKeySet: true},
			wantReason: ReasonNoDataset,
		},
		{
			name:       "missing key",
			input:      TurnInput{Question: "top regions", DatasetSelected: true, Provider: "openrouter"},
			wantReason: ReasonMissingAPIKey,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := engine.Evaluate(ctx, tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.wantAllow, got.Allow)
			assert.Equal(t, tt.wantReason, got.Reason)
		})
	}
}

func TestNewEngineInvalidPolicy(t *testing.T) {
	_, err := NewEngine(context.Background(), "package lumora.turn\n\ndecision := {")
	assert.Error(t, err)
}

func TestEvaluateWithoutDecision(t *testing.T) {
	engine, err := NewEngine(context.Background(), "package lumora.turn\n\nimport rego.v1\n\ndecision := true if { input.never }\n")
	require.NoError(t, err)

	_, err = engine.Evaluate(context.Background(), TurnInput{Question: "q"})
	assert.Error(t, err)
}
