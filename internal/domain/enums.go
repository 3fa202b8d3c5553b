// Package domain defines the core domain models for Lumora.
package domain

// ColumnType is the semantic type inferred for a column.
type ColumnType string

const (
	ColumnTypeString  ColumnType = "string"
	ColumnTypeNumber  ColumnType = "number"
	ColumnTypeDate    ColumnType = "date"
	ColumnTypeBoolean ColumnType = "boolean"
	ColumnTypeUnknown ColumnType = "unknown"
)

// VisualizationType is the chart kind requested for a result.
type VisualizationType string

const (
	VisualizationBar  VisualizationType = "bar"
	VisualizationLine VisualizationType = "line"
	VisualizationPie  VisualizationType = "pie"
	VisualizationArea VisualizationType = "area"
)

// Valid reports whether t is one of the supported chart kinds.
func (t VisualizationType) Valid() bool {
	switch t {
	case VisualizationBar, VisualizationLine, VisualizationPie, VisualizationArea:
		return true
	}
	return false
}

// Role is the author of a transcript message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// TurnState is the conversation state machine position.
type TurnState string

const (
	TurnStateIdle       TurnState = "idle"
	TurnStateSubmitting TurnState = "submitting"
	TurnStateSucceeded  TurnState = "succeeded"
	TurnStateFailed     TurnState = "failed"
)

// Provider selects the language-model backend.
type Provider string

const (
	ProviderOpenRouter Provider = "openrouter"
	ProviderGemini     Provider = "gemini"
)

// Valid reports whether p is a known provider id.
func (p Provider) Valid() bool {
	return p == ProviderOpenRouter || p == ProviderGemini
}

// IsLive reports whether the provider is wired to a real backend.
func (p Provider) IsLive() bool {
	return p == ProviderOpenRouter
}

// AnalysisPath records which pipeline answered a turn.
type AnalysisPath string

const (
	PathLive   AnalysisPath = "live"
	PathCanned AnalysisPath = "canned"
)
