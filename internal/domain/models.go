package domain

import "time"

// ColumnDefinition describes one field of a dataset.
type ColumnDefinition struct {
	Name string     `json:"name"`
	Type ColumnType `json:"type"`
}

// Dataset is a loaded or built-in table known to the conversation.
type Dataset struct {
	DatasetID string             `json:"dataset_id"`
	Name      string             `json:"name"`
	RowCount  int                `json:"row_count"`
	Columns   []ColumnDefinition `json:"columns"`
	Demo      bool               `json:"demo"`
	CreatedAt time.Time          `json:"created_at"`
}

// VisualizationSpec is the chart mapping returned with an analysis.
// Field names follow the provider response contract.
type VisualizationSpec struct {
	Type     VisualizationType `json:"type"`
	XAxisKey string            `json:"xAxisKey"`
	DataKey  string            `json:"dataKey"`
	Title    string            `json:"title"`
}

// AnalysisResult is the outcome of one analysis request.
type AnalysisResult struct {
	SQL           string             `json:"sql"`
	Explanation   string             `json:"explanation"`
	Visualization *VisualizationSpec `json:"visualization,omitempty"`
	Data          []Row              `json:"data,omitempty"`
}

// Message is one immutable transcript entry.
type Message struct {
	MessageID     string             `json:"message_id"`
	Role          Role               `json:"role"`
	Content       string             `json:"content"`
	CreatedAt     time.Time          `json:"created_at"`
	SQL           string             `json:"sql,omitempty"`
	Data          []Row              `json:"data,omitempty"`
	Visualization *VisualizationSpec `json:"visualization,omitempty"`
	IsError       bool               `json:"is_error,omitempty"`
}

// ProviderConfig carries the settings needed for one provider call.
type ProviderConfig struct {
	Provider Provider `json:"provider"`
	APIKey   string   `json:"-"`
	Model    string   `json:"model"`
}

// TurnStatus is a snapshot of the conversation state.
type TurnStatus struct {
	State           TurnState `json:"state"`
	LastOutcome     TurnState `json:"last_outcome,omitempty"`
	ActiveDatasetID string    `json:"active_dataset_id,omitempty"`
	MessageCount    int       `json:"message_count"`
}
