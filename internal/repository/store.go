// Package repository holds the working-table executor and the in-process
// stores for datasets and the conversation transcript.
package repository

import (
	"context"

	"github.com/akshatyadav31/Lumora-Ai/internal/domain"
)

// Store defines the interface for dataset and transcript storage.
type Store interface {
	// Datasets
	SaveDataset(ctx context.Context, ds *domain.Dataset, rows []domain.Row) error
	GetDataset(ctx context.Context, datasetID string) (*domain.Dataset, error)
	GetDatasetRows(ctx context.Context, datasetID string) ([]domain.Row, error)
	ListDatasets(ctx context.Context) ([]domain.Dataset, error)

	// Transcript
	AppendMessage(ctx context.Context, msg *domain.Message) error
	GetMessages(ctx context.Context, limit int) ([]domain.Message, error)
	CountMessages(ctx context.Context) (int, error)
}

// Executor runs SQL against the working table.
type Executor interface {
	Execute(ctx context.Context, query string, rows []domain.Row) ([]domain.Row, error)
	Load(ctx context.Context, rows []domain.Row) error
	Run(ctx context.Context, query string) ([]domain.Row, error)
	Reset(ctx context.Context) error
}

var (
	_ Store    = (*MemoryStore)(nil)
	_ Executor = (*SQLiteExecutor)(nil)
)
