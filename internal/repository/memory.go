package repository

import (
	"context"
	"fmt"
	"sync"

	"github.com/akshatyadav31/Lumora-Ai/internal/domain"
)

// MemoryStore implements Store in process memory. Nothing survives a restart.
type MemoryStore struct {
	mu       sync.RWMutex
	order    []string
	datasets map[string]domain.Dataset
	rows     map[string][]domain.Row
	messages []domain.Message
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		datasets: make(map[string]domain.Dataset),
		rows:     make(map[string][]domain.Row),
	}
}

// SaveDataset stores or replaces a dataset. Nil rows mark a dataset without
// loaded data.
func (s *MemoryStore) SaveDataset(ctx context.Context, ds *domain.Dataset, rows []domain.Row) error {
	if ds == nil || ds.DatasetID == "" {
		return fmt.Errorf("dataset id is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.datasets[ds.DatasetID]; !ok {
		s.order = append(s.order, ds.DatasetID)
	}
	s.datasets[ds.DatasetID] = cloneDataset(*ds)
	if rows == nil {
		delete(s.rows, ds.DatasetID)
	} else {
		s.rows[ds.DatasetID] = rows
	}
	return nil
}

// GetDataset returns nil when the dataset does not exist.
func (s *MemoryStore) GetDataset(ctx context.Context, datasetID string) (*domain.Dataset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ds, ok := s.datasets[datasetID]
	if !ok {
		return nil, nil
	}
	out := cloneDataset(ds)
	return &out, nil
}

// GetDatasetRows returns the rows stored with a dataset, or nil.
func (s *MemoryStore) GetDatasetRows(ctx context.Context, datasetID string) ([]domain.Row, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rows[datasetID], nil
}

// ListDatasets returns datasets in the order they were first saved.
func (s *MemoryStore) ListDatasets(ctx context.Context) ([]domain.Dataset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Dataset, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, cloneDataset(s.datasets[id]))
	}
	return out, nil
}

// AppendMessage adds a message to the end of the transcript.
func (s *MemoryStore) AppendMessage(ctx context.Context, msg *domain.Message) error {
	if msg == nil || msg.MessageID == "" {
		return fmt.Errorf("message id is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, *msg)
	return nil
}

// GetMessages returns the transcript in order. A positive limit keeps only
// the most recent messages.
func (s *MemoryStore) GetMessages(ctx context.Context, limit int) ([]domain.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	msgs := s.messages
	if limit > 0 && len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}
	out := make([]domain.Message, len(msgs))
	copy(out, msgs)
	return out, nil
}

func (s *MemoryStore) CountMessages(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.messages), nil
}

func cloneDataset(ds domain.Dataset) domain.Dataset {
	cols := make([]domain.ColumnDefinition, len(ds.Columns))
	copy(cols, ds.Columns)
	ds.Columns = cols
	return ds
}
