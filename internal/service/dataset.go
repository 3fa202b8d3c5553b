package service

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/akshatyadav31/Lumora-Ai/internal/domain"
	lerrors "github.com/akshatyadav31/Lumora-Ai/internal/errors"
	"github.com/akshatyadav31/Lumora-Ai/internal/ingest"
	"github.com/akshatyadav31/Lumora-Ai/internal/schema"
)

// UploadDataset parses an uploaded file, infers its schema, makes it the
// active dataset and acknowledges it in the transcript. Parse failures leave
// every piece of state untouched.
func (s *Service) UploadDataset(ctx context.Context, filename string, r io.Reader) (*domain.Dataset, error) {
	if err := s.acquire(); err != nil {
		return nil, err
	}
	defer s.release()

	format, err := ingest.DetectFormat(filename)
	if err != nil {
		s.metrics.upload("unsupported", "error")
		return nil, err
	}

	rows, err := ingest.ParseFile(ctx, filename, r)
	if err != nil {
		s.metrics.upload(string(format), "error")
		s.log.WithError(err).WithField("file", filename).Warn("upload rejected")
		return nil, err
	}

	columns := schema.InferSchema(rows)
	ds := &domain.Dataset{
		DatasetID: "ds_" + uuid.New().String(),
		Name:      filename,
		RowCount:  len(rows),
		Columns:   columns,
		CreatedAt: time.Now().UTC(),
	}
	log := s.log.WithFields(logrus.Fields{"dataset_id": ds.DatasetID, "rows": ds.RowCount})

	mixed := schema.Conflicts(rows, columns)
	if len(mixed) > 0 {
		log.WithField("columns", mixed).Warn("columns hold mixed value types; typed from the first row")
	}

	if err := s.swapWorkingTable(ctx, rows); err != nil {
		s.metrics.upload(string(format), "error")
		return nil, err
	}
	if err := s.store.SaveDataset(ctx, ds, rows); err != nil {
		s.metrics.upload(string(format), "error")
		return nil, lerrors.Wrap(lerrors.KindInternal, "failed to save dataset", err)
	}

	s.mu.Lock()
	s.activeID = ds.DatasetID
	s.activeRows = rows
	s.mu.Unlock()

	s.metrics.upload(string(format), "ok")
	log.Info("dataset uploaded")

	if _, err := s.appendMessage(ctx, domain.RoleAssistant, uploadAck(ds, mixed), nil); err != nil {
		return nil, err
	}
	s.transition(ctx, domain.TurnStateIdle)
	return ds, nil
}

func uploadAck(ds *domain.Dataset, mixed []string) string {
	msg := fmt.Sprintf("I've successfully loaded %s with %d rows. I've analyzed the schema and detected %d columns.",
		ds.Name, ds.RowCount, len(ds.Columns))
	if len(mixed) > 0 {
		msg += fmt.Sprintf(" Note: %s hold mixed value types, so their types come from the first row.", strings.Join(mixed, ", "))
	}
	return msg
}

// SelectDataset makes id the active dataset. The working table is emptied
// first, so nothing from the previous dataset is visible afterwards. Demo
// datasets carry no rows and are answered by the canned responder.
func (s *Service) SelectDataset(ctx context.Context, id string) (*domain.Dataset, error) {
	if err := s.acquire(); err != nil {
		return nil, err
	}
	defer s.release()

	ds, err := s.store.GetDataset(ctx, id)
	if err != nil {
		return nil, lerrors.Wrap(lerrors.KindInternal, "failed to get dataset", err)
	}
	if ds == nil {
		return nil, lerrors.New(lerrors.KindNotFound, fmt.Sprintf("dataset %s not found", id))
	}

	rows, err := s.store.GetDatasetRows(ctx, id)
	if err != nil {
		return nil, lerrors.Wrap(lerrors.KindInternal, "failed to get dataset rows", err)
	}
	if err := s.swapWorkingTable(ctx, rows); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.activeID = ds.DatasetID
	s.activeRows = rows
	s.mu.Unlock()

	s.log.WithFields(logrus.Fields{"dataset_id": id, "rows": len(rows)}).Info("dataset selected")
	s.transition(ctx, domain.TurnStateIdle)
	return ds, nil
}

// swapWorkingTable evicts the current table and loads rows, if any. Callers
// hold the in-flight slot, so no query can observe a half-swapped table.
func (s *Service) swapWorkingTable(ctx context.Context, rows []domain.Row) error {
	if err := s.executor.Reset(ctx); err != nil {
		return lerrors.Wrap(lerrors.KindExecution, "failed to reset working table", err)
	}
	if len(rows) == 0 {
		return nil
	}
	if err := s.executor.Load(ctx, rows); err != nil {
		_ = s.executor.Reset(ctx)
		return err
	}
	return nil
}

// ListDatasets returns demo and uploaded datasets, demos first.
func (s *Service) ListDatasets(ctx context.Context) ([]domain.Dataset, error) {
	list, err := s.store.ListDatasets(ctx)
	if err != nil {
		return nil, lerrors.Wrap(lerrors.KindInternal, "failed to list datasets", err)
	}
	return list, nil
}

// ActiveDataset returns the active dataset, or nil when none is selected.
func (s *Service) ActiveDataset(ctx context.Context) (*domain.Dataset, error) {
	s.mu.Lock()
	id := s.activeID
	s.mu.Unlock()

	if id == "" {
		return nil, nil
	}
	ds, err := s.store.GetDataset(ctx, id)
	if err != nil {
		return nil, lerrors.Wrap(lerrors.KindInternal, "failed to get dataset", err)
	}
	return ds, nil
}
