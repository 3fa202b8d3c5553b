package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/akshatyadav31/Lumora-Ai/internal/domain"
	lerrors "github.com/akshatyadav31/Lumora-Ai/internal/errors"
	"github.com/akshatyadav31/Lumora-Ai/internal/policy"
)

var refusalMessages = map[string]string{
	policy.ReasonEmptyQuestion: "Please enter a question.",
	policy.ReasonNoDataset:     "Please select a dataset before asking a question.",
	policy.ReasonMissingAPIKey: "Please enter your OpenRouter API key in the settings.",
}

// turn is the snapshot a submission works from. Settings or dataset changes
// made while it runs do not affect it.
type turn struct {
	id       string
	question string
	dataset  *domain.Dataset
	rows     []domain.Row
	provider domain.ProviderConfig
}

func (t *turn) path() domain.AnalysisPath {
	if t.provider.Provider.IsLive() && len(t.rows) > 0 {
		return domain.PathLive
	}
	return domain.PathCanned
}

// SendMessage runs one conversation turn and returns the assistant message
// that closed it. Turn failures are reported in that message, flagged with
// IsError, never as an error. An error is returned only when the submission
// is refused before the turn starts, or when another turn is in flight.
func (s *Service) SendMessage(ctx context.Context, content string) (*domain.Message, error) {
	if err := s.acquire(); err != nil {
		return nil, err
	}
	defer s.release()

	t, err := s.admit(ctx, content)
	if err != nil {
		return nil, err
	}
	log := s.log.WithFields(logrus.Fields{
		"turn_id":    t.id,
		"dataset_id": t.dataset.DatasetID,
		"provider":   t.provider.Provider,
		"path":       t.path(),
	})

	s.transition(ctx, domain.TurnStateSubmitting)
	if _, err := s.appendMessage(ctx, domain.RoleUser, t.question, nil); err != nil {
		s.transition(ctx, domain.TurnStateIdle)
		return nil, err
	}

	result, err := s.analyze(ctx, t, log)
	var reply *domain.Message
	if err != nil {
		log.WithError(err).Warn("turn failed")
		s.metrics.turnResolved(string(t.path()), "failed")
		reply, err = s.appendMessage(ctx, domain.RoleAssistant, "Error: "+err.Error(), func(m *domain.Message) {
			m.IsError = true
		})
		s.transition(ctx, domain.TurnStateFailed)
	} else {
		log.WithField("rows", len(result.Data)).Info("turn succeeded")
		s.metrics.turnResolved(string(t.path()), "succeeded")
		reply, err = s.appendMessage(ctx, domain.RoleAssistant, result.Explanation, func(m *domain.Message) {
			m.SQL = result.SQL
			m.Data = result.Data
			m.Visualization = result.Visualization
		})
		s.transition(ctx, domain.TurnStateSucceeded)
	}
	s.transition(ctx, domain.TurnStateIdle)
	return reply, err
}

// admit snapshots the turn inputs and asks the policy whether it may start.
func (s *Service) admit(ctx context.Context, content string) (*turn, error) {
	s.mu.Lock()
	t := &turn{
		id:       uuid.New().String(),
		question: strings.TrimSpace(content),
		rows:     s.activeRows,
		provider: s.provider,
	}
	activeID := s.activeID
	s.mu.Unlock()

	if activeID != "" {
		ds, err := s.store.GetDataset(ctx, activeID)
		if err != nil {
			return nil, lerrors.Wrap(lerrors.KindInternal, "failed to get dataset", err)
		}
		t.dataset = ds
	}

	decision, err := s.policy.Evaluate(ctx, policy.TurnInput{
		Question:        t.question,
		DatasetSelected: t.dataset != nil,
		Provider:        string(t.provider.Provider),
		APIKeySet:       strings.TrimSpace(t.provider.APIKey) != "",
	})
	if err != nil {
		return nil, lerrors.Wrap(lerrors.KindInternal, "failed to evaluate turn policy", err)
	}
	if !decision.Allow {
		s.metrics.turnRefused(decision.Reason)
		s.log.WithField("reason", decision.Reason).Info("turn refused")
		msg, ok := refusalMessages[decision.Reason]
		if !ok {
			msg = "The question was refused."
		}
		return nil, lerrors.New(lerrors.KindUnsupportedInput, msg)
	}
	return t, nil
}

func (s *Service) analyze(ctx context.Context, t *turn, log logrus.FieldLogger) (*domain.AnalysisResult, error) {
	if t.path() == domain.PathCanned {
		return s.canned.Respond(ctx, t.question, t.dataset.Name)
	}

	result, err := s.analyzer.Generate(ctx, t.question, t.dataset.Columns, t.provider)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	data, err := s.executor.Execute(ctx, result.SQL, t.rows)
	s.metrics.query(time.Since(start))
	if err != nil {
		return nil, err
	}
	result.Data = data

	if v := result.Visualization; v != nil && len(data) > 0 && !hasKeys(data[0], v.XAxisKey, v.DataKey) {
		log.WithFields(logrus.Fields{"x_axis_key": v.XAxisKey, "data_key": v.DataKey}).
			Warn("visualization keys do not name result columns, dropping chart")
		result.Visualization = nil
	}
	return result, nil
}

func hasKeys(row domain.Row, keys ...string) bool {
	for _, k := range keys {
		if _, ok := row.Get(k); !ok {
			return false
		}
	}
	return true
}
