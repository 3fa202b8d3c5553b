// Package service implements the conversation orchestrator: datasets, turns,
// provider settings and the transcript.
package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/akshatyadav31/Lumora-Ai/internal/adapter/llm"
	"github.com/akshatyadav31/Lumora-Ai/internal/analysis"
	"github.com/akshatyadav31/Lumora-Ai/internal/canned"
	"github.com/akshatyadav31/Lumora-Ai/internal/domain"
	lerrors "github.com/akshatyadav31/Lumora-Ai/internal/errors"
	"github.com/akshatyadav31/Lumora-Ai/internal/policy"
	"github.com/akshatyadav31/Lumora-Ai/internal/repository"
)

// ErrBusy is returned while another turn or dataset change is in flight.
var ErrBusy = lerrors.New(lerrors.KindConflict, "another request is still being processed")

// EventType names a transcript event.
type EventType string

const (
	EventMessage EventType = "message"
	EventState   EventType = "state"
)

// Event is pushed to subscribers whenever the transcript or turn state changes.
type Event struct {
	Type    EventType          `json:"type"`
	Message *domain.Message    `json:"message,omitempty"`
	State   *domain.TurnStatus `json:"state,omitempty"`
}

// Deps are the collaborators a Service needs. Models and Metrics are optional.
type Deps struct {
	Store    repository.Store
	Executor repository.Executor
	Analyzer analysis.Generator
	Canned   *canned.Responder
	Policy   *policy.Engine
	Models   llm.LLMClient
	Metrics  *Metrics
	Log      logrus.FieldLogger
}

type Service struct {
	store    repository.Store
	executor repository.Executor
	analyzer analysis.Generator
	canned   *canned.Responder
	policy   *policy.Engine
	models   llm.LLMClient
	metrics  *Metrics
	log      logrus.FieldLogger

	mu          sync.Mutex
	busy        bool
	state       domain.TurnState
	lastOutcome domain.TurnState
	activeID    string
	activeRows  []domain.Row
	provider    domain.ProviderConfig

	subMu       sync.RWMutex
	nextSub     int
	subscribers map[int]func(Event)
}

// New creates the orchestrator. The demo datasets are registered and the
// first one becomes active.
func New(ctx context.Context, deps Deps, provider domain.ProviderConfig) (*Service, error) {
	if deps.Metrics == nil {
		deps.Metrics = NewMetrics(nil)
	}
	if deps.Log == nil {
		deps.Log = logrus.StandardLogger()
	}
	s := &Service{
		store:       deps.Store,
		executor:    deps.Executor,
		analyzer:    deps.Analyzer,
		canned:      deps.Canned,
		policy:      deps.Policy,
		models:      deps.Models,
		metrics:     deps.Metrics,
		log:         deps.Log,
		state:       domain.TurnStateIdle,
		provider:    provider,
		subscribers: make(map[int]func(Event)),
	}

	demos := canned.Datasets()
	for i := range demos {
		if err := s.store.SaveDataset(ctx, &demos[i], nil); err != nil {
			return nil, err
		}
	}
	if len(demos) > 0 {
		s.activeID = demos[0].DatasetID
	}
	return s, nil
}

// State returns a snapshot of the turn state machine.
func (s *Service) State(ctx context.Context) domain.TurnStatus {
	s.mu.Lock()
	status := domain.TurnStatus{
		State:           s.state,
		LastOutcome:     s.lastOutcome,
		ActiveDatasetID: s.activeID,
	}
	s.mu.Unlock()

	if n, err := s.store.CountMessages(ctx); err == nil {
		status.MessageCount = n
	}
	return status
}

// Subscribe registers fn for every subsequent event and returns a function
// that removes it. fn runs on the publishing goroutine and must not block.
func (s *Service) Subscribe(fn func(Event)) func() {
	s.subMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subscribers[id] = fn
	s.subMu.Unlock()

	return func() {
		s.subMu.Lock()
		delete(s.subscribers, id)
		s.subMu.Unlock()
	}
}

func (s *Service) publish(ev Event) {
	s.subMu.RLock()
	defer s.subMu.RUnlock()
	for _, fn := range s.subscribers {
		fn(ev)
	}
}

// acquire claims the single in-flight slot.
func (s *Service) acquire() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.busy {
		return ErrBusy
	}
	s.busy = true
	return nil
}

func (s *Service) release() {
	s.mu.Lock()
	s.busy = false
	s.mu.Unlock()
}

// transition moves the state machine and tells subscribers.
func (s *Service) transition(ctx context.Context, to domain.TurnState) {
	s.mu.Lock()
	s.state = to
	if to == domain.TurnStateSucceeded || to == domain.TurnStateFailed {
		s.lastOutcome = to
	}
	s.mu.Unlock()

	status := s.State(ctx)
	s.publish(Event{Type: EventState, State: &status})
}

// appendMessage stores msg and tells subscribers. Messages are immutable
// once appended.
func (s *Service) appendMessage(ctx context.Context, role domain.Role, content string, fill func(*domain.Message)) (*domain.Message, error) {
	msg := &domain.Message{
		MessageID: "msg_" + uuid.New().String(),
		Role:      role,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}
	if fill != nil {
		fill(msg)
	}
	if err := s.store.AppendMessage(ctx, msg); err != nil {
		return nil, lerrors.Wrap(lerrors.KindInternal, "failed to append message", err)
	}
	out := *msg
	s.publish(Event{Type: EventMessage, Message: &out})
	return msg, nil
}

// Messages returns the transcript, oldest first. A positive limit keeps the
// most recent messages only.
func (s *Service) Messages(ctx context.Context, limit int) ([]domain.Message, error) {
	msgs, err := s.store.GetMessages(ctx, limit)
	if err != nil {
		return nil, lerrors.Wrap(lerrors.KindInternal, "failed to get messages", err)
	}
	return msgs, nil
}
