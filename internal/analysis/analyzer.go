package analysis

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/akshatyadav31/Lumora-Ai/internal/adapter/llm"
	"github.com/akshatyadav31/Lumora-Ai/internal/config"
	"github.com/akshatyadav31/Lumora-Ai/internal/domain"
	lerrors "github.com/akshatyadav31/Lumora-Ai/internal/errors"
)

// Temperature is kept low so the same question yields the same SQL.
const Temperature = 0.1

// Generator produces an analysis for a question over a schema.
type Generator interface {
	Generate(ctx context.Context, question string, columns []domain.ColumnDefinition, cfg domain.ProviderConfig) (*domain.AnalysisResult, error)
}

// Analyzer builds the request, calls the provider once and parses the reply.
// There is no retry and no caching.
type Analyzer struct {
	client  llm.LLMClient
	log     logrus.FieldLogger
	observe func(provider string, d time.Duration, err error)
}

// NewAnalyzer creates an analyzer backed by client.
func NewAnalyzer(client llm.LLMClient, log logrus.FieldLogger) *Analyzer {
	return &Analyzer{client: client, log: log}
}

// OnCall registers a hook invoked after every provider round trip.
func (a *Analyzer) OnCall(fn func(provider string, d time.Duration, err error)) {
	a.observe = fn
}

var _ Generator = (*Analyzer)(nil)

// Generate asks the configured provider for SQL answering question.
func (a *Analyzer) Generate(ctx context.Context, question string, columns []domain.ColumnDefinition, cfg domain.ProviderConfig) (*domain.AnalysisResult, error) {
	if !cfg.Provider.IsLive() {
		return nil, ErrUnimplemented
	}

	model := cfg.Model
	if strings.TrimSpace(model) == "" {
		model = config.DefaultModel
	}

	system, user := buildMessages(question, columns)
	temp := Temperature
	req := &llm.ChatCompletionRequest{
		Model: model,
		Messages: []llm.ChatMessage{
			{Role: string(domain.RoleSystem), Content: system},
			{Role: string(domain.RoleUser), Content: user},
		},
		Temperature: &temp,
		APIKey:      cfg.APIKey,
	}

	log := a.log.WithFields(logrus.Fields{"provider": cfg.Provider, "model": model})
	start := time.Now()
	resp, err := a.client.CreateChatCompletion(ctx, req)
	if a.observe != nil {
		a.observe(string(cfg.Provider), time.Since(start), err)
	}
	if err != nil {
		log.WithError(err).Warn("provider call failed")
		return nil, providerError(err)
	}

	result, err := ParseResponse(resp.Content())
	if err != nil {
		log.WithField("content", truncate(resp.Content(), 500)).Warn("unusable provider response")
		return nil, err
	}
	log.WithField("sql", result.SQL).Debug("analysis generated")
	return result, nil
}

// providerError keeps the provider's own message when it sent one.
func providerError(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return lerrors.Wrap(lerrors.KindProvider, ErrProviderCall.Message, err)
	}
	var httpErr *llm.HTTPError
	if errors.As(err, &httpErr) && httpErr.ProviderMessage() != "" {
		return lerrors.New(lerrors.KindProvider, httpErr.ProviderMessage())
	}
	return ErrProviderCall
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
