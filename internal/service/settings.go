package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/akshatyadav31/Lumora-Ai/internal/adapter/llm"
	"github.com/akshatyadav31/Lumora-Ai/internal/domain"
	lerrors "github.com/akshatyadav31/Lumora-Ai/internal/errors"
)

// Settings is the readable view of the provider configuration. The API key
// itself is write-only.
type Settings struct {
	Provider  domain.Provider `json:"provider"`
	Model     string          `json:"model"`
	APIKeySet bool            `json:"api_key_set"`
}

// SettingsUpdate changes the fields that are non-nil. An empty APIKey clears
// the key.
type SettingsUpdate struct {
	Provider *domain.Provider `json:"provider,omitempty"`
	Model    *string          `json:"model,omitempty"`
	APIKey   *string          `json:"api_key,omitempty"`
}

// Settings returns the current provider settings.
func (s *Service) Settings() Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return settingsOf(s.provider)
}

// UpdateSettings applies u. A turn already in flight keeps the settings it
// started with.
func (s *Service) UpdateSettings(ctx context.Context, u SettingsUpdate) (Settings, error) {
	if u.Provider != nil && !u.Provider.Valid() {
		return Settings{}, lerrors.New(lerrors.KindUnsupportedInput, fmt.Sprintf("unknown provider %q", *u.Provider))
	}

	s.mu.Lock()
	if u.Provider != nil {
		s.provider.Provider = *u.Provider
	}
	if u.Model != nil {
		s.provider.Model = strings.TrimSpace(*u.Model)
	}
	if u.APIKey != nil {
		s.provider.APIKey = strings.TrimSpace(*u.APIKey)
	}
	out := settingsOf(s.provider)
	s.mu.Unlock()

	s.log.WithField("provider", out.Provider).WithField("model", out.Model).Info("settings updated")
	return out, nil
}

func settingsOf(p domain.ProviderConfig) Settings {
	return Settings{Provider: p.Provider, Model: p.Model, APIKeySet: p.APIKey != ""}
}

// ListModels returns the models offered by the provider endpoint.
func (s *Service) ListModels(ctx context.Context) ([]llm.Model, error) {
	if s.models == nil {
		return nil, lerrors.New(lerrors.KindUnimplemented, "model listing is not configured")
	}
	models, err := s.models.ListModels(ctx)
	if err != nil {
		return nil, lerrors.Wrap(lerrors.KindProvider, "failed to list models", err)
	}
	return models, nil
}
