package llm

import (
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	// EnvMode is the environment variable name for mode selection.
	EnvMode = "LUMORA_MODE"
	// ModeMock indicates mock mode should be used.
	ModeMock = "MOCK"
)

// NewLLMClient creates an LLM client for the given mode. MOCK returns a
// MockClient; anything else returns a real Client.
func NewLLMClient(mode, baseURL, apiKey string, timeout time.Duration, log logrus.FieldLogger, opts ...Option) LLMClient {
	if strings.EqualFold(mode, ModeMock) {
		if log != nil {
			log.Infof("%s=%s detected, using mock LLM client", EnvMode, ModeMock)
		}
		return NewMockClient()
	}

	return NewClient(baseURL, apiKey, timeout, opts...)
}
