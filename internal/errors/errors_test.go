package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorMessage(t *testing.T) {
	assert.Equal(t, "SQL execution failed", New(KindExecution, "SQL execution failed").Error())
	assert.Equal(t, "SQL execution failed: no such table: x",
		Wrap(KindExecution, "SQL execution failed", errors.New("no such table: x")).Error())
}

func TestKindOf(t *testing.T) {
	wrapped := fmt.Errorf("upload: %w", New(KindDecode, "failed to decode CSV file"))

	assert.Equal(t, KindDecode, KindOf(wrapped))
	assert.True(t, IsKind(wrapped, KindDecode))
	assert.Equal(t, KindInternal, KindOf(errors.New("plain")))
	assert.False(t, IsKind(nil, KindInternal))
}

func TestSentinelMatching(t *testing.T) {
	sentinel := New(KindProvider, "No content received")
	cause := errors.New("root")
	err := fmt.Errorf("turn: %w", Wrap(KindProvider, "No content received", cause))

	assert.True(t, errors.Is(err, sentinel))
	assert.True(t, errors.Is(err, cause))
	assert.False(t, errors.Is(err, New(KindDecode, "No content received")))
}
