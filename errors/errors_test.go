package errors

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorClassString(t *testing.T) {
	tests := []struct {
		class    ErrorClass
		expected string
	}{
		{ErrorTransient, "transient"},
		{ErrorInvalid, "invalid"},
		{ErrorFatal, "fatal"},
		{ErrorClass(99), "unknown"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, tt.class.String())
	}
}

func TestClassification(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		transient bool
		invalid   bool
		fatal     bool
	}{
		{
			name:    "invalid fact is invalid",
			err:     ErrInvalidFact,
			invalid: true,
		},
		{
			name:  "unknown vocabulary is fatal",
			err:   ErrUnknownVocabulary,
			fatal: true,
		},
		{
			name:  "non-terminating rule set is fatal",
			err:   ErrNonTerminatingRuleSet,
			fatal: true,
		},
		{
			name:      "storage unavailable is transient",
			err:       ErrStorageUnavailable,
			transient: true,
		},
		{
			name:      "context cancellation is transient",
			err:       context.Canceled,
			transient: true,
		},
		{
			name:      "database locked message is transient",
			err:       New("database is locked"),
			transient: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.transient, IsTransient(tt.err))
			assert.Equal(t, tt.invalid, IsInvalid(tt.err))
			assert.Equal(t, tt.fatal, IsFatal(tt.err))
		})
	}
}

func TestWrapPreservesChain(t *testing.T) {
	wrapped := Wrap(ErrInvalidFact, "Graph", "Add", "validate concept")
	require.Error(t, wrapped)
	assert.Equal(t, "Graph.Add: validate concept failed: invalid fact", wrapped.Error())
	assert.True(t, Is(wrapped, ErrInvalidFact))
}

func TestWrapNilReturnsNil(t *testing.T) {
	assert.NoError(t, Wrap(nil, "C", "m", "a"))
	assert.NoError(t, WrapTransient(nil, "C", "m", "a"))
	assert.NoError(t, WrapInvalid(nil, "C", "m", "a"))
	assert.NoError(t, WrapFatal(nil, "C", "m", "a"))
}

func TestClassifiedWrappersSetClass(t *testing.T) {
	base := fmt.Errorf("boom")

	invalid := WrapInvalid(base, "Catalog", "Load", "parse rule")
	assert.True(t, IsInvalid(invalid))
	assert.False(t, IsFatal(invalid))

	fatal := WrapFatal(base, "Evaluator", "Run", "fixpoint")
	assert.True(t, IsFatal(fatal))
	assert.False(t, IsInvalid(fatal))

	var ce *ClassifiedError
	require.True(t, As(fatal, &ce))
	assert.Equal(t, "Evaluator", ce.Component)
	assert.Equal(t, ErrorFatal, ce.Class)
}

func TestClassifyDefaultsToTransient(t *testing.T) {
	assert.Equal(t, ErrorTransient, Classify(fmt.Errorf("some unknown failure")))
	assert.Equal(t, ErrorFatal, Classify(WrapFatal(fmt.Errorf("x"), "C", "m", "a")))
	assert.Equal(t, ErrorInvalid, Classify(ErrInvalidFact))
}
