package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDomainErrorIsMatchesByTypeAndCode(t *testing.T) {
	wrapped := fmt.Errorf("loading node: %w", ErrNodeNotFound.WithDetail("node_id", "abc"))
	assert.ErrorIs(t, wrapped, ErrNodeNotFound)
	assert.NotErrorIs(t, wrapped, ErrUserNotFound)
}

func TestDomainErrorWithersDoNotMutateSentinels(t *testing.T) {
	derived := ErrDatabaseConnection.WithCause(errors.New("connection refused"))
	require.NotSame(t, ErrDatabaseConnection, derived)
	assert.Nil(t, ErrDatabaseConnection.Cause, "the shared sentinel must stay pristine")
	assert.Error(t, derived.Cause)

	detailed := ErrNodeNotFound.WithDetail("node_id", "abc")
	assert.Empty(t, ErrNodeNotFound.Details)
	assert.Equal(t, "abc", detailed.Details["node_id"])

	retried := ErrNodeNotFound.WithRetryable(true)
	assert.False(t, ErrNodeNotFound.Retryable)
	assert.True(t, retried.Retryable)

	// A derived error still matches its sentinel
	assert.ErrorIs(t, derived, ErrDatabaseConnection)
	assert.ErrorIs(t, detailed, ErrNodeNotFound)
}

func TestDomainErrorUnwrap(t *testing.T) {
	cause := errors.New("timeout")
	err := ErrEventPublishFailed.WithCause(cause)
	assert.ErrorIs(t, err, cause)
}

func TestDomainErrorStatusCodes(t *testing.T) {
	assert.Equal(t, 404, ErrNodeNotFound.StatusCode)
	assert.Equal(t, 400, ErrDepthOutOfRange.StatusCode)
	assert.Equal(t, 422, ErrCyclicParent.StatusCode)
	assert.Equal(t, 409, ErrConcurrentModification.StatusCode)
	assert.Equal(t, 403, ErrUserNotAuthorized.StatusCode)
	assert.Equal(t, 500, ErrResponseShapeDrift.StatusCode)
}

func TestValidationErrorsToMap(t *testing.T) {
	verrs := NewValidationErrors()
	assert.False(t, verrs.HasErrors())

	verrs.Add("type", "type must be one of the registered timeline node types")
	verrs.Add("meta", "meta must contain at least one key")
	verrs.Add("meta", "meta values must be JSON-serializable")

	require.True(t, verrs.HasErrors())
	fields := verrs.ToMap()
	assert.Len(t, fields["meta"], 2)
	assert.Len(t, fields["type"], 1)
	assert.NotEmpty(t, verrs.Error())
}
