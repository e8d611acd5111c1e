package errorutil

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToDomainErrorKeepsWrappedDomainError(t *testing.T) {
	base := NewSelectionNotFound("42", []string{"7", "8"})
	wrapped := fmt.Errorf("select contact: %w", base)

	de := ToDomainError(wrapped)
	require.NotNil(t, de)
	assert.Equal(t, CodeSelectionNotFound, de.Code)
	assert.Equal(t, http.StatusUnprocessableEntity, de.HTTPStatus)
	assert.Equal(t, "42", de.Details["contact_id"])
	assert.Equal(t, []string{"7", "8"}, de.Details["candidates"])

	bare := ToDomainError(NewSelectionNotFound("42", nil))
	assert.NotContains(t, bare.Details, "candidates")
}

func TestToDomainErrorFallsBackToInternal(t *testing.T) {
	de := ToDomainError(errors.New("boom"))
	assert.Equal(t, CodeInternal, de.Code)
	assert.Equal(t, http.StatusInternalServerError, de.HTTPStatus)
	assert.Nil(t, ToDomainError(nil))
}

func TestRemoteRejectedHidesCauseFromMessage(t *testing.T) {
	cause := errors.New("psa said 400: bad identifier")
	err := NewRemoteRejected("ticket creation failed", cause)

	de := ToDomainError(err)
	assert.Equal(t, "ticket creation failed", de.Message)
	assert.Equal(t, http.StatusBadGateway, de.HTTPStatus)
	assert.ErrorIs(t, err, cause)
	assert.True(t, HasCode(err, CodeRemoteRejected))
	assert.False(t, HasCode(cause, CodeRemoteRejected))
}
