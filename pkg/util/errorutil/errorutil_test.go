package errorutil

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToDomainError(t *testing.T) {
	assert.Nil(t, ToDomainError(nil))

	validation := NewValidationError("bad input", map[string]any{"field": "name"})
	de := ToDomainError(fmt.Errorf("wrapped: %w", validation))
	require.NotNil(t, de)
	assert.Equal(t, "VALIDATION_FAILED", de.Code)
	assert.Equal(t, http.StatusBadRequest, de.HTTPStatus)

	for _, err := range []error{sql.ErrNoRows, pgx.ErrNoRows, fmt.Errorf("get: %w", pgx.ErrNoRows)} {
		de = ToDomainError(err)
		assert.Equal(t, "NOT_FOUND", de.Code)
		assert.Equal(t, http.StatusNotFound, de.HTTPStatus)
	}

	cause := errors.New("connection refused")
	de = ToDomainError(cause)
	assert.Equal(t, "INTERNAL_ERROR", de.Code)
	assert.ErrorIs(t, de, cause)
}

func TestMapError_PreservesNil(t *testing.T) {
	assert.NoError(t, MapError(nil))
	assert.Error(t, MapError(errors.New("x")))
}

func TestNewPreconditionFailed(t *testing.T) {
	cause := errors.New("no employees")
	err := NewPreconditionFailed("NO_EMPLOYEES", "import the directory first", cause)

	de := ToDomainError(err)
	assert.Equal(t, http.StatusPreconditionFailed, de.HTTPStatus)
	assert.Equal(t, "NO_EMPLOYEES", de.Code)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "import the directory first: no employees", err.Error())
}

func TestNewNotFound(t *testing.T) {
	de := ToDomainError(NewNotFound("employee", nil))
	assert.Equal(t, "employee not found", de.Message)
	assert.NotNil(t, de.Details)
}
