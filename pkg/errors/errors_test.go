package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExitCode(t *testing.T) {
	assert.Equal(t, ExitOK, ExitCode(nil))
	assert.Equal(t, ExitInvalidParameter, ExitCode(New(ErrInvalidConnection, "port \"abc\"")))
	assert.Equal(t, ExitInvalidParameter, ExitCode(fmt.Errorf("load: %w", ErrInvalidConnection)))
	assert.Equal(t, ExitFailure, ExitCode(New(ErrResourceNotFound, "Posts.json")))
	assert.Equal(t, ExitFailure, ExitCode(errors.New("boom")))
}

func TestAppErrorUnwrap(t *testing.T) {
	err := Newf(ErrConflict, "tag %q", "sql")
	assert.True(t, errors.Is(err, ErrConflict))
	assert.False(t, errors.Is(err, ErrNotFound))
	assert.Equal(t, `conflict: tag "sql"`, err.Error())
}
