package osfs_test

import (
	"errors"
	"testing"

	osfs "github.com/Mouaz7/Os-filesystem"
	"github.com/stretchr/testify/assert"
)

func TestOSFSErrorWithMessage(t *testing.T) {
	newErr := osfs.ErrNotFound.WithMessage("asdfqwerty")
	assert.Equal(
		t, "No such file or directory: asdfqwerty", newErr.Error(), "error message is wrong")
	assert.ErrorIs(t, newErr, osfs.ErrNotFound)
	assert.NotErrorIs(t, newErr, osfs.ErrExists)
}

func TestOSFSErrorWithMessageChained(t *testing.T) {
	newErr := osfs.ErrPermissionDenied.WithMessage("cat").WithMessage("/a.txt")
	assert.Equal(t, "Permission denied: cat: /a.txt", newErr.Error())
	assert.ErrorIs(t, newErr, osfs.ErrPermissionDenied)
}

func TestOSFSErrorWrap(t *testing.T) {
	originalErr := errors.New("original error")
	newErr := osfs.ErrIOFailed.Wrap(originalErr)
	expectedMessage := "Input/output error: original error"

	assert.EqualValues(t, expectedMessage, newErr.Error(), "error message is wrong")
	assert.ErrorIs(t, newErr, originalErr, "original error not set as parent")
	assert.ErrorIs(t, newErr, osfs.ErrIOFailed, "OSFS error not set as parent")
}
