//go:build windows

package core

import (
	"errors"

	"golang.org/x/sys/windows"
)

func isPermissionErrno(err error) bool {
	return errors.Is(err, windows.ERROR_ACCESS_DENIED)
}

// ERROR_DIRECTORY is what FindFirstFile reports when a file sits where a
// directory name was expected.
func isNotDirErrno(err error) bool {
	return errors.Is(err, windows.ERROR_DIRECTORY)
}

func isInUseErrno(err error) bool {
	return errors.Is(err, windows.ERROR_SHARING_VIOLATION) ||
		errors.Is(err, windows.ERROR_LOCK_VIOLATION)
}
