//go:build unix

package core

import (
	"errors"

	"golang.org/x/sys/unix"
)

func isPermissionErrno(err error) bool {
	return errors.Is(err, unix.EACCES) || errors.Is(err, unix.EPERM)
}

func isNotDirErrno(err error) bool {
	return errors.Is(err, unix.ENOTDIR)
}

func isInUseErrno(err error) bool {
	return errors.Is(err, unix.EBUSY) || errors.Is(err, unix.ETXTBSY)
}
