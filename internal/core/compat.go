package core

import (
	"errors"
	"io/fs"
)

// ErrorKind is the failure class of a filesystem operation.
type ErrorKind int

const (
	KindOther ErrorKind = iota
	KindPermission
	KindNotFound
	KindNotDir
	KindInUse
	KindProtected
)

func (k ErrorKind) String() string {
	switch k {
	case KindPermission:
		return "permission denied"
	case KindNotFound:
		return "not found"
	case KindNotDir:
		return "not a directory"
	case KindInUse:
		return "in use"
	case KindProtected:
		return "protected path"
	default:
		return "error"
	}
}

// Classify maps an error onto an ErrorKind. A nil error is KindOther.
func Classify(err error) ErrorKind {
	switch {
	case err == nil:
		return KindOther
	case errors.Is(err, ErrProtectedPath):
		return KindProtected
	case errors.Is(err, fs.ErrPermission) || isPermissionErrno(err):
		return KindPermission
	case errors.Is(err, fs.ErrNotExist):
		return KindNotFound
	case isNotDirErrno(err):
		return KindNotDir
	case isInUseErrno(err):
		return KindInUse
	default:
		return KindOther
	}
}

// IsQuietTraversalError reports whether a listing failure is swallowed
// without being shown to the operator: access denied, vanished entries and
// files standing where a directory was expected.
func IsQuietTraversalError(err error) bool {
	switch Classify(err) {
	case KindPermission, KindNotFound, KindNotDir:
		return true
	}
	return false
}
