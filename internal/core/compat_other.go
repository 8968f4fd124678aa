//go:build !unix && !windows

package core

func isPermissionErrno(error) bool { return false }

func isNotDirErrno(error) bool { return false }

func isInUseErrno(error) bool { return false }
