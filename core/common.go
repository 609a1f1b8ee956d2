package core

import (
	"errors"
	"fmt"
	"reflect"

	pkgerrors "github.com/pkg/errors"
)

const (
	// ExitFatal is the process status used when the run fails before the
	// harness reports a status of its own.
	ExitFatal = 1

	// VersionStable asks the update service for the latest stable release.
	VersionStable = "stable"

	// DefaultExtension is installed into the isolated profile when no
	// extension list is configured.
	DefaultExtension = "james-yu.latex-workshop"
)

type Logger interface {
	Criticalf(format string, args ...any)
	Debugf(format string, args ...any)
	Errorf(format string, args ...any)
	Noticef(format string, args ...any)
	Warningf(format string, args ...any)
}

type stackTracer interface {
	StackTrace() pkgerrors.StackTrace
}

// errorName reports the type of the innermost error in the chain. For
// errors joining several causes the last one is followed.
func errorName(err error) string {
walk:
	for {
		switch u := err.(type) {
		case interface{ Unwrap() []error }:
			errs := u.Unwrap()
			if len(errs) == 0 {
				break walk
			}
			err = errs[len(errs)-1]
		case interface{ Unwrap() error }:
			next := u.Unwrap()
			if next == nil {
				break walk
			}
			err = next
		default:
			break walk
		}
	}
	t := reflect.TypeOf(err)
	if t == nil {
		return "<nil>"
	}
	return t.String()
}

// errorStack returns the outermost recorded stack trace of err.
func errorStack(err error) string {
	var st stackTracer
	if !errors.As(err, &st) {
		return "<unavailable>"
	}
	return fmt.Sprintf("%+v", st.StackTrace())
}
