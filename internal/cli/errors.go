package cli

import (
	"fmt"
	"io"

	"github.com/dropbox/sqlbricks/errors"
)

const (
	ExitSuccess   = 0
	ExitGeneral   = 1
	ExitConfig    = 2
	ExitDocument  = 3
	ExitDBConnect = 4
	ExitStatement = 5
)

// ExitError carries the process exit code for a failed command.
type ExitError struct {
	errors.DropboxError

	Code int
}

func newExitError(code int, err error, format string, args ...interface{}) *ExitError {
	var inner errors.DropboxError
	if err == nil {
		inner = errors.Newf(format, args...)
	} else {
		inner = errors.Wrapf(err, format, args...)
	}
	return &ExitError{DropboxError: inner, Code: code}
}

func ConfigError(err error, format string, args ...interface{}) *ExitError {
	return newExitError(ExitConfig, err, format, args...)
}

func DocumentError(err error, format string, args ...interface{}) *ExitError {
	return newExitError(ExitDocument, err, format, args...)
}

func DBConnectError(err error, format string, args ...interface{}) *ExitError {
	return newExitError(ExitDBConnect, err, format, args...)
}

func StatementError(err error, format string, args ...interface{}) *ExitError {
	return newExitError(ExitStatement, err, format, args...)
}

// ExitCode returns the exit code err should terminate the process with.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	if exitErr, ok := err.(*ExitError); ok {
		return exitErr.Code
	}
	return ExitGeneral
}

// Report writes the message chain of err, without stack traces, to w and
// returns the exit code.  With verbose set the full error is written.
func Report(w io.Writer, err error, verbose bool) int {
	if err == nil {
		return ExitSuccess
	}
	if verbose {
		fmt.Fprintln(w, "Error:", err.Error())
	} else {
		fmt.Fprintln(w, "Error:", errors.GetMessage(err))
	}
	return ExitCode(err)
}
