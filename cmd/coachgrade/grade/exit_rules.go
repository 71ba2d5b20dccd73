package grade

import (
	"context"
	"errors"

	"github.com/flarebyte/coachgrade/internal/config"
	"github.com/flarebyte/coachgrade/internal/roster"
)

const (
	exitCodeSuccess  = 0
	exitCodeExecErr  = 1
	exitCodeUsageErr = 2
)

type runExitError struct {
	code int
	msg  string
	err  error
}

func (e runExitError) Error() string { return e.msg }
func (e runExitError) ExitCode() int { return e.code }
func (e runExitError) Unwrap() error { return e.err }

// evaluateRunExit maps a run error to the process exit status. Students who
// did not access the coach are a normal outcome and never reach here; only
// problems with the run itself do.
func evaluateRunExit(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, config.ErrInvalid):
		return runExitError{code: exitCodeUsageErr, msg: err.Error(), err: err}
	case errors.Is(err, roster.ErrInputNotFound), errors.Is(err, roster.ErrSchema), errors.Is(err, roster.ErrEncoding):
		return runExitError{code: exitCodeExecErr, msg: "input: " + err.Error(), err: err}
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return runExitError{code: exitCodeExecErr, msg: "run interrupted before output was written: " + err.Error(), err: err}
	default:
		return runExitError{code: exitCodeExecErr, msg: err.Error(), err: err}
	}
}
