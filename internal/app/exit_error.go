package app

import "errors"

// Exit codes returned by the commands.
const (
	codeOK      = 0
	codeFailure = 1
	codeConfig  = 2
)

type ExitError struct {
	Code int
	Err  error
}

func (e ExitError) Error() string {
	if e.Err == nil {
		return "exit"
	}
	return e.Err.Error()
}

func (e ExitError) Unwrap() error {
	return e.Err
}

func ExitWithError(code int, err error) error {
	return ExitError{Code: code, Err: err}
}

// configError marks err as a bad-input failure.
func configError(err error) error {
	return ExitWithError(codeConfig, err)
}

func asExitError(err error) (ExitError, bool) {
	var ee ExitError
	if errors.As(err, &ee) {
		return ee, true
	}
	return ExitError{}, false
}
