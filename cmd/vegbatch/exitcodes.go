package main

import "fmt"

// Exit codes returned by vegbatch.
const (
	ExitSuccess             = 0
	ExitInputConfiguration  = 1 // bad flags, config file or arguments
	ExitImagesFailed        = 2 // at least one image could not be analyzed
	ExitGeneralRuntimeError = 3 // I/O failure or cancellation
)

// ExitCodeError wraps an error with the process exit code it maps to.
type ExitCodeError struct {
	Code int
	Err  error
}

func (e *ExitCodeError) Error() string {
	return fmt.Sprintf("exit code %d: %v", e.Code, e.Err)
}

func (e *ExitCodeError) Unwrap() error {
	return e.Err
}

func inputError(format string, args ...interface{}) error {
	return &ExitCodeError{Code: ExitInputConfiguration, Err: fmt.Errorf(format, args...)}
}
