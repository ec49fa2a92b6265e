package main

import "errors"

// recoverableError marks a failure spec.md §6 assigns exit code 1:
// unresolved requirements or a conflict under FailOnConflict, as
// opposed to an internal error (exit code 2).
type recoverableError struct {
	err error
}

func (e *recoverableError) Error() string { return e.err.Error() }
func (e *recoverableError) Unwrap() error  { return e.err }

func recoverable(err error) error {
	if err == nil {
		return nil
	}
	return &recoverableError{err: err}
}

// exitCode maps a subcommand's returned error to spec.md §6's exit
// code convention: 0 success, 1 recoverable failure, 2 internal error.
func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var re *recoverableError
	if errors.As(err, &re) {
		return 1
	}
	return 2
}
