package pipeline

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNotAuthenticated   = errors.New("not authenticated")
	ErrWrongStage         = errors.New("action not allowed in current stage")
	ErrEmptyCollection    = errors.New("no reviews to work on")
	ErrUnknownLanguage    = errors.New("language not present in reviews")
	ErrNotScored          = errors.New("reviews have not been scored")
)

// ValidationError is returned when an action's input or the session's data
// does not satisfy the stage's preconditions. The session is left unchanged.
type ValidationError struct {
	Stage Stage
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// AuthError is returned for a failed login.
type AuthError struct {
	Username string
	Err      error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("login %q: %v", e.Username, e.Err)
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

func validation(stage Stage, err error) error {
	return &ValidationError{Stage: stage, Err: err}
}

func wrongStage(action string, current Stage) error {
	return fmt.Errorf("%w: %s in %s", ErrWrongStage, action, current)
}
