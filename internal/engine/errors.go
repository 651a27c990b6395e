package engine

import (
	"errors"
	"fmt"
)

var (
	ErrNotInitialized = errors.New("engine is not initialized")
	ErrUnreleased     = errors.New("results left unreleased at deinitialize")
)

// InitError reports a failed Init. Msg is the engine's own diagnostic.
type InitError struct {
	Config string
	Msg    string
	Err    error
}

func (e *InitError) Error() string {
	config := e.Config
	if config == "" {
		config = "default"
	}
	return fmt.Sprintf("initialize (config %s): %s", config, e.Msg)
}

func (e *InitError) Unwrap() error {
	return e.Err
}

// ProcessError reports one input that failed to process. No result handle
// exists for it, so nothing must be released.
type ProcessError struct {
	Size int
	Err  error
}

func (e *ProcessError) Error() string {
	return fmt.Sprintf("process %d bytes: %v", e.Size, e.Err)
}

func (e *ProcessError) Unwrap() error {
	return e.Err
}
