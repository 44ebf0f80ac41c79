package starwars

import (
	"errors"
	"fmt"

	"github.com/hanpama/swgraph/internal/executor"
)

// ErrNotFound is returned by repositories when no entity matches. The graph
// resolves it to null without reporting an error.
var ErrNotFound = errors.New("not found")

const (
	CodeArgumentBinding = executor.CodeArgumentBinding
	CodeFetchFailure    = "FETCH_FAILURE"
)

// ArgumentBindingError reports an argument value that failed its binder.
// The field is skipped before any fetch runs.
type ArgumentBindingError struct {
	Field    string
	Argument string
	Value    any
	Err      error
}

func (e *ArgumentBindingError) Error() string {
	return fmt.Sprintf("%s: invalid value %v for argument %q: %v", e.Field, e.Value, e.Argument, e.Err)
}

func (e *ArgumentBindingError) Unwrap() error { return e.Err }

func (e *ArgumentBindingError) Extensions() map[string]any {
	return map[string]any{"code": CodeArgumentBinding, "argument": e.Argument}
}

// FetchError wraps a repository failure for one field.
type FetchError struct {
	Field string
	Err   error
}

func (e *FetchError) Error() string { return fmt.Sprintf("%s: fetch failed: %v", e.Field, e.Err) }

func (e *FetchError) Unwrap() error { return e.Err }

func (e *FetchError) Extensions() map[string]any {
	return map[string]any{"code": CodeFetchFailure}
}
