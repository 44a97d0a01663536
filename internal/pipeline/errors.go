package pipeline

import (
	"fmt"
	"strings"
)

// ValidationError aggregates all pre-flight issues found before any
// stage executes.
type ValidationError struct {
	Issues []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Issues, "; ")
}

// CollaboratorError reports that an external service call failed or
// returned unusable output. Fatal except at the two designated
// fallback points.
type CollaboratorError struct {
	Service string
	Err     error
}

func (e *CollaboratorError) Error() string {
	return fmt.Sprintf("%s service failed: %v", e.Service, e.Err)
}

func (e *CollaboratorError) Unwrap() error { return e.Err }

// ResourceError reports a filesystem or artifact problem discovered
// mid-run.
type ResourceError struct {
	Path string
	Err  error
}

func (e *ResourceError) Error() string {
	return fmt.Sprintf("resource unavailable: %s: %v", e.Path, e.Err)
}

func (e *ResourceError) Unwrap() error { return e.Err }
