package pipeline

import (
	"fmt"
	"strings"
)

// StageError reports the stage a run was entering when it failed. Err carries
// a services marker; use errors.Is against the markers to classify it.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	if e == nil || e.Err == nil {
		return ""
	}
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// AmbiguousDirectoryError lists every directory that could hold a label's
// files. It is wrapped with services.ErrAmbiguousData.
type AmbiguousDirectoryError struct {
	Expected   string
	Candidates []string
}

func (e *AmbiguousDirectoryError) Error() string {
	return fmt.Sprintf("expected %q but found candidates: %s", e.Expected, strings.Join(e.Candidates, ", "))
}
