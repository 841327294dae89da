package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInput         = errors.New("input error")
	ErrPrerequisite  = errors.New("prerequisite error")
	ErrDownload      = errors.New("download error")
	ErrMissingData   = errors.New("missing data error")
	ErrEmptyData     = errors.New("empty data error")
	ErrAmbiguousData = errors.New("ambiguous data error")
	ErrUpload        = errors.New("upload error")
	ErrPublish       = errors.New("publish error")
)

// Exit codes returned by the CLI. Anything unclassified exits with ExitFailure.
const (
	ExitOK           = 0
	ExitFailure      = 1
	ExitInput        = 2
	ExitPrerequisite = 3
	ExitDownload     = 4
	ExitData         = 5
	ExitUpload       = 6
	ExitPublish      = 7
)

// Wrap builds an error message that includes stage context while tagging it with
// the provided marker for later classification. The marker should be one of
// the exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		if err == nil {
			return errors.New(detail)
		}
		return fmt.Errorf("%s: %w", detail, err)
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// ExitCode maps a run error to the process exit status.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, ErrInput):
		return ExitInput
	case errors.Is(err, ErrPrerequisite):
		return ExitPrerequisite
	case errors.Is(err, ErrDownload):
		return ExitDownload
	case errors.Is(err, ErrMissingData), errors.Is(err, ErrEmptyData), errors.Is(err, ErrAmbiguousData):
		return ExitData
	case errors.Is(err, ErrUpload):
		return ExitUpload
	case errors.Is(err, ErrPublish):
		return ExitPublish
	default:
		return ExitFailure
	}
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "pipeline failure"
	}
	return strings.Join(parts, ": ")
}
