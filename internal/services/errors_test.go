package services_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"yt2wp/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("exit status 1")
	err := services.Wrap(services.ErrUpload, "upload", "invoke uploader", "uploader exited with failure", base)
	if !errors.Is(err, services.ErrUpload) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"upload", "invoke uploader", "uploader exited with failure", "exit status 1"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapWithoutCause(t *testing.T) {
	err := services.Wrap(services.ErrInput, "", "", "", nil)
	if !errors.Is(err, services.ErrInput) {
		t.Fatalf("expected input marker, got %v", err)
	}
	if !strings.Contains(err.Error(), "pipeline failure") {
		t.Fatalf("expected default detail, got %q", err.Error())
	}
}

func TestExitCodeMapping(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{nil, services.ExitOK},
		{services.Wrap(services.ErrInput, "validate", "", "label is blank", nil), services.ExitInput},
		{services.Wrap(services.ErrPrerequisite, "prerequisites", "", "no env file", nil), services.ExitPrerequisite},
		{services.Wrap(services.ErrDownload, "download", "", "exhausted", nil), services.ExitDownload},
		{services.Wrap(services.ErrMissingData, "verify", "", "", nil), services.ExitData},
		{services.Wrap(services.ErrEmptyData, "verify", "", "", nil), services.ExitData},
		{services.Wrap(services.ErrAmbiguousData, "verify", "", "", nil), services.ExitData},
		{services.Wrap(services.ErrUpload, "upload", "", "", nil), services.ExitUpload},
		{services.Wrap(services.ErrPublish, "publish", "", "", nil), services.ExitPublish},
		{fmt.Errorf("outer: %w", services.Wrap(services.ErrPublish, "publish", "", "", nil)), services.ExitPublish},
		{errors.New("unknown flag: --bogus"), services.ExitFailure},
	}
	for _, tc := range tests {
		if got := services.ExitCode(tc.err); got != tc.want {
			t.Fatalf("ExitCode(%v) = %d, want %d", tc.err, got, tc.want)
		}
	}
}
