package external

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"
)

// Executor abstracts command execution for testability.
type Executor interface {
	// Run executes binary and forwards every stdout and stderr line to
	// onOutput. A non-zero exit is returned as an error.
	Run(ctx context.Context, binary string, args []string, onOutput func(string)) error
	// Output executes binary and returns its stdout. Stderr lines are
	// forwarded to onStderr when it is non-nil.
	Output(ctx context.Context, binary string, args []string, onStderr func(string)) ([]byte, error)
}

// NewExecutor returns the os/exec backed executor.
func NewExecutor() Executor {
	return commandExecutor{}
}

type commandExecutor struct{}

func (commandExecutor) Run(ctx context.Context, binary string, args []string, onOutput func(string)) error {
	cmd := exec.CommandContext(ctx, binary, args...) //nolint:gosec
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("stderr pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start %s: %w", binary, err)
	}

	var mu sync.Mutex
	forward := func(line string) {
		if onOutput == nil {
			return
		}
		mu.Lock()
		defer mu.Unlock()
		onOutput(line)
	}

	var wg sync.WaitGroup
	var scanErr error
	var once sync.Once
	scan := func(r io.Reader) {
		defer wg.Done()
		if err := scanLines(r, forward); err != nil {
			once.Do(func() { scanErr = err })
		}
	}

	wg.Add(2)
	go scan(stdout)
	go scan(stderr)
	wg.Wait()

	if scanErr != nil {
		_ = cmd.Process.Kill()
		_ = cmd.Wait()
		return fmt.Errorf("scan output: %w", scanErr)
	}
	if err := cmd.Wait(); err != nil {
		return describeExit(binary, err)
	}
	return nil
}

func (commandExecutor) Output(ctx context.Context, binary string, args []string, onStderr func(string)) ([]byte, error) {
	cmd := exec.CommandContext(ctx, binary, args...) //nolint:gosec
	var out bytes.Buffer
	cmd.Stdout = &out
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("stderr pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start %s: %w", binary, err)
	}
	scanErr := scanLines(stderr, func(line string) {
		if onStderr != nil {
			onStderr(line)
		}
	})
	if err := cmd.Wait(); err != nil {
		return nil, describeExit(binary, err)
	}
	if scanErr != nil {
		return nil, fmt.Errorf("scan stderr: %w", scanErr)
	}
	return out.Bytes(), nil
}

// maxLineBytes bounds one forwarded line. Longer lines are truncated and the
// remainder is read and discarded so the child never blocks on a full pipe.
const maxLineBytes = 64 * 1024

// scanLines forwards every non-blank line of r. Both '\n' and '\r' end a line
// so progress output that redraws with carriage returns still streams. The
// reader is always drained to EOF, even after a read error.
func scanLines(r io.Reader, forward func(string)) error {
	reader := bufio.NewReaderSize(r, maxLineBytes)
	var line []byte
	emit := func() {
		text := string(line)
		line = line[:0]
		if strings.TrimSpace(text) == "" {
			return
		}
		forward(text)
	}
	for {
		b, err := reader.ReadByte()
		if err != nil {
			emit()
			if errors.Is(err, io.EOF) {
				return nil
			}
			_, _ = io.Copy(io.Discard, r)
			return err
		}
		switch b {
		case '\n', '\r':
			emit()
		default:
			if len(line) < maxLineBytes {
				line = append(line, b)
			}
		}
	}
}

func describeExit(binary string, err error) error {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return fmt.Errorf("%s exited with status %d: %w", binary, exitErr.ExitCode(), err)
	}
	return fmt.Errorf("wait %s: %w", binary, err)
}
