package execx

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Runner abstracts command execution so packages can be unit-tested without
// touching the real radio (iw).
type Runner interface {
	Output(ctx context.Context, name string, args ...string) (string, error)
}

// Streamer runs a long-lived command and hands every stdout line to onLine
// until the command exits or ctx is cancelled.
type Streamer interface {
	Stream(ctx context.Context, onLine func(line string), name string, args ...string) error
}

// OSRunner executes commands on the host via os/exec.
type OSRunner struct{}

func NewOSRunner() *OSRunner {
	return &OSRunner{}
}

func (r *OSRunner) Output(ctx context.Context, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", commandError(name, err, stderr.String())
	}
	return stdout.String(), nil
}

func (r *OSRunner) Stream(ctx context.Context, onLine func(line string), name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.StdoutPipe()
	if err != nil {
		return err
	}
	if err := cmd.Start(); err != nil {
		return commandError(name, err, "")
	}

	scanner := bufio.NewScanner(out)
	for scanner.Scan() {
		onLine(scanner.Text())
	}
	scanErr := scanner.Err()

	if err := cmd.Wait(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return commandError(name, err, stderr.String())
	}
	if scanErr != nil {
		return scanErr
	}
	return fmt.Errorf("%s exited", name)
}

func commandError(name string, err error, stderr string) error {
	msg := strings.TrimSpace(stderr)
	if msg != "" {
		return fmt.Errorf("%s: %w: %s", name, err, msg)
	}
	return fmt.Errorf("%s: %w", name, err)
}
