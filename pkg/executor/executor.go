package executor

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"
)

type implExecutor struct{}

// New creates a new Executor instance
func New() Executor {
	return &implExecutor{}
}

// Execute runs an external command with the given arguments and returns its stdout
func (e *implExecutor) Execute(ctx context.Context, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", commandError(name, err, &stderr)
	}

	return stdout.String(), nil
}

// Start launches a command whose stdin and stdout stay attached to the caller
func (e *implExecutor) Start(ctx context.Context, name string, args ...string) (Process, error) {
	cmd := exec.CommandContext(ctx, name, args...)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("stdin pipe for '%s': %w", name, err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("stdout pipe for '%s': %w", name, err)
	}

	p := &implProcess{name: name, cmd: cmd, stdin: stdin, stdout: stdout}
	cmd.Stderr = &p.stderr

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start '%s': %w", name, err)
	}

	return p, nil
}

type implProcess struct {
	name   string
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stdout io.Reader
	stderr bytes.Buffer
}

func (p *implProcess) Stdin() io.WriteCloser { return p.stdin }

func (p *implProcess) Stdout() io.Reader { return p.stdout }

// Wait blocks until the process exits. Callers close Stdin first.
func (p *implProcess) Wait() error {
	if err := p.cmd.Wait(); err != nil {
		return commandError(p.name, err, &p.stderr)
	}
	return nil
}

// commandError includes stderr in the error message for debugging
func commandError(name string, err error, stderr *bytes.Buffer) error {
	stderrStr := strings.TrimSpace(stderr.String())
	if stderrStr != "" {
		return fmt.Errorf("command '%s' failed: %w\nstderr: %s", name, err, stderrStr)
	}
	return fmt.Errorf("command '%s' failed: %w", name, err)
}
