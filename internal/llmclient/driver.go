// Package llmclient wraps the configured LLM command as a prompt-in,
// text-out subprocess. JSON recovery from the returned text is the
// shared concern of internal/jsonx, not this package.
package llmclient

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// CommandExecutor runs the LLM command, piping prompt to stdin and
// returning stdout.
type CommandExecutor interface {
	Execute(ctx context.Context, cmd string, args []string, prompt string) ([]byte, error)
}

// DefaultCommandExecutor shells out to the configured local LLM CLI.
type DefaultCommandExecutor struct{}

// Execute runs cmd with args, writing prompt to its stdin.
func (e *DefaultCommandExecutor) Execute(ctx context.Context, cmd string, args []string, prompt string) ([]byte, error) {
	command := exec.CommandContext(ctx, cmd, args...)
	command.Stdin = bytes.NewBufferString(prompt)
	return command.Output()
}

// Driver sends prompts to a local LLM command and returns its raw
// text output.
type Driver struct {
	command  string
	args     []string
	executor CommandExecutor
}

// NewDriver builds a Driver invoking command with args for every
// prompt.
func NewDriver(command string, args []string) *Driver {
	return &Driver{
		command:  command,
		args:     args,
		executor: &DefaultCommandExecutor{},
	}
}

// SetExecutor overrides the command transport (test hook).
func (d *Driver) SetExecutor(executor CommandExecutor) {
	d.executor = executor
}

// Run sends prompt to the LLM and returns its trimmed raw text
// output. Callers that expect structured output extract it themselves
// via internal/jsonx.
func (d *Driver) Run(ctx context.Context, prompt string) (string, error) {
	if prompt == "" {
		return "", fmt.Errorf("llmclient: prompt cannot be empty")
	}

	output, err := d.executor.Execute(ctx, d.command, d.args, prompt)
	if err != nil {
		return "", fmt.Errorf("llmclient: command failed: %w", err)
	}
	if len(output) == 0 {
		return "", fmt.Errorf("llmclient: empty response")
	}

	return strings.TrimSpace(string(output)), nil
}
