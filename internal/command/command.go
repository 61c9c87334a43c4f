// Package command provides safe wrappers for executing external commands.
// The only subprocess the bot runs is ffmpeg for audio transcoding, and all
// such execution goes through these functions for consistent timeouts and
// error handling.
package command

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// DefaultTimeout is the default timeout for command execution. Audio
// transcodes of chat-length voice notes finish well within it.
const DefaultTimeout = 60 * time.Second

// RunCommand executes a command and returns its combined output.
// The command is executed with the default timeout.
func RunCommand(name string, args ...string) (string, error) {
	return RunCommandContext(context.Background(), name, args...)
}

// RunCommandContext executes a command with the given context and returns
// its combined output. If the context has no deadline, the default timeout
// is applied.
func RunCommandContext(ctx context.Context, name string, args ...string) (string, error) {
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, DefaultTimeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, name, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return "", fmt.Errorf("command failed: %s %s (exit code %d): %s",
				name, strings.Join(args, " "), exitErr.ExitCode(), string(output))
		}
		return "", fmt.Errorf("command failed: %s %s: %w (output: %s)",
			name, strings.Join(args, " "), err, string(output))
	}

	return string(output), nil
}
