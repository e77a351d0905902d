package pdf

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	execute "github.com/alexellis/go-execute/v2"
)

// CLI operation timeout constants
const (
	DefaultCLITimeout = 2 * time.Minute
	ProbeTimeout      = 10 * time.Second

	// maxErrorOutput bounds how much engine output ends up in an error message
	maxErrorOutput = 200
)

// execCommandWithTimeout executes a command, bounded by timeout when it is positive.
// A non-zero exit code is reported as an error carrying the command's output.
func execCommandWithTimeout(ctx context.Context, timeout time.Duration, name string, args ...string) (execute.ExecResult, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	task := execute.ExecTask{
		Command: name,
		Args:    args,
	}
	result, err := task.Execute(ctx)

	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return result, fmt.Errorf("command timed out after %v", timeout)
	}

	if result.ExitCode != 0 {
		if msg := commandOutput(result); msg != "" {
			return result, fmt.Errorf("command exited with code %d: %s", result.ExitCode, msg)
		}
		return result, fmt.Errorf("command exited with code %d", result.ExitCode)
	}

	if err != nil {
		return result, fmt.Errorf("command failed: %w", err)
	}

	return result, nil
}

// commandOutput picks the most useful diagnostic text from a finished command.
// Ghostscript prints most errors on stdout when run with -q.
func commandOutput(result execute.ExecResult) string {
	msg := strings.TrimSpace(result.Stderr)
	if msg == "" {
		msg = strings.TrimSpace(result.Stdout)
	}
	msg = strings.Join(strings.Fields(msg), " ")

	if len(msg) > maxErrorOutput {
		msg = msg[:maxErrorOutput] + "..."
	}
	return msg
}
