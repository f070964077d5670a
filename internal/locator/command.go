package locator

import (
	"context"
	"os/exec"
	"strings"

	"go.uber.org/zap"

	"wifiwatch/internal/types"
)

// RunFunc runs an external command and returns its standard output
type RunFunc func(ctx context.Context, name string, args ...string) ([]byte, error)

func runCommand(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

// CommandLocator runs an interface-status command (ipconfig by default on
// Windows) and parses its text output.
type CommandLocator struct {
	command string
	args    []string
	parser  *Parser
	run     RunFunc
	logger  *zap.Logger
}

// NewCommandLocator creates a new command based locator
func NewCommandLocator(command string, args []string, parser *Parser, logger *zap.Logger) *CommandLocator {
	return &CommandLocator{
		command: command,
		args:    args,
		parser:  parser,
		run:     runCommand,
		logger:  logger.Named("locator"),
	}
}

// WithRunner replaces the command runner
func (l *CommandLocator) WithRunner(run RunFunc) *CommandLocator {
	l.run = run
	return l
}

// Locate implements Locator
func (l *CommandLocator) Locate(ctx context.Context) (types.InterfaceState, error) {
	out, err := l.run(ctx, l.command, l.args...)
	if err != nil {
		return types.InterfaceState{}, &types.LocatorError{
			Op:  "exec " + strings.TrimSpace(l.command+" "+strings.Join(l.args, " ")),
			Err: err,
		}
	}

	l.logger.Debug("Interface command output",
		zap.String("command", l.command),
		zap.String("output", string(out)))

	state := l.parser.Parse(string(out))
	if !state.Connected() {
		return types.InterfaceState{}, nil
	}
	return state, nil
}
