package maven

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"slices"
	"strings"

	"github.com/sdlc-tools/mcp-server/pkg/logging"
)

// allowedCommands are the goal prefixes run-maven-command accepts
var allowedCommands = []string{
	"clean", "compile", "test", "package", "verify", "install",
	"dependency:tree", "dependency:analyze", "versions:display-dependency-updates",
	"jacoco:report", "pmd:pmd", "pmd:cpd",
}

// AllowedCommands returns a copy of the allow-list
func AllowedCommands() []string {
	return append([]string(nil), allowedCommands...)
}

// deniedOptions point Maven at another POM, settings file or toolchain
var deniedOptions = []string{
	"-f", "--file", "-s", "--settings", "-gs", "--global-settings", "-t", "--toolchains",
}

// IsAllowed reports whether every goal in command is allow-listed. Options
// are accepted except those that swap the build or settings files.
func IsAllowed(command string) bool {
	tokens := strings.Fields(command)
	if len(tokens) == 0 {
		return false
	}
	for _, token := range tokens {
		if strings.HasPrefix(token, "-") {
			if deniedOption(token) {
				return false
			}
			continue
		}
		if !slices.Contains(allowedCommands, token) {
			return false
		}
	}
	return true
}

func deniedOption(token string) bool {
	for _, opt := range deniedOptions {
		if strings.HasPrefix(token, opt) {
			return true
		}
	}
	return false
}

// Invocation describes one Maven run
type Invocation struct {
	POM       string
	Goals     []string
	Projects  []string
	AlsoMake  bool
	BatchMode bool
}

// InvocationResult is the outcome of a Maven run that started
type InvocationResult struct {
	ExitCode int
	Output   string
}

// Executor runs Maven. It returns an error only when Maven could not be
// started; a failing build is a non-zero ExitCode.
type Executor interface {
	Execute(ctx context.Context, inv Invocation) (*InvocationResult, error)
}

// CommandExecutor runs the mvn binary as a child process
type CommandExecutor struct {
	bin    string
	logger logging.Logger
}

// NewCommandExecutor creates an executor for bin, "mvn" when empty
func NewCommandExecutor(bin string, logger logging.Logger) *CommandExecutor {
	if bin == "" {
		bin = "mvn"
	}
	if logger == nil {
		logger = logging.Nop()
	}
	return &CommandExecutor{bin: bin, logger: logger}
}

// Args returns the command line arguments for inv
func (e *CommandExecutor) Args(inv Invocation) []string {
	var args []string
	if inv.POM != "" {
		args = append(args, "-f", inv.POM)
	}
	if inv.BatchMode {
		args = append(args, "-B")
	}
	if len(inv.Projects) > 0 {
		args = append(args, "-pl", strings.Join(inv.Projects, ","))
		if inv.AlsoMake {
			args = append(args, "-am")
		}
	}
	return append(args, inv.Goals...)
}

// Execute runs mvn and captures combined output
func (e *CommandExecutor) Execute(ctx context.Context, inv Invocation) (*InvocationResult, error) {
	args := e.Args(inv)
	cmd := exec.CommandContext(ctx, e.bin, args...)
	if inv.POM != "" {
		cmd.Dir = filepath.Dir(inv.POM)
	}

	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	e.logger.Debug("Running maven", logging.String("bin", e.bin), logging.String("args", strings.Join(args, " ")))

	err := cmd.Run()
	if err == nil {
		return &InvocationResult{ExitCode: 0, Output: out.String()}, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && ctx.Err() == nil {
		return &InvocationResult{ExitCode: exitErr.ExitCode(), Output: out.String()}, nil
	}
	return nil, fmt.Errorf("run %s: %w", e.bin, err)
}

// CommandResult is returned by RunCommand
type CommandResult struct {
	Success  bool   `json:"success"`
	ExitCode int    `json:"exitCode"`
	Message  string `json:"message"`
	Output   string `json:"output,omitempty"`
}

// maxOutput bounds the output returned to the client; the tail is kept
const maxOutput = 16 << 10

// RunCommand runs an allow-listed command line against the project at path
func RunCommand(ctx context.Context, exe Executor, path, command, module string) (*CommandResult, error) {
	command = strings.TrimSpace(command)
	if !IsAllowed(command) {
		return nil, fmt.Errorf("Command not allowed: %s. Allowed commands: [%s]", command, strings.Join(allowedCommands, ", "))
	}

	inv := Invocation{
		POM:   filepath.Join(path, PomFileName),
		Goals: strings.Fields(command),
	}
	if module != "" {
		inv.Projects = []string{module}
		inv.AlsoMake = true
	}

	res, err := exe.Execute(ctx, inv)
	if err != nil {
		return nil, err
	}

	result := &CommandResult{
		Success:  res.ExitCode == 0,
		ExitCode: res.ExitCode,
		Output:   tail(res.Output, maxOutput),
	}
	if result.Success {
		result.Message = "Command executed successfully"
	} else {
		result.Message = fmt.Sprintf("Command failed with exit code: %d", res.ExitCode)
	}
	return result, nil
}

func tail(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
