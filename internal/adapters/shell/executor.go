// Package shell runs external tools for the style and documentation tasks.
package shell

import (
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"slices"
	"strings"

	"github.com/creack/pty"
	"go.trai.ch/knit/internal/core/domain"
	"go.trai.ch/knit/internal/core/ports"
	"go.trai.ch/zerr"
	"golang.org/x/term"
)

var _ ports.Executor = (*Executor)(nil)

// Executor implements ports.Executor using os/exec.
// Commands writing to a terminal run in a PTY so they keep their colored output.
type Executor struct{}

// NewExecutor creates a new Executor.
func NewExecutor() *Executor {
	return &Executor{}
}

// Execute runs cmd to completion.
func (e *Executor) Execute(ctx context.Context, cmd domain.Command, stdout, stderr io.Writer) error {
	if len(cmd.Args) == 0 {
		return zerr.With(domain.ErrCommandNotConfigured, "command", cmd.Name)
	}

	c := exec.CommandContext(ctx, cmd.Args[0], cmd.Args[1:]...) //nolint:gosec // command comes from the project config
	c.Dir = cmd.Dir
	c.Env = resolveEnvironment(os.Environ(), cmd.Environment)

	var err error
	if isTerminal(stdout) {
		err = runInPTY(c, stdout)
		if errors.Is(err, pty.ErrUnsupported) {
			err = runWithPipes(c, stdout, stderr)
		}
	} else {
		err = runWithPipes(c, stdout, stderr)
	}

	if err != nil {
		exitCode := -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			exitCode = exitErr.ExitCode()
		}
		wrapped := zerr.With(zerr.Wrap(err, domain.ErrCommandFailed.Error()), "exit_code", exitCode)
		return zerr.With(wrapped, "command", cmd.Name)
	}
	return nil
}

func runWithPipes(c *exec.Cmd, stdout, stderr io.Writer) error {
	c.Stdout = stdout
	c.Stderr = stderr
	return c.Run()
}

// runInPTY merges stdout and stderr of c into one terminal stream copied to out.
func runInPTY(c *exec.Cmd, out io.Writer) error {
	ptmx, err := pty.Start(c)
	if err != nil {
		return err
	}

	ioDone := make(chan struct{})
	go func() {
		defer close(ioDone)
		_, _ = io.Copy(out, ptmx)
	}()

	err = c.Wait()
	<-ioDone
	_ = ptmx.Close()
	return err
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd())) //nolint:gosec // file descriptors fit in int
}

// resolveEnvironment overlays overrides on the inherited environment, sorted by key.
func resolveEnvironment(sysEnv []string, overrides map[string]string) []string {
	envMap := make(map[string]string, len(sysEnv)+len(overrides))
	for _, entry := range sysEnv {
		if k, v, ok := strings.Cut(entry, "="); ok {
			envMap[k] = v
		}
	}
	for k, v := range overrides {
		envMap[k] = v
	}

	result := make([]string, 0, len(envMap))
	for k, v := range envMap {
		result = append(result, k+"="+v)
	}
	slices.Sort(result)
	return result
}
