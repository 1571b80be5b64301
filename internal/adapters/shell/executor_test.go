package shell_test

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/knit/internal/adapters/shell"
	"go.trai.ch/knit/internal/core/domain"
	"go.trai.ch/zerr"
)

func TestExecutor_Execute_MultiLineOutput(t *testing.T) {
	executor := shell.NewExecutor()

	cmd := domain.Command{
		Name: "sass",
		Args: []string{"sh", "-c", "echo line1; echo line2"},
		Dir:  t.TempDir(),
	}

	var stdout bytes.Buffer
	err := executor.Execute(context.Background(), cmd, &stdout, io.Discard)
	require.NoError(t, err)
	assert.Equal(t, "line1\nline2\n", stdout.String())
}

func TestExecutor_Execute_SeparateStreams(t *testing.T) {
	executor := shell.NewExecutor()

	cmd := domain.Command{
		Name: "sass",
		Args: []string{"sh", "-c", "echo out; echo err >&2"},
	}

	var stdout, stderr bytes.Buffer
	require.NoError(t, executor.Execute(context.Background(), cmd, &stdout, &stderr))
	assert.Equal(t, "out\n", stdout.String())
	assert.Equal(t, "err\n", stderr.String())
}

func TestExecutor_Execute_WorkingDirectory(t *testing.T) {
	executor := shell.NewExecutor()
	dir := t.TempDir()

	cmd := domain.Command{
		Name: "pwd",
		Args: []string{"sh", "-c", "pwd -P"},
		Dir:  dir,
	}

	var stdout bytes.Buffer
	require.NoError(t, executor.Execute(context.Background(), cmd, &stdout, io.Discard))
	assert.NotEmpty(t, stdout.String())
}

func TestExecutor_Execute_EnvironmentVariables(t *testing.T) {
	executor := shell.NewExecutor()

	cmd := domain.Command{
		Name:        "jsdoc",
		Args:        []string{"sh", "-c", "echo $KNIT_TEST_VAR"},
		Environment: map[string]string{"KNIT_TEST_VAR": "test-value-123"},
	}

	var stdout bytes.Buffer
	require.NoError(t, executor.Execute(context.Background(), cmd, &stdout, io.Discard))
	assert.Equal(t, "test-value-123\n", stdout.String())
}

func TestExecutor_Execute_ExitCode(t *testing.T) {
	executor := shell.NewExecutor()

	cmd := domain.Command{
		Name: "sass",
		Args: []string{"sh", "-c", "exit 3"},
	}

	err := executor.Execute(context.Background(), cmd, io.Discard, io.Discard)
	require.Error(t, err)
	assert.Contains(t, err.Error(), domain.ErrCommandFailed.Error())

	var zErr *zerr.Error
	require.ErrorAs(t, err, &zErr)
	assert.Equal(t, 3, zErr.Metadata()["exit_code"])
	assert.Equal(t, "sass", zErr.Metadata()["command"])
}

func TestExecutor_Execute_InvalidCommand(t *testing.T) {
	executor := shell.NewExecutor()

	cmd := domain.Command{
		Name: "missing",
		Args: []string{"knit-command-that-does-not-exist"},
	}

	err := executor.Execute(context.Background(), cmd, io.Discard, io.Discard)
	require.Error(t, err)

	var zErr *zerr.Error
	require.ErrorAs(t, err, &zErr)
	assert.Equal(t, -1, zErr.Metadata()["exit_code"])
}

func TestExecutor_Execute_NotConfigured(t *testing.T) {
	executor := shell.NewExecutor()

	err := executor.Execute(context.Background(), domain.Command{Name: "doc"}, io.Discard, io.Discard)
	require.Error(t, err)
	assert.Contains(t, err.Error(), domain.ErrCommandNotConfigured.Error())
}
