// ABOUTME: Tests for the scaffold writer and virtualenv creation.
// ABOUTME: Virtualenv tests swap the interpreter for a shell stub so no Python is required.
package scaffold_test

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389-research/swarmbase/scaffold"
)

func TestCreateRootRefusesExisting(t *testing.T) {
	dir := t.TempDir()
	root := filepath.Join(dir, "research")

	var w scaffold.Writer
	require.NoError(t, w.CreateRoot(root))
	assert.DirExists(t, root)

	err := w.CreateRoot(root)
	assert.ErrorIs(t, err, scaffold.ErrExists)
}

func TestCreateDirectoryToleratesExisting(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b", "c")
	var w scaffold.Writer

	require.NoError(t, w.CreateDirectory(dir))
	require.NoError(t, w.CreateDirectory(dir))
	assert.DirExists(t, dir)
}

func TestCreateDirectoryOverFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	var w scaffold.Writer
	assert.Error(t, w.CreateDirectory(path))
}

func TestWriteFileOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "__main__.py")
	var w scaffold.Writer

	require.NoError(t, w.WriteFile(path, "first"))
	require.NoError(t, w.WriteFile(path, "zażółć"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "zażółć", string(data))
}

func TestCreateVirtualenvRefusesExisting(t *testing.T) {
	err := scaffold.CreateVirtualenv(context.Background(), t.TempDir(), scaffold.VenvOptions{})
	assert.ErrorIs(t, err, scaffold.ErrExists)
}

// stubPython writes a fake interpreter that builds a venv whose python
// records the pip invocation in pip.log, and returns its path.
func stubPython(t *testing.T, exitCode int) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell stub requires a POSIX shell")
	}
	script := `#!/bin/sh
if [ "$1" = "-m" ] && [ "$2" = "venv" ]; then
  mkdir -p "$3/bin"
  printf '#!/bin/sh\necho "installing $*"\necho "$*" > "$(dirname "$0")/../pip.log"\n' > "$3/bin/python"
  chmod +x "$3/bin/python"
  echo "created $3"
fi
exit ` + string(rune('0'+exitCode)) + "\n"

	path := filepath.Join(t.TempDir(), "python")
	require.NoError(t, os.WriteFile(path, []byte(script), 0o755))
	return path
}

func TestSetupVirtualenvInstallsRequirements(t *testing.T) {
	python := stubPython(t, 0)
	base := t.TempDir()

	err := scaffold.SetupVirtualenv(context.Background(), base, "research",
		scaffold.VenvOptions{Python: python, Requirements: "requirements.txt"})
	require.NoError(t, err)

	venv := filepath.Join(base, "research", scaffold.VenvDir)
	data, err := os.ReadFile(filepath.Join(venv, "pip.log"))
	require.NoError(t, err)
	assert.Equal(t, "-m pip install -r requirements.txt\n", string(data))
}

func TestCreateVirtualenvFailure(t *testing.T) {
	python := stubPython(t, 1)
	err := scaffold.CreateVirtualenv(context.Background(), filepath.Join(t.TempDir(), "env"), scaffold.VenvOptions{Python: python})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "create virtualenv")
}

func TestCreateVirtualenvUsesGivenInterpreter(t *testing.T) {
	first, second := stubPython(t, 0), stubPython(t, 1)
	dir := t.TempDir()

	require.NoError(t, scaffold.CreateVirtualenv(context.Background(), filepath.Join(dir, "a"), scaffold.VenvOptions{Python: first}))
	err := scaffold.CreateVirtualenv(context.Background(), filepath.Join(dir, "b"), scaffold.VenvOptions{Python: second})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "python")

	_, err = os.Stat(filepath.Join(dir, "a", "bin", "python"))
	assert.NoError(t, err)
}
