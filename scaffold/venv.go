// ABOUTME: Python virtualenv creation for exported swarms via `python -m venv` and pip.
// ABOUTME: Installer output is streamed line by line into the log; a non-zero exit is an error.
package scaffold

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"

	"github.com/rs/zerolog/log"
)

const (
	// DefaultPython is used when VenvOptions names no interpreter.
	DefaultPython = "python3"
	// VenvDir is the virtualenv directory inside an exported swarm.
	VenvDir = ".venv"
)

// VenvOptions configures virtualenv creation.
type VenvOptions struct {
	Python       string // interpreter running `-m venv`; empty means DefaultPython
	Requirements string // requirements file for pip; empty skips the install
}

// CreateVirtualenv creates a virtualenv at dir and, when opts.Requirements
// is set, installs it with pip. dir must not exist yet.
func CreateVirtualenv(ctx context.Context, dir string, opts VenvOptions) error {
	python := opts.Python
	if python == "" {
		python = DefaultPython
	}

	if _, err := os.Stat(dir); err == nil {
		return fmt.Errorf("virtualenv %s: %w", dir, ErrExists)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("stat %s: %w", dir, err)
	}

	log.Info().Str("path", dir).Msg("creating virtual environment")
	if err := run(ctx, python, "-m", "venv", dir); err != nil {
		return fmt.Errorf("create virtualenv: %w", err)
	}
	log.Info().Str("path", dir).Msg("virtual environment created")

	if opts.Requirements == "" {
		return nil
	}
	log.Info().Str("requirements", opts.Requirements).Msg("installing packages")
	if err := run(ctx, venvPython(dir), "-m", "pip", "install", "-r", opts.Requirements); err != nil {
		return fmt.Errorf("install requirements: %w", err)
	}
	log.Info().Msg("packages installed")
	return nil
}

// SetupVirtualenv creates <base>/<swarmName>/.venv.
func SetupVirtualenv(ctx context.Context, base, swarmName string, opts VenvOptions) error {
	return CreateVirtualenv(ctx, filepath.Join(base, swarmName, VenvDir), opts)
}

func venvPython(dir string) string {
	if runtime.GOOS == "windows" {
		return filepath.Join(dir, "Scripts", "python.exe")
	}
	return filepath.Join(dir, "bin", "python")
}

// run executes name with args, logging combined output as it arrives.
func run(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	pr, pw := io.Pipe()
	cmd.Stdout = pw
	cmd.Stderr = pw

	done := make(chan struct{})
	go func() {
		defer close(done)
		sc := bufio.NewScanner(pr)
		for sc.Scan() {
			log.Info().Str("cmd", filepath.Base(name)).Msg(sc.Text())
		}
		_, _ = io.Copy(io.Discard, pr)
	}()

	err := cmd.Run()
	_ = pw.Close()
	<-done
	if err != nil {
		return fmt.Errorf("%s: %w", filepath.Base(name), err)
	}
	return nil
}
