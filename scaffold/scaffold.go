// ABOUTME: Filesystem writer for generated swarm projects: root directory, sub-directories and UTF-8 files.
// ABOUTME: The export root must not exist yet; existing sub-directories only produce a warning.
package scaffold

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
)

// ErrExists is returned when a directory that must be fresh already exists.
var ErrExists = errors.New("already exists")

// Writer creates directories and files. A zero Writer uses 0o755 for
// directories and 0o644 for files.
type Writer struct {
	DirMode  fs.FileMode
	FileMode fs.FileMode
}

func (w Writer) dirMode() fs.FileMode {
	if w.DirMode == 0 {
		return 0o755
	}
	return w.DirMode
}

func (w Writer) fileMode() fs.FileMode {
	if w.FileMode == 0 {
		return 0o644
	}
	return w.FileMode
}

// CreateRoot creates the top-level export directory, failing with ErrExists
// if anything is already at path.
func (w Writer) CreateRoot(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("export directory %s: %w", path, ErrExists)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("stat %s: %w", path, err)
	}
	if err := os.MkdirAll(path, w.dirMode()); err != nil {
		return fmt.Errorf("create export directory: %w", err)
	}
	log.Info().Str("path", path).Msg("created directory")
	return nil
}

// CreateDirectory creates path and its parents. An existing directory is
// logged and left alone.
func (w Writer) CreateDirectory(path string) error {
	if info, err := os.Stat(path); err == nil {
		if !info.IsDir() {
			return fmt.Errorf("create directory %s: not a directory", path)
		}
		log.Warn().Str("path", path).Msg("directory already exists")
		return nil
	}
	if err := os.MkdirAll(path, w.dirMode()); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}
	log.Info().Str("path", path).Msg("created directory")
	return nil
}

// WriteFile writes content to path, replacing any existing file.
func (w Writer) WriteFile(path, content string) error {
	if err := os.WriteFile(path, []byte(content), w.fileMode()); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	log.Info().Str("path", path).Int("bytes", len(content)).Msg("wrote file")
	return nil
}
