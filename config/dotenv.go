// ABOUTME: Loads .env files into the process environment at startup.
// ABOUTME: Variables already present in the environment are never overwritten.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// LoadDotEnv loads the given .env files, then .env in the working directory
// and its parents. Missing files are skipped. A malformed file named in
// paths is an error; a malformed file found by the directory walk is logged
// and skipped.
func LoadDotEnv(paths ...string) error {
	seen := map[string]bool{}
	for _, p := range paths {
		if p == "" || seen[p] {
			continue
		}
		seen[p] = true
		if err := loadIfExists(p); err != nil {
			return err
		}
	}

	wd, err := os.Getwd()
	if err != nil {
		return nil
	}
	for dir := wd; ; {
		p := filepath.Join(dir, ".env")
		if !seen[p] {
			seen[p] = true
			if err := loadIfExists(p); err != nil {
				log.Warn().Err(err).Str("path", p).Msg("skipping malformed .env")
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return nil
		}
		dir = parent
	}
}

func loadIfExists(path string) error {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	log.Debug().Str("path", path).Msg("loaded .env")
	return nil
}
