// Package setupscript assembles migration "up" files found under a directory
// tree into a single setup script. It never executes sql.
package setupscript

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"

	"github.com/blockedby/dbsetup/internal/logger"
)

// Config describes one concatenation run.
type Config struct {
	// SourceRoot - directory scanned recursively for migrations.
	SourceRoot string

	// OutputPath - setup script to write. overwritten on every run.
	// its parent directory is created (one level) when missing.
	OutputPath string

	// FileNamePattern - regular expression matched against base names,
	// anchored at the start of the name only.
	FileNamePattern string
}

// Result contains run statistics
type Result struct {
	// Files - migration paths in the order they were written.
	Files []string

	// Bytes - total bytes written to the setup script.
	Bytes int64

	// CreatedDir is true when the output directory did not exist.
	CreatedDir bool
}

// Concatenator discovers and concatenates migration files.
type Concatenator struct {
	log *logger.Logger
}

// NewConcatenator creates a new concatenator. A nil log discards output.
func NewConcatenator(log *logger.Logger) *Concatenator {
	if log == nil {
		log = logger.Nop()
	}
	return &Concatenator{log: log}
}

// Discover returns every file under cfg.SourceRoot whose base name matches
// cfg.FileNamePattern, sorted by full path. A missing root yields no files.
// The output file itself is never returned.
func (c *Concatenator) Discover(cfg Config) ([]string, error) {
	m, err := NewMatcher(cfg.FileNamePattern)
	if err != nil {
		return nil, err
	}

	skip := absPath(cfg.OutputPath)
	root := cfg.SourceRoot

	var files []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root && errors.Is(err, fs.ErrNotExist) {
				c.log.Debug().Str("root", root).Msg("source root does not exist")
				return nil
			}
			// unreadable entries are skipped, the walk goes on
			c.log.Warn().Err(err).Str("path", path).Msg("skipping unreadable path")
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			return nil
		}
		if path == root {
			// root is a plain file, nothing to walk
			return nil
		}
		if d.Type()&fs.ModeSymlink != 0 {
			if info, err := os.Stat(path); err == nil && info.IsDir() {
				return nil
			}
		}

		if !m.Match(d.Name()) {
			return nil
		}
		if skip != "" && absPath(path) == skip {
			c.log.Debug().Str("path", path).Msg("ignoring output file")
			return nil
		}

		c.log.Debug().Str("path", path).Msg("found migration")
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}

	slices.Sort(files)
	return files, nil
}

// Concatenate writes every discovered migration, each followed by a single
// newline, to cfg.OutputPath. Nothing is written when no migration matches.
//
// A failure while writing leaves the partial script in place.
func (c *Concatenator) Concatenate(cfg Config) (*Result, error) {
	c.log.Info().
		Str("root", cfg.SourceRoot).
		Str("pattern", cfg.FileNamePattern).
		Msg("browsing for migration files")

	files, err := c.Discover(cfg)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w under %s matching %q", ErrNoMigrationsFound, cfg.SourceRoot, cfg.FileNamePattern)
	}

	created, err := ensureDir(filepath.Dir(cfg.OutputPath))
	if err != nil {
		return nil, err
	}
	if created {
		c.log.Debug().Str("dir", filepath.Dir(cfg.OutputPath)).Msg("created output directory")
	}

	n, err := c.write(cfg.OutputPath, files)
	if err != nil {
		return nil, err
	}

	return &Result{Files: files, Bytes: n, CreatedDir: created}, nil
}

func (c *Concatenator) write(outputPath string, files []string) (int64, error) {
	out, err := os.Create(outputPath)
	if err != nil {
		return 0, fmt.Errorf("%w %s: %w", ErrFileWrite, outputPath, err)
	}
	defer out.Close()

	var total int64
	for _, path := range files {
		c.log.Info().Str("path", path).Msg("appending migration")

		content, err := os.ReadFile(path)
		if err != nil {
			return total, fmt.Errorf("%w %s: %w", ErrFileRead, path, err)
		}

		n, err := out.Write(append(content, '\n'))
		total += int64(n)
		if err != nil {
			return total, fmt.Errorf("%w %s: %w", ErrFileWrite, outputPath, err)
		}
	}

	if err := out.Close(); err != nil {
		return total, fmt.Errorf("%w %s: %w", ErrFileWrite, outputPath, err)
	}
	return total, nil
}

// ensureDir creates dir (not its parents) when missing.
func ensureDir(dir string) (bool, error) {
	info, err := os.Stat(dir)
	switch {
	case err == nil:
		if !info.IsDir() {
			return false, fmt.Errorf("%w %s: not a directory", ErrDirectoryCreate, dir)
		}
		return false, nil
	case !errors.Is(err, fs.ErrNotExist):
		return false, fmt.Errorf("%w %s: %w", ErrDirectoryCreate, dir, err)
	}

	if err := os.Mkdir(dir, 0755); err != nil {
		if errors.Is(err, fs.ErrExist) {
			return false, nil
		}
		return false, fmt.Errorf("%w %s: %w", ErrDirectoryCreate, dir, err)
	}
	return true, nil
}

func absPath(path string) string {
	if path == "" {
		return ""
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return filepath.Clean(path)
	}
	return abs
}
