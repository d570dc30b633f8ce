package home

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	// DefaultDirName is the default name for the redeck home directory.
	DefaultDirName = ".redeck"

	// RunsDirName is the subdirectory holding per-conversion work dirs.
	RunsDirName = "runs"

	// OutputDirName is the subdirectory for finished presentations.
	OutputDirName = "output"

	// InboxDirName is the subdirectory watch mode observes for drops.
	InboxDirName = "inbox"

	// ConfigFileName is the default config file name.
	ConfigFileName = "config.yaml"
)

// Dir represents the redeck home directory structure.
type Dir struct {
	path string
}

// New creates a new Dir with the given path.
// If path is empty, uses the default (~/.redeck).
func New(path string) (*Dir, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get user home directory: %w", err)
		}
		path = filepath.Join(home, DefaultDirName)
	}

	return &Dir{path: path}, nil
}

// Path returns the root path of the home directory.
func (d *Dir) Path() string {
	return d.path
}

// ConfigPath returns the path to the default config file.
func (d *Dir) ConfigPath() string {
	return filepath.Join(d.path, ConfigFileName)
}

// RunsDir returns the directory holding all conversion runs.
func (d *Dir) RunsDir() string {
	return filepath.Join(d.path, RunsDirName)
}

// RunDir returns the work directory for one conversion run.
func (d *Dir) RunDir(runID string) string {
	return filepath.Join(d.RunsDir(), runID)
}

// PageImagePath returns the rendered page image path within a run.
// Page numbers are 1-indexed.
func (d *Dir) PageImagePath(runID string, pageNum int) string {
	return filepath.Join(d.RunDir(runID), fmt.Sprintf("page_%04d.png", pageNum))
}

// PageStructurePath returns the analyzed page structure path within a
// run. Page numbers are 1-indexed.
func (d *Dir) PageStructurePath(runID string, pageNum int) string {
	return filepath.Join(d.RunDir(runID), fmt.Sprintf("page_%04d.json", pageNum))
}

// OutputDir returns the directory for finished presentations.
func (d *Dir) OutputDir() string {
	return filepath.Join(d.path, OutputDirName)
}

// OutputPath returns the path for a finished presentation file.
func (d *Dir) OutputPath(name string) string {
	return filepath.Join(d.OutputDir(), name)
}

// InboxDir returns the drop directory watch mode observes.
func (d *Dir) InboxDir() string {
	return filepath.Join(d.path, InboxDirName)
}

// EnsureExists creates the home directory and subdirectories if they
// don't exist.
func (d *Dir) EnsureExists() error {
	for _, dir := range []string{d.RunsDir(), d.OutputDir(), d.InboxDir()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}
	return nil
}

// EnsureRunDir creates the work directory for a conversion run.
func (d *Dir) EnsureRunDir(runID string) error {
	return os.MkdirAll(d.RunDir(runID), 0o755)
}

// Exists returns true if the home directory exists.
func (d *Dir) Exists() bool {
	_, err := os.Stat(d.path)
	return err == nil
}

// ConfigExists returns true if the config file exists in the home directory.
func (d *Dir) ConfigExists() bool {
	_, err := os.Stat(d.ConfigPath())
	return err == nil
}
