// Package workdir manages the ephemeral per-request working directories
// that hold generated curriculum artifacts and the rendered deck.
package workdir

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// Dir is one request's working directory, named by a random token under the
// configured root.
type Dir struct {
	path string
}

// New creates a fresh working directory under root.
func New(root string) (Dir, error) {
	path := filepath.Join(root, uuid.NewString())
	if err := os.MkdirAll(path, 0o755); err != nil {
		return Dir{}, fmt.Errorf("create working directory: %w", err)
	}
	return Dir{path: path}, nil
}

// Path returns the absolute location of a named artifact in the directory.
func (d Dir) Path(name string) string {
	return filepath.Join(d.path, name)
}

// WriteArtifact writes an artifact file and waits for it to land; a failed
// write propagates so partial pipelines are never silently incomplete.
func (d Dir) WriteArtifact(name, content string) error {
	if err := os.WriteFile(d.Path(name), []byte(content), 0o644); err != nil {
		return fmt.Errorf("write artifact %q: %w", name, err)
	}
	return nil
}
