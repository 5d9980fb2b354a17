package compiler

import (
	"os"
	"path/filepath"

	dwferrors "github.com/conneroisu/devworkflows/internal/errors"
	"github.com/conneroisu/devworkflows/internal/rules"
)

// Strategy materializes compiled output at a path relative to the project root.
type Strategy interface {
	// Write stores content so that relPath reads it back.
	Write(relPath, content string) error
	// Remove deletes relPath and anything backing it. Missing files are not an error.
	Remove(relPath string) error
}

// NewStrategy returns the write strategy for mode.
func NewStrategy(root string, mode rules.Mode) Strategy {
	if mode == rules.ModeLink {
		return &linkStrategy{root: root}
	}
	return &copyStrategy{root: root}
}

// copyStrategy writes each output straight to its destination.
type copyStrategy struct {
	root string
}

func (s *copyStrategy) Write(relPath, content string) error {
	return writeFile(filepath.Join(s.root, relPath), content)
}

func (s *copyStrategy) Remove(relPath string) error {
	return removeFile(filepath.Join(s.root, relPath))
}

// linkStrategy keeps the real file under .dwf/.cache and points the
// destination at it with a symlink.
type linkStrategy struct {
	root string
}

func (s *linkStrategy) cachePath(relPath string) string {
	return filepath.Join(rules.CachePath(s.root), relPath)
}

func (s *linkStrategy) Write(relPath, content string) error {
	target, err := filepath.Abs(s.cachePath(relPath))
	if err != nil {
		return dwferrors.NewIOError(dwferrors.ErrCodeWriteFailed, "failed to resolve cache path", err).WithPath(relPath)
	}
	if err := writeFile(target, content); err != nil {
		return err
	}

	dest := filepath.Join(s.root, relPath)
	if err := removeFile(dest); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return dwferrors.NewIOError(dwferrors.ErrCodeWriteFailed, "failed to create output directory", err).WithPath(dest)
	}
	if err := os.Symlink(target, dest); err != nil {
		return dwferrors.NewIOError(dwferrors.ErrCodeWriteFailed, "failed to link output", err).WithPath(dest)
	}
	return nil
}

func (s *linkStrategy) Remove(relPath string) error {
	if err := removeFile(filepath.Join(s.root, relPath)); err != nil {
		return err
	}
	return removeFile(s.cachePath(relPath))
}

func writeFile(path, content string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return dwferrors.NewIOError(dwferrors.ErrCodeWriteFailed, "failed to create output directory", err).WithPath(path)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return dwferrors.NewIOError(dwferrors.ErrCodeWriteFailed, "failed to write output", err).WithPath(path)
	}
	return nil
}

// removeFile deletes a file or symlink without following it.
func removeFile(path string) error {
	if _, err := os.Lstat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return dwferrors.NewIOError(dwferrors.ErrCodeWriteFailed, "failed to stat output", err).WithPath(path)
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return dwferrors.NewIOError(dwferrors.ErrCodeWriteFailed, "failed to remove output", err).WithPath(path)
	}
	return nil
}

// readFile returns the content at path. found is false when nothing exists there.
func readFile(path string) (content string, found bool, err error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", false, nil
		}
		return "", false, dwferrors.NewIOError(dwferrors.ErrCodeReadFailed, "failed to read output", err).WithPath(path)
	}
	return string(raw), true, nil
}
