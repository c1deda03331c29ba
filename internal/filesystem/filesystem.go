// Package filesystem provides a small file system abstraction so that
// components writing files can be tested with mocks.
package filesystem

import (
	"os"
)

// FileSystem is the set of file operations geodex components depend on.
type FileSystem interface {
	Open(name string) (*os.File, error)
	Create(name string) (*os.File, error)
	ReadFile(name string) (string, error)
	WriteFile(name string, content string) error
}

// DefaultFileSystem implements FileSystem using the os package.
type DefaultFileSystem struct{}

func (DefaultFileSystem) Open(name string) (*os.File, error) {
	return os.Open(name)
}

func (DefaultFileSystem) Create(name string) (*os.File, error) {
	return os.Create(name)
}

func (DefaultFileSystem) ReadFile(name string) (string, error) {
	data, err := os.ReadFile(name)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (DefaultFileSystem) WriteFile(name string, content string) error {
	return os.WriteFile(name, []byte(content), 0644)
}
