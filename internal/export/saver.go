package export

import (
	"fmt"
	"os"
	"path/filepath"
)

// DirSaver writes artifacts into a directory, creating it on demand
type DirSaver struct {
	Dir string
}

// Save writes data to Dir/name
func (s DirSaver) Save(name string, data []byte) (string, error) {
	if err := os.MkdirAll(s.Dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	path := filepath.Join(s.Dir, filepath.Base(name))
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
	}
	return path, nil
}

// OpenerFunc adapts a function to the Opener interface
type OpenerFunc func(url string) error

// OpenURL calls f(url)
func (f OpenerFunc) OpenURL(url string) error {
	return f(url)
}
