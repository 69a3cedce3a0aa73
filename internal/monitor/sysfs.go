package monitor

import "os"

// SysfsReader reads a single status value.
type SysfsReader interface {
	ReadValue(path string) (string, error)
}

// FileReader reads status values from the filesystem.
type FileReader struct{}

// ReadValue returns the file's contents untrimmed.
func (FileReader) ReadValue(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
