package file

import (
	"errors"
	"os"
	"path/filepath"
)

// Default permissions for created report files and directories
const (
	DefaultPermissionOctal = 0o770
	FilePermissionOctal    = 0o640
)

var errEmptyPath = errors.New("file path is empty")

// Writer creates or truncates file for writing, creating any missing parent
// directories
func Writer(file string) (*os.File, error) {
	if file == "" {
		return nil, errEmptyPath
	}
	if err := os.MkdirAll(filepath.Dir(file), DefaultPermissionOctal); err != nil {
		return nil, err
	}
	return os.OpenFile(file, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, FilePermissionOctal)
}

// Exists returns whether or not a file or path exists
func Exists(name string) bool {
	_, err := os.Stat(name)
	return err == nil
}
