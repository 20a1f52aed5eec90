package utils

import (
	"os"
	"path/filepath"
	"strings"
)

func GetPathInfo(relPath string) (fullPath string, parentDir string, err error) {
	// Convert to absolute path (resolves ../../ and cleans the path)
	fullPath, err = filepath.Abs(relPath)
	if err != nil {
		return "", "", err
	}

	// Get the directory containing the file
	parentDir = filepath.Dir(fullPath)

	return fullPath, parentDir, nil
}

// WithExt appends ext to path when it has no extension.
func WithExt(path, ext string) string {
	if filepath.Ext(path) != "" {
		return path
	}
	return path + "." + strings.TrimPrefix(ext, ".")
}

// ReadProgram reads a BASIC listing from the host file system, adding .bas
// when the name has no extension.
func ReadProgram(path string) (data []byte, fullPath string, err error) {
	fullPath, _, err = GetPathInfo(WithExt(path, "bas"))
	if err != nil {
		return nil, "", err
	}
	data, err = os.ReadFile(fullPath)
	return data, fullPath, err
}

// WriteProgram writes a listing, adding .bas when the name has no extension.
func WriteProgram(path, text string) (fullPath string, err error) {
	fullPath, _, err = GetPathInfo(WithExt(path, "bas"))
	if err != nil {
		return "", err
	}
	return fullPath, os.WriteFile(fullPath, []byte(text), 0644)
}
