package filesystem

import (
	"os"

	"audio-converter/domain/conversion"
)

// Checker implements conversion.FileChecker using the os package
type Checker struct{}

// NewChecker creates a new filesystem checker
func NewChecker() *Checker {
	return &Checker{}
}

// IsFile returns true if the path is an existing regular file
func (c *Checker) IsFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// IsDir returns true if the path is an existing directory
func (c *Checker) IsDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// Ensure Checker implements conversion.FileChecker
var _ conversion.FileChecker = (*Checker)(nil)
