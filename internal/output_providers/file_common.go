package outputproviders

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
)

// GetFullPath constructs the full file path from filename and output path
func GetFullPath(filename string, outputPath string) string {
	return outputPath + string(os.PathSeparator) + filename
}

// DefaultFileName builds an output file name for a module run.
func DefaultFileName(prefix, ext string) string {
	return fmt.Sprintf("blackcat-%s-%s.%s", prefix, GenerateShortUUID(), ext)
}

// GenerateShortUUID generates a random 10-character UUID
func GenerateShortUUID() string {
	b := make([]byte, 5) // 5 bytes = 10 hex characters
	if _, err := rand.Read(b); err != nil {
		return "" // In case of error, return empty string
	}
	return hex.EncodeToString(b)
}

// ensureDir creates the parent directory of fullpath when missing.
func ensureDir(fullpath string) error {
	dir := filepath.Dir(fullpath)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return os.MkdirAll(dir, os.ModePerm)
	}
	return nil
}
