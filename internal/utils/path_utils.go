package utils

import (
	"path/filepath"

	"github.com/funvibe/funxy/internal/config"
)

// ExtractModuleName derives a short label from a file path for use in
// CLI output and logging: the base filename with any recognized source
// extension trimmed.
func ExtractModuleName(path string) string {
	name := filepath.Base(path)
	return config.TrimSourceExt(name)
}
