// Package config holds small cross-cutting constants for the funxy
// CLI: the tool's version and the set of file extensions it treats as
// source.
package config

// Version is the current funxy version. Set at build time via
// -ldflags, or left at this default for local builds.
var Version = "0.7.0-frontend"

// SourceFileExtensions are the file extensions the CLI recognizes as
// source when checking input paths or labeling log lines.
var SourceFileExtensions = []string{".scm", ".fx", ".funxy"}

// TrimSourceExt removes any recognized source extension from a
// filename. Returns the original string if no extension matches.
func TrimSourceExt(name string) string {
	for _, ext := range SourceFileExtensions {
		if len(name) >= len(ext) && name[len(name)-len(ext):] == ext {
			return name[:len(name)-len(ext)]
		}
	}
	return name
}

// HasSourceExt returns true if the path ends with any recognized
// source extension.
func HasSourceExt(path string) bool {
	for _, ext := range SourceFileExtensions {
		if len(path) >= len(ext) && path[len(path)-len(ext):] == ext {
			return true
		}
	}
	return false
}
