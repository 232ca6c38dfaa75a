package ops

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hpungsan/tratativa/internal/config"
	"github.com/hpungsan/tratativa/internal/errors"
)

// PathCheckMode indicates whether the path check is for reading or writing.
type PathCheckMode int

const (
	PathCheckRead  PathCheckMode = iota // import
	PathCheckWrite                      // export
)

// FileFormat is the on-disk encoding of a template file, chosen by extension.
type FileFormat string

const (
	FormatJSONL FileFormat = "jsonl"
	FormatYAML  FileFormat = "yaml"
)

// FormatForPath maps .jsonl to JSONL and .yaml/.yml to YAML.
func FormatForPath(path string) (FileFormat, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jsonl":
		return FormatJSONL, true
	case ".yaml", ".yml":
		return FormatYAML, true
	default:
		return "", false
	}
}

// ValidatePath checks a template import/export path:
//  1. no ".." components
//  2. a .jsonl, .yaml or .yml extension
//  3. the file sits directly in ~/.tratativa/exports or an allowed_paths entry
//  4. neither the parent directory nor the file is a symlink
//
// Requiring the file to sit directly in an allowed directory means only the
// final component can be swapped for a symlink after validation, and that one
// is opened with O_NOFOLLOW.
func ValidatePath(path string, mode PathCheckMode, cfg *config.Config) error {
	if path == "" {
		return errors.NewInvalidRequest("path is required")
	}

	if containsTraversal(path) {
		return errors.NewInvalidRequest("path must not contain directory traversal (..)")
	}

	cleaned := filepath.Clean(path)
	if _, ok := FormatForPath(cleaned); !ok {
		return errors.NewInvalidRequest("path must have .jsonl, .yaml or .yml extension")
	}

	absPath, err := filepath.Abs(cleaned)
	if err != nil {
		return errors.NewInvalidRequest(fmt.Sprintf("invalid path: %v", err))
	}

	// Unsafe mode lifts the directory restriction only.
	if cfg == nil || !cfg.AllowUnsafePaths {
		allowedDirs, err := getAllowedDirs(cfg)
		if err != nil {
			return err
		}

		parentDir := filepath.Dir(absPath)
		if !isDirectlyInAllowedDir(parentDir, allowedDirs) {
			return errors.NewInvalidRequest(
				fmt.Sprintf("file must be directly in an allowed directory (no subdirectories); allowed: %v",
					allowedDirs))
		}

		if isSymlink(parentDir) {
			return errors.NewInvalidRequest("parent directory must not be a symlink")
		}
	}

	if mode == PathCheckRead {
		if _, err := os.Stat(absPath); os.IsNotExist(err) {
			return errors.NewFileNotFound(path)
		}
	}

	if isSymlink(absPath) {
		return errors.NewInvalidRequest("path must not be a symlink")
	}

	return nil
}

func isSymlink(path string) bool {
	info, err := os.Lstat(path)
	return err == nil && info.Mode()&os.ModeSymlink != 0
}

// getAllowedDirs returns the default exports directory plus every absolute
// allowed_paths entry, cleaned and with symlinked entries resolved.
func getAllowedDirs(cfg *config.Config) ([]string, error) {
	defaultDir, err := DefaultExportsDir()
	if err != nil {
		return nil, err
	}
	dirs := []string{defaultDir}

	if cfg != nil {
		for _, p := range cfg.AllowedPaths {
			if filepath.IsAbs(p) {
				dirs = append(dirs, filepath.Clean(p))
			}
		}
	}

	result := make([]string, 0, len(dirs))
	for _, d := range dirs {
		abs, err := filepath.Abs(filepath.Clean(d))
		if err != nil {
			return nil, errors.NewInvalidRequest(fmt.Sprintf("invalid allowed path: %v", err))
		}

		if isSymlink(abs) {
			resolved, err := filepath.EvalSymlinks(abs)
			if err != nil {
				return nil, errors.NewInvalidRequest(fmt.Sprintf("cannot resolve symlink in allowed path: %v", err))
			}
			abs = resolved
		}
		result = append(result, abs)
	}

	return result, nil
}

// isDirectlyInAllowedDir reports whether parentDir is exactly one of allowedDirs.
func isDirectlyInAllowedDir(parentDir string, allowedDirs []string) bool {
	parentDir = filepath.Clean(parentDir)
	for _, dir := range allowedDirs {
		if parentDir == filepath.Clean(dir) {
			return true
		}
	}
	return false
}

// DefaultExportsDir returns ~/.tratativa/exports.
func DefaultExportsDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", errors.NewInternal(fmt.Errorf("failed to get home directory: %w", err))
	}
	return filepath.Join(homeDir, config.DirName, "exports"), nil
}

// containsTraversal reports whether any path component is "..".
// Forward slashes are checked on every platform since paths come from user input.
func containsTraversal(path string) bool {
	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		if part == ".." {
			return true
		}
	}
	return false
}
