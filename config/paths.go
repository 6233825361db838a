package config

import (
	"os"
	"path/filepath"
)

// AssetRoots returns the directories manifest paths are resolved against, in priority
// order: the parent of the executable's directory, then the working directory.
//
// Returns:
//   - []string: the candidate roots, skipping any that cannot be determined
func AssetRoots() []string {
	var roots []string
	if exe, err := os.Executable(); err == nil {
		if resolved, err := filepath.EvalSymlinks(exe); err == nil {
			exe = resolved
		}
		roots = append(roots, filepath.Join(filepath.Dir(exe), ".."))
	}
	if wd, err := os.Getwd(); err == nil {
		roots = append(roots, wd)
	}
	return roots
}

// Resolve joins rel onto the first root under which it exists. Absolute paths are returned
// unchanged. When no root has the file the path under the last root is returned, so the
// error later reported by the loader names a real location.
//
// Parameters:
//   - roots: candidate directories in priority order
//   - rel: a manifest path
//
// Returns:
//   - string: the resolved path
func Resolve(roots []string, rel string) string {
	rel = filepath.FromSlash(rel)
	if filepath.IsAbs(rel) || len(roots) == 0 {
		return rel
	}
	for _, root := range roots {
		p := filepath.Join(root, rel)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return filepath.Join(roots[len(roots)-1], rel)
}
