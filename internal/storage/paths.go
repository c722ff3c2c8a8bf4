package storage

import (
	"path/filepath"
	"strings"
)

const (
	// StagingExt replaces the primary's extension for the staging file.
	StagingExt = ".tmp"
	// BackupExt replaces the primary's extension for the backup file.
	BackupExt = ".bak"
)

// StagingPath returns the staging sibling of path.
func StagingPath(path string) string { return replaceExt(path, StagingExt) }

// BackupPath returns the backup sibling of path.
func BackupPath(path string) string { return replaceExt(path, BackupExt) }

// siblingPaths derives the staging and backup paths for a primary file,
// rejecting primaries whose siblings would collide with the primary itself.
func siblingPaths(path string) (staging, backup string, err error) {
	if path == "" {
		return "", "", ErrEmptyPath
	}
	switch strings.ToLower(fileExt(path)) {
	case StagingExt, BackupExt:
		return "", "", ErrReservedExtension
	}
	return StagingPath(path), BackupPath(path), nil
}

// replaceExt swaps the extension of the final path element for ext. A name
// without an extension, or a dot-file such as ".db", gets ext appended.
func replaceExt(path, ext string) string {
	return path[:len(path)-len(fileExt(path))] + ext
}

func fileExt(path string) string {
	if strings.HasSuffix(path, "/") || strings.HasSuffix(path, string(filepath.Separator)) {
		return ""
	}
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	if ext == base {
		return ""
	}
	return ext
}
