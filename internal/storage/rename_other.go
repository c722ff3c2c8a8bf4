//go:build !windows

package storage

import "os"

// atomicRename replaces newpath with oldpath in a single rename(2) call.
func atomicRename(oldpath, newpath string) error {
	return os.Rename(oldpath, newpath)
}

// syncDir flushes the directory entry table so a completed rename survives
// power loss.
func syncDir(dir string) error {
	d, err := os.Open(dir)
	if err != nil {
		return err
	}
	defer d.Close()
	return d.Sync()
}
