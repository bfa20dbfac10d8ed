//go:build !unix

package godb

import "os"

// lockFile is a no-op on platforms without flock; correctness there relies
// on a single process owning each backing file.
func lockFile(f *os.File) error {
	return nil
}

func unlockFile(f *os.File) {}
