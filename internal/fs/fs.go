package fs

import (
	"fmt"
	"os"

	"github.com/vertextoedge/node-disk-monitor/internal/port"
)

// Statter reports volume capacity using the platform statfs call.
// Platform-specific implementation in space_unix.go and space_windows.go.
type Statter struct{}

// Ensure Statter implements port.VolumeStatter
var _ port.VolumeStatter = Statter{}

// CheckReadable verifies the file at path can be opened for reading
func CheckReadable(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("cannot read %s: %w", path, err)
	}
	return f.Close()
}

// MkdirCreator returns a function that creates a directory and any missing
// parents with the given permissions. The permission bits are applied
// explicitly so the process umask does not narrow them.
func MkdirCreator(perm os.FileMode) func(dir string) error {
	return func(dir string) error {
		if info, err := os.Stat(dir); err == nil {
			if !info.IsDir() {
				return fmt.Errorf("%s exists and is not a directory", dir)
			}
			return nil
		}
		if err := os.MkdirAll(dir, perm); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
		if err := os.Chmod(dir, perm); err != nil {
			return fmt.Errorf("failed to set permissions: %w", err)
		}
		return nil
	}
}
