package validator

import (
	"fmt"
	"os"

	"github.com/vertextoedge/node-disk-monitor/internal/port"
)

// Validator names accepted by New
const (
	NameBasic     = "basic"
	NameReadWrite = "read-write"
)

// New returns the disk validator registered under name
func New(name string) (port.DiskValidator, error) {
	switch name {
	case NameBasic:
		return &Basic{}, nil
	case NameReadWrite:
		return &ReadWrite{}, nil
	default:
		return nil, fmt.Errorf("unknown disk validator: %s", name)
	}
}

// Basic validates that a directory exists and carries read, write and
// search permission bits for its owner. It never writes to the disk.
type Basic struct{}

// Ensure Basic implements port.DiskValidator
var _ port.DiskValidator = (*Basic)(nil)

// CheckStatus verifies the directory exists and is accessible
func (v *Basic) CheckStatus(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("directory is not accessible: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", path)
	}

	perm := info.Mode().Perm()
	if perm&0o400 == 0 {
		return fmt.Errorf("directory is not readable: %s", path)
	}
	if perm&0o200 == 0 {
		return fmt.Errorf("directory is not writable: %s", path)
	}
	if perm&0o100 == 0 {
		return fmt.Errorf("directory is not listable: %s", path)
	}
	return nil
}

// ReadWrite validates a directory by round-tripping a small probe file,
// catching disks that advertise healthy permissions but fail on real I/O.
type ReadWrite struct{}

// Ensure ReadWrite implements port.DiskValidator
var _ port.DiskValidator = (*ReadWrite)(nil)

// CheckStatus writes, reads back and removes a probe file in the directory
func (v *ReadWrite) CheckStatus(path string) error {
	basic := Basic{}
	if err := basic.CheckStatus(path); err != nil {
		return err
	}

	probe, err := os.CreateTemp(path, ".disk-probe-*")
	if err != nil {
		return fmt.Errorf("failed to create probe file in %s: %w", path, err)
	}
	probePath := probe.Name()
	defer os.Remove(probePath)

	payload := []byte("disk probe")
	if _, err := probe.Write(payload); err != nil {
		probe.Close()
		return fmt.Errorf("failed to write probe file in %s: %w", path, err)
	}
	if err := probe.Close(); err != nil {
		return fmt.Errorf("failed to close probe file in %s: %w", path, err)
	}

	read, err := os.ReadFile(probePath)
	if err != nil {
		return fmt.Errorf("failed to read probe file back in %s: %w", path, err)
	}
	if string(read) != string(payload) {
		return fmt.Errorf("probe file content mismatch in %s", path)
	}

	if err := os.Remove(probePath); err != nil {
		return fmt.Errorf("failed to remove probe file in %s: %w", path, err)
	}
	return nil
}
