//go:build windows
// +build windows

package fs

import (
	"fmt"
	"syscall"
	"unsafe"

	"github.com/vertextoedge/node-disk-monitor/internal/port"
)

var (
	kernel32         = syscall.NewLazyDLL("kernel32.dll")
	getDiskFreeSpace = kernel32.NewProc("GetDiskFreeSpaceExW")
)

// Space returns capacity figures for the volume containing path
func (Statter) Space(path string) (*port.SpaceInfo, error) {
	var freeBytesAvailable, totalNumberOfBytes, totalNumberOfFreeBytes uint64

	pathPtr, err := syscall.UTF16PtrFromString(path)
	if err != nil {
		return nil, fmt.Errorf("failed to convert path: %w", err)
	}

	ret, _, err := getDiskFreeSpace.Call(
		uintptr(unsafe.Pointer(pathPtr)),
		uintptr(unsafe.Pointer(&freeBytesAvailable)),
		uintptr(unsafe.Pointer(&totalNumberOfBytes)),
		uintptr(unsafe.Pointer(&totalNumberOfFreeBytes)),
	)

	if ret == 0 {
		return nil, fmt.Errorf("failed to stat volume for %s: %w", path, err)
	}

	return &port.SpaceInfo{
		Total:  totalNumberOfBytes,
		Usable: freeBytesAvailable,
	}, nil
}
