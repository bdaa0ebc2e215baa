//go:build !windows
// +build !windows

package fs

import (
	"fmt"
	"syscall"

	"github.com/vertextoedge/node-disk-monitor/internal/port"
)

// Space returns capacity figures for the volume containing path
func (Statter) Space(path string) (*port.SpaceInfo, error) {
	var stat syscall.Statfs_t
	if err := syscall.Statfs(path, &stat); err != nil {
		return nil, fmt.Errorf("failed to stat volume for %s: %w", path, err)
	}

	return &port.SpaceInfo{
		Total:  stat.Blocks * uint64(stat.Bsize),
		Usable: stat.Bavail * uint64(stat.Bsize),
	}, nil
}
