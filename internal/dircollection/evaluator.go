package dircollection

import (
	"fmt"
	"io/fs"
	"path/filepath"

	"go.uber.org/zap"

	dfs "github.com/vertextoedge/node-disk-monitor/internal/fs"
	"github.com/vertextoedge/node-disk-monitor/internal/port"
)

// checkParams is the threshold configuration snapshot one check cycle runs
// against. It is captured under the collection's read lock so concurrent
// threshold updates cannot tear a cycle.
type checkParams struct {
	utilizationEnabled      bool
	freeSpaceEnabled        bool
	subAccessibilityEnabled bool

	utilizationCutoffHighPct float64
	utilizationCutoffLowPct  float64
	freeSpaceCutoffLowMB     uint64
	freeSpaceCutoffHighMB    uint64
}

// evaluator runs the health check pipeline over a batch of directories.
// It holds no mutable state and no locks; all disk I/O happens here.
type evaluator struct {
	validator port.DiskValidator
	statter   port.VolumeStatter
	logger    *zap.Logger
}

// testDirs checks every directory and returns a map from failing directory
// to its diagnostic. Absence from the map means the directory is healthy.
// Checks run in increasing cost order and stop at the first failure.
func (e *evaluator) testDirs(dirs []string, wasGood map[string]bool, params checkParams) map[string]*DiskErrorInformation {
	failures := make(map[string]*DiskErrorInformation)
	for _, dir := range dirs {
		e.logger.Debug("testing directory", zap.String("dir", dir))
		goodDir := wasGood[dir]

		checks := []func() *DiskErrorInformation{
			func() *DiskErrorInformation { return e.validateDisk(dir) },
			func() *DiskErrorInformation { return e.validateUsageOverPercentageLimit(dir, goodDir, params) },
			func() *DiskErrorInformation { return e.validateFreeSpaceUnderLimit(dir, goodDir, params) },
			func() *DiskErrorInformation { return e.validateSubsAccessibility(dir, params) },
		}
		for _, check := range checks {
			if info := check(); info != nil {
				failures[dir] = info
				break
			}
		}
	}
	return failures
}

// validateDisk delegates to the configured disk validator
func (e *evaluator) validateDisk(dir string) *DiskErrorInformation {
	if err := e.validator.CheckStatus(dir); err != nil {
		return &DiskErrorInformation{Cause: DiskErrorCauseOther, Message: err.Error()}
	}
	return nil
}

// validateUsageOverPercentageLimit fails a directory whose volume usage is
// over the cutoff. Good directories are measured against the high cutoff and
// failed ones against the low cutoff, so a directory near the boundary does
// not flap between states.
func (e *evaluator) validateUsageOverPercentageLimit(dir string, goodDir bool, params checkParams) *DiskErrorInformation {
	if !params.utilizationEnabled {
		return nil
	}
	cutoff := params.utilizationCutoffLowPct
	if goodDir {
		cutoff = params.utilizationCutoffHighPct
	}

	space, err := e.statter.Space(dir)
	if err != nil {
		return &DiskErrorInformation{Cause: DiskErrorCauseOther, Message: err.Error()}
	}
	if space.Total == 0 {
		return nil
	}
	usedPct := space.UsedPercentage()
	if usedPct > cutoff || usedPct >= 100 {
		return &DiskErrorInformation{
			Cause:   DiskErrorCauseDiskFull,
			Message: fmt.Sprintf("used space above threshold of %.1f%%", cutoff),
		}
	}
	return nil
}

// validateFreeSpaceUnderLimit fails a directory whose volume has less free
// space than the cutoff. The hysteresis polarity is inverted relative to the
// utilization check: good directories use the low cutoff, failed ones must
// clear the high cutoff to recover.
func (e *evaluator) validateFreeSpaceUnderLimit(dir string, goodDir bool, params checkParams) *DiskErrorInformation {
	if !params.freeSpaceEnabled {
		return nil
	}
	cutoff := params.freeSpaceCutoffHighMB
	if goodDir {
		cutoff = params.freeSpaceCutoffLowMB
	}

	space, err := e.statter.Space(dir)
	if err != nil {
		return &DiskErrorInformation{Cause: DiskErrorCauseOther, Message: err.Error()}
	}
	if space.UsableMB() < cutoff {
		return &DiskErrorInformation{
			Cause:   DiskErrorCauseDiskFull,
			Message: fmt.Sprintf("free space below limit of %dMB", cutoff),
		}
	}
	return nil
}

// validateSubsAccessibility walks the directory tree, re-validating every
// sub-directory with the disk validator and probing every file for
// readability. Any unreadable entry fails the whole directory.
func (e *evaluator) validateSubsAccessibility(dir string, params checkParams) *DiskErrorInformation {
	if !params.subAccessibilityEnabled {
		return nil
	}
	err := filepath.WalkDir(dir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() {
			return e.validator.CheckStatus(path)
		}
		return dfs.CheckReadable(path)
	})
	if err != nil {
		return &DiskErrorInformation{Cause: DiskErrorCauseOther, Message: err.Error()}
	}
	return nil
}
