package dircollection

import (
	"sync"

	"go.uber.org/zap"

	"github.com/vertextoedge/node-disk-monitor/internal/port"
)

// Config contains the settings for a directory collection
type Config struct {
	// Dirs is the initial list of monitored directories, seeded as good
	Dirs []string

	// UtilizationCutoffHighPct is the used-space percentage above which a
	// good directory is marked full
	UtilizationCutoffHighPct float64

	// UtilizationCutoffLowPct is the used-space percentage a full directory
	// must drop under to be marked good again
	UtilizationCutoffLowPct float64

	// FreeSpaceCutoffLowMB is the free space a good directory must keep to
	// stay good
	FreeSpaceCutoffLowMB uint64

	// FreeSpaceCutoffHighMB is the free space a failed directory must regain
	// to become good again
	FreeSpaceCutoffHighMB uint64

	// UtilizationThresholdEnabled toggles the used-percentage check
	UtilizationThresholdEnabled bool

	// FreeSpaceThresholdEnabled toggles the free-space check
	FreeSpaceThresholdEnabled bool

	// SubAccessibilityValidationEnabled toggles the recursive subtree check
	SubAccessibilityValidationEnabled bool
}

// Collection tracks a set of local storage directories and classifies each
// as good, full or errored. Classification state is guarded by a
// reader/writer lock; disk I/O never runs while the lock is held, and every
// check cycle replaces the state in a single atomic swap.
type Collection struct {
	logger *zap.Logger
	eval   *evaluator

	mu sync.RWMutex

	// good, full and errored directories; pairwise disjoint, their union is
	// the set of directories considered in the most recent check cycle
	localDirs []string
	fullDirs  []string
	errorDirs []string

	// diagnostics for every directory in fullDirs or errorDirs
	errorInfo map[string]*DiskErrorInformation

	// cumulative count of good directories turning bad, never decreases
	numFailures int

	// total-space-weighted used percentage across the good set
	goodDirsDiskUtilizationPct int

	utilizationThresholdEnabled       bool
	freeSpaceThresholdEnabled         bool
	subAccessibilityValidationEnabled bool

	utilizationCutoffHighPct float64
	utilizationCutoffLowPct  float64
	freeSpaceCutoffLowMB     uint64
	freeSpaceCutoffHighMB    uint64

	listeners *listenerSet
}

// New creates a collection for the configured directories. The directories
// start out good; call CheckDirs to validate them.
func New(cfg *Config, diskValidator port.DiskValidator, statter port.VolumeStatter, logger *zap.Logger) *Collection {
	c := &Collection{
		logger: logger,
		eval: &evaluator{
			validator: diskValidator,
			statter:   statter,
			logger:    logger,
		},
		localDirs: append([]string(nil), cfg.Dirs...),
		errorInfo: make(map[string]*DiskErrorInformation),
		listeners: newListenerSet(),

		utilizationThresholdEnabled:       cfg.UtilizationThresholdEnabled,
		freeSpaceThresholdEnabled:         cfg.FreeSpaceThresholdEnabled,
		subAccessibilityValidationEnabled: cfg.SubAccessibilityValidationEnabled,
	}
	c.SetDiskUtilizationPercentageCutoff(cfg.UtilizationCutoffHighPct, cfg.UtilizationCutoffLowPct)
	c.SetDiskUtilizationSpaceCutoff(cfg.FreeSpaceCutoffLowMB, cfg.FreeSpaceCutoffHighMB)
	return c
}

// RegisterDirsChangeListener adds a listener. A newly added listener is
// invoked once immediately so late subscribers synchronize without waiting
// for the next check cycle.
func (c *Collection) RegisterDirsChangeListener(listener DirsChangeListener) {
	if c.listeners.add(listener) {
		listener.OnDirsChanged()
	}
}

// DeregisterDirsChangeListener removes a listener without a callback
func (c *Collection) DeregisterDirsChangeListener(listener DirsChangeListener) {
	c.listeners.remove(listener)
}

// GoodDirs returns the directories currently usable for data placement
func (c *Collection) GoodDirs() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]string(nil), c.localDirs...)
}

// FullDirs returns the directories that breached a space threshold
func (c *Collection) FullDirs() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]string(nil), c.fullDirs...)
}

// ErroredDirs returns the directories that failed validation for reasons
// other than space
func (c *Collection) ErroredDirs() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]string(nil), c.errorDirs...)
}

// FailedDirs returns every directory that is not good, errored first
func (c *Collection) FailedDirs() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return concat(c.errorDirs, c.fullDirs)
}

// NumFailures returns the number of good directories seen turning bad since
// the collection was created
func (c *Collection) NumFailures() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.numFailures
}

// DirectoryErrorInfo returns the diagnostic for a failed directory. The
// second return value is false if the directory is currently healthy or
// unknown.
func (c *Collection) DirectoryErrorInfo(dir string) (*DiskErrorInformation, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	info, ok := c.errorInfo[dir]
	if !ok {
		return nil, false
	}
	cp := *info
	return &cp, true
}

// IsDiskUnhealthy reports whether the directory currently carries a diagnostic
func (c *Collection) IsDiskUnhealthy(dir string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.errorInfo[dir]
	return ok
}

// GoodDirsDiskUtilizationPercentage returns the total-space-weighted used
// percentage across the good directories, 0 if there are none
func (c *Collection) GoodDirsDiskUtilizationPercentage() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.goodDirsDiskUtilizationPct
}

// CreateNonExistentDirs creates each good directory using the supplied
// create function. A directory whose creation fails is moved to the errored
// set with a diagnostic, without running the full check pipeline. Returns
// true if every directory was created.
func (c *Collection) CreateNonExistentDirs(create func(dir string) error) bool {
	c.mu.RLock()
	dirs := append([]string(nil), c.localDirs...)
	c.mu.RUnlock()

	failed := false
	for _, dir := range dirs {
		err := create(dir)
		if err == nil {
			continue
		}
		c.logger.Warn("unable to create directory, removing from the list of valid directories",
			zap.String("dir", dir),
			zap.Error(err))

		c.mu.Lock()
		c.localDirs = removeDir(c.localDirs, dir)
		c.errorDirs = append(c.errorDirs, dir)
		c.errorInfo[dir] = &DiskErrorInformation{
			Cause:   DiskErrorCauseOther,
			Message: "cannot create directory " + dir + ": " + err.Error(),
		}
		c.numFailures++
		c.mu.Unlock()
		failed = true
	}
	return !failed
}

// CheckDirs runs one check cycle over every known directory, good and
// failed, and commits the new classification in a single swap. It returns
// true if the composition of the good set changed, that is a good directory
// turned bad or a failed one recovered. Full/errored reclassification alone
// does not count as a change.
//
// Concurrent calls are allowed; the later commit wins and each commit is
// internally consistent.
func (c *Collection) CheckDirs() bool {
	c.mu.RLock()
	preGood := toSet(c.localDirs)
	preFull := toSet(c.fullDirs)
	preError := toSet(c.errorDirs)
	allDirs := concat(c.localDirs, concat(c.errorDirs, c.fullDirs))
	params := c.checkParamsLocked()
	c.mu.RUnlock()

	// all disk probing happens here, with no lock held; a slow volume must
	// not stall readers of the classification lists
	failures := c.eval.testDirs(allDirs, preGood, params)

	var (
		newGood    []string
		newFull    []string
		newError   []string
		newInfo    = make(map[string]*DiskErrorInformation, len(failures))
		newFailure int
		changed    bool
	)
	for _, dir := range allDirs {
		info, ok := failures[dir]
		if !ok {
			newGood = append(newGood, dir)
			if preFull[dir] || preError[dir] {
				changed = true
				c.logger.Info("directory passed disk check, adding to list of valid directories",
					zap.String("dir", dir))
			}
			continue
		}

		switch info.Cause {
		case DiskErrorCauseDiskFull:
			newFull = append(newFull, dir)
		case DiskErrorCauseOther:
			newError = append(newError, dir)
		default:
			c.logger.Warn("unknown disk error cause",
				zap.String("dir", dir),
				zap.Stringer("cause", info.Cause))
			newError = append(newError, dir)
		}
		newInfo[dir] = info

		switch {
		case preGood[dir]:
			changed = true
			newFailure++
			c.logger.Warn("directory error, removing from list of valid directories",
				zap.String("dir", dir),
				zap.String("error", info.Message))
		case preFull[dir] && info.Cause == DiskErrorCauseOther,
			preError[dir] && info.Cause == DiskErrorCauseDiskFull:
			// reclassification between the failed states is recorded but is
			// not a composition change
			c.logger.Warn("directory error",
				zap.String("dir", dir),
				zap.String("error", info.Message))
		}
	}

	utilization := c.aggregateUtilization(newGood)

	c.mu.Lock()
	c.localDirs = newGood
	c.fullDirs = newFull
	c.errorDirs = newError
	c.errorInfo = newInfo
	c.numFailures += newFailure
	c.goodDirsDiskUtilizationPct = utilization
	c.mu.Unlock()

	if changed {
		for _, listener := range c.listeners.snapshot() {
			listener.OnDirsChanged()
		}
	}
	return changed
}

// SetDiskUtilizationPercentageCutoff updates the utilization thresholds.
// Both values are clamped to [0, 100] and low is clamped to at most high.
func (c *Collection) SetDiskUtilizationPercentageCutoff(highPct, lowPct float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.utilizationCutoffHighPct = clampPct(highPct)
	c.utilizationCutoffLowPct = min(c.utilizationCutoffHighPct, clampPct(lowPct))
}

// SetDiskUtilizationSpaceCutoff updates the free-space thresholds in MB.
// High is clamped to at least low.
func (c *Collection) SetDiskUtilizationSpaceCutoff(lowMB, highMB uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.freeSpaceCutoffLowMB = lowMB
	c.freeSpaceCutoffHighMB = max(lowMB, highMB)
}

// DiskUtilizationPercentageCutoffHigh returns the current high utilization cutoff
func (c *Collection) DiskUtilizationPercentageCutoffHigh() float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.utilizationCutoffHighPct
}

// DiskUtilizationPercentageCutoffLow returns the current low utilization cutoff
func (c *Collection) DiskUtilizationPercentageCutoffLow() float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.utilizationCutoffLowPct
}

// DiskUtilizationSpaceCutoffLow returns the current low free-space cutoff in MB
func (c *Collection) DiskUtilizationSpaceCutoffLow() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.freeSpaceCutoffLowMB
}

// DiskUtilizationSpaceCutoffHigh returns the current high free-space cutoff in MB
func (c *Collection) DiskUtilizationSpaceCutoffHigh() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.freeSpaceCutoffHighMB
}

// setUtilizationThresholdEnabled toggles the utilization check, for tests
func (c *Collection) setUtilizationThresholdEnabled(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.utilizationThresholdEnabled = enabled
}

// setFreeSpaceThresholdEnabled toggles the free-space check, for tests
func (c *Collection) setFreeSpaceThresholdEnabled(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.freeSpaceThresholdEnabled = enabled
}

// setSubAccessibilityValidationEnabled toggles the subtree check, for tests
func (c *Collection) setSubAccessibilityValidationEnabled(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.subAccessibilityValidationEnabled = enabled
}

// checkParamsLocked snapshots the threshold configuration; callers must hold
// at least the read lock
func (c *Collection) checkParamsLocked() checkParams {
	return checkParams{
		utilizationEnabled:       c.utilizationThresholdEnabled,
		freeSpaceEnabled:         c.freeSpaceThresholdEnabled,
		subAccessibilityEnabled:  c.subAccessibilityValidationEnabled,
		utilizationCutoffHighPct: c.utilizationCutoffHighPct,
		utilizationCutoffLowPct:  c.utilizationCutoffLowPct,
		freeSpaceCutoffLowMB:     c.freeSpaceCutoffLowMB,
		freeSpaceCutoffHighMB:    c.freeSpaceCutoffHighMB,
	}
}

// aggregateUtilization computes the total-space-weighted used percentage
// across the given directories. Directories whose volume cannot be statted
// are skipped.
func (c *Collection) aggregateUtilization(dirs []string) int {
	var total, usable uint64
	for _, dir := range dirs {
		space, err := c.eval.statter.Space(dir)
		if err != nil {
			c.logger.Debug("skipping directory for utilization aggregate",
				zap.String("dir", dir),
				zap.Error(err))
			continue
		}
		total += space.Total
		usable += space.Usable
	}
	if total == 0 {
		return 0
	}
	return int((total - usable) * 100 / total)
}

// concat returns a new slice containing the elements of a followed by b
func concat(a, b []string) []string {
	out := make([]string, 0, len(a)+len(b))
	out = append(out, a...)
	return append(out, b...)
}

func toSet(dirs []string) map[string]bool {
	set := make(map[string]bool, len(dirs))
	for _, dir := range dirs {
		set[dir] = true
	}
	return set
}

func removeDir(dirs []string, dir string) []string {
	for i, d := range dirs {
		if d == dir {
			return append(dirs[:i], dirs[i+1:]...)
		}
	}
	return dirs
}

func clampPct(pct float64) float64 {
	return max(0, min(100, pct))
}
