package monitor

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/vertextoedge/node-disk-monitor/internal/dircollection"
	"github.com/vertextoedge/node-disk-monitor/internal/fs"
	"github.com/vertextoedge/node-disk-monitor/internal/metrics"
	"github.com/vertextoedge/node-disk-monitor/internal/port"
)

// Directory health states as recorded in the transition history
const (
	StateGood    = "good"
	StateFull    = "full"
	StateErrored = "errored"
)

// Collection is the directory health interface the monitor drives
type Collection interface {
	CheckDirs() bool
	CreateNonExistentDirs(create func(dir string) error) bool
	GoodDirs() []string
	FullDirs() []string
	ErroredDirs() []string
	DirectoryErrorInfo(dir string) (*dircollection.DiskErrorInformation, bool)
	GoodDirsDiskUtilizationPercentage() int
	NumFailures() int
}

// Config contains monitor service configuration
type Config struct {
	// CheckInterval is how often the directories are revalidated
	CheckInterval time.Duration

	// DirPermissions is applied to directories created at startup
	DirPermissions os.FileMode
}

// DefaultConfig returns default monitor configuration
func DefaultConfig() *Config {
	return &Config{
		CheckInterval:  2 * time.Minute,
		DirPermissions: 0755,
	}
}

// Service periodically drives the directory collection's check cycle,
// records state transitions to the history store and updates metrics.
type Service struct {
	config  *Config
	dirs    Collection
	history port.HistoryRepository // optional
	metrics *metrics.Metrics      // optional
	logger  *zap.Logger

	// last known state per directory, owned by the check loop
	prevState map[string]string

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// New creates a new monitor Service. history and m may be nil.
func New(cfg *Config, dirs Collection, history port.HistoryRepository, m *metrics.Metrics, logger *zap.Logger) *Service {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if cfg.CheckInterval == 0 {
		cfg.CheckInterval = 2 * time.Minute
	}
	if cfg.DirPermissions == 0 {
		cfg.DirPermissions = 0755
	}

	return &Service{
		config:  cfg,
		dirs:    dirs,
		history: history,
		metrics: m,
		logger:  logger,
	}
}

// Start creates any missing directories, runs an initial check and then
// revalidates on every tick until the context is cancelled.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return fmt.Errorf("monitor service already running")
	}
	s.running = true
	ctx, s.cancel = context.WithCancel(ctx)
	s.mu.Unlock()

	if !s.dirs.CreateNonExistentDirs(fs.MkdirCreator(s.config.DirPermissions)) {
		s.logger.Warn("one or more directories could not be created")
	}
	s.prevState = s.currentState()

	s.logger.Info("disk monitor started",
		zap.Duration("check_interval", s.config.CheckInterval),
		zap.Strings("dirs", s.dirs.GoodDirs()))

	s.runCheck()

	s.wg.Add(1)
	go s.checkLoop(ctx)

	<-ctx.Done()
	s.wg.Wait()
	s.logger.Info("disk monitor stopped")
	return nil
}

// Stop stops the monitor service
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
	}
	s.running = false
}

// checkLoop revalidates the directories on every tick
func (s *Service) checkLoop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.config.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runCheck()
		}
	}
}

// runCheck executes one check cycle and records its outcome
func (s *Service) runCheck() {
	start := time.Now()
	changed := s.dirs.CheckDirs()
	elapsed := time.Since(start)

	s.metrics.ObserveCheck(elapsed, changed)

	current := s.currentState()
	transitions := s.diffStates(s.prevState, current, start)
	s.prevState = current

	if len(transitions) > 0 && s.history != nil {
		if err := s.history.RecordTransitions(transitions); err != nil {
			s.logger.Error("failed to record directory transitions", zap.Error(err))
		}
	}

	if changed {
		s.logger.Info("directory set changed",
			zap.Strings("good", s.dirs.GoodDirs()),
			zap.Int("failures_total", s.dirs.NumFailures()),
			zap.Duration("elapsed", elapsed))
	} else {
		s.logger.Debug("directory check completed",
			zap.Duration("elapsed", elapsed))
	}
}

// currentState snapshots each directory's classification
func (s *Service) currentState() map[string]string {
	state := make(map[string]string)
	for _, dir := range s.dirs.GoodDirs() {
		state[dir] = StateGood
	}
	for _, dir := range s.dirs.FullDirs() {
		state[dir] = StateFull
	}
	for _, dir := range s.dirs.ErroredDirs() {
		state[dir] = StateErrored
	}
	return state
}

// diffStates builds transition records for every directory whose
// classification differs between two snapshots
func (s *Service) diffStates(prev, current map[string]string, checkedAt time.Time) []port.DirTransition {
	var transitions []port.DirTransition
	for dir, to := range current {
		from := prev[dir]
		if from == to {
			continue
		}
		t := port.DirTransition{
			Dir:       dir,
			FromState: from,
			ToState:   to,
			CheckedAt: checkedAt,
		}
		if info, ok := s.dirs.DirectoryErrorInfo(dir); ok {
			t.Cause = info.Cause.String()
			t.Message = info.Message
		}
		transitions = append(transitions, t)
	}
	return transitions
}
