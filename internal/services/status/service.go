package status

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/custos/internal/common"
)

// Probe is a named health check for one upstream dependency.
type Probe struct {
	Name  string
	Check func(ctx context.Context) error
}

// DependencyStatus is the recorded outcome of the most recent probe run.
type DependencyStatus struct {
	Name      string `json:"name"`
	Healthy   bool   `json:"healthy"`
	Error     string `json:"error,omitempty"`
	CheckedAt string `json:"checked_at"`
}

// Service runs scheduled health probes against upstream dependencies and
// keeps the latest results for the status endpoint.
type Service struct {
	probes   []Probe
	results  map[string]DependencyStatus
	mu       sync.RWMutex
	cron     *cron.Cron
	schedule string
	logger   arbor.ILogger
	running  bool
}

// NewService creates a status service. The schedule uses a six-field cron
// expression (with seconds).
func NewService(cfg *common.Config, logger arbor.ILogger) *Service {
	schedule := cfg.Status.ProbeSchedule
	if schedule == "" {
		schedule = "0 */5 * * * *"
	}
	return &Service{
		results:  make(map[string]DependencyStatus),
		cron:     cron.New(cron.WithSeconds()),
		schedule: schedule,
		logger:   logger,
	}
}

// Register adds a dependency probe. Must be called before Start.
func (s *Service) Register(name string, check func(ctx context.Context) error) {
	s.probes = append(s.probes, Probe{Name: name, Check: check})
}

// Start runs an immediate probe pass and schedules recurring ones.
func (s *Service) Start() error {
	if s.running {
		return nil
	}

	// Seed results so the status endpoint has data before the first tick
	s.RunProbes(context.Background())

	if _, err := s.cron.AddFunc(s.schedule, func() {
		s.RunProbes(context.Background())
	}); err != nil {
		return err
	}

	s.cron.Start()
	s.running = true

	s.logger.Info().
		Str("schedule", s.schedule).
		Int("probes", len(s.probes)).
		Msg("Status probe scheduler started")

	return nil
}

// Stop halts the probe scheduler.
func (s *Service) Stop() {
	if !s.running {
		return
	}
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.running = false
	s.logger.Debug().Msg("Status probe scheduler stopped")
}

// RunProbes executes every registered probe once and records the outcomes.
func (s *Service) RunProbes(ctx context.Context) {
	for _, probe := range s.probes {
		probeCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
		err := probe.Check(probeCtx)
		cancel()

		result := DependencyStatus{
			Name:      probe.Name,
			Healthy:   err == nil,
			CheckedAt: time.Now().UTC().Format(time.RFC3339),
		}
		if err != nil {
			result.Error = err.Error()
			s.logger.Warn().
				Err(err).
				Str("dependency", probe.Name).
				Msg("Dependency probe failed")
		} else {
			s.logger.Debug().
				Str("dependency", probe.Name).
				Msg("Dependency probe passed")
		}

		s.mu.Lock()
		s.results[probe.Name] = result
		s.mu.Unlock()
	}
}

// Snapshot returns the latest probe results.
func (s *Service) Snapshot() []DependencyStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]DependencyStatus, 0, len(s.results))
	for _, probe := range s.probes {
		if result, ok := s.results[probe.Name]; ok {
			out = append(out, result)
		}
	}
	return out
}

// Healthy reports whether every probed dependency passed its latest check.
func (s *Service) Healthy() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, result := range s.results {
		if !result.Healthy {
			return false
		}
	}
	return true
}
