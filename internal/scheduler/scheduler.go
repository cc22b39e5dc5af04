package scheduler

import (
	"context"
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"

	"github.com/Ufymau/newsdigest/internal/logger"
)

// Scheduler fires named jobs at cron times. Each job is serialized
// against itself: if a run is still going when its next trigger fires,
// the new trigger is skipped and logged rather than overlapped.
// Different jobs never block each other.
type Scheduler struct {
	cron *cron.Cron
	log  logger.Logger

	mu      sync.Mutex
	running map[string]*sync.Mutex

	ctx    context.Context
	cancel context.CancelFunc
}

// New builds a stopped Scheduler using standard five-field cron specs.
func New(log logger.Logger) *Scheduler {
	if log == nil {
		log = logger.NopLogger{}
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron:    cron.New(),
		log:     log,
		running: make(map[string]*sync.Mutex),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Add registers a job under the given cron spec.
func (s *Scheduler) Add(spec, name string, run func(ctx context.Context)) error {
	lock := s.jobLock(name)

	_, err := s.cron.AddFunc(spec, func() {
		if !lock.TryLock() {
			s.log.WarnObj("previous run still in progress, skipping trigger", "job_overlap_skipped", map[string]any{
				"job": name,
			})
			return
		}
		defer lock.Unlock()

		s.log.InfoObj("job starting", "job_start", map[string]any{"job": name})
		run(s.ctx)
		s.log.InfoObj("job finished", "job_done", map[string]any{"job": name})
	})
	if err != nil {
		return fmt.Errorf("schedule %s (%q): %w", name, spec, err)
	}

	s.log.InfoObj("job scheduled", "job_scheduled", map[string]any{
		"job":  name,
		"spec": spec,
	})
	return nil
}

func (s *Scheduler) jobLock(name string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.running[name]; !ok {
		s.running[name] = &sync.Mutex{}
	}
	return s.running[name]
}

// Start begins firing triggers. Job bodies run on their own goroutines,
// never on the trigger loop.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop cancels running jobs and waits for the trigger loop to drain.
func (s *Scheduler) Stop() {
	s.cancel()
	<-s.cron.Stop().Done()
}
