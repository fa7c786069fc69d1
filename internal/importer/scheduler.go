package importer

import (
	"context"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Scheduler runs an Importer on a cron spec, e.g. "@every 6h".
type Scheduler struct {
	cron    *cron.Cron
	im      *Importer
	spec    string
	timeout time.Duration
	log     *zap.Logger
	initial sync.WaitGroup
}

func NewScheduler(im *Importer, spec string, timeout time.Duration, log *zap.Logger) *Scheduler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Scheduler{
		cron:    cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		im:      im,
		spec:    spec,
		timeout: timeout,
		log:     log,
	}
}

// Start registers the job and starts the scheduler. One import also runs
// immediately so a fresh deployment is populated without waiting a tick.
func (s *Scheduler) Start(ctx context.Context) error {
	if _, err := s.cron.AddFunc(s.spec, func() { s.runOnce(ctx) }); err != nil {
		return errors.Wrapf(err, "importer: schedule %q", s.spec)
	}
	s.cron.Start()
	s.log.Info("import schedule started", zap.String("spec", s.spec))

	s.initial.Add(1)
	go func() {
		defer s.initial.Done()
		s.runOnce(ctx)
	}()
	return nil
}

// Stop halts the schedule and waits for a running import to return.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.initial.Wait()
	s.log.Info("import schedule stopped")
}

func (s *Scheduler) runOnce(ctx context.Context) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	if _, err := s.im.Run(ctx); err != nil {
		s.log.Error("scheduled import failed", zap.Error(err))
	}
}
