package loyalty

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/gold360/backoffice/internal/app/system"
	"github.com/gold360/backoffice/pkg/logger"
)

var _ system.Service = (*Expirer)(nil)

// Expirer runs the point expiry sweep on a cron schedule.
type Expirer struct {
	service  *Service
	log      *logger.Logger
	schedule cron.Schedule

	mu      sync.Mutex
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	running bool
}

// NewExpirer creates a lifecycle-managed expiry sweeper. The schedule accepts
// the standard five-field cron syntax plus descriptors such as "@daily".
func NewExpirer(service *Service, spec string, log *logger.Logger) (*Expirer, error) {
	if log == nil {
		log = logger.NewDefault("loyalty-expirer")
	}
	if spec == "" {
		spec = "@daily"
	}
	schedule, err := cron.ParseStandard(spec)
	if err != nil {
		return nil, fmt.Errorf("parse expiry schedule %q: %w", spec, err)
	}
	return &Expirer{
		service:  service,
		log:      log,
		schedule: schedule,
	}, nil
}

func (e *Expirer) Name() string { return "loyalty-expirer" }

func (e *Expirer) Start(ctx context.Context) error {
	e.mu.Lock()
	if e.running {
		e.mu.Unlock()
		return nil
	}
	runCtx, cancel := context.WithCancel(ctx)
	e.cancel = cancel
	e.running = true
	e.mu.Unlock()

	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		for {
			next := e.schedule.Next(time.Now())
			timer := time.NewTimer(time.Until(next))
			select {
			case <-runCtx.Done():
				timer.Stop()
				return
			case <-timer.C:
				e.sweep(runCtx)
			}
		}
	}()

	e.log.Info("loyalty expirer started")
	return nil
}

func (e *Expirer) Stop(ctx context.Context) error {
	e.mu.Lock()
	if !e.running {
		e.mu.Unlock()
		return nil
	}
	cancel := e.cancel
	e.running = false
	e.cancel = nil
	e.mu.Unlock()

	if cancel != nil {
		cancel()
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		e.wg.Wait()
	}()

	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}

	e.log.Info("loyalty expirer stopped")
	return nil
}

func (e *Expirer) sweep(ctx context.Context) {
	if e.service == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	processed, err := e.service.ExpireDue(ctx, time.Now())
	if err != nil {
		e.log.WithError(err).Warn("loyalty expiry sweep failed")
		return
	}
	if processed > 0 {
		e.log.WithField("entries", processed).Info("loyalty expiry sweep completed")
	}
}
