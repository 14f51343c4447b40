package reminder

import (
	"fmt"
	"time"

	"github.com/lenswise/coachdesk/core"
)

// Sweeper periodically runs Service.ProcessDue. It replaces the external
// CRON-style caller this logic used to rely on: the interval is injected and
// a single pass is available as Sweep for one-shot invocations (admin CLI).
type Sweeper struct {
	svc      *Service
	interval time.Duration
	logger   core.Logger

	stop chan struct{}
	done chan struct{}
}

func NewSweeper(svc *Service, interval time.Duration, logger core.Logger) *Sweeper {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Sweeper{
		svc:      svc,
		interval: interval,
		logger:   logger,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start launches the sweep loop in a goroutine. Sweep errors are logged and
// the loop keeps running.
func (sw *Sweeper) Start() {
	ticker := time.NewTicker(sw.interval)
	go func() {
		defer close(sw.done)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				sw.Sweep()
			case <-sw.stop:
				return
			}
		}
	}()
}

// Stop terminates the loop and waits for the in-flight pass to finish.
func (sw *Sweeper) Stop() {
	close(sw.stop)
	<-sw.done
}

// Sweep runs a single due-reminder pass.
func (sw *Sweeper) Sweep() ProcessResult {
	res, err := sw.svc.ProcessDue()
	if err != nil {
		sw.logger.Error(fmt.Sprintf("reminder sweep: %v", err), err)
		return res
	}
	if res.Processed > 0 {
		sw.logger.Info(fmt.Sprintf("reminder sweep: processed=%d sent=%d", res.Processed, res.Sent))
	}
	return res
}
