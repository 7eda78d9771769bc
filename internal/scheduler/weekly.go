// Package scheduler runs the weekly score reset. The job is a pure batch
// transform over the user set; the only coordination it needs is making sure
// a tick never overlaps a still-running pass.
package scheduler

import (
	"sync"
	"time"

	"github.com/labstack/gommon/log"
)

type Job func() error

type Weekly struct {
	job     Job
	running sync.Mutex
	stop    chan struct{}
	done    chan struct{}
}

func NewWeekly(job Job) *Weekly {
	return &Weekly{
		job:  job,
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}
}

// nextRun returns the next Sunday 00:00 strictly after now.
func nextRun(now time.Time) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	days := (7 - int(next.Weekday())) % 7
	next = next.AddDate(0, 0, days)
	if !next.After(now) {
		next = next.AddDate(0, 0, 7)
	}
	return next
}

func (w *Weekly) Start() {
	go func() {
		defer close(w.done)
		for {
			timer := time.NewTimer(time.Until(nextRun(time.Now())))
			select {
			case <-w.stop:
				timer.Stop()
				return
			case <-timer.C:
				w.RunOnce()
			}
		}
	}()
}

// RunOnce executes the job unless a previous run is still in flight.
func (w *Weekly) RunOnce() {
	if !w.running.TryLock() {
		log.Warn("weekly reset still running, skipping tick")
		return
	}
	defer w.running.Unlock()

	if err := w.job(); err != nil {
		log.Errorf("weekly reset: %+v", err)
		return
	}
	log.Info("weekly scores reset")
}

func (w *Weekly) Stop() {
	close(w.stop)
	<-w.done
}
