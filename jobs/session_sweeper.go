package jobs

import (
	"time"

	"github.com/rs/zerolog/log"
)

// Sweeper drops expired entries and reports how many it removed.
type Sweeper interface {
	Sweep() int
}

// SweepJob periodically purges expired in-memory sessions
type SweepJob struct {
	sweeper  Sweeper
	interval time.Duration
	stopChan chan struct{}
}

// NewSweepJob creates a new sweep job
func NewSweepJob(sweeper Sweeper, interval time.Duration) *SweepJob {
	return &SweepJob{
		sweeper:  sweeper,
		interval: interval,
		stopChan: make(chan struct{}),
	}
}

// Start begins the sweep job
func (j *SweepJob) Start() {
	go j.run()
	log.Info().Dur("interval", j.interval).Msg("🚀 Session sweep job started")
}

// Stop stops the sweep job
func (j *SweepJob) Stop() {
	close(j.stopChan)
	log.Info().Msg("🛑 Session sweep job stopped")
}

func (j *SweepJob) run() {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if n := j.sweeper.Sweep(); n > 0 {
				log.Debug().Int("expired", n).Msg("⏰ Expired sessions removed")
			}
		case <-j.stopChan:
			return
		}
	}
}
