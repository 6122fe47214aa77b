// Package scheduler runs periodic background sweeps
package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/nkwabiz/nkwabiz/config"
	"github.com/nkwabiz/nkwabiz/repository"
	"github.com/nkwabiz/nkwabiz/utils"
)

// ExpiryScheduler periodically expires messages that never received a
// terminal delivery report from the gateway.
type ExpiryScheduler struct {
	messageRepo repository.MessageRepository
	logger      *log.Logger
	cfg         config.SchedulerConfig
}

// NewExpiryScheduler creates a new expiry scheduler
func NewExpiryScheduler(messageRepo repository.MessageRepository, logger *log.Logger, cfg config.SchedulerConfig) *ExpiryScheduler {
	if logger == nil {
		logger = log.Default()
	}
	return &ExpiryScheduler{
		messageRepo: messageRepo,
		logger:      logger,
		cfg:         cfg,
	}
}

// Start launches the sweep loop. The returned cancel function stops it.
func (s *ExpiryScheduler) Start(parent context.Context) func() {
	ctx, cancel := context.WithCancel(parent)

	go func() {
		ticker := time.NewTicker(s.cfg.ExpirySweepInterval)
		defer ticker.Stop()

		s.runOnce(ctx)

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.runOnce(ctx)
			}
		}
	}()

	return cancel
}

func (s *ExpiryScheduler) runOnce(ctx context.Context) {
	cutoff := utils.UTCNow().Add(-s.cfg.MessageTTL)

	expired, err := s.messageRepo.ExpireStale(ctx, cutoff)
	if err != nil {
		s.logger.Printf("scheduler: expiry sweep failed: %v", err)
		return
	}
	if expired > 0 {
		s.logger.Printf("scheduler: expired %d stale messages", expired)
	}
}
