package service

import (
	"context"
	"log"
	"time"
)

type RequestLogPruner interface {
	DeleteOlderThan(ctx context.Context, before time.Time) (int64, error)
}

// RetentionService deletes request logs past their retention period.
type RetentionService struct {
	pruner    RequestLogPruner
	retention time.Duration
	now       func() time.Time
}

func NewRetentionService(pruner RequestLogPruner, retentionDays int) *RetentionService {
	return &RetentionService{
		pruner:    pruner,
		retention: time.Duration(retentionDays) * 24 * time.Hour,
		now:       time.Now,
	}
}

// Cleanup removes logs older than the retention period and returns how many
// rows went.
func (s *RetentionService) Cleanup(ctx context.Context) (int64, error) {
	cutoff := s.now().Add(-s.retention)
	return s.pruner.DeleteOlderThan(ctx, cutoff)
}

// Start runs Cleanup once and then every interval until ctx is done. A zero
// retention disables it.
func (s *RetentionService) Start(ctx context.Context, every time.Duration) {
	if s.retention <= 0 || every <= 0 {
		return
	}

	run := func() {
		deleted, err := s.Cleanup(ctx)
		if err != nil {
			log.Printf("Request log cleanup failed: %v", err)
			return
		}
		if deleted > 0 {
			log.Printf("Deleted %d request logs older than %v", deleted, s.retention)
		}
	}

	go func() {
		run()

		ticker := time.NewTicker(every)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				run()
			}
		}
	}()
}
