package cron

import (
	"context"
	"time"
)

// CandidateRefresher reloads the recognition candidate cache from storage.
type CandidateRefresher interface {
	RefreshCandidates(ctx context.Context) (int, error)
}

// RegisterCandidateRefresh keeps the candidate cache warm so scans rarely hit storage.
func RegisterCandidateRefresh(s *Scheduler, refresher CandidateRefresher, interval time.Duration) {
	s.AddJob(Job{
		Name:     "refresh_candidate_cache",
		Interval: interval,
		Fn: func(ctx context.Context) error {
			n, err := refresher.RefreshCandidates(ctx)
			if err != nil {
				return err
			}
			s.logger.Debug("Candidate cache refreshed", "candidates", n)
			return nil
		},
	})
}
