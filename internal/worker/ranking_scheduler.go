package worker

import (
	"context"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/nemuzard/notesys/internal/ranking"
)

// RankingScheduler fires the aggregation run on a cron cadence.
// A failed run is logged and retried on the next scheduled fire, never
// immediately; the previous snapshot stays readable throughout.
type RankingScheduler struct {
	agg    *ranking.Aggregator
	spec   string
	cron   *cron.Cron
	logger *zap.Logger

	// Optional metric hooks (nil = no-op).
	OnRun func(success bool)
}

func NewRankingScheduler(agg *ranking.Aggregator, spec string, logger *zap.Logger) *RankingScheduler {
	return &RankingScheduler{
		agg:    agg,
		spec:   spec,
		cron:   cron.New(),
		logger: logger,
	}
}

// Start registers the cron entry and launches the schedule. The provided ctx
// bounds every run; Stop ends the schedule.
func (s *RankingScheduler) Start(ctx context.Context) error {
	_, err := s.cron.AddFunc(s.spec, func() {
		if ctx.Err() != nil {
			return
		}
		err := s.agg.Run(ctx)
		if err != nil {
			s.logger.Error("ranking aggregation failed, previous snapshot retained",
				zap.Error(err))
		}
		if s.OnRun != nil {
			s.OnRun(err == nil)
		}
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Info("ranking scheduler started", zap.String("cron", s.spec))
	return nil
}

// Stop halts the schedule and waits for a running job to finish.
func (s *RankingScheduler) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Info("ranking scheduler stopped")
}
