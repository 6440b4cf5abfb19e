package stockwatch

import (
	"context"
	"github.com/robfig/cron/v3"
	"time"
)

// Schedule runs Sweep on spec (standard cron or "@every 15m") until ctx is
// done. Overlapping runs are skipped.
func (s *Service) Schedule(ctx context.Context, spec string) error {
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	_, err := c.AddFunc(spec, func() {
		runCtx, cancel := context.WithTimeout(ctx, time.Minute)
		defer cancel()
		if err := s.Sweep(runCtx); err != nil {
			s.Log.WithError(err).Error("low-stock sweep failed")
		}
	})
	if err != nil {
		return err
	}

	c.Start()
	<-ctx.Done()
	<-c.Stop().Done()
	return nil
}
