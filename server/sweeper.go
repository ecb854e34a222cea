package server

import (
	"time"

	"sentisounds/core/auth"
	"sentisounds/logger"
	"sentisounds/repository"
)

// startSweeper runs the periodic cleanup for the lifetime of the process:
// first the in-memory pending-code sweep, then, as an independent phase,
// the removal of expired unverified signup rows. The two phases report
// their counts separately and no lock is held across the durable phase.
func startSweeper(pending *auth.PendingCache, users repository.UserRepository, interval, codeTTL time.Duration, stop <-chan struct{}) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				removed := pending.SweepExpired()
				if removed > 0 {
					logger.Info("[Sweep] removed expired pending codes", logger.Int("count", removed))
				}

				cutoff := time.Now().Add(-codeTTL)
				deleted, err := users.DeleteExpiredUnverified(cutoff)
				if err != nil {
					logger.Error("[Sweep] failed to delete expired unverified users", logger.ErrorField(err))
					continue
				}
				if deleted > 0 {
					logger.Info("[Sweep] removed expired unverified users", logger.Int64("count", deleted))
				}
			case <-stop:
				return
			}
		}
	}()
}
