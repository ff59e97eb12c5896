package bot

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"
)

// reconcileTickTimeout bounds one reconciliation pass, including the
// paginated accepted-request listing and any instant-win payouts it
// triggers.
const reconcileTickTimeout = 2 * time.Minute

// dailyDrawTimeout bounds one full daily draw over every active guild.
const dailyDrawTimeout = 5 * time.Minute

// StartReconciliationWorker starts the background loop that confirms and
// expires pending entries. Returns a cleanup function that stops the
// worker and blocks until any in-flight pass has finished.
func (b *Bot) StartReconciliationWorker(ctx context.Context) func() {
	interval := time.Duration(b.config.ReconcileInterval) * time.Second
	ticker := time.NewTicker(interval)
	stopChan := make(chan struct{})
	done := make(chan struct{})

	go func() {
		defer close(done)
		defer ticker.Stop()

		log.WithField("interval", interval).Info("Reconciliation worker started")

		for {
			select {
			case <-ticker.C:
				// The tick runs on its own deadline, detached from the
				// shutdown context, so a pass already past its ledger
				// send is never aborted halfway.
				tickCtx, cancel := context.WithTimeout(context.Background(), reconcileTickTimeout)
				if err := b.reconcileService.Reconcile(tickCtx); err != nil {
					log.WithError(err).Error("Reconciliation pass failed")
				}
				cancel()
			case <-stopChan:
				log.Info("Reconciliation worker stopped")
				return
			case <-ctx.Done():
				log.Info("Reconciliation worker stopped due to context cancellation")
				return
			}
		}
	}()

	return func() {
		close(stopChan)
		<-done
	}
}

// StartDailyDrawWorker starts the background loop that runs the scheduled
// draw once per day at the configured UTC hour. Returns a cleanup function
// that stops the worker and blocks until any in-flight draw has finished.
func (b *Bot) StartDailyDrawWorker(ctx context.Context) func() {
	stopChan := make(chan struct{})
	done := make(chan struct{})

	go func() {
		defer close(done)

		log.WithField("drawHourUTC", b.config.DrawHourUTC).Info("Daily draw worker started")

		for {
			next := nextDrawTime(time.Now().UTC(), b.config.DrawHourUTC)
			timer := time.NewTimer(time.Until(next))

			select {
			case <-timer.C:
				drawCtx, cancel := context.WithTimeout(context.Background(), dailyDrawTimeout)
				b.drawService.RunDailyDraw(drawCtx)
				cancel()
			case <-stopChan:
				timer.Stop()
				log.Info("Daily draw worker stopped")
				return
			case <-ctx.Done():
				timer.Stop()
				log.Info("Daily draw worker stopped due to context cancellation")
				return
			}
		}
	}()

	return func() {
		close(stopChan)
		<-done
	}
}

// nextDrawTime returns the next occurrence of the given UTC hour strictly
// after now.
func nextDrawTime(now time.Time, hour int) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, 0, 0, 0, time.UTC)
	if !next.After(now) {
		next = next.Add(24 * time.Hour)
	}
	return next
}
