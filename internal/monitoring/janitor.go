package monitoring

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// DefaultJanitorSchedule runs the sweep every ten minutes.
const DefaultJanitorSchedule = "@every 10m"

// Pruner drops expired entries from an in-memory store.
type Pruner interface {
	Prune(now time.Time) int
}

// NotificationPurger deletes read notifications older than a cutoff.
type NotificationPurger interface {
	PurgeReadOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// Janitor periodically removes expired revocations and stale read notifications.
type Janitor struct {
	cron          *cron.Cron
	revocations   Pruner
	notifications NotificationPurger
	retention     time.Duration
	now           func() time.Time
}

// NewJanitor creates a janitor bound to schedule (a cron expression or descriptor such as "@every 10m").
// A zero retention disables the notification purge.
func NewJanitor(schedule string, revocations Pruner, notifications NotificationPurger, retention time.Duration) (*Janitor, error) {
	if schedule == "" {
		schedule = DefaultJanitorSchedule
	}
	j := &Janitor{
		cron:          cron.New(),
		revocations:   revocations,
		notifications: notifications,
		retention:     retention,
		now:           time.Now,
	}
	if _, err := j.cron.AddFunc(schedule, func() { j.Sweep(context.Background()) }); err != nil {
		return nil, fmt.Errorf("invalid janitor schedule %q: %w", schedule, err)
	}
	return j, nil
}

// Start runs the schedule in the background.
func (j *Janitor) Start() {
	log.Info().Msg("Starting background janitor...")
	j.cron.Start()
}

// Stop halts the schedule and waits for a running sweep to finish.
func (j *Janitor) Stop() {
	<-j.cron.Stop().Done()
	log.Info().Msg("Stopped background janitor.")
}

// SweepResult reports what a single sweep removed.
type SweepResult struct {
	Revocations   int
	Notifications int64
}

// Sweep performs one cleanup pass.
func (j *Janitor) Sweep(ctx context.Context) SweepResult {
	now := j.now()
	var res SweepResult

	if j.revocations != nil {
		res.Revocations = j.revocations.Prune(now)
	}

	if j.notifications != nil && j.retention > 0 {
		purged, err := j.notifications.PurgeReadOlderThan(ctx, now.Add(-j.retention))
		if err != nil {
			log.Error().Err(err).Msg("Janitor: failed to purge notifications")
		} else {
			res.Notifications = purged
		}
	}

	if res.Revocations > 0 || res.Notifications > 0 {
		log.Info().Int("revocations", res.Revocations).Int64("notifications", res.Notifications).Msg("Janitor sweep complete")
	}
	return res
}
