package jobqueue

import (
	"context"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2/log"
)

// processSessionReconcileJob force-closes sessions left open past the
// configured sanity bound and settles their charges.
func (q *Queue) processSessionReconcileJob(ctx context.Context, job *Job) error {
	payload, err := SessionReconcileJobPayloadFromMap(job.Payload)
	if err != nil {
		return fmt.Errorf("invalid session reconcile payload: %w", err)
	}

	maxAge := time.Duration(payload.MaxAgeHours) * time.Hour
	if maxAge <= 0 {
		return fmt.Errorf("invalid max_age_hours: %d", payload.MaxAgeHours)
	}

	closed, err := q.engine.ForceCloseStale(ctx, maxAge)
	if err != nil {
		return fmt.Errorf("reconcile sweep failed: %w", err)
	}

	if closed > 0 {
		log.Warnf("[JobQueue] Reconcile sweep force-closed %d stale sessions (maxAge=%s)", closed, maxAge)
	} else {
		log.Debugf("[JobQueue] Reconcile sweep found no stale sessions (maxAge=%s)", maxAge)
	}
	return nil
}

// processSessionWarningJob notifies owners of subscription sessions that are
// projected to exhaust their remaining hours within the warning window.
func (q *Queue) processSessionWarningJob(ctx context.Context, job *Job) error {
	payload, err := SessionWarningJobPayloadFromMap(job.Payload)
	if err != nil {
		return fmt.Errorf("invalid session warning payload: %w", err)
	}

	window := time.Duration(payload.WindowMinutes) * time.Minute
	if window <= 0 {
		return fmt.Errorf("invalid window_minutes: %d", payload.WindowMinutes)
	}

	warned, err := q.engine.WarnLowSubscriptions(ctx, window)
	if err != nil {
		return fmt.Errorf("warning pass failed: %w", err)
	}

	if warned > 0 {
		log.Infof("[JobQueue] Warning pass notified %d low subscriptions (window=%s)", warned, window)
	}
	return nil
}
