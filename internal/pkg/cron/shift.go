package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/timeclock-backend-go/internal/domain/shift"
)

// SnapshotInterval is how often admins' live views get a full active-shift refresh
const SnapshotInterval = 30 * time.Second

// ShiftJobs republishes the active-shift count so views that missed a change
// notification converge without polling the API themselves.
type ShiftJobs struct {
	shiftRepo shift.ShiftRepository
	publisher shift.ChangePublisher
	now       func() time.Time
}

func NewShiftJobs(shiftRepo shift.ShiftRepository, publisher shift.ChangePublisher) *ShiftJobs {
	return &ShiftJobs{
		shiftRepo: shiftRepo,
		publisher: publisher,
		now:       time.Now,
	}
}

func (j *ShiftJobs) RegisterJobs(scheduler *Scheduler) {
	scheduler.AddJob("publish_active_shift_snapshot", SnapshotInterval, j.PublishActiveSnapshot)
}

func (j *ShiftJobs) PublishActiveSnapshot(ctx context.Context) error {
	open, err := j.shiftRepo.ListOpen(ctx)
	if err != nil {
		return fmt.Errorf("failed to list active shifts: %w", err)
	}

	count := len(open)
	j.publisher.PublishShiftChange(ctx, shift.ChangeEvent{
		Action:      shift.ChangeSnapshot,
		ActiveCount: &count,
		OccurredAt:  j.now().UTC(),
	})
	return nil
}
