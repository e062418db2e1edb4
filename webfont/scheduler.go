package webfont

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Scheduler runs tasks with bounded concurrency. After the first failure
// tasks which have not started yet are dropped, running ones are left to
// complete.
type Scheduler struct {
	parent context.Context
	gctx   context.Context
	g      *errgroup.Group
}

// NewScheduler creates scheduler running at most capacity tasks at once.
func NewScheduler(ctx context.Context, capacity int) *Scheduler {
	if capacity < 1 {
		capacity = 1
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(capacity)
	return &Scheduler{parent: ctx, gctx: gctx, g: g}
}

// Submit queues task, blocking while all slots are busy. Task receives
// context of the caller, not the group one, so a failure elsewhere does not
// abort requests already in progress.
func (s *Scheduler) Submit(task func(ctx context.Context) error) {
	s.g.Go(func() error {
		if err := s.gctx.Err(); err != nil {
			return err
		}
		return task(s.parent)
	})
}

// Wait blocks until all submitted tasks are done and returns the first error.
func (s *Scheduler) Wait() error {
	return s.g.Wait()
}
