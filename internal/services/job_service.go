package services

import (
	"context"
	"log"
	"os"
	"sync"
	"time"

	"motorent/internal/booking/status"
	"motorent/internal/domain"
	"motorent/internal/repositories"
	"motorent/internal/utils"

	"github.com/robfig/cron/v3"
)

// JobService sweeps reservations nobody acted on: stale pending requests are
// cancelled and confirmed bookings that were never picked up become no-shows.
type JobService struct {
	Reservations ReservationService
	PendingTTL   time.Duration
	NoShowGrace  time.Duration

	mu   sync.Mutex
	cron *cron.Cron
}

// JobResult counts what one sweep did.
type JobResult struct {
	Moved   int
	Skipped int
}

func (s *JobService) now() time.Time {
	return s.Reservations.now()
}

func (s *JobService) repo() repositories.ReservationRepository {
	return s.Reservations.reservations()
}

// ExpireStalePending cancels pending reservations older than PendingTTL or whose
// start time has already passed.
func (s *JobService) ExpireStalePending(ctx context.Context) (JobResult, error) {
	now := s.now()
	ids, err := s.repo().ListStalePending(ctx, now.Add(-s.PendingTTL), now)
	if err != nil {
		return JobResult{}, err
	}
	return s.moveAll(ctx, "expire_pending", ids, status.Pending, status.Cancelled), nil
}

// MarkNoShows moves confirmed reservations to no_show once NoShowGrace has
// passed since their start.
func (s *JobService) MarkNoShows(ctx context.Context) (JobResult, error) {
	ids, err := s.repo().ListNoShowCandidates(ctx, s.now().Add(-s.NoShowGrace))
	if err != nil {
		return JobResult{}, err
	}
	return s.moveAll(ctx, "mark_no_show", ids, status.Confirmed, status.NoShow), nil
}

func (s *JobService) moveAll(ctx context.Context, action string, ids []int64, from, to status.Status) JobResult {
	var out JobResult
	for _, id := range ids {
		if ctx.Err() != nil {
			break
		}
		if _, err := s.Reservations.TransitionFrom(ctx, domain.SystemActor, id, from, to); err != nil {
			// someone else moved it between the scan and the update
			if domain.IsConflict(err) {
				out.Skipped++
				continue
			}
			utils.LogEventf("", "job", action, "id=%d err=%v", id, err)
			out.Skipped++
			continue
		}
		out.Moved++
	}
	if out.Moved > 0 || out.Skipped > 0 {
		utils.LogEventf("", "job", action, "moved=%d skipped=%d", out.Moved, out.Skipped)
	}
	return out
}

// RunOnce runs both sweeps.
func (s *JobService) RunOnce(ctx context.Context) {
	if _, err := s.ExpireStalePending(ctx); err != nil {
		utils.LogEventf("", "job", "expire_pending", "err=%v", err)
	}
	if _, err := s.MarkNoShows(ctx); err != nil {
		utils.LogEventf("", "job", "mark_no_show", "err=%v", err)
	}
}

// Start schedules RunOnce. A run that is still going when the next tick fires
// is not overlapped.
func (s *JobService) Start(schedule string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cron != nil {
		return nil
	}

	logger := cron.PrintfLogger(log.New(os.Stdout, "[CRON] ", log.LstdFlags))
	c := cron.New(cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)))
	if _, err := c.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		s.RunOnce(ctx)
	}); err != nil {
		return err
	}
	c.Start()
	s.cron = c
	log.Printf("[JOB] reservation sweeps scheduled %q", schedule)
	return nil
}

// Stop halts the scheduler and waits for a running sweep to finish.
func (s *JobService) Stop() {
	s.mu.Lock()
	c := s.cron
	s.cron = nil
	s.mu.Unlock()
	if c == nil {
		return
	}
	<-c.Stop().Done()
}
