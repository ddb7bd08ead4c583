// Package scheduler runs the background sweep that dispatches due reminders
// and the once-daily digest.
package scheduler

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/z89kdf9k4p-code/crewbot/internal/domain"
)

// tickInterval bounds how late a reminder or digest can fire. It must stay
// under a minute so the digest's minute-wide firing window is never skipped.
const tickInterval = 15 * time.Second

// Sender delivers messages through the external transport. telegram.Router
// implements it.
type Sender interface {
	SendReminder(userID int64, text string) error
	SendDigest(userID int64, text string) error
}

// Store is the slice of storage the scheduler needs.
type Store interface {
	TakeDueReminders(ctx context.Context, now time.Time) ([]domain.Reminder, error)
	DigestSubscribers() []int64
	DigestMessage() string
	IsBanned(id int64) bool
}

// Scheduler polls the store on a fixed interval and pushes due messages out.
type Scheduler struct {
	store  Store
	log    *zap.Logger
	sender Sender

	loc          *time.Location
	digestHour   int
	digestMinute int

	now func() time.Time

	// lastDigest records the local date a user last received the digest.
	// Volatile on purpose: losing it on restart risks at most one duplicate
	// send on the day of the restart.
	lastDigest map[int64]string
}

// New creates a Scheduler firing the digest at hour:minute local time in loc.
func New(store Store, log *zap.Logger, sender Sender, loc *time.Location, hour, minute int) *Scheduler {
	return &Scheduler{
		store:        store,
		log:          log,
		sender:       sender,
		loc:          loc,
		digestHour:   hour,
		digestMinute: minute,
		now:          time.Now,
		lastDigest:   make(map[int64]string),
	}
}

// Run loops until ctx is canceled. A failing sweep is logged and the loop
// carries on at the next tick; it never terminates on an iteration error.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info("scheduler stopping")
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

// tick performs one sweep: consume due reminders, then the digest window.
func (s *Scheduler) tick(ctx context.Context) {
	now := s.now().UTC()

	due, err := s.store.TakeDueReminders(ctx, now)
	if err != nil {
		s.log.Error("take due reminders failed", zap.Error(err))
	}
	for _, r := range due {
		// The reminder is already consumed; a delivery failure is final.
		if err := s.sender.SendReminder(r.UserID, r.Text); err != nil {
			s.log.Warn("reminder delivery failed",
				zap.Error(err), zap.Int64("userID", r.UserID), zap.Int64("reminderID", r.ID))
		}
	}

	s.sweepDigest(now)
}

// sweepDigest sends the daily digest when local time matches the configured
// hour:minute, at most once per subscriber per local calendar day.
func (s *Scheduler) sweepDigest(now time.Time) {
	local := now.In(s.loc)
	if local.Hour() != s.digestHour || local.Minute() != s.digestMinute {
		return
	}

	today := local.Format("2006-01-02")
	text := s.store.DigestMessage()
	for _, uid := range s.store.DigestSubscribers() {
		if s.lastDigest[uid] == today {
			continue
		}
		if s.store.IsBanned(uid) {
			continue
		}
		if err := s.sender.SendDigest(uid, text); err != nil {
			s.log.Warn("digest delivery failed", zap.Error(err), zap.Int64("userID", uid))
			continue
		}
		s.lastDigest[uid] = today
	}
}
