package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"github.com/z89kdf9k4p-code/crewbot/internal/domain"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// stubStore hands out its due slice exactly once, like the real store does.
type stubStore struct {
	due    []domain.Reminder
	subs   []int64
	msg    string
	banned map[int64]bool
}

func (s *stubStore) TakeDueReminders(context.Context, time.Time) ([]domain.Reminder, error) {
	out := s.due
	s.due = nil
	return out, nil
}

func (s *stubStore) DigestSubscribers() []int64 { return s.subs }
func (s *stubStore) DigestMessage() string      { return s.msg }
func (s *stubStore) IsBanned(id int64) bool     { return s.banned[id] }

// recorder collects deliveries and can fail selected recipients.
type recorder struct {
	reminders map[int64][]string
	digests   map[int64]int
	fail      map[int64]bool
}

func newRecorder() *recorder {
	return &recorder{
		reminders: make(map[int64][]string),
		digests:   make(map[int64]int),
		fail:      make(map[int64]bool),
	}
}

func (r *recorder) SendReminder(userID int64, text string) error {
	if r.fail[userID] {
		return errors.New("send failed")
	}
	r.reminders[userID] = append(r.reminders[userID], text)
	return nil
}

func (r *recorder) SendDigest(userID int64, _ string) error {
	if r.fail[userID] {
		return errors.New("send failed")
	}
	r.digests[userID]++
	return nil
}

func newTestScheduler(st Store, snd Sender, at time.Time) *Scheduler {
	s := New(st, zap.NewNop(), snd, time.UTC, 9, 0)
	s.now = func() time.Time { return at }
	return s
}

func TestTickDeliversDueReminders(t *testing.T) {
	st := &stubStore{
		due: []domain.Reminder{
			{ID: 1, UserID: 7, Text: "call supervisor"},
			{ID: 2, UserID: 8, Text: "restock shelf 3"},
		},
	}
	snd := newRecorder()
	s := newTestScheduler(st, snd, time.Date(2026, 3, 2, 12, 30, 0, 0, time.UTC))

	s.tick(context.Background())
	require.Equal(t, []string{"call supervisor"}, snd.reminders[7])
	require.Equal(t, []string{"restock shelf 3"}, snd.reminders[8])

	// Nothing left; a second tick sends nothing more.
	s.tick(context.Background())
	assert.Len(t, snd.reminders[7], 1)
	assert.Len(t, snd.reminders[8], 1)
}

func TestTickFailedDeliveryDoesNotBlockOthers(t *testing.T) {
	st := &stubStore{
		due: []domain.Reminder{
			{ID: 1, UserID: 7, Text: "first"},
			{ID: 2, UserID: 8, Text: "second"},
		},
	}
	snd := newRecorder()
	snd.fail[7] = true
	s := newTestScheduler(st, snd, time.Date(2026, 3, 2, 12, 30, 0, 0, time.UTC))

	s.tick(context.Background())
	assert.Empty(t, snd.reminders[7])
	assert.Equal(t, []string{"second"}, snd.reminders[8])
}

func TestDigestFiresOncePerDay(t *testing.T) {
	st := &stubStore{subs: []int64{10, 20}, msg: "daily news"}
	snd := newRecorder()
	at := time.Date(2026, 3, 2, 9, 0, 5, 0, time.UTC)
	s := newTestScheduler(st, snd, at)

	// Several ticks within the firing minute still deliver once.
	s.tick(context.Background())
	s.now = func() time.Time { return at.Add(15 * time.Second) }
	s.tick(context.Background())
	assert.Equal(t, 1, snd.digests[10])
	assert.Equal(t, 1, snd.digests[20])

	// Outside the window nothing fires.
	s.now = func() time.Time { return at.Add(2 * time.Minute) }
	s.tick(context.Background())
	assert.Equal(t, 1, snd.digests[10])

	// Next day the digest goes out again.
	s.now = func() time.Time { return at.Add(24 * time.Hour) }
	s.tick(context.Background())
	assert.Equal(t, 2, snd.digests[10])
	assert.Equal(t, 2, snd.digests[20])
}

func TestDigestSkipsBanned(t *testing.T) {
	st := &stubStore{subs: []int64{10, 20}, msg: "daily news", banned: map[int64]bool{20: true}}
	snd := newRecorder()
	s := newTestScheduler(st, snd, time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC))

	s.tick(context.Background())
	assert.Equal(t, 1, snd.digests[10])
	assert.Zero(t, snd.digests[20])
}

func TestDigestRetriesFailedDeliveryWithinTheDay(t *testing.T) {
	st := &stubStore{subs: []int64{10}, msg: "daily news"}
	snd := newRecorder()
	at := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	s := newTestScheduler(st, snd, at)

	snd.fail[10] = true
	s.tick(context.Background())
	assert.Zero(t, snd.digests[10])

	// A failed send is not marked as delivered, so the next in-window tick
	// tries again.
	snd.fail[10] = false
	s.now = func() time.Time { return at.Add(30 * time.Second) }
	s.tick(context.Background())
	assert.Equal(t, 1, snd.digests[10])
}

func TestRunStopsOnCancel(t *testing.T) {
	st := &stubStore{}
	s := New(st, zap.NewNop(), newRecorder(), time.UTC, 9, 0)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop after cancel")
	}
}
