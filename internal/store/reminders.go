package store

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/z89kdf9k4p-code/crewbot/internal/domain"
)

// AddReminder schedules a one-shot reminder at fireAt.
func (s *Store) AddReminder(ctx context.Context, userID int64, fireAt time.Time, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO reminders(user_id, fire_at, text) VALUES(?, ?, ?)`,
		userID, fireAt.UTC().Unix(), text)
	if err != nil {
		return fmt.Errorf("add reminder: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("add reminder id: %w", err)
	}

	s.reminders = append(s.reminders, domain.Reminder{
		ID:     id,
		UserID: userID,
		FireAt: fireAt.UTC().Truncate(time.Second),
		Text:   text,
	})
	sort.SliceStable(s.reminders, func(i, j int) bool {
		return s.reminders[i].FireAt.Before(s.reminders[j].FireAt)
	})
	return nil
}

// TakeDueReminders removes and returns every reminder with FireAt <= now.
// Rows are deleted durably before being returned, so a reminder id can be
// handed out at most once even across a crash between delete and delivery.
func (s *Store) TakeDueReminders(ctx context.Context, now time.Time) ([]domain.Reminder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// The mirror is kept sorted by FireAt, so due entries form a prefix.
	n := 0
	for n < len(s.reminders) && !s.reminders[n].FireAt.After(now) {
		n++
	}
	if n == 0 {
		return nil, nil
	}

	args := make([]any, n)
	for i := 0; i < n; i++ {
		args[i] = s.reminders[i].ID
	}
	q := `DELETE FROM reminders WHERE id IN (?` + strings.Repeat(",?", n-1) + `)`
	if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
		return nil, fmt.Errorf("take due reminders: %w", err)
	}

	due := make([]domain.Reminder, n)
	copy(due, s.reminders[:n])
	s.reminders = append(s.reminders[:0:0], s.reminders[n:]...)
	return due, nil
}

// PendingReminders returns how many reminders are outstanding.
func (s *Store) PendingReminders() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.reminders)
}

// SetDigestEnabled toggles the daily digest subscription for a user.
func (s *Store) SetDigestEnabled(ctx context.Context, userID int64, enabled bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var err error
	if enabled {
		_, err = s.db.ExecContext(ctx,
			`INSERT OR REPLACE INTO digest_subscriptions(user_id, enabled) VALUES(?, 1)`, userID)
	} else {
		_, err = s.db.ExecContext(ctx,
			`DELETE FROM digest_subscriptions WHERE user_id = ?`, userID)
	}
	if err != nil {
		return fmt.Errorf("set digest %d: %w", userID, err)
	}

	if enabled {
		s.digest[userID] = struct{}{}
	} else {
		delete(s.digest, userID)
	}
	return nil
}

// DigestSubscribers returns the ids of all subscribed users, ordered by id.
func (s *Store) DigestSubscribers() []int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedIDs(s.digest)
}

// DigestMessage returns the current digest text.
func (s *Store) DigestMessage() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.digestMsg
}

// SetDigestMessage replaces the digest text. Blank input is ignored.
func (s *Store) SetDigestMessage(ctx context.Context, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO settings(key, value) VALUES(?, ?)`,
		digestMessageKey, text); err != nil {
		return fmt.Errorf("set digest message: %w", err)
	}
	s.digestMsg = text
	return nil
}
