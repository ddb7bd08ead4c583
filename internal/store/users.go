package store

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/z89kdf9k4p-code/crewbot/internal/domain"
)

// GetUser returns the cached profile for id.
func (s *Store) GetUser(id int64) (domain.UserProfile, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	return u, ok
}

// ListUsers returns every profile, ordered by id.
func (s *Store) ListUsers() []domain.UserProfile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.UserProfile, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// IsBanned reports whether id is on the ban list.
func (s *Store) IsBanned(id int64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.banned[id]
	return ok
}

// SaveUser upserts a profile. An empty Phone means "unchanged": the previous
// phone is kept both durably (COALESCE) and in the mirror. Every other field
// overwrites unconditionally.
func (s *Store) SaveUser(ctx context.Context, p domain.UserProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, username, role, shop, lang, phone)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			username = excluded.username,
			role     = excluded.role,
			shop     = excluded.shop,
			lang     = excluded.lang,
			phone    = COALESCE(NULLIF(excluded.phone, ''), users.phone)`,
		p.ID, p.Username, p.Role, p.Shop, p.Lang, p.Phone,
	)
	if err != nil {
		return fmt.Errorf("save user %d: %w", p.ID, err)
	}

	if p.Phone == "" {
		if prev, ok := s.users[p.ID]; ok {
			p.Phone = prev.Phone
		}
	}
	s.users[p.ID] = p
	return nil
}

// SetBanned adds or removes id from the ban list. Banning never deletes the
// profile.
func (s *Store) SetBanned(ctx context.Context, id int64, banned bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var err error
	if banned {
		_, err = s.db.ExecContext(ctx,
			`INSERT OR REPLACE INTO banned_users(user_id) VALUES(?)`, id)
	} else {
		_, err = s.db.ExecContext(ctx,
			`DELETE FROM banned_users WHERE user_id = ?`, id)
	}
	if err != nil {
		return fmt.Errorf("set banned %d: %w", id, err)
	}

	if banned {
		s.banned[id] = struct{}{}
	} else {
		delete(s.banned, id)
	}
	return nil
}

// AppendFeedback stores a feedback entry. The mirror keeps only the newest
// feedbackCacheCap entries.
func (s *Store) AppendFeedback(ctx context.Context, userID int64, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO feedback(user_id, text, created_at) VALUES(?, ?, ?)`,
		userID, text, now.Unix())
	if err != nil {
		return fmt.Errorf("append feedback: %w", err)
	}

	s.feedback = append([]domain.FeedbackEntry{{UserID: userID, Text: text, CreatedAt: now}}, s.feedback...)
	if len(s.feedback) > feedbackCacheCap {
		s.feedback = s.feedback[:feedbackCacheCap]
	}
	s.fbCount++
	return nil
}

// PurgeFeedback removes all feedback left by one user.
func (s *Store) PurgeFeedback(ctx context.Context, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `DELETE FROM feedback WHERE user_id = ?`, userID)
	if err != nil {
		return fmt.Errorf("purge feedback for %d: %w", userID, err)
	}
	if n, err := res.RowsAffected(); err == nil {
		s.fbCount -= int(n)
	}

	kept := s.feedback[:0]
	for _, f := range s.feedback {
		if f.UserID != userID {
			kept = append(kept, f)
		}
	}
	s.feedback = kept
	return nil
}

// PurgeAllFeedback empties the feedback table.
func (s *Store) PurgeAllFeedback(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.ExecContext(ctx, `DELETE FROM feedback`); err != nil {
		return fmt.Errorf("purge feedback: %w", err)
	}
	s.feedback = nil
	s.fbCount = 0
	return nil
}

// FeedbackCount returns the total number of stored feedback rows, which can
// exceed what ListFeedback serves from the capped mirror.
func (s *Store) FeedbackCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.fbCount
}

// ListFeedback returns the cached (newest-first) feedback entries.
func (s *Store) ListFeedback() []domain.FeedbackEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.FeedbackEntry, len(s.feedback))
	copy(out, s.feedback)
	return out
}
