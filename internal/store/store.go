// Package store owns all durable state and its in-memory mirror. Reads are
// served from the mirror; writes go to SQLite first and are mirrored only
// after the durable write commits, under the same lock, so the two can never
// drift. No other package touches the database or the mirror directly.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	// Registers the "sqlite" driver (pure Go).
	_ "modernc.org/sqlite"

	"github.com/z89kdf9k4p-code/crewbot/internal/domain"
)

// feedbackCacheCap bounds the in-memory feedback mirror. The table itself is
// unbounded; only the hot mirror is capped.
const feedbackCacheCap = 500

const digestMessageKey = "digest_message"

const defaultDigestMessage = "Daily digest: check Training and Links for updates."

// defaultArticles seeds the knowledge base on first start.
var defaultArticles = []domain.Article{
	{Title: "Getting started", Body: "Press /start and complete registration: language, phone, role, shop.", Tags: "start,registration"},
	{Title: "Who to contact about problems", Body: "Use the Supervisor contacts menu or leave Feedback.", Tags: "support,feedback"},
	{Title: "Where to find links", Body: "Open Links in the menu; they depend on your shop.", Tags: "links"},
	{Title: "Ground rules", Body: "Follow safety rules, follow supervisor instructions, check orders before handover.", Tags: "training,courier,picker"},
	{Title: "Loading the van", Body: "Place goods carefully: heavy items at the bottom, fragile on top, check integrity.", Tags: "training,courier"},
	{Title: "Connecting the terminal", Body: "Power on the terminal, check the internet connection, sign in to the app, run a test transaction.", Tags: "training,courier,picker"},
	{Title: "Order picking rules", Body: "Pick strictly by the list, check expiry dates, pack fragile items separately.", Tags: "training,picker"},
	{Title: "Handling returns", Body: "Record the reason, take a photo if needed, report to the shift lead.", Tags: "training,courier,picker"},
	{Title: "Closing the shop", Body: "Reconcile stock, clean your workplace, report problems to the supervisor.", Tags: "training,picker"},
}

// Store is the single owner of durable rows and their read-optimized mirror.
type Store struct {
	db *sql.DB

	mu        sync.RWMutex
	users     map[int64]domain.UserProfile
	banned    map[int64]struct{}
	articles  []domain.Article  // ascending id, i.e. insertion order
	reminders []domain.Reminder // sorted by FireAt ascending
	digest    map[int64]struct{}
	digestMsg string
	feedback  []domain.FeedbackEntry // newest first, capped
	fbCount   int                    // total rows in the feedback table
}

// Open opens (or creates) the SQLite database at path, applies PRAGMAs, runs
// migrations, seeds defaults and loads the mirror. Any error here must be
// treated as fatal by the caller: a partially initialized mirror is never
// served.
func Open(ctx context.Context, path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// SQLite is a single-writer engine; one connection avoids lock churn.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := applyPragmas(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}
	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations: %w", err)
	}

	s := &Store{
		db:     db,
		users:  make(map[int64]domain.UserProfile),
		banned: make(map[int64]struct{}),
		digest: make(map[int64]struct{}),
	}
	if err := s.seedDefaults(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("seed defaults: %w", err)
	}
	if err := s.loadMirror(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("load mirror: %w", err)
	}
	return s, nil
}

func applyPragmas(ctx context.Context, db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA foreign_keys=ON;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

// seedDefaults writes the digest message setting and the starter article
// corpus, but only when absent so user edits survive restarts.
func (s *Store) seedDefaults(ctx context.Context) error {
	var have int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM settings WHERE key = ?`, digestMessageKey).Scan(&have)
	if err != nil {
		return err
	}
	if have == 0 {
		if _, err := s.db.ExecContext(ctx,
			`INSERT INTO settings(key, value) VALUES(?, ?)`,
			digestMessageKey, defaultDigestMessage); err != nil {
			return err
		}
	}

	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM articles`).Scan(&have); err != nil {
		return err
	}
	if have == 0 {
		now := time.Now().UTC().Unix()
		for _, a := range defaultArticles {
			if _, err := s.db.ExecContext(ctx,
				`INSERT INTO articles(title, body, tags, created_at) VALUES(?, ?, ?, ?)`,
				a.Title, a.Body, a.Tags, now); err != nil {
				return err
			}
		}
	}
	return nil
}

// loadMirror rebuilds the whole in-memory mirror from durable state.
func (s *Store) loadMirror(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, username, role, shop, lang, phone FROM users`)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var u domain.UserProfile
		if err := rows.Scan(&u.ID, &u.Username, &u.Role, &u.Shop, &u.Lang, &u.Phone); err != nil {
			return err
		}
		s.users[u.ID] = u
	}
	if err := rows.Err(); err != nil {
		return err
	}

	bRows, err := s.db.QueryContext(ctx, `SELECT user_id FROM banned_users`)
	if err != nil {
		return err
	}
	defer bRows.Close()
	for bRows.Next() {
		var id int64
		if err := bRows.Scan(&id); err != nil {
			return err
		}
		s.banned[id] = struct{}{}
	}
	if err := bRows.Err(); err != nil {
		return err
	}

	aRows, err := s.db.QueryContext(ctx,
		`SELECT id, title, body, tags FROM articles ORDER BY id ASC`)
	if err != nil {
		return err
	}
	defer aRows.Close()
	for aRows.Next() {
		var a domain.Article
		if err := aRows.Scan(&a.ID, &a.Title, &a.Body, &a.Tags); err != nil {
			return err
		}
		s.articles = append(s.articles, a)
	}
	if err := aRows.Err(); err != nil {
		return err
	}

	rRows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, fire_at, text FROM reminders ORDER BY fire_at ASC, id ASC`)
	if err != nil {
		return err
	}
	defer rRows.Close()
	for rRows.Next() {
		var (
			r  domain.Reminder
			at int64
		)
		if err := rRows.Scan(&r.ID, &r.UserID, &at, &r.Text); err != nil {
			return err
		}
		r.FireAt = time.Unix(at, 0).UTC()
		s.reminders = append(s.reminders, r)
	}
	if err := rRows.Err(); err != nil {
		return err
	}

	dRows, err := s.db.QueryContext(ctx,
		`SELECT user_id FROM digest_subscriptions WHERE enabled = 1`)
	if err != nil {
		return err
	}
	defer dRows.Close()
	for dRows.Next() {
		var id int64
		if err := dRows.Scan(&id); err != nil {
			return err
		}
		s.digest[id] = struct{}{}
	}
	if err := dRows.Err(); err != nil {
		return err
	}

	if err := s.db.QueryRowContext(ctx,
		`SELECT value FROM settings WHERE key = ?`, digestMessageKey).Scan(&s.digestMsg); err != nil {
		return err
	}

	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM feedback`).Scan(&s.fbCount); err != nil {
		return err
	}
	fRows, err := s.db.QueryContext(ctx,
		`SELECT user_id, text, created_at FROM feedback ORDER BY id DESC LIMIT ?`, feedbackCacheCap)
	if err != nil {
		return err
	}
	defer fRows.Close()
	for fRows.Next() {
		var (
			f  domain.FeedbackEntry
			at int64
		)
		if err := fRows.Scan(&f.UserID, &f.Text, &at); err != nil {
			return err
		}
		f.CreatedAt = time.Unix(at, 0).UTC()
		s.feedback = append(s.feedback, f)
	}
	return fRows.Err()
}

// Close releases the underlying database resources.
func (s *Store) Close() error {
	return s.db.Close()
}

// Stats returns user, feedback and banned counts for the admin overview.
func (s *Store) Stats() (users, feedback, banned int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.users), s.fbCount, len(s.banned)
}

func sortedIDs(set map[int64]struct{}) []int64 {
	out := make([]int64, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
