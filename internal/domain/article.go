package domain

import (
	"strings"
	"time"
)

// Article is a knowledge-base entry. Tags is a comma-separated token string,
// e.g. "training,courier". An empty Tags means the article is visible to
// every role.
type Article struct {
	ID    int64
	Title string
	Body  string
	Tags  string
}

// TagList splits Tags into trimmed, lower-cased tokens. Empty segments are
// dropped.
func (a Article) TagList() []string {
	if a.Tags == "" {
		return nil
	}
	parts := strings.Split(a.Tags, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.ToLower(strings.TrimSpace(p))
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Reminder is a one-shot message scheduled for an absolute time. It is
// consumed (deleted) exactly once when due; there is no cancel or update.
type Reminder struct {
	ID     int64
	UserID int64
	FireAt time.Time
	Text   string
}

// FeedbackEntry is an append-only feedback record.
type FeedbackEntry struct {
	UserID    int64
	Text      string
	CreatedAt time.Time
}
