package store

import (
	"context"
	"fmt"
	"time"

	"github.com/z89kdf9k4p-code/crewbot/internal/domain"
)

// AddArticle inserts a knowledge-base article and returns its new id.
func (s *Store) AddArticle(ctx context.Context, title, body, tags string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO articles(title, body, tags, created_at) VALUES(?, ?, ?, ?)`,
		title, body, tags, time.Now().UTC().Unix())
	if err != nil {
		return 0, fmt.Errorf("add article: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("add article id: %w", err)
	}

	s.articles = append(s.articles, domain.Article{ID: id, Title: title, Body: body, Tags: tags})
	return id, nil
}

// DeleteArticle removes an article. It returns false (and performs no write)
// when the id does not exist.
func (s *Store) DeleteArticle(ctx context.Context, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.articleIndex(id)
	if idx < 0 {
		return false, nil
	}

	if _, err := s.db.ExecContext(ctx, `DELETE FROM articles WHERE id = ?`, id); err != nil {
		return false, fmt.Errorf("delete article %d: %w", id, err)
	}
	s.articles = append(s.articles[:idx], s.articles[idx+1:]...)
	return true, nil
}

// EditArticle updates an article. Nil fields keep their previous value.
// Returns false when the id does not exist.
func (s *Store) EditArticle(ctx context.Context, id int64, title, body, tags *string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.articleIndex(id)
	if idx < 0 {
		return false, nil
	}

	next := s.articles[idx]
	if title != nil {
		next.Title = *title
	}
	if body != nil {
		next.Body = *body
	}
	if tags != nil {
		next.Tags = *tags
	}

	if _, err := s.db.ExecContext(ctx,
		`UPDATE articles SET title = ?, body = ?, tags = ? WHERE id = ?`,
		next.Title, next.Body, next.Tags, id); err != nil {
		return false, fmt.Errorf("edit article %d: %w", id, err)
	}
	s.articles[idx] = next
	return true, nil
}

// GetArticle returns one article by id.
func (s *Store) GetArticle(id int64) (domain.Article, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if idx := s.articleIndex(id); idx >= 0 {
		return s.articles[idx], true
	}
	return domain.Article{}, false
}

// ListArticles returns up to limit articles in insertion order; limit <= 0
// means all.
func (s *Store) ListArticles(limit int) []domain.Article {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := len(s.articles)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]domain.Article, n)
	copy(out, s.articles[:n])
	return out
}

// Articles returns a snapshot of the whole corpus in insertion order. The
// search index reads through this.
func (s *Store) Articles() []domain.Article {
	return s.ListArticles(0)
}

// articleIndex finds the mirror position of an article id; callers hold mu.
func (s *Store) articleIndex(id int64) int {
	for i, a := range s.articles {
		if a.ID == id {
			return i
		}
	}
	return -1
}
