package posts

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/gopherblog/internal/common"
	"github.com/dmitrijs2005/gopherblog/internal/server/models"
)

// AuthorLookup resolves post authors for the joined reads.
type AuthorLookup interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
}

type InMemoryRepository struct {
	mu      sync.RWMutex
	posts   map[string]models.Post
	authors AuthorLookup
}

func NewInMemoryRepository(authors AuthorLookup) *InMemoryRepository {
	return &InMemoryRepository{posts: map[string]models.Post{}, authors: authors}
}

func matches(p models.Post, search string) bool {
	if search == "" {
		return true
	}
	s := strings.ToLower(search)
	return strings.Contains(strings.ToLower(p.Title), s) || strings.Contains(strings.ToLower(p.Content), s)
}

// page sorts by updated_at desc and cuts out the requested window.
func page[T any](items []T, updatedAt func(T) time.Time, q models.PostQuery) []T {
	sort.SliceStable(items, func(i, j int) bool {
		return updatedAt(items[i]).After(updatedAt(items[j]))
	})
	start := q.Skip()
	if start < 0 || start >= len(items) {
		return []T{}
	}
	end := start + q.Limit
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

func parseIDs(ids ...string) error {
	for _, id := range ids {
		if _, err := uuid.Parse(id); err != nil {
			return common.ErrorInvalidID
		}
	}
	return nil
}

func (r *InMemoryRepository) ListByAuthor(_ context.Context, userID string, q models.PostQuery) ([]models.Post, error) {
	if err := parseIDs(userID); err != nil {
		return nil, err
	}

	r.mu.RLock()
	var found []models.Post
	for _, p := range r.posts {
		if p.UserID == userID && matches(p, q.Search) {
			found = append(found, p)
		}
	}
	r.mu.RUnlock()

	return page(found, func(p models.Post) time.Time { return p.UpdatedAt }, q), nil
}

func (r *InMemoryRepository) GetByAuthor(_ context.Context, userID, id string) (*models.Post, error) {
	if err := parseIDs(userID, id); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.posts[id]
	if !ok || p.UserID != userID {
		return nil, common.ErrorNotFound
	}
	return &p, nil
}

func (r *InMemoryRepository) Create(_ context.Context, post *models.Post) (*models.Post, error) {
	if err := parseIDs(post.UserID); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	post.ID = uuid.NewString()
	r.posts[post.ID] = *post
	return post, nil
}

func (r *InMemoryRepository) Update(_ context.Context, userID, id string, patch models.PostPatch, updatedAt time.Time) (*models.Post, error) {
	if err := parseIDs(userID, id); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.posts[id]
	if !ok || p.UserID != userID {
		return nil, common.ErrorNotFound
	}
	patch.Apply(&p)
	p.UpdatedAt = updatedAt
	r.posts[id] = p

	return &p, nil
}

func (r *InMemoryRepository) Delete(_ context.Context, userID, id string) error {
	if err := parseIDs(userID, id); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.posts[id]
	if !ok || p.UserID != userID {
		return common.ErrorNotFound
	}
	delete(r.posts, id)
	return nil
}

func (r *InMemoryRepository) List(ctx context.Context, q models.PostQuery) ([]models.PostWithAuthor, error) {
	r.mu.RLock()
	var found []models.Post
	for _, p := range r.posts {
		if matches(p, q.Search) {
			found = append(found, p)
		}
	}
	r.mu.RUnlock()

	joined := make([]models.PostWithAuthor, 0, len(found))
	for _, p := range found {
		j, err := r.join(ctx, p)
		if errors.Is(err, common.ErrorNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		joined = append(joined, *j)
	}

	return page(joined, func(p models.PostWithAuthor) time.Time { return p.UpdatedAt }, q), nil
}

func (r *InMemoryRepository) Get(ctx context.Context, id string) (*models.PostWithAuthor, error) {
	if err := parseIDs(id); err != nil {
		return nil, err
	}

	r.mu.RLock()
	p, ok := r.posts[id]
	r.mu.RUnlock()
	if !ok {
		return nil, common.ErrorNotFound
	}

	return r.join(ctx, p)
}

func (r *InMemoryRepository) join(ctx context.Context, p models.Post) (*models.PostWithAuthor, error) {
	author, err := r.authors.GetByID(ctx, p.UserID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("lookup author: %w", err)
	}
	return &models.PostWithAuthor{Post: p, Author: *author}, nil
}
