package models

import (
	"math"
	"time"
)

const (
	DefaultPostLimit = 10
	MaxPostLimit     = 100
)

// Post is a blog post owned by the user with id UserID.
type Post struct {
	ID        string
	Title     string
	Content   string
	Category  string
	Image     string
	UserID    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// PostPatch carries the fields of a partial update. Nil means unchanged.
type PostPatch struct {
	Title    *string
	Content  *string
	Category *string
	Image    *string
}

// Apply copies the set fields onto post.
func (p PostPatch) Apply(post *Post) {
	if p.Title != nil {
		post.Title = *p.Title
	}
	if p.Content != nil {
		post.Content = *p.Content
	}
	if p.Category != nil {
		post.Category = *p.Category
	}
	if p.Image != nil {
		post.Image = *p.Image
	}
}

// PostWithAuthor is a post joined with its author for public reads.
type PostWithAuthor struct {
	Post
	Author User
}

// PostQuery selects a page of posts. Search is a literal, case-insensitive
// substring matched against title and content.
type PostQuery struct {
	Limit  int
	Page   int
	Search string
}

// Normalize applies defaults: limit 10 (max 100), page 1. Page is capped so
// that Skip cannot overflow.
func (q PostQuery) Normalize() PostQuery {
	if q.Limit <= 0 {
		q.Limit = DefaultPostLimit
	}
	if q.Limit > MaxPostLimit {
		q.Limit = MaxPostLimit
	}
	if q.Page < 1 {
		q.Page = 1
	}
	if maxPage := math.MaxInt / q.Limit; q.Page > maxPage {
		q.Page = maxPage
	}
	return q
}

// Skip is the number of posts before the requested page.
func (q PostQuery) Skip() int {
	return (q.Page - 1) * q.Limit
}
