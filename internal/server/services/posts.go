package services

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gopherblog/internal/server/models"
	"github.com/dmitrijs2005/gopherblog/internal/server/repositories/posts"
)

// ImagePresigner hands out upload slots for post images.
type ImagePresigner interface {
	PresignImage(ctx context.Context) (uploadURL, publicURL string, err error)
}

// ImageUpload is a presigned PUT target and the URL the object will be
// served from once uploaded.
type ImageUpload struct {
	UploadURL string
	Image     string
	Post      *models.Post
}

// AuthorService manages the posts of the signed-in author. Every call
// is scoped to userID; posts of other authors are reported as not found.
type AuthorService struct {
	repo      posts.Repository
	presigner ImagePresigner
	now       func() time.Time
}

func NewAuthorService(repo posts.Repository, presigner ImagePresigner) *AuthorService {
	return &AuthorService{repo: repo, presigner: presigner, now: time.Now}
}

func (s *AuthorService) List(ctx context.Context, userID string, q models.PostQuery) ([]models.Post, error) {
	return s.repo.ListByAuthor(ctx, userID, q.Normalize())
}

func (s *AuthorService) Get(ctx context.Context, userID, id string) (*models.Post, error) {
	return s.repo.GetByAuthor(ctx, userID, id)
}

// Create stores a new post owned by userID.
func (s *AuthorService) Create(ctx context.Context, userID string, post *models.Post) (*models.Post, error) {
	now := s.now().UTC()
	post.UserID = userID
	post.CreatedAt = now
	post.UpdatedAt = now

	created, err := s.repo.Create(ctx, post)
	if err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}
	return created, nil
}

// Update applies the set fields of patch and bumps updated_at. An empty
// patch still bumps the timestamp.
func (s *AuthorService) Update(ctx context.Context, userID, id string, patch models.PostPatch) (*models.Post, error) {
	return s.repo.Update(ctx, userID, id, patch, s.now().UTC())
}

func (s *AuthorService) Delete(ctx context.Context, userID, id string) error {
	return s.repo.Delete(ctx, userID, id)
}

// AttachImage presigns an upload for the post's image and records the
// public URL on the post. Ownership is checked before presigning.
func (s *AuthorService) AttachImage(ctx context.Context, userID, id string) (*ImageUpload, error) {
	if _, err := s.repo.GetByAuthor(ctx, userID, id); err != nil {
		return nil, err
	}

	uploadURL, image, err := s.presigner.PresignImage(ctx)
	if err != nil {
		return nil, fmt.Errorf("presign image: %w", err)
	}

	post, err := s.repo.Update(ctx, userID, id, models.PostPatch{Image: &image}, s.now().UTC())
	if err != nil {
		return nil, err
	}

	return &ImageUpload{UploadURL: uploadURL, Image: image, Post: post}, nil
}

// PostService serves public reads. Posts come back joined with their
// author.
type PostService struct {
	repo posts.Repository
}

func NewPostService(repo posts.Repository) *PostService {
	return &PostService{repo: repo}
}

func (s *PostService) List(ctx context.Context, q models.PostQuery) ([]models.PostWithAuthor, error) {
	return s.repo.List(ctx, q.Normalize())
}

func (s *PostService) Get(ctx context.Context, id string) (*models.PostWithAuthor, error) {
	return s.repo.Get(ctx, id)
}
