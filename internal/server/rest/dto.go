package rest

import (
	"time"

	"github.com/dmitrijs2005/gopherblog/internal/server/models"
)

// postTimeLayout renders post timestamps as DD-MM-YYYY HH:MM:SS.
const postTimeLayout = "02-01-2006 15:04:05"

type errorResponse struct {
	Detail string `json:"detail"`
}

type statusResponse struct {
	Status string `json:"status"`
}

type registerRequest struct {
	Name            string `json:"name" validate:"required"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=8"`
	PasswordConfirm string `json:"password_confirm" validate:"required"`
	LegacyConfirm   string `json:"passwordConfirm" validate:"-"`
	Photo           string `json:"photo"`
}

// confirmation falls back to the camelCase passwordConfirm field that older
// clients send when password_confirm is absent.
func (r *registerRequest) confirmation() {
	if r.PasswordConfirm == "" {
		r.PasswordConfirm = r.LegacyConfirm
	}
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	Status      string `json:"status"`
	AccessToken string `json:"access_token"`
}

type refreshResponse struct {
	Message     string `json:"message"`
	AccessToken string `json:"access_token"`
}

type userResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Photo     string    `json:"photo"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func newUserResponse(u *models.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Photo:     u.Photo,
		Role:      u.Role,
		CreatedAt: u.CreatedAt.UTC(),
		UpdatedAt: u.UpdatedAt.UTC(),
	}
}

type userEnvelope struct {
	Status string       `json:"status"`
	User   userResponse `json:"user"`
}

type createPostRequest struct {
	Title    string `json:"title" validate:"required"`
	Content  string `json:"content" validate:"required"`
	Category string `json:"category" validate:"required"`
	Image    string `json:"image"`
}

type updatePostRequest struct {
	Title    *string `json:"title" validate:"omitempty,min=1"`
	Content  *string `json:"content" validate:"omitempty,min=1"`
	Category *string `json:"category" validate:"omitempty,min=1"`
	Image    *string `json:"image"`
}

func (r updatePostRequest) patch() models.PostPatch {
	return models.PostPatch{Title: r.Title, Content: r.Content, Category: r.Category, Image: r.Image}
}

type postResponse struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Content   string `json:"content"`
	Category  string `json:"category"`
	Image     string `json:"image"`
	User      string `json:"user"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

func newPostResponse(p *models.Post) postResponse {
	return postResponse{
		ID:        p.ID,
		Title:     p.Title,
		Content:   p.Content,
		Category:  p.Category,
		Image:     p.Image,
		User:      p.UserID,
		CreatedAt: p.CreatedAt.UTC().Format(postTimeLayout),
		UpdatedAt: p.UpdatedAt.UTC().Format(postTimeLayout),
	}
}

type postListResponse struct {
	Status  string         `json:"status"`
	Results int            `json:"results"`
	Posts   []postResponse `json:"posts"`
}

// publicPostResponse embeds the author instead of the author id.
type publicPostResponse struct {
	ID        string       `json:"id"`
	Title     string       `json:"title"`
	Content   string       `json:"content"`
	Category  string       `json:"category"`
	Image     string       `json:"image"`
	User      userResponse `json:"user"`
	CreatedAt string       `json:"created_at"`
	UpdatedAt string       `json:"updated_at"`
}

func newPublicPostResponse(p *models.PostWithAuthor) publicPostResponse {
	return publicPostResponse{
		ID:        p.ID,
		Title:     p.Title,
		Content:   p.Content,
		Category:  p.Category,
		Image:     p.Image,
		User:      newUserResponse(&p.Author),
		CreatedAt: p.CreatedAt.UTC().Format(postTimeLayout),
		UpdatedAt: p.UpdatedAt.UTC().Format(postTimeLayout),
	}
}

type publicPostListResponse struct {
	Status  string               `json:"status"`
	Results int                  `json:"results"`
	Posts   []publicPostResponse `json:"posts"`
}

type imageUploadResponse struct {
	UploadURL string `json:"upload_url"`
	Image     string `json:"image"`
}
