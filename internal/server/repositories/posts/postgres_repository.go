package posts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/gopherblog/internal/common"
	"github.com/dmitrijs2005/gopherblog/internal/dbx"
	"github.com/dmitrijs2005/gopherblog/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const (
	postColumns = `id, title, content, category, image, user_id, created_at, updated_at`

	joinedColumns = `p.id, p.title, p.content, p.category, p.image, p.user_id, p.created_at, p.updated_at,
		u.id, u.name, u.email, u.photo, u.role, u.verified, u.created_at, u.updated_at`

	// $1 is the search text; an empty string matches everything.
	searchClause = `(position(lower($1) in lower(title)) > 0 OR position(lower($1) in lower(content)) > 0)`
)

type scanner interface {
	Scan(dest ...any) error
}

func scanPost(s scanner) (*models.Post, error) {
	p := &models.Post{}
	err := s.Scan(&p.ID, &p.Title, &p.Content, &p.Category, &p.Image, &p.UserID, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

func scanJoined(s scanner) (*models.PostWithAuthor, error) {
	p := &models.PostWithAuthor{}
	err := s.Scan(
		&p.ID, &p.Title, &p.Content, &p.Category, &p.Image, &p.UserID, &p.CreatedAt, &p.UpdatedAt,
		&p.Author.ID, &p.Author.Name, &p.Author.Email, &p.Author.Photo, &p.Author.Role, &p.Author.Verified,
		&p.Author.CreatedAt, &p.Author.UpdatedAt,
	)
	return p, err
}

func validIDs(ids ...string) error {
	for _, id := range ids {
		if _, err := uuid.Parse(id); err != nil {
			return common.ErrorInvalidID
		}
	}
	return nil
}

func (r *PostgresRepository) ListByAuthor(ctx context.Context, userID string, q models.PostQuery) ([]models.Post, error) {
	if err := validIDs(userID); err != nil {
		return nil, err
	}

	query := `SELECT ` + postColumns + ` FROM posts
		WHERE ` + searchClause + ` AND user_id = $2
		ORDER BY updated_at DESC
		LIMIT $3 OFFSET $4`

	rows, err := r.db.QueryContext(ctx, query, q.Search, userID, q.Limit, q.Skip())
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]models.Post, 0, q.Limit)
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}

func (r *PostgresRepository) GetByAuthor(ctx context.Context, userID, id string) (*models.Post, error) {
	if err := validIDs(userID, id); err != nil {
		return nil, err
	}

	query := `SELECT ` + postColumns + ` FROM posts WHERE id = $1 AND user_id = $2`

	p, err := scanPost(r.db.QueryRowContext(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return p, nil
}

func (r *PostgresRepository) Create(ctx context.Context, post *models.Post) (*models.Post, error) {
	if err := validIDs(post.UserID); err != nil {
		return nil, err
	}

	query :=
		`INSERT INTO posts (title, content, category, image, user_id, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id`

	err := r.db.QueryRowContext(ctx, query,
		post.Title, post.Content, post.Category, post.Image, post.UserID, post.CreatedAt, post.UpdatedAt,
	).Scan(&post.ID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return post, nil
}

// Update sets the non-nil patch fields in a single statement.
func (r *PostgresRepository) Update(ctx context.Context, userID, id string, patch models.PostPatch, updatedAt time.Time) (*models.Post, error) {
	if err := validIDs(userID, id); err != nil {
		return nil, err
	}

	query :=
		`UPDATE posts SET
			title = COALESCE($3, title),
			content = COALESCE($4, content),
			category = COALESCE($5, category),
			image = COALESCE($6, image),
			updated_at = $7
		 WHERE id = $1 AND user_id = $2
		 RETURNING ` + postColumns

	p, err := scanPost(r.db.QueryRowContext(ctx, query,
		id, userID, patch.Title, patch.Content, patch.Category, patch.Image, updatedAt))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return p, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, userID, id string) error {
	if err := validIDs(userID, id); err != nil {
		return err
	}

	res, err := r.db.ExecContext(ctx, `DELETE FROM posts WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *PostgresRepository) List(ctx context.Context, q models.PostQuery) ([]models.PostWithAuthor, error) {
	query := `SELECT ` + joinedColumns + `
		FROM posts p JOIN users u ON u.id = p.user_id
		WHERE (position(lower($1) in lower(p.title)) > 0 OR position(lower($1) in lower(p.content)) > 0)
		ORDER BY p.updated_at DESC
		LIMIT $2 OFFSET $3`

	rows, err := r.db.QueryContext(ctx, query, q.Search, q.Limit, q.Skip())
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]models.PostWithAuthor, 0, q.Limit)
	for rows.Next() {
		p, err := scanJoined(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}

func (r *PostgresRepository) Get(ctx context.Context, id string) (*models.PostWithAuthor, error) {
	if err := validIDs(id); err != nil {
		return nil, err
	}

	query := `SELECT ` + joinedColumns + `
		FROM posts p JOIN users u ON u.id = p.user_id
		WHERE p.id = $1`

	p, err := scanJoined(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return p, nil
}
