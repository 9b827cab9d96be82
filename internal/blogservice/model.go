package blogservice

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
)

var (
	ErrRecordNotFound = errors.New("record not found")
	ErrForbidden      = errors.New("forbidden")
	ErrUserForeignKey = errors.New("user_id does not exist")
)

func newBlogModel(db *sql.DB) *BlogModel {
	return &BlogModel{db: db}
}

// ForeignKeyError is a helper function to check if the error is a foreign key constraint error.
func ForeignKeyError(err error, name string) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		if pqErr.Code == "23503" && pqErr.Constraint == name {
			return true
		}
	}

	return false
}

func (m *BlogModel) insert(ctx context.Context, blog *Blog) error {
	query := `
		INSERT INTO blogs (title, content, cover_image, category, tags, user_id, is_published, published_at, reading_time)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, views, featured, created_at, updated_at, version`

	args := []any{
		blog.Title,
		blog.Content,
		blog.CoverImage,
		blog.Category,
		pq.Array(blog.Tags),
		blog.UserID,
		blog.IsPublished,
		blog.PublishedAt,
		blog.ReadingTime,
	}

	err := m.db.QueryRowContext(ctx, query, args...).Scan(&blog.ID, &blog.Views, &blog.Featured, &blog.CreatedAt, &blog.UpdatedAt, &blog.Version)
	if err != nil {
		switch {
		case ForeignKeyError(err, "blogs_user_id_fkey"):
			return ErrUserForeignKey
		default:
			return err
		}
	}

	return nil
}

// getByID joins the author name and the current like count.
func (m *BlogModel) getByID(ctx context.Context, id int) (*Blog, error) {
	query := `
		SELECT b.id, b.title, b.content, b.cover_image, b.category, b.tags, b.user_id, u.name,
			b.is_published, b.published_at, b.views, b.reading_time, b.featured,
			b.created_at, b.updated_at, b.version,
			(SELECT count(*) FROM blog_likes l WHERE l.blog_id = b.id) AS likes
		FROM blogs b
		JOIN users u ON b.user_id = u.id
		WHERE b.id = $1`

	var blog Blog

	err := m.db.QueryRowContext(ctx, query, id).Scan(
		&blog.ID, &blog.Title, &blog.Content, &blog.CoverImage, &blog.Category, pq.Array(&blog.Tags),
		&blog.UserID, &blog.Author, &blog.IsPublished, &blog.PublishedAt, &blog.Views,
		&blog.ReadingTime, &blog.Featured, &blog.CreatedAt, &blog.UpdatedAt, &blog.Version, &blog.Likes)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}

	return &blog, nil
}

// incrementViews bumps the monotonic view counter and returns the new value.
func (m *BlogModel) incrementViews(ctx context.Context, id int) (int, error) {
	query := `
		UPDATE blogs
		SET views = views + 1
		WHERE id = $1
		RETURNING views`

	var views int

	err := m.db.QueryRowContext(ctx, query, id).Scan(&views)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return 0, ErrRecordNotFound
		default:
			return 0, err
		}
	}

	return views, nil
}

func (m *BlogModel) update(ctx context.Context, blog *Blog) error {
	query := `
		UPDATE blogs
		SET title = $1, content = $2, cover_image = $3, category = $4, tags = $5,
			is_published = $6, published_at = $7, reading_time = $8,
			updated_at = now(), version = version + 1
		WHERE id = $9 AND version = $10
		RETURNING updated_at, version`

	args := []any{
		blog.Title,
		blog.Content,
		blog.CoverImage,
		blog.Category,
		pq.Array(blog.Tags),
		blog.IsPublished,
		blog.PublishedAt,
		blog.ReadingTime,
		blog.ID,
		blog.Version,
	}

	err := m.db.QueryRowContext(ctx, query, args...).Scan(&blog.UpdatedAt, &blog.Version)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return ErrRecordNotFound
		default:
			return err
		}
	}

	return nil
}

func (m *BlogModel) delete(ctx context.Context, id int) error {
	query := `
		DELETE FROM blogs
		WHERE id = $1`

	res, err := m.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}

	if rows != 1 {
		switch {
		case rows == 0:
			return ErrRecordNotFound
		default:
			return fmt.Errorf("expected 1 row to be affected, got %d", rows)
		}
	}

	return nil
}

func (m *BlogModel) setFeatured(ctx context.Context, id int, featured bool) error {
	query := `
		UPDATE blogs
		SET featured = $1, updated_at = now(), version = version + 1
		WHERE id = $2`

	res, err := m.db.ExecContext(ctx, query, featured, id)
	if err != nil {
		return err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return ErrRecordNotFound
	}

	return nil
}

// getPublished returns all published blogs, newest first. Pagination and
// filtering happen client-side over this result.
func (m *BlogModel) getPublished(ctx context.Context) ([]Blog, error) {
	query := `
		SELECT b.id, b.title, b.content, b.cover_image, b.category, b.tags, b.user_id, u.name,
			b.is_published, b.published_at, b.views, b.reading_time, b.featured,
			b.created_at, b.updated_at, b.version,
			(SELECT count(*) FROM blog_likes l WHERE l.blog_id = b.id) AS likes
		FROM blogs b
		JOIN users u ON b.user_id = u.id
		WHERE b.is_published = true
		ORDER BY b.created_at DESC`

	rows, err := m.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var blogs []Blog
	for rows.Next() {
		var blog Blog
		err := rows.Scan(
			&blog.ID, &blog.Title, &blog.Content, &blog.CoverImage, &blog.Category, pq.Array(&blog.Tags),
			&blog.UserID, &blog.Author, &blog.IsPublished, &blog.PublishedAt, &blog.Views,
			&blog.ReadingTime, &blog.Featured, &blog.CreatedAt, &blog.UpdatedAt, &blog.Version, &blog.Likes)
		if err != nil {
			return nil, err
		}
		blogs = append(blogs, blog)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return blogs, nil
}
