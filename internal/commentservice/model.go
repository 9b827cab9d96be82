package commentservice

import (
	"context"
	"database/sql"
	"errors"
)

var (
	ErrRecordNotFound = errors.New("record not found")
	ErrForbidden      = errors.New("forbidden")
)

func newCommentModel(db *sql.DB) *CommentModel {
	return &CommentModel{db: db}
}

// blogPublished reports whether the blog exists and is published.
func (m *CommentModel) blogPublished(ctx context.Context, blogID int) (bool, error) {
	var published bool

	err := m.db.QueryRowContext(ctx, `SELECT is_published FROM blogs WHERE id = $1`, blogID).Scan(&published)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return false, nil
		default:
			return false, err
		}
	}

	return published, nil
}

func (m *CommentModel) insert(ctx context.Context, c *Comment) error {
	query := `
		INSERT INTO comments (blog_id, user_id, parent_id, content)
		VALUES ($1, $2, $3, $4)
		RETURNING id, edited, deleted, created_at, updated_at, version`

	err := m.db.QueryRowContext(ctx, query, c.BlogID, c.UserID, c.ParentID, c.Content).Scan(&c.ID, &c.Edited, &c.Deleted, &c.CreatedAt, &c.UpdatedAt, &c.Version)
	if err != nil {
		return err
	}

	return nil
}

func (m *CommentModel) getByID(ctx context.Context, id int) (*Comment, error) {
	query := `
		SELECT c.id, c.blog_id, c.user_id, u.name, c.parent_id, c.content, c.edited, c.deleted, c.created_at, c.updated_at, c.version
		FROM comments c
		JOIN users u ON c.user_id = u.id
		WHERE c.id = $1`

	var c Comment

	err := m.db.QueryRowContext(ctx, query, id).Scan(&c.ID, &c.BlogID, &c.UserID, &c.Author, &c.ParentID, &c.Content, &c.Edited, &c.Deleted, &c.CreatedAt, &c.UpdatedAt, &c.Version)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}

	return &c, nil
}

// getByBlog returns the non-deleted comments of a blog, oldest first, so
// clients can rebuild the reply tree from the parent references.
func (m *CommentModel) getByBlog(ctx context.Context, blogID int) ([]Comment, error) {
	query := `
		SELECT c.id, c.blog_id, c.user_id, u.name, c.parent_id, c.content, c.edited, c.deleted, c.created_at, c.updated_at, c.version
		FROM comments c
		JOIN users u ON c.user_id = u.id
		WHERE c.blog_id = $1 AND c.deleted = false
		ORDER BY c.created_at ASC`

	rows, err := m.db.QueryContext(ctx, query, blogID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var comments []Comment
	for rows.Next() {
		var c Comment
		err := rows.Scan(&c.ID, &c.BlogID, &c.UserID, &c.Author, &c.ParentID, &c.Content, &c.Edited, &c.Deleted, &c.CreatedAt, &c.UpdatedAt, &c.Version)
		if err != nil {
			return nil, err
		}
		comments = append(comments, c)
	}

	return comments, rows.Err()
}

func (m *CommentModel) updateContent(ctx context.Context, c *Comment) error {
	query := `
		UPDATE comments
		SET content = $1, edited = true, updated_at = now(), version = version + 1
		WHERE id = $2 AND deleted = false
		RETURNING edited, updated_at, version`

	err := m.db.QueryRowContext(ctx, query, c.Content, c.ID).Scan(&c.Edited, &c.UpdatedAt, &c.Version)
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

// softDelete marks the comment deleted and overwrites its content with the
// placeholder. The terminal state: nothing un-deletes a comment.
func (m *CommentModel) softDelete(ctx context.Context, id int, placeholder string) error {
	query := `
		UPDATE comments
		SET deleted = true, content = $1, updated_at = now(), version = version + 1
		WHERE id = $2`

	res, err := m.db.ExecContext(ctx, query, placeholder, id)
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
