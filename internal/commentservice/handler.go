package commentservice

import (
	"context"
	"database/sql"

	"github.com/blogvoci/blogvoci/internal/common"
)

func NewCommentService(db *sql.DB, parentCheck bool) *CommentService {
	return &CommentService{m: newCommentModel(db), parentCheck: parentCheck}
}

// AddComment creates a top-level comment or a reply on a published blog.
func (s *CommentService) AddComment(ctx context.Context, userID, blogID int, content string, parentID *int) (*Comment, error) {
	v := common.NewValidator()
	validateContent(v, content)
	validateInt(v, userID, "user_id")
	validateInt(v, blogID, "blog_id")
	if parentID != nil {
		validateInt(v, *parentID, "parent_id")
	}
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	published, err := s.m.blogPublished(ctx, blogID)
	if err != nil {
		return nil, err
	}
	if !published {
		return nil, ErrRecordNotFound
	}

	if s.parentCheck && parentID != nil {
		parent, err := s.m.getByID(ctx, *parentID)
		if err != nil {
			return nil, err
		}
		if parent.BlogID != blogID {
			v.AddError("parent_id", "must reference a comment on the same blog")
			return nil, v.ValidationError()
		}
	}

	c := Comment{
		BlogID:   blogID,
		UserID:   userID,
		ParentID: parentID,
		Content:  content,
	}

	err = s.m.insert(ctx, &c)
	if err != nil {
		return nil, err
	}

	return &c, nil
}

// ListComments returns the blog's visible comments, oldest first.
func (s *CommentService) ListComments(ctx context.Context, blogID int) ([]Comment, error) {
	v := common.NewValidator()
	validateInt(v, blogID, "blog_id")
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	return s.m.getByBlog(ctx, blogID)
}

// EditComment replaces the content of the actor's own comment and marks it
// edited. Soft-deleted comments are not editable and read as missing.
func (s *CommentService) EditComment(ctx context.Context, actorID, id int, content string) (*Comment, error) {
	v := common.NewValidator()
	validateContent(v, content)
	validateInt(v, id, "id")
	validateInt(v, actorID, "user_id")
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	c, err := s.m.getByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.Deleted {
		return nil, ErrRecordNotFound
	}

	if c.UserID != actorID {
		return nil, ErrForbidden
	}

	c.Content = content

	err = s.m.updateContent(ctx, c)
	if err != nil {
		return nil, err
	}

	return c, nil
}

// DeleteComment soft-deletes the actor's own comment.
func (s *CommentService) DeleteComment(ctx context.Context, actorID, id int) error {
	v := common.NewValidator()
	validateInt(v, id, "id")
	validateInt(v, actorID, "user_id")
	if !v.Valid() {
		return v.ValidationError()
	}

	c, err := s.m.getByID(ctx, id)
	if err != nil {
		return err
	}
	if c.Deleted {
		return ErrRecordNotFound
	}

	if c.UserID != actorID {
		return ErrForbidden
	}

	return s.m.softDelete(ctx, id, DeletedPlaceholder)
}

// AdminDeleteComment soft-deletes any comment with the admin placeholder,
// bypassing ownership. It applies even to comments already soft-deleted by
// their author.
func (s *CommentService) AdminDeleteComment(ctx context.Context, id int) error {
	v := common.NewValidator()
	validateInt(v, id, "id")
	if !v.Valid() {
		return v.ValidationError()
	}

	if _, err := s.m.getByID(ctx, id); err != nil {
		return err
	}

	return s.m.softDelete(ctx, id, AdminDeletedPlaceholder)
}
