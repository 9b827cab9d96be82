package blogservice

import (
	"context"
	"database/sql"
	"time"

	"github.com/blogvoci/blogvoci/internal/common"
)

func NewBlogService(db *sql.DB) *BlogService {
	return &BlogService{m: newBlogModel(db)}
}

// CreateBlog creates a new blog post for the given author. A post created as
// published gets its publication timestamp stamped immediately.
func (s *BlogService) CreateBlog(ctx context.Context, req *CreateBlogRequest) (*Blog, error) {
	v := common.NewValidator()
	validateTitle(v, req.Title)
	validateContent(v, req.Content)
	validateInt(v, req.UserID, "user_id")
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	category := req.Category
	if category == "" {
		category = "General"
	}

	blog := Blog{
		Title:       req.Title,
		Content:     sanitizeMarkdown(req.Content),
		CoverImage:  req.CoverImage,
		Category:    category,
		Tags:        normalizeTags(req.Tags),
		UserID:      req.UserID,
		IsPublished: req.IsPublished,
	}
	blog.ReadingTime = readingTime(blog.Content)

	if blog.IsPublished {
		now := time.Now().UTC()
		blog.PublishedAt = &now
	}

	err := s.m.insert(ctx, &blog)
	if err != nil {
		return nil, err
	}

	return &blog, nil
}

// GetBlog returns a single post and increments its view counter. Unpublished
// posts are visible only to their author or an admin; everyone else gets the
// same not-found as for a nonexistent id.
func (s *BlogService) GetBlog(ctx context.Context, id, viewerID int, viewerAdmin bool) (*Blog, error) {
	v := common.NewValidator()
	validateInt(v, id, "id")
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	blog, err := s.m.getByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !blog.IsPublished && blog.UserID != viewerID && !viewerAdmin {
		return nil, ErrRecordNotFound
	}

	views, err := s.m.incrementViews(ctx, id)
	if err != nil {
		return nil, err
	}
	blog.Views = views

	return blog, nil
}

// GetBlogs returns every published post, newest first.
func (s *BlogService) GetBlogs(ctx context.Context) ([]Blog, error) {
	return s.m.getPublished(ctx)
}

// UpdateBlog applies a field patch to the actor's own post. The publication
// timestamp is stamped on the first transition to published and never moves
// afterwards.
func (s *BlogService) UpdateBlog(ctx context.Context, actorID, id int, patch *UpdateBlogRequest) (*Blog, error) {
	v := common.NewValidator()
	validateInt(v, id, "id")
	validateInt(v, actorID, "user_id")
	if patch.Title != nil {
		validateTitle(v, *patch.Title)
	}
	if patch.Content != nil {
		validateContent(v, *patch.Content)
	}
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	blog, err := s.m.getByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if blog.UserID != actorID {
		return nil, ErrForbidden
	}

	if patch.Title != nil {
		blog.Title = *patch.Title
	}
	if patch.Content != nil {
		blog.Content = sanitizeMarkdown(*patch.Content)
		blog.ReadingTime = readingTime(blog.Content)
	}
	if patch.CoverImage != nil {
		blog.CoverImage = *patch.CoverImage
	}
	if patch.Category != nil {
		blog.Category = *patch.Category
	}
	if patch.Tags != nil {
		blog.Tags = normalizeTags(*patch.Tags)
	}
	if patch.IsPublished != nil {
		blog.IsPublished = *patch.IsPublished
		if blog.IsPublished && blog.PublishedAt == nil {
			now := time.Now().UTC()
			blog.PublishedAt = &now
		}
	}

	err = s.m.update(ctx, blog)
	if err != nil {
		return nil, err
	}

	return blog, nil
}

// DeleteBlog removes the actor's own post.
func (s *BlogService) DeleteBlog(ctx context.Context, actorID, id int) error {
	v := common.NewValidator()
	validateInt(v, id, "id")
	validateInt(v, actorID, "user_id")
	if !v.Valid() {
		return v.ValidationError()
	}

	blog, err := s.m.getByID(ctx, id)
	if err != nil {
		return err
	}

	if blog.UserID != actorID {
		return ErrForbidden
	}

	return s.m.delete(ctx, id)
}

// AdminDeleteBlog removes any post, bypassing ownership.
func (s *BlogService) AdminDeleteBlog(ctx context.Context, id int) error {
	v := common.NewValidator()
	validateInt(v, id, "id")
	if !v.Valid() {
		return v.ValidationError()
	}

	return s.m.delete(ctx, id)
}

// SetFeatured flags or unflags a post for the featured feed.
func (s *BlogService) SetFeatured(ctx context.Context, id int, featured bool) error {
	v := common.NewValidator()
	validateInt(v, id, "id")
	if !v.Valid() {
		return v.ValidationError()
	}

	return s.m.setFeatured(ctx, id, featured)
}

// ToggleLike flips the like relation between the user and the post and
// reports the resulting state together with the post's like total.
func (s *BlogService) ToggleLike(ctx context.Context, userID, blogID int) (bool, int, error) {
	v := common.NewValidator()
	validateInt(v, userID, "user_id")
	validateInt(v, blogID, "blog_id")
	if !v.Valid() {
		return false, 0, v.ValidationError()
	}

	liked, err := s.m.toggleRelation(ctx, "blog_likes", userID, blogID)
	if err != nil {
		return false, 0, err
	}

	total, err := s.m.countLikes(ctx, blogID)
	if err != nil {
		return false, 0, err
	}

	return liked, total, nil
}

// ToggleSave flips the save relation. Saves are single-sided: nothing on the
// blog record mirrors them.
func (s *BlogService) ToggleSave(ctx context.Context, userID, blogID int) (bool, error) {
	v := common.NewValidator()
	validateInt(v, userID, "user_id")
	validateInt(v, blogID, "blog_id")
	if !v.Valid() {
		return false, v.ValidationError()
	}

	return s.m.toggleRelation(ctx, "blog_saves", userID, blogID)
}

// GetEngagement returns the ids of the blogs the user has liked and saved.
func (s *BlogService) GetEngagement(ctx context.Context, userID int) (liked, saved []int, err error) {
	v := common.NewValidator()
	validateInt(v, userID, "user_id")
	if !v.Valid() {
		return nil, nil, v.ValidationError()
	}

	liked, err = s.m.relationBlogIDs(ctx, "blog_likes", userID)
	if err != nil {
		return nil, nil, err
	}

	saved, err = s.m.relationBlogIDs(ctx, "blog_saves", userID)
	if err != nil {
		return nil, nil, err
	}

	return liked, saved, nil
}

// HasLiked reports whether the user currently likes the post.
func (s *BlogService) HasLiked(ctx context.Context, userID, blogID int) (bool, error) {
	return s.m.isMember(ctx, "blog_likes", userID, blogID)
}
