package blogservice

import (
	"context"
	"crypto/rand"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/blogvoci/blogvoci/internal/common"
)

// setupTestUser is a helper function to create a test user in the database.
func setupTestUser(db *sql.DB, name, email string) (*int, error) {
	randomBytes := make([]byte, 16)
	_, err := rand.Read(randomBytes)
	if err != nil {
		return nil, err
	}

	query := `
		INSERT INTO users (name, email, password)
		VALUES ($1, $2, $3)
		RETURNING id`

	var id int
	err = db.QueryRow(query, name, email, randomBytes).Scan(&id)
	if err != nil {
		return nil, err
	}

	return &id, nil
}

func setupTestEnvironment(t *testing.T) (*BlogService, *sql.DB, func() error, *int, error) {
	db := common.TestDB("file://../../migrations", t)

	id, err := setupTestUser(db, "Test User", "testuser@example.com")
	if err != nil {
		return nil, nil, nil, nil, err
	}

	cleanup := func() error {
		_, err := db.Exec("DELETE FROM blogs")
		return err
	}

	return NewBlogService(db), db, cleanup, id, nil
}

func createTestBlog(db *sql.DB, userID int, published bool) (*int, error) {
	query := `
		INSERT INTO blogs (title, content, user_id, is_published, published_at)
		VALUES ($1, $2, $3, $4, CASE WHEN $4 THEN now() END)
		RETURNING id`

	var id int
	err := db.QueryRow(query, "Test Blog", "This is a test blog.", userID, published).Scan(&id)
	if err != nil {
		return nil, err
	}

	return &id, nil
}

func TestCreateBlog(t *testing.T) {
	s, db, cleanup, userID, err := setupTestEnvironment(t)
	assert.NoError(t, err)

	testCases := []struct {
		name        string
		req         *CreateBlogRequest
		expectedErr error
		check       func(t *testing.T, blog *Blog)
	}{
		{
			name: "valid draft",
			req: &CreateBlogRequest{
				Title:   "Test Blog",
				Content: "This is a test blog.",
				UserID:  *userID,
			},
			check: func(t *testing.T, blog *Blog) {
				assert.NotZero(t, blog.ID)
				assert.Equal(t, "General", blog.Category)
				assert.False(t, blog.IsPublished)
				assert.Nil(t, blog.PublishedAt)
				assert.Equal(t, 1, blog.ReadingTime)
			},
		},
		{
			name: "published post gets a publication timestamp",
			req: &CreateBlogRequest{
				Title:       "Test Blog",
				Content:     "This is a test blog.",
				UserID:      *userID,
				IsPublished: true,
			},
			check: func(t *testing.T, blog *Blog) {
				assert.True(t, blog.IsPublished)
				assert.NotNil(t, blog.PublishedAt)
			},
		},
		{
			name: "tags are normalized",
			req: &CreateBlogRequest{
				Title:   "Test Blog",
				Content: "This is a test blog.",
				UserID:  *userID,
				Tags:    []string{"Go", " WebDev ", ""},
			},
			check: func(t *testing.T, blog *Blog) {
				assert.Equal(t, []string{"go", "webdev"}, blog.Tags)
			},
		},
		{
			name: "empty title",
			req: &CreateBlogRequest{
				Content: "This is a test blog.",
				UserID:  *userID,
			},
			expectedErr: common.ValidationError{Errors: map[string]string{"title": "must be provided"}},
		},
		{
			name: "empty content",
			req: &CreateBlogRequest{
				Title:  "Test Blog",
				UserID: *userID,
			},
			expectedErr: common.ValidationError{Errors: map[string]string{"content": "must be provided"}},
		},
		{
			name: "invalid user ID",
			req: &CreateBlogRequest{
				Title:   "Test Blog",
				Content: "This is a test blog.",
				UserID:  999,
			},
			expectedErr: ErrUserForeignKey,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctx := context.Background()

			blog, err := s.CreateBlog(ctx, tc.req)
			assert.Equal(t, tc.expectedErr, err)

			if err == nil {
				assert.NotNil(t, blog)
				tc.check(t, blog)

				var count int
				err := db.QueryRow("SELECT COUNT(*) FROM blogs").Scan(&count)
				assert.NoError(t, err)
				assert.Equal(t, 1, count)
			}

			t.Cleanup(func() {
				err := cleanup()
				assert.NoError(t, err)
			})
		})
	}
}

func TestGetBlog(t *testing.T) {
	s, db, cleanup, userID, err := setupTestEnvironment(t)
	assert.NoError(t, err)

	publishedID, err := createTestBlog(db, *userID, true)
	assert.NoError(t, err)

	draftID, err := createTestBlog(db, *userID, false)
	assert.NoError(t, err)

	ctx := context.Background()

	t.Run("published blog is visible to anonymous viewers", func(t *testing.T) {
		blog, err := s.GetBlog(ctx, *publishedID, 0, false)
		assert.NoError(t, err)
		assert.Equal(t, "Test User", blog.Author)
		assert.Equal(t, 1, blog.Views)
	})

	t.Run("views increment on every fetch", func(t *testing.T) {
		blog, err := s.GetBlog(ctx, *publishedID, 0, false)
		assert.NoError(t, err)
		assert.Equal(t, 2, blog.Views)
	})

	t.Run("draft is visible to its author", func(t *testing.T) {
		blog, err := s.GetBlog(ctx, *draftID, *userID, false)
		assert.NoError(t, err)
		assert.False(t, blog.IsPublished)
	})

	t.Run("draft is visible to an admin", func(t *testing.T) {
		_, err := s.GetBlog(ctx, *draftID, 0, true)
		assert.NoError(t, err)
	})

	t.Run("draft reads as missing to everyone else", func(t *testing.T) {
		_, err := s.GetBlog(ctx, *draftID, 999, false)
		assert.ErrorIs(t, err, ErrRecordNotFound)
	})

	t.Run("unknown id", func(t *testing.T) {
		_, err := s.GetBlog(ctx, 999, 0, false)
		assert.ErrorIs(t, err, ErrRecordNotFound)
	})

	t.Cleanup(func() {
		err := cleanup()
		assert.NoError(t, err)
	})
}

func TestGetBlogs(t *testing.T) {
	s, db, cleanup, userID, err := setupTestEnvironment(t)
	assert.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err := createTestBlog(db, *userID, true)
		assert.NoError(t, err)
	}

	_, err = createTestBlog(db, *userID, false)
	assert.NoError(t, err)

	ctx := context.Background()

	blogs, err := s.GetBlogs(ctx)
	assert.NoError(t, err)
	assert.Len(t, blogs, 3)

	for _, blog := range blogs {
		assert.True(t, blog.IsPublished)
		assert.Equal(t, "Test User", blog.Author)
	}

	t.Cleanup(func() {
		err := cleanup()
		assert.NoError(t, err)
	})
}

func TestUpdateBlog(t *testing.T) {
	s, db, cleanup, userID, err := setupTestEnvironment(t)
	assert.NoError(t, err)

	otherID, err := setupTestUser(db, "Other User", "otheruser@example.com")
	assert.NoError(t, err)

	ctx := context.Background()

	t.Run("owner can update", func(t *testing.T) {
		blogID, err := createTestBlog(db, *userID, false)
		assert.NoError(t, err)

		title := "Updated Blog"
		blog, err := s.UpdateBlog(ctx, *userID, *blogID, &UpdateBlogRequest{Title: &title})
		assert.NoError(t, err)
		assert.Equal(t, "Updated Blog", blog.Title)
	})

	t.Run("publication timestamp is stamped once", func(t *testing.T) {
		blogID, err := createTestBlog(db, *userID, false)
		assert.NoError(t, err)

		published := true
		_, err = s.UpdateBlog(ctx, *userID, *blogID, &UpdateBlogRequest{IsPublished: &published})
		assert.NoError(t, err)

		var first time.Time
		err = db.QueryRow("SELECT published_at FROM blogs WHERE id = $1", *blogID).Scan(&first)
		assert.NoError(t, err)

		unpublished := false
		_, err = s.UpdateBlog(ctx, *userID, *blogID, &UpdateBlogRequest{IsPublished: &unpublished})
		assert.NoError(t, err)

		_, err = s.UpdateBlog(ctx, *userID, *blogID, &UpdateBlogRequest{IsPublished: &published})
		assert.NoError(t, err)

		var second time.Time
		err = db.QueryRow("SELECT published_at FROM blogs WHERE id = $1", *blogID).Scan(&second)
		assert.NoError(t, err)
		assert.Equal(t, first, second)
	})

	t.Run("reading time follows the content", func(t *testing.T) {
		blogID, err := createTestBlog(db, *userID, false)
		assert.NoError(t, err)

		longContent := ""
		for i := 0; i < 450; i++ {
			longContent += "word "
		}

		blog, err := s.UpdateBlog(ctx, *userID, *blogID, &UpdateBlogRequest{Content: &longContent})
		assert.NoError(t, err)
		assert.Equal(t, 3, blog.ReadingTime)
	})

	t.Run("non-owner is rejected", func(t *testing.T) {
		blogID, err := createTestBlog(db, *userID, false)
		assert.NoError(t, err)

		title := "Hijacked"
		_, err = s.UpdateBlog(ctx, *otherID, *blogID, &UpdateBlogRequest{Title: &title})
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("unknown id", func(t *testing.T) {
		title := "Missing"
		_, err := s.UpdateBlog(ctx, *userID, 999, &UpdateBlogRequest{Title: &title})
		assert.ErrorIs(t, err, ErrRecordNotFound)
	})

	t.Cleanup(func() {
		err := cleanup()
		assert.NoError(t, err)
	})
}

func TestDeleteBlog(t *testing.T) {
	s, db, cleanup, userID, err := setupTestEnvironment(t)
	assert.NoError(t, err)

	otherID, err := setupTestUser(db, "Other User", "otheruser@example.com")
	assert.NoError(t, err)

	ctx := context.Background()

	t.Run("owner can delete", func(t *testing.T) {
		blogID, err := createTestBlog(db, *userID, true)
		assert.NoError(t, err)

		err = s.DeleteBlog(ctx, *userID, *blogID)
		assert.NoError(t, err)

		var count int
		err = db.QueryRow("SELECT COUNT(*) FROM blogs").Scan(&count)
		assert.NoError(t, err)
		assert.Equal(t, 0, count)
	})

	t.Run("non-owner is rejected", func(t *testing.T) {
		blogID, err := createTestBlog(db, *userID, true)
		assert.NoError(t, err)

		err = s.DeleteBlog(ctx, *otherID, *blogID)
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("admin delete bypasses ownership", func(t *testing.T) {
		blogID, err := createTestBlog(db, *userID, true)
		assert.NoError(t, err)

		err = s.AdminDeleteBlog(ctx, *blogID)
		assert.NoError(t, err)
	})

	t.Run("unknown id", func(t *testing.T) {
		err := s.DeleteBlog(ctx, *userID, 999)
		assert.ErrorIs(t, err, ErrRecordNotFound)
	})

	t.Cleanup(func() {
		err := cleanup()
		assert.NoError(t, err)
	})
}

func TestSetFeatured(t *testing.T) {
	s, db, cleanup, userID, err := setupTestEnvironment(t)
	assert.NoError(t, err)

	blogID, err := createTestBlog(db, *userID, true)
	assert.NoError(t, err)

	ctx := context.Background()

	err = s.SetFeatured(ctx, *blogID, true)
	assert.NoError(t, err)

	var featured bool
	err = db.QueryRow("SELECT featured FROM blogs WHERE id = $1", *blogID).Scan(&featured)
	assert.NoError(t, err)
	assert.True(t, featured)

	err = s.SetFeatured(ctx, 999, true)
	assert.ErrorIs(t, err, ErrRecordNotFound)

	t.Cleanup(func() {
		err := cleanup()
		assert.NoError(t, err)
	})
}

func TestToggleLike(t *testing.T) {
	s, db, cleanup, userID, err := setupTestEnvironment(t)
	assert.NoError(t, err)

	blogID, err := createTestBlog(db, *userID, true)
	assert.NoError(t, err)

	ctx := context.Background()

	liked, total, err := s.ToggleLike(ctx, *userID, *blogID)
	assert.NoError(t, err)
	assert.True(t, liked)
	assert.Equal(t, 1, total)

	hasLiked, err := s.HasLiked(ctx, *userID, *blogID)
	assert.NoError(t, err)
	assert.True(t, hasLiked)

	liked, total, err = s.ToggleLike(ctx, *userID, *blogID)
	assert.NoError(t, err)
	assert.False(t, liked)
	assert.Equal(t, 0, total)

	_, _, err = s.ToggleLike(ctx, *userID, 999)
	assert.ErrorIs(t, err, ErrRecordNotFound)

	t.Cleanup(func() {
		err := cleanup()
		assert.NoError(t, err)
	})
}

func TestToggleSaveAndEngagement(t *testing.T) {
	s, db, cleanup, userID, err := setupTestEnvironment(t)
	assert.NoError(t, err)

	blogID, err := createTestBlog(db, *userID, true)
	assert.NoError(t, err)

	ctx := context.Background()

	saved, err := s.ToggleSave(ctx, *userID, *blogID)
	assert.NoError(t, err)
	assert.True(t, saved)

	_, _, err = s.ToggleLike(ctx, *userID, *blogID)
	assert.NoError(t, err)

	liked, savedIDs, err := s.GetEngagement(ctx, *userID)
	assert.NoError(t, err)
	assert.Equal(t, []int{*blogID}, liked)
	assert.Equal(t, []int{*blogID}, savedIDs)

	saved, err = s.ToggleSave(ctx, *userID, *blogID)
	assert.NoError(t, err)
	assert.False(t, saved)

	liked, savedIDs, err = s.GetEngagement(ctx, *userID)
	assert.NoError(t, err)
	assert.Equal(t, []int{*blogID}, liked)
	assert.Empty(t, savedIDs)

	t.Cleanup(func() {
		err := cleanup()
		assert.NoError(t, err)
	})
}
