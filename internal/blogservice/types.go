package blogservice

import (
	"database/sql"
	"time"
)

type Blog struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
	// Content is stored in Markdown format.
	Content     string     `json:"content"`
	CoverImage  string     `json:"cover_image,omitempty"`
	Category    string     `json:"category"`
	Tags        []string   `json:"tags"`
	UserID      int        `json:"user_id"`
	Author      string     `json:"author,omitempty"`
	IsPublished bool       `json:"is_published"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
	Views       int        `json:"views"`
	Likes       int        `json:"likes"`
	ReadingTime int        `json:"reading_time"`
	Featured    bool       `json:"featured"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	Version     int        `json:"-"`
}

type BlogModel struct {
	db *sql.DB
}

type BlogService struct {
	m *BlogModel
}

type CreateBlogRequest struct {
	Title       string   `json:"title"`
	Content     string   `json:"content"`
	CoverImage  string   `json:"cover_image"`
	Category    string   `json:"category"`
	Tags        []string `json:"tags"`
	IsPublished bool     `json:"is_published"`
	UserID      int      `json:"user_id"`
}

// UpdateBlogRequest is a field-level patch: nil fields keep their current
// value, set fields win over concurrent writers (last write wins).
type UpdateBlogRequest struct {
	Title       *string   `json:"title"`
	Content     *string   `json:"content"`
	CoverImage  *string   `json:"cover_image"`
	Category    *string   `json:"category"`
	Tags        *[]string `json:"tags"`
	IsPublished *bool     `json:"is_published"`
}
