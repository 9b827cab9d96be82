package commentservice

import (
	"database/sql"
	"time"
)

// Placeholder text written over soft-deleted comments. The row itself stays so
// replies keep a valid parent to hang off.
const (
	DeletedPlaceholder      = "This comment has been deleted"
	AdminDeletedPlaceholder = "This comment was removed by admin"
)

type Comment struct {
	ID        int       `json:"id"`
	BlogID    int       `json:"blog_id"`
	UserID    int       `json:"user_id"`
	Author    string    `json:"author,omitempty"`
	ParentID  *int      `json:"parent_id,omitempty"`
	Content   string    `json:"content"`
	Edited    bool      `json:"edited"`
	Deleted   bool      `json:"deleted"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Version   int       `json:"-"`
}

type CommentModel struct {
	db *sql.DB
}

type CommentService struct {
	m *CommentModel

	// parentCheck rejects replies whose parent belongs to a different blog.
	// Off by default: existing data may contain cross-blog reply chains.
	parentCheck bool
}
