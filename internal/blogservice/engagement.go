package blogservice

import (
	"context"
	"database/sql"
	"errors"
)

// toggleRelation flips membership of (userID, blogID) in the given relation
// table inside one transaction, so both the membership and the derived count
// always agree. Returns the resulting membership state.
func (m *BlogModel) toggleRelation(ctx context.Context, table string, userID, blogID int) (bool, error) {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	var exists bool
	err = tx.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM blogs WHERE id = $1)`, blogID).Scan(&exists)
	if err != nil {
		return false, err
	}
	if !exists {
		return false, ErrRecordNotFound
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM `+table+` WHERE user_id = $1 AND blog_id = $2`, userID, blogID)
	if err != nil {
		return false, err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return false, err
	}

	member := false
	if rows == 0 {
		_, err = tx.ExecContext(ctx, `INSERT INTO `+table+` (user_id, blog_id) VALUES ($1, $2)`, userID, blogID)
		if err != nil {
			return false, err
		}
		member = true
	}

	if err := tx.Commit(); err != nil {
		return false, err
	}

	return member, nil
}

func (m *BlogModel) countLikes(ctx context.Context, blogID int) (int, error) {
	var count int
	err := m.db.QueryRowContext(ctx, `SELECT count(*) FROM blog_likes WHERE blog_id = $1`, blogID).Scan(&count)
	return count, err
}

func (m *BlogModel) relationBlogIDs(ctx context.Context, table string, userID int) ([]int, error) {
	rows, err := m.db.QueryContext(ctx, `SELECT blog_id FROM `+table+` WHERE user_id = $1 ORDER BY created_at`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := []int{}
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}

func (m *BlogModel) isMember(ctx context.Context, table string, userID, blogID int) (bool, error) {
	var member bool
	query := `SELECT EXISTS (SELECT 1 FROM ` + table + ` WHERE user_id = $1 AND blog_id = $2)`

	err := m.db.QueryRowContext(ctx, query, userID, blogID).Scan(&member)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return false, err
	}

	return member, nil
}
