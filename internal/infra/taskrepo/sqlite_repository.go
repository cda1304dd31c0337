package taskrepo

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/yanqian/taskhub/internal/domain/task"
	"github.com/yanqian/taskhub/internal/infra/sqlite"
)

// SQLiteRepository persists tasks in a local SQLite file.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new repository over an opened database.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// List returns the owner's tasks ordered by id.
func (r *SQLiteRepository) List(ctx context.Context, ownerID int64) ([]task.Task, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+taskColumns+`
		FROM tasks
		WHERE user_id = ?
		ORDER BY id
	`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	tasks := make([]task.Task, 0)
	for rows.Next() {
		t, err := scanSQLiteTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// Create inserts a new pending task.
func (r *SQLiteRepository) Create(ctx context.Context, ownerID int64, title string, description *string) (task.Task, error) {
	now := timestamp()
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO tasks (title, description, status, user_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		RETURNING `+taskColumns, title, description, string(task.StatusPending), ownerID, now, now)
	return scanSQLiteTask(row)
}

// Get fetches a task owned by ownerID.
func (r *SQLiteRepository) Get(ctx context.Context, ownerID, id int64) (task.Task, bool, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+taskColumns+`
		FROM tasks
		WHERE id = ? AND user_id = ?
	`, id, ownerID)
	return foundSQLite(scanSQLiteTask(row))
}

// Update applies changes to a task owned by ownerID. Nil fields keep their value.
func (r *SQLiteRepository) Update(ctx context.Context, ownerID, id int64, changes task.Changes) (task.Task, bool, error) {
	var status *string
	if changes.Status != nil {
		s := string(*changes.Status)
		status = &s
	}
	row := r.db.QueryRowContext(ctx, `
		UPDATE tasks
		SET title = COALESCE(?, title),
		    description = COALESCE(?, description),
		    status = COALESCE(?, status),
		    updated_at = ?
		WHERE id = ? AND user_id = ?
		RETURNING `+taskColumns, changes.Title, changes.Description, status, timestamp(), id, ownerID)
	return foundSQLite(scanSQLiteTask(row))
}

// Delete removes a task owned by ownerID.
func (r *SQLiteRepository) Delete(ctx context.Context, ownerID, id int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ? AND user_id = ?`, id, ownerID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func timestamp() string {
	return time.Now().UTC().Format(sqlite.TimeLayout)
}

func scanSQLiteTask(row rowScanner) (task.Task, error) {
	var t task.Task
	var description sql.NullString
	var status, created, updated string
	if err := row.Scan(&t.ID, &t.Title, &description, &status, &t.OwnerID, &created, &updated); err != nil {
		return task.Task{}, err
	}
	if description.Valid {
		t.Description = &description.String
	}
	t.Status = task.Status(status)
	var err error
	if t.CreatedAt, err = time.Parse(sqlite.TimeLayout, created); err != nil {
		return task.Task{}, err
	}
	if t.UpdatedAt, err = time.Parse(sqlite.TimeLayout, updated); err != nil {
		return task.Task{}, err
	}
	return t, nil
}

func foundSQLite(t task.Task, err error) (task.Task, bool, error) {
	if errors.Is(err, sql.ErrNoRows) {
		return task.Task{}, false, nil
	}
	if err != nil {
		return task.Task{}, false, err
	}
	return t, true, nil
}

var _ task.Repository = (*SQLiteRepository)(nil)
