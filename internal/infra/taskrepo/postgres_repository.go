package taskrepo

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yanqian/taskhub/internal/domain/task"
)

const taskColumns = "id, title, description, status, user_id, created_at, updated_at"

// PostgresRepository persists tasks in Postgres.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// List returns the owner's tasks ordered by id.
func (r *PostgresRepository) List(ctx context.Context, ownerID int64) ([]task.Task, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+taskColumns+`
		FROM tasks
		WHERE user_id = $1
		ORDER BY id
	`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	tasks := make([]task.Task, 0)
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// Create inserts a new pending task.
func (r *PostgresRepository) Create(ctx context.Context, ownerID int64, title string, description *string) (task.Task, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO tasks (title, description, status, user_id)
		VALUES ($1, $2, $3, $4)
		RETURNING `+taskColumns, title, description, string(task.StatusPending), ownerID)
	return scanTask(row)
}

// Get fetches a task owned by ownerID.
func (r *PostgresRepository) Get(ctx context.Context, ownerID, id int64) (task.Task, bool, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+taskColumns+`
		FROM tasks
		WHERE id = $1 AND user_id = $2
	`, id, ownerID)
	return found(scanTask(row))
}

// Update applies changes to a task owned by ownerID. Nil fields keep their value.
func (r *PostgresRepository) Update(ctx context.Context, ownerID, id int64, changes task.Changes) (task.Task, bool, error) {
	var status *string
	if changes.Status != nil {
		s := string(*changes.Status)
		status = &s
	}
	row := r.pool.QueryRow(ctx, `
		UPDATE tasks
		SET title = COALESCE($3, title),
		    description = COALESCE($4, description),
		    status = COALESCE($5, status),
		    updated_at = NOW()
		WHERE id = $1 AND user_id = $2
		RETURNING `+taskColumns, id, ownerID, changes.Title, changes.Description, status)
	return found(scanTask(row))
}

// Delete removes a task owned by ownerID.
func (r *PostgresRepository) Delete(ctx context.Context, ownerID, id int64) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM tasks WHERE id = $1 AND user_id = $2`, id, ownerID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (task.Task, error) {
	var t task.Task
	var status string
	var created, updated time.Time
	if err := row.Scan(&t.ID, &t.Title, &t.Description, &status, &t.OwnerID, &created, &updated); err != nil {
		return task.Task{}, err
	}
	t.Status = task.Status(status)
	t.CreatedAt = created.UTC()
	t.UpdatedAt = updated.UTC()
	return t, nil
}

func found(t task.Task, err error) (task.Task, bool, error) {
	if errors.Is(err, pgx.ErrNoRows) {
		return task.Task{}, false, nil
	}
	if err != nil {
		return task.Task{}, false, err
	}
	return t, true, nil
}

var _ task.Repository = (*PostgresRepository)(nil)
