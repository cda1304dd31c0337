package task

import "context"

// Repository abstracts task persistence. Every method is scoped by owner, and
// a task owned by someone else is reported as not found.
type Repository interface {
	List(ctx context.Context, ownerID int64) ([]Task, error)
	Create(ctx context.Context, ownerID int64, title string, description *string) (Task, error)
	Get(ctx context.Context, ownerID, id int64) (Task, bool, error)
	Update(ctx context.Context, ownerID, id int64, changes Changes) (Task, bool, error)
	Delete(ctx context.Context, ownerID, id int64) (bool, error)
}
