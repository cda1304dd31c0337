package taskrepo

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/yanqian/taskhub/internal/domain/task"
)

// MemoryRepository provides an in-memory task store for tests/dev.
type MemoryRepository struct {
	mu    sync.RWMutex
	tasks map[int64]task.Task
	seq   int64
}

// NewMemoryRepository constructs a new in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{tasks: make(map[int64]task.Task)}
}

// List returns the owner's tasks ordered by id.
func (r *MemoryRepository) List(_ context.Context, ownerID int64) ([]task.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]task.Task, 0)
	for _, t := range r.tasks {
		if t.OwnerID == ownerID {
			out = append(out, clone(t))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Create stores a new pending task.
func (r *MemoryRepository) Create(_ context.Context, ownerID int64, title string, description *string) (task.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	now := time.Now().UTC()
	created := task.Task{
		ID:          r.seq,
		Title:       title,
		Description: copyString(description),
		Status:      task.StatusPending,
		OwnerID:     ownerID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	r.tasks[created.ID] = created
	return clone(created), nil
}

// Get fetches a task owned by ownerID.
func (r *MemoryRepository) Get(_ context.Context, ownerID, id int64) (task.Task, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tasks[id]
	if !ok || t.OwnerID != ownerID {
		return task.Task{}, false, nil
	}
	return clone(t), true, nil
}

// Update applies changes to a task owned by ownerID.
func (r *MemoryRepository) Update(_ context.Context, ownerID, id int64, changes task.Changes) (task.Task, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tasks[id]
	if !ok || t.OwnerID != ownerID {
		return task.Task{}, false, nil
	}
	if changes.Title != nil {
		t.Title = *changes.Title
	}
	if changes.Description != nil {
		t.Description = copyString(changes.Description)
	}
	if changes.Status != nil {
		t.Status = *changes.Status
	}
	t.UpdatedAt = time.Now().UTC()
	r.tasks[id] = t
	return clone(t), true, nil
}

// Delete removes a task owned by ownerID.
func (r *MemoryRepository) Delete(_ context.Context, ownerID, id int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tasks[id]
	if !ok || t.OwnerID != ownerID {
		return false, nil
	}
	delete(r.tasks, id)
	return true, nil
}

func clone(t task.Task) task.Task {
	t.Description = copyString(t.Description)
	return t
}

func copyString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

var _ task.Repository = (*MemoryRepository)(nil)
