package task

import (
	"context"
	"log/slog"
	"strings"
	"unicode/utf8"

	apperrors "github.com/yanqian/taskhub/pkg/errors"
)

const maxTitleLength = 255

// Service exposes task workflows for a single authenticated owner.
type Service interface {
	List(ctx context.Context, ownerID int64) ([]Task, error)
	Create(ctx context.Context, ownerID int64, req CreateRequest) (Task, error)
	Get(ctx context.Context, ownerID, id int64) (Task, error)
	Update(ctx context.Context, ownerID, id int64, req UpdateRequest) (Task, error)
	Delete(ctx context.Context, ownerID, id int64) error
}

type service struct {
	repo   Repository
	logger *slog.Logger
}

// NewService constructs a Service instance.
func NewService(repo Repository, logger *slog.Logger) Service {
	return &service{
		repo:   repo,
		logger: logger.With("component", "task.service"),
	}
}

func (s *service) List(ctx context.Context, ownerID int64) ([]Task, error) {
	tasks, err := s.repo.List(ctx, ownerID)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeUpstream, "failed to list tasks", err)
	}
	if tasks == nil {
		tasks = []Task{}
	}
	return tasks, nil
}

func (s *service) Create(ctx context.Context, ownerID int64, req CreateRequest) (Task, error) {
	title := strings.TrimSpace(req.Title)
	fields := make(map[string][]string)
	if title == "" {
		fields["title"] = []string{"O campo título é obrigatório."}
	} else if msg, ok := checkTitleLength(title); !ok {
		fields["title"] = []string{msg}
	}
	if len(fields) > 0 {
		return Task{}, apperrors.Validation(MsgValidationFailed, fields)
	}
	created, err := s.repo.Create(ctx, ownerID, title, req.Description)
	if err != nil {
		return Task{}, apperrors.Wrap(apperrors.CodeUpstream, "failed to create task", err)
	}
	s.logger.Debug("task created", "taskId", created.ID, "ownerId", ownerID)
	return created, nil
}

func (s *service) Get(ctx context.Context, ownerID, id int64) (Task, error) {
	found, ok, err := s.repo.Get(ctx, ownerID, id)
	if err != nil {
		return Task{}, apperrors.Wrap(apperrors.CodeUpstream, "failed to load task", err)
	}
	if !ok {
		return Task{}, notFound()
	}
	return found, nil
}

func (s *service) Update(ctx context.Context, ownerID, id int64, req UpdateRequest) (Task, error) {
	changes, err := validateUpdate(req)
	if err != nil {
		return Task{}, err
	}
	updated, ok, err := s.repo.Update(ctx, ownerID, id, changes)
	if err != nil {
		return Task{}, apperrors.Wrap(apperrors.CodeUpstream, "failed to update task", err)
	}
	if !ok {
		return Task{}, notFound()
	}
	return updated, nil
}

func (s *service) Delete(ctx context.Context, ownerID, id int64) error {
	ok, err := s.repo.Delete(ctx, ownerID, id)
	if err != nil {
		return apperrors.Wrap(apperrors.CodeUpstream, "failed to delete task", err)
	}
	if !ok {
		return notFound()
	}
	return nil
}

func validateUpdate(req UpdateRequest) (Changes, error) {
	var changes Changes
	fields := make(map[string][]string)
	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			fields["title"] = []string{"O campo título é obrigatório."}
		} else if msg, ok := checkTitleLength(title); !ok {
			fields["title"] = []string{msg}
		}
		changes.Title = &title
	}
	if req.Status != nil {
		status, ok := ParseStatus(*req.Status)
		if !ok {
			fields["status"] = []string{"O status deve ser pending, in_progress ou completed."}
		}
		changes.Status = &status
	}
	changes.Description = req.Description
	if len(fields) > 0 {
		return Changes{}, apperrors.Validation(MsgValidationFailed, fields)
	}
	return changes, nil
}

func checkTitleLength(title string) (string, bool) {
	if utf8.RuneCountInString(title) > maxTitleLength {
		return "O título não pode ter mais de 255 caracteres.", false
	}
	return "", true
}

func notFound() error {
	return apperrors.Wrap(apperrors.CodeNotFound, MsgNotFound, nil)
}
