package http

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/taskhub/internal/domain/task"
	"github.com/yanqian/taskhub/internal/domain/token"
	apperrors "github.com/yanqian/taskhub/pkg/errors"
)

// TaskHandler exposes task CRUD scoped to the token subject.
type TaskHandler struct {
	svc    task.Service
	logger *slog.Logger
}

// NewTaskHandler constructs a TaskHandler.
func NewTaskHandler(svc task.Service, logger *slog.Logger) *TaskHandler {
	return &TaskHandler{svc: svc, logger: logger.With("component", "http.task")}
}

// ClaimsView is the /me payload of the task service.
type ClaimsView struct {
	Subject   int64  `json:"sub"`
	UserID    int64  `json:"user_id"`
	Name      string `json:"name,omitempty"`
	Email     string `json:"email,omitempty"`
	Issuer    string `json:"iss,omitempty"`
	ID        string `json:"jti,omitempty"`
	IssuedAt  int64  `json:"iat"`
	ExpiresAt int64  `json:"exp"`
	NotBefore int64  `json:"nbf,omitempty"`
}

// Me echoes the verified claims.
func (h *TaskHandler) Me(c *gin.Context) {
	identity, ok := getIdentity(c)
	if !ok {
		abortWithError(c, unauthorized(nil))
		return
	}
	c.JSON(http.StatusOK, toClaimsView(identity.Claims))
}

// List returns the caller's tasks.
func (h *TaskHandler) List(c *gin.Context) {
	identity, ok := getIdentity(c)
	if !ok {
		abortWithError(c, unauthorized(nil))
		return
	}
	tasks, err := h.svc.List(c.Request.Context(), identity.Subject)
	if err != nil {
		abortWithError(c, fromAppError(err))
		return
	}
	c.JSON(http.StatusOK, tasks)
}

// Create adds a task for the caller.
func (h *TaskHandler) Create(c *gin.Context) {
	identity, ok := getIdentity(c)
	if !ok {
		abortWithError(c, unauthorized(nil))
		return
	}
	var req task.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, invalidBody(err))
		return
	}
	created, err := h.svc.Create(c.Request.Context(), identity.Subject, req)
	if err != nil {
		abortWithError(c, fromAppError(err))
		return
	}
	c.JSON(http.StatusCreated, created)
}

// Get returns one of the caller's tasks.
func (h *TaskHandler) Get(c *gin.Context) {
	identity, id, ok := h.target(c)
	if !ok {
		return
	}
	found, err := h.svc.Get(c.Request.Context(), identity.Subject, id)
	if err != nil {
		abortWithError(c, fromAppError(err))
		return
	}
	c.JSON(http.StatusOK, found)
}

// Update applies a partial update to one of the caller's tasks.
func (h *TaskHandler) Update(c *gin.Context) {
	identity, id, ok := h.target(c)
	if !ok {
		return
	}
	var req task.UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, invalidBody(err))
		return
	}
	updated, err := h.svc.Update(c.Request.Context(), identity.Subject, id, req)
	if err != nil {
		abortWithError(c, fromAppError(err))
		return
	}
	c.JSON(http.StatusOK, updated)
}

// Delete removes one of the caller's tasks.
func (h *TaskHandler) Delete(c *gin.Context) {
	identity, id, ok := h.target(c)
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), identity.Subject, id); err != nil {
		abortWithError(c, fromAppError(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": task.MsgDeleted})
}

// target resolves the identity and the :id path parameter. A non-numeric id
// is reported exactly like a missing task.
func (h *TaskHandler) target(c *gin.Context) (token.Identity, int64, bool) {
	identity, ok := getIdentity(c)
	if !ok {
		abortWithError(c, unauthorized(nil))
		return token.Identity{}, 0, false
	}
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		abortWithError(c, NewHTTPError(http.StatusNotFound, apperrors.CodeNotFound, task.MsgNotFound, err))
		return token.Identity{}, 0, false
	}
	return identity, id, true
}

func toClaimsView(claims token.Claims) ClaimsView {
	view := ClaimsView{
		Subject:   claims.Subject,
		UserID:    claims.Subject,
		Name:      claims.Name,
		Email:     claims.Email,
		Issuer:    claims.Issuer,
		ID:        claims.ID,
		IssuedAt:  claims.IssuedAt.Unix(),
		ExpiresAt: claims.ExpiresAt.Unix(),
	}
	if !claims.NotBefore.IsZero() {
		view.NotBefore = claims.NotBefore.Unix()
	}
	return view
}
