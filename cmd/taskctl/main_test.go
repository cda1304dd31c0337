package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/taskhub/internal/domain/auth"
	"github.com/yanqian/taskhub/internal/domain/task"
	"github.com/yanqian/taskhub/internal/domain/token"
	"github.com/yanqian/taskhub/internal/infra/config"
	"github.com/yanqian/taskhub/internal/infra/events"
	"github.com/yanqian/taskhub/internal/infra/taskrepo"
	"github.com/yanqian/taskhub/internal/infra/userrepo"
	httpiface "github.com/yanqian/taskhub/internal/interface/http"
)

type harness struct {
	authURL     string
	taskURL     string
	sessionFile string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	t.Setenv("CONFIG_PATH", "")
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := &config.Config{HTTP: config.HTTPConfig{BasePath: "/api"}}

	codec := token.NewCodec(token.NewStaticKey("taskctl-test-secret"))
	issuer := token.NewIssuer(codec, token.Config{TTL: time.Hour, RefreshGrace: time.Hour}, nil)
	verifier := token.NewVerifier(codec, nil)

	authSvc := auth.NewService(userrepo.NewMemoryRepository(), issuer, events.NewLogPublisher(logger), logger)
	authServer := httptest.NewServer(httpiface.NewAuthRouter(cfg, httpiface.NewAuthHandler(authSvc, logger), verifier, logger).Handler)
	t.Cleanup(authServer.Close)

	taskSvc := task.NewService(taskrepo.NewMemoryRepository(), logger)
	taskServer := httptest.NewServer(httpiface.NewTaskRouter(cfg, httpiface.NewTaskHandler(taskSvc, logger), verifier, logger).Handler)
	t.Cleanup(taskServer.Close)

	return &harness{
		authURL:     authServer.URL + "/api",
		taskURL:     taskServer.URL + "/api",
		sessionFile: filepath.Join(t.TempDir(), "session.yaml"),
	}
}

func (h *harness) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	global := []string{"--auth-url", h.authURL, "--task-url", h.taskURL, "--session-file", h.sessionFile}
	err := run(context.Background(), append(global, args...), &stdout, &stderr)
	return stdout.String(), err
}

func TestTaskctlSessionLifecycle(t *testing.T) {
	h := newHarness(t)

	out, err := h.run(t, "register", "--name", "Ana", "--email", "ana@example.com", "--password", "secret1")
	require.NoError(t, err)
	require.Contains(t, out, "registered Ana <ana@example.com>")
	_, err = os.Stat(h.sessionFile)
	require.NoError(t, err)

	out, err = h.run(t, "status")
	require.NoError(t, err)
	require.Contains(t, out, "authenticated as ana@example.com")

	out, err = h.run(t, "whoami")
	require.NoError(t, err)
	require.Contains(t, out, "ana@example.com")

	out, err = h.run(t, "refresh")
	require.NoError(t, err)
	require.Contains(t, out, "token still valid")

	out, err = h.run(t, "logout")
	require.NoError(t, err)
	require.Contains(t, out, "logged out")
	_, err = os.Stat(h.sessionFile)
	require.True(t, os.IsNotExist(err))

	_, err = h.run(t, "tasks", "list")
	require.EqualError(t, err, "not logged in, run taskctl login")

	out, err = h.run(t, "login", "--email", "ana@example.com", "--password", "secret1")
	require.NoError(t, err)
	require.Contains(t, out, "logged in as Ana <ana@example.com>")
}

func TestTaskctlTaskCommands(t *testing.T) {
	h := newHarness(t)
	_, err := h.run(t, "register", "--name", "Ana", "--email", "ana@example.com", "--password", "secret1")
	require.NoError(t, err)

	out, err := h.run(t, "tasks", "list")
	require.NoError(t, err)
	require.Contains(t, out, "no tasks")

	out, err = h.run(t, "tasks", "create", "--title", "Write report", "--description", "quarterly")
	require.NoError(t, err)
	require.Contains(t, out, "Write report")
	require.Contains(t, out, "pending")

	out, err = h.run(t, "tasks", "update", "--status", "completed", "1")
	require.NoError(t, err)
	require.Contains(t, out, "completed")

	out, err = h.run(t, "--json", "tasks", "get", "1")
	require.NoError(t, err)
	require.Contains(t, out, `"title": "Write report"`)

	out, err = h.run(t, "tasks", "list")
	require.NoError(t, err)
	require.Contains(t, out, "Write report")

	_, err = h.run(t, "tasks", "update", "--status", "done", "1")
	require.Error(t, err)
	require.Contains(t, err.Error(), "status")

	out, err = h.run(t, "tasks", "delete", "1")
	require.NoError(t, err)
	require.Contains(t, out, "deleted task 1")

	_, err = h.run(t, "tasks", "get", "1")
	require.EqualError(t, err, "Task não encontrada")
}

func TestTaskctlTasksAreScopedToUser(t *testing.T) {
	h := newHarness(t)
	_, err := h.run(t, "register", "--name", "Ana", "--email", "ana@example.com", "--password", "secret1")
	require.NoError(t, err)
	_, err = h.run(t, "tasks", "create", "--title", "private")
	require.NoError(t, err)

	_, err = h.run(t, "register", "--name", "Bia", "--email", "bia@example.com", "--password", "secret2")
	require.NoError(t, err)
	out, err := h.run(t, "tasks", "list")
	require.NoError(t, err)
	require.NotContains(t, out, "private")
}

func TestTaskctlLoginWrongPassword(t *testing.T) {
	h := newHarness(t)
	_, err := h.run(t, "register", "--name", "Ana", "--email", "ana@example.com", "--password", "secret1")
	require.NoError(t, err)
	_, err = h.run(t, "logout")
	require.NoError(t, err)

	_, err = h.run(t, "login", "--email", "ana@example.com", "--password", "nope!!")
	require.EqualError(t, err, "Credenciais Invalidas")
}

func TestTaskctlRegisterValidationListsFields(t *testing.T) {
	h := newHarness(t)
	_, err := h.run(t, "register", "--name", "Ana", "--email", "not-an-email", "--password", "123")
	require.Error(t, err)
	lines := strings.Split(err.Error(), "\n")
	require.Greater(t, len(lines), 2)
	require.True(t, strings.HasPrefix(strings.TrimSpace(lines[1]), "email:"))
}

func TestTaskctlUsageErrors(t *testing.T) {
	h := newHarness(t)
	_, err := h.run(t)
	require.Error(t, err)

	_, err = h.run(t, "frobnicate")
	require.ErrorContains(t, err, "unknown command")

	_, err = h.run(t, "tasks", "get", "abc")
	require.ErrorContains(t, err, "invalid task id")
}
