package auth

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/taskhub/internal/domain/token"
	apperrors "github.com/yanqian/taskhub/pkg/errors"
)

const testSecret = "test-secret"

func TestService_RegisterLoginAndRefresh(t *testing.T) {
	svc, repo, events := newTestService()
	ctx := context.Background()

	registered, err := svc.Register(ctx, RegisterRequest{
		Name:     "João Silva",
		Email:    "Joao@Example.com",
		Password: "senha123",
	})
	require.NoError(t, err)
	require.NotZero(t, registered.User.ID)
	require.Equal(t, "joao@example.com", registered.User.Email)
	require.Equal(t, "João Silva", registered.User.Name)
	require.Equal(t, registered.User.ID, registered.TokenInfo.Subject)
	require.NotEmpty(t, registered.TokenInfo.IssuedAt)

	claims := decode(t, registered.Token)
	require.Equal(t, registered.User.ID, claims.Subject)
	require.Equal(t, "joao@example.com", claims.Email)
	require.NotEqual(t, "senha123", repo.users[registered.User.ID].PasswordHash)

	login, err := svc.Login(ctx, LoginRequest{Email: "joao@example.com", Password: "senha123"})
	require.NoError(t, err)
	require.Equal(t, int64(3600), login.ExpiresIn)
	require.Equal(t, registered.User.ID, decode(t, login.Token).Subject)

	refreshed, err := svc.Refresh(ctx, login.Token)
	require.NoError(t, err)
	require.NotEqual(t, login.Token, refreshed.Token)
	require.Equal(t, registered.User.ID, decode(t, refreshed.Token).Subject)

	require.Equal(t, []EventType{EventRegistered, EventLoggedIn, EventRefreshed}, events.types())
}

func TestService_RegisterValidation(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.Register(context.Background(), RegisterRequest{
		Name:     strings.Repeat("a", 256),
		Email:    "not-an-email",
		Password: "123",
	})
	appErr := apperrors.As(err)
	require.NotNil(t, appErr)
	require.Equal(t, apperrors.CodeValidation, appErr.Code)
	require.Contains(t, appErr.Fields, "name")
	require.Contains(t, appErr.Fields, "email")
	require.Equal(t, []string{"A senha deve ter pelo menos 6 caracteres."}, appErr.Fields["password"])

	_, err = svc.Register(context.Background(), RegisterRequest{})
	appErr = apperrors.As(err)
	require.NotNil(t, appErr)
	require.Equal(t, []string{"O campo nome é obrigatório."}, appErr.Fields["name"])
	require.Equal(t, []string{"O campo email é obrigatório."}, appErr.Fields["email"])
	require.Equal(t, []string{"A senha é obrigatória."}, appErr.Fields["password"])
}

func TestService_DuplicateEmail(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterRequest{Name: "One", Email: "user@example.com", Password: "pass1234"})
	require.NoError(t, err)

	_, err = svc.Register(ctx, RegisterRequest{Name: "Two", Email: "USER@example.com", Password: "pass12345"})
	appErr := apperrors.As(err)
	require.NotNil(t, appErr)
	require.Equal(t, apperrors.CodeValidation, appErr.Code)
	require.Equal(t, []string{"Este email já está sendo utilizado."}, appErr.Fields["email"])
}

func TestService_LoginInvalidCredentials(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterRequest{Name: "Ana", Email: "ana@example.com", Password: "correct-horse"})
	require.NoError(t, err)

	for _, req := range []LoginRequest{
		{Email: "ana@example.com", Password: "wrong"},
		{Email: "nobody@example.com", Password: "correct-horse"},
		{Email: "", Password: ""},
	} {
		_, err := svc.Login(ctx, req)
		require.True(t, apperrors.IsCode(err, apperrors.CodeAuthentication))
		require.Equal(t, MsgInvalidCredentials, apperrors.As(err).Message)
	}
}

func TestService_RefreshRejectsInvalidToken(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.Refresh(context.Background(), "garbage")
	require.True(t, apperrors.IsCode(err, apperrors.CodeAuthentication))
	require.ErrorIs(t, err, token.ErrMalformed)
}

func TestService_Profile(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	registered, err := svc.Register(ctx, RegisterRequest{Name: "Ana", Email: "ana@example.com", Password: "secret1"})
	require.NoError(t, err)

	view, err := svc.Profile(ctx, registered.User.ID)
	require.NoError(t, err)
	require.Equal(t, registered.User, view)

	_, err = svc.Profile(ctx, 999)
	require.True(t, apperrors.IsCode(err, apperrors.CodeNotFound))
	require.Equal(t, MsgUserNotFound, apperrors.As(err).Message)
}

func TestService_Logout(t *testing.T) {
	svc, _, events := newTestService()
	identity := token.Identity{Subject: 4, Claims: token.Claims{Subject: 4, Email: "x@example.com", ID: "jti-4"}}

	require.NoError(t, svc.Logout(context.Background(), identity))
	require.Equal(t, []EventType{EventLoggedOut}, events.types())
	require.Equal(t, "jti-4", events.published[0].TokenID)

	events.err = errors.New("valkey down")
	err := svc.Logout(context.Background(), identity)
	require.True(t, apperrors.IsCode(err, apperrors.CodeUpstream))
	require.Equal(t, MsgLogoutFailed, apperrors.As(err).Message)
}

func TestService_EventFailureDoesNotBlockLogin(t *testing.T) {
	svc, _, events := newTestService()
	events.err = errors.New("valkey down")

	_, err := svc.Register(context.Background(), RegisterRequest{Name: "Ana", Email: "ana@example.com", Password: "secret1"})
	require.NoError(t, err)
	_, err = svc.Login(context.Background(), LoginRequest{Email: "ana@example.com", Password: "secret1"})
	require.NoError(t, err)
}

func newTestService() (Service, *memoryRepo, *recordingPublisher) {
	repo := newMemoryRepo()
	events := &recordingPublisher{}
	codec := token.NewCodec(token.NewStaticKey(testSecret))
	issuer := token.NewIssuer(codec, token.Config{TTL: time.Hour, RefreshGrace: 24 * time.Hour}, nil)
	return NewService(repo, issuer, events, newTestLogger()), repo, events
}

func decode(t *testing.T, raw string) token.Claims {
	t.Helper()
	claims, err := token.NewCodec(token.NewStaticKey(testSecret)).Decode(raw)
	require.NoError(t, err)
	return claims
}

func newTestLogger() *slog.Logger {
	handler := slog.NewTextHandler(io.Discard, nil)
	return slog.New(handler)
}

type recordingPublisher struct {
	published []Event
	err       error
}

func (p *recordingPublisher) Publish(_ context.Context, event Event) error {
	if p.err != nil {
		return p.err
	}
	p.published = append(p.published, event)
	return nil
}

func (p *recordingPublisher) types() []EventType {
	out := make([]EventType, 0, len(p.published))
	for _, e := range p.published {
		out = append(out, e.Type)
	}
	return out
}

type memoryRepo struct {
	users map[int64]User
	seq   int64
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{users: make(map[int64]User)}
}

func (m *memoryRepo) Create(_ context.Context, name, email, passwordHash string) (User, error) {
	for _, user := range m.users {
		if user.Email == email {
			return User{}, ErrEmailExists
		}
	}
	m.seq++
	now := time.Now().UTC()
	user := User{
		ID:           m.seq,
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	m.users[user.ID] = user
	return user, nil
}

func (m *memoryRepo) GetByEmail(_ context.Context, email string) (User, bool, error) {
	for _, user := range m.users {
		if user.Email == email {
			return user, true, nil
		}
	}
	return User{}, false, nil
}

func (m *memoryRepo) GetByID(_ context.Context, id int64) (User, bool, error) {
	user, ok := m.users[id]
	return user, ok, nil
}
