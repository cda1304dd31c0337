package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/yanqian/taskhub/internal/domain/token"
	apperrors "github.com/yanqian/taskhub/pkg/errors"
	"github.com/yanqian/taskhub/pkg/util"
)

const (
	maxFieldLength    = 255
	minPasswordLength = 6
	tokenInfoLayout   = "02/01/2006 15:04:05"
)

// Service exposes authentication workflows.
type Service interface {
	Register(ctx context.Context, req RegisterRequest) (RegisterResponse, error)
	Login(ctx context.Context, req LoginRequest) (TokenResponse, error)
	Refresh(ctx context.Context, rawToken string) (TokenResponse, error)
	Profile(ctx context.Context, userID int64) (UserView, error)
	Logout(ctx context.Context, identity token.Identity) error
}

type service struct {
	repo   Repository
	issuer *token.Issuer
	events EventPublisher
	now    util.Clock
	logger *slog.Logger
}

// NewService constructs a Service instance.
func NewService(repo Repository, issuer *token.Issuer, events EventPublisher, logger *slog.Logger) Service {
	return &service{
		repo:   repo,
		issuer: issuer,
		events: events,
		now:    util.NowUTC,
		logger: logger.With("component", "auth.service"),
	}
}

func (s *service) Register(ctx context.Context, req RegisterRequest) (RegisterResponse, error) {
	name, email, fields := validateRegistration(req)
	if len(fields) == 0 {
		_, exists, err := s.repo.GetByEmail(ctx, email)
		if err != nil {
			return RegisterResponse{}, apperrors.Wrap(apperrors.CodeUpstream, "failed to check user", err)
		}
		if exists {
			fields = map[string][]string{"email": {"Este email já está sendo utilizado."}}
		}
	}
	if len(fields) > 0 {
		return RegisterResponse{}, apperrors.Validation(MsgValidationFailed, fields)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return RegisterResponse{}, apperrors.Wrap(apperrors.CodeUpstream, "failed to hash password", err)
	}
	user, err := s.repo.Create(ctx, name, email, string(hashed))
	if err != nil {
		if errors.Is(err, ErrEmailExists) {
			return RegisterResponse{}, apperrors.Validation(MsgValidationFailed, map[string][]string{
				"email": {"Este email já está sendo utilizado."},
			})
		}
		return RegisterResponse{}, apperrors.Wrap(apperrors.CodeUpstream, "failed to create user", err)
	}

	issued, err := s.issuer.Issue(principalOf(user))
	if err != nil {
		return RegisterResponse{}, apperrors.Wrap(apperrors.CodeUpstream, "failed to sign token", err)
	}
	s.record(ctx, EventRegistered, user.ID, user.Email, issued.Claims.ID)

	return RegisterResponse{
		Token:     issued.Token,
		User:      toView(user),
		TokenInfo: toTokenInfo(issued.Claims),
	}, nil
}

func (s *service) Login(ctx context.Context, req LoginRequest) (TokenResponse, error) {
	email := normalizeEmail(req.Email)
	if email == "" || req.Password == "" {
		return TokenResponse{}, apperrors.Wrap(apperrors.CodeAuthentication, MsgInvalidCredentials, nil)
	}
	user, found, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return TokenResponse{}, apperrors.Wrap(apperrors.CodeUpstream, "failed to fetch user", err)
	}
	if !found {
		return TokenResponse{}, apperrors.Wrap(apperrors.CodeAuthentication, MsgInvalidCredentials, nil)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return TokenResponse{}, apperrors.Wrap(apperrors.CodeAuthentication, MsgInvalidCredentials, nil)
	}

	issued, err := s.issuer.Issue(principalOf(user))
	if err != nil {
		return TokenResponse{}, apperrors.Wrap(apperrors.CodeUpstream, "failed to sign token", err)
	}
	s.record(ctx, EventLoggedIn, user.ID, user.Email, issued.Claims.ID)
	return toTokenResponse(issued), nil
}

func (s *service) Refresh(ctx context.Context, rawToken string) (TokenResponse, error) {
	issued, err := s.issuer.Refresh(rawToken)
	if err != nil {
		if errors.Is(err, token.ErrNoKey) {
			return TokenResponse{}, apperrors.Wrap(apperrors.CodeUpstream, "failed to sign token", err)
		}
		return TokenResponse{}, apperrors.Wrap(apperrors.CodeAuthentication, MsgUnauthorized, err)
	}
	s.record(ctx, EventRefreshed, issued.Claims.Subject, issued.Claims.Email, issued.Claims.ID)
	return toTokenResponse(issued), nil
}

func (s *service) Profile(ctx context.Context, userID int64) (UserView, error) {
	user, found, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return UserView{}, apperrors.Wrap(apperrors.CodeUpstream, "failed to load profile", err)
	}
	if !found {
		return UserView{}, apperrors.Wrap(apperrors.CodeNotFound, MsgUserNotFound, nil)
	}
	return toView(user), nil
}

// Logout records the logout. Tokens stay valid until exp; clients drop them.
func (s *service) Logout(ctx context.Context, identity token.Identity) error {
	event := s.newEvent(EventLoggedOut, identity.Subject, identity.Claims.Email, identity.Claims.ID)
	if err := s.events.Publish(ctx, event); err != nil {
		return apperrors.Wrap(apperrors.CodeUpstream, MsgLogoutFailed, err)
	}
	return nil
}

func (s *service) record(ctx context.Context, typ EventType, userID int64, email, tokenID string) {
	if err := s.events.Publish(ctx, s.newEvent(typ, userID, email, tokenID)); err != nil {
		s.logger.Warn("auth event not recorded", "type", typ, "userId", userID, "error", err)
	}
}

func (s *service) newEvent(typ EventType, userID int64, email, tokenID string) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       typ,
		UserID:     userID,
		Email:      email,
		TokenID:    tokenID,
		OccurredAt: s.now(),
	}
}

func principalOf(user User) token.Principal {
	return token.Principal{ID: user.ID, Name: user.Name, Email: user.Email}
}

func toView(user User) UserView {
	return UserView{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}

func toTokenInfo(claims token.Claims) TokenInfo {
	return TokenInfo{
		Subject:   claims.Subject,
		Name:      claims.Name,
		Email:     claims.Email,
		IssuedAt:  claims.IssuedAt.Format(tokenInfoLayout),
		ExpiresAt: claims.ExpiresAt.Format(tokenInfoLayout),
	}
}

func toTokenResponse(issued token.IssuedToken) TokenResponse {
	return TokenResponse{Token: issued.Token, ExpiresIn: int64(issued.ExpiresIn / time.Second)}
}

func normalizeEmail(raw string) string {
	return strings.TrimSpace(strings.ToLower(raw))
}

// validateRegistration returns the cleaned name and email plus any field errors.
func validateRegistration(req RegisterRequest) (string, string, map[string][]string) {
	fields := make(map[string][]string)
	add := func(field, msg string) { fields[field] = append(fields[field], msg) }

	name := strings.TrimSpace(req.Name)
	switch {
	case name == "":
		add("name", "O campo nome é obrigatório.")
	case utf8.RuneCountInString(name) > maxFieldLength:
		add("name", "O nome não pode ter mais de 255 caracteres.")
	}

	email := normalizeEmail(req.Email)
	switch {
	case email == "":
		add("email", "O campo email é obrigatório.")
	case !validEmail(email):
		add("email", "Por favor, informe um endereço de email válido.")
	}
	if utf8.RuneCountInString(email) > maxFieldLength {
		add("email", "O email não pode ter mais de 255 caracteres.")
	}

	switch {
	case req.Password == "":
		add("password", "A senha é obrigatória.")
	case utf8.RuneCountInString(req.Password) < minPasswordLength:
		add("password", "A senha deve ter pelo menos 6 caracteres.")
	}
	return name, email, fields
}

func validEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}
