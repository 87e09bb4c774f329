// Package service implements account registration, login with opaque bearer
// tokens, logout and token resolution.
package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"smartdisc/backend/internal/apperr"
	"smartdisc/backend/internal/identity/domain"
	identityrepo "smartdisc/backend/internal/identity/repository"
	"smartdisc/backend/internal/security"
	"smartdisc/backend/internal/store"
)

const minPasswordLen = 6

// RegisterInput is the payload for creating an account.
type RegisterInput struct {
	FirstName       string
	LastName        string
	Email           string
	Password        string
	PasswordConfirm string
	Role            domain.Role
}

// Service implements identity operations.
type Service struct {
	store  store.Store
	hasher *security.Hasher
	now    func() time.Time
}

// NewService returns a Service.
func NewService(st store.Store, hasher *security.Hasher) *Service {
	return &Service{
		store:  st,
		hasher: hasher,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Register creates an account. The email is normalized before storage; a
// duplicate email is a conflict.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	if len(in.Password) < minPasswordLen {
		return nil, apperr.Validation("password must be at least %d characters", minPasswordLen)
	}
	if in.Password != in.PasswordConfirm {
		return nil, apperr.Validation("password confirmation does not match")
	}
	role := in.Role
	if role == "" {
		role = domain.RolePlayer
	}
	u := &domain.User{
		ID:        uuid.NewString(),
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Email:     domain.NormalizeEmail(in.Email),
		Role:      role,
		CreatedAt: s.now(),
	}
	if err := u.Validate(); err != nil {
		return nil, apperr.Validation("%s", err.Error())
	}
	hash, err := s.hasher.Hash([]byte(in.Password))
	if err != nil {
		return nil, apperr.Wrap(err, apperr.KindInternal, "hash password")
	}
	u.PasswordHash = hash

	r := s.store.Repos()
	existing, err := r.Identity.GetUserByEmail(ctx, u.Email)
	if err != nil {
		return nil, apperr.Wrap(err, apperr.KindInternal, "load user")
	}
	if existing != nil {
		return nil, apperr.Conflict("email %q already registered", u.Email)
	}
	if err := r.Identity.CreateUser(ctx, u); err != nil {
		return nil, apperr.FromStore(err, "insert user")
	}
	return u, nil
}

// Login verifies the credentials and issues a new bearer token. Unknown
// email and wrong password are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	r := s.store.Repos()
	u, err := r.Identity.GetUserByEmail(ctx, domain.NormalizeEmail(email))
	if err != nil {
		return "", nil, apperr.Wrap(err, apperr.KindInternal, "load user")
	}
	if u == nil {
		return "", nil, apperr.New(apperr.KindUnauthorized, "invalid credentials")
	}
	if err := s.hasher.Compare(u.PasswordHash, []byte(password)); err != nil {
		return "", nil, apperr.New(apperr.KindUnauthorized, "invalid credentials")
	}
	token, err := s.IssueToken(ctx, u.ID)
	if err != nil {
		return "", nil, err
	}
	return token, u, nil
}

// IssueToken creates and stores a new bearer token for the user. Called by
// Login and immediately after registration, so new accounts start signed in.
func (s *Service) IssueToken(ctx context.Context, userID string) (string, error) {
	token, err := security.NewToken()
	if err != nil {
		return "", apperr.Wrap(err, apperr.KindInternal, "generate token")
	}
	t := &domain.AuthToken{UserID: userID, Token: token, CreatedAt: s.now()}
	if err := s.store.Repos().Identity.CreateToken(ctx, t); err != nil {
		return "", apperr.FromStore(err, "insert token")
	}
	return token, nil
}

// Logout revokes the bearer token.
func (s *Service) Logout(ctx context.Context, token string) error {
	ok, err := s.store.Repos().Identity.DeleteToken(ctx, token)
	if err != nil {
		return apperr.Wrap(err, apperr.KindInternal, "delete token")
	}
	if !ok {
		return apperr.New(apperr.KindUnauthorized, "unknown token")
	}
	return nil
}

// ResolveToken maps a bearer token to its user.
func (s *Service) ResolveToken(ctx context.Context, token string) (*domain.User, error) {
	if token == "" {
		return nil, apperr.New(apperr.KindUnauthorized, "missing token")
	}
	u, err := s.store.Repos().Identity.GetUserByToken(ctx, token)
	if err != nil {
		return nil, apperr.Wrap(err, apperr.KindInternal, "resolve token")
	}
	if u == nil {
		return nil, apperr.New(apperr.KindUnauthorized, "unknown token")
	}
	return u, nil
}

// GetUser returns the user by id.
func (s *Service) GetUser(ctx context.Context, id string) (*domain.User, error) {
	u, err := s.store.Repos().Identity.GetUserByID(ctx, id)
	if err != nil {
		return nil, apperr.Wrap(err, apperr.KindInternal, "load user")
	}
	if u == nil {
		return nil, apperr.NotFound("user %q not found", id)
	}
	return u, nil
}

// ListPlayers returns all player accounts.
func (s *Service) ListPlayers(ctx context.Context) ([]*domain.User, error) {
	out, err := s.store.Repos().Identity.ListPlayers(ctx)
	if err != nil {
		return nil, apperr.Wrap(err, apperr.KindInternal, "list players")
	}
	return out, nil
}

// ListWithThrowCounts returns every user with their live-throw count, for
// the admin overview.
func (s *Service) ListWithThrowCounts(ctx context.Context) ([]*identityrepo.UserThrowCount, error) {
	out, err := s.store.Repos().Identity.ListWithThrowCounts(ctx)
	if err != nil {
		return nil, apperr.Wrap(err, apperr.KindInternal, "list users")
	}
	return out, nil
}
