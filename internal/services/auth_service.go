package services

import (
	"context"
	"time"

	"golang.org/x/crypto/bcrypt"

	"threadline/internal/domain"
	"threadline/internal/repos"
)

// AuthService is the thin session collaborator: login binds a session cookie
// to a user, handlers resolve the cookie back to a user for ownership checks.
type AuthService struct {
	Users   *repos.UserRepo
	Timeout time.Duration
}

func (s *AuthService) Login(ctx context.Context, sid, email, password string) (*domain.User, error) {
	ctx, cancel := opCtx(ctx, s.Timeout)
	defer cancel()

	u, err := s.Users.ByEmail(ctx, email)
	if err != nil {
		return nil, domain.Errf(domain.KindValidation, "invalid email or password")
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Hash), []byte(password)) != nil {
		return nil, domain.Errf(domain.KindValidation, "invalid email or password")
	}
	if err := s.Users.BindSession(ctx, sid, u.ID); err != nil {
		return nil, storeErr(err, "auth.login")
	}
	return u, nil
}

func (s *AuthService) Logout(ctx context.Context, sid string) error {
	ctx, cancel := opCtx(ctx, s.Timeout)
	defer cancel()
	return storeErr(s.Users.UnbindSession(ctx, sid), "auth.logout")
}

func (s *AuthService) CurrentUser(ctx context.Context, sid string) (*domain.User, error) {
	ctx, cancel := opCtx(ctx, s.Timeout)
	defer cancel()
	return s.Users.SessionUser(ctx, sid)
}
