package auth

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/cityparkhub/parkctl/internal/gateway"
	"github.com/cityparkhub/parkctl/internal/pkg/apperror"
	"github.com/cityparkhub/parkctl/internal/pkg/validate"
	"github.com/cityparkhub/parkctl/internal/session"
)

var ErrNotLoggedIn = apperror.New(apperror.KindUnauthenticated, "not logged in")

// Service handles authentication against the backend and keeps the local
// session store in sync with it.
type Service struct {
	gw    *gateway.Gateway
	store *session.Store
	log   *logrus.Logger
}

func NewService(gw *gateway.Gateway, store *session.Store, log *logrus.Logger) *Service {
	return &Service{
		gw:    gw,
		store: store,
		log:   log,
	}
}

// Login authenticates and persists the issued token and user record. The
// session is effective for all subsequent requests once Login returns.
func (s *Service) Login(ctx context.Context, creds Credentials) (*session.User, error) {
	if err := validate.Struct(creds); err != nil {
		return nil, err
	}

	var resp LoginResponse
	if err := s.gw.Post(ctx, "/api/auth/login", nil, creds, &resp, gateway.Public()); err != nil {
		return nil, err
	}

	if err := s.store.SetSession(resp.AccessToken, resp.User); err != nil {
		return nil, err
	}

	s.log.WithField("email", creds.Email).Debug("logged in")
	return resp.User, nil
}

// Register creates a new account. It does not log the user in.
func (s *Service) Register(ctx context.Context, reg Registration) error {
	if err := validate.Struct(reg); err != nil {
		return err
	}
	return s.gw.Post(ctx, "/api/auth/register", nil, reg, nil, gateway.Public())
}

// Logout drops the local session. There is no server-side call to make: the
// backend issues stateless tokens.
func (s *Service) Logout() error {
	return s.store.Clear()
}

// Profile fetches the caller's user record and refreshes the stored copy.
func (s *Service) Profile(ctx context.Context) (*session.User, error) {
	var u session.User
	if err := s.gw.Get(ctx, "/api/users/profile", nil, &u); err != nil {
		return nil, err
	}
	if err := s.store.SetUser(&u); err != nil {
		s.log.WithError(err).Warn("failed to refresh stored user")
	}
	return &u, nil
}

// RequestPasswordReset asks the backend to email a reset token.
func (s *Service) RequestPasswordReset(ctx context.Context, email string) error {
	req := resetRequest{Email: email}
	if err := validate.Struct(req); err != nil {
		return err
	}
	return s.gw.Post(ctx, "/api/auth/reset-password", nil, req, nil, gateway.Public())
}

// VerifyPasswordReset completes a reset with the emailed token.
func (s *Service) VerifyPasswordReset(ctx context.Context, token, newPassword string) error {
	req := verifyResetRequest{Token: token, NewPassword: newPassword}
	if err := validate.Struct(req); err != nil {
		return err
	}
	return s.gw.Post(ctx, "/api/auth/verify-reset", nil, req, nil, gateway.Public())
}

// Identity decodes the stored token's claims for display purposes.
func (s *Service) Identity() (*TokenInfo, error) {
	token := s.store.Token()
	if token == "" {
		return nil, ErrNotLoggedIn
	}
	return InspectToken(token)
}

// CurrentUser returns the locally stored user record, if any.
func (s *Service) CurrentUser() *session.User {
	return s.store.User()
}
