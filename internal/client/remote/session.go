package remote

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	authdomain "github.com/GoSim-25-26J-441/eprod/internal/auth/domain"
	"github.com/GoSim-25-26J-441/eprod/internal/client/session"
)

// SessionAPI is the session manager's backend over HTTP. It keeps the
// session token in the client's token store.
type SessionAPI struct {
	c *Client
}

func NewSessionAPI(c *Client) *SessionAPI {
	return &SessionAPI{c: c}
}

type sessionResponse struct {
	Session authdomain.Session `json:"session"`
}

type profileResponse struct {
	Profile authdomain.Profile `json:"profile"`
}

// Current returns (nil, nil) when there is no token or the server no
// longer knows it. A rejected token is removed.
func (a *SessionAPI) Current(ctx context.Context) (*authdomain.Session, error) {
	token := a.c.tokens.Token()
	if token == "" {
		return nil, nil
	}
	var out sessionResponse
	err := a.c.doAs(ctx, token, http.MethodGet, "/api/v1/auth/session", nil, &out)
	var se *StatusError
	if errors.As(err, &se) && se.Status == http.StatusUnauthorized {
		if cerr := a.c.tokens.ClearIf(token); cerr != nil {
			a.c.logger.Warn("clear stale token", zap.Error(cerr))
		}
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out.Session, nil
}

func (a *SessionAPI) SignIn(ctx context.Context, creds authdomain.Credentials) (*authdomain.Session, error) {
	return a.open(ctx, "/api/v1/auth/signin", creds)
}

func (a *SessionAPI) SignUp(ctx context.Context, req authdomain.SignUpRequest) (*authdomain.Session, error) {
	return a.open(ctx, "/api/v1/auth/signup", req)
}

func (a *SessionAPI) open(ctx context.Context, path string, in any) (*authdomain.Session, error) {
	var out sessionResponse
	if err := a.c.do(ctx, http.MethodPost, path, in, &out); err != nil {
		return nil, authError(err)
	}
	if err := a.c.tokens.SetToken(out.Session.Token); err != nil {
		return nil, fmt.Errorf("store session token: %w", err)
	}
	return &out.Session, nil
}

// SignOut revokes the token it started with and removes it locally even
// when the server call fails. A token stored meanwhile by a newer sign-in
// is left alone.
func (a *SessionAPI) SignOut(ctx context.Context) error {
	token := a.c.tokens.Token()
	if token == "" {
		return nil
	}
	err := a.c.doAs(ctx, token, http.MethodPost, "/api/v1/auth/signout", nil, nil)
	if cerr := a.c.tokens.ClearIf(token); cerr != nil && err == nil {
		err = cerr
	}
	return err
}

func (a *SessionAPI) UpdateProfile(ctx context.Context, patch authdomain.ProfilePatch) (*authdomain.Profile, error) {
	var out profileResponse
	if err := a.c.do(ctx, http.MethodPatch, "/api/v1/auth/profile", patch, &out); err != nil {
		return nil, authError(err)
	}
	return &out.Profile, nil
}

func authError(err error) error {
	var se *StatusError
	if !errors.As(err, &se) {
		return err
	}
	switch se.Status {
	case http.StatusUnauthorized:
		return fmt.Errorf("%w: %w", session.ErrInvalidCredentials, se)
	case http.StatusConflict:
		return fmt.Errorf("%w: %w", session.ErrEmailTaken, se)
	case http.StatusUnprocessableEntity:
		return fmt.Errorf("%w: %w", session.ErrWeakCredential, se)
	case http.StatusBadRequest:
		return fmt.Errorf("%w: %w", session.ErrValidation, se)
	default:
		return err
	}
}
