package handler

import (
	"context"

	dirmodels "realmbridge/internal/directory/models"
	"realmbridge/internal/identity"
)

// RemoteLoginCompleter finishes a bridged login once the token's identity is
// resolved. It returns the JSON body of the response.
type RemoteLoginCompleter interface {
	Complete(ctx context.Context, res identity.ResolutionResult) (any, error)
}

type SessionOpener interface {
	OpenSession(ctx context.Context, user *dirmodels.User) (*dirmodels.Session, error)
}

const (
	ResultLoggedIn             = "logged_in"
	ResultRegistrationRequired = "registration_required"
)

type LoginResponse struct {
	Result    string `json:"result"`
	Email     string `json:"email"`
	FullName  string `json:"full_name,omitempty"`
	Subdomain string `json:"subdomain"`
	SessionID string `json:"session_id,omitempty"`
}

// SessionCompleter logs existing users in by opening a session and tells the
// caller to register unknown ones.
type SessionCompleter struct {
	sessions SessionOpener
}

func NewSessionCompleter(sessions SessionOpener) *SessionCompleter {
	return &SessionCompleter{sessions: sessions}
}

func (c *SessionCompleter) Complete(ctx context.Context, res identity.ResolutionResult) (any, error) {
	if !res.Found() {
		return LoginResponse{
			Result:    ResultRegistrationRequired,
			Email:     res.Email,
			FullName:  res.FullName,
			Subdomain: res.TenantKey.String(),
		}, nil
	}
	session, err := c.sessions.OpenSession(ctx, res.User)
	if err != nil {
		return nil, err
	}
	return LoginResponse{
		Result:    ResultLoggedIn,
		Email:     res.Email,
		Subdomain: res.TenantKey.String(),
		SessionID: session.ID.String(),
	}, nil
}
