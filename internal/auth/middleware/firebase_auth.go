package middleware

import (
	"context"
	"fmt"

	"firebase.google.com/go/v4/auth"

	"github.com/GoSim-25-26J-441/eprod/internal/auth/domain"
)

// IDTokenVerifier is the part of the Firebase Auth client used here.
type IDTokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
}

// ExternalUsers maps an external identity onto a local account.
type ExternalUsers interface {
	EnsureExternal(ctx context.Context, externalUID, email, displayName string) (*domain.User, error)
}

// FirebaseVerifier validates Firebase ID tokens and resolves them to local principals.
type FirebaseVerifier struct {
	client IDTokenVerifier
	users  ExternalUsers
}

func NewFirebaseVerifier(client IDTokenVerifier, users ExternalUsers) *FirebaseVerifier {
	return &FirebaseVerifier{client: client, users: users}
}

func (v *FirebaseVerifier) Verify(ctx context.Context, token string) (*domain.Principal, error) {
	decoded, err := v.client.VerifyIDToken(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("verify firebase token: %w", err)
	}

	// Extract email and name from claims if available
	email, _ := decoded.Claims["email"].(string)
	name, _ := decoded.Claims["name"].(string)

	user, err := v.users.EnsureExternal(ctx, decoded.UID, email, name)
	if err != nil {
		return nil, fmt.Errorf("ensure user: %w", err)
	}

	p := user.Principal()
	return &p, nil
}
