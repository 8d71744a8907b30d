package session

import (
	"github.com/golang-jwt/jwt/v5"

	"github.com/teamideas/idea-portal/internal"
	"github.com/teamideas/idea-portal/internal/backend"
)

// DecodeIdentityToken extracts the subject, email and name claims from a
// Google ID token without verifying its signature. Verification is the idea
// service's job during the exchange; the gateway only needs the claims to
// build the upsert body, exactly like the sign-in page did before it.
func DecodeIdentityToken(identityToken string) (backend.GoogleUser, error) {
	claims := jwt.MapClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(identityToken, claims); err != nil {
		return backend.GoogleUser{}, internal.ErrMalformedAssertion
	}

	sub, _ := claims["sub"].(string)
	email, _ := claims["email"].(string)
	name, _ := claims["name"].(string)

	if sub == "" || email == "" {
		return backend.GoogleUser{}, internal.ErrMalformedAssertion
	}

	return backend.GoogleUser{
		GoogleID: sub,
		Email:    email,
		Name:     name,
	}, nil
}
