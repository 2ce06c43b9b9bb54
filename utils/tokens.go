package utils

import (
	"os"
	"time"

	"github.com/kataras/iris/v12/middleware/jwt"
)

// AccessToken is the claim set the platform's auth service embeds in
// access tokens. The engine only reads it, it never issues refresh tokens.
type AccessToken struct {
	ID   uint   `json:"ID"`
	Role string `json:"role"`
}

// SignAccessToken issues a short-lived access token for the given user.
// Used by internal tooling and tests; production tokens come from the
// auth service sharing ACCESS_TOKEN_SECRET.
func SignAccessToken(id uint, role string) (string, error) {
	signer := jwt.NewSigner(jwt.HS256, os.Getenv("ACCESS_TOKEN_SECRET"), 24*time.Hour)

	claims := AccessToken{
		ID:   id,
		Role: role,
	}

	token, err := signer.Sign(claims)
	if err != nil {
		return "", err
	}

	return string(token), nil
}
