package auth

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidSubject = errors.New("token subject is not a user id")

type Authenticator interface {
	GenerateToken(userID int64) (string, error)
	ValidateAccessToken(token string) (*jwt.Token, error)
	UserID(token *jwt.Token) (int64, error)
}
