package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/hadealahmad/anonymous-messages/config"
)

// formTokenSubject distinguishes anti-forgery form tokens from reviewer
// session tokens so one can never stand in for the other.
const formTokenSubject = "submission-form"

// ErrBadFormToken is returned when a form token is missing, expired, or was
// not issued by this server.
var ErrBadFormToken = errors.New("invalid form token")

// GenerateFormToken issues the anti-forgery token the public submission form
// must echo back. It carries no identity; it only proves the form was served
// by us recently.
func GenerateFormToken(ttl time.Duration) (string, error) {
	cfg := config.Get()
	claims := jwt.RegisteredClaims{
		Subject:   formTokenSubject,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(cfg.JWTSecret))
}

// VerifyFormToken checks a token returned by the submission form.
func VerifyFormToken(tokenStr string) error {
	if tokenStr == "" {
		return ErrBadFormToken
	}
	cfg := config.Get()
	parsed, err := jwt.ParseWithClaims(tokenStr, &jwt.RegisteredClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(cfg.JWTSecret), nil
	})
	if err != nil || !parsed.Valid {
		return ErrBadFormToken
	}
	claims, ok := parsed.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject != formTokenSubject {
		return ErrBadFormToken
	}
	return nil
}
