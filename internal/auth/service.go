package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const tokenTTL = 24 * time.Hour

var errInvalidCredentials = errors.New("invalid credentials")

// Service signs tokens for the single admin account. The site has one
// writer (the cyclist), so there is no user table: the username and
// bcrypt password hash come from configuration.
type Service struct {
	secret   []byte
	user     string
	passHash string
}

type Claims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

func NewService(secret, user, passHash string) *Service {
	return &Service{
		secret:   []byte(secret),
		user:     user,
		passHash: passHash,
	}
}

func (s *Service) Login(username, password string) (TokenResponse, error) {
	if username != s.user {
		return TokenResponse{}, errInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(s.passHash), []byte(password)); err != nil {
		return TokenResponse{}, errInvalidCredentials
	}

	token, err := s.signToken(username)
	if err != nil {
		return TokenResponse{}, err
	}
	return TokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int64(tokenTTL.Seconds()),
	}, nil
}

func (s *Service) signToken(username string) (string, error) {
	claims := Claims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}
