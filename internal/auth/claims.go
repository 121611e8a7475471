package auth

import "github.com/golang-jwt/jwt/v5"

type Claims struct {
	jwt.RegisteredClaims
	UserID   string `json:"sub"`
	Username string `json:"username,omitempty"`
	Role     string `json:"role,omitempty"`
}
