// Package modelclaims provides types for cookie hash authorization.

package modelclaims

import "github.com/golang-jwt/jwt"

type CookieClaims struct {
	UserID string `json:"userID"`
	jwt.StandardClaims
}
