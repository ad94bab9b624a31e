package auth

import "github.com/golang-jwt/jwt/v5"

// RoleAdmin is the only role the back office issues.
const RoleAdmin = "admin"

// AdminClaims represents the typed JWT issued to back-office users.
type AdminClaims struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}
