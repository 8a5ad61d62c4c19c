package types

import "github.com/golang-jwt/jwt/v5"

// Claims represents the session token claims. RegisteredClaims.ID carries the session id.
type Claims struct {
	WorkerID uint   `json:"worker_id"`
	Name     string `json:"name"`
	jwt.RegisteredClaims
}
