package jwt

import (
	"context"
	"time"

	"github.com/cmlabs-hris/robot-fleet-backend-go/internal/domain/auth"
	"github.com/go-chi/jwtauth/v5"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

const (
	TypeAccess = "access"
	TypeSSE    = "sse"

	sseTokenLifetime = 5 * time.Minute
)

type Service interface {
	GenerateAccessToken(id auth.Identity) (token string, expiresAt int64, err error)
	GenerateSSEToken(id auth.Identity) (token string, expiresIn int, err error)
	ValidateSSEToken(tokenString string) (auth.Identity, error)
	JWTAuth() *jwtauth.JWTAuth
}

type JWTService struct {
	accessTokenExpiration time.Duration
	tokenAuth             *jwtauth.JWTAuth
	now                   func() time.Time
}

func (j *JWTService) JWTAuth() *jwtauth.JWTAuth {
	return j.tokenAuth
}

func NewJWTService(secretKey string, accessTokenExpiration time.Duration) *JWTService {
	return &JWTService{
		accessTokenExpiration: accessTokenExpiration,
		tokenAuth:             jwtauth.New("HS256", []byte(secretKey), nil, jwt.WithAcceptableSkew(30*time.Second)),
		now:                   time.Now,
	}
}

// GenerateAccessToken signs a warehouse-scoped access token. End-user login
// lives in the identity provider; this serves tooling and tests.
func (j *JWTService) GenerateAccessToken(id auth.Identity) (token string, expiresAt int64, err error) {
	expiresAt = j.now().Add(j.accessTokenExpiration).Unix()
	claims := identityClaims(id, TypeAccess)
	claims["exp"] = expiresAt

	_, tokenString, err := j.tokenAuth.Encode(claims)
	return tokenString, expiresAt, err
}

// GenerateSSEToken generates a short-lived token for EventSource clients,
// which cannot send an Authorization header.
func (j *JWTService) GenerateSSEToken(id auth.Identity) (token string, expiresIn int, err error) {
	claims := identityClaims(id, TypeSSE)
	claims["exp"] = j.now().Add(sseTokenLifetime).Unix()

	_, tokenString, err := j.tokenAuth.Encode(claims)
	if err != nil {
		return "", 0, err
	}
	return tokenString, int(sseTokenLifetime.Seconds()), nil
}

// ValidateSSEToken validates an SSE token and returns its identity
func (j *JWTService) ValidateSSEToken(tokenString string) (auth.Identity, error) {
	token, err := jwtauth.VerifyToken(j.tokenAuth, tokenString)
	if err != nil {
		return auth.Identity{}, auth.ErrInvalidToken
	}

	claims, err := token.AsMap(context.Background())
	if err != nil {
		return auth.Identity{}, auth.ErrInvalidToken
	}
	if tokenType, _ := claims["type"].(string); tokenType != TypeSSE {
		return auth.Identity{}, auth.ErrInvalidToken
	}
	return identityFromClaims(claims)
}

func identityClaims(id auth.Identity, tokenType string) map[string]interface{} {
	return map[string]interface{}{
		"user_id":      id.UserID,
		"employee_id":  valueOrNil(id.EmployeeID),
		"warehouse_id": valueOrNil(id.WarehouseID),
		"role":         string(id.Role),
		"type":         tokenType,
	}
}

func valueOrNil(value string) interface{} {
	if value == "" {
		return nil
	}
	return value
}
