package auth

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Role is the caller's side of the marketplace.
type Role string

const (
	RoleProvider Role = "provider"
	RoleBuyer    Role = "buyer"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleProvider || r == RoleBuyer
}

// Identity is the authenticated caller. The core trusts it as supplied by
// the session layer and never re-authenticates.
type Identity struct {
	AccountID uuid.UUID
	Role      Role
}

// Claims are the JWT claims this service consumes.
type Claims struct {
	AccountID string `json:"account_id"`
	Role      string `json:"role"`
	jwt.RegisteredClaims
}

var (
	ErrEmptyToken    = errors.New("auth: empty token")
	ErrInvalidToken  = errors.New("auth: invalid token")
	ErrInvalidClaims = errors.New("auth: invalid claims")
)

// ParseToken validates an HS256 bearer token and extracts the identity.
func ParseToken(tokenString string, secret []byte) (Identity, error) {
	if tokenString == "" {
		return Identity{}, ErrEmptyToken
	}

	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

	claims := &Claims{}

	token, err := parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}

		return secret, nil
	})
	if err != nil {
		return Identity{}, err
	}

	if !token.Valid {
		return Identity{}, ErrInvalidToken
	}

	accountID, err := uuid.Parse(claims.AccountID)
	if err != nil {
		return Identity{}, ErrInvalidClaims
	}

	role := Role(claims.Role)
	if !role.Valid() {
		return Identity{}, ErrInvalidClaims
	}

	return Identity{AccountID: accountID, Role: role}, nil
}
