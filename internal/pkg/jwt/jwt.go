package jwt

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token expired")
)

type Role string

const (
	RoleBuyer    Role = "buyer"
	RoleOperator Role = "operator"
)

func (r Role) IsValid() bool {
	return r == RoleBuyer || r == RoleOperator
}

// Claims carries the caller identity. The subject is the buyer id; a missing role means buyer.
type Claims struct {
	BuyerID uuid.UUID `json:"buyer_id"`
	Role    Role      `json:"role,omitempty"`
	jwt.RegisteredClaims
}

type Service struct {
	secretKey []byte
	issuer    string
}

func NewService(secretKey, issuer string) *Service {
	return &Service{
		secretKey: []byte(secretKey),
		issuer:    issuer,
	}
}

// GenerateToken is used by local tooling and tests; production tokens come from the identity provider.
func (s *Service) GenerateToken(buyerID uuid.UUID, role Role, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		BuyerID: buyerID,
		Role:    role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   buyerID.String(),
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secretKey)
}

func (s *Service) ValidateToken(tokenString string) (uuid.UUID, Role, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(_ *jwt.Token) (any, error) {
		return s.secretKey, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return uuid.Nil, "", ErrExpiredToken
		}
		return uuid.Nil, "", ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.BuyerID == uuid.Nil {
		return uuid.Nil, "", ErrInvalidToken
	}

	role := claims.Role
	if role == "" {
		role = RoleBuyer
	}
	if !role.IsValid() {
		return uuid.Nil, "", ErrInvalidToken
	}

	return claims.BuyerID, role, nil
}
