package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"

	"github.com/partline/quote-engine/internal/domain"
)

const (
	bearerPrefix  = "Bearer "
	identityLocal = "identity"

	defaultTokenTTL = 24 * time.Hour
)

// Claims is the JWT payload (subject=userID, plus the caller's role).
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Identity is the authenticated caller attached to each request.
type Identity struct {
	UserID string
	Role   domain.Role
}

type Authenticator struct {
	secret []byte
	now    func() time.Time
}

func NewAuthenticator(secret string) (*Authenticator, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, fmt.Errorf("jwt secret is required")
	}

	return &Authenticator{
		secret: []byte(secret),
		now:    time.Now,
	}, nil
}

// Middleware validates a Bearer token, enforces HS256, and stashes the
// caller identity for handlers.
func (a *Authenticator) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		if header == "" || !strings.HasPrefix(strings.ToLower(header), strings.ToLower(bearerPrefix)) {
			return fiber.NewError(fiber.StatusUnauthorized, "missing or invalid Authorization header")
		}

		raw := strings.TrimSpace(header[len(bearerPrefix):])
		if raw == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid bearer token")
		}

		identity, err := a.parseToken(raw)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid or expired token")
		}

		c.Locals(identityLocal, identity)
		return c.Next()
	}
}

func (a *Authenticator) parseToken(raw string) (Identity, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(a.now),
	)

	var claims Claims
	token, err := parser.ParseWithClaims(raw, &claims, func(t *jwt.Token) (interface{}, error) {
		return a.secret, nil
	})
	if err != nil {
		return Identity{}, err
	}
	if !token.Valid {
		return Identity{}, errors.New("token is not valid")
	}

	userID := strings.TrimSpace(claims.Subject)
	if userID == "" {
		return Identity{}, errors.New("token missing subject")
	}

	role, err := domain.ParseRoleFromString(claims.Role)
	if err != nil {
		return Identity{}, err
	}

	return Identity{UserID: userID, Role: role}, nil
}

// GenerateToken signs an HS256 token for the given user and role.
func (a *Authenticator) GenerateToken(userID string, role domain.Role) (string, error) {
	now := a.now()
	claims := &Claims{
		Role: role.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(now.Add(defaultTokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(a.secret)
}

// FromContext returns the identity stored by Middleware.
func FromContext(c *fiber.Ctx) (Identity, bool) {
	identity, ok := c.Locals(identityLocal).(Identity)
	if !ok || identity.UserID == "" {
		return Identity{}, false
	}
	return identity, true
}
