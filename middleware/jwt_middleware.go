// middleware/jwt_middleware.go
package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"firebase.google.com/go/v4/auth"
	"github.com/golang-jwt/jwt"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/HSouheill/branchstock_backend/models"
)

const (
	identityKey = "identity"
	roleKey     = "roleInfo"
)

var ErrInvalidToken = errors.New("invalid or expired token")

// Identity is the authenticated caller as vouched for by the auth provider.
// It carries no role; roles come from the role directory.
type Identity struct {
	UID   string
	Email string
	Name  string
}

// TokenVerifier checks a bearer token and returns who it belongs to.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (*Identity, error)
}

// FirebaseVerifier verifies Firebase ID tokens.
type FirebaseVerifier struct {
	client *auth.Client
}

func NewFirebaseVerifier(client *auth.Client) *FirebaseVerifier {
	return &FirebaseVerifier{client: client}
}

func (v *FirebaseVerifier) Verify(ctx context.Context, idToken string) (*Identity, error) {
	token, err := v.client.VerifyIDToken(ctx, idToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	id := &Identity{UID: token.UID}
	if email, ok := token.Claims["email"].(string); ok {
		id.Email = email
	}
	if name, ok := token.Claims["name"].(string); ok {
		id.Name = name
	}
	return id, nil
}

// JwtCustomClaims for locally issued HS256 tokens
type JwtCustomClaims struct {
	UID   string `json:"uid"`
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
	jwt.StandardClaims
}

// JWTVerifier verifies HS256 tokens signed with a shared secret. It stands
// in for Firebase in local development and tests.
type JWTVerifier struct {
	secret []byte
}

func NewJWTVerifier(secret string) *JWTVerifier {
	return &JWTVerifier{secret: []byte(secret)}
}

func (v *JWTVerifier) Verify(_ context.Context, tokenString string) (*Identity, error) {
	claims := &JwtCustomClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	uid := claims.UID
	if uid == "" {
		uid = claims.Subject
	}
	if uid == "" {
		return nil, fmt.Errorf("%w: missing uid", ErrInvalidToken)
	}
	return &Identity{UID: uid, Email: claims.Email, Name: claims.Name}, nil
}

// Issue signs a token for uid valid for ttl.
func (v *JWTVerifier) Issue(uid, email, name string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &JwtCustomClaims{
		UID:   uid,
		Email: email,
		Name:  name,
		StandardClaims: jwt.StandardClaims{
			Subject:   uid,
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(ttl).Unix(),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
}

// BearerToken extracts the token from an Authorization header.
func BearerToken(header string) string {
	const prefix = "Bearer "
	if len(header) > len(prefix) && strings.EqualFold(header[:len(prefix)], prefix) {
		return strings.TrimSpace(header[len(prefix):])
	}
	return ""
}

// Authenticate rejects requests without a valid bearer token and stores
// the caller's Identity in the context.
func Authenticate(verifier TokenVerifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := BearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if token == "" {
				return c.JSON(http.StatusUnauthorized, models.Response{
					Status:  http.StatusUnauthorized,
					Message: "Missing bearer token",
				})
			}

			id, err := verifier.Verify(c.Request().Context(), token)
			if err != nil {
				log.Debug().Err(err).Str("path", c.Request().URL.Path).Msg("token rejected")
				return c.JSON(http.StatusUnauthorized, models.Response{
					Status:  http.StatusUnauthorized,
					Message: "Please provide valid credentials",
				})
			}

			c.Set(identityKey, id)
			return next(c)
		}
	}
}

// GetIdentity returns the caller stored by Authenticate.
func GetIdentity(c echo.Context) *Identity {
	id, _ := c.Get(identityKey).(*Identity)
	return id
}

func ExtractUserID(c echo.Context) (string, error) {
	id := GetIdentity(c)
	if id == nil || id.UID == "" {
		return "", errors.New("invalid token")
	}
	return id.UID, nil
}
