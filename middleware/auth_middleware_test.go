package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HSouheill/branchstock_backend/models"
	"github.com/HSouheill/branchstock_backend/repositories"
)

type staticRoles map[string]*models.RoleInfo

func (s staticRoles) GetRole(_ context.Context, uid string) (*models.RoleInfo, error) {
	if uid == "flaky" {
		return nil, repositories.ErrUpstreamUnavailable
	}
	info, ok := s[uid]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return info, nil
}

func branchPtr(id string) *string { return &id }

func newRoleTestServer() (*echo.Echo, *JWTVerifier) {
	verifier := NewJWTVerifier("secret")
	roles := staticRoles{
		"admin":   {UID: "admin", Role: models.RoleAdmin},
		"worker":  {UID: "worker", Role: models.RoleWorker, BranchID: branchPtr("downtown")},
		"blocked": {UID: "blocked", Role: models.RoleWorker, BranchID: branchPtr("downtown"), IsBlocked: true},
		"nobody":  {UID: "nobody", Role: models.RoleNone},
	}

	ok := func(c echo.Context) error { return c.NoContent(http.StatusOK) }
	e := echo.New()
	g := e.Group("/branches/:branchId", Authenticate(verifier), RequireRole(roles, models.RoleAdmin, models.RoleWorker), RequireBranchAccess("branchId"))
	g.GET("", ok)
	g.POST("/sales", ok, RequireNotBlocked())
	return e, verifier
}

func TestRoleMiddleware(t *testing.T) {
	e, verifier := newRoleTestServer()

	tests := []struct {
		name   string
		method string
		path   string
		uid    string
		want   int
	}{
		{"admin any branch", http.MethodGet, "/branches/harbor", "admin", http.StatusOK},
		{"worker home branch", http.MethodGet, "/branches/downtown", "worker", http.StatusOK},
		{"worker other branch", http.MethodGet, "/branches/harbor", "worker", http.StatusForbidden},
		{"blocked worker reads", http.MethodGet, "/branches/downtown", "blocked", http.StatusOK},
		{"blocked worker sells", http.MethodPost, "/branches/downtown/sales", "blocked", http.StatusForbidden},
		{"worker sells", http.MethodPost, "/branches/downtown/sales", "worker", http.StatusOK},
		{"role none", http.MethodGet, "/branches/downtown", "nobody", http.StatusForbidden},
		{"no profile", http.MethodGet, "/branches/downtown", "ghost", http.StatusForbidden},
		{"directory down", http.MethodGet, "/branches/downtown", "flaky", http.StatusServiceUnavailable},
		{"anonymous", http.MethodGet, "/branches/downtown", "", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.uid != "" {
				token, err := verifier.Issue(tt.uid, tt.uid+"@example.com", "", time.Minute)
				require.NoError(t, err)
				req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
			}
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Code)
			if tt.want == http.StatusServiceUnavailable {
				assert.Equal(t, "5", rec.Header().Get("Retry-After"))
			}
		})
	}
}

func TestJWTVerifier(t *testing.T) {
	verifier := NewJWTVerifier("secret")

	token, err := verifier.Issue("u1", "u1@example.com", "Rana", time.Minute)
	require.NoError(t, err)
	id, err := verifier.Verify(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, &Identity{UID: "u1", Email: "u1@example.com", Name: "Rana"}, id)

	_, err = NewJWTVerifier("other").Verify(context.Background(), token)
	assert.True(t, errors.Is(err, ErrInvalidToken))

	expired, err := verifier.Issue("u1", "", "", -time.Minute)
	require.NoError(t, err)
	_, err = verifier.Verify(context.Background(), expired)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestBearerToken(t *testing.T) {
	assert.Equal(t, "abc", BearerToken("Bearer abc"))
	assert.Equal(t, "abc", BearerToken("bearer  abc "))
	assert.Empty(t, BearerToken("Basic abc"))
	assert.Empty(t, BearerToken("Bearer "))
	assert.Empty(t, BearerToken(""))
}
