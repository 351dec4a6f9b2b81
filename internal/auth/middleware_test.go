package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/spec-kit/flowgen/pkg/util"
)

// newProtectedApp mounts a trivial handler behind the bearer middleware and
// the admin guard, with the same DomainError-to-status mapping the HTTP
// layer applies.
func newProtectedApp(tokens *TokenManager) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			domainErr := apperrors.ToDomainError(err)
			return c.Status(domainErr.HTTPStatus).JSON(fiber.Map{
				"error": fiber.Map{"code": domainErr.Code, "message": domainErr.Message},
			})
		},
	})

	middleware := NewAuthMiddleware(tokens)
	app.Get("/protected", middleware.Handle, RequireAdmin(), func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return apperrors.NewInternalError(nil)
		}
		return c.JSON(fiber.Map{"email": principal.Email})
	})
	return app
}

func TestAuthMiddleware(t *testing.T) {
	tokens := NewTokenManager("test-secret", 60)
	app := newProtectedApp(tokens)

	get := func(t *testing.T, authorization string) *http.Response {
		t.Helper()
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		if authorization != "" {
			req.Header.Set("Authorization", authorization)
		}
		resp, err := app.Test(req)
		require.NoError(t, err)
		return resp
	}

	t.Run("missing header is unauthorized", func(t *testing.T) {
		resp := get(t, "")
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("non-bearer scheme is unauthorized", func(t *testing.T) {
		resp := get(t, "Basic dXNlcjpwYXNz")
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("malformed token is unauthorized", func(t *testing.T) {
		resp := get(t, "Bearer not-a-jwt")
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("token signed with another secret is unauthorized", func(t *testing.T) {
		other := NewTokenManager("other-secret", 60)
		token, _, err := other.GenerateToken("admin@example.com", RoleAdmin)
		require.NoError(t, err)

		resp := get(t, "Bearer "+token)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("non-admin role is forbidden", func(t *testing.T) {
		token, _, err := tokens.GenerateToken("viewer@example.com", "viewer")
		require.NoError(t, err)

		resp := get(t, "Bearer "+token)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("admin token passes through", func(t *testing.T) {
		token, _, err := tokens.GenerateToken("admin@example.com", RoleAdmin)
		require.NoError(t, err)

		resp := get(t, "Bearer "+token)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})
}
