package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/event-service/internal/domain"
	apperrors "github.com/spec-kit/event-service/pkg/util"
)

type staticUserRepo struct {
	users map[string]*domain.User
}

func (r *staticUserRepo) Create(context.Context, *domain.User) error { return nil }
func (r *staticUserRepo) Update(context.Context, *domain.User) error { return nil }
func (r *staticUserRepo) UpdateRole(context.Context, string, domain.Role) (*domain.User, error) {
	return nil, pgx.ErrNoRows
}
func (r *staticUserRepo) SetBanned(context.Context, string, bool) (*domain.User, error) {
	return nil, pgx.ErrNoRows
}
func (r *staticUserRepo) Delete(context.Context, string) error { return nil }
func (r *staticUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *user
	return &clone, nil
}
func (r *staticUserRepo) GetByEmail(context.Context, string) (*domain.User, error) {
	return nil, pgx.ErrNoRows
}
func (r *staticUserRepo) List(context.Context) ([]domain.User, error) { return nil, nil }
func (r *staticUserRepo) ListByRole(context.Context, domain.Role) ([]domain.User, error) {
	return nil, nil
}

func newAuthTestApp(t *testing.T, users *staticUserRepo, extra ...fiber.Handler) (*fiber.App, *TokenManager) {
	t.Helper()

	tokens := NewTokenManager("test-secret", 60)
	middleware := NewAuthMiddleware(tokens, users)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			domainErr := apperrors.ToDomainError(err)
			return c.Status(domainErr.HTTPStatus).JSON(fiber.Map{"code": domainErr.Code})
		},
	})

	handlers := append([]fiber.Handler{middleware.Handle}, extra...)
	handlers = append(handlers, func(c *fiber.Ctx) error {
		user, ok := CurrentUser(c)
		require.True(t, ok)
		return c.JSON(fiber.Map{"id": user.ID})
	})
	app.Get("/protected", handlers...)
	return app, tokens
}

func TestAuthMiddlewareMissingHeader(t *testing.T) {
	app, _ := newAuthTestApp(t, &staticUserRepo{users: map[string]*domain.User{}})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/protected", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAuthMiddlewareMalformedHeader(t *testing.T) {
	app, _ := newAuthTestApp(t, &staticUserRepo{users: map[string]*domain.User{}})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Token abc")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAuthMiddlewareDeletedUser(t *testing.T) {
	app, tokens := newAuthTestApp(t, &staticUserRepo{users: map[string]*domain.User{}})

	token, _, err := tokens.GenerateToken("ghost", domain.RoleUser)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAuthMiddlewareBannedUser(t *testing.T) {
	users := &staticUserRepo{users: map[string]*domain.User{
		"user-1": {ID: "user-1", Role: domain.RoleUser, Banned: true},
	}}
	app, tokens := newAuthTestApp(t, users)

	token, _, err := tokens.GenerateToken("user-1", domain.RoleUser)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestAuthMiddlewareValidToken(t *testing.T) {
	users := &staticUserRepo{users: map[string]*domain.User{
		"user-1": {ID: "user-1", Role: domain.RoleUser},
	}}
	app, tokens := newAuthTestApp(t, users)

	token, _, err := tokens.GenerateToken("user-1", domain.RoleUser)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRequireRoleExactMatch(t *testing.T) {
	users := &staticUserRepo{users: map[string]*domain.User{
		"admin-1":     {ID: "admin-1", Role: domain.RoleAdmin},
		"organizer-1": {ID: "organizer-1", Role: domain.RoleOrganizer},
	}}
	app, tokens := newAuthTestApp(t, users, RequireRole(domain.RoleOrganizer))

	// Admin does not pass an organizer-only gate.
	adminToken, _, err := tokens.GenerateToken("admin-1", domain.RoleAdmin)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+adminToken)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	organizerToken, _, err := tokens.GenerateToken("organizer-1", domain.RoleOrganizer)
	require.NoError(t, err)
	req = httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+organizerToken)
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRequireRoleUsesLiveRecordNotTokenClaim(t *testing.T) {
	// Token was minted while the user was an organizer, but the stored role
	// has since been downgraded.
	users := &staticUserRepo{users: map[string]*domain.User{
		"user-1": {ID: "user-1", Role: domain.RoleUser},
	}}
	app, tokens := newAuthTestApp(t, users, RequireRole(domain.RoleOrganizer))

	staleToken, _, err := tokens.GenerateToken("user-1", domain.RoleOrganizer)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+staleToken)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}
