package http_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	handlers "github.com/jhoicas/multitienda-api/internal/interfaces/http"
	"github.com/jhoicas/multitienda-api/pkg/jwt"
)

const (
	testSecret  = "secreto-de-pruebas"
	testUserID  = "user-123"
	testStoreID = "store-456"
	testIssuer  = "multitienda-api-test"
)

// buildTestApp arma una app Fiber mínima con la cadena de middlewares real.
func buildTestApp(allowedRoles ...string) *fiber.App {
	app := fiber.New()
	group := app.Group("/", handlers.AuthMiddleware(testSecret))
	mws := []fiber.Handler{}
	if len(allowedRoles) > 0 {
		mws = append(mws, handlers.RequireRole(allowedRoles...))
	}
	handler := func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"user_id":  handlers.GetUserID(c),
			"store_id": handlers.GetStoreID(c),
			"role":     handlers.GetRole(c),
		})
	}
	group.Get("/protegida", append(mws, handler)...)
	return app
}

func tokenForRole(t *testing.T, role string) string {
	t.Helper()
	token, err := jwt.Generate(testSecret, testUserID, testStoreID, role, testIssuer, 5)
	require.NoError(t, err)
	return token
}

func doRequest(t *testing.T, app *fiber.App, token string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/protegida", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

// ─────────────────────────────────────────────────────────────
// RequireRole
// ─────────────────────────────────────────────────────────────

func TestRequireRole_AdminAccedeRutaAdmin(t *testing.T) {
	app := buildTestApp("admin")
	resp := doRequest(t, app, tokenForRole(t, "admin"))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRequireRole_VendedorBloqueadoEnRutaAdmin(t *testing.T) {
	app := buildTestApp("admin", "gerente")
	resp := doRequest(t, app, tokenForRole(t, "vendedor"))
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "FORBIDDEN")
}

func TestRequireRole_GerenteAccedeRutaCompartida(t *testing.T) {
	app := buildTestApp("admin", "gerente")
	resp := doRequest(t, app, tokenForRole(t, "gerente"))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRequireRole_TokenSinRol_Retorna401(t *testing.T) {
	app := buildTestApp("admin")
	resp := doRequest(t, app, tokenForRole(t, ""))
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "MISSING_ROLE")
}

// ─────────────────────────────────────────────────────────────
// AuthMiddleware
// ─────────────────────────────────────────────────────────────

func TestAuthMiddleware_SinHeader_Retorna401(t *testing.T) {
	app := buildTestApp()
	resp := doRequest(t, app, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "MISSING_TOKEN")
}

func TestAuthMiddleware_TokenInvalido_Retorna401(t *testing.T) {
	app := buildTestApp()
	resp := doRequest(t, app, "no-es-un-jwt")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "INVALID_TOKEN")
}

func TestAuthMiddleware_FormatoSinBearer_Retorna401(t *testing.T) {
	app := buildTestApp()
	req := httptest.NewRequest(http.MethodGet, "/protegida", nil)
	req.Header.Set("Authorization", tokenForRole(t, "admin")) // sin prefijo Bearer
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAuthMiddleware_ExtraeClaimsAlContexto(t *testing.T) {
	app := buildTestApp()
	resp := doRequest(t, app, tokenForRole(t, "vendedor"))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), testUserID)
	assert.Contains(t, string(body), testStoreID)
	assert.Contains(t, string(body), "vendedor")
}

// ─────────────────────────────────────────────────────────────
// JWT generación/validación
// ─────────────────────────────────────────────────────────────

func TestJWT_GenerarYValidar(t *testing.T) {
	token, err := jwt.Generate(testSecret, testUserID, testStoreID, "gerente", testIssuer, 5)
	require.NoError(t, err)

	userID, storeID, role, err := jwt.Parse(testSecret, token)
	require.NoError(t, err)
	assert.Equal(t, testUserID, userID)
	assert.Equal(t, testStoreID, storeID)
	assert.Equal(t, "gerente", role)
}

func TestJWT_TokenExpirado_Falla(t *testing.T) {
	token, err := jwt.Generate(testSecret, testUserID, testStoreID, "admin", testIssuer, -1)
	require.NoError(t, err)

	time.Sleep(10 * time.Millisecond)
	_, _, _, err = jwt.Parse(testSecret, token)
	assert.Error(t, err)
}

func TestJWT_SecretIncorrecto_Falla(t *testing.T) {
	token, err := jwt.Generate(testSecret, testUserID, testStoreID, "admin", testIssuer, 5)
	require.NoError(t, err)

	_, _, _, err = jwt.Parse("otro-secreto", token)
	assert.Error(t, err)
}
