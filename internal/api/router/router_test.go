package router_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"grandaura/internal/api/admin"
	"grandaura/internal/api/auth"
	"grandaura/internal/api/pages"
	"grandaura/internal/api/profile"
	"grandaura/internal/api/router"
	apisession "grandaura/internal/api/session"
	"grandaura/internal/domain"
	"grandaura/internal/pkg/cache"
	"grandaura/internal/pkg/logger"
	"grandaura/internal/pkg/middleware"
	"grandaura/internal/pkg/password"
	"grandaura/internal/pkg/session"
	"grandaura/internal/pkg/token"
	"grandaura/internal/repository/memrepo"
	"grandaura/internal/service/authservice"
	"grandaura/internal/service/authzservice"
	"grandaura/internal/service/principalservice"
)

type testApp struct {
	handler http.Handler
	stores  domain.Stores
}

func newTestApp(t *testing.T) *testApp {
	return newTestAppWith(t, nil)
}

// newTestAppWith permite ajustar as dependências do roteador (rate limit, proxies).
func newTestAppWith(t *testing.T, configure func(deps *router.Dependencies, cacheClient cache.Client)) *testApp {
	t.Helper()
	log := logger.NewNopLogger()
	stores := memrepo.NewStores()
	enc, err := password.NewBcryptEncoder(bcrypt.MinCost)
	require.NoError(t, err)

	cacheClient := cache.NewMemoryClient()
	sessions := session.NewManager(token.NewService("router-secret", time.Hour), cacheClient, "GA_SESSION", false)

	authSvc := authservice.NewService(stores, enc, authservice.Options{Dispatch: domain.DispatchCustomer}, log)
	principalSvc := principalservice.NewService(stores, enc, authSvc, sessions, log)
	_, err = principalSvc.Seed(context.Background(), domain.DefaultSeedPrincipals())
	require.NoError(t, err)

	deps := router.Dependencies{
		Sessions: sessions,
		Authz:    authzservice.NewService(log),
		Logger:   log,
	}
	if configure != nil {
		configure(&deps, cacheClient)
	}

	handler := router.NewRouter(router.Handlers{
		Auth:    auth.NewHandler(authSvc, sessions, log),
		Session: apisession.NewHandler(authSvc, sessions, log),
		Pages:   pages.NewHandler(principalSvc, log),
		Profile: profile.NewHandler(principalSvc, log),
		Admin:   admin.NewHandler(principalSvc, log),
	}, deps)
	return &testApp{handler: handler, stores: stores}
}

// client guarda os cookies entre pedidos, como um navegador.
type client struct {
	t       *testing.T
	app     *testApp
	cookies map[string]*http.Cookie
}

func (a *testApp) client(t *testing.T) *client {
	return &client{t: t, app: a, cookies: map[string]*http.Cookie{}}
}

func (c *client) do(req *http.Request) *httptest.ResponseRecorder {
	for _, ck := range c.cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	c.app.handler.ServeHTTP(rec, req)
	for _, ck := range rec.Result().Cookies() {
		if ck.MaxAge < 0 {
			delete(c.cookies, ck.Name)
			continue
		}
		c.cookies[ck.Name] = ck
	}
	return rec
}

func (c *client) get(target string) *httptest.ResponseRecorder {
	return c.do(httptest.NewRequest(http.MethodGet, target, nil))
}

func (c *client) postForm(target string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.do(req)
}

func (c *client) login(email, pass string, role domain.Role) *httptest.ResponseRecorder {
	form := url.Values{"email": {email}, "password": {pass}}
	if role != "" {
		form.Set("role", string(role))
	}
	return c.postForm("/login", form)
}

func TestScenario_RegisterThenLoginAsCustomer(t *testing.T) {
	app := newTestApp(t)
	c := app.client(t)

	rec := c.postForm("/register", url.Values{"email": {"alice@example.com"}, "password": {"password123"}})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login?registered=true", rec.Header().Get("Location"))

	rec = c.login("alice@example.com", "password123", "")
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/bookings/my", rec.Header().Get("Location"))
	require.Contains(t, c.cookies, "GA_SESSION")

	rec = c.get("/bookings/my")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "alice@example.com")

	rec = c.get("/hotel-owner/dashboard")
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/access-denied", rec.Header().Get("Location"))
}

func TestScenario_DuplicateRegistration(t *testing.T) {
	app := newTestApp(t)
	c := app.client(t)

	c.postForm("/register", url.Values{"email": {"alice@example.com"}, "password": {"password123"}})
	rec := c.postForm("/register", url.Values{"email": {"alice@example.com"}, "password": {"password456"}})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "An account with this email already exists.")

	rec = c.postForm("/register", url.Values{"email": {"bob@example.com"}, "password": {"short"}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestScenario_HotelOwnerNamespaces(t *testing.T) {
	app := newTestApp(t)
	c := app.client(t)

	rec := c.login("hotel.owner@grandaura.com", "hotel123", domain.RoleHotelOwner)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/hotel-owner/dashboard", rec.Header().Get("Location"))

	rec = c.get("/hotel-owner/dashboard")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "John Smith")

	rec = c.get("/system-admin/dashboard")
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/access-denied", rec.Header().Get("Location"))

	// A sessão sobrevive à negação.
	rec = c.get("/access-denied")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = c.get("/hotel-owner/dashboard")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = c.get("/bookings/my")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestScenario_FailureRoutesToRoleLoginPage(t *testing.T) {
	app := newTestApp(t)
	c := app.client(t)

	rec := c.login("hotel.owner@grandaura.com", "wrong", domain.RoleHotelOwner)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/hotel-owner/login?error=true", rec.Header().Get("Location"))
	assert.NotContains(t, c.cookies, "GA_SESSION")

	unknown := c.login("nobody@grandaura.com", "hotel123", domain.RoleHotelOwner)
	assert.Equal(t, rec.Header().Get("Location"), unknown.Header().Get("Location"))

	rec = c.get("/hotel-owner/login?error=true")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid credentials.")

	// Formulário genérico: staff não está na coleção de clientes.
	rec = c.login("hotel.owner@grandaura.com", "hotel123", "")
	assert.Equal(t, "/login?error=true", rec.Header().Get("Location"))
}

func TestScenario_RefererIsIgnored(t *testing.T) {
	app := newTestApp(t)
	c := app.client(t)

	form := url.Values{"email": {"admin@grandaura.com"}, "password": {"wrong"}, "role": {"SYSTEM_ADMIN"}}
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Referer", "http://localhost/catering-manager/login")

	rec := c.do(req)
	assert.Equal(t, "/system-admin/login?error=true", rec.Header().Get("Location"))
}

func TestScenario_AdminDisablesPrincipal(t *testing.T) {
	app := newTestApp(t)
	admin := app.client(t)

	rec := admin.login("admin@grandaura.com", "admin123", domain.RoleSystemAdmin)
	require.Equal(t, "/system-admin/dashboard", rec.Header().Get("Location"))

	owner, err := app.stores[domain.RoleHotelOwner].FindByEmail(context.Background(), "hotel.owner@grandaura.com")
	require.NoError(t, err)

	rec = admin.postForm("/system-admin/users/hotel-owners/"+owner.ID+"/toggle", nil)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/system-admin/users?msg=toggled", rec.Header().Get("Location"))

	rec = app.client(t).login("hotel.owner@grandaura.com", "hotel123", domain.RoleHotelOwner)
	assert.Equal(t, "/hotel-owner/login?error=true", rec.Header().Get("Location"))
}

func TestScenario_AdminUserManagement(t *testing.T) {
	app := newTestApp(t)
	c := app.client(t)
	c.login("admin@grandaura.com", "admin123", domain.RoleSystemAdmin)

	rec := c.get("/system-admin/users")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "frontdesk@grandaura.com")

	rec = c.postForm("/system-admin/users/create", url.Values{
		"user_type":    {"front-desk-officers"},
		"email":        {"night.shift@grandaura.com"},
		"password":     {"nightshift1"},
		"display_name": {"Night Shift"},
		"enabled":      {"true"},
	})
	require.Equal(t, http.StatusSeeOther, rec.Code)

	rec = app.client(t).login("night.shift@grandaura.com", "nightshift1", domain.RoleFrontDesk)
	assert.Equal(t, "/front-desk/dashboard", rec.Header().Get("Location"))

	rec = c.postForm("/system-admin/users/create", url.Values{
		"user_type": {"front-desk-officers"},
		"email":     {"night.shift@grandaura.com"},
		"password":  {"nightshift1"},
	})
	assert.Equal(t, http.StatusConflict, rec.Code)

	created, err := app.stores[domain.RoleFrontDesk].FindByEmail(context.Background(), "night.shift@grandaura.com")
	require.NoError(t, err)
	rec = c.postForm("/system-admin/users/front-desk-officers/"+created.ID+"/delete", nil)
	assert.Equal(t, "/system-admin/users?msg=deleted", rec.Header().Get("Location"))

	rec = c.postForm("/system-admin/users/front-desk-officers/"+created.ID+"/delete", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = c.postForm("/system-admin/users/wizards/"+created.ID+"/toggle", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestScenario_ProfileUpdate(t *testing.T) {
	app := newTestApp(t)
	c := app.client(t)
	c.login("catering@grandaura.com", "catering123", domain.RoleCateringManager)

	rec := c.postForm("/catering-manager/profile", url.Values{
		"display_name": {"Michael Chen"},
		"department":   {"Banquets"},
		"phone_number": {"+1-555-0199"},
	})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/catering-manager/profile?updated=true", rec.Header().Get("Location"))

	rec = c.get("/catering-manager/profile?updated=true")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Banquets")

	rec = c.postForm("/catering-manager/profile", url.Values{"current_password": {"nope"}, "new_password": {"catering456"}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Current password is incorrect.")
}

func TestScenario_LogoutRevokesSession(t *testing.T) {
	app := newTestApp(t)
	c := app.client(t)
	c.login("frontdesk@grandaura.com", "frontdesk123", domain.RoleFrontDesk)
	stolen := *c.cookies["GA_SESSION"]

	rec := c.postForm("/logout", nil)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))
	assert.NotContains(t, c.cookies, "GA_SESSION")

	req := httptest.NewRequest(http.MethodGet, "/front-desk/dashboard", nil)
	req.AddCookie(&stolen)
	rec = httptest.NewRecorder()
	app.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/front-desk/login", rec.Header().Get("Location"))
}

func TestSessionAPI(t *testing.T) {
	app := newTestApp(t)
	c := app.client(t)

	body := `{"email":"coordinator@grandaura.com","password":"coordinator123","role":"event-coordinator"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/session", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := c.do(req)
	require.Equal(t, http.StatusCreated, rec.Code)

	var created domain.SessionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, domain.RoleEventCoordinator, created.Role)
	assert.Equal(t, "/event-coordinator/dashboard", created.Redirect)

	req = httptest.NewRequest(http.MethodGet, "/api/v1/session", nil)
	req.Header.Set("Authorization", "Bearer "+created.Token)
	rec = httptest.NewRecorder()
	app.handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	var current domain.AuthContext
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &current))
	assert.Equal(t, "coordinator@grandaura.com", current.Email)

	rec = httptest.NewRecorder()
	app.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/session", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	bad := httptest.NewRequest(http.MethodPost, "/api/v1/session", strings.NewReader(`{"email":"coordinator@grandaura.com","password":"x","role":"EVENT_COORDINATOR"}`))
	rec = httptest.NewRecorder()
	app.handler.ServeHTTP(rec, bad)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	var errBody domain.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &errBody))
	assert.Equal(t, "Invalid credentials.", errBody.Message)

	rec = c.do(httptest.NewRequest(http.MethodDelete, "/api/v1/session", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestOperationalAndPublicRoutes(t *testing.T) {
	app := newTestApp(t)
	c := app.client(t)

	rec := c.get("/ping")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "pong", rec.Body.String())

	assert.Equal(t, http.StatusOK, c.get("/metrics").Code)
	assert.Equal(t, http.StatusOK, c.get("/css/app.css").Code)

	for _, p := range []string{"/", "/gallery", "/contact", "/privacy", "/terms", "/cookies", "/refund", "/login", "/register"} {
		assert.Equal(t, http.StatusOK, c.get(p).Code, p)
	}
	for _, role := range domain.StaffRoles() {
		assert.Equal(t, http.StatusOK, c.get(role.LoginPath()).Code, role)
	}

	// Rotas desconhecidas exigem sessão; autenticado recebe 404.
	rec = c.get("/reports/monthly")
	assert.Equal(t, "/login", rec.Header().Get("Location"))

	c.login("admin@grandaura.com", "admin123", domain.RoleSystemAdmin)
	assert.Equal(t, http.StatusNotFound, c.get("/reports/monthly").Code)
}

func TestScenario_OverlongPasswordIsFormError(t *testing.T) {
	app := newTestApp(t)
	c := app.client(t)

	rec := c.postForm("/register", url.Values{"email": {"long@example.com"}, "password": {strings.Repeat("a", 100)}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "password must be at most 72 characters")

	// 80 bytes em 40 runas: só o encoder percebe.
	rec = c.postForm("/register", url.Values{"email": {"long@example.com"}, "password": {strings.Repeat("é", 40)}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "password must be at most 72 bytes")

	_, err := app.stores[domain.RoleCustomer].FindByEmail(context.Background(), "long@example.com")
	assert.Error(t, err)
}

func TestScenario_LoginRateLimitIgnoresSpoofedForwardedFor(t *testing.T) {
	app := newTestAppWith(t, func(deps *router.Dependencies, cacheClient cache.Client) {
		deps.RateLimiter = middleware.RateLimiter(cacheClient, 3, time.Minute, logger.NewNopLogger())
	})

	limited := 0
	for i := 0; i < 20; i++ {
		form := url.Values{"email": {"admin@grandaura.com"}, "password": {fmt.Sprintf("guess-%d", i)}, "role": {"SYSTEM_ADMIN"}}
		req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.RemoteAddr = "203.0.113.5:5000"
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("198.51.100.%d", i))
		rec := httptest.NewRecorder()
		app.handler.ServeHTTP(rec, req)
		if rec.Code == http.StatusTooManyRequests {
			limited++
		}
	}
	assert.Equal(t, 17, limited)
}

func TestScenario_TrustedProxyForwardsClientIP(t *testing.T) {
	trusted, err := middleware.ParseTrustedProxies([]string{"10.0.0.0/8"})
	require.NoError(t, err)
	app := newTestAppWith(t, func(deps *router.Dependencies, cacheClient cache.Client) {
		deps.RateLimiter = middleware.RateLimiter(cacheClient, 1, time.Minute, logger.NewNopLogger())
		deps.TrustedProxies = trusted
	})

	send := func(client string) int {
		form := url.Values{"email": {"admin@grandaura.com"}, "password": {"wrong"}}
		req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.RemoteAddr = "10.0.0.1:443"
		req.Header.Set("X-Forwarded-For", client)
		rec := httptest.NewRecorder()
		app.handler.ServeHTTP(rec, req)
		return rec.Code
	}

	// Clientes distintos atrás do mesmo proxy têm contadores separados.
	assert.Equal(t, http.StatusSeeOther, send("198.51.100.1"))
	assert.Equal(t, http.StatusSeeOther, send("198.51.100.2"))
	assert.Equal(t, http.StatusTooManyRequests, send("198.51.100.1"))
}

func TestScenario_AdminMalformedIDIsNotFound(t *testing.T) {
	app := newTestApp(t)
	c := app.client(t)
	c.login("admin@grandaura.com", "admin123", domain.RoleSystemAdmin)

	for _, action := range []string{"toggle", "delete", "update"} {
		rec := c.postForm("/system-admin/users/hotel-owners/not-a-uuid/"+action, url.Values{"email": {"x@grandaura.com"}})
		assert.Equal(t, http.StatusNotFound, rec.Code, action)
	}
}

func TestScenario_DisablingEndsLiveSessions(t *testing.T) {
	app := newTestApp(t)
	admin := app.client(t)
	admin.login("admin@grandaura.com", "admin123", domain.RoleSystemAdmin)

	owner := app.client(t)
	owner.login("hotel.owner@grandaura.com", "hotel123", domain.RoleHotelOwner)
	require.Equal(t, http.StatusOK, owner.get("/hotel-owner/dashboard").Code)

	p, err := app.stores[domain.RoleHotelOwner].FindByEmail(context.Background(), "hotel.owner@grandaura.com")
	require.NoError(t, err)
	toggleURL := "/system-admin/users/hotel-owners/" + p.ID + "/toggle"

	require.Equal(t, http.StatusSeeOther, admin.postForm(toggleURL, nil).Code)

	rec := owner.get("/hotel-owner/dashboard")
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/hotel-owner/login", rec.Header().Get("Location"))

	// Reativado: o token antigo continua morto, um novo login funciona.
	require.Equal(t, http.StatusSeeOther, admin.postForm(toggleURL, nil).Code)
	assert.Equal(t, http.StatusSeeOther, owner.get("/hotel-owner/dashboard").Code)

	owner.login("hotel.owner@grandaura.com", "hotel123", domain.RoleHotelOwner)
	assert.Equal(t, http.StatusOK, owner.get("/hotel-owner/dashboard").Code)
}
