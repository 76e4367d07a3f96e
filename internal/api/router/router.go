package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	_ "grandaura/docs" // documento swagger da API de sessão

	"grandaura/internal/api/admin"
	"grandaura/internal/api/auth"
	"grandaura/internal/api/pages"
	"grandaura/internal/api/profile"
	"grandaura/internal/api/session"
	"grandaura/internal/api/views"
	"grandaura/internal/domain"
	"grandaura/internal/pkg/logger"
	"grandaura/internal/pkg/middleware"
)

// Handlers agrupa os handlers já inicializados por injeção de dependências.
type Handlers struct {
	Auth    *auth.Handler
	Session *session.Handler
	Pages   *pages.Handler
	Profile *profile.Handler
	Admin   *admin.Handler
}

// Dependencies são as peças transversais aplicadas como middleware.
type Dependencies struct {
	Sessions       middleware.SessionResolver
	Authz          middleware.AccessDecider
	RateLimiter    func(http.Handler) http.Handler
	TrustedProxies middleware.TrustedProxies // zero = X-Forwarded-For ignorado
	Logger         logger.Logger
}

// publicPages são as páginas informativas abertas a todos.
var publicPages = []struct {
	path, title, body string
}{
	{"/gallery", "Gallery", "Our venues, suites and banquet halls."},
	{"/contact", "Contact", "Reach the Grand Aura team at reservations@grandaura.com."},
	{"/privacy", "Privacy policy", "We only keep the data needed to manage your bookings."},
	{"/terms", "Terms of service", "Bookings are subject to availability and venue rules."},
	{"/cookies", "Cookie policy", "We use a single session cookie to keep you signed in."},
	{"/refund", "Refund policy", "Cancellations made 14 days before the event are fully refunded."},
}

// NewRouter configura e retorna o roteador HTTP principal.
func NewRouter(h Handlers, deps Dependencies) http.Handler {
	r := chi.NewRouter()

	limit := deps.RateLimiter
	if limit == nil {
		limit = func(next http.Handler) http.Handler { return next }
	}

	// --- 1. Middlewares globais ---
	r.Use(chimiddleware.RequestID)
	r.Use(middleware.RealIP(deps.TrustedProxies))
	r.Use(middleware.AccessLog(deps.Logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.NewSessionMiddleware(deps.Sessions, deps.Logger))
	r.Use(middleware.NewNamespaceGate(deps.Authz))

	r.NotFound(h.Pages.NotFound)

	// --- 2. Operacional ---
	r.Get("/ping", PingHandler)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))
	r.Handle("/css/*", http.FileServer(http.FS(views.Static())))

	// --- 3. Páginas públicas ---
	r.Get("/", h.Pages.Public("Grand Aura", "Hotel stays, weddings and events under one roof."))
	for _, p := range publicPages {
		r.Get(p.path, h.Pages.Public(p.title, p.body))
	}
	r.Get("/access-denied", h.Pages.AccessDenied)

	// --- 4. Autenticação ---
	r.Get("/login", h.Auth.LoginPage(""))
	r.With(limit).Post("/login", h.Auth.Login)
	r.Get("/logout", h.Auth.Logout)
	r.Post("/logout", h.Auth.Logout)
	r.Get("/register", h.Auth.RegisterPage)
	r.With(limit).Post("/register", h.Auth.Register)

	// --- 5. Área partilhada de reservas ---
	r.Get("/bookings", redirectTo("/bookings/my"))
	r.Get("/bookings/my", h.Pages.Bookings)

	// --- 6. Namespaces de staff ---
	for _, role := range domain.StaffRoles() {
		ns := role.Namespace()
		r.Route(ns, func(r chi.Router) {
			r.Get("/", redirectTo(role.LandingPath()))
			r.Get("/login", h.Auth.LoginPage(role))
			r.Get("/dashboard", h.Pages.Dashboard)
			r.Get("/profile", h.Profile.Show)
			r.Post("/profile", h.Profile.Update)
			if role == domain.RoleSystemAdmin {
				r.Route("/users", func(r chi.Router) {
					r.Get("/", h.Admin.ListUsers)
					r.Get("/add", h.Admin.AddUserPage)
					r.Post("/create", h.Admin.CreateUser)
					r.Post("/{roleSlug}/{id}/update", h.Admin.UpdateUser)
					r.Post("/{roleSlug}/{id}/toggle", h.Admin.ToggleUser)
					r.Post("/{roleSlug}/{id}/delete", h.Admin.DeleteUser)
				})
			}
		})
	}

	// --- 7. API JSON de sessão ---
	r.Route("/api/v1/session", func(r chi.Router) {
		r.With(limit).Post("/", h.Session.CreateSession)
		r.Get("/", h.Session.GetSession)
		r.Delete("/", h.Session.DeleteSession)
	})

	return r
}

func redirectTo(target string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, target, http.StatusSeeOther)
	}
}

// PingHandler é uma função utilitária para o health check.
func PingHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("pong"))
}
