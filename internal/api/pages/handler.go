package pages

import (
	"context"
	"net/http"

	"grandaura/internal/api/views"
	"grandaura/internal/domain"
	apperror "grandaura/internal/errors"
	"grandaura/internal/pkg/logger"
)

// ProfileReader devolve o principal da sessão (para a saudação dos dashboards).
type ProfileReader interface {
	GetProfile(ctx context.Context, auth domain.AuthContext) (domain.Principal, error)
}

// Handler agrupa as páginas públicas, dashboards e a página de acesso negado.
type Handler struct {
	Profiles ProfileReader
	Logger   logger.Logger
}

// NewHandler cria uma nova instância do Handler.
func NewHandler(profiles ProfileReader, log logger.Logger) *Handler {
	return &Handler{Profiles: profiles, Logger: log}
}

func currentAuth(r *http.Request) *domain.AuthContext {
	if auth, ok := domain.AuthContextFrom(r.Context()); ok {
		return &auth
	}
	return nil
}

// Public devolve o handler de uma página informativa.
func (h *Handler) Public(title, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		views.Render(w, http.StatusOK, views.PublicPage(title, body, currentAuth(r)))
	}
}

// AccessDenied é o destino das decisões Forbidden. GET /access-denied
func (h *Handler) AccessDenied(w http.ResponseWriter, r *http.Request) {
	views.Render(w, http.StatusForbidden, views.AccessDeniedPage(currentAuth(r)))
}

// NotFound renderiza a página 404.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	views.Render(w, http.StatusNotFound, views.ErrorPage("Not found", "The page you requested does not exist.", currentAuth(r)))
}

// Dashboard mostra o dashboard da role da sessão. O gate de namespace já garantiu a role.
// GET /<namespace>/dashboard
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	auth := currentAuth(r)
	if auth == nil {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	principal, err := h.Profiles.GetProfile(r.Context(), *auth)
	if err != nil {
		status, category, message := apperror.MapToHTTPStatus(err)
		if status >= http.StatusInternalServerError {
			h.Logger.Error("Falha ao carregar o principal do dashboard.", err)
		}
		views.Render(w, status, views.ErrorPage(category, message, auth))
		return
	}
	views.Render(w, http.StatusOK, views.DashboardPage(*auth, principal))
}

// Bookings é a vista de reservas partilhada. GET /bookings/my
func (h *Handler) Bookings(w http.ResponseWriter, r *http.Request) {
	auth := currentAuth(r)
	if auth == nil {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	views.Render(w, http.StatusOK, views.BookingsPage(*auth))
}
