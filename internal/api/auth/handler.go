package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"grandaura/internal/api/views"
	"grandaura/internal/domain"
	apperror "grandaura/internal/errors"
	"grandaura/internal/pkg/logger"
)

// AuthService define o contrato de login e registro esperado pelos formulários.
type AuthService interface {
	Authenticate(ctx context.Context, attempt domain.LoginAttempt) (domain.AuthContext, error)
	Register(ctx context.Context, registration domain.Registration) (domain.Principal, error)
}

// SessionManager emite e destrói a sessão baseada em cookie.
type SessionManager interface {
	Issue(ctx context.Context, w http.ResponseWriter, auth domain.AuthContext) (string, domain.AuthContext, error)
	Destroy(ctx context.Context, w http.ResponseWriter, auth domain.AuthContext) error
}

// Handler agrupa os handlers HTML de autenticação.
type Handler struct {
	Service  AuthService
	Sessions SessionManager
	Logger   logger.Logger
}

// NewHandler cria uma nova instância do Handler.
func NewHandler(svc AuthService, sessions SessionManager, log logger.Logger) *Handler {
	return &Handler{
		Service:  svc,
		Sessions: sessions,
		Logger:   log,
	}
}

func currentAuth(r *http.Request) *domain.AuthContext {
	if auth, ok := domain.AuthContextFrom(r.Context()); ok {
		return &auth
	}
	return nil
}

// renderError mostra uma página de erro com o status de MapToHTTPStatus.
func (h *Handler) renderError(w http.ResponseWriter, r *http.Request, err error) {
	status, category, message := apperror.MapToHTTPStatus(err)
	if status >= http.StatusInternalServerError {
		h.Logger.Error("Erro interno no fluxo de autenticação.", err)
	}
	views.Render(w, status, views.ErrorPage(category, message, currentAuth(r)))
}

// LoginPage devolve o handler da página de login da role (vazio = formulário genérico).
// GET /login, GET /<namespace>/login
func (h *Handler) LoginPage(role domain.Role) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		views.Render(w, http.StatusOK, views.LoginPage(views.LoginView{
			Role:       role,
			Failed:     q.Has("error"),
			LoggedOut:  q.Has("logout"),
			Registered: q.Has("registered"),
		}))
	}
}

// Login processa POST /login. A role vem do campo oculto do formulário e decide
// tanto a coleção consultada quanto a rota de falha; o Referer nunca é lido.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Redirect(w, r, domain.RoleCustomer.FailurePath(), http.StatusSeeOther)
		return
	}

	attempt := domain.LoginAttempt{
		Email:    strings.TrimSpace(r.PostFormValue("email")),
		Password: r.PostFormValue("password"),
	}
	failurePath := domain.RoleCustomer.FailurePath()

	if raw := r.PostFormValue("role"); raw != "" {
		role, ok := domain.ParseRole(raw)
		if !ok {
			h.Logger.Warn("Login com role desconhecida.", map[string]interface{}{"role": raw})
			http.Redirect(w, r, failurePath, http.StatusSeeOther)
			return
		}
		attempt.Role = role
		failurePath = role.FailurePath()
	}

	auth, err := h.Service.Authenticate(r.Context(), attempt)
	if err != nil {
		if _, isCredential := apperror.CredentialFailureReason(err); isCredential {
			http.Redirect(w, r, failurePath, http.StatusSeeOther)
			return
		}
		h.renderError(w, r, err)
		return
	}

	if _, _, err := h.Sessions.Issue(r.Context(), w, auth); err != nil {
		h.renderError(w, r, apperror.NewInternalError("failed to issue session", err))
		return
	}
	http.Redirect(w, r, auth.Role.LandingPath(), http.StatusSeeOther)
}

// Logout revoga a sessão, apaga o cookie e volta à página inicial.
// GET|POST /logout
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	var auth domain.AuthContext
	if current := currentAuth(r); current != nil {
		auth = *current
	}
	if err := h.Sessions.Destroy(r.Context(), w, auth); err != nil {
		h.Logger.Error("Falha ao revogar sessão no logout.", err)
	}
	if auth.PrincipalID != "" {
		h.Logger.Info("Sessão encerrada.", map[string]interface{}{"principal_id": auth.PrincipalID, "role": auth.Role})
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// RegisterPage devolve o formulário de registro. GET /register
func (h *Handler) RegisterPage(w http.ResponseWriter, r *http.Request) {
	views.Render(w, http.StatusOK, views.RegisterPage(views.RegisterView{}))
}

// Register processa POST /register. Erros de validação e duplicidade voltam ao
// formulário com a mensagem e o status correspondente (400 / 409).
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		views.Render(w, http.StatusBadRequest, views.RegisterPage(views.RegisterView{Error: "Invalid form submission."}))
		return
	}

	reg := domain.Registration{
		Email:    strings.TrimSpace(r.PostFormValue("email")),
		Password: r.PostFormValue("password"),
	}

	if _, err := h.Service.Register(r.Context(), reg); err != nil {
		var validationErr *apperror.ValidationError
		var conflictErr *apperror.ConflictError
		if errors.As(err, &validationErr) || errors.As(err, &conflictErr) {
			status, _, message := apperror.MapToHTTPStatus(err)
			views.Render(w, status, views.RegisterPage(views.RegisterView{Email: reg.Email, Error: message}))
			return
		}
		h.renderError(w, r, err)
		return
	}

	http.Redirect(w, r, "/login?registered=true", http.StatusSeeOther)
}
