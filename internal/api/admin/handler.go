package admin

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"grandaura/internal/api/views"
	"grandaura/internal/domain"
	apperror "grandaura/internal/errors"
	"grandaura/internal/pkg/logger"
)

// PrincipalService é o contrato da gestão administrativa de principais.
type PrincipalService interface {
	ListAll(ctx context.Context) ([]domain.Principal, error)
	Create(ctx context.Context, req domain.NewPrincipalRequest) (domain.Principal, error)
	Update(ctx context.Context, role domain.Role, id string, update domain.PrincipalUpdate) (domain.Principal, error)
	Toggle(ctx context.Context, role domain.Role, id string) (domain.Principal, error)
	Delete(ctx context.Context, role domain.Role, id string) error
}

// Handler agrupa as páginas /system-admin/users.
type Handler struct {
	Service PrincipalService
	Logger  logger.Logger
}

// NewHandler cria uma nova instância do Handler.
func NewHandler(svc PrincipalService, log logger.Logger) *Handler {
	return &Handler{Service: svc, Logger: log}
}

// flashMessages mapeia os códigos do redirecionamento pós-POST para mensagens.
var flashMessages = map[string]string{
	"created": "User created.",
	"updated": "User updated.",
	"toggled": "User status changed.",
	"deleted": "User deleted.",
}

func sessionAuth(r *http.Request) domain.AuthContext {
	auth, _ := domain.AuthContextFrom(r.Context())
	return auth
}

// isClientError identifica falhas que voltam à página com a mensagem inline.
func isClientError(err error) bool {
	var validationErr *apperror.ValidationError
	var conflictErr *apperror.ConflictError
	var notFoundErr *apperror.NotFoundError
	return errors.As(err, &validationErr) || errors.As(err, &conflictErr) || errors.As(err, &notFoundErr)
}

func (h *Handler) renderList(w http.ResponseWriter, r *http.Request, status int, message, errMsg string) {
	auth := sessionAuth(r)
	principals, err := h.Service.ListAll(r.Context())
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	views.Render(w, status, views.AdminUsersPage(views.AdminUsersView{
		Auth:       auth,
		Principals: principals,
		Message:    message,
		Error:      errMsg,
	}))
}

func (h *Handler) renderError(w http.ResponseWriter, r *http.Request, err error) {
	status, category, message := apperror.MapToHTTPStatus(err)
	if status >= http.StatusInternalServerError {
		h.Logger.Error("Erro interno na administração de usuários.", err)
	}
	auth := sessionAuth(r)
	views.Render(w, status, views.ErrorPage(category, message, &auth))
}

// ListUsers lista os principais de todas as coleções. GET /system-admin/users
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	h.renderList(w, r, http.StatusOK, flashMessages[r.URL.Query().Get("msg")], "")
}

// AddUserPage mostra o formulário de criação. GET /system-admin/users/add
func (h *Handler) AddUserPage(w http.ResponseWriter, r *http.Request) {
	views.Render(w, http.StatusOK, views.AdminAddUserPage(views.AdminAddUserView{
		Auth: sessionAuth(r),
		Form: domain.NewPrincipalRequest{Role: domain.RoleHotelOwner, Enabled: true},
	}))
}

// CreateUser cria um principal da role escolhida. POST /system-admin/users/create
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderError(w, r, apperror.NewValidationError("Invalid form submission."))
		return
	}

	req := domain.NewPrincipalRequest{
		Email:       strings.TrimSpace(r.PostFormValue("email")),
		Password:    r.PostFormValue("password"),
		DisplayName: strings.TrimSpace(r.PostFormValue("display_name")),
		Department:  strings.TrimSpace(r.PostFormValue("department")),
		PhoneNumber: strings.TrimSpace(r.PostFormValue("phone_number")),
		Enabled:     r.PostFormValue("enabled") == "true",
	}
	userType := r.PostFormValue("user_type")
	if role, ok := domain.RoleFromSlug(userType); ok {
		req.Role = role
	} else if role, ok := domain.ParseRole(userType); ok {
		req.Role = role
	}

	created, err := h.Service.Create(r.Context(), req)
	if err != nil {
		if isClientError(err) {
			status, _, message := apperror.MapToHTTPStatus(err)
			views.Render(w, status, views.AdminAddUserPage(views.AdminAddUserView{Auth: sessionAuth(r), Form: req, Error: message}))
			return
		}
		h.renderError(w, r, err)
		return
	}

	h.Logger.Info("Usuário criado via painel.", map[string]interface{}{"role": created.Role, "principal_id": created.ID, "by": sessionAuth(r).PrincipalID})
	http.Redirect(w, r, "/system-admin/users?msg=created", http.StatusSeeOther)
}

// target resolve {roleSlug} e {id} da URL.
func target(r *http.Request) (domain.Role, string, error) {
	role, ok := domain.RoleFromSlug(chi.URLParam(r, "roleSlug"))
	if !ok {
		return "", "", apperror.NewNotFoundError("unknown user type")
	}
	return role, chi.URLParam(r, "id"), nil
}

// UpdateUser altera nome, email e estado. POST /system-admin/users/{roleSlug}/{id}/update
func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	role, id, err := target(r)
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	if err := r.ParseForm(); err != nil {
		h.renderError(w, r, apperror.NewValidationError("Invalid form submission."))
		return
	}

	update := domain.PrincipalUpdate{
		DisplayName: strings.TrimSpace(r.PostFormValue("display_name")),
		Email:       strings.TrimSpace(r.PostFormValue("email")),
		Enabled:     r.PostFormValue("enabled") == "true",
	}
	if _, err := h.Service.Update(r.Context(), role, id, update); err != nil {
		h.afterMutation(w, r, err)
		return
	}
	http.Redirect(w, r, "/system-admin/users?msg=updated", http.StatusSeeOther)
}

// ToggleUser ativa/desativa o principal. POST /system-admin/users/{roleSlug}/{id}/toggle
func (h *Handler) ToggleUser(w http.ResponseWriter, r *http.Request) {
	role, id, err := target(r)
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	if _, err := h.Service.Toggle(r.Context(), role, id); err != nil {
		h.afterMutation(w, r, err)
		return
	}
	http.Redirect(w, r, "/system-admin/users?msg=toggled", http.StatusSeeOther)
}

// DeleteUser remove o principal. POST /system-admin/users/{roleSlug}/{id}/delete
func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	role, id, err := target(r)
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	if err := h.Service.Delete(r.Context(), role, id); err != nil {
		h.afterMutation(w, r, err)
		return
	}
	http.Redirect(w, r, "/system-admin/users?msg=deleted", http.StatusSeeOther)
}

func (h *Handler) afterMutation(w http.ResponseWriter, r *http.Request, err error) {
	if isClientError(err) {
		status, _, message := apperror.MapToHTTPStatus(err)
		h.renderList(w, r, status, "", message)
		return
	}
	h.renderError(w, r, err)
}
