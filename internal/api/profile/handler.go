package profile

import (
	"context"
	"errors"
	"net/http"

	"grandaura/internal/api/views"
	"grandaura/internal/domain"
	apperror "grandaura/internal/errors"
	"grandaura/internal/pkg/logger"
)

// ProfileService é o contrato do perfil self-service.
type ProfileService interface {
	GetProfile(ctx context.Context, auth domain.AuthContext) (domain.Principal, error)
	UpdateProfile(ctx context.Context, auth domain.AuthContext, update domain.ProfileUpdate) (domain.Principal, error)
}

// Handler agrupa os handlers do perfil.
type Handler struct {
	Service ProfileService
	Logger  logger.Logger
}

// NewHandler cria uma nova instância do Handler.
func NewHandler(svc ProfileService, log logger.Logger) *Handler {
	return &Handler{Service: svc, Logger: log}
}

func (h *Handler) renderError(w http.ResponseWriter, auth *domain.AuthContext, err error) {
	status, category, message := apperror.MapToHTTPStatus(err)
	if status >= http.StatusInternalServerError {
		h.Logger.Error("Erro interno no perfil.", err)
	}
	views.Render(w, status, views.ErrorPage(category, message, auth))
}

// Show mostra o perfil da sessão. GET /<namespace>/profile
func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	auth, ok := domain.AuthContextFrom(r.Context())
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	principal, err := h.Service.GetProfile(r.Context(), auth)
	if err != nil {
		h.renderError(w, &auth, err)
		return
	}

	msg := ""
	if r.URL.Query().Has("updated") {
		msg = "Profile updated."
	}
	views.Render(w, http.StatusOK, views.ProfilePage(views.ProfileView{Auth: auth, Principal: principal, Message: msg}))
}

// Update aplica a alteração de perfil. POST /<namespace>/profile
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	auth, ok := domain.AuthContextFrom(r.Context())
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	if err := r.ParseForm(); err != nil {
		h.renderError(w, &auth, apperror.NewValidationError("Invalid form submission."))
		return
	}

	update := domain.ProfileUpdate{
		DisplayName:     r.PostFormValue("display_name"),
		Department:      r.PostFormValue("department"),
		PhoneNumber:     r.PostFormValue("phone_number"),
		CurrentPassword: r.PostFormValue("current_password"),
		NewPassword:     r.PostFormValue("new_password"),
	}

	if _, err := h.Service.UpdateProfile(r.Context(), auth, update); err != nil {
		var validationErr *apperror.ValidationError
		var conflictErr *apperror.ConflictError
		if errors.As(err, &validationErr) || errors.As(err, &conflictErr) {
			principal, getErr := h.Service.GetProfile(r.Context(), auth)
			if getErr != nil {
				h.renderError(w, &auth, getErr)
				return
			}
			status, _, message := apperror.MapToHTTPStatus(err)
			views.Render(w, status, views.ProfilePage(views.ProfileView{Auth: auth, Principal: principal, Error: message}))
			return
		}
		h.renderError(w, &auth, err)
		return
	}

	http.Redirect(w, r, auth.Role.Namespace()+"/profile?updated=true", http.StatusSeeOther)
}
