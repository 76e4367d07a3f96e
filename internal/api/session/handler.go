package session

import (
	"context"
	"net/http"
	"strings"

	"github.com/goccy/go-json"

	"grandaura/internal/domain"
	apperror "grandaura/internal/errors"
	"grandaura/internal/pkg/logger"
)

// AuthService é o contrato de autenticação usado pela API JSON.
type AuthService interface {
	Authenticate(ctx context.Context, attempt domain.LoginAttempt) (domain.AuthContext, error)
}

// SessionManager emite e destrói sessões.
type SessionManager interface {
	Issue(ctx context.Context, w http.ResponseWriter, auth domain.AuthContext) (string, domain.AuthContext, error)
	Destroy(ctx context.Context, w http.ResponseWriter, auth domain.AuthContext) error
}

// LoginRequest representa o payload de entrada do login JSON.
type LoginRequest struct {
	Email    string `json:"email" example:"hotel.owner@grandaura.com"`
	Password string `json:"password" example:"hotel123"`
	Role     string `json:"role,omitempty" example:"HOTEL_OWNER"`
}

// Handler agrupa os métodos da API de sessão.
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

// handleServiceResponse padroniza respostas de sucesso e de erro.
func (h *Handler) handleServiceResponse(w http.ResponseWriter, r *http.Request, data interface{}, err error, successStatus int) {
	w.Header().Set("Content-Type", "application/json")

	if err == nil {
		w.WriteHeader(successStatus)
		if data != nil {
			if jsonErr := json.NewEncoder(w).Encode(data); jsonErr != nil {
				h.Logger.Error("Falha ao codificar JSON de resposta", jsonErr)
			}
		}
		return
	}

	status, category, message := apperror.MapToHTTPStatus(err)
	if status >= http.StatusInternalServerError {
		h.Logger.Error("Erro interno na API de sessão.", err)
	} else {
		h.Logger.Debug("Requisição rejeitada.", map[string]interface{}{"path": r.URL.Path, "status": status, "category": category})
	}

	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(domain.ErrorResponse{Code: status, Category: category, Message: message})
}

// CreateSession lida com POST /api/v1/session.
// @Summary Autentica um principal e abre uma sessão
// @Description Verifica a credencial na coleção da role (ou pela política do login genérico), emite o cookie de sessão e devolve o token e o destino da role.
// @Tags session
// @Accept json
// @Produce json
// @Param credentials body LoginRequest true "Email, senha e role opcional"
// @Success 201 {object} domain.SessionResponse "Sessão criada"
// @Failure 400 {object} domain.ErrorResponse "Payload inválido"
// @Failure 401 {object} domain.ErrorResponse "Credenciais inválidas"
// @Failure 500 {object} domain.ErrorResponse "Erro interno do servidor"
// @Router /session [post]
func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.handleServiceResponse(w, r, nil, apperror.NewValidationError("Invalid JSON payload."), http.StatusCreated)
		return
	}

	attempt := domain.LoginAttempt{Email: strings.TrimSpace(req.Email), Password: req.Password}
	if req.Role != "" {
		role, ok := domain.ParseRole(req.Role)
		if !ok {
			h.handleServiceResponse(w, r, nil, apperror.NewCredentialError(apperror.ReasonNotFound), http.StatusCreated)
			return
		}
		attempt.Role = role
	}

	auth, err := h.Service.Authenticate(r.Context(), attempt)
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusCreated)
		return
	}

	signed, issued, err := h.Sessions.Issue(r.Context(), w, auth)
	if err != nil {
		h.handleServiceResponse(w, r, nil, apperror.NewInternalError("failed to issue session", err), http.StatusCreated)
		return
	}

	h.handleServiceResponse(w, r, domain.SessionResponse{
		Token:    signed,
		Role:     issued.Role,
		Redirect: issued.Role.LandingPath(),
	}, nil, http.StatusCreated)
}

// GetSession lida com GET /api/v1/session.
// @Summary Devolve o Authentication Context da sessão atual
// @Tags session
// @Produce json
// @Success 200 {object} domain.AuthContext
// @Failure 401 {object} domain.ErrorResponse "Sem sessão válida"
// @Router /session [get]
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	auth, ok := domain.AuthContextFrom(r.Context())
	if !ok {
		h.handleServiceResponse(w, r, nil, apperror.NewUnauthorizedError("Authentication required."), http.StatusOK)
		return
	}
	h.handleServiceResponse(w, r, auth, nil, http.StatusOK)
}

// DeleteSession lida com DELETE /api/v1/session.
// @Summary Encerra a sessão atual
// @Tags session
// @Success 204 "Sessão revogada"
// @Failure 401 {object} domain.ErrorResponse "Sem sessão válida"
// @Router /session [delete]
func (h *Handler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	auth, ok := domain.AuthContextFrom(r.Context())
	if !ok {
		h.handleServiceResponse(w, r, nil, apperror.NewUnauthorizedError("Authentication required."), http.StatusNoContent)
		return
	}
	if err := h.Sessions.Destroy(r.Context(), w, auth); err != nil {
		h.handleServiceResponse(w, r, nil, apperror.NewInternalError("failed to revoke session", err), http.StatusNoContent)
		return
	}
	h.handleServiceResponse(w, r, nil, nil, http.StatusNoContent)
}
