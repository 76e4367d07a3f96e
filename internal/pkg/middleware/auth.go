package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/goccy/go-json"

	"grandaura/internal/domain"
	apperror "grandaura/internal/errors"
	"grandaura/internal/pkg/logger"
	"grandaura/internal/pkg/session"
	"grandaura/internal/service/authzservice"
)

// SessionResolver define o contrato de resolução de sessão necessário para o middleware.
type SessionResolver interface {
	Resolve(ctx context.Context, r *http.Request) (domain.AuthContext, error)
}

// AccessDecider decide o acesso de uma identidade a um caminho.
type AccessDecider interface {
	Decide(ctx context.Context, path string, auth *domain.AuthContext) authzservice.Decision
	LoginPathFor(path string) string
}

// NewSessionMiddleware resolve o cookie (ou Bearer) e anexa o Authentication Context ao contexto.
// Pedidos sem sessão válida seguem anónimos; o gate decide o resto.
func NewSessionMiddleware(sessions SessionResolver, log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth, err := sessions.Resolve(r.Context(), r)
			if err != nil {
				if !errors.Is(err, session.ErrNoSession) {
					// Falha ao consultar revogações: o pedido segue anónimo (fail closed).
					log.Error("Falha ao resolver sessão.", err)
				}
				next.ServeHTTP(w, r)
				return
			}

			ctx := domain.WithAuthContext(r.Context(), auth)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// isJSONRequest identifica a superfície JSON, que recebe 401/403 em vez de redirecionamentos.
func isJSONRequest(r *http.Request) bool {
	accept := r.Header.Get("Accept")
	return strings.HasPrefix(r.URL.Path, "/api/") ||
		(strings.Contains(accept, "application/json") && !strings.Contains(accept, "text/html"))
}

// NewNamespaceGate aplica a tabela de autorização a cada pedido.
// Anónimo em área protegida: redireciona para o login do namespace.
// Role errada: redireciona para /access-denied sem invalidar a sessão.
func NewNamespaceGate(decider AccessDecider) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var current *domain.AuthContext
			if auth, ok := domain.AuthContextFrom(r.Context()); ok {
				current = &auth
			}

			switch decider.Decide(r.Context(), r.URL.Path, current) {
			case authzservice.Unauthenticated:
				if isJSONRequest(r) {
					WriteJSONError(w, apperror.NewUnauthorizedError("Authentication required."))
					return
				}
				http.Redirect(w, r, decider.LoginPathFor(r.URL.Path), http.StatusSeeOther)
			case authzservice.Forbidden:
				if isJSONRequest(r) {
					WriteJSONError(w, apperror.NewForbiddenError("Access denied."))
					return
				}
				http.Redirect(w, r, authzservice.AccessDeniedPath, http.StatusSeeOther)
			default:
				next.ServeHTTP(w, r)
			}
		})
	}
}

// WriteJSONError traduz err via MapToHTTPStatus e escreve domain.ErrorResponse.
func WriteJSONError(w http.ResponseWriter, err error) {
	status, category, message := apperror.MapToHTTPStatus(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(domain.ErrorResponse{
		Code:     status,
		Category: category,
		Message:  message,
	})
}
