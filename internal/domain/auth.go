package domain

import (
	"context"
	"time"
)

// AuthContext é a identidade resolvida após um login bem-sucedido.
// É imutável e usada em todas as verificações de autorização da sessão.
type AuthContext struct {
	PrincipalID string    `json:"principal_id"`
	Email       string    `json:"email"`
	Role        Role      `json:"role"`
	Enabled     bool      `json:"enabled"`
	SessionID   string    `json:"-"`
	Generation  int64     `json:"-"` // geração de sessões do principal na emissão
	ExpiresAt   time.Time `json:"expires_at,omitempty"`
}

// LoginAttempt é o pedido de autenticação. Role vazio significa que o formulário
// genérico foi usado e o despacho é decidido pela política configurada.
type LoginAttempt struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
	Role     Role   `json:"role,omitempty"`
}

// DispatchMode define como o formulário genérico (sem role) escolhe o repositório.
type DispatchMode string

const (
	// DispatchCustomer limita o formulário genérico ao repositório de clientes.
	DispatchCustomer DispatchMode = "customer"
	// DispatchPriority tenta cada repositório pela ordem de prioridade e para no primeiro que contém o email.
	DispatchPriority DispatchMode = "priority"
)

type authContextKey struct{}

// WithAuthContext anexa a identidade autenticada ao contexto.
func WithAuthContext(ctx context.Context, auth AuthContext) context.Context {
	return context.WithValue(ctx, authContextKey{}, auth)
}

// AuthContextFrom extrai a identidade autenticada do contexto, se existir.
func AuthContextFrom(ctx context.Context) (AuthContext, bool) {
	auth, ok := ctx.Value(authContextKey{}).(AuthContext)
	return auth, ok
}
