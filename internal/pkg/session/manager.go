package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"grandaura/internal/domain"
	"grandaura/internal/pkg/cache"
	"grandaura/internal/pkg/token"
)

const (
	revokedKeyPrefix    = "session-revoked:"
	generationKeyPrefix = "session-generation:"
)

// ErrNoSession indica que o pedido não carrega uma sessão válida.
var ErrNoSession = errors.New("session: no valid session")

// Manager emite, resolve e destrói sessões. O Authentication Context viaja num
// cookie JWT; o logout grava o jti na lista de revogados até o token expirar.
type Manager struct {
	tokens     *token.Service
	cache      cache.Client
	cookieName string
	secure     bool
	now        func() time.Time
}

// NewManager cria o gerenciador de sessões. secure liga o atributo Secure do cookie.
func NewManager(tokens *token.Service, client cache.Client, cookieName string, secure bool) *Manager {
	return &Manager{
		tokens:     tokens,
		cache:      client,
		cookieName: cookieName,
		secure:     secure,
		now:        time.Now,
	}
}

// CookieName é o nome do cookie de sessão.
func (m *Manager) CookieName() string { return m.cookieName }

// Issue cria a sessão para a identidade autenticada e devolve o token assinado.
// O token carrega a geração atual do principal. Quando w não é nil, o cookie é
// escrito na resposta.
func (m *Manager) Issue(ctx context.Context, w http.ResponseWriter, auth domain.AuthContext) (string, domain.AuthContext, error) {
	gen, err := m.generation(ctx, auth.Role, auth.PrincipalID)
	if err != nil {
		return "", domain.AuthContext{}, err
	}
	auth.Generation = gen

	signed, issued, err := m.tokens.GenerateToken(auth)
	if err != nil {
		return "", domain.AuthContext{}, fmt.Errorf("failed to issue session: %w", err)
	}

	if w != nil {
		http.SetCookie(w, &http.Cookie{
			Name:     m.cookieName,
			Value:    signed,
			Path:     "/",
			Expires:  issued.ExpiresAt,
			MaxAge:   int(m.tokens.Expiry().Seconds()),
			HttpOnly: true,
			Secure:   m.secure,
			SameSite: http.SameSiteLaxMode,
		})
	}
	return signed, issued, nil
}

// rawToken lê o token do cookie ou, para clientes JSON, do header Authorization.
func (m *Manager) rawToken(r *http.Request) string {
	if c, err := r.Cookie(m.cookieName); err == nil && c.Value != "" {
		return c.Value
	}
	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimSpace(authHeader[7:])
	}
	return ""
}

// Resolve devolve o Authentication Context do pedido. Tokens revogados,
// expirados, adulterados ou de um principal suspenso resultam em ErrNoSession.
func (m *Manager) Resolve(ctx context.Context, r *http.Request) (domain.AuthContext, error) {
	raw := m.rawToken(r)
	if raw == "" {
		return domain.AuthContext{}, ErrNoSession
	}

	auth, err := m.tokens.ValidateToken(raw)
	if err != nil {
		return domain.AuthContext{}, fmt.Errorf("%w: %v", ErrNoSession, err)
	}

	_, err = m.cache.Get(ctx, revokedKeyPrefix+auth.SessionID)
	switch {
	case err == nil:
		return domain.AuthContext{}, fmt.Errorf("%w: session revoked", ErrNoSession)
	case errors.Is(err, cache.ErrCacheMiss):
	default:
		return domain.AuthContext{}, fmt.Errorf("failed to check session revocation: %w", err)
	}

	current, err := m.generation(ctx, auth.Role, auth.PrincipalID)
	if err != nil {
		return domain.AuthContext{}, err
	}
	if auth.Generation != current {
		return domain.AuthContext{}, fmt.Errorf("%w: principal sessions suspended", ErrNoSession)
	}
	return auth, nil
}

// SuspendPrincipal invalida todas as sessões já emitidas para o principal.
// Chamado quando o principal é desativado ou removido; reativá-lo não
// ressuscita tokens antigos.
func (m *Manager) SuspendPrincipal(ctx context.Context, role domain.Role, principalID string) error {
	if _, err := m.cache.Incr(ctx, generationKey(role, principalID)); err != nil {
		return fmt.Errorf("failed to suspend sessions: %w", err)
	}
	return nil
}

// generation lê a geração de sessões do principal; chave ausente = 0.
func (m *Manager) generation(ctx context.Context, role domain.Role, principalID string) (int64, error) {
	n, err := m.cache.GetInt(ctx, generationKey(role, principalID))
	switch {
	case err == nil:
		return int64(n), nil
	case errors.Is(err, cache.ErrCacheMiss):
		return 0, nil
	default:
		return 0, fmt.Errorf("failed to read session generation: %w", err)
	}
}

func generationKey(role domain.Role, principalID string) string {
	return generationKeyPrefix + string(role) + ":" + principalID
}

// Destroy revoga a sessão até a expiração natural e apaga o cookie.
func (m *Manager) Destroy(ctx context.Context, w http.ResponseWriter, auth domain.AuthContext) error {
	if w != nil {
		http.SetCookie(w, &http.Cookie{
			Name:     m.cookieName,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   m.secure,
			SameSite: http.SameSiteLaxMode,
		})
	}

	if auth.SessionID == "" {
		return nil
	}
	remaining := auth.ExpiresAt.Sub(m.now())
	if remaining <= 0 {
		return nil
	}
	if err := m.cache.Set(ctx, revokedKeyPrefix+auth.SessionID, 1, remaining); err != nil {
		return fmt.Errorf("failed to revoke session: %w", err)
	}
	return nil
}
