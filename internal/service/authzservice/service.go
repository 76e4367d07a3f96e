package authzservice

import (
	"context"
	"path"
	"sort"
	"strings"

	"grandaura/internal/domain"
	"grandaura/internal/pkg/logger"
	"grandaura/internal/pkg/metrics"
)

// Access é o requisito de uma regra de namespace.
type Access int

const (
	// AccessPublic dispensa sessão.
	AccessPublic Access = iota
	// AccessAuthenticated exige qualquer principal autenticado.
	AccessAuthenticated
	// AccessRoles exige uma das roles listadas na regra.
	AccessRoles
)

// Rule associa um padrão de URL a um requisito de acesso.
type Rule struct {
	Pattern string
	Prefix  bool // false = correspondência exata
	Access  Access
	Roles   []domain.Role
}

// matches respeita fronteiras de segmento: "/bookings" cobre "/bookings/my" mas não "/bookingsx".
func (r Rule) matches(p string) bool {
	if !r.Prefix {
		return p == r.Pattern
	}
	if r.Pattern == "/" {
		return true
	}
	return p == r.Pattern || strings.HasPrefix(p, r.Pattern+"/")
}

func (r Rule) permits(role domain.Role) bool {
	for _, allowed := range r.Roles {
		if allowed == role {
			return true
		}
	}
	return false
}

// Decision é o resultado da verificação de acesso a um caminho.
type Decision int

const (
	Allow Decision = iota
	Unauthenticated
	Forbidden
)

func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case Unauthenticated:
		return "unauthenticated"
	case Forbidden:
		return "forbidden"
	default:
		return "unknown"
	}
}

// AccessDeniedPath é o destino de pedidos autenticados mas não autorizados.
const AccessDeniedPath = "/access-denied"

// DefaultRules devolve a tabela de autorização por namespace da aplicação.
func DefaultRules() []Rule {
	rules := []Rule{}

	for _, p := range []string{
		"/", "/login", "/register", "/logout", AccessDeniedPath,
		"/gallery", "/contact", "/privacy", "/terms", "/cookies", "/refund",
		"/ping", "/metrics", "/api/v1/session",
	} {
		rules = append(rules, Rule{Pattern: p, Access: AccessPublic})
	}
	for _, role := range domain.StaffRoles() {
		rules = append(rules, Rule{Pattern: role.LoginPath(), Access: AccessPublic})
	}
	for _, p := range []string{"/css", "/js", "/img", "/video", "/static", "/swagger"} {
		rules = append(rules, Rule{Pattern: p, Prefix: true, Access: AccessPublic})
	}

	// Área de reservas: partilhada por todas as roles.
	rules = append(rules, Rule{Pattern: domain.RoleCustomer.Namespace(), Prefix: true, Access: AccessRoles, Roles: domain.AllRoles()})

	for _, role := range domain.StaffRoles() {
		rules = append(rules, Rule{Pattern: role.Namespace(), Prefix: true, Access: AccessRoles, Roles: []domain.Role{role}})
	}

	// Fallback: qualquer outra rota exige apenas autenticação.
	rules = append(rules, Rule{Pattern: "/", Prefix: true, Access: AccessAuthenticated})
	return rules
}

// Service decide o acesso de uma identidade a um caminho.
type Service struct {
	rules  []Rule
	logger logger.Logger
}

// NewService cria o serviço com a tabela padrão.
func NewService(logger logger.Logger) *Service {
	return NewServiceWithRules(DefaultRules(), logger)
}

// NewServiceWithRules ordena as regras da mais específica para a menos específica:
// padrões mais longos primeiro e, com o mesmo comprimento, exata antes de prefixo.
func NewServiceWithRules(rules []Rule, logger logger.Logger) *Service {
	sorted := make([]Rule, len(rules))
	for i, r := range rules {
		r.Pattern = Normalize(r.Pattern)
		sorted[i] = r
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		if len(sorted[i].Pattern) != len(sorted[j].Pattern) {
			return len(sorted[i].Pattern) > len(sorted[j].Pattern)
		}
		return !sorted[i].Prefix && sorted[j].Prefix
	})
	return &Service{rules: sorted, logger: logger}
}

// Normalize canoniza o caminho antes da comparação: minúsculas, sem segmentos
// "." / "..", sem barras duplicadas nem barra final.
func Normalize(p string) string {
	p = strings.ToLower(strings.TrimSpace(p))
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return path.Clean(p)
}

// Match devolve a regra mais específica aplicável ao caminho.
func (s *Service) Match(p string) Rule {
	normalized := Normalize(p)
	for _, rule := range s.rules {
		if rule.matches(normalized) {
			return rule
		}
	}
	return Rule{Pattern: "/", Prefix: true, Access: AccessAuthenticated}
}

// Decide aplica a regra ao Authentication Context (nil = anónimo).
func (s *Service) Decide(ctx context.Context, p string, auth *domain.AuthContext) Decision {
	rule := s.Match(p)
	decision := s.decide(rule, auth)

	metrics.AuthorizationDecisions.WithLabelValues(decision.String()).Inc()
	if decision == Forbidden {
		s.logger.Warn("Acesso negado ao namespace.", map[string]interface{}{
			"path":         p,
			"rule":         rule.Pattern,
			"role":         auth.Role,
			"principal_id": auth.PrincipalID,
		})
	}
	return decision
}

func (s *Service) decide(rule Rule, auth *domain.AuthContext) Decision {
	switch rule.Access {
	case AccessPublic:
		return Allow
	case AccessAuthenticated:
		if auth == nil {
			return Unauthenticated
		}
		return Allow
	default:
		if auth == nil {
			return Unauthenticated
		}
		if rule.permits(auth.Role) {
			return Allow
		}
		return Forbidden
	}
}

// LoginPathFor escolhe a página de login para um pedido anónimo: a do namespace
// de staff que contém o caminho ou, nos restantes casos, o login genérico.
func (s *Service) LoginPathFor(p string) string {
	normalized := Normalize(p)
	for _, role := range domain.StaffRoles() {
		ns := role.Namespace()
		if normalized == ns || strings.HasPrefix(normalized, ns+"/") {
			return role.LoginPath()
		}
	}
	return domain.RoleCustomer.LoginPath()
}
