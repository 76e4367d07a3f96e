package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Métricas do gateway de autenticação, expostas em /metrics.
var (
	// LoginAttempts conta tentativas de login.
	// Labels:
	//   - role: role resolvida (ou "unknown" quando nenhum repositório contém o email)
	//   - outcome: "success", "not_found", "credential_mismatch", "disabled", "error"
	LoginAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "grandaura_login_attempts_total",
			Help: "Total number of login attempts by role and outcome",
		},
		[]string{"role", "outcome"},
	)

	// AuthorizationDecisions conta as decisões do controle de acesso por namespace.
	AuthorizationDecisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "grandaura_authorization_decisions_total",
			Help: "Total number of namespace authorization decisions",
		},
		[]string{"decision"},
	)

	// Registrations conta registros self-service de clientes.
	Registrations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "grandaura_registrations_total",
			Help: "Total number of customer registrations by outcome",
		},
		[]string{"outcome"},
	)

	// RateLimited conta pedidos rejeitados pelo rate limiter.
	RateLimited = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "grandaura_rate_limited_requests_total",
			Help: "Total number of requests rejected by the rate limiter",
		},
	)
)
