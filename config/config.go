package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Backends de persistência suportados.
const (
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

// Config armazena todas as configurações do gateway Grand Aura.
type Config struct {
	// Geral
	Port        string
	Environment string
	LogLevel    string

	// Persistência dos repositórios de identidade
	StoreBackend string
	DatabaseURL  string
	DBTimeout    time.Duration

	// Cache (Redis): rate limit e revogação de sessões
	RedisAddr    string
	CacheTimeout time.Duration

	// Sessão (JWT)
	JWTSecretKey      string
	TokenExpiry       time.Duration
	SessionCookieName string

	// Rate Limiting do login/registo
	RateLimitMaxRequests int
	RateLimitPeriod      time.Duration
	TrustedProxies       []string // IPs/CIDRs autorizados a enviar X-Forwarded-For

	// Autenticação
	CredentialPolicy       string
	BcryptCost             int
	LoginDispatch          string
	CrossStoreUniqueEmails bool
	SeedDefaultPrincipals  bool
}

// LoadConfig carrega as configurações a partir das variáveis de ambiente.
// Devolve erro quando falta uma variável obrigatória ou a combinação é inválida.
func LoadConfig() (*Config, error) {
	var missing []string
	require := func(key string) string {
		value, err := mustGetEnv(key)
		if err != nil {
			missing = append(missing, key)
		}
		return value
	}

	cfg := &Config{
		// 1. Geral
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENV", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),

		// 2. Persistência
		StoreBackend: strings.ToLower(getEnv("STORE_BACKEND", BackendPostgres)),
		DatabaseURL:  getEnv("DATABASE_URL", ""),
		DBTimeout:    getDurationEnv("DB_TIMEOUT_SEC", 5) * time.Second,

		// 3. Cache (Redis)
		RedisAddr:    getEnv("REDIS_ADDR", "localhost:6379"),
		CacheTimeout: getDurationEnv("CACHE_TIMEOUT_SEC", 10) * time.Second,

		// 4. Sessão (JWT)
		JWTSecretKey:      require("JWT_SECRET_KEY"),
		TokenExpiry:       getDurationEnv("JWT_EXPIRY_MIN", 60) * time.Minute,
		SessionCookieName: getEnv("SESSION_COOKIE_NAME", "GRANDAURA_SESSION"),

		// 5. Rate Limiting
		RateLimitMaxRequests: getIntEnv("RATE_LIMIT_MAX_REQUESTS", 10),
		RateLimitPeriod:      getDurationEnv("RATE_LIMIT_PERIOD_MIN", 1) * time.Minute,
		TrustedProxies:       getSliceEnv("TRUSTED_PROXIES", nil),

		// 6. Autenticação
		CredentialPolicy:       strings.ToLower(getEnv("CREDENTIAL_POLICY", "bcrypt")),
		BcryptCost:             getIntEnv("BCRYPT_COST", 0),
		LoginDispatch:          strings.ToLower(getEnv("LOGIN_DISPATCH", "customer")),
		CrossStoreUniqueEmails: getBoolEnv("CROSS_STORE_UNIQUE_EMAILS", false),
		SeedDefaultPrincipals:  getBoolEnv("SEED_DEFAULT_PRINCIPALS", true),
	}

	// DATABASE_URL só é obrigatória com o backend postgres.
	if cfg.StoreBackend == BackendPostgres && cfg.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("configuration error: environment variable(s) %s must be set", strings.Join(missing, ", "))
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// IsProduction indica se o processo corre em produção (cookies Secure, política plaintext proibida).
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}

// Validate rejeita combinações inconsistentes de configuração.
func (c *Config) Validate() error {
	var errs []error

	switch c.StoreBackend {
	case BackendPostgres, BackendMemory:
	default:
		errs = append(errs, fmt.Errorf("STORE_BACKEND must be %q or %q, got %q", BackendPostgres, BackendMemory, c.StoreBackend))
	}

	switch c.CredentialPolicy {
	case "bcrypt":
	case "plaintext":
		if c.IsProduction() {
			errs = append(errs, errors.New("CREDENTIAL_POLICY=plaintext is not allowed in production"))
		}
	default:
		errs = append(errs, fmt.Errorf("CREDENTIAL_POLICY must be bcrypt or plaintext, got %q", c.CredentialPolicy))
	}

	switch c.LoginDispatch {
	case "customer", "priority":
	default:
		errs = append(errs, fmt.Errorf("LOGIN_DISPATCH must be customer or priority, got %q", c.LoginDispatch))
	}

	if c.TokenExpiry <= 0 {
		errs = append(errs, errors.New("JWT_EXPIRY_MIN must be positive"))
	}
	if c.SessionCookieName == "" {
		errs = append(errs, errors.New("SESSION_COOKIE_NAME must not be empty"))
	}

	return errors.Join(errs...)
}

// Funções Helpers (Auxiliares)

// getEnv lê a variável de ambiente ou retorna um valor padrão.
func getEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// mustGetEnv lê a variável de ambiente; vazia conta como ausente.
func mustGetEnv(key string) (string, error) {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value, nil
	}
	return "", fmt.Errorf("environment variable %s must be set", key)
}

// getDurationEnv lê uma variável de ambiente numérica e retorna-a como time.Duration.
func getDurationEnv(key string, defaultValue int) time.Duration {
	return time.Duration(getIntEnv(key, defaultValue))
}

// getIntEnv lê uma variável de ambiente numérica e retorna-a como int.
// Valores inválidos caem no padrão.
func getIntEnv(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getSliceEnv lê uma lista separada por vírgulas, descartando itens vazios.
func getSliceEnv(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	var values []string
	for _, item := range strings.Split(valueStr, ",") {
		if item = strings.TrimSpace(item); item != "" {
			values = append(values, item)
		}
	}
	return values
}

// getBoolEnv aceita os formatos de strconv.ParseBool ("true", "1", "false", ...).
func getBoolEnv(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
