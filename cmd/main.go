package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	// Infraestrutura e utilitários
	"grandaura/config"
	"grandaura/internal/pkg/cache"
	"grandaura/internal/pkg/database"
	"grandaura/internal/pkg/logger"
	"grandaura/internal/pkg/middleware"
	"grandaura/internal/pkg/password"
	"grandaura/internal/pkg/session"
	"grandaura/internal/pkg/token"

	// Camadas para Injeção de Dependências
	"grandaura/internal/api/admin"
	"grandaura/internal/api/auth"
	"grandaura/internal/api/pages"
	"grandaura/internal/api/profile"
	"grandaura/internal/api/router"
	apisession "grandaura/internal/api/session"
	"grandaura/internal/domain"
	"grandaura/internal/repository/memrepo"
	"grandaura/internal/repository/principalrepo"
	"grandaura/internal/service/authservice"
	"grandaura/internal/service/authzservice"
	"grandaura/internal/service/principalservice"
)

func main() {
	// 0. Variáveis de ambiente (.env é opcional: em Docker vêm do sistema)
	envErr := godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.NewLogger("info").Fatal("Configuração inválida.", err)
	}
	log := logger.NewLogger(cfg.LogLevel)
	if envErr != nil {
		log.Warn("Arquivo .env não encontrado; usando apenas o ambiente do sistema.", nil)
	}
	log.Info("Inicializando gateway Grand Aura...", map[string]interface{}{
		"env":      cfg.Environment,
		"backend":  cfg.StoreBackend,
		"policy":   cfg.CredentialPolicy,
		"dispatch": cfg.LoginDispatch,
	})

	ctx := context.Background()

	// 1. Repositórios de identidade + cache
	var (
		stores      domain.Stores
		cacheClient cache.Client
	)
	switch cfg.StoreBackend {
	case config.BackendMemory:
		stores = memrepo.NewStores()
		cacheClient = cache.NewMemoryClient()
		log.Warn("Backend em memória: identidades e sessões revogadas perdem-se ao reiniciar.", nil)
	default:
		db, err := database.NewPostgresDB(ctx, cfg.DatabaseURL, database.DefaultPoolOptions(), log)
		if err != nil {
			log.Fatal("Falha ao conectar ao banco de dados.", err)
		}
		defer closeDB(db, log)
		stores = principalrepo.NewStores(db, cfg.DBTimeout, log)

		redisClient, err := cache.NewRedisClient(cfg.RedisAddr, cfg.CacheTimeout)
		if err != nil {
			log.Fatal("Falha ao conectar ao Redis.", err)
		}
		defer redisClient.Close()
		cacheClient = redisClient
		log.Info("Conexões PostgreSQL e Redis estabelecidas.", nil)
	}

	// 2. Política de credenciais (escolhida uma única vez)
	encoder, err := password.NewEncoder(password.Policy(cfg.CredentialPolicy), cfg.BcryptCost)
	if err != nil {
		log.Fatal("Política de credenciais inválida.", err)
	}
	if encoder.Policy() == password.PolicyPlaintext {
		log.Warn("CREDENTIAL_POLICY=plaintext está obsoleta; use apenas em desenvolvimento.", nil)
	}

	// 3. Serviços
	authSvc := authservice.NewService(stores, encoder, authservice.Options{
		Dispatch:         domain.DispatchMode(cfg.LoginDispatch),
		CrossStoreUnique: cfg.CrossStoreUniqueEmails,
	}, log)
	authzSvc := authzservice.NewService(log)

	tokenSvc := token.NewService(cfg.JWTSecretKey, cfg.TokenExpiry)
	sessions := session.NewManager(tokenSvc, cacheClient, cfg.SessionCookieName, cfg.IsProduction())
	principalSvc := principalservice.NewService(stores, encoder, authSvc, sessions, log)

	if cfg.SeedDefaultPrincipals {
		seeded, err := principalSvc.Seed(ctx, domain.DefaultSeedPrincipals())
		if err != nil {
			log.Fatal("Falha ao semear os principais padrão.", err)
		}
		log.Info("Principais padrão verificados.", map[string]interface{}{"created": seeded})
	}

	trustedProxies, err := middleware.ParseTrustedProxies(cfg.TrustedProxies)
	if err != nil {
		log.Fatal("TRUSTED_PROXIES inválido.", err)
	}

	// 4. Handlers e roteador
	handlers := router.Handlers{
		Auth:    auth.NewHandler(authSvc, sessions, log),
		Session: apisession.NewHandler(authSvc, sessions, log),
		Pages:   pages.NewHandler(principalSvc, log),
		Profile: profile.NewHandler(principalSvc, log),
		Admin:   admin.NewHandler(principalSvc, log),
	}
	r := router.NewRouter(handlers, router.Dependencies{
		Sessions:       sessions,
		Authz:          authzSvc,
		RateLimiter:    middleware.RateLimiter(cacheClient, cfg.RateLimitMaxRequests, cfg.RateLimitPeriod, log),
		TrustedProxies: trustedProxies,
		Logger:         log,
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// 5. Execução e Graceful Shutdown
	go func() {
		log.Info("Gateway Grand Aura ouvindo na porta", map[string]interface{}{"port": cfg.Port})
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Servidor falhou.", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	<-quit
	log.Info("Sinal de encerramento recebido. Desligando servidor...", nil)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Desligamento do servidor forçado.", err)
	}

	log.Info("Servidor encerrado com sucesso.", nil)
}

func closeDB(db *sql.DB, log logger.Logger) {
	if err := db.Close(); err != nil {
		log.Error("Falha ao fechar o pool PostgreSQL.", err)
	}
}
